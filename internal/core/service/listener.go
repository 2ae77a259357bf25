package service

import (
	"context"
	"errors"

	"github.com/musha-views/session-store/internal/core/domain"
	"github.com/musha-views/session-store/internal/core/ports"
	"github.com/musha-views/session-store/internal/metrics"
)

// InitializeListener subscribes the store to the identity provider's
// session-change stream for the lifetime of the process, keeping the user
// field synchronized with transitions that happen outside explicit store
// actions (token expiry, sign-out on another device).
//
// Each notification with a session fetches the profile document and installs
// it via SetUser; a session without a document is a data-consistency anomaly
// that is logged and clears the user. A notification without a session clears
// the user unless the store currently holds a guest session, which has no
// remote backing and must survive provider notifications.
//
// The returned unsubscribe handle is caller-managed; this subscription is
// independent of CheckAuth's one-shot subscription.
func (s *SessionStore) InitializeListener() (unsubscribe func()) {
	return s.identity.OnSessionChange(func(sess *ports.Session) {
		if sess == nil {
			if s.State().IsGuest {
				return
			}
			metrics.ListenerNotificationsTotal.WithLabelValues("signed_out").Inc()
			s.SetUser(nil)
			return
		}

		profile, err := s.profiles.Get(context.Background(), sess.UID)
		if err != nil {
			if errors.Is(err, domain.ErrProfileNotFound) {
				metrics.ListenerNotificationsTotal.WithLabelValues("session_orphaned").Inc()
				s.log.Warn().Str("uid", sess.UID).Msg("authenticated session has no profile document")
			} else {
				s.log.Error().Err(err).Str("uid", sess.UID).Msg("profile fetch failed in session listener")
			}
			s.SetUser(nil)
			return
		}

		metrics.ListenerNotificationsTotal.WithLabelValues("session").Inc()
		s.SetUser(profile)
	})
}
