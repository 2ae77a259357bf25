package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/musha-views/session-store/internal/core/domain"
	"github.com/musha-views/session-store/internal/core/ports"
	"github.com/musha-views/session-store/internal/metrics"
)

// SessionStore owns the in-memory session state and implements every action
// the UI drives. It is constructed once at process start and passed by
// reference to whichever layer needs it.
//
// Actions are atomic with respect to the state (no partial state is ever
// observable) but are not guarded against concurrent invocation; callers are
// expected to serialize user-triggered actions, and IsLoading is advisory
// only. After every state-mutating action the projection (user, authenticated,
// guest, role-selected) is written to the snapshot store; snapshot failures
// are logged, never surfaced.
type SessionStore struct {
	identity  ports.IdentityProvider
	profiles  ports.ProfileRepository
	snapshots ports.SnapshotStore
	log       zerolog.Logger
	now       func() time.Time

	mu    sync.Mutex
	state domain.State
}

var _ ports.SessionService = (*SessionStore)(nil)

func NewSessionStore(identity ports.IdentityProvider, profiles ports.ProfileRepository, snapshots ports.SnapshotStore, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		identity:  identity,
		profiles:  profiles,
		snapshots: snapshots,
		log:       log,
		now:       time.Now,
	}
}

// Hydrate restores the persisted projection into the in-memory state. Call it
// once, before any action runs. A missing or unreadable snapshot leaves the
// store at its all-absent default; transient fields (IsLoading, Err) always
// start at their zero values.
func (s *SessionStore) Hydrate(ctx context.Context) {
	data, err := s.snapshots.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrSnapshotNotFound) {
			s.log.Warn().Err(err).Msg("session snapshot load failed")
		}
		return
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.log.Warn().Err(err).Msg("session snapshot is corrupt, starting clean")
		return
	}

	s.mu.Lock()
	s.state = snap.Restore()
	s.mu.Unlock()
}

// State returns a consistent copy of the current session state.
func (s *SessionStore) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// Login authenticates with email/password and loads the profile document for
// the issued session. A session whose profile document is missing is treated
// as a failed login.
func (s *SessionStore) Login(ctx context.Context, email, password string) bool {
	defer s.observe("login")()
	s.begin()

	sess, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		return s.fail("login", mapProviderError(err, signInMessages, loginFallback))
	}

	user, err := s.profiles.Get(ctx, sess.UID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return s.fail("login", domain.ErrProfileNotFound.Error())
		}
		s.log.Error().Err(err).Str("uid", sess.UID).Msg("profile fetch failed during login")
		return s.fail("login", loginFallback)
	}

	s.commit(ctx, "login", func(st *domain.State) {
		st.User = user
		st.IsAuthenticated = true
		st.IsGuest = false
		st.HasSelectedRole = false
	})
	return true
}

// Signup creates a provider account, writes a fresh buyer profile document
// keyed by the new uid, and commits the session as authenticated.
func (s *SessionStore) Signup(ctx context.Context, email, password, name string) bool {
	defer s.observe("signup")()
	s.begin()

	sess, err := s.identity.SignUp(ctx, email, password)
	if err != nil {
		return s.fail("signup", mapProviderError(err, signUpMessages, signupFallback))
	}

	user := domain.NewUser(sess.UID, name, email, s.now())
	if err := s.profiles.Create(ctx, user); err != nil {
		s.log.Error().Err(err).Str("uid", sess.UID).Msg("profile create failed during signup")
		return s.fail("signup", signupFallback)
	}

	s.commit(ctx, "signup", func(st *domain.State) {
		st.User = user
		st.IsAuthenticated = true
		st.IsGuest = false
		st.HasSelectedRole = false
	})
	return true
}

// Logout terminates the remote session and clears the local one. Local state
// is cleared even when the remote sign-out call fails; the provider expires
// its own sessions, so a stale remote session is preferable to a stale local
// one. The failure is still recorded in Err.
func (s *SessionStore) Logout(ctx context.Context) {
	defer s.observe("logout")()
	s.begin()

	signOutErr := s.identity.SignOut(ctx)

	s.mu.Lock()
	s.state.User = nil
	s.state.IsAuthenticated = false
	s.state.IsGuest = false
	s.state.HasSelectedRole = false
	s.state.IsLoading = false
	if signOutErr != nil {
		s.state.Err = mapProviderError(signOutErr, nil, logoutFallback)
	}
	snap := s.state.Project()
	s.mu.Unlock()

	s.persist(ctx, snap)
	result := "success"
	if signOutErr != nil {
		result = "failure"
	}
	metrics.SessionActionsTotal.WithLabelValues("logout", result).Inc()
}

// ResetPassword asks the provider to dispatch a password-reset email. It does
// not touch the current user or authentication flags.
func (s *SessionStore) ResetPassword(ctx context.Context, email string) bool {
	defer s.observe("reset_password")()
	s.begin()

	if err := s.identity.SendPasswordReset(ctx, email); err != nil {
		return s.fail("reset_password", mapProviderError(err, resetMessages, resetFallback))
	}
	s.finish("reset_password")
	return true
}

// UpdateProfile merges the partial update into the remote document and then
// into the in-memory user. The guest profile is immutable, and the update
// must respect the seller invariants (see domain.ProfileUpdate.Validate).
func (s *SessionStore) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) bool {
	defer s.observe("update_profile")()
	s.begin()

	user := s.currentUser()
	if user == nil {
		return s.fail("update_profile", domain.ErrNotAuthenticated.Error())
	}
	if user.IsGuest() {
		return s.fail("update_profile", domain.ErrGuestProfileImmutable.Error())
	}
	if err := update.Validate(user); err != nil {
		return s.fail("update_profile", err.Error())
	}
	if update.IsEmpty() {
		s.finish("update_profile")
		return true
	}

	if err := s.profiles.Update(ctx, user.ID, update); err != nil {
		s.log.Error().Err(err).Str("uid", user.ID).Msg("profile update failed")
		return s.fail("update_profile", updateFallback)
	}

	updated := update.ApplyTo(*user)
	s.commit(ctx, "update_profile", func(st *domain.State) {
		st.User = &updated
	})
	return true
}

// UpgradeToSeller grants seller capability and activates seller mode, both
// remotely and locally. There is no downgrade action; IsSeller is monotonic.
func (s *SessionStore) UpgradeToSeller(ctx context.Context) bool {
	defer s.observe("upgrade_to_seller")()
	s.begin()

	user := s.currentUser()
	if user == nil {
		return s.fail("upgrade_to_seller", domain.ErrNotAuthenticated.Error())
	}
	if user.IsGuest() {
		return s.fail("upgrade_to_seller", domain.ErrGuestNotSeller.Error())
	}

	t := true
	update := domain.ProfileUpdate{IsSeller: &t, SellerModeActive: &t}
	if err := s.profiles.Update(ctx, user.ID, update); err != nil {
		s.log.Error().Err(err).Str("uid", user.ID).Msg("seller upgrade failed")
		return s.fail("upgrade_to_seller", upgradeFallback)
	}

	updated := update.ApplyTo(*user)
	s.commit(ctx, "upgrade_to_seller", func(st *domain.State) {
		st.User = &updated
	})
	return true
}

// ToggleSellerMode flips SellerModeActive for seller accounts. Guests always
// fail the seller check since the guest profile never has seller capability.
func (s *SessionStore) ToggleSellerMode(ctx context.Context) bool {
	defer s.observe("toggle_seller_mode")()
	s.begin()

	user := s.currentUser()
	if user == nil {
		return s.fail("toggle_seller_mode", domain.ErrNotAuthenticated.Error())
	}
	if user.IsGuest() || !user.IsSeller {
		return s.fail("toggle_seller_mode", domain.ErrNotSeller.Error())
	}

	active := !user.SellerModeActive
	update := domain.ProfileUpdate{SellerModeActive: &active}
	if err := s.profiles.Update(ctx, user.ID, update); err != nil {
		s.log.Error().Err(err).Str("uid", user.ID).Msg("seller mode toggle failed")
		return s.fail("toggle_seller_mode", toggleFallback)
	}

	updated := update.ApplyTo(*user)
	s.commit(ctx, "toggle_seller_mode", func(st *domain.State) {
		st.User = &updated
	})
	return true
}

// ContinueAsGuest installs the guest pseudo-account synchronously. No remote
// call is made and the action cannot fail. IsLoading and Err are untouched.
func (s *SessionStore) ContinueAsGuest() {
	s.mu.Lock()
	s.state.User = domain.NewGuestUser(s.now())
	s.state.IsAuthenticated = true
	s.state.IsGuest = true
	s.state.HasSelectedRole = false
	snap := s.state.Project()
	s.mu.Unlock()

	s.persist(context.Background(), snap)
	metrics.SessionActionsTotal.WithLabelValues("continue_as_guest", "success").Inc()
}

// CheckAuth performs the one-shot startup reconciliation: it subscribes to
// the session-change stream, acts on the first notification only, and
// unsubscribes.
//
// A remote session whose profile document exists wins; a session without a
// document is treated as unauthenticated (the profile document is the source
// of truth for app-level identity). Without a remote session the current
// guest state, which has no remote backing, is preserved; any other state is
// cleared. Fetch failures resolve false with a recorded error.
func (s *SessionStore) CheckAuth(ctx context.Context) bool {
	defer s.observe("check_auth")()
	s.begin()

	first := make(chan *ports.Session, 1)
	var once sync.Once
	unsubscribe := s.identity.OnSessionChange(func(sess *ports.Session) {
		once.Do(func() { first <- sess })
	})
	defer unsubscribe()

	var sess *ports.Session
	select {
	case sess = <-first:
	case <-ctx.Done():
		return s.failClear(ctx, "check_auth", checkAuthFallback)
	}

	if sess == nil {
		st := s.State()
		if st.IsGuest && st.User.IsGuest() {
			s.finish("check_auth")
			return true
		}
		s.commit(ctx, "check_auth", func(st *domain.State) {
			st.User = nil
			st.IsAuthenticated = false
			st.IsGuest = false
			st.HasSelectedRole = false
		})
		return false
	}

	profile, err := s.profiles.Get(ctx, sess.UID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			// Orphaned session: the account exists at the provider but has
			// no profile document.
			s.commit(ctx, "check_auth", func(st *domain.State) {
				st.User = nil
				st.IsAuthenticated = false
				st.IsGuest = false
			})
			return false
		}
		s.log.Error().Err(err).Str("uid", sess.UID).Msg("profile fetch failed during auth check")
		return s.failClear(ctx, "check_auth", checkAuthFallback)
	}

	s.commit(ctx, "check_auth", func(st *domain.State) {
		st.User = profile
		st.IsAuthenticated = true
		st.IsGuest = false
	})
	return true
}

// SetUser replaces the current user and recomputes the derived flags in the
// same mutation. It is the entry point used by the session listener.
func (s *SessionStore) SetUser(user *domain.User) {
	s.mu.Lock()
	s.state.User = user
	s.state.IsAuthenticated = user != nil
	s.state.IsGuest = user.IsGuest()
	snap := s.state.Project()
	s.mu.Unlock()

	s.persist(context.Background(), snap)
}

// SetHasSelectedRole records that the role-selection screen has been
// answered. Only the UI sets it true; every auth transition resets it.
func (s *SessionStore) SetHasSelectedRole(value bool) {
	s.mu.Lock()
	s.state.HasSelectedRole = value
	snap := s.state.Project()
	s.mu.Unlock()

	s.persist(context.Background(), snap)
}

// ClearError discards the last recorded failure message.
func (s *SessionStore) ClearError() {
	s.mu.Lock()
	s.state.Err = ""
	s.mu.Unlock()
}

// currentUser returns a copy of the current user, or nil.
func (s *SessionStore) currentUser() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

// begin marks the start of an action: loading on, previous error cleared.
func (s *SessionStore) begin() {
	s.mu.Lock()
	s.state.IsLoading = true
	s.state.Err = ""
	s.mu.Unlock()
}

// finish ends an action that changed nothing persistent.
func (s *SessionStore) finish(action string) {
	s.mu.Lock()
	s.state.IsLoading = false
	s.mu.Unlock()
	metrics.SessionActionsTotal.WithLabelValues(action, "success").Inc()
}

// fail records the failure message and ends the action. State is otherwise
// left untouched.
func (s *SessionStore) fail(action, msg string) bool {
	s.mu.Lock()
	s.state.IsLoading = false
	s.state.Err = msg
	s.mu.Unlock()
	metrics.SessionActionsTotal.WithLabelValues(action, "failure").Inc()
	return false
}

// failClear records the failure and resets the session to the unauthenticated
// default, as CheckAuth requires.
func (s *SessionStore) failClear(ctx context.Context, action, msg string) bool {
	s.mu.Lock()
	s.state = domain.State{Err: msg}
	snap := s.state.Project()
	s.mu.Unlock()

	s.persist(ctx, snap)
	metrics.SessionActionsTotal.WithLabelValues(action, "failure").Inc()
	return false
}

// commit applies the mutation atomically, ends the loading cycle, and writes
// the projection to the snapshot store.
func (s *SessionStore) commit(ctx context.Context, action string, mutate func(*domain.State)) {
	s.mu.Lock()
	mutate(&s.state)
	s.state.IsLoading = false
	snap := s.state.Project()
	s.mu.Unlock()

	s.persist(ctx, snap)
	metrics.SessionActionsTotal.WithLabelValues(action, "success").Inc()
}

func (s *SessionStore) persist(ctx context.Context, snap domain.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		metrics.SnapshotWritesTotal.WithLabelValues("failure").Inc()
		s.log.Warn().Err(err).Msg("session snapshot marshal failed")
		return
	}
	if err := s.snapshots.Save(ctx, data); err != nil {
		metrics.SnapshotWritesTotal.WithLabelValues("failure").Inc()
		s.log.Warn().Err(err).Msg("session snapshot write failed")
		return
	}
	metrics.SnapshotWritesTotal.WithLabelValues("success").Inc()
}

func (s *SessionStore) observe(action string) func() {
	start := time.Now()
	return func() {
		metrics.SessionActionDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
	}
}
