package ports

import "context"

// Provider error codes. The identity provider reports failures with one of
// these code strings; anything else is mapped to a per-action fallback.
const (
	CodeUserNotFound        = "user-not-found"
	CodeWrongPassword       = "wrong-password"
	CodeInvalidEmail        = "invalid-email"
	CodeUserDisabled        = "user-disabled"
	CodeTooManyRequests     = "too-many-requests"
	CodeEmailAlreadyInUse   = "email-already-in-use"
	CodeWeakPassword        = "weak-password"
	CodeOperationNotAllowed = "operation-not-allowed"
)

// ProviderError is a failure reported by the identity provider, carrying the
// provider-defined code string alongside its raw message.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// Session is a provider-issued proof of authentication. UID addresses the
// profile document; the token is opaque to this module (refresh is handled
// inside the provider client).
type Session struct {
	UID     string
	Email   string
	IDToken string
}

// SessionHandler receives session-change notifications. A nil session means
// no authenticated remote session exists.
type SessionHandler func(session *Session)

// IdentityProvider is the consumed contract of the remote identity service.
//
// OnSessionChange registers a handler and delivers the current session state
// to it as the first notification, then every subsequent transition (sign-in,
// sign-out, expiry). Each registration gets its own unsubscribe; handlers are
// invoked sequentially, never overlapping.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	SendPasswordReset(ctx context.Context, email string) error
	OnSessionChange(handler SessionHandler) (unsubscribe func())
}
