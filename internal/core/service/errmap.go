package service

import (
	"errors"

	"github.com/musha-views/session-store/internal/core/ports"
)

// Per-action fallback messages, used when the provider reports an
// unrecognized code with no message of its own, or when the failure did not
// come from the provider at all (network, document store).
const (
	loginFallback     = "Failed to login"
	signupFallback    = "Failed to sign up"
	logoutFallback    = "Failed to logout"
	resetFallback     = "Failed to reset password"
	updateFallback    = "Failed to update profile"
	upgradeFallback   = "Failed to upgrade to seller"
	toggleFallback    = "Failed to toggle seller mode"
	checkAuthFallback = "Failed to check authentication"
)

var signInMessages = map[string]string{
	ports.CodeUserNotFound:    "No account found with this email address",
	ports.CodeWrongPassword:   "Incorrect password",
	ports.CodeInvalidEmail:    "Invalid email address",
	ports.CodeUserDisabled:    "This account has been disabled",
	ports.CodeTooManyRequests: "Too many failed attempts. Please try again later",
}

var signUpMessages = map[string]string{
	ports.CodeEmailAlreadyInUse:   "An account with this email already exists",
	ports.CodeInvalidEmail:        "Invalid email address",
	ports.CodeWeakPassword:        "Password should be at least 6 characters",
	ports.CodeOperationNotAllowed: "Email/password accounts are not enabled",
}

var resetMessages = map[string]string{
	ports.CodeUserNotFound: "No account found with this email address",
	ports.CodeInvalidEmail: "Invalid email address",
}

// mapProviderError converts a failure into the human-readable message stored
// in the state's Err field. Known provider codes map to fixed messages;
// unknown codes fall back to the provider's raw message, then to the action
// fallback. Non-provider errors always get the fallback so that transport
// internals never leak into the UI.
func mapProviderError(err error, table map[string]string, fallback string) string {
	var pe *ports.ProviderError
	if errors.As(err, &pe) {
		if msg, ok := table[pe.Code]; ok {
			return msg
		}
		if pe.Message != "" {
			return pe.Message
		}
	}
	return fallback
}
