// Package emulator implements a local, in-memory stand-in for the identity
// provider's JSON API, used for development and integration testing of the
// session module. Accounts live for the lifetime of the process.
package emulator

import (
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/musha-views/session-store/internal/core/ports"
)

const (
	minPasswordLength = 6
	maxFailedAttempts = 5
)

// Fault is a provider-level failure carrying the code string clients map to
// user-facing messages, plus the HTTP status it is served with.
type Fault struct {
	Code    string
	Message string
	Status  int
}

func (f *Fault) Error() string { return f.Code + ": " + f.Message }

// Account is a registered identity, password stored as a bcrypt hash.
type Account struct {
	UID          string
	Email        string
	PasswordHash []byte
	Disabled     bool
}

// AccountStore holds emulator accounts in memory and enforces the same
// failure modes the real provider reports: duplicate emails, unknown users,
// wrong passwords, disabled accounts, weak passwords, and a consecutive
// failed-attempt limit per email.
type AccountStore struct {
	mu          sync.Mutex
	byEmail     map[string]*Account
	failed      map[string]int
	allowSignup bool
}

func NewAccountStore(allowSignup bool) *AccountStore {
	return &AccountStore{
		byEmail:     make(map[string]*Account),
		failed:      make(map[string]int),
		allowSignup: allowSignup,
	}
}

func (s *AccountStore) SignUp(email, password string) (*Account, *Fault) {
	email = strings.ToLower(strings.TrimSpace(email))

	if !s.allowSignup {
		return nil, &Fault{Code: ports.CodeOperationNotAllowed, Message: "password sign-up is disabled", Status: http.StatusBadRequest}
	}
	if len(password) < minPasswordLength {
		return nil, &Fault{Code: ports.CodeWeakPassword, Message: "password is too short", Status: http.StatusBadRequest}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, &Fault{Code: "internal", Message: "could not hash password", Status: http.StatusInternalServerError}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return nil, &Fault{Code: ports.CodeEmailAlreadyInUse, Message: "email is already registered", Status: http.StatusConflict}
	}

	account := &Account{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}
	s.byEmail[email] = account
	return account, nil
}

func (s *AccountStore) SignIn(email, password string) (*Account, *Fault) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.byEmail[email]
	if !ok {
		return nil, &Fault{Code: ports.CodeUserNotFound, Message: "no account for email", Status: http.StatusNotFound}
	}
	if account.Disabled {
		return nil, &Fault{Code: ports.CodeUserDisabled, Message: "account is disabled", Status: http.StatusForbidden}
	}
	if s.failed[email] >= maxFailedAttempts {
		return nil, &Fault{Code: ports.CodeTooManyRequests, Message: "too many failed attempts", Status: http.StatusTooManyRequests}
	}

	if bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)) != nil {
		s.failed[email]++
		return nil, &Fault{Code: ports.CodeWrongPassword, Message: "wrong password", Status: http.StatusUnauthorized}
	}

	delete(s.failed, email)
	return account, nil
}

// Lookup returns the account for an email, if registered.
func (s *AccountStore) Lookup(email string) (*Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.byEmail[strings.ToLower(email)]
	return account, ok
}

// Disable marks an account disabled; subsequent sign-ins fail with the
// user-disabled code. Exposed for test scenarios.
func (s *AccountStore) Disable(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account, ok := s.byEmail[strings.ToLower(email)]; ok {
		account.Disabled = true
	}
}
