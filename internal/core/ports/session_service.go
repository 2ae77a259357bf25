package ports

import (
	"context"

	"github.com/musha-views/session-store/internal/core/domain"
)

// SessionService is the surface the UI layer drives. Boolean-returning
// actions report success; every failure is also recorded in the state's Err
// field and never escapes as an error value.
type SessionService interface {
	State() domain.State

	Login(ctx context.Context, email, password string) bool
	Signup(ctx context.Context, email, password, name string) bool
	Logout(ctx context.Context)
	ResetPassword(ctx context.Context, email string) bool
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) bool
	UpgradeToSeller(ctx context.Context) bool
	ToggleSellerMode(ctx context.Context) bool
	ContinueAsGuest()
	CheckAuth(ctx context.Context) bool

	SetUser(user *domain.User)
	SetHasSelectedRole(value bool)
	ClearError()
}
