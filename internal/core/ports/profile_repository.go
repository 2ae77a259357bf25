package ports

import (
	"context"

	"github.com/musha-views/session-store/internal/core/domain"
)

// ProfileRepository defines the interface for profile document persistence.
type ProfileRepository interface {
	// Get returns the profile document for the given user id, or
	// domain.ErrProfileNotFound when no document exists.
	Get(ctx context.Context, id string) (*domain.User, error)
	// Create writes a new profile document keyed by user.ID.
	Create(ctx context.Context, user *domain.User) error
	// Update applies the non-nil fields of the partial update to the
	// document with the given id.
	Update(ctx context.Context, id string, update domain.ProfileUpdate) error
}
