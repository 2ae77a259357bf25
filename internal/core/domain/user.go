package domain

import (
	"errors"
	"strings"
	"time"
)

// GuestID is the sentinel identifier of the anonymous pseudo-account.
// Guest sessions exist only on the device; the identity provider and the
// profile collection never see them.
const GuestID = "guest"

var ErrNotAuthenticated = errors.New("user not authenticated")
var ErrGuestProfileImmutable = errors.New("cannot update guest profile")
var ErrGuestNotSeller = errors.New("guests cannot become sellers")
var ErrNotSeller = errors.New("user is not a seller")
var ErrSellerDowngrade = errors.New("seller status cannot be removed")
var ErrProfileNotFound = errors.New("user profile not found")
var ErrProfileExists = errors.New("user profile already exists")
var ErrSnapshotNotFound = errors.New("session snapshot not found")

// User is the denormalized profile document kept per authenticated account.
type User struct {
	ID               string    `json:"id" bson:"_id"`
	Name             string    `json:"name" bson:"name"`
	Email            string    `json:"email" bson:"email"`
	IsSeller         bool      `json:"is_seller" bson:"is_seller"`
	SellerModeActive bool      `json:"seller_mode_active" bson:"seller_mode_active"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
}

// IsGuest reports whether this user is the anonymous pseudo-account.
func (u *User) IsGuest() bool {
	return u != nil && u.ID == GuestID
}

// NewUser builds a fresh buyer profile for a newly registered account.
// The email is normalized to lowercase before it is ever stored.
func NewUser(id, name, email string, now time.Time) *User {
	return &User{
		ID:        id,
		Name:      name,
		Email:     strings.ToLower(email),
		CreatedAt: now.UTC(),
	}
}

// NewGuestUser builds the guest pseudo-account installed by guest mode.
func NewGuestUser(now time.Time) *User {
	return &User{
		ID:        GuestID,
		Name:      "Guest",
		CreatedAt: now.UTC(),
	}
}

// ProfileUpdate is a partial update to a profile document. Nil fields are
// left untouched, both remotely and in the in-memory user.
type ProfileUpdate struct {
	Name             *string
	Email            *string
	IsSeller         *bool
	SellerModeActive *bool
}

// IsEmpty reports whether the update carries no changes at all.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.IsSeller == nil && p.SellerModeActive == nil
}

// Validate checks the update against the seller invariants of the current
// user: IsSeller is monotonic (never reset to false), and SellerModeActive
// may only be true for sellers.
func (p ProfileUpdate) Validate(current *User) error {
	if p.IsSeller != nil && !*p.IsSeller && current.IsSeller {
		return ErrSellerDowngrade
	}
	seller := current.IsSeller
	if p.IsSeller != nil {
		seller = *p.IsSeller
	}
	if p.SellerModeActive != nil && *p.SellerModeActive && !seller {
		return ErrNotSeller
	}
	return nil
}

// ApplyTo merges the update into a copy of the given user and returns it.
func (p ProfileUpdate) ApplyTo(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = strings.ToLower(*p.Email)
	}
	if p.IsSeller != nil {
		u.IsSeller = *p.IsSeller
	}
	if p.SellerModeActive != nil {
		u.SellerModeActive = *p.SellerModeActive
	}
	return u
}
