package domain

import (
	"testing"
	"time"
)

func TestNewUser_NormalizesEmail(t *testing.T) {
	u := NewUser("u1", "Ann", "Ann@Example.COM", time.Now())
	if u.Email != "ann@example.com" {
		t.Fatalf("expected lowercased email, got %q", u.Email)
	}
	if u.IsSeller || u.SellerModeActive {
		t.Fatalf("new users must start as buyers: %+v", u)
	}
}

func TestNewGuestUser(t *testing.T) {
	g := NewGuestUser(time.Now())
	if !g.IsGuest() {
		t.Fatalf("expected guest sentinel id, got %q", g.ID)
	}
	if g.Email != "" || g.IsSeller || g.SellerModeActive {
		t.Fatalf("unexpected guest fields: %+v", g)
	}
}

func TestProfileUpdate_Validate(t *testing.T) {
	seller := &User{ID: "u1", IsSeller: true}
	buyer := &User{ID: "u2"}

	f, tr := false, true

	if err := (ProfileUpdate{IsSeller: &f}).Validate(seller); err != ErrSellerDowngrade {
		t.Fatalf("expected ErrSellerDowngrade, got %v", err)
	}
	if err := (ProfileUpdate{SellerModeActive: &tr}).Validate(buyer); err != ErrNotSeller {
		t.Fatalf("expected ErrNotSeller, got %v", err)
	}
	// Upgrading and activating in one update is allowed.
	if err := (ProfileUpdate{IsSeller: &tr, SellerModeActive: &tr}).Validate(buyer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (ProfileUpdate{SellerModeActive: &tr}).Validate(seller); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProfileUpdate_ApplyTo(t *testing.T) {
	u := User{ID: "u1", Name: "Ann", Email: "ann@example.com"}
	name := "Annabel"
	email := "New@Example.com"

	merged := ProfileUpdate{Name: &name, Email: &email}.ApplyTo(u)
	if merged.Name != "Annabel" || merged.Email != "new@example.com" {
		t.Fatalf("unexpected merge: %+v", merged)
	}
	if u.Name != "Ann" {
		t.Fatalf("ApplyTo must not mutate its input")
	}

	if empty := (ProfileUpdate{}).ApplyTo(u); empty != u {
		t.Fatalf("empty update must be identity: %+v", empty)
	}
}
