package service

import (
	"context"
	"errors"
	"testing"

	"github.com/musha-views/session-store/internal/core/domain"
	"github.com/musha-views/session-store/internal/core/ports"
)

func TestInitializeListener_InstallsProfileOnSession(t *testing.T) {
	store, identity, profiles, _ := newTestStore()
	profiles.docs["u1"] = &domain.User{ID: "u1", Name: "Ann", Email: "ann@example.com"}

	unsubscribe := store.InitializeListener()
	defer unsubscribe()

	identity.setSession(&ports.Session{UID: "u1"})

	st := store.State()
	if !st.IsAuthenticated || st.User == nil || st.User.ID != "u1" {
		t.Fatalf("listener did not install user: %+v", st)
	}
}

func TestInitializeListener_MissingProfileClearsUser(t *testing.T) {
	store, identity, profiles, _ := newTestStore()
	profiles.docs["u1"] = &domain.User{ID: "u1", Email: "ann@example.com"}

	unsubscribe := store.InitializeListener()
	defer unsubscribe()

	identity.setSession(&ports.Session{UID: "u1"})
	identity.setSession(&ports.Session{UID: "ghost"})

	st := store.State()
	if st.User != nil || st.IsAuthenticated {
		t.Fatalf("anomalous session must clear the user: %+v", st)
	}
}

func TestInitializeListener_FetchFailureClearsUser(t *testing.T) {
	store, identity, profiles, _ := newTestStore()
	unsubscribe := store.InitializeListener()
	defer unsubscribe()

	profiles.getErr = errors.New("permission denied")
	identity.setSession(&ports.Session{UID: "u1"})

	if st := store.State(); st.User != nil || st.IsAuthenticated {
		t.Fatalf("expected cleared user: %+v", st)
	}
}

func TestInitializeListener_SignOutClearsRealUser(t *testing.T) {
	store, identity, profiles, _ := newTestStore()
	profiles.docs["u1"] = &domain.User{ID: "u1", Email: "ann@example.com"}

	unsubscribe := store.InitializeListener()
	defer unsubscribe()

	identity.setSession(&ports.Session{UID: "u1"})
	identity.setSession(nil)

	st := store.State()
	if st.User != nil || st.IsAuthenticated || st.IsGuest {
		t.Fatalf("expected cleared session: %+v", st)
	}
}

func TestInitializeListener_SignOutPreservesGuest(t *testing.T) {
	store, identity, _, _ := newTestStore()
	store.ContinueAsGuest()

	unsubscribe := store.InitializeListener()
	defer unsubscribe()

	identity.setSession(nil)

	st := store.State()
	if !st.IsGuest || st.User == nil || st.User.ID != domain.GuestID {
		t.Fatalf("guest session must survive provider sign-out: %+v", st)
	}
}

func TestInitializeListener_UnsubscribeStopsUpdates(t *testing.T) {
	store, identity, profiles, _ := newTestStore()
	profiles.docs["u1"] = &domain.User{ID: "u1", Email: "ann@example.com"}

	unsubscribe := store.InitializeListener()
	unsubscribe()

	identity.setSession(&ports.Session{UID: "u1"})

	if st := store.State(); st.User != nil {
		t.Fatalf("unsubscribed listener must not mutate state: %+v", st)
	}
}

// The one-shot CheckAuth subscription and the standing listener must be
// independent: CheckAuth unsubscribing itself may not tear down the listener.
func TestInitializeListener_SurvivesCheckAuth(t *testing.T) {
	store, identity, profiles, _ := newTestStore()
	profiles.docs["u1"] = &domain.User{ID: "u1", Email: "ann@example.com"}

	unsubscribe := store.InitializeListener()
	defer unsubscribe()

	store.CheckAuth(context.Background())
	if n := identity.subscriberCount(); n != 1 {
		t.Fatalf("expected the standing listener to remain, have %d", n)
	}

	identity.setSession(&ports.Session{UID: "u1"})
	if st := store.State(); st.User == nil || st.User.ID != "u1" {
		t.Fatalf("listener stopped receiving after CheckAuth: %+v", st)
	}
}
