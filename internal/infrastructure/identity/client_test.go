package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/musha-views/session-store/internal/core/ports"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"}, zerolog.Nop())
	return client, srv
}

func TestClient_SignIn_Success(t *testing.T) {
	var gotPath, gotKey string
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"uid": "u1", "email": "ann@example.com", "id_token": "tok",
		})
	})

	sess, err := client.SignIn(context.Background(), "ann@example.com", "pw")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	if sess.UID != "u1" || sess.Email != "ann@example.com" || sess.IDToken != "tok" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if gotPath != "/v1/accounts:signInWithPassword" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("api key not forwarded: %q", gotKey)
	}
}

func TestClient_SignIn_ProviderError(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "wrong-password", "message": "wrong password"},
		})
	})

	_, err := client.SignIn(context.Background(), "ann@example.com", "bad")
	var pe *ports.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.Code != ports.CodeWrongPassword {
		t.Fatalf("unexpected code: %s", pe.Code)
	}
}

func TestClient_MalformedErrorBody(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	})

	_, err := client.SignIn(context.Background(), "a@b.com", "pw")
	if err == nil {
		t.Fatalf("expected error")
	}
	var pe *ports.ProviderError
	if errors.As(err, &pe) {
		t.Fatalf("malformed body must not produce a ProviderError: %v", err)
	}
}

func TestClient_SessionChangeNotifications(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"uid": "u1", "id_token": "tok"})
	})

	var mu sync.Mutex
	var got []*ports.Session
	done := make(chan struct{}, 8)
	unsubscribe := client.OnSessionChange(func(s *ports.Session) {
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
		done <- struct{}{}
	})
	defer unsubscribe()

	// Initial notification carries the current (absent) session.
	waitNotify(t, done)
	mu.Lock()
	if len(got) != 1 || got[0] != nil {
		mu.Unlock()
		t.Fatalf("expected initial nil notification, got %+v", got)
	}
	mu.Unlock()

	if _, err := client.SignIn(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	waitNotify(t, done)
	mu.Lock()
	if len(got) != 2 || got[1] == nil || got[1].UID != "u1" {
		mu.Unlock()
		t.Fatalf("expected session notification, got %+v", got)
	}
	mu.Unlock()

	if err := client.SignOut(context.Background()); err != nil {
		t.Fatalf("sign out failed: %v", err)
	}
	waitNotify(t, done)
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 3 || got[2] != nil {
		t.Fatalf("expected nil notification after sign-out, got %+v", got)
	}
}

func TestClient_UnsubscribeStopsNotifications(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"uid": "u1", "id_token": "tok"})
	})

	count := 0
	done := make(chan struct{}, 8)
	unsubscribe := client.OnSessionChange(func(*ports.Session) {
		count++
		done <- struct{}{}
	})
	waitNotify(t, done)
	unsubscribe()

	if _, err := client.SignIn(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	select {
	case <-done:
		t.Fatalf("handler called after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
	if count != 1 {
		t.Fatalf("expected exactly the initial notification, got %d", count)
	}
}

func TestClient_SignOutWithoutSessionSkipsRemoteCall(t *testing.T) {
	calls := 0
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	if err := client.SignOut(context.Background()); err != nil {
		t.Fatalf("sign out failed: %v", err)
	}
	if calls != 0 {
		t.Fatalf("no session means no revoke call, got %d", calls)
	}
}

func waitNotify(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for notification")
	}
}
