// Package identity implements the HTTP client for the identity provider's
// JSON API, including the in-process session-change stream consumed by the
// session store and its listener.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/musha-views/session-store/internal/core/ports"
)

const defaultTimeout = 15 * time.Second

// Config captures the settings required to reach the identity provider.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the identity provider over HTTP and tracks the current
// session locally. Session changes produced by this client (sign-in,
// sign-up, sign-out) are fanned out to subscribers; token refresh is handled
// provider-side and never surfaces here.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger

	mu      sync.Mutex
	session *ports.Session
	subs    map[int]ports.SessionHandler
	nextSub int

	// notifyMu serializes handler delivery so notifications never overlap.
	notifyMu sync.Mutex
}

var _ ports.IdentityProvider = (*Client)(nil)

func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		log:     log,
		subs:    make(map[int]ports.SessionHandler),
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	IDToken string `json:"id_token"`
}

type oobCodeRequest struct {
	RequestType string `json:"request_type"`
	Email       string `json:"email"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*ports.Session, error) {
	var resp sessionResponse
	err := c.post(ctx, "/v1/accounts:signInWithPassword", credentialsRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	sess := &ports.Session{UID: resp.UID, Email: resp.Email, IDToken: resp.IDToken}
	c.setSession(sess)
	return sess, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*ports.Session, error) {
	var resp sessionResponse
	err := c.post(ctx, "/v1/accounts:signUp", credentialsRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	sess := &ports.Session{UID: resp.UID, Email: resp.Email, IDToken: resp.IDToken}
	c.setSession(sess)
	return sess, nil
}

// SignOut revokes the current session remotely. The local session is cleared
// and subscribers notified even when the remote call fails.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	token := ""
	if c.session != nil {
		token = c.session.IDToken
	}
	c.mu.Unlock()

	var err error
	if token != "" {
		err = c.post(ctx, "/v1/accounts:signOut", map[string]string{"id_token": token}, nil)
	}
	c.setSession(nil)
	return err
}

func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	return c.post(ctx, "/v1/accounts:sendOobCode", oobCodeRequest{RequestType: "PASSWORD_RESET", Email: email}, nil)
}

// OnSessionChange registers a handler with its own unsubscribe. The current
// session state is delivered as the first notification; handlers across all
// subscribers are invoked sequentially.
func (c *Client) OnSessionChange(handler ports.SessionHandler) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = handler
	current := c.session
	c.mu.Unlock()

	go func() {
		c.notifyMu.Lock()
		defer c.notifyMu.Unlock()

		c.mu.Lock()
		_, alive := c.subs[id]
		c.mu.Unlock()
		if alive {
			handler(current)
		}
	}()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Client) setSession(sess *ports.Session) {
	c.mu.Lock()
	c.session = sess
	handlers := make([]ports.SessionHandler, 0, len(c.subs))
	for _, h := range c.subs {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	for _, h := range handlers {
		h(sess)
	}
}

// post sends a JSON request and decodes either the success body into out or
// the provider's error envelope into a ports.ProviderError.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("identity request encode: %w", err)
	}

	url := c.baseURL + path
	if c.apiKey != "" {
		url += "?key=" + c.apiKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("identity request build: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope errorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Error.Code == "" {
			c.log.Error().Int("status", resp.StatusCode).Str("path", path).Msg("identity provider returned malformed error")
			return fmt.Errorf("identity provider: unexpected status %d", resp.StatusCode)
		}
		return &ports.ProviderError{Code: envelope.Error.Code, Message: envelope.Error.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("identity response decode: %w", err)
	}
	return nil
}
