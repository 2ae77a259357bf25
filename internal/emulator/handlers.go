package emulator

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/musha-views/session-store/internal/core/ports"
)

const tokenTTL = time.Hour

// Handler serves the identity provider endpoints.
type Handler struct {
	accounts  *AccountStore
	jwtSecret string
	log       zerolog.Logger
}

func NewHandler(accounts *AccountStore, jwtSecret string, log zerolog.Logger) *Handler {
	return &Handler{accounts: accounts, jwtSecret: jwtSecret, log: log}
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	IDToken string `json:"id_token"`
}

type oobCodeRequest struct {
	RequestType string `json:"request_type" validate:"required,oneof=PASSWORD_RESET"`
	Email       string `json:"email" validate:"required,email"`
}

type signOutRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func fault(c echo.Context, f *Fault) error {
	return c.JSON(f.Status, errorEnvelope{Error: errorBody{Code: f.Code, Message: f.Message}})
}

func invalidEmail(c echo.Context) error {
	return fault(c, &Fault{Code: ports.CodeInvalidEmail, Message: "email address is malformed", Status: http.StatusBadRequest})
}

// SignUp handles POST /v1/accounts:signUp.
func (h *Handler) SignUp(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorEnvelope{Error: errorBody{Code: "invalid-payload", Message: "invalid payload"}})
	}
	if err := c.Validate(&req); err != nil {
		return invalidEmail(c)
	}

	account, f := h.accounts.SignUp(req.Email, req.Password)
	if f != nil {
		return fault(c, f)
	}

	token, err := h.issueToken(account)
	if err != nil {
		h.log.Error().Err(err).Msg("token issue failed")
		return c.JSON(http.StatusInternalServerError, errorEnvelope{Error: errorBody{Code: "internal", Message: "token issue failed"}})
	}

	return c.JSON(http.StatusCreated, sessionResponse{UID: account.UID, Email: account.Email, IDToken: token})
}

// SignIn handles POST /v1/accounts:signInWithPassword.
func (h *Handler) SignIn(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorEnvelope{Error: errorBody{Code: "invalid-payload", Message: "invalid payload"}})
	}
	if err := c.Validate(&req); err != nil {
		return invalidEmail(c)
	}

	account, f := h.accounts.SignIn(req.Email, req.Password)
	if f != nil {
		return fault(c, f)
	}

	token, err := h.issueToken(account)
	if err != nil {
		h.log.Error().Err(err).Msg("token issue failed")
		return c.JSON(http.StatusInternalServerError, errorEnvelope{Error: errorBody{Code: "internal", Message: "token issue failed"}})
	}

	return c.JSON(http.StatusOK, sessionResponse{UID: account.UID, Email: account.Email, IDToken: token})
}

// SignOut handles POST /v1/accounts:signOut. The emulator only checks that
// the token parses and verifies; it keeps no server-side session list.
func (h *Handler) SignOut(c echo.Context) error {
	var req signOutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorEnvelope{Error: errorBody{Code: "invalid-payload", Message: "invalid payload"}})
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(req.IDToken, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(h.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return fault(c, &Fault{Code: "invalid-token", Message: "id token is invalid or expired", Status: http.StatusUnauthorized})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// SendOobCode handles POST /v1/accounts:sendOobCode (password reset). The
// emulator logs the dispatch instead of sending mail.
func (h *Handler) SendOobCode(c echo.Context) error {
	var req oobCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorEnvelope{Error: errorBody{Code: "invalid-payload", Message: "invalid payload"}})
	}
	if err := c.Validate(&req); err != nil {
		return invalidEmail(c)
	}

	if _, ok := h.accounts.Lookup(req.Email); !ok {
		return fault(c, &Fault{Code: ports.CodeUserNotFound, Message: "no account for email", Status: http.StatusNotFound})
	}

	h.log.Info().Str("email", req.Email).Msg("password reset email dispatched")
	return c.JSON(http.StatusOK, map[string]string{"status": "sent"})
}

func (h *Handler) issueToken(account *Account) (string, error) {
	claims := jwt.MapClaims{
		"uid":   account.UID,
		"email": account.Email,
		"exp":   time.Now().Add(tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(h.jwtSecret))
}
