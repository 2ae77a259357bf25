package emulator

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(accounts *AccountStore, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("mushaviews_identity_emulator"))

	handler := NewHandler(accounts, jwtSecret, log)

	// --- Identity provider API ---
	e.POST("/v1/accounts:signUp", handler.SignUp)
	e.POST("/v1/accounts:signInWithPassword", handler.SignIn)
	e.POST("/v1/accounts:signOut", handler.SignOut)
	e.POST("/v1/accounts:sendOobCode", handler.SendOobCode)

	// --- Operational endpoints ---
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
