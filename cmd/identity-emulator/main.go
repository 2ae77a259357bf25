// Command identity-emulator runs a local stand-in for the identity provider,
// serving the same JSON API the session module's identity client consumes.
package main

import (
	"github.com/musha-views/session-store/internal/emulator"
	"github.com/musha-views/session-store/internal/infrastructure/config"
	"github.com/musha-views/session-store/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	accounts := emulator.NewAccountStore(cfg.Emulator.AllowSignup)
	e := emulator.NewRouter(accounts, cfg.Emulator.JWTSecret, log)

	log.Info().Str("port", cfg.Emulator.Port).Msg("identity emulator listening")
	if err := e.Start(":" + cfg.Emulator.Port); err != nil {
		log.Fatal().Err(err).Msg("identity emulator stopped")
	}
}
