// Package env provides a structure for managing application-wide dependencies.
package env

import (
	"log/slog"

	"github.com/KobaLuck/recipe-bot/internal/config"
	"github.com/KobaLuck/recipe-bot/internal/creds"
	"github.com/KobaLuck/recipe-bot/internal/engine"
	"github.com/KobaLuck/recipe-bot/internal/log"
	"github.com/KobaLuck/recipe-bot/internal/session"
)

type Env struct {
	Logger      *slog.Logger
	Config      config.Config
	Engine      *engine.Engine
	Sessions    *session.Store
	Credentials creds.Store
}

func New(logger *slog.Logger) *Env {
	if logger == nil {
		logger = log.NullLogger()
	}
	return &Env{Logger: logger}
}
