package handlers

import (
	"log/slog"
	"time"

	"github.com/ashmor/antiadbot/internal/audit"
	"github.com/ashmor/antiadbot/internal/config"
	"github.com/ashmor/antiadbot/internal/database"
	"github.com/ashmor/antiadbot/internal/moderation"
)

// HandlerDeps provides dependencies for Telegram message and command
// handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    database.Store
	Audit    *audit.Writer
	Pipeline *moderation.Pipeline

	// StartedAt is the process start time, reported by /status.
	StartedAt time.Time
}
