// Package tasks implements the scheduled maintenance tasks of the
// moderation bot: database maintenance and detection-log pruning.
package tasks

import (
	"log/slog"

	"github.com/ashmor/antiadbot/internal/config"
	"github.com/ashmor/antiadbot/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
}
