package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the detection-log database operations. Methods accept a
// context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveAuditEntry inserts one detection-log row.
	SaveAuditEntry(ctx context.Context, entry *AuditEntry) error

	// CountEntriesSince counts detection-log rows created at or after the
	// given time.
	CountEntriesSince(ctx context.Context, since time.Time) (int64, error)

	// CountDeletionsSince counts delete decisions created at or after the
	// given time.
	CountDeletionsSince(ctx context.Context, since time.Time) (int64, error)

	// PruneEntriesBefore deletes detection-log rows created before the
	// given time and reports how many were removed.
	PruneEntriesBefore(ctx context.Context, before time.Time) (int64, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore implements Store on top of sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by a connected sqlx.DB.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) SaveAuditEntry(ctx context.Context, entry *AuditEntry) error {
	if entry == nil {
		return fmt.Errorf("cannot save nil audit entry")
	}
	if entry.ChatID == 0 {
		return fmt.Errorf("audit entry must have a non-zero chat_id")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
        INSERT INTO audit_entries (
            created_at, event, chat_id, message_id, media_group_id,
            user_id, user_name, sender_chat_id, sender_chat_type,
            action, reason, score, signals, success, error_detail, excerpt
        ) VALUES (
            :created_at, :event, :chat_id, :message_id, :media_group_id,
            :user_id, :user_name, :sender_chat_id, :sender_chat_type,
            :action, :reason, :score, :signals, :success, :error_detail, :excerpt
        );
    `

	result, err := s.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving audit entry",
			"chat_id", entry.ChatID, "message_id", entry.MessageID, "error", err)
		return fmt.Errorf("failed to save audit entry (chat %d, message %d): %w",
			entry.ChatID, entry.MessageID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		//nolint:gosec // integer overflow conversion is acceptable here
		entry.ID = uint(id)
	}

	s.logger.DebugContext(ctx, "Audit entry saved",
		"chat_id", entry.ChatID, "message_id", entry.MessageID, "reason", entry.Reason)
	return nil
}

func (s *sqlxStore) CountEntriesSince(ctx context.Context, since time.Time) (int64, error) {
	return s.countWhere(ctx, `SELECT COUNT(*) FROM audit_entries WHERE created_at >= ?`, since)
}

func (s *sqlxStore) CountDeletionsSince(ctx context.Context, since time.Time) (int64, error) {
	return s.countWhere(ctx,
		`SELECT COUNT(*) FROM audit_entries WHERE created_at >= ? AND event = 'decision' AND action = 'delete'`,
		since)
}

func (s *sqlxStore) countWhere(ctx context.Context, query string, since time.Time) (int64, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	var count int64
	err := s.db.GetContext(ctx, &count, query, since)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while counting audit entries", "error", err)
		return 0, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error counting audit entries", "error", err)
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return count, nil
}

func (s *sqlxStore) PruneEntriesBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM audit_entries WHERE created_at < ?`, before)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error pruning audit entries", "before", before, "error", err)
		return 0, fmt.Errorf("failed to prune audit entries: %w", err)
	}

	pruned, _ := result.RowsAffected()
	s.logger.InfoContext(ctx, "Pruned audit entries", "before", before, "count", pruned)
	return pruned, nil
}

// RunSQLMaintenance executes VACUUM, which SQLite requires to run outside
// a transaction.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed")
	return nil
}
