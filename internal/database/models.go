package database

import (
	"database/sql"
	"time"
)

// AuditEntry is one row of the detection log: the database twin of an
// audit-file record, queryable by operators and pruned on a schedule.
// Rows are never aggregated per user; this is a decision trail, not a
// reputation store.
type AuditEntry struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	Event          string `db:"event"`
	ChatID         int64  `db:"chat_id"`
	MessageID      int    `db:"message_id"`
	MediaGroupID   string `db:"media_group_id"`
	UserID         int64  `db:"user_id"`
	UserName       string `db:"user_name"`
	SenderChatID   int64  `db:"sender_chat_id"`
	SenderChatType string `db:"sender_chat_type"`

	Action  string        `db:"action"`
	Reason  string        `db:"reason"`
	Score   sql.NullInt64 `db:"score"`
	Signals string        `db:"signals"`

	Success     sql.NullBool `db:"success"`
	ErrorDetail string       `db:"error_detail"`
	Excerpt     string       `db:"excerpt"`
}
