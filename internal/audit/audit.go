// Package audit writes the append-only moderation audit trail. Each record
// is one UTF-8 line of fixed-order key=value fields; the field order is a
// persisted contract parsed by downstream tooling, so new fields may only
// be appended and existing fields are never reordered or removed.
package audit

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Record events. A decision record is written for every terminal decision;
// an enforcement record is written per delete attempt with its outcome.
const (
	EventDecision    = "decision"
	EventEnforcement = "enforcement"
)

// maxTextRunes caps the free-text excerpt stored per record.
const maxTextRunes = 500

// Record is one audit trail entry.
type Record struct {
	Time           time.Time
	Event          string
	ChatID         int64
	MessageID      int
	MediaGroupID   string
	UserID         int64
	UserName       string
	SenderChatID   int64
	SenderChatType string
	Action         string
	Reason         string
	Score          *int
	Signals        []string
	Success        *bool
	Error          string
	Text           string
}

// Line renders the record in the stable on-disk format. Free-text fields
// are quoted; absent optional fields render as "-".
func (r Record) Line() string {
	var b strings.Builder
	b.WriteString("time=")
	b.WriteString(r.Time.UTC().Format(time.RFC3339))
	b.WriteString(" event=")
	b.WriteString(orDash(r.Event))
	fmt.Fprintf(&b, " chat_id=%d message_id=%d", r.ChatID, r.MessageID)
	b.WriteString(" media_group_id=")
	b.WriteString(orDash(r.MediaGroupID))
	b.WriteString(" user_id=")
	b.WriteString(orDashInt64(r.UserID))
	b.WriteString(" user_name=")
	b.WriteString(quotedOrDash(r.UserName))
	b.WriteString(" sender_chat_id=")
	b.WriteString(orDashInt64(r.SenderChatID))
	b.WriteString(" sender_chat_type=")
	b.WriteString(orDash(r.SenderChatType))
	b.WriteString(" action=")
	b.WriteString(orDash(r.Action))
	b.WriteString(" reason=")
	b.WriteString(orDash(r.Reason))
	b.WriteString(" score=")
	if r.Score != nil {
		b.WriteString(strconv.Itoa(*r.Score))
	} else {
		b.WriteString("-")
	}
	b.WriteString(" signals=")
	if len(r.Signals) > 0 {
		b.WriteString(strings.Join(r.Signals, ","))
	} else {
		b.WriteString("-")
	}
	b.WriteString(" success=")
	if r.Success != nil {
		b.WriteString(strconv.FormatBool(*r.Success))
	} else {
		b.WriteString("-")
	}
	b.WriteString(" error=")
	b.WriteString(quotedOrDash(r.Error))
	b.WriteString(" text=")
	b.WriteString(strconv.Quote(TruncateText(r.Text)))
	return b.String()
}

// TruncateText collapses newlines to spaces and caps the excerpt at
// maxTextRunes runes.
func TruncateText(text string) string {
	text = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
	runes := []rune(text)
	if len(runes) > maxTextRunes {
		return string(runes[:maxTextRunes])
	}
	return text
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func orDashInt64(v int64) string {
	if v == 0 {
		return "-"
	}
	return strconv.FormatInt(v, 10)
}

func quotedOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return strconv.Quote(s)
}

// Writer appends records to the audit file. Writes are serialized so
// concurrent handlers never interleave partial lines, and failures are
// best-effort: logged, never propagated to message processing.
type Writer struct {
	mu     sync.Mutex
	file   *os.File
	logger *slog.Logger
}

// NewWriter opens (or creates) the audit file for appending.
func NewWriter(path string, logger *slog.Logger) (*Writer, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit file: %w", err)
	}
	return &Writer{
		file:   f,
		logger: logger.With("component", "audit"),
	}, nil
}

// Write appends one record as a single atomic line. Errors are logged and
// swallowed; a failing audit file must never block moderation.
func (w *Writer) Write(rec Record) {
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	line := rec.Line() + "\n"

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.file.WriteString(line); err != nil {
		w.logger.Error("Failed to append audit record",
			"chat_id", rec.ChatID,
			"message_id", rec.MessageID,
			"reason", rec.Reason,
			"error", err)
	}
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close audit file: %w", err)
	}
	return nil
}
