package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ashmor/antiadbot/internal/audit"
	"github.com/ashmor/antiadbot/internal/database"
	"github.com/ashmor/antiadbot/internal/moderation"
)

// NewModerationHandler returns the default handler that evaluates every
// inbound group message against the policy chain and enforces the
// resulting decision.
func NewModerationHandler(deps HandlerDeps) bot.HandlerFunc {
	return moderationHandler{deps}.Handle
}

// moderationHandler processes non-command message updates using injected
// dependencies.
type moderationHandler struct {
	deps HandlerDeps
}

func (h moderationHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "moderation")

	msg := update.Message
	if msg == nil {
		log.DebugContext(ctx, "Skipping non-message update", "update_id", update.ID)
		return
	}

	// Moderation applies to group chats only. Private conversations and
	// channel feeds are out of jurisdiction.
	if msg.Chat.Type != models.ChatTypeGroup && msg.Chat.Type != models.ChatTypeSupergroup {
		log.DebugContext(ctx, "Skipping message outside group chat",
			"chat_id", msg.Chat.ID, "chat_type", msg.Chat.Type)
		return
	}

	if botInfo := h.deps.Config.Telegram.BotInfo; botInfo != nil && msg.From != nil && msg.From.ID == botInfo.ID {
		return
	}

	snapshot := snapshotMessage(msg)

	decision := h.deps.Pipeline.Evaluate(ctx, snapshot)
	if decision == nil {
		// Out of scope; no side effects, not even an audit record.
		return
	}

	h.recordDecision(ctx, snapshot, decision)

	if decision.Action == moderation.ActionDelete {
		log.InfoContext(ctx, "Deleting message",
			"chat_id", snapshot.ChatID,
			"message_id", snapshot.MessageID,
			"user_id", snapshot.UserID,
			"reason", decision.Reason)
		h.enforceDelete(ctx, b, snapshot, decision)
	}
}

// snapshotMessage converts a platform message into the immutable snapshot
// the pipeline evaluates.
func snapshotMessage(msg *models.Message) *moderation.Message {
	snapshot := &moderation.Message{
		ChatID:          msg.Chat.ID,
		MessageID:       msg.ID,
		Text:            msg.Text,
		Caption:         msg.Caption,
		Entities:        convertEntities(msg.Entities),
		CaptionEntities: convertEntities(msg.CaptionEntities),
		MediaGroupID:    msg.MediaGroupID,
	}

	if msg.From != nil {
		snapshot.UserID = msg.From.ID
		snapshot.UserName = msg.From.Username
	}
	if msg.SenderChat != nil {
		snapshot.SenderChat = &moderation.SenderChat{
			ID:   msg.SenderChat.ID,
			Type: string(msg.SenderChat.Type),
		}
	}

	switch {
	case len(msg.Photo) > 0:
		snapshot.Media = &moderation.Media{Kind: moderation.MediaPhoto}
	case msg.Video != nil:
		snapshot.Media = &moderation.Media{Kind: moderation.MediaVideo}
	case msg.Document != nil:
		snapshot.Media = &moderation.Media{Kind: moderation.MediaDocument, MIME: msg.Document.MimeType}
	}

	return snapshot
}

func convertEntities(entities []models.MessageEntity) []moderation.Entity {
	if len(entities) == 0 {
		return nil
	}
	converted := make([]moderation.Entity, 0, len(entities))
	for _, e := range entities {
		converted = append(converted, moderation.Entity{
			Kind:   string(e.Type),
			Offset: e.Offset,
			Length: e.Length,
		})
	}
	return converted
}

// recordDecision writes the decision to both audit sinks. The file is the
// durable trail; the database row makes the trail queryable. Either sink
// failing must not affect enforcement.
func (h moderationHandler) recordDecision(ctx context.Context, msg *moderation.Message, decision *moderation.Decision) {
	text, _ := moderation.ExtractContent(msg)

	rec := audit.Record{
		Time:         time.Now().UTC(),
		Event:        audit.EventDecision,
		ChatID:       msg.ChatID,
		MessageID:    msg.MessageID,
		MediaGroupID: msg.MediaGroupID,
		UserID:       msg.UserID,
		UserName:     msg.UserName,
		Action:       string(decision.Action),
		Reason:       decision.Reason,
		Text:         text,
	}
	if msg.SenderChat != nil {
		rec.SenderChatID = msg.SenderChat.ID
		rec.SenderChatType = msg.SenderChat.Type
	}
	if decision.Scoring != nil {
		score := decision.Scoring.Score
		rec.Score = &score
		rec.Signals = decision.Scoring.Reasons
	}

	h.deps.Audit.Write(rec)
	h.saveEntry(ctx, rec)
}

// saveEntry mirrors an audit record into the detection-log database,
// best effort.
func (h moderationHandler) saveEntry(ctx context.Context, rec audit.Record) {
	entry := &database.AuditEntry{
		CreatedAt:      rec.Time,
		Event:          rec.Event,
		ChatID:         rec.ChatID,
		MessageID:      rec.MessageID,
		MediaGroupID:   rec.MediaGroupID,
		UserID:         rec.UserID,
		UserName:       rec.UserName,
		SenderChatID:   rec.SenderChatID,
		SenderChatType: rec.SenderChatType,
		Action:         rec.Action,
		Reason:         rec.Reason,
		Signals:        strings.Join(rec.Signals, ","),
		ErrorDetail:    rec.Error,
		Excerpt:        audit.TruncateText(rec.Text),
	}
	if rec.Score != nil {
		entry.Score.Int64 = int64(*rec.Score)
		entry.Score.Valid = true
	}
	if rec.Success != nil {
		entry.Success.Bool = *rec.Success
		entry.Success.Valid = true
	}

	if err := h.deps.Store.SaveAuditEntry(ctx, entry); err != nil {
		h.deps.Logger.WarnContext(ctx, "Failed to save detection-log entry",
			"chat_id", rec.ChatID, "message_id", rec.MessageID, "error", err)
	}
}
