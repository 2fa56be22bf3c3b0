package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/go-telegram/bot"

	"github.com/ashmor/antiadbot/internal/audit"
	"github.com/ashmor/antiadbot/internal/moderation"
)

// messageDeleter is the slice of the bot client enforcement needs.
type messageDeleter interface {
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
}

// enforceDelete performs one delete attempt for a delete decision and
// records its outcome. There are no retries: a message that survives one
// failed attempt is caught by the audit trail, not by hammering the API.
func (h moderationHandler) enforceDelete(ctx context.Context, deleter messageDeleter, msg *moderation.Message, decision *moderation.Decision) {
	log := h.deps.Logger.With("component", "enforcer")

	ok, err := deleter.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    msg.ChatID,
		MessageID: msg.MessageID,
	})

	success := err == nil && ok
	var detail string

	switch {
	case err == nil && ok:
		log.DebugContext(ctx, "Message deleted",
			"chat_id", msg.ChatID, "message_id", msg.MessageID, "reason", decision.Reason)
	case err == nil:
		detail = "delete returned false"
		log.WarnContext(ctx, "Delete request was not applied",
			"chat_id", msg.ChatID, "message_id", msg.MessageID, "reason", decision.Reason)
	case errors.Is(err, bot.ErrorForbidden):
		// Permissions changed after the startup capability check. This
		// needs operator attention, so it logs at error level.
		detail = err.Error()
		log.ErrorContext(ctx, "Delete forbidden; bot has lost delete rights",
			"chat_id", msg.ChatID, "message_id", msg.MessageID, "reason", decision.Reason, "error", err)
	case errors.Is(err, bot.ErrorBadRequest):
		// Message already deleted or otherwise not deletable. Benign.
		detail = err.Error()
		log.DebugContext(ctx, "Delete rejected as bad request; message likely already gone",
			"chat_id", msg.ChatID, "message_id", msg.MessageID, "reason", decision.Reason, "error", err)
	default:
		detail = err.Error()
		log.ErrorContext(ctx, "Delete attempt failed",
			"chat_id", msg.ChatID, "message_id", msg.MessageID, "reason", decision.Reason, "error", err)
	}

	rec := audit.Record{
		Time:         time.Now().UTC(),
		Event:        audit.EventEnforcement,
		ChatID:       msg.ChatID,
		MessageID:    msg.MessageID,
		MediaGroupID: msg.MediaGroupID,
		UserID:       msg.UserID,
		UserName:     msg.UserName,
		Action:       string(decision.Action),
		Reason:       decision.Reason,
		Success:      &success,
		Error:        detail,
	}
	if msg.SenderChat != nil {
		rec.SenderChatID = msg.SenderChat.ID
		rec.SenderChatType = msg.SenderChat.Type
	}

	h.deps.Audit.Write(rec)
	h.saveEntry(ctx, rec)
}
