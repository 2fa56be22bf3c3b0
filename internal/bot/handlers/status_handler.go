package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStatusHandler returns a handler for the /status command. It reports
// process uptime, the active moderation settings, and detection-log
// counts for the last 24 hours.
func NewStatusHandler(deps HandlerDeps) bot.HandlerFunc {
	return statusHandler{deps}.Handle
}

// statusHandler processes the /status command using injected dependencies.
type statusHandler struct {
	deps HandlerDeps
}

func (h statusHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "status")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Status handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /status command",
		"chat_id", update.Message.Chat.ID, "user_id", update.Message.From.ID)

	since := time.Now().UTC().Add(-24 * time.Hour)

	var counts string
	entries, err := h.deps.Store.CountEntriesSince(ctx, since)
	if err != nil {
		log.ErrorContext(ctx, "Failed to count detection-log entries", "error", err)
		counts = "detection log: unavailable"
	} else {
		deletions, delErr := h.deps.Store.CountDeletionsSince(ctx, since)
		if delErr != nil {
			log.ErrorContext(ctx, "Failed to count deletions", "error", delErr)
			counts = fmt.Sprintf("last 24h: %d decisions, deletions unavailable", entries)
		} else {
			counts = fmt.Sprintf("last 24h: %d decisions, %d deletions", entries, deletions)
		}
	}

	mod := h.deps.Config.Moderation
	var sb strings.Builder
	fmt.Fprintf(&sb, "uptime: %s\n", time.Since(h.deps.StartedAt).Round(time.Second))
	if mod.TargetChatID != 0 {
		fmt.Fprintf(&sb, "target chat: %d\n", mod.TargetChatID)
	} else {
		sb.WriteString("target chat: all\n")
	}
	fmt.Fprintf(&sb, "ad score threshold: %d\n", mod.AdScoreThreshold)
	fmt.Fprintf(&sb, "delete channel messages: %t\n", mod.DeleteChannelMessages)
	sb.WriteString(counts)

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   sb.String(),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send status message", "error", err, "chat_id", update.Message.Chat.ID)
	}
}
