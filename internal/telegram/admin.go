package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ashmor/antiadbot/internal/moderation"
)

// memberAPI is the slice of the bot client the identity lookups need.
type memberAPI interface {
	GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error)
}

// AdminResolver answers admin-status questions with one getChatMember
// call per query. There is deliberately no caching: admin status can
// change at any time and a stale positive would exempt a demoted spammer.
type AdminResolver struct {
	api    memberAPI
	logger *slog.Logger
}

// NewAdminResolver creates an AdminResolver backed by the given bot
// client.
func NewAdminResolver(api memberAPI, logger *slog.Logger) *AdminResolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &AdminResolver{
		api:    api,
		logger: logger.With("component", "admin_resolver"),
	}
}

// IsAdmin reports whether the user is an administrator or the owner of
// the chat. A transport failure is returned as an error, distinct from a
// definitive "not admin", so callers choose their own fail-open or
// fail-closed behavior.
func (r *AdminResolver) IsAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	member, err := r.api.GetChatMember(ctx, &bot.GetChatMemberParams{ChatID: chatID, UserID: userID})
	if err != nil {
		return false, fmt.Errorf("failed to get chat member (chat %d, user %d): %w", chatID, userID, err)
	}

	switch member.Type {
	case models.ChatMemberTypeOwner, models.ChatMemberTypeAdministrator:
		return true, nil
	default:
		return false, nil
	}
}

// CheckDeleteCapability performs the one-time startup verification that
// the bot's own account can delete messages in the target chat. Its
// result is immutable for the process lifetime; a re-check requires a
// restart.
//
// Without a configured target chat there is no single chat to query, so
// the capability is assumed granted and per-chat failures surface later
// through the forbidden enforcement error class.
func CheckDeleteCapability(ctx context.Context, api memberAPI, targetChatID, botID int64, logger *slog.Logger) (moderation.Capability, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log := logger.With("component", "capability_check")

	if targetChatID == 0 {
		log.Info("No target chat configured; assuming delete rights")
		return moderation.Capability{CanDelete: true, Detail: "no target chat configured; delete rights not verified"}, nil
	}

	member, err := api.GetChatMember(ctx, &bot.GetChatMemberParams{ChatID: targetChatID, UserID: botID})
	if err != nil {
		return moderation.Capability{}, fmt.Errorf("failed to check bot membership in chat %d: %w", targetChatID, err)
	}

	switch member.Type {
	case models.ChatMemberTypeOwner:
		log.Info("Bot owns the target chat; delete rights granted", "chat_id", targetChatID)
		return moderation.Capability{CanDelete: true, Detail: "owner"}, nil
	case models.ChatMemberTypeAdministrator:
		if member.Administrator != nil && member.Administrator.CanDeleteMessages {
			log.Info("Bot is administrator with delete rights", "chat_id", targetChatID)
			return moderation.Capability{CanDelete: true, Detail: "administrator"}, nil
		}
		log.Warn("Bot is administrator without delete rights; moderation disabled", "chat_id", targetChatID)
		return moderation.Capability{CanDelete: false, Detail: "administrator without can_delete_messages"}, nil
	default:
		log.Warn("Bot is not an administrator of the target chat; moderation disabled",
			"chat_id", targetChatID, "member_type", member.Type)
		return moderation.Capability{CanDelete: false, Detail: "bot is not an administrator"}, nil
	}
}
