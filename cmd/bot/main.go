// Package main contains the entrypoint for the anti-advertisement
// moderation bot.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ashmor/antiadbot/internal/audit"
	"github.com/ashmor/antiadbot/internal/bot"
	"github.com/ashmor/antiadbot/internal/bot/handlers"
	"github.com/ashmor/antiadbot/internal/bot/tasks"
	"github.com/ashmor/antiadbot/internal/config"
	"github.com/ashmor/antiadbot/internal/database"
	"github.com/ashmor/antiadbot/internal/logger"
	"github.com/ashmor/antiadbot/internal/moderation"
	"github.com/ashmor/antiadbot/internal/telegram"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components, handles graceful
// shutdown, and returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	startedAt := time.Now()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	auditLog, err := audit.NewWriter(cfg.Audit.Path, log)
	if err != nil {
		log.Error("Failed to open audit file", "path", cfg.Audit.Path, "error", err)
		return 1
	}
	defer func() {
		if err := auditLog.Close(); err != nil {
			log.Error("Failed to close audit file", "error", err)
		}
	}()

	hDeps := handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Store:     store,
		Audit:     auditLog,
		StartedAt: startedAt,
	}

	// The moderation handler needs the bot client for identity lookups,
	// and the client needs its default handler at construction. The
	// indirection below is assigned before the listener starts.
	var moderate tgbot.HandlerFunc
	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if moderate != nil {
				moderate(ctx, b, update)
			}
		}),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	capability, err := telegram.CheckDeleteCapability(ctx, tg, cfg.Moderation.TargetChatID, cfg.Telegram.BotInfo.ID, log)
	if err != nil {
		log.Error("Failed to verify delete capability", "chat_id", cfg.Moderation.TargetChatID, "error", err)
		return 1
	}
	if !capability.CanDelete {
		log.Warn("Moderation disabled for this run", "detail", capability.Detail)
	}

	hDeps.Pipeline = moderation.NewPipeline(log, moderation.PipelineConfig{
		TargetChatID:          cfg.Moderation.TargetChatID,
		DeleteChannelMessages: cfg.Moderation.DeleteChannelMessages,
		AdScoreThreshold:      cfg.Moderation.AdScoreThreshold,
	}, telegram.NewAdminResolver(tg, log), capability)
	moderate = handlers.NewModerationHandler(hDeps)

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, db, store, auditLog, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
