package config_test

import (
	"testing"

	"github.com/ashmor/antiadbot/internal/config"
)

func TestLoadRequiresToken(t *testing.T) {
	if _, err := config.Load(); err == nil {
		t.Fatal("expected validation error without BOT_TOKEN")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "12345:testtoken")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Telegram.Token != "12345:testtoken" {
		t.Errorf("Token = %q", cfg.Telegram.Token)
	}
	if cfg.Log.Level != config.DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, config.DefaultLogLevel)
	}
	if cfg.Moderation.TargetChatID != 0 {
		t.Errorf("TargetChatID = %d, want 0", cfg.Moderation.TargetChatID)
	}
	if !cfg.Moderation.DeleteChannelMessages {
		t.Error("DeleteChannelMessages should default to true")
	}
	if cfg.Moderation.AdScoreThreshold != config.DefaultAdScoreThreshold {
		t.Errorf("AdScoreThreshold = %d, want %d", cfg.Moderation.AdScoreThreshold, config.DefaultAdScoreThreshold)
	}
	if cfg.Audit.RetentionDays != config.DefaultAuditRetentionDays {
		t.Errorf("RetentionDays = %d, want %d", cfg.Audit.RetentionDays, config.DefaultAuditRetentionDays)
	}
	if len(cfg.Scheduler.Tasks) != 2 {
		t.Errorf("scheduler tasks = %v, want sql_maintenance and audit_prune", cfg.Scheduler.Tasks)
	}
}

func TestLoadFlatEnvOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "12345:testtoken")
	t.Setenv("TARGET_CHAT_ID", "-100200300")
	t.Setenv("DELETE_CHANNEL_MESSAGES", "false")
	t.Setenv("AD_SCORE_THRESHOLD", "5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Moderation.TargetChatID != -100200300 {
		t.Errorf("TargetChatID = %d, want -100200300", cfg.Moderation.TargetChatID)
	}
	if cfg.Moderation.DeleteChannelMessages {
		t.Error("DeleteChannelMessages should be overridden to false")
	}
	if cfg.Moderation.AdScoreThreshold != 5 {
		t.Errorf("AdScoreThreshold = %d, want 5", cfg.Moderation.AdScoreThreshold)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("BOT_TOKEN", "12345:testtoken")
	t.Setenv("LOG_LEVEL", "loud")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
}
