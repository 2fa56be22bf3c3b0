// Package config loads and validates application configuration from
// defaults, an optional config.yaml, and environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/go-telegram/bot/models"
)

// Default values for optional configuration parameters.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	DefaultDBPath             = "storage.db"
	DefaultAuditPath          = "audit.log"
	DefaultAuditRetentionDays = 30

	DefaultDeleteChannelMessages = true
	DefaultAdScoreThreshold      = 2

	DefaultMaintenanceSchedule = "0 0 4 * * *"
	DefaultAuditPruneSchedule  = "0 30 4 * * *"
)

// LogConfig controls diagnostic output. It has no effect on moderation
// decisions.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds transport credentials and runtime bot identity.
type TelegramConfig struct {
	Token       string `mapstructure:"token"         validate:"required"`
	AdminUserID int64  `mapstructure:"admin_user_id" validate:"min=0"`

	// BotInfo is populated at startup from getMe; it is not read from
	// configuration sources.
	BotInfo *models.User `mapstructure:"-"`
}

// ModerationConfig holds the policy-chain knobs.
type ModerationConfig struct {
	// TargetChatID restricts moderation to one chat; zero processes all
	// chats the bot is in.
	TargetChatID          int64 `mapstructure:"target_chat_id"`
	DeleteChannelMessages bool  `mapstructure:"delete_channel_messages"`
	AdScoreThreshold      int   `mapstructure:"ad_score_threshold" validate:"min=0"`
}

// DatabaseConfig locates the detection-log SQLite database.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// AuditConfig locates the append-only audit file and sets the detection-log
// retention horizon used by the prune task.
type AuditConfig struct {
	Path          string `mapstructure:"path"           validate:"required"`
	RetentionDays int    `mapstructure:"retention_days" validate:"min=1"`
}

// TaskConfig enables and schedules one scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// Config is the full application configuration.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Audit      AuditConfig      `mapstructure:"audit"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
}

// Load reads configuration from, in increasing precedence: defaults, an
// optional config.yaml in the working directory, and environment
// variables. Keys map to BOT_-prefixed variables (telegram.token →
// BOT_TELEGRAM_TOKEN); the flat names the deployment already uses
// (BOT_TOKEN, TARGET_CHAT_ID, DELETE_CHANNEL_MESSAGES, AD_SCORE_THRESHOLD,
// LOG_LEVEL) are bound explicitly and keep working.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindFlatEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file is optional; defaults plus environment suffice.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", DefaultLogJSON)

	v.SetDefault("telegram.admin_user_id", 0)

	v.SetDefault("moderation.target_chat_id", 0)
	v.SetDefault("moderation.delete_channel_messages", DefaultDeleteChannelMessages)
	v.SetDefault("moderation.ad_score_threshold", DefaultAdScoreThreshold)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("audit.path", DefaultAuditPath)
	v.SetDefault("audit.retention_days", DefaultAuditRetentionDays)

	v.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.sql_maintenance.schedule", DefaultMaintenanceSchedule)
	v.SetDefault("scheduler.tasks.audit_prune.enabled", true)
	v.SetDefault("scheduler.tasks.audit_prune.schedule", DefaultAuditPruneSchedule)
}

func bindFlatEnv(v *viper.Viper) {
	//nolint:errcheck // BindEnv only fails with zero arguments
	_ = v.BindEnv("telegram.token", "BOT_TOKEN", "BOT_TELEGRAM_TOKEN")
	_ = v.BindEnv("telegram.admin_user_id", "BOT_ADMIN_USER_ID", "BOT_TELEGRAM_ADMIN_USER_ID")
	_ = v.BindEnv("moderation.target_chat_id", "TARGET_CHAT_ID", "BOT_MODERATION_TARGET_CHAT_ID")
	_ = v.BindEnv("moderation.delete_channel_messages", "DELETE_CHANNEL_MESSAGES", "BOT_MODERATION_DELETE_CHANNEL_MESSAGES")
	_ = v.BindEnv("moderation.ad_score_threshold", "AD_SCORE_THRESHOLD", "BOT_MODERATION_AD_SCORE_THRESHOLD")
	_ = v.BindEnv("log.level", "LOG_LEVEL", "BOT_LOG_LEVEL")
}
