package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken   string
	DatabaseURL     string
	AdminTelegramID int64 // the bot owner; the only user allowed to interact
	LogLevel        string
	Environment     string

	// MinSupportedYear is the earliest year cross-year previous-cycle
	// navigation may reach.
	MinSupportedYear int

	// BackupDir is where the local file sink stores export blobs.
	BackupDir string

	CronSpecMorningPlan string // daily push of today's plan
	CronSpecBackup      string // nightly automatic export
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	minYearStr := os.Getenv("MIN_SUPPORTED_YEAR")
	if minYearStr == "" {
		cfg.MinSupportedYear = 2024 // Earliest year with data
	} else {
		cfg.MinSupportedYear, err = strconv.Atoi(minYearStr)
		if err != nil {
			return nil, fmt.Errorf("invalid MIN_SUPPORTED_YEAR: %w", err)
		}
	}

	cfg.BackupDir = os.Getenv("BACKUP_DIR")
	if cfg.BackupDir == "" {
		cfg.BackupDir = "./backups"
	}

	cfg.CronSpecMorningPlan = os.Getenv("CRON_SPEC_MORNING_PLAN")
	if cfg.CronSpecMorningPlan == "" {
		cfg.CronSpecMorningPlan = "0 8 * * *" // Default: 8:00 AM daily
	}

	cfg.CronSpecBackup = os.Getenv("CRON_SPEC_BACKUP")
	if cfg.CronSpecBackup == "" {
		cfg.CronSpecBackup = "0 3 * * *" // Default: 3:00 AM daily
	}

	return cfg, nil
}
