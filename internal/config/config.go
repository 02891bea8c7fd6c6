// Package config handles application configuration from command line flags
// and environment variables.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultPeriodSeconds is the price check period used when none is given.
const DefaultPeriodSeconds = 21600

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	DatabasePath     string
	PeriodSeconds    int
	LogLevel         string
	AllowedUsers     []int64
}

// Load reads configuration from command line flags, falling back to
// environment variables. The database file must already exist; the migrate
// tool creates it.
func Load(args []string) (*Config, error) {
	defaultPeriod := DefaultPeriodSeconds
	if raw := os.Getenv("CHECK_PERIOD_SECONDS"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CHECK_PERIOD_SECONDS %q: %w", raw, err)
		}
		defaultPeriod = v
	}

	fs := flag.NewFlagSet("price_bot", flag.ContinueOnError)
	token := fs.String("token", os.Getenv("TELEGRAM_BOT_TOKEN"), "telegram bot token")
	dbPath := fs.String("database", envOrDefault("DATABASE_PATH", "./data/pricebot.db"), "path to sqlite database (must exist)")
	period := fs.Int("period", defaultPeriod, "price check period in seconds")
	logLevel := fs.String("log-level", envOrDefault("LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *token == "" {
		return nil, fmt.Errorf("telegram bot token is required (-token or TELEGRAM_BOT_TOKEN)")
	}
	info, err := os.Stat(*dbPath)
	if err != nil {
		return nil, fmt.Errorf("database file %s does not exist", *dbPath)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("database path %s is a directory", *dbPath)
	}
	if *period <= 0 {
		return nil, fmt.Errorf("period must be a positive number of seconds, got %d", *period)
	}

	var allowedUsers []int64
	if raw := os.Getenv("ALLOWED_USERS"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			uid, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user ID %q in ALLOWED_USERS: %w", s, err)
			}
			allowedUsers = append(allowedUsers, uid)
		}
	}

	return &Config{
		TelegramBotToken: *token,
		DatabasePath:     *dbPath,
		PeriodSeconds:    *period,
		LogLevel:         *logLevel,
		AllowedUsers:     allowedUsers,
	}, nil
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, id := range c.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
