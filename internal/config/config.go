package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// Bot configuration
	DiscordToken  string
	CommandPrefix string

	// Storage
	DatabasePath string

	// Polling
	PollInterval    time.Duration
	SubscriberDelay time.Duration

	// External sources
	CacheTTL      time.Duration
	DefaultRegion string

	// Verification
	VerifyTTL time.Duration

	// Health endpoint
	HealthAddr string

	// Application settings
	Debug bool
)

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file found, falling back to environment variables")
	}

	DiscordToken = os.Getenv("DISCORD_TOKEN")
	if DiscordToken == "" {
		log.Fatal().Msg("DISCORD_TOKEN environment variable is required")
	}

	CommandPrefix = getString("COMMAND_PREFIX", "!")
	DatabasePath = getString("DATABASE_PATH", "tft.db")

	PollInterval = getDuration("POLL_INTERVAL", 3*time.Minute)
	SubscriberDelay = getDuration("SUBSCRIBER_DELAY", 2*time.Second)
	CacheTTL = getDuration("CACHE_TTL", 5*time.Minute)
	VerifyTTL = getDuration("VERIFY_TTL", 30*time.Minute)

	DefaultRegion = getString("DEFAULT_REGION", "vn")
	HealthAddr = getString("HEALTH_ADDR", ":8080")

	Debug, _ = strconv.ParseBool(os.Getenv("DEBUG"))
	if Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration, using default")
		return fallback
	}
	return d
}
