package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot process.
type Config struct {
	App      AppConfig
	Discord  DiscordConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Ticket   TicketConfig
}

// AppConfig controls the ops HTTP sidecar.
type AppConfig struct {
	Name    string
	Env     string
	Host    string
	Port    string
	Version string
}

// DiscordConfig holds gateway credentials. GuildID, when set, scopes slash
// command registration to a single guild (instant propagation during
// development); empty registers commands globally.
type DiscordConfig struct {
	Token   string
	GuildID string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// TicketConfig tunes workflow timings.
type TicketConfig struct {
	CloseGraceSeconds          int
	LeaderboardIntervalSeconds int
	LeaderboardTopN            int
	HelpSessionTTLMinutes      int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		return nil, errors.New("DISCORD_TOKEN is required")
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "discord-ticket-system"),
			Env:     getEnv("APP_ENV", "development"),
			Host:    getEnv("APP_HOST", "0.0.0.0"),
			Port:    getEnv("APP_PORT", "8080"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		Discord: DiscordConfig{
			Token:   token,
			GuildID: os.Getenv("DISCORD_GUILD_ID"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Ticket: TicketConfig{
			CloseGraceSeconds:          getEnvAsInt("TICKET_CLOSE_GRACE_SECONDS", 5),
			LeaderboardIntervalSeconds: getEnvAsInt("LEADERBOARD_INTERVAL_SECONDS", 10),
			LeaderboardTopN:            getEnvAsInt("LEADERBOARD_TOP_N", 10),
			HelpSessionTTLMinutes:      getEnvAsInt("HELP_SESSION_TTL_MINUTES", 10),
		},
	}

	return cfg, nil
}

// Addr returns the ops HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// CloseGrace returns the delay between the closing notice and channel removal.
func (t TicketConfig) CloseGrace() time.Duration {
	if t.CloseGraceSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(t.CloseGraceSeconds) * time.Second
}

// LeaderboardInterval returns the per-surface reconciliation period.
func (t TicketConfig) LeaderboardInterval() time.Duration {
	if t.LeaderboardIntervalSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(t.LeaderboardIntervalSeconds) * time.Second
}

// HelpSessionTTL returns the pagination cursor lifetime.
func (t TicketConfig) HelpSessionTTL() time.Duration {
	if t.HelpSessionTTLMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(t.HelpSessionTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
