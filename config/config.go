package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const defaultJWTSecret = "your-default-secret-key-change-in-production"

// Config is the process configuration, read from the environment after an
// optional .env file has been applied.
type Config struct {
	Port         string
	Store        string // sqlite, postgres or memory
	DatabasePath string
	DatabaseURL  string
	RedisURL     string
	JWTSecret    string
	CORSOrigins  []string
	LogLevel     string
	// DevMode returns magic links in the login response instead of only
	// mailing them.
	DevMode bool

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// LoadEnv loads environment variables from a .env file. A missing file is
// not an error; variables already set in the environment win.
func LoadEnv(filename string) error {
	err := godotenv.Load(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:         getenv("PORT", "3001"),
		Store:        strings.ToLower(getenv("STORE", "sqlite")),
		DatabasePath: getenv("DATABASE_PATH", "./kanban.db"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		JWTSecret:    getenv("JWT_SECRET", defaultJWTSecret),
		CORSOrigins:  splitList(getenv("CORS_ORIGINS", "*")),
		LogLevel:     getenv("LOG_LEVEL", "info"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     os.Getenv("SMTP_PORT"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
	}
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		cfg.LogLevel = "debug"
	}
	if dev, err := strconv.ParseBool(os.Getenv("DEV_MODE")); err == nil {
		cfg.DevMode = dev
	}

	switch cfg.Store {
	case "sqlite", "memory":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required when STORE=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown STORE %q", cfg.Store)
	}
	if cfg.JWTSecret == defaultJWTSecret {
		log.Warn("JWT_SECRET is not set, using the development default")
	}
	if cfg.DevMode {
		log.Warn("DEV_MODE is on, login responses include the magic link")
	}
	return cfg, nil
}

// ConfigureLogging applies the configured level to the global logger.
func (c *Config) ConfigureLogging() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)
	return nil
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
