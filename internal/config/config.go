package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultAppEnv             = "development"
	defaultDBPath             = "./dev.db"
	defaultPort               = "8080"
	defaultRateLimitPerMinute = 20

	// The calculator posts on every edit, so the API gets a larger budget
	// than the contact form.
	defaultAPIRateLimitPerMinute = 300
)

// ErrMissingSessionSecret is returned by Validate outside development when
// SESSION_SECRET is empty.
var ErrMissingSessionSecret = errors.New("SESSION_SECRET must be set outside development")

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv             string
	AdminEmail         string
	AdminPassword      string
	SessionSecret      string
	DBPath             string
	Port               string
	RedisURL           string
	RateLimitPerMinute int

	// APIRateLimitPerMinute applies to the ROI JSON endpoint.
	APIRateLimitPerMinute int
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	return load(".env")
}

func load(dotenvPath string) Config {
	// Local development only; variables already set in the environment win.
	_ = godotenv.Load(dotenvPath)

	cfg := Config{
		AppEnv:                os.Getenv("APP_ENV"),
		AdminEmail:            os.Getenv("ADMIN_EMAIL"),
		AdminPassword:         os.Getenv("ADMIN_PASSWORD"),
		SessionSecret:         os.Getenv("SESSION_SECRET"),
		DBPath:                os.Getenv("DB_PATH"),
		Port:                  os.Getenv("PORT"),
		RedisURL:              os.Getenv("REDIS_URL"),
		RateLimitPerMinute:    positiveInt("RATE_LIMIT_PER_MINUTE", defaultRateLimitPerMinute),
		APIRateLimitPerMinute: positiveInt("RATE_LIMIT_API_PER_MINUTE", defaultAPIRateLimitPerMinute),
	}

	if cfg.AppEnv == "" {
		cfg.AppEnv = defaultAppEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	if cfg.AdminEmail == "" {
		log.Print("warning: ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		log.Print("warning: ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" && cfg.IsDev() {
		secret, err := randomSecret()
		if err != nil {
			log.Printf("warning: SESSION_SECRET is not set and generating one failed: %v", err)
		} else {
			cfg.SessionSecret = secret
			log.Print("warning: SESSION_SECRET is not set, using a random secret; sessions end on restart")
		}
	}

	return cfg
}

// Validate reports configuration the server must not start with.
func (c Config) Validate() error {
	if c.SessionSecret == "" && !c.IsDev() {
		return ErrMissingSessionSecret
	}
	return nil
}

func positiveInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("warning: %s=%q is not a positive integer, using %d", key, raw, def)
		return def
	}
	return n
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// IsDev reports whether the app runs in a local development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "development", "dev", "local":
		return true
	}
	return false
}
