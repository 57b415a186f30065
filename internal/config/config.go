package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// localDSN is used when DATABASE_URL is not set, for local development.
const localDSN = "host=localhost user=postgres password=postgres dbname=foodgram port=5432 sslmode=disable"

type App struct {
	Env string `envconfig:"ENV" default:"development"`

	// DB
	DatabaseURL string `envconfig:"DATABASE_URL"`
	Seed        bool   `envconfig:"SEED" default:"true"`

	// HTTP
	Port          string `envconfig:"PORT" default:"8080"`
	SessionSecret string `envconfig:"SESSION_SECRET" default:"secret_key_change_me"`
	PageSize      int    `envconfig:"PAGE_SIZE" default:"6"`

	// Auth
	JWTSecret string        `envconfig:"JWT_SECRET" default:"jwt_secret_change_me"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	// Logged-out token ids, kept apart from the response cache.
	RevokedTokensSize int `envconfig:"REVOKED_TOKENS_SIZE" default:"100000"`

	// Google sign-in is enabled when a client id is set.
	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	SiteURL            string `envconfig:"SITE_URL" default:"http://localhost:8080"`

	// Cache
	CacheSize int           `envconfig:"CACHE_SIZE" default:"500"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`
}

// Load reads .env (if any) and then the process environment.
func Load() (App, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	var c App
	if err := envconfig.Process("", &c); err != nil {
		return c, err
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = localDSN
	}
	return c, nil
}

func (c App) IsProduction() bool {
	return c.Env == "production"
}
