package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything main needs to wire the service.
type Config struct {
	Env            string
	Port           string
	PublicURL      string // base for links handed to browsers, e.g. photo proxies
	FrontendURLs   []string
	SessionTTL     time.Duration
	SecureCookies  bool
	GenerateLimit  int // generate-itinerary requests per minute per client
	MongoURI       string
	MongoDatabase  string
	RedisAddr      string // empty keeps sessions and seat fan-out in process
	RedisPassword  string
	RedisDB        int
	PostgresDSN    string // empty disables search history
	RabbitURL      string // empty disables booking events
	GoogleMapsKey  string
	AmadeusID      string
	AmadeusSecret  string
	AmadeusBaseURL string
	AIProvider     string
	GeminiKey      string
	GeminiModel    string
	HFKey          string
	HFModel        string
	Identity       IdentityConfig
}

// IdentityConfig describes how externally-issued identity tokens are verified.
// With neither a secret nor a public key set, tokens are not checked, which
// Load refuses in production.
type IdentityConfig struct {
	HMACSecret   string
	PublicKeyPEM string
	Audience     string
	Issuer       string
}

// Load reads configuration from the environment. A missing required value is
// an error; callers are expected to abort startup on it.
func Load() (*Config, error) {
	var missing []string
	require := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := &Config{
		Env:            getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		PublicURL:      os.Getenv("PUBLIC_BASE_URL"),
		SecureCookies:  getEnv("APP_ENV", "development") == "production",
		MongoURI:       require("MONGODB_URI"),
		MongoDatabase:  getEnv("MONGODB_DATABASE", "globetrail"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		PostgresDSN:    buildPostgresDSN(),
		RabbitURL:      os.Getenv("RABBITMQ_URL"),
		GoogleMapsKey:  require("GOOGLE_MAPS_API_KEY"),
		AmadeusID:      os.Getenv("AMADEUS_CLIENT_ID"),
		AmadeusSecret:  os.Getenv("AMADEUS_CLIENT_SECRET"),
		AmadeusBaseURL: amadeusBaseURL(os.Getenv("AMADEUS_ENV")),
		AIProvider:     strings.ToLower(getEnv("AI_PROVIDER", "gemini")),
		GeminiKey:      os.Getenv("GOOGLE_GEMINI_API_KEY"),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		HFKey:          os.Getenv("HUGGINGFACE_API_KEY"),
		HFModel:        getEnv("HF_MODEL", "mistralai/Mistral-7B-Instruct-v0.3"),
		Identity: IdentityConfig{
			HMACSecret:   os.Getenv("IDENTITY_TOKEN_SECRET"),
			PublicKeyPEM: os.Getenv("IDENTITY_PUBLIC_KEY"),
			Audience:     os.Getenv("IDENTITY_AUDIENCE"),
			Issuer:       os.Getenv("IDENTITY_ISSUER"),
		},
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.GenerateLimit, err = intEnv("GENERATE_RATE_PER_MIN", 5); err != nil {
		return nil, err
	}
	hours, err := intEnv("SESSION_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}
	cfg.SessionTTL = time.Duration(hours) * time.Hour

	if cfg.IsRelease() && cfg.Identity.HMACSecret == "" && cfg.Identity.PublicKeyPEM == "" {
		return nil, fmt.Errorf("IDENTITY_TOKEN_SECRET or IDENTITY_PUBLIC_KEY is required when APP_ENV=production")
	}

	if cfg.AIProvider != "gemini" && cfg.AIProvider != "huggingface" {
		return nil, fmt.Errorf("AI_PROVIDER must be gemini or huggingface, got %q", cfg.AIProvider)
	}

	cfg.FrontendURLs = []string{"http://localhost:4000", "http://localhost:5173"}
	for _, u := range strings.Split(os.Getenv("FRONTEND_URL"), ",") {
		if u = strings.TrimSpace(u); u != "" {
			cfg.FrontendURLs = append(cfg.FrontendURLs, u)
		}
	}

	return cfg, nil
}

// IsRelease reports whether the service runs with production settings.
func (c *Config) IsRelease() bool {
	return c.Env == "production"
}

func amadeusBaseURL(env string) string {
	if env == "production" {
		return "https://api.amadeus.com"
	}
	return "https://test.api.amadeus.com"
}

// buildPostgresDSN prefers DATABASE_URL and falls back to discrete DB_* vars.
// Search history stays disabled when neither is present.
func buildPostgresDSN() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	if os.Getenv("DB_HOST") == "" {
		return ""
	}

	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	pass := getEnv("DB_PASSWORD", "postgres")
	name := getEnv("DB_NAME", "globetrail")
	sslmode := getEnv("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, pass, name, sslmode)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
