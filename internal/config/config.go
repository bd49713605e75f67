package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	BackendURL        string // Upstream funding API (server-side only, proxy target)
	BotAPIURL         string // Optional external bot health-check target
	MongoURI          string
	RedisURI          string
	Port              string
	FrontendURL       string
	AllowedOrigins    []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s); must include production frontend origin
	WalletAppID       string   // Wallet SDK application id
	WalletRedirectURL string   // Deep-link / social-login redirect URL registered with the wallet SDK
	PlatformFeeRate   float64  // Platform fee applied to contributions (fraction, e.g. 0.019)
	PollInterval      time.Duration
	SignTimeout       time.Duration // 0 means no timeout on the wallet signature prompt
	Host              string        // Raw HOST env (e.g. https://gateway.inventagious.com)
	AllowedHost       string        // Hostname only for strict host check (production only)
	Environment       string        // ENV: production, development, etc.
}

const (
	// DefaultPlatformFeeRate is the contribution fee fraction applied when
	// computing optimistic funding totals.
	DefaultPlatformFeeRate = 0.019
	// DefaultPollInterval is how often project funding state is re-fetched.
	DefaultPollInterval = 3 * time.Second
)

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	host := getEnv("HOST", "http://localhost:8080")

	// AllowedHost is only set in production; host check is skipped in development
	var allowedHost string
	if env == "production" {
		allowedHost = stripToHostname(host)
	}

	// CORS: allow multiple origins so production frontend (e.g. https://www.inventagious.com) works
	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", ""), getEnv("FRONTEND_URL_3", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	return &Config{
		BackendURL:        strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:4000"), "/"),
		BotAPIURL:         getEnv("BOT_API_URL", getEnv("NEXT_PUBLIC_BOT_API_URL", "")),
		MongoURI:          getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/inventagious")),
		RedisURI:          getEnv("REDIS_URI", "redis://localhost:6379/0"),
		Port:              getEnv("PORT", "8080"),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins:    allowedOrigins,
		WalletAppID:       getEnv("WALLET_APP_ID", ""),
		WalletRedirectURL: getEnv("WALLET_REDIRECT_URL", ""),
		PlatformFeeRate:   getFloatEnv("PLATFORM_FEE_RATE", DefaultPlatformFeeRate),
		PollInterval:      getDurationEnv("POLL_INTERVAL", DefaultPollInterval),
		SignTimeout:       getDurationEnv("SIGN_TIMEOUT", 0),
		Host:              host,
		AllowedHost:       allowedHost,
		Environment:       env,
	}
}

// stripToHostname reduces a URL-ish value to its bare hostname.
func stripToHostname(host string) string {
	for _, prefix := range []string{"https://", "http://"} {
		host = strings.TrimPrefix(host, prefix)
	}
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.TrimSpace(host)
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
