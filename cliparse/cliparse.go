// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DatabasePostgres = "postgres"
	DatabaseSQLite   = "sqlite"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	Env          string
	LogLevel     string

	JWTSecret     string
	TokenTTL      time.Duration
	AdminUsername string
	AdminPassword string

	BaseURL      string
	QRServiceURL string
	QRSize       string

	RedisAddr     string
	RedisPassword string

	StaticDir  string
	CORSOrigin string

	// Peers whose X-Forwarded-For and X-Real-IP headers are believed
	TrustedProxies []netip.Prefix

	// Feedback submissions per client IP per hour; 0 disables the limit
	FeedbackRateLimit int
}

// ParseFlags validates flags and fills missing values from the environment.
// A .env file in the working directory is loaded first if present.
func ParseFlags(args []string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	var port, rateLimit int
	var tokenTTL, trustedProxies string
	rateLimit = -1

	fs := flag.NewFlagSet("feedback-links", flag.ContinueOnError)

	fs.IntVar(&port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.Env, "env", "", "Environment (development or production)")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "Admin token signing secret (prefer env)")
	fs.StringVar(&tokenTTL, "token-ttl", "", "Admin token lifetime")
	fs.StringVar(&cfg.AdminUsername, "admin-user", "", "Bootstrap admin username")
	fs.StringVar(&cfg.AdminPassword, "admin-password", "", "Bootstrap admin password (prefer env)")

	fs.StringVar(&cfg.BaseURL, "base-url", "", "Fallback feedback domain")
	fs.StringVar(&cfg.QRServiceURL, "qr-url", "", "QR image service endpoint")
	fs.StringVar(&cfg.QRSize, "qr-size", "", "QR image size")

	fs.StringVar(&cfg.RedisAddr, "redis", "", "Redis address (empty uses in-memory cache)")
	fs.StringVar(&cfg.RedisPassword, "redis-password", "", "Redis password")

	fs.StringVar(&cfg.StaticDir, "static", "", "Directory with the built web app")
	fs.StringVar(&cfg.CORSOrigin, "cors-origin", "", "Allowed CORS origin")
	fs.StringVar(&trustedProxies, "trusted-proxies", "", "Comma-separated proxy IPs or CIDRs allowed to set X-Forwarded-For")
	fs.IntVar(&rateLimit, "rate-limit", -1, "Feedback submissions per IP per hour")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			p, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			port = p
		} else {
			port = 4000
		}
	}
	cfg.Port = port

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = inferDatabaseType(cfg.DatabaseURL)
	}
	if cfg.DatabaseType != DatabasePostgres && cfg.DatabaseType != DatabaseSQLite {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	cfg.Env = firstNonEmpty(cfg.Env, os.Getenv("APP_ENV"), "production")
	cfg.LogLevel = firstNonEmpty(cfg.LogLevel, os.Getenv("LOG_LEVEL"), "info")

	// Secrets - MUST be provided
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	tokenTTL = firstNonEmpty(tokenTTL, os.Getenv("TOKEN_TTL"), "12h")
	ttl, err := time.ParseDuration(tokenTTL)
	if err != nil || ttl <= 0 {
		return Config{}, fmt.Errorf("invalid token TTL %q", tokenTTL)
	}
	cfg.TokenTTL = ttl

	cfg.AdminUsername = firstNonEmpty(cfg.AdminUsername, os.Getenv("ADMIN_USERNAME"), "admin")
	cfg.AdminPassword = firstNonEmpty(cfg.AdminPassword, os.Getenv("ADMIN_PASSWORD"))

	cfg.BaseURL = firstNonEmpty(cfg.BaseURL, os.Getenv("FEEDBACK_BASE_URL"), "https://feedback.home-ki.eu")
	cfg.QRServiceURL = firstNonEmpty(cfg.QRServiceURL, os.Getenv("QR_SERVICE_URL"), "https://api.qrserver.com/v1/create-qr-code/")
	cfg.QRSize = firstNonEmpty(cfg.QRSize, os.Getenv("QR_SIZE"), "200x200")

	cfg.RedisAddr = firstNonEmpty(cfg.RedisAddr, os.Getenv("REDIS_ADDR"))
	cfg.RedisPassword = firstNonEmpty(cfg.RedisPassword, os.Getenv("REDIS_PASSWORD"))

	cfg.StaticDir = firstNonEmpty(cfg.StaticDir, os.Getenv("STATIC_DIR"))
	cfg.CORSOrigin = firstNonEmpty(cfg.CORSOrigin, os.Getenv("CORS_ORIGIN"))

	proxies, err := ParseTrustedProxies(firstNonEmpty(trustedProxies, os.Getenv("TRUSTED_PROXIES")))
	if err != nil {
		return Config{}, err
	}
	cfg.TrustedProxies = proxies

	if rateLimit < 0 {
		if s := os.Getenv("FEEDBACK_RATE_LIMIT"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				return Config{}, errors.New("invalid FEEDBACK_RATE_LIMIT env variable")
			}
			rateLimit = n
		} else {
			rateLimit = 10
		}
	}
	cfg.FeedbackRateLimit = rateLimit

	return cfg, nil
}

// ParseTrustedProxies parses a comma-separated list of IPs and CIDRs.
// A bare IP becomes a single-address prefix.
func ParseTrustedProxies(list string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		if strings.Contains(item, "/") {
			prefix, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", item, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", item, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func inferDatabaseType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DatabasePostgres
	}
	return DatabaseSQLite
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
