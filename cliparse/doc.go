// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded before flags are read.
Existing environment variables are never overwritten by it.

# Config Fields

  - Port: Server listen port (default: 4000)
  - DatabaseURL: PostgreSQL URL or SQLite path (required)
  - DatabaseType: postgres or sqlite (inferred from the URL)
  - JWTSecret: Secret for admin token signing (required)
  - TokenTTL: Admin token lifetime (default: 12h)
  - AdminUsername, AdminPassword: Bootstrap credentials
  - BaseURL: Fallback domain for feedback links
  - QRServiceURL, QRSize: External QR image service
  - RedisAddr, RedisPassword: Optional cache backend
  - StaticDir: Optional web app bundle
  - FeedbackRateLimit: Submissions per IP per hour (default: 10)

# Environment Variables

Flags fall back to environment variables:

	PORT                → -p
	DATABASE_URL        → -d
	DATABASE_TYPE       → -t
	APP_ENV             → -env
	LOG_LEVEL           → -log-level
	JWT_SECRET          → -jwt-secret
	TOKEN_TTL           → -token-ttl
	ADMIN_USERNAME      → -admin-user
	ADMIN_PASSWORD      → -admin-password
	FEEDBACK_BASE_URL   → -base-url
	QR_SERVICE_URL      → -qr-url
	QR_SIZE             → -qr-size
	REDIS_ADDR          → -redis
	REDIS_PASSWORD      → -redis-password
	STATIC_DIR          → -static
	CORS_ORIGIN         → -cors-origin
	FEEDBACK_RATE_LIMIT → -rate-limit

CLI flags take precedence over environment variables.
*/
package cliparse
