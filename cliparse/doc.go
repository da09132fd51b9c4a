// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 8080)
  - DatabaseURL: connection string / DSN (required)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - IPHashSalt: secret for vote IP hashing (required)
  - SessionTTLHours: session lifetime (default: 168)
  - AuthRatePerMinute: credential endpoint rate limit, 0 disables (default: 10)
  - CacheTTLSeconds: poll read cache TTL, 0 disables (default: 30)

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-ip-salt      IP hash salt
	-session-ttl  Session lifetime in hours
	-auth-rate    Credential rate limit per minute
	-cache-ttl    Cache TTL in seconds

# Environment Variables

Flags fall back to environment variables:

	PORT                 → -p
	DATABASE_URL         → -d
	DATABASE_TYPE        → -t
	IP_HASH_SALT         → -ip-salt
	SESSION_TTL_HOURS    → -session-ttl
	AUTH_RATE_PER_MINUTE → -auth-rate
	CACHE_TTL_SECONDS    → -cache-ttl

CLI flags take precedence over environment variables. main loads a .env file
first (via godotenv), so either source may live there.

# Validation

ParseFlags returns an error if required values are missing or out of range:

  - DATABASE_URL must be provided
  - IP_HASH_SALT must be provided
  - DATABASE_TYPE must be sqlite or postgres
  - SESSION_TTL_HOURS must be at least 1
*/
package cliparse
