package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
)

type Config struct {
	Port              int
	DatabaseURL       string
	DatabaseType      string
	IPHashSalt        string
	SessionTTLHours   int
	AuthRatePerMinute int
	CacheTTLSeconds   int
}

// ParseFlags validates flags and applies environment fallbacks
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("pollgate", flag.ContinueOnError)

	// Network and storage config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.IPHashSalt, "ip-salt", "", "IP hash salt (prefer env)")

	// Tunables
	fs.IntVar(&cfg.SessionTTLHours, "session-ttl", 0, "Session lifetime in hours")
	fs.IntVar(&cfg.AuthRatePerMinute, "auth-rate", -1, "Credential requests allowed per client per minute (0 disables)")
	fs.IntVar(&cfg.CacheTTLSeconds, "cache-ttl", -1, "Poll read cache TTL in seconds (0 disables)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 8080 // default
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	// Secrets - MUST be provided
	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = os.Getenv("IP_HASH_SALT")
	}
	if cfg.IPHashSalt == "" {
		return Config{}, errors.New("IP_HASH_SALT required")
	}

	if cfg.SessionTTLHours == 0 {
		cfg.SessionTTLHours = envInt("SESSION_TTL_HOURS", 168)
	}
	if cfg.SessionTTLHours < 1 {
		return Config{}, errors.New("session TTL must be at least 1 hour")
	}

	if cfg.AuthRatePerMinute < 0 {
		cfg.AuthRatePerMinute = envInt("AUTH_RATE_PER_MINUTE", 10)
	}

	if cfg.CacheTTLSeconds < 0 {
		cfg.CacheTTLSeconds = envInt("CACHE_TTL_SECONDS", 30)
	}

	return cfg, nil
}

// envInt reads an integer env variable, returning fallback when the variable
// is unset or malformed.
func envInt(name string, fallback int) int {
	s := os.Getenv(name)
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
