package config

import (
	"os"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	Environment string

	// DatabaseURL selects the PostgreSQL record store when set.
	DatabaseURL string
	// DataFile selects the file-backed record store when set (and no
	// database is configured). Empty means records live in memory only.
	DataFile string

	// LookupBaseURL is the base URL of the postal-code lookup service.
	LookupBaseURL string
	LookupTimeout time.Duration

	// SessionTTL bounds how long an abandoned registration session is kept.
	SessionTTL time.Duration
}

// Default timeouts; overridable through the environment.
var (
	DefaultLookupTimeout = 10 * time.Second
	DefaultSessionTTL    = 30 * time.Minute
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CEPBOOK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	lookupBase := os.Getenv("CEPBOOK_LOOKUP_URL")
	if lookupBase == "" {
		lookupBase = "https://viacep.com.br"
	}

	lookupTimeout := DefaultLookupTimeout
	if s := os.Getenv("CEPBOOK_LOOKUP_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			lookupTimeout = d
		}
	}

	sessionTTL := DefaultSessionTTL
	if s := os.Getenv("CEPBOOK_SESSION_TTL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			sessionTTL = d
		}
	}

	return Server{
		Addr:          addr,
		Environment:   os.Getenv("CEPBOOK_ENV"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DataFile:      os.Getenv("CEPBOOK_DATA_FILE"),
		LookupBaseURL: lookupBase,
		LookupTimeout: lookupTimeout,
		SessionTTL:    sessionTTL,
	}
}
