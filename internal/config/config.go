// Package config assembles server settings from flags, environment and an optional .env file.
//
// Precedence is flag, then environment, then built-in default. Every flag
// has a SANTA_* environment twin, e.g. -data-dir and SANTA_DATA_DIR.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/and161185/secret-santa/internal/model"
)

// Storage backends.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// Session modes.
const (
	SessionsMemory = "memory"
	SessionsJWT    = "jwt"
)

// Config is the resolved server configuration.
type Config struct {
	Addr        string
	Store       string
	DataDir     string
	DSN         string
	Sessions    string
	JWTKey      string
	SessionTTL  time.Duration
	TLSCert     string
	TLSKey      string
	Plaintext   bool
	Dev         bool
	MetricsAddr string
	PublicURL   string
	DefaultMax  int
}

// Load reads envFile (if it exists) into the process environment without
// overriding variables already set, then parses args.
func Load(args []string, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return Parse(args, os.LookupEnv, os.Stderr)
}

// Parse resolves the configuration from args and lookup.
func Parse(args []string, lookup func(string) (string, bool), out io.Writer) (*Config, error) {
	e := envReader{lookup: lookup}
	c := &Config{}

	fs := flag.NewFlagSet("santa-server", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&c.Addr, "addr", e.str("SANTA_ADDR", ":8443"), "gRPC listen address")
	fs.StringVar(&c.Store, "store", e.str("SANTA_STORE", StoreFile), "storage backend: file or postgres")
	fs.StringVar(&c.DataDir, "data-dir", e.str("SANTA_DATA_DIR", "data"), "directory of the file store")
	fs.StringVar(&c.DSN, "dsn", e.str("SANTA_DSN", ""), "PostgreSQL DSN (postgres store)")
	fs.StringVar(&c.Sessions, "sessions", e.str("SANTA_SESSIONS", SessionsMemory), "session tokens: memory or jwt")
	fs.StringVar(&c.JWTKey, "jwt-key", e.str("SANTA_JWT_KEY", ""), "HS256 signing key (jwt sessions)")
	fs.DurationVar(&c.SessionTTL, "session-ttl", e.duration("SANTA_SESSION_TTL", 7*24*time.Hour), "session lifetime")
	fs.StringVar(&c.TLSCert, "tls-cert", e.str("SANTA_TLS_CERT", "cert.pem"), "TLS certificate (PEM)")
	fs.StringVar(&c.TLSKey, "tls-key", e.str("SANTA_TLS_KEY", "key.pem"), "TLS private key (PEM)")
	fs.BoolVar(&c.Plaintext, "plaintext", e.boolean("SANTA_PLAINTEXT", false), "serve without TLS (dev only)")
	fs.BoolVar(&c.Dev, "dev", e.boolean("SANTA_DEV", false), "enable server reflection (dev only)")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", e.str("SANTA_METRICS_ADDR", ""), "Prometheus /metrics address, empty disables")
	fs.StringVar(&c.PublicURL, "public-url", e.str("SANTA_PUBLIC_URL", "http://localhost:3000"), "base URL of invite links")
	fs.IntVar(&c.DefaultMax, "default-max", e.integer("SANTA_DEFAULT_MAX", model.DefaultMaxParticipants), "capacity of groups created without one")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := e.err(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks option combinations.
func (c *Config) Validate() error {
	var problems []string
	switch c.Store {
	case StoreFile:
		if c.DataDir == "" {
			problems = append(problems, "file store needs -data-dir")
		}
	case StorePostgres:
		if c.DSN == "" {
			problems = append(problems, "postgres store needs -dsn")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown store %q", c.Store))
	}
	switch c.Sessions {
	case SessionsMemory:
	case SessionsJWT:
		if c.JWTKey == "" {
			problems = append(problems, "jwt sessions need -jwt-key")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown session mode %q", c.Sessions))
	}
	if c.SessionTTL <= 0 {
		problems = append(problems, "session ttl must be positive")
	}
	if !c.Plaintext && (c.TLSCert == "" || c.TLSKey == "") {
		problems = append(problems, "TLS needs -tls-cert and -tls-key (or -plaintext)")
	}
	if c.DefaultMax < 2 {
		problems = append(problems, "default capacity must be at least 2")
	}
	if len(problems) > 0 {
		return errors.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// envReader collects the first malformed variable instead of failing each call.
type envReader struct {
	lookup func(string) (string, bool)
	bad    error
}

func (e *envReader) raw(key string) (string, bool) {
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *envReader) str(key, def string) string {
	if v, ok := e.raw(key); ok {
		return v
	}
	return def
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return d
}

func (e *envReader) boolean(key string, def bool) bool {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return b
}

func (e *envReader) integer(key string, def int) int {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return n
}

func (e *envReader) fail(key string, err error) {
	if e.bad == nil {
		e.bad = fmt.Errorf("config: %s: %w", key, err)
	}
}

func (e *envReader) err() error { return e.bad }
