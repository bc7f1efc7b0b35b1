// Package config provides centralized configuration management for the
// meddict tools. Connection settings are resolved once at process start by
// merging CLI flags over environment variables, then passed explicitly into
// every component — no ambient lookups anywhere else in the program.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Default values applied when neither flag nor environment supplies a field.
const (
	DefaultHost = "localhost"
	DefaultPort = 5432

	// Supabase projects expose their database as postgres/postgres.
	RemoteDefaultDatabase = "postgres"
	RemoteDefaultUser     = "postgres"
)

// Flags carries the raw CLI flag values before merging. A zero Flags value
// means "no flags supplied, resolve from the environment only".
type Flags struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string

	// Remote-API (Supabase) variant.
	URL    string
	Key    string
	Direct bool
}

// Config is the fully merged connection configuration.
type Config struct {
	// Direct PostgreSQL connection settings.
	Host     string
	Port     int
	Database string
	User     string
	Password string

	// Remote-API (PostgREST) settings.
	URL string
	Key string

	// Direct forces the direct-SQL path even when URL/Key are configured.
	Direct bool
}

// MissingError reports a required connection field that is absent after
// merging flags and environment. It names both the flag and the variable so
// the user knows where to supply the value.
type MissingError struct {
	Field  string
	Flag   string
	EnvVar string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s is not configured (set %s or %s)", e.Field, e.Flag, e.EnvVar)
}

// Resolve merges CLI flags over environment variables into a Config.
// For every field a non-empty flag value wins; empty strings from either
// source are treated as absent, never as an explicit empty value.
// Resolution never prompts.
func Resolve(flags Flags) (*Config, error) {
	cfg := &Config{
		Host:     firstNonEmpty(flags.Host, os.Getenv("PG_HOST")),
		Database: firstNonEmpty(flags.Database, os.Getenv("PG_DATABASE")),
		User:     firstNonEmpty(flags.User, os.Getenv("PG_USER")),
		Password: firstNonEmpty(flags.Password, os.Getenv("PG_PASSWORD")),
		URL:      firstNonEmpty(flags.URL, os.Getenv("SUPABASE_URL")),
		Key:      firstNonEmpty(flags.Key, os.Getenv("SUPABASE_KEY")),
		Direct:   flags.Direct,
	}

	if flags.Port != 0 {
		cfg.Port = flags.Port
	} else if raw := os.Getenv("PG_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid PG_PORT %q: %w", raw, err)
		}
		cfg.Port = port
	} else {
		cfg.Port = DefaultPort
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port %d out of range 1-65535", cfg.Port)
	}

	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}

	return cfg, nil
}

// RequireDatabase validates the fields needed for a direct SQL connection.
func (c *Config) RequireDatabase() error {
	if c.Database == "" {
		return &MissingError{Field: "database name", Flag: "--database", EnvVar: "PG_DATABASE"}
	}
	return nil
}

// RequireRemote validates the fields needed for the remote-API backend.
func (c *Config) RequireRemote() error {
	if c.URL == "" {
		return &MissingError{Field: "Supabase project URL", Flag: "--url", EnvVar: "SUPABASE_URL"}
	}
	if c.Key == "" {
		return &MissingError{Field: "Supabase API key", Flag: "--key", EnvVar: "SUPABASE_KEY"}
	}
	return nil
}

// UseRemote reports whether the remote-API backend should be used.
// --direct always wins; otherwise remote is chosen when both URL and key
// resolved, and direct SQL is the fallback when they did not.
func (c *Config) UseRemote() bool {
	if c.Direct {
		return false
	}
	return c.URL != "" && c.Key != ""
}

// ApplyRemoteDefaults fills the direct-connection fields Supabase projects
// leave implicit. Only unset fields are touched.
func (c *Config) ApplyRemoteDefaults() {
	if c.Database == "" {
		c.Database = RemoteDefaultDatabase
	}
	if c.User == "" {
		c.User = RemoteDefaultUser
	}
}

// DSN returns a keyword/value connection string for pgx.
func (c *Config) DSN() string {
	parts := []string{
		"host=" + c.Host,
		fmt.Sprintf("port=%d", c.Port),
		"dbname=" + c.Database,
	}
	if c.User != "" {
		parts = append(parts, "user="+c.User)
	}
	if c.Password != "" {
		parts = append(parts, "password="+c.Password)
	}
	return strings.Join(parts, " ")
}

// String returns a safe representation for logging. The password and API key
// are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Host: %q, Port: %d, Database: %q, User: %q, Password: [MASKED]",
		c.Host, c.Port, c.Database, c.User))
	if c.URL != "" {
		b.WriteString(fmt.Sprintf(", URL: %q, Key: [MASKED]", c.URL))
	}
	if c.Direct {
		b.WriteString(", Direct: true")
	}
	b.WriteString("}")
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
