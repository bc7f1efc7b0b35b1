package config

import (
	"errors"
	"strings"
	"testing"
)

// connEnvVars is every variable Resolve reads; cleared before each test so
// the host environment cannot leak into assertions.
var connEnvVars = []string{
	"PG_HOST", "PG_PORT", "PG_DATABASE", "PG_USER", "PG_PASSWORD",
	"SUPABASE_URL", "SUPABASE_KEY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range connEnvVars {
		t.Setenv(key, "")
	}
}

func TestResolve_EnvironmentOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("PG_HOST", "db.example.com")
	t.Setenv("PG_PORT", "5433")
	t.Setenv("PG_DATABASE", "meddict")
	t.Setenv("PG_USER", "importer")
	t.Setenv("PG_PASSWORD", "secret")

	cfg, err := Resolve(Flags{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if cfg.Host != "db.example.com" {
		t.Errorf("Host = %q, want %q", cfg.Host, "db.example.com")
	}
	if cfg.Port != 5433 {
		t.Errorf("Port = %d, want %d", cfg.Port, 5433)
	}
	if cfg.Database != "meddict" {
		t.Errorf("Database = %q, want %q", cfg.Database, "meddict")
	}
	if cfg.User != "importer" {
		t.Errorf("User = %q, want %q", cfg.User, "importer")
	}
	if cfg.Password != "secret" {
		t.Errorf("Password = %q, want %q", cfg.Password, "secret")
	}
}

func TestResolve_FlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PG_HOST", "env-host")
	t.Setenv("PG_DATABASE", "env-db")

	cfg, err := Resolve(Flags{Host: "flag-host", Port: 6543})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if cfg.Host != "flag-host" {
		t.Errorf("Host = %q, want flag value %q", cfg.Host, "flag-host")
	}
	if cfg.Port != 6543 {
		t.Errorf("Port = %d, want flag value %d", cfg.Port, 6543)
	}
	// Fields without a flag still come from the environment.
	if cfg.Database != "env-db" {
		t.Errorf("Database = %q, want env value %q", cfg.Database, "env-db")
	}
}

func TestResolve_EmptyStringIsAbsent(t *testing.T) {
	clearEnv(t)
	t.Setenv("PG_HOST", "")

	// An empty flag must not mask the environment either.
	t.Setenv("PG_USER", "envuser")
	cfg, err := Resolve(Flags{User: ""})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if cfg.Host != DefaultHost {
		t.Errorf("Host = %q, want default %q", cfg.Host, DefaultHost)
	}
	if cfg.User != "envuser" {
		t.Errorf("User = %q, want %q", cfg.User, "envuser")
	}
}

func TestResolve_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Resolve(Flags{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if cfg.Host != DefaultHost {
		t.Errorf("Host = %q, want %q", cfg.Host, DefaultHost)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
}

func TestResolve_InvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PG_PORT", "not-a-number")

	if _, err := Resolve(Flags{}); err == nil {
		t.Fatal("Resolve() expected error for non-numeric PG_PORT")
	}

	if _, err := Resolve(Flags{Port: 70000}); err == nil {
		t.Fatal("Resolve() expected error for out-of-range port")
	}
}

func TestRequireDatabase_Missing(t *testing.T) {
	clearEnv(t)

	cfg, err := Resolve(Flags{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	err = cfg.RequireDatabase()
	if err == nil {
		t.Fatal("RequireDatabase() expected error when PG_DATABASE unset")
	}

	var missing *MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("RequireDatabase() error type = %T, want *MissingError", err)
	}
	if missing.Flag != "--database" || missing.EnvVar != "PG_DATABASE" {
		t.Errorf("MissingError names %q/%q, want --database/PG_DATABASE", missing.Flag, missing.EnvVar)
	}
}

func TestRequireRemote(t *testing.T) {
	clearEnv(t)

	cfg, err := Resolve(Flags{URL: "https://proj.supabase.co"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	var missing *MissingError
	if err := cfg.RequireRemote(); !errors.As(err, &missing) {
		t.Fatalf("RequireRemote() = %v, want *MissingError for key", err)
	}
	if missing.EnvVar != "SUPABASE_KEY" {
		t.Errorf("MissingError.EnvVar = %q, want SUPABASE_KEY", missing.EnvVar)
	}

	cfg.Key = "service-role-key"
	if err := cfg.RequireRemote(); err != nil {
		t.Errorf("RequireRemote() with url+key = %v, want nil", err)
	}
}

func TestUseRemote(t *testing.T) {
	clearEnv(t)

	cfg, _ := Resolve(Flags{URL: "https://proj.supabase.co", Key: "k"})
	if !cfg.UseRemote() {
		t.Error("UseRemote() = false with url+key, want true")
	}

	cfg.Direct = true
	if cfg.UseRemote() {
		t.Error("UseRemote() = true with --direct, want false")
	}

	plain, _ := Resolve(Flags{})
	if plain.UseRemote() {
		t.Error("UseRemote() = true without credentials, want false")
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{Host: "localhost", Port: 5432, Database: "meddict", User: "u", Password: "p"}

	dsn := cfg.DSN()
	want := "host=localhost port=5432 dbname=meddict user=u password=p"
	if dsn != want {
		t.Errorf("DSN() = %q, want %q", dsn, want)
	}

	// Optional fields drop out instead of producing empty keywords.
	cfg.User, cfg.Password = "", ""
	if dsn := cfg.DSN(); strings.Contains(dsn, "user=") || strings.Contains(dsn, "password=") {
		t.Errorf("DSN() = %q, want no user/password keywords", dsn)
	}
}

func TestString_MasksSecrets(t *testing.T) {
	cfg := &Config{Host: "h", Port: 1, Database: "d", User: "u", Password: "hunter2", URL: "https://x", Key: "sekrit"}

	s := cfg.String()
	if strings.Contains(s, "hunter2") || strings.Contains(s, "sekrit") {
		t.Errorf("String() leaked a secret: %s", s)
	}
	if !strings.Contains(s, "[MASKED]") {
		t.Errorf("String() = %s, want masked markers", s)
	}
}

func TestApplyRemoteDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyRemoteDefaults()
	if cfg.Database != RemoteDefaultDatabase || cfg.User != RemoteDefaultUser {
		t.Errorf("ApplyRemoteDefaults() = %q/%q, want postgres/postgres", cfg.Database, cfg.User)
	}

	cfg = &Config{Database: "custom", User: "me"}
	cfg.ApplyRemoteDefaults()
	if cfg.Database != "custom" || cfg.User != "me" {
		t.Error("ApplyRemoteDefaults() overwrote explicit values")
	}
}
