package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/rogers-f/tierforge/internal/domain"
)

func validYAML() string {
	return `db_path: /tmp/test.db
strict_registration: true
redis_url: redis://localhost:6379/0
leaderboard_default_limit: 25
log_level: DEBUG
`
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func requireConfigInvalid(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var engineErr *domain.EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("expected EngineError, got %T", err)
	}
	if engineErr.Code != domain.ErrConfigInvalid.Code {
		t.Errorf("Code = %d, want %d", engineErr.Code, domain.ErrConfigInvalid.Code)
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", validYAML())

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("DBPath = %q, want /tmp/test.db", cfg.DBPath)
	}
	if !cfg.StrictRegistration {
		t.Error("StrictRegistration = false, want true")
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.LeaderboardDefaultLimit != 25 {
		t.Errorf("LeaderboardDefaultLimit = %d, want 25", cfg.LeaderboardDefaultLimit)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoad_ValidJSON(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.json", `{"db_path": "/tmp/j.db", "redis_stream": "custom"}`)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/tmp/j.db" {
		t.Errorf("DBPath = %q, want /tmp/j.db", cfg.DBPath)
	}
	if cfg.RedisStream != "custom" {
		t.Errorf("RedisStream = %q, want custom", cfg.RedisStream)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "db_path: /tmp/test.db\n")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RedisStream != "tierforge.transitions" {
		t.Errorf("RedisStream = %q, want tierforge.transitions", cfg.RedisStream)
	}
	if cfg.LeaderboardDefaultLimit != 10 {
		t.Errorf("LeaderboardDefaultLimit = %d, want 10", cfg.LeaderboardDefaultLimit)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.StrictRegistration {
		t.Error("StrictRegistration = true, want false")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", validYAML())
	t.Setenv("TIERFORGE_DB_PATH", "/env/tiers.db")
	t.Setenv("TIERFORGE_LEADERBOARD_DEFAULT_LIMIT", "3")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/env/tiers.db" {
		t.Errorf("DBPath = %q, want /env/tiers.db", cfg.DBPath)
	}
	if cfg.LeaderboardDefaultLimit != 3 {
		t.Errorf("LeaderboardDefaultLimit = %d, want 3", cfg.LeaderboardDefaultLimit)
	}
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("TIERFORGE_DB_PATH", "/env/only.db")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/env/only.db" {
		t.Errorf("DBPath = %q, want /env/only.db", cfg.DBPath)
	}
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	t.Setenv("TIERFORGE_DB_PATH", "/env/tiers.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", "", "")
	if err := flags.Parse([]string{"--db", "/flag/tiers.db"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/flag/tiers.db" {
		t.Errorf("DBPath = %q, want /flag/tiers.db", cfg.DBPath)
	}
}

func TestLoad_UnchangedFlagDoesNotOverride(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", validYAML())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", "", "")

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("DBPath = %q, want /tmp/test.db", cfg.DBPath)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml", nil)
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "db_path: [unclosed\n")

	_, err := Load(path, nil)
	if err == nil {
		t.Fatal("expected error for invalid YAML, got nil")
	}
}

func TestLoad_MissingDBPath(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "log_level: info\n")
	_, err := Load(path, nil)
	requireConfigInvalid(t, err)
}

func TestLoad_BadLogLevel(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "db_path: /tmp/x.db\nlog_level: loud\n")
	_, err := Load(path, nil)
	requireConfigInvalid(t, err)
}

func TestLoad_NegativeLimit(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "db_path: /tmp/x.db\nleaderboard_default_limit: -2\n")
	_, err := Load(path, nil)
	requireConfigInvalid(t, err)
}

func TestLoad_MissingCatalog(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "db_path: /tmp/x.db\ncatalog_path: /nonexistent/tiers.yaml\n")
	_, err := Load(path, nil)
	requireConfigInvalid(t, err)
}

func TestDiscover_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", validYAML())
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	got := Discover()
	if got != "config.yaml" {
		t.Errorf("Discover() = %q, want config.yaml", got)
	}
}
