package infra

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"me_msggen/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Generator.Quantity != 100 || cfg.Generator.ContraIncrement != 100 || cfg.Generator.Sender != 1 {
		t.Errorf("Unexpected defaults: %+v", cfg.Generator)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
generator:
  sender: 7
  quantity: 300
output:
  concat_seeded: true
  ws_url: ws://localhost:9000/orders
logging:
  level: debug
  dir: ""
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Generator.Sender != 7 || cfg.Generator.Quantity != 300 {
		t.Errorf("Generator = %+v", cfg.Generator)
	}
	// Unset keys keep their defaults
	if cfg.Generator.ContraIncrement != 100 {
		t.Errorf("ContraIncrement = %d, want default 100", cfg.Generator.ContraIncrement)
	}
	if !cfg.Output.ConcatSeeded || cfg.Output.WSURL != "ws://localhost:9000/orders" {
		t.Errorf("Output = %+v", cfg.Output)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := writeConfig(t, "generator:\n  sender: 7\n")
	t.Setenv("MSGGEN_GENERATOR_SENDER", "9")
	t.Setenv("MSGGEN_STORAGE_ENABLED", "true")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Generator.Sender != 9 {
		t.Errorf("Sender = %d, want 9 from env", cfg.Generator.Sender)
	}
	if !cfg.Storage.Enabled {
		t.Error("Expected storage enabled from env")
	}
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("MSGGEN_GENERATOR_QUANTITY=250\n"), 0644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)
	t.Cleanup(func() { os.Unsetenv("MSGGEN_GENERATOR_QUANTITY") })

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Generator.Quantity != 250 {
		t.Errorf("Quantity = %d, want 250 from .env", cfg.Generator.Quantity)
	}
}

func TestLoadConfig_MalformedDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("MSGGEN_LOGGING_LEVEL=\"debug\n"), 0644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	_, err := LoadConfig("")
	var cfgErr *domain.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != ".env" {
		t.Errorf("Expected ConfigError for .env, got %v", err)
	}
}

func TestLoadConfig_NotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, domain.ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero quantity", func(c *Config) { c.Generator.Quantity = 0 }, "generator.quantity"},
		{"negative sender", func(c *Config) { c.Generator.Sender = -1 }, "generator.sender"},
		{"zero increment", func(c *Config) { c.Generator.ContraIncrement = 0 }, "generator.contra_increment"},
		{"bad ws url", func(c *Config) { c.Output.WSURL = "http://engine" }, "output.ws_url"},
		{"storage without path", func(c *Config) { c.Storage.Enabled = true; c.Storage.Path = "" }, "storage.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			var ce *domain.ConfigError
			if err := cfg.Validate(); !errors.As(err, &ce) || ce.Field != tt.field {
				t.Errorf("Validate() = %v, want ConfigError on %s", err, tt.field)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
