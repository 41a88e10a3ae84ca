package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
server:
  host: "127.0.0.1"
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "veloform"
  user: "veloform"
  password: "secret"
  sslmode: "disable"
auth:
  api_key: "test-key"
engine:
  gross_efficiency: 0.23
  tau_lactic_sec: 180
  sleep_target_min: 480
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "veloform" {
		t.Errorf("Database.Name = %q, want veloform", cfg.Database.Name)
	}
	if cfg.Auth.APIKey != "test-key" {
		t.Errorf("Auth.APIKey = %q, want test-key", cfg.Auth.APIKey)
	}
	if cfg.Engine.GrossEfficiency != 0.23 {
		t.Errorf("Engine.GrossEfficiency = %v, want 0.23", cfg.Engine.GrossEfficiency)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() with missing file should fail")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	if _, err := Load(writeTemp(t, "server: [not a map")); err == nil {
		t.Fatal("Load() with invalid YAML should fail")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VELOFORM_SERVER_PORT", "9999")
	t.Setenv("VELOFORM_DB_PASSWORD", "env-secret")
	t.Setenv("VELOFORM_AUTH_API_KEY", "env-key")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Database.Password != "env-secret" {
		t.Errorf("Database.Password = %q, want env-secret", cfg.Database.Password)
	}
	if cfg.Auth.APIKey != "env-key" {
		t.Errorf("Auth.APIKey = %q, want env-key", cfg.Auth.APIKey)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.Server.Port = 0 }},
		{"missing db host", func(c *Config) { c.Database.Host = "" }},
		{"missing db name", func(c *Config) { c.Database.Name = "" }},
		{"missing db user", func(c *Config) { c.Database.User = "" }},
		{"missing api key", func(c *Config) { c.Auth.APIKey = "" }},
		{"tailscale without hostname", func(c *Config) {
			c.Tailscale.Enabled = true
			c.Tailscale.Hostname = ""
		}},
		{"bad gross efficiency", func(c *Config) { c.Engine.GrossEfficiency = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeTemp(t, validYAML))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.validate(); err == nil {
				t.Error("validate() should fail")
			}
		})
	}
}

func TestTailscaleWithoutPort(t *testing.T) {
	yaml := validYAML + `
tailscale:
  enabled: true
  hostname: "veloform"
`
	cfg, err := Load(writeTemp(t, yaml))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.Server.Port = 0
	if err := cfg.validate(); err != nil {
		t.Errorf("validate() with tailscale enabled and no port should pass, got %v", err)
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: 5432, Name: "veloform",
		User: "u", Password: "p", SSLMode: "require",
	}
	want := "postgres://u:p@db:5432/veloform?sslmode=require"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	d.SSLMode = ""
	if got := d.DSN(); got != "postgres://u:p@db:5432/veloform?sslmode=disable" {
		t.Errorf("DSN() default sslmode = %q", got)
	}
}
