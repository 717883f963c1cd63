package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
database:
  path: "test.db"
api:
  http:
    port: 9000
redis:
  enabled: true
cache:
  ttl: 30s
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Path != "test.db" {
		t.Errorf("expected database path test.db, got %s", cfg.Database.Path)
	}
	if cfg.API.HTTP.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.API.HTTP.Port)
	}
	if cfg.Redis.Address != "localhost:6379" {
		t.Errorf("expected default redis address, got %s", cfg.Redis.Address)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("expected cache ttl 30s, got %s", cfg.Cache.TTL)
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("LENDIT_DB_PATH", "from-env.db")
	yamlContent := `
database:
  path: "${LENDIT_DB_PATH}"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Database.Path != "from-env.db" {
		t.Errorf("expected env-expanded path, got %s", cfg.Database.Path)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     Config{Database: DatabaseConfig{Path: "path"}},
			wantErr: false,
		},
		{
			name:    "missing database path",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "telegram enabled without token",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Telegram: TelegramConfig{Enabled: true},
			},
			wantErr: true,
		},
		{
			name: "telegram enabled without chat id",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Telegram: TelegramConfig{Enabled: true, BotToken: "token"},
			},
			wantErr: true,
		},
		{
			name: "exports enabled without path",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Exports:  ExportConfig{Enabled: true},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.API.HTTP.Port != 8080 {
		t.Errorf("expected default http port 8080, got %d", cfg.API.HTTP.Port)
	}
	if cfg.API.RateLimit.RPS != 50 || cfg.API.RateLimit.Burst != 100 {
		t.Errorf("unexpected rate limit defaults: %+v", cfg.API.RateLimit)
	}
	if cfg.Cache.TTL != time.Minute {
		t.Errorf("expected default cache ttl 1m, got %s", cfg.Cache.TTL)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
}
