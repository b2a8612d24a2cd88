package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_Scheduler(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Scheduler.Enabled {
		t.Error("scheduler should be enabled by default")
	}
	if cfg.Scheduler.RefreshMatches != "0 0 * * *" {
		t.Errorf("RefreshMatches = %q, expected %q", cfg.Scheduler.RefreshMatches, "0 0 * * *")
	}
	if cfg.Scheduler.SLASweep != "0 1 * * *" {
		t.Errorf("SLASweep = %q, expected %q", cfg.Scheduler.SLASweep, "0 1 * * *")
	}
	if cfg.Scheduler.SessionCleanup != "0 */6 * * *" {
		t.Errorf("SessionCleanup = %q, expected %q", cfg.Scheduler.SessionCleanup, "0 */6 * * *")
	}
	if cfg.Mail.Enabled() {
		t.Error("mail should be disabled without a host")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, expected sqlite", cfg.Database.Driver)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  port: \"9090\"\nscheduler:\n  sla_sweep: \"30 2 * * *\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %q, expected 9090", cfg.Server.Port)
	}
	if cfg.Scheduler.SLASweep != "30 2 * * *" {
		t.Errorf("SLASweep = %q, expected %q", cfg.Scheduler.SLASweep, "30 2 * * *")
	}
	if cfg.Scheduler.RefreshMatches != "0 0 * * *" {
		t.Errorf("RefreshMatches should keep default, got %q", cfg.Scheduler.RefreshMatches)
	}
}

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		addr     string
		password string
		db       int
	}{
		{"host only", "redis://localhost:6379", "localhost:6379", "", 0},
		{"with password", "redis://:secret@redis:6379", "redis:6379", "secret", 0},
		{"with db", "redis://:secret@redis:6380/2", "redis:6380", "secret", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.parseRedisURL(tt.url)
			if cfg.Redis.Addr != tt.addr {
				t.Errorf("Addr = %q, expected %q", cfg.Redis.Addr, tt.addr)
			}
			if cfg.Redis.Password != tt.password {
				t.Errorf("Password = %q, expected %q", cfg.Redis.Password, tt.password)
			}
			if cfg.Redis.DB != tt.db {
				t.Errorf("DB = %d, expected %d", cfg.Redis.DB, tt.db)
			}
		})
	}
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SCHEDULER_ENABLED", "false")

	cfg := DefaultConfig()
	cfg.overrideFromEnv()

	if !cfg.Mail.Enabled() || cfg.Mail.Host != "smtp.example.com" {
		t.Errorf("Mail.Host = %q, expected smtp.example.com", cfg.Mail.Host)
	}
	if cfg.Mail.Port != 2525 {
		t.Errorf("Mail.Port = %d, expected 2525", cfg.Mail.Port)
	}
	if cfg.Scheduler.Enabled {
		t.Error("scheduler should be disabled by SCHEDULER_ENABLED=false")
	}
}
