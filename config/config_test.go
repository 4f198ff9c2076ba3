package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newFlagSet() *flag.FlagSet {
	return flag.NewFlagSet("scraper", flag.ContinueOnError)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SaveDirectory != "data" || cfg.LogDirectory != "logs" {
		t.Fatalf("directories = %q, %q", cfg.SaveDirectory, cfg.LogDirectory)
	}
	if cfg.UpdateInterval != 300*time.Second {
		t.Fatalf("interval = %v, want 5m0s", cfg.UpdateInterval)
	}
	if cfg.FeedURL != "https://data.vatsim.net/v3/vatsim-data.json" {
		t.Fatalf("feed url = %q", cfg.FeedURL)
	}
}

func TestLoadEnvAndFlags(t *testing.T) {
	t.Setenv("SAVE_DIRECTORY", "/var/lib/scraper")
	t.Setenv("WEBHOOK_URL", "https://discord.test/hook")
	t.Setenv("UPDATE_INTERVAL", "60s")

	cfg, err := Load(newFlagSet(), []string{"-interval", "2m", "-log-dir", "/var/log/scraper"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SaveDirectory != "/var/lib/scraper" {
		t.Fatalf("save dir = %q", cfg.SaveDirectory)
	}
	if cfg.WebhookURL != "https://discord.test/hook" {
		t.Fatalf("webhook = %q", cfg.WebhookURL)
	}
	if cfg.UpdateInterval != 2*time.Minute {
		t.Fatalf("interval = %v, want flag value 2m0s", cfg.UpdateInterval)
	}
	if cfg.LogDirectory != "/var/log/scraper" {
		t.Fatalf("log dir = %q", cfg.LogDirectory)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "save_directory: /srv/archive\nlog_directory: /srv/logs\nwebhook_url: https://discord.test/yaml\nupdate_interval: 90s\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("WEBHOOK_URL", "https://discord.test/env")

	cfg, err := Load(newFlagSet(), []string{"-config", path, "-save-dir", "/override"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogDirectory != "/srv/logs" || cfg.UpdateInterval != 90*time.Second {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.WebhookURL != "https://discord.test/yaml" {
		t.Fatalf("webhook = %q, want file value", cfg.WebhookURL)
	}
	if cfg.SaveDirectory != "/override" {
		t.Fatalf("save dir = %q, want flag value", cfg.SaveDirectory)
	}
}

func TestLoadYAMLFileFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_directory: /from/file\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SCRAPER_CONFIG", path)

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogDirectory != "/from/file" {
		t.Fatalf("log dir = %q", cfg.LogDirectory)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("bad env", func(t *testing.T) {
		t.Setenv("UPDATE_INTERVAL", "soon")
		_, err := Load(newFlagSet(), nil)
		if err == nil || !strings.Contains(err.Error(), "parse env:") {
			t.Fatalf("err = %v, want parse env error", err)
		}
	})
	t.Run("bad yaml interval", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		os.WriteFile(path, []byte("update_interval: later\n"), 0o644)
		if _, err := Load(newFlagSet(), []string{"-config=" + path}); err == nil {
			t.Fatal("expected error")
		}
	})
	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(newFlagSet(), []string{"-config", filepath.Join(t.TempDir(), "nope.yaml")}); err == nil {
			t.Fatal("expected error")
		}
	})
	t.Run("unknown driver", func(t *testing.T) {
		_, err := Load(newFlagSet(), []string{"-db-driver", "mysql", "-db-dsn", "x"})
		if err == nil || !strings.Contains(err.Error(), "config validation") {
			t.Fatalf("err = %v, want validation error", err)
		}
	})
}

func TestValidate(t *testing.T) {
	base := Config{SaveDirectory: "data", LogDirectory: "logs", UpdateInterval: time.Minute}
	if err := base.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	noDSN := base
	noDSN.DBDriver = "sqlite"
	if err := noDSN.Validate(); err == nil {
		t.Fatal("expected error for missing DSN")
	}

	zero := base
	zero.UpdateInterval = 0
	if err := zero.Validate(); err == nil {
		t.Fatal("expected error for zero interval")
	}

	empty := base
	empty.SaveDirectory = ""
	if err := empty.Validate(); err == nil {
		t.Fatal("expected error for empty save directory")
	}
}
