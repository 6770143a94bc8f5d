package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("APPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, "yymh")
}

func TestLoadMerged_NoProfileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, used, err := LoadMerged(Options{ImageWorkers: 9, BaseURL: "https://mirror.example"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if used == "" {
		t.Fatalf("expected a description of the config source")
	}
	if cfg.ImageWorkers != 9 || cfg.ChapterWorkers != 2 {
		t.Fatalf("workers = %d/%d", cfg.ImageWorkers, cfg.ChapterWorkers)
	}
	if cfg.BaseURL != "https://mirror.example" || cfg.Lang != 1 {
		t.Fatalf("site = %q lang %d", cfg.BaseURL, cfg.Lang)
	}
	if cfg.RequestInterval() != 250*time.Millisecond {
		t.Fatalf("interval = %v", cfg.RequestInterval())
	}
}

func TestLoadMerged_ProfileThenFlags(t *testing.T) {
	root := isolate(t)

	path, err := InitDefaultConfig()
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if path != filepath.Join(root, "configs", "Default.yaml") {
		t.Fatalf("path = %q", path)
	}

	raw := []byte("output: /tmp/manga\nimage_workers: 3\ncloudflare_bypass: true\nrequest_interval_ms: 1000\n")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, used, err := LoadMerged(Options{ImageWorkers: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if used != path {
		t.Fatalf("used = %q, want %q", used, path)
	}
	if cfg.Output != "/tmp/manga" || cfg.ImageWorkers != 7 || !cfg.CloudflareBypass {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	// keys missing from the file keep their defaults
	if cfg.BaseURL != DefaultConfig().BaseURL || len(cfg.AllowExt) != 4 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.RequestIntervalMS != 1000 {
		t.Fatalf("interval = %d", cfg.RequestIntervalMS)
	}

	ignored, _, err := LoadMerged(Options{IgnoreConfig: true})
	if err != nil || ignored.Output != "." {
		t.Fatalf("ignore config: %+v, %v", ignored, err)
	}
}

func TestProfiles(t *testing.T) {
	isolate(t)

	if _, err := InitDefaultConfig(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := CreateEmptyConfig("work"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := CreateEmptyConfig("work"); err == nil {
		t.Fatalf("expected duplicate label to fail")
	}
	if _, err := CreateEmptyConfig("../evil"); err == nil {
		t.Fatalf("expected path label to be rejected")
	}

	if err := SwitchConfig("work"); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if err := RenameConfig("work", "home"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if label, _ := CurrentLabel(); label != "home" {
		t.Fatalf("active label = %q after rename", label)
	}

	list, err := ListConfigs()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Label != "Default" || !list[1].Active {
		t.Fatalf("unexpected list: %+v", list)
	}

	if _, err := ConfigPathByLabel("home"); err != nil {
		t.Fatalf("path by label: %v", err)
	}

	if err := RemoveConfig("home"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if label, _ := CurrentLabel(); label != "Default" {
		t.Fatalf("expected fallback to Default, got %q", label)
	}
	if err := RemoveConfig("Default"); err == nil {
		t.Fatalf("Default must not be removable")
	}
}

func TestActiveConfigPath_None(t *testing.T) {
	isolate(t)

	if _, err := ActiveConfigPath(); !errors.Is(err, ErrNoConfig) {
		t.Fatalf("expected ErrNoConfig, got %v", err)
	}
}
