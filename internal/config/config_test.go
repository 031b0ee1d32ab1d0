package config_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"wsexport/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("WSEXPORT_EBOOK_CONVERT", "")
	t.Chdir(tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "wsexport", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if want := filepath.Join(tempHome, ".local", "share", "wsexport"); cfg.Paths.StateDir != want {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, want)
	}
	if cfg.Wiki.UserAgent != "Wikisource Export/0.1" {
		t.Fatalf("unexpected user agent %q", cfg.Wiki.UserAgent)
	}
	if cfg.ConnectTimeout() != 10*time.Second || cfg.RequestTimeout() != 60*time.Second {
		t.Fatalf("unexpected timeouts %v %v", cfg.ConnectTimeout(), cfg.RequestTimeout())
	}
	if cfg.ExecTimeout() != 120*time.Second {
		t.Fatalf("unexpected exec timeout %v", cfg.ExecTimeout())
	}
	if cfg.Convert.EbookConvert != "ebook-convert" {
		t.Fatalf("unexpected converter %q", cfg.Convert.EbookConvert)
	}
	if cfg.Wiki.PageSource != config.PageSourceQuery {
		t.Fatalf("unexpected page source %q", cfg.Wiki.PageSource)
	}
	if cfg.JobsDBPath() != filepath.Join(cfg.Paths.StateDir, "jobs.db") {
		t.Fatalf("unexpected jobs db path %q", cfg.JobsDBPath())
	}
}

func TestLoadCustomPathAndNormalization(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("WSEXPORT_EBOOK_CONVERT", "")

	cfg := config.Default()
	cfg.Paths.TempDir = "~/scratch"
	cfg.Wiki.PageSource = " REST "
	cfg.Wiki.DefaultLang = "FR"
	cfg.Convert.ExecTimeout = 0
	cfg.Logging.Format = "JSON"

	configPath := filepath.Join(tempHome, "custom.toml")
	writeConfig(t, configPath, cfg)

	loaded, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if loaded.Paths.TempDir != filepath.Join(tempHome, "scratch") {
		t.Fatalf("unexpected temp dir %q", loaded.Paths.TempDir)
	}
	if loaded.Wiki.PageSource != config.PageSourceREST {
		t.Fatalf("expected rest page source, got %q", loaded.Wiki.PageSource)
	}
	if loaded.Wiki.DefaultLang != "fr" {
		t.Fatalf("expected lowercased lang, got %q", loaded.Wiki.DefaultLang)
	}
	if loaded.Convert.ExecTimeout != 120 {
		t.Fatalf("expected exec timeout default, got %d", loaded.Convert.ExecTimeout)
	}
	if loaded.Logging.Format != "json" {
		t.Fatalf("expected json format, got %q", loaded.Logging.Format)
	}
}

func TestEbookConvertEnvFallback(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("WSEXPORT_EBOOK_CONVERT", "/opt/calibre/ebook-convert")
	t.Chdir(tempHome)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Convert.EbookConvert != "/opt/calibre/ebook-convert" {
		t.Fatalf("expected env override, got %q", cfg.Convert.EbookConvert)
	}
}

func TestValidateRejectsUnknownPageSource(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(tempHome, "bad.toml")
	if err := os.WriteFile(configPath, []byte("[wiki]\npage_source = \"scrape\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "wiki.page_source") {
		t.Fatalf("expected page_source validation error, got %v", err)
	}
}

func TestValidateBaseURL(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cases := map[string]bool{
		"http://127.0.0.1:8080/": true,
		"ftp://mirror.example":   false,
		"not a url":              false,
	}
	for value, ok := range cases {
		configPath := filepath.Join(tempHome, "base.toml")
		body := fmt.Sprintf("[wiki]\nbase_url = %q\n", value)
		if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		cfg, _, _, err := config.Load(configPath)
		if ok {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", value, err)
			}
			if cfg.Wiki.BaseURL != "http://127.0.0.1:8080" {
				t.Fatalf("expected trailing slash trimmed, got %q", cfg.Wiki.BaseURL)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), "wiki.base_url") {
			t.Fatalf("%s: expected base_url error, got %v", value, err)
		}
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(tempHome, "typo.toml")
	if err := os.WriteFile(configPath, []byte("[convert]\nexec_timout = 5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected parse error for unknown key")
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	target := filepath.Join(tempHome, "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Convert.ExecTimeout != 120 {
		t.Fatalf("unexpected exec timeout %d", cfg.Convert.ExecTimeout)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.TempDir = filepath.Join(base, "tmp")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.TempDir, cfg.Paths.StateDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

func writeConfig(t *testing.T, path string, cfg config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
