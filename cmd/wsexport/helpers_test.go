package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wsexport/internal/config"
	"wsexport/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	server     *httptest.Server
}

// setupCLITestEnv writes a config pointing at handler (when non-nil) and at a
// converter script with the given body.
func setupCLITestEnv(t *testing.T, converter string, handler http.Handler) *cliTestEnv {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg := testsupport.NewConfig(t, testsupport.WithConverterScript(converter))
	env := &cliTestEnv{cfg: cfg}
	if handler != nil {
		env.server = httptest.NewServer(handler)
		t.Cleanup(env.server.Close)
		cfg.Wiki.BaseURL = env.server.URL
	}

	env.configPath = filepath.Join(home, "wsexport.toml")
	writeTestConfig(t, env.configPath, cfg)
	return env
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
temp_dir = %q
state_dir = %q
log_dir = %q

[wiki]
default_lang = "fr"
base_url = %q
page_source = %q

[convert]
ebook_convert = %q
exec_timeout = 10

[logging]
level = "error"
`,
		cfg.Paths.TempDir, cfg.Paths.StateDir, cfg.Paths.LogDir,
		cfg.Wiki.BaseURL, cfg.Wiki.PageSource, cfg.Convert.EbookConvert,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// pageHandler serves a single page through the query API and reports every
// other title as missing.
func pageHandler(t *testing.T, title, content string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/w/api.php" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("titles") != title {
			fmt.Fprintf(w, `{"query":{"pages":{"-1":{"title":%q,"missing":""}}}}`, r.URL.Query().Get("titles"))
			return
		}
		fmt.Fprintf(w, `{"query":{"pages":{"42":{"title":%q,"revisions":[{"*":%q}]}}}}`, title, content)
	})
}
