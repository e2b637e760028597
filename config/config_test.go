package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.Name != "tres-devtools-go" {
		t.Errorf("Expected name 'tres-devtools-go', got '%s'", cfg.Name)
	}

	if cfg.Server.Host != "localhost" {
		t.Errorf("Expected host 'localhost', got '%s'", cfg.Server.Host)
	}

	if cfg.Server.Port != 3300 {
		t.Errorf("Expected port 3300, got %d", cfg.Server.Port)
	}

	if cfg.Panel.Route != "/__tres_nuxt_devtools" {
		t.Errorf("Expected default panel route, got '%s'", cfg.Panel.Route)
	}

	if cfg.Telemetry.Capacity != 160 || cfg.Telemetry.LogIntervalMS != 1000 {
		t.Errorf("Unexpected telemetry defaults: %+v", cfg.Telemetry)
	}

	if cfg.Assets.PreviewMaxEdge != 128 || !cfg.Assets.CapturePreviews {
		t.Errorf("Unexpected asset defaults: %+v", cfg.Assets)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}
	return path
}

func TestLoadConfigFormats(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{
			name: "devtools.json",
			body: `{
				"name": "test-devtools",
				"server": {"host": "127.0.0.1", "port": 8080, "debug": true},
				"logging": {"level": "DEBUG", "format": "text", "path": "/tmp/test.log"},
				"telemetry": {"capacity": 60},
				"panel": {"route": "inspector/"}
			}`,
		},
		{
			name: "devtools.yaml",
			body: `
name: test-devtools
server:
  host: 127.0.0.1
  port: 8080
  debug: true
logging:
  level: DEBUG
  format: text
  path: /tmp/test.log
telemetry:
  capacity: 60
panel:
  route: inspector/
`,
		},
		{
			name: "devtools.toml",
			body: `
name = "test-devtools"

[server]
host = "127.0.0.1"
port = 8080
debug = true

[logging]
level = "DEBUG"
format = "text"
path = "/tmp/test.log"

[telemetry]
capacity = 60

[panel]
route = "inspector/"
`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tc.name, tc.body))
			if err != nil {
				t.Fatalf("Failed to load config: %v", err)
			}
			if cfg.Name != "test-devtools" {
				t.Errorf("Expected name 'test-devtools', got '%s'", cfg.Name)
			}
			if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 8080 || !cfg.Server.Debug {
				t.Errorf("Unexpected server section: %+v", cfg.Server)
			}
			if cfg.Logging.Level != "debug" {
				t.Errorf("Expected normalized level 'debug', got '%s'", cfg.Logging.Level)
			}
			if cfg.Telemetry.Capacity != 60 {
				t.Errorf("Expected capacity 60, got %d", cfg.Telemetry.Capacity)
			}
			if cfg.Telemetry.LogIntervalMS != 1000 {
				t.Errorf("Expected default log interval to survive, got %d", cfg.Telemetry.LogIntervalMS)
			}
			if cfg.Panel.Route != "/inspector" {
				t.Errorf("Expected normalized route '/inspector', got '%s'", cfg.Panel.Route)
			}
		})
	}
}

func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/devtools.json")
	if err == nil {
		t.Error("Expected error when loading non-existent config file")
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	if _, err := LoadConfig(writeConfig(t, "broken.json", `{"server": `)); err == nil {
		t.Error("Expected decode error for truncated JSON")
	}

	_, err := LoadConfig(writeConfig(t, "bad.yaml", "server:\n  port: 70000\n"))
	if err == nil || !strings.Contains(err.Error(), "port") {
		t.Errorf("Expected port validation error, got %v", err)
	}

	_, err = LoadConfig(writeConfig(t, "route.json", `{"panel": {"route": "/"}}`))
	if err == nil {
		t.Error("Expected root panel route to be rejected")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TRES_DEVTOOLS_PORT", "4400")
	t.Setenv("TRES_DEVTOOLS_HOST", "0.0.0.0")
	t.Setenv("TRES_DEVTOOLS_DEBUG", "not-a-bool")
	t.Setenv("TRES_DEVTOOLS_CAPTURE_PREVIEWS", "false")
	t.Setenv("TRES_DEVTOOLS_PANEL_ROUTE", "/panel")

	cfg, err := LoadConfig(writeConfig(t, "devtools.json", `{"server": {"port": 8080}}`))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Server.Port != 4400 {
		t.Errorf("Expected env port 4400, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected env host, got '%s'", cfg.Server.Host)
	}
	if cfg.Server.Debug {
		t.Error("Expected invalid debug override to be ignored")
	}
	if cfg.Assets.CapturePreviews {
		t.Error("Expected preview capture to be disabled")
	}
	if cfg.Panel.Route != "/panel" {
		t.Errorf("Expected env route, got '%s'", cfg.Panel.Route)
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("TRES_DEVTOOLS_CONFIG_PATH", "/etc/tres/devtools.yaml")
	path, err := ResolveConfigPath()
	if err != nil {
		t.Fatalf("Expected no error resolving config path, got %v", err)
	}
	if path != "/etc/tres/devtools.yaml" {
		t.Errorf("Expected env path, got '%s'", path)
	}

	t.Setenv("TRES_DEVTOOLS_CONFIG_PATH", "")
	path, err = ResolveConfigPath()
	if err != nil {
		t.Fatalf("Expected no error resolving config path, got %v", err)
	}
	if filepath.Base(path) != "devtools.json" {
		t.Errorf("Expected config filename 'devtools.json', got '%s'", filepath.Base(path))
	}
}

func TestSaveAndEnsureDefaultConfig(t *testing.T) {
	cfg := NewConfig()
	cfg.Name = "test-save"
	cfg.Server.Port = 9090
	cfg.Logging.Path = "/tmp/save_test.log"
	cfg.Assets.PreviewMaxEdge = 64

	for _, name := range []string{"saved.json", "saved.yml", "saved.toml"} {
		path := filepath.Join(t.TempDir(), "nested", name)
		if err := SaveConfig(cfg, path); err != nil {
			t.Fatalf("Failed to save %s: %v", name, err)
		}
		loaded, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("Failed to load saved %s: %v", name, err)
		}
		if loaded.Name != cfg.Name || loaded.Server.Port != 9090 || loaded.Assets.PreviewMaxEdge != 64 {
			t.Errorf("Round trip through %s lost fields: %+v", name, loaded)
		}
	}

	if err := SaveConfig(nil, filepath.Join(t.TempDir(), "nil.json")); err == nil {
		t.Error("Expected error saving nil config")
	}

	path := filepath.Join(t.TempDir(), "config", "devtools.json")
	if err := EnsureDefaultConfig(path); err != nil {
		t.Fatalf("Failed to ensure default config: %v", err)
	}
	if err := os.WriteFile(path, []byte(`{"name": "kept"}`), 0644); err != nil {
		t.Fatalf("Failed to overwrite config: %v", err)
	}
	if err := EnsureDefaultConfig(path); err != nil {
		t.Fatalf("Expected existing config to be left alone: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if loaded.Name != "kept" {
		t.Errorf("EnsureDefaultConfig overwrote an existing file")
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "devtools.json", `{"server": {"port": 8080}}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config, err error) {
			if err == nil {
				reloaded <- cfg
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`{"server": {"port": 8181}}`), 0644); err != nil {
		t.Fatalf("Failed to rewrite config: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-reloaded:
			if cfg.Server.Port == 8181 {
				cancel()
				if err := <-done; err != nil {
					t.Fatalf("Watch returned error: %v", err)
				}
				return
			}
		case <-deadline:
			t.Fatal("Timed out waiting for config reload")
		}
	}
}
