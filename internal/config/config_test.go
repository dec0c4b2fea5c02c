package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvStoreDriver, EnvRedisAddr, EnvAssistantEndpoint, EnvServerPort, EnvLogLevel} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, projectDir, body string) {
	t.Helper()
	dir := filepath.Join(projectDir, BlueprintDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(strings.TrimSpace(body)), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewConfigDefaultsWhenMissing(t *testing.T) {
	clearEnv(t)
	projectDir := t.TempDir()
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Project.Version)
	}
	if c.Project.Store.Driver != DriverFile {
		t.Fatalf("expected file driver, got %q", c.Project.Store.Driver)
	}
	if c.AutosaveDebounce() != 400*time.Millisecond {
		t.Fatalf("unexpected debounce %s", c.AutosaveDebounce())
	}
	if c.ServerAddr() != "127.0.0.1:8765" {
		t.Fatalf("unexpected server addr %s", c.ServerAddr())
	}
	if !strings.HasSuffix(c.SQLitePath(), filepath.Join(BlueprintDir, "documents", "blueprints.db")) {
		t.Fatalf("unexpected sqlite path %s", c.SQLitePath())
	}
}

func TestInitBlueprintDirWritesTemplateOnce(t *testing.T) {
	clearEnv(t)
	projectDir := t.TempDir()
	if err := InitBlueprintDir(projectDir); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, sub := range []string{"logs", "documents", "exports"} {
		info, err := os.Stat(filepath.Join(projectDir, BlueprintDir, sub))
		if err != nil || !info.IsDir() {
			t.Fatalf("expected %s directory: %v", sub, err)
		}
	}
	path := filepath.Join(projectDir, BlueprintDir, "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\nstore:\n  driver: sqlite\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := InitBlueprintDir(projectDir); err != nil {
		t.Fatalf("second init: %v", err)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if c.Project.Store.Driver != DriverSQLite {
		t.Fatalf("existing config was overwritten, driver %q", c.Project.Store.Driver)
	}
}

func TestDefaultTemplateParses(t *testing.T) {
	clearEnv(t)
	projectDir := t.TempDir()
	if err := InitBlueprintDir(projectDir); err != nil {
		t.Fatal(err)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("default template should load: %v", err)
	}
	if c.Project.Assistant.Provider != ProviderOllama || !c.AssistantEnabled() {
		t.Fatalf("unexpected assistant config %+v", c.Project.Assistant)
	}
}

func TestNewConfigParsesYaml(t *testing.T) {
	clearEnv(t)
	projectDir := t.TempDir()
	writeConfig(t, projectDir, `
version: 1
store:
  driver: SQLite
  path: data/blueprints.db
autosave:
  debounce_ms: 50
assistant:
  provider: none
  timeout_seconds: 5
server:
  port: 9000
logging:
  level: DEBUG
`)
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Project.Store.Driver != DriverSQLite {
		t.Fatalf("driver not normalized: %q", c.Project.Store.Driver)
	}
	if c.SQLitePath() != filepath.Join(projectDir, "data", "blueprints.db") {
		t.Fatalf("expected resolved sqlite path, got %s", c.SQLitePath())
	}
	if c.AutosaveDebounce() != 50*time.Millisecond || c.AssistantTimeout() != 5*time.Second {
		t.Fatalf("durations not parsed")
	}
	if c.AssistantEnabled() {
		t.Fatalf("provider none should disable the assistant")
	}
	if c.Project.Logging.Level != "debug" || c.Project.Server.Port != 9000 {
		t.Fatalf("unexpected project %+v", c.Project)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvStoreDriver, "redis")
	t.Setenv(EnvRedisAddr, "cache:6379")
	t.Setenv(EnvServerPort, "9100")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvAssistantEndpoint, "http://ollama:11434/")
	c, err := NewConfig(t.TempDir())
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if c.Project.Store.Driver != DriverRedis || c.Project.Store.Redis.Addr != "cache:6379" {
		t.Fatalf("store overrides not applied: %+v", c.Project.Store)
	}
	if c.Project.Server.Port != 9100 || c.Project.Logging.Level != "warn" {
		t.Fatalf("overrides not applied: %+v", c.Project)
	}
	if c.Project.Assistant.Endpoint != "http://ollama:11434" {
		t.Fatalf("endpoint not normalized: %s", c.Project.Assistant.Endpoint)
	}
	if c.RedisTTL() != 720*time.Hour {
		t.Fatalf("unexpected ttl %s", c.RedisTTL())
	}

	t.Setenv(EnvServerPort, "not-a-port")
	if _, err := NewConfig(t.TempDir()); err == nil {
		t.Fatalf("expected error for invalid port override")
	}
}

func TestNewConfigValidation(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"driver":   "version: 1\nstore:\n  driver: postgres\n",
		"redis":    "version: 1\nstore:\n  driver: redis\n",
		"provider": "version: 1\nassistant:\n  provider: openai\n",
		"level":    "version: 1\nlogging:\n  level: loud\n",
		"yaml":     "version: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			projectDir := t.TempDir()
			writeConfig(t, projectDir, body)
			if _, err := NewConfig(projectDir); err == nil {
				t.Fatalf("expected validation error but got none")
			}
		})
	}
	if _, err := NewConfig(" "); err == nil {
		t.Fatalf("expected error for empty project dir")
	}
}
