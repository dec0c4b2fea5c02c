// internal/config/config.go
//
// This package handles configuration and the .blueprint directory structure.
// Every project that uses blueprint gets a .blueprint/ folder created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// BlueprintDir is the name of the directory we create in each project
	BlueprintDir = ".blueprint"

	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"

	ProviderOllama = "ollama"
	ProviderNone   = "none"

	defaultDebounceMS       = 400
	defaultAssistantTimeout = 30
	defaultRedisTTLHours    = 24 * 30
	defaultServerHost       = "127.0.0.1"
	defaultServerPort       = 8765
	defaultOllamaEndpoint   = "http://127.0.0.1:11434"
	defaultOllamaModel      = "llama3.2"
	defaultLogLevel         = "info"
	defaultLogMode          = "development"
)

// Environment overrides applied after config.yaml is read.
const (
	EnvStoreDriver       = "BLUEPRINT_STORE_DRIVER"
	EnvRedisAddr         = "BLUEPRINT_REDIS_ADDR"
	EnvAssistantEndpoint = "BLUEPRINT_ASSISTANT_ENDPOINT"
	EnvServerPort        = "BLUEPRINT_SERVER_PORT"
	EnvLogLevel          = "BLUEPRINT_LOG_LEVEL"
)

const defaultProjectConfigYAML = `# blueprint project configuration
version: 1

# Where documents are persisted: file, sqlite or redis.
store:
  driver: file
  # path: .blueprint/documents/blueprints.db   # sqlite only
  # redis:
  #   addr: 127.0.0.1:6379
  #   db: 0
  #   ttl_hours: 720

autosave:
  debounce_ms: 400

# Generative backend used for ideas, what-ifs and journeys. Use provider: none
# to rely on the built-in generator only.
assistant:
  provider: ollama
  endpoint: http://127.0.0.1:11434
  model: llama3.2
  timeout_seconds: 30

server:
  host: 127.0.0.1
  port: 8765

logging:
  level: info
  mode: development
`

// RedisConfig configures the redis document store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
	TTLHours int    `yaml:"ttl_hours"`
}

// StoreConfig selects and configures the persistence gateway.
type StoreConfig struct {
	Driver string      `yaml:"driver"`
	Path   string      `yaml:"path,omitempty"`
	Redis  RedisConfig `yaml:"redis,omitempty"`
}

// AutosaveConfig tunes debounced persistence.
type AutosaveConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// AssistantConfig describes the generative backend.
type AssistantConfig struct {
	Provider       string `yaml:"provider"`
	Endpoint       string `yaml:"endpoint"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ServerConfig holds the HTTP listen address.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	Mode  string `yaml:"mode"`
}

// ProjectConfig models .blueprint/config.yaml.
type ProjectConfig struct {
	Version   int             `yaml:"version"`
	Store     StoreConfig     `yaml:"store"`
	Autosave  AutosaveConfig  `yaml:"autosave"`
	Assistant AssistantConfig `yaml:"assistant"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Config holds the runtime configuration for blueprint.
type Config struct {
	// ProjectDir is the directory where the user ran `blueprint` from
	ProjectDir string

	// BlueprintProjectDir is ProjectDir/.blueprint
	BlueprintProjectDir string

	Project ProjectConfig
}

// InitBlueprintDir creates the .blueprint directory structure in the given
// project directory and writes the default config.yaml once.
//
// .blueprint/
// ├── logs/       <- zap log file and session logbooks
// ├── documents/  <- file store documents and the sqlite database
// ├── exports/    <- rendered markdown and json exports
// └── config.yaml
func InitBlueprintDir(projectDir string) error {
	root := filepath.Join(projectDir, BlueprintDir)
	dirs := []string{
		filepath.Join(root, "logs"),
		filepath.Join(root, "documents"),
		filepath.Join(root, "exports"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	return ensureProjectConfig(filepath.Join(root, "config.yaml"))
}

// NewConfig creates a Config populated from config.yaml and the environment.
func NewConfig(projectDir string) (*Config, error) {
	if strings.TrimSpace(projectDir) == "" {
		return nil, fmt.Errorf("config: project directory is required")
	}
	cfg := &Config{
		ProjectDir:          projectDir,
		BlueprintProjectDir: filepath.Join(projectDir, BlueprintDir),
		Project:             defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.BlueprintProjectDir, "logs")
}

// DocumentsDir returns the path to the file store directory
func (c *Config) DocumentsDir() string {
	return filepath.Join(c.BlueprintProjectDir, "documents")
}

// ExportsDir returns the path where exports are written
func (c *Config) ExportsDir() string {
	return filepath.Join(c.BlueprintProjectDir, "exports")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.BlueprintProjectDir, "config.yaml")
}

// SQLitePath returns the database file used by the sqlite driver.
func (c *Config) SQLitePath() string {
	if c.Project.Store.Path != "" {
		return c.Project.Store.Path
	}
	return filepath.Join(c.DocumentsDir(), "blueprints.db")
}

// AutosaveDebounce returns the debounce window for persistence.
func (c *Config) AutosaveDebounce() time.Duration {
	return time.Duration(c.Project.Autosave.DebounceMS) * time.Millisecond
}

// AssistantTimeout bounds a single generative backend call.
func (c *Config) AssistantTimeout() time.Duration {
	return time.Duration(c.Project.Assistant.TimeoutSeconds) * time.Second
}

// RedisTTL returns how long redis keeps an untouched document.
func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.Project.Store.Redis.TTLHours) * time.Hour
}

// ServerAddr returns host:port for the HTTP surface.
func (c *Config) ServerAddr() string {
	return net.JoinHostPort(c.Project.Server.Host, strconv.Itoa(c.Project.Server.Port))
}

// AssistantEnabled reports whether a generative backend is configured.
func (c *Config) AssistantEnabled() bool {
	return c.Project.Assistant.Provider != ProviderNone
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var parsed ProjectConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
		c.Project = parsed
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := c.Project.applyEnv(os.LookupEnv); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.Project.applyDefaults()
	c.Project.normalize(c.ProjectDir)
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func defaultProjectConfig() ProjectConfig {
	pc := ProjectConfig{}
	pc.applyDefaults()
	return pc
}

func (pc *ProjectConfig) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvStoreDriver); ok && strings.TrimSpace(v) != "" {
		pc.Store.Driver = v
	}
	if v, ok := lookup(EnvRedisAddr); ok && strings.TrimSpace(v) != "" {
		pc.Store.Redis.Addr = v
	}
	if v, ok := lookup(EnvAssistantEndpoint); ok && strings.TrimSpace(v) != "" {
		pc.Assistant.Endpoint = v
	}
	if v, ok := lookup(EnvServerPort); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvServerPort, err)
		}
		pc.Server.Port = port
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		pc.Logging.Level = v
	}
	return nil
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Store.Driver) == "" {
		pc.Store.Driver = DriverFile
	}
	if pc.Store.Redis.TTLHours == 0 {
		pc.Store.Redis.TTLHours = defaultRedisTTLHours
	}
	if pc.Autosave.DebounceMS == 0 {
		pc.Autosave.DebounceMS = defaultDebounceMS
	}
	if strings.TrimSpace(pc.Assistant.Provider) == "" {
		pc.Assistant.Provider = ProviderOllama
	}
	if strings.TrimSpace(pc.Assistant.Endpoint) == "" {
		pc.Assistant.Endpoint = defaultOllamaEndpoint
	}
	if strings.TrimSpace(pc.Assistant.Model) == "" {
		pc.Assistant.Model = defaultOllamaModel
	}
	if pc.Assistant.TimeoutSeconds == 0 {
		pc.Assistant.TimeoutSeconds = defaultAssistantTimeout
	}
	if strings.TrimSpace(pc.Server.Host) == "" {
		pc.Server.Host = defaultServerHost
	}
	if pc.Server.Port == 0 {
		pc.Server.Port = defaultServerPort
	}
	if strings.TrimSpace(pc.Logging.Level) == "" {
		pc.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(pc.Logging.Mode) == "" {
		pc.Logging.Mode = defaultLogMode
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Store.Driver = normalizeName(pc.Store.Driver)
	pc.Store.Path = resolvePath(base, pc.Store.Path)
	pc.Store.Redis.Addr = strings.TrimSpace(pc.Store.Redis.Addr)
	pc.Assistant.Provider = normalizeName(pc.Assistant.Provider)
	pc.Assistant.Endpoint = strings.TrimRight(strings.TrimSpace(pc.Assistant.Endpoint), "/")
	pc.Assistant.Model = strings.TrimSpace(pc.Assistant.Model)
	pc.Server.Host = strings.TrimSpace(pc.Server.Host)
	pc.Logging.Level = normalizeName(pc.Logging.Level)
	pc.Logging.Mode = normalizeName(pc.Logging.Mode)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	switch pc.Store.Driver {
	case DriverFile, DriverSQLite:
	case DriverRedis:
		if pc.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("store.driver must be 'file', 'sqlite' or 'redis'")
	}
	if pc.Store.Redis.TTLHours < 0 {
		return fmt.Errorf("store.redis.ttl_hours must be >= 0")
	}
	if pc.Autosave.DebounceMS < 0 {
		return fmt.Errorf("autosave.debounce_ms must be >= 0")
	}
	switch pc.Assistant.Provider {
	case ProviderOllama, ProviderNone:
	default:
		return fmt.Errorf("assistant.provider must be 'ollama' or 'none'")
	}
	if pc.Assistant.TimeoutSeconds < 0 {
		return fmt.Errorf("assistant.timeout_seconds must be >= 0")
	}
	if pc.Server.Port < 0 || pc.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535")
	}
	switch pc.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error")
	}
	return nil
}

func normalizeName(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
