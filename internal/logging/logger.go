package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kingrea/blueprint/internal/config"
)

// LogFile is the file name inside .blueprint/logs.
const LogFile = "blueprint.log"

// Logger writes structured lines to .blueprint/logs/blueprint.log so authors
// can inspect failures after the TUI exits.
type Logger struct {
	sugar *zap.SugaredLogger
}

// Option adjusts the zap configuration before it is built.
type Option func(*zap.Config)

// WithLevel sets the minimum level (debug, info, warn, error).
func WithLevel(level string) Option {
	return func(cfg *zap.Config) {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(lvl)
		}
	}
}

// WithMode selects the production (json) or development (console) encoder.
func WithMode(mode string) Option {
	return func(cfg *zap.Config) {
		switch strings.ToLower(strings.TrimSpace(mode)) {
		case "prod", "production":
			cfg.Encoding = "json"
			cfg.EncoderConfig = zap.NewProductionEncoderConfig()
			cfg.Development = false
		default:
			cfg.Encoding = "console"
			cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		}
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
}

// WithStderr also mirrors log lines to stderr (used by the serve command).
func WithStderr() Option {
	return func(cfg *zap.Config) {
		cfg.OutputPaths = append(cfg.OutputPaths, "stderr")
	}
}

// New creates (or reuses) the log file for the current project directory.
func New(projectDir string, opts ...Option) (*Logger, error) {
	logDir := filepath.Join(projectDir, config.BlueprintDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, LogFile)

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	WithMode("development")(&cfg)
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	zl, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return &Logger{sugar: zl.Sugar()}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// Close flushes buffered entries.
func (l *Logger) Close() error {
	if l == nil || l.sugar == nil {
		return nil
	}
	// Sync on stderr reports EINVAL on some platforms.
	_ = l.sugar.Sync()
	return nil
}

// Printf writes a single info line. It satisfies the Printf-style logger
// interfaces used across packages.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.sugar == nil {
		return
	}
	l.sugar.Info(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

// Debug writes a debug entry with alternating key/value fields. It is dropped
// unless the level is debug.
func (l *Logger) Debug(msg string, keysAndValues ...any) {
	if l == nil || l.sugar == nil {
		return
	}
	l.sugar.Debugw(msg, sanitizeKVs(keysAndValues)...)
}

// Info writes an informational entry with alternating key/value fields.
func (l *Logger) Info(msg string, keysAndValues ...any) {
	if l == nil || l.sugar == nil {
		return
	}
	l.sugar.Infow(msg, sanitizeKVs(keysAndValues)...)
}

// Warn writes a warning entry with alternating key/value fields.
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	if l == nil || l.sugar == nil {
		return
	}
	l.sugar.Warnw(msg, sanitizeKVs(keysAndValues)...)
}

// Error writes an error entry with alternating key/value fields.
func (l *Logger) Error(msg string, keysAndValues ...any) {
	if l == nil || l.sugar == nil {
		return
	}
	l.sugar.Errorw(msg, sanitizeKVs(keysAndValues)...)
}

// With returns a child logger carrying the given fields.
func (l *Logger) With(keysAndValues ...any) *Logger {
	if l == nil || l.sugar == nil {
		return NewNop()
	}
	return &Logger{sugar: l.sugar.With(sanitizeKVs(keysAndValues)...)}
}

func sanitizeKVs(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := strings.ToLower(strings.TrimSpace(fmt.Sprint(kv[i])))
		val := kv[i+1]
		if isRedactKey(key) {
			val = "[REDACTED]"
		}
		out = append(out, kv[i], val)
	}
	return out
}

func isRedactKey(key string) bool {
	return strings.Contains(key, "password") ||
		strings.Contains(key, "token") ||
		strings.Contains(key, "secret") ||
		strings.Contains(key, "api_key")
}
