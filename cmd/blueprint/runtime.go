package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kingrea/blueprint/internal/assistant"
	"github.com/kingrea/blueprint/internal/config"
	"github.com/kingrea/blueprint/internal/logbook"
	"github.com/kingrea/blueprint/internal/logging"
	"github.com/kingrea/blueprint/internal/session"
	"github.com/kingrea/blueprint/internal/store"
	"github.com/kingrea/blueprint/internal/workflow/engine"
)

const assistantPingTimeout = 3 * time.Second

// runtime bundles everything a command needs from the project directory.
type runtime struct {
	cfg     *config.Config
	logger  *logging.Logger
	store   store.Store
	journal *logbook.Logbook
}

func openRuntime(ctx context.Context, opts *rootOptions, extra ...logging.Option) (*runtime, error) {
	dir := strings.TrimSpace(opts.projectDir)
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("working directory: %w", err)
		}
		dir = cwd
	}
	if err := config.InitBlueprintDir(dir); err != nil {
		return nil, err
	}
	cfg, err := config.NewConfig(dir)
	if err != nil {
		return nil, err
	}

	logOpts := []logging.Option{
		logging.WithMode(cfg.Project.Logging.Mode),
		logging.WithLevel(cfg.Project.Logging.Level),
	}
	if strings.TrimSpace(opts.logLevel) != "" {
		logOpts = append(logOpts, logging.WithLevel(opts.logLevel))
	}
	logger, err := logging.New(dir, append(logOpts, extra...)...)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, store.Options{
		Driver:        cfg.Project.Store.Driver,
		Dir:           cfg.DocumentsDir(),
		SQLitePath:    cfg.SQLitePath(),
		RedisAddr:     cfg.Project.Store.Redis.Addr,
		RedisPassword: cfg.Project.Store.Redis.Password,
		RedisDB:       cfg.Project.Store.Redis.DB,
		RedisTTL:      cfg.RedisTTL(),
	})
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("open %s store: %w", cfg.Project.Store.Driver, err)
	}

	journal, err := logbook.New(filepath.Join(cfg.LogsDir(), logbook.FileName))
	if err != nil {
		_ = st.Close()
		_ = logger.Close()
		return nil, err
	}
	logger.Debug("runtime opened", "dir", dir, "store", cfg.Project.Store.Driver)
	return &runtime{cfg: cfg, logger: logger, store: st, journal: journal}, nil
}

// newMachine builds a machine over the configured store without resuming it.
func (r *runtime) newMachine() (*engine.Machine, error) {
	return engine.New(r.store,
		engine.WithLogger(r.logger),
		engine.WithDebounce(r.cfg.AutosaveDebounce()),
	)
}

// loadExisting loads id and fails when no document was saved under it.
func (r *runtime) loadExisting(ctx context.Context, id string) (*engine.Machine, engine.State, error) {
	if strings.TrimSpace(id) == "" {
		return nil, engine.State{}, fmt.Errorf("--id is required")
	}
	if _, err := r.store.Load(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, engine.State{}, fmt.Errorf("no blueprint saved as %q", id)
		}
		return nil, engine.State{}, err
	}
	m, err := r.newMachine()
	if err != nil {
		return nil, engine.State{}, err
	}
	state, err := m.Resume(ctx, id)
	if err != nil {
		_ = m.Close(ctx)
		return nil, engine.State{}, err
	}
	return m, state, nil
}

// backend returns the configured model server, or nil when the assistant
// is switched off.
func (r *runtime) backend() *assistant.OllamaBackend {
	if strings.EqualFold(r.cfg.Project.Assistant.Provider, config.ProviderNone) {
		return nil
	}
	return assistant.NewOllamaBackend(r.cfg.Project.Assistant.Endpoint, r.cfg.Project.Assistant.Model, 0)
}

func (r *runtime) assistant() *assistant.Assistant {
	opts := []assistant.Option{
		assistant.WithTimeout(r.cfg.AssistantTimeout()),
		assistant.WithLogger(r.logger.With("component", "assistant")),
	}
	if backend := r.backend(); backend != nil {
		return assistant.New(backend, opts...)
	}
	return assistant.New(nil, opts...)
}

// checkAssistant pings the model server. A switched-off assistant passes.
func (r *runtime) checkAssistant(ctx context.Context) error {
	backend := r.backend()
	if backend == nil {
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, assistantPingTimeout)
	defer cancel()
	return backend.Ping(pingCtx)
}

func (r *runtime) session(m *engine.Machine) *session.Session {
	return session.New(m, r.assistant(),
		session.WithJournal(r.journal),
		session.WithLogger(r.logger.With("component", "session")),
	)
}

func (r *runtime) Close() error {
	var errs []error
	if r.store != nil {
		errs = append(errs, r.store.Close())
	}
	if r.logger != nil {
		errs = append(errs, r.logger.Close())
	}
	return errors.Join(errs...)
}
