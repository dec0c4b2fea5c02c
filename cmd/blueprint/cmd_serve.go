package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kingrea/blueprint/internal/api"
	"github.com/kingrea/blueprint/internal/logging"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		id   string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve one blueprint over HTTP",
		Long: `Serve the state machine for one blueprint over HTTP: position queries,
chat input, step data, transitions, exports and a server-sent event stream
at /events. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts, id, port)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "blueprint id to resume or create (default: a new id)")
	cmd.Flags().IntVar(&port, "port", -1, "override the configured port")
	return cmd
}

func runServe(cmd *cobra.Command, opts *rootOptions, id string, port int) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := openRuntime(ctx, opts, logging.WithStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	m, err := rt.newMachine()
	if err != nil {
		return err
	}
	state, err := m.Resume(ctx, id)
	if err != nil {
		return err
	}

	settings := api.SettingsFromConfig(rt.cfg)
	if port >= 0 {
		settings.Port = port
	}
	srv := api.NewServer(settings, m,
		api.WithLogger(rt.logger.With("component", "api")),
		api.WithSession(rt.session(m)),
	)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	rt.journal.Info("Serving %s at %s", state.DocumentID, srv.BaseURL())
	if err := rt.checkAssistant(ctx); err != nil {
		rt.logger.Warn("assistant unreachable, using built-in suggestions", "error", err)
		rt.journal.Warn("Assistant unreachable, using built-in suggestions: %v", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s at %s\n", successStyle.Render("✓ Serving"), state.DocumentID, srv.BaseURL())

	sub := m.Subscribe()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rt.journal.Follow(sub)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		sub.Close()
		if cerr := m.Close(shutdownCtx); cerr != nil && err == nil {
			err = cerr
		}
		m.Router().Close()
		rt.logger.Info("server stopped", "document_id", state.DocumentID)
		return err
	})
	return g.Wait()
}
