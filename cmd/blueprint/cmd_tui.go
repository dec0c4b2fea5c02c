package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/blueprint/internal/tui"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the authoring conversation in the terminal",
		Long:  "Open the chat UI. Without --id a picker lists saved blueprints and offers a new one.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts, id)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "blueprint id to resume or create")
	return cmd
}

func runTUI(cmd *cobra.Command, opts *rootOptions, id string) error {
	ctx := commandContext(cmd)
	rt, err := openRuntime(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	m, err := rt.newMachine()
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(context.Background()); err != nil {
			rt.logger.Error("final save failed", "error", err)
		}
	}()

	appOpts := []tui.AppOption{tui.WithJournal(rt.journal), tui.WithContext(ctx)}
	if id != "" {
		if _, err := m.Resume(ctx, id); err != nil {
			return err
		}
	} else {
		docs, err := rt.store.List(ctx)
		if err != nil {
			return err
		}
		appOpts = append(appOpts, tui.WithDocuments(docs))
	}

	app := tui.NewApp(rt.session(m), appOpts...)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
