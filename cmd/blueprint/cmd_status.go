package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kingrea/blueprint/internal/logbook"
	"github.com/kingrea/blueprint/internal/store"
	"github.com/kingrea/blueprint/internal/workflow/engine"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var (
		id     string
		recent int
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show where a blueprint stands, or list saved blueprints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			rt, err := openRuntime(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			if id == "" {
				docs, err := rt.store.List(ctx)
				if err != nil {
					return err
				}
				if err := printSummaries(out, docs); err != nil {
					return err
				}
			} else {
				m, state, err := rt.loadExisting(ctx, id)
				if err != nil {
					return err
				}
				defer m.Close(ctx)
				printState(out, state)
			}
			printJournal(out, rt.journal, recent)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "blueprint id (omit to list every saved blueprint)")
	cmd.Flags().IntVar(&recent, "recent", 0, "also print the last N journal entries")
	return cmd
}

func printSummaries(out io.Writer, docs []store.Summary) error {
	if len(docs) == 0 {
		fmt.Fprintln(out, dimStyle.Render("No blueprints yet. Run 'blueprint' to start one."))
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTAGE\tSUBJECT\tUPDATED")
	for _, doc := range docs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", doc.ID, doc.Stage.Label(), doc.Subject, doc.Updated.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func printState(out io.Writer, state engine.State) {
	fmt.Fprintln(out, titleStyle.Render(state.DocumentID))
	fmt.Fprintf(out, "  Stage:    %s\n", state.Stage.Label())
	fmt.Fprintf(out, "  Step:     %s (%d of %d)\n", state.Title, state.Progress.CurrentStepNumber, state.Progress.TotalSteps)
	fmt.Fprintf(out, "  Progress: %d%%\n", state.Progress.Percentage)
	actions := make([]string, 0, len(state.AllowedActions))
	for _, a := range state.AllowedActions {
		actions = append(actions, string(a))
	}
	if len(actions) > 0 {
		fmt.Fprintf(out, "  Actions:  %v\n", actions)
	}
	if !state.UpdatedAt.IsZero() {
		fmt.Fprintf(out, "  Updated:  %s\n", state.UpdatedAt.Format("2006-01-02 15:04"))
	}
}

func printJournal(out io.Writer, journal *logbook.Logbook, n int) {
	if n <= 0 {
		return
	}
	lines, total := journal.Tail(n)
	fmt.Fprintln(out)
	if total == 0 {
		fmt.Fprintln(out, dimStyle.Render("Journal is empty."))
		return
	}
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Recent activity (%d of %d)", len(lines), total)))
	for _, line := range lines {
		fmt.Fprintln(out, "  "+line)
	}
}
