// cmd/blueprint/main.go
//
// Entry point for the blueprint CLI. The root command opens the chat UI;
// subcommands serve the HTTP surface, inspect saved documents, export them
// and run the extraction and journey tools on their own.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	// Version information (set at build time)
	version = "dev"

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4CAF50"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	projectDir string
	logLevel   string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "blueprint",
		Short: "Design project-based learning blueprints through a guided conversation",
		Long: titleStyle.Render("blueprint") + `

Walks an educator from a vision to a complete project blueprint: context,
ideation, a learning journey and deliverables. Progress is saved as you go
and resumes where the document left off.

` + dimStyle.Render("Use 'blueprint [command] --help' for more information."),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts, "")
		},
	}
	root.PersistentFlags().StringVarP(&opts.projectDir, "dir", "C", "", "project directory holding .blueprint (default: current directory)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	root.AddCommand(
		newTUICmd(opts),
		newServeCmd(opts),
		newStatusCmd(opts),
		newExportCmd(opts),
		newExtractCmd(),
		newJourneyCmd(),
	)
	return root
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
