package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/blueprint/internal/artifact"
)

const renderWidth = 100

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		id     string
		format string
		outDir string
		render bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a blueprint as markdown or json",
		Long: `Write a blueprint into .blueprint/exports (or --out). Markdown exports carry
YAML frontmatter with the document id, schema version, stage and timestamps.
With --render the markdown is styled for the terminal instead of written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmtValue, err := artifact.ParseFormat(format)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			rt, err := openRuntime(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			m, _, err := rt.loadExisting(ctx, id)
			if err != nil {
				return err
			}
			defer m.Close(ctx)
			doc := m.ExportDocument()

			out := cmd.OutOrStdout()
			if render {
				md, err := artifact.RenderMarkdown(doc)
				if err != nil {
					return err
				}
				styled, err := artifact.RenderTerminal(md, renderWidth)
				if err != nil {
					return err
				}
				fmt.Fprint(out, styled)
				return nil
			}

			dir := outDir
			if dir == "" {
				dir = rt.cfg.ExportsDir()
			}
			path, err := artifact.NewExporter(dir).Write(doc, fmtValue)
			if err != nil {
				return err
			}
			rt.journal.Info("Exported %s as %s to %s", doc.ID, fmtValue, path)
			fmt.Fprintf(out, "%s %s\n", successStyle.Render("✓ Exported"), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "blueprint id to export (required)")
	cmd.Flags().StringVarP(&format, "format", "f", "md", "export format: md or json")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "directory to write into (default: .blueprint/exports)")
	cmd.Flags().BoolVar(&render, "render", false, "print styled markdown to the terminal instead of writing a file")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
