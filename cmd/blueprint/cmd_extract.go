package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kingrea/blueprint/internal/extract"
)

// extractOutput is the JSON printed by the extract command.
type extractOutput struct {
	Kind     string `json:"kind"`
	Strategy string `json:"strategy"`
	Result   any    `json:"result"`
}

var extractKinds = []string{"list", "phases", "milestones", "rubric", "impact"}

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "extract <list|phases|milestones|rubric|impact> [file]",
		Short:     "Run the free-text extractors on a file or stdin",
		Long:      "Parse free text the way step answers are parsed and print the structured result as JSON. Reads stdin when no file is given.",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: extractKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 2 {
				data, err = os.ReadFile(args[1])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			out, err := runExtract(args[0], string(data))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

func runExtract(kind, text string) (extractOutput, error) {
	out := extractOutput{Kind: kind}
	switch kind {
	case "list":
		res := extract.List(text)
		out.Strategy, out.Result = res.Strategy, res.Items
	case "phases":
		res := extract.Phases(text)
		out.Strategy, out.Result = res.Strategy, res.Items
	case "milestones":
		res := extract.Milestones(text)
		out.Strategy, out.Result = res.Strategy, res.Items
	case "rubric":
		res := extract.RubricCriteria(text)
		out.Strategy, out.Result = res.Strategy, res.Items
	case "impact":
		res := extract.Impact(text)
		out.Strategy, out.Result = res.Strategy, res.Impact
	default:
		return out, fmt.Errorf("unknown extractor %q (want one of %v)", kind, extractKinds)
	}
	return out, nil
}
