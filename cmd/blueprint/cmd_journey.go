package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kingrea/blueprint/internal/generator"
)

func newJourneyCmd() *cobra.Command {
	var (
		gen    generator.Context
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "journey",
		Short: "Generate a learning journey from a subject, scope and challenge",
		Long:  "Build the deterministic journey offered when no generative backend answers: phases sized to the scope, with week ranges and starter activities.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			journey := generator.Generate(gen)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(journey)
			}
			printJourney(cmd.OutOrStdout(), journey)
			return nil
		},
	}
	cmd.Flags().StringVar(&gen.Subject, "subject", "", "subject area, e.g. \"Grade 7 science\"")
	cmd.Flags().StringVar(&gen.Scope, "scope", "", "duration, e.g. \"6 weeks\" or \"one semester\"")
	cmd.Flags().StringVar(&gen.Challenge, "challenge", "", "the challenge students take on")
	cmd.Flags().StringVar(&gen.Audience, "audience", "", "who sees the final work")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the journey as JSON")
	return cmd
}

func printJourney(out io.Writer, j generator.Journey) {
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d-week journey", j.DurationWeeks)))
	fmt.Fprintln(out, dimStyle.Render("Template: "+string(j.Template)))
	for i, p := range j.Phases {
		fmt.Fprintf(out, "\n%d. %s (%s)\n", i+1, p.Name, p.WeekLabel)
		if p.Summary != "" {
			fmt.Fprintf(out, "   %s\n", p.Summary)
		}
		for _, a := range p.Activities {
			fmt.Fprintf(out, "   - %s\n", a)
		}
	}
}
