package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/blueprint/internal/blueprint"
	"github.com/kingrea/blueprint/internal/workflow"
	"github.com/kingrea/blueprint/internal/workflow/engine"
)

var (
	labelStyleDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	labelStyleCurrent = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	labelStyleStage   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	labelStylePending = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	detailTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	userStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	assistantStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	hintStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).MarginTop(1)
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

// renderJourney lists every stage with its steps, marking finished steps,
// the current step and what is still ahead. Only the current stage is
// expanded.
func renderJourney(state engine.State, width int) string {
	current := state.Step.Index()
	var lines []string
	for _, stage := range workflow.Stages() {
		if stage == workflow.StageCompleted {
			continue
		}
		lines = append(lines, stageLabel(stage, state.Stage))
		if stage != state.Stage {
			continue
		}
		for _, info := range workflow.StageSteps(stage) {
			lines = append(lines, "  "+stepLabel(info, current))
		}
	}
	footer := fmt.Sprintf("Step %d of %d · %d%%", state.Progress.CurrentStepNumber, state.Progress.TotalSteps, state.Progress.Percentage)
	if state.Step == "" {
		footer = "Not started"
	}
	lines = append(lines, "", detailTextStyle.Render(footer))
	return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
}

func stageLabel(stage, current workflow.Stage) string {
	switch {
	case current == "":
		return labelStylePending.Render("· " + stage.Label())
	case stage == current:
		return labelStyleStage.Render("▸ " + stage.Label())
	case stage.Index() < current.Index():
		return labelStyleDone.Render("✓ " + stage.Label())
	default:
		return labelStylePending.Render("· " + stage.Label())
	}
}

func stepLabel(info workflow.StepInfo, current int) string {
	idx := info.Step.Index()
	switch {
	case idx == current:
		return labelStyleCurrent.Render("▸ " + info.Title)
	case idx < current:
		return labelStyleDone.Render("✓ " + info.Title)
	default:
		return labelStylePending.Render("· " + info.Title)
	}
}

// renderMessages formats the conversation for the transcript viewport.
func renderMessages(msgs []blueprint.ChatMessage, width int) string {
	if len(msgs) == 0 {
		return detailTextStyle.Render("Starting the conversation...")
	}
	body := lipgloss.NewStyle().Width(max(20, width))
	var blocks []string
	for _, msg := range msgs {
		var label string
		switch msg.Role {
		case blueprint.RoleUser:
			label = userStyle.Render("You")
		default:
			label = assistantStyle.Render("Guide")
		}
		block := label + "\n" + body.Render(msg.Content)
		if len(msg.Suggestions) > 0 {
			block += "\n" + detailTextStyle.Render("Try: "+strings.Join(msg.Suggestions, " · "))
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}
