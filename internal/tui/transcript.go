package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/noahjenkins/termfolio/internal/processor"
	"github.com/noahjenkins/termfolio/internal/tui/theme"
)

// transcriptLines flattens the transcript into display rows wrapped to width.
// Entries with a command are preceded by the echoed prompt line. The entry at
// active, if any, shows only the revealed part of its output.
func transcriptLines(history []processor.Result, prompt string, active int, revealed []string, width int) []string {
	width = max(width, 1)
	wrapOutput := theme.OutputStyle.Width(width)
	wrapEcho := lipgloss.NewStyle().Width(width)

	var rows []string
	for i, entry := range history {
		if entry.Command != "" {
			echo := theme.PromptStyle.Render(prompt) + " " + theme.OutputStyle.Render(entry.Command)
			rows = append(rows, strings.Split(wrapEcho.Render(echo), "\n")...)
		}
		output := entry.Output
		if i == active {
			output = revealed
		}
		for _, line := range output {
			rows = append(rows, strings.Split(wrapOutput.Render(line), "\n")...)
		}
	}
	return rows
}
