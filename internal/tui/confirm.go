package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/noahjenkins/termfolio/internal/tui/theme"
)

// confirmAction is the intent of a key pressed while the quit prompt is open.
type confirmAction string

const (
	confirmActionNone          confirmAction = ""
	confirmActionSelectConfirm confirmAction = "select_confirm"
	confirmActionSelectCancel  confirmAction = "select_cancel"
	confirmActionAccept        confirmAction = "accept"
	confirmActionSubmit        confirmAction = "submit"
	confirmActionDismiss       confirmAction = "dismiss"
)

func confirmActionForKey(msg tea.KeyMsg) confirmAction {
	switch strings.ToLower(strings.TrimSpace(msg.String())) {
	case "left", "h":
		return confirmActionSelectConfirm
	case "right", "l":
		return confirmActionSelectCancel
	case "y", "ctrl+c":
		return confirmActionAccept
	case "enter":
		return confirmActionSubmit
	case "n", "esc":
		return confirmActionDismiss
	default:
		return confirmActionNone
	}
}

// resolveConfirm applies action to the current selection and reports whether
// the prompt is finished and whether quitting was confirmed.
func resolveConfirm(selected bool, action confirmAction) (next bool, finished bool, confirmed bool) {
	switch action {
	case confirmActionSelectConfirm:
		return true, false, false
	case confirmActionSelectCancel:
		return false, false, false
	case confirmActionAccept:
		return selected, true, true
	case confirmActionSubmit:
		return selected, true, selected
	case confirmActionDismiss:
		return selected, true, false
	default:
		return selected, false, false
	}
}

// renderConfirm draws the quit prompt centered on the screen.
func renderConfirm(width, height int, selected bool) string {
	value := selected
	field := huh.NewConfirm().
		Title("Quit termfolio?").
		Affirmative("Yes").
		Negative("No").
		Value(&value)
	_ = field.Init()
	body := strings.TrimSpace(field.View())
	if body == "" {
		body = renderConfirmFallback(selected)
	}

	box := theme.ConfirmStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		body,
		theme.HintStyle.Render("y quit  n/esc stay  ←/→ select  enter confirm"),
	))
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func renderConfirmFallback(selected bool) string {
	yes := theme.HintStyle.Padding(0, 1).Render("Yes")
	no := theme.HintStyle.Padding(0, 1).Render("No")
	if selected {
		yes = theme.TitleBarStyle.Padding(0, 1).Render("Yes")
	} else {
		no = theme.TitleBarStyle.Padding(0, 1).Render("No")
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		theme.PromptStyle.Render("Quit termfolio?"),
		lipgloss.JoinHorizontal(lipgloss.Left, yes, "  ", no),
	)
}
