package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestConfirmActions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		key           tea.KeyMsg
		selected      bool
		wantSelected  bool
		wantFinished  bool
		wantConfirmed bool
	}{
		{name: "y quits", key: runeKey("y"), selected: false, wantSelected: false, wantFinished: true, wantConfirmed: true},
		{name: "n stays", key: runeKey("n"), selected: true, wantSelected: true, wantFinished: true},
		{name: "esc stays", key: tea.KeyMsg{Type: tea.KeyEsc}, selected: true, wantSelected: true, wantFinished: true},
		{name: "left selects yes", key: tea.KeyMsg{Type: tea.KeyLeft}, selected: false, wantSelected: true},
		{name: "right selects no", key: tea.KeyMsg{Type: tea.KeyRight}, selected: true, wantSelected: false},
		{name: "enter applies yes", key: tea.KeyMsg{Type: tea.KeyEnter}, selected: true, wantSelected: true, wantFinished: true, wantConfirmed: true},
		{name: "enter applies no", key: tea.KeyMsg{Type: tea.KeyEnter}, selected: false, wantSelected: false, wantFinished: true},
		{name: "second ctrl+c quits", key: tea.KeyMsg{Type: tea.KeyCtrlC}, selected: false, wantSelected: false, wantFinished: true, wantConfirmed: true},
		{name: "other keys ignored", key: runeKey("z"), selected: true, wantSelected: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			selected, finished, confirmed := resolveConfirm(tc.selected, confirmActionForKey(tc.key))
			if selected != tc.wantSelected || finished != tc.wantFinished || confirmed != tc.wantConfirmed {
				t.Fatalf("resolveConfirm = (%v, %v, %v), want (%v, %v, %v)",
					selected, finished, confirmed, tc.wantSelected, tc.wantFinished, tc.wantConfirmed)
			}
		})
	}
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
