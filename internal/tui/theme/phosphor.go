package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	// Phosphor is the primary terminal green used for text and chrome.
	Phosphor = "#00FF00"
	// DimPhosphor is the muted green for hints and the resize handle.
	DimPhosphor = "#00AA00"
	// Black is the terminal background.
	Black = "#000000"
	// Amber marks confirmation prompts.
	Amber = "#FFB000"
)

const (
	// CloseButton is drawn at the right end of the title bar.
	CloseButton = "[x]"
	// ResizeHandle is drawn in the bottom-right corner of the window.
	ResizeHandle = "◢"
	// Cursor is shown after the prompt while output is still typing.
	Cursor = "█"
)

var (
	// PhosphorColor is the profile-aware terminal color for Phosphor.
	PhosphorColor = terminalColor(Phosphor, "46", "10")
	// DimPhosphorColor is the profile-aware terminal color for DimPhosphor.
	DimPhosphorColor = terminalColor(DimPhosphor, "34", "2")
	// BlackColor is the profile-aware terminal color for Black.
	BlackColor = terminalColor(Black, "16", "0")
	// AmberColor is the profile-aware terminal color for Amber.
	AmberColor = terminalColor(Amber, "214", "11")
)

var (
	// OutputStyle renders transcript lines.
	OutputStyle = lipgloss.NewStyle().Foreground(PhosphorColor)
	// PromptStyle renders the prompt in front of echoed commands and the input.
	PromptStyle = lipgloss.NewStyle().Foreground(PhosphorColor).Bold(true)
	// HintStyle renders secondary text such as the reopen hint and help.
	HintStyle = lipgloss.NewStyle().Foreground(DimPhosphorColor)
	// TitleBarStyle renders the inverted title bar.
	TitleBarStyle = lipgloss.NewStyle().
			Foreground(BlackColor).
			Background(PhosphorColor).
			Bold(true)
	// WindowStyle is the terminal window frame.
	WindowStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PhosphorColor)
	// DraggingWindowStyle is the frame while the window is being moved.
	DraggingWindowStyle = WindowStyle.BorderForeground(DimPhosphorColor)
	// ConfirmStyle is the quit confirmation frame.
	ConfirmStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(AmberColor).
			Padding(0, 1)
)

var colorProfileFn = lipgloss.ColorProfile

func terminalColor(hex string, ansi256 string, ansi string) lipgloss.TerminalColor {
	switch colorProfileFn() {
	case termenv.TrueColor:
		return lipgloss.AdaptiveColor{Light: hex, Dark: hex}
	case termenv.ANSI256, termenv.ANSI:
		complete := lipgloss.CompleteColor{TrueColor: hex, ANSI256: ansi256, ANSI: ansi}
		return lipgloss.CompleteAdaptiveColor{Light: complete, Dark: complete}
	default:
		return lipgloss.AdaptiveColor{Light: hex, Dark: hex}
	}
}
