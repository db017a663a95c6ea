package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/noahjenkins/termfolio/internal/config"
)

// keyMap lists the bindings handled by Model. It satisfies help.KeyMap.
type keyMap struct {
	Submit     key.Binding
	Previous   key.Binding
	Next       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Toggle     key.Binding
	Close      key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func newKeyMap(variant string) keyMap {
	closeHelp := "close terminal"
	toggleHelp := "reopen terminal"
	if variant == config.VariantOverlay {
		toggleHelp = "toggle terminal"
	}

	return keyMap{
		Submit:     newBinding([]string{"enter"}, "enter", "run command"),
		Previous:   newBinding([]string{"up"}, "↑", "previous command"),
		Next:       newBinding([]string{"down"}, "↓", "next command"),
		ScrollUp:   newBinding([]string{"pgup"}, "pgup", "scroll up"),
		ScrollDown: newBinding([]string{"pgdown"}, "pgdn", "scroll down"),
		// Terminals report ctrl+` as NUL, which arrives as ctrl+@.
		Toggle: newBinding([]string{"ctrl+@"}, "ctrl+`", toggleHelp),
		Close:  newBinding([]string{"esc"}, "esc", closeHelp),
		Help:   newBinding([]string{"?"}, "?", "toggle key help"),
		Quit:   newBinding([]string{"ctrl+c"}, "ctrl+c", "quit"),
	}
}

func newBinding(keys []string, label string, description string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, description))
}

// ShortHelp is shown under the window.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Toggle, k.Help, k.Quit}
}

// FullHelp is shown in place of the transcript while help is open.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Previous, k.Next},
		{k.ScrollUp, k.ScrollDown},
		{k.Toggle, k.Close, k.Help, k.Quit},
	}
}
