package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestStylesCarryForegrounds(t *testing.T) {
	t.Parallel()

	for i, style := range []lipgloss.Style{OutputStyle, PromptStyle, HintStyle, TitleBarStyle} {
		if style.GetForeground() == nil {
			t.Fatalf("style %d has nil foreground", i)
		}
	}
	if TitleBarStyle.GetBackground() == nil {
		t.Fatal("title bar should be inverted")
	}
	if !PromptStyle.GetBold() {
		t.Fatal("prompt should be bold")
	}
}

func TestFramesUseExpectedBorders(t *testing.T) {
	t.Parallel()

	if border, _, _, _, _ := WindowStyle.GetBorder(); border.Top != lipgloss.RoundedBorder().Top {
		t.Fatalf("window border top = %q, want rounded top %q", border.Top, lipgloss.RoundedBorder().Top)
	}
	if border, _, _, _, _ := DraggingWindowStyle.GetBorder(); border.Top != lipgloss.RoundedBorder().Top {
		t.Fatalf("dragging border top = %q, want rounded top %q", border.Top, lipgloss.RoundedBorder().Top)
	}
	if border, _, _, _, _ := ConfirmStyle.GetBorder(); border.Top != lipgloss.DoubleBorder().Top {
		t.Fatalf("confirm border top = %q, want double top %q", border.Top, lipgloss.DoubleBorder().Top)
	}
}

func TestTerminalColorRespectsProfile(t *testing.T) {
	original := colorProfileFn
	t.Cleanup(func() {
		colorProfileFn = original
	})

	colorProfileFn = func() termenv.Profile { return termenv.TrueColor }
	if _, ok := terminalColor(Phosphor, "46", "10").(lipgloss.AdaptiveColor); !ok {
		t.Fatal("truecolor profile should produce lipgloss.AdaptiveColor")
	}

	colorProfileFn = func() termenv.Profile { return termenv.ANSI }
	complete, ok := terminalColor(Phosphor, "46", "10").(lipgloss.CompleteAdaptiveColor)
	if !ok {
		t.Fatal("ansi profile should produce lipgloss.CompleteAdaptiveColor")
	}
	if complete.Dark.ANSI256 != "46" || complete.Light.ANSI != "10" {
		t.Fatalf("complete adaptive color = %#v", complete)
	}
}
