package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/noahjenkins/termfolio/internal/session"
	"github.com/noahjenkins/termfolio/internal/tui/theme"
)

// Rows inside the frame that are not transcript: the title bar and the input line.
const chromeRows = 2

// region names the part of the window under the pointer.
type region int

const (
	regionOutside region = iota
	regionBody
	regionTitle
	regionClose
	regionResize
)

func (r region) String() string {
	switch r {
	case regionBody:
		return "body"
	case regionTitle:
		return "title"
	case regionClose:
		return "close"
	case regionResize:
		return "resize"
	default:
		return "outside"
	}
}

// hitTest maps a screen cell to a window region. The top border and the
// title bar row both drag; the close button sits at the right end of the
// title bar; the bottom-right 2x2 corner resizes.
func hitTest(g session.Geometry, p session.Point) region {
	if !g.Contains(p) {
		return regionOutside
	}
	rel := p.Sub(g.Position)
	closeStart := g.Size.Width - 1 - len(theme.CloseButton)

	switch {
	case rel.Y <= 1 && rel.X >= closeStart && rel.X < g.Size.Width-1:
		return regionClose
	case rel.Y <= 1:
		return regionTitle
	case rel.X >= g.Size.Width-2 && rel.Y >= g.Size.Height-2:
		return regionResize
	default:
		return regionBody
	}
}

// innerSize is the content area inside the frame border.
func innerSize(g session.Geometry) (width, height int) {
	return max(g.Size.Width-2, 1), max(g.Size.Height-2, chromeRows+1)
}

// transcriptHeight is the number of viewport rows left after the chrome.
func transcriptHeight(g session.Geometry) int {
	_, h := innerSize(g)
	return max(h-chromeRows, 1)
}

// place draws block at pos on a screen of the given size. Parts of the block
// pushed off the top or left edge are cut; a zero screen dimension disables
// clipping on that axis.
func place(block string, pos session.Point, screenWidth, screenHeight int) string {
	lines := strings.Split(block, "\n")
	if pos.Y < 0 {
		if -pos.Y >= len(lines) {
			return ""
		}
		lines = lines[-pos.Y:]
	}

	out := make([]string, 0, len(lines)+max(pos.Y, 0))
	for range max(pos.Y, 0) {
		out = append(out, "")
	}
	for _, line := range lines {
		if pos.X < 0 {
			line = ansi.TruncateLeft(line, -pos.X, "")
		} else if pos.X > 0 {
			line = strings.Repeat(" ", pos.X) + line
		}
		if screenWidth > 0 {
			line = ansi.Truncate(line, screenWidth, "")
		}
		out = append(out, line)
	}
	if screenHeight > 0 && len(out) > screenHeight {
		out = out[:screenHeight]
	}
	return strings.Join(out, "\n")
}
