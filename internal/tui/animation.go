package tui

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
)

const (
	openFPS              = 60
	openAngularFrequency = 12.0
	openDampingRatio     = 1.0
	openSettleThreshold  = 0.005
)

// openFrameMsg advances the open animation identified by seq.
type openFrameMsg struct {
	seq int
}

// openAnimation grows the window from zero height to full on a critically
// damped spring.
type openAnimation struct {
	spring   harmonica.Spring
	seq      int
	position float64
	velocity float64
	running  bool
}

func newOpenAnimation() openAnimation {
	return openAnimation{
		spring:   harmonica.NewSpring(harmonica.FPS(openFPS), openAngularFrequency, openDampingRatio),
		position: 1,
	}
}

// start restarts the animation from a collapsed window and schedules the
// first frame. Frames of earlier runs are ignored.
func (a *openAnimation) start() tea.Cmd {
	a.seq++
	a.position = 0
	a.velocity = 0
	a.running = true
	return a.frame()
}

// stop jumps to the fully open state.
func (a *openAnimation) stop() {
	a.seq++
	a.position = 1
	a.velocity = 0
	a.running = false
}

// step applies one frame and returns the next frame command, or nil once
// the spring has settled.
func (a *openAnimation) step(msg openFrameMsg) tea.Cmd {
	if !a.running || msg.seq != a.seq {
		return nil
	}
	a.position, a.velocity = a.spring.Update(a.position, a.velocity, 1)
	if math.Abs(1-a.position) < openSettleThreshold && math.Abs(a.velocity) < openSettleThreshold {
		a.position = 1
		a.velocity = 0
		a.running = false
		return nil
	}
	return a.frame()
}

// rows scales full to the current animation position, never below one row
// and never above full.
func (a openAnimation) rows(full int) int {
	if !a.running {
		return full
	}
	rows := int(math.Round(a.position * float64(full)))
	return min(max(rows, 1), full)
}

func (a openAnimation) frame() tea.Cmd {
	seq := a.seq
	return tea.Tick(time.Second/openFPS, func(time.Time) tea.Msg {
		return openFrameMsg{seq: seq}
	})
}
