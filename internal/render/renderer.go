package render

import (
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// State is the renderer's position in the typing sequence.
type State int

const (
	Idle State = iota
	RevealingChar
	AdvancingLine
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RevealingChar:
		return "revealing_char"
	case AdvancingLine:
		return "advancing_line"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

const (
	DefaultCharInterval = 5 * time.Millisecond
	DefaultLinePause    = 20 * time.Millisecond
)

// Timing holds the presentation delays. Zero durations schedule ticks
// without sleeping.
type Timing struct {
	CharInterval time.Duration
	LinePause    time.Duration
}

// DefaultTiming returns the standard typing speed.
func DefaultTiming() Timing {
	return Timing{CharInterval: DefaultCharInterval, LinePause: DefaultLinePause}
}

// TickMsg advances the render identified by ID by one transition.
type TickMsg struct {
	ID int
}

// DoneMsg reports that the render identified by ID revealed its last rune.
type DoneMsg struct {
	ID int
}

// Renderer progressively reveals a set of lines: one rune per character tick,
// with a pause between lines. Every Start begins a new generation; messages
// from older generations are ignored, so at most one render progresses.
type Renderer struct {
	timing Timing

	id      int
	state   State
	lines   [][]rune
	visible []string
	line    int
	col     int
}

// New returns an idle renderer. Negative durations are treated as zero.
func New(timing Timing) *Renderer {
	if timing.CharInterval < 0 {
		timing.CharInterval = 0
	}
	if timing.LinePause < 0 {
		timing.LinePause = 0
	}
	return &Renderer{timing: timing}
}

// Start cancels any render in flight and begins revealing lines. The
// returned command yields the first tick, or DoneMsg when lines is empty.
func (r *Renderer) Start(lines []string) tea.Cmd {
	r.reset()
	r.lines = make([][]rune, len(lines))
	for i, line := range lines {
		r.lines[i] = []rune(line)
	}

	if len(r.lines) == 0 {
		r.state = Done
		return r.done()
	}

	r.state = RevealingChar
	r.visible = []string{""}
	if len(r.lines[0]) == 0 {
		return r.finishLine()
	}
	return r.tick(r.timing.CharInterval)
}

// Update applies one TickMsg for the current generation. Anything else,
// including ticks from cancelled renders, is ignored.
func (r *Renderer) Update(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(TickMsg)
	if !ok || tick.ID != r.id {
		return nil
	}

	switch r.state {
	case RevealingChar:
		current := r.lines[r.line]
		r.col++
		r.visible[r.line] = string(current[:r.col])
		if r.col == len(current) {
			return r.finishLine()
		}
		return r.tick(r.timing.CharInterval)
	case AdvancingLine:
		r.line++
		r.col = 0
		r.visible = append(r.visible, "")
		r.state = RevealingChar
		if len(r.lines[r.line]) == 0 {
			return r.finishLine()
		}
		return r.tick(r.timing.CharInterval)
	default:
		return nil
	}
}

// Cancel abandons the current render without signalling completion.
func (r *Renderer) Cancel() {
	r.reset()
}

// Lines returns a copy of the revealed text, one entry per started line.
func (r *Renderer) Lines() []string {
	return slices.Clone(r.visible)
}

func (r *Renderer) State() State {
	return r.state
}

// ID returns the current generation.
func (r *Renderer) ID() int {
	return r.id
}

// Active reports whether a render is still revealing text.
func (r *Renderer) Active() bool {
	return r.state == RevealingChar || r.state == AdvancingLine
}

func (r *Renderer) Timing() Timing {
	return r.timing
}

func (r *Renderer) reset() {
	r.id++
	r.state = Idle
	r.lines = nil
	r.visible = nil
	r.line = 0
	r.col = 0
}

// finishLine is reached once the current line is fully revealed.
func (r *Renderer) finishLine() tea.Cmd {
	if r.line == len(r.lines)-1 {
		r.state = Done
		return r.done()
	}
	r.state = AdvancingLine
	return r.tick(r.timing.LinePause)
}

func (r *Renderer) tick(after time.Duration) tea.Cmd {
	id := r.id
	if after <= 0 {
		return func() tea.Msg {
			return TickMsg{ID: id}
		}
	}
	return tea.Tick(after, func(time.Time) tea.Msg {
		return TickMsg{ID: id}
	})
}

func (r *Renderer) done() tea.Cmd {
	id := r.id
	return func() tea.Msg {
		return DoneMsg{ID: id}
	}
}
