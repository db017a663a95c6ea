package session

import (
	"context"
	"io"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/noahjenkins/termfolio/internal/commands"
	"github.com/noahjenkins/termfolio/internal/events"
	"github.com/noahjenkins/termfolio/internal/processor"
	"github.com/noahjenkins/termfolio/internal/render"
	"github.com/noahjenkins/termfolio/internal/telemetry/invariants"
)

var (
	// DefaultGeometry is the window placement of a freshly opened session.
	DefaultGeometry = Geometry{Size: Size{Width: 80, Height: 20}}
	// DefaultMinSize is the smallest size a resize can produce.
	DefaultMinSize = Size{Width: 30, Height: 8}
)

// Reasons reported with visibility changes.
const (
	ReasonOpen    = "open"
	ReasonClose   = "close"
	ReasonToggle  = "toggle"
	ReasonOutside = "outside"
)

// Option configures Controller construction.
type Option func(*Controller)

// WithTiming sets the typing speed of rendered output.
func WithTiming(timing render.Timing) Option {
	return func(c *Controller) {
		c.timing = timing
	}
}

// WithWelcome sets the greeting seeded into every fresh session.
func WithWelcome(lines []string) Option {
	return func(c *Controller) {
		c.welcome = slices.Clone(lines)
	}
}

// WithGeometry sets the window placement used whenever a session opens.
func WithGeometry(geometry Geometry) Option {
	return func(c *Controller) {
		c.defaultGeometry = geometry
	}
}

// WithMinSize sets the resize floor.
func WithMinSize(size Size) Option {
	return func(c *Controller) {
		if size.Width > 0 && size.Height > 0 {
			c.minSize = size
		}
	}
}

// WithBus publishes session events to bus.
func WithBus(bus events.Bus) Option {
	return func(c *Controller) {
		c.bus = bus
	}
}

// WithLogger configures the logger used for session diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithContext sets the parent context for processing spans.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// Controller owns one terminal session: the transcript, the input buffer,
// recall history, the render gate, visibility and window geometry. It is not
// safe for concurrent use; drive it from a single Bubble Tea update loop.
type Controller struct {
	processor *processor.Processor
	renderer  *render.Renderer

	timing          render.Timing
	welcome         []string
	defaultGeometry Geometry
	minSize         Size
	bus             events.Bus
	logger          *log.Logger
	ctx             context.Context

	sessionID   string
	history     []processor.Result
	input       string
	recall      *History
	rendering   bool
	visible     bool
	geometry    Geometry
	gesture     gesture
	active      int
	renderStart time.Time
}

// New builds a hidden controller over proc. Call Open to mount a session.
func New(proc *processor.Processor, options ...Option) *Controller {
	c := &Controller{
		processor:       proc,
		timing:          render.DefaultTiming(),
		welcome:         commands.Welcome(false),
		defaultGeometry: DefaultGeometry,
		minSize:         DefaultMinSize,
		logger:          log.New(io.Discard),
		ctx:             context.Background(),
		recall:          NewHistory(),
		active:          -1,
	}
	for _, option := range options {
		if option == nil {
			continue
		}
		option(c)
	}
	c.renderer = render.New(c.timing)
	c.defaultGeometry.Size = c.clampSize(c.defaultGeometry.Size)
	c.geometry = c.defaultGeometry
	return c
}

// Open mounts a fresh session: welcome entry, empty buffers, default
// geometry. The welcome is typed out without gating input.
func (c *Controller) Open() tea.Cmd {
	c.renderer.Cancel()
	c.sessionID = uuid.NewString()
	c.history = []processor.Result{{
		Command:   "",
		Output:    slices.Clone(c.welcome),
		Timestamp: time.Now(),
	}}
	c.input = ""
	c.recall = NewHistory()
	c.rendering = false
	c.geometry = c.defaultGeometry
	c.gesture = gesture{}

	c.logger.Info("session opened", "session_id", c.sessionID)
	c.publish(events.EventTypeSessionOpened, nil)
	c.setVisible(true, ReasonOpen)

	return c.startRender(0)
}

// Submit processes input and starts rendering its output. It is a no-op
// while a render gates input or when input is blank. A clear result wipes
// the transcript immediately and returns nil.
func (c *Controller) Submit(input string) tea.Cmd {
	if c.rendering || strings.TrimSpace(input) == "" {
		return nil
	}
	const where = "session.Controller.Submit"
	invariants.CheckSubmissionGated(c.ctx, where, c.commandRendering(), true)

	c.rendering = true
	before := len(c.history)
	result := c.processor.Process(c.ctx, input)
	name, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(input)), " ")

	if commands.IsClearSignal(result.Output) {
		c.renderer.Cancel()
		c.history = []processor.Result{}
		c.active = -1
		c.rendering = false
		c.input = ""
		invariants.CheckHistoryAppendOnly(c.ctx, where, before, len(c.history), true)
		c.logger.Info("transcript cleared", "session_id", c.sessionID, "entries", before)
		c.publish(events.EventTypeTranscriptCleared, nil)
		return nil
	}

	invariants.CheckCommandHistoryNoBlank(c.ctx, where, input)
	c.history = append(c.history, result)
	c.recall.Push(input)
	c.recall.ResetCursor()
	c.input = ""
	invariants.CheckHistoryAppendOnly(c.ctx, where, before, len(c.history), false)
	invariants.CheckRecallCursorReset(c.ctx, where, c.recall.Cursor())

	c.logger.Info("command processed", "session_id", c.sessionID, "command", name, "lines", len(result.Output))
	c.publish(events.EventTypeCommandProcessed, events.CommandProcessed{
		Command:   input,
		Name:      name,
		LineCount: len(result.Output),
	})

	return c.startRender(len(c.history) - 1)
}

// Update forwards renderer messages. Completion of the active render lifts
// the input gate.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case render.TickMsg:
		return c.renderer.Update(msg)
	case render.DoneMsg:
		if msg.ID != c.renderer.ID() || c.active < 0 {
			return nil
		}
		c.finishRender()
	}
	return nil
}

// RecallPrevious loads the previous command into the input buffer.
func (c *Controller) RecallPrevious() {
	if entry, ok := c.recall.Prev(); ok {
		c.input = entry
	}
}

// RecallNext loads the next command into the input buffer, clearing it once
// navigation moves past the newest entry.
func (c *Controller) RecallNext() {
	if entry, ok := c.recall.Next(); ok {
		c.input = entry
	}
}

func (c *Controller) SetInput(input string) {
	c.input = input
}

func (c *Controller) Input() string {
	return c.input
}

// StartDrag begins moving the window with the pointer.
func (c *Controller) StartDrag(pointer Point) {
	c.gesture = gesture{kind: gestureDrag, offset: pointer.Sub(c.geometry.Position)}
}

// UpdateDrag moves the window. Drags are not clamped to the screen.
func (c *Controller) UpdateDrag(pointer Point) {
	if c.gesture.kind != gestureDrag {
		return
	}
	c.geometry.Position = dragTo(pointer, c.gesture.offset)
}

func (c *Controller) EndDrag() {
	if c.gesture.kind == gestureDrag {
		c.gesture = gesture{}
	}
}

// StartResize begins resizing the window from its bottom-right corner.
func (c *Controller) StartResize(pointer Point) {
	c.gesture = gesture{kind: gestureResize, offset: resizeOffset(pointer, c.geometry)}
}

// UpdateResize sizes the window to the pointer, never below the minimum.
func (c *Controller) UpdateResize(pointer Point) {
	if c.gesture.kind != gestureResize {
		return
	}
	c.geometry.Size = resizeTo(pointer, c.geometry.Position, c.gesture.offset, c.minSize)
	invariants.CheckWindowMinimumSize(
		c.ctx,
		"session.Controller.UpdateResize",
		c.geometry.Size.Width,
		c.geometry.Size.Height,
		c.minSize.Width,
		c.minSize.Height,
	)
}

func (c *Controller) EndResize() {
	if c.gesture.kind == gestureResize {
		c.gesture = gesture{}
	}
}

// RequestClose hides the window. The transcript is kept until the next Open.
func (c *Controller) RequestClose() {
	c.setVisible(false, ReasonClose)
}

// Toggle hides a visible window, or opens a fresh session when hidden.
func (c *Controller) Toggle() tea.Cmd {
	if c.visible {
		c.setVisible(false, ReasonToggle)
		return nil
	}
	return c.Open()
}

// PointerDown hides the window when pressed outside it, unless a drag or
// resize is in progress.
func (c *Controller) PointerDown(pointer Point) {
	if !c.visible || c.gesture.active() || c.geometry.Contains(pointer) {
		return
	}
	c.setVisible(false, ReasonOutside)
}

// History returns a copy of the transcript.
func (c *Controller) History() []processor.Result {
	return slices.Clone(c.history)
}

// CommandHistory returns the recall list, oldest first.
func (c *Controller) CommandHistory() []string {
	return c.recall.Entries()
}

// RecallCursor returns the recall index, -1 when not navigating.
func (c *Controller) RecallCursor() int {
	return c.recall.Cursor()
}

// Rendering reports whether input is gated by a render in progress.
func (c *Controller) Rendering() bool {
	return c.rendering
}

func (c *Controller) Visible() bool {
	return c.visible
}

func (c *Controller) Geometry() Geometry {
	return c.geometry
}

// MinSize returns the resize floor.
func (c *Controller) MinSize() Size {
	return c.minSize
}

// Interacting reports whether a drag or resize is in progress.
func (c *Controller) Interacting() bool {
	return c.gesture.active()
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool {
	return c.gesture.kind == gestureDrag
}

// ActiveEntry returns the transcript index currently being typed out.
func (c *Controller) ActiveEntry() (int, bool) {
	return c.active, c.active >= 0
}

// RenderedLines returns the revealed text of the active entry.
func (c *Controller) RenderedLines() []string {
	return c.renderer.Lines()
}

// SessionID identifies the mounted session in logs and events.
func (c *Controller) SessionID() string {
	return c.sessionID
}

func (c *Controller) startRender(index int) tea.Cmd {
	c.active = index
	c.renderStart = time.Now()
	return c.renderer.Start(c.history[index].Output)
}

// commandRendering reports whether a submitted command is still being typed.
// The welcome entry has no command and never gates.
func (c *Controller) commandRendering() bool {
	return c.renderer.Active() && c.active >= 0 && c.history[c.active].Command != ""
}

func (c *Controller) finishRender() {
	index := c.active
	lines := len(c.history[index].Output)
	c.active = -1
	c.rendering = false

	elapsed := time.Since(c.renderStart)
	c.logger.Debug("render completed", "session_id", c.sessionID, "entry", index, "duration", elapsed)
	c.publish(events.EventTypeRenderCompleted, events.RenderCompleted{
		RenderID:  c.renderer.ID(),
		LineCount: lines,
		Duration:  elapsed,
	})
}

func (c *Controller) setVisible(visible bool, reason string) {
	if c.visible == visible {
		return
	}
	c.visible = visible
	if !visible {
		c.gesture = gesture{}
	}
	c.logger.Info("visibility changed", "session_id", c.sessionID, "visible", visible, "reason", reason)
	c.publish(events.EventTypeVisibilityChanged, events.VisibilityChanged{Visible: visible, Reason: reason})
}

func (c *Controller) publish(eventType string, payload any) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(events.Event{
		Type:      eventType,
		SessionID: c.sessionID,
		Payload:   payload,
	})
}

func (c *Controller) clampSize(size Size) Size {
	return Size{
		Width:  max(size.Width, c.minSize.Width),
		Height: max(size.Height, c.minSize.Height),
	}
}
