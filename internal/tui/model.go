package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/noahjenkins/termfolio/internal/config"
	"github.com/noahjenkins/termfolio/internal/render"
	"github.com/noahjenkins/termfolio/internal/session"
	"github.com/noahjenkins/termfolio/internal/tui/theme"
)

// Options configures the terminal host.
type Options struct {
	// Variant is config.VariantWindow or config.VariantOverlay.
	Variant string
	Prompt  string
	Title   string
}

// Model hosts one session controller inside a movable terminal window.
type Model struct {
	controller *session.Controller
	variant    string
	prompt     string
	title      string

	keys     keyMap
	input    textinput.Model
	viewport viewport.Model
	help     help.Model
	anim     openAnimation

	width      int
	height     int
	content    string
	showHelp   bool
	confirming bool
	confirmYes bool
	quitting   bool
}

// NewModel builds a terminal host over controller. The window variant opens
// its session in Init; the overlay variant starts hidden.
func NewModel(controller *session.Controller, options Options) *Model {
	defaults := config.Defaults()
	variant := strings.ToLower(strings.TrimSpace(options.Variant))
	if variant != config.VariantOverlay {
		variant = config.VariantWindow
	}
	prompt := strings.TrimSpace(options.Prompt)
	if prompt == "" {
		prompt = defaults.Prompt
	}
	title := strings.TrimSpace(options.Title)
	if title == "" {
		title = defaults.Title
	}

	input := textinput.New()
	input.Prompt = prompt + " "
	input.PromptStyle = theme.PromptStyle
	input.TextStyle = theme.OutputStyle
	input.Cursor.Style = theme.OutputStyle
	input.Cursor.SetMode(cursor.CursorStatic)
	input.Focus()

	helpModel := help.New()
	helpModel.ShowAll = true
	helpModel.Styles.FullKey = theme.PromptStyle
	helpModel.Styles.FullDesc = theme.HintStyle
	helpModel.Styles.FullSeparator = theme.HintStyle

	m := &Model{
		controller: controller,
		variant:    variant,
		prompt:     prompt,
		title:      title,
		keys:       newKeyMap(variant),
		input:      input,
		viewport:   viewport.New(1, 1),
		help:       helpModel,
		anim:       newOpenAnimation(),
		confirmYes: true,
	}
	m.sync()
	return m
}

// Init opens the window variant immediately.
func (m *Model) Init() tea.Cmd {
	if m.variant == config.VariantOverlay {
		return nil
	}
	return m.opened(m.controller.Open())
}

// Update satisfies tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case render.TickMsg, render.DoneMsg:
		cmd = m.controller.Update(msg)
	case openFrameMsg:
		cmd = m.anim.step(msg)
	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	case tea.MouseMsg:
		cmd = m.handleMouse(msg)
	}
	m.sync()
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.confirming {
		return m.handleConfirmKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.confirming = true
		m.confirmYes = true
		return nil
	case key.Matches(msg, m.keys.Toggle):
		cmd := m.controller.Toggle()
		if m.controller.Visible() {
			return m.opened(cmd)
		}
		m.anim.stop()
		return nil
	}

	if !m.controller.Visible() {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Close):
		if m.showHelp {
			m.showHelp = false
			return nil
		}
		m.controller.RequestClose()
		m.anim.stop()
		return nil
	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}

	// The input line is hidden while output is typing.
	if m.controller.Rendering() {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Help) && m.input.Value() == "":
		m.showHelp = !m.showHelp
		return nil
	case key.Matches(msg, m.keys.Submit):
		if strings.TrimSpace(m.input.Value()) != "" {
			m.showHelp = false
		}
		m.controller.SetInput(m.input.Value())
		cmd := m.controller.Submit(m.controller.Input())
		m.input.SetValue(m.controller.Input())
		return cmd
	case key.Matches(msg, m.keys.Previous):
		m.controller.SetInput(m.input.Value())
		m.controller.RecallPrevious()
		m.loadInput()
		return nil
	case key.Matches(msg, m.keys.Next):
		m.controller.SetInput(m.input.Value())
		m.controller.RecallNext()
		m.loadInput()
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.controller.SetInput(m.input.Value())
	return cmd
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	next, finished, confirmed := resolveConfirm(m.confirmYes, confirmActionForKey(msg))
	m.confirmYes = next
	if !finished {
		return nil
	}
	m.confirming = false
	if confirmed {
		m.quitting = true
		return tea.Quit
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.confirming || !m.controller.Visible() {
		return nil
	}
	pointer := session.Point{X: msg.X, Y: msg.Y}

	switch msg.Action {
	case tea.MouseActionPress:
		if tea.MouseEvent(msg).IsWheel() {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return cmd
		}
		if msg.Button != tea.MouseButtonLeft {
			return nil
		}
		switch hitTest(m.controller.Geometry(), pointer) {
		case regionOutside:
			m.controller.PointerDown(pointer)
			if !m.controller.Visible() {
				m.anim.stop()
			}
		case regionClose:
			m.controller.RequestClose()
			m.anim.stop()
		case regionTitle:
			m.controller.StartDrag(pointer)
		case regionResize:
			m.controller.StartResize(pointer)
		}
	case tea.MouseActionMotion:
		m.controller.UpdateDrag(pointer)
		m.controller.UpdateResize(pointer)
	case tea.MouseActionRelease:
		m.controller.EndDrag()
		m.controller.EndResize()
	}
	return nil
}

// opened resets host state for a freshly mounted session. The overlay
// slides open; the window variant appears at full size.
func (m *Model) opened(cmd tea.Cmd) tea.Cmd {
	m.input.SetValue("")
	m.showHelp = false
	m.content = ""
	if m.variant != config.VariantOverlay {
		m.anim.stop()
		return cmd
	}
	return tea.Batch(cmd, m.anim.start())
}

func (m *Model) loadInput() {
	m.input.SetValue(m.controller.Input())
	m.input.CursorEnd()
}

// sync sizes the viewport to the window and refreshes its content, keeping
// the newest output in view whenever the content changes.
func (m *Model) sync() {
	geometry := m.controller.Geometry()
	width, _ := innerSize(geometry)
	height := transcriptHeight(geometry)
	resized := m.viewport.Width != width || m.viewport.Height != height
	m.viewport.Width = width
	m.viewport.Height = height
	m.help.Width = width
	m.input.Width = max(width-ansi.StringWidth(m.input.Prompt)-2, 1)

	var content string
	if m.showHelp {
		content = m.help.FullHelpView(m.keys.FullHelp())
	} else {
		active, ok := m.controller.ActiveEntry()
		if !ok {
			active = -1
		}
		rows := transcriptLines(m.controller.History(), m.prompt, active, m.controller.RenderedLines(), width)
		content = strings.Join(rows, "\n")
	}
	if content == m.content && !resized {
		return
	}
	m.content = content
	m.viewport.SetContent(content)
	if !m.showHelp {
		m.viewport.GotoBottom()
	}
}

// View satisfies tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.confirming {
		return renderConfirm(m.width, m.height, m.confirmYes)
	}
	if !m.controller.Visible() {
		return m.renderHidden()
	}

	geometry := m.controller.Geometry()
	window := m.renderWindow(geometry)
	if m.anim.running {
		lines := strings.Split(window, "\n")
		window = strings.Join(lines[:m.anim.rows(len(lines))], "\n")
	}
	return place(window, geometry.Position, m.width, m.height)
}

func (m *Model) renderWindow(geometry session.Geometry) string {
	width, height := innerSize(geometry)

	body := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTitleBar(width),
		m.viewport.View(),
		m.renderInputLine(width),
	)

	style := theme.WindowStyle
	if m.controller.Dragging() {
		style = theme.DraggingWindowStyle
	}
	return style.Width(width).Height(height).Render(body)
}

func (m *Model) renderTitleBar(width int) string {
	closeWidth := len(theme.CloseButton)
	title := ansi.Truncate(" "+m.title, max(width-closeWidth-1, 0), "…")
	gap := max(width-ansi.StringWidth(title)-closeWidth, 0)
	return theme.TitleBarStyle.Render(title + strings.Repeat(" ", gap) + theme.CloseButton)
}

func (m *Model) renderInputLine(width int) string {
	line := theme.OutputStyle.Render(theme.Cursor)
	if !m.controller.Rendering() {
		line = m.input.View()
	}
	field := max(width-1, 0)
	line = lipgloss.NewStyle().Width(field).MaxWidth(field).Render(ansi.Truncate(line, field, ""))
	return line + theme.HintStyle.Render(theme.ResizeHandle)
}

func (m *Model) renderHidden() string {
	binding := m.keys.Toggle.Help().Key
	hint := "terminal closed. press " + binding + " to reopen, ctrl+c to quit."
	if m.variant == config.VariantOverlay {
		hint = "press " + binding + " to open the terminal, ctrl+c to quit."
	}
	return theme.HintStyle.Render(hint)
}

// Quitting reports whether quitting was confirmed.
func (m *Model) Quitting() bool {
	return m.quitting
}

// Confirming reports whether the quit prompt is open.
func (m *Model) Confirming() bool {
	return m.confirming
}

// HelpVisible reports whether the key list replaces the transcript.
func (m *Model) HelpVisible() bool {
	return m.showHelp
}

// Input returns the text currently in the input line.
func (m *Model) Input() string {
	return m.input.Value()
}
