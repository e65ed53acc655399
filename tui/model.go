// Package tui renders the chat screen in a terminal. The composer stands in
// for the software keyboard: focusing it posts keyboard show notifications
// and the screen answers by moving the bottom inset, which the model turns
// into rows reserved below the message list.
package tui

import (
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ipm-quickstart/config"
	"ipm-quickstart/screen"
)

const (
	// PointsPerRow converts layout points to terminal rows.
	PointsPerRow = 10

	// keyboardRows is the height the composer claims while focused.
	keyboardRows = 3

	headerRows     = 1
	rowLines       = 2
	animationSteps = 2
)

// Controller is the part of *screen.Screen the model drives.
type Controller interface {
	Submit(text string)
	DismissKeyboard()
	Notifications() *screen.NotificationCenter
}

type animStepMsg struct {
	gen      int
	interval time.Duration
}

type Model struct {
	controller Controller
	styles     styles

	viewport viewport.Model
	input    textinput.Model

	width  int
	height int

	prompt string
	rows   []screen.Row
	follow int

	inset     int
	target    int
	animGen   int
	stepsLeft int

	status    statusMsg
	statusSeq int
}

func New(controller Controller, layout config.LayoutConfig) Model {
	input := textinput.New()
	input.Placeholder = "Type a message"
	input.Prompt = "> "

	inset := rowsFor(layout.DefaultBottom)
	m := Model{
		controller: controller,
		styles:     defaultStyles(),
		viewport:   viewport.New(0, 0),
		input:      input,
		follow:     -1,
		inset:      inset,
		target:     inset,
	}
	m.viewport.SetContent(m.renderRows())
	return m
}

// NewProgram builds the program for m and attaches bridge to it.
func NewProgram(m Model, bridge *Bridge, opts ...tea.ProgramOption) *tea.Program {
	p := tea.NewProgram(m, opts...)
	bridge.Attach(p)
	return p
}

func rowsFor(points float64) int {
	if points <= 0 {
		return 0
	}
	return int(math.Ceil(points / PointsPerRow))
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 1)
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case promptMsg:
		m.prompt = msg.text
		return m, nil

	case rowsMsg:
		m.rows = msg.rows
		m.viewport.SetContent(m.renderRows())
		return m, nil

	case scrollMsg:
		m.scrollTo(msg.index)
		return m, nil

	case clearMsg:
		m.input.Reset()
		return m, nil

	case resignMsg:
		m.blur()
		return m, nil

	case insetMsg:
		return m, m.animateTo(rowsFor(msg.points), msg.duration)

	case animStepMsg:
		return m, m.step(msg)

	case statusMsg:
		m.status = msg
		m.statusSeq++
		seq := m.statusSeq
		return m, tea.Tick(statusFadeDelay, func(time.Time) tea.Msg { return statusFadeMsg{seq: seq} })

	case statusFadeMsg:
		if msg.seq == m.statusSeq {
			m.status = statusMsg{}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		if m.input.Focused() {
			m.controller.DismissKeyboard()
		}
		return m, nil
	case tea.KeyEnter:
		if m.input.Focused() {
			m.controller.Submit(m.input.Value())
			return m, nil
		}
		return m, m.focus()
	case tea.KeyTab:
		if !m.input.Focused() {
			return m, m.focus()
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.input.Focused() {
		m.input, cmd = m.input.Update(msg)
	} else {
		m.follow = -1
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// focus brings up the composer and announces a keyboard of its height.
func (m *Model) focus() tea.Cmd {
	cmd := m.input.Focus()
	frame := screen.Rect{
		Y:      float64((m.height - keyboardRows) * PointsPerRow),
		Width:  float64(m.width * PointsPerRow),
		Height: keyboardRows * PointsPerRow,
	}
	center := m.controller.Notifications()
	center.Post(screen.Notification{Name: screen.KeyboardWillShow, KeyboardFrame: frame})
	center.Post(screen.Notification{Name: screen.KeyboardDidShow, KeyboardFrame: frame})
	return cmd
}

func (m *Model) blur() {
	if !m.input.Focused() {
		return
	}
	m.input.Blur()
	m.controller.Notifications().Post(screen.Notification{Name: screen.KeyboardWillHide})
}

// animateTo moves the inset to target rows in animationSteps ticks over d.
// A newer animation supersedes any in flight.
func (m *Model) animateTo(target int, d time.Duration) tea.Cmd {
	m.animGen++
	m.target = target
	if d <= 0 || target == m.inset {
		m.inset = target
		m.stepsLeft = 0
		m.resize()
		return nil
	}
	m.stepsLeft = animationSteps
	return m.tick(d / animationSteps)
}

func (m *Model) tick(interval time.Duration) tea.Cmd {
	gen := m.animGen
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return animStepMsg{gen: gen, interval: interval}
	})
}

func (m *Model) step(msg animStepMsg) tea.Cmd {
	if msg.gen != m.animGen || m.stepsLeft == 0 {
		return nil
	}
	m.inset += (m.target - m.inset) / m.stepsLeft
	m.stepsLeft--
	if m.stepsLeft == 0 {
		m.inset = m.target
	}
	m.resize()
	if m.stepsLeft > 0 {
		return m.tick(msg.interval)
	}
	return nil
}

func (m *Model) resize() {
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-headerRows-m.inset, 1)
	if m.follow >= 0 {
		m.scrollTo(m.follow)
	}
}

// scrollTo makes row index the last visible row.
func (m *Model) scrollTo(index int) {
	m.follow = index
	offset := (index+1)*rowLines - m.viewport.Height
	m.viewport.SetYOffset(max(offset, 0))
}

func (m Model) renderRows() string {
	if len(m.rows) == 0 {
		return m.styles.empty.Render("No messages yet.")
	}
	lines := make([]string, 0, len(m.rows)*rowLines)
	for _, row := range m.rows {
		lines = append(lines, m.styles.body.Render(row.Title), m.styles.author.Render(row.Detail))
	}
	return strings.Join(lines, "\n")
}

func (m Model) View() string {
	var header string
	if m.prompt == "" {
		header = m.styles.pending.Width(m.width).Render("Fetching token")
	} else {
		header = m.styles.header.Width(m.width).Render(m.prompt)
	}

	bottom := lipgloss.NewStyle().
		Width(m.width).
		Height(m.inset).
		MaxHeight(m.inset).
		Render(lipgloss.JoinVertical(lipgloss.Left, m.input.View(), m.helpLine()))

	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), bottom)
}

func (m Model) helpLine() string {
	if m.status.summary != "" {
		return m.styles.status(m.status.level).Render(m.status.summary)
	}
	if m.input.Focused() {
		return m.styles.help.Render("enter send · esc dismiss · ctrl+c quit")
	}
	return m.styles.help.Render("tab compose · ↑/↓ scroll · ctrl+c quit")
}
