package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ipm-quickstart/screen"
)

type promptMsg struct{ text string }

type rowsMsg struct{ rows []screen.Row }

type scrollMsg struct{ index int }

type clearMsg struct{}

type resignMsg struct{}

type insetMsg struct {
	points   float64
	duration time.Duration
}

// Bridge turns the screen's view calls into program messages. It implements
// screen.Chrome, screen.ListView, screen.TextField, screen.Layout and
// screen.Animator. Call Attach before the screen is loaded.
type Bridge struct {
	send func(tea.Msg)

	// set for the duration of an Animate call; loop-owned
	duration time.Duration
}

func NewBridge() *Bridge {
	return &Bridge{send: func(tea.Msg) {}}
}

// Attach routes messages to p.
func (b *Bridge) Attach(p *tea.Program) {
	b.send = p.Send
}

func (b *Bridge) SetPrompt(text string) {
	b.send(promptMsg{text: text})
}

func (b *Bridge) ReloadData(rows []screen.Row) {
	b.send(rowsMsg{rows: rows})
}

func (b *Bridge) ScrollToRow(index int) {
	b.send(scrollMsg{index: index})
}

func (b *Bridge) Clear() {
	b.send(clearMsg{})
}

func (b *Bridge) ResignFirstResponder() {
	b.send(resignMsg{})
}

// SetBottomInset carries the duration of the enclosing Animate call, if any,
// so the model can step towards the new inset.
func (b *Bridge) SetBottomInset(points float64) {
	b.send(insetMsg{points: points, duration: b.duration})
}

func (b *Bridge) Animate(d time.Duration, changes func()) {
	b.duration = d
	defer func() { b.duration = 0 }()
	changes()
}
