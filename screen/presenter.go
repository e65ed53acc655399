package screen

import "ipm-quickstart/messaging"

// Row is one rendered message: body as the title, author underneath.
type Row struct {
	Title  string
	Detail string
}

// ListView renders rows. Both calls happen on the loop.
type ListView interface {
	ReloadData(rows []Row)
	ScrollToRow(index int)
}

// Presenter keeps the append-only message list and mirrors it into a view.
type Presenter struct {
	loop     *Loop
	view     ListView
	messages []*messaging.Message
}

func NewPresenter(loop *Loop, view ListView) *Presenter {
	return &Presenter{loop: loop, view: view}
}

// Append adds msg in arrival order, redraws, and scrolls to the newest row
// on the next loop turn.
func (p *Presenter) Append(msg *messaging.Message) {
	p.messages = append(p.messages, msg)
	p.view.ReloadData(p.Rows())
	p.loop.Dispatch(p.ScrollToBottom)
}

func (p *Presenter) ScrollToBottom() {
	if len(p.messages) == 0 {
		return
	}
	p.view.ScrollToRow(len(p.messages) - 1)
}

func (p *Presenter) Len() int {
	return len(p.messages)
}

// Messages returns a copy of the list.
func (p *Presenter) Messages() []*messaging.Message {
	return append([]*messaging.Message(nil), p.messages...)
}

func (p *Presenter) Rows() []Row {
	rows := make([]Row, len(p.messages))
	for i, msg := range p.messages {
		rows[i] = Row{Title: msg.Body, Detail: msg.Author}
	}
	return rows
}
