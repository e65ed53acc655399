// Package screen is the chat screen controller: it fetches a token, builds
// the messaging client, joins the shared channel and keeps the message list,
// composer and keyboard layout in step with SDK events.
//
// All controller state lives on a Loop. Views are small interfaces called
// from the loop goroutine only.
package screen

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"ipm-quickstart/config"
	"ipm-quickstart/messaging"
	"ipm-quickstart/token"
)

// TokenFetcher is satisfied by *token.Fetcher.
type TokenFetcher interface {
	Fetch(ctx context.Context, deviceID string) (*token.Grant, error)
}

// Chrome shows the navigation prompt.
type Chrome interface {
	SetPrompt(text string)
}

// Options wires a Screen. Nil views fall back to no-ops.
type Options struct {
	Fetcher       TokenFetcher
	DeviceID      string
	Connector     messaging.Connector
	Channel       config.ChannelConfig
	Layout        config.LayoutConfig
	Notifications *NotificationCenter

	Chrome     Chrome
	List       ListView
	Field      TextField
	LayoutView Layout
	Animator   Animator

	Log zerolog.Logger
}

type Screen struct {
	loop          *Loop
	fetcher       TokenFetcher
	deviceID      string
	connector     messaging.Connector
	notifications *NotificationCenter
	chrome        Chrome
	field         TextField
	log           zerolog.Logger

	sequencer *JoinSequencer
	presenter *Presenter
	composer  *Composer
	keyboard  *KeyboardAvoider

	registrations []*Registration

	// loop-owned
	identity string
	prompt   string
	client   messaging.Client
	closed   bool
}

func New(loop *Loop, opts Options) *Screen {
	var nop nopView
	if opts.Chrome == nil {
		opts.Chrome = nop
	}
	if opts.List == nil {
		opts.List = nop
	}
	if opts.Field == nil {
		opts.Field = nop
	}
	if opts.LayoutView == nil {
		opts.LayoutView = nop
	}
	if opts.Animator == nil {
		opts.Animator = ImmediateAnimator
	}
	if opts.Notifications == nil {
		opts.Notifications = NewNotificationCenter()
	}

	s := &Screen{
		loop:          loop,
		fetcher:       opts.Fetcher,
		deviceID:      opts.DeviceID,
		connector:     opts.Connector,
		notifications: opts.Notifications,
		chrome:        opts.Chrome,
		field:         opts.Field,
		log:           opts.Log,
	}
	s.sequencer = NewJoinSequencer(loop, opts.Channel.UniqueName, opts.Channel.FriendlyName,
		opts.Log.With().Str("component", "join").Logger())
	s.presenter = NewPresenter(loop, opts.List)
	s.composer = NewComposer(loop, opts.Field, s.sequencer.Channel,
		opts.Log.With().Str("component", "composer").Logger())
	s.keyboard = NewKeyboardAvoider(opts.Animator, opts.LayoutView, opts.Layout, s.presenter.ScrollToBottom)
	return s
}

// Loop returns the loop the screen runs on.
func (s *Screen) Loop() *Loop {
	return s.loop
}

// Notifications returns the center the screen observes.
func (s *Screen) Notifications() *NotificationCenter {
	return s.notifications
}

// Load registers the keyboard observers and starts the one-shot token fetch.
// Call it once, from the goroutine that will later call Close.
func (s *Screen) Load(ctx context.Context) {
	s.registrations = append(s.registrations,
		s.observe(KeyboardWillShow, s.keyboard.WillShow),
		s.observe(KeyboardDidShow, s.keyboard.DidShow),
		s.observe(KeyboardWillHide, s.keyboard.WillHide),
	)
	go s.fetch(ctx)
}

func (s *Screen) observe(name NotificationName, fn func(Notification)) *Registration {
	return s.notifications.Observe(name, func(n Notification) {
		s.loop.Dispatch(func() { fn(n) })
	})
}

func (s *Screen) fetch(ctx context.Context) {
	if s.fetcher == nil {
		s.log.Error().Msg("no token fetcher configured")
		return
	}
	grant, err := s.fetcher.Fetch(ctx, s.deviceID)
	if err != nil {
		s.log.Error().Err(err).Msg("error fetching token")
		return
	}
	s.loop.Dispatch(func() { s.bootstrap(grant) })
}

// bootstrap runs on the loop, so SDK events queued by the new client are
// handled only after the client is recorded.
func (s *Screen) bootstrap(grant *token.Grant) {
	if s.closed {
		return
	}
	s.identity = grant.Identity
	s.setPrompt(fmt.Sprintf("Logged in as \"%s\"", s.identity))

	cred, err := messaging.NewAccessCredential(grant.Token)
	if err != nil {
		s.log.Error().Err(err).Msg("cannot build credential")
		return
	}
	if exp := cred.ExpiresAt(); !exp.IsZero() {
		s.log.Debug().Time("expires_at", exp).Msg("access token decoded")
	}

	if s.connector == nil {
		s.log.Error().Msg("no messaging connector configured")
		return
	}
	client, err := s.connector.Connect(cred, messaging.EventSink(s.enqueue))
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create messaging client")
		return
	}
	s.client = client
	s.sequencer.Start()
	s.log.Info().Str("identity", s.identity).Msg("messaging client created")
}

func (s *Screen) setPrompt(text string) {
	s.prompt = text
	s.chrome.SetPrompt(text)
}

func (s *Screen) enqueue(ev messaging.Event) {
	s.loop.Dispatch(func() { s.handle(ev) })
}

func (s *Screen) handle(ev messaging.Event) {
	if s.closed {
		return
	}
	switch ev := ev.(type) {
	case messaging.SyncStatusChanged:
		s.sequencer.HandleSyncStatus(ev.Client, ev.Status)
	case messaging.MessageAdded:
		s.presenter.Append(ev.Message)
	}
}

// Submit hands text to the composer on the loop.
func (s *Screen) Submit(text string) {
	s.loop.Dispatch(func() { s.composer.Submit(text) })
}

// DismissKeyboard resigns the input focus, as a tap outside the field does.
func (s *Screen) DismissKeyboard() {
	s.loop.Dispatch(s.field.ResignFirstResponder)
}

// Close shuts the client down and releases every observer registration.
func (s *Screen) Close(ctx context.Context) error {
	for _, reg := range s.registrations {
		reg.Release()
	}
	s.registrations = nil

	return s.loop.Call(ctx, func() {
		s.closed = true
		if s.client != nil {
			s.client.Shutdown()
			s.client = nil
		}
	})
}

// Snapshot is a copy of the controller state.
type Snapshot struct {
	Identity  string
	Prompt    string
	Connected bool
	Phase     SyncPhase
	Channel   ChannelState
	Messages  []*messaging.Message
	Rows      []Row
	Bottom    float64
}

// Snapshot reads the state on the loop. It must not be called from the loop.
func (s *Screen) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.loop.Call(ctx, func() {
		snap = Snapshot{
			Identity:  s.identity,
			Prompt:    s.prompt,
			Connected: s.client != nil,
			Phase:     s.sequencer.Phase(),
			Channel:   s.sequencer.Channel(),
			Messages:  s.presenter.Messages(),
			Rows:      s.presenter.Rows(),
			Bottom:    s.keyboard.Bottom(),
		}
	})
	return snap, err
}

type nopView struct{}

func (nopView) SetPrompt(string) {}
func (nopView) ReloadData([]Row) {}
func (nopView) ScrollToRow(int) {}
func (nopView) Clear() {}
func (nopView) ResignFirstResponder() {}
func (nopView) SetBottomInset(float64) {}
