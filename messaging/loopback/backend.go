// Package loopback is an in-process implementation of the messaging SDK
// surface. Every client connected to the same Backend shares its channels.
package loopback

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ipm-quickstart/messaging"
)

var (
	ErrUniqueNameTaken = errors.New("unique name already in use")
	ErrNilDelegate     = errors.New("delegate is nil")
	ErrNilMessage      = errors.New("message is nil")
)

// Failures injects errors into backend operations. A nil field means the
// operation succeeds.
type Failures struct {
	Connect       error
	Sync          error
	Create        error
	Join          error
	SetUniqueName error
	Send          error
}

type Option func(*Backend)

func WithLogger(log zerolog.Logger) Option {
	return func(b *Backend) { b.log = log }
}

func WithFailures(f Failures) Option {
	return func(b *Backend) { b.failures = f }
}

// WithClock overrides the timestamp source for delivered messages.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// Backend holds the shared channel state.
type Backend struct {
	mu           sync.Mutex
	channels     map[string]*channelState
	byUniqueName map[string]*channelState
	clients      map[*Client]struct{}
	creates      int

	failures Failures
	now      func() time.Time
	log      zerolog.Logger
}

type channelState struct {
	sid          string
	friendlyName string
	uniqueName   string
	kind         messaging.ChannelType
	members      map[*Client]struct{}
}

func New(opts ...Option) *Backend {
	b := &Backend{
		channels:     make(map[string]*channelState),
		byUniqueName: make(map[string]*channelState),
		clients:      make(map[*Client]struct{}),
		now:          time.Now,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetFailures replaces the injected failures for subsequent operations.
func (b *Backend) SetFailures(f Failures) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = f
}

// Connect implements messaging.Connector. Sync statuses are reported
// asynchronously, ending in completed (or failed when Failures.Sync is set).
func (b *Backend) Connect(cred *messaging.AccessCredential, delegate messaging.Delegate) (messaging.Client, error) {
	if cred == nil {
		return nil, messaging.ErrEmptyToken
	}
	if delegate == nil {
		return nil, ErrNilDelegate
	}

	b.mu.Lock()
	failures := b.failures
	if failures.Connect != nil {
		b.mu.Unlock()
		return nil, failures.Connect
	}
	identity := cred.Identity()
	if identity == "" {
		identity = "guest-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
	}
	c := &Client{
		backend:  b,
		identity: identity,
		delegate: delegate,
		dispatch: newDispatcher(),
		handles:  make(map[*channelState]*channel),
	}
	b.clients[c] = struct{}{}
	b.mu.Unlock()

	b.log.Debug().Str("identity", identity).Msg("client connected")

	statuses := []messaging.SyncStatus{messaging.SyncStatusStarted, messaging.SyncStatusChannelsListCompleted, messaging.SyncStatusCompleted}
	if failures.Sync != nil {
		statuses = []messaging.SyncStatus{messaging.SyncStatusStarted, messaging.SyncStatusFailed}
	}
	for _, status := range statuses {
		c.dispatch.enqueue(func() { delegate.SynchronizationStatusChanged(c, status) })
	}
	return c, nil
}

// Creates returns how many channels have been created.
func (b *Backend) Creates() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.creates
}

// ChannelInfo is a snapshot of one channel.
type ChannelInfo struct {
	SID          string
	FriendlyName string
	UniqueName   string
	Type         messaging.ChannelType
	Members      int
}

// Channels returns a snapshot of every channel, in no particular order.
func (b *Backend) Channels() []ChannelInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ChannelInfo, 0, len(b.channels))
	for _, ch := range b.channels {
		out = append(out, ChannelInfo{
			SID:          ch.sid,
			FriendlyName: ch.friendlyName,
			UniqueName:   ch.uniqueName,
			Type:         ch.kind,
			Members:      len(ch.members),
		})
	}
	return out
}

func (b *Backend) lookup(name string) *channelState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.byUniqueName[name]
}

func (b *Backend) create(opts messaging.ChannelOptions) (*channelState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures.Create != nil {
		return nil, b.failures.Create
	}
	ch := &channelState{
		sid:          "CH" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		friendlyName: opts.FriendlyName,
		kind:         opts.Type,
		members:      make(map[*Client]struct{}),
	}
	b.channels[ch.sid] = ch
	b.creates++
	return ch, nil
}

func (b *Backend) join(c *Client, ch *channelState) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures.Join != nil {
		return b.failures.Join
	}
	if _, ok := b.clients[c]; !ok {
		return messaging.ErrClientShutdown
	}
	ch.members[c] = struct{}{}
	return nil
}

func (b *Backend) setUniqueName(ch *channelState, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures.SetUniqueName != nil {
		return b.failures.SetUniqueName
	}
	if owner, ok := b.byUniqueName[name]; ok && owner != ch {
		return fmt.Errorf("%w: %s", ErrUniqueNameTaken, name)
	}
	if ch.uniqueName != "" {
		delete(b.byUniqueName, ch.uniqueName)
	}
	ch.uniqueName = name
	b.byUniqueName[name] = ch
	return nil
}

// send delivers msg to every member's delegate. The lock is held while
// queueing so all members observe the same per-channel order.
func (b *Backend) send(from *Client, ch *channelState, body string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures.Send != nil {
		return b.failures.Send
	}
	if _, ok := ch.members[from]; !ok {
		return messaging.ErrNotMember
	}

	delivered := &messaging.Message{
		SID:       "IM" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Author:    from.identity,
		Body:      body,
		Timestamp: b.now(),
	}
	for member := range ch.members {
		handle := member.handle(ch)
		member.dispatch.enqueue(func() {
			member.delegate.MessageAdded(member, handle, delivered)
		})
	}
	return nil
}

func (b *Backend) disconnect(c *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.clients, c)
	for _, ch := range b.channels {
		delete(ch.members, c)
	}
}
