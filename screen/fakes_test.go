package screen

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ipm-quickstart/config"
	"ipm-quickstart/messaging"
	"ipm-quickstart/messaging/loopback"
	"ipm-quickstart/token"
)

func runLoop(t *testing.T) *Loop {
	t.Helper()
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return loop
}

type staticFetcher struct {
	grant *token.Grant
	err   error
}

func (f staticFetcher) Fetch(context.Context, string) (*token.Grant, error) {
	return f.grant, f.err
}

// recordingConnector remembers the tokens it was asked to connect with.
type recordingConnector struct {
	next messaging.Connector

	mu     sync.Mutex
	tokens []string
}

func (c *recordingConnector) Connect(cred *messaging.AccessCredential, delegate messaging.Delegate) (messaging.Client, error) {
	c.mu.Lock()
	c.tokens = append(c.tokens, cred.Token())
	c.mu.Unlock()
	return c.next.Connect(cred, delegate)
}

func (c *recordingConnector) Tokens() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.tokens...)
}

// view records every call a screen makes on its views.
type view struct {
	mu       sync.Mutex
	prompts  []string
	rows     []Row
	reloads  int
	scrolls  []int
	clears   int
	resigns  int
	bottoms  []float64
	animated []time.Duration
}

func (v *view) SetPrompt(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.prompts = append(v.prompts, text)
}

func (v *view) ReloadData(rows []Row) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rows = rows
	v.reloads++
}

func (v *view) ScrollToRow(index int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrolls = append(v.scrolls, index)
}

func (v *view) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.clears++
}

func (v *view) ResignFirstResponder() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resigns++
}

func (v *view) SetBottomInset(points float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bottoms = append(v.bottoms, points)
}

func (v *view) Animate(d time.Duration, changes func()) {
	v.mu.Lock()
	v.animated = append(v.animated, d)
	v.mu.Unlock()
	changes()
}

func (v *view) lastScroll() (int, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.scrolls) == 0 {
		return 0, false
	}
	return v.scrolls[len(v.scrolls)-1], true
}

func (v *view) counts() (clears, resigns int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.clears, v.resigns
}

type harness struct {
	screen    *Screen
	view      *view
	backend   *loopback.Backend
	connector *recordingConnector
}

func defaultOptions() Options {
	cfg := config.Default()
	return Options{
		DeviceID: "device-1",
		Channel:  cfg.Channel,
		Layout:   cfg.Layout,
	}
}

// newHarness builds a loaded screen on a running loop. fetcher may be nil to
// use a successful static grant.
func newHarness(t *testing.T, backend *loopback.Backend, fetcher TokenFetcher) *harness {
	t.Helper()
	if backend == nil {
		backend = loopback.New()
	}
	if fetcher == nil {
		fetcher = staticFetcher{grant: &token.Grant{Token: "T1", Identity: "alice"}}
	}
	v := &view{}
	conn := &recordingConnector{next: backend}

	opts := defaultOptions()
	opts.Fetcher = fetcher
	opts.Connector = conn
	opts.Chrome = v
	opts.List = v
	opts.Field = v
	opts.LayoutView = v
	opts.Animator = v

	s := New(runLoop(t), opts)
	s.Load(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Close(ctx)
	})
	return &harness{screen: s, view: v, backend: backend, connector: conn}
}

func (h *harness) snapshot(t *testing.T) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	snap, err := h.screen.Snapshot(ctx)
	require.NoError(t, err)
	return snap
}

func (h *harness) waitFor(t *testing.T, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	var snap Snapshot
	require.Eventually(t, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		got, err := h.screen.Snapshot(ctx)
		if err != nil {
			return false
		}
		snap = got
		return cond(got)
	}, 2*time.Second, 5*time.Millisecond)
	return snap
}

func (h *harness) waitJoined(t *testing.T) *Snapshot {
	t.Helper()
	snap := h.waitFor(t, func(s Snapshot) bool {
		if _, ok := s.Channel.Resolved(); !ok {
			return false
		}
		for _, ch := range h.backend.Channels() {
			if ch.UniqueName == "general" && ch.Members > 0 {
				return true
			}
		}
		return false
	})
	return &snap
}

var errBoom = errors.New("boom")
