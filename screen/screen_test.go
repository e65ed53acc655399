package screen

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipm-quickstart/messaging"
	"ipm-quickstart/messaging/loopback"
	"ipm-quickstart/token"
)

func TestLoadBootstrapsSessionFromGrant(t *testing.T) {
	h := newHarness(t, nil, staticFetcher{grant: &token.Grant{Token: "T1", Identity: "alice"}})

	snap := h.waitFor(t, func(s Snapshot) bool { return s.Connected })
	assert.Equal(t, "alice", snap.Identity)
	assert.Equal(t, `Logged in as "alice"`, snap.Prompt)
	assert.Equal(t, []string{"T1"}, h.connector.Tokens())

	h.view.mu.Lock()
	defer h.view.mu.Unlock()
	assert.Equal(t, []string{`Logged in as "alice"`}, h.view.prompts)
}

func TestFetchFailureLeavesSessionUninitialized(t *testing.T) {
	h := newHarness(t, nil, staticFetcher{err: errBoom})

	time.Sleep(20 * time.Millisecond)
	snap := h.snapshot(t)
	assert.False(t, snap.Connected)
	assert.Empty(t, snap.Prompt)
	assert.Equal(t, PhaseUninitialized, snap.Phase)
	assert.Empty(t, h.connector.Tokens())
}

func TestEmptyTokenSkipsClient(t *testing.T) {
	h := newHarness(t, nil, staticFetcher{grant: &token.Grant{Identity: "bob"}})

	snap := h.waitFor(t, func(s Snapshot) bool { return s.Prompt != "" })
	assert.Equal(t, `Logged in as "bob"`, snap.Prompt)
	assert.False(t, snap.Connected)
	assert.Empty(t, h.connector.Tokens())
}

func TestConnectFailureIsLoggedOnly(t *testing.T) {
	backend := loopback.New(loopback.WithFailures(loopback.Failures{Connect: errBoom}))
	h := newHarness(t, backend, nil)

	snap := h.waitFor(t, func(s Snapshot) bool { return s.Prompt != "" })
	assert.False(t, snap.Connected)
	assert.Equal(t, PhaseUninitialized, snap.Phase)
}

func TestSyncCompletedCreatesJoinsAndRenamesGeneral(t *testing.T) {
	h := newHarness(t, nil, nil)

	snap := h.waitJoined(t)
	assert.Equal(t, PhaseSynced, snap.Phase)
	assert.Equal(t, 1, h.backend.Creates())

	channels := h.backend.Channels()
	require.Len(t, channels, 1)
	assert.Equal(t, "general", channels[0].UniqueName)
	assert.Equal(t, "General Chat Channel", channels[0].FriendlyName)
	assert.Equal(t, messaging.ChannelTypePublic, channels[0].Type)
	assert.Equal(t, 1, channels[0].Members)

	ch, ok := snap.Channel.Resolved()
	require.True(t, ok)
	assert.Equal(t, channels[0].SID, ch.SID())
}

func TestSyncCompletedJoinsExistingGeneral(t *testing.T) {
	backend := loopback.New()
	first := newHarness(t, backend, staticFetcher{grant: &token.Grant{Token: "T1", Identity: "alice"}})
	first.waitJoined(t)
	require.Equal(t, 1, backend.Creates())

	second := newHarness(t, backend, staticFetcher{grant: &token.Grant{Token: "T2", Identity: "bob"}})
	snap := second.waitFor(t, func(s Snapshot) bool {
		_, ok := s.Channel.Resolved()
		return ok && backend.Channels()[0].Members == 2
	})

	assert.Equal(t, 1, backend.Creates())
	ch, _ := snap.Channel.Resolved()
	assert.Equal(t, backend.Channels()[0].SID, ch.SID())
}

func TestMessagesAppendInArrivalOrderAndScrollToNewest(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.waitJoined(t)

	for _, body := range []string{"A", "B", "C"} {
		h.screen.Submit(body)
	}

	snap := h.waitFor(t, func(s Snapshot) bool { return len(s.Messages) == 3 })
	assert.Equal(t, []Row{
		{Title: "A", Detail: "guest"},
		{Title: "B", Detail: "guest"},
		{Title: "C", Detail: "guest"},
	}, normalizeAuthors(snap.Rows))

	require.Eventually(t, func() bool {
		last, ok := h.view.lastScroll()
		return ok && last == 2
	}, time.Second, 5*time.Millisecond)

	h.view.mu.Lock()
	assert.Len(t, h.view.rows, 3)
	assert.Equal(t, 3, h.view.reloads)
	h.view.mu.Unlock()
}

func TestTwoScreensSeeEachOthersMessages(t *testing.T) {
	backend := loopback.New()
	alice := newHarness(t, backend, nil)
	alice.waitJoined(t)
	bob := newHarness(t, backend, staticFetcher{grant: &token.Grant{Token: "T2", Identity: "bob"}})
	bob.waitFor(t, func(s Snapshot) bool {
		_, ok := s.Channel.Resolved()
		return ok && backend.Channels()[0].Members == 2
	})

	alice.screen.Submit("hello from alice")

	for _, h := range []*harness{alice, bob} {
		snap := h.waitFor(t, func(s Snapshot) bool { return len(s.Messages) == 1 })
		assert.Equal(t, "hello from alice", snap.Messages[0].Body)
	}
}

func TestSubmitWithoutChannelIsNoop(t *testing.T) {
	h := newHarness(t, nil, staticFetcher{err: errBoom})

	assert.NotPanics(t, func() { h.screen.Submit("lost") })

	snap := h.snapshot(t)
	assert.Empty(t, snap.Messages)
	assert.Equal(t, ChannelUnresolved, snap.Channel.Status())
	clears, resigns := h.view.counts()
	assert.Zero(t, clears)
	assert.Zero(t, resigns)
}

func TestSubmitClearsInputEvenWhenSendFails(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.waitJoined(t)
	h.backend.SetFailures(loopback.Failures{Send: errBoom})

	h.screen.Submit("doomed")

	require.Eventually(t, func() bool {
		clears, resigns := h.view.counts()
		return clears == 1 && resigns == 1
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, h.snapshot(t).Messages)
}

func TestDismissKeyboard(t *testing.T) {
	h := newHarness(t, nil, staticFetcher{err: errBoom})
	h.screen.DismissKeyboard()

	require.Eventually(t, func() bool {
		_, resigns := h.view.counts()
		return resigns == 1
	}, time.Second, 5*time.Millisecond)
}

func TestCreateFailureMarksChannelFailed(t *testing.T) {
	backend := loopback.New(loopback.WithFailures(loopback.Failures{Create: errBoom}))
	h := newHarness(t, backend, nil)

	snap := h.waitFor(t, func(s Snapshot) bool { return s.Channel.Status() == ChannelFailed })
	assert.ErrorIs(t, snap.Channel.Err(), errBoom)
	_, ok := snap.Channel.Resolved()
	assert.False(t, ok)
}

func TestJoinFailureAbandonsCreatedChannel(t *testing.T) {
	backend := loopback.New(loopback.WithFailures(loopback.Failures{Join: errBoom}))
	h := newHarness(t, backend, nil)

	h.waitFor(t, func(s Snapshot) bool { return s.Channel.Status() == ChannelResolved })
	time.Sleep(20 * time.Millisecond)

	channels := backend.Channels()
	require.Len(t, channels, 1)
	assert.Empty(t, channels[0].UniqueName)
	assert.Zero(t, channels[0].Members)
}

func TestKeyboardNotificationsMoveBottomConstraint(t *testing.T) {
	h := newHarness(t, nil, staticFetcher{err: errBoom})
	center := h.screen.Notifications()

	center.Post(Notification{Name: KeyboardWillShow, KeyboardFrame: Rect{Height: 216}})
	h.waitFor(t, func(s Snapshot) bool { return s.Bottom == 226 })

	center.Post(Notification{Name: KeyboardWillHide})
	h.waitFor(t, func(s Snapshot) bool { return s.Bottom == 20 })

	h.view.mu.Lock()
	defer h.view.mu.Unlock()
	assert.Equal(t, []float64{226, 20}, h.view.bottoms)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 100 * time.Millisecond}, h.view.animated)
}

func TestKeyboardDidShowScrollsToBottom(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.waitJoined(t)
	h.screen.Submit("only")
	h.waitFor(t, func(s Snapshot) bool { return len(s.Messages) == 1 })

	h.view.mu.Lock()
	before := len(h.view.scrolls)
	h.view.mu.Unlock()

	h.screen.Notifications().Post(Notification{Name: KeyboardDidShow})
	require.Eventually(t, func() bool {
		h.view.mu.Lock()
		defer h.view.mu.Unlock()
		return len(h.view.scrolls) > before && h.view.scrolls[len(h.view.scrolls)-1] == 0
	}, time.Second, 5*time.Millisecond)
}

func TestCloseReleasesObserversAndClient(t *testing.T) {
	backend := loopback.New()
	h := newHarness(t, backend, nil)
	h.waitJoined(t)

	center := h.screen.Notifications()
	for _, name := range []NotificationName{KeyboardWillShow, KeyboardDidShow, KeyboardWillHide} {
		assert.Equal(t, 1, center.ObserverCount(name))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, h.screen.Close(ctx))

	for _, name := range []NotificationName{KeyboardWillShow, KeyboardDidShow, KeyboardWillHide} {
		assert.Zero(t, center.ObserverCount(name))
	}
	center.Post(Notification{Name: KeyboardWillShow, KeyboardFrame: Rect{Height: 300}})

	snap := h.snapshot(t)
	assert.False(t, snap.Connected)
	assert.Equal(t, 20.0, snap.Bottom)
	assert.Zero(t, backend.Channels()[0].Members)
}

// normalizeAuthors replaces loopback guest identities, which carry a random
// suffix, with a stable placeholder.
func normalizeAuthors(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		if strings.HasPrefix(r.Detail, "guest-") {
			r.Detail = "guest"
		}
		out[i] = r
	}
	return out
}
