package loopback

import (
	"sync"

	"ipm-quickstart/messaging"
)

// Client is one connection to a Backend. All completions and delegate
// callbacks for it run on its dispatcher goroutine.
type Client struct {
	backend  *Backend
	identity string
	delegate messaging.Delegate
	dispatch *dispatcher

	mu      sync.Mutex
	handles map[*channelState]*channel
}

func (c *Client) Identity() string {
	return c.identity
}

func (c *Client) ChannelsList() messaging.ChannelList {
	return channelList{client: c}
}

func (c *Client) Shutdown() {
	c.backend.disconnect(c)
	c.dispatch.close()
}

// handle returns the client's single handle for a channel, so repeated
// lookups and events compare equal.
func (c *Client) handle(state *channelState) *channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.handles[state]
	if !ok {
		h = &channel{client: c, state: state}
		c.handles[state] = h
	}
	return h
}

type channelList struct {
	client *Client
}

func (l channelList) ChannelWithUniqueName(name string) messaging.Channel {
	state := l.client.backend.lookup(name)
	if state == nil {
		return nil
	}
	return l.client.handle(state)
}

func (l channelList) CreateChannel(opts messaging.ChannelOptions, completion func(messaging.Channel, error)) {
	c := l.client
	state, err := c.backend.create(opts)
	c.dispatch.enqueue(func() {
		if completion == nil {
			return
		}
		if err != nil {
			completion(nil, err)
			return
		}
		completion(c.handle(state), nil)
	})
}

type channel struct {
	client *Client
	state  *channelState
}

func (ch *channel) SID() string {
	return ch.state.sid
}

func (ch *channel) FriendlyName() string {
	return ch.state.friendlyName
}

func (ch *channel) UniqueName() string {
	ch.client.backend.mu.Lock()
	defer ch.client.backend.mu.Unlock()
	return ch.state.uniqueName
}

func (ch *channel) Join(completion func(error)) {
	err := ch.client.backend.join(ch.client, ch.state)
	ch.complete(completion, err)
}

func (ch *channel) SetUniqueName(name string, completion func(error)) {
	err := ch.client.backend.setUniqueName(ch.state, name)
	ch.complete(completion, err)
}

func (ch *channel) Messages() messaging.Messages {
	return messages{channel: ch}
}

func (ch *channel) complete(completion func(error), err error) {
	ch.client.dispatch.enqueue(func() {
		if completion != nil {
			completion(err)
		}
	})
}

type messages struct {
	channel *channel
}

func (m messages) CreateMessage(body string) *messaging.Message {
	return &messaging.Message{Author: m.channel.client.identity, Body: body}
}

// Send delivers a copy of msg; the delivered message gets its SID and
// timestamp from the backend.
func (m messages) Send(msg *messaging.Message, completion func(error)) {
	ch := m.channel
	if msg == nil {
		ch.complete(completion, ErrNilMessage)
		return
	}
	err := ch.client.backend.send(ch.client, ch.state, msg.Body)
	ch.complete(completion, err)
}
