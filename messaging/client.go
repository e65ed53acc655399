// Package messaging describes the surface of the chat SDK the client is built
// against. The SDK owns connections, synchronization and delivery; callers
// only see handles and completion callbacks.
//
// Completions and delegate callbacks may run on any goroutine. Callers that
// keep state must move back onto their own goroutine before touching it.
package messaging

// Connector builds a client for a credential. The delegate receives every
// lifecycle and message event of the returned client.
type Connector interface {
	Connect(cred *AccessCredential, delegate Delegate) (Client, error)
}

// ConnectorFunc adapts a plain function to Connector.
type ConnectorFunc func(cred *AccessCredential, delegate Delegate) (Client, error)

func (f ConnectorFunc) Connect(cred *AccessCredential, delegate Delegate) (Client, error) {
	return f(cred, delegate)
}

// Client is an authenticated connection to the messaging backend.
type Client interface {
	Identity() string
	ChannelsList() ChannelList
	// Shutdown stops event delivery and releases the connection.
	Shutdown()
}

// ChannelList resolves and creates channels.
type ChannelList interface {
	// ChannelWithUniqueName returns the channel, or nil when none has that name.
	ChannelWithUniqueName(name string) Channel
	CreateChannel(opts ChannelOptions, completion func(Channel, error))
}

// Channel is a shared topic the client can join and post to.
type Channel interface {
	SID() string
	FriendlyName() string
	UniqueName() string
	Join(completion func(error))
	SetUniqueName(name string, completion func(error))
	Messages() Messages
}

// Messages creates and sends messages on one channel.
type Messages interface {
	CreateMessage(body string) *Message
	Send(msg *Message, completion func(error))
}

type ChannelType int

const (
	ChannelTypePublic ChannelType = iota
	ChannelTypePrivate
)

func (t ChannelType) String() string {
	switch t {
	case ChannelTypePublic:
		return "public"
	case ChannelTypePrivate:
		return "private"
	default:
		return "unknown"
	}
}

// ChannelOptions are the attributes a channel is created with.
type ChannelOptions struct {
	FriendlyName string
	Type         ChannelType
}
