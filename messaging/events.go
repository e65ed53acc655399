package messaging

// SyncStatus is the client's progress catching up with server state.
type SyncStatus int

const (
	SyncStatusStarted SyncStatus = iota
	SyncStatusChannelsListCompleted
	SyncStatusCompleted
	SyncStatusFailed
)

func (s SyncStatus) String() string {
	switch s {
	case SyncStatusStarted:
		return "started"
	case SyncStatusChannelsListCompleted:
		return "channels-list-completed"
	case SyncStatusCompleted:
		return "completed"
	case SyncStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Delegate receives the two event streams of a client.
type Delegate interface {
	SynchronizationStatusChanged(client Client, status SyncStatus)
	MessageAdded(client Client, channel Channel, msg *Message)
}

// Event is one delegate callback captured as a value, so it can be queued and
// consumed on a single goroutine.
type Event interface {
	isEvent()
}

type SyncStatusChanged struct {
	Client Client
	Status SyncStatus
}

type MessageAdded struct {
	Client  Client
	Channel Channel
	Message *Message
}

func (SyncStatusChanged) isEvent() {}
func (MessageAdded) isEvent()      {}

// EventSink turns delegate callbacks into events handed to emit.
type EventSink func(Event)

func (emit EventSink) SynchronizationStatusChanged(client Client, status SyncStatus) {
	emit(SyncStatusChanged{Client: client, Status: status})
}

func (emit EventSink) MessageAdded(client Client, channel Channel, msg *Message) {
	emit(MessageAdded{Client: client, Channel: channel, Message: msg})
}
