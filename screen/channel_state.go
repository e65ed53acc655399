package screen

import "ipm-quickstart/messaging"

type ChannelStatus int

const (
	ChannelUnresolved ChannelStatus = iota
	ChannelResolved
	ChannelFailed
)

func (s ChannelStatus) String() string {
	switch s {
	case ChannelUnresolved:
		return "unresolved"
	case ChannelResolved:
		return "resolved"
	case ChannelFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ChannelState is the screen's view of the shared channel. The handle is
// only reachable through Resolved.
type ChannelState struct {
	status  ChannelStatus
	channel messaging.Channel
	err     error
}

func resolvedChannel(ch messaging.Channel) ChannelState {
	return ChannelState{status: ChannelResolved, channel: ch}
}

func failedChannel(err error) ChannelState {
	return ChannelState{status: ChannelFailed, err: err}
}

func (s ChannelState) Status() ChannelStatus {
	return s.status
}

func (s ChannelState) Resolved() (messaging.Channel, bool) {
	if s.status != ChannelResolved || s.channel == nil {
		return nil, false
	}
	return s.channel, true
}

// Err is the failure that moved the state to ChannelFailed.
func (s ChannelState) Err() error {
	return s.err
}
