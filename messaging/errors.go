package messaging

import "errors"

var (
	ErrEmptyToken      = errors.New("access token is empty")
	ErrClientShutdown  = errors.New("client is shut down")
	ErrNotMember       = errors.New("not a member of the channel")
	ErrChannelNotFound = errors.New("channel not found")
)
