package messaging

import "time"

// Message is a chat message as delivered by the SDK. Values are treated as
// immutable once delivered.
type Message struct {
	SID       string
	Author    string
	Body      string
	Timestamp time.Time
}
