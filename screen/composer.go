package screen

import "github.com/rs/zerolog"

// TextField is the composer input. Calls happen on the loop.
type TextField interface {
	Clear()
	ResignFirstResponder()
}

// Composer sends input text to the resolved channel.
type Composer struct {
	loop    *Loop
	field   TextField
	channel func() ChannelState
	log     zerolog.Logger
}

func NewComposer(loop *Loop, field TextField, channel func() ChannelState, log zerolog.Logger) *Composer {
	return &Composer{loop: loop, field: field, channel: channel, log: log}
}

// Submit sends text if the channel is resolved and does nothing otherwise.
// When the send completes, successful or not, the field is cleared and the
// keyboard dismissed. It always reports the return key as handled.
func (c *Composer) Submit(text string) bool {
	ch, ok := c.channel().Resolved()
	if !ok {
		c.log.Debug().Msg("no channel, message dropped")
		return true
	}

	msgs := ch.Messages()
	msg := msgs.CreateMessage(text)
	msgs.Send(msg, func(err error) {
		c.loop.Dispatch(func() {
			if err != nil {
				c.log.Error().Err(err).Str("sid", ch.SID()).Msg("failed to send message")
			}
			c.field.Clear()
			c.field.ResignFirstResponder()
		})
	})
	return true
}
