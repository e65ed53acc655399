package tui

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// statusMsg shows a log line in the status bar.
type statusMsg struct {
	level   zerolog.Level
	summary string
}

// statusFadeMsg clears the status bar unless a newer line replaced it.
type statusFadeMsg struct{ seq int }

const statusFadeDelay = 5 * time.Second

// LogWriter is a zerolog writer that routes records at or above a level into
// the program's status bar. Logs are written as JSON by zerolog, so only the
// level and message fields are picked out.
type LogWriter struct {
	bridge *Bridge
	level  zerolog.Level
}

func NewLogWriter(bridge *Bridge, level zerolog.Level) *LogWriter {
	return &LogWriter{bridge: bridge, level: level}
}

func (w *LogWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

func (w *LogWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level != zerolog.NoLevel && level < w.level {
		return len(p), nil
	}
	msg := summarize(level, p)
	if msg.summary == "" {
		return len(p), nil
	}
	// Send blocks until the program reads it; records may come from
	// goroutines the program itself is waiting on.
	send := w.bridge.send
	go send(msg)
	return len(p), nil
}

func summarize(level zerolog.Level, p []byte) statusMsg {
	fields := gjson.GetManyBytes(p, zerolog.LevelFieldName, zerolog.MessageFieldName, zerolog.ErrorFieldName)
	if level == zerolog.NoLevel {
		if parsed, err := zerolog.ParseLevel(fields[0].String()); err == nil {
			level = parsed
		}
	}
	summary := fields[1].String()
	if e := fields[2].String(); e != "" {
		summary += ": " + e
	}
	return statusMsg{level: level, summary: summary}
}
