package notifier

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"ipm-quickstart/screen"
)

func TestPrintRows(t *testing.T) {
	var buf bytes.Buffer
	PrintRows(&buf, []screen.Row{
		{Title: "hello", Detail: "alice"},
		{Title: "hi", Detail: "bob"},
	})
	assert.Equal(t, "2 message(s):\n- alice: hello\n- bob: hi\n", buf.String())
}

func TestPrintRowsEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintRows(&buf, nil)
	assert.Equal(t, "No messages.\n", buf.String())
}
