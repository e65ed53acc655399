package notifier

import (
	"fmt"
	"io"

	"ipm-quickstart/screen"
)

// PrintRows writes the message list, oldest first.
func PrintRows(w io.Writer, rows []screen.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No messages.")
		return
	}

	fmt.Fprintf(w, "%d message(s):\n", len(rows))
	for _, row := range rows {
		fmt.Fprintf(w, "- %s: %s\n", row.Detail, row.Title)
	}
}
