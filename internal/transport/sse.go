package transport

import (
	"bufio"
	"io"
	"strings"
)

// sseEvent is one parsed Server-Sent Event frame: an event name (defaults to
// "message" per the SSE spec) and its accumulated data payload.
type sseEvent struct {
	Event string
	Data  string
}

// sseReader incrementally parses an SSE byte stream per the WHATWG
// text/event-stream grammar: "field: value" lines, blank line terminates an
// event, multiple "data:" lines join with "\n", lines starting with ":" are
// comments/keepalives and are ignored.
type sseReader struct {
	scanner *bufio.Scanner
}

func newSSEReader(r io.Reader) *sseReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &sseReader{scanner: scanner}
}

// Next blocks for the next complete event, returning io.EOF when the stream
// closes cleanly.
func (r *sseReader) Next() (sseEvent, error) {
	var ev sseEvent
	var data []string
	haveField := false

	for r.scanner.Scan() {
		line := r.scanner.Text()

		if line == "" {
			if haveField {
				ev.Data = strings.Join(data, "\n")
				if ev.Event == "" {
					ev.Event = "message"
				}
				return ev, nil
			}
			continue // blank line before any field: ignore (keepalive)
		}
		if strings.HasPrefix(line, ":") {
			continue // comment
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			ev.Event = value
			haveField = true
		case "data":
			data = append(data, value)
			haveField = true
		case "id", "retry":
			haveField = true // recognized but unused by this client
		}
	}

	if err := r.scanner.Err(); err != nil {
		return sseEvent{}, err
	}
	return sseEvent{}, io.EOF
}
