// Package stream writes server-sent events: each event is
// "event: <name>\ndata: <json>\n\n", flushed as soon as it is written.
package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// ErrStreamingUnsupported is returned when the ResponseWriter cannot flush.
var ErrStreamingUnsupported = errors.New("response writer does not support streaming")

// Writer emits events to one client. It is safe for concurrent use.
type Writer struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
	err     error
}

// New prepares w for an event stream and writes the response headers.
func New(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Writer{w: w, flusher: flusher}, nil
}

// Send writes one event. After the first write error every call returns it.
func (s *Writer) Send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	if _, err := s.w.Write(Format(event, data)); err != nil {
		s.err = fmt.Errorf("write %s event: %w", event, err)
		return s.err
	}
	s.flusher.Flush()

	return nil
}

// Format renders one event frame. Newlines in data are split across data lines.
func Format(event string, data []byte) []byte {
	var buf bytes.Buffer

	buf.WriteString("event: ")
	buf.WriteString(event)
	buf.WriteByte('\n')

	for _, line := range bytes.Split(data, []byte("\n")) {
		buf.WriteString("data: ")
		buf.Write(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')

	return buf.Bytes()
}
