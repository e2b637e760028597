package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// StreamableHTTPTransport writes server-sent event frames to one observer.
type StreamableHTTPTransport struct {
	writer  http.ResponseWriter
	flusher http.Flusher
	mu      sync.Mutex
	closed  bool
	onClose func()
	once    sync.Once
}

// NewStreamableHTTPTransport wraps w. onClose runs once, on the first Close.
func NewStreamableHTTPTransport(w http.ResponseWriter, f http.Flusher, onClose ...func()) *StreamableHTTPTransport {
	var closeHook func()
	if len(onClose) > 0 {
		closeHook = onClose[0]
	}
	return &StreamableHTTPTransport{
		writer:  w,
		flusher: f,
		onClose: closeHook,
	}
}

// SendSSE writes one event frame without an ID.
func (t *StreamableHTTPTransport) SendSSE(event string, data any) error {
	return t.send(event, "", data)
}

// SendVersioned writes one event frame tagged with the store version so a
// reconnecting panel can report it back through Last-Event-ID.
func (t *StreamableHTTPTransport) SendVersioned(event string, version uint64, data any) error {
	return t.send(event, strconv.FormatUint(version, 10), data)
}

func (t *StreamableHTTPTransport) send(event, id string, data any) error {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE data: %w", err)
	}

	var frame strings.Builder
	if id != "" {
		fmt.Fprintf(&frame, "id: %s\n", id)
	}
	fmt.Fprintf(&frame, "event: %s\ndata: %s\n\n", event, dataJSON)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return fmt.Errorf("transport is closed")
	}
	if err := t.writeLocked(frame.String()); err != nil {
		return fmt.Errorf("failed to write SSE message: %w", err)
	}
	return nil
}

// SendComment writes one SSE comment frame (":" prefixed lines).
func (t *StreamableHTTPTransport) SendComment(comment string) error {
	comment = strings.ReplaceAll(comment, "\r\n", "\n")
	comment = strings.ReplaceAll(comment, "\r", "\n")
	comment = strings.ReplaceAll(comment, "\n", "\n: ")

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return fmt.Errorf("transport is closed")
	}
	if err := t.writeLocked(": " + comment + "\n\n"); err != nil {
		return fmt.Errorf("failed to write SSE comment: %w", err)
	}
	return nil
}

func (t *StreamableHTTPTransport) writeLocked(payload string) error {
	if _, err := t.writer.Write([]byte(payload)); err != nil {
		return err
	}
	t.flusher.Flush()
	return nil
}

// Close marks the transport closed and runs the close hook once.
func (t *StreamableHTTPTransport) Close() error {
	t.mu.Lock()
	wasOpen := !t.closed
	t.closed = true
	t.mu.Unlock()

	if wasOpen && t.onClose != nil {
		t.once.Do(t.onClose)
	}
	return nil
}

// IsClosed returns true if the transport is closed
func (t *StreamableHTTPTransport) IsClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
