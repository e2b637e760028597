package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/slighter12/tres-devtools-go/devtools"
	"github.com/slighter12/tres-devtools-go/logger"
)

const maxMessageBytes = 16 << 20

// Bridge feeds newline-delimited host messages into a Messenger.
type Bridge struct {
	messenger *devtools.Messenger
}

// Stats summarizes one Run.
type Stats struct {
	Lines     int `json:"lines"`
	Published int `json:"published"`
	Skipped   int `json:"skipped"`
}

// NewBridge creates a bridge that publishes on messenger.
func NewBridge(messenger *devtools.Messenger) *Bridge {
	if messenger == nil {
		messenger = devtools.DefaultMessenger()
	}
	return &Bridge{messenger: messenger}
}

// Start reads host messages from stdin until EOF or ctx is done.
// Logs go to stderr so stdout stays free for the host.
func (b *Bridge) Start(ctx context.Context) error {
	stats, err := b.Run(ctx, os.Stdin)
	logger.Info("Stdio bridge stopped", "lines", stats.Lines, "published", stats.Published, "skipped", stats.Skipped)
	return err
}

// Run publishes one message per non-blank line of r. Lines that fail to
// decode are logged and skipped. ctx is checked between lines.
func (b *Bridge) Run(ctx context.Context, r io.Reader) (Stats, error) {
	var stats Stats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageBytes)

	logger.Debug("Stdio bridge started and waiting for messages")

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, nil
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		stats.Lines++

		var msg devtools.Message
		if err := json.Unmarshal(line, &msg); err != nil {
			stats.Skipped++
			logger.Error("Error decoding message", "line", stats.Lines, "error", err)
			continue
		}
		if msg.Type == "" {
			stats.Skipped++
			logger.Warn("Message without type", "line", stats.Lines)
			continue
		}

		logger.Debug("Stdio message received", "type", string(msg.Type), "line", stats.Lines)
		b.messenger.Publish(msg)
		stats.Published++
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read host messages: %w", err)
	}
	logger.Debug("Stdio EOF received, stopping bridge")
	return stats, nil
}
