// Package channel is the boundary to the transport layer that moves frames
// to and from a client.
package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	apperrors "github.com/parley-dev/parley/pkg/interview/errors"
	"github.com/parley-dev/parley/pkg/interview/events"
)

// Channel delivers serialized frames outward. Inbound traffic does not flow
// through this interface; the transport publishes MessageReceivedEvent onto
// the bus instead.
type Channel interface {
	SendMessage(ctx context.Context, frame events.Frame) error
}

// WriterChannel serializes frames as JSON lines onto an io.Writer. The CLI
// run mode uses it with stdout.
type WriterChannel struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterChannel creates a channel writing to w
func NewWriterChannel(w io.Writer) *WriterChannel {
	return &WriterChannel{w: w}
}

// SendMessage writes one frame as a JSON line
func (c *WriterChannel) SendMessage(_ context.Context, frame events.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return apperrors.New(apperrors.ErrCodeChannelSend, "failed to serialize frame", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintln(c.w, string(data)); err != nil {
		return apperrors.New(apperrors.ErrCodeChannelSend, "failed to write frame", err)
	}
	return nil
}
