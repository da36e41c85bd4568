package http

import (
	"errors"
	"sync"

	"github.com/dkeye/Parley/internal/core"
)

// frame is one outbound push: an event name and its payload.
type frame struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// streamChannel adapts a buffered channel to core.PushChannel. The transport
// handler owns it: it drains frames into the wire and closes it on
// disconnect. A full buffer drops the frame rather than blocking delivery.
type streamChannel struct {
	send chan frame

	mu     sync.RWMutex
	closed bool
}

func newStreamChannel(buffer int) *streamChannel {
	return &streamChannel{send: make(chan frame, buffer)}
}

func (c *streamChannel) Send(event, data string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("channel closed")
	}
	select {
	case c.send <- frame{Event: event, Data: data}:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *streamChannel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
}
