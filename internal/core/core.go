// Package core holds the subscriber registry and the delivery path from
// flushed event tags to live client channels.
package core

import "errors"

var ErrBackpressure = errors.New("backpressure")

// PushChannel is a live outbound stream to one connected client.
// Owned by the transport adapter; the registry never closes it.
type PushChannel interface {
	Send(event, data string) error
}

// Materializer computes the payload delivered for one tag to one recipient.
// The same tag can materialize differently per recipient.
type Materializer func(roomID, subscriberID string) (string, error)
