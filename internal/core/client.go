package core

import "sync"

// DefaultSendBuffer is the outbound queue length used when none is configured.
const DefaultSendBuffer = 32

// Client is one live transport connection as seen by the core layer.
// The ID is unique per connection and never reused.
type Client struct {
	ID     string
	Events chan *Event

	mu     sync.Mutex
	closed bool
}

// NewClient constructs a client with a bounded outbound queue.
func NewClient(id string, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	return &Client{
		ID:     id,
		Events: make(chan *Event, sendBuffer),
	}
}

// enqueue hands ev to the client's writer without blocking.
// It reports false when the queue is full or the client is closed.
func (c *Client) enqueue(ev *Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}

// close closes the outbound queue once; the writer drains it and exits.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.Events)
}

// Closed reports whether the core has stopped delivering to this client.
func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
