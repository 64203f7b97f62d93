package page

import (
	"fmt"
	"io"
	"sync"
)

// Console is a terminal rendition of the demo page. It implements domain.Page.
// Log lines and the local session description go to out, alerts to alerts.
type Console struct {
	out    io.Writer
	alerts io.Writer

	mu     sync.Mutex
	lines  []string
	local  string
	remote string
	subs   map[chan string]struct{}
}

// NewConsole creates a Console writing to out and alerts.
func NewConsole(out, alerts io.Writer) *Console {
	return &Console{
		out:    out,
		alerts: alerts,
		subs:   make(map[chan string]struct{}),
	}
}

// Log appends one line to the log.
func (c *Console) Log(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = append(c.lines, msg)
	fmt.Fprintln(c.out, msg)

	for ch := range c.subs {
		select {
		case ch <- msg:
		default:
			// slow subscriber; drop rather than block the peer connection
		}
	}
}

// SetLocalSessionDescription fills the local description field.
func (c *Console) SetLocalSessionDescription(encoded string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.local = encoded
	fmt.Fprintf(c.out, "Local Session Description (paste into the remote peer):\n%s\n", encoded)
}

// LocalSessionDescription returns the published local description, or "".
func (c *Console) LocalSessionDescription() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.local
}

// SetRemoteSessionDescription fills the remote description field.
func (c *Console) SetRemoteSessionDescription(sd string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remote = sd
}

// RemoteSessionDescription returns the remote description field.
func (c *Console) RemoteSessionDescription() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remote
}

// Alert shows msg to the user.
func (c *Console) Alert(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.alerts, "alert: %s\n", msg)
}

// Lines returns a copy of the log.
func (c *Console) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

// Subscribe returns the log so far and a channel of subsequent lines.
// The returned cancel func must be called to release the subscription.
func (c *Console) Subscribe(buffer int) ([]string, <-chan string, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	backlog := make([]string, len(c.lines))
	copy(backlog, c.lines)

	ch := make(chan string, buffer)
	c.subs[ch] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, ch)
			close(ch)
		})
	}
	return backlog, ch, cancel
}
