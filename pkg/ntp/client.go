// Package ntp keeps a clock offset from an SNTP server so frame timestamps
// from network senders can be compared with local time.
package ntp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	sntp "github.com/beevik/ntp"
	"github.com/rs/zerolog/log"
)

const (
	// RetryInterval is how often an unset clock is retried.
	RetryInterval = 30 * time.Second

	defaultTimeout = 5 * time.Second
)

// ErrBadResponse is returned when the server answers with a reply that must
// not be used to set the clock, such as a kiss-of-death or an unsynchronized
// server.
var ErrBadResponse = errors.New("bad NTP response")

// Clock is the local clock corrected by the last successful sync.
type Clock struct {
	mu       sync.RWMutex
	offset   time.Duration
	set      bool
	lastSync time.Time
	now      func() time.Time
}

// NewClock returns an unset clock over time.Now.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// Now returns the corrected time.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now().Add(c.offset)
}

// Offset returns the correction applied to the local clock.
func (c *Clock) Offset() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}

// IsSet reports whether any sync has succeeded.
func (c *Clock) IsSet() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.set
}

// LastSync returns the local time of the last successful sync.
func (c *Clock) LastSync() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSync
}

func (c *Clock) apply(offset time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = offset
	c.set = true
	c.lastSync = c.now()
}

// Client queries one SNTP server.
type Client struct {
	Timeout time.Duration
	Clock   *Clock

	mu     sync.Mutex
	server string
}

// ServerAddress appends the default NTP port to host when it has none.
func ServerAddress(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, "123")
}

// NewClient returns a client that updates clock from server ("host:port").
func NewClient(server string, clock *Clock) *Client {
	return &Client{server: server, Timeout: defaultTimeout, Clock: clock}
}

// Server returns the address queried.
func (c *Client) Server() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.server
}

// SetServer changes the address queried from the next sync on.
func (c *Client) SetServer(server string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.server = server
}

// Query asks the server for the current time and returns the offset of the
// local clock from it.
func (c *Client) Query(ctx context.Context) (time.Duration, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	server := c.Server()
	resp, err := sntp.QueryWithOptions(server, sntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return 0, fmt.Errorf("failed to query %s: %w", server, err)
	}
	if err := resp.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return resp.ClockOffset, nil
}

// Sync queries the server and applies the offset to the clock.
func (c *Client) Sync(ctx context.Context) error {
	offset, err := c.Query(ctx)
	if err != nil {
		return err
	}
	c.Clock.apply(offset)
	log.Debug().Str("server", c.Server()).Dur("offset", offset).Msg("Clock synchronized")
	return nil
}
