// Package minecraft talks to Minecraft servers over RCON and to the public
// Mojang and server-status APIs.
package minecraft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorcon/rcon"

	"github.com/mednis/medsbot/internal/metrics"
)

var ErrUnreachable = errors.New("server unreachable")

// DialTimeout bounds the RCON handshake.
const DialTimeout = 2 * time.Second

// Executor runs one console command and returns its raw output.
type Executor interface {
	Execute(ctx context.Context, command string) (string, error)
}

// RCONClient opens a fresh RCON connection for every command.
type RCONClient struct {
	Address  string
	Password string
	Timeout  time.Duration
	Latency  metrics.Observer
}

func NewRCONClient(address, password string) *RCONClient {
	return &RCONClient{Address: address, Password: password, Timeout: DialTimeout}
}

func (c *RCONClient) Execute(ctx context.Context, command string) (string, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DialTimeout
	}
	if dl, ok := ctx.Deadline(); ok {
		if until := time.Until(dl); until < timeout {
			timeout = until
		}
	}
	if timeout <= 0 {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, context.DeadlineExceeded)
	}

	start := time.Now()
	conn, err := rcon.Dial(c.Address, c.Password, rcon.SetDialTimeout(timeout), rcon.SetDeadline(timeout))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer conn.Close()

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := conn.Execute(command)
		done <- result{out, err}
	}()

	select {
	case <-ctx.Done():
		conn.Close()
		return "", fmt.Errorf("%w: %v", ErrUnreachable, ctx.Err())
	case r := <-done:
		if c.Latency != nil {
			c.Latency.Observe(time.Since(start).Seconds(), commandName(command))
		}
		if r.err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnreachable, r.err)
		}
		return r.out, nil
	}
}

// commandName keeps metric label cardinality bounded.
func commandName(command string) string {
	for i, r := range command {
		if r == ' ' {
			return command[:i]
		}
	}
	return command
}
