package suggest

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/Paranoid-AF/promptline"
)

// ErrNoResponse is returned when the daemon closes the connection without
// answering, which it does for requests superseded in the same session.
var ErrNoResponse = errors.New("daemon closed connection without response")

const defaultClientTimeout = 2 * time.Second

// Client is a Source backed by a promptlined daemon listening on a Unix
// socket. Each call uses its own connection carrying one JSON line each way.
type Client struct {
	SocketPath string
	// Timeout bounds a whole round trip. Zero means two seconds.
	Timeout time.Duration
}

// Suggest implements Source.
func (c *Client) Suggest(ctx context.Context, req *promptline.Request) ([]promptline.Suggestion, error) {
	var resp promptline.Response
	if err := c.roundTrip(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	out := make([]promptline.Suggestion, len(resp.Candidates))
	for i, cand := range resp.Candidates {
		out[i] = FromCandidate(cand)
	}
	return out, nil
}

// Record reports an executed command to the daemon.
func (c *Client) Record(ctx context.Context, cmd string) error {
	var resp promptline.RecordResponse
	if err := c.roundTrip(ctx, promptline.RecordRequest{Type: "record", Command: cmd}, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	return nil
}

// Config sends a config action ("get", "defaults", "validate") to the daemon.
func (c *Client) Config(ctx context.Context, action string) (*promptline.ConfigResponse, error) {
	var resp promptline.ConfigResponse
	if err := c.roundTrip(ctx, promptline.ConfigRequest{Action: action}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return &resp, nil
}

func (c *Client) roundTrip(ctx context.Context, req, resp any) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.SocketPath)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.SocketPath, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write request: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		return ErrNoResponse
	}
	if err := json.Unmarshal(scanner.Bytes(), resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
