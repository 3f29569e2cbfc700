package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"classtop/internal/commands"
	"classtop/internal/types"
)

// Client sends commands to a running application
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for socketPath
func NewClient(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// RemoteError is an ERROR response returned by the server
type RemoteError struct {
	Message string
	Code    string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Call sends one command with payload marshalled as its params and returns the raw result
func (c *Client) Call(ctx context.Context, command string, payload interface{}) (json.RawMessage, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		raw = b
	}

	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w (is classtop running?)", c.socketPath, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline)

	reqData, err := json.Marshal(&Request{Command: command, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	if _, err := conn.Write(append(reqData, '\n')); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	respData, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status != StatusOK {
		return nil, &RemoteError{Message: resp.Error, Code: resp.Code}
	}
	return resp.Data, nil
}

// Greet calls greet
func (c *Client) Greet(ctx context.Context, name string) (string, error) {
	data, err := c.Call(ctx, commands.CmdGreet, commands.GreetParams{Name: name})
	if err != nil {
		return "", err
	}
	var greeting string
	if err := json.Unmarshal(data, &greeting); err != nil {
		return "", fmt.Errorf("failed to parse greeting: %w", err)
	}
	return greeting, nil
}

// SetupTopbar calls setup_topbar_window; zero height uses the server default
func (c *Client) SetupTopbar(ctx context.Context, height uint32) error {
	_, err := c.Call(ctx, commands.CmdSetupTopbarWindow, commands.SetupParams{Height: height})
	return err
}

// ResizeTopbar calls resize_topbar_window
func (c *Client) ResizeTopbar(ctx context.Context, width, height uint32) error {
	_, err := c.Call(ctx, commands.CmdResizeTopbarWindow, commands.ResizeParams{Width: width, Height: height})
	return err
}

// ToggleWindow calls toggle_window and returns the new visibility
func (c *Client) ToggleWindow(ctx context.Context, windowName string) (bool, error) {
	data, err := c.Call(ctx, commands.CmdToggleWindow, commands.WindowParams{WindowName: windowName})
	if err != nil {
		return false, err
	}
	var visible bool
	if err := json.Unmarshal(data, &visible); err != nil {
		return false, fmt.Errorf("failed to parse toggle result: %w", err)
	}
	return visible, nil
}

// ToggleWindowDetailed calls toggle_window_detailed
func (c *Client) ToggleWindowDetailed(ctx context.Context, windowName string) (types.ToggleResult, error) {
	var result types.ToggleResult
	data, err := c.Call(ctx, commands.CmdToggleWindowDetailed, commands.WindowParams{WindowName: windowName})
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("failed to parse toggle result: %w", err)
	}
	return result, nil
}

// ListMonitors calls list_monitors; an empty name targets the topbar
func (c *Client) ListMonitors(ctx context.Context, windowName string) ([]types.Monitor, error) {
	data, err := c.Call(ctx, commands.CmdListMonitors, commands.WindowParams{WindowName: windowName})
	if err != nil {
		return nil, err
	}
	var monitors []types.Monitor
	if err := json.Unmarshal(data, &monitors); err != nil {
		return nil, fmt.Errorf("failed to parse monitors: %w", err)
	}
	return monitors, nil
}
