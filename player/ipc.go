// Package player drives mpv over its JSON IPC socket and exposes it as a playback.Control.
package player

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
)

type ipcCommand struct {
	Command []any `json:"command"`
}

type ipcResponse struct {
	Data  any    `json:"data"`
	Error string `json:"error"`
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = time.Second
	readBufSize  = 4096
)

// sendCommand runs command on a fresh connection, retrying transient failures.
func (m *MPV) sendCommand(command ...any) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		result, err := doSendCommand(m.socketPath, command)
		if err == nil {
			return result, nil
		}
		var rejected *commandError
		if errors.As(err, &rejected) {
			// mpv understood and rejected the command; retrying will not help.
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc command failed after %d attempts: %w", maxRetries, lastErr)
}

// commandError is an error reported by mpv itself, such as "property unavailable".
type commandError struct {
	command any
	reason  string
}

func (e *commandError) Error() string {
	return fmt.Sprintf("mpv %v: %s", e.command, e.reason)
}

func encodeCommand(command []any) ([]byte, error) {
	payload, err := json.Marshal(ipcCommand{Command: command})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	return append(payload, '\n'), nil
}

func doSendCommand(socketPath string, command []any) (any, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	payload, err := encodeCommand(command)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write(payload); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	// Events may arrive on the connection before the reply; the reply is the line without an "event" key.
	buf := make([]byte, readBufSize)
	var pending []byte
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}

		var lines [][]byte
		lines, pending = splitLines(append(pending, buf[:n]...))
		for _, line := range lines {
			var resp struct {
				ipcResponse
				Event string `json:"event"`
			}
			if err := json.Unmarshal(line, &resp); err != nil {
				return nil, fmt.Errorf("unmarshal: %w", err)
			}
			if resp.Event != "" {
				continue
			}
			if resp.Error != "" && resp.Error != "success" {
				return nil, &commandError{command: command[0], reason: resp.Error}
			}
			return resp.Data, nil
		}
	}
}

// splitLines cuts complete newline-terminated lines off data and returns the unterminated rest.
// Blank lines are dropped.
func splitLines(data []byte) (lines [][]byte, rest []byte) {
	start := 0
	for i, b := range data {
		if b != '\n' {
			continue
		}
		if line := bytes.TrimSpace(data[start:i]); len(line) > 0 {
			lines = append(lines, line)
		}
		start = i + 1
	}
	if start < len(data) {
		rest = append([]byte(nil), data[start:]...)
	}
	return lines, rest
}
