package player

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playmark/playmark/constant"
	"github.com/playmark/playmark/log"
	"github.com/playmark/playmark/playback"
	"github.com/playmark/playmark/where"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

// ErrNoItem is returned by PlaylistIndex while mpv has nothing selected.
var ErrNoItem = errors.New("no playlist item selected")

// MPV runs an mpv process with a playlist and exposes it as a playback.Control.
type MPV struct {
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	listener   *EventListener
	translator *translator

	// Protects socket writes.
	mu sync.Mutex

	handlersMu sync.RWMutex
	handlers   map[playback.Event][]playback.Handler

	// Serializes handler invocations across the listener and the caller of Play.
	dispatchMu sync.Mutex
}

var _ playback.Control = (*MPV)(nil)

// NewMPV creates a new MPV player instance (does not start playback).
func NewMPV() *MPV {
	m := &MPV{
		exited:   make(chan struct{}),
		handlers: make(map[playback.Event][]playback.Handler),
	}
	m.translator = &translator{
		emit:     m.emit,
		position: func() (float64, error) { return m.getFloatProperty("time-pos") },
	}
	return m
}

// On registers handler for event. Handlers are called one at a time in registration order.
func (m *MPV) On(event playback.Event, handler playback.Handler) {
	m.handlersMu.Lock()
	defer m.handlersMu.Unlock()
	m.handlers[event] = append(m.handlers[event], handler)
}

func (m *MPV) emit(event playback.Event, payload playback.Payload) {
	m.handlersMu.RLock()
	handlers := m.handlers[event]
	m.handlersMu.RUnlock()

	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	log.Tracef("mpv event %s %+v", event, payload)
	for _, h := range handlers {
		h(payload)
	}
}

// Play launches mpv idle, queues targets as its playlist and emits ready once the
// playlist is loaded. Ready handlers may select the starting item; when none did,
// the first item is played.
func (m *MPV) Play(targets []string, title string, headers map[string]string) error {
	if len(targets) == 0 {
		return errors.New("nothing to play")
	}

	safeTargets := make([]string, 0, len(targets))
	for _, target := range targets {
		safe, err := sanitizeMediaTarget(target)
		if err != nil {
			return fmt.Errorf("invalid media target %q: %w", target, err)
		}
		safeTargets = append(safeTargets, safe)
	}

	if m.socketPath == "" {
		m.socketPath = filepath.Join(where.Temp(), fmt.Sprintf("%s-%s.sock", constant.Playmark, uuid.NewString()[:8]))
	}

	m.cmd = exec.Command("mpv", mpvArgs(m.socketPath, sanitizeTitle(title), headers)...)
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	m.exited = make(chan struct{})
	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	if err := m.waitForSocket(); err != nil {
		m.abort()
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.listener = newEventListener(m.socketPath, m.translator)
	if err := m.listener.Start(); err != nil {
		m.abort()
		return err
	}

	for _, target := range safeTargets {
		if _, err := m.sendCommand("loadfile", target, "append"); err != nil {
			m.abort()
			return fmt.Errorf("queue %s: %w", target, err)
		}
	}
	log.Infof("queued %d playlist items", len(safeTargets))

	m.emit(playback.EventReady, playback.Payload{})

	if _, err := m.PlaylistIndex(); err != nil {
		return m.SelectItem(0)
	}
	return nil
}

// mpvArgs builds the command line. Only the IPC socket, title and headers are set so
// the user's mpv.conf stays in charge of everything else.
func mpvArgs(socketPath, title string, headers map[string]string) []string {
	args := []string{
		"--no-terminal",
		"--really-quiet",
		"--input-ipc-server=" + socketPath,
		"--force-media-title=" + title,
		"--title=" + title,
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=no",
	}

	if len(headers) > 0 {
		fields := lo.MapToSlice(headers, func(k, v string) string {
			return fmt.Sprintf("%s: %s", k, strings.ReplaceAll(v, ",", "%2C"))
		})
		// Map order is random; keep the flag stable.
		slices.Sort(fields)
		args = append(args, "--http-header-fields="+strings.Join(fields, ","))
	}

	return args
}

// abort kills an mpv process that never became usable.
func (m *MPV) abort() {
	if m.listener != nil {
		m.listener.Stop()
	}
	select {
	case <-m.exited:
	default:
		log.Warnf("killing mpv: startup failed")
		_ = killProcess(m.cmd)
	}
	_ = os.Remove(m.socketPath)
}

// Wait returns a channel that is closed when the mpv process exits.
func (m *MPV) Wait() <-chan struct{} {
	return m.exited
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return errors.New("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// Duration returns the length of the loaded media in seconds.
// When mpv cannot answer, the last duration it reported is used.
func (m *MPV) Duration() (float64, error) {
	duration, err := m.getFloatProperty("duration")
	if err == nil {
		return duration, nil
	}
	if last := m.translator.lastDuration(); last > 0 {
		return last, nil
	}
	return 0, err
}

// Seek moves playback to the given absolute position in seconds.
func (m *MPV) Seek(seconds float64) error {
	_, err := m.sendCommand("seek", seconds, "absolute")
	return err
}

// PlaylistIndex returns the position of the loaded item in the playlist.
func (m *MPV) PlaylistIndex() (int, error) {
	pos, err := m.getFloatProperty("playlist-pos")
	if err != nil {
		return 0, err
	}
	if pos < 0 {
		return 0, ErrNoItem
	}
	return int(pos), nil
}

// SelectItem switches to the playlist item at index. Selecting the loaded item does nothing.
func (m *MPV) SelectItem(index int) error {
	if current, err := m.PlaylistIndex(); err == nil && current == index {
		return nil
	}
	_, err := m.sendCommand("set_property", "playlist-pos", index)
	return err
}

// IsRunning reports whether mpv is responding to IPC commands.
func (m *MPV) IsRunning() bool {
	if m.socketPath == "" {
		return false
	}

	select {
	case <-m.exited:
		return false
	default:
	}

	_, err := m.sendCommand("get_property", "pid")
	return err == nil
}

// Close shuts down the mpv process and cleans up resources.
func (m *MPV) Close() error {
	if m.socketPath == "" {
		return nil
	}

	if m.listener != nil {
		m.listener.Stop()
	}

	select {
	case <-m.exited:
	default:
		_, _ = m.sendCommand("quit")
		select {
		case <-m.exited:
		case <-time.After(quitTimeout):
			_ = killProcess(m.cmd)
		}
	}

	_ = os.Remove(m.socketPath)
	return nil
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

// getFloatProperty is a helper to retrieve a float64 mpv property via IPC.
func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand("get_property", name)
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, fmt.Errorf("property %s: nil response", name)
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}

	return val, nil
}

// sanitizeMediaTarget validates that a playlist target is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", errors.New("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", errors.New("invalid control characters in URL")
	}

	// mpv would read it as an option.
	if strings.HasPrefix(l, "-") {
		return "", errors.New("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
