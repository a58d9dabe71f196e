package player

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/playmark/playmark/log"
	"github.com/playmark/playmark/playback"
)

// observed lists the mpv properties the listener subscribes to, by observer id.
var observed = []string{
	1: "time-pos",
	2: "duration",
	3: "pause",
	4: "video-params",
}

// message is a single line received from mpv: either an event or a command reply.
type message struct {
	Event     string `json:"event"`
	Name      string `json:"name"`
	Data      any    `json:"data"`
	Reason    string `json:"reason"`
	FileError string `json:"file_error"`
}

// translator turns raw mpv messages into playback events.
type translator struct {
	emit func(playback.Event, playback.Payload)

	// position resolves the playback position after a seek settles.
	position func() (float64, error)

	mu       sync.Mutex
	duration float64
	seeking  bool
}

// lastDuration returns the most recently observed media duration, or 0 when none was seen.
func (t *translator) lastDuration() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration
}

func (t *translator) handle(msg message) {
	switch msg.Event {
	case "property-change":
		t.property(msg.Name, msg.Data)
	case "file-loaded":
		t.emit(playback.EventPlay, playback.Payload{})
	case "seek":
		t.seeking = true
	case "playback-restart":
		if !t.seeking {
			return
		}
		t.seeking = false
		if pos, err := t.position(); err == nil {
			t.emit(playback.EventSeek, playback.Payload{Offset: pos})
		}
	case "end-file":
		switch msg.Reason {
		case "eof":
			// The next file's duration arrives only after end-file, so this is still the finished one.
			t.emit(playback.EventComplete, playback.Payload{Duration: t.lastDuration()})
		case "error":
			t.emit(playback.EventError, playback.Payload{Err: fmt.Errorf("mpv: %s", msg.FileError)})
		}
	}
}

func (t *translator) property(name string, data any) {
	switch name {
	case "duration":
		if d, ok := data.(float64); ok {
			t.mu.Lock()
			t.duration = d
			t.mu.Unlock()
		}
	case "time-pos":
		if pos, ok := data.(float64); ok {
			t.emit(playback.EventTime, playback.Payload{Position: pos, Duration: t.lastDuration()})
		}
	case "pause":
		if paused, ok := data.(bool); ok && !paused {
			t.emit(playback.EventPlay, playback.Payload{})
		}
	case "video-params":
		// Null while no video is decoded; a new value means a rendition the player can seek in.
		if data != nil {
			t.emit(playback.EventVisualQuality, playback.Payload{})
		}
	}
}

// EventListener keeps a connection to mpv open, subscribes to property changes and
// feeds everything mpv reports through a translator.
type EventListener struct {
	socketPath string
	conn       net.Conn
	translator *translator
	stopCh     chan struct{}
	doneCh     chan struct{}
	mu         sync.Mutex
	listening  bool
}

func newEventListener(socketPath string, t *translator) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		translator: t,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start subscribes to the observed properties and starts the read loop.
// Observers are bound to the connection, so they are registered on the one the loop reads from.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for id, name := range observed {
		if name == "" {
			continue
		}
		payload, err := encodeCommand([]any{"observe_property", id, name})
		if err == nil {
			_, err = conn.Write(payload)
		}
		if err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.listening = true
	go el.readLoop()

	log.Infof("mpv event listener started on %s", el.socketPath)
	return nil
}

// Stop closes the connection and waits for the read loop to exit.
func (el *EventListener) Stop() {
	el.mu.Lock()
	if !el.listening {
		el.mu.Unlock()
		return
	}
	close(el.stopCh)
	el.conn.Close()
	el.mu.Unlock()

	<-el.doneCh
}

func (el *EventListener) readLoop() {
	defer func() {
		el.mu.Lock()
		el.listening = false
		el.mu.Unlock()
		close(el.doneCh)
	}()

	buf := make([]byte, readBufSize)
	var rest []byte

	for {
		select {
		case <-el.stopCh:
			return
		default:
		}

		if err := el.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}

		n, err := el.conn.Read(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			select {
			case <-el.stopCh:
			default:
				log.Warnf("event listener read error: %v", err)
			}
			return
		}

		var lines [][]byte
		lines, rest = splitLines(append(rest, buf[:n]...))
		for _, line := range lines {
			el.process(line)
		}
	}
}

func (el *EventListener) process(line []byte) {
	var msg message
	if err := json.Unmarshal(line, &msg); err != nil {
		log.Debugf("skipping unparseable mpv line: %s", line)
		return
	}
	if msg.Event == "" {
		// Reply to one of our observe_property commands.
		return
	}
	el.translator.handle(msg)
}
