package playback

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/playmark/playmark/log"
	"github.com/playmark/playmark/telemetry"
	"github.com/samber/mo"
)

const (
	DefaultCheckpointInterval = 10 * time.Second
	DefaultResumeDebounce     = 500 * time.Millisecond
)

// Options configures a Session.
type Options struct {
	// SessionRedirectID identifies the viewing session to the telemetry backend.
	SessionRedirectID string

	// PurchaseID ties telemetry to a purchase. Checkpoints are only reported when it is present.
	PurchaseID mo.Option[string]

	// StartIndex is the playlist item selected once the player is ready.
	StartIndex int

	Sink            telemetry.Sink
	DispatchTimeout time.Duration

	CheckpointInterval time.Duration
	ResumeDebounce     time.Duration

	// Clock is used for throttling and debouncing. Defaults to time.Now.
	Clock func() time.Time
}

// Session reacts to the events of one player instance.
// It resumes every playlist item once at its saved location, caches the observed position
// on the item and reports consumption and checkpoint telemetry.
//
// Handlers run serialized and never let a failure escape into the player's event loop.
type Session struct {
	ctl   Control
	items []*Item
	opts  Options

	tracker      *Tracker
	checkpoints  *Throttle[float64]
	resumeChecks *Debouncer
	dispatcher   *telemetry.Dispatcher

	mu       sync.Mutex
	attached bool
	closed   bool
}

// NewSession creates a session for ctl playing items. Call Attach to start receiving events.
func NewSession(ctl Control, items []*Item, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.CheckpointInterval <= 0 {
		opts.CheckpointInterval = DefaultCheckpointInterval
	}
	if opts.ResumeDebounce <= 0 {
		opts.ResumeDebounce = DefaultResumeDebounce
	}

	s := &Session{
		ctl:          ctl,
		items:        items,
		opts:         opts,
		tracker:      NewTracker(),
		resumeChecks: NewDebouncer(opts.ResumeDebounce, opts.Clock),
		dispatcher:   telemetry.NewDispatcher(context.Background(), opts.Sink, opts.DispatchTimeout),
	}
	s.checkpoints = NewThrottle(opts.CheckpointInterval, opts.Clock, s.reportCurrent)

	return s
}

// Attach installs one handler per event on the player. Calling it again is a no-op.
func (s *Session) Attach() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached || s.closed {
		return
	}
	s.attached = true

	handlers := map[Event]Handler{
		EventReady:         s.onReady,
		EventPlay:          s.onPlay,
		EventTime:          s.onTime,
		EventSeek:          s.onSeek,
		EventComplete:      s.onComplete,
		EventVisualQuality: s.onVisualQuality,
		EventError:         s.onError,
	}

	for _, event := range Events {
		s.ctl.On(event, s.guard(event, handlers[event]))
	}
}

// Flush waits until all telemetry reported so far has been delivered or dropped.
func (s *Session) Flush() {
	s.dispatcher.Wait()
}

// Drain stops reporting and waits up to timeout for reported telemetry to land.
// It reports whether everything was delivered or dropped in time.
func (s *Session) Drain(timeout time.Duration) bool {
	return s.dispatcher.Drain(timeout)
}

// Close tears the session down. Later events are ignored and no telemetry is sent afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.checkpoints.Cancel()
	s.resumeChecks.Reset()
	s.mu.Unlock()

	s.dispatcher.Close()
}

// Phase reports the lifecycle phase of the playlist item at index.
func (s *Session) Phase(index int) Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Phase(index)
}

// guard serializes a handler, drops events after Close and keeps panics inside the session.
func (s *Session) guard(event Event, h Handler) Handler {
	return func(p Payload) {
		s.mu.Lock()
		defer s.mu.Unlock()
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("%s handler panicked: %v", event, r)
			}
		}()

		if s.closed {
			return
		}
		h(p)
	}
}

func (s *Session) onReady(Payload) {
	if _, ok := s.item(s.opts.StartIndex); !ok {
		log.Warnf("start index %d outside playlist of %d items", s.opts.StartIndex, len(s.items))
		return
	}
	if err := s.ctl.SelectItem(s.opts.StartIndex); err != nil {
		log.Warnf("select playlist item %d: %v", s.opts.StartIndex, err)
	}
}

func (s *Session) onPlay(Payload) {
	index, item, ok := s.current()
	if !ok || !s.tracker.Activate(index) {
		return
	}

	log.Infof("activated %s", item)
	s.dispatcher.Consumption(telemetry.ConsumptionEvent{
		EventType:         telemetry.EventWatch,
		SessionRedirectID: s.opts.SessionRedirectID,
		ItemID:            item.ID,
		PurchaseID:        s.opts.PurchaseID,
		Title:             item.Title,
	})
}

func (s *Session) onTime(p Payload) {
	s.checkpoints.Call(p.Position)

	if index, item, ok := s.current(); ok {
		s.tracker.Progress(item, index, p.Position, p.Duration)
	}
}

func (s *Session) onSeek(p Payload) {
	s.checkpoints.Call(p.Offset)

	index, item, ok := s.current()
	if !ok {
		return
	}

	duration, err := s.ctl.Duration()
	if err != nil {
		duration = math.NaN()
	}
	s.tracker.Progress(item, index, p.Offset, duration)
}

func (s *Session) onComplete(p Payload) {
	s.checkpoints.Cancel()

	index, item, ok := s.finishing()
	if !ok {
		return
	}

	// The player may already have loaded the next item, so the length carried by the
	// completion wins over asking the player.
	duration := p.Duration
	if duration <= 0 {
		d, err := s.ctl.Duration()
		if err != nil {
			d = math.NaN()
		}
		duration = d
	}

	terminal := item.ContentLength.OrElse(duration)
	if item.ContentLength.IsAbsent() && terminal > 0 {
		item.ContentLength = mo.Some(terminal)
	}
	if !math.IsNaN(terminal) {
		s.report(item, terminal)
	}

	if math.IsNaN(duration) {
		duration = terminal
	}
	s.tracker.Progress(item, index, duration, duration)
	s.tracker.Finish(index)
}

func (s *Session) onVisualQuality(Payload) {
	if !s.resumeChecks.Accept() {
		return
	}

	index, item, ok := s.current()
	if !ok {
		return
	}

	done, known := s.tracker.ResumeState(index)
	if !known {
		log.Debugf("resume check for item %d before activation ignored", index)
		return
	}
	if done {
		return
	}

	s.tracker.BeginResume(index)
	if target, ok := item.savedLocation(); ok {
		if position, issued := SafeSeek(s.ctl, target); issued {
			log.Infof("resuming %s at %.2fs", item, position)
		}
	}
	s.tracker.MarkResumeAttempted(index)
}

func (s *Session) onError(p Payload) {
	log.Warnf("player error: %v", p.Err)
}

// reportCurrent reports a checkpoint for whichever item the player has loaded.
func (s *Session) reportCurrent(position float64) {
	if _, item, ok := s.current(); ok {
		s.report(item, position)
	}
}

func (s *Session) report(item *Item, position float64) {
	if s.opts.PurchaseID.IsAbsent() {
		return
	}

	s.dispatcher.Checkpoint(telemetry.Checkpoint{
		SessionRedirectID: s.opts.SessionRedirectID,
		ItemID:            item.ID,
		PurchaseID:        s.opts.PurchaseID,
		Location:          item.clampLocation(position),
		ContentLength:     item.ContentLength,
		Title:             item.Title,
	})
}

// current resolves the item the player has loaded.
func (s *Session) current() (int, *Item, bool) {
	index, err := s.ctl.PlaylistIndex()
	if err != nil {
		log.Debugf("playlist index unavailable: %v", err)
		return 0, nil, false
	}

	item, ok := s.item(index)
	return index, item, ok
}

// finishing resolves the item a completion belongs to. The player may already report the next
// index when completion is delivered, so the last activated item wins.
func (s *Session) finishing() (int, *Item, bool) {
	if index, ok := s.tracker.LastActivated().Get(); ok {
		if item, ok := s.item(index); ok {
			return index, item, true
		}
	}
	return s.current()
}

func (s *Session) item(index int) (*Item, bool) {
	if index < 0 || index >= len(s.items) || s.items[index] == nil {
		return nil, false
	}
	return s.items[index], true
}
