package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/playmark/playmark/telemetry"
)

var errNoMedia = errors.New("no media loaded")

type fakePlayer struct {
	handlers      map[Event]Handler
	registrations map[Event]int

	index       int
	indexErr    error
	indexPanics bool
	duration    float64
	durationErr error
	seekErr     error
	seekPanics  bool

	seeks    []float64
	selected []int
}

func newFakePlayer(duration float64) *fakePlayer {
	return &fakePlayer{
		handlers:      make(map[Event]Handler),
		registrations: make(map[Event]int),
		duration:      duration,
	}
}

func (f *fakePlayer) Duration() (float64, error) {
	return f.duration, f.durationErr
}

func (f *fakePlayer) PlaylistIndex() (int, error) {
	if f.indexPanics {
		panic("player torn down")
	}
	return f.index, f.indexErr
}

func (f *fakePlayer) Seek(position float64) error {
	if f.seekPanics {
		panic("seek before ready")
	}
	if f.seekErr != nil {
		return f.seekErr
	}
	f.seeks = append(f.seeks, position)
	return nil
}

func (f *fakePlayer) SelectItem(index int) error {
	f.selected = append(f.selected, index)
	f.index = index
	return nil
}

func (f *fakePlayer) On(event Event, handler Handler) {
	f.handlers[event] = handler
	f.registrations[event]++
}

func (f *fakePlayer) emit(event Event, p Payload) {
	if h, ok := f.handlers[event]; ok {
		h(p)
	}
}

func (f *fakePlayer) play(index int) {
	f.index = index
	f.emit(EventPlay, Payload{})
}

func (f *fakePlayer) tick(position float64) {
	f.emit(EventTime, Payload{Position: position, Duration: f.duration})
}

type recordingSink struct {
	mu           sync.Mutex
	consumptions []telemetry.ConsumptionEvent
	checkpoints  []telemetry.Checkpoint
	order        []string
	err          error
}

func (r *recordingSink) Consumption(_ context.Context, event telemetry.ConsumptionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consumptions = append(r.consumptions, event)
	r.order = append(r.order, "watch:"+event.ItemID)
	return r.err
}

func (r *recordingSink) Checkpoint(_ context.Context, checkpoint telemetry.Checkpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkpoints = append(r.checkpoints, checkpoint)
	r.order = append(r.order, "checkpoint:"+checkpoint.ItemID)
	return r.err
}

func (r *recordingSink) locations() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	locations := make([]float64, len(r.checkpoints))
	for i, c := range r.checkpoints {
		locations[i] = c.Location
	}
	return locations
}

func (r *recordingSink) watched() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(r.consumptions))
	for i, c := range r.consumptions {
		ids[i] = c.ItemID
	}
	return ids
}

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}
