package playback

import (
	"time"

	"github.com/samber/mo"
)

// Throttle lets at most one call through per window.
// The first call of a window runs immediately; later calls within the window are
// suppressed and only the latest argument is remembered. Nothing fires when the
// window ends: a suppressed call is superseded by the next call that arrives after it.
type Throttle[T any] struct {
	window  time.Duration
	now     func() time.Time
	fn      func(T)
	last    mo.Option[time.Time]
	pending mo.Option[T]
}

func NewThrottle[T any](window time.Duration, now func() time.Time, fn func(T)) *Throttle[T] {
	return &Throttle[T]{
		window:  window,
		now:     now,
		fn:      fn,
		last:    mo.None[time.Time](),
		pending: mo.None[T](),
	}
}

// Call invokes the throttled function with v unless the current window already fired.
// It reports whether the function ran.
func (t *Throttle[T]) Call(v T) bool {
	now := t.now()
	if last, ok := t.last.Get(); ok && now.Sub(last) < t.window {
		t.pending = mo.Some(v)
		return false
	}

	t.last = mo.Some(now)
	t.pending = mo.None[T]()
	t.fn(v)
	return true
}

// Pending returns the latest suppressed argument, if any.
func (t *Throttle[T]) Pending() mo.Option[T] {
	return t.pending
}

// Cancel drops the suppressed argument and opens a fresh window.
func (t *Throttle[T]) Cancel() {
	t.last = mo.None[time.Time]()
	t.pending = mo.None[T]()
}

// Debouncer accepts an event only if the previously accepted one is at least gap old.
// Rejected events are dropped and do not move the clock.
type Debouncer struct {
	gap  time.Duration
	now  func() time.Time
	last mo.Option[time.Time]
}

func NewDebouncer(gap time.Duration, now func() time.Time) *Debouncer {
	return &Debouncer{
		gap:  gap,
		now:  now,
		last: mo.None[time.Time](),
	}
}

// Accept reports whether an event arriving now passes the debounce window.
// The first event is always accepted.
func (d *Debouncer) Accept() bool {
	now := d.now()
	if last, ok := d.last.Get(); ok && now.Sub(last) < d.gap {
		return false
	}

	d.last = mo.Some(now)
	return true
}

// Reset forgets the last accepted event.
func (d *Debouncer) Reset() {
	d.last = mo.None[time.Time]()
}
