package playback

import (
	"fmt"
	"math"

	"github.com/playmark/playmark/log"
)

// SeekEpsilon keeps seeks short of the media end.
// Landing on the exact duration races the player's end-of-media detection and fires a completion,
// which would otherwise re-trigger the resume seek forever.
const SeekEpsilon = 0.25

// ClampSeek computes a seek target within [0, duration-SeekEpsilon].
// It returns false when the duration is unknown or not positive; no seek should be issued then.
func ClampSeek(target, duration float64) (float64, bool) {
	if math.IsNaN(duration) || duration <= 0 {
		return 0, false
	}

	return math.Max(0, math.Min(target, duration-SeekEpsilon)), true
}

// SafeSeek seeks the player to target clamped against its current duration.
// Failures of the player surface, including panics, are swallowed: the returned
// boolean only reports whether a seek was attempted.
func SafeSeek(p Seeker, target float64) (position float64, issued bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Debugf("seek to %.2f: player panicked: %v", target, r)
			position, issued = 0, false
		}
	}()

	duration, err := p.Duration()
	if err != nil {
		log.Debugf("seek to %.2f: duration unavailable: %v", target, err)
		return 0, false
	}

	position, ok := ClampSeek(target, duration)
	if !ok {
		return 0, false
	}

	if err := p.Seek(position); err != nil {
		log.Debug(fmt.Errorf("seek to %.2f: %w", position, err))
	}

	return position, true
}
