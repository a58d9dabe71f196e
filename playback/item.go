package playback

import (
	"fmt"

	"github.com/samber/mo"
)

// Item is a single entry of the playlist being watched.
type Item struct {
	// ID identifies the item to the telemetry backend.
	ID string

	Title string

	// ContentLength is the known length of the media in seconds, when the backend reported one.
	ContentLength mo.Option[float64]

	// LastKnownLocation caches the most recently observed position.
	// It is seeded from the backend and rewritten as playback progresses.
	LastKnownLocation mo.Option[float64]
}

func (i *Item) String() string {
	if i.Title != "" {
		return fmt.Sprintf("%s (%s)", i.Title, i.ID)
	}
	return i.ID
}

// clampLocation caps a position at the item's content length, when known.
func (i *Item) clampLocation(position float64) float64 {
	if length, ok := i.ContentLength.Get(); ok && position > length {
		return length
	}
	return position
}

// savedLocation reports the cached location worth resuming to.
// Zero, missing, or a location equal to the full content length means start from the beginning.
func (i *Item) savedLocation() (float64, bool) {
	location, ok := i.LastKnownLocation.Get()
	if !ok || location <= 0 {
		return 0, false
	}
	if length, ok := i.ContentLength.Get(); ok && location == length {
		return 0, false
	}
	return location, true
}
