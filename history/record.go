package history

import (
	"fmt"
	"time"

	"github.com/samber/mo"
)

// Record is the locally known state of one playlist item.
type Record struct {
	ItemID        string             `json:"item_id"`
	Title         string             `json:"title"`
	Location      float64            `json:"location"`
	ContentLength mo.Option[float64] `json:"content_length"`
	Watches       int                `json:"watches"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// Progress returns the watched fraction in [0, 1], when the content length is known.
func (r *Record) Progress() mo.Option[float64] {
	length, ok := r.ContentLength.Get()
	if !ok || length <= 0 {
		return mo.None[float64]()
	}
	return mo.Some(max(0, min(1, r.Location/length)))
}

// Name returns the title, falling back to the item ID.
func (r *Record) Name() string {
	if r.Title == "" {
		return r.ItemID
	}
	return r.Title
}

func (r *Record) String() string {
	return fmt.Sprintf("%s @ %s", r.Name(), FormatLocation(r.Location))
}

// FormatLocation renders seconds as h:mm:ss or m:ss.
func FormatLocation(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	h, m, s := int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
