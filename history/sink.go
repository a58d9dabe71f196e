package history

import (
	"context"
	"time"

	"github.com/playmark/playmark/telemetry"
)

// Sink records telemetry into the local history.
type Sink struct {
	Now func() time.Time
}

func NewSink() *Sink {
	return &Sink{Now: time.Now}
}

func (s *Sink) Consumption(ctx context.Context, event telemetry.ConsumptionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return update(func(records map[string]*Record) {
		r := recordFor(records, event.ItemID)
		r.Watches++
		if event.Title != "" {
			r.Title = event.Title
		}
		r.UpdatedAt = s.Now()
	})
}

func (s *Sink) Checkpoint(ctx context.Context, checkpoint telemetry.Checkpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return update(func(records map[string]*Record) {
		r := recordFor(records, checkpoint.ItemID)
		r.Location = checkpoint.Location
		if checkpoint.ContentLength.IsPresent() {
			r.ContentLength = checkpoint.ContentLength
		}
		if checkpoint.Title != "" {
			r.Title = checkpoint.Title
		}
		r.UpdatedAt = s.Now()
	})
}

func recordFor(records map[string]*Record, itemID string) *Record {
	r, ok := records[itemID]
	if !ok {
		r = &Record{ItemID: itemID}
		records[itemID] = r
	}
	return r
}
