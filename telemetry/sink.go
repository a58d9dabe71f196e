// Package telemetry delivers watch analytics and resume checkpoints to a backend without blocking playback.
package telemetry

import (
	"context"
	"errors"

	"github.com/samber/mo"
)

// EventWatch is the consumption event type emitted when an item starts playing.
const EventWatch = "watch"

// ConsumptionEvent reports that a playlist item was watched.
type ConsumptionEvent struct {
	EventType         string            `json:"event_type"`
	SessionRedirectID string            `json:"url_redirect_id"`
	ItemID            string            `json:"product_file_id"`
	PurchaseID        mo.Option[string] `json:"purchase_id"`
	Title             string            `json:"-"`
}

// Checkpoint reports the latest playback location of a playlist item.
type Checkpoint struct {
	SessionRedirectID string             `json:"url_redirect_id"`
	ItemID            string             `json:"product_file_id"`
	PurchaseID        mo.Option[string]  `json:"purchase_id"`
	Location          float64            `json:"location"`
	ContentLength     mo.Option[float64] `json:"-"`
	Title             string             `json:"-"`
}

// Sink receives telemetry. Implementations may block; callers go through a Dispatcher.
type Sink interface {
	Consumption(ctx context.Context, event ConsumptionEvent) error
	Checkpoint(ctx context.Context, checkpoint Checkpoint) error
}

// Nop discards everything.
type Nop struct{}

func (Nop) Consumption(context.Context, ConsumptionEvent) error { return nil }
func (Nop) Checkpoint(context.Context, Checkpoint) error        { return nil }

// Multi fans out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Consumption(ctx context.Context, event ConsumptionEvent) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Consumption(ctx, event))
	}
	return errors.Join(errs...)
}

func (m Multi) Checkpoint(ctx context.Context, checkpoint Checkpoint) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Checkpoint(ctx, checkpoint))
	}
	return errors.Join(errs...)
}
