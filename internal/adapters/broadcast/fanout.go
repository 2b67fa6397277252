package broadcast

import (
	"context"
	"errors"

	"metalrates/internal/adapters"
	"metalrates/internal/domain"
)

// Fanout publishes to every target. One failing target does not stop the others;
// the errors are joined.
type Fanout struct {
	targets []adapters.Publisher
}

func (f *Fanout) Publish(ctx context.Context, payload domain.RatePayload) error {
	var errs []error
	for _, t := range f.targets {
		if err := t.Publish(ctx, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func NewFanout(targets ...adapters.Publisher) *Fanout {
	out := make([]adapters.Publisher, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			out = append(out, t)
		}
	}
	return &Fanout{targets: out}
}
