package messaging

import (
	"context"
	"errors"

	"bountyvault/internal/ports"
)

// FanOut publishes to every sink and joins their errors. A failing sink
// does not stop the others.
type FanOut struct {
	sinks []ports.EventPublisher
}

var _ ports.EventPublisher = (*FanOut)(nil)

func NewFanOut(sinks ...ports.EventPublisher) *FanOut {
	kept := make([]ports.EventPublisher, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			kept = append(kept, sink)
		}
	}
	return &FanOut{sinks: kept}
}

func (f *FanOut) Add(sink ports.EventPublisher) {
	if sink != nil {
		f.sinks = append(f.sinks, sink)
	}
}

func (f *FanOut) Publish(ctx context.Context, event ports.LedgerEvent) error {
	var joined []error
	for _, sink := range f.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			joined = append(joined, err)
		}
	}
	return errors.Join(joined...)
}
