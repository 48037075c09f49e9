package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vietddude/eventmailer/internal/core/domain"
	"github.com/vietddude/eventmailer/internal/metrics"
)

// Fanout delivers to several sinks in order. Every sink is attempted; their
// errors are joined.
type Fanout struct {
	sinks []Sink
}

func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

func (f *Fanout) Deliver(ctx context.Context, customer domain.Customer, event domain.Event) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Deliver(ctx, customer, event); err != nil {
			metrics.Deliveries.WithLabelValues(s.Name(), "error").Inc()
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		metrics.Deliveries.WithLabelValues(s.Name(), "ok").Inc()
	}
	return errors.Join(errs...)
}

func (f *Fanout) Name() string {
	names := make([]string, len(f.sinks))
	for i, s := range f.sinks {
		names[i] = s.Name()
	}
	return strings.Join(names, "+")
}

func (f *Fanout) Close() error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
