package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/vietddude/eventmailer/internal/core/domain"
)

// ConsoleSink writes one line per delivery.
type ConsoleSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleSink writes to w, or stdout when w is nil.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleSink{w: w}
}

func (s *ConsoleSink) Deliver(ctx context.Context, customer domain.Customer, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := fmt.Fprintf(s.w, "addToEmail: customer = %s, event = %s\n", customer, event)
	return err
}

func (s *ConsoleSink) Name() string { return "console" }

func (s *ConsoleSink) Close() error { return nil }
