package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/eventmailer/internal/core/domain"
	"github.com/vietddude/eventmailer/internal/notify"
)

// OutboxSink implements notify.Sink by queueing one email_outbox row per
// delivery. A mail relay drains the table; rows keep delivery order via seq.
type OutboxSink struct {
	db      *DB
	session uuid.UUID
}

var _ notify.Sink = (*OutboxSink)(nil)

// NewOutboxSink creates a sink writing rows for the given session.
func NewOutboxSink(db *DB, session uuid.UUID) *OutboxSink {
	return &OutboxSink{db: db, session: session}
}

// Deliver inserts the delivery into the outbox.
func (s *OutboxSink) Deliver(ctx context.Context, customer domain.Customer, event domain.Event) error {
	query := `
		INSERT INTO email_outbox (
			id, session_id, strategy, customer_name, customer_city, event_id, event_name, event_city, price
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.New(), s.session, string(notify.StrategyFrom(ctx)),
		customer.Name, customer.City,
		event.ID, event.Name, event.City, event.Price,
	)
	if err != nil {
		return fmt.Errorf("failed to queue delivery: %w", err)
	}
	return nil
}

type outboxRow struct {
	SessionID    string    `db:"session_id"`
	Strategy     string    `db:"strategy"`
	CustomerName string    `db:"customer_name"`
	CustomerCity string    `db:"customer_city"`
	EventID      int64     `db:"event_id"`
	EventName    string    `db:"event_name"`
	EventCity    string    `db:"event_city"`
	Price        int       `db:"price"`
	CreatedAt    time.Time `db:"created_at"`
}

// ListSession returns the session's queued deliveries in delivery order.
func (s *OutboxSink) ListSession(ctx context.Context) ([]domain.Delivery, error) {
	var rows []outboxRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT session_id, strategy, customer_name, customer_city, event_id, event_name, event_city, price, created_at
		FROM email_outbox
		WHERE session_id = $1
		ORDER BY seq
	`, s.session)
	if err != nil {
		return nil, fmt.Errorf("failed to list outbox: %w", err)
	}

	deliveries := make([]domain.Delivery, 0, len(rows))
	for _, r := range rows {
		deliveries = append(deliveries, domain.Delivery{
			SessionID: r.SessionID,
			Customer:  domain.Customer{Name: r.CustomerName, City: r.CustomerCity},
			Event:     domain.Event{ID: r.EventID, Name: r.EventName, City: r.EventCity, Price: r.Price},
			Strategy:  domain.StrategyName(r.Strategy),
			CreatedAt: r.CreatedAt,
		})
	}
	return deliveries, nil
}

func (s *OutboxSink) Name() string { return "outbox" }

// Close is a no-op; the DB is owned by the caller.
func (s *OutboxSink) Close() error { return nil }
