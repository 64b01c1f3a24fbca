package ports

import "context"

// EventPublisher fans committed ledger events out to subscribers.
// Delivery is best effort; the ledger_events table is the record.
type EventPublisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
}
