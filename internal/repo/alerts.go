package repo

import (
	"context"
	"time"
)

// AlertRecord holds the acknowledged reachability of one endpoint within a
// category and the last time a notification went out for it (cooldown).
// A DOWN held back by the cooldown is not acknowledged, so LastState stays
// up until the alert is actually sent.
type AlertRecord struct {
	Key        string
	LastState  bool
	LastSentAt *time.Time
}

// AlertKey identifies an endpoint per category; the same host listed in two
// categories is tracked twice.
func AlertKey(category, domain string) string {
	return category + "/" + domain
}

// AlertStore is implemented by a persistence layer to store alert state.
type AlertStore interface {
	// Get returns nil, nil if there's no record yet.
	Get(ctx context.Context, key string) (*AlertRecord, error)
	// Set upserts the record. If sentAt.IsZero() we store NULL for last_sent_at.
	Set(ctx context.Context, key string, lastState bool, sentAt time.Time) error
}
