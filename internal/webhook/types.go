package webhook

import (
	"time"

	"github.com/feral-file/ff-ledger/internal/domain"
)

// EventTypeWildcard is a special filter that matches all event types
const EventTypeWildcard = "*"

// Client is a registered webhook destination
type Client struct {
	// Name identifies the client in logs
	Name string
	// URL is the endpoint deliveries are POSTed to
	URL string
	// Secret is the shared HMAC key used to sign payloads
	Secret string
	// EventTypes filters which ledger event types the client receives;
	// the wildcard "*" matches everything
	EventTypes []string
}

// Matches reports whether the client subscribed to the given event type
func (c *Client) Matches(eventType domain.EventType) bool {
	for _, t := range c.EventTypes {
		if t == EventTypeWildcard || t == string(eventType) {
			return true
		}
	}
	return false
}

// Event represents a webhook event to be delivered to clients
type Event struct {
	// EventID is a unique identifier for this event (ULID for time-sortable
	// uniqueness)
	EventID string `json:"event_id"`
	// EventType is the ledger event type (e.g. "transfer")
	EventType string `json:"event_type"`
	// Timestamp is when the event was generated
	Timestamp time.Time `json:"timestamp"`
	// Data contains the ledger event payload
	Data domain.Event `json:"data"`
}
