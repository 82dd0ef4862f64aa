package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	// EventCollectionInvalidated signals that the top-level ticket
	// collection is stale and should be re-fetched.
	EventCollectionInvalidated EventType = "collection_invalidated"
	// EventTicketInvalidated signals that a single ticket's local copy
	// is stale. Emitted by the poll timer and after mutations.
	EventTicketInvalidated EventType = "ticket_invalidated"
)

// Reason records what triggered an invalidation, for logs.
type Reason string

const (
	ReasonPollTick      Reason = "poll_tick"
	ReasonMessageSent   Reason = "message_sent"
	ReasonTicketCreated Reason = "ticket_created"
	ReasonStatusChanged Reason = "status_changed"
	ReasonManual        Reason = "manual"
)

// Event represents an invalidation emitted toward the refresh loop.
type Event struct {
	Type      EventType
	UserID    string
	TicketID  string
	Reason    Reason
	Timestamp time.Time
}
