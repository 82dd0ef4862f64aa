package domain

import "time"

// HistoryEntry records one lifecycle transition in a ticket's audit
// trail, as reported by the history endpoint.
type HistoryEntry struct {
	ID        string
	Status    TicketStatus
	Comment   string
	Actor     string
	Timestamp time.Time
}
