package dto

import "github.com/spec-kit/ticket-console/internal/domain"

// HistoryEntryPayload mirrors one audit-trail entry on the wire. Like
// messages, history entries have drifted field spellings.
type HistoryEntryPayload struct {
	ID        FlexID `json:"id"`
	Status    string `json:"status"`
	Estado    string `json:"estado"`
	Comment   string `json:"comment"`
	Comentari string `json:"comentario"`
	Actor     string `json:"usuario"`
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
	Created   string `json:"created"`
}

// ToDomain converts a wire history entry into the canonical shape.
func (p HistoryEntryPayload) ToDomain() domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:        string(p.ID),
		Status:    domain.ParseTicketStatus(firstNonEmpty(p.Status, p.Estado)),
		Comment:   firstNonEmpty(p.Comment, p.Comentari),
		Actor:     firstNonEmpty(p.Actor, p.User),
		Timestamp: parseTime(firstNonEmpty(p.Timestamp, p.Created)),
	}
}
