package dto

import (
	"encoding/json"
	"time"

	"github.com/spec-kit/ticket-console/internal/domain"
)

// Envelope is the backend's standard response wrapper.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// FlexID tolerates the backend emitting identifiers as either JSON
// strings or numbers.
type FlexID string

// UnmarshalJSON accepts "42" and 42 alike.
func (f *FlexID) UnmarshalJSON(b []byte) error {
	var asString string
	if err := json.Unmarshal(b, &asString); err == nil {
		*f = FlexID(asString)
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(b, &asNumber); err != nil {
		return err
	}
	*f = FlexID(asNumber.String())
	return nil
}

// StatsPayload mirrors the grouped endpoint's stats block.
type StatsPayload struct {
	OpenTickets     int    `json:"openTickets"`
	ResolvedTickets int    `json:"resolvedTickets"`
	TotalTickets    int    `json:"totalTickets"`
	AvgResponseTime string `json:"avgResponseTime"`
}

// GroupedUserPayload is one user's entry in the grouped response.
type GroupedUserPayload struct {
	UserName   string          `json:"userName"`
	UserAvatar string          `json:"userAvatar"`
	Stats      StatsPayload    `json:"stats"`
	Tickets    []TicketPayload `json:"tickets"`
}

// TicketPayload mirrors a ticket record on the wire. Messages stays nil
// when the field is absent, which the fallback lookup path relies on to
// decide whether a separate message fetch is needed.
type TicketPayload struct {
	ID               FlexID           `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Category         string           `json:"category"`
	Service          string           `json:"service"`
	Priority         string           `json:"priority"`
	Status           string           `json:"status"`
	Created          string           `json:"created"`
	LastUpdate       string           `json:"lastUpdate"`
	AssignedTo       string           `json:"assignedTo"`
	AssignedToAvatar string           `json:"assignedToAvatar"`
	Messages         []MessagePayload `json:"messages"`
}

// StatusUpdateRequest is the PUT /tickets/{id}/status payload.
type StatusUpdateRequest struct {
	EstadoID   string `json:"estado_id"`
	Comentario string `json:"comentario,omitempty"`
	UsuarioID  string `json:"usuario_id"`
}

// ToDomain converts a wire ticket into the canonical shape. The caller
// decides whether a nil message list warrants a separate fetch; the
// conversion itself keeps nil as nil so that signal is not lost.
func (p TicketPayload) ToDomain() domain.Ticket {
	ticket := domain.Ticket{
		ID:               string(p.ID),
		Title:            p.Title,
		Description:      p.Description,
		Category:         p.Category,
		Service:          p.Service,
		Priority:         domain.ParseTicketPriority(p.Priority),
		Status:           domain.ParseTicketStatus(p.Status),
		CreatedAt:        parseTime(p.Created),
		UpdatedAt:        parseTime(p.LastUpdate),
		AssignedTo:       p.AssignedTo,
		AssignedToAvatar: p.AssignedToAvatar,
	}
	if p.Messages != nil {
		ticket.Messages = make([]domain.Message, 0, len(p.Messages))
		for _, msg := range p.Messages {
			ticket.Messages = append(ticket.Messages, msg.ToDomain())
		}
	}
	return ticket
}

// ToDomain converts a grouped user entry into a Collection, deriving
// the in-progress count from the transmitted totals.
func (p GroupedUserPayload) ToDomain(userID string) domain.Collection {
	collection := domain.Collection{
		UserID:     userID,
		UserName:   p.UserName,
		UserAvatar: p.UserAvatar,
		Stats: domain.DeriveStats(
			p.Stats.OpenTickets,
			p.Stats.ResolvedTickets,
			p.Stats.TotalTickets,
			p.Stats.AvgResponseTime,
		),
		Tickets: make([]domain.Ticket, 0, len(p.Tickets)),
	}
	for _, ticket := range p.Tickets {
		converted := ticket.ToDomain()
		if converted.Messages == nil {
			converted.Messages = []domain.Message{}
		}
		collection.Tickets = append(collection.Tickets, converted)
	}
	return collection
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
