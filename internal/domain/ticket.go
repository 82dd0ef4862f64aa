package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "PENDING"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
)

// ParseTicketStatus maps backend status labels onto the canonical enum.
// The backend emits Spanish display labels; unknown values default to
// PENDING so a drifting backend never produces an impossible state.
func ParseTicketStatus(raw string) TicketStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "en progreso", "in progress", "in_progress":
		return TicketStatusInProgress
	case "resuelto", "resolved":
		return TicketStatusResolved
	default:
		return TicketStatusPending
	}
}

// Label returns the backend-facing display label for the status.
func (s TicketStatus) Label() string {
	switch s {
	case TicketStatusInProgress:
		return "En Progreso"
	case TicketStatusResolved:
		return "Resuelto"
	default:
		return "Pendiente"
	}
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// ParseTicketPriority maps backend priority labels onto the canonical
// enum. A missing or unknown priority defaults to MEDIUM.
func ParseTicketPriority(raw string) TicketPriority {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "baja", "low":
		return TicketPriorityLow
	case "alta", "high":
		return TicketPriorityHigh
	case "urgente", "urgent":
		return TicketPriorityUrgent
	default:
		return TicketPriorityMedium
	}
}

// Label returns the backend-facing display label for the priority.
func (p TicketPriority) Label() string {
	switch p {
	case TicketPriorityLow:
		return "Baja"
	case TicketPriorityHigh:
		return "Alta"
	case TicketPriorityUrgent:
		return "Urgente"
	default:
		return "Media"
	}
}

// Ticket is the client-side view of a support request. The backend owns
// the record; this copy is transient and overwritten wholesale on each
// authoritative refresh.
type Ticket struct {
	ID               string
	Title            string
	Description      string
	Category         string
	Service          string
	Priority         TicketPriority
	Status           TicketStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
	AssignedTo       string
	AssignedToAvatar string
	Messages         []Message
}

// AcceptsMessages reports whether the client may append new messages.
// Resolved tickets are read-only.
func (t *Ticket) AcceptsMessages() bool {
	return t != nil && t.Status != TicketStatusResolved
}

// LastMessage returns the newest message, or nil when the thread is empty.
func (t *Ticket) LastMessage() *Message {
	if t == nil || len(t.Messages) == 0 {
		return nil
	}
	return &t.Messages[len(t.Messages)-1]
}
