package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/api/rest"
	"github.com/spec-kit/ticket-console/internal/attachment"
	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/events"
)

// Backend is the slice of the REST client the session depends on.
type Backend interface {
	FetchUserTickets(ctx context.Context, userID string) *domain.Collection
	FetchTicket(ctx context.Context, userID, ticketID string) *domain.Ticket
	FetchTicketMessages(ctx context.Context, ticketID string) []domain.Message
	FetchTicketHistory(ctx context.Context, ticketID string) []domain.HistoryEntry
	SendMessage(ctx context.Context, ticketID, body string, attachments []domain.AttachmentMeta) error
	CreateTicket(ctx context.Context, fields rest.CreateTicketFields, files []rest.FilePart) (*domain.Ticket, error)
}

// Session owns the client-side state tree: the user's collection, the
// currently selected ticket, and the attachment staging area. All
// mutation flows and refreshes go through here; the TUI reads immutable
// snapshots and never touches the tree directly.
type Session struct {
	mu sync.RWMutex

	backend    Backend
	dispatcher events.Dispatcher
	logger     *zap.Logger

	userID         string
	composerPolicy attachment.Policy

	collection *domain.Collection
	selectedID string
	selected   *domain.Ticket
	staged     []domain.AttachmentMeta

	// Request-generation guards: a fetch response is applied only when
	// its sequence number is still the latest issued for that view, so
	// rapid navigation cannot let a stale response overwrite a newer one.
	collectionSeq uint64
	ticketSeq     uint64
}

// SessionDependencies bundles collaborators for the session.
type SessionDependencies struct {
	Backend        Backend
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	UserID         string
	ComposerPolicy attachment.Policy
}

// NewSession constructs the session.
func NewSession(deps SessionDependencies) *Session {
	return &Session{
		backend:        deps.Backend,
		dispatcher:     deps.Dispatcher,
		logger:         deps.Logger,
		userID:         deps.UserID,
		composerPolicy: deps.ComposerPolicy,
	}
}

// Snapshot is a point-in-time copy of the session state for rendering.
type Snapshot struct {
	UserID     string
	Collection *domain.Collection
	Selected   *domain.Ticket
	Staged     []domain.AttachmentMeta
}

// Snapshot returns a copy of the current state. Ticket and message
// slices are duplicated so the renderer never aliases session memory.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := Snapshot{
		UserID: s.userID,
		Staged: append([]domain.AttachmentMeta{}, s.staged...),
	}
	if s.collection != nil {
		collection := *s.collection
		collection.Tickets = append([]domain.Ticket{}, s.collection.Tickets...)
		snapshot.Collection = &collection
	}
	if s.selected != nil {
		selected := *s.selected
		selected.Messages = append([]domain.Message{}, s.selected.Messages...)
		snapshot.Selected = &selected
	}
	return snapshot
}

// SelectedID returns the ticket ID the detail view is showing, or "".
func (s *Session) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedID
}

// RefreshCollection re-fetches the user's grouped tickets and replaces
// local state wholesale. A failed fetch keeps the previous collection.
func (s *Session) RefreshCollection(ctx context.Context) {
	s.mu.Lock()
	s.collectionSeq++
	seq := s.collectionSeq
	s.mu.Unlock()

	collection := s.backend.FetchUserTickets(ctx, s.userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.collectionSeq {
		s.logger.Debug("discarding stale collection response")
		return
	}
	if collection != nil {
		s.collection = collection
	}
}

// Select opens a ticket in the detail view and fetches its full state.
// Out-of-order responses from rapid switching are discarded.
func (s *Session) Select(ctx context.Context, ticketID string) {
	s.mu.Lock()
	s.selectedID = ticketID
	// Show the collection's copy immediately while the fetch runs.
	if cached := s.collection.FindTicket(ticketID); cached != nil {
		copied := *cached
		copied.Messages = append([]domain.Message{}, cached.Messages...)
		s.selected = &copied
	} else {
		s.selected = nil
	}
	s.ticketSeq++
	seq := s.ticketSeq
	s.mu.Unlock()

	s.applyTicketFetch(ctx, ticketID, seq)
}

// RefreshSelected re-fetches the currently selected ticket.
func (s *Session) RefreshSelected(ctx context.Context) {
	s.mu.Lock()
	ticketID := s.selectedID
	if ticketID == "" {
		s.mu.Unlock()
		return
	}
	s.ticketSeq++
	seq := s.ticketSeq
	s.mu.Unlock()

	s.applyTicketFetch(ctx, ticketID, seq)
}

func (s *Session) applyTicketFetch(ctx context.Context, ticketID string, seq uint64) {
	ticket := s.backend.FetchTicket(ctx, s.userID, ticketID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.ticketSeq || ticketID != s.selectedID {
		s.logger.Debug("discarding stale ticket response",
			zap.String("ticket_id", ticketID))
		return
	}
	// A failed re-fetch keeps whatever was displayed before.
	if ticket != nil {
		s.selected = ticket
	}
}

// SelectedHistory fetches the status trail for the selected ticket.
// History is display-on-demand and never cached.
func (s *Session) SelectedHistory(ctx context.Context) []domain.HistoryEntry {
	ticketID := s.SelectedID()
	if ticketID == "" {
		return nil
	}
	return s.backend.FetchTicketHistory(ctx, ticketID)
}

// Deselect closes the detail view and drops composer staging.
func (s *Session) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = ""
	s.selected = nil
	s.staged = nil
}

// StageAttachments filters candidate files through the composer policy
// and appends the survivors to the staging area. Returns how many were
// rejected; rejected files are dropped silently apart from logs.
func (s *Session) StageAttachments(candidates []domain.AttachmentMeta) int {
	staged, rejected := s.composerPolicy.Stage(candidates)
	for _, meta := range rejected {
		s.logger.Info("attachment rejected by policy",
			zap.String("file", meta.Name),
			zap.String("mime_type", meta.MimeType),
			zap.Int64("size_bytes", meta.SizeBytes))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = append(s.staged, staged...)
	return len(rejected)
}

// UnstageAttachment removes one staged file by index.
func (s *Session) UnstageAttachment(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.staged) {
		return
	}
	s.staged = append(s.staged[:index], s.staged[index+1:]...)
}

// publish fires an invalidation through the dispatcher; refresh
// consumers react, the session itself does not.
func (s *Session) publish(ctx context.Context, eventType events.EventType, ticketID string, reason events.Reason) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:      eventType,
		UserID:    s.userID,
		TicketID:  ticketID,
		Reason:    reason,
		Timestamp: time.Now(),
	})
}

func tempMessageID() string {
	return "temp-" + uuid.NewString()
}

func clientDisplayName(collection *domain.Collection) string {
	if collection != nil && collection.UserName != "" {
		return collection.UserName
	}
	return "Usuario"
}

func avatarFor(name string) string {
	runes := []rune(strings.TrimSpace(name))
	if len(runes) < 2 {
		return "U"
	}
	return strings.ToUpper(string(runes[:2]))
}
