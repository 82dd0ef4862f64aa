package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/events"
	util "github.com/spec-kit/ticket-console/pkg/util"
)

// SendMessage posts the composer content to the selected ticket with
// an optimistic local preview. Ordering:
//
//  1. A temporary client message (delivery "pending") is appended to
//     the in-memory ticket for immediate display.
//  2. The backend call runs.
//  3. On success the staging area is cleared, the authoritative ticket
//     is re-fetched (replacing the preview with server truth; a failed
//     re-fetch keeps the preview, marked "sent"), and a collection
//     invalidation is published.
//  4. On failure the preview is marked "failed" and stays visible so
//     the user sees exactly which message did not go through. Nothing
//     is retried automatically.
func (s *Session) SendMessage(ctx context.Context, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return util.NewValidationError("message body required", nil)
	}

	s.mu.Lock()
	ticketID := s.selectedID
	if ticketID == "" || s.selected == nil {
		s.mu.Unlock()
		return util.NewValidationError("no ticket selected", nil)
	}
	if !s.selected.AcceptsMessages() {
		s.mu.Unlock()
		return util.NewValidationError("ticket is resolved; no new messages accepted", nil)
	}

	sender := clientDisplayName(s.collection)
	temp := domain.Message{
		ID:          tempMessageID(),
		Sender:      sender,
		Kind:        domain.SenderKindClient,
		Body:        body,
		Timestamp:   time.Now(),
		Avatar:      avatarFor(sender),
		Attachments: append([]domain.AttachmentMeta{}, s.staged...),
		Delivery:    domain.DeliveryPending,
	}
	s.selected.Messages = append(s.selected.Messages, temp)
	attachments := append([]domain.AttachmentMeta{}, s.staged...)
	s.mu.Unlock()

	if err := s.backend.SendMessage(ctx, ticketID, body, attachments); err != nil {
		s.markDelivery(temp.ID, domain.DeliveryFailed)
		return err
	}

	s.mu.Lock()
	s.staged = nil
	s.mu.Unlock()

	s.markDelivery(temp.ID, domain.DeliverySent)
	s.RefreshSelected(ctx)
	s.publish(ctx, events.EventCollectionInvalidated, ticketID, events.ReasonMessageSent)
	return nil
}

// markDelivery updates an optimistic message's delivery state in place.
// A no-op when the authoritative refresh has already replaced it.
func (s *Session) markDelivery(messageID string, state domain.DeliveryState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return
	}
	for i := range s.selected.Messages {
		if s.selected.Messages[i].ID == messageID {
			s.selected.Messages[i].Delivery = state
			return
		}
	}
}
