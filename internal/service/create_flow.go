package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/api/rest"
	"github.com/spec-kit/ticket-console/internal/attachment"
	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/events"
	util "github.com/spec-kit/ticket-console/pkg/util"
)

// TicketDraft carries the creation-form values. Title, description and
// category are required; everything else is optional.
type TicketDraft struct {
	Title       string `validate:"required"`
	Description string `validate:"required"`
	Category    string `validate:"required"`
	Service     string
	Priority    domain.TicketPriority
	AssignedTo  string
	Attachments []rest.FilePart
}

var draftValidator = validator.New()

// ValidateDraft checks required fields without touching the network.
func ValidateDraft(draft TicketDraft) error {
	if err := draftValidator.Struct(draft); err != nil {
		details := map[string]any{}
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			for _, fe := range fieldErrors {
				details[fe.Field()] = fe.Tag()
			}
		}
		return util.NewValidationError("title, description and category are required", details)
	}
	return nil
}

// CreateTicket validates and submits a new ticket, then refreshes the
// collection and selects the created record. Attachments are filtered
// through the creation-form policy; files that fail it are dropped from
// the submission, not errors.
func (s *Session) CreateTicket(ctx context.Context, draft TicketDraft, formPolicy attachment.Policy) (*domain.Ticket, error) {
	if err := ValidateDraft(draft); err != nil {
		return nil, err
	}
	if draft.Priority == "" {
		draft.Priority = domain.TicketPriorityMedium
	}

	files := make([]rest.FilePart, 0, len(draft.Attachments))
	for _, file := range draft.Attachments {
		if err := formPolicy.Validate(file.Meta); err != nil {
			s.logger.Info("form attachment rejected by policy",
				zap.String("file", file.Meta.Name))
			continue
		}
		files = append(files, file)
	}

	created, err := s.backend.CreateTicket(ctx, rest.CreateTicketFields{
		Title:       draft.Title,
		Description: draft.Description,
		Category:    draft.Category,
		Service:     draft.Service,
		Priority:    draft.Priority,
		UserID:      s.userID,
		AssignedTo:  draft.AssignedTo,
	}, files)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventCollectionInvalidated, created.ID, events.ReasonTicketCreated)
	s.RefreshCollection(ctx)
	s.Select(ctx, created.ID)
	return created, nil
}
