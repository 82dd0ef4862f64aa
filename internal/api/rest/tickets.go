package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/api/dto"
	"github.com/spec-kit/ticket-console/internal/domain"
	util "github.com/spec-kit/ticket-console/pkg/util"
)

// FetchUserTickets queries the grouped endpoint for one user. Failure
// is signaled by a nil collection, never by an error: read paths render
// empty states and the diagnostic detail lives in the logs.
func (c *Client) FetchUserTickets(ctx context.Context, userID string) *domain.Collection {
	operation := "fetch_user_tickets"
	path := "/tickets-grouped/usuario/" + url.PathEscape(userID)

	envelope, err := c.doJSON(ctx, operation, http.MethodGet, path, nil)
	if err != nil {
		return nil
	}

	var grouped map[string]dto.GroupedUserPayload
	if err := c.decodeData(operation, envelope, &grouped); err != nil {
		return nil
	}

	payload, ok := grouped["user"+userID]
	if !ok {
		c.logger.Warn("grouped response missing user entry",
			zap.String("user_id", userID))
		return nil
	}

	collection := payload.ToDomain(userID)
	return &collection
}

// FetchAllUsersTickets queries the grouped endpoint across all users.
// Returns an empty map on any failure.
func (c *Client) FetchAllUsersTickets(ctx context.Context) map[string]domain.Collection {
	operation := "fetch_all_users_tickets"

	collections := map[string]domain.Collection{}
	envelope, err := c.doJSON(ctx, operation, http.MethodGet, "/tickets-grouped/users", nil)
	if err != nil {
		return collections
	}

	var grouped map[string]dto.GroupedUserPayload
	if err := c.decodeData(operation, envelope, &grouped); err != nil {
		return collections
	}

	for key, payload := range grouped {
		userID := strings.TrimPrefix(key, "user")
		collections[userID] = payload.ToDomain(userID)
	}
	return collections
}

// FetchTicket retrieves a single ticket, trying the direct endpoint
// first and falling back to a search of the user's full collection when
// it fails. The per-ticket endpoint is known to be unreliable; the
// fallback trades an extra round trip for best-effort availability.
// A non-nil result always has a non-nil Messages slice.
func (c *Client) FetchTicket(ctx context.Context, userID, ticketID string) *domain.Ticket {
	if ticket := c.fetchTicketDirect(ctx, ticketID); ticket != nil {
		return ticket
	}

	c.logger.Info("direct ticket fetch failed, searching user collection",
		zap.String("ticket_id", ticketID))

	collection := c.FetchUserTickets(ctx, userID)
	if collection == nil {
		return nil
	}
	ticket := collection.FindTicket(ticketID)
	if ticket == nil {
		c.logger.Warn("ticket not present in user collection",
			zap.String("ticket_id", ticketID),
			zap.String("user_id", userID))
		return nil
	}

	found := *ticket
	if len(found.Messages) == 0 {
		found.Messages = c.FetchTicketMessages(ctx, ticketID)
	}
	return &found
}

func (c *Client) fetchTicketDirect(ctx context.Context, ticketID string) *domain.Ticket {
	operation := "fetch_ticket"
	path := "/tickets/" + url.PathEscape(ticketID)

	envelope, err := c.doJSON(ctx, operation, http.MethodGet, path, nil)
	if err != nil {
		return nil
	}

	var payload dto.TicketPayload
	if err := c.decodeData(operation, envelope, &payload); err != nil {
		return nil
	}

	ticket := payload.ToDomain()
	if ticket.Messages == nil {
		ticket.Messages = c.FetchTicketMessages(ctx, ticketID)
	}
	return &ticket
}

// FetchTicketHistory retrieves the audit trail for a ticket. Empty
// slice on failure.
func (c *Client) FetchTicketHistory(ctx context.Context, ticketID string) []domain.HistoryEntry {
	operation := "fetch_ticket_history"
	path := "/tickets/" + url.PathEscape(ticketID) + "/history"

	entries := []domain.HistoryEntry{}
	envelope, err := c.doJSON(ctx, operation, http.MethodGet, path, nil)
	if err != nil {
		return entries
	}

	var payloads []dto.HistoryEntryPayload
	if err := c.decodeData(operation, envelope, &payloads); err != nil {
		return entries
	}

	for _, payload := range payloads {
		entries = append(entries, payload.ToDomain())
	}
	return entries
}

// CreateTicketFields carries the new-ticket form values.
type CreateTicketFields struct {
	Title       string
	Description string
	Category    string
	Service     string
	Priority    domain.TicketPriority
	UserID      string
	AssignedTo  string
}

// FilePart is one attachment to transmit with a new ticket.
type FilePart struct {
	Meta    domain.AttachmentMeta
	Content io.Reader
}

// CreateTicket submits a new ticket as multipart form data. Unlike the
// JSON endpoints, creation carries binary attachment payloads, so the
// form encoding is kept.
func (c *Client) CreateTicket(ctx context.Context, fields CreateTicketFields, files []FilePart) (*domain.Ticket, error) {
	operation := "create_ticket"

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	formFields := map[string]string{
		"title":       fields.Title,
		"description": fields.Description,
		"category":    fields.Category,
		"service":     fields.Service,
		"priority":    fields.Priority.Label(),
		"userId":      fields.UserID,
	}
	if fields.AssignedTo != "" {
		formFields["usuario_asignado"] = fields.AssignedTo
	}
	for key, value := range formFields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, util.NewTransportError("write form field", err)
		}
	}

	for _, file := range files {
		part, err := writer.CreateFormFile("archivos", file.Meta.Name)
		if err != nil {
			return nil, util.NewTransportError("create form file", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, util.NewTransportError("copy attachment", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, util.NewTransportError("finalize form", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tickets", &body)
	if err != nil {
		return nil, util.NewTransportError("build request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	envelope, err := c.send(operation, req)
	if err != nil {
		return nil, err
	}
	if !envelope.Success {
		return nil, util.NewHTTPStatusError(
			fmt.Sprintf("create ticket rejected: %s", envelope.Message), http.StatusOK)
	}

	var payload dto.TicketPayload
	if err := c.decodeData(operation, envelope, &payload); err != nil {
		return nil, err
	}

	ticket := payload.ToDomain()
	if ticket.Messages == nil {
		ticket.Messages = []domain.Message{}
	}
	return &ticket, nil
}

// UpdateTicketStatus transitions a ticket's lifecycle state.
func (c *Client) UpdateTicketStatus(ctx context.Context, ticketID string, update dto.StatusUpdateRequest) error {
	operation := "update_ticket_status"
	path := "/tickets/" + url.PathEscape(ticketID) + "/status"

	envelope, err := c.doJSON(ctx, operation, http.MethodPut, path, update)
	if err != nil {
		return err
	}
	if !envelope.Success {
		return util.NewHTTPStatusError(
			fmt.Sprintf("status update rejected: %s", envelope.Message), http.StatusOK)
	}
	return nil
}

// DeleteTicket removes a ticket via the backend's delete endpoint.
func (c *Client) DeleteTicket(ctx context.Context, ticketID string) error {
	operation := "delete_ticket"
	path := "/tickets/" + url.PathEscape(ticketID)

	envelope, err := c.doJSON(ctx, operation, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	if !envelope.Success {
		return util.NewHTTPStatusError(
			fmt.Sprintf("delete rejected: %s", envelope.Message), http.StatusOK)
	}
	return nil
}
