package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spec-kit/ticket-console/internal/api/dto"
	"github.com/spec-kit/ticket-console/internal/domain"
	util "github.com/spec-kit/ticket-console/pkg/util"
)

// FetchTicketMessages retrieves a ticket's conversation. Always returns
// a non-nil slice; any failure yields an empty one.
func (c *Client) FetchTicketMessages(ctx context.Context, ticketID string) []domain.Message {
	operation := "fetch_ticket_messages"
	path := "/tickets/" + url.PathEscape(ticketID) + "/messages"

	messages := []domain.Message{}
	envelope, err := c.doJSON(ctx, operation, http.MethodGet, path, nil)
	if err != nil {
		return messages
	}

	var payloads []dto.MessagePayload
	if err := c.decodeData(operation, envelope, &payloads); err != nil {
		return messages
	}

	for _, payload := range payloads {
		messages = append(messages, payload.ToDomain())
	}
	return messages
}

// SendMessage posts a client reply to a ticket's conversation using the
// JSON variant of the endpoint. Attachment metadata rides along; binary
// content is only transmitted on ticket creation.
func (c *Client) SendMessage(ctx context.Context, ticketID, body string, attachments []domain.AttachmentMeta) error {
	operation := "send_message"
	path := "/tickets/" + url.PathEscape(ticketID) + "/messages"

	request := dto.SendMessageRequest{
		Content:     body,
		SenderType:  "Cliente",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Attachments: dto.FromAttachmentMeta(attachments),
	}

	envelope, err := c.doJSON(ctx, operation, http.MethodPost, path, request)
	if err != nil {
		return err
	}
	if !envelope.Success {
		return util.NewHTTPStatusError(
			fmt.Sprintf("message rejected: %s", envelope.Message), http.StatusOK)
	}
	return nil
}
