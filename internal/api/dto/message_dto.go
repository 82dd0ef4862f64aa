package dto

import (
	"github.com/spec-kit/ticket-console/internal/domain"
)

// MessagePayload mirrors a conversation message on the wire. The
// backend has drifted across several field spellings for the same
// concepts (content/text/message, sender/senderName, avatar/
// senderAvatar, timestamp/created, type/senderType); this payload
// accepts them all and ToDomain collapses each group into one canonical
// field, decided here and nowhere else.
type MessagePayload struct {
	ID           FlexID              `json:"id"`
	Type         string              `json:"type"`
	SenderType   string              `json:"senderType"`
	Sender       string              `json:"sender"`
	SenderName   string              `json:"senderName"`
	Avatar       string              `json:"avatar"`
	SenderAvatar string              `json:"senderAvatar"`
	Timestamp    string              `json:"timestamp"`
	Created      string              `json:"created"`
	Content      string              `json:"content"`
	Text         string              `json:"text"`
	Message      string              `json:"message"`
	Attachments  []AttachmentPayload `json:"attachments"`
}

// AttachmentPayload mirrors attachment metadata on the wire.
type AttachmentPayload struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	SizeBytes int64  `json:"size"`
}

// SendMessageRequest is the POST /tickets/{id}/messages payload. The
// backend historically accepted both a JSON body and a multipart form;
// the client standardizes on the JSON variant.
type SendMessageRequest struct {
	Content     string              `json:"content"`
	SenderType  string              `json:"senderType"`
	Timestamp   string              `json:"timestamp"`
	Attachments []AttachmentPayload `json:"attachments,omitempty"`
}

// ToDomain converts a wire message into the canonical shape.
func (p MessagePayload) ToDomain() domain.Message {
	msg := domain.Message{
		ID:          string(p.ID),
		Sender:      firstNonEmpty(p.SenderName, p.Sender),
		Kind:        domain.ParseSenderKind(p.Type, p.SenderType),
		Body:        firstNonEmpty(p.Content, p.Text, p.Message),
		Timestamp:   parseTime(firstNonEmpty(p.Timestamp, p.Created)),
		Avatar:      firstNonEmpty(p.SenderAvatar, p.Avatar),
		Delivery:    domain.DeliverySent,
		Attachments: make([]domain.AttachmentMeta, 0, len(p.Attachments)),
	}
	for _, att := range p.Attachments {
		msg.Attachments = append(msg.Attachments, domain.AttachmentMeta{
			Name:      att.Name,
			MimeType:  att.Type,
			SizeBytes: att.SizeBytes,
		})
	}
	return msg
}

// FromAttachmentMeta converts staged metadata into the wire shape.
func FromAttachmentMeta(metas []domain.AttachmentMeta) []AttachmentPayload {
	if len(metas) == 0 {
		return nil
	}
	payloads := make([]AttachmentPayload, 0, len(metas))
	for _, meta := range metas {
		payloads = append(payloads, AttachmentPayload{
			Name:      meta.Name,
			Type:      meta.MimeType,
			SizeBytes: meta.SizeBytes,
		})
	}
	return payloads
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
