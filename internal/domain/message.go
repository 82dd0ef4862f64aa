package domain

import (
	"strings"
	"time"
)

// SenderKind indicates who authored a message.
type SenderKind string

const (
	SenderKindClient  SenderKind = "client"
	SenderKindSupport SenderKind = "support"
	SenderKindSystem  SenderKind = "system"
)

// ParseSenderKind resolves the author kind from the two conventions the
// backend uses: an explicit kind field, or a senderType display label.
// The explicit field wins when present.
func ParseSenderKind(explicit, senderType string) SenderKind {
	switch strings.ToLower(strings.TrimSpace(explicit)) {
	case "client":
		return SenderKindClient
	case "support":
		return SenderKindSupport
	case "system":
		return SenderKindSystem
	}
	if strings.EqualFold(strings.TrimSpace(senderType), "Cliente") {
		return SenderKindClient
	}
	return SenderKindSupport
}

// DeliveryState tracks the lifecycle of an optimistic local message.
// Messages fetched from the backend are always DeliverySent.
type DeliveryState string

const (
	DeliverySent    DeliveryState = "sent"
	DeliveryPending DeliveryState = "pending"
	DeliveryFailed  DeliveryState = "failed"
)

// Message is one entry in a ticket's conversation.
type Message struct {
	ID          string
	Sender      string
	Kind        SenderKind
	Body        string
	Timestamp   time.Time
	Avatar      string
	Attachments []AttachmentMeta
	Delivery    DeliveryState
}

// AvatarLabel returns the avatar initials, falling back to the sender
// name's first two characters. Truncation is rune-aware so accented
// names do not split mid-character.
func (m *Message) AvatarLabel() string {
	if m.Avatar != "" {
		return m.Avatar
	}
	runes := []rune(m.Sender)
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}

// AttachmentMeta stores metadata for a staged or transmitted attachment.
type AttachmentMeta struct {
	Name      string
	MimeType  string
	SizeBytes int64
}
