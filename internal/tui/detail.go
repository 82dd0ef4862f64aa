package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/ticket-console/internal/domain"
)

// renderDetail draws the conversation screen: ticket header, message
// transcript, staged attachments, and the composer. Resolved tickets
// show a read-only banner instead of the composer.
func (m Model) renderDetail() string {
	ticket := m.snapshot.Selected
	if ticket == nil {
		return lipgloss.NewStyle().
			Foreground(m.theme.FaintText).
			Render("Cargando ticket...")
	}

	var b strings.Builder
	b.WriteString(m.renderDetailHeader(ticket))
	b.WriteString("\n\n")
	if m.showHistory {
		b.WriteString(m.renderHistory())
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(m.transcript.View())
	b.WriteString("\n")

	if !ticket.AcceptsMessages() {
		banner := lipgloss.NewStyle().
			Foreground(m.theme.StatusResolved).
			Render("Ticket resuelto. La conversación es de solo lectura.")
		b.WriteString("\n")
		b.WriteString(banner)
		b.WriteString("\n")
		return b.String()
	}

	if len(m.snapshot.Staged) > 0 {
		b.WriteString(m.renderStaged())
		b.WriteString("\n")
	}
	if m.prompting {
		b.WriteString(lipgloss.NewStyle().
			Foreground(m.theme.FaintText).
			Render("Adjuntar archivo"))
		b.WriteString("\n")
		b.WriteString(m.pathPrompt.View())
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(m.composer.View())
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderDetailHeader(ticket *domain.Ticket) string {
	title := lipgloss.NewStyle().
		Foreground(m.theme.HeaderForeground).
		Bold(true).
		Render(fmt.Sprintf("#%s  %s", ticket.ID, ticket.Title))

	status := lipgloss.NewStyle().
		Foreground(m.theme.statusColor(ticket.Status)).
		Render(ticket.Status.Label())

	meta := []string{status, "Prioridad: " + ticket.Priority.Label()}
	if ticket.Category != "" {
		meta = append(meta, ticket.Category)
	}
	if ticket.AssignedTo != "" {
		meta = append(meta, "Asignado a "+ticket.AssignedTo)
	}

	faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)
	return title + "\n" + faint.Render(strings.Join(meta, " · "))
}

// renderTranscript formats the full message history. Client messages
// align right with their delivery marker; support and system messages
// align left.
func (m Model) renderTranscript() string {
	ticket := m.snapshot.Selected
	if ticket == nil {
		return ""
	}
	if len(ticket.Messages) == 0 {
		return lipgloss.NewStyle().
			Foreground(m.theme.FaintText).
			Render("Sin mensajes todavía.")
	}

	width := m.transcript.Width
	if width <= 0 {
		width = 72
	}

	var b strings.Builder
	for i := range ticket.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(&ticket.Messages[i], width))
	}
	return b.String()
}

func (m Model) renderMessage(message *domain.Message, width int) string {
	color := m.theme.SupportMessage
	align := lipgloss.Left
	switch message.Kind {
	case domain.SenderKindClient:
		color = m.theme.ClientMessage
		align = lipgloss.Right
	case domain.SenderKindSystem:
		color = m.theme.SystemMessage
	}

	sender := message.AvatarLabel() + " " + message.Sender
	stamp := ""
	if !message.Timestamp.IsZero() {
		stamp = message.Timestamp.Format("02/01 15:04")
	}

	header := lipgloss.NewStyle().
		Foreground(m.theme.FaintText).
		Render(strings.TrimSpace(sender + "  " + stamp))
	body := lipgloss.NewStyle().Foreground(color).Render(message.Body)

	lines := header + "\n" + body
	if marker := m.deliveryMarker(message); marker != "" {
		lines += "\n" + marker
	}
	if len(message.Attachments) > 0 {
		names := make([]string, 0, len(message.Attachments))
		for _, meta := range message.Attachments {
			names = append(names, "📎 "+meta.Name)
		}
		lines += "\n" + lipgloss.NewStyle().
			Foreground(m.theme.FaintText).
			Render(strings.Join(names, "  "))
	}

	return lipgloss.NewStyle().Width(width).Align(align).Render(lines)
}

// deliveryMarker renders the send-state suffix for client messages.
func (m Model) deliveryMarker(message *domain.Message) string {
	switch message.Delivery {
	case domain.DeliveryPending:
		return lipgloss.NewStyle().
			Foreground(m.theme.DeliveryPending).
			Render("enviando...")
	case domain.DeliveryFailed:
		return lipgloss.NewStyle().
			Foreground(m.theme.DeliveryFailed).
			Render("no se pudo enviar")
	default:
		return ""
	}
}

// renderHistory draws the status trail panel.
func (m Model) renderHistory() string {
	faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)
	if len(m.history) == 0 {
		return faint.Render("Sin historial de estados.")
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Foreground(m.theme.HeaderForeground).
		Render("Historial de estados"))
	b.WriteString("\n")
	for _, entry := range m.history {
		status := lipgloss.NewStyle().
			Foreground(m.theme.statusColor(entry.Status)).
			Render(entry.Status.Label())
		line := status
		if entry.Comment != "" {
			line += "  " + entry.Comment
		}
		if entry.Actor != "" {
			line += faint.Render("  (" + entry.Actor + ")")
		}
		if !entry.Timestamp.IsZero() {
			line += faint.Render("  " + entry.Timestamp.Format("02/01/2006 15:04"))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// renderStaged lists the attachments waiting in the composer.
func (m Model) renderStaged() string {
	names := make([]string, 0, len(m.snapshot.Staged))
	for _, meta := range m.snapshot.Staged {
		names = append(names, fmt.Sprintf("📎 %s (%s)", meta.Name, formatBytes(meta.SizeBytes)))
	}
	return lipgloss.NewStyle().
		Foreground(m.theme.FaintText).
		Render("Adjuntos: " + strings.Join(names, "  "))
}

func formatBytes(size int64) string {
	switch {
	case size >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	case size >= 1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%d B", size)
	}
}
