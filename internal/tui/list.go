package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/ticket-console/internal/domain"
)

// renderList draws the collection screen: a header with the user's
// name, aggregate stats, and one row per ticket.
func (m Model) renderList() string {
	var b strings.Builder

	header := lipgloss.NewStyle().
		Foreground(m.theme.HeaderForeground).
		Bold(true)
	title := "Mis Tickets"
	if m.snapshot.Collection != nil && m.snapshot.Collection.UserName != "" {
		title = "Mis Tickets · " + m.snapshot.Collection.UserName
	}
	b.WriteString(header.Render(title))
	b.WriteString("\n")
	b.WriteString(m.renderStats())
	b.WriteString("\n\n")

	tickets := m.listTickets()
	if len(tickets) == 0 {
		empty := lipgloss.NewStyle().Foreground(m.theme.FaintText)
		b.WriteString(empty.Render("No tienes tickets todavía. Pulsa 'n' para crear uno."))
		b.WriteString("\n")
		return b.String()
	}

	for i := range tickets {
		b.WriteString(m.renderRow(&tickets[i], i == m.cursor))
		b.WriteString("\n")
	}
	return b.String()
}

// renderStats draws the open / in-progress / resolved counters.
func (m Model) renderStats() string {
	faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)
	if m.snapshot.Collection == nil {
		return faint.Render("Cargando tickets...")
	}
	stats := m.snapshot.Collection.Stats

	parts := []string{
		lipgloss.NewStyle().Foreground(m.theme.StatusPending).
			Render(fmt.Sprintf("Abiertos: %d", stats.Open)),
		lipgloss.NewStyle().Foreground(m.theme.StatusInProgress).
			Render(fmt.Sprintf("En progreso: %d", stats.InProgress)),
		lipgloss.NewStyle().Foreground(m.theme.StatusResolved).
			Render(fmt.Sprintf("Resueltos: %d", stats.Resolved)),
		faint.Render(fmt.Sprintf("Total: %d", stats.Total)),
	}
	if stats.AvgResponseTime != "" {
		parts = append(parts, faint.Render("Respuesta media: "+stats.AvgResponseTime))
	}
	return strings.Join(parts, "   ")
}

// renderRow draws one ticket line: status badge, ID, title, and the
// last-message preview.
func (m Model) renderRow(ticket *domain.Ticket, selected bool) string {
	badge := lipgloss.NewStyle().
		Foreground(m.theme.statusColor(ticket.Status)).
		Render("● " + ticket.Status.Label())

	row := fmt.Sprintf("%s  #%s  %s", badge, ticket.ID, ticket.Title)
	if last := ticket.LastMessage(); last != nil {
		preview := truncate(last.Body, 60)
		row += lipgloss.NewStyle().
			Foreground(m.theme.FaintText).
			Render("  " + preview)
	}

	if selected {
		return lipgloss.NewStyle().
			Background(m.theme.SelectedBackground).
			Foreground(m.theme.SelectedForeground).
			Render("> " + row)
	}
	return "  " + row
}

// truncate shortens text to at most max runes, appending an ellipsis.
// Rune-based so multi-byte characters never get split.
func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-3]) + "..."
}

// renderStatusBar draws the notice line and the key help footer.
func (m Model) renderStatusBar() string {
	help := lipgloss.NewStyle().Foreground(m.theme.HelpText)

	var bindings string
	switch m.mode {
	case modeDetail:
		bindings = "enter enviar · C-a adjuntar · C-h historial · esc volver · C-c salir"
	case modeCreate:
		bindings = "tab siguiente campo · C-p prioridad · C-a adjuntar · C-s crear · esc volver"
	default:
		bindings = "j/k mover · enter abrir · n nuevo · r actualizar · q salir"
	}

	if m.notice == "" {
		return help.Render(bindings)
	}

	noticeStyle := lipgloss.NewStyle().Foreground(m.theme.NormalText)
	if m.noticeErr {
		noticeStyle = noticeStyle.Foreground(m.theme.ErrorText)
	}
	return noticeStyle.Render(m.notice) + "\n" + help.Render(bindings)
}
