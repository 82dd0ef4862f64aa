package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/ticket-console/internal/api/rest"
	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/service"
	util "github.com/spec-kit/ticket-console/pkg/util"
)

// Form field order.
const (
	fieldTitle = iota
	fieldCategory
	fieldService
	fieldDescription
	fieldCount
)

// priorityCycle is the order Ctrl+P walks through.
var priorityCycle = []domain.TicketPriority{
	domain.TicketPriorityLow,
	domain.TicketPriorityMedium,
	domain.TicketPriorityHigh,
	domain.TicketPriorityUrgent,
}

// createForm holds the new-ticket inputs and their focus state.
type createForm struct {
	title       textinput.Model
	category    textinput.Model
	service     textinput.Model
	description textarea.Model

	priority int // Index into priorityCycle.
	focus    int

	attachments []rest.FilePart

	submitError error
}

func newCreateForm() createForm {
	title := textinput.New()
	title.Placeholder = "Título"
	title.Focus()

	category := textinput.New()
	category.Placeholder = "Categoría (p. ej. Soporte Técnico)"

	svc := textinput.New()
	svc.Placeholder = "Servicio (opcional)"

	description := textarea.New()
	description.Placeholder = "Describe el problema..."
	description.SetHeight(5)
	description.ShowLineNumbers = false

	return createForm{
		title:       title,
		category:    category,
		service:     svc,
		description: description,
		priority:    1, // MEDIUM
	}
}

func (f *createForm) setWidth(width int) {
	if width < 20 {
		width = 20
	}
	f.title.Width = width
	f.category.Width = width
	f.service.Width = width
	f.description.SetWidth(width)
}

// focusNext moves focus to the next field, wrapping around.
func (f *createForm) focusNext() {
	f.blurAll()
	f.focus = (f.focus + 1) % fieldCount
	switch f.focus {
	case fieldTitle:
		f.title.Focus()
	case fieldCategory:
		f.category.Focus()
	case fieldService:
		f.service.Focus()
	case fieldDescription:
		f.description.Focus()
	}
}

func (f *createForm) blurAll() {
	f.title.Blur()
	f.category.Blur()
	f.service.Blur()
	f.description.Blur()
}

func (f *createForm) cyclePriority() {
	f.priority = (f.priority + 1) % len(priorityCycle)
}

// draft builds a TicketDraft from the current field values, including
// any files attached through the path prompt.
func (f *createForm) draft() service.TicketDraft {
	return service.TicketDraft{
		Title:       strings.TrimSpace(f.title.Value()),
		Description: strings.TrimSpace(f.description.Value()),
		Category:    strings.TrimSpace(f.category.Value()),
		Service:     strings.TrimSpace(f.service.Value()),
		Priority:    priorityCycle[f.priority],
		Attachments: f.attachments,
	}
}

// update forwards a key message to the focused input.
func (f createForm) update(message tea.KeyMsg) (createForm, tea.Cmd) {
	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(message)
	case fieldCategory:
		f.category, cmd = f.category.Update(message)
	case fieldService:
		f.service, cmd = f.service.Update(message)
	case fieldDescription:
		f.description, cmd = f.description.Update(message)
	}
	return f, cmd
}

// renderForm draws the new-ticket screen.
func (m Model) renderForm() string {
	header := lipgloss.NewStyle().
		Foreground(m.theme.HeaderForeground).
		Bold(true)
	label := lipgloss.NewStyle().Foreground(m.theme.FaintText)

	var b strings.Builder
	b.WriteString(header.Render("Nuevo Ticket"))
	b.WriteString("\n\n")

	b.WriteString(label.Render("Título"))
	b.WriteString("\n")
	b.WriteString(m.form.title.View())
	b.WriteString("\n\n")

	b.WriteString(label.Render("Categoría"))
	b.WriteString("\n")
	b.WriteString(m.form.category.View())
	b.WriteString("\n\n")

	b.WriteString(label.Render("Servicio"))
	b.WriteString("\n")
	b.WriteString(m.form.service.View())
	b.WriteString("\n\n")

	b.WriteString(label.Render("Prioridad: "))
	b.WriteString(priorityCycle[m.form.priority].Label())
	b.WriteString("\n\n")

	b.WriteString(label.Render("Descripción"))
	b.WriteString("\n")
	b.WriteString(m.form.description.View())
	b.WriteString("\n")

	if len(m.form.attachments) > 0 {
		names := make([]string, 0, len(m.form.attachments))
		for _, part := range m.form.attachments {
			names = append(names, "📎 "+part.Meta.Name)
		}
		b.WriteString("\n")
		b.WriteString(label.Render("Adjuntos: " + strings.Join(names, "  ")))
		b.WriteString("\n")
	}

	if m.prompting {
		b.WriteString("\n")
		b.WriteString(label.Render("Adjuntar archivo"))
		b.WriteString("\n")
		b.WriteString(m.pathPrompt.View())
		b.WriteString("\n")
	}

	if m.form.submitError != nil {
		b.WriteString("\n")
		b.WriteString(m.renderFormError(m.form.submitError))
		b.WriteString("\n")
	}
	return b.String()
}

// renderFormError shows validation details field by field when the
// error carries them, otherwise the plain message.
func (m Model) renderFormError(err error) string {
	errStyle := lipgloss.NewStyle().Foreground(m.theme.ErrorText)

	if clientErr := util.ToClientError(err); len(clientErr.Details) > 0 {
		fields := make([]string, 0, len(clientErr.Details))
		for field := range clientErr.Details {
			fields = append(fields, strings.ToLower(field))
		}
		sort.Strings(fields)
		return errStyle.Render("Faltan campos obligatorios: " + strings.Join(fields, ", "))
	}
	return errStyle.Render(err.Error())
}
