package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/api/rest"
	"github.com/spec-kit/ticket-console/internal/attachment"
	"github.com/spec-kit/ticket-console/internal/config"
	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/service"
)

func newTestModel() Model {
	return newTestModelWithBackend(nil)
}

func newTestModelWithBackend(backend service.Backend) Model {
	session := service.NewSession(service.SessionDependencies{
		Backend:        backend,
		Logger:         zap.NewNop(),
		UserID:         "42",
		ComposerPolicy: attachment.ComposerPolicy(config.AttachmentConfig{}),
	})
	model := NewModel(ModelDependencies{
		Session:    session,
		FormPolicy: attachment.FormPolicy(config.AttachmentConfig{}),
		Logger:     zap.NewNop(),
	})
	model.width = 80
	model.height = 24
	model.transcript.Width = 76
	model.transcript.Height = 12
	return model
}

func TestRenderListShowsStatsAndRows(t *testing.T) {
	model := newTestModel()
	model.snapshot.Collection = &domain.Collection{
		UserID:   "42",
		UserName: "Laura",
		Stats:    domain.DeriveStats(3, 5, 10, "2h"),
		Tickets: []domain.Ticket{
			{ID: "7", Title: "Impresora rota", Status: domain.TicketStatusPending},
			{ID: "8", Title: "VPN caída", Status: domain.TicketStatusResolved},
		},
	}

	view := model.renderList()
	assert.Contains(t, view, "Laura")
	assert.Contains(t, view, "Abiertos: 3")
	assert.Contains(t, view, "En progreso: 2")
	assert.Contains(t, view, "Resueltos: 5")
	assert.Contains(t, view, "Impresora rota")
	assert.Contains(t, view, "VPN caída")
}

func TestRenderListEmptyState(t *testing.T) {
	model := newTestModel()
	model.snapshot.Collection = &domain.Collection{UserID: "42"}

	view := model.renderList()
	assert.Contains(t, view, "No tienes tickets todavía")
}

func TestRenderDetailResolvedIsReadOnly(t *testing.T) {
	model := newTestModel()
	model.snapshot.Selected = &domain.Ticket{
		ID:     "7",
		Title:  "Impresora rota",
		Status: domain.TicketStatusResolved,
	}

	view := model.renderDetail()
	assert.Contains(t, view, "solo lectura")
	assert.NotContains(t, view, model.composer.Placeholder)
}

func TestRenderDetailOpenShowsComposer(t *testing.T) {
	model := newTestModel()
	model.snapshot.Selected = &domain.Ticket{
		ID:     "7",
		Title:  "Impresora rota",
		Status: domain.TicketStatusPending,
	}

	view := model.renderDetail()
	assert.NotContains(t, view, "solo lectura")
	assert.Contains(t, view, model.composer.Placeholder)
}

func TestRenderDetailHistoryPanel(t *testing.T) {
	model := newTestModel()
	model.snapshot.Selected = &domain.Ticket{
		ID:     "7",
		Title:  "Impresora rota",
		Status: domain.TicketStatusInProgress,
	}
	model.showHistory = true
	model.history = []domain.HistoryEntry{
		{ID: "1", Status: domain.TicketStatusPending, Comment: "Ticket creado", Actor: "Laura"},
		{ID: "2", Status: domain.TicketStatusInProgress, Comment: "Asignado al equipo de redes"},
	}

	view := model.renderDetail()
	assert.Contains(t, view, "Historial de estados")
	assert.Contains(t, view, "Asignado al equipo de redes")
	assert.NotContains(t, view, model.composer.Placeholder)
}

func TestRenderTranscriptDeliveryMarkers(t *testing.T) {
	model := newTestModel()
	model.snapshot.Selected = &domain.Ticket{
		ID:     "7",
		Status: domain.TicketStatusPending,
		Messages: []domain.Message{
			{
				ID:        "m1",
				Sender:    "Laura",
				Kind:      domain.SenderKindClient,
				Body:      "sigue sin funcionar",
				Timestamp: time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC),
				Delivery:  domain.DeliveryPending,
			},
			{
				ID:       "m2",
				Sender:   "Laura",
				Kind:     domain.SenderKindClient,
				Body:     "hola?",
				Delivery: domain.DeliveryFailed,
			},
			{
				ID:       "m3",
				Sender:   "Mesa de ayuda",
				Kind:     domain.SenderKindSupport,
				Body:     "lo estamos revisando",
				Delivery: domain.DeliverySent,
			},
		},
	}

	view := model.renderTranscript()
	assert.Contains(t, view, "enviando...")
	assert.Contains(t, view, "no se pudo enviar")
	assert.Contains(t, view, "lo estamos revisando")
}

func TestFormDraftTrimsAndCyclesPriority(t *testing.T) {
	form := newCreateForm()
	form.title.SetValue("  Impresora rota  ")
	form.description.SetValue("No imprime\n")
	form.category.SetValue("Soporte Técnico")

	draft := form.draft()
	assert.Equal(t, "Impresora rota", draft.Title)
	assert.Equal(t, "No imprime", draft.Description)
	assert.Equal(t, domain.TicketPriorityMedium, draft.Priority)

	form.cyclePriority()
	assert.Equal(t, domain.TicketPriorityHigh, form.draft().Priority)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	accented := strings.Repeat("á", 70)
	shortened := truncate(accented, 60)
	assert.True(t, utf8.ValidString(shortened))
	assert.Equal(t, strings.Repeat("á", 57)+"...", shortened)

	assert.Equal(t, "hola", truncate("hola", 60))
}

func TestRenderRowPreviewWithAccents(t *testing.T) {
	model := newTestModel()
	ticket := &domain.Ticket{
		ID:     "7",
		Title:  "Impresora",
		Status: domain.TicketStatusPending,
		Messages: []domain.Message{
			{ID: "m1", Body: strings.Repeat("ñ", 80), Delivery: domain.DeliverySent},
		},
	}
	assert.True(t, utf8.ValidString(model.renderRow(ticket, false)))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "2.0 KB", formatBytes(2048))
	assert.Equal(t, "5.0 MB", formatBytes(5*1024*1024))
}

// consoleBackend is a minimal backend for exercising keyboard flows.
type consoleBackend struct {
	ticket    *domain.Ticket
	sentBody  []string
	sentFiles [][]domain.AttachmentMeta
}

func (b *consoleBackend) FetchUserTickets(ctx context.Context, userID string) *domain.Collection {
	return &domain.Collection{UserID: userID}
}

func (b *consoleBackend) FetchTicket(ctx context.Context, userID, ticketID string) *domain.Ticket {
	if b.ticket == nil || b.ticket.ID != ticketID {
		return nil
	}
	copy := *b.ticket
	return &copy
}

func (b *consoleBackend) FetchTicketMessages(ctx context.Context, ticketID string) []domain.Message {
	return nil
}

func (b *consoleBackend) FetchTicketHistory(ctx context.Context, ticketID string) []domain.HistoryEntry {
	return nil
}

func (b *consoleBackend) SendMessage(ctx context.Context, ticketID, body string, attachments []domain.AttachmentMeta) error {
	b.sentBody = append(b.sentBody, body)
	b.sentFiles = append(b.sentFiles, attachments)
	return nil
}

func (b *consoleBackend) CreateTicket(ctx context.Context, fields rest.CreateTicketFields, files []rest.FilePart) (*domain.Ticket, error) {
	return &domain.Ticket{ID: "99", Title: fields.Title}, nil
}

func TestEnterKeySendsComposer(t *testing.T) {
	backend := &consoleBackend{ticket: &domain.Ticket{
		ID:     "7",
		Title:  "Impresora rota",
		Status: domain.TicketStatusPending,
	}}
	model := newTestModelWithBackend(backend)
	model.session.Select(context.Background(), "7")
	model.snapshot = model.session.Snapshot()
	model.mode = modeDetail
	model.composer.SetValue("hola, sigue sin funcionar")

	updated, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)
	model = updated.(Model)

	result, ok := cmd().(sendResultMsg)
	assert.True(t, ok)
	assert.NoError(t, result.err)
	assert.Equal(t, []string{"hola, sigue sin funcionar"}, backend.sentBody)
}

func TestAttachPromptStagesComposerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captura.png")
	assert.NoError(t, os.WriteFile(path, []byte("detalle del error"), 0o644))

	model := newTestModel()
	model.mode = modeDetail
	model.snapshot.Selected = &domain.Ticket{
		ID:     "7",
		Title:  "Impresora rota",
		Status: domain.TicketStatusPending,
	}

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	model = updated.(Model)
	assert.True(t, model.prompting)

	model.pathPrompt.SetValue(path)
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = updated.(Model)
	assert.False(t, model.prompting)

	staged := model.session.Snapshot().Staged
	if assert.Len(t, staged, 1) {
		assert.Equal(t, "captura.png", staged[0].Name)
		assert.Equal(t, "image/png", staged[0].MimeType)
		assert.Equal(t, int64(len("detalle del error")), staged[0].SizeBytes)
	}
	assert.Contains(t, model.notice, "captura.png")

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	model = updated.(Model)
	assert.Empty(t, model.session.Snapshot().Staged)
}

func TestAttachPromptRejectsDisallowedType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "volcado.bin")
	assert.NoError(t, os.WriteFile(path, []byte("datos binarios"), 0o644))

	model := newTestModel()
	model.mode = modeDetail
	model.snapshot.Selected = &domain.Ticket{ID: "7", Status: domain.TicketStatusPending}

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	model = updated.(Model)
	model.pathPrompt.SetValue(path)
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = updated.(Model)

	assert.Empty(t, model.session.Snapshot().Staged)
	assert.True(t, model.noticeErr)
}

func TestAttachPromptAddsFormAttachment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contrato.pdf")
	assert.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	model := newTestModel()
	model.mode = modeCreate

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	model = updated.(Model)
	assert.True(t, model.prompting)

	model.pathPrompt.SetValue(path)
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = updated.(Model)

	if assert.Len(t, model.form.attachments, 1) {
		assert.Equal(t, "contrato.pdf", model.form.attachments[0].Meta.Name)
		assert.Equal(t, "application/pdf", model.form.attachments[0].Meta.MimeType)
	}
	assert.Len(t, model.form.draft().Attachments, 1)
}
