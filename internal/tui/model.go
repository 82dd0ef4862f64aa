package tui

import (
	"bytes"
	"context"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/api/rest"
	"github.com/spec-kit/ticket-console/internal/attachment"
	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/service"
)

// mode identifies which screen is active.
type mode int

const (
	// modeList shows the user's ticket collection with stats.
	modeList mode = iota
	// modeDetail shows one ticket's conversation and the composer.
	modeDetail
	// modeCreate shows the new-ticket form.
	modeCreate
)

// StateRefreshedMsg tells the program that session state changed
// outside the message loop (poll tick or mutation refresh). The main
// binary forwards refresher notifications through Program.Send.
type StateRefreshedMsg struct{}

// sendResultMsg reports a completed composer submission.
type sendResultMsg struct {
	err error
}

// createResultMsg reports a completed ticket creation.
type createResultMsg struct {
	ticket *domain.Ticket
	err    error
}

// ticketOpenedMsg is sent when a Select round trip finishes.
type ticketOpenedMsg struct{}

// historyLoadedMsg carries the selected ticket's status trail.
type historyLoadedMsg struct {
	entries []domain.HistoryEntry
}

// noticeFadeMsg clears the status notice after a short delay.
type noticeFadeMsg struct{}

// noticeFadeDelay is how long a status notice stays visible.
const noticeFadeDelay = 4 * time.Second

// Model is the bubbletea model for the console. All ticket state
// lives in the session; the model only holds presentation state and
// reads immutable snapshots.
type Model struct {
	session    *service.Session
	formPolicy attachment.Policy
	logger     *zap.Logger
	keys       KeyMap
	theme      Theme

	mode   mode
	cursor int
	width  int
	height int

	transcript viewport.Model
	composer   textarea.Model
	form       createForm

	// Attachment path prompt, shared by the composer and the form.
	pathPrompt textinput.Model
	prompting  bool

	snapshot service.Snapshot

	showHistory bool
	history     []domain.HistoryEntry

	notice    string
	noticeErr bool
}

// ModelDependencies bundles collaborators for the model.
type ModelDependencies struct {
	Session    *service.Session
	FormPolicy attachment.Policy
	Logger     *zap.Logger
}

// NewModel constructs the console model.
func NewModel(deps ModelDependencies) Model {
	composer := textarea.New()
	composer.Placeholder = "Escribe un mensaje..."
	composer.SetHeight(3)
	composer.ShowLineNumbers = false

	pathPrompt := textinput.New()
	pathPrompt.Placeholder = "Ruta del archivo..."

	return Model{
		session:    deps.Session,
		formPolicy: deps.FormPolicy,
		logger:     deps.Logger,
		keys:       DefaultKeyMap,
		theme:      DefaultTheme,
		transcript: viewport.New(0, 0),
		composer:   composer,
		pathPrompt: pathPrompt,
		form:       newCreateForm(),
		snapshot:   deps.Session.Snapshot(),
	}
}

// Init loads the collection on startup.
func (m Model) Init() tea.Cmd {
	return m.refreshCollectionCmd()
}

// Update routes messages by kind and then by active screen.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.transcript.Width = message.Width - 4
		m.transcript.Height = message.Height - 12
		m.composer.SetWidth(message.Width - 4)
		m.form.setWidth(message.Width - 4)
		return m, nil

	case StateRefreshedMsg:
		m.snapshot = m.session.Snapshot()
		if m.mode == modeDetail {
			m.syncTranscript()
		}
		return m, nil

	case ticketOpenedMsg:
		m.snapshot = m.session.Snapshot()
		m.syncTranscript()
		return m, nil

	case historyLoadedMsg:
		m.history = message.entries
		m.showHistory = true
		return m, nil

	case sendResultMsg:
		m.snapshot = m.session.Snapshot()
		m.syncTranscript()
		if message.err != nil {
			m.logger.Warn("message send failed", zap.Error(message.err))
			return m.withNotice("No se pudo enviar el mensaje: "+message.err.Error(), true)
		}
		m.composer.Reset()
		return m.withNotice("Mensaje enviado", false)

	case createResultMsg:
		m.snapshot = m.session.Snapshot()
		if message.err != nil {
			m.form.submitError = message.err
			return m, nil
		}
		m.mode = modeDetail
		m.form = newCreateForm()
		m.form.setWidth(m.width - 4)
		m.syncTranscript()
		return m.withNotice("Ticket creado", false)

	case noticeFadeMsg:
		m.notice = ""
		m.noticeErr = false
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeDetail:
			return m.handleDetailKeys(message)
		case modeCreate:
			return m.handleCreateKeys(message)
		default:
			return m.handleListKeys(message)
		}
	}
	return m, nil
}

func (m Model) handleListKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	tickets := m.listTickets()
	switch {
	case key.Matches(message, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(message, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(message, m.keys.Down):
		if m.cursor < len(tickets)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(message, m.keys.Open):
		if m.cursor >= len(tickets) {
			return m, nil
		}
		m.mode = modeDetail
		m.showHistory = false
		m.history = nil
		m.composer.Focus()
		return m, m.openTicketCmd(tickets[m.cursor].ID)

	case key.Matches(message, m.keys.New):
		m.mode = modeCreate
		m.form = newCreateForm()
		m.form.setWidth(m.width - 4)
		return m, textarea.Blink

	case key.Matches(message, m.keys.Refresh):
		return m, m.refreshCollectionCmd()
	}
	return m, nil
}

func (m Model) handleDetailKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompting {
		return m.handlePromptKeys(message)
	}

	switch {
	case message.Type == tea.KeyCtrlC:
		return m, tea.Quit

	case key.Matches(message, m.keys.Back):
		if m.showHistory {
			m.showHistory = false
			return m, nil
		}
		m.mode = modeList
		m.composer.Reset()
		m.session.Deselect()
		m.snapshot = m.session.Snapshot()
		return m, nil

	case key.Matches(message, m.keys.History):
		if m.showHistory {
			m.showHistory = false
			return m, nil
		}
		return m, m.loadHistoryCmd()

	case key.Matches(message, m.keys.Attach):
		if m.snapshot.Selected == nil || !m.snapshot.Selected.AcceptsMessages() {
			return m, nil
		}
		return m.openPrompt()

	case key.Matches(message, m.keys.Unstage):
		if count := len(m.snapshot.Staged); count > 0 {
			m.session.UnstageAttachment(count - 1)
			m.snapshot = m.session.Snapshot()
		}
		return m, nil

	case key.Matches(message, m.keys.Send):
		body := m.composer.Value()
		return m, m.sendMessageCmd(body)
	}

	// Resolved tickets have no composer; remaining keys scroll the
	// transcript.
	if m.snapshot.Selected != nil && !m.snapshot.Selected.AcceptsMessages() {
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(message)
		return m, cmd
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(message)
	return m, cmd
}

func (m Model) handleCreateKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompting {
		return m.handlePromptKeys(message)
	}

	switch {
	case message.Type == tea.KeyCtrlC:
		return m, tea.Quit

	case key.Matches(message, m.keys.Back):
		m.mode = modeList
		return m, nil

	case key.Matches(message, m.keys.Attach):
		return m.openPrompt()

	case key.Matches(message, m.keys.NextField):
		m.form.focusNext()
		return m, nil

	case key.Matches(message, m.keys.PriorityUp):
		m.form.cyclePriority()
		return m, nil

	case key.Matches(message, m.keys.Submit):
		draft := m.form.draft()
		if err := service.ValidateDraft(draft); err != nil {
			m.form.submitError = err
			return m, nil
		}
		m.form.submitError = nil
		return m, m.createTicketCmd(draft)
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(message)
	return m, cmd
}

// openPrompt shows the attachment path prompt.
func (m Model) openPrompt() (tea.Model, tea.Cmd) {
	m.prompting = true
	m.pathPrompt.Reset()
	m.pathPrompt.Focus()
	return m, textinput.Blink
}

// handlePromptKeys routes input while the path prompt is open. Enter
// confirms, escape cancels, everything else edits the path.
func (m Model) handlePromptKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEscape:
		m.prompting = false
		m.pathPrompt.Blur()
		return m, nil

	case tea.KeyEnter:
		path := strings.TrimSpace(m.pathPrompt.Value())
		m.prompting = false
		m.pathPrompt.Blur()
		if path == "" {
			return m, nil
		}
		if m.mode == modeCreate {
			return m.attachToForm(path)
		}
		return m.stageForComposer(path)
	}

	var cmd tea.Cmd
	m.pathPrompt, cmd = m.pathPrompt.Update(message)
	return m, cmd
}

// stageForComposer stats the file and pushes it through the session's
// composer policy.
func (m Model) stageForComposer(path string) (tea.Model, tea.Cmd) {
	meta, err := attachment.MetaFromFile(path)
	if err != nil {
		return m.withNotice(err.Error(), true)
	}
	rejected := m.session.StageAttachments([]domain.AttachmentMeta{meta})
	m.snapshot = m.session.Snapshot()
	if rejected > 0 {
		return m.withNotice("Adjunto rechazado por la política de archivos: "+meta.Name, true)
	}
	return m.withNotice("Adjunto agregado: "+meta.Name, false)
}

// attachToForm validates the file against the form policy and loads its
// content so ticket creation can carry it as a multipart part.
func (m Model) attachToForm(path string) (tea.Model, tea.Cmd) {
	meta, err := attachment.MetaFromFile(path)
	if err != nil {
		return m.withNotice(err.Error(), true)
	}
	if err := m.formPolicy.Validate(meta); err != nil {
		return m.withNotice("Adjunto rechazado por la política de archivos: "+meta.Name, true)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return m.withNotice("No se pudo leer el archivo: "+meta.Name, true)
	}
	m.form.attachments = append(m.form.attachments, rest.FilePart{
		Meta:    meta,
		Content: bytes.NewReader(data),
	})
	return m.withNotice("Adjunto agregado: "+meta.Name, false)
}

// View renders the active screen plus the shared status bar.
func (m Model) View() string {
	var body string
	switch m.mode {
	case modeDetail:
		body = m.renderDetail()
	case modeCreate:
		body = m.renderForm()
	default:
		body = m.renderList()
	}
	return body + "\n" + m.renderStatusBar()
}

// listTickets returns the collection's tickets, or nil before the
// first successful load.
func (m Model) listTickets() []domain.Ticket {
	if m.snapshot.Collection == nil {
		return nil
	}
	return m.snapshot.Collection.Tickets
}

// syncTranscript rebuilds the conversation viewport and pins it to
// the newest message.
func (m *Model) syncTranscript() {
	m.transcript.SetContent(m.renderTranscript())
	m.transcript.GotoBottom()
}

// withNotice sets the status notice and schedules its fade.
func (m Model) withNotice(text string, isError bool) (tea.Model, tea.Cmd) {
	m.notice = text
	m.noticeErr = isError
	return m, tea.Tick(noticeFadeDelay, func(time.Time) tea.Msg {
		return noticeFadeMsg{}
	})
}

func (m Model) refreshCollectionCmd() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		session.RefreshCollection(context.Background())
		return StateRefreshedMsg{}
	}
}

func (m Model) openTicketCmd(ticketID string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		session.Select(context.Background(), ticketID)
		return ticketOpenedMsg{}
	}
}

func (m Model) loadHistoryCmd() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		return historyLoadedMsg{entries: session.SelectedHistory(context.Background())}
	}
}

func (m Model) sendMessageCmd(body string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		return sendResultMsg{err: session.SendMessage(context.Background(), body)}
	}
}

func (m Model) createTicketCmd(draft service.TicketDraft) tea.Cmd {
	session := m.session
	policy := m.formPolicy
	return func() tea.Msg {
		ticket, err := session.CreateTicket(context.Background(), draft, policy)
		return createResultMsg{ticket: ticket, err: err}
	}
}
