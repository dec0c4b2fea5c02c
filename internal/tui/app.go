// internal/tui/app.go
//
// The chat front end for authoring a blueprint. It uses bubbletea, which
// follows The Elm Architecture:
//
// 1. Model: the conversation, the machine position and the widgets
// 2. Update: applies key presses and session replies to the model
// 3. View: renders the model to a string
//
// Every turn goes through session.Handle, so the terminal and the HTTP
// surface share one conversation model.

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/blueprint/internal/artifact"
	"github.com/kingrea/blueprint/internal/blueprint"
	"github.com/kingrea/blueprint/internal/logbook"
	"github.com/kingrea/blueprint/internal/session"
	"github.com/kingrea/blueprint/internal/store"
	"github.com/kingrea/blueprint/internal/workflow"
	"github.com/kingrea/blueprint/internal/workflow/engine"
)

// appState represents which "screen" we're on
type appState int

const (
	stateDocumentSelect appState = iota // Pick a saved blueprint or start a new one
	stateChat                           // The authoring conversation
	statePreview                        // Rendered markdown of the current document
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	sidebarWidth  = 30
	inputHeight   = 3
	turnTimeout   = 2 * time.Minute
)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithDocuments shows a picker of saved blueprints before the conversation
// starts. The machine is resumed on the chosen id.
func WithDocuments(docs []store.Summary) AppOption {
	return func(a *App) {
		a.pickDocument = true
		a.summaries = append([]store.Summary(nil), docs...)
	}
}

// WithJournal records session lifecycle lines in the project journal.
func WithJournal(journal *logbook.Logbook) AppOption {
	return func(a *App) {
		if journal != nil {
			a.journal = journal
		}
	}
}

// WithContext sets the parent context of every session turn.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.ctx = ctx
		}
	}
}

type replyMsg struct {
	reply session.Reply
	err   error
}

type resumedMsg struct {
	reply session.Reply
	err   error
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state   appState
	session *session.Session
	journal *logbook.Logbook
	ctx     context.Context

	pickDocument bool
	summaries    []store.Summary

	// UI components
	documents  list.Model
	transcript viewport.Model
	preview    viewport.Model
	input      textarea.Model
	progress   progress.Model

	messages  []blueprint.ChatMessage
	current   engine.State
	started   bool
	pending   bool
	statusMsg string
	err       error

	width  int
	height int
}

// documentItem implements list.Item for the picker.
type documentItem struct {
	id    string
	title string
	desc  string
}

func (i documentItem) Title() string       { return i.title }
func (i documentItem) Description() string { return i.desc }
func (i documentItem) FilterValue() string { return i.title }

// NewApp creates the chat application over sess.
func NewApp(sess *session.Session, opts ...AppOption) *App {
	input := textarea.New()
	input.Placeholder = "Type an answer, or say help, ideas, what if, continue, back..."
	input.ShowLineNumbers = false
	input.CharLimit = 4000
	input.KeyMap.InsertNewline.SetEnabled(false)
	input.SetHeight(inputHeight)
	input.Focus()

	app := &App{
		state:      stateChat,
		session:    sess,
		ctx:        context.Background(),
		transcript: viewport.New(defaultWidth, defaultHeight),
		preview:    viewport.New(defaultWidth, defaultHeight),
		input:      input,
		progress:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(sidebarWidth-6)),
		width:      defaultWidth,
		height:     defaultHeight,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.documents = list.New(app.documentItems(), list.NewDefaultDelegate(), 0, 0)
	app.documents.Title = "Blueprints"
	app.documents.SetShowStatusBar(false)
	app.documents.SetFilteringEnabled(false)
	if app.pickDocument {
		app.state = stateDocumentSelect
	}
	app.layout()
	return app
}

func (a *App) documentItems() []list.Item {
	items := []list.Item{documentItem{title: "New blueprint", desc: "Start from the welcome step"}}
	for _, doc := range a.summaries {
		subject := strings.TrimSpace(doc.Subject)
		if subject == "" {
			subject = doc.ID
		}
		items = append(items, documentItem{
			id:    doc.ID,
			title: subject,
			desc:  fmt.Sprintf("%s · %s · updated %s", doc.ID, doc.Stage.Label(), doc.Updated.Format("2006-01-02 15:04")),
		})
	}
	return items
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	if a.state == stateDocumentSelect {
		return nil
	}
	return a.start()
}

func (a *App) start() tea.Cmd {
	sess := a.session
	return func() tea.Msg {
		return resumedMsg{reply: sess.Start()}
	}
}

func (a *App) resume(id string) tea.Cmd {
	sess := a.session
	ctx := a.ctx
	return func() tea.Msg {
		if _, err := sess.Machine().Resume(ctx, id); err != nil {
			return resumedMsg{err: err}
		}
		return resumedMsg{reply: sess.Start()}
	}
}

func (a *App) submit(text string) tea.Cmd {
	sess := a.session
	parent := a.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, turnTimeout)
		defer cancel()
		reply, err := sess.Handle(ctx, text)
		return replyMsg{reply: reply, err: err}
	}
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		return a, nil

	case resumedMsg:
		if msg.err != nil {
			a.err = msg.err
			a.logError("Resume failed: %v", msg.err)
			return a, nil
		}
		a.state = stateChat
		a.started = true
		a.err = nil
		a.logInfo("Session opened · document %s at %s", msg.reply.State.DocumentID, msg.reply.State.Title)
		a.applyReply(msg.reply)
		return a, nil

	case replyMsg:
		a.pending = false
		if msg.err != nil {
			a.err = msg.err
			a.statusMsg = "That turn failed. Try again."
			a.logError("Turn failed: %v", msg.err)
			return a, nil
		}
		a.err = nil
		a.applyReply(msg.reply)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.state {
		case stateDocumentSelect:
			return a.updateDocumentSelect(msg)
		case statePreview:
			return a.updatePreview(msg)
		default:
			return a.updateChat(msg)
		}
	}

	if a.state == stateChat {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) updateDocumentSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return a, tea.Quit
	case "enter":
		item, ok := a.documents.SelectedItem().(documentItem)
		if !ok {
			return a, nil
		}
		a.statusMsg = "Opening blueprint..."
		return a, a.resume(item.id)
	}
	var cmd tea.Cmd
	a.documents, cmd = a.documents.Update(msg)
	return a, cmd
}

func (a *App) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+p", "q":
		a.state = stateChat
		return a, nil
	}
	var cmd tea.Cmd
	a.preview, cmd = a.preview.Update(msg)
	return a, cmd
}

func (a *App) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return a, tea.Quit
	case "ctrl+p":
		if err := a.openPreview(); err != nil {
			a.err = err
			return a, nil
		}
		a.state = statePreview
		return a, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		a.transcript, cmd = a.transcript.Update(msg)
		return a, cmd
	case "enter":
		text := strings.TrimSpace(a.input.Value())
		if text == "" || a.pending || !a.started {
			return a, nil
		}
		a.input.Reset()
		a.pending = true
		a.statusMsg = "Thinking..."
		a.messages = append(a.messages, blueprint.NewMessage(blueprint.RoleUser, text, time.Now()))
		a.refreshTranscript()
		return a, a.submit(text)
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// applyReply appends the assistant messages of reply. The user message of
// the turn was already added when it was submitted.
func (a *App) applyReply(reply session.Reply) {
	for _, m := range reply.Messages {
		if m.Role == blueprint.RoleUser {
			continue
		}
		a.messages = append(a.messages, m)
	}
	if reply.State.DocumentID != "" {
		a.current = reply.State
	}
	a.statusMsg = fmt.Sprintf("%s · %s", a.current.Stage.Label(), a.current.Title)
	if a.current.Step == workflow.StepComplete {
		a.statusMsg = "Blueprint complete. Ctrl+P previews it."
	}
	a.refreshTranscript()
}

func (a *App) openPreview() error {
	doc := a.session.Machine().ExportDocument()
	md, err := artifact.RenderMarkdown(doc)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	styled, err := artifact.RenderTerminal(md, max(20, a.preview.Width-2))
	if err != nil {
		return fmt.Errorf("render terminal: %w", err)
	}
	a.preview.SetContent(styled)
	a.preview.GotoTop()
	return nil
}

func (a *App) layout() {
	chatWidth := a.chatWidth()
	bodyHeight := max(5, a.height-inputHeight-8)
	a.transcript.Width = chatWidth
	a.transcript.Height = bodyHeight
	a.input.SetWidth(chatWidth)
	a.preview.Width = max(20, a.width-4)
	a.preview.Height = max(5, a.height-6)
	a.documents.SetSize(max(0, a.width-6), max(0, a.height-8))
	a.refreshTranscript()
}

func (a *App) chatWidth() int {
	width := a.width - 4
	if a.showSidebar() {
		width -= sidebarWidth + 4
	}
	return max(20, width)
}

func (a *App) showSidebar() bool {
	return a.width >= 80
}

func (a *App) refreshTranscript() {
	a.transcript.SetContent(renderMessages(a.messages, a.transcript.Width))
	a.transcript.GotoBottom()
}

func (a *App) logInfo(format string, args ...any) {
	if a.journal == nil {
		return
	}
	a.journal.Info(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.journal == nil {
		return
	}
	a.journal.Error(format, args...)
}

// View renders the current screen.
func (a *App) View() string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("⬡ BLUEPRINT")

	var body string
	switch a.state {
	case stateDocumentSelect:
		body = a.renderDocumentSelection()
	case statePreview:
		body = a.renderPreview()
	default:
		body = a.renderChat()
	}
	sections := []string{header, body}
	if a.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("⚠ %v", a.err)))
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg)
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderDocumentSelection() string {
	hint := hintStyle.Render("Enter → open blueprint    Esc → quit")
	return lipgloss.JoinVertical(lipgloss.Left, a.documents.View(), hint)
}

func (a *App) renderPreview() string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(a.preview.View())
	hint := hintStyle.Render("↑/↓ scroll    Esc → back to the conversation")
	return lipgloss.JoinVertical(lipgloss.Left, box, hint)
}

func (a *App) renderChat() string {
	left := lipgloss.JoinVertical(lipgloss.Left,
		a.transcript.View(),
		"",
		a.input.View(),
	)
	leftBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(a.chatWidth() + 2).
		Render(left)
	body := leftBox
	if a.showSidebar() {
		right := lipgloss.JoinVertical(lipgloss.Left,
			renderJourney(a.current, sidebarWidth-2),
			"",
			a.progress.ViewAs(float64(a.current.Progress.Percentage)/100),
		)
		rightBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			Width(sidebarWidth).
			Render(right)
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	}
	hint := hintStyle.Render("Enter → send    PgUp/PgDn → scroll    Ctrl+P → preview    Esc → quit")
	return lipgloss.JoinVertical(lipgloss.Left, body, hint)
}
