package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/jdrag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/jdrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/jdrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/jdrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/jdrag/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/jdrag/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/jdrag/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	documentsView *documents.View
	chatView      *chat.View
	statusBar     *status.Bar

	// initial, when set, opens the chat directly.
	initial *domain.Document

	currentView messages.ViewType
	err         error
	width       int
	height      int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		keymap:        km,
		documentsView: documents.NewView(s, km, ports.Document),
		chatView:      chat.NewView(s, km, ports.Query),
		statusBar:     status.NewBar(s),
		currentView:   messages.ViewDocuments,
	}
	a.statusBar.SetBindings(km.DocumentsHelp())
	return a, nil
}

// WithContext sets the context for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.documentsView.SetContext(ctx)
	a.chatView.SetContext(ctx)
	return a
}

// WithDocument opens the chat for doc on start instead of the document list.
func (a *App) WithDocument(doc domain.Document) *App {
	a.initial = &doc
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle("jdrag")}
	if a.initial != nil {
		cmds = append(cmds, a.openChat(*a.initial))
	} else {
		a.statusBar.SetState(status.StateLoading)
		cmds = append(cmds, a.documentsView.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// One line for the status bar.
		a.documentsView.SetDimensions(msg.Width, msg.Height-1)
		a.chatView.SetDimensions(msg.Width, msg.Height-1)
		a.statusBar.SetWidth(msg.Width)
		return a, nil

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keymap.Quit) {
			return a, tea.Quit
		}
		switch a.currentView {
		case messages.ViewDocuments:
			a.documentsView, cmd = a.documentsView.Update(msg)
		case messages.ViewChat:
			if keymap.Matches(msg.String(), a.keymap.Back) {
				return a, a.showDocuments()
			}
			a.chatView, cmd = a.chatView.Update(msg)
			a.syncChatStatus()
		}
		return a, cmd

	case messages.ViewChanged:
		if msg.View == messages.ViewDocuments {
			return a, a.showDocuments()
		}
		a.currentView = msg.View
		return a, nil

	case messages.DocumentsLoaded:
		a.documentsView, cmd = a.documentsView.Update(msg)
		a.setErr(msg.Err)
		return a, cmd

	case messages.DocumentDeleted:
		a.documentsView, cmd = a.documentsView.Update(msg)
		a.setErr(msg.Err)
		if msg.Err == nil {
			a.statusBar.SetMessage("Deleted " + msg.DocumentID)
		}
		return a, cmd

	case messages.DocumentSelected:
		return a, a.openChat(msg.Document)

	case messages.AnswerReceived:
		a.chatView, cmd = a.chatView.Update(msg)
		a.setErr(msg.Err)
		return a, cmd

	case messages.ErrorOccurred:
		a.setErr(msg.Err)
		return a, nil
	}

	// Spinner ticks and cursor blinks go to the chat.
	if a.currentView == messages.ViewChat {
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) openChat(doc domain.Document) tea.Cmd {
	a.currentView = messages.ViewChat
	a.err = nil
	a.statusBar.Clear()
	a.statusBar.SetBindings(a.keymap.ChatHelp())
	return tea.Batch(a.chatView.SetDocument(doc), a.chatView.Init())
}

func (a *App) showDocuments() tea.Cmd {
	a.currentView = messages.ViewDocuments
	a.err = nil
	a.statusBar.Clear()
	a.statusBar.SetState(status.StateLoading)
	a.statusBar.SetBindings(a.keymap.DocumentsHelp())
	return a.documentsView.Load()
}

func (a *App) setErr(err error) {
	a.err = err
	if err != nil {
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(err.Error())
		return
	}
	a.statusBar.SetState(status.StateReady)
	a.syncChatStatus()
}

func (a *App) syncChatStatus() {
	if a.currentView == messages.ViewChat && a.chatView.Busy() {
		a.statusBar.SetState(status.StateThinking)
	}
}

// View implements tea.Model.
func (a *App) View() string {
	var body string
	switch a.currentView {
	case messages.ViewChat:
		body = a.chatView.View()
	default:
		body = a.documentsView.View()
	}

	var b strings.Builder
	b.WriteString(body)
	if a.height > 0 {
		// Pin the status bar to the bottom line.
		if pad := a.height - 1 - strings.Count(body, "\n") - 1; pad > 0 {
			b.WriteString(strings.Repeat("\n", pad))
		}
	}
	b.WriteString("\n")
	b.WriteString(a.statusBar.View())
	return b.String()
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error.
func (a *App) Err() error {
	return a.err
}
