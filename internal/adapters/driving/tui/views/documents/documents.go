// Package documents provides the job description picker view for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/jdrag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/jdrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/jdrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/jdrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/jdrag/internal/core/ports/driving"
)

// errNoService is reported when the view has no document service.
var errNoService = errors.New("document service not available")

// View lists ingested documents and lets the user pick one to chat with.
type View struct {
	styles          *styles.Styles
	keymap          *keymap.KeyMap
	documentService driving.DocumentService
	ctx             context.Context

	list          *list.DocumentList
	width         int
	height        int
	err           error
	loading       bool
	confirmDelete bool
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, km *keymap.KeyMap, documentService driving.DocumentService) *View {
	return &View{
		styles:          s,
		keymap:          km,
		documentService: documentService,
		ctx:             context.Background(),
		list:            list.NewDocumentList(s),
	}
}

// SetContext sets the context used for service calls.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// Init loads the documents.
func (v *View) Init() tea.Cmd {
	return v.Load()
}

// Load returns a command that lists documents.
func (v *View) Load() tea.Cmd {
	v.loading = true
	ctx := v.ctx
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentsLoaded{Err: errNoService}
		}
		docs, err := v.documentService.List(ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.list.SetDocuments(msg.Documents)
		}
		return v, nil

	case messages.DocumentDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.Load()
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	if v.confirmDelete {
		v.confirmDelete = false
		if key == "y" {
			if doc := v.list.SelectedDocument(); doc != nil {
				return v, v.deleteDocument(doc.ID)
			}
		}
		return v, nil
	}

	switch {
	case keymap.Matches(key, v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(key, v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(key, v.keymap.Select):
		if doc := v.list.SelectedDocument(); doc != nil {
			selected := *doc
			return v, func() tea.Msg {
				return messages.DocumentSelected{Document: selected}
			}
		}
	case keymap.Matches(key, v.keymap.Delete):
		if v.list.SelectedDocument() != nil {
			v.confirmDelete = true
		}
	case keymap.Matches(key, v.keymap.Refresh):
		return v, v.Load()
	}
	return v, nil
}

func (v *View) deleteDocument(id string) tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentDeleted{DocumentID: id, Err: errNoService}
		}
		return messages.DocumentDeleted{DocumentID: id, Err: v.documentService.Delete(ctx, id)}
	}
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Job Descriptions"))
	b.WriteString("\n\n")

	switch {
	case v.loading && v.list.Count() == 0:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	default:
		b.WriteString(v.list.View())
	}

	if v.err != nil {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err)))
	}

	if v.confirmDelete {
		if doc := v.list.SelectedDocument(); doc != nil {
			b.WriteString("\n\n")
			b.WriteString(v.styles.Error.Render(fmt.Sprintf("Delete %s? (y/N)", doc.FileName)))
		}
	}

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	// Title, spacing and error lines.
	v.list.SetDimensions(width, height-4)
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Loading reports whether a load is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Count returns the number of listed documents.
func (v *View) Count() int {
	return v.list.Count()
}

// ConfirmingDelete reports whether a delete confirmation is pending.
func (v *View) ConfirmingDelete() bool {
	return v.confirmDelete
}
