// Package chat provides the question and answer view for one job description.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/custodia-labs/jdrag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/jdrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/jdrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/jdrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/ports/driving"
)

// errNoService is reported when the view has no query service.
var errNoService = errors.New("query service not available")

// turn is one question and its answer.
type turn struct {
	question string
	answer   string
	err      error
	pending  bool
}

// View is a chat transcript scoped to a single document.
type View struct {
	styles       *styles.Styles
	keymap       *keymap.KeyMap
	queryService driving.QueryService
	ctx          context.Context

	document *domain.Document
	turns    []turn

	input    *input.QuestionInput
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	width    int
	height   int
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, queryService driving.QueryService) *View {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Spinner

	return &View{
		styles:       s,
		keymap:       km,
		queryService: queryService,
		ctx:          context.Background(),
		input:        input.NewQuestionInput(s),
		viewport:     viewport.New(80, 20),
		spinner:      sp,
		width:        80,
		height:       24,
	}
}

// SetContext sets the context used for service calls.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// SetDocument starts a fresh conversation about doc.
func (v *View) SetDocument(doc domain.Document) tea.Cmd {
	v.document = &doc
	v.turns = nil
	v.input.Reset()
	v.refresh()
	return v.input.Focus()
}

// Document returns the document being discussed, or nil.
func (v *View) Document() *domain.Document {
	return v.document
}

// Init starts the cursor blink.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		if v.document == nil || msg.DocumentID != v.document.ID || len(v.turns) == 0 {
			return v, nil
		}
		last := &v.turns[len(v.turns)-1]
		if !last.pending {
			return v, nil
		}
		last.pending = false
		last.answer = msg.Answer
		last.err = msg.Err
		v.refresh()
		return v, nil

	case spinner.TickMsg:
		if !v.Busy() {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.refresh()
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, v.keymap.Send):
		return v, v.ask()
	case keymap.Matches(key, v.keymap.ScrollUp):
		v.viewport.HalfViewUp()
		return v, nil
	case keymap.Matches(key, v.keymap.ScrollDown):
		v.viewport.HalfViewDown()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask submits the input as a question unless one is already in flight.
func (v *View) ask() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.document == nil || v.Busy() {
		return nil
	}

	v.turns = append(v.turns, turn{question: question, pending: true})
	v.input.Reset()
	v.refresh()

	docID := v.document.ID
	ctx := v.ctx
	askCmd := func() tea.Msg {
		if v.queryService == nil {
			return messages.AnswerReceived{DocumentID: docID, Question: question, Err: errNoService}
		}
		answer, err := v.queryService.Ask(ctx, domain.Query{Question: question, DocumentID: docID})
		return messages.AnswerReceived{DocumentID: docID, Question: question, Answer: answer, Err: err}
	}
	return tea.Batch(askCmd, v.spinner.Tick)
}

// Busy reports whether a question is awaiting its answer.
func (v *View) Busy() bool {
	return len(v.turns) > 0 && v.turns[len(v.turns)-1].pending
}

// Turns returns the number of questions asked so far.
func (v *View) Turns() int {
	return len(v.turns)
}

// LastAnswer returns the most recent answer, or "" while pending.
func (v *View) LastAnswer() string {
	if len(v.turns) == 0 {
		return ""
	}
	return v.turns[len(v.turns)-1].answer
}

// refresh re-renders the transcript into the viewport.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("Ask anything about this job description. Answers use only its text.")
	}

	var b strings.Builder
	for i, t := range v.turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(v.styles.Question.Render("› " + t.question))
		b.WriteString("\n")
		switch {
		case t.pending:
			b.WriteString("  " + v.spinner.View() + v.styles.Muted.Render(" thinking"))
		case t.err != nil:
			b.WriteString(v.styles.Error.Render(fmt.Sprintf("  Error: %v", t.err)))
		default:
			b.WriteString(v.renderMarkdown(t.answer))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderMarkdown(md string) string {
	if v.renderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithStylePath("dracula"),
			glamour.WithWordWrap(v.width-4),
		)
		if err != nil {
			return md
		}
		v.renderer = r
	}
	out, err := v.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// View renders the chat view.
func (v *View) View() string {
	var b strings.Builder

	if v.document != nil {
		b.WriteString(v.styles.Title.Render(v.document.Role))
		b.WriteString(v.styles.Badge.Render(v.document.Seniority))
		b.WriteString(v.styles.Muted.Render("  " + v.document.FileName))
	}
	b.WriteString("\n\n")
	b.WriteString(v.viewport.View())
	b.WriteString("\n\n")
	b.WriteString(v.input.View())
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	if width != v.width {
		v.renderer = nil
	}
	v.width = width
	v.height = height

	// Header (2 lines), spacing (2) and the bordered input (3).
	vpHeight := height - 7
	if vpHeight < 3 {
		vpHeight = 3
	}
	v.viewport.Width = width
	v.viewport.Height = vpHeight
	v.input.SetWidth(width)
	v.refresh()
}
