// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/jdrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/jdrag/internal/core/domain"
)

// linesPerItem is the height of one rendered document.
const linesPerItem = 2

// DocumentList displays ingested documents in a navigable list.
type DocumentList struct {
	documents []domain.Document
	selected  int
	styles    *styles.Styles
	width     int
	height    int
}

// NewDocumentList creates a new document list component.
func NewDocumentList(s *styles.Styles) *DocumentList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &DocumentList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// View renders the document list.
func (l *DocumentList) View() string {
	if len(l.documents) == 0 {
		return l.styles.Muted.Render("No job descriptions yet. Run 'jdrag ingest <file>' to add one.")
	}

	visible := l.height / linesPerItem
	if visible < 1 {
		visible = 1
	}

	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.documents) {
		end = len(l.documents)
	}

	lines := make([]string, 0, (end-start)*linesPerItem)
	for i := start; i < end; i++ {
		lines = append(lines, l.renderDocument(i, &l.documents[i]))
	}
	return strings.Join(lines, "\n")
}

// renderDocument formats one document as a title line and a detail line.
func (l *DocumentList) renderDocument(index int, doc *domain.Document) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	title := truncate(fmt.Sprintf("%s · %s", doc.Role, doc.Seniority), l.width-4)

	var titleLine string
	if index == l.selected {
		titleLine = l.styles.Selected.Render(indicator + title)
	} else {
		titleLine = l.styles.Normal.Render(indicator + title)
	}

	detail := fmt.Sprintf("    %s  %d chunks  %s",
		doc.FileName, doc.ChunkCount, doc.CreatedAt.Format("2006-01-02 15:04"))
	return titleLine + "\n" + l.styles.Muted.Render(truncate(detail, l.width))
}

func truncate(s string, n int) string {
	if n < 10 {
		n = 10
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// SetDocuments replaces the list contents, keeping the selection in range.
func (l *DocumentList) SetDocuments(docs []domain.Document) {
	l.documents = docs
	if l.selected >= len(docs) {
		l.selected = len(docs) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

// Documents returns the current documents.
func (l *DocumentList) Documents() []domain.Document {
	return l.documents
}

// Selected returns the index of the selected document.
func (l *DocumentList) Selected() int {
	return l.selected
}

// SelectedDocument returns the currently selected document, or nil if none.
func (l *DocumentList) SelectedDocument() *domain.Document {
	if len(l.documents) == 0 {
		return nil
	}
	return &l.documents[l.selected]
}

// MoveUp moves selection up.
func (l *DocumentList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *DocumentList) MoveDown() {
	if l.selected < len(l.documents)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *DocumentList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of documents.
func (l *DocumentList) Count() int {
	return len(l.documents)
}
