package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/jdrag/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat [document-id]",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal UI. Pick a job description from the list and
ask questions about it; with a document ID the chat opens directly.

Controls:
  ↑/k, ↓/j - Navigate documents
  Enter    - Open / Send question
  d        - Delete document
  r        - Refresh list
  Esc      - Back to documents
  Ctrl+C   - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if queryService == nil || documentService == nil {
		return fmt.Errorf("services %w", errNotConfigured)
	}

	ctx := commandContext(cmd)
	app, err := tui.NewApp(&tui.Ports{
		Query:    queryService,
		Document: documentService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)

	if len(args) == 1 {
		doc, err := documentService.Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get document: %w", err)
		}
		app.WithDocument(*doc)
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
