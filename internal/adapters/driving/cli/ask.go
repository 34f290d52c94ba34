package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jdrag/internal/core/domain"
)

var (
	askRaw  bool
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [document-id] [question]",
	Short: "Ask a question about a job description",
	Long: `Answers a question using only the chunks of one ingested job description.
If nothing relevant is stored the answer is "No context found in JD."`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askRaw, "raw", false, "print the answer without markdown rendering")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return fmt.Errorf("query service %w", errNotConfigured)
	}

	query := domain.Query{
		DocumentID: args[0],
		Question:   strings.Join(args[1:], " "),
	}

	answer, err := queryService.Ask(commandContext(cmd), query)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	switch {
	case askJSON:
		data, err := json.Marshal(map[string]string{"answer": answer})
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
	case askRaw:
		cmd.Println(answer)
	default:
		cmd.Println(renderMarkdown(cmd.OutOrStdout(), answer))
	}
	return nil
}
