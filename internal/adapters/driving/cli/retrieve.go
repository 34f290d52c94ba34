package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jdrag/internal/core/domain"
)

var (
	retrieveK    int
	retrieveJSON bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [document-id] [question]",
	Short: "Show the chunks retrieved for a question",
	Long:  `Runs retrieval only and prints the best matching chunks with their scores.`,
	Args:  cobra.MinimumNArgs(2),
	RunE:  runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveK, "top-k", "k", domain.DefaultTopK, "number of chunks to return")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return fmt.Errorf("query service %w", errNotConfigured)
	}

	query := domain.Query{
		DocumentID: args[0],
		Question:   strings.Join(args[1:], " "),
	}

	chunks, err := queryService.Retrieve(commandContext(cmd), query, retrieveK)
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	if retrieveJSON {
		data, err := json.MarshalIndent(chunks, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(chunks) == 0 {
		cmd.Println("No chunks found.")
		return nil
	}

	cmd.Println("Chunks:")
	cmd.Println()
	for i := range chunks {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, chunks[i].ChunkID, chunks[i].Score)
		cmd.Printf("      %s\n", snippet(chunks[i].Content, 160))
		cmd.Println()
	}
	return nil
}

// snippet flattens whitespace and truncates s to n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
