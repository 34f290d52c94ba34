package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jdrag/internal/adapters/driving/watch"
	"github.com/custodia-labs/jdrag/internal/logger"
)

var watchSettle time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest files as they appear in a directory",
	Long: `Watches a directory and ingests every supported file that is created or
rewritten in it. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchSettle, "settle", watch.DefaultSettle, "quiet period before a file is ingested")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return fmt.Errorf("ingest service %w", errNotConfigured)
	}

	w, err := watch.New(args[0], ingestService, supportedExtensions,
		watch.WithSettle(watchSettle),
		watch.WithLogger(logger.L()),
	)
	if err != nil {
		return err
	}

	results, err := w.Watch(commandContext(cmd))
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	for res := range results {
		if res.Err != nil {
			cmd.Printf("%s: failed: %v\n", res.Path, res.Err)
			continue
		}
		cmd.Printf("%s: %s (%s, %s)\n", res.Path, res.Ingest.DocumentID, res.Ingest.Role, res.Ingest.Seniority)
	}
	return nil
}
