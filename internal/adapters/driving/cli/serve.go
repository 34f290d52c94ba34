package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jdrag/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/jdrag/internal/logger"
)

var (
	serveAddr        string
	serveMaxUploadMB int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the JSON HTTP API.

Endpoints:
  POST   /api/upload          multipart field "file"; returns {documentId, role, seniority}
  POST   /api/chat            {question, documentId}; returns {answer}
  GET    /api/documents       list ingested documents
  GET    /api/documents/:id   show one document
  DELETE /api/documents/:id   delete a document and its chunks
  GET    /healthz             liveness

Errors are returned as {error} with status 400, 404 or 500.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", ":8080", "listen address")
	serveCmd.Flags().IntVar(&serveMaxUploadMB, "max-upload-mb", 10, "maximum upload size in MiB")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if ingestService == nil || queryService == nil || documentService == nil {
		return fmt.Errorf("services %w", errNotConfigured)
	}

	server, err := httpapi.NewServer(httpapi.Services{
		Ingest:   ingestService,
		Query:    queryService,
		Document: documentService,
	}, logger.L(), httpapi.WithMaxUploadBytes(int64(serveMaxUploadMB)<<20))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "HTTP API listening on %s\n", serveAddr)
	return server.Run(commandContext(cmd), serveAddr)
}
