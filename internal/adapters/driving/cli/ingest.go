package cli

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jdrag/internal/core/domain"
)

var (
	ingestMIMEType string
	ingestJSON     bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest job description files",
	Long: `Extracts text from each file, detects the role and seniority, splits the text
into overlapping chunks and stores their embeddings.

Supported formats: pdf (requires pdftotext), docx, txt, md, html.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestMIMEType, "mime", "", "media type (guessed from the extension when empty)")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(ingestCmd)
}

type ingestOutput struct {
	File          string `json:"file"`
	DocumentID    string `json:"documentId,omitempty"`
	Role          string `json:"role,omitempty"`
	Seniority     string `json:"seniority,omitempty"`
	ChunksStored  int    `json:"chunksStored"`
	ChunksSkipped int    `json:"chunksSkipped"`
	Error         string `json:"error,omitempty"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return fmt.Errorf("ingest service %w", errNotConfigured)
	}

	ctx := commandContext(cmd)
	outputs := make([]ingestOutput, 0, len(args))
	failed := 0

	for _, path := range args {
		out := ingestOutput{File: path}
		res, err := ingestFile(cmd, path)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failed++
			out.Error = err.Error()
		} else {
			out.DocumentID = res.DocumentID
			out.Role = res.Role
			out.Seniority = res.Seniority
			out.ChunksStored = res.ChunksStored
			out.ChunksSkipped = res.ChunksSkipped
		}
		outputs = append(outputs, out)

		if !ingestJSON {
			printIngestOutput(cmd, out)
		}
	}

	if ingestJSON {
		data, err := json.MarshalIndent(outputs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to ingest", failed, len(args))
	}
	return nil
}

func ingestFile(cmd *cobra.Command, path string) (*domain.IngestResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	mimeType := ingestMIMEType
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(path))
	}

	return ingestService.Ingest(commandContext(cmd), &domain.RawDocument{
		FileName: filepath.Base(path),
		MIMEType: mimeType,
		Content:  content,
	})
}

func printIngestOutput(cmd *cobra.Command, out ingestOutput) {
	if out.Error != "" {
		cmd.Printf("%s: failed: %s\n", out.File, out.Error)
		return
	}
	cmd.Printf("%s\n", out.File)
	cmd.Printf("  Document:  %s\n", out.DocumentID)
	cmd.Printf("  Role:      %s\n", out.Role)
	cmd.Printf("  Seniority: %s\n", out.Seniority)
	cmd.Printf("  Chunks:    %d stored", out.ChunksStored)
	if out.ChunksSkipped > 0 {
		cmd.Printf(", %d skipped", out.ChunksSkipped)
	}
	cmd.Println()
}
