package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jdrag/internal/core/domain"
)

func TestDocumentCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(documentCmd.Commands()))
	for _, cmd := range documentCmd.Commands() {
		names = append(names, cmd.Name())
	}

	assert.ElementsMatch(t, []string{"list", "get", "delete"}, names)
}

func TestDocumentList(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "document", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "doc-1")
	assert.Contains(t, out, "Role:      Backend Engineer (Senior)")
	assert.Contains(t, out, "Total: 2 documents")
}

func TestDocumentList_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "document", "list", "--json")

	require.NoError(t, err)
	var docs []domain.Document
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	assert.Len(t, docs, 2)
	assert.Equal(t, "doc-2", docs[1].ID)
}

func TestDocumentGet(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "document", "get", "doc-2")

	require.NoError(t, err)
	assert.Contains(t, out, "Document: doc-2")
	assert.Contains(t, out, "Type:      text/plain")
	assert.Contains(t, out, "Seniority: Junior")
	assert.Contains(t, out, "Chunks:    2")
}

func TestDocumentGet_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand(t, "document", "get", "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentGet_RequiresID(t *testing.T) {
	_, err := executeCommand(t, "document", "get")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestDocumentDelete(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "document", "delete", "doc-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1"}, ts.document.deleted)
	assert.Contains(t, out, "Document doc-1 deleted.")
}
