package file

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
)

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
}

func TestNewPromptStore_UsesJDRAGHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, home)

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "prompts"), store.Dir())
}

func TestPromptStore_Defaults(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	metadata, err := store.Load(driven.PromptMetadata)
	require.NoError(t, err)
	assert.Contains(t, metadata, "Return JSON ONLY")
	assert.Contains(t, metadata, `"role" and "seniority"`)
	assert.Equal(t, 1, strings.Count(metadata, "%s"))

	answer, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(answer, "Answer ONLY using the job description"))
	assert.Contains(t, answer, "Not specified in JD.")
	assert.Equal(t, 2, strings.Count(answer, "%s"))
	assert.Less(t, strings.Index(answer, "Context:"), strings.Index(answer, "Question:"))
}

func TestPromptStore_SeedsDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "no I/O before Load")

	_, err = store.Load(driven.PromptAnswer)
	require.NoError(t, err)

	for _, f := range []string{"metadata.txt", "answer.txt"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected %s to be seeded", f)
	}
}

func TestPromptStore_CustomFileWins(t *testing.T) {
	dir := t.TempDir()
	custom := "Summarise as JSON {role, seniority}:\n%s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.txt"), []byte("\n"+custom+"\n\n"), 0o600))
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptMetadata)

	require.NoError(t, err)
	assert.Equal(t, custom, prompt)
}

func TestPromptStore_DoesNotOverwriteCustomFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "answer.txt")
	require.NoError(t, os.WriteFile(path, []byte("mine %s %s"), 0o600))
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptMetadata)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mine %s %s", string(data))
}

func TestPromptStore_BrokenPlaceholdersFallBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "answer.txt"), []byte("Just answer: %s"), 0o600))
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswer)

	require.NoError(t, err)
	assert.Contains(t, prompt, "Answer ONLY using the job description")
}

func TestPromptStore_StrayPercentFallsBack(t *testing.T) {
	dir := t.TempDir()
	custom := "Be 100% accurate.\nContext: %s\nQuestion: %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "answer.txt"), []byte(custom), 0o600))
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswer)

	require.NoError(t, err)
	assert.NotContains(t, prompt, "100%")
	assert.Contains(t, prompt, "Answer ONLY using the job description")
}

func TestValidTemplate(t *testing.T) {
	tests := []struct {
		text string
		want int
		ok   bool
	}{
		{"Context: %s Question: %s", 2, true},
		{"Be 100%% accurate. %s %s", 2, true},
		{"Be 100% accurate. %s %s", 2, false},
		{"%d items: %s", 1, false},
		{"trailing %s %", 1, false},
		{"only %s", 2, false},
		{"no verbs", 0, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ok, validTemplate(tt.text, tt.want), "template %q", tt.text)
	}
}

func TestPromptStore_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("summary")

	assert.ErrorContains(t, err, `unknown prompt "summary"`)
}

func TestPromptStore_UnwritableDirServesDefaults(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	store, err := NewPromptStore(filepath.Join(blocker, "prompts"))
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptMetadata)

	require.NoError(t, err)
	assert.Contains(t, prompt, "Return JSON ONLY")
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptMetadata)
	require.NoError(t, err)

	edited := "Edited %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.txt"), []byte(edited), 0o600))

	cached, err := store.Load(driven.PromptMetadata)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	reloaded, err := store.Load(driven.PromptMetadata)
	require.NoError(t, err)
	assert.Equal(t, edited, reloaded)
}

func TestPromptStore_ConcurrentLoad(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptAnswer)
			assert.NoError(t, err)
			assert.NotEmpty(t, prompt)
		}()
	}
	wg.Wait()
}
