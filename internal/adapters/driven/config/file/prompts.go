package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed prompts/*.txt
var defaultPrompts embed.FS

// placeholders is the number of %s verbs each prompt must keep. A user file
// with a different count would garble the request, so the default is used.
var placeholders = map[string]int{
	driven.PromptMetadata: 1,
	driven.PromptAnswer:   2,
}

// PromptStore serves prompt templates from <dir>/<name>.txt, falling back to
// the defaults compiled into the binary. The directory is seeded with the
// defaults on first Load so users have something to edit.
type PromptStore struct {
	dir string

	seedOnce sync.Once

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore creates a store over promptDir, or prompts/ under DefaultDir
// when promptDir is empty. No I/O happens until Load.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(dir, "prompts")
	}
	return &PromptStore{dir: promptDir, cache: make(map[string]string)}, nil
}

// Load returns the template called name.
func (s *PromptStore) Load(name string) (string, error) {
	def, err := defaultPrompt(name)
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	s.seedOnce.Do(s.seed)

	prompt := def
	if custom, err := os.ReadFile(s.path(name)); err == nil {
		text := strings.TrimSpace(string(custom))
		if validTemplate(text, placeholders[name]) {
			prompt = text
		}
	}

	s.mu.Lock()
	s.cache[name] = prompt
	s.mu.Unlock()
	return prompt, nil
}

// Reload drops cached templates so edits on disk are picked up.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// validTemplate reports whether text has exactly want %s verbs and no other
// verb besides %%.
func validTemplate(text string, want int) bool {
	got := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '%' {
			continue
		}
		if i+1 == len(text) {
			return false
		}
		i++
		switch text[i] {
		case 's':
			got++
		case '%':
		default:
			return false
		}
	}
	return got == want
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// seed writes the defaults that are missing on disk. Failures only mean the
// embedded defaults keep being served.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return
	}
	for name := range placeholders {
		path := s.path(name)
		if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if def, err := defaultPrompt(name); err == nil {
			_ = os.WriteFile(path, []byte(def+"\n"), 0o600)
		}
	}
}

func defaultPrompt(name string) (string, error) {
	if _, known := placeholders[name]; !known {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	raw, err := defaultPrompts.ReadFile("prompts/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
	return strings.TrimSpace(string(raw)), nil
}
