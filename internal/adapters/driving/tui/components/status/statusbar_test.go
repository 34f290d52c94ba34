package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jdrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/jdrag/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		message string
		want    string
	}{
		{"ready", StateReady, "", "Ready"},
		{"ready with message", StateReady, "Deleted doc-1", "Deleted doc-1"},
		{"loading", StateLoading, "", "Loading..."},
		{"thinking", StateThinking, "", "Thinking..."},
		{"error with message", StateError, "boom", "Error: boom"},
		{"error without message", StateError, "", "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil)
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)

			assert.Contains(t, bar.View(), tt.want)
		})
	}
}

func TestBar_ViewShowsBindings(t *testing.T) {
	km := keymap.DefaultKeyMap()
	bar := NewBar(nil)
	bar.SetWidth(200)
	bar.SetBindings(km.ChatHelp())

	view := bar.View()
	assert.Contains(t, view, "enter: ask")
	assert.Contains(t, view, "esc: back")
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil)
	bar.SetState(StateError)
	bar.SetMessage("failed")

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
}
