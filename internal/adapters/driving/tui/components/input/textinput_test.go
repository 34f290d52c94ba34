package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jdrag/internal/adapters/driving/tui/styles"
)

func TestNewQuestionInput(t *testing.T) {
	in := NewQuestionInput(styles.DefaultStyles())

	require.NotNil(t, in)
	assert.True(t, in.Focused())
	assert.Equal(t, "", in.Value())
	assert.Equal(t, 50, in.Width())
}

func TestNewQuestionInput_NilStyles(t *testing.T) {
	in := NewQuestionInput(nil)

	require.NotNil(t, in)
	assert.NotNil(t, in.styles)
}

func TestQuestionInput_Typing(t *testing.T) {
	in := NewQuestionInput(nil)

	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Remote?")})

	assert.Equal(t, "Remote?", in.Value())
}

func TestQuestionInput_SetValueAndReset(t *testing.T) {
	in := NewQuestionInput(nil)

	in.SetValue("What is the salary?")
	assert.Equal(t, "What is the salary?", in.Value())

	in.Reset()
	assert.Equal(t, "", in.Value())
}

func TestQuestionInput_FocusAndBlur(t *testing.T) {
	in := NewQuestionInput(nil)

	in.Blur()
	assert.False(t, in.Focused())

	in.Focus()
	assert.True(t, in.Focused())
}

func TestQuestionInput_SetWidth(t *testing.T) {
	in := NewQuestionInput(nil)

	in.SetWidth(100)
	assert.Equal(t, 100, in.Width())
	assert.Equal(t, 88, in.textinput.Width)

	in.SetWidth(10)
	assert.Equal(t, 20, in.textinput.Width)
}

func TestQuestionInput_View(t *testing.T) {
	in := NewQuestionInput(nil)
	assert.Contains(t, in.View(), "Ask:")
}
