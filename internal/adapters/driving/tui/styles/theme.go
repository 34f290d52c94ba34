// Package styles holds the palette and lipgloss styles shared by the TUI.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette maps the colour roles used across views. Each role adapts to light
// and dark terminals.
type Palette struct {
	Accent  lipgloss.AdaptiveColor
	Label   lipgloss.AdaptiveColor
	Text    lipgloss.AdaptiveColor
	Dim     lipgloss.AdaptiveColor
	Danger  lipgloss.AdaptiveColor
	Outline lipgloss.AdaptiveColor
	Surface lipgloss.AdaptiveColor
}

// DefaultPalette is a teal and amber scheme.
func DefaultPalette() Palette {
	return Palette{
		Accent:  lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"},
		Label:   lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"},
		Text:    lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"},
		Dim:     lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
		Danger:  lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"},
		Outline: lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"},
		Surface: lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#111827"},
	}
}

// Styles are the rendered roles. Views never build styles of their own.
type Styles struct {
	Palette Palette

	Title      lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style
	Badge      lipgloss.Style // role and seniority labels
	Question   lipgloss.Style // user turns in the transcript
	Spinner    lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
}

// NewStyles derives every style from p.
func NewStyles(p Palette) *Styles {
	base := lipgloss.NewStyle()
	return &Styles{
		Palette:  p,
		Title:    base.Bold(true).Foreground(p.Accent),
		Normal:   base.Foreground(p.Text),
		Muted:    base.Foreground(p.Dim),
		Selected: base.Bold(true).Foreground(p.Surface).Background(p.Accent),
		Error:    base.Foreground(p.Danger),
		Badge: base.Foreground(p.Label).
			Padding(0, 1).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(p.Outline),
		Question: base.Bold(true).Foreground(p.Accent).PaddingLeft(1),
		Spinner:  base.Foreground(p.Label),
		InputField: base.Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Outline).
			Padding(0, 1),
		StatusBar: base.Foreground(p.Dim).Background(p.Surface).Padding(0, 1),
	}
}

// DefaultStyles uses DefaultPalette.
func DefaultStyles() *Styles {
	return NewStyles(DefaultPalette())
}
