package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the chain canvas and the accents of the live view.
type Theme struct {
	Name   string
	Chain  lipgloss.Color
	Accent lipgloss.Color
	Muted  lipgloss.Color
}

var themes = []Theme{
	{Name: "phosphor", Chain: lipgloss.Color("#00ff88"), Accent: lipgloss.Color("#88ffcc"), Muted: lipgloss.Color("#005533")},
	{Name: "ocean", Chain: lipgloss.Color("#00aaff"), Accent: lipgloss.Color("#00ffff"), Muted: lipgloss.Color("#004466")},
	{Name: "ember", Chain: lipgloss.Color("#ff8800"), Accent: lipgloss.Color("#ffcc00"), Muted: lipgloss.Color("#663300")},
	{Name: "minimal", Chain: lipgloss.Color("#ffffff"), Accent: lipgloss.Color("#0088ff"), Muted: lipgloss.Color("#888888")},
}

func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// GetTheme returns the named theme, or the first theme if name is unknown.
func GetTheme(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return themes[0]
}

// NextTheme returns the theme after t, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range themes {
		if th.Name == t.Name {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}

func (t Theme) CanvasStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Chain).Padding(0, 1)
}
