package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds all colours for the application.
type Theme struct {
	Bg            lipgloss.Color
	Surface       lipgloss.Color
	SurfaceHover  lipgloss.Color
	Border        lipgloss.Color
	BorderFocused lipgloss.Color

	Text        lipgloss.Color
	TextMuted   lipgloss.Color
	TextSubtle  lipgloss.Color
	TextInverse lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	// Hotkey states
	Changed   lipgloss.Color // differs from the default
	Unsaved   lipgloss.Color // edited since the last save
	Conflict  lipgloss.Color // key shared with another binding
	Disabled  lipgloss.Color
	Recording lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color
}

// DarkTheme returns the default dark theme (Catppuccin Mocha).
func DarkTheme() Theme {
	return Theme{
		Bg:            lipgloss.Color("#1e1e2e"),
		Surface:       lipgloss.Color("#282840"),
		SurfaceHover:  lipgloss.Color("#313152"),
		Border:        lipgloss.Color("#3b3b5c"),
		BorderFocused: lipgloss.Color("#7c7cf0"),

		Text:        lipgloss.Color("#cdd6f4"),
		TextMuted:   lipgloss.Color("#9399b2"),
		TextSubtle:  lipgloss.Color("#6c7086"),
		TextInverse: lipgloss.Color("#1e1e2e"),

		Primary:   lipgloss.Color("#89b4fa"),
		Secondary: lipgloss.Color("#b4befe"),
		Accent:    lipgloss.Color("#f5c2e7"),

		Changed:   lipgloss.Color("#89dceb"),
		Unsaved:   lipgloss.Color("#f9e2af"),
		Conflict:  lipgloss.Color("#fab387"),
		Disabled:  lipgloss.Color("#6c7086"),
		Recording: lipgloss.Color("#f38ba8"),

		Success: lipgloss.Color("#a6e3a1"),
		Warning: lipgloss.Color("#f9e2af"),
		Error:   lipgloss.Color("#f38ba8"),
		Info:    lipgloss.Color("#89b4fa"),
	}
}

// LightTheme returns the light theme (Catppuccin Latte).
func LightTheme() Theme {
	return Theme{
		Bg:            lipgloss.Color("#eff1f5"),
		Surface:       lipgloss.Color("#e6e9ef"),
		SurfaceHover:  lipgloss.Color("#ccd0da"),
		Border:        lipgloss.Color("#bcc0cc"),
		BorderFocused: lipgloss.Color("#7287fd"),

		Text:        lipgloss.Color("#4c4f69"),
		TextMuted:   lipgloss.Color("#6c6f85"),
		TextSubtle:  lipgloss.Color("#9ca0b0"),
		TextInverse: lipgloss.Color("#eff1f5"),

		Primary:   lipgloss.Color("#1e66f5"),
		Secondary: lipgloss.Color("#7287fd"),
		Accent:    lipgloss.Color("#ea76cb"),

		Changed:   lipgloss.Color("#04a5e5"),
		Unsaved:   lipgloss.Color("#df8e1d"),
		Conflict:  lipgloss.Color("#fe640b"),
		Disabled:  lipgloss.Color("#9ca0b0"),
		Recording: lipgloss.Color("#d20f39"),

		Success: lipgloss.Color("#40a02b"),
		Warning: lipgloss.Color("#df8e1d"),
		Error:   lipgloss.Color("#d20f39"),
		Info:    lipgloss.Color("#1e66f5"),
	}
}

// ThemeByName resolves a configured theme name.
func ThemeByName(name string) (Theme, error) {
	switch name {
	case "", "dark":
		return DarkTheme(), nil
	case "light":
		return LightTheme(), nil
	}
	return Theme{}, fmt.Errorf("unknown theme %q", name)
}

// Styles holds pre-computed lipgloss styles derived from a Theme.
type Styles struct {
	Theme Theme

	// Layout
	TabBar    lipgloss.Style
	TabActive lipgloss.Style
	TabItem   lipgloss.Style
	StatusBar lipgloss.Style
	HelpBar   lipgloss.Style

	// List items
	ListItem     lipgloss.Style
	ListSelected lipgloss.Style
	ListDimmed   lipgloss.Style
	GroupHeader  lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Muted    lipgloss.Style
	KeyBind  lipgloss.Style
	KeyDesc  lipgloss.Style

	// Hotkeys
	Combo        lipgloss.Style
	ComboChanged lipgloss.Style
	ComboOff     lipgloss.Style
	Recording    lipgloss.Style
	Unsaved      lipgloss.Style
	Conflict     lipgloss.Style
	Warning      lipgloss.Style
	Success      lipgloss.Style
}

// NewStyles builds all styles from the given theme.
func NewStyles(t Theme) Styles {
	s := Styles{Theme: t}

	s.TabBar = lipgloss.NewStyle().Background(t.Bg)
	s.TabActive = lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	s.TabItem = lipgloss.NewStyle().Foreground(t.TextMuted)
	s.StatusBar = lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Padding(0, 1)
	s.HelpBar = lipgloss.NewStyle().Foreground(t.TextSubtle).PaddingLeft(2)

	s.ListItem = lipgloss.NewStyle().Foreground(t.Text).PaddingLeft(2)
	s.ListSelected = lipgloss.NewStyle().Foreground(t.Text).Background(t.SurfaceHover).Bold(true).PaddingLeft(1)
	s.ListDimmed = lipgloss.NewStyle().Foreground(t.TextSubtle).PaddingLeft(2)
	s.GroupHeader = lipgloss.NewStyle().Foreground(t.Secondary).Bold(true)

	s.Title = lipgloss.NewStyle().Foreground(t.Text).Bold(true)
	s.Subtitle = lipgloss.NewStyle().Foreground(t.TextMuted).Bold(true)
	s.Muted = lipgloss.NewStyle().Foreground(t.TextMuted)
	s.KeyBind = lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	s.KeyDesc = lipgloss.NewStyle().Foreground(t.TextMuted)

	s.Combo = lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	s.ComboChanged = lipgloss.NewStyle().Foreground(t.Changed).Bold(true)
	s.ComboOff = lipgloss.NewStyle().Foreground(t.Disabled).Strikethrough(true)
	s.Recording = lipgloss.NewStyle().Foreground(t.Recording).Bold(true).Blink(true)
	s.Unsaved = lipgloss.NewStyle().Foreground(t.Unsaved).Bold(true)
	s.Conflict = lipgloss.NewStyle().Foreground(t.Conflict).Bold(true)
	s.Warning = lipgloss.NewStyle().Foreground(t.Warning)
	s.Success = lipgloss.NewStyle().Foreground(t.Success)

	return s
}

// DefaultStyles returns styles using the dark theme.
func DefaultStyles() Styles {
	return NewStyles(DarkTheme())
}
