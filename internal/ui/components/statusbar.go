package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Akashdeep-Patra/hkm/internal/ui"
)

// StatusBarData carries the info displayed in the bottom status bar.
type StatusBarData struct {
	Endpoint  string
	Source    string // where the current set came from
	Offline   bool   // Source is not the server
	Dirty     int    // sections with unsaved edits
	Conflicts int    // keys bound more than once
	Busy      bool   // a request is in flight
	Message   string // transient info/error message
	IsError   bool
}

// RenderStatusBar renders the bottom status bar with sections separated by
// dim vertical bars.
//
// Wide (>= 60):    server  │  ● 2 unsaved  │  ⚠ 1 conflict      localhost:8080
// Narrow (< 60):   server  │  ● 2 unsaved
func RenderStatusBar(styles ui.Styles, data StatusBarData, width int) string {
	t := styles.Theme

	sep := lipgloss.NewStyle().Foreground(t.Border).Faint(true).Render(" │ ")

	// ── Left sections ────────────────────────────────────────────

	srcStyle := lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	if data.Offline {
		srcStyle = lipgloss.NewStyle().Foreground(t.Warning).Bold(true)
	}
	source := data.Source
	if source == "" {
		source = "loading"
	}
	left := " " + srcStyle.Render("⇅ "+source)

	switch {
	case data.Busy:
		badge := lipgloss.NewStyle().
			Foreground(t.TextInverse).
			Background(t.Info).
			Bold(true).
			Padding(0, 1).
			Render("SAVING")
		left += sep + badge
	case data.Dirty > 0:
		left += sep + lipgloss.NewStyle().Foreground(t.Unsaved).Render("● "+fmt.Sprintf("%d unsaved", data.Dirty))
	default:
		left += sep + lipgloss.NewStyle().Foreground(t.Success).Render("✓ saved")
	}

	if width >= 60 && data.Conflicts > 0 {
		left += sep + lipgloss.NewStyle().Foreground(t.Conflict).Render("⚠ "+ui.Plural(data.Conflicts, "conflict"))
	}

	// ── Right section ────────────────────────────────────────────

	var right string
	if data.Message != "" {
		fg := t.Info
		if data.IsError {
			fg = t.Error
		}
		right = lipgloss.NewStyle().Foreground(fg).Render(data.Message) + " "
	} else if width >= 60 && data.Endpoint != "" {
		right = lipgloss.NewStyle().Foreground(t.TextSubtle).Render(data.Endpoint) + " "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 1
		right = ""
	}

	return styles.StatusBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
