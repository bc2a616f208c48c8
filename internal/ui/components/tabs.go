package components

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/Akashdeep-Patra/hkm/internal/ui"
)

// TabInfo describes a single tab for rendering.
type TabInfo struct {
	Name   string
	Icon   string
	Active bool
	Group  string
	// Dirty marks a section with unsaved edits.
	Dirty bool
}

type tabMode int

const (
	tabFull  tabMode = iota // "✎ Annotation"
	tabShort                // "✎ Ann"
	tabIcon                 // "✎"
)

const (
	maxTabRows = 3
	dirtyMark  = "•"
)

// iconWidth assumes two cells for any non-ASCII rune; several terminals draw
// symbols such as ⚒ and ◫ double-width even though runewidth says one.
func iconWidth(icon string) int {
	w := 0
	for _, r := range icon {
		if r < 128 {
			w++
		} else {
			w += 2
		}
	}
	return w
}

func (tab TabInfo) label(mode tabMode) string {
	name := tab.Name
	switch mode {
	case tabShort:
		if r := []rune(name); len(r) > 3 {
			name = string(r[:3])
		}
	case tabIcon:
		name = ""
	}
	l := tab.Icon
	if name != "" {
		l += " " + name
	}
	if tab.Dirty {
		l += dirtyMark
	}
	return l
}

// width returns the cells taken by " label ".
func (tab TabInfo) width(mode tabMode) int {
	w := 2 + iconWidth(tab.Icon)
	switch mode {
	case tabFull:
		w += 1 + utf8.RuneCountInString(tab.Name)
	case tabShort:
		w += 1 + min(3, utf8.RuneCountInString(tab.Name))
	}
	if tab.Dirty {
		w++
	}
	return w
}

// tabSpan is one tab's position in the laid-out bar.
type tabSpan struct {
	index      int
	row        int
	start, end int // columns, end exclusive
	sepBefore  bool
}

// layout greedily packs tabs into rows, inserting " │ " between groups.
func layout(tabs []TabInfo, width int, mode tabMode) (spans []tabSpan, rows int) {
	row, col := 0, 1
	prevGroup := ""
	for i, tab := range tabs {
		sep := i > 0 && tab.Group != prevGroup && col > 1
		tw := tab.width(mode)
		need := tw
		if sep {
			need += 3
		}
		if col+need > width && col > 1 {
			row++
			col = 1
			sep = false
		}
		if sep {
			col += 3
		}
		spans = append(spans, tabSpan{index: i, row: row, start: col, end: col + tw, sepBefore: sep})
		col += tw
		prevGroup = tab.Group
	}
	if len(tabs) > 0 {
		rows = row + 1
	}
	return spans, rows
}

// bestLayout picks the most descriptive mode that fits in maxTabRows rows.
func bestLayout(tabs []TabInfo, width int) ([]tabSpan, int, tabMode) {
	for _, mode := range []tabMode{tabFull, tabShort} {
		if spans, rows := layout(tabs, width, mode); rows <= maxTabRows {
			return spans, rows, mode
		}
	}
	spans, rows := layout(tabs, width, tabIcon)
	return spans, rows, tabIcon
}

// TabBarRows returns the number of screen rows the tab bar occupies
// (tab rows + 1 underline row).
func TabBarRows(tabs []TabInfo, width int) int {
	if width <= 0 || len(tabs) == 0 {
		return 2
	}
	_, rows, _ := bestLayout(tabs, width)
	return rows + 1
}

// TabAt returns the index of the tab drawn at screen cell (x, y) of the tab
// bar, or -1.
func TabAt(tabs []TabInfo, width, x, y int) int {
	if width <= 0 {
		return -1
	}
	spans, _, _ := bestLayout(tabs, width)
	for _, s := range spans {
		if s.row == y && x >= s.start && x < s.end {
			return s.index
		}
	}
	return -1
}

// RenderTabs renders a tab bar that wraps onto up to three rows and then
// abbreviates names, falling back to icons only. A single underline row
// follows, accented under the active tab when it sits on the last row.
func RenderTabs(styles ui.Styles, tabs []TabInfo, width int) string {
	t := styles.Theme
	spans, rows, mode := bestLayout(tabs, width)

	sepStyle := lipgloss.NewStyle().Foreground(t.Border)

	lines := make([]strings.Builder, rows)
	for i := range lines {
		lines[i].WriteByte(' ')
	}
	ulStart, ulEnd := -1, -1
	for _, s := range spans {
		tab := tabs[s.index]
		b := &lines[s.row]
		if s.sepBefore {
			b.WriteString(sepStyle.Render(" │ "))
		}
		st := styles.TabItem
		if tab.Active {
			st = styles.TabActive
			if s.row == rows-1 {
				ulStart, ulEnd = s.start, s.end
			}
		}
		b.WriteString(" " + st.Render(tab.label(mode)) + " ")
	}

	out := make([]string, 0, rows+1)
	for i := range lines {
		out = append(out, styles.TabBar.
			Width(width).
			MaxWidth(width).
			Render(lines[i].String()))
	}

	thin := lipgloss.NewStyle().Foreground(t.Border)
	bold := lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	hint := lipgloss.NewStyle().Foreground(t.TextSubtle).Faint(true).Render("←/→  ?help")
	ul := underline(width, ulStart, ulEnd, thin, bold)
	if hw := lipgloss.Width(hint); hw+4 < width {
		ul = underline(width-hw-1, ulStart, ulEnd, thin, bold) + " " + hint
	}
	out = append(out, lipgloss.NewStyle().Width(width).Render(ul))

	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

// underline draws a width-wide rule with a bold segment over [start, end).
func underline(width, start, end int, thin, bold lipgloss.Style) string {
	if start < 0 || end < 0 {
		return thin.Render(strings.Repeat("─", width))
	}
	start, end = min(start, width), min(end, width)
	var b strings.Builder
	if start > 0 {
		b.WriteString(thin.Render(strings.Repeat("─", start)))
	}
	if end > start {
		b.WriteString(bold.Render(strings.Repeat("━", end-start)))
	}
	if rem := width - end; rem > 0 {
		b.WriteString(thin.Render(strings.Repeat("─", rem)))
	}
	return b.String()
}
