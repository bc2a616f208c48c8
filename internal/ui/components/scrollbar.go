package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Akashdeep-Patra/hkm/internal/ui"
)

// RenderScrollbar returns a vertical scrollbar track of the given height for
// a list of total rows of which visible rows starting at offset are shown.
// It returns "" when everything fits.
func RenderScrollbar(styles ui.Styles, height, total, visible, offset int) string {
	if total <= visible || height < 1 {
		return ""
	}

	t := styles.Theme

	thumbSize := max(1, min(height, height*visible/total))
	maxOffset := height - thumbSize
	thumbStart := 0
	if scrollable := total - visible; scrollable > 0 {
		thumbStart = offset * maxOffset / scrollable
	}
	thumbStart = max(0, min(maxOffset, thumbStart))

	thumbStyle := lipgloss.NewStyle().Foreground(t.Primary)
	trackStyle := lipgloss.NewStyle().Foreground(t.Border)

	var b strings.Builder
	b.Grow(height * 4)
	for i := 0; i < height; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i >= thumbStart && i < thumbStart+thumbSize {
			b.WriteString(thumbStyle.Render("█"))
		} else {
			b.WriteString(trackStyle.Render("░"))
		}
	}
	return b.String()
}
