package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Akashdeep-Patra/hkm/internal/ui"
)

// DialogKind specifies the type of dialog.
type DialogKind int

const (
	DialogConfirm DialogKind = iota
	DialogInput
)

// DialogResult is sent when the dialog is dismissed.
type DialogResult struct {
	Confirmed bool
	Value     string
	Tag       string // identifies which dialog this was
}

// Dialog is a modal confirmation or input dialog.
type Dialog struct {
	Kind    DialogKind
	Title   string
	Message string
	Tag     string
	input   textinput.Model
	focused int // 0 = yes/input, 1 = no
	styles  ui.Styles
	visible bool
}

// NewConfirmDialog creates a Yes/No confirmation dialog. Destructive
// dialogs start with "No" focused.
func NewConfirmDialog(styles ui.Styles, title, message, tag string, destructive bool) Dialog {
	d := Dialog{
		Kind:    DialogConfirm,
		Title:   title,
		Message: message,
		Tag:     tag,
		styles:  styles,
		visible: true,
	}
	if destructive {
		d.focused = 1
	}
	return d
}

// NewInputDialog creates a text input dialog pre-filled with value.
func NewInputDialog(styles ui.Styles, title, message, value, tag string) Dialog {
	ti := textinput.New()
	ti.Placeholder = message
	ti.SetValue(value)
	ti.CursorEnd()
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 50
	return Dialog{
		Kind:    DialogInput,
		Title:   title,
		Message: message,
		Tag:     tag,
		input:   ti,
		styles:  styles,
		visible: true,
	}
}

// Visible returns whether the dialog is showing.
func (d Dialog) Visible() bool { return d.visible }

// Update handles key events for the dialog.
func (d Dialog) Update(msg tea.Msg) (Dialog, tea.Cmd) {
	if !d.visible {
		return d, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return d.close(false, "")

		case "enter":
			if d.Kind == DialogInput {
				return d.close(true, d.input.Value())
			}
			return d.close(d.focused == 0, "")
		}

		if d.Kind == DialogConfirm {
			switch keyMsg.String() {
			case "tab", "left", "right", "h", "l":
				d.focused = 1 - d.focused
			case "y", "Y":
				return d.close(true, "")
			case "n", "N":
				return d.close(false, "")
			}
			return d, nil
		}
	}

	if d.Kind == DialogInput {
		var cmd tea.Cmd
		d.input, cmd = d.input.Update(msg)
		return d, cmd
	}
	return d, nil
}

func (d Dialog) close(confirmed bool, value string) (Dialog, tea.Cmd) {
	d.visible = false
	tag := d.Tag
	return d, func() tea.Msg {
		return DialogResult{Confirmed: confirmed, Value: value, Tag: tag}
	}
}

// View renders the dialog.
func (d Dialog) View() string {
	if !d.visible {
		return ""
	}
	t := d.styles.Theme
	const width = 56

	title := lipgloss.NewStyle().Foreground(t.Text).Bold(true).Render(d.Title)
	message := lipgloss.NewStyle().Foreground(t.TextMuted).Width(width - 6).Render(d.Message)
	var content string

	if d.Kind == DialogConfirm {
		yes := "  Yes  "
		no := "  No   "
		activeBtn := lipgloss.NewStyle().Foreground(t.TextInverse).Background(t.Primary).Bold(true)
		inactiveBtn := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		if d.focused == 0 {
			yes = activeBtn.Render(yes)
			no = inactiveBtn.Render(no)
		} else {
			yes = inactiveBtn.Render(yes)
			no = activeBtn.Render(no)
		}
		buttons := lipgloss.JoinHorizontal(lipgloss.Top, yes, "  ", no)
		content = title + "\n\n" + message + "\n\n" + buttons
	} else {
		content = title + "\n\n" + message + "\n\n" + d.input.View()
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(t.Primary).
		Padding(1, 3).
		Width(width).
		Render(content)
}
