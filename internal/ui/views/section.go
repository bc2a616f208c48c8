package views

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Akashdeep-Patra/hkm/internal/common"
	"github.com/Akashdeep-Patra/hkm/internal/hotkeys"
	"github.com/Akashdeep-Patra/hkm/internal/ui"
	"github.com/Akashdeep-Patra/hkm/internal/ui/components"
)

// SectionView lists and edits the bindings of one section.
type SectionView struct {
	state   *hotkeys.State
	section hotkeys.Section
	styles  ui.Styles
	keys    Keys
	goos    string

	width, height int
	cursor        int // index into the selectable rows
	offset        int // first rendered row

	recorder  hotkeys.Recorder
	filter    textinput.Model
	filtering bool
}

// NewSectionView creates the view for section.
func NewSectionView(state *hotkeys.State, section hotkeys.Section, styles ui.Styles, keys Keys) *SectionView {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter by name, element or key"
	ti.CharLimit = 64
	return &SectionView{
		state:   state,
		section: section,
		styles:  styles,
		keys:    keys,
		goos:    runtime.GOOS,
		filter:  ti,
	}
}

func (v *SectionView) Init() tea.Cmd { return nil }

func (v *SectionView) SetSize(w, h int) {
	v.width = w
	v.height = h
	v.filter.Width = max(10, w-6)
}

func (v *SectionView) InputCapture() bool { return v.recorder.Recording() || v.filtering }

// Recording reports the binding being recorded, if any.
func (v *SectionView) Recording() (string, bool) {
	return v.recorder.Target(), v.recorder.Recording()
}

// row is one rendered line: a subgroup header or a binding.
type row struct {
	header  string
	binding hotkeys.Binding
}

// rows flattens the section into rendered rows, applying the filter. sel
// holds the indexes of the binding rows.
func (v *SectionView) rows() (rows []row, sel []int) {
	groups := v.state.Section(v.section.ID)
	if term := strings.TrimSpace(v.filter.Value()); term != "" {
		groups = filterGroups(groups, term)
	}
	for _, g := range groups {
		if g.Subgroup != "" {
			rows = append(rows, row{header: g.Subgroup})
		}
		for _, b := range g.Bindings {
			sel = append(sel, len(rows))
			rows = append(rows, row{binding: b})
		}
	}
	return rows, sel
}

// filterGroups keeps the bindings that fuzzy-match term, preserving order.
func filterGroups(groups []hotkeys.Group, term string) []hotkeys.Group {
	var targets []string
	for _, g := range groups {
		for _, b := range g.Bindings {
			targets = append(targets, b.Label+" "+b.Element+" "+b.Key)
		}
	}
	keep := make(map[int]bool)
	for _, r := range list.DefaultFilter(term, targets) {
		keep[r.Index] = true
	}

	var out []hotkeys.Group
	i := 0
	for _, g := range groups {
		ng := hotkeys.Group{Subgroup: g.Subgroup}
		for _, b := range g.Bindings {
			if keep[i] {
				ng.Bindings = append(ng.Bindings, b)
			}
			i++
		}
		if len(ng.Bindings) > 0 {
			out = append(out, ng)
		}
	}
	return out
}

// Selected returns the binding under the cursor.
func (v *SectionView) Selected() (hotkeys.Binding, bool) {
	rows, sel := v.rows()
	if len(sel) == 0 {
		return hotkeys.Binding{}, false
	}
	return rows[sel[min(v.cursor, len(sel)-1)]].binding, true
}

func (v *SectionView) Update(msg tea.Msg) (common.View, tea.Cmd) {
	switch msg := msg.(type) {
	case common.LoadedMsg:
		v.recorder.Cancel()
		v.clamp()
		return v, nil

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return v, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			v.move(-1)
		case tea.MouseButtonWheelDown:
			v.move(1)
		}
		return v, nil

	case tea.KeyMsg:
		switch {
		case v.recorder.Recording():
			return v.updateRecording(msg)
		case v.filtering:
			return v.updateFilter(msg)
		}
		return v.updateNormal(msg)
	}
	return v, nil
}

func (v *SectionView) updateRecording(msg tea.KeyMsg) (common.View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		v.recorder.Cancel()
		return v, common.CmdInfo("Recording cancelled")
	}
	id := v.recorder.Target()
	combo, done := v.recorder.Feed(keyEvent(msg))
	if !done {
		return v, nil
	}
	return v, func() tea.Msg { return common.AssignKeyMsg{ID: id, Key: combo} }
}

func (v *SectionView) updateFilter(msg tea.KeyMsg) (common.View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.filtering = false
		v.filter.Blur()
		v.filter.SetValue("")
		v.clamp()
		return v, nil
	case tea.KeyEnter:
		v.filtering = false
		v.filter.Blur()
		return v, nil
	}
	var cmd tea.Cmd
	v.filter, cmd = v.filter.Update(msg)
	v.cursor = 0
	v.offset = 0
	return v, cmd
}

func (v *SectionView) updateNormal(msg tea.KeyMsg) (common.View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Up):
		v.move(-1)
	case key.Matches(msg, v.keys.Down):
		v.move(1)
	case msg.String() == "g" || msg.String() == "home":
		v.cursor = 0
	case msg.String() == "G" || msg.String() == "end":
		_, sel := v.rows()
		v.cursor = max(0, len(sel)-1)
	case key.Matches(msg, v.keys.Filter):
		v.filtering = true
		return v, v.filter.Focus()
	case msg.Type == tea.KeyEsc && v.filter.Value() != "":
		v.filter.SetValue("")
		v.clamp()
	case key.Matches(msg, v.keys.Save):
		id := v.section.ID
		return v, func() tea.Msg { return common.SaveRequestMsg{Section: id} }
	}

	b, ok := v.Selected()
	if !ok {
		return v, nil
	}
	switch {
	case key.Matches(msg, v.keys.Record):
		v.recorder.Start(b.ID)
	case key.Matches(msg, v.keys.Type):
		return v, func() tea.Msg { return common.EditKeyMsg{ID: b.ID} }
	case key.Matches(msg, v.keys.Toggle):
		active, err := v.state.Toggle(b.ID)
		if err != nil {
			return v, common.CmdErr(err)
		}
		state := "disabled"
		if active {
			state = "enabled"
		}
		return v, common.CmdInfo(fmt.Sprintf("%s %s", b.Label, state))
	case key.Matches(msg, v.keys.Restore):
		if err := v.state.RestoreDefault(b.ID); err != nil {
			return v, common.CmdErr(err)
		}
		return v, common.CmdInfo(b.Label + " restored to default")
	}
	return v, nil
}

func (v *SectionView) move(delta int) {
	v.cursor += delta
	v.clamp()
}

func (v *SectionView) clamp() {
	_, sel := v.rows()
	v.cursor = max(0, min(v.cursor, len(sel)-1))
}

func (v *SectionView) View() string {
	var header strings.Builder
	title := v.styles.Title.Render(v.section.Title)
	if v.state.Dirty(v.section.ID) {
		title += "  " + v.styles.Unsaved.Render("● unsaved")
	}
	header.WriteString(title + "\n")
	if v.section.Description != "" {
		header.WriteString(v.styles.Muted.Render(v.section.Description) + "\n")
	}
	if v.filtering || v.filter.Value() != "" {
		header.WriteString(v.filter.View() + "\n")
	}
	header.WriteString("\n")

	rows, sel := v.rows()
	if len(sel) == 0 {
		msg := "No hotkeys in this section"
		if v.filter.Value() != "" {
			msg = "No hotkeys match the filter"
		}
		return header.String() + v.styles.Muted.Render("  "+msg)
	}

	hint := v.hint()
	visible := max(1, v.height-lipgloss.Height(header.String())-lipgloss.Height(hint))
	cursorRow := sel[min(v.cursor, len(sel)-1)]
	if cursorRow < v.offset {
		v.offset = cursorRow
		// keep the subgroup header of the first binding in view
		if v.offset > 0 && rows[v.offset-1].header != "" {
			v.offset--
		}
	}
	if cursorRow >= v.offset+visible {
		v.offset = cursorRow - visible + 1
	}
	v.offset = max(0, min(v.offset, len(rows)-visible))

	dup := duplicateCounts(v.state.Bindings())
	labelW := max(12, min(32, v.width/3))
	keyW := max(10, min(24, v.width/4))

	end := min(len(rows), v.offset+visible)
	lines := make([]string, 0, end-v.offset)
	for i := v.offset; i < end; i++ {
		r := rows[i]
		if r.header != "" {
			lines = append(lines, "  "+v.styles.GroupHeader.Render(strings.ToUpper(r.header)))
			continue
		}
		line := v.renderBinding(r.binding, dup, labelW, keyW)
		switch {
		case i == cursorRow:
			lines = append(lines, v.styles.ListSelected.Render("▸ "+line))
		case !r.binding.Active:
			lines = append(lines, v.styles.ListDimmed.Render(line))
		default:
			lines = append(lines, v.styles.ListItem.Render(line))
		}
	}

	body := strings.Join(lines, "\n")
	if bar := components.RenderScrollbar(v.styles, len(lines), len(rows), visible, v.offset); bar != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, ui.PadRight(body, v.width-2), bar)
	}
	return header.String() + body + "\n" + hint
}

func (v *SectionView) renderBinding(b hotkeys.Binding, dup map[string]int, labelW, keyW int) string {
	label := ui.PadRight(ui.Truncate(b.Label, labelW), labelW)

	var keyCol string
	switch {
	case v.recorder.Recording() && v.recorder.Target() == b.ID:
		keyCol = v.styles.Recording.Render("press a key… (esc cancels)")
	case b.Key == "":
		keyCol = v.styles.Muted.Render(ui.PadRight("unbound", keyW))
	default:
		shown := ui.PadRight(hotkeys.Display(b.Key, v.state.Settings().AutoTranslatePlatforms, v.goos), keyW)
		switch {
		case !b.Active:
			keyCol = v.styles.ComboOff.Render(shown)
		case v.changed(b):
			keyCol = v.styles.ComboChanged.Render(shown)
		default:
			keyCol = v.styles.Combo.Render(shown)
		}
	}

	var flags []string
	if !b.Active {
		flags = append(flags, v.styles.Muted.Render("off"))
	}
	if n := dup[b.Key]; n > 1 && b.Key != "" {
		flags = append(flags, v.styles.Conflict.Render(fmt.Sprintf("⚠ shared ×%d", n)))
	}
	return label + "  " + keyCol + "  " + strings.Join(flags, " ")
}

func (v *SectionView) changed(b hotkeys.Binding) bool {
	def, ok := v.state.Catalog().Default(b.ID)
	return ok && def.Key != b.Key
}

func (v *SectionView) hint() string {
	if v.recorder.Recording() {
		return v.styles.HelpBar.Render("Press the new combination · esc cancel")
	}
	return v.styles.HelpBar.Render(fmt.Sprintf("%s record · %s type · %s on/off · %s default · %s save · %s filter",
		v.keys.Record.Help().Key, v.keys.Type.Help().Key, v.keys.Toggle.Help().Key,
		v.keys.Restore.Help().Key, v.keys.Save.Help().Key, v.keys.Filter.Help().Key))
}

func (v *SectionView) ShortHelp() []components.HelpEntry {
	return []components.HelpEntry{
		helpEntry(v.keys.Up),
		helpEntry(v.keys.Down),
		helpEntry(v.keys.Record),
		helpEntry(v.keys.Type),
		helpEntry(v.keys.Toggle),
		helpEntry(v.keys.Restore),
		helpEntry(v.keys.Save),
		helpEntry(v.keys.Filter),
		{Key: "esc", Desc: "Cancel recording / clear filter"},
	}
}

// duplicateCounts counts bindings per key.
func duplicateCounts(bindings []hotkeys.Binding) map[string]int {
	out := make(map[string]int)
	for _, d := range hotkeys.Duplicates(bindings) {
		out[d.Key] = len(d.Bindings)
	}
	return out
}
