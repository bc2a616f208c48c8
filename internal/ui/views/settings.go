package views

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Akashdeep-Patra/hkm/internal/common"
	"github.com/Akashdeep-Patra/hkm/internal/hotkeys"
	"github.com/Akashdeep-Patra/hkm/internal/manager"
	"github.com/Akashdeep-Patra/hkm/internal/ui"
	"github.com/Akashdeep-Patra/hkm/internal/ui/components"
)

// previewKey shows what platform translation does to modifiers.
const previewKey = "ctrl+alt+meta+z"

// SettingsView shows the global settings, where the set was loaded from
// and every key that is bound more than once.
type SettingsView struct {
	state    *hotkeys.State
	endpoint string
	styles   ui.Styles
	keys     Keys
	goos     string

	width, height int
	cursor        int // 0 = translate toggle, then one row per duplicate

	loaded  bool
	source  manager.Source
	warning string
}

// NewSettingsView creates the settings tab.
func NewSettingsView(state *hotkeys.State, endpoint string, styles ui.Styles, keys Keys) *SettingsView {
	return &SettingsView{
		state:    state,
		endpoint: endpoint,
		styles:   styles,
		keys:     keys,
		goos:     runtime.GOOS,
	}
}

func (v *SettingsView) Init() tea.Cmd { return nil }

func (v *SettingsView) SetSize(w, h int) { v.width = w; v.height = h }

func (v *SettingsView) InputCapture() bool { return false }

func (v *SettingsView) duplicates() []hotkeys.Duplicate {
	return hotkeys.Duplicates(v.state.Bindings())
}

func (v *SettingsView) Update(msg tea.Msg) (common.View, tea.Cmd) {
	switch msg := msg.(type) {
	case common.LoadedMsg:
		v.loaded = true
		v.source = msg.Loaded.Source
		v.warning = msg.Loaded.Warning
		v.cursor = min(v.cursor, len(v.duplicates()))
		return v, nil
	case tea.KeyMsg:
		return v.updateNormal(msg)
	}
	return v, nil
}

func (v *SettingsView) updateNormal(msg tea.KeyMsg) (common.View, tea.Cmd) {
	dups := v.duplicates()
	switch {
	case key.Matches(msg, v.keys.Up):
		v.cursor = max(0, v.cursor-1)
	case key.Matches(msg, v.keys.Down):
		v.cursor = min(len(dups), v.cursor+1)
	case key.Matches(msg, v.keys.Toggle), key.Matches(msg, v.keys.Record):
		if v.cursor == 0 {
			on := !v.state.Settings().AutoTranslatePlatforms
			v.state.SetAutoTranslate(on)
			if on {
				return v, common.CmdInfo("Platform key names enabled")
			}
			return v, common.CmdInfo("Platform key names disabled")
		}
		if v.cursor-1 < len(dups) {
			section := dups[v.cursor-1].Bindings[0].Section
			return v, func() tea.Msg { return common.SwitchTabMsg{Tab: common.TabID(section)} }
		}
	case key.Matches(msg, v.keys.Save):
		return v, func() tea.Msg { return common.SaveRequestMsg{} }
	}
	return v, nil
}

func (v *SettingsView) View() string {
	var b strings.Builder
	s := v.styles
	settings := v.state.Settings()

	b.WriteString(s.Title.Render("Settings") + "\n\n")
	b.WriteString("  " + ui.RenderKeyValue(s, "Server ", v.endpoint) + "\n")
	source := "loading…"
	if v.loaded {
		source = v.source.String()
	}
	b.WriteString("  " + ui.RenderKeyValue(s, "Source ", source) + "\n")
	if v.warning != "" {
		b.WriteString("  " + s.Warning.Render("⚠ "+v.warning) + "\n")
	}
	b.WriteString("  " + ui.RenderKeyValue(s, "Unsaved", v.unsavedSummary()) + "\n\n")

	check := "[ ]"
	if settings.AutoTranslatePlatforms {
		check = "[x]"
	}
	toggle := fmt.Sprintf("%s Show platform key names  %s", check,
		s.Muted.Render(previewKey+" → "+hotkeys.Display(previewKey, settings.AutoTranslatePlatforms, v.goos)))
	if v.state.SettingsDirty() {
		toggle += " " + s.Unsaved.Render("●")
	}
	b.WriteString(v.renderRow(0, toggle) + "\n\n")

	dups := v.duplicates()
	b.WriteString(s.Subtitle.Render("Shared keys") + "\n")
	if len(dups) == 0 {
		b.WriteString(s.Success.Render("  ✓ every key is bound once") + "\n")
	}
	for i, d := range dups {
		names := make([]string, len(d.Bindings))
		for j, bd := range d.Bindings {
			names[j] = fmt.Sprintf("%s (%s)", bd.Label, bd.Section)
		}
		line := s.Conflict.Render(ui.PadRight(hotkeys.Display(d.Key, settings.AutoTranslatePlatforms, v.goos), 18)) +
			" " + strings.Join(names, ", ")
		b.WriteString(v.renderRow(i+1, line) + "\n")
	}

	b.WriteString("\n" + s.HelpBar.Render(fmt.Sprintf("%s toggle / jump to section · %s save all",
		v.keys.Toggle.Help().Key, v.keys.Save.Help().Key)))
	return b.String()
}

func (v *SettingsView) renderRow(i int, line string) string {
	if i == v.cursor {
		return v.styles.ListSelected.Render("▸ " + line)
	}
	return v.styles.ListItem.Render(line)
}

func (v *SettingsView) unsavedSummary() string {
	dirty := v.state.DirtySections()
	if v.state.SettingsDirty() {
		dirty = append(dirty, "settings")
	}
	if len(dirty) == 0 {
		return "none"
	}
	return strings.Join(dirty, ", ")
}

func (v *SettingsView) ShortHelp() []components.HelpEntry {
	return []components.HelpEntry{
		helpEntry(v.keys.Up),
		helpEntry(v.keys.Down),
		{Key: v.keys.Toggle.Help().Key, Desc: "Toggle setting / open section"},
		{Key: v.keys.Save.Help().Key, Desc: "Save all"},
	}
}
