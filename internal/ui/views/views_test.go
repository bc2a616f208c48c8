package views

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Akashdeep-Patra/hkm/internal/common"
	"github.com/Akashdeep-Patra/hkm/internal/hotkeys"
	"github.com/Akashdeep-Patra/hkm/internal/ui"
)

func testCatalog() hotkeys.Catalog {
	return hotkeys.NewCatalog(
		[]hotkeys.Binding{
			{ID: "1", Section: "annotation", Element: "undo", Label: "Undo", Key: "ctrl+z", Active: true},
			{ID: "2", Section: "annotation", Element: "redo", Label: "Redo", Key: "ctrl+shift+z", Active: true},
			{ID: "3", Section: "annotation", Subgroup: "history", Element: "submit", Label: "Submit", Key: "ctrl+enter", Active: true},
			{ID: "4", Section: "tools", Element: "brush", Label: "Brush", Key: "b", Active: true},
		},
		[]hotkeys.Section{{ID: "annotation", Title: "Annotation"}, {ID: "tools", Title: "Tools"}},
		nil,
	)
}

func testKeys() Keys {
	b := func(keys ...string) key.Binding { return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], "")) }
	return Keys{
		Up:      b("k", "up"),
		Down:    b("j", "down"),
		Record:  b("enter", "r"),
		Type:    b("t"),
		Toggle:  b(" "),
		Restore: b("d"),
		Save:    b("s"),
		Filter:  b("/"),
	}
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func newSection(t *testing.T) (*SectionView, *hotkeys.State) {
	t.Helper()
	state := hotkeys.NewState(testCatalog())
	sec, _ := state.Catalog().Section("annotation")
	v := NewSectionView(state, sec, ui.DefaultStyles(), testKeys())
	v.SetSize(100, 30)
	return v, state
}

func send(t *testing.T, v common.View, msg tea.Msg) tea.Msg {
	t.Helper()
	_, cmd := v.Update(msg)
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestKeyEventRecordsCanonicalCombos(t *testing.T) {
	tests := []struct {
		msg  tea.KeyMsg
		want string
	}{
		{tea.KeyMsg{Type: tea.KeyCtrlZ}, "ctrl+z"},
		{runes("A"), "shift+a"},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a"), Alt: true}, "alt+a"},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, "shift+tab"},
		{tea.KeyMsg{Type: tea.KeyEsc}, "escape"},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}, "space"},
		{tea.KeyMsg{Type: tea.KeyCtrlAt}, "ctrl+space"},
		{tea.KeyMsg{Type: tea.KeyF5}, "f5"},
		{runes("@"), "@"},
	}
	for _, tt := range tests {
		var r hotkeys.Recorder
		r.Start("x")
		got, done := r.Feed(keyEvent(tt.msg))
		if !done || got != tt.want {
			t.Errorf("%q: got %q (done=%v), want %q", tt.msg.String(), got, done, tt.want)
		}
	}
}

func TestKeyEventIgnoresPaste(t *testing.T) {
	var r hotkeys.Recorder
	r.Start("x")
	if _, done := r.Feed(keyEvent(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abc"), Paste: true})); done {
		t.Fatal("paste ended the recording")
	}
}

func TestSectionRecordEmitsAssign(t *testing.T) {
	v, _ := newSection(t)

	if msg := send(t, v, tea.KeyMsg{Type: tea.KeyEnter}); msg != nil {
		t.Fatalf("starting a recording sent %T", msg)
	}
	if !v.InputCapture() {
		t.Fatal("view should capture input while recording")
	}
	if id, ok := v.Recording(); !ok || id != "1" {
		t.Fatalf("recording %q %v", id, ok)
	}
	if !strings.Contains(v.View(), "press a key") {
		t.Fatal("recording prompt not shown")
	}

	msg := send(t, v, tea.KeyMsg{Type: tea.KeyCtrlS})
	assign, ok := msg.(common.AssignKeyMsg)
	if !ok || assign.ID != "1" || assign.Key != "ctrl+s" {
		t.Fatalf("msg = %#v", msg)
	}
	if v.InputCapture() {
		t.Fatal("still capturing after a combination was recorded")
	}
}

func TestSectionRecordCancel(t *testing.T) {
	v, state := newSection(t)
	send(t, v, runes("r"))
	msg := send(t, v, tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := msg.(common.InfoMsg); !ok {
		t.Fatalf("msg = %#v", msg)
	}
	if v.InputCapture() || state.HasUnsaved() {
		t.Fatal("cancel should leave nothing recorded")
	}
}

func TestSectionToggleRestoreSave(t *testing.T) {
	v, state := newSection(t)
	send(t, v, runes("j")) // Redo

	send(t, v, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	if b, _ := state.Binding("2"); b.Active {
		t.Fatal("toggle did not disable Redo")
	}
	if !strings.Contains(v.View(), "unsaved") {
		t.Fatal("unsaved marker missing")
	}

	send(t, v, runes("d"))
	if b, _ := state.Binding("2"); !b.Active {
		t.Fatal("restore did not re-enable Redo")
	}

	msg := send(t, v, runes("s"))
	if req, ok := msg.(common.SaveRequestMsg); !ok || req.Section != "annotation" {
		t.Fatalf("msg = %#v", msg)
	}
}

func TestSectionTypeKeyRequestsDialog(t *testing.T) {
	v, _ := newSection(t)
	msg := send(t, v, runes("t"))
	if req, ok := msg.(common.EditKeyMsg); !ok || req.ID != "1" {
		t.Fatalf("msg = %#v", msg)
	}
}

func TestSectionFilter(t *testing.T) {
	v, _ := newSection(t)
	send(t, v, runes("/"))
	if !v.InputCapture() {
		t.Fatal("filter should capture input")
	}
	for _, r := range "subm" {
		send(t, v, runes(string(r)))
	}
	if b, ok := v.Selected(); !ok || b.ID != "3" {
		t.Fatalf("selected = %+v", b)
	}
	send(t, v, tea.KeyMsg{Type: tea.KeyEnter})
	if v.InputCapture() {
		t.Fatal("enter should leave the filter input")
	}
	if out := v.View(); strings.Contains(out, "Undo") || !strings.Contains(out, "Submit") {
		t.Fatalf("filtered view:\n%s", out)
	}

	send(t, v, tea.KeyMsg{Type: tea.KeyEsc})
	if !strings.Contains(v.View(), "Undo") {
		t.Fatal("esc should clear the filter")
	}
}

func TestSectionViewShowsSubgroupsAndConflicts(t *testing.T) {
	v, state := newSection(t)
	if err := state.SetKey("2", "ctrl+z", true); err != nil {
		t.Fatal(err)
	}
	out := v.View()
	if !strings.Contains(out, "HISTORY") {
		t.Fatalf("subgroup header missing:\n%s", out)
	}
	if !strings.Contains(out, "shared") {
		t.Fatalf("conflict marker missing:\n%s", out)
	}
}

func TestSectionCursorSkipsHeaders(t *testing.T) {
	v, _ := newSection(t)
	for i := 0; i < 5; i++ {
		send(t, v, runes("j"))
	}
	if b, _ := v.Selected(); b.ID != "3" {
		t.Fatalf("cursor should stop on the last binding, got %+v", b)
	}
	send(t, v, runes("k"))
	if b, _ := v.Selected(); b.ID != "2" {
		t.Fatalf("selected = %+v", b)
	}
}

func TestSettingsToggleAndJump(t *testing.T) {
	state := hotkeys.NewState(testCatalog())
	v := NewSettingsView(state, "http://example.com/api/current-user/hotkeys/", ui.DefaultStyles(), testKeys())
	v.SetSize(100, 30)

	send(t, v, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	if state.Settings().AutoTranslatePlatforms || !state.SettingsDirty() {
		t.Fatal("toggle did not flip the setting")
	}

	if err := state.SetKey("4", "ctrl+z", true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(v.View(), "Brush (tools)") {
		t.Fatalf("duplicate not listed:\n%s", v.View())
	}
	send(t, v, runes("j"))
	msg := send(t, v, tea.KeyMsg{Type: tea.KeyEnter})
	sw, ok := msg.(common.SwitchTabMsg)
	if !ok || sw.Tab != "annotation" {
		t.Fatalf("msg = %#v", msg)
	}
}

func TestSectionShowsDisabledRowsAndHints(t *testing.T) {
	v, state := newSection(t)
	if _, err := state.Toggle("2"); err != nil {
		t.Fatal(err)
	}
	out := v.View()
	if !strings.Contains(out, "Redo") || !strings.Contains(out, "off") {
		t.Fatalf("disabled row missing:\n%s", out)
	}
	if !strings.Contains(out, "record") || !strings.Contains(out, "filter") {
		t.Fatalf("hint line missing:\n%s", out)
	}
}
