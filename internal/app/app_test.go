package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Akashdeep-Patra/hkm/internal/api"
	"github.com/Akashdeep-Patra/hkm/internal/common"
	"github.com/Akashdeep-Patra/hkm/internal/config"
	"github.com/Akashdeep-Patra/hkm/internal/hotkeys"
	"github.com/Akashdeep-Patra/hkm/internal/manager"
	"github.com/Akashdeep-Patra/hkm/internal/ui/components"
)

type fakeService struct {
	stored    api.Snapshot
	fetchErr  error
	updateErr error
	updates   int
}

func (f *fakeService) Endpoint() string { return "http://test/api/current-user/hotkeys/" }

func (f *fakeService) Fetch(context.Context) (*api.Snapshot, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	cp := f.stored
	cp.CustomHotkeys = hotkeys.Overrides{}
	for k, v := range f.stored.CustomHotkeys {
		cp.CustomHotkeys[k] = v
	}
	return &cp, nil
}

func (f *fakeService) Update(_ context.Context, snap api.Snapshot) (*api.Snapshot, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updates++
	f.stored = snap
	return &snap, nil
}

func testCatalog() hotkeys.Catalog {
	return hotkeys.NewCatalog(
		[]hotkeys.Binding{
			{ID: "1", Section: "annotation", Element: "undo", Label: "Undo", Key: "ctrl+z", Active: true},
			{ID: "2", Section: "annotation", Element: "redo", Label: "Redo", Key: "ctrl+y", Active: true},
			{ID: "3", Section: "tools", Element: "brush", Label: "Brush", Key: "b", Active: true},
		},
		[]hotkeys.Section{{ID: "annotation", Title: "Annotation"}, {ID: "tools", Title: "Tools"}},
		nil,
	)
}

func testConfig() *config.Config {
	return &config.Config{Theme: "dark", Keys: config.DefaultKeyBindings(), ConfirmDestructive: true}
}

// newLoaded returns a model after its initial load completed.
func newLoaded(t *testing.T, svc *fakeService) Model {
	t.Helper()
	m, err := New(context.Background(), manager.New(testCatalog(), svc), testConfig())
	if err != nil {
		t.Fatal(err)
	}
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return step(t, m, m.Init()())
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// stepCmd applies msg and runs the resulting command once.
func stepCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(msg)
	if cmd == nil {
		return next.(Model), nil
	}
	return next.(Model), cmd()
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestInitLoadsFromServer(t *testing.T) {
	svc := &fakeService{stored: api.Snapshot{CustomHotkeys: hotkeys.Overrides{
		"annotation:undo": {Key: "ctrl+u", Active: true},
	}}}
	m := newLoaded(t, svc)

	if m.busy {
		t.Fatal("still busy after load")
	}
	if b, _ := m.state.Binding("1"); b.Key != "ctrl+u" {
		t.Fatalf("override not applied: %+v", b)
	}
	if m.barData.Source != "server" || m.barData.Offline {
		t.Fatalf("bar = %+v", m.barData)
	}
	if out := m.View(); !strings.Contains(out, "Undo") || !strings.Contains(out, "Annotation") {
		t.Fatalf("view:\n%s", out)
	}
}

func TestLoadFailureFallsBackWithWarning(t *testing.T) {
	m := newLoaded(t, &fakeService{fetchErr: &api.Error{Kind: api.KindNetwork}})
	if !m.statusErr || !strings.Contains(m.statusMsg, "default hotkeys") {
		t.Fatalf("status = %q (err=%v)", m.statusMsg, m.statusErr)
	}
	if !m.barData.Offline || m.barData.Source != "defaults" {
		t.Fatalf("bar = %+v", m.barData)
	}
	if b, _ := m.state.Binding("1"); b.Key != "ctrl+z" {
		t.Fatalf("defaults not shown: %+v", b)
	}
}

func TestAssignConflictAsksFirst(t *testing.T) {
	m := newLoaded(t, &fakeService{})

	m = step(t, m, common.AssignKeyMsg{ID: "2", Key: "ctrl+z"})
	if m.dialog == nil || !m.dialog.Visible() {
		t.Fatal("conflict dialog not shown")
	}
	if b, _ := m.state.Binding("2"); b.Key != "ctrl+y" {
		t.Fatalf("key applied before confirmation: %+v", b)
	}

	m, res := stepCmd(t, m, runes("y"))
	m = step(t, m, res)
	if b, _ := m.state.Binding("2"); b.Key != "ctrl+z" {
		t.Fatalf("confirmed key not applied: %+v", b)
	}
	if m.barData.Conflicts != 1 || m.barData.Dirty != 1 {
		t.Fatalf("bar = %+v", m.barData)
	}
}

func TestAssignConflictDeclined(t *testing.T) {
	m := newLoaded(t, &fakeService{})
	m = step(t, m, common.AssignKeyMsg{ID: "2", Key: "ctrl+z"})
	m = step(t, m, components.DialogResult{Tag: tagConflict})
	if b, _ := m.state.Binding("2"); b.Key != "ctrl+y" || m.state.HasUnsaved() {
		t.Fatalf("declined key applied: %+v", b)
	}
}

func TestAssignWithoutConflictApplies(t *testing.T) {
	m := newLoaded(t, &fakeService{})
	m = step(t, m, common.AssignKeyMsg{ID: "2", Key: "Shift+Ctrl+R"})
	if b, _ := m.state.Binding("2"); b.Key != "ctrl+shift+r" {
		t.Fatalf("key = %q", b.Key)
	}
	if m.dialog != nil {
		t.Fatal("no dialog expected")
	}
}

func TestEditKeyDialogAssigns(t *testing.T) {
	m := newLoaded(t, &fakeService{})
	m = step(t, m, common.EditKeyMsg{ID: "3"})
	if m.dialog == nil || m.pendingID != "3" {
		t.Fatal("edit dialog not opened")
	}
	m = step(t, m, components.DialogResult{Tag: tagEditKey, Confirmed: true, Value: "Esc"})
	if b, _ := m.state.Binding("3"); b.Key != "escape" {
		t.Fatalf("key = %q", b.Key)
	}
}

func TestSaveSectionSendsAllAndClearsThatSection(t *testing.T) {
	svc := &fakeService{}
	m := newLoaded(t, svc)
	_, _ = m.state.Toggle("1")
	_, _ = m.state.Toggle("3")

	m, res := stepCmd(t, m, common.SaveRequestMsg{Section: "annotation"})
	if !m.busy {
		t.Fatal("save should mark the model busy")
	}
	m = step(t, m, res)

	if svc.updates != 1 {
		t.Fatalf("updates = %d", svc.updates)
	}
	if _, ok := svc.stored.CustomHotkeys["tools:brush"]; !ok {
		t.Fatalf("save did not send the full set: %v", svc.stored.CustomHotkeys)
	}
	if m.state.Dirty("annotation") || !m.state.Dirty("tools") {
		t.Fatalf("dirty = %v", m.state.DirtySections())
	}
	if m.busy {
		t.Fatal("still busy")
	}
}

func TestSaveFailureKeepsEdits(t *testing.T) {
	svc := &fakeService{updateErr: &api.Error{Kind: api.KindInvalid, Status: 400, Reason: "Invalid hotkeys configuration"}}
	m := newLoaded(t, svc)
	_, _ = m.state.Toggle("1")

	m, res := stepCmd(t, m, runes("S"))
	m = step(t, m, res)

	if !m.statusErr || !strings.Contains(m.statusMsg, "invalid input: Invalid hotkeys configuration") {
		t.Fatalf("status = %q", m.statusMsg)
	}
	if b, _ := m.state.Binding("1"); b.Active || !m.state.Dirty("annotation") {
		t.Fatal("failed save changed local state")
	}
}

func TestBusyRefusesEdits(t *testing.T) {
	m := newLoaded(t, &fakeService{})
	next, _ := m.Update(common.SaveRequestMsg{})
	m = next.(Model)

	next, cmd := m.Update(runes("S"))
	m = next.(Model)
	if cmd != nil {
		t.Fatal("second save started while busy")
	}
	if !strings.Contains(m.statusMsg, "Waiting") {
		t.Fatalf("status = %q", m.statusMsg)
	}
}

func TestRecordingHoldsKeysWhileBusy(t *testing.T) {
	m := newLoaded(t, &fakeService{})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.views[m.activeTab].InputCapture() {
		t.Fatal("enter did not start recording")
	}

	m, loaded := stepCmd(t, m, common.CacheChangedMsg{})
	if !m.busy {
		t.Fatal("cache change should start a reload")
	}

	next, cmd := m.Update(runes("q"))
	m = next.(Model)
	if cmd != nil {
		t.Fatalf("q while busy produced %T", cmd())
	}
	if !strings.Contains(m.statusMsg, "Waiting") {
		t.Fatalf("status = %q", m.statusMsg)
	}
	if b, _ := m.state.Binding("1"); b.Key != "ctrl+z" {
		t.Fatalf("key recorded while busy: %+v", b)
	}

	m = step(t, m, loaded)
	if m.busy || m.views[m.activeTab].InputCapture() {
		t.Fatal("reload should end the recording")
	}
}

func TestResetNeedsConfirmation(t *testing.T) {
	svc := &fakeService{stored: api.Snapshot{CustomHotkeys: hotkeys.Overrides{
		"annotation:undo": {Key: "ctrl+u", Active: true},
	}}}
	m := newLoaded(t, svc)

	m, res := stepCmd(t, m, runes("X"))
	if res != nil || svc.updates != 0 {
		t.Fatal("reset ran without confirmation")
	}
	if m.dialog == nil || !m.dialog.Visible() {
		t.Fatal("no confirmation dialog")
	}

	m, res = stepCmd(t, m, components.DialogResult{Tag: tagReset, Confirmed: true})
	m = step(t, m, res)
	if len(svc.stored.CustomHotkeys) != 0 || svc.updates != 1 {
		t.Fatalf("stored = %+v", svc.stored)
	}
	if b, _ := m.state.Binding("1"); b.Key != "ctrl+z" {
		t.Fatalf("not reset: %+v", b)
	}
}

func TestExportWritesFileAndAsksBeforeOverwrite(t *testing.T) {
	m := newLoaded(t, &fakeService{})
	path := filepath.Join(t.TempDir(), "keys.yaml")

	m, res := stepCmd(t, m, components.DialogResult{Tag: tagExport, Confirmed: true, Value: path})
	if info, ok := res.(common.InfoMsg); !ok || !strings.Contains(info.Text, "3 hotkeys") {
		t.Fatalf("msg = %#v", res)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if imp, err := hotkeys.ParseImport(data); err != nil || len(imp.Bindings) != 3 {
		t.Fatalf("export unreadable: %v", err)
	}

	m, res = stepCmd(t, m, components.DialogResult{Tag: tagExport, Confirmed: true, Value: path})
	if res != nil || m.dialog == nil || m.exportPath != path {
		t.Fatal("overwrite was not confirmed first")
	}
	m, res = stepCmd(t, m, components.DialogResult{Tag: tagExportOverwrite})
	if res != nil || m.exportPath != "" {
		t.Fatal("declined overwrite still exported")
	}
}

func TestImportAppliesAndSaves(t *testing.T) {
	svc := &fakeService{}
	m := newLoaded(t, svc)

	edited := testCatalog().Defaults()
	edited[2].Key = "shift+b"
	data, err := hotkeys.Export(edited, hotkeys.DefaultSettings(), time.Now(), hotkeys.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "in.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	m, res := stepCmd(t, m, components.DialogResult{Tag: tagImport, Confirmed: true, Value: path})
	m = step(t, m, res)
	if b, _ := m.state.Binding("3"); b.Key != "shift+b" {
		t.Fatalf("import not applied: %+v", b)
	}
	if svc.stored.CustomHotkeys["tools:brush"].Key != "shift+b" {
		t.Fatalf("import not saved: %+v", svc.stored.CustomHotkeys)
	}
	if !strings.Contains(m.statusMsg, "Imported 3 hotkeys") {
		t.Fatalf("status = %q", m.statusMsg)
	}
}

func TestImportMissingFile(t *testing.T) {
	m := newLoaded(t, &fakeService{})
	_, res := stepCmd(t, m, components.DialogResult{Tag: tagImport, Confirmed: true, Value: filepath.Join(t.TempDir(), "nope.json")})
	if _, ok := res.(common.ErrMsg); !ok {
		t.Fatalf("msg = %#v", res)
	}
}

func TestQuitWithUnsavedAsks(t *testing.T) {
	m := newLoaded(t, &fakeService{})
	if _, res := stepCmd(t, m, runes("q")); res != (tea.QuitMsg{}) {
		t.Fatalf("clean quit = %#v", res)
	}

	_, _ = m.state.Toggle("1")
	m, res := stepCmd(t, m, runes("q"))
	if res != nil || m.dialog == nil {
		t.Fatal("quit with unsaved edits did not ask")
	}
	m, res = stepCmd(t, m, runes("y"))
	if _, res = stepCmd(t, m, res); res != (tea.QuitMsg{}) {
		t.Fatalf("confirmed quit = %#v", res)
	}
}

func TestCacheChangeReloadsOnlyWhenClean(t *testing.T) {
	changed := true
	m := newLoaded(t, &fakeService{})
	m = m.WithCacheCheck(func() bool { return changed })

	if _, cmd := m.Update(common.CacheChangedMsg{}); cmd == nil {
		t.Fatal("clean state should reload")
	}

	_, _ = m.state.Toggle("1")
	next, cmd := m.Update(common.CacheChangedMsg{})
	if cmd != nil {
		t.Fatal("reload would drop unsaved edits")
	}
	if !strings.Contains(next.(Model).statusMsg, "another window") {
		t.Fatalf("status = %q", next.(Model).statusMsg)
	}

	changed = false
	m.state.MarkSaved()
	if _, cmd := m.Update(common.CacheChangedMsg{}); cmd != nil {
		t.Fatal("own write should be ignored")
	}
}

func TestTabCycling(t *testing.T) {
	m := newLoaded(t, &fakeService{})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.activeTab != "tools" {
		t.Fatalf("active = %q", m.activeTab)
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.activeTab != common.TabSettings {
		t.Fatalf("active = %q", m.activeTab)
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.activeTab != "annotation" {
		t.Fatalf("active = %q", m.activeTab)
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3"), Alt: true})
	if m.activeTab != common.TabSettings {
		t.Fatalf("alt+3 = %q", m.activeTab)
	}
}

func TestHelpListsActiveSectionHotkeys(t *testing.T) {
	m := newLoaded(t, &fakeService{})
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 60})
	m = step(t, m, runes("?"))
	out := m.View()
	for _, want := range []string{"Keyboard Shortcuts", "Hotkeys: Annotation", "ctrl+z"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}
}
