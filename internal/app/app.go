package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Akashdeep-Patra/hkm/internal/api"
	"github.com/Akashdeep-Patra/hkm/internal/common"
	"github.com/Akashdeep-Patra/hkm/internal/config"
	"github.com/Akashdeep-Patra/hkm/internal/hotkeys"
	"github.com/Akashdeep-Patra/hkm/internal/manager"
	"github.com/Akashdeep-Patra/hkm/internal/storage"
	"github.com/Akashdeep-Patra/hkm/internal/ui"
	"github.com/Akashdeep-Patra/hkm/internal/ui/components"
	"github.com/Akashdeep-Patra/hkm/internal/ui/views"
)

// Dialog tags.
const (
	tagConflict        = "conflict"
	tagEditKey         = "edit-key"
	tagReset           = "reset"
	tagExport          = "export"
	tagExportOverwrite = "export-overwrite"
	tagImport          = "import"
	tagReload          = "reload"
	tagQuit            = "quit"
)

const defaultExportFile = "hotkeys.json"

// goos selects platform key names.
var goos = runtime.GOOS

// Model is the top-level Bubbletea model that orchestrates tabs and views.
type Model struct {
	ctx       context.Context
	mgr       *manager.Manager
	state     *hotkeys.State
	cfg       *config.Config
	styles    ui.Styles
	keys      KeyMap
	tabs      []common.TabMeta
	width     int
	height    int
	activeTab common.TabID
	views     map[common.TabID]common.View
	showHelp  bool
	statusMsg string
	statusErr bool
	statusExp time.Time
	dialog    *components.Dialog

	barData components.StatusBarData

	// busy is set while a request is in flight. Edits are refused until it
	// clears.
	busy bool

	// pendingID/pendingKey hold an assignment awaiting conflict or edit
	// confirmation; exportPath holds an export awaiting overwrite consent.
	pendingID  string
	pendingKey string
	exportPath string

	// changedOnDisk reports whether another process rewrote the cache.
	changedOnDisk func() bool
	now           func() time.Time
}

// requestFailedMsg ends a failed request.
type requestFailedMsg struct {
	action string
	err    error
}

// New creates the application model. The binding set starts at the
// catalog defaults until Init's load completes.
func New(ctx context.Context, mgr *manager.Manager, cfg *config.Config) (Model, error) {
	theme, err := ui.ThemeByName(cfg.Theme)
	if err != nil {
		return Model{}, err
	}
	styles := ui.NewStyles(theme)
	keys := NewKeyMap(cfg.Keys)
	catalog := mgr.Catalog()
	state := hotkeys.NewState(catalog)

	viewMap := make(map[common.TabID]common.View)
	for _, s := range catalog.Sections() {
		viewMap[common.TabID(s.ID)] = views.NewSectionView(state, s, styles, keys.View)
	}
	viewMap[common.TabSettings] = views.NewSettingsView(state, mgr.Endpoint(), styles, keys.View)

	tabs := common.Tabs(catalog)
	return Model{
		ctx:       ctx,
		mgr:       mgr,
		state:     state,
		cfg:       cfg,
		styles:    styles,
		keys:      keys,
		tabs:      tabs,
		activeTab: tabs[0].ID,
		views:     viewMap,
		barData:   components.StatusBarData{Endpoint: mgr.Endpoint()},
		busy:      true, // Init's load
		now:       time.Now,
	}, nil
}

// WithCacheCheck installs the function consulted when the cache watcher
// fires, so the model ignores rewrites made by this process.
func (m Model) WithCacheCheck(changed func() bool) Model {
	m.changedOnDisk = changed
	return m
}

// State exposes the edit state.
func (m Model) State() *hotkeys.State { return m.state }

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	ctx, mgr := m.ctx, m.mgr
	return func() tea.Msg {
		return common.LoadedMsg{Loaded: mgr.Load(ctx)}
	}
}

// ── Commands ────────────────────────────────────────────────────────────────

func (m *Model) load(note string) tea.Cmd {
	m.busy = true
	ctx, mgr := m.ctx, m.mgr
	return func() tea.Msg {
		return common.LoadedMsg{Loaded: mgr.Load(ctx), Note: note}
	}
}

// save sends the whole set. section names the tab whose dirty flag clears;
// empty clears all of them.
func (m *Model) save(section string) tea.Cmd {
	m.busy = true
	ctx, mgr := m.ctx, m.mgr
	bindings, settings := m.state.Bindings(), m.state.Settings()
	return func() tea.Msg {
		if err := mgr.Save(ctx, bindings, settings); err != nil {
			return requestFailedMsg{action: "Save", err: err}
		}
		return common.SavedMsg{Section: section}
	}
}

func (m *Model) reset() tea.Cmd {
	m.busy = true
	ctx, mgr := m.ctx, m.mgr
	return func() tea.Msg {
		loaded, err := mgr.Reset(ctx)
		if err != nil {
			return requestFailedMsg{action: "Reset", err: err}
		}
		return common.LoadedMsg{Loaded: loaded, Note: "All hotkeys reset to defaults"}
	}
}

func (m *Model) importFile(path string) tea.Cmd {
	m.busy = true
	ctx, mgr := m.ctx, m.mgr
	bindings, settings := m.state.Bindings(), m.state.Settings()
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return requestFailedMsg{action: "Import", err: err}
		}
		res, err := mgr.Import(ctx, data, bindings, settings)
		if err != nil {
			return requestFailedMsg{action: "Import", err: err}
		}
		return common.ImportedMsg{Result: res}
	}
}

func (m Model) exportFile(path string) tea.Cmd {
	data, err := m.mgr.Export(m.state.Bindings(), m.state.Settings(), hotkeys.FormatForPath(path))
	if err != nil {
		return common.CmdErr(err)
	}
	n := len(m.state.Bindings())
	return func() tea.Msg {
		if err := storage.WriteAtomic(path, data); err != nil {
			return common.ErrMsg{Err: fmt.Errorf("export: %w", err)}
		}
		return common.InfoMsg{Text: fmt.Sprintf("Exported %s to %s", ui.Plural(n, "hotkey"), path)}
	}
}

func (m Model) copyExport() tea.Cmd {
	data, err := m.mgr.Export(m.state.Bindings(), m.state.Settings(), hotkeys.FormatJSON)
	if err != nil {
		return common.CmdErr(err)
	}
	return func() tea.Msg {
		if err := clipboard.WriteAll(string(data)); err != nil {
			return common.ErrMsg{Err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return common.InfoMsg{Text: "Export copied to clipboard"}
	}
}

// ── Update ──────────────────────────────────────────────────────────────────

// Update processes messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Dialog has exclusive input when visible.
	if m.dialog != nil && m.dialog.Visible() {
		if _, ok := msg.(tea.KeyMsg); ok {
			d, cmd := m.dialog.Update(msg)
			m.dialog = &d
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViews()
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case common.LoadedMsg:
		m.busy = false
		m.state.Replace(msg.Loaded.Bindings, msg.Loaded.Settings)
		m.barData.Source = msg.Loaded.Source.String()
		m.barData.Offline = msg.Loaded.Source != manager.SourceRemote
		m.refreshBar()
		cmds := m.broadcast(msg)
		switch {
		case msg.Loaded.Warning != "":
			m.setStatus(msg.Loaded.Warning, true, 8*time.Second)
		case msg.Note != "":
			m.setStatus(msg.Note, false, 3*time.Second)
		}
		return m, tea.Batch(cmds...)

	case common.SavedMsg:
		m.busy = false
		if msg.Section == "" {
			m.state.MarkSaved()
			m.setStatus("All hotkeys saved", false, 3*time.Second)
		} else {
			m.state.MarkSaved(msg.Section)
			m.setStatus(m.sectionTitle(msg.Section)+" saved", false, 3*time.Second)
		}
		m.barData.Source = manager.SourceRemote.String()
		m.barData.Offline = false
		m.refreshBar()
		return m, nil

	case common.ImportedMsg:
		m.busy = false
		res := msg.Result
		m.state.Replace(res.Bindings, res.Settings)
		m.barData.Source = res.Source.String()
		m.barData.Offline = false
		m.refreshBar()
		cmds := m.broadcast(common.LoadedMsg{Loaded: res.Loaded})
		text := "Imported " + ui.Plural(res.Imported, "hotkey")
		if res.Unknown > 0 {
			text += fmt.Sprintf(" (%d not recognised)", res.Unknown)
		}
		m.setStatus(text, false, 4*time.Second)
		return m, tea.Batch(cmds...)

	case requestFailedMsg:
		m.busy = false
		slog.Warn("request failed", "action", msg.action, "err", msg.err)
		text := msg.action + " failed: " + api.Message(msg.err)
		if errors.Is(msg.err, manager.ErrRefetch) {
			text = "Import was stored but reloading failed; press " + m.keys.Reload.Help().Key + " to retry"
		}
		m.setStatus(text, true, 6*time.Second)
		return m, nil

	case common.SaveRequestMsg:
		if m.busy {
			return m, nil
		}
		cmd := m.save(msg.Section)
		return m, cmd

	case common.AssignKeyMsg:
		cmd := m.assign(msg.ID, msg.Key)
		return m, cmd

	case common.EditKeyMsg:
		b, ok := m.state.Binding(msg.ID)
		if !ok {
			return m, nil
		}
		m.pendingID = msg.ID
		d := components.NewInputDialog(m.styles, "Set "+b.Label,
			"Type a combination, e.g. ctrl+shift+z or escape", b.Key, tagEditKey)
		m.dialog = &d
		return m, nil

	case common.CacheChangedMsg:
		if m.busy || (m.changedOnDisk != nil && !m.changedOnDisk()) {
			return m, nil
		}
		if m.state.HasUnsaved() {
			m.setStatus("Hotkeys changed in another window; press "+m.keys.Reload.Help().Key+" to reload", false, 6*time.Second)
			return m, nil
		}
		cmd := m.load("Reloaded changes from another window")
		return m, cmd

	case common.ErrMsg:
		m.setStatus(api.Message(msg.Err), true, 5*time.Second)
		return m, nil

	case common.InfoMsg:
		m.setStatus(msg.Text, false, 3*time.Second)
		m.refreshBar()
		return m, nil

	case common.SwitchTabMsg:
		m.switchTo(msg.Tab)
		return m, nil

	case components.DialogResult:
		m.dialog = nil
		return m.handleDialog(msg)
	}

	cmd := m.forward(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A view capturing input (recording, filtering) gets every key. While a
	// request is in flight only esc reaches it, to cancel.
	if v, ok := m.views[m.activeTab]; ok && v.InputCapture() {
		if m.busy && msg.Type != tea.KeyEsc {
			m.setStatus("Waiting for the server…", false, 2*time.Second)
			return m, nil
		}
		cmd := m.forward(msg)
		m.refreshBar()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.state.HasUnsaved() {
			d := components.NewConfirmDialog(m.styles, "Quit?",
				"There are unsaved changes in "+m.unsavedList()+". Quit without saving?", tagQuit, true)
			m.dialog = &d
			return m, nil
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case m.showHelp && msg.Type == tea.KeyEsc:
		m.showHelp = false
		return m, nil
	case key.Matches(msg, m.keys.NextTab):
		m.cycleTab(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevTab):
		m.cycleTab(-1)
		return m, nil
	case key.Matches(msg, m.keys.TabFirst):
		if i := int(msg.String()[len(msg.String())-1] - '1'); i >= 0 && i < len(m.tabs) {
			m.switchTo(m.tabs[i].ID)
		}
		return m, nil
	}

	if m.busy && !key.Matches(msg, m.keys.View.Up, m.keys.View.Down) {
		m.setStatus("Waiting for the server…", false, 2*time.Second)
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.SaveAll):
		cmd := m.save("")
		return m, cmd
	case key.Matches(msg, m.keys.Reload):
		cmd := m.requestReload()
		return m, cmd
	case key.Matches(msg, m.keys.Reset):
		d := components.NewConfirmDialog(m.styles, "Reset all hotkeys?",
			"Every hotkey goes back to its default and your customizations on the server are removed.", tagReset, true)
		m.dialog = &d
		return m, nil
	case key.Matches(msg, m.keys.Export):
		d := components.NewInputDialog(m.styles, "Export hotkeys",
			"File to write (.json or .yaml)", defaultExportFile, tagExport)
		m.dialog = &d
		return m, nil
	case key.Matches(msg, m.keys.Import):
		d := components.NewInputDialog(m.styles, "Import hotkeys",
			"File to read; imported hotkeys are saved to the server", "", tagImport)
		m.dialog = &d
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyExport()
	}

	cmd := m.forward(msg)
	m.refreshBar()
	return m, cmd
}

func (m Model) handleDialog(res components.DialogResult) (tea.Model, tea.Cmd) {
	switch res.Tag {
	case tagQuit:
		if res.Confirmed {
			return m, tea.Quit
		}
	case tagConflict:
		id, k := m.pendingID, m.pendingKey
		m.pendingID, m.pendingKey = "", ""
		if !res.Confirmed {
			return m, common.CmdInfo("Key not changed")
		}
		if err := m.state.SetKey(id, k, true); err != nil {
			return m, common.CmdErr(err)
		}
		cmd := m.assigned(id)
		return m, cmd
	case tagEditKey:
		id := m.pendingID
		m.pendingID = ""
		if !res.Confirmed || strings.TrimSpace(res.Value) == "" {
			return m, nil
		}
		cmd := m.assign(id, res.Value)
		return m, cmd
	case tagReset:
		if res.Confirmed && !m.busy {
			cmd := m.reset()
			return m, cmd
		}
	case tagReload:
		if res.Confirmed && !m.busy {
			cmd := m.load("Reloaded from " + m.mgr.Endpoint())
			return m, cmd
		}
	case tagExport:
		path := strings.TrimSpace(res.Value)
		if !res.Confirmed || path == "" {
			return m, nil
		}
		if m.cfg.ConfirmDestructive && storage.Exists(path) {
			m.exportPath = path
			d := components.NewConfirmDialog(m.styles, "Overwrite file?", path+" already exists. Replace it?", tagExportOverwrite, true)
			m.dialog = &d
			return m, nil
		}
		return m, m.exportFile(path)
	case tagExportOverwrite:
		path := m.exportPath
		m.exportPath = ""
		if res.Confirmed {
			return m, m.exportFile(path)
		}
	case tagImport:
		path := strings.TrimSpace(res.Value)
		if !res.Confirmed || path == "" || m.busy {
			return m, nil
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return m, common.CmdErr(fmt.Errorf("import: %s does not exist", path))
		}
		cmd := m.importFile(path)
		return m, cmd
	}
	return m, nil
}

// assign applies a key, asking first when other bindings use it.
func (m *Model) assign(id, k string) tea.Cmd {
	err := m.state.SetKey(id, k, false)
	var ce *hotkeys.ConflictError
	switch {
	case errors.As(err, &ce):
		m.pendingID, m.pendingKey = ce.ID, ce.Key
		names := make([]string, len(ce.Conflicts))
		for i, b := range ce.Conflicts {
			names[i] = fmt.Sprintf("%s (%s)", b.Label, m.sectionTitle(b.Section))
		}
		d := components.NewConfirmDialog(m.styles, "Key already in use",
			fmt.Sprintf("%s is also bound to %s. Use it anyway?", m.display(ce.Key), strings.Join(names, ", ")),
			tagConflict, false)
		m.dialog = &d
		return nil
	case err != nil:
		return common.CmdErr(fmt.Errorf("%q: %w", k, err))
	}
	m.refreshBar()
	return m.assigned(id)
}

func (m *Model) assigned(id string) tea.Cmd {
	m.refreshBar()
	b, _ := m.state.Binding(id)
	return common.CmdInfo(fmt.Sprintf("%s → %s", b.Label, m.display(b.Key)))
}

func (m *Model) requestReload() tea.Cmd {
	if m.busy {
		return nil
	}
	if m.state.HasUnsaved() {
		d := components.NewConfirmDialog(m.styles, "Discard changes?",
			"Reloading drops the unsaved changes in "+m.unsavedList()+".", tagReload, true)
		m.dialog = &d
		return nil
	}
	return m.load("Reloaded from " + m.mgr.Endpoint())
}

// forward sends msg to the active view.
func (m *Model) forward(msg tea.Msg) tea.Cmd {
	v, ok := m.views[m.activeTab]
	if !ok {
		return nil
	}
	updated, cmd := v.Update(msg)
	m.views[m.activeTab] = updated
	return cmd
}

// broadcast sends msg to every view.
func (m *Model) broadcast(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	for id, v := range m.views {
		updated, cmd := v.Update(msg)
		m.views[id] = updated
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

func (m *Model) setStatus(text string, isErr bool, d time.Duration) {
	m.statusMsg = text
	m.statusErr = isErr
	m.statusExp = m.now().Add(d)
}

// refreshBar recomputes the counters shown in the status bar.
func (m *Model) refreshBar() {
	m.barData.Dirty = len(m.state.DirtySections())
	if m.state.SettingsDirty() {
		m.barData.Dirty++
	}
	m.barData.Conflicts = len(hotkeys.Duplicates(m.state.Bindings()))
}

func (m Model) display(k string) string {
	return hotkeys.Display(k, m.state.Settings().AutoTranslatePlatforms, goos)
}

func (m Model) sectionTitle(id string) string {
	if s, ok := m.state.Catalog().Section(id); ok {
		return s.Title
	}
	return id
}

func (m Model) unsavedList() string {
	var names []string
	for _, id := range m.state.DirtySections() {
		names = append(names, m.sectionTitle(id))
	}
	if m.state.SettingsDirty() {
		names = append(names, "Settings")
	}
	return strings.Join(names, ", ")
}

// ── View ────────────────────────────────────────────────────────────────────

// View renders the entire UI. This is a pure function: no I/O.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showHelp {
		return components.RenderHelp(m.styles, "Keyboard Shortcuts", m.helpSections(), m.width, m.height)
	}

	tabBar := components.RenderTabs(m.styles, m.buildTabInfos(), m.width)

	content := ""
	if v, ok := m.views[m.activeTab]; ok {
		content = v.View()
	}
	content = lipgloss.NewStyle().Width(m.width).Height(m.contentHeight()).MaxHeight(m.contentHeight()).Render(content)

	barData := m.barData
	barData.Busy = m.busy
	if m.statusMsg != "" && m.now().Before(m.statusExp) {
		barData.Message = m.statusMsg
		barData.IsError = m.statusErr
	}
	statusBar := components.RenderStatusBar(m.styles, barData, m.width)

	screen := lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)

	if m.dialog != nil && m.dialog.Visible() {
		screen = ui.PlaceCentre(m.width, m.height, m.dialog.View())
	}
	return screen
}

// helpSections lists the program's keys, the active tab's keys and the
// current hotkeys of the sections relevant to help.context_url.
func (m Model) helpSections() []components.HelpSection {
	entry := func(b key.Binding) components.HelpEntry {
		h := b.Help()
		return components.HelpEntry{Key: h.Key, Desc: h.Desc}
	}
	sections := []components.HelpSection{
		{Title: "Tabs", Entries: []components.HelpEntry{
			entry(m.keys.NextTab), entry(m.keys.PrevTab), entry(m.keys.TabFirst),
			{Key: "click / scroll bar", Desc: "switch tab (mouse)"},
		}},
		{Title: "General", Entries: []components.HelpEntry{
			entry(m.keys.SaveAll), entry(m.keys.Reload), entry(m.keys.Export),
			entry(m.keys.Import), entry(m.keys.Copy), entry(m.keys.Reset),
			entry(m.keys.Help), entry(m.keys.Quit),
		}},
	}
	if v, ok := m.views[m.activeTab]; ok {
		sections = append(sections, components.HelpSection{Title: m.tabName(m.activeTab), Entries: v.ShortHelp()})
	}

	ids := m.state.Catalog().SectionsForURL(m.cfg.Help.ContextURL)
	if m.cfg.Help.ContextURL == "" {
		if _, ok := m.state.Catalog().Section(string(m.activeTab)); ok {
			ids = []string{string(m.activeTab)}
		} else {
			ids = nil
		}
	}
	for _, id := range ids {
		var entries []components.HelpEntry
		for _, g := range m.state.Section(id) {
			for _, b := range g.Bindings {
				if b.Active && b.Key != "" {
					entries = append(entries, components.HelpEntry{Key: m.display(b.Key), Desc: b.Label})
				}
			}
		}
		sections = append(sections, components.HelpSection{Title: "Hotkeys: " + m.sectionTitle(id), Entries: entries})
	}
	return sections
}

func (m Model) contentHeight() int {
	tabRows := components.TabBarRows(m.buildTabInfos(), m.width)
	// height - tabRows - statusBar(1) - bottomPadding(1)
	return max(1, m.height-tabRows-2)
}

func (m *Model) resizeViews() {
	h := m.contentHeight()
	for _, v := range m.views {
		v.SetSize(m.width, h)
	}
}

func (m *Model) cycleTab(delta int) {
	n := len(m.tabs)
	m.activeTab = m.tabs[(m.tabIndex()+delta+n)%n].ID
}

func (m Model) tabIndex() int {
	for i, t := range m.tabs {
		if t.ID == m.activeTab {
			return i
		}
	}
	return 0
}

func (m Model) tabName(id common.TabID) string {
	for _, t := range m.tabs {
		if t.ID == id {
			return t.Name
		}
	}
	return string(id)
}

func (m *Model) switchTo(tab common.TabID) {
	if _, ok := m.views[tab]; ok {
		m.activeTab = tab
	}
}

// handleMouse processes mouse events: tab clicks, scroll wheel, and click-through.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.dialog != nil && m.dialog.Visible() {
		return m, nil
	}
	tabs := m.buildTabInfos()
	tabBarH := components.TabBarRows(tabs, m.width)

	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		if msg.Y < tabBarH {
			if msg.Button == tea.MouseButtonWheelUp {
				m.cycleTab(-1)
			} else {
				m.cycleTab(1)
			}
			return m, nil
		}
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y < tabBarH {
			if i := components.TabAt(tabs, m.width, msg.X, msg.Y); i >= 0 {
				m.switchTo(m.tabs[i].ID)
			}
			return m, nil
		}
	default:
		return m, nil
	}

	msg.Y -= tabBarH
	cmd := m.forward(msg)
	return m, cmd
}

func (m Model) buildTabInfos() []components.TabInfo {
	infos := make([]components.TabInfo, len(m.tabs))
	for i, t := range m.tabs {
		dirty := m.state.Dirty(string(t.ID))
		if t.ID == common.TabSettings {
			dirty = m.state.SettingsDirty()
		}
		infos[i] = components.TabInfo{
			Name:   t.Name,
			Icon:   t.Icon,
			Active: t.ID == m.activeTab,
			Group:  t.Group,
			Dirty:  dirty,
		}
	}
	return infos
}
