package common

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Akashdeep-Patra/hkm/internal/hotkeys"
	"github.com/Akashdeep-Patra/hkm/internal/manager"
	"github.com/Akashdeep-Patra/hkm/internal/ui/components"
)

// ── Tab identifiers ─────────────────────────────────────────────────────────

// TabID identifies a tab. Section tabs use the section id.
type TabID string

// TabSettings is the global settings tab.
const TabSettings TabID = "settings"

// TabMeta describes a tab for display purposes.
type TabMeta struct {
	ID    TabID
	Name  string // Display name shown in the tab bar.
	Icon  string // Unicode icon (nerdfont-free, works in all terminals).
	Group string // Logical group used for separators in the tab bar.
}

var sectionIcons = map[string]string{
	"annotation":   "✎",
	"regions":      "▣",
	"tools":        "⚒",
	"image":        "◫",
	"audio":        "♪",
	"video":        "▶",
	"data_manager": "☰",
}

var sectionGroups = map[string]string{
	"annotation":   "label",
	"regions":      "label",
	"tools":        "label",
	"image":        "media",
	"audio":        "media",
	"video":        "media",
	"data_manager": "data",
}

// Tabs returns one tab per catalog section, in catalog order, followed by
// the settings tab.
func Tabs(catalog hotkeys.Catalog) []TabMeta {
	sections := catalog.Sections()
	tabs := make([]TabMeta, 0, len(sections)+1)
	for _, s := range sections {
		icon, ok := sectionIcons[s.ID]
		if !ok {
			icon = "•"
		}
		group, ok := sectionGroups[s.ID]
		if !ok {
			group = "label"
		}
		tabs = append(tabs, TabMeta{ID: TabID(s.ID), Name: s.Title, Icon: icon, Group: group})
	}
	return append(tabs, TabMeta{ID: TabSettings, Name: "Settings", Icon: "⚙", Group: "app"})
}

// ── Custom messages ─────────────────────────────────────────────────────────


// ErrMsg carries an error to be displayed.
type ErrMsg struct{ Err error }

// InfoMsg carries an informational message.
type InfoMsg struct{ Text string }

// SwitchTabMsg requests a tab switch.
type SwitchTabMsg struct{ Tab TabID }

// LoadedMsg carries a freshly loaded binding set.
type LoadedMsg struct {
	Loaded manager.Loaded
	// Note is shown as an info message once the set is installed.
	Note string
}

// AssignKeyMsg asks the app to bind a captured or typed key. The app asks
// for confirmation when the key is already in use.
type AssignKeyMsg struct {
	ID  string
	Key string
}

// EditKeyMsg asks the app to prompt for a key typed as text, for keys the
// terminal cannot deliver to the recorder.
type EditKeyMsg struct{ ID string }

// SaveRequestMsg asks the app to persist the whole set. Section names the
// tab that asked; empty means every section.
type SaveRequestMsg struct{ Section string }

// SavedMsg reports a completed save.
type SavedMsg struct{ Section string }

// ImportedMsg reports a completed import.
type ImportedMsg struct{ Result manager.ImportResult }

// CacheChangedMsg is sent when another process rewrote the override cache.
type CacheChangedMsg struct{}

// CmdErr creates a tea.Cmd that sends an ErrMsg.
func CmdErr(err error) tea.Cmd {
	return func() tea.Msg { return ErrMsg{Err: err} }
}

// CmdInfo creates a tea.Cmd that sends an InfoMsg.
func CmdInfo(text string) tea.Cmd {
	return func() tea.Msg { return InfoMsg{Text: text} }
}

// ── View interface ──────────────────────────────────────────────────────────

// View is the interface every tab view must implement.
type View interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (View, tea.Cmd)
	View() string
	SetSize(width, height int)
	ShortHelp() []components.HelpEntry

	// InputCapture returns true while the view records a key combination or
	// edits its filter, so every key goes to the view instead of the app.
	InputCapture() bool
}
