package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/Akashdeep-Patra/hkm/internal/config"
	"github.com/Akashdeep-Patra/hkm/internal/ui/views"
)

// KeyMap defines the global keybindings used across the application. Every
// binding comes from the keys section of the configuration.
type KeyMap struct {
	Quit     key.Binding
	Help     key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	SaveAll  key.Binding
	Reload   key.Binding
	Export   key.Binding
	Import   key.Binding
	Reset    key.Binding
	Copy     key.Binding
	TabFirst key.Binding // alt+1..alt+9 jump to a tab

	View views.Keys
}

// NewKeyMap builds the key map from configured key names.
func NewKeyMap(k config.KeyBindings) KeyMap {
	return KeyMap{
		Quit:     binding(k.Quit, "quit"),
		Help:     binding(k.Help, "help"),
		NextTab:  binding(k.Tab, "next tab"),
		PrevTab:  binding(k.ShiftTab, "prev tab"),
		SaveAll:  binding(k.SaveAll, "save all sections"),
		Reload:   binding(k.Reload, "reload from server"),
		Export:   binding(k.Export, "export to file"),
		Import:   binding(k.Import, "import from file"),
		Reset:    binding(k.Reset, "reset all to defaults"),
		Copy:     binding(k.Copy, "copy export to clipboard"),
		TabFirst: key.NewBinding(key.WithKeys("alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6", "alt+7", "alt+8", "alt+9"), key.WithHelp("alt+1…9", "jump to tab")),

		View: views.Keys{
			Up:      binding(k.Up, "up"),
			Down:    binding(k.Down, "down"),
			Record:  binding(k.Record, "record new key"),
			Type:    binding(k.Type, "type key as text"),
			Toggle:  binding(k.Toggle, "enable / disable"),
			Restore: binding(k.Restore, "restore default"),
			Save:    binding(k.Save, "save"),
			Filter:  binding(k.Filter, "filter"),
		},
	}
}

// DefaultKeyMap returns the key map for the default configuration.
func DefaultKeyMap() KeyMap {
	return NewKeyMap(config.DefaultKeyBindings())
}

func binding(value, desc string) key.Binding {
	keys := config.Split(value)
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey(keys), desc))
}

// helpKey renders keys for help text ("q / ctrl+c", "space").
func helpKey(keys []string) string {
	shown := make([]string, len(keys))
	for i, k := range keys {
		if k == " " {
			k = "space"
		}
		shown[i] = k
	}
	return strings.Join(shown, " / ")
}
