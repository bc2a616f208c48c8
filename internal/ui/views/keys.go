package views

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Akashdeep-Patra/hkm/internal/hotkeys"
	"github.com/Akashdeep-Patra/hkm/internal/ui/components"
)

// Keys are the view-level key bindings.
type Keys struct {
	Up      key.Binding
	Down    key.Binding
	Record  key.Binding
	Type    key.Binding
	Toggle  key.Binding
	Restore key.Binding
	Save    key.Binding
	Filter  key.Binding
}

func helpEntry(b key.Binding) components.HelpEntry {
	h := b.Help()
	return components.HelpEntry{Key: h.Key, Desc: h.Desc}
}

// teaKeyNames maps Bubbletea key names the recorder does not know.
var teaKeyNames = map[string]string{
	" ": "space",
	"@": "space", // ctrl+space arrives as ctrl+@
}

// keyEvent converts a terminal key press into a recorder event. Terminals
// report shifted letters as upper case and fold the alt modifier into the
// message; both become explicit modifiers.
func keyEvent(msg tea.KeyMsg) hotkeys.KeyEvent {
	var ev hotkeys.KeyEvent
	if msg.Paste {
		return ev
	}
	s := msg.String()
	for {
		switch {
		case strings.HasPrefix(s, "ctrl+"):
			ev.Ctrl = true
			s = s[len("ctrl+"):]
			continue
		case strings.HasPrefix(s, "shift+"):
			ev.Shift = true
			s = s[len("shift+"):]
			continue
		case strings.HasPrefix(s, "alt+"):
			ev.Alt = true
			s = s[len("alt+"):]
			continue
		}
		break
	}
	if r := []rune(s); len(r) == 1 && unicode.IsUpper(r[0]) {
		ev.Shift = true
		s = string(unicode.ToLower(r[0]))
	}
	if name, ok := teaKeyNames[s]; ok && (s != "@" || ev.Ctrl) {
		s = name
	}
	ev.Key = s
	return ev
}
