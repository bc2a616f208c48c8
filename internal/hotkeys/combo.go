package hotkeys

import (
	"errors"
	"fmt"
	"strings"
)

// Combo is a decomposed key combination. Its String form is the only place a
// canonical key string is built: ctrl, shift, alt, meta, then the key, all
// lower-case and joined with "+".
type Combo struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Meta  bool
	Key   string
}

var (
	// ErrEmptyKey is returned for an empty key string.
	ErrEmptyKey = errors.New("key cannot be empty")
	// ErrModifierOnly is returned when a combination has no non-modifier key.
	ErrModifierOnly = errors.New("modifier without key")
)

// String returns the canonical key string.
func (c Combo) String() string {
	parts := make([]string, 0, 5)
	if c.Ctrl {
		parts = append(parts, "ctrl")
	}
	if c.Shift {
		parts = append(parts, "shift")
	}
	if c.Alt {
		parts = append(parts, "alt")
	}
	if c.Meta {
		parts = append(parts, "meta")
	}
	return strings.Join(append(parts, c.Key), "+")
}

// modifierAliases maps every accepted modifier spelling to its canonical name.
var modifierAliases = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"ctl":     "ctrl",
	"shift":   "shift",
	"alt":     "alt",
	"option":  "alt",
	"opt":     "alt",
	"meta":    "meta",
	"cmd":     "meta",
	"command": "meta",
	"super":   "meta",
	"win":     "meta",
	"mod":     "meta",
}

// keyAliases normalises a few common key names.
var keyAliases = map[string]string{
	"esc":        "escape",
	"return":     "enter",
	"del":        "delete",
	"ins":        "insert",
	"pgup":       "pageup",
	"pgdown":     "pagedown",
	"pgdn":       "pagedown",
	"arrowup":    "up",
	"arrowdown":  "down",
	"arrowleft":  "left",
	"arrowright": "right",
}

// IsModifierKey reports whether name (any accepted spelling) is a bare modifier.
func IsModifierKey(name string) bool {
	_, ok := modifierAliases[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// ParseCombo decomposes a key string in any modifier order. A trailing "+"
// (as in "ctrl++") names the plus key itself.
func ParseCombo(s string) (Combo, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	if raw == "" {
		return Combo{}, ErrEmptyKey
	}

	var parts []string
	if raw == "+" {
		parts = []string{"+"}
	} else if strings.HasSuffix(raw, "++") {
		parts = append(strings.Split(strings.TrimSuffix(raw, "++"), "+"), "+")
	} else {
		parts = strings.Split(raw, "+")
	}

	var c Combo
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if mod, ok := modifierAliases[p]; ok {
			switch mod {
			case "ctrl":
				c.Ctrl = true
			case "shift":
				c.Shift = true
			case "alt":
				c.Alt = true
			case "meta":
				c.Meta = true
			}
			continue
		}
		if i != len(parts)-1 {
			return Combo{}, fmt.Errorf("unknown modifier %q in %q", p, s)
		}
		if p == "" {
			return Combo{}, fmt.Errorf("missing key in %q", s)
		}
		if alias, ok := keyAliases[p]; ok {
			p = alias
		}
		c.Key = p
	}

	if c.Key == "" {
		return Combo{}, fmt.Errorf("%w: %s", ErrModifierOnly, s)
	}
	return c, nil
}

// Canonical returns the canonical form of a key string.
func Canonical(s string) (string, error) {
	c, err := ParseCombo(s)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// Display renders a canonical key for humans. With translate set, modifier
// names follow the platform (goos as in runtime.GOOS).
func Display(key string, translate bool, goos string) string {
	if !translate {
		return key
	}
	c, err := ParseCombo(key)
	if err != nil {
		return key
	}
	var parts []string
	if c.Ctrl {
		parts = append(parts, "ctrl")
	}
	if c.Shift {
		parts = append(parts, "shift")
	}
	if c.Alt {
		if goos == "darwin" {
			parts = append(parts, "option")
		} else {
			parts = append(parts, "alt")
		}
	}
	if c.Meta {
		if goos == "darwin" {
			parts = append(parts, "cmd")
		} else {
			parts = append(parts, "super")
		}
	}
	return strings.Join(append(parts, c.Key), "+")
}
