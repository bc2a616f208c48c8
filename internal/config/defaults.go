package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// KeyBindings maps the manager's own actions to terminal keys. Each value
// is a comma-separated list of Bubbletea key names. These are the keys of
// this program, not the hotkeys being edited.
type KeyBindings struct {
	Quit     string `mapstructure:"quit"`
	Help     string `mapstructure:"help"`
	Tab      string `mapstructure:"tab"`
	ShiftTab string `mapstructure:"shift_tab"`
	Up       string `mapstructure:"up"`
	Down     string `mapstructure:"down"`
	Record   string `mapstructure:"record"`
	Type     string `mapstructure:"type"`
	Toggle   string `mapstructure:"toggle"`
	Restore  string `mapstructure:"restore"`
	Save     string `mapstructure:"save"`
	SaveAll  string `mapstructure:"save_all"`
	Reload   string `mapstructure:"reload"`
	Filter   string `mapstructure:"filter"`
	Export   string `mapstructure:"export"`
	Import   string `mapstructure:"import"`
	Reset    string `mapstructure:"reset"`
	Copy     string `mapstructure:"copy"`
}

// DefaultKeyBindings returns the default key bindings.
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		Quit:     "q,ctrl+c",
		Help:     "?",
		Tab:      "tab,l,right",
		ShiftTab: "shift+tab,h,left",
		Up:       "k,up",
		Down:     "j,down",
		Record:   "enter,r",
		Type:     "t",
		Toggle:   " ",
		Restore:  "d",
		Save:     "s",
		SaveAll:  "S",
		Reload:   "R",
		Filter:   "/",
		Export:   "e",
		Import:   "i",
		Reset:    "X",
		Copy:     "y",
	}
}

// Split returns the individual keys of a binding value.
func Split(v string) []string {
	if v == " " {
		return []string{" "}
	}
	var out []string
	for _, k := range strings.Split(v, ",") {
		if k == " " {
			out = append(out, k)
			continue
		}
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func setKeyDefaults(v *viper.Viper) {
	d := DefaultKeyBindings()
	for key, val := range d.fields() {
		v.SetDefault("keys."+key, *val)
	}
}

func (k *KeyBindings) fields() map[string]*string {
	return map[string]*string{
		"quit":      &k.Quit,
		"help":      &k.Help,
		"tab":       &k.Tab,
		"shift_tab": &k.ShiftTab,
		"up":        &k.Up,
		"down":      &k.Down,
		"record":    &k.Record,
		"type":      &k.Type,
		"toggle":    &k.Toggle,
		"restore":   &k.Restore,
		"save":      &k.Save,
		"save_all":  &k.SaveAll,
		"reload":    &k.Reload,
		"filter":    &k.Filter,
		"export":    &k.Export,
		"import":    &k.Import,
		"reset":     &k.Reset,
		"copy":      &k.Copy,
	}
}

// globalActions are handled before any view sees a key, so they must not
// share keys with each other.
var globalActions = []string{
	"quit", "help", "tab", "shift_tab", "save_all", "reload", "export", "import", "reset", "copy",
}

func (k *KeyBindings) validate() error {
	fields := k.fields()
	for name, val := range fields {
		if len(Split(*val)) == 0 {
			return fmt.Errorf("keys.%s: no key given", name)
		}
	}
	owner := make(map[string]string)
	for _, name := range globalActions {
		for _, key := range Split(*fields[name]) {
			if prev, ok := owner[key]; ok {
				return fmt.Errorf("keys.%s: %q is already bound to keys.%s", name, key, prev)
			}
			owner[key] = name
		}
	}
	return nil
}
