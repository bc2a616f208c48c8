// Package hotkeys holds the hotkey domain: bindings, the compiled-in catalog,
// canonical key combinations, capture, conflict detection, default/override
// merging, import/export envelopes and the in-memory edit state.
//
// Nothing in this package performs I/O. Network and disk access live in the
// api and manager packages so that every rule here is testable in isolation.
package hotkeys

import "strings"

// Binding is one keyboard shortcut record.
type Binding struct {
	ID          string `json:"id" yaml:"id"`
	Section     string `json:"section" yaml:"section"`
	Subgroup    string `json:"subgroup,omitempty" yaml:"subgroup,omitempty"`
	Element     string `json:"element" yaml:"element"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Key         string `json:"key" yaml:"key"`
	Active      bool   `json:"active" yaml:"active"`
}

// OverrideKey returns the "section:element" key the server stores this
// binding's override under.
func (b Binding) OverrideKey() string {
	return OverrideKeyOf(b.Section, b.Element)
}

// OverrideKeyOf joins a section and element into an override key.
func OverrideKeyOf(section, element string) string {
	return section + ":" + element
}

// SplitOverrideKey splits "section:element". ok is false when either part is
// missing.
func SplitOverrideKey(k string) (section, element string, ok bool) {
	section, element, found := strings.Cut(k, ":")
	if !found || section == "" || element == "" {
		return "", "", false
	}
	return section, element, true
}

// Section is a static grouping of bindings by feature area.
type Section struct {
	ID          string
	Title       string
	Description string
}

// Settings are global (not per-binding) hotkey preferences.
type Settings struct {
	AutoTranslatePlatforms bool `json:"autoTranslatePlatforms" yaml:"autoTranslatePlatforms"`
}

// DefaultSettings returns the compiled-in settings.
func DefaultSettings() Settings {
	return Settings{AutoTranslatePlatforms: true}
}

// Override is a user value stored server-side for one binding.
type Override struct {
	Key         string `json:"key"`
	Active      bool   `json:"active"`
	Description string `json:"description,omitempty"`
}

// Overrides maps "section:element" to the stored override.
// An empty map means "use compiled-in defaults".
type Overrides map[string]Override

func cloneBindings(in []Binding) []Binding {
	if in == nil {
		return nil
	}
	out := make([]Binding, len(in))
	copy(out, in)
	return out
}
