package hotkeys

import (
	"errors"
	"fmt"
)

// ErrUnknownBinding is returned for an id that is not in the state.
var ErrUnknownBinding = errors.New("unknown hotkey")

// ConflictError is returned by SetKey when the key is already used and the
// caller did not confirm the duplicate.
type ConflictError struct {
	ID        string
	Key       string
	Conflicts []Binding
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("key %q is already used by %d other hotkey(s)", e.Key, len(e.Conflicts))
}

// Group is a run of bindings sharing a subgroup inside a section.
type Group struct {
	Subgroup string
	Bindings []Binding
}

// State is the in-memory edit state: the effective binding list, the global
// settings and per-section dirty flags. It is owned by a single event loop
// and is not safe for concurrent use.
type State struct {
	catalog  Catalog
	bindings []Binding
	settings Settings
	dirty    map[string]bool
	// settingsDirty is cleared by any save; every save sends the settings.
	settingsDirty bool
}

// NewState starts from the catalog defaults.
func NewState(catalog Catalog) *State {
	return &State{
		catalog:  catalog,
		bindings: catalog.Defaults(),
		settings: DefaultSettings(),
		dirty:    make(map[string]bool),
	}
}

// Catalog returns the compiled-in catalog the state was built from.
func (s *State) Catalog() Catalog { return s.catalog }

// Replace installs a freshly loaded set and clears all dirty flags.
func (s *State) Replace(bindings []Binding, settings Settings) {
	s.bindings = cloneBindings(bindings)
	s.settings = settings
	s.dirty = make(map[string]bool)
	s.settingsDirty = false
}

// Bindings returns a copy of the full binding list.
func (s *State) Bindings() []Binding { return cloneBindings(s.bindings) }

// Settings returns the global settings.
func (s *State) Settings() Settings { return s.settings }

// Binding returns the binding with id.
func (s *State) Binding(id string) (Binding, bool) {
	if i := s.index(id); i >= 0 {
		return s.bindings[i], true
	}
	return Binding{}, false
}

// Section returns the bindings of one section grouped by subgroup, in
// catalog order. Bindings without a subgroup form the first group.
func (s *State) Section(id string) []Group {
	var (
		groups []Group
		pos    = make(map[string]int)
	)
	for _, b := range s.bindings {
		if b.Section != id {
			continue
		}
		i, ok := pos[b.Subgroup]
		if !ok {
			i = len(groups)
			pos[b.Subgroup] = i
			groups = append(groups, Group{Subgroup: b.Subgroup})
		}
		groups[i].Bindings = append(groups[i].Bindings, b)
	}
	if i, ok := pos[""]; ok && i != 0 {
		ungrouped := groups[i]
		groups = append(groups[:i], groups[i+1:]...)
		groups = append([]Group{ungrouped}, groups...)
	}
	return groups
}

// Conflicts lists the other bindings currently using key.
func (s *State) Conflicts(id, key string) []Binding {
	return Conflicts(s.bindings, id, key)
}

// SetKey assigns key to the binding. Without force, a key shared with other
// bindings is rejected with a *ConflictError and nothing changes.
func (s *State) SetKey(id, key string, force bool) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownBinding, id)
	}
	canonical, err := Canonical(key)
	if err != nil {
		return err
	}
	if !force {
		if c := s.Conflicts(id, canonical); len(c) > 0 {
			return &ConflictError{ID: id, Key: canonical, Conflicts: c}
		}
	}
	if s.bindings[i].Key == canonical {
		return nil
	}
	s.bindings[i].Key = canonical
	s.dirty[s.bindings[i].Section] = true
	return nil
}

// Toggle flips the active flag and returns the new value.
func (s *State) Toggle(id string) (bool, error) {
	i := s.index(id)
	if i < 0 {
		return false, fmt.Errorf("%w: %s", ErrUnknownBinding, id)
	}
	s.bindings[i].Active = !s.bindings[i].Active
	s.dirty[s.bindings[i].Section] = true
	return s.bindings[i].Active, nil
}

// RestoreDefault puts one binding back to its catalog value.
func (s *State) RestoreDefault(id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownBinding, id)
	}
	def, ok := s.catalog.Default(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBinding, id)
	}
	if s.bindings[i] != def {
		s.bindings[i] = def
		s.dirty[def.Section] = true
	}
	return nil
}

// SetAutoTranslate updates the platform-translation setting.
func (s *State) SetAutoTranslate(v bool) {
	if s.settings.AutoTranslatePlatforms != v {
		s.settings.AutoTranslatePlatforms = v
		s.settingsDirty = true
	}
}

// SettingsDirty reports an unsaved settings change.
func (s *State) SettingsDirty() bool { return s.settingsDirty }

// HasUnsaved reports any unsaved edit.
func (s *State) HasUnsaved() bool { return len(s.dirty) > 0 || s.settingsDirty }

// Dirty reports unsaved edits in a section.
func (s *State) Dirty(section string) bool { return s.dirty[section] }

// DirtySections lists sections with unsaved edits in catalog order.
func (s *State) DirtySections() []string {
	var out []string
	for _, sec := range s.catalog.Sections() {
		if s.dirty[sec.ID] {
			out = append(out, sec.ID)
		}
	}
	return out
}

// MarkSaved clears the dirty flag of the given sections, or of every
// section when none are named.
func (s *State) MarkSaved(sections ...string) {
	s.settingsDirty = false
	if len(sections) == 0 {
		s.dirty = make(map[string]bool)
		return
	}
	for _, id := range sections {
		delete(s.dirty, id)
	}
}

func (s *State) index(id string) int {
	for i, b := range s.bindings {
		if b.ID == id {
			return i
		}
	}
	return -1
}
