package hotkeys

// Merge overlays server overrides on the defaults. A binding whose
// "section:element" key has an override takes key and active from it, and its
// label is replaced by the override description when one is present. All
// other bindings keep their default values. Override keys that match no
// default are ignored.
func Merge(defaults []Binding, overrides Overrides) []Binding {
	out := cloneBindings(defaults)
	for i, b := range out {
		ov, ok := overrides[b.OverrideKey()]
		if !ok {
			continue
		}
		out[i] = applyOverride(b, ov)
	}
	return out
}

func applyOverride(b Binding, ov Override) Binding {
	if key, err := Canonical(ov.Key); err == nil {
		b.Key = key
	}
	b.Active = ov.Active
	if ov.Description != "" {
		b.Label = ov.Description
		b.Description = ov.Description
	}
	return b
}

// ToOverrides serialises the full binding set into the server's override
// map. Every binding is included, not only the changed ones.
func ToOverrides(bindings []Binding) Overrides {
	out := make(Overrides, len(bindings))
	for _, b := range bindings {
		out[b.OverrideKey()] = Override{
			Key:         b.Key,
			Active:      b.Active,
			Description: b.Description,
		}
	}
	return out
}

// ApplyImported copies key, active and description from imported bindings
// onto base. Bindings are matched by id, then by "section:element". The
// number of imported bindings that matched nothing is returned as unknown.
func ApplyImported(base, imported []Binding) (out []Binding, unknown int) {
	out = cloneBindings(base)
	byID := make(map[string]int, len(out))
	byOverride := make(map[string]int, len(out))
	for i, b := range out {
		byID[b.ID] = i
		byOverride[b.OverrideKey()] = i
	}

	for _, in := range imported {
		idx, ok := byID[in.ID]
		if !ok || (in.Section != "" && out[idx].Section != in.Section) {
			idx, ok = byOverride[in.OverrideKey()]
		}
		if !ok {
			unknown++
			continue
		}
		out[idx] = applyOverride(out[idx], Override{
			Key:         in.Key,
			Active:      in.Active,
			Description: in.Description,
		})
	}
	return out, unknown
}
