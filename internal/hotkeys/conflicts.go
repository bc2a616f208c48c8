package hotkeys

import "sort"

// Conflicts returns every binding other than id whose key equals key.
// Comparison is on canonical strings and ignores the active flag.
func Conflicts(bindings []Binding, id, key string) []Binding {
	if key == "" {
		return nil
	}
	var out []Binding
	for _, b := range bindings {
		if b.ID == id {
			continue
		}
		if b.Key == key {
			out = append(out, b)
		}
	}
	return out
}

// Duplicate is a key shared by more than one binding.
type Duplicate struct {
	Key      string
	Bindings []Binding
}

// Duplicates groups the bindings that share a key, sorted by key.
func Duplicates(bindings []Binding) []Duplicate {
	byKey := make(map[string][]Binding)
	for _, b := range bindings {
		if b.Key == "" {
			continue
		}
		byKey[b.Key] = append(byKey[b.Key], b)
	}

	var out []Duplicate
	for k, bs := range byKey {
		if len(bs) > 1 {
			out = append(out, Duplicate{Key: k, Bindings: bs})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
