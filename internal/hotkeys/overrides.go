package hotkeys

import (
	"fmt"
	"sort"
	"strings"
)

// Normalize validates an override map and returns a copy with every key in
// canonical form. Entries that fail validation are left out of the copy and
// reported in problems, keyed by their override key.
func Normalize(in Overrides) (out Overrides, problems map[string]string) {
	out = make(Overrides, len(in))
	for k, ov := range in {
		if _, _, ok := SplitOverrideKey(k); !ok {
			problems = addProblem(problems, k, `expected "<section>:<element>"`)
			continue
		}
		key, err := Canonical(ov.Key)
		if err != nil {
			problems = addProblem(problems, k, err.Error())
			continue
		}
		ov.Key = key
		out[k] = ov
	}
	return out, problems
}

// SortedKeys returns the override keys in lexical order.
func (o Overrides) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func addProblem(m map[string]string, key, msg string) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	m[key] = msg
	return m
}

// ProblemSummary renders problems as one line per entry in key order.
func ProblemSummary(problems map[string]string) string {
	keys := make([]string, 0, len(problems))
	for k := range problems {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", k, problems[k])
	}
	return b.String()
}
