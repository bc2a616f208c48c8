package hotkeys

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func testCatalog() Catalog {
	return NewCatalog(
		[]Binding{
			{ID: "1", Section: "annotation", Element: "undo", Label: "Undo", Key: "ctrl+z", Active: true},
			{ID: "2", Section: "annotation", Element: "redo", Label: "Redo", Key: "ctrl+shift+z", Active: true},
			{ID: "3", Section: "regions", Subgroup: "visibility", Element: "hide", Label: "Hide", Key: "h", Active: true},
			{ID: "4", Section: "regions", Element: "lock", Label: "Lock", Key: "l", Active: false},
		},
		[]Section{{ID: "annotation", Title: "Annotation"}, {ID: "regions", Title: "Regions"}},
		nil,
	)
}

func TestMergeOverrideWins(t *testing.T) {
	defaults := testCatalog().Defaults()
	merged := Merge(defaults, Overrides{
		"annotation:undo": {Key: "ctrl+shift+z", Active: true},
	})

	if merged[0].Key != "ctrl+shift+z" || !merged[0].Active {
		t.Fatalf("override not applied: %+v", merged[0])
	}
	for i := 1; i < len(defaults); i++ {
		if merged[i] != defaults[i] {
			t.Errorf("binding %s changed without override: %+v", defaults[i].ID, merged[i])
		}
	}
}

func TestMergeDescriptionReplacesLabel(t *testing.T) {
	merged := Merge(testCatalog().Defaults(), Overrides{
		"regions:lock": {Key: "shift+L", Active: true, Description: "Freeze region"},
	})
	got := merged[3]
	if got.Label != "Freeze region" || got.Key != "shift+l" || !got.Active {
		t.Fatalf("unexpected merge result: %+v", got)
	}
}

func TestMergeIgnoresUnknownOverrides(t *testing.T) {
	defaults := testCatalog().Defaults()
	merged := Merge(defaults, Overrides{"nope:nothing": {Key: "x", Active: true}})
	if !reflect.DeepEqual(merged, defaults) {
		t.Fatalf("unknown override changed bindings: %+v", merged)
	}
}

func TestMergeDoesNotMutateDefaults(t *testing.T) {
	cat := testCatalog()
	_ = Merge(cat.Defaults(), Overrides{"annotation:undo": {Key: "u", Active: false}})
	if d, _ := cat.Default("1"); d.Key != "ctrl+z" {
		t.Fatalf("catalog defaults mutated: %+v", d)
	}
}

func TestToOverridesCoversEveryBinding(t *testing.T) {
	bindings := testCatalog().Defaults()
	ov := ToOverrides(bindings)
	if len(ov) != len(bindings) {
		t.Fatalf("override count = %d, want %d", len(ov), len(bindings))
	}
	if got := Merge(bindings, ov); !reflect.DeepEqual(got, bindings) {
		t.Fatalf("merge of own overrides is not identity: %+v", got)
	}
}

func TestConflictsAreSymmetric(t *testing.T) {
	bindings := testCatalog().Defaults()
	bindings[1].Key = "ctrl+z"

	ab := Conflicts(bindings, "1", "ctrl+z")
	ba := Conflicts(bindings, "2", "ctrl+z")
	if len(ab) != 1 || ab[0].ID != "2" {
		t.Fatalf("conflicts of 1 = %+v", ab)
	}
	if len(ba) != 1 || ba[0].ID != "1" {
		t.Fatalf("conflicts of 2 = %+v", ba)
	}
}

func TestConflictsIncludeInactive(t *testing.T) {
	bindings := testCatalog().Defaults()
	got := Conflicts(bindings, "3", "l")
	if len(got) != 1 || got[0].ID != "4" {
		t.Fatalf("inactive binding not reported: %+v", got)
	}
}

func TestConflictsCompareCanonicalStrings(t *testing.T) {
	bindings := testCatalog().Defaults()
	if got := Conflicts(bindings, "1", "shift+ctrl+z"); len(got) != 0 {
		t.Fatalf("non-canonical string matched: %+v", got)
	}
}

func TestDefaultCatalogHasNoDuplicates(t *testing.T) {
	if d := Duplicates(DefaultCatalog().Defaults()); len(d) != 0 {
		t.Fatalf("default catalog has duplicates: %+v", d)
	}
}

func TestDefaultCatalogIDsUnique(t *testing.T) {
	cat := DefaultCatalog()
	seen := map[string]bool{}
	keys := map[string]bool{}
	for _, b := range cat.Defaults() {
		if seen[b.ID] {
			t.Errorf("duplicate id %s", b.ID)
		}
		seen[b.ID] = true
		if keys[b.OverrideKey()] {
			t.Errorf("duplicate override key %s", b.OverrideKey())
		}
		keys[b.OverrideKey()] = true
		if _, ok := cat.Section(b.Section); !ok {
			t.Errorf("binding %s references unknown section %s", b.ID, b.Section)
		}
	}
}

func TestSectionsForURL(t *testing.T) {
	cat := DefaultCatalog()
	tests := []struct {
		url  string
		want string
	}{
		{"https://ls.example.com/projects/3/data?tab=1&task=42", "annotation"},
		{"/projects/12/labeling", "annotation"},
		{"/projects/12/data", "data_manager"},
		{"/projects/12/data/?tab=4", "data_manager"},
		{"/organization", ""},
	}
	for _, tt := range tests {
		got := cat.SectionsForURL(tt.url)
		first := ""
		if len(got) > 0 {
			first = got[0]
		}
		if first != tt.want {
			t.Errorf("SectionsForURL(%q) = %v, want first %q", tt.url, got, tt.want)
		}
	}
}

func TestRecorderIgnoresBareModifiers(t *testing.T) {
	var r Recorder
	r.Start("1")

	if _, done := r.Feed(KeyEvent{Key: "shift", Shift: true}); done {
		t.Fatal("bare shift finished the recording")
	}
	if !r.Recording() {
		t.Fatal("recording stopped after a modifier")
	}
	combo, done := r.Feed(KeyEvent{Key: "a", Shift: true})
	if !done || combo != "shift+a" {
		t.Fatalf("Feed = %q, %v; want shift+a, true", combo, done)
	}
	if r.Recording() {
		t.Fatal("recorder still active after capture")
	}
	if _, done := r.Feed(KeyEvent{Key: "b"}); done {
		t.Fatal("second capture in a single session")
	}
}

func TestRecorderCanonicalOrder(t *testing.T) {
	var r Recorder
	r.Start("x")
	combo, _ := r.Feed(KeyEvent{Key: "K", Meta: true, Alt: true, Shift: true, Ctrl: true})
	if combo != "ctrl+shift+alt+meta+k" {
		t.Fatalf("combo = %q", combo)
	}
}

func TestRecorderCancel(t *testing.T) {
	var r Recorder
	r.Start("1")
	r.Cancel()
	if _, done := r.Feed(KeyEvent{Key: "a"}); done {
		t.Fatal("captured after cancel")
	}
}

func TestStateSetKeyRequiresConfirmation(t *testing.T) {
	s := NewState(testCatalog())

	err := s.SetKey("2", "ctrl+z", false)
	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("SetKey error = %v, want ConflictError", err)
	}
	if len(cerr.Conflicts) != 1 || cerr.Conflicts[0].ID != "1" {
		t.Fatalf("conflicts = %+v", cerr.Conflicts)
	}
	if b, _ := s.Binding("2"); b.Key != "ctrl+shift+z" {
		t.Fatalf("binding changed despite conflict: %+v", b)
	}
	if s.Dirty("annotation") {
		t.Fatal("section dirty after rejected edit")
	}

	if err := s.SetKey("2", "ctrl+z", true); err != nil {
		t.Fatalf("forced SetKey: %v", err)
	}
	if b, _ := s.Binding("2"); b.Key != "ctrl+z" {
		t.Fatalf("forced key not applied: %+v", b)
	}
	if !s.Dirty("annotation") || s.Dirty("regions") {
		t.Fatalf("dirty flags = %v", s.DirtySections())
	}
}

func TestStateSetKeyCanonicalises(t *testing.T) {
	s := NewState(testCatalog())
	if err := s.SetKey("3", "Shift+Alt+H", false); err != nil {
		t.Fatal(err)
	}
	if b, _ := s.Binding("3"); b.Key != "shift+alt+h" {
		t.Fatalf("key = %q", b.Key)
	}
}

func TestStateToggleAndMarkSaved(t *testing.T) {
	s := NewState(testCatalog())
	active, err := s.Toggle("4")
	if err != nil || !active {
		t.Fatalf("Toggle = %v, %v", active, err)
	}
	_, _ = s.Toggle("1")
	if got := s.DirtySections(); !reflect.DeepEqual(got, []string{"annotation", "regions"}) {
		t.Fatalf("dirty = %v", got)
	}
	s.MarkSaved("regions")
	if s.Dirty("regions") || !s.Dirty("annotation") {
		t.Fatalf("MarkSaved(regions) left %v", s.DirtySections())
	}
	s.MarkSaved()
	if len(s.DirtySections()) != 0 {
		t.Fatalf("MarkSaved() left %v", s.DirtySections())
	}
	if _, err := s.Toggle("missing"); !errors.Is(err, ErrUnknownBinding) {
		t.Fatalf("Toggle(missing) = %v", err)
	}
}

func TestStateSettingsDirty(t *testing.T) {
	s := NewState(testCatalog())
	s.SetAutoTranslate(true)
	if s.HasUnsaved() {
		t.Fatal("setting the current value marked the state dirty")
	}
	s.SetAutoTranslate(false)
	if !s.SettingsDirty() || !s.HasUnsaved() {
		t.Fatal("settings change not tracked")
	}
	if len(s.DirtySections()) != 0 {
		t.Fatalf("settings change marked sections %v", s.DirtySections())
	}
	s.MarkSaved("annotation")
	if s.HasUnsaved() {
		t.Fatal("a section save sends the settings and should clear them")
	}
}

func TestStateRestoreDefault(t *testing.T) {
	s := NewState(testCatalog())
	_ = s.SetKey("1", "u", false)
	s.MarkSaved()
	if err := s.RestoreDefault("1"); err != nil {
		t.Fatal(err)
	}
	if b, _ := s.Binding("1"); b.Key != "ctrl+z" {
		t.Fatalf("not restored: %+v", b)
	}
	if !s.Dirty("annotation") {
		t.Fatal("restore did not mark section dirty")
	}
}

func TestStateSectionGroups(t *testing.T) {
	s := NewState(testCatalog())
	groups := s.Section("regions")
	if len(groups) != 2 {
		t.Fatalf("groups = %+v", groups)
	}
	if groups[0].Subgroup != "" || groups[0].Bindings[0].ID != "4" {
		t.Fatalf("ungrouped bindings should come first: %+v", groups)
	}
	if groups[1].Subgroup != "visibility" {
		t.Fatalf("second group = %+v", groups[1])
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			bindings := Merge(testCatalog().Defaults(), Overrides{
				"annotation:undo": {Key: "ctrl+u", Active: true, Description: "Step back"},
				"regions:lock":    {Key: "l", Active: true},
			})
			settings := Settings{AutoTranslatePlatforms: false}

			data, err := Export(bindings, settings, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), format)
			if err != nil {
				t.Fatal(err)
			}
			imp, err := ParseImport(data)
			if err != nil {
				t.Fatal(err)
			}
			if imp.Settings == nil || *imp.Settings != settings {
				t.Fatalf("settings = %+v", imp.Settings)
			}

			applied, unknown := ApplyImported(testCatalog().Defaults(), imp.Bindings)
			if unknown != 0 {
				t.Fatalf("unknown = %d", unknown)
			}
			if !reflect.DeepEqual(applied, bindings) {
				t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", applied, bindings)
			}
		})
	}
}

func TestExportIsDeterministic(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	a, _ := Export(testCatalog().Defaults(), DefaultSettings(), now, FormatJSON)
	b, _ := Export(testCatalog().Defaults(), DefaultSettings(), now, FormatJSON)
	if string(a) != string(b) {
		t.Fatal("export differs between identical calls")
	}
	if !strings.Contains(string(a), `"version": "1.0"`) || !strings.Contains(string(a), `"exportedAt": "2026-05-01T00:00:00Z"`) {
		t.Fatalf("unexpected envelope:\n%s", a)
	}
}

func TestParseImportBareList(t *testing.T) {
	imp, err := ParseImport([]byte(`[{"id":"1","section":"annotation","element":"undo","key":"Shift+Ctrl+Z","active":true}]`))
	if err != nil {
		t.Fatal(err)
	}
	if imp.Settings != nil {
		t.Fatalf("bare list produced settings: %+v", imp.Settings)
	}
	if len(imp.Bindings) != 1 || imp.Bindings[0].Key != "ctrl+shift+z" {
		t.Fatalf("bindings = %+v", imp.Bindings)
	}
}

func TestParseImportRejects(t *testing.T) {
	tests := map[string]string{
		"empty":       "  ",
		"bad json":    `{"hotkeys": [`,
		"bad key":     `[{"id":"1","section":"a","element":"b","key":"ctrl+","active":true}]`,
		"no hotkeys":  `{"version":"1.0"}`,
		"new version": `{"hotkeys":[],"version":"2.0"}`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseImport([]byte(in)); err == nil {
				t.Fatalf("ParseImport(%q) succeeded", in)
			}
		})
	}
}

func TestApplyImportedMatchesBySectionElement(t *testing.T) {
	base := testCatalog().Defaults()
	out, unknown := ApplyImported(base, []Binding{
		{ID: "legacy-7", Section: "regions", Element: "hide", Key: "alt+h", Active: false},
		{ID: "zzz", Section: "nope", Element: "nothing", Key: "q", Active: true},
	})
	if unknown != 1 {
		t.Fatalf("unknown = %d, want 1", unknown)
	}
	if out[2].Key != "alt+h" || out[2].Active {
		t.Fatalf("hide not updated: %+v", out[2])
	}
}

func TestNormalize(t *testing.T) {
	out, problems := Normalize(Overrides{
		"annotation:undo": {Key: "Shift+Ctrl+Z", Active: true},
		"broken":          {Key: "a", Active: true},
		"regions:hide":    {Key: "ctrl+", Active: true},
	})
	if len(out) != 1 || out["annotation:undo"].Key != "ctrl+shift+z" {
		t.Fatalf("out = %+v", out)
	}
	if len(problems) != 2 || problems["broken"] == "" || problems["regions:hide"] == "" {
		t.Fatalf("problems = %+v", problems)
	}
	if got := ProblemSummary(problems); !strings.HasPrefix(got, "broken: ") {
		t.Fatalf("summary = %q", got)
	}
}
