package hotkeys

import (
	"net/url"
	"regexp"
)

// Route maps a URL pattern to the sections whose hotkeys matter on that page.
type Route struct {
	Pattern  *regexp.Regexp
	Sections []string
}

// Catalog is the compiled-in, read-only configuration: default bindings,
// section list and URL routes. It is built once at startup and passed to the
// components that need it; accessors return copies so callers cannot mutate
// the defaults.
type Catalog struct {
	bindings []Binding
	sections []Section
	routes   []Route
}

// NewCatalog builds a catalog from explicit values.
func NewCatalog(bindings []Binding, sections []Section, routes []Route) Catalog {
	return Catalog{
		bindings: cloneBindings(bindings),
		sections: append([]Section(nil), sections...),
		routes:   append([]Route(nil), routes...),
	}
}

// Defaults returns a copy of the default bindings.
func (c Catalog) Defaults() []Binding { return cloneBindings(c.bindings) }

// Sections returns the ordered section list.
func (c Catalog) Sections() []Section { return append([]Section(nil), c.sections...) }

// Section looks a section up by id.
func (c Catalog) Section(id string) (Section, bool) {
	for _, s := range c.sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Default returns the default binding with the given id.
func (c Catalog) Default(id string) (Binding, bool) {
	for _, b := range c.bindings {
		if b.ID == id {
			return b, true
		}
	}
	return Binding{}, false
}

// SectionsForURL returns the section ids whose hotkeys apply to the page at
// rawURL. The first matching route wins; no match yields nil.
func (c Catalog) SectionsForURL(rawURL string) []string {
	target := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		target = u.Path
		if u.RawQuery != "" {
			target += "?" + u.RawQuery
		}
	}
	for _, r := range c.routes {
		if r.Pattern.MatchString(target) {
			return append([]string(nil), r.Sections...)
		}
	}
	return nil
}

var labelingSections = []string{"annotation", "regions", "tools", "image", "audio", "video"}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() Catalog {
	return NewCatalog(defaultBindings(), defaultSections(), []Route{
		{Pattern: regexp.MustCompile(`^/projects/\d+/data/?\?(.*&)?task=\d+`), Sections: labelingSections},
		{Pattern: regexp.MustCompile(`^/projects/\d+/labeling`), Sections: labelingSections},
		{Pattern: regexp.MustCompile(`^/projects/\d+/data/?(\?.*)?$`), Sections: []string{"data_manager"}},
	})
}

func defaultSections() []Section {
	return []Section{
		{ID: "annotation", Title: "Annotation", Description: "Submitting, skipping and history of the current annotation"},
		{ID: "regions", Title: "Regions", Description: "Selecting, hiding and editing regions"},
		{ID: "tools", Title: "Tools", Description: "Labeling tool selection"},
		{ID: "image", Title: "Image", Description: "Zoom and rotation of image tasks"},
		{ID: "audio", Title: "Audio", Description: "Audio playback"},
		{ID: "video", Title: "Video", Description: "Video playback and keyframes"},
		{ID: "data_manager", Title: "Data Manager", Description: "Task list navigation"},
	}
}

func defaultBindings() []Binding {
	b := func(id, section, subgroup, element, label, key string, active bool) Binding {
		return Binding{ID: id, Section: section, Subgroup: subgroup, Element: element, Label: label, Key: key, Active: active}
	}
	return []Binding{
		b("1", "annotation", "", "submit", "Submit annotation", "ctrl+enter", true),
		b("2", "annotation", "", "skip", "Skip task", "ctrl+space", true),
		b("3", "annotation", "history", "undo", "Undo", "ctrl+z", true),
		b("4", "annotation", "history", "redo", "Redo", "ctrl+shift+z", true),
		b("5", "annotation", "", "update", "Update annotation", "alt+enter", true),
		b("6", "annotation", "", "exit", "Exit relation mode / unselect", "escape", true),
		b("7", "annotation", "navigation", "next_task", "Next task", "ctrl+right", true),
		b("8", "annotation", "navigation", "prev_task", "Previous task", "ctrl+left", true),

		b("9", "regions", "", "delete", "Delete selected region", "backspace", true),
		b("10", "regions", "", "delete_all", "Delete all regions", "ctrl+backspace", true),
		b("11", "regions", "", "unselect", "Unselect region", "u", true),
		b("12", "regions", "visibility", "hide", "Hide selected region", "h", true),
		b("13", "regions", "visibility", "hide_all", "Toggle visibility of all regions", "ctrl+h", false),
		b("14", "regions", "", "lock", "Lock selected region", "l", true),
		b("15", "regions", "", "duplicate", "Duplicate selected region", "ctrl+d", true),
		b("16", "regions", "navigation", "next", "Select next region", "alt+.", true),
		b("17", "regions", "navigation", "prev", "Select previous region", "alt+,", true),
		b("18", "regions", "", "relation", "Create relation", "alt+r", true),

		b("19", "tools", "selection", "move", "Move / select tool", "v", true),
		b("20", "tools", "selection", "pan", "Pan tool", "shift+h", true),
		b("21", "tools", "drawing", "rectangle", "Rectangle tool", "r", true),
		b("22", "tools", "drawing", "polygon", "Polygon tool", "p", true),
		b("23", "tools", "drawing", "ellipse", "Ellipse tool", "o", true),
		b("24", "tools", "drawing", "keypoint", "Keypoint tool", "k", true),
		b("25", "tools", "drawing", "brush", "Brush tool", "b", true),
		b("26", "tools", "drawing", "eraser", "Eraser tool", "e", true),
		b("27", "tools", "drawing", "magic_wand", "Magic wand tool", "w", true),

		b("28", "image", "zoom", "zoom_in", "Zoom in", "ctrl+=", true),
		b("29", "image", "zoom", "zoom_out", "Zoom out", "ctrl+-", true),
		b("30", "image", "zoom", "zoom_reset", "Reset zoom", "ctrl+0", true),
		b("31", "image", "rotation", "rotate_left", "Rotate left", "alt+[", true),
		b("32", "image", "rotation", "rotate_right", "Rotate right", "alt+]", true),

		b("33", "audio", "", "play", "Play / pause", "ctrl+p", true),
		b("34", "audio", "", "back", "Seek backward", "ctrl+b", true),
		b("35", "audio", "", "forward", "Seek forward", "ctrl+f", true),

		b("36", "video", "", "play", "Play / pause", "alt+space", true),
		b("37", "video", "frames", "next_frame", "Next frame", "alt+right", true),
		b("38", "video", "frames", "prev_frame", "Previous frame", "alt+left", true),
		b("39", "video", "frames", "keyframe", "Toggle keyframe", "alt+k", true),

		b("40", "data_manager", "", "label_all", "Label all tasks", "shift+l", true),
		b("41", "data_manager", "", "filters", "Toggle filters", "shift+f", true),
		b("42", "data_manager", "", "select_all", "Select all tasks", "ctrl+a", false),
		b("43", "data_manager", "navigation", "next", "Next task in list", "shift+down", true),
		b("44", "data_manager", "navigation", "prev", "Previous task in list", "shift+up", true),
	}
}
