package hotkeys

import "strings"

// KeyEvent is a single key-down as reported by the input layer. Key is the
// key name ("a", "enter", "shift" for a bare modifier press) and the flags
// are the modifiers held at that moment.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Shift bool
	Alt   bool
	Meta  bool
}

// Recorder captures exactly one key combination per recording session.
// Modifier-only presses are ignored; the first non-modifier key-down ends the
// session. There is no timeout.
type Recorder struct {
	recording bool
	target    string
}

// Start begins recording for the binding id.
func (r *Recorder) Start(id string) {
	r.recording = true
	r.target = id
}

// Cancel ends the session without a result.
func (r *Recorder) Cancel() {
	r.recording = false
	r.target = ""
}

// Recording reports whether a session is active.
func (r *Recorder) Recording() bool { return r.recording }

// Target returns the binding id being recorded.
func (r *Recorder) Target() string { return r.target }

// Feed consumes a key-down. done is true once a combination was captured,
// after which the recorder is idle again.
func (r *Recorder) Feed(ev KeyEvent) (combo string, done bool) {
	if !r.recording {
		return "", false
	}
	name := strings.ToLower(strings.TrimSpace(ev.Key))
	if name == "" || IsModifierKey(name) {
		return "", false
	}
	if alias, ok := keyAliases[name]; ok {
		name = alias
	}
	c := Combo{Ctrl: ev.Ctrl, Shift: ev.Shift, Alt: ev.Alt, Meta: ev.Meta, Key: name}
	r.recording = false
	return c.String(), true
}
