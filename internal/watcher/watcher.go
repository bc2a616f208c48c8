// Package watcher notices when another hkm process rewrites the local
// override cache, so an open TUI can reload instead of showing stale data.
//
// The cache is replaced by rename, which drops inotify/kqueue watches on the
// old inode. The watcher therefore watches the containing directory and
// filters events by file name.
package watcher

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is sent when the watched file changed.
type Event struct{}

// Watch monitors path and sends an Event on the returned channel after each
// burst of changes. Bursts are coalesced with the debounce window plus up to
// 50% random jitter so several instances do not reload in lockstep.
//
// Call the returned stop function to tear down the watcher.
func Watch(path string, debounce time.Duration) (<-chan Event, func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_ = w.Close()
		return nil, nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, nil, err
	}
	name := filepath.Base(path)

	ch := make(chan Event, 1)
	done := make(chan struct{})
	jitterRange := int64(debounce / 2)

	go func() {
		defer close(ch)
		var timer *time.Timer

		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !relevant(ev, name) {
					continue
				}
				d := debounce
				if jitterRange > 0 {
					d += time.Duration(rand.Int64N(jitterRange))
				}
				if timer == nil {
					timer = time.NewTimer(d)
				} else {
					timer.Reset(d)
				}
			case <-timerChan(timer):
				timer = nil
				select {
				case ch <- Event{}:
				default:
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			case <-done:
				return
			}
		}
	}()

	stop := func() {
		close(done)
		_ = w.Close()
	}

	return ch, stop, nil
}

// timerChan returns the timer's channel, or a nil channel if timer is nil.
func timerChan(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

// relevant reports whether ev touches the watched file.
func relevant(ev fsnotify.Event, name string) bool {
	base := filepath.Base(ev.Name)
	if base != name || shouldIgnore(base) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// shouldIgnore returns true for temp and editor files.
func shouldIgnore(base string) bool {
	if strings.HasPrefix(base, ".hkm-temp-") {
		return true
	}
	if strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swo") ||
		strings.HasSuffix(base, "~") || strings.HasPrefix(base, ".#") {
		return true
	}
	return false
}
