package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/Akashdeep-Patra/hkm/internal/hotkeys"
	"github.com/Akashdeep-Patra/hkm/internal/storage"
)

// CachedService wraps a Service with two caches:
//
//   - a short TTL memory cache so the views and the status bar asking for
//     the same data within one refresh cycle cost a single request;
//   - a disk copy of the last snapshot the server confirmed, which the
//     loader falls back to when the server is unreachable.
//
// Update always invalidates the memory cache, so the next Fetch goes to
// the server.
type CachedService struct {
	inner Service
	ttl   time.Duration
	path  string

	mu      sync.Mutex
	entry   *cacheEntry
	written []byte
}

type cacheEntry struct {
	snap   *Snapshot
	err    error
	expiry time.Time
}

// cacheFile is the on-disk layout.
type cacheFile struct {
	Endpoint string    `json:"endpoint"`
	SavedAt  time.Time `json:"saved_at"`
	Snapshot
}

var _ Service = (*CachedService)(nil)

// NewCachedService wraps inner. path may be empty to disable the disk copy.
func NewCachedService(inner Service, ttl time.Duration, path string) *CachedService {
	return &CachedService{inner: inner, ttl: ttl, path: path}
}

// Endpoint delegates to the inner service.
func (c *CachedService) Endpoint() string { return c.inner.Endpoint() }

// Path returns the disk cache location.
func (c *CachedService) Path() string { return c.path }

// Invalidate drops the memory cache.
func (c *CachedService) Invalidate() {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
}

// Fetch returns the server snapshot (cached for ttl). Successful results are
// copied to disk.
func (c *CachedService) Fetch(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	if e := c.entry; e != nil && time.Now().Before(e.expiry) {
		c.mu.Unlock()
		return cloneSnapshot(e.snap), e.err
	}
	c.mu.Unlock()

	snap, err := c.inner.Fetch(ctx)
	if c.ttl > 0 {
		c.mu.Lock()
		c.entry = &cacheEntry{snap: cloneSnapshot(snap), err: err, expiry: time.Now().Add(c.ttl)}
		c.mu.Unlock()
	}
	if err == nil {
		c.persist(snap)
	}
	return snap, err
}

// Update sends snap and invalidates the memory cache. The disk copy is only
// replaced when the server accepted the update.
func (c *CachedService) Update(ctx context.Context, snap Snapshot) (*Snapshot, error) {
	out, err := c.inner.Update(ctx, snap)
	c.Invalidate()
	if err != nil {
		return nil, err
	}
	// Some servers answer with an empty body; the request content is what
	// was stored.
	stored := out
	if stored == nil || stored.CustomHotkeys == nil {
		stored = &snap
	}
	if stored.HotkeySettings == nil {
		stored.HotkeySettings = snap.HotkeySettings
	}
	c.persist(stored)
	return stored, nil
}

// Last returns the snapshot stored on disk. It fails when no cache file
// exists, it cannot be decoded, or it was written for another endpoint.
func (c *CachedService) Last() (*Snapshot, time.Time, error) {
	if c.path == "" {
		return nil, time.Time{}, fmt.Errorf("override cache disabled")
	}
	var f cacheFile
	if err := storage.ReadJSON(c.path, &f); err != nil {
		return nil, time.Time{}, err
	}
	if f.Endpoint != "" && f.Endpoint != c.inner.Endpoint() {
		return nil, time.Time{}, fmt.Errorf("override cache belongs to %s", f.Endpoint)
	}
	snap := f.Snapshot
	snap.CustomHotkeys, _ = hotkeys.Normalize(snap.CustomHotkeys)
	return &snap, f.SavedAt, nil
}

// ChangedOnDisk reports whether the cache file differs from what this
// process last wrote or last saw here. Watchers use it to skip their own
// writes.
func (c *CachedService) ChangedOnDisk() bool {
	if c.path == "" {
		return false
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if bytes.Equal(data, c.written) {
		return false
	}
	c.written = data
	return true
}

func (c *CachedService) persist(snap *Snapshot) {
	if c.path == "" || snap == nil {
		return
	}
	data, err := json.MarshalIndent(cacheFile{
		Endpoint: c.inner.Endpoint(),
		SavedAt:  time.Now().UTC(),
		Snapshot: *snap,
	}, "", "  ")
	if err != nil {
		slog.Warn("encode override cache", "err", err)
		return
	}
	data = append(data, '\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := storage.WriteAtomic(c.path, data); err != nil {
		slog.Warn("write override cache", "path", c.path, "err", err)
		return
	}
	c.written = data
	slog.Debug("override cache written", "path", c.path, "entries", len(snap.CustomHotkeys))
}

func cloneSnapshot(s *Snapshot) *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{CustomHotkeys: make(hotkeys.Overrides, len(s.CustomHotkeys))}
	for k, v := range s.CustomHotkeys {
		out.CustomHotkeys[k] = v
	}
	if s.HotkeySettings != nil {
		st := *s.HotkeySettings
		out.HotkeySettings = &st
	}
	return out
}
