// Package manager orchestrates loading, saving, resetting, importing and
// exporting hotkey preferences on top of an api.Service.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Akashdeep-Patra/hkm/internal/api"
	"github.com/Akashdeep-Patra/hkm/internal/hotkeys"
)

// Source tells where a loaded binding set came from.
type Source int

const (
	SourceRemote Source = iota
	SourceCache
	SourceDefaults
)

func (s Source) String() string {
	switch s {
	case SourceRemote:
		return "server"
	case SourceCache:
		return "local cache"
	default:
		return "defaults"
	}
}

// Loaded is the effective binding set plus how it was obtained.
type Loaded struct {
	Bindings []hotkeys.Binding
	Settings hotkeys.Settings
	Source   Source
	// Warning is set when the server could not be used.
	Warning string
}

// ImportResult describes a completed import.
type ImportResult struct {
	Loaded
	Imported int
	Unknown  int
}

// Fallback is implemented by services that keep a local copy of the last
// confirmed snapshot.
type Fallback interface {
	Last() (*api.Snapshot, time.Time, error)
}

// Manager is the only path between the edit state and the server.
type Manager struct {
	catalog  hotkeys.Catalog
	svc      api.Service
	fallback Fallback
	now      func() time.Time
}

// New builds a Manager. When svc also implements Fallback, Load uses it
// when the server is unavailable.
func New(catalog hotkeys.Catalog, svc api.Service) *Manager {
	m := &Manager{catalog: catalog, svc: svc, now: time.Now}
	if fb, ok := svc.(Fallback); ok {
		m.fallback = fb
	}
	return m
}

// Catalog returns the compiled-in catalog.
func (m *Manager) Catalog() hotkeys.Catalog { return m.catalog }

// Endpoint describes the remote store.
func (m *Manager) Endpoint() string { return m.svc.Endpoint() }

// Load fetches the server overrides and merges them onto the defaults. It
// never fails: on error it uses the local cache, then the defaults, and
// reports why in Loaded.Warning.
func (m *Manager) Load(ctx context.Context) Loaded {
	loaded, err := m.Fetch(ctx)
	if err == nil {
		return loaded
	}
	reason := api.Message(err)
	if api.IsTimeout(err) {
		reason = "request timed out"
	}

	if m.fallback != nil {
		snap, savedAt, ferr := m.fallback.Last()
		if ferr == nil {
			slog.Warn("server unavailable, using cached overrides", "err", err, "saved_at", savedAt)
			out := m.merge(snap)
			out.Source = SourceCache
			out.Warning = fmt.Sprintf("%s; showing cached hotkeys from %s", reason, savedAt.Local().Format("2006-01-02 15:04"))
			return out
		}
		slog.Debug("no usable override cache", "err", ferr)
	}

	slog.Warn("server unavailable, using defaults", "err", err)
	return Loaded{
		Bindings: m.catalog.Defaults(),
		Settings: hotkeys.DefaultSettings(),
		Source:   SourceDefaults,
		Warning:  reason + "; showing default hotkeys",
	}
}

// Fetch is the strict form of Load: any server failure is returned.
func (m *Manager) Fetch(ctx context.Context) (Loaded, error) {
	snap, err := m.svc.Fetch(ctx)
	if err != nil {
		return Loaded{}, err
	}
	out := m.merge(snap)
	out.Source = SourceRemote
	return out, nil
}

func (m *Manager) merge(snap *api.Snapshot) Loaded {
	settings := hotkeys.DefaultSettings()
	if snap.HotkeySettings != nil {
		settings = *snap.HotkeySettings
	}
	return Loaded{
		Bindings: hotkeys.Merge(m.catalog.Defaults(), snap.CustomHotkeys),
		Settings: settings,
	}
}

// Save sends the whole binding set and the settings in one request. On
// failure the remote state is whatever it was before; nothing is retried.
func (m *Manager) Save(ctx context.Context, bindings []hotkeys.Binding, settings hotkeys.Settings) error {
	if err := m.send(ctx, hotkeys.ToOverrides(bindings), settings); err != nil {
		return err
	}
	slog.Info("hotkeys saved", "bindings", len(bindings), "endpoint", m.svc.Endpoint())
	return nil
}

func (m *Manager) send(ctx context.Context, ov hotkeys.Overrides, settings hotkeys.Settings) error {
	_, err := m.svc.Update(ctx, api.Snapshot{CustomHotkeys: ov, HotkeySettings: &settings})
	return err
}

// Reset stores an empty override map with default settings, which the
// server treats as "use compiled-in defaults".
func (m *Manager) Reset(ctx context.Context) (Loaded, error) {
	if err := m.send(ctx, hotkeys.Overrides{}, hotkeys.DefaultSettings()); err != nil {
		return Loaded{}, err
	}
	slog.Info("hotkeys reset to defaults", "endpoint", m.svc.Endpoint())
	return Loaded{
		Bindings: m.catalog.Defaults(),
		Settings: hotkeys.DefaultSettings(),
		Source:   SourceRemote,
	}, nil
}

// Export serialises the given set.
func (m *Manager) Export(bindings []hotkeys.Binding, settings hotkeys.Settings, format hotkeys.Format) ([]byte, error) {
	return hotkeys.Export(bindings, settings, m.now(), format)
}

// ErrRefetch wraps a failed re-read after an import was stored.
var ErrRefetch = errors.New("import stored but re-reading the server failed")

// Import parses data, applies it on top of base (the defaults when base is
// nil), saves the result, and re-reads the server. The import only counts
// as complete when that re-read succeeds; the returned set is the server's.
func (m *Manager) Import(ctx context.Context, data []byte, base []hotkeys.Binding, settings hotkeys.Settings) (ImportResult, error) {
	imp, err := hotkeys.ParseImport(data)
	if err != nil {
		return ImportResult{}, err
	}
	if base == nil {
		base = m.catalog.Defaults()
	}
	merged, unknown := hotkeys.ApplyImported(base, imp.Bindings)
	if imp.Settings != nil {
		settings = *imp.Settings
	}

	if err := m.Save(ctx, merged, settings); err != nil {
		return ImportResult{}, err
	}
	loaded, err := m.Fetch(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %w", ErrRefetch, err)
	}
	slog.Info("hotkeys imported", "entries", len(imp.Bindings), "unknown", unknown)
	return ImportResult{
		Loaded:   loaded,
		Imported: len(imp.Bindings) - unknown,
		Unknown:  unknown,
	}, nil
}
