// Package api talks to the labeling server's per-user hotkeys endpoint.
package api

import (
	"context"

	"github.com/Akashdeep-Patra/hkm/internal/hotkeys"
)

// Snapshot is the stored hotkey preference document, as sent and received on
// the wire.
type Snapshot struct {
	CustomHotkeys  hotkeys.Overrides `json:"custom_hotkeys"`
	HotkeySettings *hotkeys.Settings `json:"hotkey_settings,omitempty"`
}

// Service defines the contract for the remote hotkeys store.
// The manager and the TUI depend on this interface, never on net/http
// directly, so they can be tested against fakes or an httptest server.
type Service interface {
	// Endpoint describes where the data lives, for status and log lines.
	Endpoint() string
	// Fetch returns the stored overrides. Failures are *Error values.
	Fetch(ctx context.Context) (*Snapshot, error)
	// Update replaces the stored document with snap in a single request.
	Update(ctx context.Context, snap Snapshot) (*Snapshot, error)
}
