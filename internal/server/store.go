package server

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/Akashdeep-Patra/hkm/internal/api"
	"github.com/Akashdeep-Patra/hkm/internal/hotkeys"
	"github.com/Akashdeep-Patra/hkm/internal/storage"
)

// Store keeps one hotkeys document per user. With a path, every change is
// written to disk atomically and the file is read back on startup.
type Store struct {
	path string

	mu    sync.RWMutex
	users map[string]api.Snapshot
}

// NewStore opens the store. An empty path keeps everything in memory.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path, users: make(map[string]api.Snapshot)}
	if path == "" {
		return s, nil
	}
	if err := storage.ReadJSON(path, &s.users); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("load hotkeys store: %w", err)
	}
	if s.users == nil {
		s.users = make(map[string]api.Snapshot)
	}
	slog.Info("hotkeys store loaded", "path", path, "users", len(s.users))
	return s, nil
}

// UserKey derives the store key for a token so tokens never reach the disk.
func UserKey(token string) string {
	if token == "" {
		return "anonymous"
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

// Get returns the user's document. Unknown users have no overrides.
func (s *Store) Get(user string) api.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.users[user]
	if !ok {
		return api.Snapshot{CustomHotkeys: hotkeys.Overrides{}}
	}
	return copySnapshot(snap)
}

// Put replaces the user's document. When persisting fails the previous
// document is kept.
func (s *Store) Put(user string, snap api.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.users[user]
	s.users[user] = copySnapshot(snap)
	if s.path == "" {
		return nil
	}
	if err := storage.WriteJSON(s.path, s.users); err != nil {
		if had {
			s.users[user] = prev
		} else {
			delete(s.users, user)
		}
		return err
	}
	return nil
}

func copySnapshot(in api.Snapshot) api.Snapshot {
	out := api.Snapshot{CustomHotkeys: make(hotkeys.Overrides, len(in.CustomHotkeys))}
	for k, v := range in.CustomHotkeys {
		out.CustomHotkeys[k] = v
	}
	if in.HotkeySettings != nil {
		st := *in.HotkeySettings
		out.HotkeySettings = &st
	}
	return out
}
