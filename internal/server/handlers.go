package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Akashdeep-Patra/hkm/internal/api"
	"github.com/Akashdeep-Patra/hkm/internal/hotkeys"
)

const (
	msgInvalid      = "Invalid hotkeys configuration"
	msgAuthRequired = "Authentication required"
	msgUpdateFailed = "Failed to update hotkeys configuration"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

const userKey = "hkm.user"

// GetHotkeys serves the caller's stored document. A stored document that
// no longer validates is served as an empty override map.
func GetHotkeys(store *Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := c.Get(userKey).(string)
		snap := store.Get(user)
		if _, problems := hotkeys.Normalize(snap.CustomHotkeys); len(problems) > 0 {
			slog.Warn("invalid stored hotkeys", "user", user, "problems", hotkeys.ProblemSummary(problems))
			return c.JSON(http.StatusOK, api.Snapshot{CustomHotkeys: hotkeys.Overrides{}})
		}
		return c.JSON(http.StatusOK, snap)
	}
}

// UpdateHotkeys validates and stores a full replacement document.
func UpdateHotkeys(store *Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := c.Get(userKey).(string)

		var raw updateRequest
		if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   msgInvalid,
				Details: map[string]string{"body": err.Error()},
			})
		}
		snap, details := raw.validate()
		if len(details) > 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalid, Details: details})
		}

		if err := store.Put(user, snap); err != nil {
			slog.Error("store hotkeys", "user", user, "err", err)
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgUpdateFailed})
		}
		slog.Info("updated hotkeys", "user", user, "entries", len(snap.CustomHotkeys))
		return c.JSON(http.StatusOK, snap)
	}
}

// updateRequest keeps values untyped so type errors can be reported per
// field instead of failing the whole decode.
type updateRequest struct {
	CustomHotkeys  map[string]map[string]any `json:"custom_hotkeys"`
	HotkeySettings map[string]any            `json:"hotkey_settings"`
}

func (r updateRequest) validate() (api.Snapshot, map[string]string) {
	details := map[string]string{}
	if r.CustomHotkeys == nil {
		details["custom_hotkeys"] = "This field is required."
		return api.Snapshot{}, details
	}

	out := api.Snapshot{CustomHotkeys: make(hotkeys.Overrides, len(r.CustomHotkeys))}
	for k, entry := range r.CustomHotkeys {
		field := "custom_hotkeys." + k
		if _, _, ok := hotkeys.SplitOverrideKey(k); !ok {
			details[field] = `key must look like "<section>:<element>"`
			continue
		}
		if entry == nil {
			details[field] = "must be an object"
			continue
		}
		keyStr, ok := entry["key"].(string)
		if !ok {
			details[field+".key"] = "must be a string"
			continue
		}
		canonical, err := hotkeys.Canonical(keyStr)
		if err != nil {
			details[field+".key"] = err.Error()
			continue
		}
		active, ok := entry["active"].(bool)
		if !ok {
			details[field+".active"] = "must be a boolean"
			continue
		}
		ov := hotkeys.Override{Key: canonical, Active: active}
		if d, present := entry["description"]; present && d != nil {
			s, ok := d.(string)
			if !ok {
				details[field+".description"] = "must be a string"
				continue
			}
			ov.Description = s
		}
		out.CustomHotkeys[k] = ov
	}

	if r.HotkeySettings != nil {
		v, present := r.HotkeySettings["autoTranslatePlatforms"]
		b, ok := v.(bool)
		switch {
		case !present:
			out.HotkeySettings = &hotkeys.Settings{AutoTranslatePlatforms: hotkeys.DefaultSettings().AutoTranslatePlatforms}
		case !ok:
			details["hotkey_settings.autoTranslatePlatforms"] = fmt.Sprintf("must be a boolean, got %T", v)
		default:
			out.HotkeySettings = &hotkeys.Settings{AutoTranslatePlatforms: b}
		}
	}
	return out, details
}
