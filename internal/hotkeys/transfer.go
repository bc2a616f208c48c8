package hotkeys

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ExportVersion is written into every export envelope.
const ExportVersion = "1.0"

// Format selects the serialisation of an export.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// FormatForPath picks the format from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return FormatYAML
	}
	return FormatJSON
}

// Envelope is the export file layout.
type Envelope struct {
	Hotkeys    []Binding `json:"hotkeys" yaml:"hotkeys"`
	Settings   *Settings `json:"settings,omitempty" yaml:"settings,omitempty"`
	ExportedAt string    `json:"exportedAt" yaml:"exportedAt"`
	Version    string    `json:"version" yaml:"version"`
}

// Export serialises the binding set and settings. The output only varies
// with now.
func Export(bindings []Binding, settings Settings, now time.Time, format Format) ([]byte, error) {
	env := Envelope{
		Hotkeys:    cloneBindings(bindings),
		Settings:   &settings,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Version:    ExportVersion,
	}
	if env.Hotkeys == nil {
		env.Hotkeys = []Binding{}
	}

	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(env); err != nil {
			return nil, fmt.Errorf("encode yaml export: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml export: %w", err)
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json export: %w", err)
		}
		return append(data, '\n'), nil
	}
}

// Imported is the parsed content of an import file.
type Imported struct {
	Bindings []Binding
	// Settings is nil when the file carried none (bare binding list).
	Settings *Settings
}

// ParseImport accepts either an export envelope or a bare binding list, in
// JSON or YAML. Every binding key is validated and canonicalised.
func ParseImport(data []byte) (Imported, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Imported{}, fmt.Errorf("import file is empty")
	}

	var (
		env   Envelope
		bare  []Binding
		isEnv bool
		err   error
	)
	switch trimmed[0] {
	case '[':
		err = json.Unmarshal(trimmed, &bare)
	case '{':
		isEnv = true
		err = json.Unmarshal(trimmed, &env)
	default:
		var node yaml.Node
		if err = yaml.Unmarshal(trimmed, &node); err == nil {
			if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
				err = node.Decode(&bare)
			} else {
				isEnv = true
				err = node.Decode(&env)
			}
		}
	}
	if err != nil {
		return Imported{}, fmt.Errorf("parse import file: %w", err)
	}

	var out Imported
	if isEnv {
		if env.Version != "" && !strings.HasPrefix(env.Version, "1.") && env.Version != "1" {
			return Imported{}, fmt.Errorf("unsupported export version %q", env.Version)
		}
		if env.Hotkeys == nil {
			return Imported{}, fmt.Errorf("import file has no hotkeys")
		}
		out.Bindings = env.Hotkeys
		out.Settings = env.Settings
	} else {
		out.Bindings = bare
	}

	for i, b := range out.Bindings {
		key, err := Canonical(b.Key)
		if err != nil {
			return Imported{}, fmt.Errorf("hotkey %q (%s): %w", b.ID, b.OverrideKey(), err)
		}
		out.Bindings[i].Key = key
	}
	return out, nil
}
