package config

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Akashdeep-Patra/hkm/internal/logger"
)

// Config holds the resolved application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Cache  CacheConfig  `mapstructure:"cache"`
	// Watch reloads when another hkm process rewrites the override cache.
	Watch         bool          `mapstructure:"watch"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
	// ConfirmDestructive prompts before an export overwrites an existing file.
	// Reset is always confirmed.
	ConfirmDestructive bool `mapstructure:"confirm_destructive"`
	// Theme name: "dark" (default) or "light".
	Theme string      `mapstructure:"theme"`
	Log   LogConfig   `mapstructure:"log"`
	Serve ServeConfig `mapstructure:"serve"`
	Help  HelpConfig  `mapstructure:"help"`
	Keys  KeyBindings `mapstructure:"keys"`
}

// ServerConfig locates the remote hotkeys API.
type ServerConfig struct {
	URL          string        `mapstructure:"url"`
	Token        string        `mapstructure:"token"`
	HotkeysPath  string        `mapstructure:"hotkeys_path"`
	UpdateMethod string        `mapstructure:"update_method"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// CacheConfig controls the local copy of the last confirmed overrides.
type CacheConfig struct {
	Path string        `mapstructure:"path"`
	TTL  time.Duration `mapstructure:"ttl"`
}

// LogConfig controls the log file.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// ServeConfig configures `hkm serve`.
type ServeConfig struct {
	Addr   string   `mapstructure:"addr"`
	Store  string   `mapstructure:"store"`
	Tokens []string `mapstructure:"tokens"`
}

// HelpConfig configures the contextual help overlay.
type HelpConfig struct {
	// ContextURL selects the sections shown in the help overlay.
	ContextURL string `mapstructure:"context_url"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"server":    "server.url",
	"token":     "server.token",
	"cache":     "cache.path",
	"theme":     "theme",
	"log-file":  "log.file",
	"log-level": "log.level",
	"addr":      "serve.addr",
	"store":     "serve.store",
}

// Load reads ~/.config/hkm/config.yaml (or ./config.yaml), then HKM_*
// environment variables, then any flags in flags that were set. A
// "config" flag names an explicit file. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	configDir := Directory()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v, configDir)

	v.SetEnvPrefix("HKM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := false
	if flags != nil {
		if f := flags.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			explicit = true
		}
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is fine unless it was named explicitly.
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("server.url", "http://localhost:8080")
	v.SetDefault("server.token", "")
	v.SetDefault("server.hotkeys_path", "/api/current-user/hotkeys/")
	v.SetDefault("server.update_method", http.MethodPatch)
	v.SetDefault("server.timeout", 10*time.Second)
	v.SetDefault("cache.path", filepath.Join(configDir, "overrides.json"))
	v.SetDefault("cache.ttl", 2*time.Second)
	v.SetDefault("watch", true)
	v.SetDefault("watch_debounce", 500*time.Millisecond)
	v.SetDefault("confirm_destructive", true)
	v.SetDefault("theme", "dark")
	v.SetDefault("log.file", logger.DefaultPath())
	v.SetDefault("log.level", "info")
	v.SetDefault("serve.addr", ":8080")
	v.SetDefault("serve.store", "")
	v.SetDefault("serve.tokens", []string{})
	v.SetDefault("help.context_url", "")
	setKeyDefaults(v)
}

// Validate rejects values the application cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.Server.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("server.url: %q is not an absolute URL", c.Server.URL))
	}
	switch strings.ToUpper(c.Server.UpdateMethod) {
	case http.MethodPatch, http.MethodPost:
		c.Server.UpdateMethod = strings.ToUpper(c.Server.UpdateMethod)
	default:
		errs = append(errs, fmt.Errorf("server.update_method: %q must be PATCH or POST", c.Server.UpdateMethod))
	}
	if c.Server.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("server.timeout: must be positive"))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl: must not be negative"))
	}
	if c.WatchDebounce < 0 {
		errs = append(errs, fmt.Errorf("watch_debounce: must not be negative"))
	}
	switch c.Theme {
	case "dark", "light":
	default:
		errs = append(errs, fmt.Errorf("theme: unknown theme %q", c.Theme))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if err := c.Keys.validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Directory returns the hkm configuration directory.
func Directory() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hkm")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "hkm")
}
