// internal/config/config.go
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// Config represents the application configuration
type Config struct {
	DefaultProfile        string       `toml:"default_profile"`
	PageSize              int          `toml:"page_size"`
	RequestTimeoutSeconds int          `toml:"request_timeout_seconds"`
	HistoryLimit          int          `toml:"history_limit"`
	Profiles              []Profile    `toml:"profiles"`
	Theme                 Theme        `toml:"theme_colors"`
	Keys                  KeyMap       `toml:"keys"`
	Server                ServerConfig `toml:"server"`

	path string
}

// Theme defines the color palette
type Theme struct {
	TextPrimary   string `toml:"text_primary"`
	TextSecondary string `toml:"text_secondary"`
	TextFaint     string `toml:"text_faint"`
	Accent        string `toml:"accent"`
	Success       string `toml:"success"`
	Error         string `toml:"error"`
	Highlight     string `toml:"highlight"`
	Warning       string `toml:"warning"`
	BgPrimary     string `toml:"bg_primary"`
	BgSecondary   string `toml:"bg_secondary"`
	CardBg        string `toml:"card_bg"`
	PopupBg       string `toml:"popup_bg"`
	BorderColor   string `toml:"border_color"`
	SelectedBg    string `toml:"selected_bg"`
}

// KeyMap defines key bindings
type KeyMap struct {
	Quit       []string `toml:"quit"`
	Exit       []string `toml:"exit"`
	Search     []string `toml:"search"`
	Sidebar    []string `toml:"sidebar"`
	NextColumn []string `toml:"next_column"`
	PrevColumn []string `toml:"prev_column"`
	NextPage   []string `toml:"next_page"`
	PrevPage   []string `toml:"prev_page"`
	JumpPage   []string `toml:"jump_page"`
	Refresh    []string `toml:"refresh"`
	RowAction  []string `toml:"row_action"`
	Copy       []string `toml:"copy"`
	History    []string `toml:"history"`
	Help       []string `toml:"help"`
	Logout     []string `toml:"logout"`
}

// Profile is a backend the dashboard can log in to
type Profile struct {
	Name     string `toml:"name"`
	BaseURL  string `toml:"base_url"`
	Username string `toml:"username,omitempty"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		DefaultProfile:        "local",
		PageSize:              30,
		RequestTimeoutSeconds: 15,
		HistoryLimit:          500,
		Profiles: []Profile{
			{Name: "local", BaseURL: "http://localhost:8000"},
		},
		Theme: Theme{
			// Nord Theme Defaults
			TextPrimary:   "#D8DEE9",
			TextSecondary: "#81A1C1",
			TextFaint:     "#4C566A",
			Accent:        "#88C0D0",
			Success:       "#A3BE8C",
			Error:         "#BF616A",
			Highlight:     "#8FBCBB",
			Warning:       "#D08770",
			BgPrimary:     "#2E3440",
			BgSecondary:   "#3B4252",
			CardBg:        "#434C5E",
			PopupBg:       "#2E3440",
			BorderColor:   "#4C566A",
			SelectedBg:    "#434C5E",
		},
		Keys: KeyMap{
			Quit:       []string{"ctrl+c"},
			Exit:       []string{"esc", "q"},
			Search:     []string{"/"},
			Sidebar:    []string{"s"},
			NextColumn: []string{"tab"},
			PrevColumn: []string{"shift+tab"},
			NextPage:   []string{"n", "pgdown"},
			PrevPage:   []string{"b", "pgup"},
			JumpPage:   []string{"g"},
			Refresh:    []string{"r"},
			RowAction:  []string{"enter"},
			Copy:       []string{"y"},
			History:    []string{"ctrl+r"},
			Help:       []string{"?"},
			Logout:     []string{"ctrl+l"},
		},
		Server: DefaultServerConfig(),
	}
}

// ConfigPath returns the XDG-compliant config file path
func ConfigPath() (string, error) {
	return xdg.ConfigFile("gamedash/config.toml")
}

// RequestTimeout returns the HTTP timeout for gateway calls
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Path returns the file the config was loaded from
func (c *Config) Path() string {
	return c.path
}

// Load loads the config from the default location or creates it
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the config at path, writing defaults on first run
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// First run: create default
		cfg := DefaultConfig()
		cfg.path = path
		if err := cfg.Save(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, updated, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.path = path

	if updated {
		// Persist migrated defaults so the user can see/edit them.
		// An unwritable file still leaves usable in-memory defaults.
		_ = cfg.Save()
	}

	cfg.Server.decryptSecrets()
	return cfg, nil
}

// Decode parses a TOML document and fills missing defaults
func Decode(r io.Reader) (*Config, error) {
	cfg, _, err := decode(r)
	return cfg, err
}

func decode(r io.Reader) (*Config, bool, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, false, err
	}
	updated := cfg.applyDefaults()
	return &cfg, updated, nil
}

// applyDefaults populates missing fields (migration) and reports whether
// anything changed
func (c *Config) applyDefaults() bool {
	defaults := DefaultConfig()
	updated := false

	if c.PageSize <= 0 {
		c.PageSize = defaults.PageSize
		updated = true
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = defaults.RequestTimeoutSeconds
		updated = true
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = defaults.HistoryLimit
		updated = true
	}
	if len(c.Profiles) == 0 {
		c.Profiles = defaults.Profiles
		updated = true
	}
	if c.DefaultProfile == "" {
		c.DefaultProfile = c.Profiles[0].Name
		updated = true
	}
	if c.Theme.TextPrimary == "" {
		c.Theme = defaults.Theme
		updated = true
	}
	if len(c.Keys.Quit) == 0 {
		c.Keys = defaults.Keys
		updated = true
	}
	if c.Server.applyDefaults() {
		updated = true
	}
	return updated
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return err
		}
		c.path = path
	}

	// Ensure directory exists with secure permissions
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	// Create/truncate file with secure permissions (owner read/write only)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	c.Server.encryptSecrets()

	return toml.NewEncoder(f).Encode(c)
}
