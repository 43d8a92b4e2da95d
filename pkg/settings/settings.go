// Package settings stores per-user preferences for the themis tools.
//
// Settings live in a TOML file under the user's config directory:
//
//	$THEMIS_STUDIO_HOME/settings.toml
//	$XDG_CONFIG_HOME/themis/settings.toml
//	~/.config/themis/settings.toml
//
// The first location whose variable is set wins. A missing file is not an
// error; Load returns [Default] values instead. Selected fields can be
// overridden from the environment without touching the file:
//
//	THEMIS_ADDR                 server listen address
//	THEMIS_EXPORT_FORMAT        default export format ("json", "js" or "xlsx")
//	THEMIS_PREFER_SLOT_COLUMN   write moved columns to the slot instead of the node
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/caarlos0/env/v11"
)

// FileName is the name of the settings file inside the settings directory.
const FileName = "settings.toml"

// MaxRecent bounds the recent-files list.
const MaxRecent = 10

// Settings is the persisted user preference set.
type Settings struct {
	LastPath         string   `toml:"last_path,omitempty"`
	Recent           []string `toml:"recent,omitempty"`
	ExportFormat     string   `toml:"export_format,omitempty"`
	PreferSlotColumn bool     `toml:"prefer_slot_column"`
	Addr             string   `toml:"addr,omitempty"`
}

// Default returns the settings used when no file exists.
func Default() *Settings {
	return &Settings{
		ExportFormat: "json",
		Addr:         "127.0.0.1:7878",
	}
}

// Touch records path as the most recently opened document.
func (s *Settings) Touch(path string) {
	if path == "" {
		return
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	s.LastPath = path
	s.Recent = slices.DeleteFunc(s.Recent, func(p string) bool { return p == path })
	s.Recent = append([]string{path}, s.Recent...)
	if len(s.Recent) > MaxRecent {
		s.Recent = s.Recent[:MaxRecent]
	}
}

// overrides holds the environment variables that take precedence over the
// settings file. Pointer fields stay nil when the variable is unset.
type overrides struct {
	Home             string  `env:"THEMIS_STUDIO_HOME"`
	XDGConfigHome    string  `env:"XDG_CONFIG_HOME"`
	Addr             *string `env:"THEMIS_ADDR"`
	ExportFormat     *string `env:"THEMIS_EXPORT_FORMAT"`
	PreferSlotColumn *bool   `env:"THEMIS_PREFER_SLOT_COLUMN"`
}

func parseEnv() (overrides, error) {
	var o overrides
	if err := env.Parse(&o); err != nil {
		return overrides{}, fmt.Errorf("parse env: %w", err)
	}
	return o, nil
}

func (o overrides) apply(s *Settings) {
	if o.Addr != nil && *o.Addr != "" {
		s.Addr = *o.Addr
	}
	if o.ExportFormat != nil && *o.ExportFormat != "" {
		s.ExportFormat = *o.ExportFormat
	}
	if o.PreferSlotColumn != nil {
		s.PreferSlotColumn = *o.PreferSlotColumn
	}
}

// DefaultDir returns the settings directory for the current user.
func DefaultDir() (string, error) {
	o, err := parseEnv()
	if err != nil {
		return "", err
	}
	switch {
	case o.Home != "":
		return o.Home, nil
	case o.XDGConfigHome != "":
		return filepath.Join(o.XDGConfigHome, "themis"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "themis"), nil
}
