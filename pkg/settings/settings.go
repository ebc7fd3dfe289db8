// Package settings persists user preferences for the converter surfaces.
// The CLI, TUI and server all read the same file, so a mode picked in one
// place carries over to the others.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mabimml/midi2mml/pkg/converter"
)

// Version guards against stale files; a mismatch falls back to defaults
const Version = 1

const (
	appDirName   = "midi2mml"
	settingsFile = "settings.json"
)

// Settings is everything a user can tune across sessions
type Settings struct {
	Version   int              `json:"version"`
	Mode      converter.Mode   `json:"mode"`
	CharLimit int              `json:"char_limit"`
	Compress  bool             `json:"compress"`
	SortBy    converter.SortBy `json:"sort_by"`
}

// Default returns the out-of-the-box settings
func Default() Settings {
	return Settings{
		Version:   Version,
		Mode:      converter.ModeNormal,
		CharLimit: converter.DefaultCharLimit,
		Compress:  false,
		SortBy:    converter.SortDefault,
	}
}

// Options maps the persisted preferences onto converter options
func (s Settings) Options() converter.Options {
	return converter.Options{
		Mode:      s.Mode,
		CharLimit: s.CharLimit,
		Compress:  s.Compress,
	}
}

// Path returns the settings file location under the user config directory
func Path() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(base, appDirName, settingsFile), nil
}

// Load reads settings from disk. A missing file, a stale version or
// unparseable content all come back as defaults rather than an error; only
// a genuinely unreadable file is reported.
func Load() (Settings, error) {
	path, err := Path()
	if err != nil {
		return Default(), err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read settings: %w", err)
	}

	s := Default()
	if err := json.Unmarshal(data, &s); err != nil {
		return Default(), nil
	}
	if s.Version != Version {
		return Default(), nil
	}
	return s.normalized(), nil
}

// Save writes settings atomically via a temp file rename
func Save(s Settings) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	s.Version = Version
	s = s.normalized()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return os.Rename(tmp, path)
}

// normalized clamps out-of-range values back to defaults
func (s Settings) normalized() Settings {
	if s.Mode != converter.ModeNormal && s.Mode != converter.ModeInstrument {
		s.Mode = converter.ModeNormal
	}
	if s.CharLimit <= 0 {
		s.CharLimit = converter.DefaultCharLimit
	}
	switch s.SortBy {
	case converter.SortDefault, converter.SortName, converter.SortInstrument:
	default:
		s.SortBy = converter.SortDefault
	}
	return s
}
