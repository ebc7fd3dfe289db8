package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mabimml/midi2mml/pkg/converter"
)

func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	// macOS ignores XDG; point HOME somewhere harmless too
	t.Setenv("HOME", dir)
	return dir
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	isolateConfig(t)

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s != Default() {
		t.Errorf("Load() = %+v, want defaults %+v", s, Default())
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	isolateConfig(t)

	saved := Settings{
		Mode:      converter.ModeInstrument,
		CharLimit: 800,
		Compress:  true,
		SortBy:    converter.SortName,
	}
	if err := Save(saved); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Mode != converter.ModeInstrument || loaded.CharLimit != 800 ||
		!loaded.Compress || loaded.SortBy != converter.SortName {
		t.Errorf("Load() = %+v, want what was saved", loaded)
	}
	if loaded.Version != Version {
		t.Errorf("version = %d, want %d", loaded.Version, Version)
	}
}

func TestLoadStaleVersionFallsBack(t *testing.T) {
	isolateConfig(t)

	path, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	payload := `{"version": 99, "mode": "instrument", "char_limit": 5}`
	if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s != Default() {
		t.Errorf("stale version loaded as %+v, want defaults", s)
	}
}

func TestLoadCorruptFileFallsBack(t *testing.T) {
	isolateConfig(t)

	path, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s != Default() {
		t.Errorf("corrupt file loaded as %+v, want defaults", s)
	}
}

func TestNormalizedClampsValues(t *testing.T) {
	s := Settings{
		Version:   Version,
		Mode:      "bogus",
		CharLimit: -5,
		SortBy:    "upside-down",
	}.normalized()

	if s.Mode != converter.ModeNormal {
		t.Errorf("mode = %q, want normal", s.Mode)
	}
	if s.CharLimit != converter.DefaultCharLimit {
		t.Errorf("char limit = %d, want %d", s.CharLimit, converter.DefaultCharLimit)
	}
	if s.SortBy != converter.SortDefault {
		t.Errorf("sort = %q, want default", s.SortBy)
	}
}

func TestOptionsMapping(t *testing.T) {
	s := Settings{Mode: converter.ModeInstrument, CharLimit: 500, Compress: true}
	opts := s.Options()
	if opts.Mode != converter.ModeInstrument || opts.CharLimit != 500 || !opts.Compress {
		t.Errorf("Options() = %+v", opts)
	}
}
