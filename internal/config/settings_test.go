package config

import (
	"path/filepath"
	"testing"

	"github.com/handiism/xenocanto-downloader/internal/audio"
	"github.com/handiism/xenocanto-downloader/internal/download"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if settings.PageSize != 500 {
		t.Errorf("PageSize = %d, want 500", settings.PageSize)
	}
	if !settings.CacheEnabled {
		t.Error("CacheEnabled should default to true")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "settings.json")

	settings := DefaultSettings()
	settings.APIKey = "test-key"
	settings.MaxWorkers = 2
	settings.Grouping = "recordist"

	if err := settings.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.APIKey != "test-key" {
		t.Errorf("APIKey = %q, want test-key", loaded.APIKey)
	}
	if loaded.MaxWorkers != 2 {
		t.Errorf("MaxWorkers = %d, want 2", loaded.MaxWorkers)
	}
	if loaded.Grouping != "recordist" {
		t.Errorf("Grouping = %q, want recordist", loaded.Grouping)
	}
}

func TestModeConversions(t *testing.T) {
	s := DefaultSettings()

	s.Grouping = "flat"
	if s.GroupingMode() != download.GroupFlat {
		t.Error("flat should map to GroupFlat")
	}
	s.Grouping = "bogus"
	if s.GroupingMode() != download.GroupBySpecies {
		t.Error("unknown grouping should fall back to GroupBySpecies")
	}

	s.Naming = "original"
	if s.NamingMode() != download.NameOriginal {
		t.Error("original should map to NameOriginal")
	}

	s.PlaylistFormat = "zpl"
	if s.PlaylistFormatMode() != audio.FormatZPL {
		t.Error("zpl should map to FormatZPL")
	}
	s.PlaylistFormat = ""
	if s.PlaylistFormatMode() != audio.FormatM3U {
		t.Error("empty format should fall back to FormatM3U")
	}
}
