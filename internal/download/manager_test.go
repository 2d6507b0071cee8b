package download

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/xenocanto-downloader/internal/audio"
	"github.com/handiism/xenocanto-downloader/internal/model"
)

func testRecording() *model.Recording {
	return &model.Recording{
		ID:         694038,
		Genus:      "Troglodytes",
		Epithet:    "troglodytes",
		CommonName: "Eurasian Wren",
		Recordist:  "Jacobo Ramil Millarengo",
		FileURL:    "https://xeno-canto.org/694038/download",
		FileName:   "XC694038-wren: song.mp3",
	}
}

func TestManagerPath(t *testing.T) {
	rec := testRecording()

	tests := []struct {
		name     string
		grouping Grouping
		naming   Naming
		want     string
	}{
		{
			"flat catalogue", GroupFlat, NameCatalogue,
			filepath.Join("/base", "XC694038.mp3"),
		},
		{
			"species catalogue", GroupBySpecies, NameCatalogue,
			filepath.Join("/base", "Troglodytes troglodytes", "XC694038.mp3"),
		},
		{
			"recordist catalogue", GroupByRecordist, NameCatalogue,
			filepath.Join("/base", "Jacobo Ramil Millarengo", "XC694038.mp3"),
		},
		{
			"flat original sanitized", GroupFlat, NameOriginal,
			filepath.Join("/base", "XC694038-wren_ song.mp3"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions("/base")
			opts.Grouping = tt.grouping
			opts.Naming = tt.naming
			m := NewManager(opts, nil, nil)

			if got := m.Path(rec); got != tt.want {
				t.Errorf("Path() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestManagerPath_OriginalNameFallsBack(t *testing.T) {
	rec := testRecording()
	rec.FileName = ""

	opts := DefaultOptions("/base")
	opts.Grouping = GroupFlat
	opts.Naming = NameOriginal
	m := NewManager(opts, nil, nil)

	if got := m.Path(rec); got != filepath.Join("/base", "XC694038.mp3") {
		t.Errorf("Path() = %s, want catalogue fallback", got)
	}
}

func TestManagerAdd_SkipsMissingFileURL(t *testing.T) {
	var warned bool
	m := NewManager(DefaultOptions("/base"), nil, func(e ProgressEvent) {
		if e.Level == LevelWarning {
			warned = true
		}
	})

	withFile := testRecording()
	withoutFile := testRecording()
	withoutFile.ID = 1
	withoutFile.FileURL = ""

	m.Add(withFile, withoutFile)

	if m.Queued() != 1 {
		t.Errorf("Queued() = %d, want 1", m.Queued())
	}
	if !warned {
		t.Error("recording without a file URL should warn")
	}
}

func TestManagerWritePlaylist(t *testing.T) {
	dir := t.TempDir()

	opts := DefaultOptions(dir)
	opts.CreatePlaylist = true
	opts.PlaylistName = "wrens"
	opts.PlaylistFormat = audio.FormatM3U
	opts.M3UExtended = true
	m := NewManager(opts, nil, nil)

	// Entries out of order; the playlist sorts by catalogue number.
	rec2 := testRecording()
	rec1 := testRecording()
	rec1.ID = 100
	m.addEntry(filepath.Join(dir, "XC694038.mp3"), rec2)
	m.addEntry(filepath.Join(dir, "XC100.mp3"), rec1)

	m.writePlaylist()

	data, err := os.ReadFile(filepath.Join(dir, "wrens.m3u"))
	if err != nil {
		t.Fatalf("playlist not written: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "#EXTM3U") {
		t.Error("extended M3U header missing")
	}
	if strings.Index(content, "XC100.mp3") > strings.Index(content, "XC694038.mp3") {
		t.Error("playlist entries not sorted by catalogue number")
	}
}
