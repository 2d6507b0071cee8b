package audio

import (
	"strings"
	"testing"
	"time"

	"github.com/handiism/xenocanto-downloader/internal/model"
)

func TestPlaylistCreator_M3U(t *testing.T) {
	entries := createTestEntries()
	creator := NewPlaylistCreator(FormatM3U, false)

	content := creator.CreatePlaylist("Wrens", entries)

	// Check basic format
	if !strings.Contains(content, "XC694038.mp3") {
		t.Error("M3U should contain recording filename")
	}
	if strings.Contains(content, "#EXTM3U") {
		t.Error("plain M3U should not carry the extended header")
	}
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	entries := createTestEntries()
	creator := NewPlaylistCreator(FormatM3U, true)

	content := creator.CreatePlaylist("Wrens", entries)

	if !strings.HasPrefix(content, "#EXTM3U") {
		t.Error("Extended M3U should start with #EXTM3U")
	}
	if !strings.Contains(content, "#EXTINF:248,") {
		t.Error("Extended M3U should carry the duration in #EXTINF")
	}
	if !strings.Contains(content, "(XC694038)") {
		t.Error("Extended M3U should label entries with the catalogue number")
	}
}

func TestPlaylistCreator_PLS(t *testing.T) {
	entries := createTestEntries()
	creator := NewPlaylistCreator(FormatPLS, false)

	content := creator.CreatePlaylist("Wrens", entries)

	if !strings.HasPrefix(content, "[playlist]") {
		t.Error("PLS should start with [playlist]")
	}
	if !strings.Contains(content, "File1=") {
		t.Error("PLS should contain File1=")
	}
	if !strings.Contains(content, "NumberOfEntries=2") {
		t.Error("PLS should contain NumberOfEntries")
	}
}

func TestPlaylistCreator_WPL(t *testing.T) {
	entries := createTestEntries()
	creator := NewPlaylistCreator(FormatWPL, false)

	content := creator.CreatePlaylist("Wrens", entries)

	if !strings.Contains(content, "<?wpl") {
		t.Error("WPL should contain XML declaration")
	}
	if !strings.Contains(content, "<smil>") {
		t.Error("WPL should contain smil element")
	}
	if !strings.Contains(content, "<media src=") {
		t.Error("WPL should contain media elements")
	}
}

func TestPlaylistCreator_ZPL(t *testing.T) {
	entries := createTestEntries()
	creator := NewPlaylistCreator(FormatZPL, false)

	content := creator.CreatePlaylist("Wrens", entries)

	if !strings.Contains(content, "<?zpl") {
		t.Error("ZPL should contain XML declaration")
	}
	if !strings.Contains(content, `albumTitle="Troglodytes troglodytes"`) {
		t.Error("ZPL should carry the species as albumTitle")
	}
}

func TestPlaylistCreator_XMLEscape(t *testing.T) {
	rec := &model.Recording{
		ID:         1,
		Genus:      "Testus",
		Epithet:    "exempli",
		CommonName: `Bird & "Friend" <small>`,
		Recordist:  "A & B",
	}
	entries := []PlaylistEntry{{Path: "a&b.mp3", Recording: rec}}

	creator := NewPlaylistCreator(FormatZPL, false)
	content := creator.CreatePlaylist("Set & Title", entries)

	if !strings.Contains(content, "&amp;") {
		t.Error("ZPL should escape & as &amp;")
	}
	if strings.Contains(content, "<small>") {
		t.Error("ZPL should escape < and >")
	}
}

func TestPlaylistFormat_Extension(t *testing.T) {
	tests := []struct {
		format PlaylistFormat
		want   string
	}{
		{FormatM3U, ".m3u"},
		{FormatPLS, ".pls"},
		{FormatWPL, ".wpl"},
		{FormatZPL, ".zpl"},
	}
	for _, tt := range tests {
		if got := tt.format.Extension(); got != tt.want {
			t.Errorf("Extension() = %s, want %s", got, tt.want)
		}
	}
}

func createTestEntries() []PlaylistEntry {
	rec1 := &model.Recording{
		ID:         694038,
		Genus:      "Troglodytes",
		Epithet:    "troglodytes",
		CommonName: "Eurasian Wren",
		Recordist:  "Jacobo Ramil Millarengo",
		Length:     4*time.Minute + 8*time.Second,
	}
	rec2 := &model.Recording{
		ID:         694039,
		Genus:      "Troglodytes",
		Epithet:    "troglodytes",
		CommonName: "Eurasian Wren",
		Recordist:  "Jacobo Ramil Millarengo",
		Length:     2 * time.Minute,
	}
	return []PlaylistEntry{
		{Path: "XC694038.mp3", Recording: rec1},
		{Path: "XC694039.mp3", Recording: rec2},
	}
}
