package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseRecordingID(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"76967", 76967, false},
		{"XC76967", 76967, false},
		{"xc76967", 76967, false},
		{"Xc76967", 76967, false},
		{"  76967 ", 76967, false},
		{"abc", 0, true},
		{"XC", 0, true},
		{"", 0, true},
		{"-5", 0, true},
		{"0", 0, true},
		{"12.5", 0, true},
		{"999999999", 0, true}, // above MaxRecordingID
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRecordingID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseRecordingID(%q) = %d, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRecordingID(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseRecordingID(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIDs(t *testing.T) {
	ids, malformed := NormalizeIDs([]string{"300", "XC100", "abc", "200", "100", ""})

	wantIDs := []int64{100, 200, 300}
	if len(ids) != len(wantIDs) {
		t.Fatalf("got %d ids, want %d", len(ids), len(wantIDs))
	}
	for i, id := range ids {
		if id != wantIDs[i] {
			t.Errorf("ids[%d] = %d, want %d", i, id, wantIDs[i])
		}
	}

	if len(malformed) != 2 {
		t.Errorf("got %d malformed, want 2: %v", len(malformed), malformed)
	}
}

func TestParseQuality(t *testing.T) {
	tests := []struct {
		input   string
		want    Quality
		wantErr bool
	}{
		{"A", QualityA, false},
		{"e", QualityE, false},
		{" c ", QualityC, false},
		{"F", 0, true},
		{"", 0, true},
		{"AB", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseQuality(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseQuality(%q) = %v, want error", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseQuality(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseQuality(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestOffsetQuality_Saturates(t *testing.T) {
	tests := []struct {
		q     Quality
		delta int
		want  Quality
	}{
		{QualityC, 1, QualityD},
		{QualityC, -1, QualityB},
		{QualityA, -1, QualityA},
		{QualityA, -10, QualityA},
		{QualityE, 1, QualityE},
		{QualityD, 5, QualityE},
	}

	for _, tt := range tests {
		if got := OffsetQuality(tt.q, tt.delta); got != tt.want {
			t.Errorf("OffsetQuality(%v, %d) = %v, want %v", tt.q, tt.delta, got, tt.want)
		}
	}
}

const sampleRecordJSON = `{
	"id": "694038",
	"gen": "Troglodytes",
	"sp": "troglodytes",
	"ssp": "",
	"grp": "birds",
	"en": "Eurasian Wren",
	"rec": "Jacobo Ramil Millarengo",
	"cnt": "Spain",
	"loc": "Sisalde, Ames",
	"lat": "42.8735",
	"lon": "-8.6538",
	"alt": "unknown",
	"type": "song",
	"sex": "male",
	"stage": "adult",
	"method": "field recording",
	"url": "//xeno-canto.org/694038",
	"file": "https://xeno-canto.org/694038/download",
	"file-name": "XC694038-wren.mp3",
	"sono": {
		"small": "//xeno-canto.org/sounds/uploaded/XYZ/ffts/XC694038-small.png",
		"med": "//xeno-canto.org/sounds/uploaded/XYZ/ffts/XC694038-med.png",
		"large": "//xeno-canto.org/sounds/uploaded/XYZ/ffts/XC694038-large.png",
		"full": "//xeno-canto.org/sounds/uploaded/XYZ/ffts/XC694038-full.png"
	},
	"osci": {
		"small": "//xeno-canto.org/sounds/uploaded/XYZ/wave/XC694038-small.png",
		"med": "//xeno-canto.org/sounds/uploaded/XYZ/wave/XC694038-med.png",
		"large": "//xeno-canto.org/sounds/uploaded/XYZ/wave/XC694038-large.png"
	},
	"lic": "//creativecommons.org/licenses/by-nc-sa/4.0/",
	"q": "A",
	"length": "4:08",
	"time": "9:30",
	"date": "2021-12-23",
	"uploaded": "2021-12-27",
	"also": ["Turdus viscivorus", "?"],
	"rmk": "Male repeating a stereotyped phrase.",
	"animal-seen": "yes",
	"playback-used": "no",
	"auto": "unknown",
	"regnr": "?",
	"dvc": "",
	"mic": "",
	"smp": "48000",
	"temp": ""
}`

func TestParseRecording(t *testing.T) {
	rec, err := ParseRecording(json.RawMessage(sampleRecordJSON))
	if err != nil {
		t.Fatalf("ParseRecording failed: %v", err)
	}

	if rec.ID != 694038 {
		t.Errorf("ID = %d, want 694038", rec.ID)
	}
	if rec.Binomial() != "Troglodytes troglodytes" {
		t.Errorf("Binomial() = %q", rec.Binomial())
	}
	if rec.CatalogueNumber() != "XC694038" {
		t.Errorf("CatalogueNumber() = %q", rec.CatalogueNumber())
	}
	if rec.Quality != QualityA {
		t.Errorf("Quality = %v, want A", rec.Quality)
	}
	if rec.Length != 4*time.Minute+8*time.Second {
		t.Errorf("Length = %v, want 4m8s", rec.Length)
	}
	if rec.TimeOfDay != "09:30" {
		t.Errorf("TimeOfDay = %q, want 09:30", rec.TimeOfDay)
	}
	if rec.PageURL != "https://xeno-canto.org/694038" {
		t.Errorf("PageURL = %q, scheme not normalized", rec.PageURL)
	}
	if rec.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", rec.SampleRate)
	}
	if rec.Date.Format("2006-01-02") != "2021-12-23" {
		t.Errorf("Date = %v", rec.Date)
	}

	// Placeholder normalization.
	if rec.Altitude != nil {
		t.Errorf("Altitude = %v, want nil for 'unknown'", *rec.Altitude)
	}
	if rec.Automatic != nil {
		t.Errorf("Automatic = %v, want nil for 'unknown'", *rec.Automatic)
	}
	if rec.RegistrationNr != "" {
		t.Errorf("RegistrationNr = %q, want empty for '?'", rec.RegistrationNr)
	}
	if len(rec.Background) != 1 || rec.Background[0] != "Turdus viscivorus" {
		t.Errorf("Background = %v, placeholder entry not filtered", rec.Background)
	}

	// Booleans.
	if rec.AnimalSeen == nil || !*rec.AnimalSeen {
		t.Error("AnimalSeen should be true")
	}
	if rec.PlaybackUsed == nil || *rec.PlaybackUsed {
		t.Error("PlaybackUsed should be false")
	}
}

func TestParseRecording_MissingID(t *testing.T) {
	_, err := ParseRecording(json.RawMessage(`{"gen": "Troglodytes"}`))
	if err == nil {
		t.Fatal("expected error for record without catalogue number")
	}
}

func TestParseRecording_PartialDate(t *testing.T) {
	rec, err := ParseRecording(json.RawMessage(`{"id": "100", "date": "2021-05-00"}`))
	if err != nil {
		t.Fatalf("ParseRecording failed: %v", err)
	}
	if !rec.Date.IsZero() {
		t.Errorf("partial date parsed as %v, want zero time", rec.Date)
	}
}
