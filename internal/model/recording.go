package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The API uses a few placeholder strings for fields with no data.
var invalidPlaceholders = map[string]bool{
	"":        true,
	"?":       true,
	"unknown": true,
}

// ImageSet holds the URLs of the rendered sonogram or oscillogram
// images for a recording, from smallest to largest. Oscillograms have
// no full-size rendering, so Full may be empty.
type ImageSet struct {
	Small  string
	Medium string
	Large  string
	Full   string
}

// Recording is one validated catalogue entry.
//
// Recording is produced by ParseRecording from the raw payloads inside
// a search response page. String fields that the API reports as
// placeholder values ("", "?", "unknown") come back empty; optional
// numeric fields are pointers so "not reported" is distinguishable
// from zero.
type Recording struct {
	// ID is the catalogue number (the 76967 in "XC76967").
	ID int64

	// Taxon identity.
	Genus      string
	Epithet    string
	Subspecies string
	CommonName string

	// Group is the animal group ("birds", "grasshoppers", "bats", ...).
	Group string

	Recordist string
	Country   string
	Locality  string

	Latitude  *float64
	Longitude *float64
	Altitude  *float64

	// SoundType is the standardized sound type ("song", "call", ...).
	SoundType string
	Sex       string
	LifeStage string
	Method    string

	// PageURL is the recording's detail page; FileURL is the direct
	// audio download; FileName is the original upload file name.
	PageURL  string
	FileURL  string
	FileName string

	Sonograms    ImageSet
	Oscillograms ImageSet

	LicenseURL string
	Quality    Quality

	// Length is the audio duration; zero when not reported.
	Length time.Duration

	// Date and UploadDate are zero when the API reports a placeholder
	// or a partial date like "2021-05-00".
	Date       time.Time
	UploadDate time.Time

	// TimeOfDay is the local clock time of the recording as reported,
	// e.g. "09:30"; empty when unknown.
	TimeOfDay string

	// Background lists species identified in the background.
	Background []string

	Remarks        string
	RegistrationNr string
	Device         string
	Microphone     string

	AnimalSeen   *bool
	PlaybackUsed *bool
	Automatic    *bool

	Temperature *float64
	SampleRate  int
}

// Binomial returns the scientific species name ("Genus epithet").
func (r *Recording) Binomial() string {
	return strings.TrimSpace(r.Genus + " " + r.Epithet)
}

// Title returns a human-readable label for the recording, preferring
// the English common name.
func (r *Recording) Title() string {
	if r.CommonName != "" {
		return r.CommonName
	}
	if b := r.Binomial(); b != "" {
		return b
	}
	return fmt.Sprintf("XC%d", r.ID)
}

// CatalogueNumber returns the display form of the id, e.g. "XC76967".
func (r *Recording) CatalogueNumber() string {
	return fmt.Sprintf("XC%d", r.ID)
}

// wireRecording mirrors one element of the "recordings" array as the
// API sends it. Nearly everything is a string on the wire.
type wireRecording struct {
	ID         string   `json:"id"`
	Genus      string   `json:"gen"`
	Epithet    string   `json:"sp"`
	Subspecies string   `json:"ssp"`
	Group      string   `json:"grp"`
	CommonName string   `json:"en"`
	Recordist  string   `json:"rec"`
	Country    string   `json:"cnt"`
	Locality   string   `json:"loc"`
	Latitude   string   `json:"lat"`
	Longitude  string   `json:"lon"`
	Altitude   string   `json:"alt"`
	SoundType  string   `json:"type"`
	Sex        string   `json:"sex"`
	Stage      string   `json:"stage"`
	Method     string   `json:"method"`
	URL        string   `json:"url"`
	File       string   `json:"file"`
	FileName   string   `json:"file-name"`
	Sono       wireSono `json:"sono"`
	Osci       wireOsci `json:"osci"`
	License    string   `json:"lic"`
	Quality    string   `json:"q"`
	Length     string   `json:"length"`
	Time       string   `json:"time"`
	Date       string   `json:"date"`
	Uploaded   string   `json:"uploaded"`
	Also       []string `json:"also"`
	Remarks    string   `json:"rmk"`
	AnimalSeen string   `json:"animal-seen"`
	Playback   string   `json:"playback-used"`
	Automatic  string   `json:"auto"`
	RegNr      string   `json:"regnr"`
	Device     string   `json:"dvc"`
	Microphone string   `json:"mic"`
	SampleRate string   `json:"smp"`
	Temp       string   `json:"temp"`
}

type wireSono struct {
	Small  string `json:"small"`
	Medium string `json:"med"`
	Large  string `json:"large"`
	Full   string `json:"full"`
}

type wireOsci struct {
	Small  string `json:"small"`
	Medium string `json:"med"`
	Large  string `json:"large"`
}

// ParseRecording validates and normalizes one raw record payload.
//
// A payload without a usable catalogue number is rejected; callers are
// expected to skip such records with a warning rather than abort the
// whole page. All other malformed fields degrade to their zero value.
func ParseRecording(raw json.RawMessage) (*Recording, error) {
	var w wireRecording
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}

	id, err := ParseRecordingID(w.ID)
	if err != nil {
		return nil, fmt.Errorf("record has no usable catalogue number: %w", err)
	}

	r := &Recording{
		ID:             id,
		Genus:          cleanString(w.Genus),
		Epithet:        cleanString(w.Epithet),
		Subspecies:     cleanString(w.Subspecies),
		Group:          cleanString(w.Group),
		CommonName:     cleanString(w.CommonName),
		Recordist:      cleanString(w.Recordist),
		Country:        cleanString(w.Country),
		Locality:       cleanString(w.Locality),
		Latitude:       cleanFloat(w.Latitude),
		Longitude:      cleanFloat(w.Longitude),
		Altitude:       cleanFloat(w.Altitude),
		SoundType:      cleanString(w.SoundType),
		Sex:            cleanString(w.Sex),
		LifeStage:      cleanString(w.Stage),
		Method:         cleanString(w.Method),
		PageURL:        cleanURL(w.URL),
		FileURL:        cleanURL(w.File),
		FileName:       cleanString(w.FileName),
		LicenseURL:     cleanURL(w.License),
		Length:         parseLength(w.Length),
		Date:           parseDate(w.Date),
		UploadDate:     parseDate(w.Uploaded),
		TimeOfDay:      cleanTime(w.Time),
		Remarks:        cleanString(w.Remarks),
		RegistrationNr: cleanString(w.RegNr),
		Device:         cleanString(w.Device),
		Microphone:     cleanString(w.Microphone),
		AnimalSeen:     cleanBool(w.AnimalSeen),
		PlaybackUsed:   cleanBool(w.Playback),
		Automatic:      cleanBool(w.Automatic),
		Temperature:    cleanFloat(w.Temp),
		Sonograms: ImageSet{
			Small:  cleanURL(w.Sono.Small),
			Medium: cleanURL(w.Sono.Medium),
			Large:  cleanURL(w.Sono.Large),
			Full:   cleanURL(w.Sono.Full),
		},
		Oscillograms: ImageSet{
			Small:  cleanURL(w.Osci.Small),
			Medium: cleanURL(w.Osci.Medium),
			Large:  cleanURL(w.Osci.Large),
		},
	}

	if q, err := ParseQuality(w.Quality); err == nil {
		r.Quality = q
	}
	if n, err := strconv.Atoi(strings.TrimSpace(w.SampleRate)); err == nil && n > 0 {
		r.SampleRate = n
	}
	for _, s := range w.Also {
		if s = cleanString(s); s != "" {
			r.Background = append(r.Background, s)
		}
	}

	return r, nil
}

// cleanString maps API placeholder values to the empty string.
func cleanString(s string) string {
	s = strings.TrimSpace(s)
	if invalidPlaceholders[strings.ToLower(s)] {
		return ""
	}
	return s
}

// cleanURL normalizes scheme-relative URLs ("//xeno-canto.org/...").
func cleanURL(s string) string {
	s = cleanString(s)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "//") {
		return "https:" + s
	}
	return s
}

func cleanFloat(s string) *float64 {
	s = cleanString(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func cleanBool(s string) *bool {
	s = strings.ToLower(cleanString(s))
	var v bool
	switch {
	case strings.HasPrefix(s, "yes"):
		v = true
	case strings.HasPrefix(s, "no"):
		v = false
	default:
		return nil
	}
	return &v
}

// parseLength converts the "M:SS" (or "H:MM:SS") duration format.
func parseLength(s string) time.Duration {
	parts := strings.Split(cleanString(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	var total int
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second
}

// parseDate accepts full "YYYY-MM-DD" dates. Partial dates such as
// "2021-05-00" are reported by the API but carry no usable day, so
// they map to the zero time.
func parseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", cleanString(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

// cleanTime normalizes clock times like "6:05" to "06:05".
func cleanTime(s string) string {
	s = cleanString(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return ""
	}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 59 {
			return ""
		}
		parts[i] = fmt.Sprintf("%02d", n)
	}
	return strings.Join(parts, ":")
}
