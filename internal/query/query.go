package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Query is a typed search request against the recordings catalogue.
//
// The zero value matches everything and serializes to an empty string.
// Fields are typed so invalid constraints fail before any request goes
// out: pointer fields and zero-valued tags mean "no constraint".
//
//	q := query.Query{
//	    Genus:   "troglodytes",
//	    Quality: &query.QualityTag{Kind: query.KindAtLeast, Rank: model.QualityC},
//	}
//	expr, err := q.Serialize() // `gen:troglodytes q:"<B"`
type Query struct {
	// Text is matched against names and localities without a field
	// prefix, the way a plain search-box query would be.
	Text string

	Genus      string
	Species    string
	Subspecies string
	Group      string

	Recordist string
	Locality  string
	Area      string
	Country   *CountryTag

	Remarks    string
	Background string

	SoundType string
	Sex       string
	LifeStage string
	Method    string

	ID *IDTag

	License        string
	RegistrationNr string
	Device         string
	Microphone     string

	AnimalSeen   *bool
	PlaybackUsed *bool
	Automatic    *bool

	// Year and Month select by recording date; CollectionYear and
	// CollectionMonth select by upload date.
	Year            int
	Month           int
	CollectionYear  int
	CollectionMonth int

	Latitude  *NumberTag
	Longitude *NumberTag
	Box       *BoxTag

	Since *SinceTag

	Quality *QualityTag

	// Length constrains the audio duration in seconds.
	Length      *NumberTag
	Temperature *NumberTag
	SampleRate  *NumberTag
}

// Serialize renders the query in the remote tag syntax, with terms
// joined by '+'. The output is deterministic: tags always appear in
// the same order regardless of how the query was built.
func (q *Query) Serialize() (string, error) {
	return q.serializeAt(time.Now().UTC())
}

// serializeAt is Serialize with an explicit clock, so relative since
// tags are testable.
func (q *Query) serializeAt(now time.Time) (string, error) {
	if err := q.validate(now); err != nil {
		return "", err
	}

	var terms []string
	add := func(field, expr string) {
		if expr != "" {
			terms = append(terms, field+":"+expr)
		}
	}

	for _, word := range strings.Fields(q.Text) {
		terms = append(terms, word)
	}

	add("gen", wrapText(q.Genus))
	add("sp", wrapText(q.Species))
	add("ssp", wrapText(q.Subspecies))
	add("grp", wrapText(q.Group))
	add("rec", wrapText(q.Recordist))
	if q.Country != nil {
		add("cnt", q.Country.expr())
	}
	add("loc", wrapText(q.Locality))
	add("area", wrapText(q.Area))
	add("rmk", wrapText(q.Remarks))
	add("also", wrapText(q.Background))
	add("type", wrapText(q.SoundType))
	add("sex", wrapText(q.Sex))
	add("stage", wrapText(q.LifeStage))
	add("method", wrapText(q.Method))
	if q.ID != nil {
		add("nr", q.ID.expr())
	}
	add("lic", wrapText(q.License))
	add("regnr", wrapText(q.RegistrationNr))
	add("dvc", wrapText(q.Device))
	add("mic", wrapText(q.Microphone))
	add("seen", boolExpr(q.AnimalSeen))
	add("playback", boolExpr(q.PlaybackUsed))
	add("auto", boolExpr(q.Automatic))
	if q.Year != 0 {
		add("year", strconv.Itoa(q.Year))
	}
	if q.Month != 0 {
		add("month", strconv.Itoa(q.Month))
	}
	if q.CollectionYear != 0 {
		add("colyear", strconv.Itoa(q.CollectionYear))
	}
	if q.CollectionMonth != 0 {
		add("colmonth", strconv.Itoa(q.CollectionMonth))
	}
	if q.Latitude != nil {
		add("lat", q.Latitude.expr())
	}
	if q.Longitude != nil {
		add("lon", q.Longitude.expr())
	}
	if q.Box != nil {
		add("box", q.Box.expr())
	}
	if q.Since != nil {
		add("since", q.Since.expr(now))
	}
	if q.Quality != nil {
		if expr, ok := q.Quality.expr(); ok {
			add("q", expr)
		}
	}
	if q.Length != nil {
		add("len", q.Length.expr())
	}
	if q.Temperature != nil {
		add("temp", q.Temperature.expr())
	}
	if q.SampleRate != nil {
		add("smp", q.SampleRate.expr())
	}

	return strings.Join(terms, "+"), nil
}

// IsEmpty reports whether the query carries no terms at all.
func (q *Query) IsEmpty() bool {
	expr, err := q.serializeAt(time.Time{})
	return err == nil && expr == ""
}

func (q *Query) validate(now time.Time) error {
	checkYear := func(field string, y int) error {
		if y != 0 && (y < 1970 || y > now.Year()) {
			return fmt.Errorf("%s %d out of range (1970-%d)", field, y, now.Year())
		}
		return nil
	}
	checkMonth := func(field string, m int) error {
		if m != 0 && (m < 1 || m > 12) {
			return fmt.Errorf("%s %d out of range (1-12)", field, m)
		}
		return nil
	}

	if err := checkYear("year", q.Year); err != nil {
		return err
	}
	if err := checkYear("colyear", q.CollectionYear); err != nil {
		return err
	}
	if err := checkMonth("month", q.Month); err != nil {
		return err
	}
	return checkMonth("colmonth", q.CollectionMonth)
}

func boolExpr(b *bool) string {
	switch {
	case b == nil:
		return ""
	case *b:
		return "yes"
	default:
		return "no"
	}
}
