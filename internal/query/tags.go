package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/biter777/countries"
	"github.com/handiism/xenocanto-downloader/internal/model"
)

// Kind says how a tag value bounds its field.
type Kind int

const (
	// KindNone is an unconstrained literal value.
	KindNone Kind = iota
	KindExactly
	KindAtLeast
	KindAtMost
	KindBetween
)

// NumberTag is a numeric search constraint, used for length, sample
// rate, temperature, latitude and longitude tags.
//
// Build one with the constructors rather than literal structs:
//
//	query.AtLeast(48000)          // smp:">48000"
//	query.Between(10, 15)         // len:10-15
//	query.Seconds(30*time.Second) // plain 30, for duration fields
type NumberTag struct {
	Kind Kind
	A    float64
	B    float64 // only set for KindBetween, always > A
}

// Value returns an unconstrained numeric tag that serializes as the
// bare value.
func Value(v float64) NumberTag { return NumberTag{Kind: KindNone, A: v} }

// Exactly constrains the field to exactly v. For length searches this
// drops the server's default 1% tolerance.
func Exactly(v float64) NumberTag { return NumberTag{Kind: KindExactly, A: v} }

// AtLeast constrains the field to values above v.
func AtLeast(v float64) NumberTag { return NumberTag{Kind: KindAtLeast, A: v} }

// AtMost constrains the field to values below v.
func AtMost(v float64) NumberTag { return NumberTag{Kind: KindAtMost, A: v} }

// Between constrains the field to the closed range [a, b]. Operands
// are reordered so the smaller bound comes first; equal operands are
// rejected because they describe an empty range syntax on the wire.
func Between(a, b float64) (NumberTag, error) {
	if a == b {
		return NumberTag{}, fmt.Errorf("range bounds must differ, got %v and %v", a, b)
	}
	if a > b {
		a, b = b, a
	}
	return NumberTag{Kind: KindBetween, A: a, B: b}, nil
}

// Seconds converts a duration to the seconds value the length and
// since tags expect.
func Seconds(d time.Duration) float64 { return d.Seconds() }

// expr renders the constraint in the remote tag syntax. The remote
// parser requires operator forms to be wrapped in double quotes.
func (n NumberTag) expr() string {
	switch n.Kind {
	case KindExactly:
		return `"=` + formatNum(n.A) + `"`
	case KindAtLeast:
		return `">` + formatNum(n.A) + `"`
	case KindAtMost:
		return `"<` + formatNum(n.A) + `"`
	case KindBetween:
		return formatNum(n.A) + "-" + formatNum(n.B)
	default:
		return formatNum(n.A)
	}
}

// QualityTag constrains the recording quality rating.
//
// The scale runs A (best) to E (worst) and one-sided bounds follow
// that order: QualityAtLeast(C) matches grades C through E,
// QualityAtMost(C) matches grades A through C. Bounds that cover the
// whole scale, QualityAtLeast(A) and QualityAtMost(E), cannot be
// written as one-sided operators in the wire syntax and serialize to
// "no constraint" (the tag is omitted).
type QualityTag struct {
	Kind Kind
	Rank model.Quality
}

// QualityIs matches recordings rated exactly q.
func QualityIs(q model.Quality) QualityTag { return QualityTag{Kind: KindNone, Rank: q} }

// QualityAtLeast matches grades from q down to E on the A-to-E scale.
func QualityAtLeast(q model.Quality) QualityTag { return QualityTag{Kind: KindAtLeast, Rank: q} }

// QualityAtMost matches grades from A down to q on the A-to-E scale.
func QualityAtMost(q model.Quality) QualityTag { return QualityTag{Kind: KindAtMost, Rank: q} }

// expr renders the rating constraint. The wire syntax has no >= or <=
// operator, so one-sided bounds are rewritten against the saturating
// neighbor grade: "at least C" becomes `"<B"` (worse than B) and
// "at most C" becomes `">D"` (better than D). The second return value
// is false when the constraint spans the whole scale and the tag must
// be omitted.
func (q QualityTag) expr() (string, bool) {
	if !q.Rank.Valid() {
		return "", false
	}
	switch q.Kind {
	case KindAtLeast:
		if q.Rank == model.BestQuality {
			return "", false
		}
		return `"<` + model.OffsetQuality(q.Rank, -1).String() + `"`, true
	case KindAtMost:
		if q.Rank == model.WorstQuality {
			return "", false
		}
		return `">` + model.OffsetQuality(q.Rank, 1).String() + `"`, true
	default:
		return q.Rank.String(), true
	}
}

// IDTag constrains the catalogue number, either to a single recording
// or to a contiguous range.
type IDTag struct {
	From int64
	To   int64 // 0 for a single id
}

// SingleID builds an id tag for one catalogue number.
func SingleID(id int64) (IDTag, error) {
	if err := model.CheckRecordingID(id); err != nil {
		return IDTag{}, err
	}
	return IDTag{From: id}, nil
}

// IDRange builds an id tag for the closed range [a, b]. Operands are
// reordered ascending; equal operands are rejected (use SingleID).
func IDRange(a, b int64) (IDTag, error) {
	if a == b {
		return IDTag{}, fmt.Errorf("range bounds must differ, got %d and %d", a, b)
	}
	if a > b {
		a, b = b, a
	}
	if err := model.CheckRecordingID(a); err != nil {
		return IDTag{}, err
	}
	if err := model.CheckRecordingID(b); err != nil {
		return IDTag{}, err
	}
	return IDTag{From: a, To: b}, nil
}

func (t IDTag) expr() string {
	if t.To == 0 {
		return strconv.FormatInt(t.From, 10)
	}
	return strconv.FormatInt(t.From, 10) + "-" + strconv.FormatInt(t.To, 10)
}

// BoxTag restricts results to a geographic bounding box. The wire
// order is fixed: south latitude, west longitude, north latitude,
// east longitude, comma-separated with no spaces.
type BoxTag struct {
	South float64
	West  float64
	North float64
	East  float64
}

// Box builds a bounding-box tag from its four corners.
func Box(south, west, north, east float64) (BoxTag, error) {
	if south < -90 || north > 90 || south >= north {
		return BoxTag{}, fmt.Errorf("invalid latitude bounds %v..%v", south, north)
	}
	if west < -180 || east > 180 {
		return BoxTag{}, fmt.Errorf("invalid longitude bounds %v..%v", west, east)
	}
	return BoxTag{South: south, West: west, North: north, East: east}, nil
}

func (b BoxTag) expr() string {
	return formatNum(b.South) + "," + formatNum(b.West) + "," +
		formatNum(b.North) + "," + formatNum(b.East)
}

// CountryTag restricts results to one country. The identifier is
// resolved to a canonical country name when the tag is constructed,
// so a bad country name fails fast instead of producing a query that
// silently matches nothing.
type CountryTag struct {
	name string
}

// Country resolves a country name or ISO 3166 code (alpha-2 or
// alpha-3, case-insensitive) to a country tag.
//
// Example:
//
//	tag, err := query.Country("BR") // cnt:brazil
func Country(identifier string) (CountryTag, error) {
	c := countries.ByName(strings.TrimSpace(identifier))
	if c == countries.Unknown {
		return CountryTag{}, fmt.Errorf("invalid country %q: pass a valid country name or ISO code", identifier)
	}
	return CountryTag{name: strings.ToLower(c.String())}, nil
}

// Name returns the resolved canonical country name, lowercased.
func (c CountryTag) Name() string { return c.name }

func (c CountryTag) expr() string { return wrapText(c.name) }

type sinceMode int

const (
	sinceDate sinceMode = iota
	sinceDays
	sinceLookback
)

// SinceTag restricts results to recordings uploaded since a point in
// time. The tag accepts three forms: an absolute date, a relative day
// count, or a duration before now. The duration form is resolved
// against the current UTC instant when the query is serialized, not
// when the tag is built.
type SinceTag struct {
	mode     sinceMode
	date     time.Time
	days     int
	lookback time.Duration
}

// SinceDate matches uploads on or after the given date.
func SinceDate(t time.Time) SinceTag { return SinceTag{mode: sinceDate, date: t} }

// SinceDays matches uploads within the past n days.
func SinceDays(n int) SinceTag { return SinceTag{mode: sinceDays, days: n} }

// SinceDuration matches uploads within the past d, resolved to an
// absolute date at serialization time.
func SinceDuration(d time.Duration) SinceTag { return SinceTag{mode: sinceLookback, lookback: d} }

func (s SinceTag) expr(now time.Time) string {
	switch s.mode {
	case sinceDays:
		return strconv.Itoa(s.days)
	case sinceLookback:
		return now.UTC().Add(-s.lookback).Format("2006-01-02")
	default:
		return s.date.Format("2006-01-02")
	}
}

// formatNum renders a float without trailing zeros, so whole numbers
// serialize as integers.
func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// wrapText prepares a free-text value for the tag syntax: values
// containing spaces are wrapped in double quotes with inner spaces
// replaced by '+'. Values without spaces pass through unchanged,
// which also makes the transformation idempotent.
func wrapText(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, " ") {
		return `"` + strings.ReplaceAll(s, " ", "+") + `"`
	}
	return s
}
