package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/handiism/xenocanto-downloader/internal/model"
)

// Parse converts a raw search string of space-separated terms into a
// typed Query. It is the only place free-form user input enters the
// query layer; everything past it works with validated tags.
//
// Terms are either bare words, which become free-text search terms, or
// "field:value" pairs using the catalogue's tag aliases:
//
//	q, err := query.Parse(`gen:Troglodytes cnt:spain q:>C len:>30`)
//
// Numeric values accept the operator forms >v, <v, =v and a-b ranges,
// with or without the surrounding quotes the wire syntax uses. Quality
// accepts a bare grade or >g / <g, meaning strictly better or strictly
// worse than grade g.
func Parse(raw string) (*Query, error) {
	q := &Query{}
	var free []string

	for _, term := range strings.Fields(raw) {
		field, value, ok := strings.Cut(term, ":")
		if !ok {
			free = append(free, term)
			continue
		}
		field = strings.ToLower(field)
		value = unwrapValue(value)
		if value == "" {
			return nil, fmt.Errorf("term %q has an empty value", term)
		}
		if err := q.setField(field, value); err != nil {
			return nil, err
		}
	}

	q.Text = strings.Join(free, " ")
	return q, nil
}

func (q *Query) setField(field, value string) error {
	switch field {
	case "gen":
		q.Genus = value
	case "sp":
		q.Species = value
	case "ssp":
		q.Subspecies = value
	case "grp":
		q.Group = value
	case "rec":
		q.Recordist = value
	case "cnt":
		tag, err := Country(value)
		if err != nil {
			return err
		}
		q.Country = &tag
	case "loc":
		q.Locality = value
	case "area":
		q.Area = value
	case "rmk":
		q.Remarks = value
	case "also":
		q.Background = value
	case "type":
		q.SoundType = value
	case "sex":
		q.Sex = value
	case "stage":
		q.LifeStage = value
	case "method":
		q.Method = value
	case "nr":
		tag, err := parseIDExpr(value)
		if err != nil {
			return err
		}
		q.ID = &tag
	case "lic":
		q.License = value
	case "regnr":
		q.RegistrationNr = value
	case "dvc":
		q.Device = value
	case "mic":
		q.Microphone = value
	case "seen", "playback", "auto":
		b, err := parseYesNo(field, value)
		if err != nil {
			return err
		}
		switch field {
		case "seen":
			q.AnimalSeen = b
		case "playback":
			q.PlaybackUsed = b
		default:
			q.Automatic = b
		}
	case "year", "month", "colyear", "colmonth":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", field, value)
		}
		switch field {
		case "year":
			q.Year = n
		case "month":
			q.Month = n
		case "colyear":
			q.CollectionYear = n
		default:
			q.CollectionMonth = n
		}
	case "lat", "lon", "len", "temp", "smp":
		tag, err := parseNumberExpr(field, value)
		if err != nil {
			return err
		}
		switch field {
		case "lat":
			q.Latitude = &tag
		case "lon":
			q.Longitude = &tag
		case "len":
			q.Length = &tag
		case "temp":
			q.Temperature = &tag
		default:
			q.SampleRate = &tag
		}
	case "box":
		tag, err := parseBoxExpr(value)
		if err != nil {
			return err
		}
		q.Box = &tag
	case "since":
		tag, err := parseSinceExpr(value)
		if err != nil {
			return err
		}
		q.Since = &tag
	case "q":
		tag, err := parseQualityExpr(value)
		if err != nil {
			return err
		}
		q.Quality = &tag
	default:
		return fmt.Errorf("unknown search field %q", field)
	}
	return nil
}

// unwrapValue strips the wire-syntax quoting so parsed terms and
// programmatic terms pass through the same constructors.
func unwrapValue(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}
	return strings.ReplaceAll(s, "+", " ")
}

func parseNumberExpr(field, s string) (NumberTag, error) {
	num := func(v string) (float64, error) {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not a number", field, v)
		}
		return f, nil
	}

	switch {
	case strings.HasPrefix(s, ">"):
		f, err := num(s[1:])
		if err != nil {
			return NumberTag{}, err
		}
		return AtLeast(f), nil
	case strings.HasPrefix(s, "<"):
		f, err := num(s[1:])
		if err != nil {
			return NumberTag{}, err
		}
		return AtMost(f), nil
	case strings.HasPrefix(s, "="):
		f, err := num(s[1:])
		if err != nil {
			return NumberTag{}, err
		}
		return Exactly(f), nil
	}

	// A dash past the first character separates range bounds; a leading
	// dash is a negative number.
	if i := strings.Index(s[1:], "-"); i >= 0 {
		a, err := num(s[:i+1])
		if err != nil {
			return NumberTag{}, err
		}
		b, err := num(s[i+2:])
		if err != nil {
			return NumberTag{}, err
		}
		tag, err := Between(a, b)
		if err != nil {
			return NumberTag{}, fmt.Errorf("%s: %w", field, err)
		}
		return tag, nil
	}

	f, err := num(s)
	if err != nil {
		return NumberTag{}, err
	}
	return Value(f), nil
}

func parseIDExpr(s string) (IDTag, error) {
	if from, to, ok := strings.Cut(s, "-"); ok {
		a, err := model.ParseRecordingID(from)
		if err != nil {
			return IDTag{}, err
		}
		b, err := model.ParseRecordingID(to)
		if err != nil {
			return IDTag{}, err
		}
		return IDRange(a, b)
	}
	id, err := model.ParseRecordingID(s)
	if err != nil {
		return IDTag{}, err
	}
	return SingleID(id)
}

func parseBoxExpr(s string) (BoxTag, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BoxTag{}, fmt.Errorf("box: want south,west,north,east, got %q", s)
	}
	var f [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BoxTag{}, fmt.Errorf("box: %q is not a number", p)
		}
		f[i] = v
	}
	return Box(f[0], f[1], f[2], f[3])
}

func parseSinceExpr(s string) (SinceTag, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return SinceTag{}, fmt.Errorf("since: day count must be positive, got %d", n)
		}
		return SinceDays(n), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return SinceTag{}, fmt.Errorf("since: want a day count or YYYY-MM-DD date, got %q", s)
	}
	return SinceDate(t), nil
}

func parseQualityExpr(s string) (QualityTag, error) {
	op := ""
	if strings.HasPrefix(s, ">") || strings.HasPrefix(s, "<") {
		op, s = s[:1], s[1:]
	}
	grade, err := model.ParseQuality(s)
	if err != nil {
		return QualityTag{}, fmt.Errorf("q: %w", err)
	}
	switch op {
	case ">":
		// Strictly better than the grade.
		if grade == model.BestQuality {
			return QualityTag{}, fmt.Errorf("q: no grade is better than %s", grade)
		}
		return QualityAtMost(model.OffsetQuality(grade, -1)), nil
	case "<":
		// Strictly worse than the grade.
		if grade == model.WorstQuality {
			return QualityTag{}, fmt.Errorf("q: no grade is worse than %s", grade)
		}
		return QualityAtLeast(model.OffsetQuality(grade, 1)), nil
	default:
		return QualityIs(grade), nil
	}
}

func parseYesNo(field, s string) (*bool, error) {
	switch strings.ToLower(s) {
	case "yes":
		v := true
		return &v, nil
	case "no":
		v := false
		return &v, nil
	}
	return nil, fmt.Errorf("%s: want yes or no, got %q", field, s)
}
