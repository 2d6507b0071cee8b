package model

import (
	"fmt"
	"strings"
)

// Quality is the xeno-canto recording quality rating.
//
// Recordings are graded on a fixed five-step scale from A (best) to E
// (worst). The zero value means "no rating" and is reported for
// recordings that have not been graded yet.
//
// The scale is totally ordered: QualityA < QualityB < ... < QualityE,
// where a smaller value is a better grade.
type Quality int

const (
	// QualityUnrated is the zero value, used when a recording carries
	// no rating.
	QualityUnrated Quality = 0

	// QualityA is the best grade.
	QualityA Quality = 1
	QualityB Quality = 2
	QualityC Quality = 3
	QualityD Quality = 4
	// QualityE is the worst grade.
	QualityE Quality = 5
)

// BestQuality and WorstQuality bound the rating scale.
const (
	BestQuality  = QualityA
	WorstQuality = QualityE
)

// Valid reports whether q is one of the five grades.
func (q Quality) Valid() bool {
	return q >= BestQuality && q <= WorstQuality
}

// String returns the single-letter grade ("A".."E"), or "?" for an
// unrated value.
func (q Quality) String() string {
	if !q.Valid() {
		return "?"
	}
	return string(rune('A' + int(q) - int(BestQuality)))
}

// ParseQuality converts a single-letter grade to a Quality.
// Matching is case-insensitive.
//
// Example:
//
//	q, err := ParseQuality("b") // QualityB
func ParseQuality(s string) (Quality, error) {
	s = strings.TrimSpace(s)
	if len(s) == 1 {
		c := s[0] | 0x20 // lowercase
		if c >= 'a' && c <= 'e' {
			return Quality(int(c-'a') + int(BestQuality)), nil
		}
	}
	return QualityUnrated, fmt.Errorf("invalid quality %q: pass one of A, B, C, D, E (case-insensitive)", s)
}

// OffsetQuality moves q by delta steps along the scale, saturating at
// the scale boundaries instead of overflowing. A positive delta moves
// toward QualityE (worse), a negative delta toward QualityA (better).
//
// Example:
//
//	OffsetQuality(QualityA, -1) // QualityA (saturated)
//	OffsetQuality(QualityD, 3)  // QualityE (saturated)
func OffsetQuality(q Quality, delta int) Quality {
	v := int(q) + delta
	if v < int(BestQuality) {
		return BestQuality
	}
	if v > int(WorstQuality) {
		return WorstQuality
	}
	return Quality(v)
}
