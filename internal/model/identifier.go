package model

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// MaxRecordingID bounds the xeno-canto catalogue number space. Numbers
// above this are treated as malformed input rather than queried.
const MaxRecordingID int64 = 950000

// Catalogue numbers appear as bare integers or with a leading "XC"
// (case-insensitive), e.g. "76967" or "XC76967".
var recordingIDPattern = regexp.MustCompile(`^(?i:xc)?([0-9]{1,9})$`)

// ParseRecordingID normalizes a catalogue number given as text.
//
// Accepted forms are a bare positive integer or the same with an "XC"
// prefix in any case. Anything else, including numbers outside
// (0, MaxRecordingID], is rejected with an error; malformed input is
// never silently coerced.
//
// Example:
//
//	id, err := ParseRecordingID("xc76967") // 76967
func ParseRecordingID(s string) (int64, error) {
	m := recordingIDPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid catalogue number %q: expected a number like 76967 or XC76967", s)
	}

	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid catalogue number %q: %w", s, err)
	}

	return id, CheckRecordingID(id)
}

// CheckRecordingID validates a numeric catalogue number against the
// documented id space.
func CheckRecordingID(id int64) error {
	if id <= 0 || id > MaxRecordingID {
		return fmt.Errorf("catalogue number %d out of range (1-%d)", id, MaxRecordingID)
	}
	return nil
}

// NormalizeIDs partitions a list of textual catalogue numbers into
// valid numeric ids and malformed inputs. Valid ids are deduplicated
// and returned sorted ascending; malformed inputs keep their original
// spelling so they can be reported back to the caller.
//
// Every input ends up in exactly one of the two lists.
func NormalizeIDs(raw []string) (ids []int64, malformed []string) {
	seen := make(map[int64]struct{}, len(raw))
	for _, s := range raw {
		id, err := ParseRecordingID(s)
		if err != nil {
			malformed = append(malformed, s)
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, malformed
}
