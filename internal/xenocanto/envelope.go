package xenocanto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// pageEnvelope is the top-level shape of one search response page.
// Records stay raw here; they are validated one by one so a single
// malformed record cannot sink the page.
type pageEnvelope struct {
	NumRecordings flexInt           `json:"numRecordings"`
	NumSpecies    flexInt           `json:"numSpecies"`
	Page          flexInt           `json:"page"`
	NumPages      flexInt           `json:"numPages"`
	Recordings    []json.RawMessage `json:"recordings"`
	Error         string            `json:"error"`
	Message       string            `json:"message"`
}

func parseEnvelope(body []byte) (*pageEnvelope, error) {
	var env pageEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decoding response page: %w", err)
	}
	return &env, nil
}

// flexInt decodes integers the API sends either as numbers or as
// quoted strings, depending on the field and the day.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("expected an integer, got %q", data)
	}
	*f = flexInt(n)
	return nil
}
