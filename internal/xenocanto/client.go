package xenocanto

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/handiism/xenocanto-downloader/internal/model"
)

const (
	// DefaultBaseURL is the live API endpoint.
	DefaultBaseURL = "https://xeno-canto.org/api/3"

	// perPageMin and perPageMax bound the server's page size parameter.
	perPageMin = 50
	perPageMax = 500

	// searchLimitMax caps how many records one search will stream; the
	// server itself stops paging around this point.
	searchLimitMax = 10000

	defaultWorkers = 4
)

// Transport performs one HTTP GET and returns the status code and
// body. Non-2xx statuses are returned, not turned into errors; the
// client owns their interpretation. The production implementation
// lives in the http package and adds rate limiting and caching.
type Transport interface {
	Get(ctx context.Context, url string) (status int, body []byte, err error)
}

// WarnFunc receives human-readable warnings about degraded results,
// such as skipped records or failed pages.
type WarnFunc func(msg string)

// Client queries the xeno-canto recordings API.
//
// A Client is safe for concurrent use as long as its Transport is.
type Client struct {
	key       string
	baseURL   string
	transport Transport
	pageSize  int
	workers   int
	maxID     int64
	warn      WarnFunc

	// rngMu serializes the sampler's generator; rand.Rand is not safe
	// for concurrent Sample calls.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option customizes a Client.
type Option func(*Client)

// WithTransport replaces the HTTP transport. Tests use this to run
// searches against canned responses.
func WithTransport(t Transport) Option { return func(c *Client) { c.transport = t } }

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithPageSize sets the batch size used when resolving id ranges,
// clamped to the server's supported page sizes.
func WithPageSize(n int) Option {
	return func(c *Client) { c.pageSize = clamp(n, perPageMin, perPageMax) }
}

// WithWorkers sets how many page requests may run concurrently.
func WithWorkers(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithMaxRecordingID overrides the upper bound of the catalogue id
// space used by the random sampler.
func WithMaxRecordingID(id int64) Option {
	return func(c *Client) {
		if id > 0 {
			c.maxID = id
		}
	}
}

// WithWarningHandler installs a sink for degraded-result warnings.
func WithWarningHandler(fn WarnFunc) Option {
	return func(c *Client) {
		if fn != nil {
			c.warn = fn
		}
	}
}

// WithRandSource seeds the sampler's random number generator, making
// Sample reproducible.
func WithRandSource(src rand.Source) Option {
	return func(c *Client) { c.rng = rand.New(src) }
}

// NewClient builds a Client for the given API key.
func NewClient(key string, opts ...Option) (*Client, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, &AuthError{Message: "no API key configured"}
	}

	c := &Client{
		key:      key,
		baseURL:  DefaultBaseURL,
		pageSize: perPageMax,
		workers:  defaultWorkers,
		maxID:    model.MaxRecordingID,
		warn:     func(string) {},
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		return nil, fmt.Errorf("no transport configured")
	}
	return c, nil
}

// searchURL builds the request URL for one page. The query expression
// is already in wire syntax; its '+' separators and quotes must reach
// the server literally, so the URL is assembled by hand instead of
// through url.Values encoding.
func (c *Client) searchURL(expr string, perPage, page int) string {
	return fmt.Sprintf("%s/recordings?key=%s&per_page=%d&page=%d&query=%s",
		c.baseURL, c.key, perPage, page, expr)
}

// fetchPage retrieves and decodes one result page, classifying
// failures into the error taxonomy.
func (c *Client) fetchPage(ctx context.Context, expr string, perPage, page int) (*pageEnvelope, error) {
	url := c.searchURL(expr, perPage, page)

	status, body, err := c.transport.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching page %d: %w", page, err)
	}

	switch {
	case status == 401 || status == 403:
		return nil, &AuthError{Message: serverMessage(body)}
	case status == 400:
		return nil, &QueryError{Message: serverMessage(body), URL: url}
	case status == 429 || status == 503:
		return nil, &RateLimitError{URL: url}
	case status < 200 || status > 299:
		return nil, &StatusError{StatusCode: status, URL: url}
	}

	env, err := parseEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	if env.Error != "" {
		return nil, &QueryError{Message: serverMessage(body), URL: url}
	}
	return env, nil
}

// parseRecords converts a page's raw records, skipping and counting
// the ones that fail validation.
func (c *Client) parseRecords(env *pageEnvelope, page int) []*model.Recording {
	records := make([]*model.Recording, 0, len(env.Recordings))
	skipped := 0
	for _, raw := range env.Recordings {
		rec, err := model.ParseRecording(raw)
		if err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if skipped > 0 {
		c.warnf("page %d: skipped %d malformed record(s)", page, skipped)
	}
	return records
}

func (c *Client) warnf(format string, args ...any) {
	c.warn(fmt.Sprintf(format, args...))
}

// serverMessage extracts the error text the API puts in failed
// response bodies.
func serverMessage(body []byte) string {
	env, err := parseEnvelope(body)
	if err != nil {
		return strings.TrimSpace(string(body))
	}
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}

// perPageFor picks the page size for a search: small limits use the
// smallest page the server allows, everything else the largest.
func perPageFor(limit int) int {
	if limit > 0 && limit <= perPageMin {
		return perPageMin
	}
	return perPageMax
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
