package xenocanto

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/handiism/xenocanto-downloader/internal/query"
)

// fakeTransport scripts responses per request and records every URL
// it served, so tests can assert which pages were actually fetched.
type fakeTransport struct {
	mu      sync.Mutex
	calls   []string
	handler func(url string) (int, []byte, error)
}

func (f *fakeTransport) Get(_ context.Context, url string) (int, []byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	return f.handler(url)
}

func (f *fakeTransport) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// urlParam pulls one query parameter out of a request URL without
// decoding, since the query expression carries literal '+' signs.
func urlParam(u, key string) string {
	_, rawQuery, _ := strings.Cut(u, "?")
	for _, part := range strings.Split(rawQuery, "&") {
		if k, v, ok := strings.Cut(part, "="); ok && k == key {
			return v
		}
	}
	return ""
}

func pageOf(u string) int {
	n, _ := strconv.Atoi(urlParam(u, "page"))
	return n
}

func recordJSON(id int64) string {
	return fmt.Sprintf(`{"id":"%d","gen":"Testus","sp":"exempli","en":"Test Bird %d","q":"B"}`, id, id)
}

func pageJSON(total, numPages, page int, ids []int64) []byte {
	records := make([]string, len(ids))
	for i, id := range ids {
		records[i] = recordJSON(id)
	}
	return []byte(fmt.Sprintf(`{"numRecordings":"%d","numSpecies":"1","page":%d,"numPages":%d,"recordings":[%s]}`,
		total, page, numPages, strings.Join(records, ",")))
}

func seq(from, to int64) []int64 {
	ids := make([]int64, 0, to-from+1)
	for id := from; id <= to; id++ {
		ids = append(ids, id)
	}
	return ids
}

func newTestClient(t *testing.T, transport Transport, opts ...Option) *Client {
	t.Helper()
	c, err := NewClient("test-key", append([]Option{WithTransport(transport)}, opts...)...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestSearch_SinglePage(t *testing.T) {
	transport := &fakeTransport{handler: func(url string) (int, []byte, error) {
		return 200, pageJSON(3, 1, 1, []int64{10, 20, 30}), nil
	}}
	c := newTestClient(t, transport)

	stream, err := c.Search(context.Background(), &query.Query{Genus: "Testus"}, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if stream.Total != 3 {
		t.Errorf("Total = %d, want 3", stream.Total)
	}

	var got []int64
	for rec := range stream.Recordings() {
		got = append(got, rec.ID)
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}
	want := []int64{10, 20, 30}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %d, want %d (first page must keep order)", i, got[i], want[i])
		}
	}
}

func TestSearch_EmptyResult(t *testing.T) {
	transport := &fakeTransport{handler: func(url string) (int, []byte, error) {
		return 200, pageJSON(0, 1, 1, nil), nil
	}}
	c := newTestClient(t, transport)

	stream, err := c.Search(context.Background(), &query.Query{Genus: "Nullus"}, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if _, open := <-stream.Recordings(); open {
		t.Error("empty search should deliver a closed channel")
	}
	if err := stream.Err(); err != nil {
		t.Errorf("stream error: %v", err)
	}
}

func TestSearch_ProbeFailsFast(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{
			"bad key", 401, `{"error":"unauthorized","message":"invalid key"}`,
			func(err error) bool { var e *AuthError; return errors.As(err, &e) },
		},
		{
			"bad query", 400, `{"error":"bad request","message":"unknown tag"}`,
			func(err error) bool { var e *QueryError; return errors.As(err, &e) },
		},
		{
			"server error", 500, "boom",
			func(err error) bool { var e *StatusError; return errors.As(err, &e) },
		},
		{
			"throttled", 503, "",
			func(err error) bool { var e *RateLimitError; return errors.As(err, &e) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{handler: func(url string) (int, []byte, error) {
				return tt.status, []byte(tt.body), nil
			}}
			c := newTestClient(t, transport)

			_, err := c.Search(context.Background(), &query.Query{}, 0)
			if err == nil {
				t.Fatal("Search should fail")
			}
			if !tt.check(err) {
				t.Errorf("wrong error type: %v", err)
			}
		})
	}
}

func TestSearch_FansOutOverPages(t *testing.T) {
	pages := map[int][]int64{
		1: seq(1, 500),
		2: seq(501, 1000),
		3: seq(1001, 1200),
	}
	transport := &fakeTransport{handler: func(url string) (int, []byte, error) {
		p := pageOf(url)
		return 200, pageJSON(1200, 3, p, pages[p]), nil
	}}
	c := newTestClient(t, transport, WithWorkers(2))

	stream, err := c.Search(context.Background(), &query.Query{Genus: "Testus"}, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	var got []int64
	for rec := range stream.Recordings() {
		got = append(got, rec.ID)
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if len(got) != 1200 {
		t.Fatalf("got %d records, want 1200", len(got))
	}

	// First page in order, before anything from later pages.
	for i := int64(0); i < 500; i++ {
		if got[i] != i+1 {
			t.Fatalf("record %d = %d, first page order broken", i, got[i])
		}
	}
	// Later pages in completion order, but nothing lost or duplicated.
	seen := make(map[int64]bool, len(got))
	for _, id := range got {
		if seen[id] {
			t.Fatalf("record %d delivered twice", id)
		}
		seen[id] = true
	}
}

func TestSearch_MorePagesThanWorkers(t *testing.T) {
	// Ten pages against the default pool of four: dispatching must not
	// wait for free workers while nobody is draining the stream.
	const numPages = 10
	transport := &fakeTransport{handler: func(url string) (int, []byte, error) {
		p := pageOf(url)
		return 200, pageJSON(numPages*500, numPages, p, seq(int64(p-1)*500+1, int64(p)*500)), nil
	}}
	c := newTestClient(t, transport)

	records, err := c.SearchAll(context.Background(), &query.Query{Genus: "Testus"}, 0)
	if err != nil {
		t.Fatalf("SearchAll: %v", err)
	}
	if len(records) != numPages*500 {
		t.Fatalf("got %d records, want %d", len(records), numPages*500)
	}

	seen := make(map[int64]bool, len(records))
	for _, rec := range records {
		if seen[rec.ID] {
			t.Fatalf("record %d delivered twice", rec.ID)
		}
		seen[rec.ID] = true
	}
}

func TestSearch_LimitStopsPaging(t *testing.T) {
	pages := map[int][]int64{
		1: seq(1, 500),
		2: seq(501, 1000),
		3: seq(1001, 1500),
	}
	transport := &fakeTransport{handler: func(url string) (int, []byte, error) {
		p := pageOf(url)
		return 200, pageJSON(1500, 3, p, pages[p]), nil
	}}
	c := newTestClient(t, transport)

	stream, err := c.Search(context.Background(), &query.Query{Genus: "Testus"}, 600)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if stream.Total != 600 {
		t.Errorf("Total = %d, want 600", stream.Total)
	}

	count := 0
	for range stream.Recordings() {
		count++
	}
	if count != 600 {
		t.Errorf("delivered %d records, want exactly 600", count)
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}

	for _, u := range transport.requested() {
		if pageOf(u) > 2 {
			t.Errorf("page %d requested, limit 600 needs only pages 1-2", pageOf(u))
		}
	}
}

func TestSearch_SmallLimitUsesSmallPages(t *testing.T) {
	transport := &fakeTransport{handler: func(url string) (int, []byte, error) {
		return 200, pageJSON(10, 1, 1, seq(1, 10)), nil
	}}
	c := newTestClient(t, transport)

	if _, err := c.Search(context.Background(), &query.Query{}, 10); err != nil {
		t.Fatalf("Search: %v", err)
	}

	calls := transport.requested()
	if len(calls) == 0 {
		t.Fatal("no request made")
	}
	if got := urlParam(calls[0], "per_page"); got != "50" {
		t.Errorf("per_page = %s, want 50 for a small limit", got)
	}
}

func TestSearch_FailedPageDegrades(t *testing.T) {
	pages := map[int][]int64{
		1: seq(1, 500),
		2: seq(501, 1000),
		3: seq(1001, 1500),
	}
	transport := &fakeTransport{handler: func(url string) (int, []byte, error) {
		p := pageOf(url)
		if p == 2 {
			return 503, nil, nil
		}
		return 200, pageJSON(1500, 3, p, pages[p]), nil
	}}

	var warnings []string
	var mu sync.Mutex
	c := newTestClient(t, transport, WithWarningHandler(func(msg string) {
		mu.Lock()
		warnings = append(warnings, msg)
		mu.Unlock()
	}))

	records, err := c.SearchAll(context.Background(), &query.Query{Genus: "Testus"}, 0)
	if err != nil {
		t.Fatalf("SearchAll: %v", err)
	}
	if len(records) != 1000 {
		t.Errorf("got %d records, want 1000 (pages 1 and 3)", len(records))
	}
	mu.Lock()
	defer mu.Unlock()
	if len(warnings) == 0 {
		t.Error("a failed page should produce a warning")
	}
}

func TestSearch_FatalBackgroundErrorSurfaces(t *testing.T) {
	transport := &fakeTransport{handler: func(url string) (int, []byte, error) {
		if pageOf(url) > 1 {
			return 401, []byte(`{"error":"unauthorized"}`), nil
		}
		return 200, pageJSON(1500, 3, 1, seq(1, 500)), nil
	}}
	c := newTestClient(t, transport, WithWorkers(1))

	stream, err := c.Search(context.Background(), &query.Query{Genus: "Testus"}, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for range stream.Recordings() {
	}

	var authErr *AuthError
	if !errors.As(stream.Err(), &authErr) {
		t.Errorf("stream.Err() = %v, want AuthError", stream.Err())
	}
}

func TestSearch_QueryReachesWireUnescaped(t *testing.T) {
	transport := &fakeTransport{handler: func(url string) (int, []byte, error) {
		return 200, pageJSON(0, 1, 1, nil), nil
	}}
	c := newTestClient(t, transport)

	q := &query.Query{Genus: "Troglodytes", Remarks: "distant thunder"}
	if _, err := c.Search(context.Background(), q, 0); err != nil {
		t.Fatalf("Search: %v", err)
	}

	got := urlParam(transport.requested()[0], "query")
	want := `gen:Troglodytes+rmk:"distant+thunder"`
	if got != want {
		t.Errorf("query on the wire = %s, want %s", got, want)
	}
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("  ", WithTransport(&fakeTransport{}))
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Errorf("NewClient with blank key: err = %v, want AuthError", err)
	}
}
