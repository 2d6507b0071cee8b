package xenocanto

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/xenocanto-downloader/internal/model"
	"github.com/handiism/xenocanto-downloader/internal/query"
)

// Stream delivers search results as they arrive.
//
// Records from the first page come out in catalogue order; later pages
// are fetched concurrently and arrive in completion order, with each
// page's records kept in order. After the channel closes, Err and
// FailedPages report how the search ended.
type Stream struct {
	out  chan *model.Recording
	stop chan struct{}
	once sync.Once

	mu     sync.Mutex
	err    error
	failed []int

	// Total is how many records the stream will deliver at most, after
	// applying the search limit to the server's reported match count.
	Total int

	// NumSpecies is the distinct species count the server reported for
	// the whole result set.
	NumSpecies int
}

// Recordings returns the result channel. It is closed when the search
// finishes, is satisfied, or aborts.
func (s *Stream) Recordings() <-chan *model.Recording { return s.out }

// Err returns the fatal error that ended the stream, if any. Only
// meaningful after Recordings is closed.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// FailedPages lists result pages that could not be fetched, sorted
// ascending. Only meaningful after Recordings is closed.
func (s *Stream) FailedPages() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	pages := make([]int, len(s.failed))
	copy(pages, s.failed)
	sort.Ints(pages)
	return pages
}

func (s *Stream) setErr(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

func (s *Stream) addFailed(page int) {
	s.mu.Lock()
	s.failed = append(s.failed, page)
	s.mu.Unlock()
}

// halt tells outstanding page workers their results are no longer
// needed. In-flight requests run to completion and are discarded
// rather than aborted, so the shared HTTP cache still gets them.
func (s *Stream) halt() { s.once.Do(func() { close(s.stop) }) }

// Search runs a query and streams the matching recordings.
//
// The first page is fetched synchronously before Search returns, so
// an invalid query or a bad API key fails immediately with a typed
// error instead of surfacing later through the stream. limit > 0 caps
// how many records are delivered; 0 means everything the search
// matches, up to the server's paging ceiling.
func (c *Client) Search(ctx context.Context, q *query.Query, limit int) (*Stream, error) {
	expr, err := q.Serialize()
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		limit = 0
	}

	perPage := perPageFor(limit)
	probe, err := c.fetchPage(ctx, expr, perPage, 1)
	if err != nil {
		return nil, err
	}

	total := int(probe.NumRecordings)
	if total > searchLimitMax {
		c.warnf("search matches %d records, capping at %d", total, searchLimitMax)
		total = searchLimitMax
	}
	if limit > 0 && limit < total {
		total = limit
	}

	s := &Stream{
		out:        make(chan *model.Recording),
		stop:       make(chan struct{}),
		Total:      total,
		NumSpecies: int(probe.NumSpecies),
	}
	if total == 0 {
		close(s.out)
		return s, nil
	}

	go c.runSearch(ctx, s, expr, perPage, probe, total)
	return s, nil
}

type pageResult struct {
	page    int
	records []*model.Recording
}

func (c *Client) runSearch(ctx context.Context, s *Stream, expr string, perPage int, probe *pageEnvelope, total int) {
	defer close(s.out)
	defer s.halt()

	sent := 0
	emit := func(records []*model.Recording) bool {
		for _, rec := range records {
			if sent >= total {
				return false
			}
			select {
			case s.out <- rec:
				sent++
			case <-ctx.Done():
				s.setErr(ctx.Err())
				return false
			}
		}
		return sent < total
	}

	lastPage := int(probe.NumPages)
	if needed := pagesFor(total, perPage); needed < lastPage {
		lastPage = needed
	}

	if !emit(c.parseRecords(probe, 1)) || lastPage < 2 {
		return
	}

	results := make(chan pageResult)

	// Dispatch runs in its own goroutine: g.Go blocks once all workers
	// are busy, and the workers in turn block sending to results, so
	// the parent loop below must already be consuming.
	go func() {
		defer close(results)

		var g errgroup.Group
		g.SetLimit(c.workers)
		for page := 2; page <= lastPage; page++ {
			g.Go(func() error {
				select {
				case <-s.stop:
					return nil
				default:
				}

				env, err := c.fetchPage(ctx, expr, perPage, page)
				if err != nil {
					if isFatal(err) {
						s.setErr(err)
						s.halt()
					} else {
						s.addFailed(page)
						c.warnf("page %d failed: %v", page, err)
					}
					return nil
				}

				select {
				case results <- pageResult{page: page, records: c.parseRecords(env, page)}:
				case <-s.stop:
				}
				return nil
			})
		}
		g.Wait()
	}()

	for res := range results {
		if s.Err() != nil {
			continue
		}
		if !emit(res.records) {
			s.halt()
		}
	}
}

// SearchAll runs a search to completion and collects the results.
// Failed pages degrade the result set with a warning; only fatal
// errors are returned.
func (c *Client) SearchAll(ctx context.Context, q *query.Query, limit int) ([]*model.Recording, error) {
	stream, err := c.Search(ctx, q, limit)
	if err != nil {
		return nil, err
	}

	var records []*model.Recording
	for rec := range stream.Recordings() {
		records = append(records, rec)
	}
	if err := stream.Err(); err != nil {
		return records, err
	}
	if failed := stream.FailedPages(); len(failed) > 0 {
		c.warnf("search degraded: %d page(s) failed: %v", len(failed), failed)
	}
	return records, nil
}

// FindOne returns the first match of a query, or nil when nothing
// matches.
func (c *Client) FindOne(ctx context.Context, q *query.Query) (*model.Recording, error) {
	records, err := c.SearchAll(ctx, q, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// pagesFor is the number of pages needed to cover n records.
func pagesFor(n, perPage int) int {
	return (n + perPage - 1) / perPage
}
