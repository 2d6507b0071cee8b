package xenocanto

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/xenocanto-downloader/internal/model"
	"github.com/handiism/xenocanto-downloader/internal/query"
)

// ResolveStrategy selects how a list of catalogue numbers is turned
// into requests.
type ResolveStrategy int

const (
	// StrategyScatter issues one query per id, concurrently. The safe
	// default for arbitrary id lists.
	StrategyScatter ResolveStrategy = iota

	// StrategyRange batches sorted ids into nr:a-b range queries whose
	// spans fit in one result page. Fewer requests when the ids cluster
	// together, as ranges from a bulk export do; degenerates to one
	// request per id when they are scattered.
	StrategyRange
)

// Resolution is the outcome of resolving catalogue numbers. Every
// input ends up in exactly one of the three lists: a fetched record,
// a failed id, or a malformed input string.
type Resolution struct {
	// Records holds the fetched recordings, sorted by catalogue number.
	Records []*model.Recording

	// Failed lists valid ids that produced no record, either because
	// the catalogue has no entry or because their request failed.
	Failed []int64

	// Malformed lists inputs that never became a request.
	Malformed []string
}

// ResolveIDs fetches the recordings behind a list of textual catalogue
// numbers, such as "76967" or "XC76967". Duplicates are collapsed,
// malformed inputs are reported rather than dropped, and ids that
// cannot be fetched degrade the result instead of failing it. Only
// fatal errors, bad credentials or a rejected query, abort.
func (c *Client) ResolveIDs(ctx context.Context, raw []string, strategy ResolveStrategy) (*Resolution, error) {
	ids, malformed := model.NormalizeIDs(raw)
	res := &Resolution{Malformed: malformed}
	if len(malformed) > 0 {
		c.warnf("ignoring %d malformed catalogue number(s): %s",
			len(malformed), summarizeStrings(malformed))
	}
	if len(ids) == 0 {
		return res, nil
	}

	var err error
	switch strategy {
	case StrategyRange:
		err = c.resolveRanges(ctx, ids, res)
	default:
		err = c.resolveScatter(ctx, ids, res)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(res.Records, func(i, j int) bool { return res.Records[i].ID < res.Records[j].ID })
	sort.Slice(res.Failed, func(i, j int) bool { return res.Failed[i] < res.Failed[j] })
	if len(res.Failed) > 0 {
		c.warnf("%d catalogue number(s) could not be resolved: %s",
			len(res.Failed), summarizeIDs(res.Failed))
	}
	return res, nil
}

// resolveRanges splits the sorted ids into batches whose id span fits
// in a single result page and fetches each batch as an nr:min-max
// range query. Bounding the span, not just the batch length, keeps a
// sweep from matching more catalogue entries than one page returns,
// which would truncate the response and strand existing ids in the
// set difference. Ids the server did not return are found by set
// difference against the request.
func (c *Client) resolveRanges(ctx context.Context, ids []int64, res *Resolution) error {
	span := int64(c.pageSize)
	for start := 0; start < len(ids); {
		end := start + 1
		for end < len(ids) && end-start < c.pageSize && ids[end]-ids[start] < span {
			end++
		}
		batch := ids[start:end]
		start = end

		records, err := c.fetchIDRange(ctx, batch[0], batch[len(batch)-1])
		if err != nil {
			if isFatal(err) {
				return err
			}
			res.Failed = append(res.Failed, batch...)
			continue
		}

		wanted := make(map[int64]bool, len(batch))
		for _, id := range batch {
			wanted[id] = true
		}
		for _, rec := range records {
			if wanted[rec.ID] {
				res.Records = append(res.Records, rec)
				delete(wanted, rec.ID)
			}
		}
		for id := range wanted {
			res.Failed = append(res.Failed, id)
		}
	}
	return nil
}

// resolveScatter fetches every id with its own query, bounded by the
// client's worker count.
func (c *Client) resolveScatter(ctx context.Context, ids []int64, res *Resolution) error {
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, id := range ids {
		g.Go(func() error {
			rec, err := c.fetchByID(ctx, id)
			if err != nil {
				if isFatal(err) {
					return err
				}
				rec = nil
			}

			mu.Lock()
			defer mu.Unlock()
			if rec != nil {
				res.Records = append(res.Records, rec)
			} else {
				res.Failed = append(res.Failed, id)
			}
			return nil
		})
	}
	return g.Wait()
}

// GetByID fetches a single recording, or nil when the catalogue has
// no entry for the id.
func (c *Client) GetByID(ctx context.Context, id int64) (*model.Recording, error) {
	if err := model.CheckRecordingID(id); err != nil {
		return nil, err
	}
	return c.fetchByID(ctx, id)
}

// ResolveRange fetches every recording in the closed catalogue range
// [from, to] and reports the ids in the range that have no record.
// The range is swept in page-sized sub-ranges so each request returns
// its whole span and the set difference is exact; a failed sub-range
// marks all its ids Failed and the sweep continues.
func (c *Client) ResolveRange(ctx context.Context, from, to int64) (*Resolution, error) {
	if err := model.CheckRecordingID(from); err != nil {
		return nil, err
	}
	if err := model.CheckRecordingID(to); err != nil {
		return nil, err
	}
	if from > to {
		from, to = to, from
	}

	res := &Resolution{}
	span := int64(c.pageSize)
	for lo := from; lo <= to; lo += span {
		hi := lo + span - 1
		if hi > to {
			hi = to
		}

		records, err := c.fetchIDRange(ctx, lo, hi)
		if err != nil {
			if isFatal(err) {
				return nil, err
			}
			for id := lo; id <= hi; id++ {
				res.Failed = append(res.Failed, id)
			}
			continue
		}

		found := make(map[int64]bool, len(records))
		for _, rec := range records {
			found[rec.ID] = true
			res.Records = append(res.Records, rec)
		}
		for id := lo; id <= hi; id++ {
			if !found[id] {
				res.Failed = append(res.Failed, id)
			}
		}
	}

	sort.Slice(res.Records, func(i, j int) bool { return res.Records[i].ID < res.Records[j].ID })
	sort.Slice(res.Failed, func(i, j int) bool { return res.Failed[i] < res.Failed[j] })
	if len(res.Failed) > 0 {
		c.warnf("%d id(s) in XC%d-XC%d have no record: %s",
			len(res.Failed), from, to, summarizeIDs(res.Failed))
	}
	return res, nil
}

// FetchRange returns every recording in the closed catalogue range
// [from, to], sorted by catalogue number. Use ResolveRange when the
// caller needs to know which ids in the range were absent.
func (c *Client) FetchRange(ctx context.Context, from, to int64) ([]*model.Recording, error) {
	res, err := c.ResolveRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

func (c *Client) fetchByID(ctx context.Context, id int64) (*model.Recording, error) {
	tag, err := query.SingleID(id)
	if err != nil {
		return nil, err
	}
	return c.FindOne(ctx, &query.Query{ID: &tag})
}

func (c *Client) fetchIDRange(ctx context.Context, from, to int64) ([]*model.Recording, error) {
	if from == to {
		rec, err := c.fetchByID(ctx, from)
		if err != nil || rec == nil {
			return nil, err
		}
		return []*model.Recording{rec}, nil
	}
	tag, err := query.IDRange(from, to)
	if err != nil {
		return nil, err
	}
	return c.SearchAll(ctx, &query.Query{ID: &tag}, 0)
}

// summarizeIDs renders up to ten ids for a warning line.
func summarizeIDs(ids []int64) string {
	shown := make([]string, 0, 10)
	for i, id := range ids {
		if i == 10 {
			shown = append(shown, fmt.Sprintf("... (%d total)", len(ids)))
			break
		}
		shown = append(shown, fmt.Sprintf("%d", id))
	}
	return strings.Join(shown, ", ")
}

func summarizeStrings(items []string) string {
	shown := make([]string, 0, 10)
	for i, s := range items {
		if i == 10 {
			shown = append(shown, fmt.Sprintf("... (%d total)", len(items)))
			break
		}
		shown = append(shown, fmt.Sprintf("%q", s))
	}
	return strings.Join(shown, ", ")
}
