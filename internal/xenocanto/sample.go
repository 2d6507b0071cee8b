package xenocanto

import (
	"context"
	"fmt"
	"sort"

	"github.com/handiism/xenocanto-downloader/internal/model"
)

// maxSampleSize caps one random draw. Sampling works by probing
// random catalogue numbers, so large draws belong in repeated calls,
// not one giant one.
const maxSampleSize = 100

// sampleRounds bounds the retry loop. Enough of the id space is
// populated that doubling the draw per round finds k records within
// two or three rounds; running out of rounds means the catalogue is
// far sparser than the configured id ceiling suggests.
const sampleRounds = 8

// Sample returns k recordings drawn uniformly at random from the
// catalogue, sorted by catalogue number.
//
// The catalogue's id space is sparse, so the sampler oversamples:
// each round it probes twice as many fresh random ids as it still
// needs and keeps whatever resolves. Probed ids are never retried,
// and the final set is a random k-subset of everything that resolved,
// so a round that overshoots does not bias the draw.
func (c *Client) Sample(ctx context.Context, k int) ([]*model.Recording, error) {
	if k < 1 || k > maxSampleSize {
		return nil, fmt.Errorf("sample size %d out of range (1-%d)", k, maxSampleSize)
	}

	tried := make(map[int64]bool, 4*k)
	var found []*model.Recording

	for round := 0; round < sampleRounds && len(found) < k; round++ {
		need := k - len(found)
		ids := c.drawIDs(2*need, tried)
		if len(ids) == 0 {
			break
		}

		res := &Resolution{}
		if err := c.resolveScatter(ctx, ids, res); err != nil {
			return nil, err
		}
		found = append(found, res.Records...)
	}

	if len(found) < k {
		return nil, fmt.Errorf("sampling gave up after %d rounds with %d of %d records", sampleRounds, len(found), k)
	}

	c.rngMu.Lock()
	c.rng.Shuffle(len(found), func(i, j int) {
		found[i], found[j] = found[j], found[i]
	})
	c.rngMu.Unlock()
	sample := found[:k]
	sort.Slice(sample, func(i, j int) bool { return sample[i].ID < sample[j].ID })
	return sample, nil
}

// drawIDs picks n fresh random catalogue numbers in [1, maxID].
func (c *Client) drawIDs(n int, tried map[int64]bool) []int64 {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()

	ids := make([]int64, 0, n)
	// The id space is vastly larger than any draw, so rejection
	// sampling terminates quickly; the attempt cap only guards a
	// pathologically small WithMaxRecordingID.
	for attempts := 0; len(ids) < n && attempts < 100*n; attempts++ {
		id := 1 + c.rng.Int63n(c.maxID)
		if tried[id] {
			continue
		}
		tried[id] = true
		ids = append(ids, id)
	}
	return ids
}
