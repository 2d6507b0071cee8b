package xenocanto

import (
	"context"
	"math/rand"
	"sort"
	"testing"
)

func TestSample(t *testing.T) {
	// Every third id exists, which is denser than the real catalogue
	// but exercises the oversampling loop the same way.
	var ids []int64
	for id := int64(3); id <= 3000; id += 3 {
		ids = append(ids, id)
	}
	transport := &catalogueTransport{ids: ids}
	c := newTestClient(t, transport,
		WithMaxRecordingID(3000),
		WithRandSource(rand.NewSource(42)))

	sample, err := c.Sample(context.Background(), 10)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(sample) != 10 {
		t.Fatalf("got %d records, want 10", len(sample))
	}

	if !sort.SliceIsSorted(sample, func(i, j int) bool { return sample[i].ID < sample[j].ID }) {
		t.Error("sample not sorted by catalogue number")
	}

	seen := make(map[int64]bool)
	for _, rec := range sample {
		if rec.ID%3 != 0 {
			t.Errorf("sample contains id %d, which does not exist", rec.ID)
		}
		if seen[rec.ID] {
			t.Errorf("sample contains id %d twice", rec.ID)
		}
		seen[rec.ID] = true
	}
}

func TestSample_Reproducible(t *testing.T) {
	var ids []int64
	for id := int64(2); id <= 1000; id += 2 {
		ids = append(ids, id)
	}

	draw := func() []int64 {
		c := newTestClient(t, &catalogueTransport{ids: ids},
			WithMaxRecordingID(1000),
			WithWorkers(1),
			WithRandSource(rand.NewSource(7)))
		sample, err := c.Sample(context.Background(), 5)
		if err != nil {
			t.Fatalf("Sample: %v", err)
		}
		got := make([]int64, len(sample))
		for i, rec := range sample {
			got[i] = rec.ID
		}
		return got
	}

	first, second := draw(), draw()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("seeded draws differ: %v vs %v", first, second)
		}
	}
}

func TestSample_SizeBounds(t *testing.T) {
	c := newTestClient(t, &catalogueTransport{})
	for _, k := range []int{0, -1, maxSampleSize + 1} {
		if _, err := c.Sample(context.Background(), k); err == nil {
			t.Errorf("Sample(%d) should fail", k)
		}
	}
}

func TestSample_GivesUpOnEmptyCatalogue(t *testing.T) {
	c := newTestClient(t, &catalogueTransport{},
		WithMaxRecordingID(100),
		WithRandSource(rand.NewSource(1)))

	if _, err := c.Sample(context.Background(), 5); err == nil {
		t.Error("sampling an empty catalogue should fail, not hang")
	}
}
