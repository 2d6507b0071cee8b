// Package xenocanto is the client for the xeno-canto recordings API.
//
// # Searching
//
// Search probes the first result page synchronously, so bad
// credentials or a rejected query fail before any stream exists, then
// fans out over the remaining pages with a bounded worker pool:
//
//	stream, err := client.Search(ctx, q, 200)
//	if err != nil {
//	    return err
//	}
//	for rec := range stream.Recordings() {
//	    fmt.Println(rec.CatalogueNumber(), rec.Title())
//	}
//	if err := stream.Err(); err != nil {
//	    return err
//	}
//
// A page that fails mid-search degrades the result set and is listed
// in FailedPages; only errors that would fail every page the same
// way, wrong key or bad query syntax, end the stream early.
//
// # Resolving catalogue numbers
//
// ResolveIDs turns user-supplied catalogue numbers into recordings
// and partitions its input exactly: every id ends up fetched, failed,
// or malformed. StrategyScatter, the default, fetches each id on its
// own; StrategyRange batches clustered ids into page-sized range
// queries. ResolveRange sweeps a contiguous [from, to] span and
// reports the ids inside it that have no record.
//
// # Sampling
//
// Sample draws recordings uniformly at random by probing random
// catalogue numbers, oversampling to cover the gaps in the id space.
package xenocanto
