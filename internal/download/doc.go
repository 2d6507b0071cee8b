// Package download provides the download orchestration logic for
// fetching recordings from the xeno-canto catalogue.
//
// # Manager
//
// The Manager coordinates the entire download process:
//
//  1. Queue recordings resolved by the API client
//  2. Download audio files concurrently
//  3. Tag MP3 files with catalogue metadata
//  4. Save and embed sonograms (optional)
//  5. Generate a playlist (optional)
//
// # Basic Usage
//
//	manager := download.NewManager(download.DefaultOptions("/birds"), client,
//	    func(event download.ProgressEvent) {
//	        fmt.Println(event.Message)
//	    })
//
//	manager.Add(recordings...)
//	if err := manager.StartDownloads(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Layout
//
// The Grouping option controls the directory layout (flat, one
// directory per species, or one per recordist) and Naming controls
// whether files use catalogue numbers or the original upload names.
//
// # Concurrency
//
// Downloads run concurrently up to Options.MaxConcurrent. A failed
// download is reported through the progress callback and does not
// stop the rest of the batch.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// # Retry Logic
//
// Failed downloads are automatically retried with exponential backoff,
// configurable via Options.MaxRetries, RetryCooldown and RetryExponent.
package download
