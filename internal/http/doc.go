// Package http provides an HTTP client configured for xeno-canto API requests.
//
// The Client in this package handles:
//   - Rate limiting within the API's fair-use budget
//   - Response caching for repeated queries
//   - File downloads with progress tracking
//   - File size retrieval via HEAD requests
//
// # Basic Usage
//
//	client := http.NewClient(http.WithCache(store))
//
//	// Fetch an API page
//	status, body, err := client.Get(ctx, pageURL)
//
//	// Download file with progress callback
//	client.DownloadFile(ctx, mp3URL, "/path/to/file.mp3", func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
//
// # Rate limiting
//
// Every API request waits on a token bucket (4 requests per second,
// burst of 10 by default) so that concurrent page fetches stay inside
// the server's limits no matter how many workers run. Cache hits do
// not consume tokens.
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
