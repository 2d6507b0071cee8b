package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"
)

// Cache stores API responses keyed by request URL. Implementations
// decide retention; the client only ever caches successful responses.
type Cache interface {
	Get(url string) (body []byte, ok bool)
	Put(url string, body []byte) error
}

// Client wraps HTTP operations with xeno-canto specific configuration.
//
// Client provides:
//   - Rate limiting matched to the API's fair-use policy
//   - Optional response caching for repeated queries
//   - File download with progress tracking
//   - File size retrieval via HEAD requests
//
// Example usage:
//
//	client := NewClient()
//
//	// Fetch an API page (rate limited, cache aware)
//	status, body, err := client.Get(ctx, pageURL)
//
//	// Download audio with progress
//	err = client.DownloadFile(ctx, mp3URL, "/path/to/file.mp3", func(written, total int64) {
//	    percent := float64(written) / float64(total) * 100
//	    fmt.Printf("%.1f%%\n", percent)
//	})
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	cache      Cache
}

// Option customizes a Client.
type Option func(*Client)

// WithCache installs a response cache for API GETs.
func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithRateLimit overrides the requests-per-second budget and burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a new HTTP client configured for xeno-canto.
//
// The client is configured with:
//   - 60 second timeout
//   - "xenocanto-downloader" User-Agent header
//   - 4 requests per second with a burst of 10
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		userAgent: "xenocanto-downloader",
		limiter:   rate.NewLimiter(rate.Limit(4), 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProgressWriter wraps a writer to track download progress.
//
// Use this to monitor large downloads by providing an OnUpdate callback
// that receives the current bytes written and total expected bytes.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	// Parameters are (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Get performs a rate-limited GET request and returns the status code
// and response body.
//
// Non-2xx statuses are returned to the caller rather than converted to
// errors; the search client classifies them itself. Successful
// responses go into the cache when one is configured, and cached
// responses skip both the network and the rate limiter.
//
// Example:
//
//	status, body, err := client.Get(ctx, pageURL)
func (c *Client) Get(ctx context.Context, url string) (int, []byte, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(url); ok {
			return http.StatusOK, body, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	if c.cache != nil && resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		if err := c.cache.Put(url, body); err != nil {
			return resp.StatusCode, body, nil
		}
	}

	return resp.StatusCode, body, nil
}

// GetFileSize returns the size of a file at the given URL via HEAD request.
//
// This is useful for:
//   - Pre-calculating total download size
//   - Checking if a local file matches the expected size
//
// Returns an error if:
//   - The request fails
//   - The server doesn't return a Content-Length header
//
// Example:
//
//	size, err := client.GetFileSize(ctx, mp3URL)
//	fmt.Printf("File is %d bytes\n", size)
func (c *Client) GetFileSize(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("no Content-Length header for %s", url)
	}

	return resp.ContentLength, nil
}

// DownloadFile downloads a file to the specified path with optional progress callback.
//
// The file is created (or truncated if it exists) and the content is streamed
// directly to disk, avoiding loading the entire file into memory. Downloads
// bypass the response cache but still count against the rate limit.
//
// Parameters:
//   - ctx: Context for cancellation
//   - url: URL to download from
//   - destPath: Local file path to save to
//   - onProgress: Optional callback called with (bytesWritten, totalBytes)
//     Pass nil to disable progress tracking
//
// Example:
//
//	err := client.DownloadFile(ctx, mp3URL, "/birds/song.mp3", func(written, total int64) {
//	    if total > 0 {
//	        fmt.Printf("%.1f%%\r", float64(written)/float64(total)*100)
//	    }
//	})
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer file.Close()

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	_, err = io.Copy(writer, resp.Body)
	return err
}

// DownloadBytes downloads a file and returns the bytes in memory.
//
// Use this for small files like sonogram images. For large files like
// MP3s, use DownloadFile to stream directly to disk.
//
// Example:
//
//	imageData, err := client.DownloadBytes(ctx, sonogramURL)
func (c *Client) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	status, body, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d fetching %s", status, url)
	}
	return body, nil
}
