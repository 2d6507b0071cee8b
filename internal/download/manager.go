package download

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/xenocanto-downloader/internal/audio"
	"github.com/handiism/xenocanto-downloader/internal/http"
	ioutils "github.com/handiism/xenocanto-downloader/internal/io"
	"github.com/handiism/xenocanto-downloader/internal/model"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Grouping controls the directory layout under the downloads path.
type Grouping int

const (
	// GroupFlat puts every file directly in the downloads path.
	GroupFlat Grouping = iota

	// GroupBySpecies creates one directory per scientific species name.
	GroupBySpecies

	// GroupByRecordist creates one directory per recordist.
	GroupByRecordist
)

// Naming controls download file names.
type Naming int

const (
	// NameCatalogue names files by catalogue number, "XC694038.mp3".
	NameCatalogue Naming = iota

	// NameOriginal keeps the recordist's original upload file name,
	// falling back to the catalogue number when none was reported.
	NameOriginal
)

// Options configures a download Manager.
type Options struct {
	BasePath string
	Grouping Grouping
	Naming   Naming

	MaxConcurrent int
	MaxRetries    int
	RetryCooldown float64 // seconds before the first retry
	RetryExponent float64 // cooldown multiplier per attempt

	// AllowedSizeDifference is the relative size mismatch tolerated
	// when deciding that an existing file is already complete.
	AllowedSizeDifference float64

	ModifyTags bool

	SaveSonograms        bool
	SonogramResize       bool
	SonogramMaxSize      int
	ConvertSonogramToJPG bool

	CreatePlaylist bool
	PlaylistName   string
	PlaylistFormat audio.PlaylistFormat
	M3UExtended    bool
}

// DefaultOptions returns manager options with sensible defaults.
func DefaultOptions(basePath string) Options {
	return Options{
		BasePath:              basePath,
		Grouping:              GroupBySpecies,
		Naming:                NameCatalogue,
		MaxConcurrent:         4,
		MaxRetries:            7,
		RetryCooldown:         0.2,
		RetryExponent:         4.0,
		AllowedSizeDifference: 0.05,
		ModifyTags:            true,
		SonogramResize:        true,
		SonogramMaxSize:       1000,
		ConvertSonogramToJPG:  true,
		PlaylistName:          "xeno-canto",
		PlaylistFormat:        audio.FormatM3U,
		M3UExtended:           true,
	}
}

// Manager coordinates recording downloads.
//
// A Manager is loaded with recordings (from a search, an id list, or
// a sample), then StartDownloads fetches them concurrently, tags the
// files, saves sonograms, and optionally writes a playlist.
type Manager struct {
	opts         Options
	httpClient   *http.Client
	tagger       *audio.Tagger
	playlist     *audio.PlaylistCreator
	imageService *ioutils.ImageService

	recordings      []*model.Recording
	totalBytes      int64
	receivedBytes   int64
	totalFiles      int32
	downloadedFiles int32

	entriesMu sync.Mutex
	entries   []audio.PlaylistEntry

	onProgress func(ProgressEvent)
}

// NewManager creates a new download Manager.
func NewManager(opts Options, client *http.Client, onProgress func(ProgressEvent)) *Manager {
	if client == nil {
		client = http.NewClient()
	}
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}

	tagCfg := audio.DefaultTagConfig()
	tagCfg.ModifyTags = opts.ModifyTags

	return &Manager{
		opts:         opts,
		httpClient:   client,
		tagger:       audio.NewTagger(tagCfg),
		playlist:     audio.NewPlaylistCreator(opts.PlaylistFormat, opts.M3UExtended),
		imageService: ioutils.NewImageService(),
		onProgress:   onProgress,
	}
}

// Add queues recordings for download. Recordings without a file URL
// are skipped with a warning.
func (m *Manager) Add(recordings ...*model.Recording) {
	for _, rec := range recordings {
		if rec.FileURL == "" {
			m.progress(ProgressEvent{Message: fmt.Sprintf("No audio file for %s, skipping", rec.CatalogueNumber()), Level: LevelWarning})
			continue
		}
		m.recordings = append(m.recordings, rec)
		m.totalFiles++
	}
}

// Queued returns how many recordings are waiting to download.
func (m *Manager) Queued() int { return len(m.recordings) }

// CalculateTotals asks the server for file sizes so progress can be
// reported in bytes. Failures are ignored; the byte total is advisory.
func (m *Manager) CalculateTotals(ctx context.Context) {
	for _, rec := range m.recordings {
		size, err := m.httpClient.GetFileSize(ctx, rec.FileURL)
		if err == nil {
			m.totalBytes += size
		}
	}
}

// StartDownloads downloads all queued recordings.
//
// Individual failures are reported through the progress callback and
// do not stop the batch; the returned error reflects context
// cancellation only.
func (m *Manager) StartDownloads(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.MaxConcurrent)

	for _, rec := range m.recordings {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := m.downloadRecording(ctx, rec)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", rec.CatalogueNumber(), err), Level: LevelError})
				return nil // Continue with other recordings
			}
			m.addEntry(path, rec)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if m.opts.CreatePlaylist {
		m.writePlaylist()
	}

	done := atomic.LoadInt32(&m.downloadedFiles)
	if done == m.totalFiles {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Successfully downloaded %d recording(s)", done), Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished with %d of %d recording(s), some failed", done, m.totalFiles), Level: LevelWarning})
	}
	return nil
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() (received, total int64, filesReceived, filesTotal int32) {
	return atomic.LoadInt64(&m.receivedBytes), m.totalBytes,
		atomic.LoadInt32(&m.downloadedFiles), m.totalFiles
}

// Path returns where a recording will be stored, applying the
// configured grouping and naming.
func (m *Manager) Path(rec *model.Recording) string {
	dir := m.opts.BasePath
	switch m.opts.Grouping {
	case GroupBySpecies:
		if b := rec.Binomial(); b != "" {
			dir = filepath.Join(dir, ioutils.SanitizeFileName(b))
		}
	case GroupByRecordist:
		if rec.Recordist != "" {
			dir = filepath.Join(dir, ioutils.SanitizeFileName(rec.Recordist))
		}
	}

	name := rec.CatalogueNumber() + ".mp3"
	if m.opts.Naming == NameOriginal && rec.FileName != "" {
		name = ioutils.SanitizeFileName(rec.FileName)
	}
	return filepath.Join(dir, name)
}

func (m *Manager) downloadRecording(ctx context.Context, rec *model.Recording) (string, error) {
	path := m.Path(rec)
	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return "", err
	}

	// Skip files that already exist with a matching size.
	if info, err := os.Stat(path); err == nil {
		expectedSize, _ := m.httpClient.GetFileSize(ctx, rec.FileURL)
		if expectedSize > 0 {
			sizeDiff := float64(info.Size()-expectedSize) / float64(expectedSize)
			if math.Abs(sizeDiff) <= m.opts.AllowedSizeDifference {
				m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", filepath.Base(path)), Level: LevelVerbose})
				atomic.AddInt32(&m.downloadedFiles, 1)
				return path, nil
			}
		}
	}

	var err error
	var lastWritten int64
	for tries := 0; tries < m.opts.MaxRetries; tries++ {
		lastWritten = 0
		err = m.httpClient.DownloadFile(ctx, rec.FileURL, path, func(written, total int64) {
			atomic.AddInt64(&m.receivedBytes, written-lastWritten)
			lastWritten = written
		})
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		atomic.AddInt64(&m.receivedBytes, -lastWritten)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Retry %d/%d for %s", tries+1, m.opts.MaxRetries, rec.CatalogueNumber()), Level: LevelWarning})
		m.waitForRetry(ctx, tries)
	}
	if err != nil {
		return "", err
	}

	atomic.AddInt32(&m.downloadedFiles, 1)

	sonogram := m.fetchSonogram(ctx, rec, path)

	if m.opts.ModifyTags || sonogram != nil {
		if err := m.tagger.SaveTags(path, rec, sonogram); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error tagging %s: %v", rec.CatalogueNumber(), err), Level: LevelWarning})
		}
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", filepath.Base(path)), Level: LevelVerbose})
	return path, nil
}

// fetchSonogram downloads and prepares the sonogram for tagging and,
// when configured, saves it next to the audio file. Returns nil when
// the recording has no sonogram or every attempt failed.
func (m *Manager) fetchSonogram(ctx context.Context, rec *model.Recording, audioPath string) []byte {
	url := rec.Sonograms.Large
	if url == "" {
		url = rec.Sonograms.Medium
	}
	if url == "" || (!m.opts.ModifyTags && !m.opts.SaveSonograms) {
		return nil
	}

	var data []byte
	var err error
	for tries := 0; tries < m.opts.MaxRetries; tries++ {
		data, err = m.httpClient.DownloadBytes(ctx, url)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return nil
		}
		m.waitForRetry(ctx, tries)
	}
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading sonogram for %s: %v", rec.CatalogueNumber(), err), Level: LevelWarning})
		return nil
	}

	if m.opts.SonogramResize {
		if resized, err := m.imageService.ResizeImage(ctx, data, m.opts.SonogramMaxSize, m.opts.SonogramMaxSize); err == nil {
			data = resized
		}
	} else if m.opts.ConvertSonogramToJPG {
		if converted, err := m.imageService.ConvertToJPEG(ctx, data); err == nil {
			data = converted
		}
	}

	if m.opts.SaveSonograms {
		ext := ".png"
		if m.opts.SonogramResize || m.opts.ConvertSonogramToJPG {
			ext = ".jpg"
		}
		imgPath := audioPath[:len(audioPath)-len(filepath.Ext(audioPath))] + ext
		if err := os.WriteFile(imgPath, data, 0644); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error saving sonogram: %v", err), Level: LevelWarning})
		}
	}

	return data
}

func (m *Manager) addEntry(path string, rec *model.Recording) {
	rel, err := filepath.Rel(m.opts.BasePath, path)
	if err != nil {
		rel = filepath.Base(path)
	}

	m.entriesMu.Lock()
	m.entries = append(m.entries, audio.PlaylistEntry{Path: rel, Recording: rec})
	m.entriesMu.Unlock()
}

func (m *Manager) writePlaylist() {
	m.entriesMu.Lock()
	entries := append([]audio.PlaylistEntry(nil), m.entries...)
	m.entriesMu.Unlock()
	if len(entries) == 0 {
		return
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Recording.ID < entries[j].Recording.ID
	})

	name := m.opts.PlaylistName
	if name == "" {
		name = "xeno-canto"
	}
	path := filepath.Join(m.opts.BasePath, ioutils.SanitizeFileName(name)+m.opts.PlaylistFormat.Extension())

	content := m.playlist.CreatePlaylist(name, entries)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		return
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist %s", filepath.Base(path)), Level: LevelSuccess})
}

func (m *Manager) waitForRetry(ctx context.Context, tries int) {
	cooldown := m.opts.RetryCooldown * math.Pow(m.opts.RetryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
