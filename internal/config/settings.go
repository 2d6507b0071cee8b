package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/handiism/xenocanto-downloader/internal/audio"
	"github.com/handiism/xenocanto-downloader/internal/download"
)

// Settings holds all configuration options.
type Settings struct {
	// API settings
	APIKey            string  `json:"api_key"`
	PageSize          int     `json:"page_size"`
	MaxWorkers        int     `json:"max_workers"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	RequestBurst      int     `json:"request_burst"`

	// Response cache settings
	CacheEnabled     bool   `json:"cache_enabled"`
	CacheDir         string `json:"cache_dir"`
	CacheMaxAgeHours int    `json:"cache_max_age_hours"`

	// Download settings
	DownloadsPath          string  `json:"downloads_path"`
	Grouping               string  `json:"grouping"` // flat, species, recordist
	Naming                 string  `json:"naming"`   // catalogue, original
	MaxConcurrentDownloads int     `json:"max_concurrent_downloads"`
	DownloadMaxRetries     int     `json:"download_max_retries"`
	DownloadRetryCooldown  float64 `json:"download_retry_cooldown"`
	DownloadRetryExponent  float64 `json:"download_retry_exponent"`

	// Sonogram settings
	SaveSonograms        bool `json:"save_sonograms"`
	SonogramResize       bool `json:"sonogram_resize"`
	SonogramMaxSize      int  `json:"sonogram_max_size"`
	ConvertSonogramToJPG bool `json:"convert_sonogram_to_jpg"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist"`
	PlaylistFormat string `json:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `json:"m3u_extended"`

	// Tag settings
	ModifyTags bool `json:"modify_tags"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	cacheDir, _ := os.UserCacheDir()
	return &Settings{
		PageSize:          500,
		MaxWorkers:        4,
		RequestsPerSecond: 4,
		RequestBurst:      10,

		CacheEnabled:     true,
		CacheDir:         filepath.Join(cacheDir, "xenocanto-downloader"),
		CacheMaxAgeHours: 24,

		DownloadsPath:          filepath.Join(homeDir, "Music", "xeno-canto"),
		Grouping:               "species",
		Naming:                 "catalogue",
		MaxConcurrentDownloads: 4,
		DownloadMaxRetries:     7,
		DownloadRetryCooldown:  0.2,
		DownloadRetryExponent:  4.0,

		SaveSonograms:        false,
		SonogramResize:       true,
		SonogramMaxSize:      1000,
		ConvertSonogramToJPG: true,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		ModifyTags: true,
	}
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultPath returns the default location of the settings file.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "xenocanto-downloader.json"
	}
	return filepath.Join(dir, "xenocanto-downloader", "settings.json")
}

// GroupingMode converts the configured grouping name to the download
// package's enum, defaulting to grouping by species.
func (s *Settings) GroupingMode() download.Grouping {
	switch s.Grouping {
	case "flat":
		return download.GroupFlat
	case "recordist":
		return download.GroupByRecordist
	default:
		return download.GroupBySpecies
	}
}

// NamingMode converts the configured naming scheme to the download
// package's enum, defaulting to catalogue-number names.
func (s *Settings) NamingMode() download.Naming {
	switch s.Naming {
	case "original":
		return download.NameOriginal
	default:
		return download.NameCatalogue
	}
}

// PlaylistFormatMode converts the configured playlist format name to
// the audio package's enum, defaulting to M3U.
func (s *Settings) PlaylistFormatMode() audio.PlaylistFormat {
	switch s.PlaylistFormat {
	case "pls":
		return audio.FormatPLS
	case "wpl":
		return audio.FormatWPL
	case "zpl":
		return audio.FormatZPL
	default:
		return audio.FormatM3U
	}
}
