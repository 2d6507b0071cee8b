// Package config provides configuration management for xenocanto-downloader.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Conversion to the download package's grouping and naming modes
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Downloads to ~/Music/xeno-canto grouped by species
//	// API requests rate limited to 4/s with a 24h response cache
//	// ID3 tagging enabled
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.DownloadsPath = "/recordings/xeno-canto"
//	err := settings.Save(config.DefaultPath())
//
// # Configuration Options
//
// Settings includes options for:
//   - API key, page size and worker counts
//   - Rate limiting and response caching
//   - Download paths, grouping and file naming
//   - Retry behavior
//   - Sonogram handling
//   - Playlist generation
//   - ID3 tag modification
package config
