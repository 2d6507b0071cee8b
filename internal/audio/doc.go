// Package audio provides audio file manipulation services including
// ID3 tag writing and playlist generation.
//
// # ID3 Tagging
//
// Use the Tagger to write ID3 tags to downloaded recordings:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(path, rec, sonogramBytes)
//
// The tagger maps catalogue metadata onto the usual music frames so
// recordings sort sensibly in any player:
//   - Title: common name with catalogue number
//   - Artist: recordist
//   - Album: scientific species name
//   - Genre: animal group
//   - Recording year and date
//   - Sonogram (embedded as the picture frame)
//
// # Playlist Generation
//
// Generate playlists in various formats:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist("Wrens of Spain", entries)
//	os.WriteFile("wrens"+audio.FormatM3U.Extension(), []byte(content), 0644)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
