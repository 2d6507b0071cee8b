// Package model defines the core data structures used throughout
// the xenocanto-downloader application.
//
// # Recording
//
// Recording is one validated catalogue entry, produced from a raw API
// payload by ParseRecording:
//
//	rec, err := model.ParseRecording(raw)
//	if err != nil {
//	    // skip this record, the rest of the page is still usable
//	}
//	fmt.Println(rec.CatalogueNumber()) // "XC76967"
//	fmt.Println(rec.Binomial())        // "Troglodytes troglodytes"
//
// Placeholder values the API uses for missing data ("", "?",
// "unknown") are normalized to zero values during parsing.
//
// # Catalogue numbers
//
// ParseRecordingID normalizes user-supplied catalogue numbers, which
// may be bare integers or carry a case-insensitive "XC" prefix:
//
//	id, err := model.ParseRecordingID("XC76967") // 76967
//
// NormalizeIDs partitions a whole list into valid ids and malformed
// inputs so that nothing is dropped silently.
//
// # Quality ratings
//
// Quality is the five-step A (best) to E (worst) rating scale.
// OffsetQuality moves along the scale and saturates at the ends:
//
//	model.OffsetQuality(model.QualityA, -1) // still QualityA
package model
