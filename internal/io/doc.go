// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - File copying and writing
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation
//   - Sonogram resizing and format conversion
//
// # File Operations
//
//	// Copy a file
//	err := ioutils.CopyFile(ctx, "/src/XC76967.mp3", "/dst/XC76967.mp3")
//
//	// Write data to file
//	err := ioutils.WriteFile(ctx, "/path/to/file.txt", []byte("content"))
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/path/to/new/directory")
//
// # Filename Sanitization
//
// Use SanitizeFileName to remove invalid characters from filenames:
//
//	safe := ioutils.SanitizeFileName("call: flight/alarm") // "call_ flight_alarm"
//
// # Image Processing
//
// The ImageService handles sonogram manipulation:
//
//	svc := ioutils.NewImageService()
//
//	// Resize image to fit within 1000x1000
//	resized, _ := svc.ResizeImage(ctx, imageData, 1000, 1000)
//
//	// Convert to JPEG
//	jpeg, _ := svc.ConvertToJPEG(ctx, pngData)
package ioutils
