package ioutils

import (
	"context"
	"io"
	"os"
	"regexp"
	"strings"
)

var (
	// Invalid path/file characters: < > : " / \ | ? * and control
	// characters (0x00-0x1f). Windows has the most restrictive rules.
	invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots     = regexp.MustCompile(`\.+$`)
	multiSpace       = regexp.MustCompile(`\s+`)
)

// CopyFile copies a file from source to destination.
//
// The destination file is created with mode 0644 if it doesn't exist,
// or truncated if it does. The source file must exist and be readable.
//
// Example:
//
//	err := CopyFile(ctx, "/recordings/XC76967.mp3", "/backup/XC76967.mp3")
func CopyFile(ctx context.Context, src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	return err
}

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
//
// Example:
//
//	playlistContent := []byte("#EXTM3U\n...")
//	err := WriteFile(ctx, "/recordings/playlist.m3u", playlistContent)
func WriteFile(ctx context.Context, path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

// SanitizeFileName removes or replaces characters that are invalid in
// file and folder names, so species and recordist names can be used as
// paths on any operating system.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("call: flight/alarm")  // Returns "call_ flight_alarm"
//	SanitizeFileName("Troglodytes...")      // Returns "Troglodytes"
func SanitizeFileName(name string) string {
	name = invalidFileChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = multiSpace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}

// EnsureDir creates a directory and all parent directories if they
// don't exist. Directories are created with mode 0755.
//
// Example:
//
//	err := EnsureDir("/recordings/Troglodytes troglodytes")
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
