package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration, sonograms come as PNG

	"golang.org/x/image/draw"
)

// ImageService provides image processing operations for sonograms.
//
// ImageService is used to:
//   - Resize sonogram renderings to fit maximum dimensions
//   - Convert the API's PNG sonograms to JPEG
//
// Example usage:
//
//	svc := NewImageService()
//
//	imageData, _ := client.DownloadBytes(ctx, rec.Sonograms.Large)
//
//	// Resize to max 1000x1000 and convert to JPEG
//	resized, _ := svc.ResizeImage(ctx, imageData, 1000, 1000)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// ResizeImage resizes an image to fit within the specified maximum
// dimensions, preserving aspect ratio. Images already inside the
// bounds are still re-encoded as JPEG.
//
// The Catmull-Rom algorithm is used for high-quality resizing, which
// matters for sonograms where fine detail carries information.
//
// Example:
//
//	resized, err := svc.ResizeImage(ctx, imageData, 1000, 1000)
//	// A 1500x1000 image becomes 1000x667
//	// A 800x600 image remains 800x600 (but re-encoded)
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxWidth || height > maxHeight {
		ratio := float64(width) / float64(height)
		if float64(maxWidth)/float64(maxHeight) > ratio {
			// Height is the limiting factor
			width = int(float64(maxHeight) * ratio)
			height = maxHeight
		} else {
			// Width is the limiting factor
			height = int(float64(maxWidth) / ratio)
			width = maxWidth
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// ConvertToJPEG converts an image to JPEG format with 90% quality.
//
// This is useful for:
//   - Reducing file size compared to the API's PNG renderings
//   - Consistent format when saving sonograms next to recordings
//
// Example:
//
//	pngData, _ := client.DownloadBytes(ctx, rec.Sonograms.Full)
//	jpegData, err := svc.ConvertToJPEG(ctx, pngData)
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
