package ocr

import (
	"bytes"
	"fmt"
	"image"

	// Decoders for the formats phone cameras and scanners commonly emit.
	// Registered for their side effects so ImageSize can size any of them.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageSize returns the pixel dimensions of an encoded image without
// decoding the pixel data. Supported formats: JPEG, PNG, GIF, BMP, TIFF,
// and WebP.
//
// The dimensions are used to normalize OCR bounding boxes into the [0,1]
// coordinate space the parser works in.
func ImageSize(imageData []byte) (width, height int, err error) {
	config, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image dimensions: %w", err)
	}
	return config.Width, config.Height, nil
}
