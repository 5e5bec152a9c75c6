//go:build ocr

// Package ocr adapts the Tesseract OCR engine into the fragment stream the
// menu parser consumes.
//
// This package wraps Tesseract via gosseract. It requires Tesseract to be
// installed on the system and the "ocr" build tag to be set. On macOS,
// install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/tsawler/carta/model"
)

// Client wraps Tesseract for OCR operations.
type Client struct {
	client *gosseract.Client
}

// New creates a new OCR client.
// The client should be closed when no longer needed to release resources.
func New() (*Client, error) {
	client := gosseract.NewClient()
	return &Client{client: client}, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// SetLanguage sets the language(s) for OCR recognition.
// Multiple languages can be specified as a "+" separated string (e.g.,
// "eng+fra"). Default is "eng" (English).
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// RecognizeImage performs OCR on image data (PNG, JPEG, TIFF, etc.).
// Returns the recognized text with leading/trailing whitespace trimmed.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// Fragments performs OCR on image data and returns word-level text
// fragments with bounding boxes normalized to the image dimensions, ready
// to feed the parser. Also returns the pixel dimensions of the image.
func (c *Client) Fragments(imageData []byte) ([]model.TextFragment, int, int, error) {
	width, height, err := ImageSize(imageData)
	if err != nil {
		return nil, 0, 0, err
	}
	if width <= 0 || height <= 0 {
		return nil, 0, 0, fmt.Errorf("image has no area: %dx%d", width, height)
	}

	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := c.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("OCR failed: %w", err)
	}

	fw := float64(width)
	fh := float64(height)

	fragments := make([]model.TextFragment, 0, len(boxes))
	for _, box := range boxes {
		word := strings.TrimSpace(box.Word)
		if word == "" {
			continue
		}

		fragments = append(fragments, model.TextFragment{
			Text: word,
			BBox: model.NewBBox(
				float64(box.Box.Min.X)/fw,
				float64(box.Box.Min.Y)/fh,
				float64(box.Box.Dx())/fw,
				float64(box.Box.Dy())/fh,
			),
			// Tesseract reports confidence as 0-100
			Confidence:    model.ClampConfidence(box.Confidence / 100),
			SequenceIndex: len(fragments),
		})
	}

	return fragments, width, height, nil
}
