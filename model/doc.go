// Package model defines the core data types shared by the menu structuring
// pipeline: normalized geometry, OCR text fragments, recognized prices, and
// the assembled Dish and Menu records.
//
// Coordinates throughout the package are normalized to the source image:
// both axes run 0 to 1, with Y increasing downward (image convention, not
// PDF convention).
package model
