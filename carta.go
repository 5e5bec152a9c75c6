// Package carta turns a photographed restaurant menu's raw OCR output into
// a structured, confidence-scored menu: dishes with names, descriptions,
// prices, categories, and dietary tags.
//
// Basic usage:
//
//	menu, warnings, err := carta.FromFragments(fragments).Menu()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", carta.FormatWarnings(warnings))
//	}
//
// With options:
//
//	menu, _, err := carta.FromFragments(fragments).
//	    MinConfidence(0.5).
//	    MergeSimilar().
//	    Menu()
//
// The engine is pure and synchronous: the same fragment input always yields
// the same menu, and independent parses may run fully concurrently. Noisy
// input degrades confidence instead of failing; the only terminal errors are
// ErrInvalidMenuFormat and ErrNoDishesFound.
//
// For advanced use cases, the lower-level layout, classify, price, category,
// dietary, and assemble packages are also available.
package carta

import (
	"github.com/tsawler/carta/assemble"
	"github.com/tsawler/carta/model"
)

// ErrNoDishesFound is returned when no dish survived the confidence filter.
var ErrNoDishesFound = assemble.ErrNoDishesFound

// ErrInvalidMenuFormat is returned when the input contained no usable text
// or layout at all.
var ErrInvalidMenuFormat = assemble.ErrInvalidMenuFormat

// Parse is a convenience wrapper that parses fragments with default options.
//
// Example:
//
//	menu, warnings, err := carta.Parse(fragments)
func Parse(fragments []model.TextFragment) (*model.Menu, []Warning, error) {
	return FromFragments(fragments).Menu()
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustMenu is a helper that wraps a call to Menu() and panics if the error
// is non-nil. It discards warnings and returns just the menu.
//
// Example:
//
//	menu := carta.MustMenu(carta.FromFragments(fragments).Menu())
func MustMenu(m *model.Menu, _ []Warning, err error) *model.Menu {
	if err != nil {
		panic(err)
	}
	return m
}
