// Package layout groups raw OCR text fragments into ordered, column-aware
// rows. It performs line detection by vertical proximity and multi-column
// detection by whitespace gap analysis.
//
// Layout analysis has no error path: an ambiguous or overlapping column
// arrangement degrades to single-column mode, which only lowers the
// confidence of downstream stages.
package layout
