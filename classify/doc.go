// Package classify labels rows of menu text with semantic roles: section
// header, dish name, price, description, restaurant info, or noise.
//
// Scoring combines price-pattern coverage, row height relative to the
// document median, position on the page, and casing. A row mixing prose with
// a trailing price is split at the price boundary into separate name and
// price lines instead of being mislabeled wholesale. Rows scoring below the
// noise floor are labeled Noise; they are excluded from dish assembly but
// retained for diagnostics.
package classify
