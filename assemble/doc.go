// Package assemble folds classified menu rows into structured dishes and
// aggregates them into the final menu.
//
// The assembler is a state machine: a dish name row opens a candidate, a
// price row completes it, description rows accumulate onto it, and a section
// header or the next dish name flushes it. Category propagation from the
// last-seen section header is explicit accumulator state threaded through
// the fold, never mutable assembler state. The builder then filters by
// confidence, sorts, and computes the menu's overall confidence.
package assemble
