package layout

import (
	"sort"

	"github.com/tsawler/carta/model"
)

// Config holds configuration for layout analysis
type Config struct {
	// LineHeightTolerance is the vertical-center distance for grouping
	// fragments into one row, as a fraction of the median fragment height
	// (default: 0.6)
	LineHeightTolerance float64

	// ColumnGapRatio is the minimum recurring horizontal gap to treat as a
	// column separator, as a fraction of image width (default: 0.08)
	ColumnGapRatio float64

	// MaxCrossingRatio is the largest fraction of rows that may cross a
	// whitespace gap for it to still count as a column separator
	// (default: 0.2)
	MaxCrossingRatio float64

	// MaxColumns is the maximum number of columns to detect; more gaps than
	// this degrades the layout to single-column mode (default: 4)
	MaxColumns int
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		LineHeightTolerance: 0.6,
		ColumnGapRatio:      0.08,
		MaxCrossingRatio:    0.2,
		MaxColumns:          4,
	}
}

// Layout is the result of layout analysis: the detected rows in reading
// order plus document-level statistics consumed by later stages.
type Layout struct {
	// Lines are the detected rows, fully ordered: each column top to bottom,
	// left column before right column
	Lines []LineGroup

	// ColumnCount is the number of detected columns (1 in single-column mode,
	// 0 when there was no text at all)
	ColumnCount int

	// Degraded is true when a multi-column arrangement was suspected but
	// ambiguous, and the analyzer fell back to single-column mode
	Degraded bool

	// MedianFragmentHeight is the median fragment height (normalized units)
	MedianFragmentHeight float64
}

// LineCount returns the number of detected rows
func (l *Layout) LineCount() int {
	return len(l.Lines)
}

// MedianLineHeight returns the median bounding-box height across rows,
// or 0 when there are no rows.
func (l *Layout) MedianLineHeight() float64 {
	if len(l.Lines) == 0 {
		return 0
	}
	hs := make([]float64, len(l.Lines))
	for i, g := range l.Lines {
		hs[i] = g.BBox.Height
	}
	return medianFloat64(hs)
}

// Analyzer groups raw OCR fragments into ordered, column-aware rows.
// Analysis never fails: ambiguous layouts degrade to single-column mode and
// only lower downstream confidence.
type Analyzer struct {
	config Config
}

// NewAnalyzer creates a layout analyzer with default configuration
func NewAnalyzer() *Analyzer {
	return &Analyzer{config: DefaultConfig()}
}

// NewAnalyzerWithConfig creates a layout analyzer with custom configuration
func NewAnalyzerWithConfig(config Config) *Analyzer {
	return &Analyzer{config: config}
}

// Analyze groups fragments into reading-order rows, detecting multi-column
// arrangements via whitespace gap analysis.
func (a *Analyzer) Analyze(fragments []model.TextFragment) *Layout {
	if len(fragments) == 0 {
		return &Layout{}
	}

	medianHeight := medianFragmentHeight(fragments)
	tolerance := medianHeight * a.config.LineHeightTolerance
	if tolerance <= 0 {
		tolerance = 0.005
	}

	columns, degraded := a.detectColumns(fragments, tolerance)

	var lines []LineGroup
	for colIdx, colFragments := range columns {
		rows := groupIntoLines(colFragments, tolerance)
		lines = append(lines, buildLineGroups(rows, colIdx)...)
	}

	for i := range lines {
		lines[i].Index = i
	}

	return &Layout{
		Lines:                lines,
		ColumnCount:          len(columns),
		Degraded:             degraded,
		MedianFragmentHeight: medianHeight,
	}
}

// detectColumns partitions fragments into columns. The second return value
// reports whether an ambiguous multi-column arrangement was degraded to
// single-column mode.
func (a *Analyzer) detectColumns(fragments []model.TextFragment, tolerance float64) ([][]model.TextFragment, bool) {
	// A rough single-column row pass feeds the gap histogram
	rows := groupIntoLines(fragments, tolerance)
	gaps := findColumnGaps(rows, a.config.ColumnGapRatio, a.config.MaxCrossingRatio)

	if len(gaps) == 0 {
		return [][]model.TextFragment{fragments}, false
	}

	if len(gaps) > a.config.MaxColumns-1 {
		return [][]model.TextFragment{fragments}, true
	}

	columns, ok := splitByColumns(fragments, gaps)
	if !ok {
		return [][]model.TextFragment{fragments}, true
	}

	return columns, false
}

func medianFloat64(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
