package classify

import (
	"sort"
	"strings"
	"unicode"

	"github.com/tsawler/carta/category"
	"github.com/tsawler/carta/layout"
	"github.com/tsawler/carta/model"
	"github.com/tsawler/carta/price"
)

// Label is the semantic role assigned to a row of menu text
type Label int

const (
	// LabelNoise marks rows scoring below the noise floor; they are excluded
	// from dish assembly but retained for diagnostics
	LabelNoise Label = iota

	// LabelSectionHeader marks menu section headings ("APPETIZERS")
	LabelSectionHeader

	// LabelDishName marks dish name rows
	LabelDishName

	// LabelPrice marks rows (or row parts) that are a price
	LabelPrice

	// LabelDescription marks dish description rows
	LabelDescription

	// LabelRestaurantInfo marks restaurant name/info rows at the top of the menu
	LabelRestaurantInfo
)

func (l Label) String() string {
	switch l {
	case LabelSectionHeader:
		return "SectionHeader"
	case LabelDishName:
		return "DishName"
	case LabelPrice:
		return "Price"
	case LabelDescription:
		return "Description"
	case LabelRestaurantInfo:
		return "RestaurantInfo"
	default:
		return "Noise"
	}
}

// LabeledLine is a row of menu text with its assigned semantic role.
// A mixed row containing both prose and a trailing price is split into two
// LabeledLines sharing the same SourceIndex.
type LabeledLine struct {
	// Line is the underlying layout row
	Line layout.LineGroup

	// Text is the text the label applies to. For split rows this is the
	// prose part or the price part, not the full row text.
	Text string

	// Label is the assigned semantic role
	Label Label

	// Confidence is the classifier's confidence in the label (0-1)
	Confidence float64

	// SourceIndex is the index of the originating row in the layout
	SourceIndex int
}

// Config holds configuration for text block classification
type Config struct {
	// NoiseFloor is the score below which a row is labeled Noise
	// (default: 0.15)
	NoiseFloor float64

	// PriceCoverage is the fraction of a row that must be price text for the
	// whole row to be labeled Price (default: 0.6); partial coverage with a
	// trailing price triggers a split instead
	PriceCoverage float64

	// HeaderMaxWords is the maximum word count for a section header
	// (default: 3)
	HeaderMaxWords int

	// HeaderUppercaseRatio is the minimum uppercase-letter ratio for a
	// section header (default: 0.7)
	HeaderUppercaseRatio float64

	// RestaurantInfoLines is how many leading rows may be labeled
	// RestaurantInfo (default: 2)
	RestaurantInfoLines int

	// RestaurantHeightRatio is the minimum row-height to median-height ratio
	// for a leading row to be labeled RestaurantInfo (default: 1.3)
	RestaurantHeightRatio float64

	// PriceConfig configures the embedded price detector
	PriceConfig price.Config
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		NoiseFloor:            0.15,
		PriceCoverage:         0.6,
		HeaderMaxWords:        3,
		HeaderUppercaseRatio:  0.7,
		RestaurantInfoLines:   2,
		RestaurantHeightRatio: 1.3,
		PriceConfig:           price.DefaultConfig(),
	}
}

// Stats holds document-level statistics consumed during classification
type Stats struct {
	// MedianLineHeight is the median row height (normalized units)
	MedianLineHeight float64

	// LineCount is the total number of rows in the document
	LineCount int
}

// Classifier labels rows of menu text with semantic roles
type Classifier struct {
	config     Config
	prices     *price.Detector
	categories *category.Classifier
}

// NewClassifier creates a classifier with default configuration
func NewClassifier() *Classifier {
	return NewClassifierWithConfig(DefaultConfig())
}

// NewClassifierWithConfig creates a classifier with custom configuration
func NewClassifierWithConfig(config Config) *Classifier {
	return &Classifier{
		config:     config,
		prices:     price.NewDetectorWithConfig(config.PriceConfig),
		categories: category.NewClassifier(),
	}
}

// Stats computes the document-level statistics used by ClassifyLine
func (c *Classifier) Stats(lines []layout.LineGroup) Stats {
	if len(lines) == 0 {
		return Stats{}
	}
	heights := make([]float64, len(lines))
	for i, g := range lines {
		heights[i] = g.BBox.Height
	}
	return Stats{
		MedianLineHeight: median(heights),
		LineCount:        len(lines),
	}
}

// Classify labels every row. Mixed rows with a trailing price yield two
// LabeledLines, so the result may be longer than the input.
func (c *Classifier) Classify(lines []layout.LineGroup) []LabeledLine {
	stats := c.Stats(lines)
	var labeled []LabeledLine
	for i, line := range lines {
		labeled = append(labeled, c.ClassifyLine(line, i, stats)...)
	}
	return labeled
}

// ClassifyLine labels a single row, returning one LabeledLine, or two when
// the row mixes prose with a trailing price.
func (c *Classifier) ClassifyLine(line layout.LineGroup, lineIndex int, stats Stats) []LabeledLine {
	text := line.JoinedText
	coverage := c.prices.Coverage(text)

	// A row that is essentially all price text is a Price row
	if coverage >= c.config.PriceCoverage && len(c.prices.Detect(text)) > 0 {
		return []LabeledLine{{
			Line:        line,
			Text:        text,
			Label:       LabelPrice,
			Confidence:  model.ClampConfidence(0.55 + 0.4*coverage),
			SourceIndex: lineIndex,
		}}
	}

	// A row mixing prose with a trailing price is split at the price
	// boundary rather than mislabeled wholesale
	if coverage > 0 {
		if split, ok := c.splitAtPrice(line, text, lineIndex); ok {
			return split
		}
	}

	label, confidence := c.scoreProse(line, text, lineIndex, stats)
	return []LabeledLine{{
		Line:        line,
		Text:        text,
		Label:       label,
		Confidence:  confidence,
		SourceIndex: lineIndex,
	}}
}

// splitAtPrice splits a row into a prose part and a Price part when the row
// ends in a recognized price. Returns false when the price is not at the end
// of the row or there is no prose before it.
func (c *Classifier) splitAtPrice(line layout.LineGroup, text string, lineIndex int) ([]LabeledLine, bool) {
	matches := c.prices.Matches(text)
	if len(matches) == 0 {
		return nil, false
	}

	last := matches[len(matches)-1]
	if strings.TrimFunc(text[last.End:], isJunkRune) != "" {
		return nil, false
	}

	prose := strings.TrimSpace(text[:last.Start])
	prose = strings.TrimRight(prose, ".…-–")
	prose = strings.TrimSpace(prose)
	if prose == "" {
		return nil, false
	}

	// The prose part of a name-plus-price row is the dish name unless it
	// reads like description text
	proseLabel := LabelDishName
	proseConf := dishNameScore(prose)
	if ds := descriptionScore(prose); ds > proseConf {
		proseLabel = LabelDescription
		proseConf = ds
	}

	return []LabeledLine{
		{
			Line:        line,
			Text:        prose,
			Label:       proseLabel,
			Confidence:  model.ClampConfidence(proseConf),
			SourceIndex: lineIndex,
		},
		{
			Line:        line,
			Text:        strings.TrimSpace(text[last.Start:last.End]),
			Label:       LabelPrice,
			Confidence:  last.Value.Confidence,
			SourceIndex: lineIndex,
		},
	}, true
}

// scoreProse scores a non-price row against every prose label and picks the
// winner. Ties resolve by precedence: SectionHeader, then RestaurantInfo
// (first rows only), then DishName, then Description.
func (c *Classifier) scoreProse(line layout.LineGroup, text string, lineIndex int, stats Stats) (Label, float64) {
	if countLetterOrDigit(text) < 2 {
		// Stray marks and single characters are OCR noise
		return LabelNoise, 0.1
	}

	heightRatio := 1.0
	if stats.MedianLineHeight > 0 {
		heightRatio = line.BBox.Height / stats.MedianLineHeight
	}

	headerScore := c.sectionHeaderScore(text, heightRatio)
	infoScore := c.restaurantInfoScore(text, lineIndex, heightRatio)
	nameScore := dishNameScore(text)
	descScore := descriptionScore(text)

	// Large mid-document rows lean toward names and headers rather than
	// description text
	if heightRatio >= 1.15 && lineIndex >= c.config.RestaurantInfoLines {
		nameScore += 0.05
		headerScore += 0.05
	}

	best := LabelDescription
	bestScore := descScore
	for _, cand := range []struct {
		label Label
		score float64
	}{
		{LabelDishName, nameScore},
		{LabelRestaurantInfo, infoScore},
		{LabelSectionHeader, headerScore},
	} {
		if cand.score >= bestScore {
			best = cand.label
			bestScore = cand.score
		}
	}

	bestScore = model.ClampConfidence(bestScore)
	if bestScore < c.config.NoiseFloor {
		return LabelNoise, bestScore
	}
	return best, bestScore
}

// sectionHeaderScore scores short, mostly-uppercase rows as section headers
func (c *Classifier) sectionHeaderScore(text string, heightRatio float64) float64 {
	words := len(strings.Fields(text))
	if words == 0 || words > c.config.HeaderMaxWords {
		return 0
	}
	if uppercaseRatio(text) <= c.config.HeaderUppercaseRatio {
		return 0
	}

	score := 0.8
	if c.categories.IsHeaderText(text) {
		score += 0.1
	}
	if heightRatio >= 1.15 {
		score += 0.05
	}
	return score
}

// restaurantInfoScore scores oversized rows at the very top of the menu as
// restaurant name/info
func (c *Classifier) restaurantInfoScore(text string, lineIndex int, heightRatio float64) float64 {
	if lineIndex >= c.config.RestaurantInfoLines {
		return 0
	}
	if heightRatio < c.config.RestaurantHeightRatio {
		return 0
	}

	score := 0.7
	if lineIndex == 0 {
		score += 0.1
	}
	return score
}

// dishNameScore scores a row as a dish name: short, starts uppercase, no
// sentence punctuation
func dishNameScore(text string) float64 {
	if !hasLetterOrDigit(text) {
		return 0
	}

	score := 0.5
	words := len(strings.Fields(text))

	if words <= 6 {
		score += 0.1
	}
	if startsUppercase(text) {
		score += 0.1
	}
	if strings.Contains(text, ",") {
		score -= 0.2
	}
	if words > 8 {
		score -= 0.2
	}
	if strings.HasSuffix(strings.TrimSpace(text), ".") {
		score -= 0.1
	}

	return score
}

// descriptionScore scores a row as description text: longer, comma-joined
// ingredient lists, sentence-like
func descriptionScore(text string) float64 {
	if !hasLetterOrDigit(text) {
		return 0
	}

	score := 0.3
	words := len(strings.Fields(text))

	if words >= 3 {
		score += 0.15
	}
	if words >= 6 {
		score += 0.1
	}
	if strings.Contains(text, ",") {
		score += 0.15
	}
	if !startsUppercase(text) {
		score += 0.1
	}

	return score
}

// uppercaseRatio returns the fraction of letters that are uppercase.
// Returns 0 when the text has no letters.
func uppercaseRatio(text string) float64 {
	upper, letters := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}

func startsUppercase(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) {
			return unicode.IsUpper(r)
		}
	}
	return false
}

func hasLetterOrDigit(text string) bool {
	return countLetterOrDigit(text) > 0
}

func countLetterOrDigit(text string) int {
	count := 0
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			count++
		}
	}
	return count
}

// median returns the median of values, averaging the middle pair for even
// counts. Returns 0 for an empty slice.
func median(values []float64) float64 {
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

// isJunkRune reports characters that may trail a price without blocking a
// split, like dot leaders between a name and its price
func isJunkRune(r rune) bool {
	switch r {
	case ' ', '\t', '.', '…', '-', '–', '*':
		return true
	}
	return false
}
