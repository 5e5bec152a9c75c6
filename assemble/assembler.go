package assemble

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tsawler/carta/category"
	"github.com/tsawler/carta/classify"
	"github.com/tsawler/carta/dietary"
	"github.com/tsawler/carta/model"
	"github.com/tsawler/carta/price"
)

// assemblyState is the state of the dish assembly machine
type assemblyState int

const (
	awaitingDish assemblyState = iota
	haveName
	haveNameAndPrice
)

// Confidence weights for the parts of a dish. When a part is absent its
// weight is renormalized over the parts that are present.
const (
	nameWeight        = 0.5
	priceWeight       = 0.3
	descriptionWeight = 0.2
)

// Config holds configuration for dish assembly
type Config struct {
	// MaxDescriptionLength is the character limit for assembled descriptions;
	// longer text is truncated, never dropped (default: 500)
	MaxDescriptionLength int

	// LowConfidenceThreshold marks dishes below it as low confidence; they
	// are retained here and filtered later by the menu builder (default: 0.4)
	LowConfidenceThreshold float64

	// EnableCategories enables category classification
	EnableCategories bool

	// EnableDietary enables dietary tag and allergen analysis
	EnableDietary bool

	// NormalizeNames title-cases dish names that OCR produced in all caps
	NormalizeNames bool

	// PriceConfig configures the embedded price detector
	PriceConfig price.Config
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		MaxDescriptionLength:   500,
		LowConfidenceThreshold: 0.4,
		EnableCategories:       true,
		EnableDietary:          true,
		NormalizeNames:         true,
		PriceConfig:            price.DefaultConfig(),
	}
}

// Result is the outcome of folding a labeled-line sequence
type Result struct {
	// Dishes are the assembled candidate dishes in document order, including
	// low-confidence ones
	Dishes []model.Dish

	// RestaurantName is the first RestaurantInfo row's text, if any
	RestaurantName string
}

// Assembler folds a labeled-line sequence into candidate dishes
type Assembler struct {
	config     Config
	prices     *price.Detector
	categories *category.Classifier
	tagger     *dietary.Tagger
	titleCaser cases.Caser
}

// NewAssembler creates an assembler with default configuration
func NewAssembler() *Assembler {
	return NewAssemblerWithConfig(DefaultConfig())
}

// NewAssemblerWithConfig creates an assembler with custom configuration
func NewAssemblerWithConfig(config Config) *Assembler {
	return &Assembler{
		config:     config,
		prices:     price.NewDetectorWithConfig(config.PriceConfig),
		categories: category.NewClassifier(),
		tagger:     dietary.NewTagger(),
		titleCaser: cases.Title(language.English),
	}
}

// candidate is a dish being accumulated before its flush
type candidate struct {
	name      classify.LabeledLine
	price     *classify.LabeledLine
	descLines []classify.LabeledLine
	first     int
	last      int
}

// dishKey identifies an assembled dish for duplicate suppression
type dishKey struct {
	name  string
	price string
	first int
	last  int
}

// accumulator is the explicit fold state threaded through Fold. Category
// propagation from the last-seen section header lives here, not in mutable
// assembler state, so concurrent parses never interfere.
type accumulator struct {
	state          assemblyState
	current        *candidate
	category       model.Category
	restaurantName string
	dishes         []model.Dish
	seen           map[dishKey]struct{}
}

// Fold runs the assembly state machine over a labeled-line sequence and
// returns the candidate dishes in document order. Low-confidence dishes are
// flagged but retained; filtering is the menu builder's job.
func (a *Assembler) Fold(lines []classify.LabeledLine) Result {
	acc := &accumulator{
		category: model.CategoryUnknown,
		seen:     make(map[dishKey]struct{}),
	}

	for _, line := range lines {
		a.step(acc, line)
	}
	a.flush(acc)

	return Result{
		Dishes:         acc.dishes,
		RestaurantName: acc.restaurantName,
	}
}

// step applies one labeled line to the accumulator. Source positions come
// from the line's originating row, so the two halves of a split row share one
// position.
func (a *Assembler) step(acc *accumulator, line classify.LabeledLine) {
	switch line.Label {
	case classify.LabelDishName:
		a.flush(acc)
		acc.current = &candidate{name: line, first: line.SourceIndex, last: line.SourceIndex}
		acc.state = haveName

	case classify.LabelPrice:
		if acc.state == haveName && acc.current != nil {
			priceLine := line
			acc.current.price = &priceLine
			acc.current.last = line.SourceIndex
			acc.state = haveNameAndPrice
		}
		// A price with no pending dish, or a second price for the same
		// dish, is absorbed rather than guessed at

	case classify.LabelDescription:
		if acc.current != nil {
			acc.current.descLines = append(acc.current.descLines, line)
			acc.current.last = line.SourceIndex
		}

	case classify.LabelSectionHeader:
		a.flush(acc)
		if a.config.EnableCategories {
			acc.category = a.categories.FromHeader(line.Text)
		}
		acc.state = awaitingDish

	case classify.LabelRestaurantInfo:
		// First occurrence wins; does not flush the pending dish
		if acc.restaurantName == "" {
			acc.restaurantName = strings.TrimSpace(line.Text)
		}

	case classify.LabelNoise:
		// Excluded from assembly
	}
}

// flush finalizes the pending candidate into a Dish, if there is one
func (a *Assembler) flush(acc *accumulator) {
	cand := acc.current
	acc.current = nil
	acc.state = awaitingDish

	if cand == nil {
		return
	}

	name := a.normalizeName(cand.name.Text)
	if name == "" {
		return
	}

	description := a.assembleDescription(cand.descLines)

	var priceValue *model.PriceValue
	if cand.price != nil {
		if values := a.prices.Detect(cand.price.Text); len(values) > 0 {
			v := values[0]
			priceValue = &v
		}
	}

	dish := model.Dish{
		Name:        name,
		Description: description,
		Price:       priceValue,
		Category:    a.resolveCategory(acc.category, name, description),
		Confidence:  a.dishConfidence(cand),
		Source:      model.SourceRange{First: cand.first, Last: cand.last},
	}
	dish.LowConfidence = dish.Confidence < a.config.LowConfidenceThreshold
	dish.FragmentCount = countFragments(cand)

	if a.config.EnableDietary {
		dish.DietaryTags, dish.Allergens = a.tagger.Analyze(name + " " + description)
	}

	key := dishKey{name: dish.Name, first: cand.first, last: cand.last}
	if priceValue != nil {
		key.price = priceValue.RawText
	}
	if _, dup := acc.seen[key]; dup {
		return
	}
	acc.seen[key] = struct{}{}

	acc.dishes = append(acc.dishes, dish)
}

// resolveCategory applies the propagated section header category first and
// falls back to the dish's own text
func (a *Assembler) resolveCategory(propagated model.Category, name, description string) model.Category {
	if !a.config.EnableCategories {
		return model.CategoryUnknown
	}
	if propagated != model.CategoryUnknown {
		return propagated
	}
	return a.categories.FromDish(name, description)
}

// assembleDescription joins description rows with spaces and truncates at
// the configured limit. Truncation never drops the description and has no
// effect on dish confidence.
func (a *Assembler) assembleDescription(lines []classify.LabeledLine) string {
	if len(lines) == 0 {
		return ""
	}

	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if t := strings.TrimSpace(l.Text); t != "" {
			parts = append(parts, t)
		}
	}
	joined := strings.Join(parts, " ")

	if a.config.MaxDescriptionLength > 0 {
		runes := []rune(joined)
		if len(runes) > a.config.MaxDescriptionLength {
			joined = string(runes[:a.config.MaxDescriptionLength])
		}
	}
	return joined
}

// dishConfidence computes the weighted average of contributing line
// confidences, renormalized over the parts actually present. Each part's
// contribution blends the label confidence with the row's OCR confidence.
func (a *Assembler) dishConfidence(cand *candidate) float64 {
	total := nameWeight * lineConfidence(cand.name)
	weights := nameWeight

	if cand.price != nil {
		total += priceWeight * lineConfidence(*cand.price)
		weights += priceWeight
	}

	if len(cand.descLines) > 0 {
		sum := 0.0
		for _, l := range cand.descLines {
			sum += lineConfidence(l)
		}
		total += descriptionWeight * (sum / float64(len(cand.descLines)))
		weights += descriptionWeight
	}

	return model.ClampConfidence(total / weights)
}

// lineConfidence blends a row's label confidence with its OCR confidence
func lineConfidence(line classify.LabeledLine) float64 {
	ocr := line.Line.Confidence
	if ocr <= 0 {
		ocr = 1
	}
	return model.ClampConfidence(line.Confidence * ocr)
}

// countFragments counts the OCR fragments behind a candidate, counting each
// source row once even when a split produced two labeled lines from it
func countFragments(cand *candidate) int {
	seen := make(map[int]int)
	seen[cand.name.SourceIndex] = len(cand.name.Line.Fragments)
	if cand.price != nil {
		seen[cand.price.SourceIndex] = len(cand.price.Line.Fragments)
	}
	for _, l := range cand.descLines {
		seen[l.SourceIndex] = len(l.Line.Fragments)
	}

	total := 0
	for _, n := range seen {
		total += n
	}
	return total
}

// normalizeName collapses whitespace and title-cases names the OCR engine
// produced in all capitals
func (a *Assembler) normalizeName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}

	if a.config.NormalizeNames && isAllCaps(name) {
		name = a.titleCaser.String(strings.ToLower(name))
	}
	return name
}

// isAllCaps reports whether at least 90% of a string's letters are uppercase
func isAllCaps(s string) bool {
	upper, letters := 0, 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters < 3 {
		return false
	}
	return float64(upper)/float64(letters) > 0.9
}
