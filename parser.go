package carta

import (
	"context"
	"fmt"

	"github.com/tsawler/carta/assemble"
	"github.com/tsawler/carta/classify"
	"github.com/tsawler/carta/layout"
	"github.com/tsawler/carta/model"
	"github.com/tsawler/carta/price"
)

// Parser provides a fluent API for parsing OCR fragments into a structured
// menu. Chain methods return a new Parser, so a configured Parser may be
// reused and shared freely.
type Parser struct {
	fragments []model.TextFragment
	options   ParseOptions
	observer  ProgressObserver
}

// FromFragments creates a Parser over an OCR fragment stream with default
// options. The fragment slice is treated as an immutable snapshot; the
// caller must not mutate it while parsing.
//
// Example:
//
//	menu, warnings, err := carta.FromFragments(fragments).Menu()
func FromFragments(fragments []model.TextFragment) *Parser {
	return &Parser{
		fragments: fragments,
		options:   DefaultOptions(),
		observer:  NopObserver{},
	}
}

// clone creates a copy of the Parser so that chain methods never mutate
// their receiver
func (p *Parser) clone() *Parser {
	return &Parser{
		fragments: p.fragments,
		options:   p.options,
		observer:  p.observer,
	}
}

// WithOptions replaces all parse options at once
func (p *Parser) WithOptions(options ParseOptions) *Parser {
	np := p.clone()
	np.options = options
	return np
}

// MinConfidence sets the minimum dish confidence; dishes scoring below it
// are dropped from the final menu
func (p *Parser) MinConfidence(min float64) *Parser {
	np := p.clone()
	np.options.MinimumDishConfidence = min
	return np
}

// BasicPricing restricts price detection to a leading currency symbol with
// a plain decimal amount
func (p *Parser) BasicPricing() *Parser {
	np := p.clone()
	np.options.EnableAdvancedPricing = false
	return np
}

// WithoutCategories disables category classification; every dish is left as
// CategoryUnknown
func (p *Parser) WithoutCategories() *Parser {
	np := p.clone()
	np.options.EnableCategoryDetection = false
	return np
}

// WithoutDietaryAnalysis disables dietary tag and allergen detection
func (p *Parser) WithoutDietaryAnalysis() *Parser {
	np := p.clone()
	np.options.EnableDietaryAnalysis = false
	return np
}

// MergeSimilar folds duplicate dishes with matching names into one record
func (p *Parser) MergeSimilar() *Parser {
	np := p.clone()
	np.options.MergeSimilarDishes = true
	return np
}

// WithoutLayoutAwareness disables multi-column detection and treats the
// whole image as a single column
func (p *Parser) WithoutLayoutAwareness() *Parser {
	np := p.clone()
	np.options.EnableLayoutAwareness = false
	return np
}

// WithProgress injects an observer for advisory progress updates
func (p *Parser) WithProgress(observer ProgressObserver) *Parser {
	np := p.clone()
	if observer == nil {
		observer = NopObserver{}
	}
	np.observer = observer
	return np
}

// StageConfidence is the per-stage confidence breakdown of a parse
type StageConfidence struct {
	// Layout is the mean OCR confidence of the input fragments, reduced
	// when column detection degraded to single-column mode
	Layout float64

	// Classification is the mean label confidence over non-noise rows
	Classification float64

	// Assembly is the menu's overall confidence
	Assembly float64
}

// Result is the full outcome of a parse: the menu plus diagnostics for
// downstream consumers.
type Result struct {
	// Menu is the structured parse result
	Menu *model.Menu

	// Noise contains the rows labeled Noise, excluded from assembly but
	// retained for diagnostics
	Noise []classify.LabeledLine

	// Stages is the per-stage confidence breakdown
	Stages StageConfidence

	// Warnings are the non-fatal issues encountered during the parse
	Warnings []Warning
}

// Menu parses the fragments and returns the structured menu. Warnings
// indicate non-fatal issues; the error is ErrInvalidMenuFormat or
// ErrNoDishesFound when the parse is terminal.
func (p *Parser) Menu() (*model.Menu, []Warning, error) {
	return p.MenuContext(context.Background())
}

// MenuContext is Menu with cancellation. Cancellation is checked at row
// boundaries; a cancelled parse returns promptly, discarding partial state.
func (p *Parser) MenuContext(ctx context.Context) (*model.Menu, []Warning, error) {
	result, err := p.ResultContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	return result.Menu, result.Warnings, nil
}

// Result parses the fragments and returns the menu together with
// diagnostics.
func (p *Parser) Result() (*Result, error) {
	return p.ResultContext(context.Background())
}

// ResultContext is Result with cancellation, checked at row boundaries.
func (p *Parser) ResultContext(ctx context.Context) (*Result, error) {
	lay := p.analyzeLayout()
	if lay.LineCount() == 0 {
		return nil, ErrInvalidMenuFormat
	}

	var warnings []Warning
	if lay.Degraded {
		warnings = append(warnings, Warning{
			Stage:   StageLayout,
			Message: "ambiguous column layout, degraded to single-column mode",
		})
	}

	labeled, err := p.classifyRows(ctx, lay)
	if err != nil {
		return nil, err
	}

	kept, noise := splitNoise(labeled)

	assemblerConfig := assemble.DefaultConfig()
	assemblerConfig.LowConfidenceThreshold = p.options.MinimumDishConfidence
	assemblerConfig.EnableCategories = p.options.EnableCategoryDetection
	assemblerConfig.EnableDietary = p.options.EnableDietaryAnalysis
	assemblerConfig.PriceConfig = p.priceConfig()
	assembler := assemble.NewAssemblerWithConfig(assemblerConfig)
	folded := assembler.Fold(kept)

	for _, d := range folded.Dishes {
		if !d.HasPrice() {
			warnings = append(warnings, Warning{
				Stage:   StageAssembly,
				Message: fmt.Sprintf("no price recognized for dish %q", d.Name),
			})
		}
		if p.options.EnableCategoryDetection && d.Category == model.CategoryUnknown {
			warnings = append(warnings, Warning{
				Stage:   StageClassification,
				Message: fmt.Sprintf("unresolved category for dish %q", d.Name),
			})
		}
	}

	builder := assemble.NewBuilderWithConfig(assemble.BuilderConfig{
		MinimumDishConfidence: p.options.MinimumDishConfidence,
		MergeSimilarDishes:    p.options.MergeSimilarDishes,
	})
	menu, err := builder.Build(folded, lay.LineCount())
	if err != nil {
		return nil, err
	}

	return &Result{
		Menu:     menu,
		Noise:    noise,
		Warnings: warnings,
		Stages: StageConfidence{
			Layout:         p.layoutConfidence(lay),
			Classification: meanLabelConfidence(kept),
			Assembly:       menu.OverallConfidence,
		},
	}, nil
}

// analyzeLayout runs layout analysis, honoring the layout awareness option
func (p *Parser) analyzeLayout() *layout.Layout {
	config := layout.DefaultConfig()
	if !p.options.EnableLayoutAwareness {
		// A gap can never span the full image width, so this disables
		// column splitting entirely
		config.ColumnGapRatio = 1.0
	}
	return layout.NewAnalyzerWithConfig(config).Analyze(p.fragments)
}

// classifyRows labels every row, checking cancellation and reporting
// progress at each row boundary
func (p *Parser) classifyRows(ctx context.Context, lay *layout.Layout) ([]classify.LabeledLine, error) {
	config := classify.DefaultConfig()
	config.PriceConfig = p.priceConfig()
	classifier := classify.NewClassifierWithConfig(config)

	stats := classifier.Stats(lay.Lines)
	total := len(lay.Lines)

	var labeled []classify.LabeledLine
	for i, line := range lay.Lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		labeled = append(labeled, classifier.ClassifyLine(line, i, stats)...)
		p.observer.Progress(i+1, total)
	}
	return labeled, nil
}

func (p *Parser) priceConfig() price.Config {
	return price.Config{AdvancedFormats: p.options.EnableAdvancedPricing}
}

// splitNoise separates noise rows from the rows that feed assembly
func splitNoise(labeled []classify.LabeledLine) (kept, noise []classify.LabeledLine) {
	for _, l := range labeled {
		if l.Label == classify.LabelNoise {
			noise = append(noise, l)
			continue
		}
		kept = append(kept, l)
	}
	return kept, noise
}

// layoutConfidence is the mean OCR confidence of the fragments, reduced
// slightly when column detection had to degrade
func (p *Parser) layoutConfidence(lay *layout.Layout) float64 {
	if len(p.fragments) == 0 {
		return 0
	}
	total := 0.0
	for _, f := range p.fragments {
		total += f.Confidence
	}
	confidence := total / float64(len(p.fragments))
	if lay.Degraded {
		confidence *= 0.9
	}
	return model.ClampConfidence(confidence)
}

func meanLabelConfidence(labeled []classify.LabeledLine) float64 {
	if len(labeled) == 0 {
		return 0
	}
	total := 0.0
	for _, l := range labeled {
		total += l.Confidence
	}
	return model.ClampConfidence(total / float64(len(labeled)))
}
