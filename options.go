package carta

// ParseOptions holds configuration for menu parsing. The zero value is not
// useful; start from DefaultOptions.
type ParseOptions struct {
	// EnableAdvancedPricing recognizes symbol-after currency placement,
	// thousands separators, and comma decimals (default: true)
	EnableAdvancedPricing bool

	// EnableCategoryDetection classifies dishes into menu categories
	// (default: true)
	EnableCategoryDetection bool

	// EnableDietaryAnalysis tags dishes with dietary properties and
	// allergens (default: true)
	EnableDietaryAnalysis bool

	// MinimumDishConfidence filters out dishes below this confidence
	// (default: 0.4)
	MinimumDishConfidence float64

	// MergeSimilarDishes folds duplicate dishes with matching names into
	// one record (default: false)
	MergeSimilarDishes bool

	// EnableLayoutAwareness enables multi-column layout detection
	// (default: true)
	EnableLayoutAwareness bool
}

// DefaultOptions returns the default parse options
func DefaultOptions() ParseOptions {
	return ParseOptions{
		EnableAdvancedPricing:   true,
		EnableCategoryDetection: true,
		EnableDietaryAnalysis:   true,
		MinimumDishConfidence:   0.4,
		MergeSimilarDishes:      false,
		EnableLayoutAwareness:   true,
	}
}
