package assemble

import (
	"errors"
	"sort"
	"strings"

	"github.com/tsawler/carta/model"
)

// ErrNoDishesFound is returned when no dish survived the confidence filter.
// The caller may retry with different OCR or preprocessing settings; this
// package never retries.
var ErrNoDishesFound = errors.New("no dishes found in menu text")

// ErrInvalidMenuFormat is returned when layout analysis produced no usable
// rows at all, typically because the OCR stage recognized nothing.
var ErrInvalidMenuFormat = errors.New("invalid menu format: no usable text layout")

// BuilderConfig holds configuration for menu building
type BuilderConfig struct {
	// MinimumDishConfidence filters out dishes below this confidence
	// (default: 0.4)
	MinimumDishConfidence float64

	// MergeSimilarDishes folds dishes with matching normalized names into
	// one record, keeping the higher-confidence one
	MergeSimilarDishes bool
}

// DefaultBuilderConfig returns sensible default configuration
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		MinimumDishConfidence: 0.4,
		MergeSimilarDishes:    false,
	}
}

// Builder aggregates assembled dishes into the final Menu
type Builder struct {
	config BuilderConfig
}

// NewBuilder creates a menu builder with default configuration
func NewBuilder() *Builder {
	return NewBuilderWithConfig(DefaultBuilderConfig())
}

// NewBuilderWithConfig creates a menu builder with custom configuration
func NewBuilderWithConfig(config BuilderConfig) *Builder {
	return &Builder{config: config}
}

// Build filters, sorts, and aggregates the assembly result into a Menu.
// It returns ErrInvalidMenuFormat when layout analysis found no rows, and
// ErrNoDishesFound when no dish survives the confidence filter.
func (b *Builder) Build(result Result, lineCount int) (*model.Menu, error) {
	if lineCount == 0 {
		return nil, ErrInvalidMenuFormat
	}

	dishes := result.Dishes
	if b.config.MergeSimilarDishes {
		dishes = mergeSimilar(dishes)
	}

	kept := make([]model.Dish, 0, len(dishes))
	for _, d := range dishes {
		if d.Confidence >= b.config.MinimumDishConfidence {
			kept = append(kept, d)
		}
	}

	if len(kept) == 0 {
		return nil, ErrNoDishesFound
	}

	// Descending confidence, then original document order
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Confidence != kept[j].Confidence {
			return kept[i].Confidence > kept[j].Confidence
		}
		return kept[i].Source.First < kept[j].Source.First
	})

	return &model.Menu{
		Dishes:            kept,
		RestaurantName:    result.RestaurantName,
		OverallConfidence: overallConfidence(kept),
	}, nil
}

// overallConfidence is the fragment-count-weighted mean of dish confidences
func overallConfidence(dishes []model.Dish) float64 {
	totalWeight := 0.0
	total := 0.0
	for _, d := range dishes {
		weight := float64(d.FragmentCount)
		if weight <= 0 {
			weight = 1
		}
		total += d.Confidence * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}
	return model.ClampConfidence(total / totalWeight)
}

// mergeSimilar folds dishes whose normalized names match into a single
// record: the higher-confidence record wins, and dietary tags, allergens,
// and missing fields are unioned in from the duplicates.
func mergeSimilar(dishes []model.Dish) []model.Dish {
	merged := make([]model.Dish, 0, len(dishes))
	index := make(map[string]int)

	for _, d := range dishes {
		key := strings.ToLower(strings.TrimSpace(d.Name))
		at, exists := index[key]
		if !exists {
			index[key] = len(merged)
			merged = append(merged, d)
			continue
		}

		kept, other := merged[at], d
		if other.Confidence > kept.Confidence {
			kept, other = other, kept
		}

		if kept.Description == "" {
			kept.Description = other.Description
		}
		if kept.Price == nil {
			kept.Price = other.Price
		}
		if kept.Category == model.CategoryUnknown {
			kept.Category = other.Category
		}
		kept.DietaryTags = unionTags(kept.DietaryTags, other.DietaryTags)
		kept.Allergens = unionAllergens(kept.Allergens, other.Allergens)
		kept.FragmentCount += other.FragmentCount

		merged[at] = kept
	}

	return merged
}

func unionTags(a, b []model.DietaryTag) []model.DietaryTag {
	for _, t := range b {
		found := false
		for _, existing := range a {
			if existing == t {
				found = true
				break
			}
		}
		if !found {
			a = append(a, t)
		}
	}
	return a
}

func unionAllergens(a, b []model.Allergen) []model.Allergen {
	for _, al := range b {
		found := false
		for _, existing := range a {
			if existing == al {
				found = true
				break
			}
		}
		if !found {
			a = append(a, al)
		}
	}
	return a
}
