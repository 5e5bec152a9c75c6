package assemble

import (
	"math"
	"strings"
	"testing"

	"github.com/tsawler/carta/classify"
	"github.com/tsawler/carta/layout"
	"github.com/tsawler/carta/model"
)

// layoutRow builds a single-fragment row carrying the given OCR confidence
func layoutRow(text string, ocrConf float64) layout.LineGroup {
	return layout.LineGroup{
		Fragments:  []model.TextFragment{{Text: text, Confidence: ocrConf}},
		JoinedText: text,
		Confidence: ocrConf,
	}
}

// labeled builds a test line with the given role and confidences
func labeled(text string, label classify.Label, conf, ocrConf float64, sourceIndex int) classify.LabeledLine {
	return classify.LabeledLine{
		Line: layoutRow(text, ocrConf),
		Text: text, Label: label, Confidence: conf, SourceIndex: sourceIndex,
	}
}

func TestFold_NamePriceDescription(t *testing.T) {
	assembler := NewAssembler()
	lines := []classify.LabeledLine{
		labeled("Caesar Salad", classify.LabelDishName, 0.7, 0.9, 0),
		labeled("$12.99", classify.LabelPrice, 0.95, 0.9, 1),
		labeled("Crisp romaine, parmesan", classify.LabelDescription, 0.6, 0.9, 2),
	}

	result := assembler.Fold(lines)
	if len(result.Dishes) != 1 {
		t.Fatalf("Expected 1 dish, got %d", len(result.Dishes))
	}

	dish := result.Dishes[0]
	if dish.Name != "Caesar Salad" {
		t.Errorf("Name = %q, want Caesar Salad", dish.Name)
	}
	if dish.Description != "Crisp romaine, parmesan" {
		t.Errorf("Description = %q", dish.Description)
	}
	if dish.Price == nil {
		t.Fatal("Expected a price")
	}
	if dish.Price.Amount != 12.99 || dish.Price.CurrencySymbol != "$" {
		t.Errorf("Price = %v %v, want 12.99 $", dish.Price.Amount, dish.Price.CurrencySymbol)
	}
	if dish.Source.First != 0 || dish.Source.Last != 2 {
		t.Errorf("Source = %+v, want lines 0-2", dish.Source)
	}
	if dish.LowConfidence {
		t.Error("High-confidence dish should not be flagged")
	}
}

func TestFold_ConfidenceWeighting(t *testing.T) {
	assembler := NewAssembler()

	// All parts present: 0.5*name + 0.3*price + 0.2*desc over weight 1.0.
	// OCR confidence 1.0 leaves the label confidences unchanged.
	lines := []classify.LabeledLine{
		labeled("Caesar Salad", classify.LabelDishName, 0.7, 1.0, 0),
		labeled("$12.99", classify.LabelPrice, 0.95, 1.0, 1),
		labeled("Crisp romaine, parmesan", classify.LabelDescription, 0.6, 1.0, 2),
	}
	result := assembler.Fold(lines)
	want := 0.5*0.7 + 0.3*0.95 + 0.2*0.6
	if got := result.Dishes[0].Confidence; math.Abs(got-want) > 1e-9 {
		t.Errorf("Confidence = %v, want %v", got, want)
	}

	// Name only: the name weight renormalizes to 1
	result = assembler.Fold([]classify.LabeledLine{
		labeled("Caesar Salad", classify.LabelDishName, 0.7, 1.0, 0),
	})
	if got := result.Dishes[0].Confidence; math.Abs(got-0.7) > 1e-9 {
		t.Errorf("Name-only confidence = %v, want 0.7", got)
	}

	// Name and price: weights 0.5 and 0.3 renormalize over 0.8
	result = assembler.Fold([]classify.LabeledLine{
		labeled("Caesar Salad", classify.LabelDishName, 0.7, 1.0, 0),
		labeled("$12.99", classify.LabelPrice, 0.95, 1.0, 1),
	})
	want = (0.5*0.7 + 0.3*0.95) / 0.8
	if got := result.Dishes[0].Confidence; math.Abs(got-want) > 1e-9 {
		t.Errorf("Name-and-price confidence = %v, want %v", got, want)
	}
}

func TestFold_OCRConfidenceBlending(t *testing.T) {
	assembler := NewAssembler()

	result := assembler.Fold([]classify.LabeledLine{
		labeled("Caesar Salad", classify.LabelDishName, 0.8, 0.5, 0),
	})
	if got := result.Dishes[0].Confidence; math.Abs(got-0.4) > 1e-9 {
		t.Errorf("Confidence = %v, want 0.4 (label 0.8 x OCR 0.5)", got)
	}
}

func TestFold_PriceBeforeName_Ignored(t *testing.T) {
	assembler := NewAssembler()
	lines := []classify.LabeledLine{
		labeled("$9.99", classify.LabelPrice, 0.95, 0.9, 0),
		labeled("Garlic Bread", classify.LabelDishName, 0.7, 0.9, 1),
	}

	result := assembler.Fold(lines)
	if len(result.Dishes) != 1 {
		t.Fatalf("Expected 1 dish, got %d", len(result.Dishes))
	}
	if result.Dishes[0].Price != nil {
		t.Error("A price preceding any dish name must not attach to the next dish")
	}
}

func TestFold_SecondPrice_Ignored(t *testing.T) {
	assembler := NewAssembler()
	lines := []classify.LabeledLine{
		labeled("House Red", classify.LabelDishName, 0.7, 0.9, 0),
		labeled("$8.00", classify.LabelPrice, 0.95, 0.9, 1),
		labeled("$30.00", classify.LabelPrice, 0.95, 0.9, 2),
	}

	result := assembler.Fold(lines)
	if len(result.Dishes) != 1 {
		t.Fatalf("Expected 1 dish, got %d", len(result.Dishes))
	}
	if result.Dishes[0].Price == nil || result.Dishes[0].Price.Amount != 8.00 {
		t.Errorf("Price = %+v, want the first price 8.00", result.Dishes[0].Price)
	}
}

func TestFold_NewNameFlushesPending(t *testing.T) {
	assembler := NewAssembler()
	lines := []classify.LabeledLine{
		labeled("Bruschetta", classify.LabelDishName, 0.7, 0.9, 0),
		labeled("Calamari", classify.LabelDishName, 0.7, 0.9, 1),
		labeled("$11.50", classify.LabelPrice, 0.95, 0.9, 2),
	}

	result := assembler.Fold(lines)
	if len(result.Dishes) != 2 {
		t.Fatalf("Expected 2 dishes, got %d", len(result.Dishes))
	}
	if result.Dishes[0].Name != "Bruschetta" || result.Dishes[0].Price != nil {
		t.Errorf("First dish = %q with price %v, want priceless Bruschetta", result.Dishes[0].Name, result.Dishes[0].Price)
	}
	if result.Dishes[1].Name != "Calamari" || result.Dishes[1].Price == nil {
		t.Errorf("Second dish = %q, want Calamari with a price", result.Dishes[1].Name)
	}
}

func TestFold_CategoryPropagation(t *testing.T) {
	assembler := NewAssembler()
	lines := []classify.LabeledLine{
		labeled("DESSERTS", classify.LabelSectionHeader, 0.9, 0.9, 0),
		labeled("Affogato", classify.LabelDishName, 0.7, 0.9, 1),
		labeled("BEVERAGES", classify.LabelSectionHeader, 0.9, 0.9, 2),
		labeled("Affogato Float", classify.LabelDishName, 0.7, 0.9, 3),
	}

	result := assembler.Fold(lines)
	if len(result.Dishes) != 2 {
		t.Fatalf("Expected 2 dishes, got %d", len(result.Dishes))
	}
	if result.Dishes[0].Category != model.CategoryDessert {
		t.Errorf("First dish category = %v, want Dessert", result.Dishes[0].Category)
	}
	if result.Dishes[1].Category != model.CategoryBeverage {
		t.Errorf("Second dish category = %v, want Beverage", result.Dishes[1].Category)
	}
}

func TestFold_CategoryFallbackToDishText(t *testing.T) {
	assembler := NewAssembler()

	// No section header before the dish; its own name decides
	result := assembler.Fold([]classify.LabeledLine{
		labeled("Lobster Bisque", classify.LabelDishName, 0.7, 0.9, 0),
	})
	if result.Dishes[0].Category != model.CategorySoup {
		t.Errorf("Category = %v, want Soup from the dish name", result.Dishes[0].Category)
	}
}

func TestFold_UnknownHeaderResetsCategory(t *testing.T) {
	assembler := NewAssembler()
	lines := []classify.LabeledLine{
		labeled("DESSERTS", classify.LabelSectionHeader, 0.9, 0.9, 0),
		labeled("Tiramisu", classify.LabelDishName, 0.7, 0.9, 1),
		labeled("CHEF'S PICKS", classify.LabelSectionHeader, 0.9, 0.9, 2),
		labeled("Mystery Box", classify.LabelDishName, 0.7, 0.9, 3),
	}

	result := assembler.Fold(lines)
	if result.Dishes[1].Category != model.CategoryUnknown {
		t.Errorf("Category after unrecognized header = %v, want Unknown", result.Dishes[1].Category)
	}
}

func TestFold_RestaurantNameFirstWins(t *testing.T) {
	assembler := NewAssembler()
	lines := []classify.LabeledLine{
		labeled("Luigi's Trattoria", classify.LabelRestaurantInfo, 0.8, 0.9, 0),
		labeled("Est. 1987", classify.LabelRestaurantInfo, 0.7, 0.9, 1),
		labeled("Margherita Pizza", classify.LabelDishName, 0.7, 0.9, 2),
	}

	result := assembler.Fold(lines)
	if result.RestaurantName != "Luigi's Trattoria" {
		t.Errorf("RestaurantName = %q, want the first info line", result.RestaurantName)
	}
}

func TestFold_DescriptionTruncation(t *testing.T) {
	assembler := NewAssembler()

	long := strings.Repeat("tomato basil olive oil ", 40)
	lines := []classify.LabeledLine{
		labeled("Margherita Pizza", classify.LabelDishName, 0.7, 1.0, 0),
		labeled(long, classify.LabelDescription, 0.6, 1.0, 1),
	}

	result := assembler.Fold(lines)
	dish := result.Dishes[0]
	if got := len([]rune(dish.Description)); got != 500 {
		t.Errorf("Description length = %d, want truncation at 500", got)
	}

	// Truncation must not change the dish confidence
	want := (0.5*0.7 + 0.2*0.6) / 0.7
	if math.Abs(dish.Confidence-want) > 1e-9 {
		t.Errorf("Confidence after truncation = %v, want %v", dish.Confidence, want)
	}
}

func TestFold_MultiLineDescription(t *testing.T) {
	assembler := NewAssembler()
	lines := []classify.LabeledLine{
		labeled("Seafood Paella", classify.LabelDishName, 0.7, 0.9, 0),
		labeled("saffron rice, mussels,", classify.LabelDescription, 0.6, 0.9, 1),
		labeled("shrimp and chorizo", classify.LabelDescription, 0.6, 0.9, 2),
	}

	result := assembler.Fold(lines)
	want := "saffron rice, mussels, shrimp and chorizo"
	if result.Dishes[0].Description != want {
		t.Errorf("Description = %q, want %q", result.Dishes[0].Description, want)
	}
}

func TestFold_AllCapsNameNormalized(t *testing.T) {
	assembler := NewAssembler()

	result := assembler.Fold([]classify.LabeledLine{
		labeled("GRILLED  SALMON", classify.LabelDishName, 0.7, 0.9, 0),
	})
	if result.Dishes[0].Name != "Grilled Salmon" {
		t.Errorf("Name = %q, want title-cased Grilled Salmon", result.Dishes[0].Name)
	}
}

func TestFold_MixedCaseNameUntouched(t *testing.T) {
	assembler := NewAssembler()

	result := assembler.Fold([]classify.LabeledLine{
		labeled("Penne all'Arrabbiata", classify.LabelDishName, 0.7, 0.9, 0),
	})
	if result.Dishes[0].Name != "Penne all'Arrabbiata" {
		t.Errorf("Name = %q, mixed case must pass through", result.Dishes[0].Name)
	}
}

func TestFold_DietaryFromNameAndDescription(t *testing.T) {
	assembler := NewAssembler()
	lines := []classify.LabeledLine{
		labeled("Spicy Tofu Bowl", classify.LabelDishName, 0.7, 0.9, 0),
		labeled("with peanut sauce", classify.LabelDescription, 0.6, 0.9, 1),
	}

	result := assembler.Fold(lines)
	dish := result.Dishes[0]

	hasTag := false
	for _, tag := range dish.DietaryTags {
		if tag == model.TagSpicy {
			hasTag = true
		}
	}
	if !hasTag {
		t.Errorf("DietaryTags = %v, want spicy", dish.DietaryTags)
	}

	hasNuts, hasSoy := false, false
	for _, al := range dish.Allergens {
		if al == model.AllergenNuts {
			hasNuts = true
		}
		if al == model.AllergenSoy {
			hasSoy = true
		}
	}
	if !hasNuts || !hasSoy {
		t.Errorf("Allergens = %v, want nuts and soy", dish.Allergens)
	}
}

func TestFold_DisabledFeatures(t *testing.T) {
	config := DefaultConfig()
	config.EnableCategories = false
	config.EnableDietary = false
	assembler := NewAssemblerWithConfig(config)

	lines := []classify.LabeledLine{
		labeled("DESSERTS", classify.LabelSectionHeader, 0.9, 0.9, 0),
		labeled("Spicy Chocolate Cake", classify.LabelDishName, 0.7, 0.9, 1),
	}

	result := assembler.Fold(lines)
	dish := result.Dishes[0]
	if dish.Category != model.CategoryUnknown {
		t.Errorf("Category = %v, want Unknown with categories disabled", dish.Category)
	}
	if len(dish.DietaryTags) != 0 || len(dish.Allergens) != 0 {
		t.Error("Dietary analysis ran while disabled")
	}
}

func TestFold_LowConfidenceFlaggedButRetained(t *testing.T) {
	assembler := NewAssembler()

	result := assembler.Fold([]classify.LabeledLine{
		labeled("Faint Scribble", classify.LabelDishName, 0.5, 0.5, 0),
	})
	if len(result.Dishes) != 1 {
		t.Fatal("Low-confidence dish must be retained by the assembler")
	}
	if !result.Dishes[0].LowConfidence {
		t.Error("Dish below the threshold must be flagged")
	}
}

func TestFold_NoiseSkipped(t *testing.T) {
	assembler := NewAssembler()
	lines := []classify.LabeledLine{
		labeled("Fish Tacos", classify.LabelDishName, 0.7, 0.9, 0),
		labeled("~~*~~", classify.LabelNoise, 0.1, 0.9, 1),
		labeled("$13.00", classify.LabelPrice, 0.95, 0.9, 2),
	}

	result := assembler.Fold(lines)
	if len(result.Dishes) != 1 {
		t.Fatalf("Expected 1 dish, got %d", len(result.Dishes))
	}
	if result.Dishes[0].Price == nil {
		t.Error("Noise between name and price must not break attachment")
	}
}

func TestFold_EmptyInput(t *testing.T) {
	assembler := NewAssembler()
	result := assembler.Fold(nil)
	if len(result.Dishes) != 0 || result.RestaurantName != "" {
		t.Errorf("Fold(nil) = %+v, want empty result", result)
	}
}

func TestFold_DuplicateSuppression(t *testing.T) {
	assembler := NewAssembler()

	// Identical labeled lines at the same source positions collapse to one
	lines := []classify.LabeledLine{
		labeled("Caesar Salad", classify.LabelDishName, 0.7, 0.9, 0),
		labeled("$12.99", classify.LabelPrice, 0.95, 0.9, 1),
		labeled("Caesar Salad", classify.LabelDishName, 0.7, 0.9, 0),
		labeled("$12.99", classify.LabelPrice, 0.95, 0.9, 1),
	}

	result := assembler.Fold(lines)
	if len(result.Dishes) != 1 {
		t.Errorf("Expected duplicate suppression to yield 1 dish, got %d", len(result.Dishes))
	}
}
