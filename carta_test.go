package carta

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/tsawler/carta/model"
)

// menuRows builds one OCR fragment per row of menu text, stacked top to
// bottom the way a straight-on photo would produce them
func menuRows(texts ...string) []model.TextFragment {
	fragments := make([]model.TextFragment, len(texts))
	for i, text := range texts {
		fragments[i] = model.TextFragment{
			Text:          text,
			BBox:          model.NewBBox(0.1, 0.05+0.05*float64(i), 0.4, 0.02),
			Confidence:    0.9,
			SequenceIndex: i,
		}
	}
	return fragments
}

func sampleMenu() []model.TextFragment {
	return menuRows(
		"APPETIZERS",
		"Caesar Salad",
		"$12.99",
		"Crisp romaine, parmesan",
		"MAIN COURSES",
		"Grilled Salmon",
		"$24.99",
	)
}

func TestParse_SampleMenu(t *testing.T) {
	menu, warnings, err := Parse(sampleMenu())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(menu.Dishes) != 2 {
		t.Fatalf("Expected 2 dishes, got %d", len(menu.Dishes))
	}

	// Grilled Salmon has no description penalty, so it outranks Caesar Salad
	salmon, caesar := menu.Dishes[0], menu.Dishes[1]
	if salmon.Name != "Grilled Salmon" || caesar.Name != "Caesar Salad" {
		t.Fatalf("Dish order = %q, %q", menu.Dishes[0].Name, menu.Dishes[1].Name)
	}

	if caesar.Price == nil || caesar.Price.Amount != 12.99 || caesar.Price.CurrencySymbol != "$" {
		t.Errorf("Caesar price = %+v, want $12.99", caesar.Price)
	}
	if caesar.Description != "Crisp romaine, parmesan" {
		t.Errorf("Caesar description = %q", caesar.Description)
	}
	if caesar.Category != model.CategoryAppetizer {
		t.Errorf("Caesar category = %v, want Appetizer", caesar.Category)
	}

	if salmon.Price == nil || salmon.Price.Amount != 24.99 {
		t.Errorf("Salmon price = %+v, want $24.99", salmon.Price)
	}
	if salmon.Category != model.CategoryMainCourse {
		t.Errorf("Salmon category = %v, want MainCourse", salmon.Category)
	}

	if len(warnings) != 0 {
		t.Errorf("Unexpected warnings: %v", warnings)
	}
	if menu.OverallConfidence <= 0.4 || menu.OverallConfidence > 1 {
		t.Errorf("OverallConfidence = %v", menu.OverallConfidence)
	}
}

func TestParse_Idempotent(t *testing.T) {
	fragments := sampleMenu()

	first, _, err := Parse(fragments)
	if err != nil {
		t.Fatalf("First parse failed: %v", err)
	}
	second, _, err := Parse(fragments)
	if err != nil {
		t.Fatalf("Second parse failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("Identical input must produce identical menus")
	}
}

func TestParse_NoFragments(t *testing.T) {
	_, _, err := Parse(nil)
	if !errors.Is(err, ErrInvalidMenuFormat) {
		t.Errorf("Parse(nil) = %v, want ErrInvalidMenuFormat", err)
	}
}

func TestParse_OnlyNoise(t *testing.T) {
	_, _, err := Parse(menuRows("~~", "**", "%%"))
	if !errors.Is(err, ErrNoDishesFound) {
		t.Errorf("Parse of pure noise = %v, want ErrNoDishesFound", err)
	}
}

func TestParse_MixedNameAndPriceRow(t *testing.T) {
	menu, _, err := Parse(menuRows(
		"Wings $10.99",
		"Mozzarella Sticks $8.99",
	))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(menu.Dishes) != 2 {
		t.Fatalf("Expected 2 dishes from mixed rows, got %d", len(menu.Dishes))
	}

	byName := make(map[string]model.Dish)
	for _, d := range menu.Dishes {
		byName[d.Name] = d
	}
	wings, ok := byName["Wings"]
	if !ok {
		t.Fatalf("No dish named Wings in %v", menu.Dishes)
	}
	if wings.Price == nil || wings.Price.Amount != 10.99 {
		t.Errorf("Wings price = %+v, want 10.99", wings.Price)
	}
	if wings.Category != model.CategoryAppetizer {
		t.Errorf("Wings category = %v, want Appetizer", wings.Category)
	}
}

func TestParse_RestaurantName(t *testing.T) {
	fragments := []model.TextFragment{
		{Text: "Luigi's Trattoria", BBox: model.NewBBox(0.2, 0.02, 0.6, 0.05), Confidence: 0.9, SequenceIndex: 0},
	}
	fragments = append(fragments, menuRows(
		"Margherita Pizza",
		"$14.00",
		"Spaghetti Carbonara",
		"$16.00",
	)...)
	for i := 1; i < len(fragments); i++ {
		fragments[i].BBox.Y += 0.15
		fragments[i].SequenceIndex = i
	}

	menu, _, err := Parse(fragments)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if menu.RestaurantName != "Luigi's Trattoria" {
		t.Errorf("RestaurantName = %q, want Luigi's Trattoria", menu.RestaurantName)
	}
}

func TestParser_MinConfidence(t *testing.T) {
	_, _, err := FromFragments(sampleMenu()).MinConfidence(0.95).Menu()
	if !errors.Is(err, ErrNoDishesFound) {
		t.Errorf("Strict minimum = %v, want ErrNoDishesFound", err)
	}
}

func TestParser_WithoutCategories(t *testing.T) {
	menu, _, err := FromFragments(sampleMenu()).WithoutCategories().Menu()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for _, d := range menu.Dishes {
		if d.Category != model.CategoryUnknown {
			t.Errorf("Dish %q category = %v, want Unknown", d.Name, d.Category)
		}
	}
}

func TestParser_WithoutDietaryAnalysis(t *testing.T) {
	fragments := menuRows("Spicy Tofu Bowl", "$11.00")

	menu, _, err := FromFragments(fragments).WithoutDietaryAnalysis().Menu()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(menu.Dishes[0].DietaryTags) != 0 || len(menu.Dishes[0].Allergens) != 0 {
		t.Error("Dietary analysis ran while disabled")
	}

	menu, _, err = FromFragments(fragments).Menu()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(menu.Dishes[0].DietaryTags) == 0 {
		t.Error("Expected dietary tags with analysis enabled")
	}
}

func TestParser_BasicPricing(t *testing.T) {
	fragments := menuRows("Bratwurst Platter", "12,99 €")

	menu, _, err := FromFragments(fragments).Menu()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if menu.Dishes[0].Price == nil || menu.Dishes[0].Price.Amount != 12.99 {
		t.Errorf("Advanced pricing: price = %+v, want 12.99", menu.Dishes[0].Price)
	}

	menu, warnings, err := FromFragments(fragments).BasicPricing().Menu()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if menu.Dishes[0].Price != nil {
		t.Errorf("Basic pricing must not parse %q", "12,99 €")
	}

	found := false
	for _, w := range warnings {
		if strings.Contains(w.Message, "no price recognized") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a no-price warning, got %v", warnings)
	}
}

func TestParser_ChainDoesNotMutateReceiver(t *testing.T) {
	base := FromFragments(sampleMenu())
	strict := base.MinConfidence(0.95)

	if _, _, err := base.Menu(); err != nil {
		t.Errorf("Base parser affected by derived chain: %v", err)
	}
	if _, _, err := strict.Menu(); !errors.Is(err, ErrNoDishesFound) {
		t.Errorf("Derived parser = %v, want ErrNoDishesFound", err)
	}
}

func TestParser_MenuContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := FromFragments(sampleMenu()).MenuContext(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Cancelled parse = %v, want context.Canceled", err)
	}
}

func TestParser_ProgressReporting(t *testing.T) {
	var done []int
	var totals []int

	observer := ProgressFunc(func(d, total int) {
		done = append(done, d)
		totals = append(totals, total)
	})

	_, _, err := FromFragments(sampleMenu()).WithProgress(observer).Menu()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(done) != 7 {
		t.Fatalf("Expected 7 progress calls, got %d", len(done))
	}
	for i, d := range done {
		if d != i+1 {
			t.Errorf("Progress call %d reported done=%d", i, d)
		}
		if totals[i] != 7 {
			t.Errorf("Progress call %d reported total=%d", i, totals[i])
		}
	}
}

func TestParser_WithProgressNil(t *testing.T) {
	if _, _, err := FromFragments(sampleMenu()).WithProgress(nil).Menu(); err != nil {
		t.Errorf("Nil observer must be tolerated: %v", err)
	}
}

func TestParser_ResultDiagnostics(t *testing.T) {
	fragments := menuRows(
		"Caesar Salad",
		"$12.99",
		"~~*~~",
	)

	result, err := FromFragments(fragments).Result()
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}

	if len(result.Noise) != 1 {
		t.Errorf("Noise rows = %d, want 1", len(result.Noise))
	}
	if result.Stages.Layout <= 0 || result.Stages.Layout > 1 {
		t.Errorf("Layout stage confidence = %v", result.Stages.Layout)
	}
	if result.Stages.Classification <= 0 || result.Stages.Classification > 1 {
		t.Errorf("Classification stage confidence = %v", result.Stages.Classification)
	}
	if result.Stages.Assembly != result.Menu.OverallConfidence {
		t.Error("Assembly stage confidence must equal the menu's overall confidence")
	}
}

func TestParser_MergeSimilar(t *testing.T) {
	fragments := menuRows(
		"Caesar Salad",
		"$12.99",
		"Caesar Salad",
		"Crisp romaine, parmesan",
	)

	menu, _, err := FromFragments(fragments).MergeSimilar().Menu()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(menu.Dishes) != 1 {
		t.Fatalf("Expected merged dish, got %d", len(menu.Dishes))
	}
	dish := menu.Dishes[0]
	if dish.Price == nil || dish.Description == "" {
		t.Errorf("Merged dish missing fields: %+v", dish)
	}
}

func TestMustMenu(t *testing.T) {
	menu := MustMenu(Parse(sampleMenu()))
	if menu == nil || len(menu.Dishes) != 2 {
		t.Fatalf("MustMenu returned %+v", menu)
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected panic on error")
		}
	}()
	MustMenu(Parse(nil))
}

func TestFormatWarnings(t *testing.T) {
	warnings := []Warning{
		{Stage: StageLayout, Message: "one"},
		{Stage: StageAssembly, Message: "two"},
	}
	formatted := FormatWarnings(warnings)
	if !strings.Contains(formatted, "one") || !strings.Contains(formatted, "two") {
		t.Errorf("FormatWarnings = %q", formatted)
	}
	if FormatWarnings(nil) != "" {
		t.Error("FormatWarnings(nil) should be empty")
	}
}
