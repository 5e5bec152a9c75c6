// Package dietary tags menu text with dietary properties and potential
// allergens via case-insensitive keyword matching against fixed
// vocabularies.
//
// Matching has no negation handling: "not spicy" still tags spicy. This is
// a documented limitation of keyword matching over noisy OCR text.
package dietary

import (
	"strings"

	"github.com/tsawler/carta/model"
)

// tagKeywords associates a dietary tag with the keywords that signal it
type tagKeywords struct {
	tag      model.DietaryTag
	keywords []string
}

// allergenKeywords associates an allergen with the keywords that signal it
type allergenKeywords struct {
	allergen model.Allergen
	keywords []string
}

var tagVocabulary = []tagKeywords{
	{model.TagVegan, []string{"vegan", "plant-based", "plant based"}},
	{model.TagVegetarian, []string{"vegetarian", "veggie", "meatless"}},
	{model.TagGlutenFree, []string{"gluten-free", "gluten free", "gf"}},
	{model.TagDairyFree, []string{"dairy-free", "dairy free", "non-dairy"}},
	{model.TagSpicy, []string{"spicy", "hot sauce", "chili", "chilli", "jalapeño", "jalapeno", "sriracha", "habanero"}},
	{model.TagHealthy, []string{"healthy", "light", "low-cal", "low cal", "superfood"}},
}

var allergenVocabulary = []allergenKeywords{
	{model.AllergenNuts, []string{"peanut", "almond", "cashew", "walnut", "pecan", "pistachio", "hazelnut", "nuts"}},
	{model.AllergenShellfish, []string{"shrimp", "prawn", "lobster", "crab", "scallop", "oyster", "mussel", "clam", "shellfish"}},
	{model.AllergenDairy, []string{"cheese", "cream", "milk", "butter", "yogurt", "parmesan", "mozzarella", "cheddar"}},
	{model.AllergenGluten, []string{"bread", "pasta", "flour", "wheat", "breaded", "crouton", "bun", "tortilla"}},
	{model.AllergenSoy, []string{"soy", "tofu", "edamame", "miso", "tempeh"}},
	{model.AllergenEgg, []string{"egg", "mayo", "mayonnaise", "aioli", "hollandaise"}},
}

// Tagger detects dietary tags and allergens in menu text
type Tagger struct {
	tags      []tagKeywords
	allergens []allergenKeywords
}

// NewTagger creates a tagger with the built-in vocabularies
func NewTagger() *Tagger {
	return &Tagger{
		tags:      tagVocabulary,
		allergens: allergenVocabulary,
	}
}

// Analyze scans text for dietary tags and allergens. Both result slices
// preserve vocabulary order and contain no duplicates; either may be nil
// when nothing matched.
func (t *Tagger) Analyze(text string) ([]model.DietaryTag, []model.Allergen) {
	lowered := strings.ToLower(text)

	var tags []model.DietaryTag
	for _, entry := range t.tags {
		if containsAny(lowered, entry.keywords) {
			tags = append(tags, entry.tag)
		}
	}

	var allergens []model.Allergen
	for _, entry := range t.allergens {
		if containsAny(lowered, entry.keywords) {
			allergens = append(allergens, entry.allergen)
		}
	}

	return tags, allergens
}

func containsAny(lowered string, keywords []string) bool {
	for _, kw := range keywords {
		if len(kw) <= 2 {
			// Short keywords like "gf" match as whole words only
			if containsWord(lowered, kw) {
				return true
			}
			continue
		}
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// containsWord reports whether lowered contains kw as a whole word
func containsWord(lowered, kw string) bool {
	for _, field := range strings.FieldsFunc(lowered, func(r rune) bool {
		return r == ' ' || r == ',' || r == '(' || r == ')' || r == '.' || r == '/'
	}) {
		if field == kw {
			return true
		}
	}
	return false
}
