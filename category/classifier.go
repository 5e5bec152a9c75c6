// Package category maps menu text to a closed set of dish categories using
// keyword dictionaries. The dictionaries are data, not code: extending the
// vocabulary for a new locale needs no new conditionals.
package category

import (
	"strings"

	"github.com/tsawler/carta/model"
)

// categoryKeywords associates a category with the keywords that signal it.
// Order matters: earlier entries win when a text matches several categories,
// so the more specific categories come first.
type categoryKeywords struct {
	category model.Category
	keywords []string
}

// headerKeywords is matched against section header text, where menus use
// plural headings ("APPETIZERS", "MAIN COURSES").
var headerKeywords = []categoryKeywords{
	{model.CategoryAppetizer, []string{"appetizer", "starter", "small plate", "antipasti", "tapas", "entradas", "hors d'oeuvre"}},
	{model.CategorySoup, []string{"soup", "broth", "bisque", "chowder"}},
	{model.CategorySalad, []string{"salad", "greens"}},
	{model.CategoryPasta, []string{"pasta", "noodle", "spaghetti", "risotto"}},
	{model.CategorySeafood, []string{"seafood", "fish", "from the sea", "catch"}},
	{model.CategoryMeat, []string{"steak", "grill", "meat", "from the land", "butcher"}},
	{model.CategoryVegetarian, []string{"vegetarian", "vegan", "plant-based", "garden"}},
	{model.CategoryDessert, []string{"dessert", "sweet", "dolci", "pastry", "postres"}},
	{model.CategoryBeverage, []string{"beverage", "drink", "cocktail", "wine", "beer", "coffee", "tea", "juice", "bebidas"}},
	{model.CategoryMainCourse, []string{"main", "entree", "entrée", "entrees", "entrées", "principal", "plates", "dinner", "lunch"}},
}

// dishKeywords is matched against a dish's own name and description when no
// section header settled the category. These are dish-level words, so the
// vocabulary differs from the header table.
var dishKeywords = []categoryKeywords{
	{model.CategorySoup, []string{"soup", "bisque", "chowder", "broth", "ramen", "pho"}},
	{model.CategorySalad, []string{"salad", "slaw"}},
	{model.CategoryPasta, []string{"pasta", "spaghetti", "penne", "linguine", "fettuccine", "lasagna", "ravioli", "gnocchi", "risotto", "noodle"}},
	{model.CategorySeafood, []string{"salmon", "tuna", "shrimp", "prawn", "lobster", "crab", "scallop", "oyster", "mussel", "calamari", "fish", "cod", "halibut", "octopus"}},
	{model.CategoryMeat, []string{"steak", "beef", "pork", "lamb", "ribeye", "sirloin", "brisket", "ribs", "veal", "chop"}},
	{model.CategoryDessert, []string{"cake", "ice cream", "gelato", "tiramisu", "cheesecake", "brownie", "pie", "tart", "pudding", "sorbet", "mousse", "crème brûlée"}},
	{model.CategoryBeverage, []string{"coffee", "espresso", "latte", "cappuccino", "tea", "juice", "soda", "lemonade", "smoothie", "wine", "beer", "cocktail", "water"}},
	{model.CategoryAppetizer, []string{"wings", "fries", "nachos", "bruschetta", "dip", "spring roll", "dumpling", "edamame"}},
	{model.CategoryVegetarian, []string{"tofu", "veggie", "vegetable", "falafel"}},
	{model.CategoryMainCourse, []string{"chicken", "burger", "sandwich", "pizza", "curry", "stir fry", "roast"}},
}

// Classifier maps menu text to dish categories
type Classifier struct {
	headers []categoryKeywords
	dishes  []categoryKeywords
}

// NewClassifier creates a classifier with the built-in keyword dictionaries
func NewClassifier() *Classifier {
	return &Classifier{
		headers: headerKeywords,
		dishes:  dishKeywords,
	}
}

// FromHeader maps section header text to a category.
// Returns CategoryUnknown when no keyword matches.
func (c *Classifier) FromHeader(text string) model.Category {
	return match(c.headers, text)
}

// FromDish maps a dish's own name and description to a category. This is the
// fallback signal, used when no preceding section header determined one.
// Returns CategoryUnknown when no keyword matches.
func (c *Classifier) FromDish(name, description string) model.Category {
	if cat := match(c.dishes, name); cat != model.CategoryUnknown {
		return cat
	}
	return match(c.dishes, description)
}

// IsHeaderText reports whether the text matches any header keyword. Used as
// a classification hint for short lines.
func (c *Classifier) IsHeaderText(text string) bool {
	return match(c.headers, text) != model.CategoryUnknown
}

func match(table []categoryKeywords, text string) model.Category {
	lowered := strings.ToLower(text)
	for _, entry := range table {
		for _, kw := range entry.keywords {
			if strings.Contains(lowered, kw) {
				return entry.category
			}
		}
	}
	return model.CategoryUnknown
}
