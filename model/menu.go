package model

// Category represents the menu category of a dish
type Category int

const (
	CategoryUnknown Category = iota
	CategoryAppetizer
	CategorySoup
	CategorySalad
	CategoryMainCourse
	CategoryPasta
	CategorySeafood
	CategoryMeat
	CategoryVegetarian
	CategoryDessert
	CategoryBeverage
)

func (c Category) String() string {
	switch c {
	case CategoryAppetizer:
		return "Appetizer"
	case CategorySoup:
		return "Soup"
	case CategorySalad:
		return "Salad"
	case CategoryMainCourse:
		return "MainCourse"
	case CategoryPasta:
		return "Pasta"
	case CategorySeafood:
		return "Seafood"
	case CategoryMeat:
		return "Meat"
	case CategoryVegetarian:
		return "Vegetarian"
	case CategoryDessert:
		return "Dessert"
	case CategoryBeverage:
		return "Beverage"
	default:
		return "Unknown"
	}
}

// DietaryTag is a dietary property detected in a dish's text
type DietaryTag string

// Recognized dietary tags
const (
	TagVegetarian DietaryTag = "vegetarian"
	TagVegan      DietaryTag = "vegan"
	TagGlutenFree DietaryTag = "gluten-free"
	TagDairyFree  DietaryTag = "dairy-free"
	TagSpicy      DietaryTag = "spicy"
	TagHealthy    DietaryTag = "healthy"
)

// Allergen is a potential allergen detected in a dish's text
type Allergen string

// Recognized allergens
const (
	AllergenNuts      Allergen = "nuts"
	AllergenShellfish Allergen = "shellfish"
	AllergenDairy     Allergen = "dairy"
	AllergenGluten    Allergen = "gluten"
	AllergenSoy       Allergen = "soy"
	AllergenEgg       Allergen = "egg"
)

// PriceValue represents a price recognized in menu text
type PriceValue struct {
	// RawText is the matched substring exactly as it appeared
	RawText string

	// Amount is the normalized numeric amount (always >= 0)
	Amount float64

	// CurrencySymbol is the currency symbol, if one was present ("$", "€", ...)
	CurrencySymbol string

	// Confidence indicates how well the text matched a known price format (0-1).
	// Bare numbers without a currency symbol score lower.
	Confidence float64
}

// SourceRange identifies the span of layout rows a dish was built from, as
// inclusive row indices in reading order. Both halves of a split row carry
// the same index.
type SourceRange struct {
	First int
	Last  int
}

// Dish is a structured menu item assembled from one or more classified lines.
// Dishes are created once by the assembler's flush step and are immutable
// thereafter.
type Dish struct {
	// Name is the dish name (never empty)
	Name string

	// Description is the dish description, if one was found
	Description string

	// Price is the dish price, if one was found
	Price *PriceValue

	// Category is the menu category (CategoryUnknown when undetermined)
	Category Category

	// DietaryTags are dietary properties detected in the name/description
	DietaryTags []DietaryTag

	// Allergens are potential allergens detected in the name/description
	Allergens []Allergen

	// Confidence is the aggregate confidence in this dish (0-1)
	Confidence float64

	// LowConfidence flags dishes whose confidence fell below the caller's
	// threshold; such dishes are filtered by the menu builder, not here
	LowConfidence bool

	// Source is the range of layout rows this dish was assembled from
	Source SourceRange

	// FragmentCount is the number of OCR fragments contributing to this dish
	FragmentCount int
}

// HasPrice returns true if a price was recognized for this dish
func (d *Dish) HasPrice() bool {
	return d.Price != nil
}

// Menu is the complete structured parse result: the assembled dishes plus
// aggregate metadata. A Menu is created once per parse and owned by the
// calling pipeline.
type Menu struct {
	// Dishes are the structured menu items, sorted by descending confidence
	// and then by original document order
	Dishes []Dish

	// RestaurantName is the detected restaurant name, if any
	RestaurantName string

	// OverallConfidence is the fragment-count-weighted mean of dish
	// confidences (0-1)
	OverallConfidence float64
}

// ClampConfidence clamps a confidence score to the [0,1] range
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
