// Package price recognizes prices in menu text. Detection is a pure
// function from text to zero or more recognized price values; malformed
// numerics yield nothing rather than a guess.
package price

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tsawler/carta/model"
)

// symbolSpec maps a currency symbol to its ISO 4217 code. The table is data,
// not code: adding a locale's symbol needs no new conditionals.
type symbolSpec struct {
	symbol string
	code   string
}

var currencySymbols = []symbolSpec{
	{symbol: "$", code: "USD"},
	{symbol: "€", code: "EUR"},
	{symbol: "£", code: "GBP"},
	{symbol: "¥", code: "JPY"},
}

// Confidence levels assigned by format. Bare numbers without a currency
// symbol are plausible prices but also plausible street numbers, so they
// score lower.
const (
	confSymbolDecimal = 0.95
	confSymbolInteger = 0.85
	confBareDecimal   = 0.6
)

// Config holds configuration for price detection
type Config struct {
	// AdvancedFormats enables symbol-after placement, thousands separators,
	// and comma decimal separators. When false, only a leading currency
	// symbol with a plain decimal amount is recognized.
	AdvancedFormats bool
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{AdvancedFormats: true}
}

// Match is one recognized price and its location in the source text
type Match struct {
	// Start and End are byte offsets of the match in the input string
	Start int
	End   int

	// Value is the recognized price
	Value model.PriceValue
}

// Detector recognizes prices in text
type Detector struct {
	config  Config
	pattern *regexp.Regexp
}

// NewDetector creates a price detector with default configuration
func NewDetector() *Detector {
	return NewDetectorWithConfig(DefaultConfig())
}

// NewDetectorWithConfig creates a price detector with custom configuration
func NewDetectorWithConfig(config Config) *Detector {
	return &Detector{
		config:  config,
		pattern: buildPattern(config),
	}
}

// buildPattern assembles the candidate regexp from the symbol table
func buildPattern(config Config) *regexp.Regexp {
	symbols := make([]string, 0, len(currencySymbols))
	for _, s := range currencySymbols {
		symbols = append(symbols, regexp.QuoteMeta(s.symbol))
	}
	symClass := "[" + strings.Join(symbols, "") + "]"

	if !config.AdvancedFormats {
		// Leading symbol, plain amount with optional two-digit decimals
		return regexp.MustCompile(symClass + ` ?\d+(?:\.\d{2})?`)
	}

	// Optional symbol before or after a numeric token. The numeric token is
	// validated separately; the regexp only finds candidates.
	return regexp.MustCompile(
		`(?:` + symClass + ` ?)?\d(?:[\d.,]*\d)?(?: ?` + symClass + `)?`,
	)
}

// Detect recognizes all prices in the given text, in order of appearance.
// Text with no recognizable price returns nil.
func (d *Detector) Detect(text string) []model.PriceValue {
	matches := d.Matches(text)
	if len(matches) == 0 {
		return nil
	}
	values := make([]model.PriceValue, len(matches))
	for i, m := range matches {
		values[i] = m.Value
	}
	return values
}

// Matches recognizes all prices in the given text along with their byte
// offsets, for callers that need to split a line at a price boundary.
func (d *Detector) Matches(text string) []Match {
	locs := d.pattern.FindAllStringIndex(text, -1)
	if locs == nil {
		return nil
	}

	var matches []Match
	for _, loc := range locs {
		raw := text[loc[0]:loc[1]]
		value, ok := d.parse(raw)
		if !ok {
			continue
		}
		matches = append(matches, Match{Start: loc[0], End: loc[1], Value: value})
	}
	return matches
}

// Coverage returns the fraction of the text's non-space bytes covered by
// recognized prices. A value near 1 means the text is a price and nothing
// else.
func (d *Detector) Coverage(text string) float64 {
	nonSpace := 0
	for _, r := range text {
		if r != ' ' && r != '\t' {
			nonSpace++
		}
	}
	if nonSpace == 0 {
		return 0
	}

	covered := 0
	for _, m := range d.Matches(text) {
		for _, r := range text[m.Start:m.End] {
			if r != ' ' && r != '\t' {
				covered++
			}
		}
	}

	ratio := float64(covered) / float64(nonSpace)
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

// parse validates a candidate substring and converts it to a PriceValue.
// Returns false for malformed numerics and for bare integers, which are more
// often street numbers or counts than prices.
func (d *Detector) parse(raw string) (model.PriceValue, bool) {
	numeric := strings.TrimSpace(raw)
	symbol := ""

	for _, s := range currencySymbols {
		if strings.HasPrefix(numeric, s.symbol) {
			symbol = s.symbol
			numeric = strings.TrimSpace(strings.TrimPrefix(numeric, s.symbol))
			break
		}
		if strings.HasSuffix(numeric, s.symbol) {
			symbol = s.symbol
			numeric = strings.TrimSpace(strings.TrimSuffix(numeric, s.symbol))
			break
		}
	}

	amount, hasDecimals, ok := parseAmount(numeric)
	if !ok || amount < 0 {
		return model.PriceValue{}, false
	}

	confidence := confBareDecimal
	switch {
	case symbol != "" && hasDecimals:
		confidence = confSymbolDecimal
	case symbol != "":
		confidence = confSymbolInteger
	case !hasDecimals:
		// Bare integer: too ambiguous to call a price
		return model.PriceValue{}, false
	}

	return model.PriceValue{
		RawText:        strings.TrimSpace(raw),
		Amount:         amount,
		CurrencySymbol: symbol,
		Confidence:     confidence,
	}, true
}

// SymbolCode returns the ISO 4217 code for a recognized currency symbol,
// or the empty string for an unknown symbol.
func SymbolCode(symbol string) string {
	for _, s := range currencySymbols {
		if s.symbol == symbol {
			return s.code
		}
	}
	return ""
}

// parseAmount converts a numeric string that may contain thousands
// separators and either a dot or a comma decimal separator. A separator is
// only treated as decimal when exactly two digits follow it. Returns the
// amount, whether a decimal part was present, and whether the string was
// well formed.
func parseAmount(s string) (float64, bool, bool) {
	if s == "" {
		return 0, false, false
	}

	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	decimalSep := byte(0)
	switch {
	case dots == 0 && commas == 0:
		// Plain integer
	case dots > 0 && commas > 0:
		// Mixed separators: the rightmost one must be the decimal separator
		lastDot := strings.LastIndexByte(s, '.')
		lastComma := strings.LastIndexByte(s, ',')
		if lastDot > lastComma {
			if dots > 1 {
				return 0, false, false
			}
			decimalSep = '.'
		} else {
			if commas > 1 {
				return 0, false, false
			}
			decimalSep = ','
		}
	case dots == 1 && isDecimalTail(s, '.'):
		decimalSep = '.'
	case commas == 1 && isDecimalTail(s, ','):
		decimalSep = ','
	}

	intPart := s
	fracPart := ""
	if decimalSep != 0 {
		idx := strings.LastIndexByte(s, decimalSep)
		intPart = s[:idx]
		fracPart = s[idx+1:]
		if len(fracPart) != 2 {
			return 0, false, false
		}
	}

	// Whatever separators remain in the integer part must be thousands
	// separators with valid 3-digit grouping
	grouped, ok := stripThousands(intPart)
	if !ok {
		return 0, false, false
	}

	numeric := grouped
	if fracPart != "" {
		numeric += "." + fracPart
	}

	amount, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return 0, false, false
	}

	return amount, fracPart != "", true
}

// isDecimalTail reports whether the single occurrence of sep is followed by
// exactly two digits at the end of the string
func isDecimalTail(s string, sep byte) bool {
	idx := strings.LastIndexByte(s, sep)
	return idx >= 0 && len(s)-idx-1 == 2
}

// stripThousands removes thousands separators, validating 3-digit grouping.
// "1,234,567" is valid; "1,23" and "12,3456" are not.
func stripThousands(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	if !strings.ContainsAny(s, ".,") {
		return s, true
	}

	sep := byte('.')
	if strings.ContainsRune(s, ',') {
		if strings.ContainsRune(s, '.') {
			// Two different separators left in the integer part
			return "", false
		}
		sep = ','
	}

	groups := strings.Split(s, string(sep))
	for i, g := range groups {
		if i == 0 {
			if len(g) == 0 || len(g) > 3 {
				return "", false
			}
		} else if len(g) != 3 {
			return "", false
		}
		for j := 0; j < len(g); j++ {
			if g[j] < '0' || g[j] > '9' {
				return "", false
			}
		}
	}

	return strings.Join(groups, ""), true
}
