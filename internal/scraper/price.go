package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

var nonPriceRe = regexp.MustCompile(`[^\d.,]`)

// CleanPrice parses a store price label such as "1 299,00 zł" or
// "1.299,00 PLN". Only the last separator is kept as the decimal point.
// Unparseable input yields 0.
func CleanPrice(raw string) float64 {
	clean := nonPriceRe.ReplaceAllString(raw, "")
	clean = strings.ReplaceAll(clean, ",", ".")
	if n := strings.Count(clean, "."); n > 1 {
		clean = strings.Replace(clean, ".", "", n-1)
	}
	if clean == "" {
		return 0
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return v
}

// priceValue accepts the price field of a SerpAPI result, which is either
// a number or a label.
func priceValue(v any) float64 {
	switch p := v.(type) {
	case float64:
		return p
	case string:
		return CleanPrice(p)
	default:
		return 0
	}
}
