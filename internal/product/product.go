package product

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SearchProduct is one purchasable item returned by the search service.
// URL is unique within a single result set.
type SearchProduct struct {
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	URL       string  `json:"url"`
	Image     string  `json:"image,omitempty"`
	Platform  string  `json:"platform,omitempty"`
	Rating    string  `json:"rating,omitempty"`
	Condition string  `json:"condition,omitempty"`
}

// MaxStars is the size of the rating scale shown in the detail panel.
const MaxStars = 5

// PriceLabel formats the price the way product cards display it.
func (p SearchProduct) PriceLabel() string {
	return fmt.Sprintf("$%.2f", p.Price)
}

// Stars returns how many of MaxStars are filled for the product rating.
// Ratings such as "4.7" or "4.7 out of 5" are accepted; anything else yields 0.
func (p SearchProduct) Stars() int {
	fields := strings.Fields(p.Rating)
	if len(fields) == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	n := int(math.Floor(v))
	if n < 0 {
		return 0
	}
	if n > MaxStars {
		return MaxStars
	}
	return n
}

// URLs returns the URL of every product in order.
func URLs(products []SearchProduct) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.URL)
	}
	return out
}
