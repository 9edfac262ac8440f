package domain

import (
	"fmt"
	"sort"

	"georisk/internal/stream"
)

// PriceBoard is the side-panel market snapshot: precious metal prices in USD
// per troy ounce plus currency rates against USD. It is not a map layer.
type PriceBoard struct {
	Gold        *float64           `json:"gold"`
	Silver      *float64           `json:"silver"`
	Unit        string             `json:"unit"`
	Rates       map[string]float64 `json:"rates"`
	RetrievedAt string             `json:"retrieved_at"`
}

// PriceDigest rounds prices to cents so sub-cent jitter between polls does
// not fire change events.
func PriceDigest(b PriceBoard) uint64 {
	lines := make([]string, 0, len(b.Rates)+2)
	lines = append(lines, "gold|"+formatPrice(b.Gold), "silver|"+formatPrice(b.Silver))

	currencies := make([]string, 0, len(b.Rates))
	for c := range b.Rates {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)
	for _, c := range currencies {
		lines = append(lines, fmt.Sprintf("%s|%.4f", c, b.Rates[c]))
	}
	return stream.HashFields(lines)
}

// PriceSize reports whether the board carries any data at all; an empty
// board behaves like an empty snapshot for polling decisions.
func PriceSize(b PriceBoard) int {
	n := len(b.Rates)
	if b.Gold != nil {
		n++
	}
	if b.Silver != nil {
		n++
	}
	return n
}

func formatPrice(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
