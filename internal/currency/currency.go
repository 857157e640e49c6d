// Package currency converts amounts using a fixed table of approximate
// rates. It is not a live-rate service.
package currency

import (
	"sort"
	"strings"
)

// FallbackRate is applied to any pair missing from Rates.
const FallbackRate = 1.1

// Rates maps "FROM_TO" to the multiplier applied to an amount in FROM.
var Rates = map[string]float64{
	"USD_EUR": 0.92,
	"EUR_USD": 1.09,
	"USD_GBP": 0.79,
	"GBP_USD": 1.27,
	"USD_JPY": 150.12,
}

// Rate returns the multiplier for from→to and whether it came from the table.
// Codes are case-insensitive. Identical codes are not special-cased: they
// resolve to FallbackRate like any other unknown pair.
func Rate(from, to string) (float64, bool) {
	r, ok := Rates[strings.ToUpper(from)+"_"+strings.ToUpper(to)]
	if !ok {
		return FallbackRate, false
	}
	return r, true
}

// Convert returns amount expressed in to, using Rate.
func Convert(amount float64, from, to string) float64 {
	r, _ := Rate(from, to)
	return amount * r
}

// Pairs lists the known pairs in sorted order.
func Pairs() []string {
	out := make([]string, 0, len(Rates))
	for k := range Rates {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
