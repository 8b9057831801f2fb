package transform

import (
	"math"
	"strconv"
	"strings"
)

// DefaultStockWords maps vendor stock words to quantities.
var DefaultStockWords = map[string]int{
	"nostock":  0,
	"lowstock": 10,
	"instock":  50,
}

// ParseStock reads a stock level: a known word, an integer, or a decimal
// that is truncated. Anything else, and any negative value, is zero.
func ParseStock(raw string, words map[string]int) int {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0
	}
	if n, ok := words[s]; ok {
		return n
	}
	if n, err := strconv.Atoi(s); err == nil {
		return max(n, 0)
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil && f > 0 && f < math.MaxInt32 {
		return int(f)
	}
	return 0
}
