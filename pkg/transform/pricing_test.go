package transform

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1299", "1299.00"},
		{"1299,5", "1299.50"},
		{" 99.90 ", "99.90"},
		{"1 299,00", "1299.00"},
		{"", "0.00"},
		{"abc", "0.00"},
		{"-5", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPrice(ParsePrice(tt.raw)))
		})
	}
}

func TestDefaultOutletPolicy(t *testing.T) {
	policy := DefaultOutletPolicy()
	d := decimal.RequireFromString

	tests := []struct {
		name      string
		retail    string
		wholesale string
		want      string
	}{
		{"ratio below 20% uses 2.5", "1000", "150", "375.00"},
		{"ratio below 30% uses 2.2", "1000", "250", "550.00"},
		{"ratio below 40% uses 2.0", "1000", "350", "700.00"},
		{"ratio at 40% uses 1.8 and is capped", "1000", "400", "700.00"},
		{"high ratio capped at 70% of retail", "1000", "600", "700.00"},
		{"boundary 20% falls to next tier", "1000", "200", "440.00"},
		{"no wholesale uses the cap", "999", "0", "699.30"},
		{"no retail", "0", "100", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.OutletPrice(d(tt.retail), d(tt.wholesale))
			assert.Equal(t, tt.want, FormatPrice(got))
		})
	}
}

func TestParseStock(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"nostock", 0},
		{"InStock", 50},
		{"lowstock", 10},
		{"12", 12},
		{"7.9", 7},
		{"3,2", 3},
		{"-4", 0},
		{"many", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStock(tt.raw, DefaultStockWords))
		})
	}
}
