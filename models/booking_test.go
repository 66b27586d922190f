package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAmountsTotalsInMinorUnits(t *testing.T) {
	tests := []struct {
		name             string
		price, fee       int64
		wantPrice, total float64
	}{
		{"whole amounts", 100000, 10000, 1000, 1100},
		{"cents that do not add up in floats", 10, 20, 0.1, 0.3},
		{"odd cents", 1999, 200, 19.99, 21.99},
		{"no fee", 2500, 0, 25, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Booking
			b.SetAmounts(tt.price, tt.fee)
			assert.Equal(t, tt.wantPrice, b.Price)
			assert.Equal(t, tt.total, b.TotalAmount)
		})
	}
}
