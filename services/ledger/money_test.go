package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(100000), ToMinorUnits(1000))
	assert.Equal(t, int64(1999), ToMinorUnits(19.99))
	assert.Equal(t, int64(1), ToMinorUnits(0.005))
	assert.Equal(t, 19.99, FromMinorUnits(1999))
}

func TestFeeFor(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		price   int64
		want    int64
	}{
		{"ten percent", 10, 100000, 10000},
		{"rounds half up", 10, 1005, 101},
		{"rounds down", 10, 1004, 100},
		{"zero percent", 0, 5000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FeePolicy{Percent: tt.percent}.FeeFor(tt.price))
		})
	}
	assert.Equal(t, int64(10000), DefaultFeePolicy.FeeFor(100000))
}
