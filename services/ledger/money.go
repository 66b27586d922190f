package ledger

import "math"

// ToMinorUnits converts a stored major-unit amount into the minor units sent to the ledger.
func ToMinorUnits(major float64) int64 {
	return int64(math.Round(major * 100))
}

// FromMinorUnits converts a ledger amount back into major units for storage.
func FromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}

// FeePolicy is the platform's cut of a booking.
type FeePolicy struct {
	Percent float64
}

// DefaultFeePolicy takes 10% of the booking price.
var DefaultFeePolicy = FeePolicy{Percent: 10}

// FeeFor returns the application fee for a price, both in minor units.
func (p FeePolicy) FeeFor(priceMinor int64) int64 {
	return int64(math.Round(float64(priceMinor) * p.Percent / 100))
}
