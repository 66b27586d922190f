package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddMonths(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 9, 30, 0, 0, time.UTC) }

	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"plain month", day(2025, time.February, 28), 1, day(2025, time.March, 28)},
		{"jan 31 rolls past february", day(2025, time.January, 31), 1, day(2025, time.March, 1)},
		{"jan 30 rolls past short february", day(2025, time.January, 30), 1, day(2025, time.March, 1)},
		{"leap year jan 31", day(2024, time.January, 31), 1, day(2024, time.March, 1)},
		{"leap year jan 29 fits", day(2024, time.January, 29), 1, day(2024, time.February, 29)},
		{"mar 31 into april", day(2025, time.March, 31), 1, day(2025, time.May, 1)},
		{"year boundary", day(2025, time.December, 15), 2, day(2026, time.February, 15)},
		{"three months into february", day(2025, time.November, 30), 3, day(2026, time.March, 1)},
		{"long months keep the day", day(2025, time.October, 31), 2, day(2025, time.December, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonths(tt.start, tt.months))
		})
	}
}
