package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"industry_backend/internal/shared/istclock"
)

func TestTimeUntilNext8AM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		now      time.Time
		expected time.Duration
	}{
		{
			name:     "before 8am same day",
			now:      time.Date(2024, 1, 4, 6, 30, 0, 0, istclock.IST),
			expected: 90 * time.Minute,
		},
		{
			name:     "exactly 8am rolls to next day",
			now:      time.Date(2024, 1, 4, 8, 0, 0, 0, istclock.IST),
			expected: 24 * time.Hour,
		},
		{
			name:     "evening",
			now:      time.Date(2024, 1, 4, 20, 0, 0, 0, istclock.IST),
			expected: 12 * time.Hour,
		},
		{
			name:     "UTC input is converted to IST",
			now:      time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), // 05:30 IST
			expected: 150 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, TimeUntilNext8AM(tt.now))
		})
	}
}

func TestTimeUntilNext8AM_AlwaysPositive(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, istclock.IST)
	for i := 0; i < 48; i++ {
		d := TimeUntilNext8AM(start.Add(time.Duration(i) * 30 * time.Minute))
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 24*time.Hour)
	}
}
