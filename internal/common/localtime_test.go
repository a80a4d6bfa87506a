package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocalNow(t *testing.T) {
	tests := []struct {
		name        string
		utc         string
		offsetHours int
		wantClock   string
		wantDate    string
	}{
		{
			name:        "moscow offset",
			utc:         "2024-03-10T18:30:00Z",
			offsetHours: 3,
			wantClock:   "21:30",
			wantDate:    "2024-03-10",
		},
		{
			name:        "offset rolls over midnight",
			utc:         "2024-03-10T22:15:00Z",
			offsetHours: 7,
			wantClock:   "05:15",
			wantDate:    "2024-03-11",
		},
		{
			name:        "negative offset rolls back a day",
			utc:         "2024-03-10T01:00:00Z",
			offsetHours: -5,
			wantClock:   "20:00",
			wantDate:    "2024-03-09",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now, err := time.Parse(time.RFC3339, tt.utc)
			assert.NoError(t, err)

			local := LocalNow(now, tt.offsetHours)
			assert.Equal(t, tt.wantClock, ClockString(local))
			assert.Equal(t, tt.wantDate, DateString(local))
		})
	}
}

func TestSameDate(t *testing.T) {
	a := time.Date(2024, 3, 10, 0, 0, 1, 0, time.UTC)
	b := time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC)
	c := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDate(a, b))
	assert.False(t, SameDate(b, c))
}
