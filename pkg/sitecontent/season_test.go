package sitecontent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrentSeason(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		expected int
	}{
		{"mid-season fall", time.Date(2025, time.October, 12, 0, 0, 0, 0, time.UTC), 2025},
		{"new year before rollover", time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), 2025},
		{"day before rollover", time.Date(2026, time.February, 28, 23, 59, 59, 0, time.UTC), 2025},
		{"rollover day", time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), 2026},
		{"summer offseason", time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC), 2026},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CurrentSeason(tt.now))
		})
	}
}
