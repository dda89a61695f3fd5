package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartOfDay(t *testing.T) {
	cases := []struct {
		now    time.Time
		expect time.Time
	}{
		{
			now:    time.Date(2024, time.August, 26, 13, 45, 12, 0, Location),
			expect: time.Date(2024, time.August, 26, 0, 0, 0, 0, Location),
		},
		{
			now:    time.Date(2024, time.August, 26, 0, 0, 0, 0, Location),
			expect: time.Date(2024, time.August, 26, 0, 0, 0, 0, Location),
		},
		{
			// 2am UTC is still the previous day in Toronto
			now:    time.Date(2024, time.September, 3, 2, 0, 0, 0, time.UTC),
			expect: time.Date(2024, time.September, 2, 0, 0, 0, 0, Location),
		},
	}

	for _, test := range cases {
		require.Equal(t, test.expect, StartOfDay(test.now))
	}
}
