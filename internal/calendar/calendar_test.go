package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"villa_rates/internal/calendar"
	"villa_rates/internal/domain"
)

func d(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name       string
		a1, a2     string
		b1, b2     string
		wantResult bool
	}{
		{"disjoint", "2026-03-01", "2026-03-03", "2026-03-05", "2026-03-06", false},
		{"touching end is inclusive", "2026-03-01", "2026-03-03", "2026-03-03", "2026-03-06", true},
		{"single day inside", "2026-03-01", "2026-03-05", "2026-03-02", "2026-03-02", true},
		{"single day on single day", "2026-03-02", "2026-03-02", "2026-03-02", "2026-03-02", true},
		{"contained", "2026-03-01", "2026-03-31", "2026-03-10", "2026-03-12", true},
		{"before", "2026-03-10", "2026-03-12", "2026-03-01", "2026-03-09", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantResult, calendar.Overlaps(d(tc.a1), d(tc.a2), d(tc.b1), d(tc.b2)))
			assert.Equal(t, tc.wantResult, calendar.Overlaps(d(tc.b1), d(tc.b2), d(tc.a1), d(tc.a2)))
		})
	}
}

func TestNightsBetween(t *testing.T) {
	n, err := calendar.NightsBetween(d("2026-03-02"), d("2026-03-05"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// times of day are ignored, only the calendar dates count
	in := d("2026-03-02").Add(14 * time.Hour)
	out := d("2026-03-04").Add(11 * time.Hour)
	n, err = calendar.NightsBetween(in, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = calendar.NightsBetween(d("2026-03-02").Add(8*time.Hour), d("2026-03-04").Add(20*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n, "a late checkout is not an extra night")

	_, err = calendar.NightsBetween(d("2026-03-05").Add(8*time.Hour), d("2026-03-05").Add(20*time.Hour))
	assert.NotNil(t, domain.IsValidationError(err))

	_, err = calendar.NightsBetween(d("2026-03-05"), d("2026-03-05"))
	require.Error(t, err)
	assert.NotNil(t, domain.IsValidationError(err))

	_, err = calendar.NightsBetween(d("2026-03-05"), d("2026-03-02"))
	assert.NotNil(t, domain.IsValidationError(err))
}

func TestForEachNight(t *testing.T) {
	var got []string
	calendar.ForEachNight(d("2026-02-27"), 3, func(i int, night time.Time) {
		got = append(got, night.Format("2006-01-02"))
	})
	assert.Equal(t, []string{"2026-02-27", "2026-02-28", "2026-03-01"}, got)
}

func TestWeekends(t *testing.T) {
	assert.True(t, calendar.IsWeekend(d("2026-03-07")))  // Saturday
	assert.True(t, calendar.IsWeekend(d("2026-03-08")))  // Sunday
	assert.False(t, calendar.IsWeekend(d("2026-03-06"))) // Friday

	assert.True(t, calendar.SeasonWeekend.Contains(time.Friday))
	assert.False(t, calendar.SeasonWeekend.Contains(time.Thursday))

	// Fri, Sat, Sun nights
	assert.Equal(t, 2, calendar.CountNights(d("2026-03-06"), 3, calendar.DefaultWeekend))
	assert.Equal(t, 0, calendar.CountNights(d("2026-03-02"), 3, calendar.DefaultWeekend))
}

func TestDaysUntil(t *testing.T) {
	now := d("2026-02-01").Add(12 * time.Hour)
	assert.Equal(t, 29, calendar.DaysUntil(now, d("2026-03-02")))
	assert.Equal(t, 0, calendar.DaysUntil(now, now))
	assert.Less(t, calendar.DaysUntil(now, d("2026-01-20")), 0)
}

func TestRangeContains(t *testing.T) {
	window := calendar.Range{Start: d("2026-03-01"), End: d("2026-03-10")}
	assert.True(t, window.Contains(calendar.Range{Start: d("2026-03-01"), End: d("2026-03-10")}))
	assert.True(t, window.Contains(calendar.Range{Start: d("2026-03-02"), End: d("2026-03-05")}))
	assert.False(t, window.Contains(calendar.Range{Start: d("2026-03-08"), End: d("2026-03-11")}))
	assert.True(t, window.ContainsDate(d("2026-03-10").Add(23*time.Hour)))
	assert.False(t, window.ContainsDate(d("2026-03-11")))
}
