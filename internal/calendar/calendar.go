// Package calendar holds the date arithmetic shared by availability and pricing.
// All comparisons work on calendar days in UTC and every window is inclusive on both ends.
package calendar

import (
	"math"
	"time"

	"villa_rates/internal/domain"
)

const day = 24 * time.Hour

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether [aStart, aEnd] and [bStart, bEnd] share at least one instant.
// A zero-length window (start == end) is a valid single day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// NightsBetween counts calendar days between the two dates; the time of day is ignored.
// Fewer than one night is a validation error.
func NightsBetween(checkIn, checkOut time.Time) (int, error) {
	diff := Date(checkOut).Sub(Date(checkIn))
	nights := int(math.Ceil(diff.Hours() / 24))
	if nights < 1 {
		verr := domain.NewValidationError()
		verr.Add("checkOut", "must be at least one night after checkIn")
		return 0, verr
	}
	return nights, nil
}

// ForEachNight calls fn with the date of every night of the stay, in order.
func ForEachNight(checkIn time.Time, nights int, fn func(i int, night time.Time)) {
	start := Date(checkIn)
	for i := 0; i < nights; i++ {
		fn(i, start.AddDate(0, 0, i))
	}
}

// DaysUntil is the lead time from now to t, rounded up to whole days. Negative when t is past.
func DaysUntil(now, t time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}

// WeekdaySet is a bitmask of weekdays.
type WeekdaySet uint8

func Weekdays(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s |= 1 << uint(d)
	}
	return s
}

func (s WeekdaySet) Contains(d time.Weekday) bool { return s&(1<<uint(d)) != 0 }

var (
	// DefaultWeekend is what the per-night weekend surcharge counts.
	DefaultWeekend = Weekdays(time.Saturday, time.Sunday)
	// SeasonWeekend is the check-in days that trigger a seasonal weekend multiplier.
	SeasonWeekend = Weekdays(time.Friday, time.Saturday, time.Sunday)
)

func IsWeekend(t time.Time) bool { return DefaultWeekend.Contains(t.Weekday()) }

// CountNights counts the nights of the stay whose weekday is in set.
func CountNights(checkIn time.Time, nights int, set WeekdaySet) int {
	n := 0
	ForEachNight(checkIn, nights, func(_ int, night time.Time) {
		if set.Contains(night.Weekday()) {
			n++
		}
	})
	return n
}

// Range is an inclusive pair of dates.
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) Overlaps(o Range) bool { return Overlaps(r.Start, r.End, o.Start, o.End) }

// Contains reports whether o lies entirely inside r.
func (r Range) Contains(o Range) bool {
	return !o.Start.Before(r.Start) && !o.End.After(r.End)
}

func (r Range) ContainsDate(t time.Time) bool {
	d := Date(t)
	return !d.Before(Date(r.Start)) && !d.After(Date(r.End))
}
