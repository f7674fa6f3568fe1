package rates

import (
	"time"

	"villa_rates/internal/calendar"
	"villa_rates/internal/domain"
)

// DemandEstimate is the demand tier plus the numbers it came from.
type DemandEstimate struct {
	Tier         domain.DemandTier `json:"tier"`
	BookingRate  float64           `json:"bookingRate"`
	Overlapping  int               `json:"overlapping"`
	RoomsInScope int               `json:"roomsInScope"`
	// NoInventory is set when there were no rooms to divide by; Tier is then VeryLow.
	NoInventory bool `json:"noInventory,omitempty"`
}

// EstimateDemand counts non-cancelled bookings overlapping [checkIn, checkOut]. With roomID set
// only that room's bookings count; otherwise the whole inventory does.
func EstimateDemand(checkIn, checkOut time.Time, roomID string, bookings []domain.Booking, roomsInScope int) DemandEstimate {
	est := DemandEstimate{Tier: domain.DemandVeryLow, RoomsInScope: roomsInScope}
	for _, b := range bookings {
		if b.Status == domain.BookingCancelled {
			continue
		}
		if roomID != "" && b.RoomID != roomID {
			continue
		}
		if calendar.Overlaps(checkIn, checkOut, calendar.Date(b.CheckIn), calendar.Date(b.CheckOut)) {
			est.Overlapping++
		}
	}
	if roomsInScope <= 0 {
		est.NoInventory = true
		return est
	}
	est.BookingRate = float64(est.Overlapping) / float64(roomsInScope) * 100
	est.Tier = TierForRate(est.BookingRate)
	return est
}

// TierForRate maps an occupancy percentage onto a demand tier.
func TierForRate(rate float64) domain.DemandTier {
	switch {
	case rate >= 95:
		return domain.DemandVeryHigh
	case rate >= 80:
		return domain.DemandHigh
	case rate >= 60:
		return domain.DemandMedium
	case rate >= 40:
		return domain.DemandLow
	default:
		return domain.DemandVeryLow
	}
}
