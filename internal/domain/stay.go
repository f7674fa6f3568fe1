package domain

import "time"

// StayRequest is the caller's candidate stay. It is never persisted.
type StayRequest struct {
	RoomID     string    `json:"roomId" validate:"required"`
	CheckIn    time.Time `json:"checkIn" validate:"required"`
	CheckOut   time.Time `json:"checkOut" validate:"required,gtfield=CheckIn"`
	GuestCount int       `json:"guestCount" validate:"min=1"`
	LocationID string    `json:"locationId,omitempty"`
}

// Room is the catalog entry the quote is priced from.
type Room struct {
	ID         string  `json:"id" validate:"required"`
	Name       string  `json:"name"`
	LocationID string  `json:"locationId,omitempty"`
	BasePrice  float64 `json:"basePrice" validate:"gte=0"`
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID       string
	RoomID   string
	CheckIn  time.Time
	CheckOut time.Time
	Status   BookingStatus
}
