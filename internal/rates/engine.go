// Package rates is the rate and availability resolution engine. It performs no I/O and keeps no
// state between calls: every evaluation is a pure function of the request, the configuration
// snapshot and the clock, so one Engine may serve any number of goroutines.
package rates

import (
	"math"
	"time"

	"villa_rates/internal/calendar"
	"villa_rates/internal/domain"
	"villa_rates/internal/pkg/clock"
)

// Snapshot is the read-only configuration an evaluation runs against.
type Snapshot struct {
	Room       domain.Room
	TotalRooms int
	Bookings   []domain.Booking
	Config     domain.ConfigSet
	// Degraded names the record sources that could not be read and were treated as empty.
	Degraded []string
}

// Evaluation reports availability and price together. The quote is filled even when the stay
// is not bookable so it can still be displayed.
type Evaluation struct {
	Availability Availability          `json:"availability"`
	Quote        domain.PriceBreakdown `json:"quote"`
}

type Engine struct {
	clock clock.Clock
}

func NewEngine(c clock.Clock) *Engine {
	if c == nil {
		c = clock.NewRealClock()
	}
	return &Engine{clock: c}
}

// stay is a validated request with its derived calendar facts.
type stay struct {
	req      domain.StayRequest
	checkIn  time.Time
	checkOut time.Time
	nights   int
	leadDays int
	location string
}

func (e *Engine) prepare(req domain.StayRequest, snap Snapshot) (stay, error) {
	if err := domain.ValidateStay(req); err != nil {
		return stay{}, err
	}
	if snap.Room.ID != req.RoomID {
		return stay{}, &domain.NotFoundError{Kind: "room", ID: req.RoomID}
	}
	base := snap.Room.BasePrice
	if math.IsNaN(base) || math.IsInf(base, 0) || base < 0 {
		verr := domain.NewValidationError()
		verr.Add("basePrice", "must be a finite, non-negative amount")
		return stay{}, verr
	}
	nights, err := calendar.NightsBetween(req.CheckIn, req.CheckOut)
	if err != nil {
		return stay{}, err
	}
	loc := req.LocationID
	if loc == "" {
		loc = snap.Room.LocationID
	}
	return stay{
		req:      req,
		checkIn:  calendar.Date(req.CheckIn),
		checkOut: calendar.Date(req.CheckOut),
		nights:   nights,
		leadDays: calendar.DaysUntil(e.clock.Now(), req.CheckIn),
		location: loc,
	}, nil
}

// ResolveAvailability decides whether the stay is bookable and merges its restrictions.
func (e *Engine) ResolveAvailability(req domain.StayRequest, snap Snapshot) (Availability, error) {
	st, err := e.prepare(req, snap)
	if err != nil {
		return Availability{}, err
	}
	return resolveAvailability(st, snap.Config), nil
}

// QuotePrice prices the stay. It is computable for unavailable stays too.
func (e *Engine) QuotePrice(req domain.StayRequest, snap Snapshot) (domain.PriceBreakdown, error) {
	st, err := e.prepare(req, snap)
	if err != nil {
		return domain.PriceBreakdown{}, err
	}
	return e.quote(st, snap, resolveAvailability(st, snap.Config))
}

// Evaluate runs availability and pricing in one pass.
func (e *Engine) Evaluate(req domain.StayRequest, snap Snapshot) (Evaluation, error) {
	st, err := e.prepare(req, snap)
	if err != nil {
		return Evaluation{}, err
	}
	avail := resolveAvailability(st, snap.Config)
	q, err := e.quote(st, snap, avail)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{Availability: avail, Quote: q}, nil
}

func (e *Engine) quote(st stay, snap Snapshot, avail Availability) (domain.PriceBreakdown, error) {
	settings := snap.Config.Settings

	scopeRoom, rooms := "", snap.TotalRooms
	if settings.DemandScope == domain.DemandScopeRoom {
		scopeRoom, rooms = st.req.RoomID, 1
	}
	demand := EstimateDemand(st.checkIn, st.checkOut, scopeRoom, snap.Bookings, rooms)

	qc := &quoteContext{
		stay:     st,
		base:     snap.Room.BasePrice,
		settings: settings,
		demand:   demand,
		avail:    avail,
		config:   snap.Config,
	}
	init := pricingState{
		price: qc.base,
		b: domain.PriceBreakdown{
			BasePricePerNight: qc.base,
			Nights:            st.nights,
			Subtotal:          qc.base * float64(st.nights),
			Adjustments:       []domain.AppliedAdjustment{},
			DemandTier:        demand.Tier,
		},
	}
	if len(snap.Degraded) > 0 {
		init.b.DegradedSources = append([]string(nil), snap.Degraded...)
	}
	if demand.NoInventory {
		init.b.DegradedSources = append(init.b.DegradedSources, "demand:no_inventory")
	}

	final := runStages(qc, init, pipeline)
	return aggregate(final.b, settings)
}
