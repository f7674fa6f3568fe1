package domain

// AppliedAdjustment is one itemised line of a quote. Amount is signed: discounts are negative.
type AppliedAdjustment struct {
	RuleID      string       `json:"ruleId"`
	Name        string       `json:"name"`
	Category    RuleCategory `json:"category"`
	Amount      float64      `json:"amount"`
	Percentage  *float64     `json:"percentage,omitempty"`
	Description string       `json:"description"`
	Icon        string       `json:"icon,omitempty"`
	Color       string       `json:"color,omitempty"`
}

// PriceBreakdown is the categorised accounting of a quote. Discount buckets hold magnitudes.
type PriceBreakdown struct {
	BasePricePerNight float64             `json:"basePricePerNight"`
	Nights            int                 `json:"nights"`
	Subtotal          float64             `json:"subtotal"`
	Adjustments       []AppliedAdjustment `json:"appliedAdjustments"`

	DemandAdjustment    float64 `json:"demandAdjustment"`
	SeasonalAdjustment  float64 `json:"seasonalAdjustment"`
	WeekendAdjustment   float64 `json:"weekendAdjustment"`
	OccupancyAdjustment float64 `json:"occupancyAdjustment"`
	EarlyBirdDiscount   float64 `json:"earlyBirdDiscount"`
	LastMinuteDiscount  float64 `json:"lastMinuteDiscount"`
	GroupDiscount       float64 `json:"groupDiscount"`
	LongStayDiscount    float64 `json:"longStayDiscount"`
	PromoDiscount       float64 `json:"promoDiscount"`

	TotalAdjustments         float64 `json:"totalAdjustments"`
	TotalDiscounts           float64 `json:"totalDiscounts"`
	SubtotalAfterAdjustments float64 `json:"subtotalAfterAdjustments"`
	Taxes                    float64 `json:"taxes"`
	FinalPrice               float64 `json:"finalPrice"`

	DemandTier      DemandTier `json:"demandTier"`
	DegradedSources []string   `json:"degradedSources,omitempty"`
}

// Restrictions is the merged stay constraint set. Nil pointers mean no source defined one.
type Restrictions struct {
	MinimumStay            *int `json:"minimumStay,omitempty"`
	MaximumStay            *int `json:"maximumStay,omitempty"`
	AdvanceBookingRequired *int `json:"advanceBookingRequired,omitempty"`
}
