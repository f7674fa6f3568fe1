package domain

import "time"

// Strategy is the closed set of ways a rule, blackout or season turns its value into money.
type Strategy string

const (
	StrategyPercentage  Strategy = "percentage"
	StrategyFixedAmount Strategy = "fixedAmount"
	StrategyMultiplier  Strategy = "multiplier"
)

func (s Strategy) Valid() bool {
	switch s {
	case StrategyPercentage, StrategyFixedAmount, StrategyMultiplier:
		return true
	}
	return false
}

type RuleCategory string

const (
	CategoryWeekend    RuleCategory = "weekend"
	CategorySeasonal   RuleCategory = "seasonal"
	CategoryHoliday    RuleCategory = "holiday"
	CategoryEarlyBird  RuleCategory = "earlyBird"
	CategoryLastMinute RuleCategory = "lastMinute"
	CategoryOccupancy  RuleCategory = "occupancy"
	CategoryPromo      RuleCategory = "promo"
	CategoryOther      RuleCategory = "other"
)

// DateWindow is inclusive on both ends.
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// RuleConditions are optional bounds; nil means "not constrained".
type RuleConditions struct {
	MinNights      *int `json:"minNights,omitempty"`
	MaxNights      *int `json:"maxNights,omitempty"`
	MinOccupancy   *int `json:"minOccupancy,omitempty"`
	MaxOccupancy   *int `json:"maxOccupancy,omitempty"`
	MinAdvanceDays *int `json:"minAdvanceDays,omitempty"`
	MaxAdvanceDays *int `json:"maxAdvanceDays,omitempty"`
}

type PricingRule struct {
	ID          string          `json:"id" validate:"required"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Priority    int             `json:"priority"`
	IsActive    bool            `json:"isActive"`
	RoomIDs     []string        `json:"roomIds,omitempty"`
	DateWindow  *DateWindow     `json:"dateWindow,omitempty"`
	Conditions  *RuleConditions `json:"conditions,omitempty"`
	Strategy    Strategy        `json:"strategy" validate:"required,oneof=percentage fixedAmount multiplier"`
	Value       float64         `json:"value"`
	MinPrice    *float64        `json:"minPrice,omitempty"`
	MaxPrice    *float64        `json:"maxPrice,omitempty"`
	Category    RuleCategory    `json:"category"`
}

// DemandTier is ordered: VeryLow < Low < Medium < High < VeryHigh.
type DemandTier int

const (
	DemandVeryLow DemandTier = iota
	DemandLow
	DemandMedium
	DemandHigh
	DemandVeryHigh
)

var demandTierNames = [...]string{"veryLow", "low", "medium", "high", "veryHigh"}

func (t DemandTier) String() string {
	if t < DemandVeryLow || t > DemandVeryHigh {
		return "unknown"
	}
	return demandTierNames[t]
}

func (t DemandTier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *DemandTier) UnmarshalText(b []byte) error {
	tier, ok := ParseDemandTier(string(b))
	if !ok {
		return &ValidationError{fields: map[string][]string{"tier": {"unknown demand tier " + string(b)}}}
	}
	*t = tier
	return nil
}

func ParseDemandTier(s string) (DemandTier, bool) {
	for i, n := range demandTierNames {
		if n == s {
			return DemandTier(i), true
		}
	}
	return DemandVeryLow, false
}

type DemandPricingProfile struct {
	Tier        DemandTier `json:"tier"`
	Multiplier  float64    `json:"multiplier" validate:"gt=0"`
	IsActive    bool       `json:"isActive"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
}

type BlackoutStatus string

const (
	BlackoutActive   BlackoutStatus = "active"
	BlackoutInactive BlackoutStatus = "inactive"
)

type PriceAdjustment struct {
	Enabled  bool     `json:"enabled"`
	Strategy Strategy `json:"strategy"`
	Value    float64  `json:"value"`
}

type BlackoutWindow struct {
	ID                 string           `json:"id" validate:"required"`
	Title              string           `json:"title"`
	StartDate          time.Time        `json:"startDate" validate:"required"`
	EndDate            time.Time        `json:"endDate" validate:"required"`
	Status             BlackoutStatus   `json:"status" validate:"oneof=active inactive"`
	AllowBooking       bool             `json:"allowBooking"`
	RoomIDs            []string         `json:"roomIds,omitempty"`
	LocationIDs        []string         `json:"locationIds,omitempty"`
	MinimumStay        *int             `json:"minimumStay,omitempty"`
	MaximumStay        *int             `json:"maximumStay,omitempty"`
	AdvanceBookingDays *int             `json:"advanceBookingDays,omitempty"`
	PriceAdjustment    *PriceAdjustment `json:"priceAdjustment,omitempty"`
}

// HolidayDate covers Date alone, or Date..EndDate when EndDate is set.
type HolidayDate struct {
	ID              string     `json:"id" validate:"required"`
	Name            string     `json:"name"`
	Date            time.Time  `json:"date" validate:"required"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	IsActive        bool       `json:"isActive"`
	PriceMultiplier float64    `json:"priceMultiplier" validate:"gte=1"`
	MinStayRequired int        `json:"minStayRequired" validate:"gte=1"`
}

// LastDay returns the final covered date.
func (h HolidayDate) LastDay() time.Time {
	if h.EndDate != nil {
		return *h.EndDate
	}
	return h.Date
}

type MaintenanceStatus string

const (
	MaintenanceScheduled  MaintenanceStatus = "scheduled"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCancelled  MaintenanceStatus = "cancelled"
	MaintenanceCompleted  MaintenanceStatus = "completed"
)

type MaintenanceWindow struct {
	ID             string            `json:"id" validate:"required"`
	Title          string            `json:"title"`
	StartDate      time.Time         `json:"startDate" validate:"required"`
	EndDate        time.Time         `json:"endDate" validate:"required"`
	Status         MaintenanceStatus `json:"status"`
	AffectsBooking bool              `json:"affectsBooking"`
	PartialClosure bool              `json:"partialClosure"`
	RoomIDs        []string          `json:"roomIds,omitempty"`
}

type LongStayTier struct {
	Nights   int     `json:"nights" validate:"gte=1"`
	Discount float64 `json:"discount" validate:"gte=0,lte=100"`
}

type SeasonalProfile struct {
	ID                     string         `json:"id" validate:"required"`
	Name                   string         `json:"name"`
	StartDate              time.Time      `json:"startDate" validate:"required"`
	EndDate                time.Time      `json:"endDate" validate:"required"`
	IsActive               bool           `json:"isActive"`
	Strategy               Strategy       `json:"strategy" validate:"required,oneof=percentage fixedAmount multiplier"`
	BaseAdjustment         float64        `json:"baseAdjustment"`
	WeekendMultiplier      *float64       `json:"weekendMultiplier,omitempty"`
	EnableEarlyBird        bool           `json:"enableEarlyBird"`
	EarlyBirdDays          int            `json:"earlyBirdDays"`
	EarlyBirdDiscount      float64        `json:"earlyBirdDiscount" validate:"gte=0,lte=100"`
	LongStayDiscount       []LongStayTier `json:"longStayDiscount,omitempty" validate:"dive"`
	MinimumStay            int            `json:"minimumStay"`
	AdvanceBookingRequired int            `json:"advanceBookingRequired"`
}

type DemandScope string

const (
	DemandScopeInventory DemandScope = "inventory"
	DemandScopeRoom      DemandScope = "room"
)

// Settings is the global pricing switchboard. Zero values fall back to the defaults below.
type Settings struct {
	Enabled                 bool        `json:"enabled"`
	MinPriceFloor           float64     `json:"minPriceFloor"`
	TaxRate                 *float64    `json:"taxRate,omitempty"`
	WeekendSurchargePercent *float64    `json:"weekendSurchargePercent,omitempty"`
	GroupMinGuests          int         `json:"groupMinGuests,omitempty"`
	GroupDiscountPercent    *float64    `json:"groupDiscountPercent,omitempty"`
	DemandScope             DemandScope `json:"demandScope,omitempty"`
}

const (
	DefaultTaxRate                 = 0.07
	DefaultWeekendSurchargePercent = 20.0
	DefaultGroupMinGuests          = 4
	DefaultGroupDiscountPercent    = 10.0
)

func (s Settings) EffectiveTaxRate() float64 {
	if s.TaxRate != nil {
		return *s.TaxRate
	}
	return DefaultTaxRate
}

func (s Settings) EffectiveWeekendSurcharge() float64 {
	if s.WeekendSurchargePercent != nil {
		return *s.WeekendSurchargePercent
	}
	return DefaultWeekendSurchargePercent
}

func (s Settings) EffectiveGroupMinGuests() int {
	if s.GroupMinGuests > 0 {
		return s.GroupMinGuests
	}
	return DefaultGroupMinGuests
}

func (s Settings) EffectiveGroupDiscount() float64 {
	if s.GroupDiscountPercent != nil {
		return *s.GroupDiscountPercent
	}
	return DefaultGroupDiscountPercent
}

// ConfigSet is every externally owned record the engine reads besides rooms and bookings.
type ConfigSet struct {
	Rules          []PricingRule          `json:"rules" validate:"dive"`
	DemandProfiles []DemandPricingProfile `json:"demandProfiles" validate:"dive"`
	Blackouts      []BlackoutWindow       `json:"blackouts" validate:"dive"`
	Holidays       []HolidayDate          `json:"holidays" validate:"dive"`
	Maintenance    []MaintenanceWindow    `json:"maintenance" validate:"dive"`
	Seasons        []SeasonalProfile      `json:"seasons" validate:"dive"`
	Settings       Settings               `json:"settings"`
}
