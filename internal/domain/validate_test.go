package domain_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"villa_rates/internal/domain"
)

func TestValidateStay(t *testing.T) {
	in := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	err := domain.ValidateStay(domain.StayRequest{RoomID: "v1", CheckIn: in, CheckOut: in.AddDate(0, 0, 2), GuestCount: 1})
	require.NoError(t, err)

	err = domain.ValidateStay(domain.StayRequest{CheckIn: in, CheckOut: in})
	verr := domain.IsValidationError(err)
	require.NotNil(t, verr)
	assert.Contains(t, verr.Fields(), "roomId")
	assert.Contains(t, verr.Fields(), "checkOut")
	assert.Contains(t, verr.Fields(), "guestCount")
	assert.Equal(t, []string{"must be after checkIn"}, verr.Fields()["checkOut"])
	assert.NotContains(t, verr.Fields(), "roomID")
}

func TestValidate_RoomUsesJSONNames(t *testing.T) {
	verr := domain.IsValidationError(domain.Validate(domain.Room{BasePrice: -1}))
	require.NotNil(t, verr)
	assert.Contains(t, verr.Fields(), "id")
	assert.Contains(t, verr.Fields(), "basePrice")
}

func TestValidateConfigSet(t *testing.T) {
	cfg := domain.ConfigSet{
		Rules: []domain.PricingRule{{ID: "r1", Strategy: "double"}},
		Holidays: []domain.HolidayDate{{
			ID: "h1", Date: time.Date(2026, 4, 13, 0, 0, 0, 0, time.UTC), PriceMultiplier: 0.5, MinStayRequired: 1,
		}},
	}
	verr := domain.IsValidationError(domain.Validate(cfg))
	require.NotNil(t, verr)
	assert.Contains(t, verr.Fields(), "rules[0].strategy")
	assert.Contains(t, verr.Fields(), "holidays[0].priceMultiplier")
	assert.NotContains(t, verr.Fields(), "rules[0].Strategy")
}

func TestValidationError(t *testing.T) {
	verr := domain.NewValidationError()
	assert.NoError(t, verr.Err())

	verr.Add("b", "second")
	verr.Add("a", "first")
	verr.Add("a", "again")
	assert.EqualError(t, verr.Err(), "validation failed: a: first; again, b: second")
}

func TestNotFoundError(t *testing.T) {
	var err error = &domain.NotFoundError{Kind: "room", ID: "v9"}
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, `room "v9" not found`, err.Error())
}

func TestDemandTierText(t *testing.T) {
	raw, err := json.Marshal(struct {
		Tier domain.DemandTier `json:"tier"`
	}{domain.DemandVeryHigh})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tier":"veryHigh"}`, string(raw))

	var p domain.DemandPricingProfile
	require.NoError(t, json.Unmarshal([]byte(`{"tier":"medium","multiplier":1.1}`), &p))
	assert.Equal(t, domain.DemandMedium, p.Tier)

	err = json.Unmarshal([]byte(`{"tier":"extreme"}`), &p)
	assert.Error(t, err)

	assert.True(t, domain.DemandLow < domain.DemandHigh)
	assert.Equal(t, "unknown", domain.DemandTier(42).String())
}

func TestSettingsDefaults(t *testing.T) {
	var s domain.Settings
	assert.Equal(t, 0.07, s.EffectiveTaxRate())
	assert.Equal(t, 20.0, s.EffectiveWeekendSurcharge())
	assert.Equal(t, 4, s.EffectiveGroupMinGuests())
	assert.Equal(t, 10.0, s.EffectiveGroupDiscount())

	zero := 0.0
	s.TaxRate = &zero
	assert.Zero(t, s.EffectiveTaxRate())
}
