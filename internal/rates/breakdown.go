package rates

import (
	"math"

	"villa_rates/internal/domain"
)

// aggregate computes the totals, tax and final price. Only FinalPrice is rounded.
func aggregate(b domain.PriceBreakdown, s domain.Settings) (domain.PriceBreakdown, error) {
	// Discount buckets are magnitudes. A discount-category rule that raised the price leaves its
	// bucket negative; that surcharge moves to the adjustment side instead.
	var carried float64
	for _, d := range []*float64{&b.EarlyBirdDiscount, &b.LastMinuteDiscount, &b.GroupDiscount, &b.LongStayDiscount, &b.PromoDiscount} {
		if *d < 0 {
			carried -= *d
			*d = 0
		}
	}
	b.TotalAdjustments = b.DemandAdjustment + b.SeasonalAdjustment + b.WeekendAdjustment + b.OccupancyAdjustment + carried
	b.TotalDiscounts = b.EarlyBirdDiscount + b.LastMinuteDiscount + b.GroupDiscount + b.LongStayDiscount + b.PromoDiscount
	b.SubtotalAfterAdjustments = b.Subtotal + b.TotalAdjustments - b.TotalDiscounts
	b.Taxes = b.SubtotalAfterAdjustments * s.EffectiveTaxRate()

	total := math.Max(b.SubtotalAfterAdjustments+b.Taxes, s.MinPriceFloor)
	if math.IsNaN(total) || math.IsInf(total, 0) {
		verr := domain.NewValidationError()
		verr.Add("finalPrice", "pricing configuration produced a non-finite amount")
		return domain.PriceBreakdown{}, verr
	}
	b.FinalPrice = RoundCurrency(total)
	return b, nil
}

// RoundCurrency rounds to the nearest whole currency unit, halves away from zero.
func RoundCurrency(v float64) float64 {
	return math.Round(v)
}
