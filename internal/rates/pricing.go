package rates

import (
	"fmt"
	"sort"
	"time"

	"villa_rates/internal/calendar"
	"villa_rates/internal/domain"
)

type quoteContext struct {
	stay     stay
	base     float64
	settings domain.Settings
	demand   DemandEstimate
	avail    Availability
	config   domain.ConfigSet
}

// pricingState is threaded through the stages by value. record never mutates its receiver.
type pricingState struct {
	price          float64 // running price per night
	b              domain.PriceBreakdown
	weekendCovered bool
}

type stage struct {
	name string
	run  func(qc *quoteContext, s pricingState) pricingState
}

// pipeline is the fixed precedence of pricing stages.
var pipeline = []stage{
	{"demand", demandStage},
	{"rules", ruleStage},
	{"weekend", weekendStage},
	{"holiday", holidayStage},
	{"blackout", blackoutStage},
	{"season", seasonStage},
	{"group", groupStage},
}

func runStages(qc *quoteContext, init pricingState, stages []stage) pricingState {
	s := init
	for _, st := range stages {
		s = st.run(qc, s)
	}
	return s
}

type bucket int

const (
	bucketNone bucket = iota
	bucketDemand
	bucketSeasonal
	bucketWeekend
	bucketOccupancy
	bucketEarlyBird
	bucketLastMinute
	bucketGroup
	bucketLongStay
	bucketPromo
)

// add books a signed amount. Discount buckets store the magnitude of a reduction.
func (k bucket) add(b *domain.PriceBreakdown, amount float64) {
	switch k {
	case bucketDemand:
		b.DemandAdjustment += amount
	case bucketSeasonal:
		b.SeasonalAdjustment += amount
	case bucketWeekend:
		b.WeekendAdjustment += amount
	case bucketOccupancy:
		b.OccupancyAdjustment += amount
	case bucketEarlyBird:
		b.EarlyBirdDiscount -= amount
	case bucketLastMinute:
		b.LastMinuteDiscount -= amount
	case bucketGroup:
		b.GroupDiscount -= amount
	case bucketLongStay:
		b.LongStayDiscount -= amount
	case bucketPromo:
		b.PromoDiscount -= amount
	case bucketNone:
	}
}

func bucketFor(c domain.RuleCategory) bucket {
	switch c {
	case domain.CategoryWeekend:
		return bucketWeekend
	case domain.CategorySeasonal, domain.CategoryHoliday:
		return bucketSeasonal
	case domain.CategoryEarlyBird:
		return bucketEarlyBird
	case domain.CategoryLastMinute:
		return bucketLastMinute
	case domain.CategoryOccupancy:
		return bucketOccupancy
	case domain.CategoryPromo:
		return bucketPromo
	default:
		return bucketNone
	}
}

func (s pricingState) record(a domain.AppliedAdjustment, k bucket, nights int) pricingState {
	out := s
	out.b.Adjustments = make([]domain.AppliedAdjustment, len(s.b.Adjustments), len(s.b.Adjustments)+1)
	copy(out.b.Adjustments, s.b.Adjustments)
	out.b.Adjustments = append(out.b.Adjustments, decorate(a))
	k.add(&out.b, a.Amount)
	out.price += a.Amount / float64(nights)
	return out
}

func (s pricingState) degrade(source string) pricingState {
	out := s
	out.b.DegradedSources = append(append([]string(nil), s.b.DegradedSources...), source)
	return out
}

// strategyAmount turns a strategy/value pair into a whole-stay amount seeded from seed per night.
func strategyAmount(st domain.Strategy, value, seed float64, nights int) (amount float64, pct *float64, ok bool) {
	n := float64(nights)
	switch st {
	case domain.StrategyPercentage:
		p := value
		return seed * (value / 100) * n, &p, true
	case domain.StrategyFixedAmount:
		return value * n, nil, true
	case domain.StrategyMultiplier:
		p := (value - 1) * 100
		return seed * (value - 1) * n, &p, true
	}
	return 0, nil, false
}

func demandStage(qc *quoteContext, s pricingState) pricingState {
	if !qc.settings.Enabled {
		return s
	}
	var profile *domain.DemandPricingProfile
	for i := range qc.config.DemandProfiles {
		if qc.config.DemandProfiles[i].Tier == qc.demand.Tier {
			profile = &qc.config.DemandProfiles[i]
			break
		}
	}
	if profile == nil || !profile.IsActive {
		return s
	}
	n := qc.stay.nights
	amount := qc.base * (profile.Multiplier - 1) * float64(n)
	pct := (profile.Multiplier - 1) * 100
	name := profile.Name
	if name == "" {
		name = "Demand pricing (" + qc.demand.Tier.String() + ")"
	}
	out := s.record(domain.AppliedAdjustment{
		RuleID:      "demand:" + qc.demand.Tier.String(),
		Name:        name,
		Category:    domain.CategoryOccupancy,
		Amount:      amount,
		Percentage:  &pct,
		Description: fmt.Sprintf("%.0f%% of inventory booked for these dates", qc.demand.BookingRate),
	}, bucketDemand, n)
	// demand resets the running price to base × multiplier
	out.price = qc.base * profile.Multiplier
	return out
}

func ruleStage(qc *quoteContext, s pricingState) pricingState {
	active := make([]domain.PricingRule, 0, len(qc.config.Rules))
	for _, r := range qc.config.Rules {
		if r.IsActive {
			active = append(active, r)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Priority > active[j].Priority })

	n := qc.stay.nights
	for _, r := range active {
		if !ruleApplies(r, qc.stay) {
			continue
		}
		amount, pct, ok := strategyAmount(r.Strategy, r.Value, s.price, n)
		if !ok {
			s = s.degrade("rule:" + r.ID)
			continue
		}
		amount = clampAmount(amount, s.price, n, r.MinPrice, r.MaxPrice)
		s = s.record(domain.AppliedAdjustment{
			RuleID:      r.ID,
			Name:        r.Name,
			Category:    r.Category,
			Amount:      amount,
			Percentage:  pct,
			Description: r.Description,
		}, bucketFor(r.Category), n)
		if r.Category == domain.CategoryWeekend {
			s.weekendCovered = true
		}
	}
	return s
}

func ruleApplies(r domain.PricingRule, st stay) bool {
	if !inScope(r.RoomIDs, st.req.RoomID) {
		return false
	}
	if w := r.DateWindow; w != nil {
		window := calendar.Range{Start: calendar.Date(w.Start), End: calendar.Date(w.End)}
		if !window.Contains(calendar.Range{Start: st.checkIn, End: st.checkOut}) {
			return false
		}
	}
	c := r.Conditions
	if c == nil {
		return true
	}
	return within(st.nights, c.MinNights, c.MaxNights) &&
		within(st.req.GuestCount, c.MinOccupancy, c.MaxOccupancy) &&
		within(st.leadDays, c.MinAdvanceDays, c.MaxAdvanceDays)
}

func within(v int, lo, hi *int) bool {
	if lo != nil && v < *lo {
		return false
	}
	if hi != nil && v > *hi {
		return false
	}
	return true
}

// clampAmount recomputes amount so price + amount/nights stays inside [minPrice, maxPrice].
func clampAmount(amount, price float64, nights int, minPrice, maxPrice *float64) float64 {
	n := float64(nights)
	next := price + amount/n
	if minPrice != nil && next < *minPrice {
		amount = (*minPrice - price) * n
	}
	if maxPrice != nil && next > *maxPrice {
		amount = (*maxPrice - price) * n
	}
	return amount
}

func weekendStage(qc *quoteContext, s pricingState) pricingState {
	if s.weekendCovered {
		return s
	}
	pct := qc.settings.EffectiveWeekendSurcharge()
	weekendNights := calendar.CountNights(qc.stay.checkIn, qc.stay.nights, calendar.DefaultWeekend)
	if weekendNights == 0 || pct == 0 {
		return s
	}
	return s.record(domain.AppliedAdjustment{
		RuleID:      "weekend:default",
		Name:        "Weekend surcharge",
		Category:    domain.CategoryWeekend,
		Amount:      qc.base * pct / 100 * float64(weekendNights),
		Percentage:  &pct,
		Description: fmt.Sprintf("%d weekend night(s)", weekendNights),
	}, bucketWeekend, qc.stay.nights)
}

func holidayStage(qc *quoteContext, s pricingState) pricingState {
	if len(qc.avail.MatchedHolidays) == 0 {
		return s
	}
	n := qc.stay.nights
	calendar.ForEachNight(qc.stay.checkIn, n, func(_ int, night time.Time) {
		for _, h := range qc.avail.MatchedHolidays {
			if h.PriceMultiplier <= 1 {
				continue
			}
			span := calendar.Range{Start: h.Date, End: h.LastDay()}
			if !span.ContainsDate(night) {
				continue
			}
			pct := (h.PriceMultiplier - 1) * 100
			s = s.record(domain.AppliedAdjustment{
				RuleID:      "holiday:" + h.ID,
				Name:        h.Name,
				Category:    domain.CategoryHoliday,
				Amount:      qc.base * (h.PriceMultiplier - 1),
				Percentage:  &pct,
				Description: "holiday rate on " + night.Format("2006-01-02"),
			}, bucketSeasonal, n)
		}
	})
	return s
}

func blackoutStage(qc *quoteContext, s pricingState) pricingState {
	n := qc.stay.nights
	for _, b := range qc.avail.MatchedBlackouts {
		adj := b.PriceAdjustment
		if !b.AllowBooking || adj == nil || !adj.Enabled {
			continue
		}
		amount, pct, ok := strategyAmount(adj.Strategy, adj.Value, qc.base, n)
		if !ok {
			s = s.degrade("blackout:" + b.ID)
			continue
		}
		s = s.record(domain.AppliedAdjustment{
			RuleID:      "blackout:" + b.ID,
			Name:        b.Title,
			Category:    domain.CategorySeasonal,
			Amount:      amount,
			Percentage:  pct,
			Description: "restricted period adjustment",
		}, bucketSeasonal, n)
	}
	return s
}

func seasonStage(qc *quoteContext, s pricingState) pricingState {
	season := qc.avail.ActiveSeason
	if season == nil {
		return s
	}
	n := qc.stay.nights
	amount, pct, ok := strategyAmount(season.Strategy, season.BaseAdjustment, qc.base, n)
	if !ok {
		return s.degrade("season:" + season.ID)
	}
	desc := "seasonal rate"
	// the weekend multiplier looks at the check-in day only
	if season.WeekendMultiplier != nil && calendar.SeasonWeekend.Contains(qc.stay.checkIn.Weekday()) {
		amount *= *season.WeekendMultiplier
		desc = fmt.Sprintf("seasonal rate, weekend arrival ×%g", *season.WeekendMultiplier)
	}
	s = s.record(domain.AppliedAdjustment{
		RuleID:      "season:" + season.ID,
		Name:        season.Name,
		Category:    domain.CategorySeasonal,
		Amount:      amount,
		Percentage:  pct,
		Description: desc,
	}, bucketSeasonal, n)

	if season.EnableEarlyBird && season.EarlyBirdDiscount > 0 && qc.stay.leadDays >= season.EarlyBirdDays {
		p := season.EarlyBirdDiscount
		s = s.record(domain.AppliedAdjustment{
			RuleID:      "season:" + season.ID + ":early_bird",
			Name:        "Early bird discount",
			Category:    domain.CategoryEarlyBird,
			Amount:      -s.price * float64(n) * p / 100,
			Percentage:  &p,
			Description: fmt.Sprintf("booked %d or more days ahead", season.EarlyBirdDays),
		}, bucketEarlyBird, n)
	}

	if tier, ok := longStayTier(season.LongStayDiscount, n); ok {
		p := tier.Discount
		s = s.record(domain.AppliedAdjustment{
			RuleID:      fmt.Sprintf("season:%s:long_stay:%d", season.ID, tier.Nights),
			Name:        "Long stay discount",
			Category:    domain.CategoryOther,
			Amount:      -s.price * float64(n) * p / 100,
			Percentage:  &p,
			Description: fmt.Sprintf("%d or more nights", tier.Nights),
		}, bucketLongStay, n)
	}
	return s
}

// longStayTier picks the tier with the largest threshold not above nights.
func longStayTier(tiers []domain.LongStayTier, nights int) (domain.LongStayTier, bool) {
	if len(tiers) == 0 {
		return domain.LongStayTier{}, false
	}
	sorted := append([]domain.LongStayTier(nil), tiers...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Nights > sorted[j].Nights })
	for _, t := range sorted {
		if t.Nights <= nights && t.Discount > 0 {
			return t, true
		}
	}
	return domain.LongStayTier{}, false
}

func groupStage(qc *quoteContext, s pricingState) pricingState {
	minGuests := qc.settings.EffectiveGroupMinGuests()
	if qc.stay.req.GuestCount < minGuests {
		return s
	}
	p := qc.settings.EffectiveGroupDiscount()
	if p <= 0 {
		return s
	}
	n := qc.stay.nights
	return s.record(domain.AppliedAdjustment{
		RuleID:      "group:default",
		Name:        "Group discount",
		Category:    domain.CategoryOther,
		Amount:      -s.price * float64(n) * p / 100,
		Percentage:  &p,
		Description: fmt.Sprintf("%d or more guests", minGuests),
	}, bucketGroup, n)
}

type badge struct{ icon, color string }

var badges = map[domain.RuleCategory]badge{
	domain.CategoryWeekend:    {"calendar-weekend", "orange"},
	domain.CategorySeasonal:   {"sun", "amber"},
	domain.CategoryHoliday:    {"gift", "red"},
	domain.CategoryEarlyBird:  {"bird", "green"},
	domain.CategoryLastMinute: {"clock", "teal"},
	domain.CategoryOccupancy:  {"trending-up", "purple"},
	domain.CategoryPromo:      {"tag", "pink"},
}

// decorate fills display metadata; increases and decreases get different defaults.
func decorate(a domain.AppliedAdjustment) domain.AppliedAdjustment {
	if a.Icon != "" {
		return a
	}
	if bd, ok := badges[a.Category]; ok {
		a.Icon, a.Color = bd.icon, bd.color
		return a
	}
	if a.Amount < 0 {
		a.Icon, a.Color = "percent", "green"
	} else {
		a.Icon, a.Color = "plus", "gray"
	}
	return a
}
