package rates

import (
	"fmt"

	"villa_rates/internal/calendar"
	"villa_rates/internal/domain"
)

const maintenanceReason = "room unavailable due to scheduled maintenance"

// Availability is the bookable/blocked decision plus everything that fed it.
type Availability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
	// HardBlocked is set by a closing blackout or a full maintenance closure. Restrictions are
	// not merged for hard-blocked stays.
	HardBlocked        bool                       `json:"hardBlocked,omitempty"`
	Restrictions       *domain.Restrictions       `json:"restrictions,omitempty"`
	MatchedBlackouts   []domain.BlackoutWindow    `json:"matchedBlackouts"`
	MatchedHolidays    []domain.HolidayDate       `json:"matchedHolidays"`
	MatchedMaintenance []domain.MaintenanceWindow `json:"matchedMaintenance"`
	ActiveSeason       *domain.SeasonalProfile    `json:"activeSeason,omitempty"`
}

func resolveAvailability(st stay, cfg domain.ConfigSet) Availability {
	out := Availability{
		Available:          true,
		MatchedBlackouts:   matchBlackouts(st, cfg.Blackouts),
		MatchedHolidays:    matchHolidays(st, cfg.Holidays),
		MatchedMaintenance: matchMaintenance(st, cfg.Maintenance),
		ActiveSeason:       activeSeason(st, cfg.Seasons),
	}

	if reason, blocked := hardBlock(out.MatchedBlackouts, out.MatchedMaintenance); blocked {
		out.Available = false
		out.HardBlocked = true
		out.Reason = reason
		return out
	}

	out.Restrictions = mergeRestrictions(out.MatchedBlackouts, out.MatchedHolidays, out.ActiveSeason)
	if reason, ok := checkRestrictions(st, out.Restrictions); !ok {
		out.Available = false
		out.Reason = reason
	}
	return out
}

func matchBlackouts(st stay, all []domain.BlackoutWindow) []domain.BlackoutWindow {
	out := []domain.BlackoutWindow{}
	for _, b := range all {
		if b.Status != domain.BlackoutActive {
			continue
		}
		if !inScope(b.RoomIDs, st.req.RoomID) || !inScope(b.LocationIDs, st.location) {
			continue
		}
		if calendar.Overlaps(st.checkIn, st.checkOut, calendar.Date(b.StartDate), calendar.Date(b.EndDate)) {
			out = append(out, b)
		}
	}
	return out
}

func matchHolidays(st stay, all []domain.HolidayDate) []domain.HolidayDate {
	out := []domain.HolidayDate{}
	for _, h := range all {
		if !h.IsActive {
			continue
		}
		if calendar.Overlaps(st.checkIn, st.checkOut, calendar.Date(h.Date), calendar.Date(h.LastDay())) {
			out = append(out, h)
		}
	}
	return out
}

func matchMaintenance(st stay, all []domain.MaintenanceWindow) []domain.MaintenanceWindow {
	out := []domain.MaintenanceWindow{}
	for _, m := range all {
		if !m.AffectsBooking {
			continue
		}
		if m.Status == domain.MaintenanceCancelled || m.Status == domain.MaintenanceCompleted {
			continue
		}
		if !inScope(m.RoomIDs, st.req.RoomID) {
			continue
		}
		if calendar.Overlaps(st.checkIn, st.checkOut, calendar.Date(m.StartDate), calendar.Date(m.EndDate)) {
			out = append(out, m)
		}
	}
	return out
}

// activeSeason returns the first active profile overlapping the stay. Configuration import
// rejects overlapping active seasons, so at most one should ever match.
func activeSeason(st stay, all []domain.SeasonalProfile) *domain.SeasonalProfile {
	for i := range all {
		s := all[i]
		if s.IsActive && calendar.Overlaps(st.checkIn, st.checkOut, calendar.Date(s.StartDate), calendar.Date(s.EndDate)) {
			return &s
		}
	}
	return nil
}

func hardBlock(blackouts []domain.BlackoutWindow, maint []domain.MaintenanceWindow) (string, bool) {
	for _, b := range blackouts {
		if !b.AllowBooking {
			if b.Title == "" {
				return "selected dates are not available", true
			}
			return b.Title, true
		}
	}
	for _, m := range maint {
		if !m.PartialClosure {
			return maintenanceReason, true
		}
	}
	return "", false
}

func mergeRestrictions(blackouts []domain.BlackoutWindow, holidays []domain.HolidayDate, season *domain.SeasonalProfile) *domain.Restrictions {
	r := &domain.Restrictions{}
	for _, h := range holidays {
		r.MinimumStay = maxOf(r.MinimumStay, h.MinStayRequired)
	}
	if season != nil {
		if season.MinimumStay > 0 {
			r.MinimumStay = maxOf(r.MinimumStay, season.MinimumStay)
		}
		if season.AdvanceBookingRequired > 0 {
			r.AdvanceBookingRequired = maxOf(r.AdvanceBookingRequired, season.AdvanceBookingRequired)
		}
	}
	for _, b := range blackouts {
		if b.MinimumStay != nil {
			r.MinimumStay = maxOf(r.MinimumStay, *b.MinimumStay)
		}
		if b.MaximumStay != nil {
			r.MaximumStay = minOf(r.MaximumStay, *b.MaximumStay)
		}
		if b.AdvanceBookingDays != nil {
			r.AdvanceBookingRequired = maxOf(r.AdvanceBookingRequired, *b.AdvanceBookingDays)
		}
	}
	return r
}

func checkRestrictions(st stay, r *domain.Restrictions) (string, bool) {
	if r.MinimumStay != nil && st.nights < *r.MinimumStay {
		return fmt.Sprintf("minimum stay not met, requires %d nights", *r.MinimumStay), false
	}
	if r.MaximumStay != nil && st.nights > *r.MaximumStay {
		return fmt.Sprintf("maximum stay exceeded, allows at most %d nights", *r.MaximumStay), false
	}
	if r.AdvanceBookingRequired != nil && st.leadDays < *r.AdvanceBookingRequired {
		return fmt.Sprintf("must book %d days in advance", *r.AdvanceBookingRequired), false
	}
	return "", true
}

// inScope treats an empty scope list as "everything".
func inScope(scope []string, id string) bool {
	if len(scope) == 0 {
		return true
	}
	for _, s := range scope {
		if s == id {
			return true
		}
	}
	return false
}

func maxOf(cur *int, v int) *int {
	if cur == nil || v > *cur {
		return &v
	}
	return cur
}

func minOf(cur *int, v int) *int {
	if cur == nil || v < *cur {
		return &v
	}
	return cur
}
