package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"villa_rates/internal/calendar"
	"villa_rates/internal/domain"
)

// ImportService copies the admin-owned catalog and pricing configuration into the local store.
type ImportService struct {
	admin domain.AdminClient
	repo  domain.RateConfigWriter
	cache domain.Cache
	newID func() string
}

func NewImportService(a domain.AdminClient, r domain.RateConfigWriter, c domain.Cache) *ImportService {
	return &ImportService{admin: a, repo: r, cache: c, newID: uuid.NewString}
}

// NewBatch returns an id grouping the import log lines of one run.
func (s *ImportService) NewBatch() string { return s.newID() }

// FetchRooms lists the catalog. The caller decides how to fan out ImportRoom.
func (s *ImportService) FetchRooms(ctx context.Context, batch string) ([]domain.Room, error) {
	rooms, err := s.admin.GetRooms(ctx)
	if err != nil {
		s.logFailure(ctx, batch, "rooms", err)
		return nil, err
	}
	return rooms, nil
}

// ImportRoom validates and stores one room, then evicts its cached copy.
func (s *ImportService) ImportRoom(ctx context.Context, batch string, r domain.Room) error {
	if err := domain.Validate(r); err != nil {
		_ = s.repo.LogImport(ctx, batch, 422, "room "+r.ID+": "+err.Error())
		return err
	}
	if err := s.repo.UpsertRoom(ctx, r); err != nil {
		return fmt.Errorf("upsert room %s: %w", r.ID, err)
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, roomKey(r.ID))
	}
	return nil
}

// FinishRooms drops cached inventory counts once every room of a batch has been written.
func (s *ImportService) FinishRooms(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, roomCountKey)
	}
}

// ImportConfig pulls the pricing configuration and swaps it in as a whole. A bundle that fails
// validation is rejected without touching the stored configuration.
func (s *ImportService) ImportConfig(ctx context.Context, batch string) error {
	cs, err := s.admin.GetConfig(ctx)
	if err != nil {
		s.logFailure(ctx, batch, "config", err)
		return err
	}
	if err := ValidateConfig(cs); err != nil {
		_ = s.repo.LogImport(ctx, batch, 422, err.Error())
		log.Error().Err(err).Str("batch", batch).Msg("configuration rejected")
		return err
	}
	if err := s.repo.ReplaceConfig(ctx, cs); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	_ = s.repo.LogImport(ctx, batch, 200, "ok")
	log.Info().
		Str("batch", batch).
		Int("rules", len(cs.Rules)).
		Int("blackouts", len(cs.Blackouts)).
		Int("holidays", len(cs.Holidays)).
		Int("maintenance", len(cs.Maintenance)).
		Int("seasons", len(cs.Seasons)).
		Msg("configuration imported")
	return nil
}

func (s *ImportService) logFailure(ctx context.Context, batch, what string, err error) {
	low := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, domain.ErrNotFound):
		_ = s.repo.LogImport(ctx, batch, 404, what+": not found")
	case strings.Contains(low, "401") || strings.Contains(low, "unauthorized") ||
		strings.Contains(low, "403") || strings.Contains(low, "forbidden"):
		_ = s.repo.LogImport(ctx, batch, 403, what+": unauthorized")
	default:
		_ = s.repo.LogImport(ctx, batch, 502, what+": "+err.Error())
	}
}

// ValidateConfig checks record tags, date ordering and that no two active seasons overlap.
func ValidateConfig(cs domain.ConfigSet) error {
	verr := domain.NewValidationError()
	if err := domain.Validate(cs); err != nil {
		ve := domain.IsValidationError(err)
		if ve == nil {
			return err
		}
		for f, msgs := range ve.Fields() {
			for _, m := range msgs {
				verr.Add(f, m)
			}
		}
	}

	for i, r := range cs.Rules {
		if r.DateWindow != nil && r.DateWindow.End.Before(r.DateWindow.Start) {
			verr.Add(fmt.Sprintf("rules[%d].dateWindow", i), "end must not be before start")
		}
	}
	for i, b := range cs.Blackouts {
		if b.EndDate.Before(b.StartDate) {
			verr.Add(fmt.Sprintf("blackouts[%d].endDate", i), "must not be before startDate")
		}
	}
	for i, h := range cs.Holidays {
		if h.EndDate != nil && h.EndDate.Before(h.Date) {
			verr.Add(fmt.Sprintf("holidays[%d].endDate", i), "must not be before date")
		}
	}
	for i, m := range cs.Maintenance {
		if m.EndDate.Before(m.StartDate) {
			verr.Add(fmt.Sprintf("maintenance[%d].endDate", i), "must not be before startDate")
		}
	}
	seen := map[domain.DemandTier]bool{}
	for i, p := range cs.DemandProfiles {
		if seen[p.Tier] {
			verr.Add(fmt.Sprintf("demandProfiles[%d].tier", i), "duplicate profile for tier "+p.Tier.String())
		}
		seen[p.Tier] = true
	}
	for i, a := range cs.Seasons {
		if a.EndDate.Before(a.StartDate) {
			verr.Add(fmt.Sprintf("seasons[%d].endDate", i), "must not be before startDate")
			continue
		}
		if !a.IsActive {
			continue
		}
		for j := i + 1; j < len(cs.Seasons); j++ {
			b := cs.Seasons[j]
			if b.IsActive && calendar.Overlaps(a.StartDate, a.EndDate, b.StartDate, b.EndDate) {
				verr.Add(fmt.Sprintf("seasons[%d]", j), "overlaps active season "+a.ID)
			}
		}
	}
	return verr.Err()
}
