package app

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"villa_rates/internal/adapters/observability"
	"villa_rates/internal/domain"
	"villa_rates/internal/rates"
)

const roomCountKey = "rooms:count"

func roomKey(id string) string { return "room:" + id }

// RateService answers availability and quote questions against a fresh configuration snapshot.
type RateService struct {
	repo     domain.RateConfigReader
	cache    domain.Cache
	cacheTTL time.Duration
	engine   *rates.Engine
	failOpen bool
}

// NewRateService wires the service. With failOpen a configuration source that cannot be read
// is treated as empty and reported in DegradedSources; otherwise the request fails.
func NewRateService(r domain.RateConfigReader, c domain.Cache, ttl time.Duration, e *rates.Engine, failOpen bool) *RateService {
	return &RateService{repo: r, cache: c, cacheTTL: ttl, engine: e, failOpen: failOpen}
}

func (s *RateService) Availability(ctx context.Context, req domain.StayRequest) (rates.Availability, error) {
	snap, err := s.prepare(ctx, req)
	if err != nil {
		return rates.Availability{}, s.fail(err)
	}
	a, err := s.engine.ResolveAvailability(req, snap)
	if err != nil {
		return rates.Availability{}, s.fail(err)
	}
	observability.ObserveEvaluation(outcome(a))
	return a, nil
}

func (s *RateService) Quote(ctx context.Context, req domain.StayRequest) (domain.PriceBreakdown, error) {
	snap, err := s.prepare(ctx, req)
	if err != nil {
		return domain.PriceBreakdown{}, s.fail(err)
	}
	q, err := s.engine.QuotePrice(req, snap)
	if err != nil {
		return domain.PriceBreakdown{}, s.fail(err)
	}
	observability.ObserveEvaluation("quoted")
	return q, nil
}

func (s *RateService) Evaluate(ctx context.Context, req domain.StayRequest) (rates.Evaluation, error) {
	snap, err := s.prepare(ctx, req)
	if err != nil {
		return rates.Evaluation{}, s.fail(err)
	}
	ev, err := s.engine.Evaluate(req, snap)
	if err != nil {
		return rates.Evaluation{}, s.fail(err)
	}
	observability.ObserveEvaluation(outcome(ev.Availability))
	return ev, nil
}

func outcome(a rates.Availability) string {
	if a.Available {
		return "available"
	}
	return "unavailable"
}

func (s *RateService) fail(err error) error {
	var cu *domain.ConfigurationUnavailableError
	switch {
	case domain.IsValidationError(err) != nil:
		observability.ObserveEvaluation("invalid")
	case errors.Is(err, domain.ErrNotFound):
		observability.ObserveEvaluation("not_found")
	case errors.As(err, &cu):
		observability.ObserveEvaluation("config_unavailable")
	default:
		observability.ObserveEvaluation("error")
	}
	return err
}

func (s *RateService) prepare(ctx context.Context, req domain.StayRequest) (rates.Snapshot, error) {
	if err := domain.ValidateStay(req); err != nil {
		return rates.Snapshot{}, err
	}
	room, err := s.room(ctx, req.RoomID)
	if err != nil {
		return rates.Snapshot{}, err
	}
	return s.loadSnapshot(ctx, room, req)
}

// room reads the catalog entry through the cache.
func (s *RateService) room(ctx context.Context, id string) (domain.Room, error) {
	var r domain.Room
	if ok, _ := s.cache.Get(ctx, roomKey(id), &r); ok {
		return r, nil
	}
	r, err := s.repo.GetRoom(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Room{}, &domain.NotFoundError{Kind: "room", ID: id}
	}
	if err != nil {
		return domain.Room{}, &domain.ConfigurationUnavailableError{Source: "rooms", Err: err}
	}
	_ = s.cache.Set(ctx, roomKey(id), r, int(s.cacheTTL.Seconds()))
	return r, nil
}

func (s *RateService) roomCount(ctx context.Context) (int, error) {
	var n int
	if ok, _ := s.cache.Get(ctx, roomCountKey, &n); ok {
		return n, nil
	}
	n, err := s.repo.CountRooms(ctx)
	if err != nil {
		return 0, err
	}
	_ = s.cache.Set(ctx, roomCountKey, n, int(s.cacheTTL.Seconds()))
	return n, nil
}

// loadSnapshot reads every record set in parallel. Each loader writes its own field only.
func (s *RateService) loadSnapshot(ctx context.Context, room domain.Room, req domain.StayRequest) (rates.Snapshot, error) {
	snap := rates.Snapshot{Room: room}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	load := func(source string, fn func(ctx context.Context) error) {
		g.Go(func() error {
			err := fn(gctx)
			if err == nil {
				return nil
			}
			observability.ObserveConfigSourceFailure(source)
			if !s.failOpen {
				return &domain.ConfigurationUnavailableError{Source: source, Err: err}
			}
			log.Warn().Err(err).Str("source", source).Str("room", room.ID).
				Msg("configuration source unavailable, treating as empty")
			mu.Lock()
			snap.Degraded = append(snap.Degraded, source)
			mu.Unlock()
			return nil
		})
	}

	cfg := &snap.Config
	load("inventory", func(ctx context.Context) (err error) {
		snap.TotalRooms, err = s.roomCount(ctx)
		return err
	})
	load("bookings", func(ctx context.Context) (err error) {
		snap.Bookings, err = s.repo.ListBookings(ctx, req.CheckIn, req.CheckOut)
		return err
	})
	load("rules", func(ctx context.Context) (err error) {
		cfg.Rules, err = s.repo.ListPricingRules(ctx)
		return err
	})
	load("demand_profiles", func(ctx context.Context) (err error) {
		cfg.DemandProfiles, err = s.repo.ListDemandProfiles(ctx)
		return err
	})
	load("blackouts", func(ctx context.Context) (err error) {
		cfg.Blackouts, err = s.repo.ListBlackouts(ctx)
		return err
	})
	load("holidays", func(ctx context.Context) (err error) {
		cfg.Holidays, err = s.repo.ListHolidays(ctx)
		return err
	})
	load("maintenance", func(ctx context.Context) (err error) {
		cfg.Maintenance, err = s.repo.ListMaintenance(ctx)
		return err
	})
	load("seasons", func(ctx context.Context) (err error) {
		cfg.Seasons, err = s.repo.ListSeasons(ctx)
		return err
	})
	load("settings", func(ctx context.Context) (err error) {
		cfg.Settings, err = s.repo.GetSettings(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return rates.Snapshot{}, err
	}
	sort.Strings(snap.Degraded)
	return snap, nil
}
