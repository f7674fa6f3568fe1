package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"villa_rates/internal/app"
	"villa_rates/internal/domain"
	"villa_rates/internal/pkg/clock"
	"villa_rates/internal/rates"
)

// ---- fakes ----

type fakeRepo struct {
	mu       sync.Mutex
	rooms    map[string]domain.Room
	cfg      domain.ConfigSet
	bookings []domain.Booking
	failing  map[string]error
	getRoom  int

	upserted []domain.Room
	replaced []domain.ConfigSet
	logs     []string
}

func (f *fakeRepo) fail(source string) error { return f.failing[source] }

func (f *fakeRepo) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	f.mu.Lock()
	f.getRoom++
	f.mu.Unlock()
	if err := f.fail("rooms"); err != nil {
		return domain.Room{}, err
	}
	r, ok := f.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrNotFound
	}
	return r, nil
}
func (f *fakeRepo) CountRooms(ctx context.Context) (int, error) {
	return len(f.rooms), f.fail("inventory")
}
func (f *fakeRepo) ListBookings(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	return f.bookings, f.fail("bookings")
}
func (f *fakeRepo) ListPricingRules(ctx context.Context) ([]domain.PricingRule, error) {
	if err := f.fail("rules"); err != nil {
		return nil, err
	}
	return f.cfg.Rules, nil
}
func (f *fakeRepo) ListDemandProfiles(ctx context.Context) ([]domain.DemandPricingProfile, error) {
	return f.cfg.DemandProfiles, f.fail("demand_profiles")
}
func (f *fakeRepo) ListBlackouts(ctx context.Context) ([]domain.BlackoutWindow, error) {
	if err := f.fail("blackouts"); err != nil {
		return nil, err
	}
	return f.cfg.Blackouts, nil
}
func (f *fakeRepo) ListHolidays(ctx context.Context) ([]domain.HolidayDate, error) {
	if err := f.fail("holidays"); err != nil {
		return nil, err
	}
	return f.cfg.Holidays, nil
}
func (f *fakeRepo) ListMaintenance(ctx context.Context) ([]domain.MaintenanceWindow, error) {
	return f.cfg.Maintenance, f.fail("maintenance")
}
func (f *fakeRepo) ListSeasons(ctx context.Context) ([]domain.SeasonalProfile, error) {
	if err := f.fail("seasons"); err != nil {
		return nil, err
	}
	return f.cfg.Seasons, nil
}
func (f *fakeRepo) GetSettings(ctx context.Context) (domain.Settings, error) {
	return f.cfg.Settings, f.fail("settings")
}

func (f *fakeRepo) UpsertRoom(ctx context.Context, r domain.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, r)
	return nil
}
func (f *fakeRepo) ReplaceConfig(ctx context.Context, cs domain.ConfigSet) error {
	f.replaced = append(f.replaced, cs)
	return nil
}
func (f *fakeRepo) LogImport(ctx context.Context, batchID string, status int, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, reason)
	return nil
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string]any
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.Room:
		*d = v.(domain.Room)
	case *int:
		*d = v.(int)
	}
	return true, nil
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

// ---- helpers ----

var now = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

func newRepo() *fakeRepo {
	return &fakeRepo{
		rooms: map[string]domain.Room{
			"villa-1": {ID: "villa-1", Name: "Villa Sunset", LocationID: "phuket", BasePrice: 3000},
			"villa-2": {ID: "villa-2", Name: "Villa Palm", LocationID: "phuket", BasePrice: 4200},
		},
		cfg: domain.ConfigSet{
			Seasons: []domain.SeasonalProfile{{
				ID: "high", StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
				IsActive: true, Strategy: domain.StrategyPercentage, BaseAdjustment: 10,
			}},
		},
		failing: map[string]error{},
	}
}

func newService(repo *fakeRepo, cache *fakeCache, failOpen bool) *app.RateService {
	return app.NewRateService(repo, cache, 10*time.Minute, rates.NewEngine(clock.NewFixedClock(now)), failOpen)
}

func stay() domain.StayRequest {
	return domain.StayRequest{
		RoomID:     "villa-1",
		CheckIn:    time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		GuestCount: 2,
	}
}

// ---- tests ----

func TestEvaluate_UsesSnapshot(t *testing.T) {
	svc := newService(newRepo(), &fakeCache{}, true)

	ev, err := svc.Evaluate(context.Background(), stay())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !ev.Availability.Available {
		t.Fatalf("expected available, got %+v", ev.Availability)
	}
	if ev.Quote.FinalPrice != 10593 {
		t.Fatalf("final price: got %v want 10593", ev.Quote.FinalPrice)
	}
	if len(ev.Quote.DegradedSources) != 0 {
		t.Fatalf("unexpected degraded sources: %v", ev.Quote.DegradedSources)
	}
}

func TestQuote_RoomServedFromCache(t *testing.T) {
	repo := newRepo()
	cache := &fakeCache{}
	svc := newService(repo, cache, true)

	if _, err := svc.Quote(context.Background(), stay()); err != nil {
		t.Fatalf("err: %v", err)
	}
	// a catalog change must not be seen until the cache entry is evicted
	repo.rooms["villa-1"] = domain.Room{ID: "villa-1", BasePrice: 1}
	q, err := svc.Quote(context.Background(), stay())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if q.BasePricePerNight != 3000 {
		t.Fatalf("expected cached base price 3000, got %v", q.BasePricePerNight)
	}
	if repo.getRoom != 1 {
		t.Fatalf("expected one repo read, got %d", repo.getRoom)
	}
}

func TestAvailability_UnknownRoom(t *testing.T) {
	svc := newService(newRepo(), &fakeCache{}, true)
	req := stay()
	req.RoomID = "villa-404"

	_, err := svc.Availability(context.Background(), req)
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) || nf.ID != "villa-404" {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestAvailability_InvalidRequestSkipsStore(t *testing.T) {
	repo := newRepo()
	svc := newService(repo, &fakeCache{}, true)
	req := stay()
	req.CheckOut = req.CheckIn

	_, err := svc.Availability(context.Background(), req)
	if domain.IsValidationError(err) == nil {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.getRoom != 0 {
		t.Fatalf("store should not be read for invalid requests")
	}
}

func TestEvaluate_FailOpenMarksDegradedSources(t *testing.T) {
	repo := newRepo()
	repo.failing["seasons"] = errors.New("table locked")
	repo.failing["holidays"] = errors.New("timeout")
	svc := newService(repo, &fakeCache{}, true)

	ev, err := svc.Evaluate(context.Background(), stay())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	got := ev.Quote.DegradedSources
	if len(got) != 2 || got[0] != "holidays" || got[1] != "seasons" {
		t.Fatalf("degraded sources: %v", got)
	}
	// seasons treated as empty: plain subtotal plus tax
	if ev.Quote.FinalPrice != 9630 {
		t.Fatalf("final price: got %v want 9630", ev.Quote.FinalPrice)
	}
}

func TestEvaluate_FailClosed(t *testing.T) {
	repo := newRepo()
	repo.failing["blackouts"] = errors.New("connection reset")
	svc := newService(repo, &fakeCache{}, false)

	_, err := svc.Evaluate(context.Background(), stay())
	var cu *domain.ConfigurationUnavailableError
	if !errors.As(err, &cu) {
		t.Fatalf("expected ConfigurationUnavailableError, got %v", err)
	}
	if cu.Source != "blackouts" {
		t.Fatalf("source: %s", cu.Source)
	}
}

func TestQuote_RoomStoreDown(t *testing.T) {
	repo := newRepo()
	repo.failing["rooms"] = errors.New("dial tcp: refused")
	svc := newService(repo, &fakeCache{}, true)

	_, err := svc.Quote(context.Background(), stay())
	var cu *domain.ConfigurationUnavailableError
	if !errors.As(err, &cu) || cu.Source != "rooms" {
		t.Fatalf("expected rooms unavailable, got %v", err)
	}
}
