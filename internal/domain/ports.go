package domain

import (
	"context"
	"time"
)

// RateConfigReader is the read side of the configuration store. Every call is a fresh snapshot.
type RateConfigReader interface {
	GetRoom(ctx context.Context, id string) (Room, error)
	CountRooms(ctx context.Context) (int, error)
	ListBookings(ctx context.Context, from, to time.Time) ([]Booking, error)
	ListPricingRules(ctx context.Context) ([]PricingRule, error)
	ListDemandProfiles(ctx context.Context) ([]DemandPricingProfile, error)
	ListBlackouts(ctx context.Context) ([]BlackoutWindow, error)
	ListHolidays(ctx context.Context) ([]HolidayDate, error)
	ListMaintenance(ctx context.Context) ([]MaintenanceWindow, error)
	ListSeasons(ctx context.Context) ([]SeasonalProfile, error)
	GetSettings(ctx context.Context) (Settings, error)
}

// RateConfigWriter is the import path. ReplaceConfig swaps every config table atomically.
type RateConfigWriter interface {
	UpsertRoom(ctx context.Context, r Room) error
	ReplaceConfig(ctx context.Context, cs ConfigSet) error
	LogImport(ctx context.Context, batchID string, status int, reason string) error
}

type RateConfigRepository interface {
	RateConfigReader
	RateConfigWriter
}

// AdminClient pulls configuration from the storefront's admin backend.
type AdminClient interface {
	GetRooms(ctx context.Context) ([]Room, error)
	GetConfig(ctx context.Context) (ConfigSet, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
