package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"villa_rates/internal/domain"
)

const maxReasonLen = 1024

type Repo struct{ db *sql.DB }

var _ domain.RateConfigRepository = (*Repo)(nil)

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

// ---- catalog ----

func (r *Repo) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	var rm domain.Room
	err := r.db.QueryRowContext(ctx, getRoomSQL, id).Scan(&rm.ID, &rm.Name, &rm.LocationID, &rm.BasePrice)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Room{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Room{}, err
	}
	return rm, nil
}

func (r *Repo) CountRooms(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countRoomsSQL).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repo) UpsertRoom(ctx context.Context, rm domain.Room) error {
	_, err := r.db.ExecContext(ctx, upsertRoomSQL, rm.ID, rm.Name, rm.LocationID, rm.BasePrice)
	return err
}

func (r *Repo) ListBookings(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, listBookingsSQL, dateArg(to), dateArg(from))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		var b domain.Booking
		var status string
		if err := rows.Scan(&b.ID, &b.RoomID, &b.CheckIn, &b.CheckOut, &status); err != nil {
			return nil, err
		}
		b.Status = domain.BookingStatus(status)
		out = append(out, b)
	}
	return out, rows.Err()
}

// ---- configuration reads ----

func (r *Repo) ListPricingRules(ctx context.Context) ([]domain.PricingRule, error) {
	return listBodies[domain.PricingRule](ctx, r.db, listRulesSQL)
}

func (r *Repo) ListDemandProfiles(ctx context.Context) ([]domain.DemandPricingProfile, error) {
	return listBodies[domain.DemandPricingProfile](ctx, r.db, listDemandSQL)
}

func (r *Repo) ListBlackouts(ctx context.Context) ([]domain.BlackoutWindow, error) {
	return listBodies[domain.BlackoutWindow](ctx, r.db, listBlackoutsSQL)
}

func (r *Repo) ListHolidays(ctx context.Context) ([]domain.HolidayDate, error) {
	return listBodies[domain.HolidayDate](ctx, r.db, listHolidaysSQL)
}

func (r *Repo) ListMaintenance(ctx context.Context) ([]domain.MaintenanceWindow, error) {
	return listBodies[domain.MaintenanceWindow](ctx, r.db, listMaintenanceSQL)
}

func (r *Repo) ListSeasons(ctx context.Context) ([]domain.SeasonalProfile, error) {
	return listBodies[domain.SeasonalProfile](ctx, r.db, listSeasonsSQL)
}

// GetSettings returns the zero Settings (all defaults) when none were ever imported.
func (r *Repo) GetSettings(ctx context.Context) (domain.Settings, error) {
	var body []byte
	err := r.db.QueryRowContext(ctx, getSettingsSQL).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Settings{}, nil
	}
	if err != nil {
		return domain.Settings{}, err
	}
	var s domain.Settings
	if err := json.Unmarshal(body, &s); err != nil {
		return domain.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

func listBodies[T any](ctx context.Context, db *sql.DB, query string) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("decode %T: %w", v, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ---- import write path ----

// ReplaceConfig swaps every configuration table in one transaction, so readers see either the
// previous bundle or the new one.
func (r *Repo) ReplaceConfig(ctx context.Context, cs domain.ConfigSet) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, t := range configTables {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}

	for i, v := range cs.Rules {
		if err = insertBody(ctx, tx, insertRuleSQL, v, v.ID, i, v.Priority, v.IsActive); err != nil {
			return fmt.Errorf("rule %s: %w", v.ID, err)
		}
	}
	for i, v := range cs.DemandProfiles {
		if err = insertBody(ctx, tx, insertDemandSQL, v, v.Tier.String(), i, v.IsActive); err != nil {
			return fmt.Errorf("demand profile %s: %w", v.Tier, err)
		}
	}
	for i, v := range cs.Blackouts {
		if err = insertBody(ctx, tx, insertBlackoutSQL, v, v.ID, i, dateArg(v.StartDate), dateArg(v.EndDate)); err != nil {
			return fmt.Errorf("blackout %s: %w", v.ID, err)
		}
	}
	for i, v := range cs.Holidays {
		if err = insertBody(ctx, tx, insertHolidaySQL, v, v.ID, i, dateArg(v.Date), dateArg(v.LastDay())); err != nil {
			return fmt.Errorf("holiday %s: %w", v.ID, err)
		}
	}
	for i, v := range cs.Maintenance {
		if err = insertBody(ctx, tx, insertMaintenanceSQL, v, v.ID, i, dateArg(v.StartDate), dateArg(v.EndDate)); err != nil {
			return fmt.Errorf("maintenance %s: %w", v.ID, err)
		}
	}
	for i, v := range cs.Seasons {
		if err = insertBody(ctx, tx, insertSeasonSQL, v, v.ID, i, dateArg(v.StartDate), dateArg(v.EndDate), v.IsActive); err != nil {
			return fmt.Errorf("season %s: %w", v.ID, err)
		}
	}

	settings, err := json.Marshal(cs.Settings)
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, upsertSettingsSQL, string(settings)); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	return tx.Commit()
}

// insertBody appends the JSON encoding of body as the final column.
func insertBody(ctx context.Context, tx *sql.Tx, query string, body any, cols ...any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, append(cols, string(b))...)
	return err
}

func (r *Repo) LogImport(ctx context.Context, batchID string, status int, reason string) error {
	if len(reason) > maxReasonLen {
		reason = reason[:maxReasonLen]
	}
	_, err := r.db.ExecContext(ctx, insertImportLogSQL, batchID, status, reason)
	return err
}

func dateArg(t time.Time) string { return t.UTC().Format("2006-01-02") }
