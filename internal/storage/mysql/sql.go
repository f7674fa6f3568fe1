package mysql

// Configuration tables keep the admin's record as a JSON body next to the columns used for
// ordering and inspection. position preserves the order records arrived in.

const getRoomSQL = `
SELECT id, name, location_id, base_price
FROM rooms
WHERE id = ?
`

const countRoomsSQL = `SELECT COUNT(*) FROM rooms`

const upsertRoomSQL = `
INSERT INTO rooms (id, name, location_id, base_price)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name        = VALUES(name),
  location_id = VALUES(location_id),
  base_price  = VALUES(base_price),
  updated_at  = CURRENT_TIMESTAMP
`

// Inclusive overlap with [from, to]; cancelled bookings never count.
const listBookingsSQL = `
SELECT id, room_id, check_in, check_out, status
FROM bookings
WHERE status <> 'cancelled'
  AND check_in <= ?
  AND check_out >= ?
ORDER BY check_in, id
`

const (
	listRulesSQL       = `SELECT body FROM pricing_rules ORDER BY position`
	listDemandSQL      = `SELECT body FROM demand_profiles ORDER BY position`
	listBlackoutsSQL   = `SELECT body FROM blackout_windows ORDER BY position`
	listHolidaysSQL    = `SELECT body FROM holidays ORDER BY position`
	listMaintenanceSQL = `SELECT body FROM maintenance_windows ORDER BY position`
	listSeasonsSQL     = `SELECT body FROM seasonal_profiles ORDER BY position`
	getSettingsSQL     = `SELECT body FROM pricing_settings WHERE id = 1`
)

const (
	insertRuleSQL        = `INSERT INTO pricing_rules (id, position, priority, is_active, body) VALUES (?, ?, ?, ?, ?)`
	insertDemandSQL      = `INSERT INTO demand_profiles (tier, position, is_active, body) VALUES (?, ?, ?, ?)`
	insertBlackoutSQL    = `INSERT INTO blackout_windows (id, position, start_date, end_date, body) VALUES (?, ?, ?, ?, ?)`
	insertHolidaySQL     = `INSERT INTO holidays (id, position, start_date, end_date, body) VALUES (?, ?, ?, ?, ?)`
	insertMaintenanceSQL = `INSERT INTO maintenance_windows (id, position, start_date, end_date, body) VALUES (?, ?, ?, ?, ?)`
	insertSeasonSQL      = `INSERT INTO seasonal_profiles (id, position, start_date, end_date, is_active, body) VALUES (?, ?, ?, ?, ?, ?)`
)

const upsertSettingsSQL = `
INSERT INTO pricing_settings (id, body) VALUES (1, ?)
ON DUPLICATE KEY UPDATE body = VALUES(body), updated_at = CURRENT_TIMESTAMP
`

// configTables are cleared in this order inside the replace transaction.
var configTables = []string{
	"pricing_rules",
	"demand_profiles",
	"blackout_windows",
	"holidays",
	"maintenance_windows",
	"seasonal_profiles",
}

const insertImportLogSQL = `
INSERT INTO import_log (batch_id, http_status, reason)
VALUES (?, ?, ?)
`
