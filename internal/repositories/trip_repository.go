package repositories

import (
	"database/sql"
	"errors"

	intconfig "elitetransport/internal/config"
	"elitetransport/internal/domain"
	"elitetransport/internal/domain/models"
)

type TripRepository struct {
	DB *sql.DB
}

func (r TripRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const tripColumns = `id, route_id, bus_id,
	COALESCE(departure_date, ''), COALESCE(departure_time, ''),
	COALESCE(price, 0), COALESCE(status, ''),
	COALESCE(DATE_FORMAT(started_at, '%Y-%m-%d %H:%i:%s'), ''),
	COALESCE(DATE_FORMAT(ended_at, '%Y-%m-%d %H:%i:%s'), '')`

func scanTrip(row *sql.Row) (models.TripSchedule, error) {
	var t models.TripSchedule
	err := row.Scan(&t.ID, &t.RouteID, &t.BusID,
		&t.DepartureDate, &t.DepartureTime,
		&t.Price, &t.Status, &t.StartedAt, &t.EndedAt)
	return t, err
}

// Resolve returns the trip for an explicit tripID (validating bus and status)
// or the most recent active trip for the bus. A nil result with nil error is
// the legal trip-null mode.
func (r TripRepository) Resolve(busID int64, tripID *int64) (*models.TripSchedule, error) {
	conn := r.db()

	if tripID != nil && *tripID > 0 {
		t, err := scanTrip(conn.QueryRow(`SELECT `+tripColumns+` FROM trip_schedules WHERE id = ? LIMIT 1`, *tripID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, domain.NotFoundError{Resource: "trip"}
			}
			return nil, err
		}
		if t.BusID != busID {
			return nil, domain.NotFoundError{Resource: "trip"}
		}
		if t.Status != models.TripStatusActive {
			return nil, domain.ValidationError{Field: "tripId", Msg: "trip is not active"}
		}
		return &t, nil
	}

	t, err := scanTrip(conn.QueryRow(`SELECT `+tripColumns+` FROM trip_schedules WHERE bus_id = ? AND status = 'active' ORDER BY id DESC LIMIT 1`, busID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r TripRepository) GetByID(id int64) (models.TripSchedule, error) {
	t, err := scanTrip(r.db().QueryRow(`SELECT `+tripColumns+` FROM trip_schedules WHERE id = ? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return t, domain.NotFoundError{Resource: "trip"}
	}
	return t, err
}

// HasActiveForBus reports whether the bus already has an active trip.
func (r TripRepository) HasActiveForBus(busID int64) (bool, error) {
	var n int
	err := r.db().QueryRow(`SELECT COUNT(*) FROM trip_schedules WHERE bus_id = ? AND status = 'active'`, busID).Scan(&n)
	return n > 0, err
}

func (r TripRepository) Create(t models.TripSchedule) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO trip_schedules (route_id, bus_id, departure_date, departure_time, price, status, started_at)
		VALUES (?, ?, ?, ?, ?, 'active', NOW())
	`, t.RouteID, t.BusID, t.DepartureDate, t.DepartureTime, t.Price)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// End marks an active trip completed. Returns rows affected so callers can
// detect an already-ended trip.
func (r TripRepository) End(id int64) (int64, error) {
	res, err := r.db().Exec(`
		UPDATE trip_schedules SET status = 'completed', ended_at = NOW()
		WHERE id = ? AND status = 'active'
	`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListActive returns all active trips, newest first.
func (r TripRepository) ListActive() ([]models.TripSchedule, error) {
	return r.list(`SELECT ` + tripColumns + ` FROM trip_schedules WHERE status = 'active' ORDER BY id DESC`)
}

// ListRecentEnded returns the 20 most recent non-active trips.
func (r TripRepository) ListRecentEnded() ([]models.TripSchedule, error) {
	return r.list(`SELECT ` + tripColumns + ` FROM trip_schedules WHERE status <> 'active' ORDER BY id DESC LIMIT 20`)
}

func (r TripRepository) list(query string, args ...any) ([]models.TripSchedule, error) {
	rows, err := r.db().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.TripSchedule{}
	for rows.Next() {
		var t models.TripSchedule
		if err := rows.Scan(&t.ID, &t.RouteID, &t.BusID,
			&t.DepartureDate, &t.DepartureTime,
			&t.Price, &t.Status, &t.StartedAt, &t.EndedAt); err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
