package repositories

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	intconfig "elitetransport/internal/config"
	"elitetransport/internal/domain/models"
)

type SeatLockRepository struct {
	DB *sql.DB
}

func (r SeatLockRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// DeleteExpired lazily garbage-collects expired locks for one (bus, seat).
func (r SeatLockRepository) DeleteExpired(busID int64, seatCanonical string) error {
	c, l := seatPair(seatCanonical)
	_, err := r.db().Exec(`
		DELETE FROM seat_locks
		WHERE bus_id = ? AND seat_number IN (?, ?) AND expires_at <= NOW()
	`, busID, c, l)
	return err
}

// DeleteTripMismatch removes locks for the same (bus, seat) whose trip_id is
// NULL or different from tripID. Run only in trip-aware mode; it isolates
// trip namespaces from stale single-trip rows.
func (r SeatLockRepository) DeleteTripMismatch(busID int64, seatCanonical string, tripID int64) error {
	c, l := seatPair(seatCanonical)
	_, err := r.db().Exec(`
		DELETE FROM seat_locks
		WHERE bus_id = ? AND seat_number IN (?, ?)
		  AND (trip_id IS NULL OR trip_id <> ?)
	`, busID, c, l, tripID)
	return err
}

// FindActive returns the unexpired lock for (bus, trip, seat), if any.
func (r SeatLockRepository) FindActive(busID int64, tripID *int64, seatCanonical string) (models.SeatLock, bool, error) {
	c, l := seatPair(seatCanonical)
	var lock models.SeatLock
	var gotTrip sql.NullInt64
	err := r.db().QueryRow(`
		SELECT id, bus_id, trip_id, seat_number, locked_by,
		       COALESCE(DATE_FORMAT(expires_at, '%Y-%m-%d %H:%i:%s'), '')
		FROM seat_locks
		WHERE bus_id = ? AND seat_number IN (?, ?)
		  AND COALESCE(trip_id, -1) = COALESCE(?, -1)
		  AND expires_at > NOW()
		ORDER BY id DESC LIMIT 1
	`, busID, c, l, tripArg(tripID)).Scan(
		&lock.ID, &lock.BusID, &gotTrip, &lock.SeatNumber, &lock.LockedBy, &lock.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lock, false, nil
		}
		return lock, false, err
	}
	if gotTrip.Valid {
		v := gotTrip.Int64
		lock.TripID = &v
	}
	return lock, true, nil
}

// Extend pushes the expiry of an owner's existing lock forward.
func (r SeatLockRepository) Extend(id int64, expiresAt time.Time) error {
	_, err := r.db().Exec(`UPDATE seat_locks SET expires_at = ? WHERE id = ?`, expiresAt, id)
	return err
}

// InsertConditional inserts a lock only when no unexpired lock exists for the
// same (bus, trip, seat) under another owner. Returns false when the
// conditional write was refused.
func (r SeatLockRepository) InsertConditional(busID int64, tripID *int64, seatCanonical, owner string, expiresAt time.Time) (bool, error) {
	c, l := seatPair(seatCanonical)
	res, err := r.db().Exec(`
		INSERT INTO seat_locks (bus_id, trip_id, seat_number, locked_by, expires_at)
		SELECT ?, ?, ?, ?, ?
		FROM DUAL
		WHERE NOT EXISTS (
			SELECT 1 FROM seat_locks
			WHERE bus_id = ? AND seat_number IN (?, ?)
			  AND COALESCE(trip_id, -1) = COALESCE(?, -1)
			  AND locked_by <> ?
			  AND expires_at > NOW()
		)
	`, busID, tripArg(tripID), seatCanonical, owner, expiresAt,
		busID, c, l, tripArg(tripID), owner)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteOwned removes the owner's lock for (bus, trip, seat). Idempotent.
func (r SeatLockRepository) DeleteOwned(busID int64, tripID *int64, seatCanonical, owner string) error {
	c, l := seatPair(seatCanonical)
	_, err := r.db().Exec(`
		DELETE FROM seat_locks
		WHERE bus_id = ? AND seat_number IN (?, ?)
		  AND COALESCE(trip_id, -1) = COALESCE(?, -1)
		  AND locked_by = ?
	`, busID, c, l, tripArg(tripID), owner)
	return err
}

// DeleteByIDs removes consumed locks after finalization.
func (r SeatLockRepository) DeleteByIDs(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := r.db().Exec(`DELETE FROM seat_locks WHERE id IN (`+placeholders+`)`, args...)
	return err
}

// DeleteByTrip wipes every lock for a trip (admin end-trip).
func (r SeatLockRepository) DeleteByTrip(tripID int64) error {
	_, err := r.db().Exec(`DELETE FROM seat_locks WHERE trip_id = ?`, tripID)
	return err
}

// ListActiveByBus returns unexpired locks for a (bus, trip).
func (r SeatLockRepository) ListActiveByBus(busID int64, tripID *int64) ([]models.SeatLock, error) {
	rows, err := r.db().Query(`
		SELECT id, bus_id, trip_id, seat_number, locked_by,
		       COALESCE(DATE_FORMAT(expires_at, '%Y-%m-%d %H:%i:%s'), '')
		FROM seat_locks
		WHERE bus_id = ? AND COALESCE(trip_id, -1) = COALESCE(?, -1)
		  AND expires_at > NOW()
	`, busID, tripArg(tripID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.SeatLock{}
	for rows.Next() {
		var lock models.SeatLock
		var gotTrip sql.NullInt64
		if err := rows.Scan(&lock.ID, &lock.BusID, &gotTrip, &lock.SeatNumber, &lock.LockedBy, &lock.ExpiresAt); err != nil {
			return out, err
		}
		if gotTrip.Valid {
			v := gotTrip.Int64
			lock.TripID = &v
		}
		out = append(out, lock)
	}
	return out, rows.Err()
}
