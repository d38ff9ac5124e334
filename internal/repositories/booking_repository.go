package repositories

import (
	"database/sql"
	"errors"
	"strings"

	intconfig "elitetransport/internal/config"
	"elitetransport/internal/domain/models"
)

type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const bookingColumns = `id, passenger_id, bus_id, trip_id, seat_number,
	COALESCE(price_paid, 0), COALESCE(status, ''), COALESCE(external_ref, ''),
	COALESCE(DATE_FORMAT(created_at, '%Y-%m-%d %H:%i:%s'), '')`

func scanBooking(scan func(dest ...any) error) (models.Booking, error) {
	var b models.Booking
	var trip sql.NullInt64
	err := scan(&b.ID, &b.PassengerID, &b.BusID, &trip, &b.SeatNumber,
		&b.PricePaid, &b.Status, &b.ExternalRef, &b.CreatedAt)
	if trip.Valid {
		v := trip.Int64
		b.TripID = &v
	}
	return b, err
}

// FindByRefPrefix returns every booking whose external_ref equals ref or
// begins with ref+":". This is the idempotency lookup: it catches both the
// single-seat shape (raw ref) and the multi-seat shape (ref:<seat>).
func (r BookingRepository) FindByRefPrefix(ref string) ([]models.Booking, error) {
	rows, err := r.db().Query(`
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE external_ref = ? OR external_ref LIKE ?
		ORDER BY id ASC
	`, ref, ref+":%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// InsertConditional inserts a booking only when no confirmed booking exists
// for the same (bus, trip, seat) in canonical or legacy spelling. Returns
// false when the conditional write was refused.
func (r BookingRepository) InsertConditional(b models.Booking) (int64, bool, error) {
	c, l := seatPair(b.SeatNumber)
	res, err := r.db().Exec(`
		INSERT INTO bookings (passenger_id, bus_id, trip_id, seat_number, price_paid, status, external_ref, created_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, NOW()
		FROM DUAL
		WHERE NOT EXISTS (
			SELECT 1 FROM bookings
			WHERE bus_id = ? AND seat_number IN (?, ?)
			  AND COALESCE(trip_id, -1) = COALESCE(?, -1)
			  AND status = 'confirmed'
		)
	`, b.PassengerID, b.BusID, tripArg(b.TripID), b.SeatNumber, b.PricePaid, b.Status, b.ExternalRef,
		b.BusID, c, l, tripArg(b.TripID))
	if err != nil {
		return 0, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	if n == 0 {
		return 0, false, nil
	}
	id, err := res.LastInsertId()
	return id, true, err
}

// DeleteByIDs rolls back partially inserted bookings.
func (r BookingRepository) DeleteByIDs(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := r.db().Exec(`DELETE FROM bookings WHERE id IN (`+placeholders+`)`, args...)
	return err
}

// ListConfirmedSeats returns seat numbers with a confirmed booking for
// (bus, trip).
func (r BookingRepository) ListConfirmedSeats(busID int64, tripID *int64) ([]string, error) {
	rows, err := r.db().Query(`
		SELECT seat_number FROM bookings
		WHERE bus_id = ? AND COALESCE(trip_id, -1) = COALESCE(?, -1)
		  AND status = 'confirmed'
	`, busID, tripArg(tripID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// HasConfirmedSeat reports whether a confirmed booking exists for the seat in
// canonical or legacy spelling.
func (r BookingRepository) HasConfirmedSeat(busID int64, tripID *int64, seatCanonical string) (bool, error) {
	c, l := seatPair(seatCanonical)
	var n int
	err := r.db().QueryRow(`
		SELECT COUNT(*) FROM bookings
		WHERE bus_id = ? AND seat_number IN (?, ?)
		  AND COALESCE(trip_id, -1) = COALESCE(?, -1)
		  AND status = 'confirmed'
	`, busID, c, l, tripArg(tripID)).Scan(&n)
	return n > 0, err
}

// CountConfirmed returns the confirmed booking count for (bus, trip), used to
// recompute the available_seats hint in trip-aware mode.
func (r BookingRepository) CountConfirmed(busID int64, tripID int64) (int, error) {
	var n int
	err := r.db().QueryRow(`
		SELECT COUNT(*) FROM bookings
		WHERE bus_id = ? AND trip_id = ? AND status = 'confirmed'
	`, busID, tripID).Scan(&n)
	return n, err
}

// MarkConfirmedByRef promotes pending bookings matching the processor
// reference (exact or ref:<seat>) to confirmed. Best-effort: returns rows
// affected.
func (r BookingRepository) MarkConfirmedByRef(ref string) (int64, error) {
	res, err := r.db().Exec(`
		UPDATE bookings SET status = 'confirmed'
		WHERE (external_ref = ? OR external_ref LIKE ?) AND status <> 'confirmed'
	`, ref, ref+":%")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetByID fetches one booking row.
func (r BookingRepository) GetByID(id int64) (models.Booking, error) {
	b, err := scanBooking(r.db().QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE id = ? LIMIT 1`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return b, sql.ErrNoRows
	}
	return b, err
}

// ListByPassengerEmail returns bookings joined to their passenger rows for a
// user's booking history (passenger rows are per-booking, keyed by email).
func (r BookingRepository) ListByPassengerEmail(email string) ([]models.Booking, error) {
	rows, err := r.db().Query(`
		SELECT b.id, b.passenger_id, b.bus_id, b.trip_id, b.seat_number,
		       COALESCE(b.price_paid, 0), COALESCE(b.status, ''), COALESCE(b.external_ref, ''),
		       COALESCE(DATE_FORMAT(b.created_at, '%Y-%m-%d %H:%i:%s'), '')
		FROM bookings b
		JOIN passengers p ON p.id = b.passenger_id
		WHERE LOWER(p.email) = LOWER(?)
		ORDER BY b.id DESC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
