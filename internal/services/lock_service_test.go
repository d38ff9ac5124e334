package services

import (
	"testing"
	"time"

	"elitetransport/internal/domain"
	"elitetransport/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

func busRow(mock sqlmock.Sqlmock, capacity int) {
	mock.ExpectQuery("FROM buses").WillReturnRows(
		sqlmock.NewRows([]string{"id", "route_id", "name", "plate_number", "capacity", "available_seats", "price", "route_text"}).
			AddRow(1, 2, "VIP Express", "GR-1234-20", capacity, capacity, 50.0, "Accra - Kumasi"))
}

func noActiveTrip(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("FROM trip_schedules").WillReturnRows(
		sqlmock.NewRows([]string{"id", "route_id", "bus_id", "departure_date", "departure_time", "price", "status", "started_at", "ended_at"}))
}

func lockServiceWith(db *sqlmockDB) LockService {
	return LockService{
		Trips:    repositories.TripRepository{DB: db.DB},
		Buses:    repositories.BusRepository{DB: db.DB},
		Locks:    repositories.SeatLockRepository{DB: db.DB},
		Bookings: repositories.BookingRepository{DB: db.DB},
		Now:      func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.Local) },
	}
}

func TestAcquireLockFreshSeat(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	noActiveTrip(mock)
	busRow(mock, 50)
	mock.ExpectExec("DELETE FROM seat_locks").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, bus_id, trip_id").WillReturnRows(
		sqlmock.NewRows([]string{"id", "bus_id", "trip_id", "seat_number", "locked_by", "expires_at"}))
	mock.ExpectQuery("FROM bookings").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO seat_locks").WillReturnResult(sqlmock.NewResult(5, 1))

	svc := lockServiceWith(db)
	result, err := svc.Acquire(1, "D8", nil, "")
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if result.Seat != "38" {
		t.Fatalf("seat not canonicalized: got %q", result.Seat)
	}
	if result.LockID == "" {
		t.Fatalf("no lock id generated")
	}
	if result.TripID != nil {
		t.Fatalf("expected trip-null mode")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAcquireLockHeldByOther(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	noActiveTrip(mock)
	busRow(mock, 50)
	mock.ExpectExec("DELETE FROM seat_locks").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, bus_id, trip_id").WillReturnRows(
		sqlmock.NewRows([]string{"id", "bus_id", "trip_id", "seat_number", "locked_by", "expires_at"}).
			AddRow(9, 1, nil, "7", "someone-else", "2025-03-01 10:04:00"))

	svc := lockServiceWith(db)
	_, err := svc.Acquire(1, "7", nil, "my-lock")
	if !domain.IsSeatLocked(err) {
		t.Fatalf("expected SeatLockedError, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAcquireLockSameOwnerExtends(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	noActiveTrip(mock)
	busRow(mock, 50)
	mock.ExpectExec("DELETE FROM seat_locks").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, bus_id, trip_id").WillReturnRows(
		sqlmock.NewRows([]string{"id", "bus_id", "trip_id", "seat_number", "locked_by", "expires_at"}).
			AddRow(9, 1, nil, "7", "my-lock", "2025-03-01 10:04:00"))
	mock.ExpectQuery("FROM bookings").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("UPDATE seat_locks SET expires_at").WillReturnResult(sqlmock.NewResult(0, 1))

	svc := lockServiceWith(db)
	result, err := svc.Acquire(1, "7", nil, "my-lock")
	if err != nil {
		t.Fatalf("re-lock by owner failed: %v", err)
	}
	if result.LockID != "my-lock" {
		t.Fatalf("lock id changed on refresh: %q", result.LockID)
	}
	if result.ExpiresAt != "2025-03-01 10:05:00" {
		t.Fatalf("expiry not extended to now+5m: %q", result.ExpiresAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAcquireLockSeatAlreadyBooked(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	noActiveTrip(mock)
	busRow(mock, 50)
	mock.ExpectExec("DELETE FROM seat_locks").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, bus_id, trip_id").WillReturnRows(
		sqlmock.NewRows([]string{"id", "bus_id", "trip_id", "seat_number", "locked_by", "expires_at"}))
	mock.ExpectQuery("FROM bookings").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	svc := lockServiceWith(db)
	_, err := svc.Acquire(1, "5", nil, "")
	if !domain.IsSeatBooked(err) {
		t.Fatalf("expected SeatBookedError, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAcquireLockLosesConditionalInsert(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	noActiveTrip(mock)
	busRow(mock, 50)
	mock.ExpectExec("DELETE FROM seat_locks").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, bus_id, trip_id").WillReturnRows(
		sqlmock.NewRows([]string{"id", "bus_id", "trip_id", "seat_number", "locked_by", "expires_at"}))
	mock.ExpectQuery("FROM bookings").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	// Concurrent acquirer won the WHERE NOT EXISTS race: zero rows affected.
	mock.ExpectExec("INSERT INTO seat_locks").WillReturnResult(sqlmock.NewResult(0, 0))

	svc := lockServiceWith(db)
	_, err := svc.Acquire(1, "7", nil, "")
	if !domain.IsSeatLocked(err) {
		t.Fatalf("expected SeatLockedError on lost race, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReleaseRequiresLockID(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()

	svc := lockServiceWith(db)
	if _, _, err := svc.Release(1, "5", nil, " "); !domain.IsValidation(err) {
		t.Fatalf("expected validation error on missing lockId, got %v", err)
	}
}

func TestReleaseUnknownRowIsNoOp(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	noActiveTrip(mock)
	busRow(mock, 50)
	mock.ExpectExec("DELETE FROM seat_locks").WillReturnResult(sqlmock.NewResult(0, 0))

	svc := lockServiceWith(db)
	trip, seat, err := svc.Release(1, "D8", nil, "my-lock")
	if err != nil {
		t.Fatalf("release should be idempotent: %v", err)
	}
	if trip != nil || seat != "38" {
		t.Fatalf("unexpected release result trip=%v seat=%q", trip, seat)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
