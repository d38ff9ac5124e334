package services

import (
	"reflect"
	"testing"

	"elitetransport/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

func availabilityServiceWith(db *sqlmockDB) AvailabilityService {
	return AvailabilityService{
		Trips:    repositories.TripRepository{DB: db.DB},
		Buses:    repositories.BusRepository{DB: db.DB},
		Locks:    repositories.SeatLockRepository{DB: db.DB},
		Bookings: repositories.BookingRepository{DB: db.DB},
	}
}

func TestGetSeatsPartitionsSets(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	mock.ExpectQuery("FROM trip_schedules").WillReturnRows(
		sqlmock.NewRows([]string{"id", "route_id", "bus_id", "departure_date", "departure_time", "price", "status", "started_at", "ended_at"}).
			AddRow(3, 2, 1, "2025-03-02", "06:00", 50.0, "active", "2025-03-01 08:00:00", ""))
	busRow(mock, 4)
	mock.ExpectQuery("SELECT seat_number FROM bookings").WillReturnRows(
		sqlmock.NewRows([]string{"seat_number"}).AddRow("2"))
	mock.ExpectQuery("SELECT id, bus_id, trip_id").WillReturnRows(
		sqlmock.NewRows([]string{"id", "bus_id", "trip_id", "seat_number", "locked_by", "expires_at"}).
			AddRow(5, 1, 3, "3", "someone-else", "2025-03-01 10:04:00").
			AddRow(6, 1, 3, "4", "me", "2025-03-01 10:04:00"))

	svc := availabilityServiceWith(db)
	seats, err := svc.GetSeats(1, nil, "me")
	if err != nil {
		t.Fatalf("getSeats failed: %v", err)
	}

	if seats.TripID == nil || *seats.TripID != 3 {
		t.Fatalf("trip not resolved: %v", seats.TripID)
	}
	if !reflect.DeepEqual(seats.Booked, []string{"2"}) {
		t.Fatalf("booked: %v", seats.Booked)
	}
	if !reflect.DeepEqual(seats.Locked, []string{"3"}) {
		t.Fatalf("locked: %v", seats.Locked)
	}
	if !reflect.DeepEqual(seats.OwnLocked, []string{"4"}) {
		t.Fatalf("own_locked: %v", seats.OwnLocked)
	}
	// The caller's own hold stays available so the client can render it as
	// its current selection.
	if !reflect.DeepEqual(seats.Available, []string{"1", "4"}) {
		t.Fatalf("available: %v", seats.Available)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetSeatsDeduplicatesLegacyEncodings(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	noActiveTrip(mock)
	busRow(mock, 50)
	// "38" and "D8" are the same logical seat in two spellings.
	mock.ExpectQuery("SELECT seat_number FROM bookings").WillReturnRows(
		sqlmock.NewRows([]string{"seat_number"}).AddRow("38").AddRow("D8"))
	mock.ExpectQuery("SELECT id, bus_id, trip_id").WillReturnRows(
		sqlmock.NewRows([]string{"id", "bus_id", "trip_id", "seat_number", "locked_by", "expires_at"}))

	svc := availabilityServiceWith(db)
	seats, err := svc.GetSeats(1, nil, "")
	if err != nil {
		t.Fatalf("getSeats failed: %v", err)
	}
	if !reflect.DeepEqual(seats.Booked, []string{"38"}) {
		t.Fatalf("legacy encoding not deduplicated: %v", seats.Booked)
	}
	for _, s := range seats.Available {
		if s == "38" {
			t.Fatalf("booked seat leaked into available")
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
