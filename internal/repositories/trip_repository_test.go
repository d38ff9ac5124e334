package repositories

import (
	"testing"

	"elitetransport/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
)

var tripCols = []string{"id", "route_id", "bus_id", "departure_date", "departure_time", "price", "status", "started_at", "ended_at"}

func TestResolveTripNullMode(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM trip_schedules").WillReturnRows(sqlmock.NewRows(tripCols))

	trip, err := TripRepository{DB: db}.Resolve(1, nil)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if trip != nil {
		t.Fatalf("expected trip-null mode, got %+v", trip)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResolveTripLatestActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM trip_schedules").WillReturnRows(
		sqlmock.NewRows(tripCols).AddRow(8, 2, 1, "2025-03-02", "06:00", 50.0, "active", "", ""))

	trip, err := TripRepository{DB: db}.Resolve(1, nil)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if trip == nil || trip.ID != 8 {
		t.Fatalf("wrong trip: %+v", trip)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResolveTripWrongBus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	tripID := int64(8)
	mock.ExpectQuery("FROM trip_schedules").WillReturnRows(
		sqlmock.NewRows(tripCols).AddRow(8, 2, 99, "2025-03-02", "06:00", 50.0, "active", "", ""))

	_, resolveErr := TripRepository{DB: db}.Resolve(1, &tripID)
	if !domain.IsNotFound(resolveErr) {
		t.Fatalf("expected not-found for mismatched bus, got %v", resolveErr)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResolveTripInactive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	tripID := int64(8)
	mock.ExpectQuery("FROM trip_schedules").WillReturnRows(
		sqlmock.NewRows(tripCols).AddRow(8, 2, 1, "2025-03-02", "06:00", 50.0, "completed", "", "2025-03-03 08:00:00"))

	_, resolveErr := TripRepository{DB: db}.Resolve(1, &tripID)
	if !domain.IsValidation(resolveErr) {
		t.Fatalf("expected validation error for inactive trip, got %v", resolveErr)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
