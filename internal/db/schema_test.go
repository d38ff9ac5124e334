package db

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func expectTable(mock sqlmock.Sqlmock, table string, present bool) {
	rows := sqlmock.NewRows([]string{"table_name"})
	if present {
		rows.AddRow(table)
	}
	mock.ExpectQuery("information_schema\\.tables").WithArgs(table).WillReturnRows(rows)
}

func expectColumn(mock sqlmock.Sqlmock, table, column string, present bool) {
	rows := sqlmock.NewRows([]string{"column_name"})
	if present {
		rows.AddRow(column)
	}
	mock.ExpectQuery("information_schema\\.columns").WithArgs(table, column).WillReturnRows(rows)
}

func TestEnsureSchemaAllPresentIsNoOp(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	ResetSchemaLatch()

	expectTable(mock, "trip_schedules", true)
	expectTable(mock, "bookings", true)
	expectColumn(mock, "bookings", "trip_id", true)
	expectTable(mock, "seat_locks", true)
	expectColumn(mock, "seat_locks", "trip_id", true)
	expectTable(mock, "booking_receipts", true)

	if err := EnsureSchema(db); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	// Latched: the second call touches nothing.
	if err := EnsureSchema(db); err != nil {
		t.Fatalf("latched call failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureSchemaRetrofitsTripColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	ResetSchemaLatch()

	expectTable(mock, "trip_schedules", false)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS trip_schedules").WillReturnResult(sqlmock.NewResult(0, 0))
	expectTable(mock, "bookings", true)
	expectColumn(mock, "bookings", "trip_id", false)
	mock.ExpectExec("ALTER TABLE bookings ADD COLUMN trip_id").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX idx_bookings_trip").WillReturnResult(sqlmock.NewResult(0, 0))
	expectTable(mock, "seat_locks", true)
	expectColumn(mock, "seat_locks", "trip_id", false)
	mock.ExpectExec("ALTER TABLE seat_locks ADD COLUMN trip_id").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX idx_seat_locks_trip").WillReturnResult(sqlmock.NewResult(0, 0))
	expectTable(mock, "booking_receipts", false)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS booking_receipts").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := EnsureSchema(db); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureSchemaRewindsLatchOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	ResetSchemaLatch()

	expectTable(mock, "trip_schedules", false)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS trip_schedules").WillReturnError(errors.New("disk full"))

	if err := EnsureSchema(db); err == nil {
		t.Fatalf("expected bootstrap failure")
	}

	// The next call retries from scratch.
	expectTable(mock, "trip_schedules", true)
	expectTable(mock, "bookings", true)
	expectColumn(mock, "bookings", "trip_id", true)
	expectTable(mock, "seat_locks", true)
	expectColumn(mock, "seat_locks", "trip_id", true)
	expectTable(mock, "booking_receipts", true)

	if err := EnsureSchema(db); err != nil {
		t.Fatalf("retry after rewind failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
