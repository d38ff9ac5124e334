package db

import (
	"database/sql"
	"log"
	"sync"
)

// Schema bootstrap runs once per process. Concurrent first requests wait on
// the mutex; a failed run rewinds the latch so the next request retries.
var (
	schemaMu   sync.Mutex
	schemaDone bool
)

// EnsureSchema creates trip_schedules and booking_receipts when missing and
// retrofits a nullable trip_id column onto bookings and seat_locks.
func EnsureSchema(conn *sql.DB) error {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	if schemaDone {
		return nil
	}

	if err := bootstrap(conn); err != nil {
		log.Printf("[SCHEMA] bootstrap failed: %v", err)
		return err
	}

	schemaDone = true
	return nil
}

// ResetSchemaLatch is for tests only.
func ResetSchemaLatch() {
	schemaMu.Lock()
	schemaDone = false
	schemaMu.Unlock()
}

func bootstrap(conn *sql.DB) error {
	if !HasTable(conn, "trip_schedules") {
		if _, err := conn.Exec(`
			CREATE TABLE IF NOT EXISTS trip_schedules (
				id INT AUTO_INCREMENT PRIMARY KEY,
				route_id INT NOT NULL,
				bus_id INT NOT NULL,
				departure_date VARCHAR(20) NOT NULL DEFAULT '',
				departure_time VARCHAR(20) NOT NULL DEFAULT '',
				price DECIMAL(10,2) NOT NULL DEFAULT 0,
				status VARCHAR(20) NOT NULL DEFAULT 'active',
				started_at DATETIME NULL,
				ended_at DATETIME NULL,
				INDEX idx_trip_schedules_status (status),
				INDEX idx_trip_schedules_route (route_id),
				INDEX idx_trip_schedules_bus (bus_id)
			)
		`); err != nil {
			return err
		}
	}

	if HasTable(conn, "bookings") && !HasColumn(conn, "bookings", "trip_id") {
		if _, err := conn.Exec(`ALTER TABLE bookings ADD COLUMN trip_id INT NULL`); err != nil {
			return err
		}
		if _, err := conn.Exec(`CREATE INDEX idx_bookings_trip ON bookings (trip_id)`); err != nil {
			return err
		}
	}

	if HasTable(conn, "seat_locks") && !HasColumn(conn, "seat_locks", "trip_id") {
		if _, err := conn.Exec(`ALTER TABLE seat_locks ADD COLUMN trip_id INT NULL`); err != nil {
			return err
		}
		if _, err := conn.Exec(`CREATE INDEX idx_seat_locks_trip ON seat_locks (trip_id)`); err != nil {
			return err
		}
	}

	if !HasTable(conn, "booking_receipts") {
		if _, err := conn.Exec(`
			CREATE TABLE IF NOT EXISTS booking_receipts (
				id INT AUTO_INCREMENT PRIMARY KEY,
				booking_id INT NOT NULL UNIQUE,
				receipt_url TEXT NOT NULL,
				drive_file_id VARCHAR(128) NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`); err != nil {
			return err
		}
	}

	return nil
}
