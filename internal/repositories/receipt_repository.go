package repositories

import (
	"database/sql"
	"errors"
	"strings"

	intconfig "elitetransport/internal/config"
	intdb "elitetransport/internal/db"
	"elitetransport/internal/domain/models"
)

type ReceiptRepository struct {
	DB *sql.DB
}

func (r ReceiptRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// GetByBookingID returns the receipt row for a booking, if one exists.
func (r ReceiptRepository) GetByBookingID(bookingID int64) (models.BookingReceipt, bool, error) {
	var rec models.BookingReceipt
	var drive sql.NullString
	err := r.db().QueryRow(`
		SELECT id, booking_id, COALESCE(receipt_url, ''), drive_file_id,
		       COALESCE(DATE_FORMAT(created_at, '%Y-%m-%d %H:%i:%s'), '')
		FROM booking_receipts WHERE booking_id = ? LIMIT 1
	`, bookingID).Scan(&rec.ID, &rec.BookingID, &rec.ReceiptURL, &drive, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, false, nil
		}
		return rec, false, err
	}
	rec.DriveFileID = strings.TrimSpace(drive.String)
	return rec, true, nil
}

// Insert persists a receipt link. booking_id is unique; a duplicate insert
// from a replayed webhook is swallowed by the caller.
func (r ReceiptRepository) Insert(rec models.BookingReceipt) error {
	_, err := r.db().Exec(`
		INSERT INTO booking_receipts (booking_id, receipt_url, drive_file_id, created_at)
		VALUES (?, ?, ?, NOW())
	`, rec.BookingID, rec.ReceiptURL, intdb.NullIfEmpty(rec.DriveFileID))
	return err
}
