package models

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Passenger rows are created fresh per booking; the same human can yield many
// passenger rows across bookings.
type Passenger struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Phone     string
	NokName   string
	NokPhone  string
	CreatedAt string
}

// Booking holds one seat on one (bus, trip). ExternalRef is the processor
// reference; multi-seat purchases append ":<seat>" for uniqueness.
type Booking struct {
	ID          int64
	PassengerID int64
	BusID       int64
	TripID      *int64
	SeatNumber  string
	PricePaid   float64
	Status      string
	ExternalRef string
	CreatedAt   string
}

// SeatLock is a short-lived hold on a seat, owned by an opaque lock session.
type SeatLock struct {
	ID         int64
	BusID      int64
	TripID     *int64
	SeatNumber string
	LockedBy   string
	ExpiresAt  string
}

// BookingReceipt links a booking to the generated receipt document.
type BookingReceipt struct {
	ID          int64
	BookingID   int64
	ReceiptURL  string
	DriveFileID string
	CreatedAt   string
}
