package models

const (
	TripStatusActive    = "active"
	TripStatusCompleted = "completed"
	TripStatusCancelled = "cancelled"
)

// TripSchedule is the authoritative source of price and departure for its bus
// while active. A bus has at most one active trip at a time.
type TripSchedule struct {
	ID            int64
	RouteID       int64
	BusID         int64
	DepartureDate string
	DepartureTime string
	Price         float64
	Status        string
	StartedAt     string
	EndedAt       string
}
