package models

// RouteGroup is a top-level catalog bucket (e.g. "northern", "coastal").
type RouteGroup struct {
	ID          int64
	Key         string
	Name        string
	Description string
}

// Route is a named origin-destination pair inside a group.
type Route struct {
	ID          int64
	GroupID     int64
	Name        string
	Description string
}

// Bus belongs to a route. AvailableSeats is a denormalized hint only; the
// truth is always derived from bookings and unexpired locks.
type Bus struct {
	ID             int64
	RouteID        int64
	Name           string
	PlateNumber    string
	Capacity       int
	AvailableSeats int
	Price          float64
	RouteText      string
}
