package services

import (
	"sort"
	"strconv"

	"elitetransport/internal/repositories"
	"elitetransport/internal/utils"
)

// AvailabilityService computes seat sets for a (bus, trip) from persisted
// bookings and unexpired locks.
type AvailabilityService struct {
	Trips    repositories.TripRepository
	Buses    repositories.BusRepository
	Locks    repositories.SeatLockRepository
	Bookings repositories.BookingRepository
}

// SeatMap is the availability answer. Seats held by the caller stay in
// Available (so a client can render them as its own selection) and also
// appear in OwnLocked.
type SeatMap struct {
	TripID    *int64   `json:"trip_id"`
	Available []string `json:"available"`
	Locked    []string `json:"locked"`
	OwnLocked []string `json:"own_locked"`
	Booked    []string `json:"booked"`
}

// GetSeats resolves the trip and partitions every seat in [1..capacity].
// Canonical and legacy encodings of the same seat deduplicate.
func (s AvailabilityService) GetSeats(busID int64, tripID *int64, ownerLockID string) (SeatMap, error) {
	out := SeatMap{Available: []string{}, Locked: []string{}, OwnLocked: []string{}, Booked: []string{}}

	trip, err := s.Trips.Resolve(busID, tripID)
	if err != nil {
		return out, err
	}
	var resolvedTrip *int64
	if trip != nil {
		resolvedTrip = &trip.ID
	}
	out.TripID = resolvedTrip

	bus, err := s.Buses.GetByID(busID)
	if err != nil {
		return out, err
	}
	capacity := bus.Capacity
	if capacity <= 0 {
		capacity = utils.DefaultSeatCapacity
	}

	bookedRaw, err := s.Bookings.ListConfirmedSeats(busID, resolvedTrip)
	if err != nil {
		return out, err
	}
	booked := map[string]bool{}
	for _, raw := range bookedRaw {
		if c, err := utils.NormalizeSeat(raw, capacity); err == nil {
			booked[c] = true
		}
	}

	locks, err := s.Locks.ListActiveByBus(busID, resolvedTrip)
	if err != nil {
		return out, err
	}
	locked := map[string]bool{}
	ownLocked := map[string]bool{}
	for _, l := range locks {
		c, err := utils.NormalizeSeat(l.SeatNumber, capacity)
		if err != nil {
			continue
		}
		if ownerLockID != "" && l.LockedBy == ownerLockID {
			ownLocked[c] = true
		} else {
			locked[c] = true
		}
	}

	for n := 1; n <= capacity; n++ {
		c := strconv.Itoa(n)
		if !booked[c] && !locked[c] {
			out.Available = append(out.Available, c)
		}
	}
	out.Booked = sortedSeats(booked)
	out.Locked = sortedSeats(locked)
	out.OwnLocked = sortedSeats(ownLocked)
	return out, nil
}

func sortedSeats(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.Atoi(out[i])
		b, _ := strconv.Atoi(out[j])
		return a < b
	})
	return out
}
