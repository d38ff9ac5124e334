package services

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"elitetransport/internal/domain"
	"elitetransport/internal/repositories"
	"elitetransport/internal/utils"
)

// LockTTL is how long a seat hold lives without a refresh.
const LockTTL = 5 * time.Minute

// LockService manages short-lived seat holds tied to an opaque lock session.
type LockService struct {
	Trips    repositories.TripRepository
	Buses    repositories.BusRepository
	Locks    repositories.SeatLockRepository
	Bookings repositories.BookingRepository

	// Now is injected in tests.
	Now func() time.Time
}

// LockResult is the acquire response.
type LockResult struct {
	LockID    string `json:"lock_id"`
	TripID    *int64 `json:"trip_id"`
	Seat      string `json:"seat"`
	ExpiresAt string `json:"expires_at"`
}

func (s LockService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// NewLockID mints a fresh opaque lock-session identifier.
func NewLockID() string {
	buf := make([]byte, 18)
	_, _ = rand.Read(buf)
	id := base64.StdEncoding.EncodeToString(buf)
	id = strings.NewReplacer("+", "", "/", "", "=", "").Replace(id)
	return fmt.Sprintf("lock_%d_%s", time.Now().UnixMilli(), id)
}

// Acquire takes or refreshes a hold on one seat. A re-lock from the same
// owner extends the expiry; anyone else gets SeatLockedError.
func (s LockService) Acquire(busID int64, seat string, tripID *int64, lockID string) (LockResult, error) {
	var out LockResult

	trip, err := s.Trips.Resolve(busID, tripID)
	if err != nil {
		return out, err
	}
	var resolvedTrip *int64
	if trip != nil {
		resolvedTrip = &trip.ID
	}

	bus, err := s.Buses.GetByID(busID)
	if err != nil {
		return out, err
	}
	canonical, err := utils.NormalizeSeat(seat, bus.Capacity)
	if err != nil {
		return out, domain.ValidationError{Field: "seat", Msg: err.Error()}
	}

	owner := strings.TrimSpace(lockID)
	if owner == "" {
		owner = NewLockID()
	}

	// Lazy GC, then isolate this trip's namespace from stale rows.
	if err := s.Locks.DeleteExpired(busID, canonical); err != nil {
		return out, err
	}
	if resolvedTrip != nil {
		if err := s.Locks.DeleteTripMismatch(busID, canonical, *resolvedTrip); err != nil {
			return out, err
		}
	}

	existing, found, err := s.Locks.FindActive(busID, resolvedTrip, canonical)
	if err != nil {
		return out, err
	}
	if found && existing.LockedBy != owner {
		return out, domain.SeatLockedError{Seat: canonical}
	}

	booked, err := s.Bookings.HasConfirmedSeat(busID, resolvedTrip, canonical)
	if err != nil {
		return out, err
	}
	if booked {
		return out, domain.SeatBookedError{Seat: canonical}
	}

	expiresAt := s.now().Add(LockTTL)
	if found {
		if err := s.Locks.Extend(existing.ID, expiresAt); err != nil {
			return out, err
		}
	} else {
		inserted, err := s.Locks.InsertConditional(busID, resolvedTrip, canonical, owner, expiresAt)
		if err != nil {
			return out, err
		}
		if !inserted {
			// Lost the conditional write to a concurrent acquirer.
			return out, domain.SeatLockedError{Seat: canonical}
		}
	}

	return LockResult{
		LockID:    owner,
		TripID:    resolvedTrip,
		Seat:      canonical,
		ExpiresAt: utils.FormatDateTime(expiresAt),
	}, nil
}

// Release drops the owner's hold. Unknown rows are a silent no-op; a missing
// lockID is an error.
func (s LockService) Release(busID int64, seat string, tripID *int64, lockID string) (*int64, string, error) {
	if strings.TrimSpace(lockID) == "" {
		return nil, "", domain.ValidationError{Field: "lockId", Msg: "missing lock id"}
	}

	trip, err := s.Trips.Resolve(busID, tripID)
	if err != nil {
		return nil, "", err
	}
	var resolvedTrip *int64
	if trip != nil {
		resolvedTrip = &trip.ID
	}

	bus, err := s.Buses.GetByID(busID)
	if err != nil {
		return nil, "", err
	}
	canonical, err := utils.NormalizeSeat(seat, bus.Capacity)
	if err != nil {
		return nil, "", domain.ValidationError{Field: "seat", Msg: err.Error()}
	}

	if err := s.Locks.DeleteOwned(busID, resolvedTrip, canonical, strings.TrimSpace(lockID)); err != nil {
		return nil, "", err
	}
	return resolvedTrip, canonical, nil
}
