package repositories

import (
	"strings"

	"elitetransport/internal/utils"
)

// tripArg turns an optional trip id into a query argument suitable for
// COALESCE(trip_id, -1) = COALESCE(?, -1) matching, so that trip-null mode is
// distinct from any numbered trip yet self-consistent.
func tripArg(tripID *int64) any {
	if tripID == nil {
		return nil
	}
	return *tripID
}

// seatPair returns the canonical and legacy spellings of a seat for equality
// matching against old rows. Falls back to the canonical form when no legacy
// spelling exists.
func seatPair(canonical string) (string, string) {
	legacy := strings.TrimSpace(utils.SeatToLegacy(canonical))
	if legacy == "" {
		legacy = canonical
	}
	return canonical, legacy
}
