package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func parseBusID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("busId")), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid bus id", nil)
		return 0, false
	}
	return id, true
}

func parseOptionalTrip(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

// GET /api/bus/:busId/seats?tripId=&lockId=
func GetSeats(c *gin.Context) {
	busID, ok := parseBusID(c)
	if !ok {
		return
	}

	seatMap, err := availabilityService().GetSeats(busID, parseOptionalTrip(c.Query("tripId")), strings.TrimSpace(c.Query("lockId")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, seatMap)
}

type seatLockRequest struct {
	Seat   string `json:"seat"`
	TripID *int64 `json:"tripId"`
	LockID string `json:"lockId"`
}

// POST /api/bus/:busId/lock-seat
func LockSeat(c *gin.Context) {
	busID, ok := parseBusID(c)
	if !ok {
		return
	}
	var req seatLockRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if strings.TrimSpace(req.Seat) == "" {
		RespondError(c, http.StatusBadRequest, "missing seat", nil)
		return
	}

	result, err := lockService().Acquire(busID, req.Seat, req.TripID, req.LockID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// POST /api/bus/:busId/unlock-seat
func UnlockSeat(c *gin.Context) {
	busID, ok := parseBusID(c)
	if !ok {
		return
	}
	var req seatLockRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if strings.TrimSpace(req.Seat) == "" {
		RespondError(c, http.StatusBadRequest, "missing seat", nil)
		return
	}

	tripID, seat, err := lockService().Release(busID, req.Seat, req.TripID, req.LockID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unlocked": true, "trip_id": tripID, "seat": seat})
}
