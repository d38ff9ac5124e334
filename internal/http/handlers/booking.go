package handlers

import (
	"net/http"

	"elitetransport/internal/http/middleware"
	"elitetransport/internal/services"

	"github.com/gin-gonic/gin"
)

// POST /api/booking/confirm
func ConfirmBooking(c *gin.Context) {
	var req services.ConfirmRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.BusID <= 0 {
		RespondError(c, http.StatusBadRequest, "missing busId", nil)
		return
	}

	svc := bookingService(middleware.GetRequestID(c))
	result, err := svc.Confirm(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
