package handlers

import (
	"net/http"

	"elitetransport/internal/http/middleware"
	"elitetransport/internal/repositories"

	"github.com/gin-gonic/gin"
)

// GET /api/user/profile
func GetProfile(c *gin.Context) {
	user, ok := middleware.GetAuthUser(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":    user,
		"isAdmin": env.IsAdminEmail(user.Email),
	})
}

// GET /api/user/bookings
// Booking history is keyed by the passenger rows sharing the user's email.
func GetUserBookings(c *gin.Context) {
	user, ok := middleware.GetAuthUser(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	bookings, err := repositories.BookingRepository{}.ListByPassengerEmail(user.Email)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	busRepo := repositories.BusRepository{}
	receiptRepo := repositories.ReceiptRepository{}
	rows := []gin.H{}
	for _, b := range bookings {
		row := gin.H{
			"booking_id": b.ID,
			"seat":       b.SeatNumber,
			"price":      b.PricePaid,
			"status":     b.Status,
			"trip_id":    b.TripID,
			"created_at": b.CreatedAt,
		}
		if bus, err := busRepo.GetByID(b.BusID); err == nil {
			row["bus_name"] = bus.Name
			row["route"] = bus.RouteText
		}
		if rec, found, err := receiptRepo.GetByBookingID(b.ID); err == nil && found {
			row["receipt_url"] = rec.ReceiptURL
		}
		rows = append(rows, row)
	}
	c.JSON(http.StatusOK, gin.H{"bookings": rows})
}
