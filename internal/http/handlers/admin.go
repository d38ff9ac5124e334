package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"elitetransport/internal/domain/models"
	"elitetransport/internal/http/middleware"
	"elitetransport/internal/repositories"
	"elitetransport/internal/services"
	"elitetransport/internal/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/admin/fleet
// Routes, buses, active trips with booked counts, and the 20 most recent
// ended trips.
func GetFleetOptions(c *gin.Context) {
	routeRepo := repositories.RouteRepository{}
	busRepo := repositories.BusRepository{}
	tripRepo := repositories.TripRepository{}
	bookingRepo := repositories.BookingRepository{}

	routes, err := routeRepo.ListRoutes()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	buses, err := busRepo.ListAll()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	busByID := map[int64]models.Bus{}
	for _, b := range buses {
		busByID[b.ID] = b
	}

	active, err := tripRepo.ListActive()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	activeRows := []gin.H{}
	for _, t := range active {
		booked, err := bookingRepo.CountConfirmed(t.BusID, t.ID)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		capacity := busByID[t.BusID].Capacity
		left := capacity - booked
		if left < 0 {
			left = 0
		}
		activeRows = append(activeRows, gin.H{
			"id":             t.ID,
			"routeId":        t.RouteID,
			"busId":          t.BusID,
			"busName":        busByID[t.BusID].Name,
			"departure_date": t.DepartureDate,
			"departure_time": t.DepartureTime,
			"price":          t.Price,
			"booked":         booked,
			"seatsLeft":      left,
			"started_at":     t.StartedAt,
		})
	}

	recent, err := tripRepo.ListRecentEnded()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	recentRows := []gin.H{}
	for _, t := range recent {
		recentRows = append(recentRows, gin.H{
			"id":             t.ID,
			"routeId":        t.RouteID,
			"busId":          t.BusID,
			"busName":        busByID[t.BusID].Name,
			"departure_date": t.DepartureDate,
			"departure_time": t.DepartureTime,
			"price":          t.Price,
			"status":         t.Status,
			"ended_at":       t.EndedAt,
		})
	}

	routeRows := []gin.H{}
	for _, r := range routes {
		routeRows = append(routeRows, gin.H{"id": r.ID, "name": r.Name, "groupId": r.GroupID})
	}
	busRows := []gin.H{}
	for _, b := range buses {
		busRows = append(busRows, gin.H{
			"id": b.ID, "name": b.Name, "plate_number": b.PlateNumber,
			"routeId": b.RouteID, "capacity": b.Capacity, "price": b.Price,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"routes":      routeRows,
		"buses":       busRows,
		"activeTrips": activeRows,
		"recentTrips": recentRows,
	})
}

type createBusRequest struct {
	Name           string  `json:"name"`
	RouteID        int64   `json:"routeId"`
	PlateNumber    string  `json:"plateNumber"`
	Capacity       int     `json:"capacity"`
	AvailableSeats int     `json:"availableSeats"`
	Price          float64 `json:"price"`
	RouteText      string  `json:"route"`
}

// POST /api/admin/buses
func CreateBus(c *gin.Context) {
	var req createBusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.RouteID <= 0 {
		RespondError(c, http.StatusBadRequest, "name and route are required", nil)
		return
	}
	if req.Capacity <= 0 {
		RespondError(c, http.StatusBadRequest, "capacity must be positive", nil)
		return
	}
	if _, err := (repositories.RouteRepository{}).GetRoute(req.RouteID); err != nil {
		RespondDomainError(c, err)
		return
	}

	available := req.AvailableSeats
	if available == 0 || available > req.Capacity {
		available = req.Capacity
	}
	if available < 0 {
		available = 0
	}

	id, err := repositories.BusRepository{}.Create(models.Bus{
		RouteID:        req.RouteID,
		Name:           strings.TrimSpace(req.Name),
		PlateNumber:    strings.TrimSpace(req.PlateNumber),
		Capacity:       req.Capacity,
		AvailableSeats: available,
		Price:          req.Price,
		RouteText:      strings.TrimSpace(req.RouteText),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "created": true})
}

type createTripRequest struct {
	RouteID       int64   `json:"routeId"`
	BusID         int64   `json:"busId"`
	DepartureDate string  `json:"departureDate"`
	DepartureTime string  `json:"departureTime"`
	Price         float64 `json:"price"`
}

// POST /api/admin/trips
// A bus may have at most one active trip; scheduling resets the bus's seat
// hint and repoints its route and price.
func CreateTrip(c *gin.Context) {
	var req createTripRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.RouteID <= 0 || req.BusID <= 0 {
		RespondError(c, http.StatusBadRequest, "route and bus are required", nil)
		return
	}

	tripRepo := repositories.TripRepository{}
	busRepo := repositories.BusRepository{}

	if _, err := (repositories.RouteRepository{}).GetRoute(req.RouteID); err != nil {
		RespondDomainError(c, err)
		return
	}
	if _, err := busRepo.GetByID(req.BusID); err != nil {
		RespondDomainError(c, err)
		return
	}

	hasActive, err := tripRepo.HasActiveForBus(req.BusID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if hasActive {
		RespondError(c, http.StatusBadRequest, "bus already has an active trip", nil)
		return
	}

	id, err := tripRepo.Create(models.TripSchedule{
		RouteID:       req.RouteID,
		BusID:         req.BusID,
		DepartureDate: strings.TrimSpace(req.DepartureDate),
		DepartureTime: strings.TrimSpace(req.DepartureTime),
		Price:         req.Price,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	if err := busRepo.ApplyTrip(req.BusID, req.RouteID, req.Price); err != nil {
		RespondDomainError(c, err)
		return
	}

	utils.LogEvent(middleware.GetRequestID(c), "admin", "create_trip",
		"trip="+strconv.FormatInt(id, 10)+" bus="+strconv.FormatInt(req.BusID, 10))
	c.JSON(http.StatusOK, gin.H{"id": id, "status": models.TripStatusActive})
}

// POST /api/admin/trips/:tripId/end
// Ends an active trip, resets the bus hint and wipes every lock for the trip.
func EndTrip(c *gin.Context) {
	tripID, err := strconv.ParseInt(strings.TrimSpace(c.Param("tripId")), 10, 64)
	if err != nil || tripID <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid trip id", nil)
		return
	}

	tripRepo := repositories.TripRepository{}
	trip, err := tripRepo.GetByID(tripID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	affected, err := tripRepo.End(tripID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if affected == 0 {
		RespondError(c, http.StatusBadRequest, "trip is not active", nil)
		return
	}

	if err := (repositories.BusRepository{}).ResetSeats(trip.BusID); err != nil {
		RespondDomainError(c, err)
		return
	}
	if err := (repositories.SeatLockRepository{}).DeleteByTrip(tripID); err != nil {
		RespondDomainError(c, err)
		return
	}

	utils.LogEvent(middleware.GetRequestID(c), "admin", "end_trip", "trip="+strconv.FormatInt(tripID, 10))
	c.JSON(http.StatusOK, gin.H{"ended": true, "trip_id": tripID})
}

// POST /api/admin/bookings/manual
func ManualBooking(c *gin.Context) {
	var req services.ManualRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.BusID <= 0 {
		RespondError(c, http.StatusBadRequest, "missing busId", nil)
		return
	}

	svc := bookingService(middleware.GetRequestID(c))
	result, err := svc.ManualBook(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/admin/bookings/upcoming
func GetUpcomingBookings(c *gin.Context) {
	routeID, _ := strconv.ParseInt(c.Query("routeId"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	rows, total, err := repositories.ReportRepository{}.ListUpcoming(repositories.UpcomingFilter{
		RouteID:  routeID,
		DateFrom: c.Query("dateFrom"),
		DateTo:   c.Query("dateTo"),
		Status:   c.Query("status"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	byRoute := map[string][]repositories.UpcomingRow{}
	var revenue float64
	for _, r := range rows {
		key := r.RouteName
		if key == "" {
			key = "unassigned"
		}
		byRoute[key] = append(byRoute[key], r)
		if r.Status == models.BookingStatusConfirmed {
			revenue += r.Price
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": rows,
		"byRoute":  byRoute,
		"summary": gin.H{
			"total":   total,
			"page":    len(rows),
			"revenue": revenue,
		},
		"limit":  limit,
		"offset": offset,
	})
}

// GET /api/admin/dashboard
func GetDashboard(c *gin.Context) {
	reportRepo := repositories.ReportRepository{}

	counts, err := reportRepo.Dashboard()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	recent, err := reportRepo.ListRecentBookings()
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"counts":         counts,
		"recentBookings": recent,
	})
}

// GET /api/admin/booking/:id/receipt.pdf
// Local PDF rendering of the receipt for back-office download.
func GetBookingReceiptPDF(c *gin.Context) {
	bookingID, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || bookingID <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid booking id", nil)
		return
	}

	bookingRepo := repositories.BookingRepository{}
	booking, err := bookingRepo.GetByID(bookingID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "booking not found", nil)
		return
	}
	passenger, err := repositories.PassengerRepository{}.GetByID(booking.PassengerID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	bus, err := repositories.BusRepository{}.GetByID(booking.BusID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	// A multi-seat purchase shares a base reference; include every sibling
	// seat on the same receipt.
	seats := []string{booking.SeatNumber}
	amount := booking.PricePaid
	baseRef := booking.ExternalRef
	if i := strings.LastIndex(baseRef, ":"); i > 0 {
		baseRef = baseRef[:i]
	}
	if siblings, err := bookingRepo.FindByRefPrefix(baseRef); err == nil && len(siblings) > 1 {
		seats = seats[:0]
		amount = 0
		for _, b := range siblings {
			seats = append(seats, b.SeatNumber)
			amount += b.PricePaid
		}
	}

	req := services.ReceiptRequest{
		BookingRef:    "ELITE-" + strconv.FormatInt(booking.ID, 10),
		PassengerName: strings.TrimSpace(passenger.FirstName + " " + passenger.LastName),
		Email:         passenger.Email,
		Phone:         passenger.Phone,
		RouteName:     bus.RouteText,
		BusName:       bus.Name,
		Seats:         seats,
		Amount:        amount,
	}
	if booking.TripID != nil {
		if trip, err := (repositories.TripRepository{}).GetByID(*booking.TripID); err == nil {
			req.DepartureDate = trip.DepartureDate
			req.DepartureTime = trip.DepartureTime
		}
	}

	pdf, filename, err := services.BuildReceiptPDF(req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
