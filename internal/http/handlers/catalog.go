package handlers

import (
	"net/http"
	"strconv"

	"elitetransport/internal/repositories"

	"github.com/gin-gonic/gin"
)

type catalogBus struct {
	ID             int64   `json:"id"`
	TripID         *int64  `json:"tripId,omitempty"`
	Name           string  `json:"name"`
	PlateNumber    string  `json:"plate_number"`
	Capacity       int     `json:"capacity"`
	AvailableSeats int     `json:"availableSeats"`
	Price          float64 `json:"price"`
	Route          string  `json:"route"`
	DepartureDate  string  `json:"departure_date,omitempty"`
	DepartureTime  string  `json:"departure_time,omitempty"`
}

type catalogRoute struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Buses       []catalogBus `json:"buses"`
}

// GET /api/routes
// The listing computes seat availability live; the bus row's cached
// available_seats hint is not trusted here.
func GetRouteCatalog(c *gin.Context) {
	routeRepo := repositories.RouteRepository{}
	busRepo := repositories.BusRepository{}
	tripRepo := repositories.TripRepository{}
	bookingRepo := repositories.BookingRepository{}

	groups, err := routeRepo.ListGroups()
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	out := gin.H{}
	for _, g := range groups {
		routes, err := routeRepo.ListRoutesByGroup(g.ID)
		if err != nil {
			RespondDomainError(c, err)
			return
		}

		entries := []catalogRoute{}
		for _, rt := range routes {
			buses, err := busRepo.ListByRoute(rt.ID)
			if err != nil {
				RespondDomainError(c, err)
				return
			}

			cbuses := []catalogBus{}
			for _, b := range buses {
				cb := catalogBus{
					ID:          b.ID,
					Name:        b.Name,
					PlateNumber: b.PlateNumber,
					Capacity:    b.Capacity,
					Price:       b.Price,
					Route:       b.RouteText,
				}
				if cb.Route == "" {
					cb.Route = rt.Name
				}

				trip, err := tripRepo.Resolve(b.ID, nil)
				if err != nil {
					RespondDomainError(c, err)
					return
				}
				var tripID *int64
				if trip != nil {
					tripID = &trip.ID
					cb.TripID = tripID
					cb.Price = trip.Price
					cb.DepartureDate = trip.DepartureDate
					cb.DepartureTime = trip.DepartureTime
				}

				booked, err := bookingRepo.ListConfirmedSeats(b.ID, tripID)
				if err != nil {
					RespondDomainError(c, err)
					return
				}
				available := b.Capacity - len(booked)
				if available < 0 {
					available = 0
				}
				cb.AvailableSeats = available
				cbuses = append(cbuses, cb)
			}

			entries = append(entries, catalogRoute{
				ID:          rt.ID,
				Name:        rt.Name,
				Description: rt.Description,
				Buses:       cbuses,
			})
		}
		out[g.Key] = entries
	}

	c.JSON(http.StatusOK, out)
}

// GET /api/passengers?limit=&offset=
func GetPassengers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	passengers, err := repositories.PassengerRepository{}.List(limit, offset)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	rows := []gin.H{}
	for _, p := range passengers {
		rows = append(rows, gin.H{
			"id":         p.ID,
			"firstName":  p.FirstName,
			"lastName":   p.LastName,
			"email":      p.Email,
			"phone":      p.Phone,
			"nokName":    p.NokName,
			"nokPhone":   p.NokPhone,
			"created_at": p.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"passengers": rows, "limit": limit, "offset": offset})
}
