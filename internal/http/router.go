package api

import (
	"log"
	stdhttp "net/http"

	intconfig "elitetransport/internal/config"
	intdb "elitetransport/internal/db"
	h "elitetransport/internal/http/handlers"
	"elitetransport/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ensureSchema runs the one-shot schema bootstrap before the first request
// proceeds. Failure rewinds the latch so the next request retries.
func ensureSchema() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := intdb.EnsureSchema(intconfig.DB); err != nil {
			c.AbortWithStatusJSON(stdhttp.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.Next()
	}
}

func NewRouter(env intconfig.Env) *gin.Engine {
	h.Configure(env)
	auth := h.AuthService()

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(), ensureSchema())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	// Misconfigured processor webhook URLs land on the root path; a valid
	// signature header makes it a webhook.
	r.POST("/", h.PaystackWebhook)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		api.GET("/routes", h.GetRouteCatalog)
		api.GET("/passengers", h.GetPassengers)

		bus := api.Group("/bus/:busId")
		bus.GET("/seats", h.GetSeats)
		bus.POST("/lock-seat", h.LockSeat)
		bus.POST("/unlock-seat", h.UnlockSeat)

		api.POST("/booking/confirm", h.ConfirmBooking)
		api.POST("/paystack/webhook", h.PaystackWebhook)

		authGroup := api.Group("/auth")
		authGroup.POST("/google", h.GoogleAuth)
		authGroup.POST("/signin", h.SignIn)
		authGroup.POST("/signup", h.SignUp)
		authGroup.POST("/verify", h.VerifySession)

		user := api.Group("/user")
		user.Use(middleware.RequireAuth(auth))
		user.GET("/bookings", h.GetUserBookings)
		user.GET("/profile", h.GetProfile)

		admin := api.Group("/admin")
		admin.Use(middleware.RequireAuth(auth), middleware.RequireAdmin(env.IsAdminEmail))
		admin.GET("/fleet", h.GetFleetOptions)
		admin.POST("/buses", h.CreateBus)
		admin.POST("/trips", h.CreateTrip)
		admin.POST("/trips/:tripId/end", h.EndTrip)
		admin.POST("/bookings/manual", h.ManualBooking)
		admin.GET("/bookings/upcoming", h.GetUpcomingBookings)
		admin.GET("/booking/:id/receipt.pdf", h.GetBookingReceiptPDF)
		admin.GET("/dashboard", h.GetDashboard)
	}

	return r
}
