package handlers

import (
	"net/http"

	intconfig "elitetransport/internal/config"
	"elitetransport/internal/http/middleware"
	"elitetransport/internal/repositories"
	"elitetransport/internal/services"

	"github.com/gin-gonic/gin"
)

var env intconfig.Env

// Configure hands the loaded environment to the handlers package. Called once
// from the router.
func Configure(e intconfig.Env) {
	env = e
}

// RespondError sends standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string, err error) {
	payload := gin.H{
		"error":      message,
		"request_id": middleware.GetRequestID(c),
	}
	if err != nil {
		payload["detail"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		RespondError(c, http.StatusBadRequest, "empty body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid payload", err)
		return false
	}
	return true
}

func availabilityService() services.AvailabilityService {
	return services.AvailabilityService{
		Trips:    repositories.TripRepository{},
		Buses:    repositories.BusRepository{},
		Locks:    repositories.SeatLockRepository{},
		Bookings: repositories.BookingRepository{},
	}
}

func lockService() services.LockService {
	return services.LockService{
		Trips:    repositories.TripRepository{},
		Buses:    repositories.BusRepository{},
		Locks:    repositories.SeatLockRepository{},
		Bookings: repositories.BookingRepository{},
	}
}

func bookingService(requestID string) services.BookingService {
	paystack := services.PaystackClient{SecretKey: env.PaystackSecretKey}
	sms := services.ArkeselClient{APIKey: env.ArkeselAPIKey, SenderID: env.ArkeselSenderID}
	receipts := services.ReceiptClient{WebhookURL: env.GasWebhookURL}

	return services.BookingService{
		Trips:           repositories.TripRepository{},
		Buses:           repositories.BusRepository{},
		Routes:          repositories.RouteRepository{},
		Locks:           repositories.SeatLockRepository{},
		Bookings:        repositories.BookingRepository{},
		Passengers:      repositories.PassengerRepository{},
		Receipts:        repositories.ReceiptRepository{},
		VerifyPayment:   paystack.Verify,
		GenerateReceipt: receipts.Generate,
		SendSMS:         sms.Send,
		RequestID:       requestID,
	}
}

// AuthService builds the shared auth component; exported for router wiring.
func AuthService() services.AuthService {
	return services.AuthService{
		Users:      repositories.UserRepository{},
		Passengers: repositories.PassengerRepository{},
		IsAdmin:    env.IsAdminEmail,
	}
}
