package handlers

import (
	"net/http"

	"elitetransport/internal/domain"

	"github.com/gin-gonic/gin"
)

// RespondDomainError maps domain errors to the public error contract. Seat
// conflicts and payment failures surface as 400.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err),
		domain.IsSeatLocked(err),
		domain.IsSeatBooked(err),
		domain.IsLockExpired(err),
		domain.IsPayment(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case domain.IsAuth(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case domain.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
