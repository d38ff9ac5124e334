package handlers

import (
	"net/http"

	intconfig "elitetransport/internal/config"

	"github.com/gin-gonic/gin"
)

// GET /api/health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /api/db-check
func DBCheck(c *gin.Context) {
	if err := intconfig.EnsureDB(); err != nil {
		RespondError(c, http.StatusInternalServerError, "database unavailable", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"database": "ok"})
}
