package handlers

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"elitetransport/internal/http/middleware"
	"elitetransport/internal/utils"

	"github.com/gin-gonic/gin"
)

const paystackSignatureHeader = "x-paystack-signature"

// VerifyWebhookSignature computes HMAC-SHA-512 of the raw body with the
// processor secret and compares against the header in constant time.
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	if secret == "" || strings.TrimSpace(signature) == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature)))
}

// PaystackWebhook handles POST /api/paystack/webhook and the POST /
// compatibility path. Processing is idempotent; a valid signature always
// yields 200 {received:true} whether or not a booking matched.
func PaystackWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable body", nil)
		return
	}

	if !VerifyWebhookSignature(env.PaystackSecretKey, body, c.GetHeader(paystackSignatureHeader)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var event struct {
		Event string `json:"event"`
		Data  struct {
			Reference string `json:"reference"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		// Signed but unparsable: acknowledge so the processor stops retrying.
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if event.Event == "charge.success" && strings.TrimSpace(event.Data.Reference) != "" {
		reqID := middleware.GetRequestID(c)
		utils.LogEvent(reqID, "webhook", "charge_success", "ref="+event.Data.Reference)
		bookingService(reqID).HandleChargeSuccess(c.Request.Context(), event.Data.Reference)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
