package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	intconfig "elitetransport/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)
	sig := signBody("secret-1", body)

	if !VerifyWebhookSignature("secret-1", body, sig) {
		t.Fatalf("valid signature rejected")
	}
	if VerifyWebhookSignature("secret-1", body, strings.Repeat("0", len(sig))) {
		t.Fatalf("forged signature accepted")
	}
	if VerifyWebhookSignature("secret-2", body, sig) {
		t.Fatalf("signature accepted under wrong secret")
	}
	if VerifyWebhookSignature("", body, sig) {
		t.Fatalf("signature accepted with no configured secret")
	}
}

func webhookRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/paystack/webhook", PaystackWebhook)
	return r
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	Configure(intconfig.Env{PaystackSecretKey: "secret-1"})

	body := []byte(`{"event":"charge.success","data":{"reference":"R9"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/paystack/webhook", bytes.NewReader(body))
	req.Header.Set("x-paystack-signature", "deadbeef")
	w := httptest.NewRecorder()
	webhookRouter().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestWebhookChargeSuccessAcknowledges(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db
	defer func() { intconfig.DB = nil }()
	mock.MatchExpectationsInOrder(false)

	Configure(intconfig.Env{PaystackSecretKey: "secret-1"})

	// Best-effort confirm plus fallback lookup; no matching booking exists,
	// the webhook still acknowledges.
	mock.ExpectExec("UPDATE bookings").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("external_ref").WillReturnRows(sqlmock.NewRows(
		[]string{"id", "passenger_id", "bus_id", "trip_id", "seat_number", "price_paid", "status", "external_ref", "created_at"}))

	body := []byte(`{"event":"charge.success","data":{"reference":"R9"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/paystack/webhook", bytes.NewReader(body))
	req.Header.Set("x-paystack-signature", signBody("secret-1", body))
	w := httptest.NewRecorder()
	webhookRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"received":true`) {
		t.Fatalf("missing ack payload: %s", w.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	Configure(intconfig.Env{PaystackSecretKey: "secret-1"})

	body := []byte(`{"event":"charge.dispute.create","data":{"reference":"R9"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/paystack/webhook", bytes.NewReader(body))
	req.Header.Set("x-paystack-signature", signBody("secret-1", body))
	w := httptest.NewRecorder()
	webhookRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for non-charge event, got %d", w.Code)
	}
}
