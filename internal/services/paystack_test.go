package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"elitetransport/internal/domain"
)

func TestPaystackVerifySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/R1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_abc" {
			t.Errorf("missing secret header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"data":{"status":"success","reference":"R1","amount":5000,"currency":"GHS"}}`))
	}))
	defer srv.Close()

	client := PaystackClient{SecretKey: "sk_test_abc", BaseURL: srv.URL}
	v, err := client.Verify(context.Background(), "R1")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if v.Amount != 5000 || v.Reference != "R1" {
		t.Fatalf("unexpected verification: %+v", v)
	}
}

func TestPaystackVerifyFailedCharge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"data":{"status":"failed","reference":"R2","amount":5000}}`))
	}))
	defer srv.Close()

	client := PaystackClient{SecretKey: "sk_test_abc", BaseURL: srv.URL}
	if _, err := client.Verify(context.Background(), "R2"); !domain.IsPayment(err) {
		t.Fatalf("expected payment error, got %v", err)
	}
}

func TestPaystackVerifyUnconfigured(t *testing.T) {
	client := PaystackClient{}
	if _, err := client.Verify(context.Background(), "R1"); !domain.IsPayment(err) {
		t.Fatalf("expected payment error without secret, got %v", err)
	}
}
