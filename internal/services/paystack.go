package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"elitetransport/internal/domain"
)

// PaystackClient verifies transactions server-to-server against the
// processor's verify endpoint.
type PaystackClient struct {
	SecretKey string
	BaseURL   string
	HTTP      *http.Client
}

// PaystackVerification is the subset of the verify payload the finalizer
// needs. Amount is in minor units (pesewas).
type PaystackVerification struct {
	Status    string
	Reference string
	Amount    int64
	Currency  string
	PaidAt    string
}

func (c PaystackClient) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return "https://api.paystack.co"
}

func (c PaystackClient) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 15 * time.Second}
}

// Verify calls GET /transaction/verify/:reference. A non-success status or an
// unreachable processor surfaces as a PaymentError.
func (c PaystackClient) Verify(ctx context.Context, reference string) (PaystackVerification, error) {
	var out PaystackVerification
	if c.SecretKey == "" {
		return out, domain.PaymentError{Msg: "payment processor is not configured"}
	}
	if reference == "" {
		return out, domain.ValidationError{Field: "paystackRef", Msg: "missing reference"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL()+"/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return out, err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return out, domain.PaymentError{Msg: "payment verification failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return out, domain.PaymentError{Msg: "payment verification failed", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return out, domain.PaymentError{Msg: fmt.Sprintf("payment verification failed (status %d)", resp.StatusCode)}
	}

	var payload struct {
		Status bool `json:"status"`
		Data   struct {
			Status    string `json:"status"`
			Reference string `json:"reference"`
			Amount    int64  `json:"amount"`
			Currency  string `json:"currency"`
			PaidAt    string `json:"paid_at"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return out, domain.PaymentError{Msg: "payment verification failed", Err: err}
	}

	out = PaystackVerification{
		Status:    payload.Data.Status,
		Reference: payload.Data.Reference,
		Amount:    payload.Data.Amount,
		Currency:  payload.Data.Currency,
		PaidAt:    payload.Data.PaidAt,
	}
	if !payload.Status || out.Status != "success" {
		return out, domain.PaymentError{Msg: "payment was not successful"}
	}
	return out, nil
}
