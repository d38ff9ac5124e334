package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"elitetransport/internal/utils"
)

// ArkeselClient sends SMS through the Arkesel v2 API. All sends are
// best-effort: callers log and swallow errors.
type ArkeselClient struct {
	APIKey   string
	SenderID string
	BaseURL  string
	HTTP     *http.Client
}

func (c ArkeselClient) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return "https://sms.arkesel.com"
}

func (c ArkeselClient) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// Send delivers one message to one recipient.
func (c ArkeselClient) Send(ctx context.Context, phone, message string) error {
	phone = strings.TrimSpace(phone)
	if c.APIKey == "" {
		return fmt.Errorf("arkesel API key not set")
	}
	if phone == "" {
		return fmt.Errorf("empty recipient")
	}

	sender := c.SenderID
	if sender == "" {
		sender = "EliteTransport"
	}

	payload, err := json.Marshal(map[string]any{
		"sender":     sender,
		"message":    message,
		"recipients": []string{phone},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+"/api/v2/sms/send", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.APIKey)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("sms send failed: status %d", resp.StatusCode)
	}
	return nil
}

// BookingSMS formats the confirmation message sent after finalization.
func BookingSMS(bookingRef string, seats []string, amount float64, receiptURL string) string {
	msg := fmt.Sprintf("EliteTransport: booking %s confirmed. Seat(s) %s, amount GHS %s.",
		bookingRef, strings.Join(seats, ","), utils.FormatMoney(amount))
	if receiptURL != "" {
		msg += " Receipt: " + receiptURL
	}
	return msg
}
