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

	"github.com/phpdave11/gofpdf"
)

// ReceiptClient posts booking details to the external receipt generator (a
// webhook-style side-effects service) and returns the hosted receipt URL.
type ReceiptClient struct {
	WebhookURL string
	HTTP       *http.Client
}

// ReceiptRequest carries what the generator needs to render a receipt.
type ReceiptRequest struct {
	BookingRef    string   `json:"bookingRef"`
	PassengerName string   `json:"passengerName"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	RouteName     string   `json:"routeName"`
	BusName       string   `json:"busName"`
	Seats         []string `json:"seats"`
	Amount        float64  `json:"amount"`
	DepartureDate string   `json:"departureDate,omitempty"`
	DepartureTime string   `json:"departureTime,omitempty"`
}

// ReceiptResult is the generator's answer.
type ReceiptResult struct {
	ReceiptURL  string `json:"receipt_url"`
	DriveFileID string `json:"drive_file_id"`
}

func (c ReceiptClient) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 20 * time.Second}
}

// Generate calls the receipt webhook. Errors are returned for the caller to
// log and swallow; receipt failures never invalidate a booking.
func (c ReceiptClient) Generate(ctx context.Context, req ReceiptRequest) (ReceiptResult, error) {
	var out ReceiptResult
	if c.WebhookURL == "" {
		return out, fmt.Errorf("receipt webhook URL not set")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return out, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return out, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return out, fmt.Errorf("receipt service status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, err
	}
	if strings.TrimSpace(out.ReceiptURL) == "" {
		return out, fmt.Errorf("receipt service returned no URL")
	}
	return out, nil
}

// BuildReceiptPDF renders an A4 receipt for back-office download. Same data
// as the hosted receipt, generated locally.
func BuildReceiptPDF(req ReceiptRequest) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "EliteTransport", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Booking Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	line := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(45, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}

	line("Booking", req.BookingRef)
	line("Passenger", req.PassengerName)
	line("Phone", req.Phone)
	line("Email", req.Email)
	line("Route", req.RouteName)
	line("Bus", req.BusName)
	line("Seat(s)", strings.Join(req.Seats, ", "))
	if req.DepartureDate != "" {
		line("Departure", strings.TrimSpace(req.DepartureDate+" "+req.DepartureTime))
	}
	line("Amount", "GHS "+utils.FormatMoney(req.Amount))

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "Thank you for travelling with EliteTransport.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("receipt-%s.pdf", strings.ReplaceAll(req.BookingRef, "/", "-"))
	return buf.Bytes(), filename, nil
}
