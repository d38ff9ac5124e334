package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string
	DBDSN   string

	PaystackSecretKey string
	ArkeselAPIKey     string
	ArkeselSenderID   string
	GasWebhookURL     string
	AdminEmails       []string
}

func LoadEnv() Env {
	_ = godotenv.Load()

	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	senderID := strings.TrimSpace(os.Getenv("ARKESEL_SENDER_ID"))
	if senderID == "" {
		senderID = "EliteTransport"
	}

	admins := []string{}
	for _, e := range strings.Split(os.Getenv("ADMIN_EMAILS"), ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			admins = append(admins, e)
		}
	}

	return Env{
		AppAddr:           appAddr,
		GinMode:           strings.TrimSpace(os.Getenv("GIN_MODE")),
		DBDSN:             strings.TrimSpace(os.Getenv("DB_DSN")),
		PaystackSecretKey: strings.TrimSpace(os.Getenv("PAYSTACK_SECRET_KEY")),
		ArkeselAPIKey:     strings.TrimSpace(os.Getenv("ARKESEL_API_KEY")),
		ArkeselSenderID:   senderID,
		GasWebhookURL:     strings.TrimSpace(os.Getenv("GAS_WEBHOOK_URL")),
		AdminEmails:       admins,
	}
}

// IsAdminEmail reports whether email appears in the configured allow-list
// (case-insensitive). There is no database-side role.
func (e Env) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, a := range e.AdminEmails {
		if a == email {
			return true
		}
	}
	return false
}
