package models

const (
	AuthMethodEmail  = "email"
	AuthMethodGoogle = "google"
)

// User is the auth-level identity (distinct from per-booking Passenger rows).
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Phone        string `json:"phone"`
	PasswordHash string `json:"-"`
	GoogleID     string `json:"-"`
	PictureURL   string `json:"picture,omitempty"`
	AuthMethod   string `json:"authMethod"`
	Verified     bool   `json:"verified"`
}

// AuthSession is an opaque DB-backed bearer token with a 7-day TTL.
// Revocation is row deletion.
type AuthSession struct {
	Token     string
	UserID    int64
	ExpiresAt string
}
