package services

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"elitetransport/internal/domain"
	"elitetransport/internal/domain/models"
	"elitetransport/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 120000
	pbkdf2SaltLen    = 16
	pbkdf2KeyLen     = 32
	sessionTTL       = 7 * 24 * time.Hour
)

// AuthService handles credentials, opaque bearer sessions, and the federated
// sign-in flow.
type AuthService struct {
	Users      repositories.UserRepository
	Passengers repositories.PassengerRepository
	IsAdmin    func(email string) bool
}

// HashPassword produces "pbkdf2$<iterations>$<b64 salt>$<b64 hash>".
func HashPassword(password string) (string, error) {
	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	return fmt.Sprintf("pbkdf2$%d$%s$%s",
		pbkdf2Iterations,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key)), nil
}

// VerifyPassword accepts the pbkdf2 format and the legacy
// "hash_"+base64(password) format. needsRehash is true on a legacy match.
func VerifyPassword(stored, password string) (ok bool, needsRehash bool) {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return false, false
	}

	if strings.HasPrefix(stored, "pbkdf2$") {
		parts := strings.Split(stored, "$")
		if len(parts) != 4 {
			return false, false
		}
		iterations, err := strconv.Atoi(parts[1])
		if err != nil || iterations <= 0 {
			return false, false
		}
		salt, err := base64.StdEncoding.DecodeString(parts[2])
		if err != nil {
			return false, false
		}
		want, err := base64.StdEncoding.DecodeString(parts[3])
		if err != nil {
			return false, false
		}
		got := pbkdf2.Key([]byte(password), salt, iterations, len(want), sha256.New)
		return hmac.Equal(got, want), false
	}

	if strings.HasPrefix(stored, "hash_") {
		legacy := "hash_" + base64.StdEncoding.EncodeToString([]byte(password))
		if hmac.Equal([]byte(stored), []byte(legacy)) {
			return true, true
		}
	}
	return false, false
}

// newSessionToken mints an opaque token: user id, timestamp, and 24 bytes of
// randomness, base64 with URL-unsafe chars removed. Not forgeable without
// the auth_sessions row.
func newSessionToken(userID int64) string {
	buf := make([]byte, 24)
	_, _ = rand.Read(buf)
	payload := fmt.Sprintf("%d:%d:%s", userID, time.Now().Unix(), base64.StdEncoding.EncodeToString(buf))
	token := base64.StdEncoding.EncodeToString([]byte(payload))
	return strings.NewReplacer("+", "", "/", "", "=", "").Replace(token)
}

// IssueSession stores a fresh 7-day bearer token for the user.
func (s AuthService) IssueSession(userID int64) (string, time.Time, error) {
	token := newSessionToken(userID)
	expiresAt := time.Now().Add(sessionTTL)
	if err := s.Users.InsertSession(token, userID, expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// VerifyToken resolves a bearer token to its user. Missing or expired rows
// fail with AuthError.
func (s AuthService) VerifyToken(token string) (models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.User{}, domain.AuthError{}
	}
	userID, found, err := s.Users.GetSession(token)
	if err != nil {
		return models.User{}, err
	}
	if !found {
		return models.User{}, domain.AuthError{Msg: "invalid or expired token"}
	}
	user, found, err := s.Users.GetByID(userID)
	if err != nil {
		return models.User{}, err
	}
	if !found {
		return models.User{}, domain.AuthError{Msg: "invalid or expired token"}
	}
	return user, nil
}

// SignUp registers an email/password account and seeds a passenger row.
func (s AuthService) SignUp(email, password, firstName, lastName, phone string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return models.User{}, domain.ValidationError{Msg: "email and password are required"}
	}
	if strings.TrimSpace(phone) == "" {
		return models.User{}, domain.ValidationError{Field: "phone", Msg: "phone is required"}
	}

	if _, exists, err := s.Users.GetByEmail(email); err != nil {
		return models.User{}, err
	} else if exists {
		return models.User{}, domain.ValidationError{Field: "email", Msg: "email already registered"}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Email:        email,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Phone:        strings.TrimSpace(phone),
		PasswordHash: hash,
		AuthMethod:   models.AuthMethodEmail,
	}
	id, err := s.Users.Create(user)
	if err != nil {
		return models.User{}, err
	}
	user.ID = id

	// Seed passenger row so the profile has contact data from day one.
	if _, err := s.Passengers.Insert(models.Passenger{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
	}); err != nil {
		// Best-effort seed; the account itself is fine.
		_ = err
	}
	return user, nil
}

// SignIn verifies email/password. A legacy-format match re-hashes the stored
// password.
func (s AuthService) SignIn(email, password string) (models.User, error) {
	user, found, err := s.Users.GetByEmail(email)
	if err != nil {
		return models.User{}, err
	}
	if !found {
		return models.User{}, domain.AuthError{Msg: "invalid email or password"}
	}

	ok, needsRehash := VerifyPassword(user.PasswordHash, password)
	if !ok {
		return models.User{}, domain.AuthError{Msg: "invalid email or password"}
	}
	if needsRehash {
		if hash, err := HashPassword(password); err == nil {
			_ = s.Users.UpdatePasswordHash(user.ID, hash)
		}
	}
	return user, nil
}

// GoogleClaims is the identity payload posted by the client. The provider
// signature is not verified server-side (known weakness); when a raw
// credential is supplied its payload is re-decoded to reject malformed
// tokens.
type GoogleClaims struct {
	Credential string `json:"credential"`
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Picture    string `json:"picture"`
	Phone      string `json:"phone"`
	NokName    string `json:"nokName"`
	NokPhone   string `json:"nokPhone"`
}

func decodeCredential(claims *GoogleClaims) error {
	if strings.TrimSpace(claims.Credential) == "" {
		return nil
	}
	token, _, err := jwt.NewParser().ParseUnverified(claims.Credential, jwt.MapClaims{})
	if err != nil {
		return domain.ValidationError{Field: "credential", Msg: "malformed identity token"}
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.ValidationError{Field: "credential", Msg: "malformed identity token"}
	}
	if sub, _ := mc["sub"].(string); sub != "" {
		claims.Sub = sub
	}
	if email, _ := mc["email"].(string); email != "" {
		claims.Email = email
	}
	if given, _ := mc["given_name"].(string); given != "" && claims.FirstName == "" {
		claims.FirstName = given
	}
	if family, _ := mc["family_name"].(string); family != "" && claims.LastName == "" {
		claims.LastName = family
	}
	if pic, _ := mc["picture"].(string); pic != "" && claims.Picture == "" {
		claims.Picture = pic
	}
	return nil
}

// Google handles federated sign-in/sign-up. Sign-in with no existing account
// fails (no auto-register); sign-up requires a phone and seeds a passenger.
func (s AuthService) Google(mode string, claims GoogleClaims) (models.User, error) {
	if err := decodeCredential(&claims); err != nil {
		return models.User{}, err
	}
	if strings.TrimSpace(claims.Sub) == "" || strings.TrimSpace(claims.Email) == "" {
		return models.User{}, domain.ValidationError{Msg: "missing identity claims"}
	}

	user, found, err := s.Users.GetByGoogleID(claims.Sub)
	if err != nil {
		return models.User{}, err
	}
	if !found {
		// Attach the provider subject to an existing email account.
		user, found, err = s.Users.GetByEmail(claims.Email)
		if err != nil {
			return models.User{}, err
		}
		if found {
			if err := s.Users.AttachGoogleID(user.ID, claims.Sub, claims.Picture); err != nil {
				return models.User{}, err
			}
			user.GoogleID = claims.Sub
		}
	}

	switch mode {
	case "signin":
		if !found {
			return models.User{}, domain.AuthError{Msg: "no account for this Google identity"}
		}
		return user, nil
	case "signup":
		if found {
			return user, nil
		}
		if strings.TrimSpace(claims.Phone) == "" {
			return models.User{}, domain.ValidationError{Field: "phone", Msg: "phone is required"}
		}
		user = models.User{
			Email:      strings.ToLower(strings.TrimSpace(claims.Email)),
			FirstName:  strings.TrimSpace(claims.FirstName),
			LastName:   strings.TrimSpace(claims.LastName),
			Phone:      strings.TrimSpace(claims.Phone),
			GoogleID:   strings.TrimSpace(claims.Sub),
			PictureURL: strings.TrimSpace(claims.Picture),
			AuthMethod: models.AuthMethodGoogle,
			Verified:   true,
		}
		id, err := s.Users.Create(user)
		if err != nil {
			return models.User{}, err
		}
		user.ID = id
		if _, err := s.Passengers.Insert(models.Passenger{
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
			Phone:     user.Phone,
			NokName:   claims.NokName,
			NokPhone:  claims.NokPhone,
		}); err != nil {
			_ = err
		}
		return user, nil
	default:
		return models.User{}, domain.ValidationError{Field: "mode", Msg: "mode must be signin or signup"}
	}
}
