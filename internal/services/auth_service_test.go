package services

import (
	"encoding/base64"
	"strings"
	"testing"

	"elitetransport/internal/domain"
	"elitetransport/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if !strings.HasPrefix(hash, "pbkdf2$120000$") {
		t.Fatalf("unexpected hash format: %q", hash)
	}
	if ok, rehash := VerifyPassword(hash, "s3cret-pass"); !ok || rehash {
		t.Fatalf("verify failed: ok=%v rehash=%v", ok, rehash)
	}
	if ok, _ := VerifyPassword(hash, "wrong"); ok {
		t.Fatalf("wrong password accepted")
	}
}

func TestPasswordLegacyFormat(t *testing.T) {
	stored := "hash_" + base64.StdEncoding.EncodeToString([]byte("oldpass"))
	ok, rehash := VerifyPassword(stored, "oldpass")
	if !ok {
		t.Fatalf("legacy password rejected")
	}
	if !rehash {
		t.Fatalf("legacy match should request a re-hash")
	}
	if ok, _ := VerifyPassword(stored, "other"); ok {
		t.Fatalf("wrong legacy password accepted")
	}
}

func TestSessionTokenShape(t *testing.T) {
	token := newSessionToken(42)
	if token == "" {
		t.Fatalf("empty token")
	}
	if strings.ContainsAny(token, "+/=") {
		t.Fatalf("token contains URL-unsafe chars: %q", token)
	}
	if newSessionToken(42) == token {
		t.Fatalf("tokens are not random")
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	// Expired rows are filtered by the query itself.
	mock.ExpectQuery("FROM auth_sessions").WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	svc := AuthService{Users: repositories.UserRepository{DB: db.DB}}
	if _, err := svc.VerifyToken("stale-token"); !domain.IsAuth(err) {
		t.Fatalf("expected auth error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGoogleSignInNoAccountFails(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	mock.ExpectQuery("google_id").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("FROM users WHERE LOWER").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	svc := AuthService{
		Users:      repositories.UserRepository{DB: db.DB},
		Passengers: repositories.PassengerRepository{DB: db.DB},
	}
	_, err := svc.Google("signin", GoogleClaims{Sub: "g-123", Email: "kofi@example.com"})
	if !domain.IsAuth(err) {
		t.Fatalf("sign-in must not auto-register, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGoogleSignUpRequiresPhone(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	mock.ExpectQuery("google_id").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("FROM users WHERE LOWER").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	svc := AuthService{
		Users:      repositories.UserRepository{DB: db.DB},
		Passengers: repositories.PassengerRepository{DB: db.DB},
	}
	_, err := svc.Google("signup", GoogleClaims{Sub: "g-123", Email: "kofi@example.com"})
	if !domain.IsValidation(err) {
		t.Fatalf("sign-up without phone should fail validation, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
