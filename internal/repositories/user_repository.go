package repositories

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	intconfig "elitetransport/internal/config"
	intdb "elitetransport/internal/db"
	"elitetransport/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const userColumns = `id, COALESCE(email, ''), COALESCE(first_name, ''), COALESCE(last_name, ''),
	COALESCE(phone, ''), password_hash, google_id, picture_url,
	COALESCE(auth_method, 'email'), COALESCE(verified, 0)`

func scanUser(scan func(dest ...any) error) (models.User, error) {
	var u models.User
	var hash, gid, pic sql.NullString
	var verified int
	err := scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &hash, &gid, &pic, &u.AuthMethod, &verified)
	u.PasswordHash = hash.String
	u.GoogleID = gid.String
	u.PictureURL = pic.String
	u.Verified = verified != 0
	return u, err
}

// GetByEmail looks a user up case-insensitively. Returns found=false on no row.
func (r UserRepository) GetByEmail(email string) (models.User, bool, error) {
	u, err := scanUser(r.db().QueryRow(`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER(?) LIMIT 1`, strings.TrimSpace(email)).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, false, nil
		}
		return u, false, err
	}
	return u, true, nil
}

func (r UserRepository) GetByGoogleID(sub string) (models.User, bool, error) {
	u, err := scanUser(r.db().QueryRow(`SELECT `+userColumns+` FROM users WHERE google_id = ? LIMIT 1`, strings.TrimSpace(sub)).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, false, nil
		}
		return u, false, err
	}
	return u, true, nil
}

func (r UserRepository) GetByID(id int64) (models.User, bool, error) {
	u, err := scanUser(r.db().QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, false, nil
		}
		return u, false, err
	}
	return u, true, nil
}

func (r UserRepository) Create(u models.User) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO users (email, first_name, last_name, phone, password_hash, google_id, picture_url, auth_method, verified, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())
	`, strings.ToLower(strings.TrimSpace(u.Email)), u.FirstName, u.LastName, u.Phone,
		intdb.NullIfEmpty(u.PasswordHash), intdb.NullIfEmpty(u.GoogleID), intdb.NullIfEmpty(u.PictureURL),
		u.AuthMethod, boolToInt(u.Verified))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// AttachGoogleID links a provider subject to an existing email account.
func (r UserRepository) AttachGoogleID(userID int64, sub, pictureURL string) error {
	_, err := r.db().Exec(`
		UPDATE users SET google_id = ?, picture_url = COALESCE(?, picture_url)
		WHERE id = ?
	`, sub, intdb.NullIfEmpty(pictureURL), userID)
	return err
}

// UpdatePasswordHash is used when a legacy-format password is re-hashed after
// a successful login.
func (r UserRepository) UpdatePasswordHash(userID int64, hash string) error {
	_, err := r.db().Exec(`UPDATE users SET password_hash = ? WHERE id = ?`, hash, userID)
	return err
}

// InsertSession stores an opaque bearer token with its expiry.
func (r UserRepository) InsertSession(token string, userID int64, expiresAt time.Time) error {
	_, err := r.db().Exec(`
		INSERT INTO auth_sessions (token, user_id, expires_at) VALUES (?, ?, ?)
	`, token, userID, expiresAt)
	return err
}

// GetSession returns the session owner when the token exists and is
// unexpired. found=false covers both missing and expired rows.
func (r UserRepository) GetSession(token string) (int64, bool, error) {
	var userID int64
	err := r.db().QueryRow(`
		SELECT user_id FROM auth_sessions WHERE token = ? AND expires_at > NOW() LIMIT 1
	`, token).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return userID, true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
