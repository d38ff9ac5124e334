package repositories

import (
	"database/sql"
	"strings"

	intconfig "elitetransport/internal/config"
	intdb "elitetransport/internal/db"
	"elitetransport/internal/domain/models"
)

type PassengerRepository struct {
	DB *sql.DB
}

func (r PassengerRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Insert creates a fresh passenger row. Passenger rows are per-booking; the
// same human may appear many times.
func (r PassengerRepository) Insert(p models.Passenger) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO passengers (first_name, last_name, email, phone, nok_name, nok_phone, created_at)
		VALUES (?, ?, ?, ?, ?, ?, NOW())
	`, strings.TrimSpace(p.FirstName), strings.TrimSpace(p.LastName),
		strings.TrimSpace(p.Email), strings.TrimSpace(p.Phone),
		intdb.NullIfEmpty(strings.TrimSpace(p.NokName)),
		intdb.NullIfEmpty(strings.TrimSpace(p.NokPhone)))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Delete removes a passenger row (finalization rollback).
func (r PassengerRepository) Delete(id int64) error {
	_, err := r.db().Exec(`DELETE FROM passengers WHERE id = ?`, id)
	return err
}

func (r PassengerRepository) GetByID(id int64) (models.Passenger, error) {
	var p models.Passenger
	var nok, nokPhone sql.NullString
	err := r.db().QueryRow(`
		SELECT id, COALESCE(first_name, ''), COALESCE(last_name, ''),
		       COALESCE(email, ''), COALESCE(phone, ''), nok_name, nok_phone,
		       COALESCE(DATE_FORMAT(created_at, '%Y-%m-%d %H:%i:%s'), '')
		FROM passengers WHERE id = ? LIMIT 1
	`, id).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &nok, &nokPhone, &p.CreatedAt)
	p.NokName = strings.TrimSpace(nok.String)
	p.NokPhone = strings.TrimSpace(nokPhone.String)
	return p, err
}

// List returns passengers newest first with limit/offset paging.
func (r PassengerRepository) List(limit, offset int) ([]models.Passenger, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db().Query(`
		SELECT id, COALESCE(first_name, ''), COALESCE(last_name, ''),
		       COALESCE(email, ''), COALESCE(phone, ''), nok_name, nok_phone,
		       COALESCE(DATE_FORMAT(created_at, '%Y-%m-%d %H:%i:%s'), '')
		FROM passengers ORDER BY id DESC LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Passenger{}
	for rows.Next() {
		var p models.Passenger
		var nok, nokPhone sql.NullString
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &nok, &nokPhone, &p.CreatedAt); err != nil {
			return out, err
		}
		p.NokName = strings.TrimSpace(nok.String)
		p.NokPhone = strings.TrimSpace(nokPhone.String)
		out = append(out, p)
	}
	return out, rows.Err()
}
