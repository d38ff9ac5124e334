package repositories

import (
	"database/sql"
	"errors"

	intconfig "elitetransport/internal/config"
	"elitetransport/internal/domain"
	"elitetransport/internal/domain/models"
)

type RouteRepository struct {
	DB *sql.DB
}

func (r RouteRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// ListGroups returns route groups in id order.
func (r RouteRepository) ListGroups() ([]models.RouteGroup, error) {
	rows, err := r.db().Query(`
		SELECT id, COALESCE(group_key, ''), COALESCE(name, ''), COALESCE(description, '')
		FROM route_groups ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.RouteGroup{}
	for rows.Next() {
		var g models.RouteGroup
		if err := rows.Scan(&g.ID, &g.Key, &g.Name, &g.Description); err != nil {
			return out, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ListRoutesByGroup returns the routes belonging to one group.
func (r RouteRepository) ListRoutesByGroup(groupID int64) ([]models.Route, error) {
	rows, err := r.db().Query(`
		SELECT id, group_id, COALESCE(name, ''), COALESCE(description, '')
		FROM routes WHERE group_id = ? ORDER BY id ASC
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Route{}
	for rows.Next() {
		var rt models.Route
		if err := rows.Scan(&rt.ID, &rt.GroupID, &rt.Name, &rt.Description); err != nil {
			return out, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// ListRoutes returns every route.
func (r RouteRepository) ListRoutes() ([]models.Route, error) {
	rows, err := r.db().Query(`
		SELECT id, group_id, COALESCE(name, ''), COALESCE(description, '')
		FROM routes ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Route{}
	for rows.Next() {
		var rt models.Route
		if err := rows.Scan(&rt.ID, &rt.GroupID, &rt.Name, &rt.Description); err != nil {
			return out, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r RouteRepository) GetRoute(id int64) (models.Route, error) {
	var rt models.Route
	err := r.db().QueryRow(`
		SELECT id, group_id, COALESCE(name, ''), COALESCE(description, '')
		FROM routes WHERE id = ? LIMIT 1
	`, id).Scan(&rt.ID, &rt.GroupID, &rt.Name, &rt.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return rt, domain.NotFoundError{Resource: "route"}
	}
	return rt, err
}

type BusRepository struct {
	DB *sql.DB
}

func (r BusRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const busColumns = `id, COALESCE(route_id, 0), COALESCE(name, ''), COALESCE(plate_number, ''),
	COALESCE(capacity, 0), COALESCE(available_seats, 0), COALESCE(price, 0), COALESCE(route_text, '')`

func (r BusRepository) GetByID(id int64) (models.Bus, error) {
	var b models.Bus
	err := r.db().QueryRow(`SELECT `+busColumns+` FROM buses WHERE id = ? LIMIT 1`, id).Scan(
		&b.ID, &b.RouteID, &b.Name, &b.PlateNumber, &b.Capacity, &b.AvailableSeats, &b.Price, &b.RouteText)
	if errors.Is(err, sql.ErrNoRows) {
		return b, domain.NotFoundError{Resource: "bus"}
	}
	return b, err
}

func (r BusRepository) ListByRoute(routeID int64) ([]models.Bus, error) {
	return r.list(`SELECT `+busColumns+` FROM buses WHERE route_id = ? ORDER BY id ASC`, routeID)
}

func (r BusRepository) ListAll() ([]models.Bus, error) {
	return r.list(`SELECT ` + busColumns + ` FROM buses ORDER BY id ASC`)
}

func (r BusRepository) list(query string, args ...any) ([]models.Bus, error) {
	rows, err := r.db().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Bus{}
	for rows.Next() {
		var b models.Bus
		if err := rows.Scan(&b.ID, &b.RouteID, &b.Name, &b.PlateNumber, &b.Capacity, &b.AvailableSeats, &b.Price, &b.RouteText); err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r BusRepository) Create(b models.Bus) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO buses (route_id, name, plate_number, capacity, available_seats, price, route_text)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, b.RouteID, b.Name, b.PlateNumber, b.Capacity, b.AvailableSeats, b.Price, b.RouteText)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateAvailableSeats refreshes the denormalized hint.
func (r BusRepository) UpdateAvailableSeats(id int64, available int) error {
	_, err := r.db().Exec(`UPDATE buses SET available_seats = ? WHERE id = ?`, available, id)
	return err
}

// ApplyTrip resets the bus for a freshly scheduled trip: seats back to
// capacity, route and price taken from the trip.
func (r BusRepository) ApplyTrip(busID, routeID int64, price float64) error {
	_, err := r.db().Exec(`
		UPDATE buses SET available_seats = capacity, route_id = ?, price = ?
		WHERE id = ?
	`, routeID, price, busID)
	return err
}

// ResetSeats restores available_seats to capacity (end-trip).
func (r BusRepository) ResetSeats(busID int64) error {
	_, err := r.db().Exec(`UPDATE buses SET available_seats = capacity WHERE id = ?`, busID)
	return err
}
