package repositories

import (
	"database/sql"
	"strings"

	intconfig "elitetransport/internal/config"
)

type ReportRepository struct {
	DB *sql.DB
}

func (r ReportRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// UpcomingFilter narrows the upcoming-bookings report.
type UpcomingFilter struct {
	RouteID  int64
	DateFrom string
	DateTo   string
	Status   string
	Limit    int
	Offset   int
}

// UpcomingRow is one line of the joined upcoming-bookings view.
type UpcomingRow struct {
	BookingID     int64   `json:"bookingId"`
	PassengerName string  `json:"passengerName"`
	Phone         string  `json:"phone"`
	Email         string  `json:"email"`
	Seat          string  `json:"seat"`
	Price         float64 `json:"price"`
	Status        string  `json:"status"`
	BusID         int64   `json:"busId"`
	BusName       string  `json:"busName"`
	RouteID       int64   `json:"routeId"`
	RouteName     string  `json:"routeName"`
	DepartureDate string  `json:"departureDate"`
	DepartureTime string  `json:"departureTime"`
	CreatedAt     string  `json:"createdAt"`
}

// ListUpcoming returns the joined view ordered by departure timestamp
// ascending (nulls last), then created_at descending.
func (r ReportRepository) ListUpcoming(f UpcomingFilter) ([]UpcomingRow, int, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	where := []string{"1=1"}
	args := []any{}
	if f.RouteID > 0 {
		where = append(where, "r.id = ?")
		args = append(args, f.RouteID)
	}
	if strings.TrimSpace(f.DateFrom) != "" {
		where = append(where, "ts.departure_date >= ?")
		args = append(args, strings.TrimSpace(f.DateFrom))
	}
	if strings.TrimSpace(f.DateTo) != "" {
		where = append(where, "ts.departure_date <= ?")
		args = append(args, strings.TrimSpace(f.DateTo))
	}
	if strings.TrimSpace(f.Status) != "" {
		where = append(where, "b.status = ?")
		args = append(args, strings.TrimSpace(f.Status))
	}

	base := `
		FROM bookings b
		JOIN passengers p ON p.id = b.passenger_id
		JOIN buses bs ON bs.id = b.bus_id
		LEFT JOIN routes r ON r.id = bs.route_id
		LEFT JOIN trip_schedules ts ON ts.id = b.trip_id
		WHERE ` + strings.Join(where, " AND ")

	var total int
	if err := r.db().QueryRow(`SELECT COUNT(*) `+base, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT b.id,
		       TRIM(CONCAT(COALESCE(p.first_name, ''), ' ', COALESCE(p.last_name, ''))),
		       COALESCE(p.phone, ''), COALESCE(p.email, ''),
		       b.seat_number, COALESCE(b.price_paid, 0), COALESCE(b.status, ''),
		       bs.id, COALESCE(bs.name, ''),
		       COALESCE(r.id, 0), COALESCE(r.name, ''),
		       COALESCE(ts.departure_date, ''), COALESCE(ts.departure_time, ''),
		       COALESCE(DATE_FORMAT(b.created_at, '%Y-%m-%d %H:%i:%s'), '')
	` + base + `
		ORDER BY (ts.departure_date IS NULL) ASC,
		         CONCAT(ts.departure_date, ' ', COALESCE(ts.departure_time, '00:00')) ASC,
		         b.created_at DESC
		LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db().Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []UpcomingRow{}
	for rows.Next() {
		var row UpcomingRow
		if err := rows.Scan(&row.BookingID, &row.PassengerName, &row.Phone, &row.Email,
			&row.Seat, &row.Price, &row.Status,
			&row.BusID, &row.BusName, &row.RouteID, &row.RouteName,
			&row.DepartureDate, &row.DepartureTime, &row.CreatedAt); err != nil {
			return out, 0, err
		}
		out = append(out, row)
	}
	return out, total, rows.Err()
}

// DashboardCounts feeds the admin dashboard bootstrap.
type DashboardCounts struct {
	Routes           int     `json:"routes"`
	Buses            int     `json:"buses"`
	Users            int     `json:"users"`
	BookingsByStatus map[string]int `json:"bookingsByStatus"`
	ConfirmedRevenue float64 `json:"confirmedRevenue"`
}

func (r ReportRepository) Dashboard() (DashboardCounts, error) {
	out := DashboardCounts{BookingsByStatus: map[string]int{}}
	conn := r.db()

	if err := conn.QueryRow(`SELECT COUNT(*) FROM routes`).Scan(&out.Routes); err != nil {
		return out, err
	}
	if err := conn.QueryRow(`SELECT COUNT(*) FROM buses`).Scan(&out.Buses); err != nil {
		return out, err
	}
	if err := conn.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&out.Users); err != nil {
		return out, err
	}

	rows, err := conn.Query(`SELECT COALESCE(status, ''), COUNT(*) FROM bookings GROUP BY status`)
	if err != nil {
		return out, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return out, err
		}
		out.BookingsByStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		return out, err
	}

	err = conn.QueryRow(`SELECT COALESCE(SUM(price_paid), 0) FROM bookings WHERE status = 'confirmed'`).Scan(&out.ConfirmedRevenue)
	return out, err
}

// RecentBooking is one of the dashboard's latest bookings with its receipt.
type RecentBooking struct {
	BookingID     int64   `json:"bookingId"`
	PassengerName string  `json:"passengerName"`
	Seat          string  `json:"seat"`
	Price         float64 `json:"price"`
	Status        string  `json:"status"`
	BusName       string  `json:"busName"`
	ReceiptURL    string  `json:"receiptUrl,omitempty"`
	CreatedAt     string  `json:"createdAt"`
}

// ListRecentBookings returns the eight most recent bookings with receipts.
func (r ReportRepository) ListRecentBookings() ([]RecentBooking, error) {
	rows, err := r.db().Query(`
		SELECT b.id,
		       TRIM(CONCAT(COALESCE(p.first_name, ''), ' ', COALESCE(p.last_name, ''))),
		       b.seat_number, COALESCE(b.price_paid, 0), COALESCE(b.status, ''),
		       COALESCE(bs.name, ''), COALESCE(br.receipt_url, ''),
		       COALESCE(DATE_FORMAT(b.created_at, '%Y-%m-%d %H:%i:%s'), '')
		FROM bookings b
		JOIN passengers p ON p.id = b.passenger_id
		JOIN buses bs ON bs.id = b.bus_id
		LEFT JOIN booking_receipts br ON br.booking_id = b.id
		ORDER BY b.id DESC LIMIT 8
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RecentBooking{}
	for rows.Next() {
		var rb RecentBooking
		if err := rows.Scan(&rb.BookingID, &rb.PassengerName, &rb.Seat, &rb.Price, &rb.Status, &rb.BusName, &rb.ReceiptURL, &rb.CreatedAt); err != nil {
			return out, err
		}
		out = append(out, rb)
	}
	return out, rows.Err()
}
