package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ValenCardozo/volando-ando/internal/model"
)

// ReservationRepo provides CRUD operations for reservations.  Writes
// that must stay atomic with a seat-status change only exist as *Tx
// variants; the reservation engine owns the surrounding transaction.
// The unique keys on (flight_id, passenger_id) and reservation_code
// are the concurrency backstop behind the engine's advisory checks.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationCols = `id, flight_id, passenger_id, seat_id, status, reservation_date, price_cents, reservation_code`

func scanReservation(row interface{ Scan(...any) error }) (model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(&res.ID, &res.FlightID, &res.PassengerID, &res.SeatID,
		&res.Status, &res.ReservationDate, &res.PriceCents, &res.Code)
	return res, err
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction and populates the generated ID and reservation date.
// Unique-key violations are disambiguated into the sentinel matching
// the constraint that fired, so callers can tell "you already booked
// this flight" apart from a reservation-code collision.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations
	           (flight_id, passenger_id, seat_id, status, price_cents, reservation_code)
	           VALUES (?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, res.FlightID, res.PassengerID, res.SeatID,
		res.Status, res.PriceCents, res.Code)
	if err != nil {
		switch {
		case IsDuplicate(err, "uq_flight_passenger"):
			return ErrDuplicateReservation
		case IsDuplicate(err, "uq_reservation_code"):
			return ErrDuplicateCode
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back the row to populate the DB-assigned reservation date.
	const sel = `SELECT reservation_date FROM reservations WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.ReservationDate)
}

// GetByID returns one reservation or ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetByIDTx reads a reservation inside an existing transaction and
// takes the row lock.  Concurrent mutation flows on the same
// reservation serialize here, so the status a flow validates against
// is still the status it updates.
func (r *ReservationRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	res, err := scanReservation(tx.QueryRowContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE id = ? FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetByCode returns a reservation by its public code.
func (r *ReservationRepo) GetByCode(ctx context.Context, code string) (*model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE reservation_code = ? LIMIT 1`, code))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetByFlightAndPassenger returns the passenger's reservation on a
// flight, or ErrReservationNotFound.  This is the advisory duplicate
// pre-check; the unique key remains the authority under races.
func (r *ReservationRepo) GetByFlightAndPassenger(ctx context.Context, flightID, passengerID uint64) (*model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE flight_id = ? AND passenger_id = ? LIMIT 1`,
		flightID, passengerID))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// CodeExists reports whether a reservation code is already taken.
// Used by the generation loop before insert; the unique key closes
// the remaining window.
func (r *ReservationRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE reservation_code = ?`, code).Scan(&n)
	return n > 0, err
}

// UpdateStatusTx sets a reservation's status inside a transaction.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	res, err := tx.ExecContext(ctx, `UPDATE reservations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// UpdateSeatTx reassigns a reservation to a new seat with its
// recomputed price, inside the transaction that also swaps the two
// seats' statuses.
func (r *ReservationRepo) UpdateSeatTx(ctx context.Context, tx *sql.Tx, id, seatID uint64, priceCents int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE reservations SET seat_id = ?, price_cents = ? WHERE id = ?`, seatID, priceCents, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// DeleteTx hard-deletes a reservation.  Only the explicit
// cancellation-with-release flow uses this, inside the transaction
// that also frees the seat.
func (r *ReservationRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// ReservationDetail joins a reservation with its flight and seat for
// customer- and staff-facing listings.
type ReservationDetail struct {
	ID            uint64    `json:"id"`
	Code          string    `json:"reservation_code"`
	Status        string    `json:"status"`
	PriceCents    int64     `json:"price_cents"`
	ReservedAt    time.Time `json:"reservation_date"`
	FlightID      uint64    `json:"flight_id"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	FlightStatus  string    `json:"flight_status"`
	SeatID        uint64    `json:"seat_id"`
	SeatNumber    string    `json:"seat_number"`
	SeatType      string    `json:"seat_type"`
	PassengerID   uint64    `json:"passenger_id,omitempty"`
	PassengerName string    `json:"passenger_name,omitempty"`
}

const detailSelect = `SELECT r.id, r.reservation_code, r.status, r.price_cents, r.reservation_date,
	       f.id, f.origin, f.destination, f.departure_time, f.arrival_time, f.status,
	       s.id, s.number, s.seat_type,
	       p.id, p.name
	FROM reservations r
	JOIN flights f ON f.id = r.flight_id
	JOIN seats s ON s.id = r.seat_id
	JOIN passengers p ON p.id = r.passenger_id`

func scanDetail(rows *sql.Rows) (ReservationDetail, error) {
	var d ReservationDetail
	err := rows.Scan(&d.ID, &d.Code, &d.Status, &d.PriceCents, &d.ReservedAt,
		&d.FlightID, &d.Origin, &d.Destination, &d.DepartureTime, &d.ArrivalTime, &d.FlightStatus,
		&d.SeatID, &d.SeatNumber, &d.SeatType,
		&d.PassengerID, &d.PassengerName)
	return d, err
}

// ListByPassenger returns all reservations for the given passenger
// with flight and seat details, newest first.  When none exist, an
// empty slice is returned.
func (r *ReservationRepo) ListByPassenger(ctx context.Context, passengerID uint64) ([]ReservationDetail, error) {
	q := detailSelect + ` WHERE r.passenger_id = ? ORDER BY r.reservation_date DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, passengerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReservationDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListByFlight returns all reservations on a flight for the staff
// backoffice, ordered by seat number.
func (r *ReservationRepo) ListByFlight(ctx context.Context, flightID uint64) ([]ReservationDetail, error) {
	q := detailSelect + ` WHERE r.flight_id = ? ORDER BY s.seat_row, s.seat_col`
	rows, err := r.db.QueryContext(ctx, q, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReservationDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CountByStatus returns how many reservations sit in each status.
func (r *ReservationRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM reservations GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

// FlightOccupancy is the reporting row for seat occupancy: live
// (non-canceled) reservations against airplane capacity.
type FlightOccupancy struct {
	FlightID     uint64  `json:"flight_id"`
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	Capacity     uint32  `json:"capacity"`
	Reservations int     `json:"reservations"`
	Rate         float64 `json:"occupancy_rate"`
}

// OccupancyByFlight computes per-flight occupancy over a consistent
// snapshot.  Canceled reservations do not count toward occupancy.
func (r *ReservationRepo) OccupancyByFlight(ctx context.Context) ([]FlightOccupancy, error) {
	const q = `SELECT f.id, f.origin, f.destination, a.capacity,
	                  COUNT(r.id) AS live
	           FROM flights f
	           JOIN airplanes a ON a.id = f.airplane_id
	           LEFT JOIN reservations r ON r.flight_id = f.id AND r.status <> ?
	           GROUP BY f.id, f.origin, f.destination, a.capacity
	           ORDER BY f.id`
	rows, err := r.db.QueryContext(ctx, q, model.ReservationCanceled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]FlightOccupancy, 0)
	for rows.Next() {
		var o FlightOccupancy
		if err := rows.Scan(&o.FlightID, &o.Origin, &o.Destination, &o.Capacity, &o.Reservations); err != nil {
			return nil, err
		}
		if o.Capacity > 0 {
			o.Rate = float64(o.Reservations) / float64(o.Capacity)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// RouteCount is one origin-destination pair ranked by reservation
// volume.
type RouteCount struct {
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	Reservations int    `json:"reservations"`
}

// TopRoutes returns the most-booked routes, busiest first, limited
// to at most limit rows.
func (r *ReservationRepo) TopRoutes(ctx context.Context, limit int) ([]RouteCount, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `SELECT f.origin, f.destination, COUNT(r.id) AS n
	           FROM reservations r
	           JOIN flights f ON f.id = r.flight_id
	           GROUP BY f.origin, f.destination
	           ORDER BY n DESC, f.origin, f.destination
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RouteCount, 0)
	for rows.Next() {
		var rc RouteCount
		if err := rows.Scan(&rc.Origin, &rc.Destination, &rc.Reservations); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

// Count returns the total number of reservations, for the dashboard.
func (r *ReservationRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&n)
	return n, err
}
