package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ValenCardozo/volando-ando/internal/model"
)

// FlightRepo manages persistence for flights.  Status transitions are
// validated at the service layer; this repo only persists what it is
// handed plus the lifecycle-dependent delete guard.
type FlightRepo struct {
	db *sql.DB
}

// NewFlightRepo returns a new FlightRepo bound to the given database.
func NewFlightRepo(db *sql.DB) *FlightRepo { return &FlightRepo{db: db} }

// DB exposes the underlying sql.DB for transaction control.
func (r *FlightRepo) DB() *sql.DB { return r.db }

// FlightPatch enumerates the mutable flight fields.  Nil pointers
// mean "leave unchanged"; there is no dynamic attribute setting.
type FlightPatch struct {
	Origin         *string
	Destination    *string
	DepartureTime  *time.Time
	ArrivalTime    *time.Time
	BasePriceCents *int64
	Status         *string
}

const flightCols = `id, airplane_id, origin, destination, departure_time, arrival_time, duration_min, status, base_price_cents`

func scanFlight(row interface{ Scan(...any) error }) (model.Flight, error) {
	var f model.Flight
	err := row.Scan(&f.ID, &f.AirplaneID, &f.Origin, &f.Destination,
		&f.DepartureTime, &f.ArrivalTime, &f.DurationMin, &f.Status, &f.BasePriceCents)
	return f, err
}

// Create inserts a flight and populates its generated ID.
func (r *FlightRepo) Create(ctx context.Context, f *model.Flight) error {
	const q = `INSERT INTO flights
	           (airplane_id, origin, destination, departure_time, arrival_time, duration_min, status, base_price_cents)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, f.AirplaneID, f.Origin, f.Destination,
		f.DepartureTime.UTC(), f.ArrivalTime.UTC(), f.DurationMin, f.Status, f.BasePriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return nil
}

// GetByID returns one flight or ErrFlightNotFound.
func (r *FlightRepo) GetByID(ctx context.Context, id uint64) (*model.Flight, error) {
	f, err := scanFlight(r.db.QueryRowContext(ctx, `SELECT `+flightCols+` FROM flights WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrFlightNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *FlightRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Flight, error) {
	f, err := scanFlight(tx.QueryRowContext(ctx, `SELECT `+flightCols+` FROM flights WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrFlightNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// List returns flights ordered by departure time.  When status is
// non-empty only flights in that status are returned; origin and
// destination filter with exact match when non-empty.
func (r *FlightRepo) List(ctx context.Context, status, origin, destination string) ([]model.Flight, error) {
	q := `SELECT ` + flightCols + ` FROM flights WHERE 1=1`
	args := make([]interface{}, 0, 3)
	if status != "" {
		q += ` AND status = ?`
		args = append(args, status)
	}
	if origin != "" {
		q += ` AND origin = ?`
		args = append(args, origin)
	}
	if destination != "" {
		q += ` AND destination = ?`
		args = append(args, destination)
	}
	q += ` ORDER BY departure_time, id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ApplyPatch persists the non-nil fields of a patch.  The caller has
// already validated the transition table and time ordering; duration
// is recomputed here from the final pair of times so the stored value
// can never drift from them.
func (r *FlightRepo) ApplyPatch(ctx context.Context, f *model.Flight, p FlightPatch) error {
	if p.Origin != nil {
		f.Origin = *p.Origin
	}
	if p.Destination != nil {
		f.Destination = *p.Destination
	}
	if p.DepartureTime != nil {
		f.DepartureTime = p.DepartureTime.UTC()
	}
	if p.ArrivalTime != nil {
		f.ArrivalTime = p.ArrivalTime.UTC()
	}
	if p.BasePriceCents != nil {
		f.BasePriceCents = *p.BasePriceCents
	}
	if p.Status != nil {
		f.Status = *p.Status
	}
	f.DurationMin = uint32(f.ArrivalTime.Sub(f.DepartureTime) / time.Minute)
	const q = `UPDATE flights SET origin = ?, destination = ?, departure_time = ?, arrival_time = ?,
	           duration_min = ?, status = ?, base_price_cents = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, f.Origin, f.Destination, f.DepartureTime, f.ArrivalTime,
		f.DurationMin, f.Status, f.BasePriceCents, f.ID)
	return err
}

// Delete removes a flight.  The caller has validated lifecycle
// eligibility; this method still refuses with ErrConflict while
// reservations reference the flight, as the storage-level backstop.
func (r *FlightRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var refs int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE flight_id = ?`, id).Scan(&refs); err != nil {
		return err
	}
	if refs > 0 {
		return ErrConflict
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM flights WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFlightNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// CountByStatus returns how many flights sit in each status.
func (r *FlightRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM flights GROUP BY status`)
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
