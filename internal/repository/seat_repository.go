package repository

import (
	"context"
	"database/sql"

	"github.com/ValenCardozo/volando-ando/internal/model"
)

// SeatRepo encapsulates database operations for seats.  Seat status
// changes that belong to a reservation flow go through the *Tx
// methods so they commit or roll back together with the reservation
// mutation.  ClaimTx is the exclusivity guard: it only flips a seat
// out of its expected status when the seat is still in that status,
// so the loser of a concurrent race observes zero affected rows.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo given a DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// DB exposes the underlying sql.DB for transaction control.
func (r *SeatRepo) DB() *sql.DB { return r.db }

const seatCols = `id, airplane_id, number, seat_row, seat_col, seat_type, status`

func scanSeat(row interface{ Scan(...any) error }) (model.Seat, error) {
	var s model.Seat
	err := row.Scan(&s.ID, &s.AirplaneID, &s.Number, &s.Row, &s.Col, &s.Type, &s.Status)
	return s, err
}

// Create inserts a single seat.  Duplicate (airplane, number) pairs
// surface as ErrDuplicateSeatNumber.
func (r *SeatRepo) Create(ctx context.Context, s *model.Seat) error {
	const q = `INSERT INTO seats (airplane_id, number, seat_row, seat_col, seat_type, status)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.AirplaneID, s.Number, s.Row, s.Col, s.Type, s.Status)
	if err != nil {
		if IsDuplicate(err, "uq_airplane_number") {
			return ErrDuplicateSeatNumber
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// CreateBulkTx inserts multiple seats in one statement within the
// given transaction.  Passing an empty slice has no effect and
// returns nil.
func (r *SeatRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (airplane_id, number, seat_row, seat_col, seat_type, status) VALUES `
	args := make([]interface{}, 0, len(seats)*6)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?)"
		args = append(args, s.AirplaneID, s.Number, s.Row, s.Col, s.Type, s.Status)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	if err != nil && IsDuplicate(err, "uq_airplane_number") {
		return ErrDuplicateSeatNumber
	}
	return err
}

// DeleteByAirplaneTx removes every seat of an airplane.  Used by the
// destructive layout regeneration.
func (r *SeatRepo) DeleteByAirplaneTx(ctx context.Context, tx *sql.Tx, airplaneID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM seats WHERE airplane_id = ?`, airplaneID)
	return err
}

// GetByID returns one seat or ErrSeatNotFound.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	s, err := scanSeat(r.db.QueryRowContext(ctx, `SELECT `+seatCols+` FROM seats WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrSeatNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByIDTx is GetByID inside an existing transaction.  InnoDB gives
// the row a shared read; callers that intend to claim the seat should
// rely on ClaimTx rather than this read.
func (r *SeatRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Seat, error) {
	s, err := scanSeat(tx.QueryRowContext(ctx, `SELECT `+seatCols+` FROM seats WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrSeatNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByAirplane returns all seats of an airplane ordered by grid
// position, for deterministic seat maps.
func (r *SeatRepo) GetByAirplane(ctx context.Context, airplaneID uint64) ([]model.Seat, error) {
	const q = `SELECT ` + seatCols + ` FROM seats WHERE airplane_id = ? ORDER BY seat_row, seat_col`
	rows, err := r.db.QueryContext(ctx, q, airplaneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Seat, 0)
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// FirstAvailableTx returns the ID of any available seat on the given
// airplane, or ErrSeatNotFound when the flight is full.  The pick is
// grid-ordered so auto-assignment fills the cabin front to back.
func (r *SeatRepo) FirstAvailableTx(ctx context.Context, tx *sql.Tx, airplaneID uint64) (uint64, error) {
	const q = `SELECT id FROM seats WHERE airplane_id = ? AND status = ?
	           ORDER BY seat_row, seat_col LIMIT 1`
	var id uint64
	err := tx.QueryRowContext(ctx, q, airplaneID, model.SeatAvailable).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrSeatNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ClaimTx conditionally moves a seat from one status to another and
// reports whether the transition was applied.  A false return means
// the seat was not in the expected status anymore — under concurrent
// booking that is how the losing request learns the seat is gone.
func (r *SeatRepo) ClaimTx(ctx context.Context, tx *sql.Tx, seatID uint64, from, to string) (bool, error) {
	const q = `UPDATE seats SET status = ? WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, to, seatID, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SetStatusTx unconditionally sets a seat's status inside a
// transaction.  Used for releases where the current status is already
// owned by the flow (confirm, cancel).
func (r *SeatRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, seatID uint64, status string) error {
	res, err := tx.ExecContext(ctx, `UPDATE seats SET status = ? WHERE id = ?`, status, seatID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// The seat may already carry the target status; only a missing
		// row is an error.
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM seats WHERE id = ?`, seatID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrSeatNotFound
		}
	}
	return nil
}

// Update rewrites a seat's mutable attributes (number, position,
// type).  Status is deliberately excluded: only reservation flows
// may move it.
func (r *SeatRepo) Update(ctx context.Context, s *model.Seat) error {
	const q = `UPDATE seats SET number = ?, seat_row = ?, seat_col = ?, seat_type = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, s.Number, s.Row, s.Col, s.Type, s.ID)
	if err != nil && IsDuplicate(err, "uq_airplane_number") {
		return ErrDuplicateSeatNumber
	}
	return err
}

// Delete removes one seat.  Seats referenced by a reservation are
// protected by the FK and surface as ErrConflict.
func (r *SeatRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM seats WHERE id = ?`, id)
	if err != nil {
		var refs int
		if qErr := r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM reservations WHERE seat_id = ?`, id).Scan(&refs); qErr == nil && refs > 0 {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSeatNotFound
	}
	return nil
}
