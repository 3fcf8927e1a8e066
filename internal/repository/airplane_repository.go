package repository

import (
	"context"
	"database/sql"

	"github.com/ValenCardozo/volando-ando/internal/model"
)

// AirplaneRepo provides CRUD operations for airplanes.  Deleting an
// airplane cascades to its seats but is blocked while any flight
// still references the airplane, mirroring the protect/cascade rules
// of the schema.
type AirplaneRepo struct {
	db *sql.DB
}

// NewAirplaneRepo returns a new AirplaneRepo bound to the given database.
func NewAirplaneRepo(db *sql.DB) *AirplaneRepo { return &AirplaneRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *AirplaneRepo) DB() *sql.DB { return r.db }

// Create inserts a new airplane and populates its generated ID.
func (r *AirplaneRepo) Create(ctx context.Context, a *model.Airplane) error {
	const q = `INSERT INTO airplanes (model, capacity, seat_rows, seat_cols) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, a.Model, a.Capacity, a.Rows, a.Cols)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByID returns one airplane or ErrAirplaneNotFound.
func (r *AirplaneRepo) GetByID(ctx context.Context, id uint64) (*model.Airplane, error) {
	const q = `SELECT id, model, capacity, seat_rows, seat_cols FROM airplanes WHERE id = ?`
	var a model.Airplane
	err := r.db.QueryRowContext(ctx, q, id).Scan(&a.ID, &a.Model, &a.Capacity, &a.Rows, &a.Cols)
	if err == sql.ErrNoRows {
		return nil, ErrAirplaneNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns all airplanes ordered by model name.
func (r *AirplaneRepo) List(ctx context.Context) ([]model.Airplane, error) {
	const q = `SELECT id, model, capacity, seat_rows, seat_cols FROM airplanes ORDER BY model, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Airplane, 0)
	for rows.Next() {
		var a model.Airplane
		if err := rows.Scan(&a.ID, &a.Model, &a.Capacity, &a.Rows, &a.Cols); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Update rewrites the mutable airplane fields.  Returns
// ErrAirplaneNotFound when the row does not exist.
func (r *AirplaneRepo) Update(ctx context.Context, a *model.Airplane) error {
	const q = `UPDATE airplanes SET model = ?, capacity = ?, seat_rows = ?, seat_cols = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, a.Model, a.Capacity, a.Rows, a.Cols, a.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either missing or a no-op update; distinguish by existence.
		if _, getErr := r.GetByID(ctx, a.ID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// Delete removes an airplane and its seats in one transaction.  The
// delete is rejected with ErrConflict while any flight references the
// airplane.
func (r *AirplaneRepo) Delete(ctx context.Context, id uint64) error {
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
	var flights int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM flights WHERE airplane_id = ?`, id).Scan(&flights); err != nil {
		return err
	}
	if flights > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM seats WHERE airplane_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM airplanes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAirplaneNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
