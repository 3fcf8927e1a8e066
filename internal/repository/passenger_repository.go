package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ValenCardozo/volando-ando/internal/model"
)

// PassengerRepo provides CRUD operations for passengers.  The
// document column is globally unique; emails link passengers to
// platform users with get-or-create semantics so a booking request
// never fails just because the passenger profile does not exist yet.
type PassengerRepo struct {
	db *sql.DB
}

// NewPassengerRepo returns a new PassengerRepo bound to the given database.
func NewPassengerRepo(db *sql.DB) *PassengerRepo { return &PassengerRepo{db: db} }

const passengerCols = `id, name, document, document_type, email, phone, birth_date`

func scanPassenger(row interface{ Scan(...any) error }) (model.Passenger, error) {
	var p model.Passenger
	err := row.Scan(&p.ID, &p.Name, &p.Document, &p.DocumentType, &p.Email, &p.Phone, &p.BirthDate)
	return p, err
}

// Create inserts a passenger.  A duplicate document surfaces as
// ErrDuplicateDocument.
func (r *PassengerRepo) Create(ctx context.Context, p *model.Passenger) error {
	const q = `INSERT INTO passengers (name, document, document_type, email, phone, birth_date)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.Name, p.Document, p.DocumentType,
		strings.ToLower(strings.TrimSpace(p.Email)), p.Phone, p.BirthDate.UTC())
	if err != nil {
		if IsDuplicate(err, "uq_document") {
			return ErrDuplicateDocument
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID returns one passenger or ErrPassengerNotFound.
func (r *PassengerRepo) GetByID(ctx context.Context, id uint64) (*model.Passenger, error) {
	p, err := scanPassenger(r.db.QueryRowContext(ctx,
		`SELECT `+passengerCols+` FROM passengers WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrPassengerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByEmail returns the passenger linked to an email or
// ErrPassengerNotFound.
func (r *PassengerRepo) GetByEmail(ctx context.Context, email string) (*model.Passenger, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	p, err := scanPassenger(r.db.QueryRowContext(ctx,
		`SELECT `+passengerCols+` FROM passengers WHERE email = ? LIMIT 1`, email))
	if err == sql.ErrNoRows {
		return nil, ErrPassengerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOrCreateByEmail resolves the passenger for an authenticated
// identity.  When no profile exists yet a placeholder is created with
// a synthetic document derived from the user ID; a concurrent insert
// losing the unique-key race falls back to re-reading the winner.
func (r *PassengerRepo) GetOrCreateByEmail(ctx context.Context, email, name string, userID uint64) (*model.Passenger, error) {
	if p, err := r.GetByEmail(ctx, email); err == nil {
		return p, nil
	} else if err != ErrPassengerNotFound {
		return nil, err
	}
	p := &model.Passenger{
		Name:         name,
		Document:     fmt.Sprintf("user-%d", userID),
		DocumentType: model.DocumentOther,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Phone:        "",
		BirthDate:    time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	err := r.Create(ctx, p)
	if err == nil {
		return p, nil
	}
	if err == ErrDuplicateDocument || IsDuplicate(err, "") {
		// Lost the race; the winner's row is authoritative.
		return r.GetByEmail(ctx, email)
	}
	return nil, err
}

// List returns all passengers ordered by name.
func (r *PassengerRepo) List(ctx context.Context) ([]model.Passenger, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+passengerCols+` FROM passengers ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Passenger, 0)
	for rows.Next() {
		p, err := scanPassenger(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update rewrites a passenger's profile fields.
func (r *PassengerRepo) Update(ctx context.Context, p *model.Passenger) error {
	const q = `UPDATE passengers SET name = ?, document = ?, document_type = ?, email = ?, phone = ?, birth_date = ?
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, p.Name, p.Document, p.DocumentType,
		strings.ToLower(strings.TrimSpace(p.Email)), p.Phone, p.BirthDate.UTC(), p.ID)
	if err != nil && IsDuplicate(err, "uq_document") {
		return ErrDuplicateDocument
	}
	return err
}
