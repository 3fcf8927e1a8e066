package repository

import (
	"context"
	"database/sql"

	"github.com/ValenCardozo/volando-ando/internal/model"
)

// TicketRepo persists tickets.  The one-ticket-per-reservation rule
// and barcode uniqueness both live in the schema; this repo maps the
// violations to sentinels so the issuing flow can report them.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketCols = `id, reservation_id, barcode, issue_date, status`

func scanTicket(row interface{ Scan(...any) error }) (model.Ticket, error) {
	var t model.Ticket
	err := row.Scan(&t.ID, &t.ReservationID, &t.Barcode, &t.IssueDate, &t.Status)
	return t, err
}

// CreateTx inserts a ticket within an existing transaction and reads
// back the DB-assigned issue date.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	const q = `INSERT INTO tickets (reservation_id, barcode, status) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, t.ReservationID, t.Barcode, t.Status)
	if err != nil {
		switch {
		case IsDuplicate(err, "uq_ticket_reservation"):
			return ErrTicketExists
		case IsDuplicate(err, "uq_barcode"):
			return ErrDuplicateBarcode
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return tx.QueryRowContext(ctx, `SELECT issue_date FROM tickets WHERE id = ?`, t.ID).Scan(&t.IssueDate)
}

// GetByReservation returns the ticket issued for a reservation, or
// ErrTicketNotFound.
func (r *TicketRepo) GetByReservation(ctx context.Context, reservationID uint64) (*model.Ticket, error) {
	t, err := scanTicket(r.db.QueryRowContext(ctx,
		`SELECT `+ticketCols+` FROM tickets WHERE reservation_id = ? LIMIT 1`, reservationID))
	if err == sql.ErrNoRows {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByBarcode returns a ticket by barcode, or ErrTicketNotFound.
func (r *TicketRepo) GetByBarcode(ctx context.Context, barcode string) (*model.Ticket, error) {
	t, err := scanTicket(r.db.QueryRowContext(ctx,
		`SELECT `+ticketCols+` FROM tickets WHERE barcode = ? LIMIT 1`, barcode))
	if err == sql.ErrNoRows {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// BarcodeExists reports whether a barcode is already taken.  The
// unique key remains the final guard behind this pre-check.
func (r *TicketRepo) BarcodeExists(ctx context.Context, barcode string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE barcode = ?`, barcode).Scan(&n)
	return n > 0, err
}

// CancelTx flips a ticket to canceled inside a transaction.  Issued
// tickets are otherwise immutable.
func (r *TicketRepo) CancelTx(ctx context.Context, tx *sql.Tx, reservationID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE tickets SET status = ? WHERE reservation_id = ? AND status = ?`,
		model.TicketCanceled, reservationID, model.TicketIssued)
	return err
}
