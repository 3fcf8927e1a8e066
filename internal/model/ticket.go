package model

import "time"

// Ticket status enumeration.  A ticket is immutable once issued
// except for the flip to canceled.
const (
	TicketIssued   = "issued"
	TicketCanceled = "canceled"
)

// Ticket is the travel document produced for a confirmed
// reservation.  There is at most one ticket per reservation and the
// barcode is globally unique ("TKT-" + 12 uppercase alphanumerics).
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reservation this ticket was issued for.
//  Barcode       – unique barcode printed on the ticket.
//  IssueDate     – issuance timestamp, immutable.
//  Status        – issued or canceled.
type Ticket struct {
	ID            uint64    // tickets.id
	ReservationID uint64    // tickets.reservation_id
	Barcode       string    // tickets.barcode
	IssueDate     time.Time // tickets.issue_date
	Status        string    // tickets.status
}
