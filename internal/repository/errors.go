// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrConflict signals that an operation cannot proceed due to
// existing dependent records (e.g. deleting an airplane that still has
// flights), while the duplicate sentinels map MySQL unique-key
// violations (error 1062) to the specific constraint that fired.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as attempting to
// delete a flight that still has reservations. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// Duplicate-key sentinels. Each corresponds to one unique constraint in
// the schema; they are the storage-level backstop behind the advisory
// application checks, so concurrent duplicate attempts surface as these
// instead of racing past a read-then-write check.
var (
	ErrDuplicateSeatNumber  = errors.New("seat number already exists for airplane")
	ErrDuplicateReservation = errors.New("passenger already has a reservation for this flight")
	ErrDuplicateCode        = errors.New("reservation code already exists")
	ErrDuplicateBarcode     = errors.New("barcode already exists")
	ErrDuplicateDocument    = errors.New("document already exists")
	ErrTicketExists         = errors.New("ticket already exists for reservation")
	ErrEmailExists          = errors.New("email already exists")
)

// Not-found sentinels per aggregate.
var (
	ErrAirplaneNotFound    = errors.New("airplane not found")
	ErrSeatNotFound        = errors.New("seat not found")
	ErrFlightNotFound      = errors.New("flight not found")
	ErrPassengerNotFound   = errors.New("passenger not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrTicketNotFound      = errors.New("ticket not found")
)

// IsDuplicate reports whether err is a MySQL duplicate-entry error
// (1062), optionally scoped to a named unique key. The driver exposes
// the error as *mysql.MySQLError; the message carries the key name as
// "... for key 'uq_xxx'".
func IsDuplicate(err error, key string) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != 1062 {
		return false
	}
	if key == "" {
		return true
	}
	return strings.Contains(me.Message, key)
}

// IsDuplicateErr is a convenience wrapper that groups every duplicate
// sentinel defined above, for handlers that only need "conflict".
func IsDuplicateErr(err error) bool {
	return errors.Is(err, ErrDuplicateSeatNumber) ||
		errors.Is(err, ErrDuplicateReservation) ||
		errors.Is(err, ErrDuplicateCode) ||
		errors.Is(err, ErrDuplicateBarcode) ||
		errors.Is(err, ErrDuplicateDocument) ||
		errors.Is(err, ErrTicketExists) ||
		errors.Is(err, ErrEmailExists)
}
