package model

import "time"

// Reservation status enumeration.  pending -> confirmed or canceled;
// confirmed -> canceled; canceled is terminal.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCanceled  = "canceled"
)

// Reservation binds one passenger to one seat on one flight.  A
// passenger can hold at most one reservation per flight, and a seat
// backs at most one live reservation at a time.  The code is the
// public identifier handed to the passenger; it is distinct from the
// internal row ID.
//
// Fields:
//  ID              – primary key identifier.
//  FlightID        – flight being reserved.
//  PassengerID     – passenger holding the reservation.
//  SeatID          – seat assigned to the reservation.
//  Status          – lifecycle status (pending, confirmed, canceled).
//  ReservationDate – creation timestamp, immutable.
//  PriceCents      – price paid, base price times the seat class multiplier.
//  Code            – 8-character public reservation code, globally unique.
type Reservation struct {
	ID              uint64    // reservations.id
	FlightID        uint64    // reservations.flight_id
	PassengerID     uint64    // reservations.passenger_id
	SeatID          uint64    // reservations.seat_id
	Status          string    // reservations.status
	ReservationDate time.Time // reservations.reservation_date
	PriceCents      int64     // reservations.price_cents
	Code            string    // reservations.reservation_code
}

var reservationTransitions = map[string][]string{
	ReservationPending:   {ReservationConfirmed, ReservationCanceled},
	ReservationConfirmed: {ReservationCanceled},
	ReservationCanceled:  {},
}

// ValidReservationStatus reports whether s is a known reservation status.
func ValidReservationStatus(s string) bool {
	_, ok := reservationTransitions[s]
	return ok
}

// ReservationTransitionTargets returns the statuses a reservation in
// the given status may move to.
func ReservationTransitionTargets(cur string) []string {
	return reservationTransitions[cur]
}

// CanReservationTransition reports whether cur -> next is a legal
// move in the reservation state machine.
func CanReservationTransition(cur, next string) bool {
	for _, t := range reservationTransitions[cur] {
		if t == next {
			return true
		}
	}
	return false
}
