package model

import "fmt"

// Seat type enumeration.  The type decides the price multiplier
// applied on top of the flight's base price.
const (
	SeatEconomy  = "economy"
	SeatPremium  = "premium"
	SeatBusiness = "business"
)

// Seat status enumeration.  Status is mutated only by the reservation
// engine: available -> reserved on booking, reserved -> occupied on
// confirmation, back to available on cancellation.
const (
	SeatAvailable = "available"
	SeatReserved  = "reserved"
	SeatOccupied  = "occupied"
)

// Seat describes a physical seat in an airplane cabin.  Seats are
// uniquely identified by their airplane and number, where the number
// is derived from the grid position ("12C" = row 12, column 3).
//
// Fields:
//  ID         – primary key identifier.
//  AirplaneID – airplane to which this seat belongs.
//  Number     – row+column label, unique per airplane.
//  Row        – one-based row in the cabin grid.
//  Col        – one-based column in the cabin grid.
//  Type       – seat class (economy, premium, business).
//  Status     – occupancy status (available, reserved, occupied).
type Seat struct {
	ID         uint64 // seats.id
	AirplaneID uint64 // seats.airplane_id
	Number     string // seats.number
	Row        uint32 // seats.seat_row
	Col        uint32 // seats.seat_col
	Type       string // seats.seat_type
	Status     string // seats.status
}

// ValidSeatType reports whether t is a known seat class.
func ValidSeatType(t string) bool {
	switch t {
	case SeatEconomy, SeatPremium, SeatBusiness:
		return true
	}
	return false
}

// ColumnLetter converts a one-based column number into its letter
// (1 -> "A", 2 -> "B", ...).  Cabin grids never exceed 26 columns;
// anything outside that range yields an empty string.
func ColumnLetter(col uint32) string {
	if col < 1 || col > 26 {
		return ""
	}
	return string(rune('A' + col - 1))
}

// SeatLabel builds the seat number shown to passengers, e.g. row 1
// column 1 -> "1A", row 30 column 6 -> "30F".
func SeatLabel(row, col uint32) string {
	return fmt.Sprintf("%d%s", row, ColumnLetter(col))
}

// BuildLayout produces the full seat grid for an airplane, all seats
// available and of the given type.  The result is ordered row by row,
// column by column, which keeps bulk inserts and tests deterministic.
func BuildLayout(a Airplane, seatType string) []Seat {
	seats := make([]Seat, 0, a.Rows*a.Cols)
	for row := uint32(1); row <= a.Rows; row++ {
		for col := uint32(1); col <= a.Cols; col++ {
			seats = append(seats, Seat{
				AirplaneID: a.ID,
				Number:     SeatLabel(row, col),
				Row:        row,
				Col:        col,
				Type:       seatType,
				Status:     SeatAvailable,
			})
		}
	}
	return seats
}

// PriceFor applies the class multiplier to a flight's base price in
// cents: economy 1.0, premium 1.5, business 2.0.  Unknown classes
// price as economy.
func PriceFor(baseCents int64, seatType string) int64 {
	switch seatType {
	case SeatPremium:
		return baseCents * 3 / 2
	case SeatBusiness:
		return baseCents * 2
	default:
		return baseCents
	}
}
