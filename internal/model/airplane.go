package model

// Airplane describes an aircraft in the fleet.  The seat grid is
// defined by Rows and Cols; Capacity is the marketing capacity and
// must be positive before the airplane can be scheduled on a flight.
//
// Fields:
//  ID       – primary key identifier.
//  Model    – manufacturer model name (e.g. "Boeing 737-800").
//  Capacity – number of sellable seats.
//  Rows     – seat rows in the cabin grid.
//  Cols     – seat columns in the cabin grid.
type Airplane struct {
	ID       uint64 // airplanes.id
	Model    string // airplanes.model
	Capacity uint32 // airplanes.capacity
	Rows     uint32 // airplanes.seat_rows
	Cols     uint32 // airplanes.seat_cols
}
