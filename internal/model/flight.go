package model

import "time"

// Flight status enumeration.  A flight moves through a one-way state
// machine: scheduled -> in_flight -> completed, with cancellation
// possible only while still scheduled.
const (
	FlightScheduled = "scheduled"
	FlightInFlight  = "in_flight"
	FlightCompleted = "completed"
	FlightCanceled  = "canceled"
)

// Flight represents a scheduled trip of one airplane between two
// cities.  DurationMin is derived from the departure and arrival
// times and never supplied by clients.
//
// Fields:
//  ID             – primary key identifier.
//  AirplaneID     – airplane operating the flight.
//  Origin         – departure city.
//  Destination    – arrival city.
//  DepartureTime  – scheduled departure (UTC).
//  ArrivalTime    – scheduled arrival (UTC), strictly after departure.
//  DurationMin    – flight duration in minutes.
//  Status         – lifecycle status (scheduled, in_flight, completed, canceled).
//  BasePriceCents – economy seat price in cents.
type Flight struct {
	ID             uint64    // flights.id
	AirplaneID     uint64    // flights.airplane_id
	Origin         string    // flights.origin
	Destination    string    // flights.destination
	DepartureTime  time.Time // flights.departure_time
	ArrivalTime    time.Time // flights.arrival_time
	DurationMin    uint32    // flights.duration_min
	Status         string    // flights.status
	BasePriceCents int64     // flights.base_price_cents
}

// flightTransitions is the allowed transition table.  Completed and
// canceled are terminal.
var flightTransitions = map[string][]string{
	FlightScheduled: {FlightInFlight, FlightCanceled},
	FlightInFlight:  {FlightCompleted},
	FlightCompleted: {},
	FlightCanceled:  {},
}

// ValidFlightStatus reports whether s is a known flight status.
func ValidFlightStatus(s string) bool {
	_, ok := flightTransitions[s]
	return ok
}

// FlightTransitionTargets returns the statuses a flight in the given
// status may move to.  Unknown statuses have no targets.
func FlightTransitionTargets(cur string) []string {
	return flightTransitions[cur]
}

// CanFlightTransition reports whether cur -> next is a legal move in
// the flight state machine.
func CanFlightTransition(cur, next string) bool {
	for _, t := range flightTransitions[cur] {
		if t == next {
			return true
		}
	}
	return false
}
