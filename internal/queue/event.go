// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketQueueName is the durable queue carrying render requests for
// freshly issued tickets.
const TicketQueueName = "ticket.issued"

// TicketIssuedEvent is published after a ticket row commits.  It carries
// everything the renderer needs to produce a boarding document without
// querying the primary database.
type TicketIssuedEvent struct {
	EventID         string `json:"event_id"`
	ReservationID   uint64 `json:"reservation_id"`
	ReservationCode string `json:"reservation_code"`
	Barcode         string `json:"barcode"`
	PassengerName   string `json:"passenger_name"`
	PassengerEmail  string `json:"passenger_email"`
	Origin          string `json:"origin"`
	Destination     string `json:"destination"`
	DepartureTime   string `json:"departure_time"`
	SeatNumber      string `json:"seat_number"`
	SeatType        string `json:"seat_type"`
	PriceCents      int64  `json:"price_cents"`
	IssuedAt        string `json:"issued_at"`
}
