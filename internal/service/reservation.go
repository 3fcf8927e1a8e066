package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"

	"github.com/ValenCardozo/volando-ando/internal/model"
	"github.com/ValenCardozo/volando-ando/internal/queue"
	"github.com/ValenCardozo/volando-ando/internal/repository"
)

// codeAttempts bounds the regenerate-on-collision loops for
// reservation codes and barcodes.  With a 36^8 space the loop
// effectively never runs more than once; the bound exists so a broken
// RNG cannot spin forever.
const codeAttempts = 5

// Booking is the reservation engine contract consumed by the booking
// handlers.  A seatID of zero on CreateReservation requests
// auto-assignment of the first available seat.
type Booking interface {
	CreateReservation(ctx context.Context, flightID, passengerID, seatID uint64) (*model.Reservation, error)
	ChangeStatus(ctx context.Context, reservationID uint64, newStatus string) (*model.Reservation, error)
	ChangeSeat(ctx context.Context, reservationID, newSeatID uint64) (*model.Reservation, error)
	IssueTicket(ctx context.Context, reservationID uint64) (*model.Ticket, error)
	CancelAndRelease(ctx context.Context, reservationID uint64) error
}

// TicketEvents publishes render requests for issued tickets.  The
// publisher is best-effort: issuance never fails because of it.
type TicketEvents interface {
	PublishTicketIssued(ctx context.Context, ev queue.TicketIssuedEvent) error
}

// ReservationService is the core state machine of the system.  Every
// mutation runs in one transaction so a reservation row and its
// seat's status can never disagree: create pairs INSERT with the
// available->reserved claim, confirm pairs the status update with
// reserved->occupied, cancel pairs it with the release back to
// available.  Seat exclusivity rests on the conditional claim, and
// the unique keys on (flight, passenger) and reservation_code close
// the remaining race windows.
type ReservationService struct {
	db           *sql.DB
	flights      *repository.FlightRepo
	seats        *repository.SeatRepo
	passengers   *repository.PassengerRepo
	reservations *repository.ReservationRepo
	tickets      *repository.TicketRepo
	events       TicketEvents // nil disables render events
}

// NewReservationService wires the engine.  All repositories must be
// non-nil; events may be nil when no broker is configured.
func NewReservationService(db *sql.DB, flights *repository.FlightRepo, seats *repository.SeatRepo,
	passengers *repository.PassengerRepo, reservations *repository.ReservationRepo,
	tickets *repository.TicketRepo, events TicketEvents) *ReservationService {
	if db == nil || flights == nil || seats == nil || passengers == nil || reservations == nil || tickets == nil {
		panic("nil dependency passed to NewReservationService")
	}
	return &ReservationService{
		db:           db,
		flights:      flights,
		seats:        seats,
		passengers:   passengers,
		reservations: reservations,
		tickets:      tickets,
		events:       events,
	}
}

// CreateReservation books a seat on a flight for a passenger.  The
// business checks fail fast before any mutation; the seat claim and
// the reservation insert then commit or roll back together.
func (s *ReservationService) CreateReservation(ctx context.Context, flightID, passengerID, seatID uint64) (*model.Reservation, error) {
	// Advisory duplicate check before opening the transaction.  The
	// unique key on (flight_id, passenger_id) remains the authority
	// when two requests race past this read.
	if _, err := s.reservations.GetByFlightAndPassenger(ctx, flightID, passengerID); err == nil {
		return nil, repository.ErrDuplicateReservation
	} else if !errors.Is(err, repository.ErrReservationNotFound) {
		return nil, err
	}

	code, err := s.freshReservationCode(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	flight, err := s.flights.GetByIDTx(ctx, tx, flightID)
	if err != nil {
		return nil, err
	}
	if flight.Status != model.FlightScheduled {
		return nil, Validationf("reservations are only accepted for scheduled flights")
	}

	if seatID == 0 {
		seatID, err = s.seats.FirstAvailableTx(ctx, tx, flight.AirplaneID)
		if errors.Is(err, repository.ErrSeatNotFound) {
			return nil, Validationf("no seats available for this flight")
		}
		if err != nil {
			return nil, err
		}
	}
	seat, err := s.seats.GetByIDTx(ctx, tx, seatID)
	if err != nil {
		return nil, err
	}
	if seat.AirplaneID != flight.AirplaneID {
		return nil, Validationf("seat does not belong to this flight's airplane")
	}
	if seat.Status != model.SeatAvailable {
		return nil, Validationf("seat not available")
	}

	// The conditional claim is the real exclusivity guard: under a
	// concurrent booking of the same seat exactly one transaction
	// flips available->reserved; the other sees zero rows and aborts.
	claimed, err := s.seats.ClaimTx(ctx, tx, seat.ID, model.SeatAvailable, model.SeatReserved)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, Validationf("seat not available")
	}

	res := &model.Reservation{
		FlightID:    flight.ID,
		PassengerID: passengerID,
		SeatID:      seat.ID,
		Status:      model.ReservationPending,
		PriceCents:  model.PriceFor(flight.BasePriceCents, seat.Type),
		Code:        code,
	}
	for attempt := 0; ; attempt++ {
		err = s.reservations.CreateTx(ctx, tx, res)
		if !errors.Is(err, repository.ErrDuplicateCode) || attempt >= codeAttempts {
			break
		}
		// Lost the generate-then-check race on the code; try another.
		if res.Code, err = NewReservationCode(); err != nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return res, nil
}

// ChangeStatus moves a reservation through its state machine and
// keeps the seat in lockstep: confirm occupies it, cancel frees it.
func (s *ReservationService) ChangeStatus(ctx context.Context, reservationID uint64, newStatus string) (*model.Reservation, error) {
	newStatus = strings.ToLower(strings.TrimSpace(newStatus))
	if !model.ValidReservationStatus(newStatus) {
		return nil, Validationf("invalid status %q, options: %s", newStatus,
			strings.Join([]string{model.ReservationPending, model.ReservationConfirmed, model.ReservationCanceled}, ", "))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := s.reservations.GetByIDTx(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	if !model.CanReservationTransition(res.Status, newStatus) {
		targets := model.ReservationTransitionTargets(res.Status)
		if len(targets) == 0 {
			return nil, Validationf("a canceled reservation cannot change status")
		}
		return nil, Validationf("a %s reservation can only move to: %s", res.Status, strings.Join(targets, ", "))
	}

	if err := s.reservations.UpdateStatusTx(ctx, tx, res.ID, newStatus); err != nil {
		return nil, err
	}
	switch newStatus {
	case model.ReservationConfirmed:
		if err := s.seats.SetStatusTx(ctx, tx, res.SeatID, model.SeatOccupied); err != nil {
			return nil, err
		}
	case model.ReservationCanceled:
		if err := s.seats.SetStatusTx(ctx, tx, res.SeatID, model.SeatAvailable); err != nil {
			return nil, err
		}
		if err := s.tickets.CancelTx(ctx, tx, res.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	res.Status = newStatus
	return res, nil
}

// ChangeSeat reassigns a live reservation to a different seat on the
// same flight.  The new seat is claimed and the old one released in
// the same transaction, so there is no window where the passenger
// holds both seats or neither.
func (s *ReservationService) ChangeSeat(ctx context.Context, reservationID, newSeatID uint64) (*model.Reservation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := s.reservations.GetByIDTx(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.Status == model.ReservationCanceled {
		return nil, Validationf("a canceled reservation cannot change seat")
	}
	if res.SeatID == newSeatID {
		return nil, Validationf("reservation already holds this seat")
	}
	flight, err := s.flights.GetByIDTx(ctx, tx, res.FlightID)
	if err != nil {
		return nil, err
	}
	if flight.Status != model.FlightScheduled {
		return nil, Validationf("seats can only be changed on scheduled flights")
	}
	newSeat, err := s.seats.GetByIDTx(ctx, tx, newSeatID)
	if err != nil {
		return nil, err
	}
	if newSeat.AirplaneID != flight.AirplaneID {
		return nil, Validationf("seat does not belong to this flight's airplane")
	}

	// A confirmed reservation's seat is occupied, a pending one's is
	// reserved; the new seat inherits the same state.
	target := model.SeatReserved
	oldStatus := model.SeatReserved
	if res.Status == model.ReservationConfirmed {
		target = model.SeatOccupied
		oldStatus = model.SeatOccupied
	}
	claimed, err := s.seats.ClaimTx(ctx, tx, newSeat.ID, model.SeatAvailable, target)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, Validationf("seat not available")
	}
	released, err := s.seats.ClaimTx(ctx, tx, res.SeatID, oldStatus, model.SeatAvailable)
	if err != nil {
		return nil, err
	}
	if !released {
		// The old seat should always carry the reservation's state;
		// fall back to an unconditional release rather than stranding
		// it in a stale status.
		if err := s.seats.SetStatusTx(ctx, tx, res.SeatID, model.SeatAvailable); err != nil {
			return nil, err
		}
	}

	price := model.PriceFor(flight.BasePriceCents, newSeat.Type)
	if err := s.reservations.UpdateSeatTx(ctx, tx, res.ID, newSeat.ID, price); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	res.SeatID = newSeat.ID
	res.PriceCents = price
	return res, nil
}

// IssueTicket creates the ticket record for a confirmed reservation
// and then asks the external renderer for an artifact.  The render
// request is fire-and-forget: the ticket row has already committed
// and a publish failure only logs.
func (s *ReservationService) IssueTicket(ctx context.Context, reservationID uint64) (*model.Ticket, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.Status != model.ReservationConfirmed {
		return nil, Validationf("tickets can only be issued for confirmed reservations")
	}
	if _, err := s.tickets.GetByReservation(ctx, res.ID); err == nil {
		return nil, repository.ErrTicketExists
	} else if !errors.Is(err, repository.ErrTicketNotFound) {
		return nil, err
	}

	barcode, err := s.freshBarcode(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Re-check under the row lock: the advisory reads above can be
	// stale by the time the transaction starts, and a reservation
	// canceled in that window must not receive a ticket.
	cur, err := s.reservations.GetByIDTx(ctx, tx, res.ID)
	if err != nil {
		return nil, err
	}
	if cur.Status != model.ReservationConfirmed {
		return nil, Validationf("tickets can only be issued for confirmed reservations")
	}

	ticket := &model.Ticket{
		ReservationID: res.ID,
		Barcode:       barcode,
		Status:        model.TicketIssued,
	}
	for attempt := 0; ; attempt++ {
		err = s.tickets.CreateTx(ctx, tx, ticket)
		if !errors.Is(err, repository.ErrDuplicateBarcode) || attempt >= codeAttempts {
			break
		}
		if ticket.Barcode, err = NewBarcode(); err != nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.publishRenderEvent(ctx, res, ticket)
	return ticket, nil
}

// CancelAndRelease hard-deletes a reservation and frees its seat in
// one transaction.  Any issued ticket is flipped to canceled first.
func (s *ReservationService) CancelAndRelease(ctx context.Context, reservationID uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := s.reservations.GetByIDTx(ctx, tx, reservationID)
	if err != nil {
		return err
	}
	if err := s.tickets.CancelTx(ctx, tx, res.ID); err != nil {
		return err
	}
	// A canceled reservation gave its seat up at cancellation time; the
	// seat may belong to someone else's booking now, so only a live
	// reservation releases it.
	if res.Status != model.ReservationCanceled {
		if err := s.seats.SetStatusTx(ctx, tx, res.SeatID, model.SeatAvailable); err != nil {
			return err
		}
	}
	if err := s.reservations.DeleteTx(ctx, tx, res.ID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// freshReservationCode generates a code and retries while it
// collides with an existing one.
func (s *ReservationService) freshReservationCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := NewReservationCode()
		if err != nil {
			return "", err
		}
		taken, err := s.reservations.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique reservation code")
}

// freshBarcode generates a barcode and retries while it collides.
func (s *ReservationService) freshBarcode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		barcode, err := NewBarcode()
		if err != nil {
			return "", err
		}
		taken, err := s.tickets.BarcodeExists(ctx, barcode)
		if err != nil {
			return "", err
		}
		if !taken {
			return barcode, nil
		}
	}
	return "", errors.New("could not generate a unique barcode")
}

// publishRenderEvent assembles and publishes the ticket.issued event.
// All lookups and the publish itself are best-effort.
func (s *ReservationService) publishRenderEvent(ctx context.Context, res *model.Reservation, ticket *model.Ticket) {
	if s.events == nil {
		return
	}
	ev := queue.TicketIssuedEvent{
		ReservationID:   res.ID,
		ReservationCode: res.Code,
		Barcode:         ticket.Barcode,
		PriceCents:      res.PriceCents,
		IssuedAt:        ticket.IssueDate.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if flight, err := s.flights.GetByID(ctx, res.FlightID); err == nil {
		ev.Origin = flight.Origin
		ev.Destination = flight.Destination
		ev.DepartureTime = flight.DepartureTime.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if seat, err := s.seats.GetByID(ctx, res.SeatID); err == nil {
		ev.SeatNumber = seat.Number
		ev.SeatType = seat.Type
	}
	if p, err := s.passengers.GetByID(ctx, res.PassengerID); err == nil {
		ev.PassengerName = p.Name
		ev.PassengerEmail = p.Email
	}
	if err := s.events.PublishTicketIssued(ctx, ev); err != nil {
		log.Printf("ticket render event publish failed for %s: %v", ticket.Barcode, err)
	}
}
