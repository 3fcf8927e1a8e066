package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ValenCardozo/volando-ando/internal/middleware"
	"github.com/ValenCardozo/volando-ando/internal/model"
	"github.com/ValenCardozo/volando-ando/internal/repository"
	"github.com/ValenCardozo/volando-ando/internal/service"
)

// PassengerDirectory resolves passenger profiles for authenticated
// identities.  Satisfied by repository.PassengerRepo.
type PassengerDirectory interface {
	GetOrCreateByEmail(ctx context.Context, email, name string, userID uint64) (*model.Passenger, error)
}

// ReservationReader covers the read side of reservations the booking
// handlers need.  Satisfied by repository.ReservationRepo.
type ReservationReader interface {
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	GetByCode(ctx context.Context, code string) (*model.Reservation, error)
	ListByPassenger(ctx context.Context, passengerID uint64) ([]repository.ReservationDetail, error)
}

// TicketReader looks up issued tickets.  Satisfied by
// repository.TicketRepo.
type TicketReader interface {
	GetByReservation(ctx context.Context, reservationID uint64) (*model.Ticket, error)
}

// BookingHandler serves the customer reservation endpoints.  The
// reservation engine does the heavy lifting; the handler resolves the
// authenticated passenger, enforces ownership and shapes responses.
type BookingHandler struct {
	Engine       service.Booking
	Passengers   PassengerDirectory
	Reservations ReservationReader
	Tickets      TicketReader
}

func NewBookingHandler(engine service.Booking, p PassengerDirectory,
	r ReservationReader, t TicketReader) *BookingHandler {
	return &BookingHandler{Engine: engine, Passengers: p, Reservations: r, Tickets: t}
}

type createReservationReq struct {
	SeatID uint64 `json:"seat_id"` // 0 or absent requests auto-assignment
}
type changeStatusReq struct {
	Status string `json:"status"`
}
type changeSeatReq struct {
	SeatID uint64 `json:"seat_id"`
}

type reservationResp struct {
	ID         uint64 `json:"id"`
	Code       string `json:"reservation_code"`
	FlightID   uint64 `json:"flight_id"`
	SeatID     uint64 `json:"seat_id"`
	Status     string `json:"status"`
	PriceCents int64  `json:"price_cents"`
}

func toReservationResp(r *model.Reservation) reservationResp {
	return reservationResp{
		ID:         r.ID,
		Code:       r.Code,
		FlightID:   r.FlightID,
		SeatID:     r.SeatID,
		Status:     r.Status,
		PriceCents: r.PriceCents,
	}
}

type ticketResp struct {
	ID            uint64 `json:"id"`
	ReservationID uint64 `json:"reservation_id"`
	Barcode       string `json:"barcode"`
	Status        string `json:"status"`
	IssueDate     string `json:"issue_date"`
}

func toTicketResp(t *model.Ticket) ticketResp {
	return ticketResp{
		ID:            t.ID,
		ReservationID: t.ReservationID,
		Barcode:       t.Barcode,
		Status:        t.Status,
		IssueDate:     t.IssueDate.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// currentPassenger resolves the passenger profile for the
// authenticated user, creating a placeholder profile on first use.
func (h *BookingHandler) currentPassenger(c echo.Context) (*model.Passenger, error) {
	uid, ok := middleware.UserID(c)
	if !ok {
		return nil, echo.ErrUnauthorized
	}
	email, ok := middleware.Email(c)
	if !ok {
		return nil, echo.ErrUnauthorized
	}
	return h.Passengers.GetOrCreateByEmail(c.Request().Context(), email, email, uid)
}

// ownedReservation loads a reservation and checks it belongs to the
// calling passenger.
func (h *BookingHandler) ownedReservation(c echo.Context, id uint64) (*model.Reservation, error) {
	p, err := h.currentPassenger(c)
	if err != nil {
		return nil, err
	}
	res, err := h.Reservations.GetByID(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if res.PassengerID != p.ID {
		return nil, repository.ErrForbidden
	}
	return res, nil
}

// Create books a seat on the flight in the path for the
// authenticated passenger.  Omitting seat_id auto-assigns the first
// available seat.
func (h *BookingHandler) Create(c echo.Context) error {
	flightID := pathID(c, "id")
	if flightID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flight id"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p, err := h.currentPassenger(c)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.Engine.CreateReservation(c.Request().Context(), flightID, p.ID, req.SeatID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toReservationResp(res))
}

// ListMine returns the authenticated passenger's reservations with
// flight and seat details, newest first.
func (h *BookingHandler) ListMine(c echo.Context) error {
	p, err := h.currentPassenger(c)
	if err != nil {
		return writeError(c, err)
	}
	items, err := h.Reservations.ListByPassenger(c.Request().Context(), p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetByCode looks a reservation up by its public code.  The code is
// the lookup key handed to passengers, so it works across devices.
func (h *BookingHandler) GetByCode(c echo.Context) error {
	p, err := h.currentPassenger(c)
	if err != nil {
		return writeError(c, err)
	}
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	res, err := h.Reservations.GetByCode(c.Request().Context(), code)
	if err != nil {
		return writeError(c, err)
	}
	if res.PassengerID != p.ID {
		return writeError(c, repository.ErrForbidden)
	}
	return c.JSON(http.StatusOK, toReservationResp(res))
}

// ChangeStatus confirms or cancels a reservation.
func (h *BookingHandler) ChangeStatus(c echo.Context) error {
	var req changeStatusReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status required"})
	}
	res, err := h.ownedReservation(c, pathID(c, "id"))
	if err != nil {
		return writeError(c, err)
	}
	updated, err := h.Engine.ChangeStatus(c.Request().Context(), res.ID, req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(updated))
}

// ChangeSeat moves the reservation to another seat on the same
// flight, repricing it for the new seat's class.
func (h *BookingHandler) ChangeSeat(c echo.Context) error {
	var req changeSeatReq
	if err := c.Bind(&req); err != nil || req.SeatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_id required"})
	}
	res, err := h.ownedReservation(c, pathID(c, "id"))
	if err != nil {
		return writeError(c, err)
	}
	updated, err := h.Engine.ChangeSeat(c.Request().Context(), res.ID, req.SeatID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(updated))
}

// Delete removes the reservation entirely and frees its seat.
func (h *BookingHandler) Delete(c echo.Context) error {
	res, err := h.ownedReservation(c, pathID(c, "id"))
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Engine.CancelAndRelease(c.Request().Context(), res.ID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// IssueTicket issues the ticket for a confirmed reservation.
func (h *BookingHandler) IssueTicket(c echo.Context) error {
	res, err := h.ownedReservation(c, pathID(c, "id"))
	if err != nil {
		return writeError(c, err)
	}
	ticket, err := h.Engine.IssueTicket(c.Request().Context(), res.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toTicketResp(ticket))
}

// GetTicket returns the ticket of one of the passenger's
// reservations.
func (h *BookingHandler) GetTicket(c echo.Context) error {
	res, err := h.ownedReservation(c, pathID(c, "id"))
	if err != nil {
		return writeError(c, err)
	}
	ticket, err := h.Tickets.GetByReservation(c.Request().Context(), res.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toTicketResp(ticket))
}
