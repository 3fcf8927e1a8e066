package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ValenCardozo/volando-ando/internal/model"
	"github.com/ValenCardozo/volando-ando/internal/repository"
)

// PublicHandler serves the unauthenticated browse endpoints: flight
// search, flight detail and the live seat map.  Responses expose only
// passenger-safe fields.
type PublicHandler struct {
	Flights   *repository.FlightRepo
	Airplanes *repository.AirplaneRepo
	Seats     *repository.SeatRepo
}

func NewPublicHandler(f *repository.FlightRepo, a *repository.AirplaneRepo, s *repository.SeatRepo) *PublicHandler {
	return &PublicHandler{Flights: f, Airplanes: a, Seats: s}
}

// PublicFlight is a flight as shown to browsing passengers.
type PublicFlight struct {
	ID             uint64    `json:"id"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	DurationMin    uint32    `json:"duration_min"`
	Status         string    `json:"status"`
	BasePriceCents int64     `json:"base_price_cents"`
}

func toPublicFlight(f model.Flight) PublicFlight {
	return PublicFlight{
		ID:             f.ID,
		Origin:         f.Origin,
		Destination:    f.Destination,
		DepartureTime:  f.DepartureTime,
		ArrivalTime:    f.ArrivalTime,
		DurationMin:    f.DurationMin,
		Status:         f.Status,
		BasePriceCents: f.BasePriceCents,
	}
}

// PublicSeat is one seat in the public seat map.  Reserved and
// occupied both read as unavailable; which passenger holds a seat is
// never exposed.
type PublicSeat struct {
	ID         uint64 `json:"id"`
	Number     string `json:"number"`
	Type       string `json:"seat_type"`
	Available  bool   `json:"available"`
	PriceCents int64  `json:"price_cents"`
}

// SeatRow groups the seat map row by row for rendering.
type SeatRow struct {
	Row   uint32       `json:"row"`
	Seats []PublicSeat `json:"seats"`
}

// ListFlights returns flights matching the optional status, origin
// and destination query filters.  Without a status filter only
// scheduled (bookable) flights are listed.
func (h *PublicHandler) ListFlights(c echo.Context) error {
	ctx := c.Request().Context()
	status := strings.ToLower(strings.TrimSpace(c.QueryParam("status")))
	if status == "" {
		status = model.FlightScheduled
	} else if status == "all" {
		status = ""
	} else if !model.ValidFlightStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status filter"})
	}
	flights, err := h.Flights.List(ctx, status,
		strings.TrimSpace(c.QueryParam("origin")),
		strings.TrimSpace(c.QueryParam("destination")))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicFlight, 0, len(flights))
	for _, f := range flights {
		out = append(out, toPublicFlight(f))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetFlight returns one flight with its airplane model.
func (h *PublicHandler) GetFlight(c echo.Context) error {
	ctx := c.Request().Context()
	f, err := h.Flights.GetByID(ctx, pathID(c, "id"))
	if err != nil {
		return writeError(c, err)
	}
	resp := echo.Map{"flight": toPublicFlight(*f)}
	if a, err := h.Airplanes.GetByID(ctx, f.AirplaneID); err == nil {
		resp["airplane"] = echo.Map{"model": a.Model, "capacity": a.Capacity}
	}
	return c.JSON(http.StatusOK, resp)
}

// GetFlightSeats returns the flight's seat map grouped by row, with
// per-seat availability and the class-adjusted price.
func (h *PublicHandler) GetFlightSeats(c echo.Context) error {
	ctx := c.Request().Context()
	f, err := h.Flights.GetByID(ctx, pathID(c, "id"))
	if err != nil {
		return writeError(c, err)
	}
	seats, err := h.Seats.GetByAirplane(ctx, f.AirplaneID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	rows := make([]SeatRow, 0)
	for _, s := range seats {
		ps := PublicSeat{
			ID:         s.ID,
			Number:     s.Number,
			Type:       s.Type,
			Available:  s.Status == model.SeatAvailable,
			PriceCents: model.PriceFor(f.BasePriceCents, s.Type),
		}
		if n := len(rows); n > 0 && rows[n-1].Row == s.Row {
			rows[n-1].Seats = append(rows[n-1].Seats, ps)
		} else {
			rows = append(rows, SeatRow{Row: s.Row, Seats: []PublicSeat{ps}})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"flight_id": f.ID, "rows": rows})
}
