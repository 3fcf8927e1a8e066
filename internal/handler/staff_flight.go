package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ValenCardozo/volando-ando/internal/model"
	"github.com/ValenCardozo/volando-ando/internal/repository"
	"github.com/ValenCardozo/volando-ando/internal/service"
)

// FlightHandler serves the staff flight lifecycle endpoints.  All
// rules live in FlightService; the handler only decodes the wire
// format into the typed patch.
type FlightHandler struct {
	Service *service.FlightService
	Flights *repository.FlightRepo
}

func NewFlightHandler(svc *service.FlightService, flights *repository.FlightRepo) *FlightHandler {
	return &FlightHandler{Service: svc, Flights: flights}
}

type createFlightReq struct {
	AirplaneID     uint64    `json:"airplane_id"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	BasePriceCents int64     `json:"base_price_cents"`
}

// patchFlightReq uses pointers so "field absent" and "field set to
// zero value" stay distinguishable.
type patchFlightReq struct {
	Origin         *string    `json:"origin"`
	Destination    *string    `json:"destination"`
	DepartureTime  *time.Time `json:"departure_time"`
	ArrivalTime    *time.Time `json:"arrival_time"`
	BasePriceCents *int64     `json:"base_price_cents"`
	Status         *string    `json:"status"`
}

// Create schedules a new flight.
func (h *FlightHandler) Create(c echo.Context) error {
	var req createFlightReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.AirplaneID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "airplane_id required"})
	}
	f := model.Flight{
		AirplaneID:     req.AirplaneID,
		Origin:         req.Origin,
		Destination:    req.Destination,
		DepartureTime:  req.DepartureTime,
		ArrivalTime:    req.ArrivalTime,
		BasePriceCents: req.BasePriceCents,
	}
	if err := h.Service.Create(c.Request().Context(), &f); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toPublicFlight(f))
}

// List returns flights with the same filters as the public browse,
// defaulting to all statuses for the backoffice.
func (h *FlightHandler) List(c echo.Context) error {
	flights, err := h.Flights.List(c.Request().Context(),
		c.QueryParam("status"), c.QueryParam("origin"), c.QueryParam("destination"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicFlight, 0, len(flights))
	for _, f := range flights {
		out = append(out, toPublicFlight(f))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Patch applies a partial update, including lifecycle transitions.
func (h *FlightHandler) Patch(c echo.Context) error {
	var req patchFlightReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	patch := repository.FlightPatch{
		Origin:         req.Origin,
		Destination:    req.Destination,
		DepartureTime:  req.DepartureTime,
		ArrivalTime:    req.ArrivalTime,
		BasePriceCents: req.BasePriceCents,
		Status:         req.Status,
	}
	f, err := h.Service.Patch(c.Request().Context(), pathID(c, "id"), patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPublicFlight(*f))
}

// Delete removes a flight that never flew.
func (h *FlightHandler) Delete(c echo.Context) error {
	if err := h.Service.Delete(c.Request().Context(), pathID(c, "id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
