package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ValenCardozo/volando-ando/internal/repository"
)

// ReportHandler serves the staff reporting endpoints: dashboard
// counters, per-flight occupancy, route rankings and per-flight
// reservation listings.
type ReportHandler struct {
	Flights      *repository.FlightRepo
	Reservations *repository.ReservationRepo
}

func NewReportHandler(f *repository.FlightRepo, r *repository.ReservationRepo) *ReportHandler {
	return &ReportHandler{Flights: f, Reservations: r}
}

// Dashboard returns the headline counters: flights and reservations
// broken down by status.
func (h *ReportHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	flightCounts, err := h.Flights.CountByStatus(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	resCounts, err := h.Reservations.CountByStatus(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	total, err := h.Reservations.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"flights_by_status":      flightCounts,
		"reservations_by_status": resCounts,
		"reservations_total":     total,
	})
}

// Occupancy returns per-flight seat occupancy.
func (h *ReportHandler) Occupancy(c echo.Context) error {
	items, err := h.Reservations.OccupancyByFlight(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// TopRoutes returns the most-booked routes.  The limit query param
// caps the result (default 10).
func (h *ReportHandler) TopRoutes(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	items, err := h.Reservations.TopRoutes(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// FlightReservations lists every reservation on a flight for the
// backoffice, ordered by seat.
func (h *ReportHandler) FlightReservations(c echo.Context) error {
	ctx := c.Request().Context()
	f, err := h.Flights.GetByID(ctx, pathID(c, "id"))
	if err != nil {
		return writeError(c, err)
	}
	items, err := h.Reservations.ListByFlight(ctx, f.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"flight_id": f.ID, "items": items})
}
