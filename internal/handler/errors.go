// Package handler exposes the HTTP surface: authentication, public
// flight browsing, customer booking and the staff backoffice.
// Handlers stay thin; business rules live in the service layer and
// storage rules in the repositories.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ValenCardozo/volando-ando/internal/repository"
	"github.com/ValenCardozo/volando-ando/internal/service"
)

// writeError translates layered errors into HTTP responses: business
// rule violations become 400, missing aggregates 404, unique-key and
// reference conflicts 409, everything else a generic 500.
func writeError(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Reason})
	}
	switch {
	case errors.Is(err, repository.ErrAirplaneNotFound),
		errors.Is(err, repository.ErrSeatNotFound),
		errors.Is(err, repository.ErrFlightNotFound),
		errors.Is(err, repository.ErrPassengerNotFound),
		errors.Is(err, repository.ErrReservationNotFound),
		errors.Is(err, repository.ErrTicketNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict),
		repository.IsDuplicateErr(err):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// pathID parses a numeric path parameter, returning 0 when absent or
// malformed.
func pathID(c echo.Context, name string) uint64 {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
