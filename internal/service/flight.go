package service

import (
	"context"
	"strings"
	"time"

	"github.com/ValenCardozo/volando-ando/internal/model"
	"github.com/ValenCardozo/volando-ando/internal/repository"
)

// FlightService enforces the flight lifecycle rules: creation
// defaults, the status transition table, and the delete guard.
type FlightService struct {
	flights   *repository.FlightRepo
	airplanes *repository.AirplaneRepo
}

// NewFlightService wires the flight lifecycle service.
func NewFlightService(flights *repository.FlightRepo, airplanes *repository.AirplaneRepo) *FlightService {
	return &FlightService{flights: flights, airplanes: airplanes}
}

// Create validates and persists a new flight.  The flight starts in
// scheduled status and its duration is derived from the time pair;
// client-supplied status or duration values are ignored.
func (s *FlightService) Create(ctx context.Context, f *model.Flight) error {
	plane, err := s.airplanes.GetByID(ctx, f.AirplaneID)
	if err != nil {
		return err
	}
	if plane.Capacity == 0 {
		return Validationf("airplane has no seats to sell")
	}
	f.Origin = strings.TrimSpace(f.Origin)
	f.Destination = strings.TrimSpace(f.Destination)
	if f.Origin == "" || f.Destination == "" {
		return Validationf("origin and destination are required")
	}
	if f.Origin == f.Destination {
		return Validationf("origin and destination must differ")
	}
	if !f.DepartureTime.Before(f.ArrivalTime) {
		return Validationf("departure time must be before arrival time")
	}
	if f.BasePriceCents <= 0 {
		return Validationf("base price must be positive")
	}
	f.DepartureTime = f.DepartureTime.UTC()
	f.ArrivalTime = f.ArrivalTime.UTC()
	f.DurationMin = uint32(f.ArrivalTime.Sub(f.DepartureTime) / time.Minute)
	f.Status = model.FlightScheduled
	return s.flights.Create(ctx, f)
}

// Patch applies a partial update to a flight.  Completed and canceled
// flights are frozen; a status change must follow the transition
// table; time edits keep departure strictly before arrival.
func (s *FlightService) Patch(ctx context.Context, id uint64, p repository.FlightPatch) (*model.Flight, error) {
	f, err := s.flights.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Status == model.FlightCompleted || f.Status == model.FlightCanceled {
		return nil, Validationf("a %s flight cannot be modified", f.Status)
	}
	if p.Status != nil {
		next := strings.ToLower(strings.TrimSpace(*p.Status))
		if !model.ValidFlightStatus(next) {
			return nil, Validationf("invalid status %q", next)
		}
		if !model.CanFlightTransition(f.Status, next) {
			targets := model.FlightTransitionTargets(f.Status)
			if len(targets) == 0 {
				return nil, Validationf("a %s flight cannot change status", f.Status)
			}
			return nil, Validationf("a %s flight can only move to: %s", f.Status, strings.Join(targets, ", "))
		}
		p.Status = &next
	}

	dep, arr := f.DepartureTime, f.ArrivalTime
	if p.DepartureTime != nil {
		dep = p.DepartureTime.UTC()
	}
	if p.ArrivalTime != nil {
		arr = p.ArrivalTime.UTC()
	}
	if !dep.Before(arr) {
		return nil, Validationf("departure time must be before arrival time")
	}
	if p.BasePriceCents != nil && *p.BasePriceCents <= 0 {
		return nil, Validationf("base price must be positive")
	}
	if p.Origin != nil {
		o := strings.TrimSpace(*p.Origin)
		if o == "" {
			return nil, Validationf("origin cannot be empty")
		}
		p.Origin = &o
	}
	if p.Destination != nil {
		d := strings.TrimSpace(*p.Destination)
		if d == "" {
			return nil, Validationf("destination cannot be empty")
		}
		p.Destination = &d
	}

	if err := s.flights.ApplyPatch(ctx, f, p); err != nil {
		return nil, err
	}
	return f, nil
}

// Delete removes a flight that never flew: only scheduled or canceled
// flights qualify, and only while no reservations reference them.
func (s *FlightService) Delete(ctx context.Context, id uint64) error {
	f, err := s.flights.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if f.Status != model.FlightScheduled && f.Status != model.FlightCanceled {
		return Validationf("only scheduled or canceled flights can be deleted")
	}
	return s.flights.Delete(ctx, id)
}
