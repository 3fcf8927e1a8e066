// Package mocks contains hand-written testify mocks for service
// interfaces consumed by the HTTP handlers.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ValenCardozo/volando-ando/internal/model"
)

// MockBooking mocks the reservation engine for handler tests.
type MockBooking struct {
	mock.Mock
}

func (m *MockBooking) CreateReservation(ctx context.Context, flightID, passengerID, seatID uint64) (*model.Reservation, error) {
	args := m.Called(ctx, flightID, passengerID, seatID)
	if r := args.Get(0); r != nil {
		return r.(*model.Reservation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBooking) ChangeStatus(ctx context.Context, reservationID uint64, newStatus string) (*model.Reservation, error) {
	args := m.Called(ctx, reservationID, newStatus)
	if r := args.Get(0); r != nil {
		return r.(*model.Reservation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBooking) ChangeSeat(ctx context.Context, reservationID, newSeatID uint64) (*model.Reservation, error) {
	args := m.Called(ctx, reservationID, newSeatID)
	if r := args.Get(0); r != nil {
		return r.(*model.Reservation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBooking) IssueTicket(ctx context.Context, reservationID uint64) (*model.Ticket, error) {
	args := m.Called(ctx, reservationID)
	if t := args.Get(0); t != nil {
		return t.(*model.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBooking) CancelAndRelease(ctx context.Context, reservationID uint64) error {
	args := m.Called(ctx, reservationID)
	return args.Error(0)
}
