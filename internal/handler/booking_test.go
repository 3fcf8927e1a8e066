package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ValenCardozo/volando-ando/internal/model"
	"github.com/ValenCardozo/volando-ando/internal/repository"
	"github.com/ValenCardozo/volando-ando/internal/service"
	"github.com/ValenCardozo/volando-ando/internal/service/mocks"
)

type mockPassengers struct{ mock.Mock }

func (m *mockPassengers) GetOrCreateByEmail(ctx context.Context, email, name string, userID uint64) (*model.Passenger, error) {
	args := m.Called(ctx, email, name, userID)
	if p := args.Get(0); p != nil {
		return p.(*model.Passenger), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockReservations struct{ mock.Mock }

func (m *mockReservations) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*model.Reservation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReservations) GetByCode(ctx context.Context, code string) (*model.Reservation, error) {
	args := m.Called(ctx, code)
	if r := args.Get(0); r != nil {
		return r.(*model.Reservation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReservations) ListByPassenger(ctx context.Context, passengerID uint64) ([]repository.ReservationDetail, error) {
	args := m.Called(ctx, passengerID)
	if r := args.Get(0); r != nil {
		return r.([]repository.ReservationDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockTickets struct{ mock.Mock }

func (m *mockTickets) GetByReservation(ctx context.Context, reservationID uint64) (*model.Ticket, error) {
	args := m.Called(ctx, reservationID)
	if tk := args.Get(0); tk != nil {
		return tk.(*model.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

type bookingFixture struct {
	engine     *mocks.MockBooking
	passengers *mockPassengers
	resRepo    *mockReservations
	tickets    *mockTickets
	handler    *BookingHandler
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		engine:     new(mocks.MockBooking),
		passengers: new(mockPassengers),
		resRepo:    new(mockReservations),
		tickets:    new(mockTickets),
	}
	f.handler = NewBookingHandler(f.engine, f.passengers, f.resRepo, f.tickets)
	return f
}

// authedContext builds an echo context as it looks after the JWT
// middleware ran for user 42 / passenger test@example.com.
func authedContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("user_id", uint64(42))
	c.Set("email", "test@example.com")
	c.Set("role", model.RoleCustomer)
	return c, rec
}

func testPassenger() *model.Passenger {
	return &model.Passenger{ID: 9, Name: "Test Passenger", Email: "test@example.com"}
}

func TestBookingCreate(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		engineRes      *model.Reservation
		engineErr      error
		wantSeatID     uint64
		expectedStatus int
	}{
		{
			name:           "explicit seat",
			body:           `{"seat_id":5}`,
			engineRes:      &model.Reservation{ID: 1, FlightID: 3, SeatID: 5, Status: model.ReservationPending, Code: "AB12CD34", PriceCents: 15000},
			wantSeatID:     5,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "auto assign",
			body:           `{}`,
			engineRes:      &model.Reservation{ID: 2, FlightID: 3, SeatID: 1, Status: model.ReservationPending, Code: "ZZ99YY88", PriceCents: 10000},
			wantSeatID:     0,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "seat taken",
			body:           `{"seat_id":5}`,
			engineErr:      service.Validationf("seat not available"),
			wantSeatID:     5,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "already booked",
			body:           `{"seat_id":5}`,
			engineErr:      repository.ErrDuplicateReservation,
			wantSeatID:     5,
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture()
			f.passengers.On("GetOrCreateByEmail", mock.Anything, "test@example.com", mock.Anything, uint64(42)).
				Return(testPassenger(), nil)
			f.engine.On("CreateReservation", mock.Anything, uint64(3), uint64(9), tt.wantSeatID).
				Return(tt.engineRes, tt.engineErr)

			c, rec := authedContext(t, http.MethodPost, "/v1/flights/3/reservations", tt.body)
			c.SetParamNames("id")
			c.SetParamValues("3")

			require.NoError(t, f.handler.Create(c))
			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.engineErr == nil {
				var resp reservationResp
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.engineRes.Code, resp.Code)
				assert.Equal(t, tt.engineRes.PriceCents, resp.PriceCents)
			}
			f.engine.AssertExpectations(t)
		})
	}
}

func TestBookingChangeStatus(t *testing.T) {
	f := newBookingFixture()
	owned := &model.Reservation{ID: 11, PassengerID: 9, Status: model.ReservationPending}
	f.passengers.On("GetOrCreateByEmail", mock.Anything, "test@example.com", mock.Anything, uint64(42)).
		Return(testPassenger(), nil)
	f.resRepo.On("GetByID", mock.Anything, uint64(11)).Return(owned, nil)
	f.engine.On("ChangeStatus", mock.Anything, uint64(11), "confirmed").
		Return(&model.Reservation{ID: 11, PassengerID: 9, Status: model.ReservationConfirmed}, nil)

	c, rec := authedContext(t, http.MethodPatch, "/v1/reservations/11/status", `{"status":"confirmed"}`)
	c.SetParamNames("id")
	c.SetParamValues("11")

	require.NoError(t, f.handler.ChangeStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp reservationResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.ReservationConfirmed, resp.Status)
	f.engine.AssertExpectations(t)
}

func TestBookingChangeStatusInvalidTransition(t *testing.T) {
	f := newBookingFixture()
	owned := &model.Reservation{ID: 11, PassengerID: 9, Status: model.ReservationCanceled}
	f.passengers.On("GetOrCreateByEmail", mock.Anything, "test@example.com", mock.Anything, uint64(42)).
		Return(testPassenger(), nil)
	f.resRepo.On("GetByID", mock.Anything, uint64(11)).Return(owned, nil)
	f.engine.On("ChangeStatus", mock.Anything, uint64(11), "confirmed").
		Return(nil, service.Validationf("a canceled reservation cannot change status"))

	c, rec := authedContext(t, http.MethodPatch, "/v1/reservations/11/status", `{"status":"confirmed"}`)
	c.SetParamNames("id")
	c.SetParamValues("11")

	require.NoError(t, f.handler.ChangeStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingOwnershipEnforced(t *testing.T) {
	f := newBookingFixture()
	foreign := &model.Reservation{ID: 11, PassengerID: 77, Status: model.ReservationPending}
	f.passengers.On("GetOrCreateByEmail", mock.Anything, "test@example.com", mock.Anything, uint64(42)).
		Return(testPassenger(), nil)
	f.resRepo.On("GetByID", mock.Anything, uint64(11)).Return(foreign, nil)

	c, rec := authedContext(t, http.MethodDelete, "/v1/reservations/11", "")
	c.SetParamNames("id")
	c.SetParamValues("11")

	require.NoError(t, f.handler.Delete(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	f.engine.AssertNotCalled(t, "CancelAndRelease", mock.Anything, mock.Anything)
}

func TestBookingDelete(t *testing.T) {
	f := newBookingFixture()
	owned := &model.Reservation{ID: 11, PassengerID: 9, Status: model.ReservationConfirmed}
	f.passengers.On("GetOrCreateByEmail", mock.Anything, "test@example.com", mock.Anything, uint64(42)).
		Return(testPassenger(), nil)
	f.resRepo.On("GetByID", mock.Anything, uint64(11)).Return(owned, nil)
	f.engine.On("CancelAndRelease", mock.Anything, uint64(11)).Return(nil)

	c, rec := authedContext(t, http.MethodDelete, "/v1/reservations/11", "")
	c.SetParamNames("id")
	c.SetParamValues("11")

	require.NoError(t, f.handler.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	f.engine.AssertExpectations(t)
}

func TestBookingGetByCode(t *testing.T) {
	tests := []struct {
		name           string
		code           string
		res            *model.Reservation
		err            error
		expectedStatus int
	}{
		{
			name:           "owned",
			code:           "AB12CD34",
			res:            &model.Reservation{ID: 5, PassengerID: 9, Code: "AB12CD34"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "someone else's code",
			code:           "XX11YY22",
			res:            &model.Reservation{ID: 6, PassengerID: 77, Code: "XX11YY22"},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "unknown code",
			code:           "NOPENOPE",
			err:            repository.ErrReservationNotFound,
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture()
			f.passengers.On("GetOrCreateByEmail", mock.Anything, "test@example.com", mock.Anything, uint64(42)).
				Return(testPassenger(), nil)
			f.resRepo.On("GetByCode", mock.Anything, tt.code).Return(tt.res, tt.err)

			c, rec := authedContext(t, http.MethodGet, "/v1/reservations/"+tt.code, "")
			c.SetParamNames("code")
			c.SetParamValues(tt.code)

			require.NoError(t, f.handler.GetByCode(c))
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestBookingIssueTicket(t *testing.T) {
	f := newBookingFixture()
	owned := &model.Reservation{ID: 11, PassengerID: 9, Status: model.ReservationConfirmed}
	f.passengers.On("GetOrCreateByEmail", mock.Anything, "test@example.com", mock.Anything, uint64(42)).
		Return(testPassenger(), nil)
	f.resRepo.On("GetByID", mock.Anything, uint64(11)).Return(owned, nil)
	f.engine.On("IssueTicket", mock.Anything, uint64(11)).
		Return(&model.Ticket{ID: 1, ReservationID: 11, Barcode: "TKT-AAAABBBBCCCC", Status: model.TicketIssued}, nil)

	c, rec := authedContext(t, http.MethodPost, "/v1/reservations/11/ticket", "")
	c.SetParamNames("id")
	c.SetParamValues("11")

	require.NoError(t, f.handler.IssueTicket(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp ticketResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "TKT-AAAABBBBCCCC", resp.Barcode)
}

func TestBookingIssueTicketTwice(t *testing.T) {
	f := newBookingFixture()
	owned := &model.Reservation{ID: 11, PassengerID: 9, Status: model.ReservationConfirmed}
	f.passengers.On("GetOrCreateByEmail", mock.Anything, "test@example.com", mock.Anything, uint64(42)).
		Return(testPassenger(), nil)
	f.resRepo.On("GetByID", mock.Anything, uint64(11)).Return(owned, nil)
	f.engine.On("IssueTicket", mock.Anything, uint64(11)).Return(nil, repository.ErrTicketExists)

	c, rec := authedContext(t, http.MethodPost, "/v1/reservations/11/ticket", "")
	c.SetParamNames("id")
	c.SetParamValues("11")

	require.NoError(t, f.handler.IssueTicket(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
