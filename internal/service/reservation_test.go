package service

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ValenCardozo/volando-ando/internal/model"
	"github.com/ValenCardozo/volando-ando/internal/repository"
)

func newEngine(t *testing.T) (*ReservationService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := NewReservationService(db,
		repository.NewFlightRepo(db),
		repository.NewSeatRepo(db),
		repository.NewPassengerRepo(db),
		repository.NewReservationRepo(db),
		repository.NewTicketRepo(db),
		nil)
	return svc, mock
}

func reservationRow(id uint64, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "flight_id", "passenger_id", "seat_id", "status",
		"reservation_date", "price_cents", "reservation_code",
	}).AddRow(id, 1, 2, 7, status, time.Now(), 10000, "AB12CD34")
}

func flightRow(status string, airplaneID uint64) *sqlmock.Rows {
	dep := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "airplane_id", "origin", "destination", "departure_time",
		"arrival_time", "duration_min", "status", "base_price_cents",
	}).AddRow(1, airplaneID, "EZE", "MAD", dep, dep.Add(12*time.Hour), 720, status, 10000)
}

func seatRow(id, airplaneID uint64, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "airplane_id", "number", "seat_row", "seat_col", "seat_type", "status",
	}).AddRow(id, airplaneID, "2A", 2, 1, model.SeatEconomy, status)
}

// lockedReservationRead matches only the FOR UPDATE variant used
// inside mutation transactions.
const lockedReservationRead = `FROM reservations WHERE id = \? FOR UPDATE`

func expectCreatePreamble(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`FROM reservations WHERE flight_id = \? AND passenger_id = \?`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM reservations WHERE reservation_code = ?`)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
}

func TestCreateReservationRejectsNonScheduledFlight(t *testing.T) {
	svc, mock := newEngine(t)
	expectCreatePreamble(mock)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM flights WHERE id = \?`).
		WillReturnRows(flightRow(model.FlightCanceled, 1))
	mock.ExpectRollback()

	_, err := svc.CreateReservation(context.Background(), 1, 2, 7)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationRejectsSeatOnOtherAirplane(t *testing.T) {
	svc, mock := newEngine(t)
	expectCreatePreamble(mock)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM flights WHERE id = \?`).
		WillReturnRows(flightRow(model.FlightScheduled, 1))
	mock.ExpectQuery(`FROM seats WHERE id = \?`).
		WillReturnRows(seatRow(7, 2, model.SeatAvailable))
	mock.ExpectRollback()

	_, err := svc.CreateReservation(context.Background(), 1, 2, 7)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationLosesSeatClaimRace(t *testing.T) {
	svc, mock := newEngine(t)
	expectCreatePreamble(mock)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM flights WHERE id = \?`).
		WillReturnRows(flightRow(model.FlightScheduled, 1))
	mock.ExpectQuery(`FROM seats WHERE id = \?`).
		WillReturnRows(seatRow(7, 1, model.SeatAvailable))
	// Another booking flips the seat first: zero rows affected.
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE seats SET status = ? WHERE id = ? AND status = ?`)).
		WithArgs(model.SeatReserved, 7, model.SeatAvailable).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.CreateReservation(context.Background(), 1, 2, 7)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeStatusConfirmOccupiesSeat(t *testing.T) {
	svc, mock := newEngine(t)
	mock.ExpectBegin()
	mock.ExpectQuery(lockedReservationRead).
		WillReturnRows(reservationRow(5, model.ReservationPending))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE reservations SET status = ? WHERE id = ?`)).
		WithArgs(model.ReservationConfirmed, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE seats SET status = ? WHERE id = ?`)).
		WithArgs(model.SeatOccupied, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.ChangeStatus(context.Background(), 5, model.ReservationConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationConfirmed, res.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeStatusCancelFreesSeatAndTicket(t *testing.T) {
	svc, mock := newEngine(t)
	mock.ExpectBegin()
	mock.ExpectQuery(lockedReservationRead).
		WillReturnRows(reservationRow(5, model.ReservationConfirmed))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE reservations SET status = ? WHERE id = ?`)).
		WithArgs(model.ReservationCanceled, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE seats SET status = ? WHERE id = ?`)).
		WithArgs(model.SeatAvailable, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tickets SET status = ? WHERE reservation_id = ? AND status = ?`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.ChangeStatus(context.Background(), 5, model.ReservationCanceled)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCanceled, res.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeStatusRejectsLeavingTerminalState(t *testing.T) {
	svc, mock := newEngine(t)
	mock.ExpectBegin()
	mock.ExpectQuery(lockedReservationRead).
		WillReturnRows(reservationRow(5, model.ReservationCanceled))
	mock.ExpectRollback()

	_, err := svc.ChangeStatus(context.Background(), 5, model.ReservationConfirmed)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelAndReleaseFreesLiveSeat(t *testing.T) {
	svc, mock := newEngine(t)
	mock.ExpectBegin()
	mock.ExpectQuery(lockedReservationRead).
		WillReturnRows(reservationRow(5, model.ReservationPending))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tickets SET status = ? WHERE reservation_id = ? AND status = ?`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE seats SET status = ? WHERE id = ?`)).
		WithArgs(model.SeatAvailable, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM reservations WHERE id = ?`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.CancelAndRelease(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Deleting an already-canceled reservation must leave the seat alone:
// it was freed at cancellation time and may be booked by someone else
// now.  The ordered expectations fail if a seat update sneaks in
// between the ticket flip and the delete.
func TestCancelAndReleaseKeepsSeatOfCanceledReservation(t *testing.T) {
	svc, mock := newEngine(t)
	mock.ExpectBegin()
	mock.ExpectQuery(lockedReservationRead).
		WillReturnRows(reservationRow(5, model.ReservationCanceled))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tickets SET status = ? WHERE reservation_id = ? AND status = ?`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM reservations WHERE id = ?`)).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.CancelAndRelease(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A reservation canceled between the advisory pre-checks and the
// insert transaction must not receive a ticket; the locked re-read
// inside the transaction catches it.
func TestIssueTicketRechecksStatusUnderLock(t *testing.T) {
	svc, mock := newEngine(t)
	mock.ExpectQuery(`FROM reservations WHERE id = \?`).
		WillReturnRows(reservationRow(5, model.ReservationConfirmed))
	mock.ExpectQuery(`FROM tickets WHERE reservation_id = \?`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM tickets WHERE barcode = ?`)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectQuery(lockedReservationRead).
		WillReturnRows(reservationRow(5, model.ReservationCanceled))
	mock.ExpectRollback()

	_, err := svc.IssueTicket(context.Background(), 5)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
