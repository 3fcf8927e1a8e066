package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlightTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		allowed  bool
	}{
		{FlightScheduled, FlightInFlight, true},
		{FlightScheduled, FlightCanceled, true},
		{FlightScheduled, FlightCompleted, false},
		{FlightInFlight, FlightCompleted, true},
		{FlightInFlight, FlightCanceled, false},
		{FlightInFlight, FlightScheduled, false},
		{FlightCompleted, FlightScheduled, false},
		{FlightCompleted, FlightCanceled, false},
		{FlightCanceled, FlightScheduled, false},
		{FlightCanceled, FlightInFlight, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, CanFlightTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestFlightTransitionTargets(t *testing.T) {
	assert.ElementsMatch(t, []string{FlightInFlight, FlightCanceled},
		FlightTransitionTargets(FlightScheduled))
	assert.Empty(t, FlightTransitionTargets(FlightCompleted))
	assert.Empty(t, FlightTransitionTargets(FlightCanceled))
	assert.Empty(t, FlightTransitionTargets("bogus"))
}

func TestValidFlightStatus(t *testing.T) {
	for _, s := range []string{FlightScheduled, FlightInFlight, FlightCompleted, FlightCanceled} {
		assert.True(t, ValidFlightStatus(s), s)
	}
	assert.False(t, ValidFlightStatus("boarding"))
}

func TestReservationTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		allowed  bool
	}{
		{ReservationPending, ReservationConfirmed, true},
		{ReservationPending, ReservationCanceled, true},
		{ReservationConfirmed, ReservationCanceled, true},
		{ReservationConfirmed, ReservationPending, false},
		{ReservationCanceled, ReservationPending, false},
		{ReservationCanceled, ReservationConfirmed, false},
		{ReservationPending, ReservationPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, CanReservationTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestReservationTransitionTargets(t *testing.T) {
	assert.ElementsMatch(t, []string{ReservationConfirmed, ReservationCanceled},
		ReservationTransitionTargets(ReservationPending))
	assert.Equal(t, []string{ReservationCanceled},
		ReservationTransitionTargets(ReservationConfirmed))
	assert.Empty(t, ReservationTransitionTargets(ReservationCanceled))
}

func TestValidDocumentType(t *testing.T) {
	assert.True(t, ValidDocumentType(DocumentDNI))
	assert.True(t, ValidDocumentType(DocumentPassport))
	assert.True(t, ValidDocumentType(DocumentOther))
	assert.False(t, ValidDocumentType("dni"))
}
