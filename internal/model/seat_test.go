package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		col  uint32
		want string
	}{
		{1, "A"},
		{2, "B"},
		{6, "F"},
		{26, "Z"},
		{0, ""},
		{27, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ColumnLetter(tt.col), "col %d", tt.col)
	}
}

func TestSeatLabel(t *testing.T) {
	assert.Equal(t, "1A", SeatLabel(1, 1))
	assert.Equal(t, "12C", SeatLabel(12, 3))
	assert.Equal(t, "30F", SeatLabel(30, 6))
}

func TestBuildLayout(t *testing.T) {
	plane := Airplane{ID: 7, Capacity: 180, Rows: 30, Cols: 6}
	seats := BuildLayout(plane, SeatEconomy)
	require.Len(t, seats, 180)

	// First and last seats pin the row-major ordering.
	assert.Equal(t, "1A", seats[0].Number)
	assert.Equal(t, uint32(1), seats[0].Row)
	assert.Equal(t, uint32(1), seats[0].Col)
	assert.Equal(t, "30F", seats[179].Number)
	assert.Equal(t, uint32(30), seats[179].Row)
	assert.Equal(t, uint32(6), seats[179].Col)

	numbers := make(map[string]bool, len(seats))
	for _, s := range seats {
		assert.Equal(t, uint64(7), s.AirplaneID)
		assert.Equal(t, SeatEconomy, s.Type)
		assert.Equal(t, SeatAvailable, s.Status)
		assert.False(t, numbers[s.Number], "duplicate seat number %s", s.Number)
		numbers[s.Number] = true
	}
}

func TestBuildLayoutSingleRow(t *testing.T) {
	seats := BuildLayout(Airplane{ID: 1, Rows: 1, Cols: 4}, SeatBusiness)
	require.Len(t, seats, 4)
	assert.Equal(t, []string{"1A", "1B", "1C", "1D"},
		[]string{seats[0].Number, seats[1].Number, seats[2].Number, seats[3].Number})
	assert.Equal(t, SeatBusiness, seats[0].Type)
}

func TestPriceFor(t *testing.T) {
	tests := []struct {
		seatType string
		base     int64
		want     int64
	}{
		{SeatEconomy, 10000, 10000},
		{SeatPremium, 10000, 15000},
		{SeatBusiness, 10000, 20000},
		{SeatPremium, 9999, 14998}, // integer cents, floor
		{"unknown", 10000, 10000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PriceFor(tt.base, tt.seatType), "%s seat", tt.seatType)
	}
}

func TestValidSeatType(t *testing.T) {
	assert.True(t, ValidSeatType(SeatEconomy))
	assert.True(t, ValidSeatType(SeatPremium))
	assert.True(t, ValidSeatType(SeatBusiness))
	assert.False(t, ValidSeatType("first"))
	assert.False(t, ValidSeatType(""))
}
