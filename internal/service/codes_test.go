package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReservationCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := NewReservationCode()
		require.NoError(t, err)
		assert.Len(t, code, 8)
		for _, ch := range code {
			assert.Contains(t, codeAlphabet, string(ch))
		}
		seen[code] = true
	}
	// 100 draws from a 36^8 space colliding would mean a broken RNG.
	assert.Len(t, seen, 100)
}

func TestNewBarcode(t *testing.T) {
	barcode, err := NewBarcode()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(barcode, "TKT-"))
	assert.Len(t, barcode, 16)
	for _, ch := range strings.TrimPrefix(barcode, "TKT-") {
		assert.Contains(t, codeAlphabet, string(ch))
	}
}

func TestValidationError(t *testing.T) {
	err := Validationf("seat %s not available", "12C")
	assert.EqualError(t, err, "seat 12C not available")
	assert.True(t, IsValidation(err))
	assert.False(t, IsValidation(assert.AnError))
	assert.False(t, IsValidation(nil))
}
