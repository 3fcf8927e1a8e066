package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() TicketIssuedEvent {
	return TicketIssuedEvent{
		EventID:         "evt-1",
		ReservationID:   11,
		ReservationCode: "AB12CD34",
		Barcode:         "TKT-AAAABBBBCCCC",
		PassengerName:   "Ada Lovelace",
		PassengerEmail:  "ada@example.com",
		Origin:          "Buenos Aires",
		Destination:     "Madrid",
		DepartureTime:   "2026-09-01T10:00:00Z",
		SeatNumber:      "12C",
		SeatType:        "premium",
		PriceCents:      15000,
		IssuedAt:        "2026-08-28T09:30:00Z",
	}
}

func TestHandleMessageWritesArtifact(t *testing.T) {
	dir := t.TempDir()
	body, err := json.Marshal(sampleEvent())
	require.NoError(t, err)

	require.NoError(t, handleMessage(body, dir))

	data, err := os.ReadFile(filepath.Join(dir, "TKT-AAAABBBBCCCC.txt"))
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Ada Lovelace")
	assert.Contains(t, text, "AB12CD34")
	assert.Contains(t, text, "Buenos Aires -> Madrid")
	assert.Contains(t, text, "12C (premium)")
	assert.Contains(t, text, "150.00")
	assert.Contains(t, text, "TKT-AAAABBBBCCCC")
}

func TestHandleMessageRejectsBadPayloads(t *testing.T) {
	dir := t.TempDir()

	assert.Error(t, handleMessage([]byte("not json"), dir))

	// A decodable event without a barcode has nowhere to be written.
	noBarcode, err := json.Marshal(TicketIssuedEvent{ReservationCode: "AB12CD34"})
	require.NoError(t, err)
	assert.Error(t, handleMessage(noBarcode, dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRenderTicketFormatsPrice(t *testing.T) {
	ev := sampleEvent()
	ev.PriceCents = 9999
	assert.Contains(t, renderTicket(ev), "99.99")
}
