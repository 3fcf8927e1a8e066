package service

import (
	"crypto/rand"
	"fmt"
)

// codeAlphabet is the character set for reservation codes and ticket
// barcodes: uppercase letters and digits only, so codes survive being
// read over the phone or printed in monospace.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const (
	reservationCodeLen = 8
	barcodeSuffixLen   = 12
	barcodePrefix      = "TKT-"
)

// randomCode returns n characters drawn from codeAlphabet using
// crypto/rand.  The modulo bias over a 36-character alphabet is
// irrelevant for uniqueness purposes; the DB unique key is the final
// guard anyway.
func randomCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}

// NewReservationCode generates an 8-character public reservation code.
func NewReservationCode() (string, error) {
	return randomCode(reservationCodeLen)
}

// NewBarcode generates a ticket barcode of the form
// "TKT-XXXXXXXXXXXX" (12 uppercase alphanumerics after the prefix).
func NewBarcode() (string, error) {
	s, err := randomCode(barcodeSuffixLen)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s", barcodePrefix, s), nil
}
