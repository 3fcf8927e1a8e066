package model

import "time"

// Passenger document type enumeration.
const (
	DocumentDNI      = "DNI"
	DocumentPassport = "PASSPORT"
	DocumentOther    = "OTHER"
)

// Passenger is the person a reservation is issued to.  The document
// is globally unique; the email links the passenger to exactly one
// platform user account.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – full name.
//  Document     – identity document number, unique across passengers.
//  DocumentType – document kind (DNI, PASSPORT, OTHER).
//  Email        – contact email, also the link to the platform user.
//  Phone        – contact phone, free-form.
//  BirthDate    – date of birth (UTC midnight).
type Passenger struct {
	ID           uint64    // passengers.id
	Name         string    // passengers.name
	Document     string    // passengers.document
	DocumentType string    // passengers.document_type
	Email        string    // passengers.email
	Phone        string    // passengers.phone
	BirthDate    time.Time // passengers.birth_date
}

// ValidDocumentType reports whether t is a known document type.
func ValidDocumentType(t string) bool {
	switch t {
	case DocumentDNI, DocumentPassport, DocumentOther:
		return true
	}
	return false
}
