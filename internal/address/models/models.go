package models

import (
	"time"

	id "cepbook/pkg/domain"
	dErrors "cepbook/pkg/domain-errors"
)

// AddressRecord is the persisted entity: a person's name plus a Brazilian
// postal address. Records are immutable after creation; the only mutations
// the store supports are insertion and deletion.
type AddressRecord struct {
	ID         id.RecordID
	Name       string
	PostalCode string
	Street     string
	Number     string
	City       string
	StateCode  string
	Complement string
	CreatedAt  time.Time
}

// RecordFields carries the caller-supplied fields of a record, without the
// store-assigned ID and creation timestamp.
type RecordFields struct {
	Name       string
	PostalCode string
	Street     string
	Number     string
	City       string
	StateCode  string
	Complement string
}

// NewAddressRecord assembles a record from validated fields. It assumes the
// caller has already run field validation; only structural invariants are
// enforced here.
func NewAddressRecord(recordID id.RecordID, fields RecordFields, now time.Time) (*AddressRecord, error) {
	if recordID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "record ID is required")
	}
	if fields.Name == "" || fields.PostalCode == "" || fields.Street == "" ||
		fields.Number == "" || fields.City == "" || fields.StateCode == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "all required fields must be populated")
	}
	return &AddressRecord{
		ID:         recordID,
		Name:       fields.Name,
		PostalCode: fields.PostalCode,
		Street:     fields.Street,
		Number:     fields.Number,
		City:       fields.City,
		StateCode:  fields.StateCode,
		Complement: fields.Complement,
		CreatedAt:  now,
	}, nil
}

// Address is a resolved postal address as returned by the lookup collaborator.
type Address struct {
	PostalCode string
	Street     string
	City       string
	StateCode  string
	Complement string
}
