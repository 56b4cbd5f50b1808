package service

import (
	"strings"

	"cepbook/internal/address/models"
	"cepbook/internal/address/validate"
	dErrors "cepbook/pkg/domain-errors"
)

// CreateRecordCommand carries the caller-supplied record fields.
type CreateRecordCommand struct {
	Name       string
	PostalCode string
	Street     string
	Number     string
	City       string
	StateCode  string
	Complement string
}

// Canonicalize trims whitespace, rewrites the postal code into its canonical
// hyphenated form and uppercases the state code.
func (c *CreateRecordCommand) Canonicalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.PostalCode = validate.FormatPostalCode(c.PostalCode)
	c.Street = strings.TrimSpace(c.Street)
	c.Number = strings.TrimSpace(c.Number)
	c.City = strings.TrimSpace(c.City)
	c.StateCode = strings.ToUpper(strings.TrimSpace(c.StateCode))
	c.Complement = strings.TrimSpace(c.Complement)
}

// Validate checks every field and reports all failures at once.
func (c CreateRecordCommand) Validate() error {
	var invalid []string
	if !validate.Name(c.Name) {
		invalid = append(invalid, "name")
	}
	if !validate.PostalCode(c.PostalCode) {
		invalid = append(invalid, "cep")
	}
	if !validate.Street(c.Street) {
		invalid = append(invalid, "street")
	}
	if !validate.Number(c.Number) {
		invalid = append(invalid, "number")
	}
	if !validate.City(c.City) {
		invalid = append(invalid, "city")
	}
	if !validate.StateCode(c.StateCode) {
		invalid = append(invalid, "uf")
	}
	if len(invalid) > 0 {
		return dErrors.New(dErrors.CodeValidation, "invalid fields: "+strings.Join(invalid, ", "))
	}
	return nil
}

// Fields converts the command into the model's field set.
func (c CreateRecordCommand) Fields() models.RecordFields {
	return models.RecordFields{
		Name:       c.Name,
		PostalCode: c.PostalCode,
		Street:     c.Street,
		Number:     c.Number,
		City:       c.City,
		StateCode:  c.StateCode,
		Complement: c.Complement,
	}
}
