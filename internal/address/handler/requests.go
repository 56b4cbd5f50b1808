package handler

import (
	"strings"

	"cepbook/internal/address/service"
	"cepbook/internal/address/validate"
	dErrors "cepbook/pkg/domain-errors"
)

// HTTP Request DTOs - contain JSON tags for API serialization.
// Field names follow the export contract shared with the original client
// (cep, uf) rather than the internal names.

type CreateRecordRequest struct {
	Name       string `json:"name"`
	PostalCode string `json:"cep"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	City       string `json:"city"`
	StateCode  string `json:"uf"`
	Complement string `json:"complement"`
}

func (r *CreateRecordRequest) Normalize() {
	if r == nil {
		return
	}
	r.Name = strings.TrimSpace(r.Name)
	r.PostalCode = validate.FormatPostalCode(r.PostalCode)
	r.Street = strings.TrimSpace(r.Street)
	r.Number = strings.TrimSpace(r.Number)
	r.City = strings.TrimSpace(r.City)
	r.StateCode = strings.ToUpper(strings.TrimSpace(r.StateCode))
	r.Complement = strings.TrimSpace(r.Complement)
}

func (r *CreateRecordRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.PostalCode == "" {
		return dErrors.New(dErrors.CodeValidation, "cep is required")
	}
	// Per-field rules run in the service so API and session submissions
	// share one validation path.
	return nil
}

func (r *CreateRecordRequest) Command() service.CreateRecordCommand {
	return service.CreateRecordCommand{
		Name:       r.Name,
		PostalCode: r.PostalCode,
		Street:     r.Street,
		Number:     r.Number,
		City:       r.City,
		StateCode:  r.StateCode,
		Complement: r.Complement,
	}
}
