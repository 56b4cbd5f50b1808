package handler

import (
	"strings"

	dErrors "cepbook/pkg/domain-errors"
)

// EditFieldRequest carries one field change. The value is taken verbatim;
// canonicalization is the form's concern.
type EditFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (r *EditFieldRequest) Normalize() {
	if r == nil {
		return
	}
	r.Field = strings.ToLower(strings.TrimSpace(r.Field))
}

func (r *EditFieldRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Field == "" {
		return dErrors.New(dErrors.CodeValidation, "field is required")
	}
	return nil
}
