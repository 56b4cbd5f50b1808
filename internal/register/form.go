// Package register drives the record registration workflow: a form whose
// address fields are filled from a postal-code lookup when possible and by
// hand when not.
package register

import (
	"errors"

	"cepbook/internal/address/models"
	"cepbook/internal/address/service"
	"cepbook/internal/address/validate"
	"cepbook/internal/sentinel"
	dErrors "cepbook/pkg/domain-errors"
)

// State is the explicit lifecycle of the form's address section.
type State int

const (
	// StateEmpty is a pristine form.
	StateEmpty State = iota
	// StatePartial has input but no complete postal code yet.
	StatePartial
	// StateLookupPending has a complete postal code with its lookup in flight.
	StateLookupPending
	// StateLookupResolved has the address populated and locked from a lookup.
	StateLookupResolved
	// StateLookupFailed leaves the address fields open for manual entry.
	StateLookupFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePartial:
		return "partial"
	case StateLookupPending:
		return "lookup_pending"
	case StateLookupResolved:
		return "lookup_resolved"
	case StateLookupFailed:
		return "lookup_failed"
	default:
		return "unknown"
	}
}

// Field names the editable form fields, in the export vocabulary.
type Field string

const (
	FieldName       Field = "name"
	FieldPostalCode Field = "cep"
	FieldStreet     Field = "street"
	FieldNumber     Field = "number"
	FieldCity       Field = "city"
	FieldStateCode  Field = "uf"
	FieldComplement Field = "complement"
)

// EditResult tells the caller whether the edit completed a postal code and a
// lookup should start. Generation identifies the lookup; a result delivered
// with a stale generation is discarded.
type EditResult struct {
	LookupCode string
	Generation uint64
}

// Form holds the registration draft. It is not safe for concurrent use; the
// session layer serializes access.
type Form struct {
	name       string
	postalCode string
	street     string
	number     string
	city       string
	stateCode  string
	complement string

	state      State
	locked     bool
	advisory   string
	generation uint64
}

// NewForm starts pristine. The address fields begin locked; they open up
// only when a lookup fails or the postal code is cleared.
func NewForm() *Form {
	return &Form{state: StateEmpty, locked: true}
}

// Edit applies a single field change.
func (f *Form) Edit(field Field, value string) (EditResult, error) {
	switch field {
	case FieldPostalCode:
		return f.editPostalCode(value), nil
	case FieldName:
		f.name = value
	case FieldNumber:
		f.number = value
	case FieldComplement:
		f.complement = value
	case FieldStreet:
		if f.locked {
			return EditResult{}, dErrors.New(dErrors.CodeConflict, "street is set by the postal code lookup")
		}
		f.street = value
	case FieldCity:
		if f.locked {
			return EditResult{}, dErrors.New(dErrors.CodeConflict, "city is set by the postal code lookup")
		}
		f.city = value
	case FieldStateCode:
		if f.locked {
			return EditResult{}, dErrors.New(dErrors.CodeConflict, "state is set by the postal code lookup")
		}
		f.stateCode = value
	default:
		return EditResult{}, dErrors.New(dErrors.CodeBadRequest, "unknown field: "+string(field))
	}
	f.recomputeBaseState()
	return EditResult{}, nil
}

// editPostalCode canonicalizes the new value and applies the transition
// rules: a changed code invalidates any lookup in flight and clears the
// fields derived from the previous code.
func (f *Form) editPostalCode(value string) EditResult {
	formatted := validate.FormatPostalCode(value)
	if formatted == f.postalCode {
		return EditResult{}
	}

	f.generation++
	f.advisory = ""
	if f.hasDerivedFields() {
		f.street = ""
		f.city = ""
		f.stateCode = ""
		f.complement = ""
	}
	f.postalCode = formatted

	if formatted == "" {
		f.locked = false
		f.settleBaseState()
		return EditResult{}
	}

	f.locked = true
	if validate.PostalCode(formatted) {
		f.state = StateLookupPending
		return EditResult{LookupCode: validate.Digits(formatted), Generation: f.generation}
	}
	f.settleBaseState()
	return EditResult{}
}

// ApplyLookup delivers a lookup outcome. It reports false when the result
// belongs to a superseded postal code and was discarded.
func (f *Form) ApplyLookup(generation uint64, address *models.Address, lookupErr error) bool {
	if generation != f.generation || f.state != StateLookupPending {
		return false
	}

	if lookupErr != nil {
		f.state = StateLookupFailed
		f.locked = false
		if errors.Is(lookupErr, sentinel.ErrNotFound) {
			f.advisory = "no address found for this postal code, fill the address in manually"
		} else {
			f.advisory = "address lookup unavailable, fill the address in manually"
		}
		return true
	}

	f.street = address.Street
	f.city = address.City
	f.stateCode = address.StateCode
	// Keep what the user typed unless the lookup actually knows better.
	if address.Complement != "" {
		f.complement = address.Complement
	}
	f.state = StateLookupResolved
	f.locked = true
	f.advisory = ""
	return true
}

// CanSubmit reports whether every required field validates.
func (f *Form) CanSubmit() bool {
	return validate.Name(f.name) &&
		validate.PostalCode(f.postalCode) &&
		validate.Street(f.street) &&
		validate.Number(f.number) &&
		validate.City(f.city) &&
		validate.StateCode(f.stateCode)
}

// Command converts the draft into a record creation command.
func (f *Form) Command() service.CreateRecordCommand {
	return service.CreateRecordCommand{
		Name:       f.name,
		PostalCode: f.postalCode,
		Street:     f.street,
		Number:     f.number,
		City:       f.city,
		StateCode:  f.stateCode,
		Complement: f.complement,
	}
}

// Snapshot is a read-only view of the form for the API surface.
type Snapshot struct {
	State     State
	Locked    bool
	Advisory  string
	CanSubmit bool
	Values    map[Field]string
	Validity  map[Field]validate.Validity
}

func (f *Form) Snapshot() Snapshot {
	return Snapshot{
		State:     f.state,
		Locked:    f.locked,
		Advisory:  f.advisory,
		CanSubmit: f.CanSubmit(),
		Values: map[Field]string{
			FieldName:       f.name,
			FieldPostalCode: f.postalCode,
			FieldStreet:     f.street,
			FieldNumber:     f.number,
			FieldCity:       f.city,
			FieldStateCode:  f.stateCode,
			FieldComplement: f.complement,
		},
		Validity: map[Field]validate.Validity{
			FieldName:       validate.Evaluate(f.name, validate.Name),
			FieldPostalCode: validate.Evaluate(f.postalCode, validate.PostalCode),
			FieldStreet:     validate.Evaluate(f.street, validate.Street),
			FieldNumber:     validate.Evaluate(f.number, validate.Number),
			FieldCity:       validate.Evaluate(f.city, validate.City),
			FieldStateCode:  validate.Evaluate(f.stateCode, validate.StateCode),
		},
	}
}

// State exposes the current lifecycle state.
func (f *Form) State() State { return f.state }

// Locked reports whether the lookup-derived fields reject edits.
func (f *Form) Locked() bool { return f.locked }

// Generation is the identifier of the newest postal-code edit.
func (f *Form) Generation() uint64 { return f.generation }

// hasDerivedFields reports whether lookup-populated fields are present.
// Complement is not a trigger: the user may type one before the postal code,
// and that alone must not cause a clear.
func (f *Form) hasDerivedFields() bool {
	return f.street != "" || f.city != "" || f.stateCode != ""
}

// recomputeBaseState settles Empty vs Partial. Lookup states are only left
// through postal-code edits or lookup outcomes, never by editing other
// fields.
func (f *Form) recomputeBaseState() {
	if f.state == StateLookupPending || f.state == StateLookupResolved || f.state == StateLookupFailed {
		return
	}
	f.settleBaseState()
}

// settleBaseState unconditionally resolves Empty vs Partial, used when a
// postal-code edit tears down a lookup state.
func (f *Form) settleBaseState() {
	if f.name == "" && f.postalCode == "" && f.street == "" && f.number == "" &&
		f.city == "" && f.stateCode == "" && f.complement == "" {
		f.state = StateEmpty
		return
	}
	f.state = StatePartial
}
