package validate

// Validity is the tri-state evaluation of a form field. Empty fields are
// NotEvaluated rather than Invalid, so the UI can suppress error indicators
// until the user has actually entered something.
type Validity int

const (
	NotEvaluated Validity = iota
	Valid
	Invalid
)

func (v Validity) String() string {
	switch v {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "not_evaluated"
	}
}

// Evaluate maps empty input to NotEvaluated and otherwise applies the
// predicate.
func Evaluate(s string, predicate func(string) bool) Validity {
	if s == "" {
		return NotEvaluated
	}
	if predicate(s) {
		return Valid
	}
	return Invalid
}
