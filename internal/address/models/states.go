package models

import "strings"

// stateCodes is the closed set of the 27 Brazilian federative unit (UF)
// abbreviations.
var stateCodes = map[string]struct{}{
	"AC": {}, "AL": {}, "AP": {}, "AM": {}, "BA": {}, "CE": {}, "DF": {},
	"ES": {}, "GO": {}, "MA": {}, "MT": {}, "MS": {}, "MG": {}, "PA": {},
	"PB": {}, "PR": {}, "PE": {}, "PI": {}, "RJ": {}, "RN": {}, "RS": {},
	"RO": {}, "RR": {}, "SC": {}, "SP": {}, "SE": {}, "TO": {},
}

// IsStateCode reports whether s is a valid UF abbreviation, ignoring case.
func IsStateCode(s string) bool {
	_, ok := stateCodes[strings.ToUpper(s)]
	return ok
}
