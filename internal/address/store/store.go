// Package store persists the address-record collection. Implementations share
// the same contract: Create never overwrites, GetByID reports absence with
// sentinel.ErrNotFound, and SearchByName matches case- and
// diacritic-insensitively.
package store

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"cepbook/internal/address/models"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeText lowercases s and strips combining diacritical marks, so
// "José" and "jose" compare equal.
func NormalizeText(s string) string {
	out, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		// A failed transform leaves the lowercased input; matching then
		// degrades to accent-sensitive rather than breaking search.
		return strings.ToLower(s)
	}
	return out
}

// matchByName applies the normalized substring filter shared by the in-memory
// and file-backed stores.
func matchByName(records []models.AddressRecord, query string) []models.AddressRecord {
	needle := NormalizeText(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}
	var out []models.AddressRecord
	for _, r := range records {
		if strings.Contains(NormalizeText(r.Name), needle) {
			out = append(out, r)
		}
	}
	return out
}
