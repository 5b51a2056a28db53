// Package freq contains letter frequency tables and ciphertext analysis.
package freq

import (
	"fmt"
	"strings"
)

// Table maps a lowercase letter to its relative frequency in percent.
type Table map[rune]float64

// Reference table names accepted by Reference.
const (
	RefEnglish   = "english"
	RefPractical = "practical"
)

var english = Table{
	'a': 8.05, 'b': 1.67, 'c': 2.23, 'd': 5.10, 'e': 12.22,
	'f': 2.14, 'g': 2.30, 'h': 6.62, 'i': 6.28, 'j': 0.19,
	'k': 0.95, 'l': 4.08, 'm': 2.33, 'n': 6.95, 'o': 7.63,
	'p': 1.66, 'q': 0.06, 'r': 5.29, 's': 6.02, 't': 9.67,
	'u': 2.92, 'v': 0.82, 'w': 2.60, 'x': 0.11, 'y': 2.04,
	'z': 0.06,
}

// http://practicalcryptography.com/cryptanalysis/letter-frequencies-various-languages/english-letter-frequencies/
var practical = Table{
	'a': 8.55, 'b': 1.60, 'c': 3.16, 'd': 3.87, 'e': 12.10,
	'f': 2.18, 'g': 2.09, 'h': 4.96, 'i': 7.33, 'j': 0.22,
	'k': 0.81, 'l': 4.21, 'm': 2.53, 'n': 7.17, 'o': 7.47,
	'p': 2.07, 'q': 0.10, 'r': 6.33, 's': 6.73, 't': 8.94,
	'u': 2.68, 'v': 1.06, 'w': 1.83, 'x': 0.19, 'y': 1.72,
	'z': 0.11,
}

// English returns a copy of the default English reference table.
func English() Table {
	return english.Clone()
}

// Practical returns a copy of the practicalcryptography.com English table.
func Practical() Table {
	return practical.Clone()
}

// Reference resolves a reference table by name. An empty name selects English.
func Reference(name string) (Table, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", RefEnglish:
		return English(), nil
	case RefPractical:
		return Practical(), nil
	default:
		return nil, fmt.Errorf("unknown reference table %q (available: %s, %s)", name, RefEnglish, RefPractical)
	}
}

// Clone returns an independent copy of the table.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Get returns the percentage for a letter, treating missing letters as 0%.
func (t Table) Get(r rune) float64 {
	return t[ToLower(r)]
}
