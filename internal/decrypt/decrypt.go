// Package decrypt applies substitution mappings to text.
package decrypt

import (
	"strings"

	"github.com/verte-zerg/subcrack/internal/freq"
	"github.com/verte-zerg/subcrack/internal/mapping"
)

// Placeholder is emitted for letters the mapping does not cover.
const Placeholder = '?'

// Decrypt merges overrides onto m (later entries win) and substitutes every
// letter of ciphertext. Case is preserved, unmapped letters become
// Placeholder and all other characters pass through unchanged.
func Decrypt(ciphertext string, m mapping.Mapping, overrides ...mapping.Mapping) string {
	merged := m
	if len(overrides) > 0 {
		merged = mapping.Merge(m, overrides...)
	}
	return Apply(ciphertext, merged)
}

// Encrypt substitutes plaintext with a key mapping plain letters to cipher
// letters. It is Apply under another name, kept for readability at call sites.
func Encrypt(plaintext string, key mapping.Mapping) string {
	return Apply(plaintext, key)
}

// Apply runs the case-preserving substitution with a single mapping. Only
// ASCII letters are substituted, so the text is walked byte by byte and every
// other byte, including invalid UTF-8, is copied as is.
func Apply(text string, m mapping.Mapping) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		r := rune(text[i])
		if !freq.IsLetter(r) {
			b.WriteByte(text[i])
			continue
		}
		out, ok := m.Lookup(r)
		if !ok {
			b.WriteRune(Placeholder)
			continue
		}
		if freq.IsUpper(r) {
			out = freq.ToUpper(out)
		}
		b.WriteRune(out)
	}
	return b.String()
}
