// Package mapping builds and combines substitution mappings.
package mapping

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/subcrack/internal/freq"
)

const alphabetSize = 26

// Mapping maps a lowercase cipher letter to a lowercase plaintext letter.
// It may be partial.
type Mapping map[rune]rune

// Pair records one rank-to-rank assignment made by Build.
type Pair struct {
	Cipher    rune
	Plain     rune
	CipherPct float64
	PlainPct  float64
}

// Build pairs the i-th most frequent observed letter with the i-th most
// frequent reference letter.
func Build(observed, reference freq.Table) (Mapping, []Pair) {
	obs := freq.Ranked(observed)
	ref := freq.Ranked(reference)
	n := len(obs)
	if len(ref) < n {
		n = len(ref)
	}
	if n > alphabetSize {
		n = alphabetSize
	}
	m := make(Mapping, n)
	pairs := make([]Pair, 0, n)
	for i := 0; i < n; i++ {
		m[obs[i].Letter] = ref[i].Letter
		pairs = append(pairs, Pair{
			Cipher:    obs[i].Letter,
			Plain:     ref[i].Letter,
			CipherPct: obs[i].Percent,
			PlainPct:  ref[i].Percent,
		})
	}
	return m, pairs
}

// Merge returns a new mapping with overrides applied over base in order.
// Later overrides win on key collision. Inputs are not modified.
func Merge(base Mapping, overrides ...Mapping) Mapping {
	size := len(base)
	for _, o := range overrides {
		size += len(o)
	}
	out := make(Mapping, size)
	for k, v := range base {
		out[k] = v
	}
	for _, o := range overrides {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// Clone returns an independent copy of the mapping.
func (m Mapping) Clone() Mapping {
	return Merge(m)
}

// Lookup returns the plaintext letter for a cipher letter of either case.
func (m Mapping) Lookup(r rune) (rune, bool) {
	v, ok := m[freq.ToLower(r)]
	return v, ok
}

// Invert swaps keys and values. When several cipher letters share a target,
// the alphabetically first cipher letter wins.
func (m Mapping) Invert() Mapping {
	out := make(Mapping, len(m))
	for _, k := range m.keys() {
		v := m[k]
		if _, ok := out[v]; ok {
			continue
		}
		out[v] = k
	}
	return out
}

// Conflicts returns plaintext letters targeted by more than one cipher
// letter, each with its sorted cipher letters.
func (m Mapping) Conflicts() map[rune][]rune {
	byPlain := map[rune][]rune{}
	for _, k := range m.keys() {
		byPlain[m[k]] = append(byPlain[m[k]], k)
	}
	out := map[rune][]rune{}
	for plain, ciphers := range byPlain {
		if len(ciphers) > 1 {
			out[plain] = ciphers
		}
	}
	return out
}

// String renders the mapping as "a=b,c=d" sorted by cipher letter, the same
// form Parse accepts.
func (m Mapping) String() string {
	parts := make([]string, 0, len(m))
	for _, k := range m.keys() {
		parts = append(parts, string(k)+"="+string(m[k]))
	}
	return strings.Join(parts, ",")
}

func (m Mapping) keys() []rune {
	keys := make([]rune, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Parse reads a mapping from "x=t,i=h" form. Pairs may also use ':' and be
// separated by whitespace. Letters are folded to lowercase.
func Parse(s string) (Mapping, error) {
	m := Mapping{}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	for _, field := range fields {
		cipher, plain, ok := splitPair(field)
		if !ok {
			return nil, fmt.Errorf("invalid mapping pair %q (want cipher=plain)", field)
		}
		if err := m.Set(cipher, plain); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// FromStrings builds a mapping from single-letter string pairs, the shape the
// TOML config decodes into. Keys are applied in sorted order, and two keys
// that differ only in case are rejected.
func FromStrings(pairs map[string]string) (Mapping, error) {
	ciphers := make([]string, 0, len(pairs))
	for cipher := range pairs {
		ciphers = append(ciphers, cipher)
	}
	sort.Strings(ciphers)

	m := Mapping{}
	seen := map[rune]string{}
	for _, cipher := range ciphers {
		plain := pairs[cipher]
		c := []rune(cipher)
		p := []rune(plain)
		if len(c) != 1 || len(p) != 1 {
			return nil, fmt.Errorf("invalid mapping pair %q=%q (want single letters)", cipher, plain)
		}
		if prev, ok := seen[freq.ToLower(c[0])]; ok {
			return nil, fmt.Errorf("mapping keys %q and %q name the same letter", prev, cipher)
		}
		if err := m.Set(c[0], p[0]); err != nil {
			return nil, err
		}
		seen[freq.ToLower(c[0])] = cipher
	}
	return m, nil
}

// Set assigns cipher to plain after validating and lowercasing both.
func (m Mapping) Set(cipher, plain rune) error {
	if !freq.IsLetter(cipher) || !freq.IsLetter(plain) {
		return fmt.Errorf("mapping %q=%q must use letters a-z", cipher, plain)
	}
	m[freq.ToLower(cipher)] = freq.ToLower(plain)
	return nil
}

func splitPair(field string) (rune, rune, bool) {
	idx := strings.IndexAny(field, "=:")
	if idx < 0 {
		return 0, 0, false
	}
	left := []rune(strings.TrimSpace(field[:idx]))
	right := []rune(strings.TrimSpace(field[idx+1:]))
	if len(left) != 1 || len(right) != 1 {
		return 0, 0, false
	}
	return left[0], right[0], true
}
