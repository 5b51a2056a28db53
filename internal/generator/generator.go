// Package generator builds random substitution keys for practice ciphertexts.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/subcrack/internal/decrypt"
	"github.com/verte-zerg/subcrack/internal/mapping"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Generator produces random substitution keys.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed for reproducible keys.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Key returns a random permutation of the alphabet as a plain-to-cipher
// mapping. No letter maps to itself.
func (g *Generator) Key() mapping.Mapping {
	letters := []rune(alphabet)
	for {
		g.rnd.Shuffle(len(letters), func(i, j int) {
			letters[i], letters[j] = letters[j], letters[i]
		})
		if !hasFixedPoint(letters) {
			break
		}
	}
	key := make(mapping.Mapping, len(letters))
	for i, plain := range alphabet {
		key[plain] = letters[i]
	}
	return key
}

// Encrypt generates a fresh key and enciphers plaintext with it. The returned
// key maps plaintext letters to cipher letters.
func (g *Generator) Encrypt(plaintext string) (string, mapping.Mapping) {
	key := g.Key()
	return decrypt.Encrypt(plaintext, key), key
}

func hasFixedPoint(letters []rune) bool {
	for i, r := range alphabet {
		if letters[i] == r {
			return true
		}
	}
	return false
}
