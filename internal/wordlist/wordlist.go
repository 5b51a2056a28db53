// Package wordlist loads dictionaries used to score candidate plaintexts.
package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/verte-zerg/subcrack/internal/freq"
)

// Dictionary is a set of lowercase words.
type Dictionary map[string]struct{}

// Contains reports whether word is in the dictionary, ignoring case.
func (d Dictionary) Contains(word string) bool {
	_, ok := d[strings.ToLower(word)]
	return ok
}

// Filter returns true when a dictionary word should be kept.
type Filter func(string) bool

// FilterForLang returns the word filter for a dictionary language. Unknown
// languages get a nil filter, which keeps every word.
func FilterForLang(lang string) Filter {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "en", "english":
		return Decryptable
	default:
		return nil
	}
}

// Decryptable reports whether word could come out of a decryption: ASCII
// letters of either case, with apostrophes only between letters since
// punctuation passes through the substitution untouched.
func Decryptable(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		ch := rune(word[i])
		if freq.IsLetter(ch) {
			continue
		}
		if ch == '\'' && i > 0 && i < len(word)-1 && freq.IsLetter(rune(word[i-1])) && freq.IsLetter(rune(word[i+1])) {
			continue
		}
		return false
	}
	return true
}

// Load reads one word per line from path, keeping words accepted by filter.
func Load(path string, filter Filter) (Dictionary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	dict, err := Read(file, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return dict, nil
}

// Read parses a word-per-line dictionary. Blank lines are skipped; a nil
// filter keeps every word.
func Read(r io.Reader, filter Filter) (Dictionary, error) {
	dict := Dictionary{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line == "" {
			continue
		}
		if filter != nil && !filter(line) {
			continue
		}
		dict[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(dict) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return dict, nil
}
