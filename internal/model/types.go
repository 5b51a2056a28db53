// Package model defines shared data structures.
package model

import "time"

// Config defines analysis settings after flags and config file are merged.
type Config struct {
	Reference  string
	TopWords   int
	MaxWordLen int
	Heuristics bool
	DictPath   string
	LangScore  bool
	Chart      bool
	Save       bool
}

// RunRecord is a stored analysis run.
type RunRecord struct {
	ID         int64
	CreatedAt  time.Time
	Ciphertext string
	Letters    int
	Reference  string
	Mapping    string
	Plaintext  string
	Score      float64
}

// SavedMapping is a curated mapping stored for one ciphertext.
type SavedMapping struct {
	Digest    string
	Mapping   string
	UpdatedAt time.Time
}
