// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/subcrack/internal/heuristics"
	"github.com/verte-zerg/subcrack/internal/mapping"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Analyze    AnalyzeConfig    `toml:"analyze"`
	Mapping    MappingConfig    `toml:"mapping"`
	Heuristics HeuristicsConfig `toml:"heuristics"`
}

// AnalyzeConfig maps analysis-related settings.
type AnalyzeConfig struct {
	Reference  *string `toml:"reference"`
	TopWords   *int    `toml:"top-words"`
	MaxWordLen *int    `toml:"max-word-len"`
	Heuristics *bool   `toml:"heuristics"`
	Dict       *string `toml:"dict"`
	LangScore  *bool   `toml:"lang-score"`
	Chart      *bool   `toml:"chart"`
	Save       *bool   `toml:"save"`
}

// MappingConfig holds manual overrides applied as the final stage.
type MappingConfig struct {
	Overrides map[string]string `toml:"overrides"`
}

// HeuristicsConfig holds user-defined pattern rules.
type HeuristicsConfig struct {
	ReplaceDefaults bool         `toml:"replace-defaults"`
	Rules           []RuleConfig `toml:"rule"`
}

// RuleConfig is one [[heuristics.rule]] entry.
type RuleConfig struct {
	Name      string  `toml:"name"`
	Letters   string  `toml:"letters"`
	Threshold float64 `toml:"threshold"`
	Map       string  `toml:"map"`
	Note      string  `toml:"note"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Overrides returns the manual [mapping] overrides.
func (c FileConfig) Overrides() (mapping.Mapping, error) {
	if len(c.Mapping.Overrides) == 0 {
		return nil, nil
	}
	m, err := mapping.FromStrings(c.Mapping.Overrides)
	if err != nil {
		return nil, fmt.Errorf("invalid [mapping] overrides: %w", err)
	}
	return m, nil
}

// Rules returns the heuristic rules to run: the built-in ones followed by any
// configured rules, or only the configured ones when replace-defaults is set.
func (c FileConfig) Rules() ([]heuristics.Rule, error) {
	var rules []heuristics.Rule
	if !c.Heuristics.ReplaceDefaults {
		rules = heuristics.DefaultRules()
	}
	for _, rc := range c.Heuristics.Rules {
		rule, err := heuristics.NewRule(rc.Name, rc.Letters, rc.Threshold, rc.Map, rc.Note)
		if err != nil {
			return nil, fmt.Errorf("invalid [[heuristics.rule]]: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
