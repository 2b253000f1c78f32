package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/example/wordloop/internal/spaced_repetition"
	"gopkg.in/yaml.v3"
)

// ConfigError reports a stored interval table that could not be used.
// The table returned alongside it is the default one.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: malformed interval table %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

type intervalFile struct {
	Intervals []float64 `yaml:"intervals"`
}

// legacyIntervalsName is the JSON interval file kept next to older history data
const legacyIntervalsName = "config.json"

// LoadIntervals reads the interval table (in seconds) from path. When path is
// missing, a config.json in the same directory is used instead and migrated to
// path; with neither present the default table is written to path. A malformed
// file yields the default table together with a *ConfigError, which callers
// treat as a warning.
func LoadIntervals(path string) (spaced_repetition.IntervalTable, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		legacy := filepath.Join(filepath.Dir(path), legacyIntervalsName)
		legacyData, legacyErr := os.ReadFile(legacy)
		if legacyErr != nil {
			return spaced_repetition.DefaultIntervals, SaveIntervals(path, spaced_repetition.DefaultIntervals)
		}
		table, err := parseIntervals(legacy, legacyData)
		if err != nil {
			return table, err
		}
		return table, SaveIntervals(path, table)
	}
	if err != nil {
		return spaced_repetition.DefaultIntervals, &ConfigError{Path: path, Err: err}
	}
	return parseIntervals(path, data)
}

// parseIntervals decodes a YAML or JSON interval document
func parseIntervals(path string, data []byte) (spaced_repetition.IntervalTable, error) {
	var f intervalFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return spaced_repetition.DefaultIntervals, &ConfigError{Path: path, Err: err}
	}
	for i, s := range f.Intervals {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return spaced_repetition.DefaultIntervals, &ConfigError{Path: path, Err: fmt.Errorf("interval %d is not a number", i)}
		}
	}
	table := spaced_repetition.FromSeconds(f.Intervals)
	if err := table.Validate(); err != nil {
		return spaced_repetition.DefaultIntervals, &ConfigError{Path: path, Err: err}
	}
	return table, nil
}

// SaveIntervals writes the interval table to path
func SaveIntervals(path string, table spaced_repetition.IntervalTable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(intervalFile{Intervals: table.Seconds()})
	if err != nil {
		return fmt.Errorf("failed to encode intervals: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write intervals: %w", err)
	}
	return nil
}
