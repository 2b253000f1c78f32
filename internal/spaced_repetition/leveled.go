package spaced_repetition

import (
	"fmt"
	"time"
)

// DefaultIntervals is the review table used when no configuration exists:
// immediately, 5m, 30m, 3h, 12h, 1d, 2d, 4d, 7d, 15d, 30d
var DefaultIntervals = IntervalTable{
	0,
	5 * time.Minute,
	30 * time.Minute,
	3 * time.Hour,
	12 * time.Hour,
	24 * time.Hour,
	2 * 24 * time.Hour,
	4 * 24 * time.Hour,
	7 * 24 * time.Hour,
	15 * 24 * time.Hour,
	30 * 24 * time.Hour,
}

// IntervalTable holds the wait before a word at level L becomes due again.
// Its length is the full level: a word reaching it has graduated.
type IntervalTable []time.Duration

// FullLevel returns the graduation level
func (t IntervalTable) FullLevel() int {
	return len(t)
}

// At returns the interval for a level below the full level
func (t IntervalTable) At(level int) time.Duration {
	return t[level]
}

// Validate checks that the table is usable
func (t IntervalTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("interval table is empty")
	}
	for i, d := range t {
		if d < 0 {
			return fmt.Errorf("interval %d is negative: %v", i, d)
		}
	}
	return nil
}

// Seconds returns the table in seconds, the form it is stored in
func (t IntervalTable) Seconds() []float64 {
	out := make([]float64, len(t))
	for i, d := range t {
		out[i] = d.Seconds()
	}
	return out
}

// FromSeconds builds a table from (possibly fractional) second counts
func FromSeconds(secs []float64) IntervalTable {
	t := make(IntervalTable, len(secs))
	for i, s := range secs {
		t[i] = time.Duration(s * float64(time.Second))
	}
	return t
}

// NextLevel applies the leveled promotion rule: a remembered word moves up
// one level, a forgotten word goes back to level 0.
func NextLevel(level int, correct bool) int {
	if correct {
		return level + 1
	}
	return 0
}

// IsGraduated reports whether a level is past active scheduling
func (t IntervalTable) IsGraduated(level int) bool {
	return level >= t.FullLevel()
}
