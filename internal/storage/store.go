// Package storage persists the review state between sessions.
package storage

import (
	"context"
	"fmt"

	"github.com/example/wordloop/pkg/models"
)

// Store loads and saves the whole review state. A store has a single writer:
// the session that owns it.
type Store interface {
	// Load returns the last saved state, or an empty state when nothing was
	// saved yet. Damaged data is reported as *PersistenceError.
	Load(ctx context.Context) (models.State, error)
	// Save replaces the stored state
	Save(ctx context.Context, state models.State) error
	Close() error
}

// PersistenceError reports stored state that cannot be trusted
type PersistenceError struct {
	Source string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage: corrupt state in %s: %v", e.Source, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Validate checks a loaded state against the record and queue invariants
func Validate(state models.State, fullLevel int) error {
	for id, rec := range state.Records {
		if rec.Level < 0 || rec.Level > fullLevel {
			return fmt.Errorf("word %q has level %d outside 0..%d", id, rec.Level, fullLevel)
		}
		if rec.Correct < 0 || rec.Correct > rec.Count {
			return fmt.Errorf("word %q has %d correct of %d reviews", id, rec.Correct, rec.Count)
		}
		if len(rec.Records) != rec.Count {
			return fmt.Errorf("word %q has %d history entries for %d reviews", id, len(rec.Records), rec.Count)
		}
	}

	seen := make(map[string]int)
	for level, q := range state.Queues {
		if level >= fullLevel && len(q) > 0 {
			return fmt.Errorf("queue level %d beyond full level %d", level, fullLevel)
		}
		for _, e := range q {
			if prev, dup := seen[e.ItemID]; dup {
				return fmt.Errorf("word %q queued at levels %d and %d", e.ItemID, prev, level)
			}
			if _, ok := state.Records[e.ItemID]; !ok {
				return fmt.Errorf("queued word %q has no record", e.ItemID)
			}
			seen[e.ItemID] = level
		}
	}
	return nil
}

// Normalize pads the queue list to one queue per level and fills nil maps
func Normalize(state *models.State, fullLevel int) {
	if state.Records == nil {
		state.Records = make(map[string]models.WordRecord)
	}
	for id, rec := range state.Records {
		if rec.Records == nil {
			rec.Records = []models.ReviewRecord{}
			state.Records[id] = rec
		}
	}
	for len(state.Queues) < fullLevel {
		state.Queues = append(state.Queues, nil)
	}
	for i := range state.Queues {
		if state.Queues[i] == nil {
			state.Queues[i] = []models.QueueEntry{}
		}
	}
	if state.Favorites == nil {
		state.Favorites = []string{}
	}
}
