package database

import (
	"context"
	"fmt"

	"github.com/example/wordloop/internal/storage"
	"github.com/example/wordloop/pkg/models"
	"github.com/jmoiron/sqlx"
)

// StateRepository stores the review state in SQL tables
type StateRepository struct {
	db        *sqlx.DB
	fullLevel int
}

// NewStateRepository creates a repository for a table with fullLevel levels
func NewStateRepository(db *sqlx.DB, fullLevel int) *StateRepository {
	return &StateRepository{db: db, fullLevel: fullLevel}
}

type recordRow struct {
	ItemID  string `db:"item_id"`
	Level   int    `db:"level"`
	Count   int    `db:"total_count"`
	Correct int    `db:"correct_count"`
}

type historyRow struct {
	ItemID string `db:"item_id"`
	Seq    int    `db:"seq"`
	models.ReviewRecord
}

type queueRow struct {
	Level    int `db:"level"`
	Position int `db:"position"`
	models.QueueEntry
}

// Load reads the whole state
func (r *StateRepository) Load(ctx context.Context) (models.State, error) {
	state := models.NewState(r.fullLevel)

	var records []recordRow
	if err := r.db.SelectContext(ctx, &records,
		"SELECT item_id, level, total_count, correct_count FROM word_records"); err != nil {
		return models.State{}, fmt.Errorf("failed to get records: %w", err)
	}
	for _, row := range records {
		state.Records[row.ItemID] = models.WordRecord{
			Level:   row.Level,
			Count:   row.Count,
			Correct: row.Correct,
			Records: []models.ReviewRecord{},
		}
	}

	var history []historyRow
	if err := r.db.SelectContext(ctx, &history,
		"SELECT item_id, seq, reviewed_at, correct FROM review_history ORDER BY item_id, seq"); err != nil {
		return models.State{}, fmt.Errorf("failed to get review history: %w", err)
	}
	for _, row := range history {
		rec, ok := state.Records[row.ItemID]
		if !ok {
			return models.State{}, r.corrupt(fmt.Errorf("history for unknown word %q", row.ItemID))
		}
		if row.Seq != len(rec.Records) {
			return models.State{}, r.corrupt(fmt.Errorf("history of %q has a gap at %d", row.ItemID, len(rec.Records)))
		}
		rec.Records = append(rec.Records, row.ReviewRecord)
		state.Records[row.ItemID] = rec
	}

	var queue []queueRow
	if err := r.db.SelectContext(ctx, &queue,
		"SELECT level, position, due_at, item_id FROM queue_entries ORDER BY level, position"); err != nil {
		return models.State{}, fmt.Errorf("failed to get queues: %w", err)
	}
	for _, row := range queue {
		if row.Level < 0 || row.Level >= r.fullLevel {
			return models.State{}, r.corrupt(fmt.Errorf("queue level %d outside 0..%d", row.Level, r.fullLevel-1))
		}
		state.Queues[row.Level] = append(state.Queues[row.Level], row.QueueEntry)
	}

	if err := r.db.SelectContext(ctx, &state.Favorites,
		"SELECT item_id FROM favorites ORDER BY position"); err != nil {
		return models.State{}, fmt.Errorf("failed to get favorites: %w", err)
	}

	storage.Normalize(&state, r.fullLevel)
	if err := storage.Validate(state, r.fullLevel); err != nil {
		return models.State{}, r.corrupt(err)
	}
	return state, nil
}

func (r *StateRepository) corrupt(err error) error {
	return &storage.PersistenceError{Source: r.db.DriverName() + " database", Err: err}
}

// Save replaces the stored state in a single transaction
func (r *StateRepository) Save(ctx context.Context, state models.State) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"word_records", "review_history", "queue_entries", "favorites"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	insertRecord := tx.Rebind("INSERT INTO word_records (item_id, level, total_count, correct_count) VALUES (?, ?, ?, ?)")
	insertHistory := tx.Rebind("INSERT INTO review_history (item_id, seq, reviewed_at, correct) VALUES (?, ?, ?, ?)")
	for id, rec := range state.Records {
		if _, err := tx.ExecContext(ctx, insertRecord, id, rec.Level, rec.Count, rec.Correct); err != nil {
			return fmt.Errorf("failed to save record %q: %w", id, err)
		}
		for seq, h := range rec.Records {
			if _, err := tx.ExecContext(ctx, insertHistory, id, seq, float64(h.At), h.Correct); err != nil {
				return fmt.Errorf("failed to save history of %q: %w", id, err)
			}
		}
	}

	insertQueue := tx.Rebind("INSERT INTO queue_entries (level, position, due_at, item_id) VALUES (?, ?, ?, ?)")
	for level, q := range state.Queues {
		for pos, e := range q {
			if _, err := tx.ExecContext(ctx, insertQueue, level, pos, float64(e.Due), e.ItemID); err != nil {
				return fmt.Errorf("failed to save queue entry %q: %w", e.ItemID, err)
			}
		}
	}

	insertFavorite := tx.Rebind("INSERT INTO favorites (position, item_id) VALUES (?, ?)")
	for pos, id := range state.Favorites {
		if _, err := tx.ExecContext(ctx, insertFavorite, pos, id); err != nil {
			return fmt.Errorf("failed to save favorite %q: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit state: %w", err)
	}
	return nil
}

// Close closes the underlying connection
func (r *StateRepository) Close() error {
	return r.db.Close()
}
