package models

import (
	"encoding/json"
	"fmt"
)

// QueueEntry is a pending review of an item at a given due time
type QueueEntry struct {
	Due    Timestamp `json:"due" db:"due_at"`
	ItemID string    `json:"item_id" db:"item_id"`
}

// MarshalJSON writes the entry as a [due, item] pair
func (e QueueEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{e.Due, e.ItemID})
}

// UnmarshalJSON reads a [due, item] pair
func (e *QueueEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("queue entry must have 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.Due); err != nil {
		return fmt.Errorf("invalid due timestamp: %w", err)
	}
	if err := json.Unmarshal(pair[1], &e.ItemID); err != nil {
		return fmt.Errorf("invalid item id: %w", err)
	}
	return nil
}
