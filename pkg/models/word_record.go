package models

import (
	"encoding/json"
	"fmt"
)

// ReviewRecord is one entry of a word's review history
type ReviewRecord struct {
	At      Timestamp `json:"at" db:"reviewed_at"`
	Correct bool      `json:"correct" db:"correct"`
}

// MarshalJSON writes the record as a [timestamp, correct] pair
func (r ReviewRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{r.At, r.Correct})
}

// UnmarshalJSON reads a [timestamp, correct] pair
func (r *ReviewRecord) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("review record must have 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &r.At); err != nil {
		return fmt.Errorf("invalid review timestamp: %w", err)
	}
	if err := json.Unmarshal(pair[1], &r.Correct); err != nil {
		return fmt.Errorf("invalid review result: %w", err)
	}
	return nil
}

// WordRecord is the durable learning state of a single word
type WordRecord struct {
	Level   int            `json:"level" db:"level"`
	Count   int            `json:"count" db:"total_count"`
	Correct int            `json:"correct" db:"correct_count"`
	Records []ReviewRecord `json:"records"`
}

// LastReview returns the most recent history entry
func (w WordRecord) LastReview() (ReviewRecord, bool) {
	if len(w.Records) == 0 {
		return ReviewRecord{}, false
	}
	return w.Records[len(w.Records)-1], true
}

// Clone returns a copy that shares no memory with w
func (w WordRecord) Clone() WordRecord {
	c := w
	c.Records = append([]ReviewRecord(nil), w.Records...)
	return c
}

// DisplayStats is the read-only summary shown next to a word during review
type DisplayStats struct {
	Level int
	Count int
	Ratio float64 // correct / count, 0 for unseen words
}

// Stats derives display statistics from the record
func (w WordRecord) Stats() DisplayStats {
	s := DisplayStats{Level: w.Level, Count: w.Count}
	if w.Count > 0 {
		s.Ratio = float64(w.Correct) / float64(w.Count)
	}
	return s
}
