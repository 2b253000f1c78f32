package models

import "time"

// Timestamp is a point in time stored as fractional Unix seconds
type Timestamp float64

// FromTime converts a wall-clock time into a Timestamp
func FromTime(t time.Time) Timestamp {
	return Timestamp(float64(t.UnixNano()) / float64(time.Second))
}

// Add returns the timestamp shifted by d
func (ts Timestamp) Add(d time.Duration) Timestamp {
	return ts + Timestamp(d.Seconds())
}
