package session

import (
	"context"
	"time"

	"github.com/example/wordloop/pkg/models"
)

// Outcome is the answer a reviewer gives for one word
type Outcome int

const (
	// Cancelled means the user left without answering
	Cancelled Outcome = iota
	// Correct means the word was remembered
	Correct
	// Incorrect means the word was forgotten
	Incorrect
)

func (o Outcome) String() string {
	switch o {
	case Correct:
		return "remembered"
	case Incorrect:
		return "forgot"
	default:
		return "cancelled"
	}
}

// Reviewer shows a word to the user and blocks until they answer or leave.
// The stats are informational only.
type Reviewer interface {
	Review(ctx context.Context, itemID string, stats models.DisplayStats) (Outcome, error)
}

// WordLists resolves a named word list
type WordLists interface {
	LoadWordList(name string) ([]string, error)
}

// Clock supplies wall-clock time and poll waits
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
