// Package session drives review sessions: it admits words from a source,
// asks a Reviewer about every due word and saves progress as it goes.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/wordloop/internal/dictionary"
	"github.com/example/wordloop/internal/scheduler"
	"github.com/example/wordloop/internal/spaced_repetition"
	"github.com/example/wordloop/internal/storage"
	"github.com/example/wordloop/pkg/models"
)

// Reason tells why a session ended
type Reason int

const (
	// Exhausted means no queued word is left
	Exhausted Reason = iota
	// Stopped means the session was cancelled and its state saved
	Stopped
)

// Result summarizes a finished session
type Result struct {
	Reason   Reason
	Reviewed int
	Saves    int
}

// Message returns the text shown to the user when a session ends
func (r Result) Message() string {
	if r.Reason == Exhausted {
		return "All words reviewed!"
	}
	return "State saved."
}

// Options configures a Runner
type Options struct {
	Store     storage.Store
	Reviewer  Reviewer
	WordLists WordLists
	Intervals spaced_repetition.IntervalTable
	Favorites *Favorites
	// AutosaveEvery is the number of applied outcomes between saves
	AutosaveEvery int
	// Tick is the wait between polls while nothing is due
	Tick  time.Duration
	Clock Clock
}

// Runner runs review sessions. Only one session may run at a time.
type Runner struct {
	store         storage.Store
	reviewer      Reviewer
	wordLists     WordLists
	intervals     spaced_repetition.IntervalTable
	favorites     *Favorites
	autosaveEvery int
	tick          time.Duration
	clock         Clock
}

// NewRunner creates a runner, filling unset options with defaults
func NewRunner(opts Options) *Runner {
	r := &Runner{
		store:         opts.Store,
		reviewer:      opts.Reviewer,
		wordLists:     opts.WordLists,
		intervals:     opts.Intervals,
		favorites:     opts.Favorites,
		autosaveEvery: opts.AutosaveEvery,
		tick:          opts.Tick,
		clock:         opts.Clock,
	}
	if r.intervals == nil {
		r.intervals = spaced_repetition.DefaultIntervals
	}
	if r.favorites == nil {
		r.favorites = NewFavorites()
	}
	if r.autosaveEvery <= 0 {
		r.autosaveEvery = 10
	}
	if r.tick <= 0 {
		r.tick = time.Second
	}
	if r.clock == nil {
		r.clock = systemClock{}
	}
	return r
}

// Favorites returns the favorites set shared with reviewer hosts
func (r *Runner) Favorites() *Favorites {
	return r.favorites
}

// Run executes one session over source: a word list name, "history" to
// resume the saved queues, or "favorite". It returns after the queues are
// exhausted or the session is stopped, always saving the final state.
func (r *Runner) Run(ctx context.Context, source string, st *State) (Result, error) {
	saved, err := r.store.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load state: %w", err)
	}

	sched := scheduler.New(r.intervals, saved.Records)
	if err := r.admit(sched, source, saved); err != nil {
		return Result{}, err
	}
	r.favorites.Replace(saved.Favorites)
	log.Printf("Session started from %q with %d queued words", source, sched.Pending())

	st.Start()
	defer st.Stop()

	var (
		res     = Result{Reason: Stopped}
		loopErr error
	)
	for st.Running() {
		if ctx.Err() != nil {
			break
		}

		due, status := sched.NextDue(r.now())
		if status == scheduler.Exhausted {
			res.Reason = Exhausted
			break
		}
		if status == scheduler.NoneReady {
			select {
			case <-ctx.Done():
			case <-st.Done():
			case <-r.clock.After(r.tick):
			}
			continue
		}

		word := due.Entry.ItemID
		outcome, err := r.reviewer.Review(ctx, word, sched.Stats(word))
		if err != nil {
			loopErr = fmt.Errorf("review of %q failed: %w", word, err)
			break
		}
		if outcome == Cancelled || !st.Running() {
			log.Printf("Save and quit.")
			break
		}

		level, err := sched.ApplyOutcome(word, outcome == Correct, r.now())
		if err != nil {
			log.Printf("Error applying outcome for %s: %v", word, err)
			loopErr = err
			break
		}
		log.Printf("Word %s %s, now at level %d", word, outcome, level)

		res.Reviewed++
		if res.Reviewed%r.autosaveEvery == 0 {
			if err := r.save(ctx, sched); err != nil {
				log.Printf("Error autosaving state: %v", err)
			} else {
				res.Saves++
			}
		}
	}

	// the final save must happen even when ctx was cancelled
	if err := r.save(context.WithoutCancel(ctx), sched); err != nil {
		return res, errors.Join(loopErr, fmt.Errorf("failed to save state: %w", err))
	}
	res.Saves++
	log.Printf("Session ended after %d reviews: %s", res.Reviewed, res.Message())
	return res, loopErr
}

func (r *Runner) admit(sched *scheduler.Scheduler, source string, saved models.State) error {
	now := r.now()
	switch source {
	case dictionary.SourceHistory:
		queued := 0
		for _, q := range saved.Queues {
			queued += len(q)
		}
		if queued == 0 {
			return &dictionary.SourceNotFoundError{Name: source, Reason: "has no queued words"}
		}
		return sched.Restore(saved.Queues)

	case dictionary.SourceFavorites:
		if len(saved.Favorites) == 0 {
			return &dictionary.SourceNotFoundError{Name: source, Reason: "has no words"}
		}
		for _, word := range saved.Favorites {
			if _, err := sched.Admit(word, scheduler.SourceFavorites, now); err != nil {
				log.Printf("Skipping favorite %s: %v", word, err)
			}
		}
		return nil

	default:
		if r.wordLists == nil {
			return &dictionary.SourceNotFoundError{Name: source, Reason: "does not exist"}
		}
		words, err := r.wordLists.LoadWordList(source)
		if err != nil {
			return err
		}
		for _, word := range words {
			if _, err := sched.Admit(word, scheduler.SourceDictionary, now); err != nil {
				log.Printf("Skipping %s: %v", word, err)
			}
		}
		return nil
	}
}

func (r *Runner) save(ctx context.Context, sched *scheduler.Scheduler) error {
	state := models.State{
		Records:   sched.Records(),
		Queues:    sched.Snapshot(),
		Favorites: r.favorites.List(),
	}
	return r.store.Save(ctx, state)
}

func (r *Runner) now() models.Timestamp {
	return models.FromTime(r.clock.Now())
}
