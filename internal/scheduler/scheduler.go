// Package scheduler keeps one due-time queue per mastery level and decides
// which word is reviewed next.
package scheduler

import (
	"github.com/example/wordloop/internal/spaced_repetition"
	"github.com/example/wordloop/pkg/models"
)

// Source tells Admit where a word came from
type Source int

const (
	// SourceDictionary admits words from a word list
	SourceDictionary Source = iota
	// SourceFavorites re-admits words from the favorites set
	SourceFavorites
	// SourceHistory re-admits words from the saved history
	SourceHistory
)

func (s Source) reentry() bool {
	return s == SourceFavorites || s == SourceHistory
}

// Status is the outcome of a NextDue poll
type Status int

const (
	// Ready means a word is due now
	Ready Status = iota
	// NoneReady means words are queued but none is due yet
	NoneReady
	// Exhausted means every queue is empty
	Exhausted
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case NoneReady:
		return "none ready"
	default:
		return "exhausted"
	}
}

// Due is a word selected for review together with the level it waits at
type Due struct {
	Entry models.QueueEntry
	Level int
}

// Scheduler owns the level queues and the word records. It is not safe for
// concurrent use; a session drives it from a single goroutine.
type Scheduler struct {
	intervals spaced_repetition.IntervalTable
	queues    []*levelQueue
	records   map[string]*models.WordRecord
	owner     map[string]int // item id -> level of its queue entry
	seq       uint64
}

// New creates a scheduler over the given records with empty queues
func New(intervals spaced_repetition.IntervalTable, records map[string]models.WordRecord) *Scheduler {
	s := &Scheduler{
		intervals: intervals,
		queues:    make([]*levelQueue, intervals.FullLevel()),
		records:   make(map[string]*models.WordRecord, len(records)),
		owner:     make(map[string]int),
	}
	for i := range s.queues {
		s.queues[i] = &levelQueue{}
	}
	for id, rec := range records {
		r := rec.Clone()
		s.records[id] = &r
	}
	return s
}

// FullLevel returns the graduation level
func (s *Scheduler) FullLevel() int {
	return s.intervals.FullLevel()
}

func (s *Scheduler) enqueue(level int, e models.QueueEntry) {
	s.seq++
	s.queues[level].push(e, s.seq)
	s.owner[e.ItemID] = level
}

// Admit brings a word into the queues. It reports whether the word was
// enqueued; a graduated word coming from a word list is left out.
func (s *Scheduler) Admit(itemID string, src Source, now models.Timestamp) (bool, error) {
	if _, queued := s.owner[itemID]; queued {
		return false, &InvariantError{Op: "admit", ItemID: itemID, Reason: "already enqueued"}
	}

	rec, known := s.records[itemID]
	if !known {
		rec = &models.WordRecord{Records: []models.ReviewRecord{}}
		s.records[itemID] = rec
	}

	last, reviewed := rec.LastReview()
	switch {
	case !reviewed:
		// never reviewed: start over at level 0
		rec.Level = 0
		s.enqueue(0, models.QueueEntry{Due: now.Add(s.intervals.At(0)), ItemID: itemID})
	case !s.intervals.IsGraduated(rec.Level):
		s.enqueue(rec.Level, models.QueueEntry{Due: last.At.Add(s.intervals.At(rec.Level)), ItemID: itemID})
	case src.reentry():
		top := s.FullLevel() - 1
		s.enqueue(top, models.QueueEntry{Due: now.Add(s.intervals.At(0)), ItemID: itemID})
	default:
		return false, nil
	}
	return true, nil
}

// Restore re-inserts a saved queue snapshot verbatim, keeping the saved due
// times and order. Either every entry is restored or none is.
func (s *Scheduler) Restore(queues [][]models.QueueEntry) error {
	if len(queues) > s.FullLevel() {
		for level := s.FullLevel(); level < len(queues); level++ {
			if len(queues[level]) > 0 {
				return &InvariantError{Op: "restore", ItemID: queues[level][0].ItemID, Reason: "level beyond full level"}
			}
		}
	}
	seen := make(map[string]bool)
	for _, q := range queues {
		for _, e := range q {
			if _, ok := s.records[e.ItemID]; !ok {
				return &InvariantError{Op: "restore", ItemID: e.ItemID, Reason: "no record"}
			}
			if _, queued := s.owner[e.ItemID]; queued || seen[e.ItemID] {
				return &InvariantError{Op: "restore", ItemID: e.ItemID, Reason: "already enqueued"}
			}
			seen[e.ItemID] = true
		}
	}
	for level, q := range queues {
		for _, e := range q {
			s.enqueue(level, e)
		}
	}
	return nil
}

// NextDue returns the word to review at now. Levels are scanned from the
// highest down and the first level whose head is due wins, so among several
// due heads the most advanced word comes first.
func (s *Scheduler) NextDue(now models.Timestamp) (Due, Status) {
	empty := true
	for level := len(s.queues) - 1; level >= 0; level-- {
		head, ok := s.queues[level].peek()
		if !ok {
			continue
		}
		empty = false
		if head.Due <= now {
			return Due{Entry: head, Level: level}, Ready
		}
	}
	if empty {
		return Due{}, Exhausted
	}
	return Due{}, NoneReady
}

// ApplyOutcome records a review of the word at the head of its queue and
// moves it to its next level. It returns the new level; a level equal to
// FullLevel means the word graduated and is no longer queued.
func (s *Scheduler) ApplyOutcome(itemID string, correct bool, now models.Timestamp) (int, error) {
	level, queued := s.owner[itemID]
	if !queued {
		return 0, &InvariantError{Op: "apply outcome", ItemID: itemID, Reason: "not enqueued"}
	}
	if head, _ := s.queues[level].peek(); head.ItemID != itemID {
		return 0, &InvariantError{Op: "apply outcome", ItemID: itemID, Reason: "not at the head of its queue"}
	}

	s.queues[level].pop()
	delete(s.owner, itemID)

	rec := s.records[itemID]
	rec.Records = append(rec.Records, models.ReviewRecord{At: now, Correct: correct})
	rec.Count++
	if correct {
		rec.Correct++
	}
	rec.Level = spaced_repetition.NextLevel(level, correct)
	if !s.intervals.IsGraduated(rec.Level) {
		s.enqueue(rec.Level, models.QueueEntry{Due: now.Add(s.intervals.At(rec.Level)), ItemID: itemID})
	}
	return rec.Level, nil
}

// Snapshot returns the queue contents per level in selection order
func (s *Scheduler) Snapshot() [][]models.QueueEntry {
	out := make([][]models.QueueEntry, len(s.queues))
	for i, q := range s.queues {
		out[i] = q.entries()
	}
	return out
}

// Records returns a copy of every word record
func (s *Scheduler) Records() map[string]models.WordRecord {
	out := make(map[string]models.WordRecord, len(s.records))
	for id, rec := range s.records {
		out[id] = rec.Clone()
	}
	return out
}

// Record returns a copy of one word record
func (s *Scheduler) Record(itemID string) (models.WordRecord, bool) {
	rec, ok := s.records[itemID]
	if !ok {
		return models.WordRecord{}, false
	}
	return rec.Clone(), true
}

// Stats returns the display statistics of a word
func (s *Scheduler) Stats(itemID string) models.DisplayStats {
	rec, ok := s.records[itemID]
	if !ok {
		return models.DisplayStats{}
	}
	return rec.Stats()
}

// Level returns the queue level a word is waiting at
func (s *Scheduler) Level(itemID string) (int, bool) {
	level, ok := s.owner[itemID]
	return level, ok
}

// Pending returns the number of queued words
func (s *Scheduler) Pending() int {
	n := 0
	for _, q := range s.queues {
		n += q.len()
	}
	return n
}
