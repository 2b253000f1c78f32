package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/example/wordloop/pkg/models"
)

type staticStore struct {
	state models.State
}

func (s *staticStore) Load(ctx context.Context) (models.State, error) { return s.state, nil }

func (s *staticStore) Save(ctx context.Context, state models.State) error { return nil }

func (s *staticStore) Close() error { return nil }

type countingNotifier struct {
	counts []int
}

func (n *countingNotifier) SendReminders(count int) error {
	n.counts = append(n.counts, count)
	return nil
}

func newTestReminder(t *testing.T, now time.Time, state models.State) (*Reminder, *countingNotifier) {
	t.Helper()
	n := &countingNotifier{}
	r := New(&staticStore{state: state}, n, Config{StartHour: 8, EndHour: 22})
	r.now = func() time.Time { return now }
	return r, n
}

func dueState(now time.Time) models.State {
	ts := models.FromTime(now)
	state := models.NewState(2)
	state.Queues[0] = []models.QueueEntry{{Due: ts - 10, ItemID: "a"}, {Due: ts + 10, ItemID: "b"}}
	state.Queues[1] = []models.QueueEntry{{Due: ts, ItemID: "c"}}
	return state
}

func TestRunCheckNotifiesDueWords(t *testing.T) {
	now := time.Date(2024, 12, 19, 12, 0, 0, 0, time.Local)
	r, n := newTestReminder(t, now, dueState(now))

	count, err := r.RunCheck(context.Background())
	if err != nil {
		t.Fatalf("RunCheck: %v", err)
	}
	if count != 2 || len(n.counts) != 1 || n.counts[0] != 2 {
		t.Errorf("count = %d, notified %v; want 2", count, n.counts)
	}
}

func TestRunCheckOutsideHours(t *testing.T) {
	now := time.Date(2024, 12, 19, 3, 0, 0, 0, time.Local)
	r, n := newTestReminder(t, now, dueState(now))

	if count, err := r.RunCheck(context.Background()); err != nil || count != 0 {
		t.Errorf("RunCheck = %d, %v", count, err)
	}
	if len(n.counts) != 0 {
		t.Errorf("notified at night: %v", n.counts)
	}
}

func TestRunCheckNothingDue(t *testing.T) {
	now := time.Date(2024, 12, 19, 12, 0, 0, 0, time.Local)
	r, n := newTestReminder(t, now, models.NewState(2))
	if _, err := r.RunCheck(context.Background()); err != nil {
		t.Fatalf("RunCheck: %v", err)
	}
	if len(n.counts) != 0 {
		t.Errorf("notified with nothing due: %v", n.counts)
	}
}

func TestStartStop(t *testing.T) {
	r, _ := newTestReminder(t, time.Now(), models.NewState(1))
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r.Stop()
}
