package scheduler

import "fmt"

// InvariantError reports a call that breaks the scheduler's contract, such as
// answering a word that is not at the head of its queue or admitting a word
// twice. It indicates an integration defect; the scheduler refuses the call
// and leaves its state untouched.
type InvariantError struct {
	Op     string
	ItemID string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("scheduler: %s %q: %s", e.Op, e.ItemID, e.Reason)
}
