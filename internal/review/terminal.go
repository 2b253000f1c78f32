// Package review implements a line-oriented Reviewer for terminals.
package review

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/example/wordloop/internal/session"
	"github.com/example/wordloop/pkg/models"
)

// Terminal asks about words on out and reads answers from in
type Terminal struct {
	in        io.Reader
	out       io.Writer
	favorites *session.Favorites

	once      sync.Once
	closeOnce sync.Once
	lines     chan string
	done      chan struct{}
}

// NewTerminal creates a terminal reviewer
func NewTerminal(in io.Reader, out io.Writer, favorites *session.Favorites) *Terminal {
	return &Terminal{in: in, out: out, favorites: favorites, done: make(chan struct{})}
}

// Close releases the input reader. Reviews after Close report Cancelled.
func (t *Terminal) Close() {
	t.closeOnce.Do(func() { close(t.done) })
}

// Title formats the statistics line shown above a word
func Title(stats models.DisplayStats) string {
	return fmt.Sprintf("Level: %d  Reviews: %d  Correct: %.0f%%", stats.Level, stats.Count, stats.Ratio*100)
}

// readLines feeds input lines to a channel so a pending read never blocks cancellation
func (t *Terminal) readLines() {
	t.lines = make(chan string)
	go func() {
		defer close(t.lines)
		scanner := bufio.NewScanner(t.in)
		for scanner.Scan() {
			select {
			case t.lines <- scanner.Text():
			case <-t.done:
				return
			}
		}
	}()
}

// Review shows the word and waits for y (remembered), n (forgot), f (toggle
// favorite) or q (quit). End of input counts as quitting.
func (t *Terminal) Review(ctx context.Context, itemID string, stats models.DisplayStats) (session.Outcome, error) {
	t.once.Do(t.readLines)

	fmt.Fprintf(t.out, "\n%s\n    %s\n", Title(stats), itemID)
	for {
		label := "favorite"
		if t.favorites != nil && t.favorites.Contains(itemID) {
			label = "unfavorite"
		}
		fmt.Fprintf(t.out, "[y] remembered  [n] forgot  [f] %s  [q] quit > ", label)

		var line string
		select {
		case <-ctx.Done():
			return session.Cancelled, nil
		case <-t.done:
			return session.Cancelled, nil
		case l, ok := <-t.lines:
			if !ok {
				return session.Cancelled, nil
			}
			line = l
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return session.Correct, nil
		case "n", "no":
			return session.Incorrect, nil
		case "q", "quit":
			return session.Cancelled, nil
		case "f":
			if t.favorites == nil {
				continue
			}
			if t.favorites.Toggle(itemID) {
				fmt.Fprintf(t.out, "Collected %s\n", itemID)
			} else {
				fmt.Fprintf(t.out, "Uncollected %s\n", itemID)
			}
		default:
			fmt.Fprintln(t.out, "Unknown answer")
		}
	}
}
