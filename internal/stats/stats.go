// Package stats prints the saved queues and word records.
package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/example/wordloop/pkg/models"
)

// WriteQueues prints the words waiting at each level, one line per level
func WriteQueues(w io.Writer, state models.State) error {
	for level, q := range state.Queues {
		words := make([]string, len(q))
		for i, e := range q {
			words[i] = e.ItemID
		}
		if _, err := fmt.Fprintf(w, "%d [%s]\n", level+1, strings.Join(words, ", ")); err != nil {
			return err
		}
	}
	return nil
}

// WriteRecords prints a table of word records sorted by word
func WriteRecords(w io.Writer, state models.State) error {
	ids := make([]string, 0, len(state.Records))
	for id := range state.Records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WORD\tLEVEL\tCOUNT\tCORRECT\tRATIO")
	for _, id := range ids {
		s := state.Records[id].Stats()
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.0f%%\n", id, s.Level, s.Count, state.Records[id].Correct, s.Ratio*100)
	}
	return tw.Flush()
}
