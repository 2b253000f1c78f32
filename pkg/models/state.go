package models

// State is everything persisted between sessions
type State struct {
	Records   map[string]WordRecord `json:"records"`
	Queues    [][]QueueEntry        `json:"queues"`
	Favorites []string              `json:"favorites"`
}

// NewState returns an empty state with one queue per level
func NewState(fullLevel int) State {
	queues := make([][]QueueEntry, fullLevel)
	for i := range queues {
		queues[i] = []QueueEntry{}
	}
	return State{
		Records:   make(map[string]WordRecord),
		Queues:    queues,
		Favorites: []string{},
	}
}
