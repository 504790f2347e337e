package domain

// Cycle records one interpretation cycle: what was heard, how it was read
// and what was answered.
type Cycle struct {
	ID         CycleID         `json:"id"`
	Transcript string          `json:"transcript"`
	Intent     Intent          `json:"intent"`
	Operations []TaskOperation `json:"operations,omitempty"`
	Reply      string          `json:"reply"`
	CreatedAt  Timestamp       `json:"created_at"`
}

// Turns renders cycles as alternating user/agent history blocks.
func Turns(cycles []*Cycle) []Turn {
	turns := make([]Turn, 0, len(cycles)*2)
	for _, c := range cycles {
		if c == nil {
			continue
		}
		turns = append(turns, Turn{Role: RoleUser, Text: c.Transcript})
		if c.Reply != "" {
			turns = append(turns, Turn{Role: RoleAgent, Text: c.Reply})
		}
	}
	return turns
}
