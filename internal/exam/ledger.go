package exam

// Ledger maps question IDs to the selected option. Clearing an answer keeps
// the key with a nil value, so "cleared" stays distinguishable from "never
// visited"; the separate answered set is the authority on whether a question
// counts as answered.
type Ledger struct {
	selections map[string]*string
	answered   map[string]struct{}
}

func NewLedger() *Ledger {
	return &Ledger{
		selections: map[string]*string{},
		answered:   map[string]struct{}{},
	}
}

// Select records the choice, overwriting any prior one (last write wins).
func (l *Ledger) Select(questionID, optionID string) {
	v := optionID
	l.selections[questionID] = &v
	l.answered[questionID] = struct{}{}
}

// Clear sets the recorded value to "no selection" and removes the answered
// mark. The key itself is kept. Clearing an already-cleared answer is a no-op.
func (l *Ledger) Clear(questionID string) {
	l.selections[questionID] = nil
	delete(l.answered, questionID)
}

// Selection returns the chosen option ID and whether the question counts as
// answered.
func (l *Ledger) Selection(questionID string) (string, bool) {
	if _, ok := l.answered[questionID]; !ok {
		return "", false
	}
	v := l.selections[questionID]
	if v == nil {
		return "", false
	}
	return *v, true
}

// Visited reports whether the question was ever touched, even if the answer
// was later cleared.
func (l *Ledger) Visited(questionID string) bool {
	_, ok := l.selections[questionID]
	return ok
}

func (l *Ledger) AnsweredCount() int { return len(l.answered) }

// Snapshot copies the selection map for persistence or serving.
func (l *Ledger) Snapshot() map[string]*string {
	out := make(map[string]*string, len(l.selections))
	for k, v := range l.selections {
		if v == nil {
			out[k] = nil
			continue
		}
		s := *v
		out[k] = &s
	}
	return out
}
