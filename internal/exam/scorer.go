package exam

// Score is derived from the ledger and the question pool. Percentage is
// correctness over the whole pool; PercentageAnswered is coverage, tracked
// separately because review eligibility depends on it. Neither is rounded
// here; rounding is a presentation concern.
type Score struct {
	Correct            int
	Incorrect          int
	Unanswered         int
	Answered           int
	Total              int
	Percentage         float64
	PercentageAnswered float64
}

// ScoreAttempt walks the pool once. A question with no selection is
// unanswered. A single-option question with any selection is correct.
// Otherwise the selected option's Correct flag decides.
func ScoreAttempt(questions []Question, ledger *Ledger) Score {
	s := Score{Total: len(questions)}
	for _, q := range questions {
		sel, ok := ledger.Selection(q.ID)
		if !ok {
			s.Unanswered++
			continue
		}
		s.Answered++
		if len(q.Options) == 1 {
			s.Correct++
			continue
		}
		if selectedCorrect(q, sel) {
			s.Correct++
		} else {
			s.Incorrect++
		}
	}
	if s.Total > 0 {
		s.Percentage = 100 * float64(s.Correct) / float64(s.Total)
		s.PercentageAnswered = 100 * float64(s.Answered) / float64(s.Total)
	}
	return s
}

func selectedCorrect(q Question, optionID string) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return o.Correct
		}
	}
	return false
}
