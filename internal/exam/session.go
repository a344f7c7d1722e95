package exam

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrAttemptFinished       = errors.New("attempt finished")
	ErrUnknownQuestion       = errors.New("unknown question")
	ErrUnknownOption         = errors.New("unknown option")
	ErrNoPendingConfirmation = errors.New("no pending confirmation")
	ErrEmptyPool             = errors.New("question pool is empty")
	ErrBadDuration           = errors.New("duration must be positive")
)

// Taker identifies who is sitting the exam.
type Taker struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ConfirmKind distinguishes the two explicit exit confirmations. A forced
// finish on timer expiry never asks for one.
type ConfirmKind string

const (
	ConfirmNone    ConfirmKind = ""
	ConfirmAbandon ConfirmKind = "abandon"
	ConfirmFinish  ConfirmKind = "finish"
)

// Session owns one attempt from creation to commit. Every entry point takes
// the mutex, so a clock tick is never processed concurrently with an answer
// or a navigation move; once expiry lands, later mutations lose the race and
// are rejected.
type Session struct {
	mu sync.Mutex

	id    string
	def   Definition
	taker Taker

	questions []Question // fixed at creation; never reshuffled
	byID      map[string]*Question
	ledger    *Ledger
	nav       *Navigator
	timer     *Timer
	store     *ResultStore

	pending  ConfirmKind
	finished bool
	result   *Result
}

type SessionOption func(*Session)

// WithWarnAt overrides the warning mark of the session's timer.
func WithWarnAt(seconds int) SessionOption {
	return func(s *Session) { s.timer.SetWarnAt(seconds) }
}

// NewSession builds the attempt: applies category quotas, randomizes the
// question order exactly once, and arms the timer. The generator is injected
// so tests can assert exact permutations.
func NewSession(def Definition, taker Taker, rng *rand.Rand, store *ResultStore, opts ...SessionOption) (*Session, error) {
	if def.DurationMin <= 0 {
		return nil, ErrBadDuration
	}
	pool := def.Questions
	if len(def.CategoryQuotas) > 0 {
		pool = ApplyQuotas(rng, pool, def.CategoryQuotas)
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	var qs []Question
	if len(def.CategoryQuotas) > 0 || distinctCategories(pool) > 1 {
		qs = ShuffleByCategory(rng, pool)
	} else {
		qs = ShuffleOptions(rng, Shuffle(rng, pool))
	}

	s := &Session{
		id:        uuid.NewString(),
		def:       def,
		taker:     taker,
		questions: qs,
		byID:      map[string]*Question{},
		ledger:    NewLedger(),
		nav:       NewNavigator(len(qs), def.FreeNavigation),
		timer:     NewTimer(def.DurationMin, nil, nil),
		store:     store,
	}
	for i := range s.questions {
		s.byID[s.questions[i].ID] = &s.questions[i]
	}
	for _, o := range opts {
		o(s)
	}
	s.nav.Start()
	return s, nil
}

func distinctCategories(qs []Question) int {
	seen := map[string]struct{}{}
	for _, q := range qs {
		seen[q.CategoryID] = struct{}{}
	}
	return len(seen)
}

func (s *Session) ID() string     { return s.id }
func (s *Session) ExamID() string { return s.def.ID }

// SelectAnswer records a choice. Rejected once the attempt is finished,
// whether by explicit finish or by expiry.
func (s *Session) SelectAnswer(questionID, optionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return ErrAttemptFinished
	}
	q, ok := s.byID[questionID]
	if !ok {
		return ErrUnknownQuestion
	}
	found := false
	for _, o := range q.Options {
		if o.ID == optionID {
			found = true
			break
		}
	}
	if !found {
		return ErrUnknownOption
	}
	s.ledger.Select(questionID, optionID)
	return nil
}

func (s *Session) ClearAnswer(questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return ErrAttemptFinished
	}
	if _, ok := s.byID[questionID]; !ok {
		return ErrUnknownQuestion
	}
	s.ledger.Clear(questionID)
	return nil
}

// Navigate attempts a jump and returns the index that is current afterwards.
// Policy violations are silent: the index simply does not move.
func (s *Session) Navigate(target int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nav.JumpTo(target)
	return s.nav.Current()
}

func (s *Session) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nav.Next()
	return s.nav.Current()
}

func (s *Session) Back() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nav.Back()
	return s.nav.Current()
}

func (s *Session) Mark(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.nav.Mark(index)
}

// Tick advances the countdown by one logical second. On expiry the attempt is
// frozen and committed with whatever answers exist; no confirmation is shown.
func (s *Session) Tick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return nil
	}
	s.timer.Tick()
	if s.timer.Expired() {
		_, err := s.finishLocked(ctx)
		return err
	}
	return nil
}

// RequestFinish opens the confirmation gate. On the last question the action
// is "finish"; anywhere else it is "abandon".
func (s *Session) RequestFinish() (ConfirmKind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return ConfirmNone, ErrAttemptFinished
	}
	if s.nav.OnLast() {
		s.pending = ConfirmFinish
	} else {
		s.pending = ConfirmAbandon
	}
	return s.pending, nil
}

// Confirm resolves the pending gate. "finish" commits the attempt and returns
// the result; "abandon" discards it and clears any stored session state for
// the exam (nil result).
func (s *Session) Confirm(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return s.result, ErrAttemptFinished
	}
	switch s.pending {
	case ConfirmFinish:
		return s.finishLocked(ctx)
	case ConfirmAbandon:
		s.finished = true
		s.pending = ConfirmNone
		s.nav.Finish()
		return nil, s.store.ClearSession(ctx, s.def.ID)
	default:
		return nil, ErrNoPendingConfirmation
	}
}

// Decline closes the gate. A complete no-op beyond that: no state mutation,
// the attempt continues.
func (s *Session) Decline() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = ConfirmNone
}

func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Result returns the committed record, if the attempt has finished with one.
func (s *Session) Result() (*Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.result != nil
}

func (s *Session) finishLocked(ctx context.Context) (*Result, error) {
	if s.result != nil {
		return s.result, nil
	}
	s.finished = true
	s.pending = ConfirmNone
	s.nav.Finish()
	sc := ScoreAttempt(s.questions, s.ledger)
	r := Result{
		AttemptID:           s.id,
		ExamID:              s.def.ID,
		ExamName:            s.def.Name,
		Questions:           s.questions,
		UserAnswers:         s.ledger.Snapshot(),
		TimeSpentSeconds:    s.def.DurationMin*60 - s.timer.Remaining(),
		TakerName:           s.taker.Name,
		TakerEmail:          s.taker.Email,
		Score:               sc.Percentage,
		TotalQuestions:      sc.Total,
		TotalAnswered:       sc.Answered,
		PercentageAnswered:  sc.PercentageAnswered,
		CorrectAnswers:      sc.Correct,
		IncorrectAnswers:    sc.Incorrect,
		UnansweredQuestions: sc.Unanswered,
		ReviewEnabled:       s.def.ReviewEnabled,
	}
	s.result = &r
	if err := s.store.Commit(ctx, r); err != nil {
		return &r, fmt.Errorf("commit result: %w", err)
	}
	return &r, nil
}

// Snapshot is the student-facing view of a live session. Questions are
// served without correct flags or justifications, same as the platform hides
// answer keys from students.
type Snapshot struct {
	SessionID        string             `json:"session_id"`
	ExamID           string             `json:"exam_id"`
	ExamName         string             `json:"exam_name"`
	Current          int                `json:"current"`
	Total            int                `json:"total"`
	RemainingSeconds int                `json:"remaining_seconds"`
	Warned           bool               `json:"warned"`
	Finished         bool               `json:"finished"`
	FreeNavigation   bool               `json:"free_navigation"`
	PendingConfirm   ConfirmKind        `json:"pending_confirm,omitempty"`
	Answers          map[string]*string `json:"answers"`
	Marked           []int              `json:"marked"`
	Questions        []Question         `json:"questions"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		SessionID:        s.id,
		ExamID:           s.def.ID,
		ExamName:         s.def.Name,
		Current:          s.nav.Current(),
		Total:            s.nav.Total(),
		RemainingSeconds: s.timer.Remaining(),
		Warned:           s.timer.Warned(),
		Finished:         s.finished,
		FreeNavigation:   s.nav.Free(),
		PendingConfirm:   s.pending,
		Answers:          s.ledger.Snapshot(),
		Marked:           s.nav.MarkedIndices(),
		Questions:        sanitize(s.questions),
	}
}

func sanitize(qs []Question) []Question {
	out := make([]Question, len(qs))
	copy(out, qs)
	for i := range out {
		out[i].JustificationHTML = ""
		opts := make([]Option, len(out[i].Options))
		copy(opts, out[i].Options)
		for k := range opts {
			opts[k].Correct = false
		}
		out[i].Options = opts
	}
	return out
}
