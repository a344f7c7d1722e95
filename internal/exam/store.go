package exam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// KV is the persistence port for committed results and review markers.
// Implementations: MemoryKV for tests, SQLKV for sqlite/postgres.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// ErrNoResult covers absent, undecodable, and foreign records alike: a stored
// result whose exam ID differs from the requested one must never be shown.
var ErrNoResult = errors.New("no result for exam")

// DefaultReviewMinAnsweredPct gates review on answered coverage. The platform
// historically used both 90 and 10 in different flows; 10 is the policy here
// and can be overridden per store.
const DefaultReviewMinAnsweredPct = 10.0

const (
	resultKey      = "examsim:last_result" // one generic slot, verified on read
	reviewedPrefix = "examsim:reviewed:"
)

type StoreOption func(*ResultStore)

// WithReviewThreshold overrides the minimum answered percentage required
// before review is offered.
func WithReviewThreshold(pct float64) StoreOption {
	return func(s *ResultStore) { s.minAnsweredPct = pct }
}

// ResultStore freezes attempts into Result records and enforces the one-time
// review gate on top of the KV port.
type ResultStore struct {
	kv             KV
	minAnsweredPct float64
}

func NewResultStore(kv KV, opts ...StoreOption) *ResultStore {
	s := &ResultStore{kv: kv, minAnsweredPct: DefaultReviewMinAnsweredPct}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Commit writes the record. Results are written once per attempt; a new
// commit overwrites the generic slot, which is why Load verifies the exam ID.
func (s *ResultStore) Commit(ctx context.Context, r Result) error {
	buf, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return s.kv.Set(ctx, resultKey, buf)
}

// Load returns the committed record for examID. A record stored under the
// generic slot that belongs to a different exam is treated as absent.
func (s *ResultStore) Load(ctx context.Context, examID string) (Result, error) {
	buf, ok, err := s.kv.Get(ctx, resultKey)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, ErrNoResult
	}
	var r Result
	if err := json.Unmarshal(buf, &r); err != nil {
		return Result{}, ErrNoResult
	}
	if r.ExamID != examID {
		return Result{}, ErrNoResult
	}
	return r, nil
}

// IsReviewAvailable is true only while review is enabled for the exam, the
// taker answered more than the threshold, and review has not been consumed.
func (s *ResultStore) IsReviewAvailable(ctx context.Context, examID string) (bool, error) {
	r, err := s.Load(ctx, examID)
	if errors.Is(err, ErrNoResult) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !r.ReviewEnabled || r.PercentageAnswered <= s.minAnsweredPct {
		return false, nil
	}
	reviewed, err := s.HasBeenReviewed(ctx, examID)
	if err != nil {
		return false, err
	}
	return !reviewed, nil
}

func (s *ResultStore) HasBeenReviewed(ctx context.Context, examID string) (bool, error) {
	_, ok, err := s.kv.Get(ctx, reviewedPrefix+examID)
	return ok, err
}

// ConsumeReview writes the one-time marker. It survives reloads for the
// lifetime of the marker; later availability checks return false.
func (s *ResultStore) ConsumeReview(ctx context.Context, examID string) error {
	return s.kv.Set(ctx, reviewedPrefix+examID, []byte("1"))
}

// ClearSession removes the result and the review marker, used when starting a
// new attempt or exiting without finishing.
func (s *ResultStore) ClearSession(ctx context.Context, examID string) error {
	r, err := s.Load(ctx, examID)
	if err == nil && r.ExamID == examID {
		if err := s.kv.Delete(ctx, resultKey); err != nil {
			return err
		}
	} else if err != nil && !errors.Is(err, ErrNoResult) {
		return err
	}
	return s.kv.Delete(ctx, reviewedPrefix+examID)
}
