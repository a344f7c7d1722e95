package exam_test

import (
	"context"
	"errors"
	"testing"

	"github.com/edustack/examsim/internal/exam"
)

func committedResult(examID string, answeredPct float64, review bool) exam.Result {
	return exam.Result{
		AttemptID:          "att-1",
		ExamID:             examID,
		ExamName:           "Mock exam",
		Questions:          []exam.Question{q("q1", "a", "o1", "o2")},
		UserAnswers:        map[string]*string{},
		TimeSpentSeconds:   120,
		TakerName:          "Ana",
		TakerEmail:         "ana@example.com",
		Score:              80,
		TotalQuestions:     10,
		PercentageAnswered: answeredPct,
		ReviewEnabled:      review,
	}
}

func TestResultStoreCommitAndLoad(t *testing.T) {
	ctx := context.Background()
	store := exam.NewResultStore(exam.NewMemoryKV())
	if err := store.Commit(ctx, committedResult("exam-x", 95, true)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	r, err := store.Load(ctx, "exam-x")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if r.ExamID != "exam-x" || r.TakerName != "Ana" || r.Score != 80 {
		t.Fatalf("loaded record mangled: %+v", r)
	}
}

func TestResultStoreRejectsForeignExamID(t *testing.T) {
	ctx := context.Background()
	store := exam.NewResultStore(exam.NewMemoryKV())
	if err := store.Commit(ctx, committedResult("exam-y", 95, true)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	// Scenario: viewing exam-x while the slot holds exam-y's record.
	if _, err := store.Load(ctx, "exam-x"); !errors.Is(err, exam.ErrNoResult) {
		t.Fatalf("foreign record must be treated as absent, got %v", err)
	}
	avail, err := store.IsReviewAvailable(ctx, "exam-x")
	if err != nil || avail {
		t.Fatalf("review available for a foreign record: %v %v", avail, err)
	}
}

func TestReviewOneTimeConsumption(t *testing.T) {
	ctx := context.Background()
	kv := exam.NewMemoryKV()
	store := exam.NewResultStore(kv)
	if err := store.Commit(ctx, committedResult("exam-x", 95, true)); err != nil {
		t.Fatalf("commit: %v", err)
	}

	avail, err := store.IsReviewAvailable(ctx, "exam-x")
	if err != nil || !avail {
		t.Fatalf("review should be available before consumption: %v %v", avail, err)
	}
	if err := store.ConsumeReview(ctx, "exam-x"); err != nil {
		t.Fatalf("consume: %v", err)
	}
	avail, err = store.IsReviewAvailable(ctx, "exam-x")
	if err != nil || avail {
		t.Fatalf("review still available after consumption: %v %v", avail, err)
	}

	// Simulated reload: a fresh store over the same durable KV.
	reloaded := exam.NewResultStore(kv)
	avail, err = reloaded.IsReviewAvailable(ctx, "exam-x")
	if err != nil || avail {
		t.Fatalf("review came back after reload: %v %v", avail, err)
	}
	reviewed, err := reloaded.HasBeenReviewed(ctx, "exam-x")
	if err != nil || !reviewed {
		t.Fatalf("reviewed marker lost across reload: %v %v", reviewed, err)
	}
}

func TestReviewGatedOnAnsweredCoverage(t *testing.T) {
	ctx := context.Background()
	store := exam.NewResultStore(exam.NewMemoryKV())
	if err := store.Commit(ctx, committedResult("exam-x", 5, true)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	avail, err := store.IsReviewAvailable(ctx, "exam-x")
	if err != nil || avail {
		t.Fatalf("5%% answered must not pass the default 10%% gate: %v %v", avail, err)
	}
}

func TestReviewDisabledByExamPolicy(t *testing.T) {
	ctx := context.Background()
	store := exam.NewResultStore(exam.NewMemoryKV())
	if err := store.Commit(ctx, committedResult("exam-x", 95, false)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	avail, err := store.IsReviewAvailable(ctx, "exam-x")
	if err != nil || avail {
		t.Fatalf("review=false exam offered a review: %v %v", avail, err)
	}
}

func TestReviewThresholdOverride(t *testing.T) {
	ctx := context.Background()
	store := exam.NewResultStore(exam.NewMemoryKV(), exam.WithReviewThreshold(90))
	if err := store.Commit(ctx, committedResult("exam-x", 85, true)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	avail, err := store.IsReviewAvailable(ctx, "exam-x")
	if err != nil || avail {
		t.Fatalf("85%% answered must not pass a 90%% gate: %v %v", avail, err)
	}
}

func TestClearSessionRemovesResultAndMarker(t *testing.T) {
	ctx := context.Background()
	store := exam.NewResultStore(exam.NewMemoryKV())
	if err := store.Commit(ctx, committedResult("exam-x", 95, true)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := store.ConsumeReview(ctx, "exam-x"); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if err := store.ClearSession(ctx, "exam-x"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := store.Load(ctx, "exam-x"); !errors.Is(err, exam.ErrNoResult) {
		t.Fatalf("result survived clear: %v", err)
	}
	reviewed, err := store.HasBeenReviewed(ctx, "exam-x")
	if err != nil || reviewed {
		t.Fatalf("review marker survived clear: %v %v", reviewed, err)
	}
}
