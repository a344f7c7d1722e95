package exam_test

import (
	"math/rand"
	"testing"

	"github.com/edustack/examsim/internal/exam"
)

func q(id, cat string, optIDs ...string) exam.Question {
	opts := make([]exam.Option, 0, len(optIDs))
	for i, o := range optIDs {
		opts = append(opts, exam.Option{ID: o, Correct: i == 0})
	}
	return exam.Question{ID: id, CategoryID: cat, CategoryName: cat, Options: opts}
}

func ids(qs []exam.Question) []string {
	out := make([]string, len(qs))
	for i, x := range qs {
		out[i] = x.ID
	}
	return out
}

func TestShuffleIsPermutation(t *testing.T) {
	pool := []exam.Question{
		q("q1", "a", "o1", "o2"),
		q("q2", "a", "o1", "o2"),
		q("q3", "a", "o1", "o2"),
		q("q4", "a", "o1", "o2"),
		q("q5", "a", "o1", "o2"),
	}
	rng := rand.New(rand.NewSource(1))
	got := exam.Shuffle(rng, pool)
	if len(got) != len(pool) {
		t.Fatalf("length changed: %d -> %d", len(pool), len(got))
	}
	seen := map[string]int{}
	for _, x := range got {
		seen[x.ID]++
	}
	for _, x := range pool {
		if seen[x.ID] != 1 {
			t.Fatalf("id %s appears %d times", x.ID, seen[x.ID])
		}
	}
	// input untouched
	for i, x := range pool {
		if x.ID != []string{"q1", "q2", "q3", "q4", "q5"}[i] {
			t.Fatalf("input mutated at %d: %s", i, x.ID)
		}
	}
}

func TestShuffleEventuallyReorders(t *testing.T) {
	pool := []exam.Question{q("q1", "a", "o1"), q("q2", "a", "o1"), q("q3", "a", "o1")}
	rng := rand.New(rand.NewSource(42))
	moved := false
	for i := 0; i < 50 && !moved; i++ {
		got := exam.Shuffle(rng, pool)
		for j := range got {
			if got[j].ID != pool[j].ID {
				moved = true
				break
			}
		}
	}
	if !moved {
		t.Fatalf("50 shuffles of a 3-element pool never changed the order")
	}
}

func TestShuffleOptionsLeavesSingletonsAlone(t *testing.T) {
	pool := []exam.Question{
		q("single", "a", "only"),
		q("multi", "a", "o1", "o2", "o3", "o4"),
	}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		got := exam.ShuffleOptions(rng, pool)
		if len(got[0].Options) != 1 || got[0].Options[0].ID != "only" {
			t.Fatalf("singleton option list was disturbed: %+v", got[0].Options)
		}
		seen := map[string]bool{}
		for _, o := range got[1].Options {
			seen[o.ID] = true
		}
		if len(seen) != 4 {
			t.Fatalf("multi options not a permutation: %+v", got[1].Options)
		}
	}
	// original option slices untouched
	if pool[1].Options[0].ID != "o1" {
		t.Fatalf("input options mutated: %+v", pool[1].Options)
	}
}

func TestShuffleByCategoryKeepsBlocksContiguous(t *testing.T) {
	pool := []exam.Question{
		q("a1", "hist", "o1", "o2"), q("b1", "math", "o1", "o2"),
		q("a2", "hist", "o1", "o2"), q("b2", "math", "o1", "o2"),
		q("c1", "geo", "o1", "o2"), q("a3", "hist", "o1", "o2"),
	}
	for seed := int64(0); seed < 25; seed++ {
		rng := rand.New(rand.NewSource(seed))
		got := exam.ShuffleByCategory(rng, pool)
		if len(got) != len(pool) {
			t.Fatalf("seed %d: length changed", seed)
		}
		lastSeen := map[string]int{}
		closed := map[string]bool{}
		for i, x := range got {
			if closed[x.CategoryID] {
				t.Fatalf("seed %d: category %s split across blocks: %v", seed, x.CategoryID, ids(got))
			}
			if prev, ok := lastSeen[x.CategoryID]; ok && prev != i-1 {
				t.Fatalf("seed %d: category %s not contiguous: %v", seed, x.CategoryID, ids(got))
			}
			lastSeen[x.CategoryID] = i
			for cat, at := range lastSeen {
				if cat != x.CategoryID && at < i-1 {
					closed[cat] = true
				}
			}
		}
	}
}

func TestShuffleByCategoryDeterministicWithSeed(t *testing.T) {
	pool := []exam.Question{
		q("a1", "hist", "o1", "o2"), q("b1", "math", "o1", "o2"),
		q("a2", "hist", "o1", "o2"), q("b2", "math", "o1", "o2"),
	}
	first := exam.ShuffleByCategory(rand.New(rand.NewSource(99)), pool)
	second := exam.ShuffleByCategory(rand.New(rand.NewSource(99)), pool)
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("same seed produced different orders: %v vs %v", ids(first), ids(second))
		}
	}
}

func TestApplyQuotas(t *testing.T) {
	pool := []exam.Question{
		q("a1", "hist", "o1"), q("a2", "hist", "o1"), q("a3", "hist", "o1"),
		q("b1", "math", "o1"), q("b2", "math", "o1"),
	}
	rng := rand.New(rand.NewSource(3))
	got := exam.ApplyQuotas(rng, pool, map[string]int{"hist": 2})
	hist, math := 0, 0
	for _, x := range got {
		switch x.CategoryID {
		case "hist":
			hist++
		case "math":
			math++
		}
	}
	if hist != 2 {
		t.Fatalf("hist quota not applied: got %d", hist)
	}
	if math != 2 {
		t.Fatalf("unquota'd category trimmed: got %d", math)
	}
}
