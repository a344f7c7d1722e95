package exam

import "math/rand"

// Shuffle returns a uniformly random permutation of pool without mutating it.
// The generator is injected so callers can seed it for reproducible orders.
func Shuffle(rng *rand.Rand, pool []Question) []Question {
	out := make([]Question, len(pool))
	copy(out, pool)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ShuffleOptions returns a copy of qs with each question's option order
// shuffled independently. Questions with exactly one option keep their
// option list untouched: a single-option question is "correct once answered"
// and must never have that shape disturbed.
func ShuffleOptions(rng *rand.Rand, qs []Question) []Question {
	out := make([]Question, len(qs))
	copy(out, qs)
	for i := range out {
		if len(out[i].Options) == 1 {
			continue
		}
		opts := make([]Option, len(out[i].Options))
		copy(opts, out[i].Options)
		for k := len(opts) - 1; k > 0; k-- {
			j := rng.Intn(k + 1)
			opts[k], opts[j] = opts[j], opts[k]
		}
		out[i].Options = opts
	}
	return out
}

// ShuffleByCategory shuffles the question order within each category, the
// options within each question, and the order of the categories themselves,
// then concatenates. Questions sharing a category always end up contiguous;
// which category comes first is random.
func ShuffleByCategory(rng *rand.Rand, qs []Question) []Question {
	groups := map[string][]Question{}
	var order []string
	for _, q := range qs {
		if _, ok := groups[q.CategoryID]; !ok {
			order = append(order, q.CategoryID)
		}
		groups[q.CategoryID] = append(groups[q.CategoryID], q)
	}
	// Walk the insertion order, not the map, so a seeded generator produces
	// the same sequence of draws every run.
	for _, id := range order {
		groups[id] = ShuffleOptions(rng, Shuffle(rng, groups[id]))
	}
	for i := len(order) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	out := make([]Question, 0, len(qs))
	for _, id := range order {
		out = append(out, groups[id]...)
	}
	return out
}

// ApplyQuotas trims a pool down to at most quota[category] questions per
// category, picking randomly within each category. Categories without a
// quota entry keep all their questions.
func ApplyQuotas(rng *rand.Rand, pool []Question, quotas map[string]int) []Question {
	if len(quotas) == 0 {
		return pool
	}
	groups := map[string][]Question{}
	var order []string
	for _, q := range pool {
		if _, ok := groups[q.CategoryID]; !ok {
			order = append(order, q.CategoryID)
		}
		groups[q.CategoryID] = append(groups[q.CategoryID], q)
	}
	out := make([]Question, 0, len(pool))
	for _, id := range order {
		g := Shuffle(rng, groups[id])
		if n, ok := quotas[id]; ok && n < len(g) {
			g = g[:n]
		}
		out = append(out, g...)
	}
	return out
}
