package exam

import "sort"

type NavState int

const (
	NavIdle NavState = iota
	NavInProgress
	NavFinished // terminal
)

// Navigator gates which question index may become current. Under free
// navigation any in-range index is reachable; under sequential navigation the
// only reachable index besides the current one is current+1. Out-of-policy
// moves are silently rejected, never errors: they are routinely produced by
// disabled UI affordances.
type Navigator struct {
	state   NavState
	current int
	total   int
	free    bool
	marked  map[int]struct{}
}

func NewNavigator(total int, free bool) *Navigator {
	return &Navigator{
		state:  NavIdle,
		total:  total,
		free:   free,
		marked: map[int]struct{}{},
	}
}

// Start moves idle -> inProgress at index 0.
func (n *Navigator) Start() {
	if n.state == NavIdle {
		n.state = NavInProgress
	}
}

// Finish is terminal; no further moves are honored.
func (n *Navigator) Finish() { n.state = NavFinished }

func (n *Navigator) State() NavState { return n.state }
func (n *Navigator) Current() int    { return n.current }
func (n *Navigator) Total() int      { return n.total }
func (n *Navigator) Free() bool      { return n.free }

// OnLast reports whether the current question is the final one.
func (n *Navigator) OnLast() bool { return n.current == n.total-1 }

// JumpTo reports whether the move was honored. Navigation never touches
// ledger state; answers persist across moves.
func (n *Navigator) JumpTo(target int) bool {
	if n.state != NavInProgress || target < 0 || target >= n.total {
		return false
	}
	if target == n.current {
		return true
	}
	if !n.free && target != n.current+1 {
		return false
	}
	n.current = target
	return true
}

func (n *Navigator) Next() bool { return n.JumpTo(n.current + 1) }

// Back is disabled under sequential navigation.
func (n *Navigator) Back() bool {
	if !n.free {
		return false
	}
	return n.JumpTo(n.current - 1)
}

// Mark toggles the "flag for later" bit on an index. Only meaningful under
// free navigation; a no-op otherwise.
func (n *Navigator) Mark(i int) {
	if !n.free || n.state != NavInProgress || i < 0 || i >= n.total {
		return
	}
	if _, ok := n.marked[i]; ok {
		delete(n.marked, i)
		return
	}
	n.marked[i] = struct{}{}
}

func (n *Navigator) IsMarked(i int) bool {
	_, ok := n.marked[i]
	return ok
}

func (n *Navigator) MarkedIndices() []int {
	out := make([]int, 0, len(n.marked))
	for i := range n.marked {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
