// Package selection implements the two-cluster selection state machine.
//
// The interaction cycle is three clicks: the first selection seeds cluster
// A, the second seeds cluster B, and a third starts over with a fresh A.
// Clusters are disjoint by construction because a selection event assigns
// its indices to exactly one cluster.
package selection

import "sort"

// State names the machine's position in the selection cycle.
type State int

const (
	// StateEmpty means neither cluster holds indices.
	StateEmpty State = iota
	// StateFillingA means A is populated and B is still empty.
	StateFillingA
	// StateComplete means both clusters are populated.
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateFillingA:
		return "filling_a"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Machine holds the current cluster assignment. It is not safe for
// concurrent use; the session service serializes access.
type Machine struct {
	state   State
	a, b    []int
	version uint64
}

// New returns a Machine in StateEmpty.
func New() *Machine {
	return &Machine{state: StateEmpty}
}

// Apply feeds a selection event into the machine. An empty event is a
// no-op and returns false. A non-empty event transitions:
//
//	Empty     -> A=S, FillingA
//	FillingA  -> B=S\A, Complete
//	Complete  -> A=S, B cleared, FillingA
//
// Indices already held by A are excluded from B so the clusters stay
// disjoint; a second selection lying entirely inside A is a no-op.
func (m *Machine) Apply(indices []int) bool {
	s := normalize(indices)
	if len(s) == 0 {
		return false
	}

	switch m.state {
	case StateEmpty:
		m.a = s
		m.state = StateFillingA
	case StateFillingA:
		b := difference(s, m.a)
		if len(b) == 0 {
			return false
		}
		m.b = b
		m.state = StateComplete
	case StateComplete:
		m.a = s
		m.b = nil
		m.state = StateFillingA
	}
	m.version++
	return true
}

// Reset clears both clusters and returns to StateEmpty.
func (m *Machine) Reset() {
	if m.state == StateEmpty && len(m.a) == 0 && len(m.b) == 0 {
		return
	}
	m.a, m.b = nil, nil
	m.state = StateEmpty
	m.version++
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Complete reports whether both clusters are populated.
func (m *Machine) Complete() bool { return m.state == StateComplete }

// ClusterA returns a copy of cluster A's indices, sorted ascending.
func (m *Machine) ClusterA() []int { return append(make([]int, 0, len(m.a)), m.a...) }

// ClusterB returns a copy of cluster B's indices, sorted ascending.
func (m *Machine) ClusterB() []int { return append(make([]int, 0, len(m.b)), m.b...) }

// Version increases on every state-changing transition. In-flight fetch
// results are applied only if the version they were issued under is still
// current.
func (m *Machine) Version() uint64 { return m.version }

// difference returns the elements of s not present in excl. Both inputs
// are sorted; the result preserves order.
func difference(s, excl []int) []int {
	in := make(map[int]struct{}, len(excl))
	for _, i := range excl {
		in[i] = struct{}{}
	}
	out := make([]int, 0, len(s))
	for _, i := range s {
		if _, ok := in[i]; ok {
			continue
		}
		out = append(out, i)
	}
	return out
}

// normalize drops duplicates and negative indices and sorts the rest.
func normalize(indices []int) []int {
	seen := make(map[int]struct{}, len(indices))
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if i < 0 {
			continue
		}
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
