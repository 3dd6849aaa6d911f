package modulegraph

import (
	"cmp"
	"slices"
)

type set map[int64]struct{}

// view is an immutable resolution of the accumulated facts.
type view struct {
	flat           map[int64]set
	byTime         map[int64]map[int64]set
	pairEarliest   map[Pair]int64
	pairLatest     map[Pair]int64
	moduleEarliest map[int64]int64
	moduleLatest   map[int64]int64
	times          []int64
}

func newView() *view {
	return &view{
		flat:           make(map[int64]set),
		byTime:         make(map[int64]map[int64]set),
		pairEarliest:   make(map[Pair]int64),
		pairLatest:     make(map[Pair]int64),
		moduleEarliest: make(map[int64]int64),
		moduleLatest:   make(map[int64]int64),
	}
}

func (v *view) observe(et int64, p Pair) {
	g, ok := v.byTime[et]
	if !ok {
		g = make(map[int64]set)
		v.byTime[et] = g
	}
	addEdge(g, p)

	widen(v.pairEarliest, v.pairLatest, p, et)
	widen(v.moduleEarliest, v.moduleLatest, p.Source, et)
	widen(v.moduleEarliest, v.moduleLatest, p.Target, et)
}

func widen[K comparable](earliest, latest map[K]int64, k K, et int64) {
	if cur, ok := earliest[k]; !ok || et < cur {
		earliest[k] = et
	}
	if cur, ok := latest[k]; !ok || et > cur {
		latest[k] = et
	}
}

func addEdge(m map[int64]set, p Pair) {
	s, ok := m[p.Source]
	if !ok {
		s = make(set)
		m[p.Source] = s
	}
	s[p.Target] = struct{}{}
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func copyMultimap(m map[int64]set) map[int64][]int64 {
	out := make(map[int64][]int64, len(m))
	for k, s := range m {
		out[k] = sortedKeys(s)
	}
	return out
}
