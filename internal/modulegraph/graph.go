package modulegraph

import (
	"math"
	"slices"
	"strconv"
	"sync"

	"github.com/specialistvlad/rf2kit/internal/naming"
	"github.com/specialistvlad/rf2kit/internal/rf2"
)

// Sentinels returned by the earliest and latest queries when nothing was
// observed. They are chosen so that latest >= earliest never holds for an
// unknown module or pair.
const (
	NoEarliest int64 = math.MaxInt64
	NoLatest   int64 = math.MinInt64
)

// Pair is an ordered (source, target) module dependency.
type Pair struct {
	Source int64
	Target int64
}

type owner struct {
	module int64
	et     string
}

// reference is a module referencing a component at an effective time.
type reference struct {
	module    int64
	et        string
	component string
}

// Graph accumulates module dependency facts. It is safe for concurrent use;
// Add calls are serialized.
type Graph struct {
	mu         sync.RWMutex
	owners     map[string]owner
	references []reference
	seen       map[reference]struct{}
	removed    map[Pair]struct{}
	dirty      bool
	view       *view
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		owners:  make(map[string]owner),
		seen:    make(map[reference]struct{}),
		removed: make(map[Pair]struct{}),
		view:    newView(),
	}
}

// Add records the facts of one row. dependencies are the values of the
// row's dependency columns; non-numeric values are skipped. Ownership is only
// taken from rows whose content type is not a reference set.
func (g *Graph) Add(row rf2.Row, dependencies []string, contentType string) {
	module, err := strconv.ParseInt(row.ModuleID(), 10, 64)
	if err != nil {
		return
	}
	et := row.EffectiveTime()

	g.mu.Lock()
	defer g.mu.Unlock()

	if !naming.IsRefset(contentType) {
		id := row.ID()
		cur, ok := g.owners[id]
		if !ok || rf2.CompareEffectiveTime(et, cur.et) >= 0 {
			if !ok || cur.module != module {
				g.dirty = true
			}
			g.owners[id] = owner{module: module, et: et}
		}
	}

	if module == rf2.ModelComponentModuleID {
		return
	}
	for _, dep := range dependencies {
		if _, err := strconv.ParseInt(dep, 10, 64); err != nil {
			continue
		}
		ref := reference{module: module, et: et, component: dep}
		if _, ok := g.seen[ref]; ok {
			continue
		}
		g.seen[ref] = struct{}{}
		g.references = append(g.references, ref)
		g.dirty = true
	}
}

// Remove retracts the edge source -> target from the flat view. The
// per-effective-time view and the earliest/latest indexes keep it.
func (g *Graph) Remove(source, target int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removed[Pair{Source: source, Target: target}] = struct{}{}
	g.dirty = true
}

// Get returns the modules source depends on, sorted.
func (g *Graph) Get(source int64) []int64 {
	return sortedKeys(g.current().flat[source])
}

// Has reports whether source depends on target in the flat view.
func (g *Graph) Has(source, target int64) bool {
	_, ok := g.current().flat[source][target]
	return ok
}

// HasAt reports whether source depends on target at exactly the given
// effective time.
func (g *Graph) HasAt(effectiveTime, source, target int64) bool {
	_, ok := g.current().byTime[effectiveTime][source][target]
	return ok
}

// GraphForEffectiveTime returns the dependencies observed at exactly the
// given effective time.
func (g *Graph) GraphForEffectiveTime(effectiveTime int64) map[int64][]int64 {
	return copyMultimap(g.current().byTime[effectiveTime])
}

// ModuleDependencies returns the flat view.
func (g *Graph) ModuleDependencies() map[int64][]int64 {
	return copyMultimap(g.current().flat)
}

// EffectiveTimes returns every effective time with at least one edge, ascending.
func (g *Graph) EffectiveTimes() []int64 {
	return slices.Clone(g.current().times)
}

// EarliestDependency returns the first effective time at which source
// depends on target, or NoEarliest.
func (g *Graph) EarliestDependency(source, target int64) int64 {
	if et, ok := g.current().pairEarliest[Pair{source, target}]; ok {
		return et
	}
	return NoEarliest
}

// LatestDependency returns the last effective time at which source depends
// on target, or NoLatest.
func (g *Graph) LatestDependency(source, target int64) int64 {
	if et, ok := g.current().pairLatest[Pair{source, target}]; ok {
		return et
	}
	return NoLatest
}

// EarliestEffectiveTime returns the first effective time at which module is
// either side of an edge, or NoEarliest.
func (g *Graph) EarliestEffectiveTime(module int64) int64 {
	if et, ok := g.current().moduleEarliest[module]; ok {
		return et
	}
	return NoEarliest
}

// LatestEffectiveTime returns the last effective time at which module is
// either side of an edge, or NoLatest.
func (g *Graph) LatestEffectiveTime(module int64) int64 {
	if et, ok := g.current().moduleLatest[module]; ok {
		return et
	}
	return NoLatest
}

// current returns an up to date view, rebuilding it if facts changed.
func (g *Graph) current() *view {
	g.mu.RLock()
	if !g.dirty {
		v := g.view
		g.mu.RUnlock()
		return v
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.dirty {
		g.view = g.build()
		g.dirty = false
	}
	return g.view
}

// build resolves references against ownership. Callers hold the write lock.
func (g *Graph) build() *view {
	v := newView()
	for _, ref := range g.references {
		o, ok := g.owners[ref.component]
		if !ok || o.module == ref.module {
			continue
		}
		p := Pair{Source: ref.module, Target: o.module}
		if _, gone := g.removed[p]; !gone {
			addEdge(v.flat, p)
		}
		et, err := strconv.ParseInt(ref.et, 10, 64)
		if err != nil {
			continue
		}
		v.observe(et, p)
	}
	v.times = sortedKeys(v.byTime)
	return v
}
