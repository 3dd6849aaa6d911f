package assembly

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"sync"

	"github.com/specialistvlad/rf2kit/internal/config"
	"github.com/specialistvlad/rf2kit/internal/ctxlog"
	"github.com/specialistvlad/rf2kit/internal/modulegraph"
	"github.com/specialistvlad/rf2kit/internal/rf2"
)

// Target describes the file being built.
type Target struct {
	Spec        config.FileSpec
	SubType     rf2.SubType
	ReleaseDate string
}

// Engine builds target files. The module graph is shared by every build of
// one release, so files must be built in dependency order: component files
// before module dependency files.
type Engine struct {
	graph   *modulegraph.Graph
	workers int
}

// New creates an engine feeding graph. workers bounds the parallel Snapshot
// selection pass; values below 1 mean GOMAXPROCS.
func New(graph *modulegraph.Graph, workers int) *Engine {
	return &Engine{graph: graph, workers: workers}
}

// Graph returns the module graph fed by the engine.
func (e *Engine) Graph() *modulegraph.Graph { return e.graph }

// Report summarizes one build.
type Report struct {
	// Rows maps the location of every accepted source to the number of rows
	// it contributed, zero included.
	Rows    map[string]int
	Written int
}

// Build writes the header and rows of t to w, reading rows from every
// source t accepts. Row-level problems are logged and skipped; read and
// write failures abort the build.
func (e *Engine) Build(ctx context.Context, t Target, sources []*rf2.ContentFile, w io.Writer) (*Report, error) {
	ctx = ctxlog.With(ctx, "contentType", t.Spec.ContentType, "subType", t.SubType.String())
	b := &build{
		engine:     e,
		target:     t,
		ledger:     NewLedger(),
		filter:     NewRowFilter(t.Spec),
		idx:        t.Spec.HeaderIndex(),
		out:        rf2.NewRowWriter(w),
		counts:     newCounters(),
		moduleDeps: t.Spec.IsModuleDependencyFile(),
		logger:     ctxlog.FromContext(ctx),
	}
	for _, s := range sources {
		if AcceptsFile(t.Spec, s) {
			b.sources = append(b.sources, s)
		}
	}

	if err := b.out.WriteHeader(t.Spec.Header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := b.run(ctx); err != nil {
		return nil, err
	}
	if err := b.out.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush rows: %w", err)
	}

	report := &Report{Rows: b.counts.snapshot(), Written: b.written}
	locations := make([]string, 0, len(report.Rows))
	for loc := range report.Rows {
		locations = append(locations, loc)
	}
	slices.Sort(locations)
	for _, loc := range locations {
		b.logger.Info("Copied rows.", "rows", report.Rows[loc], "source", loc)
	}
	return report, nil
}

type build struct {
	engine     *Engine
	target     Target
	sources    []*rf2.ContentFile
	ledger     *Ledger
	filter     RowFilter
	idx        map[string]int
	out        *rf2.RowWriter
	counts     *counters
	moduleDeps bool
	logger     *slog.Logger
	written    int
}

func (b *build) run(ctx context.Context) error {
	switch {
	case b.target.SubType.IsFull():
		return b.scan(ctx, false, b.full)
	case b.target.SubType.IsSnapshot():
		if err := b.scan(ctx, true, b.selectWinner); err != nil {
			return err
		}
		return b.scan(ctx, false, b.writeWinner)
	case b.target.SubType.IsDelta():
		return b.scan(ctx, false, b.delta)
	}
	return fmt.Errorf("unsupported content sub type %q", b.target.SubType)
}

type rowFunc func(ctx context.Context, source string, r rf2.Row) error

// scan visits the filtered rows of every accepted source. Every source is
// registered with a zero count before its first row.
func (b *build) scan(ctx context.Context, parallel bool, fn rowFunc) error {
	for _, s := range b.sources {
		loc := s.Location()
		b.counts.add(loc, 0)
		visit := func(r rf2.Row) error {
			if !b.filter(r) {
				return nil
			}
			return fn(ctx, loc, r)
		}
		var err error
		if parallel {
			err = s.RowsParallel(ctx, b.engine.workers, visit)
		} else {
			err = s.Rows(ctx, visit)
		}
		if err != nil {
			return fmt.Errorf("failed to read rows of %s: %w", loc, err)
		}
	}
	return nil
}

// collect feeds the module graph with the row.
func (b *build) collect(r rf2.Row) {
	b.engine.graph.Add(r, dependencyValues(b.target.Spec, b.idx, r), b.target.Spec.ContentType)
}

// admit records r in the ledger and reports whether it is new.
func (b *build) admit(r rf2.Row, outcome Outcome) bool {
	switch outcome {
	case Duplicate:
		return false
	case Conflict:
		b.logger.Warn("Skipping duplicate row with the same id and effective time but different content.",
			"id", r.ID(), "effectiveTime", r.EffectiveTime())
		return false
	}
	return true
}

func (b *build) write(source string, r rf2.Row) error {
	if err := b.out.WriteRow(r); err != nil {
		return fmt.Errorf("failed to write row %s: %w", r.ID(), err)
	}
	b.counts.add(source, 1)
	b.written++
	return nil
}

func (b *build) full(ctx context.Context, source string, r rf2.Row) error {
	b.collect(r)
	if !b.admit(r, b.ledger.Record(r)) {
		return nil
	}
	if !b.moduleDeps {
		return b.write(source, r)
	}

	d, ok := b.parseDependency(r)
	if !ok {
		return nil
	}
	g := b.engine.graph
	if !g.Has(d.Source, d.Target) {
		b.logger.Info("Extra dependency found in Full file, skipping.", "row", r.ID(), "source", d.Source, "target", d.Target)
		return nil
	}
	et, err := strconv.ParseInt(r.EffectiveTime(), 10, 64)
	if err != nil || !g.HasAt(et, d.Source, d.Target) {
		b.logger.Info("Full release is missing the dependency pair at this effective time, skipping.",
			"source", d.Source, "target", d.Target, "effectiveTime", r.EffectiveTime())
		return nil
	}
	return b.write(source, ReconcileWithGraph(ctx, g, r, d))
}

func (b *build) selectWinner(ctx context.Context, source string, r rf2.Row) error {
	b.collect(r)
	b.admit(r, b.ledger.Offer(r))
	return nil
}

func (b *build) writeWinner(ctx context.Context, source string, r rf2.Row) error {
	if !b.ledger.Take(r.ID(), r.EffectiveTime()) {
		return nil
	}
	if !b.moduleDeps {
		return b.write(source, r)
	}

	d, ok := b.parseDependency(r)
	if !ok {
		return nil
	}
	g := b.engine.graph
	if !g.Has(d.Source, d.Target) {
		b.logger.Info("Extra dependency found in Snapshot file, skipping.", "row", r.ID(), "source", d.Source, "target", d.Target)
		return nil
	}
	return b.write(source, ReconcileWithGraph(ctx, g, r, d))
}

func (b *build) delta(ctx context.Context, source string, r rf2.Row) error {
	b.collect(r)
	if r.EffectiveTime() != b.target.ReleaseDate {
		return nil
	}
	if !b.admit(r, b.ledger.Record(r)) {
		return nil
	}
	if !b.moduleDeps {
		return b.write(source, r)
	}

	d, ok := b.parseDependency(r)
	if !ok {
		return nil
	}
	g := b.engine.graph
	if g.Has(d.Source, d.Target) {
		return b.write(source, ReconcileWithGraph(ctx, g, r, d))
	}
	added := NewDependencyRow(g, b.target.ReleaseDate, d.Source, d.Target, len(b.target.Spec.Header))
	b.logger.Info("Added missing module dependency row to Delta file.", "row", added.ID(), "source", d.Source, "target", d.Target)
	return b.write(source, added)
}

func (b *build) parseDependency(r rf2.Row) (Dependency, bool) {
	d, err := ParseDependency(r)
	if err != nil {
		b.logger.Warn("Skipping module dependency row.", "row", r.ID(), "error", err)
		return Dependency{}, false
	}
	return d, true
}

// counters tracks rows written per source.
type counters struct {
	mu sync.Mutex
	m  map[string]int
}

func newCounters() *counters {
	return &counters{m: make(map[string]int)}
}

func (c *counters) add(source string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[source] += n
}

func (c *counters) snapshot() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.m)
}
