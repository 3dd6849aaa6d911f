package assembly

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/specialistvlad/rf2kit/internal/ctxlog"
	"github.com/specialistvlad/rf2kit/internal/modulegraph"
	"github.com/specialistvlad/rf2kit/internal/rf2"
)

// Columns of a module dependency row.
const (
	colSourceModule        = rf2.ColModuleID
	colTargetModule        = 5
	colSourceEffectiveTime = 6
	colTargetEffectiveTime = 7
	dependencyColumns      = 8
)

// Dependency is the parsed content of a module dependency row.
type Dependency struct {
	Source              int64
	Target              int64
	SourceEffectiveTime int64
	TargetEffectiveTime int64
}

// ParseDependency reads the module and effective time columns of r.
func ParseDependency(r rf2.Row) (Dependency, error) {
	if len(r) < dependencyColumns {
		return Dependency{}, fmt.Errorf("module dependency row has %d fields, want %d", len(r), dependencyColumns)
	}
	var (
		d    Dependency
		errs [4]error
	)
	d.Source, errs[0] = strconv.ParseInt(r[colSourceModule], 10, 64)
	d.Target, errs[1] = strconv.ParseInt(r[colTargetModule], 10, 64)
	d.SourceEffectiveTime, errs[2] = strconv.ParseInt(r[colSourceEffectiveTime], 10, 64)
	d.TargetEffectiveTime, errs[3] = strconv.ParseInt(r[colTargetEffectiveTime], 10, 64)
	for _, err := range errs {
		if err != nil {
			return Dependency{}, fmt.Errorf("malformed module dependency row: %w", err)
		}
	}
	return d, nil
}

// Reconcile aligns the declared effective times of a dependency row with
// the graph: the source time becomes the latest time the pair was observed,
// the target time the earliest. Nothing changes when the pair was never
// observed. It returns r itself when no field changes, a modified copy
// otherwise.
func Reconcile(ctx context.Context, r rf2.Row, d Dependency, latest, earliest int64) rf2.Row {
	if latest < earliest {
		return r
	}
	logger := ctxlog.FromContext(ctx)
	out := r
	if d.SourceEffectiveTime != latest || d.TargetEffectiveTime != earliest {
		out = r.Clone()
	}
	if d.SourceEffectiveTime != latest {
		out[colSourceEffectiveTime] = strconv.FormatInt(latest, 10)
		logger.Info("Changed source effective time.", "from", d.SourceEffectiveTime, "to", latest, "row", r.ID())
	}
	if d.TargetEffectiveTime != earliest {
		out[colTargetEffectiveTime] = strconv.FormatInt(earliest, 10)
		logger.Info("Changed target effective time.", "from", d.TargetEffectiveTime, "to", earliest, "row", r.ID())
	}
	return out
}

// ReconcileWithGraph is Reconcile using the pair's bounds from g.
func ReconcileWithGraph(ctx context.Context, g *modulegraph.Graph, r rf2.Row, d Dependency) rf2.Row {
	return Reconcile(ctx, r, d, g.LatestDependency(d.Source, d.Target), g.EarliestDependency(d.Source, d.Target))
}

// NewDependencyRow synthesizes a module dependency row for a pair that has
// no declaration. The source effective time is the latest time the source
// module was observed, the target effective time the earliest time the
// target module was observed; releaseDate stands in for either when the
// module is unknown. width pads the row to the target header.
func NewDependencyRow(g *modulegraph.Graph, releaseDate string, source, target int64, width int) rf2.Row {
	sourceET := releaseDate
	if et := g.LatestEffectiveTime(source); et != modulegraph.NoLatest {
		sourceET = strconv.FormatInt(et, 10)
	}
	targetET := releaseDate
	if et := g.EarliestEffectiveTime(target); et != modulegraph.NoEarliest {
		targetET = strconv.FormatInt(et, 10)
	}
	row := rf2.Row{
		uuid.NewString(),
		releaseDate,
		"1",
		strconv.FormatInt(source, 10),
		rf2.ModuleDependencyRefsetID,
		strconv.FormatInt(target, 10),
		sourceET,
		targetET,
	}
	for len(row) < width {
		row = append(row, "")
	}
	return row
}
