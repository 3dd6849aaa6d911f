package assembly

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/specialistvlad/rf2kit/internal/config"
	"github.com/specialistvlad/rf2kit/internal/modulegraph"
	"github.com/specialistvlad/rf2kit/internal/rf2"
	"github.com/specialistvlad/rf2kit/internal/testutil"
	"github.com/stretchr/testify/require"
)

var (
	conceptHeader      = []string{"id", "effectiveTime", "active", "moduleId", "definitionStatusId"}
	relationshipHeader = []string{"id", "effectiveTime", "active", "moduleId", "sourceId", "destinationId", "characteristicTypeId"}
	dependencyHeader   = []string{"id", "effectiveTime", "active", "moduleId", "refsetId", "referencedComponentId", "sourceEffectiveTime", "targetEffectiveTime"}
)

const statedCharacteristic = "900000000000010007"

var conceptSpec = config.FileSpec{
	ContentType:  "Concept",
	Header:       conceptHeader,
	Dependencies: []string{"definitionStatusId"},
	DataFile:     true,
}

var inferredSpec = config.FileSpec{
	ContentType: "Relationship",
	Header:      relationshipHeader,
	DataFile:    true,
	Exclusions:  []config.Filter{{"characteristicTypeId": statedCharacteristic}},
}

var statedSpec = config.FileSpec{
	ContentType: "StatedRelationship",
	Header:      relationshipHeader,
	DataFile:    true,
	Inclusions:  []config.Filter{{"characteristicTypeId": statedCharacteristic}},
}

var dependencySpec = config.FileSpec{
	ContentType: "ssRefset",
	FileType:    "der2",
	Summary:     config.ModuleDependencySummary,
	Header:      dependencyHeader,
	DataFile:    true,
}

func spec() *config.Specification {
	return &config.Specification{Release: config.Release{Content: []config.Content{
		{Name: "Terminology", Files: []config.FileSpec{conceptSpec, inferredSpec, statedSpec}},
		{Name: "Refset/Metadata", Files: []config.FileSpec{dependencySpec}},
	}}}
}

// sources writes files into a temporary directory and returns every content
// file found there, in name order.
func sources(t *testing.T, files map[string]string) []*rf2.ContentFile {
	t.Helper()
	dir := testutil.WriteFiles(t, t.TempDir(), files)
	a, err := rf2.Open(dir, spec())
	require.NoError(t, err)

	var out []*rf2.ContentFile
	err = a.Visit(context.Background(), func(x rf2.Artifact) error {
		if cf, ok := x.(*rf2.ContentFile); ok {
			out = append(out, cf)
		}
		return nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, out, "no content file recognized")
	return out
}

type result struct {
	rows   []rf2.Row
	report *Report
	log    string
}

func runBuild(t *testing.T, engine *Engine, target Target, srcs []*rf2.ContentFile) result {
	t.Helper()
	ctx, logs := testutil.LogContext()
	var out bytes.Buffer
	report, err := engine.Build(ctx, target, srcs, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\r\n"), "\r\n")
	require.Equal(t, strings.Join(target.Spec.Header, "\t"), lines[0])
	var rows []rf2.Row
	for _, l := range lines[1:] {
		rows = append(rows, rf2.ParseRow(l))
	}
	return result{rows: rows, report: report, log: logs.String()}
}

func newEngine() *Engine {
	return New(modulegraph.New(), 4)
}

func ids(rows []rf2.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID() + "@" + r.EffectiveTime()
	}
	return out
}
