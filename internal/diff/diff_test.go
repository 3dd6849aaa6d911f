package diff

import (
	"bytes"
	"context"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/rf2kit/internal/config"
	"github.com/specialistvlad/rf2kit/internal/rf2"
	"github.com/specialistvlad/rf2kit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	conceptHeader = []string{"id", "effectiveTime", "active", "moduleId", "definitionStatusId"}
	otherHeader   = []string{"id", "effectiveTime", "active", "moduleId"}
)

const conceptFile = "sct2_Concept_Snapshot_INT_20190131.txt"

func testSpec() *config.Specification {
	return &config.Specification{Release: config.Release{Content: []config.Content{
		{Name: "Terminology", Files: []config.FileSpec{
			{ContentType: "Concept", Header: conceptHeader, DataFile: true},
			{ContentType: "Concept", Summary: "Other", Header: otherHeader, DataFile: true},
		}},
	}}}
}

func open(t *testing.T, p string) rf2.Artifact {
	t.Helper()
	a, err := rf2.Open(p, testSpec())
	require.NoError(t, err)
	t.Cleanup(func() { rf2.Close(a) })
	return a
}

func writeFile(t *testing.T, header []string, rows ...[]string) rf2.Artifact {
	t.Helper()
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{conceptFile: testutil.Content(header, rows...)})
	return open(t, filepath.Join(dir, conceptFile))
}

func run(t *testing.T, base, compare rf2.Artifact) (string, Stats) {
	t.Helper()
	var buf bytes.Buffer
	stats, err := Diff(context.Background(), base, compare, &buf)
	require.NoError(t, err)
	return buf.String(), stats
}

var (
	row1  = []string{"1", "20190101", "1", "2", "x"}
	row2  = []string{"2", "20190101", "1", "2", "x"}
	row2b = []string{"2", "20190101", "0", "2", "x"}
	row3  = []string{"3", "20180101", "1", "2", "x"}
)

func TestFiles_IdenticalIsEmpty(t *testing.T) {
	t.Parallel()
	a := writeFile(t, conceptHeader, row1, row2, row3)
	b := writeFile(t, conceptHeader, row3, row2, row1)

	report, stats := run(t, a, b)

	assert.Empty(t, report)
	assert.True(t, stats.Empty())
}

func TestFiles_Report(t *testing.T) {
	t.Parallel()
	base := writeFile(t, conceptHeader, row1, row2, row3)
	compare := writeFile(t, conceptHeader, row2b, row1, []string{"4", "20190201", "1", "2", "x"})

	report, stats := run(t, base, compare)

	want := strings.Join([]string{
		"- 3\t20180101\t1\t2\tx",
		"- 2\t20190101\t1\t2\tx",
		"+ 2\t20190101\t0\t2\tx",
		"+ 4\t20190201\t1\t2\tx",
	}, "\n") + "\n"
	if diff := cmp.Diff(want, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, Stats{Added: 2, Removed: 2}, stats)
}

func TestFiles_ReportsAreMirrorImages(t *testing.T) {
	t.Parallel()
	a := writeFile(t, conceptHeader, row1, row2, row3)
	b := writeFile(t, conceptHeader, row2b, []string{"5", "", "1", "2", "x"})

	forward, _ := run(t, a, b)
	backward, _ := run(t, b, a)

	flip := strings.NewReplacer("\n+ ", "\n- ", "\n- ", "\n+ ")
	mirrored := strings.Split(strings.TrimPrefix(flip.Replace("\n"+backward), "\n"), "\n")
	got := strings.Split(forward, "\n")
	sort.Strings(mirrored)
	sort.Strings(got)
	assert.Equal(t, got, mirrored)
}

func TestDiff_Incompatible(t *testing.T) {
	t.Parallel()
	concept := writeFile(t, conceptHeader, row1)
	other := writeFile(t, otherHeader)
	dir := open(t, t.TempDir())

	_, err := Diff(context.Background(), concept, other, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrIncompatible, "different headers")

	_, err = Diff(context.Background(), concept, dir, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrIncompatible, "file against directory")
}

func TestTrees_NestedIndentation(t *testing.T) {
	t.Parallel()
	base := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"Full/Terminology/" + conceptFile: testutil.Content(conceptHeader, row1),
	})
	compare := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"Full/Terminology/" + conceptFile: testutil.Content(conceptHeader, row1, row2),
	})

	report, _ := run(t, open(t, base), open(t, compare))

	assert.Equal(t, "Full\n  Terminology\n    "+conceptFile+"\n      + 2\t20190101\t1\t2\tx\n", report)
}

func TestTrees_TypeMismatchAdvancesBaseOnly(t *testing.T) {
	t.Parallel()
	withDir := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"Terminology/" + conceptFile: testutil.Content(conceptHeader),
		conceptFile:                  testutil.Content(conceptHeader, row1),
	})
	withoutDir := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		conceptFile: testutil.Content(conceptHeader, row1),
	})

	forward, _ := run(t, open(t, withDir), open(t, withoutDir))
	assert.Equal(t, "- Terminology\n", forward)

	backward, _ := run(t, open(t, withoutDir), open(t, withDir))
	assert.Equal(t, "- "+conceptFile+"\n+ Terminology\n+ "+conceptFile+"\n", backward)
}

func TestTrees_UnrecognizedEntries(t *testing.T) {
	t.Parallel()
	base := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"notes.txt": "n",
		conceptFile: testutil.Content(conceptHeader, row1),
	})
	compare := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		conceptFile: testutil.Content(conceptHeader, row1),
		"zz.txt":    "z",
	})

	report, stats := run(t, open(t, base), open(t, compare))

	assert.Equal(t, "? notes.txt\n+ zz.txt\n", report)
	assert.Equal(t, Stats{Added: 1, Unrecognized: 1}, stats)
}

func TestDiff_ArchiveAgainstDirectory(t *testing.T) {
	t.Parallel()
	files := map[string]string{"Terminology/" + conceptFile: testutil.Content(conceptHeader, row1, row2)}
	dir := testutil.WriteFiles(t, t.TempDir(), files)
	archive := testutil.WriteZip(t, filepath.Join(t.TempDir(), "release.zip"), files)

	report, stats := run(t, open(t, archive), open(t, dir))

	assert.Empty(t, report)
	assert.True(t, stats.Empty())
}

func TestDiff_Cancelled(t *testing.T) {
	t.Parallel()
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{conceptFile: testutil.Content(conceptHeader, row1)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Diff(ctx, open(t, dir), open(t, dir), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}
