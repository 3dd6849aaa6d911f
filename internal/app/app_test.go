package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/specialistvlad/rf2kit/internal/config"
	"github.com/specialistvlad/rf2kit/internal/hcl"
	"github.com/specialistvlad/rf2kit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var conceptHeader = []string{"id", "effectiveTime", "active", "moduleId", "definitionStatusId"}

type failingLoader struct{}

func (failingLoader) Load(context.Context, ...string) (*config.Specification, error) {
	return nil, errors.New("boom")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed pipe")
}

// setupAppTest creates a new app instance with the built-in specification.
func setupAppTest(t *testing.T, cfg Config) (*App, *bytes.Buffer, *testutil.SafeBuffer) {
	t.Helper()

	cfg.LogLevel = "debug"
	appConfig, err := NewConfig(cfg)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	logs := &testutil.SafeBuffer{}
	a, err := NewApp(out, logs, appConfig, hcl.NewLoader())
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("RF2_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return a, out, logs
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
		check   func(t *testing.T, c *Config)
	}{
		{
			name: "create defaults output directory",
			cfg:  Config{Command: CommandCreate},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultOutDir, c.OutDir)
			},
		},
		{
			name:    "diff needs both paths",
			cfg:     Config{Command: CommandDiff, Base: "a"},
			wantErr: "base and a compare",
		},
		{
			name:    "unknown command",
			cfg:     Config{Command: "check"},
			wantErr: `unknown command "check"`,
		},
		{
			name:    "negative workers",
			cfg:     Config{Command: CommandCreate, WorkerCount: -1},
			wantErr: "negative",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, err := NewConfig(tc.cfg)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			tc.check(t, c)
		})
	}
}

func TestNewApp_LoaderFailure(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(Config{Command: CommandCreate})
	require.NoError(t, err)

	_, err = NewApp(&bytes.Buffer{}, &bytes.Buffer{}, cfg, failingLoader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load specification: boom")
}

func TestNewApp_AppliesReleaseOverrides(t *testing.T) {
	t.Parallel()

	a, _, _ := setupAppTest(t, Config{
		Command: CommandCreate,
		Release: config.Release{Product: "TestRF2", Country: "US", ContentSubTypes: []string{"Full"}},
	})

	r := a.Specification().Release
	assert.Equal(t, "TestRF2", r.Product)
	assert.Equal(t, "US", r.Country)
	assert.Equal(t, "PRODUCTION", r.Status)
	assert.Equal(t, []string{"Full"}, r.ContentSubTypes)
	assert.NotEmpty(t, r.Content)
}

func TestRun_CreateRelease(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"src/sct2_Concept_Snapshot_INT_20190131.txt": testutil.Content(conceptHeader,
			[]string{"100", "20190131", "1", "900000000000207008", "900000000000074008"},
			[]string{"200", "20190131", "0", "900000000000207008", "900000000000074008"},
		),
	})
	outDir := filepath.Join(dir, "out")
	a, out, logs := setupAppTest(t, Config{
		Command: CommandCreate,
		Sources: []string{filepath.Join(dir, "src", "sct2_Concept_Snapshot_INT_20190131.txt")},
		OutDir:  outDir,
		Release: config.Release{Date: "20190131", Time: "120000", ContentSubTypes: []string{"Snapshot"}},
	})

	// --- Act ---
	err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	root := filepath.Join(outDir, "SnomedCT_PRODUCTION_20190131T120000Z")
	assert.Equal(t, root+"\n", out.String())

	concept := testutil.ReadFile(t, filepath.Join(root, "Snapshot", "Terminology", "sct2_Concept_Snapshot_INT_20190131.txt"))
	assert.Equal(t, testutil.Content(conceptHeader,
		[]string{"100", "20190131", "1", "900000000000207008", "900000000000074008"},
		[]string{"200", "20190131", "0", "900000000000207008", "900000000000074008"},
	), concept)

	assert.FileExists(t, filepath.Join(root, "Snapshot", "Refset", "Metadata", "der2_ssRefset_ModuleDependencySnapshot_INT_20190131.txt"))
	assert.FileExists(t, filepath.Join(root, "Documentation", "doc_Readme_Current-en_INT_20190131.txt"))
	assert.NoDirExists(t, filepath.Join(root, "Full"))
	assert.Contains(t, logs.String(), "Module graph.")
}

func TestRun_CreateDefaultsDateAndTime(t *testing.T) {
	t.Parallel()

	outDir := filepath.Join(t.TempDir(), "out")
	a, out, _ := setupAppTest(t, Config{
		Command: CommandCreate,
		OutDir:  outDir,
		Release: config.Release{ContentSubTypes: []string{"Delta"}},
	})
	a.now = func() time.Time { return time.Date(2020, 7, 31, 8, 30, 5, 0, time.UTC) }

	require.NoError(t, a.Run(context.Background()))

	root := filepath.Join(outDir, "SnomedCT_PRODUCTION_20200731T083005Z")
	assert.Equal(t, root+"\n", out.String())
	assert.FileExists(t, filepath.Join(root, "Delta", "Terminology", "sct2_Concept_Delta_INT_20200731.txt"))
}

func TestRun_CreateOutputWriteFailure(t *testing.T) {
	t.Parallel()

	a, _, _ := setupAppTest(t, Config{
		Command: CommandCreate,
		OutDir:  filepath.Join(t.TempDir(), "out"),
		Release: config.Release{Date: "20190131", Time: "120000", ContentSubTypes: []string{"Delta"}},
	})
	a.outW = failingWriter{}

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write release path")
	assert.Contains(t, err.Error(), "closed pipe")
}

func TestRun_CreateRefusesDirectorySources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	outDir := filepath.Join(dir, "out")
	a, out, logs := setupAppTest(t, Config{
		Command: CommandCreate,
		Sources: []string{src},
		OutDir:  outDir,
	})

	require.NoError(t, a.Run(context.Background()))

	assert.Empty(t, out.String())
	assert.Contains(t, logs.String(), "Only .txt and .zip files are accepted as source files.")
	assert.NoDirExists(t, outDir)
}

func TestRun_CreateMissingSource(t *testing.T) {
	t.Parallel()

	a, _, _ := setupAppTest(t, Config{
		Command: CommandCreate,
		Sources: []string{filepath.Join(t.TempDir(), "missing.zip")},
	})

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestRun_Diff(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	name := "sct2_Concept_Snapshot_INT_20190131.txt"
	testutil.WriteFiles(t, dir, map[string]string{
		"base/" + name: testutil.Content(conceptHeader,
			[]string{"100", "20190131", "1", "1", "2"},
			[]string{"200", "20190131", "1", "1", "2"},
		),
		"compare/" + name: testutil.Content(conceptHeader,
			[]string{"100", "20190131", "1", "1", "2"},
			[]string{"300", "20190131", "1", "1", "2"},
		),
	})
	a, out, _ := setupAppTest(t, Config{
		Command: CommandDiff,
		Base:    filepath.Join(dir, "base"),
		Compare: filepath.Join(dir, "compare"),
	})

	// --- Act ---
	err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	want := strings.Join([]string{
		name,
		"  - 200\t20190131\t1\t1\t2",
		"  + 300\t20190131\t1\t1\t2",
	}, "\n") + "\n"
	assert.Equal(t, want, out.String())
}
