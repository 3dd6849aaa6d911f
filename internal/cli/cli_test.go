package cli

import (
	"bytes"
	"testing"

	"github.com/specialistvlad/rf2kit/internal/app"
	"github.com/specialistvlad/rf2kit/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Create(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{
		"create",
		"-o", "out",
		"-p", "InternationalRF2",
		"-s", "ALPHA",
		"-d", "20190131",
		"-t", "120000",
		"-c", "US",
		"-n", "1000124",
		"-C", "Snapshot", "-C", "Delta",
		"--archive",
		"--spec", "extension.hcl",
		"--log-level", "DEBUG",
		"--log-format", "text",
		"--workers", "4",
		"a.zip", "sct2_Concept_Delta_INT_20190131.txt",
	}

	// --- Act ---
	cfg, shouldExit, err := Parse(args, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, &app.Config{
		Command:   app.CommandCreate,
		SpecPaths: []string{"extension.hcl"},
		Sources:   []string{"a.zip", "sct2_Concept_Delta_INT_20190131.txt"},
		OutDir:    "out",
		Release: config.Release{
			Product:         "InternationalRF2",
			Status:          "ALPHA",
			Country:         "US",
			Namespace:       "1000124",
			Date:            "20190131",
			Time:            "120000",
			ContentSubTypes: []string{"Snapshot", "Delta"},
		},
		Archive:     true,
		LogFormat:   "text",
		LogLevel:    "debug",
		WorkerCount: 4,
	}, cfg)
}

func TestParse_CreateDefaults(t *testing.T) {
	t.Parallel()

	cfg, shouldExit, err := Parse([]string{"create"}, &bytes.Buffer{})

	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, app.DefaultOutDir, cfg.OutDir)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Sources)
	assert.Empty(t, cfg.Release.ContentSubTypes)
	assert.False(t, cfg.Archive)
}

func TestParse_Diff(t *testing.T) {
	t.Parallel()

	cfg, shouldExit, err := Parse([]string{"diff", "--spec", "a.hcl", "--spec", "b.hcl", "base.zip", "compare"}, &bytes.Buffer{})

	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, app.CommandDiff, cfg.Command)
	assert.Equal(t, "base.zip", cfg.Base)
	assert.Equal(t, "compare", cfg.Compare)
	assert.Equal(t, []string{"a.hcl", "b.hcl"}, cfg.SpecPaths)
}

func TestParse_ShouldExit(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "root help", args: []string{"-h"}},
		{name: "create help", args: []string{"create", "--help"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := &bytes.Buffer{}
			cfg, shouldExit, err := Parse(tc.args, out)

			require.NoError(t, err)
			assert.True(t, shouldExit)
			assert.Nil(t, cfg)
			assert.Contains(t, out.String(), "Usage:")
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{
			name:    "unknown flag",
			args:    []string{"create", "--this-is-not-a-valid-flag"},
			wantMsg: "unknown flag: --this-is-not-a-valid-flag",
		},
		{
			name:    "diff needs two paths",
			args:    []string{"diff", "base.zip"},
			wantMsg: "accepts 2 arg(s), received 1",
		},
		{
			name:    "invalid log level",
			args:    []string{"create", "--log-level", "verbose"},
			wantMsg: "invalid log-level",
		},
		{
			name:    "invalid log format",
			args:    []string{"diff", "--log-format", "xml", "a", "b"},
			wantMsg: "invalid log-format",
		},
		{
			name:    "negative workers",
			args:    []string{"create", "--workers=-2"},
			wantMsg: "negative",
		},
		{
			name:    "unknown command",
			args:    []string{"check"},
			wantMsg: `unknown command "check"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, shouldExit, err := Parse(tc.args, &bytes.Buffer{})

			require.Error(t, err)
			assert.False(t, shouldExit)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}

// Not parallel: the environment is process wide.
func TestParse_Environment(t *testing.T) {
	t.Setenv("RF2_LOG_LEVEL", "warn")
	t.Setenv("RF2_OUTDIR", "from-env")
	t.Setenv("RF2_PRODUCT", "EnvProduct")

	cfg, _, err := Parse([]string{"create", "--product", "FlagProduct"}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "from-env", cfg.OutDir)
	assert.Equal(t, "FlagProduct", cfg.Release.Product, "flags win over the environment")
}
