package cli

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/rf2kit/internal/app"
	"github.com/specialistvlad/rf2kit/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables that stand in for flags,
// e.g. RF2_LOG_LEVEL or RF2_OUTDIR.
const EnvPrefix = "RF2"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var result *app.Config
	root := newRootCommand(func(cfg *app.Config) { result = cfg })
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	if err := root.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return nil, false, exitErr
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	// Help, or no command at all.
	if result == nil {
		slog.Debug("No command run, exiting.")
		return nil, true, nil
	}
	slog.Debug("CLI parser finished successfully.", "config", result)
	return result, false, nil
}

func newRootCommand(done func(*app.Config)) *cobra.Command {
	root := &cobra.Command{
		Use:   "rf2",
		Short: "Create and compare RF2 releases",
		Long: `rf2 assembles RF2 terminology releases from source files and archives,
and compares releases, directories and files with each other.

The release layout is described by an HCL specification. A built-in
specification is always loaded; --spec documents are merged over it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringSlice("spec", nil, "HCL specification file or directory merged over the built-in one (repeatable)")
	pf.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	pf.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.Int("workers", 0, "Number of concurrent row readers. 0 uses every available CPU.")

	root.AddCommand(newCreateCommand(done), newDiffCommand(done))
	return root
}

func newCreateCommand(done func(*app.Config)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [flags] [SOURCE...]",
		Short: "Create an RF2 release from a set of RF2 files and/or archives",
		Long: `Create an RF2 release from a set of RF2 files and/or archives.

Every SOURCE must be a .txt content file or a .zip release archive.
Release naming values not given on the command line come from the
specification; the date defaults to today and the time to now (UTC).`,
		Example: `  rf2 create -o target -p InternationalRF2 -d 20190131 -C Snapshot release.zip
  rf2 create --spec extension.hcl --archive sct2_Concept_Delta_US1000124_20190301.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, common, err := commonConfig(cmd)
			if err != nil {
				return err
			}
			common.Command = app.CommandCreate
			common.Sources = args
			common.OutDir = v.GetString("outdir")
			common.Archive = v.GetBool("archive")
			common.Release = config.Release{
				Product:         v.GetString("product"),
				Status:          v.GetString("status"),
				Country:         v.GetString("country"),
				Namespace:       v.GetString("namespace"),
				Date:            v.GetString("date"),
				Time:            v.GetString("time"),
				ContentSubTypes: v.GetStringSlice("contentsubtype"),
			}
			return finish(common, done)
		},
	}

	f := cmd.Flags()
	f.StringP("outdir", "o", app.DefaultOutDir, "Output directory where the release will be created.")
	f.StringP("product", "p", "", "The [Product] value in the release name.")
	f.StringP("status", "s", "", "The [ReleaseStatus] value in the release name (default from specification: PRODUCTION).")
	f.StringP("date", "d", "", "The [ReleaseDate] value, YYYYMMDD (default today).")
	f.StringP("time", "t", "", "The [ReleaseTime] value, HHMMSS (default now).")
	f.StringP("country", "c", "", "The country of the [CountryNamespace] file name element (default from specification: INT).")
	f.StringP("namespace", "n", "", "The namespace of the [CountryNamespace] file name element.")
	f.StringSliceP("contentsubtype", "C", nil, "Content sub types to create (default from specification: Delta, Snapshot, Full).")
	f.Bool("archive", false, "Pack the release into a .zip archive.")
	return cmd
}

func newDiffCommand(done func(*app.Config)) *cobra.Command {
	return &cobra.Command{
		Use:   "diff BASE COMPARE",
		Short: "Compare two RF2 archives, directories or files",
		Long: `Compare two RF2 archives, directories or files and print the differences
as +/- rows. Unrecognized entries are marked with ?.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, common, err := commonConfig(cmd)
			if err != nil {
				return err
			}
			common.Command = app.CommandDiff
			common.Base = args[0]
			common.Compare = args[1]
			return finish(common, done)
		},
	}
}

// commonConfig binds the command's flags and the RF2_* environment to a
// fresh viper instance and reads the flags shared by every command.
func commonConfig(cmd *cobra.Command) (*viper.Viper, app.Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, app.Config{}, err
	}
	slog.Debug("Arguments parsed successfully.")

	logFormat := strings.ToLower(v.GetString("log-format"))
	if logFormat != "text" && logFormat != "json" {
		return nil, app.Config{}, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(v.GetString("log-level"))
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, app.Config{}, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	return v, app.Config{
		SpecPaths:   v.GetStringSlice("spec"),
		LogFormat:   logFormat,
		LogLevel:    logLevel,
		WorkerCount: v.GetInt("workers"),
	}, nil
}

func finish(cfg app.Config, done func(*app.Config)) error {
	c, err := app.NewConfig(cfg)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	done(c)
	return nil
}
