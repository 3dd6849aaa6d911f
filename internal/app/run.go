package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/rf2kit/internal/assembly"
	"github.com/specialistvlad/rf2kit/internal/config"
	"github.com/specialistvlad/rf2kit/internal/ctxlog"
	"github.com/specialistvlad/rf2kit/internal/diff"
	"github.com/specialistvlad/rf2kit/internal/modulegraph"
	"github.com/specialistvlad/rf2kit/internal/release"
	"github.com/specialistvlad/rf2kit/internal/rf2"
)

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.config.Command)

	var err error
	switch a.config.Command {
	case CommandCreate:
		err = a.create(ctx)
	case CommandDiff:
		err = a.diff(ctx)
	default:
		err = fmt.Errorf("unknown command %q", a.config.Command)
	}

	a.logger.Debug("App.Run method finished.")
	return err
}

// create builds a release from the configured sources. Directory sources
// are refused before anything is written.
func (a *App) create(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	spec := a.releaseSpec()

	var sources []rf2.Artifact
	defer func() { _ = rf2.Close(sources...) }()

	var directories []string
	for _, p := range a.config.Sources {
		src, err := rf2.Open(p, spec)
		if err != nil {
			return err
		}
		switch src.(type) {
		case *rf2.Directory:
			directories = append(directories, p)
			continue
		case *rf2.Unrecognized:
			logger.Warn("Source is not a recognized file or archive, skipping.", "path", p)
			continue
		}
		sources = append(sources, src)
	}
	if len(directories) > 0 {
		for _, d := range directories {
			logger.Error("Only .txt and .zip files are accepted as source files.", "path", d)
		}
		return nil
	}

	graph := modulegraph.New()
	builder := release.NewBuilder(assembly.New(graph, a.config.WorkerCount))
	out, err := builder.Create(ctx, spec, sources, release.Options{
		OutDir:  a.config.OutDir,
		Archive: a.config.Archive,
	})
	if err != nil {
		return fmt.Errorf("failed to create release: %w", err)
	}
	logger.Info("Module graph.", "dependencies", graph.ModuleDependencies())

	if _, err := fmt.Fprintln(a.outW, out); err != nil {
		return fmt.Errorf("failed to write release path: %w", err)
	}
	return nil
}

// releaseSpec fills in today's date and the current time (UTC) when neither
// the specification nor the command line set them.
func (a *App) releaseSpec() *config.Specification {
	now := a.now().UTC()
	var r config.Release
	if a.spec.Release.Date == "" {
		r.Date = now.Format("20060102")
	}
	if a.spec.Release.Time == "" {
		r.Time = now.Format("150405")
	}
	return a.spec.WithRelease(r)
}

// diff writes the differences between the base and compare artifacts.
func (a *App) diff(ctx context.Context) error {
	base, err := rf2.Open(a.config.Base, a.spec)
	if err != nil {
		return err
	}
	defer a.closeArtifact(ctx, a.config.Base, base)

	compare, err := rf2.Open(a.config.Compare, a.spec)
	if err != nil {
		return err
	}
	defer a.closeArtifact(ctx, a.config.Compare, compare)

	if _, err := diff.Diff(ctx, base, compare, a.outW); err != nil {
		return fmt.Errorf("failed to compare %s with %s: %w", a.config.Compare, a.config.Base, err)
	}
	return nil
}

func (a *App) closeArtifact(ctx context.Context, path string, artifact rf2.Artifact) {
	if err := rf2.Close(artifact); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to close artifact.", "path", path, "error", err)
	}
}
