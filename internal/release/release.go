// Package release lays out and builds a complete release from a set of
// source artifacts.
//
// A release is a directory named after the release, holding one directory
// per content sub type with the data files of every content directory, and
// the non-data files directly under their content directories:
//
//	SnomedCT_<Product>_<Status>_<Date>T<Time>Z/
//	    Full/Terminology/sct2_Concept_Full_INT_<Date>.txt
//	    Snapshot/...
//	    Documentation/doc_Readme_Current-en_INT_<Date>.txt
//
// The whole tree can be packed into a zip of the same name.
package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/specialistvlad/rf2kit/internal/assembly"
	"github.com/specialistvlad/rf2kit/internal/config"
	"github.com/specialistvlad/rf2kit/internal/ctxlog"
	"github.com/specialistvlad/rf2kit/internal/naming"
	"github.com/specialistvlad/rf2kit/internal/rf2"
)

// ErrExists is returned when the release to create is already on disk.
var ErrExists = errors.New("release already exists")

// Options controls where and how a release is written.
type Options struct {
	OutDir string
	// Archive packs the built tree into <ReleaseName>.zip and removes the tree.
	Archive bool
}

// Builder creates releases. The engine's module graph accumulates facts
// across every file of a release.
type Builder struct {
	engine *assembly.Engine
}

func NewBuilder(engine *assembly.Engine) *Builder {
	return &Builder{engine: engine}
}

// Name returns the directory name of the release described by r.
func Name(r config.Release) string {
	return naming.FormatRelease(r.Product, r.Status, r.Date, r.Time)
}

// Create builds the release described by spec from sources and returns the
// path of the created directory or archive. A target file whose build
// fails is removed; files completed before it stay on disk.
//
// Data files are built per content sub type in content order, module
// dependency files after every other data file of the same sub type, so
// the module graph is complete when dependency rows are reconciled.
func (b *Builder) Create(ctx context.Context, spec *config.Specification, sources []rf2.Artifact, opts Options) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}
	r := spec.Release
	logger := ctxlog.FromContext(ctx)

	root := filepath.Join(opts.OutDir, Name(r))
	for _, p := range []string{root, root + ".zip"} {
		if _, err := os.Stat(p); err == nil {
			return "", fmt.Errorf("%w: %s", ErrExists, p)
		}
	}

	files, err := contentFiles(ctx, sources)
	if err != nil {
		return "", err
	}
	logger.Debug("Collected source content files.", "count", len(files))

	for _, subType := range r.ContentSubTypes {
		for _, moduleDeps := range []bool{false, true} {
			for _, c := range r.Content {
				for _, fileSpec := range c.Files {
					if !fileSpec.DataFile || fileSpec.IsModuleDependencyFile() != moduleDeps {
						continue
					}
					dir := filepath.Join(root, subType, filepath.FromSlash(c.Name))
					if err := b.buildDataFile(ctx, dir, r, subType, fileSpec, files); err != nil {
						return "", err
					}
				}
			}
		}
	}

	for _, c := range r.Content {
		for _, fileSpec := range c.Files {
			if fileSpec.DataFile {
				continue
			}
			dir := filepath.Join(root, filepath.FromSlash(c.Name))
			if err := copyNonDataFile(ctx, dir, r, fileSpec, files); err != nil {
				return "", err
			}
		}
	}

	out := root
	if opts.Archive {
		if out, err = Pack(root); err != nil {
			return "", err
		}
		if err := os.RemoveAll(root); err != nil {
			return "", fmt.Errorf("failed to remove %s after packing: %w", root, err)
		}
	}
	logger.Info("Created release.", "path", out)
	return out, nil
}

func (b *Builder) buildDataFile(ctx context.Context, dir string, r config.Release, subType string, spec config.FileSpec, sources []*rf2.ContentFile) error {
	p := filepath.Join(dir, spec.FileName(subType, r))
	ctx = ctxlog.With(ctx, "file", p)
	ctxlog.FromContext(ctx).Info("Creating file.")

	f, err := createFile(p)
	if err != nil {
		return err
	}
	target := assembly.Target{
		Spec:        spec,
		SubType:     rf2.SubType(spec.ResolvedSubType(subType)),
		ReleaseDate: r.Date,
	}
	if _, err := b.engine.Build(ctx, target, sources, f); err != nil {
		_ = f.Close()
		_ = os.Remove(p)
		return fmt.Errorf("failed to build %s: %w", p, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", p, err)
	}
	return nil
}

// copyNonDataFile copies the source file of the same content type with the
// greatest version date, or creates an empty file when there is none. On
// equal version dates the first source wins.
func copyNonDataFile(ctx context.Context, dir string, r config.Release, spec config.FileSpec, sources []*rf2.ContentFile) error {
	p := filepath.Join(dir, spec.FileName("", r))
	logger := ctxlog.FromContext(ctx).With("file", p)

	var best *rf2.ContentFile
	for _, s := range sources {
		if s.IsDataFile() || s.Type() != spec.ContentType {
			continue
		}
		if best == nil || s.FileName().VersionDate() > best.FileName().VersionDate() {
			best = s
		}
	}

	f, err := createFile(p)
	if err != nil {
		return err
	}
	defer f.Close()
	if best == nil {
		logger.Info("Created empty file.")
		return f.Close()
	}

	in, err := best.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", best.Location(), err)
	}
	defer in.Close()
	if _, err := io.Copy(f, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", best.Location(), err)
	}
	logger.Info("Copied file.", "source", best.Location())
	return f.Close()
}

func createFile(p string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", p, err)
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrExists, p)
		}
		return nil, fmt.Errorf("failed to create %s: %w", p, err)
	}
	return f, nil
}

// contentFiles collects every content file reachable from sources.
func contentFiles(ctx context.Context, sources []rf2.Artifact) ([]*rf2.ContentFile, error) {
	var out []*rf2.ContentFile
	for _, s := range sources {
		err := s.Visit(ctx, func(a rf2.Artifact) error {
			if cf, ok := a.(*rf2.ContentFile); ok {
				out = append(out, cf)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to visit %s: %w", s.Location(), err)
		}
	}
	return out, nil
}
