package rf2

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/specialistvlad/rf2kit/internal/config"
)

// Artifact type names reported by Type for the non-content variants.
const (
	TypeDirectory    = "Directory"
	TypeRelease      = "Release"
	TypeUnrecognized = "Unrecognized"
)

// Artifact is anything found in a release source.
type Artifact interface {
	// Name is the base name of the artifact.
	Name() string
	// Location is a human readable path used in logs and reports.
	Location() string
	// Type is the content type for content files, otherwise one of the Type* constants.
	Type() string
	// Visit calls fn for the artifact and, for containers, for every
	// descendant in name order.
	Visit(ctx context.Context, fn func(Artifact) error) error
}

// Directory is a directory on disk or inside an archive.
type Directory struct {
	fsys      fs.FS
	path      string
	location  string
	spec      *config.Specification
	inArchive bool
}

func (d *Directory) Name() string {
	if d.path == "." {
		return path.Base(d.location)
	}
	return path.Base(d.path)
}

func (d *Directory) Location() string { return d.location }
func (d *Directory) Type() string     { return TypeDirectory }

// Children detects every entry of the directory, sorted by name.
func (d *Directory) Children() ([]Artifact, error) {
	entries, err := fs.ReadDir(d.fsys, d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", d.location, err)
	}
	out := make([]Artifact, 0, len(entries))
	for _, e := range entries {
		a, err := detect(d.fsys, path.Join(d.path, e.Name()), d.childLocation(e.Name()), d.spec, d.inArchive)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (d *Directory) childLocation(name string) string {
	if d.inArchive {
		return d.location + "/" + name
	}
	return joinOS(d.location, name)
}

func (d *Directory) Visit(ctx context.Context, fn func(Artifact) error) error {
	if err := fn(d); err != nil {
		return err
	}
	return visitChildren(ctx, d, fn)
}

func visitChildren(ctx context.Context, d *Directory, fn func(Artifact) error) error {
	children, err := d.Children()
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.Visit(ctx, fn); err != nil {
			return err
		}
	}
	return nil
}

// Archive is a zip release package on disk. The zip is opened on first use
// and must be released with Close.
type Archive struct {
	path string
	spec *config.Specification

	mu     sync.Mutex
	reader *zip.ReadCloser
	root   *Directory
}

func (a *Archive) Name() string     { return path.Base(toSlash(a.path)) }
func (a *Archive) Location() string { return a.path }
func (a *Archive) Type() string     { return TypeRelease }

// Root returns the directory at the root of the archive.
func (a *Archive) Root() (*Directory, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.root != nil {
		return a.root, nil
	}
	r, err := zip.OpenReader(a.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", a.path, err)
	}
	r.RegisterDecompressor(zip.Deflate, func(in io.Reader) io.ReadCloser {
		return flate.NewReader(in)
	})
	a.reader = r
	a.root = &Directory{fsys: r, path: ".", location: a.path, spec: a.spec, inArchive: true}
	return a.root, nil
}

// Visit calls fn for the archive itself, then for everything inside it.
func (a *Archive) Visit(ctx context.Context, fn func(Artifact) error) error {
	if err := fn(a); err != nil {
		return err
	}
	root, err := a.Root()
	if err != nil {
		return err
	}
	return visitChildren(ctx, root, fn)
}

// Close releases the underlying zip reader, if it was opened.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.reader == nil {
		return nil
	}
	err := a.reader.Close()
	a.reader, a.root = nil, nil
	return err
}

// Unrecognized is a file that is neither a release nor a known content file.
type Unrecognized struct {
	name     string
	location string
}

func (u *Unrecognized) Name() string     { return u.name }
func (u *Unrecognized) Location() string { return u.location }
func (u *Unrecognized) Type() string     { return TypeUnrecognized }

func (u *Unrecognized) Visit(ctx context.Context, fn func(Artifact) error) error {
	return fn(u)
}
