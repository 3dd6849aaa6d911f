package rf2

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/rf2kit/internal/config"
	"github.com/specialistvlad/rf2kit/internal/naming"
)

// ErrNotExist is returned by Open when the path does not exist.
var ErrNotExist = errors.New("artifact does not exist")

const zipExtension = ".zip"

// Open detects the artifact at an operating system path. Any `.zip` file is
// treated as a release archive; other files are content files when their
// name parses and spec describes them.
func Open(p string, spec *config.Specification) (Artifact, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, p)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", p, err)
	}
	if info.IsDir() {
		return &Directory{fsys: os.DirFS(abs), path: ".", location: abs, spec: spec}, nil
	}
	return detect(os.DirFS(filepath.Dir(abs)), filepath.Base(abs), abs, spec, false)
}

// Detect classifies the entry at p inside fsys. Zip files inside fsys are
// never opened as archives.
func Detect(fsys fs.FS, p string, spec *config.Specification) (Artifact, error) {
	return detect(fsys, p, p, spec, true)
}

// Close releases every archive among artifacts.
func Close(artifacts ...Artifact) error {
	var errs []error
	for _, a := range artifacts {
		if ar, ok := a.(*Archive); ok {
			errs = append(errs, ar.Close())
		}
	}
	return errors.Join(errs...)
}

func detect(fsys fs.FS, p, location string, spec *config.Specification, inArchive bool) (Artifact, error) {
	info, err := fs.Stat(fsys, p)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", location, err)
	}
	name := path.Base(p)
	if info.IsDir() {
		return &Directory{fsys: fsys, path: p, location: location, spec: spec, inArchive: inArchive}, nil
	}
	if strings.EqualFold(path.Ext(name), zipExtension) {
		// Nested archives are not opened.
		if inArchive {
			return &Unrecognized{name: name, location: location}, nil
		}
		return &Archive{path: location, spec: spec}, nil
	}
	return detectFile(fsys, p, location, spec)
}

func detectFile(fsys fs.FS, p, location string, spec *config.Specification) (Artifact, error) {
	base := path.Base(p)
	unrecognized := &Unrecognized{name: base, location: location}
	if spec == nil {
		return unrecognized, nil
	}
	name := naming.ParseContentFile(base)
	if !name.Recognized() {
		return unrecognized, nil
	}

	var header Header
	if name.Extension == config.DefaultExtension {
		h, err := readHeader(fsys, p)
		if err != nil {
			return nil, err
		}
		header = h
	}
	fileSpec, ok := spec.Lookup(name.ContentType(), name.SubType().Summary, header)
	if !ok {
		return unrecognized, nil
	}
	if !fileSpec.DataFile {
		header = nil
	}
	return NewContentFile(fsys, p, location, name, fileSpec, header), nil
}

func joinOS(dir, name string) string {
	return filepath.Join(dir, name)
}

func toSlash(p string) string {
	return filepath.ToSlash(p)
}
