package rf2

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"path"
	"runtime"
	"strings"

	"github.com/specialistvlad/rf2kit/internal/config"
	"github.com/specialistvlad/rf2kit/internal/naming"
	"golang.org/x/sync/errgroup"
)

// maxLineSize bounds a single line; OWL expressions can be long.
const maxLineSize = 16 * 1024 * 1024

// ContentFile is a recognized release file. Data files expose their rows
// lazily; the header line is never part of the row stream.
type ContentFile struct {
	fsys     fs.FS
	path     string
	location string
	name     naming.ContentFileName
	spec     config.FileSpec
	header   Header
}

// NewContentFile wraps the file at p inside fsys. header is the first line
// of the file as read during detection; it is nil for non-data files.
func NewContentFile(fsys fs.FS, p, location string, name naming.ContentFileName, spec config.FileSpec, header Header) *ContentFile {
	return &ContentFile{fsys: fsys, path: p, location: location, name: name, spec: spec, header: header}
}

func (f *ContentFile) Name() string     { return path.Base(f.path) }
func (f *ContentFile) Location() string { return f.location }

// Type returns the content type element of the file name.
func (f *ContentFile) Type() string { return f.name.ContentType() }

func (f *ContentFile) FileName() naming.ContentFileName { return f.name }
func (f *ContentFile) Spec() config.FileSpec            { return f.spec }
func (f *ContentFile) IsDataFile() bool                 { return f.spec.DataFile }

// Header returns the header as read from the first line of the file.
func (f *ContentFile) Header() Header { return f.header }

func (f *ContentFile) Visit(ctx context.Context, fn func(Artifact) error) error {
	return fn(f)
}

// Open returns the raw file.
func (f *ContentFile) Open() (fs.File, error) {
	return f.fsys.Open(f.path)
}

// Rows calls fn for every data row in file order.
func (f *ContentFile) Rows(ctx context.Context, fn func(Row) error) error {
	return f.scan(ctx, func(line string) error {
		return fn(ParseRow(line))
	})
}

// RowsParallel calls fn for every data row from a bounded pool of workers.
// Lines are read sequentially and fanned out, so fn sees rows in no
// particular order and must be safe for concurrent use. workers < 1 means
// GOMAXPROCS.
func (f *ContentFile) RowsParallel(ctx context.Context, workers int, fn func(Row) error) error {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	lines := make(chan string, workers*64)

	g.Go(func() error {
		defer close(lines)
		return f.scan(gctx, func(line string) error {
			select {
			case lines <- line:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for line := range lines {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := fn(ParseRow(line)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// ReadAll materializes every data row.
func (f *ContentFile) ReadAll(ctx context.Context) ([]Row, error) {
	var rows []Row
	err := f.Rows(ctx, func(r Row) error {
		rows = append(rows, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (f *ContentFile) scan(ctx context.Context, fn func(line string) error) error {
	file, err := f.fsys.Open(f.path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.location, err)
	}
	defer file.Close()

	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	first := true
	for sc.Scan() {
		if first {
			first = false
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", f.location, err)
	}
	return nil
}

func readHeader(fsys fs.FS, p string) (Header, error) {
	file, err := fsys.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", p, err)
	}
	defer file.Close()

	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("failed to read header of %s: %w", p, err)
		}
		return Header{}, nil
	}
	return Header(ParseRow(strings.TrimSuffix(sc.Text(), "\r"))), nil
}
