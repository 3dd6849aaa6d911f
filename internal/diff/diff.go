package diff

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/specialistvlad/rf2kit/internal/ctxlog"
	"github.com/specialistvlad/rf2kit/internal/rf2"
)

// ErrIncompatible is returned when two artifacts cannot be compared, e.g. a
// content file and a directory, or content files with different headers.
var ErrIncompatible = errors.New("incompatible artifacts")

const indent = "  "

// Stats counts the report lines by kind.
type Stats struct {
	Added        int
	Removed      int
	Unrecognized int
}

// Empty reports whether the compared artifacts had no differences.
func (s Stats) Empty() bool {
	return s.Added == 0 && s.Removed == 0 && s.Unrecognized == 0
}

func (s *Stats) add(o Stats) {
	s.Added += o.Added
	s.Removed += o.Removed
	s.Unrecognized += o.Unrecognized
}

// Diff compares base with compare and writes the report to w. Content files
// are compared row by row; directories and archives entry by entry.
func Diff(ctx context.Context, base, compare rf2.Artifact, w io.Writer) (Stats, error) {
	d := &differ{w: w}
	if err := d.artifacts(ctx, base, compare, 0); err != nil {
		return Stats{}, err
	}
	ctxlog.FromContext(ctx).Info("Compared artifacts.",
		"base", base.Location(), "compare", compare.Location(),
		"added", d.stats.Added, "removed", d.stats.Removed, "unrecognized", d.stats.Unrecognized)
	return d.stats, nil
}

// Files compares two content files.
func Files(ctx context.Context, base, compare *rf2.ContentFile, w io.Writer) (Stats, error) {
	d := &differ{w: w}
	if err := checkFiles(base, compare); err != nil {
		return Stats{}, err
	}
	if err := d.files(ctx, base, compare, 0); err != nil {
		return Stats{}, err
	}
	return d.stats, nil
}

// Trees compares two directories.
func Trees(ctx context.Context, base, compare *rf2.Directory, w io.Writer) (Stats, error) {
	d := &differ{w: w}
	if err := d.trees(ctx, base, compare, 0); err != nil {
		return Stats{}, err
	}
	return d.stats, nil
}

type differ struct {
	w     io.Writer
	stats Stats
	err   error
}

func (d *differ) line(depth int, prefix, text string) {
	switch prefix {
	case "+":
		d.stats.Added++
	case "-":
		d.stats.Removed++
	case "?":
		d.stats.Unrecognized++
	}
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, "%s%s %s\n", strings.Repeat(indent, depth), prefix, text)
}

func (d *differ) artifacts(ctx context.Context, base, compare rf2.Artifact, depth int) error {
	bt, err := tree(base)
	if err != nil {
		return err
	}
	ct, err := tree(compare)
	if err != nil {
		return err
	}
	if bt != nil && ct != nil {
		return d.trees(ctx, bt, ct, depth)
	}

	bf, bok := base.(*rf2.ContentFile)
	cf, cok := compare.(*rf2.ContentFile)
	if !bok || !cok {
		return fmt.Errorf("%w: %s %s and %s %s", ErrIncompatible, base.Type(), base.Location(), compare.Type(), compare.Location())
	}
	if err := checkFiles(bf, cf); err != nil {
		return err
	}
	return d.files(ctx, bf, cf, depth)
}

// tree returns the directory an artifact is compared as, or nil.
func tree(a rf2.Artifact) (*rf2.Directory, error) {
	switch v := a.(type) {
	case *rf2.Directory:
		return v, nil
	case *rf2.Archive:
		return v.Root()
	}
	return nil, nil
}

func checkFiles(base, compare *rf2.ContentFile) error {
	if !compatible(base, compare) {
		return fmt.Errorf("%w: %s %s and %s %s", ErrIncompatible, base.Type(), base.Location(), compare.Type(), compare.Location())
	}
	return nil
}

func compatible(base, compare *rf2.ContentFile) bool {
	return base.Type() == compare.Type() &&
		base.IsDataFile() == compare.IsDataFile() &&
		base.Header().Equal(compare.Header())
}

// trees walks the sorted children of both sides in lock-step. An
// unrecognized entry only advances its own side, base first. Entries of the
// same type are compared; on a type mismatch the base entry is reported as
// removed and only the base side advances.
func (d *differ) trees(ctx context.Context, base, compare *rf2.Directory, depth int) error {
	bs, err := base.Children()
	if err != nil {
		return err
	}
	cs, err := compare.Children()
	if err != nil {
		return err
	}

	i, j := 0, 0
	for i < len(bs) && j < len(cs) {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, c := bs[i], cs[j]
		if b.Type() == rf2.TypeUnrecognized {
			d.line(depth, "?", b.Name())
			i++
			continue
		}
		if c.Type() == rf2.TypeUnrecognized {
			d.line(depth, "?", c.Name())
			j++
			continue
		}
		if !sameKind(b, c) {
			d.line(depth, "-", b.Name())
			i++
			continue
		}
		if err := d.nested(ctx, b, c, depth); err != nil {
			return err
		}
		i++
		j++
	}
	for ; i < len(bs); i++ {
		d.line(depth, "-", bs[i].Name())
	}
	for ; j < len(cs); j++ {
		d.line(depth, "+", cs[j].Name())
	}
	return d.err
}

func sameKind(b, c rf2.Artifact) bool {
	if b.Type() != c.Type() {
		return false
	}
	bf, bok := b.(*rf2.ContentFile)
	cf, cok := c.(*rf2.ContentFile)
	if bok != cok {
		return false
	}
	return !bok || compatible(bf, cf)
}

// nested compares two entries one level deeper. The entry's name line is
// only written when the entries differ.
func (d *differ) nested(ctx context.Context, b, c rf2.Artifact, depth int) error {
	var buf bytes.Buffer
	child := &differ{w: &buf}
	if err := child.artifacts(ctx, b, c, depth+1); err != nil {
		return err
	}
	if child.err != nil {
		return child.err
	}
	d.stats.add(child.stats)
	if buf.Len() == 0 {
		return nil
	}
	name := b.Name()
	if c.Name() != name {
		name += " -> " + c.Name()
	}
	if d.err == nil {
		_, d.err = fmt.Fprintf(d.w, "%s%s\n", strings.Repeat(indent, depth), name)
	}
	if d.err == nil {
		_, d.err = buf.WriteTo(d.w)
	}
	return d.err
}

// files merge-walks the rows of both files sorted by (effectiveTime, id).
// Both files are loaded into memory.
func (d *differ) files(ctx context.Context, base, compare *rf2.ContentFile, depth int) error {
	if !base.IsDataFile() {
		return d.raw(base, compare, depth)
	}
	bs, err := base.ReadAll(ctx)
	if err != nil {
		return err
	}
	cs, err := compare.ReadAll(ctx)
	if err != nil {
		return err
	}
	slices.SortFunc(bs, compareRows)
	slices.SortFunc(cs, compareRows)

	i, j := 0, 0
	for i < len(bs) && j < len(cs) {
		b, c := bs[i], cs[j]
		if slices.Equal(b, c) {
			i++
			j++
			continue
		}
		switch k := compareKeys(b, c); {
		case k == 0:
			d.line(depth, "-", text(b))
			d.line(depth, "+", text(c))
			i++
			j++
		case k > 0:
			d.line(depth, "+", text(c))
			j++
		default:
			d.line(depth, "-", text(b))
			i++
		}
	}
	for ; i < len(bs); i++ {
		d.line(depth, "-", text(bs[i]))
	}
	for ; j < len(cs); j++ {
		d.line(depth, "+", text(cs[j]))
	}
	return d.err
}

// raw compares non-data files byte for byte.
func (d *differ) raw(base, compare *rf2.ContentFile, depth int) error {
	bb, err := readAll(base)
	if err != nil {
		return err
	}
	cb, err := readAll(compare)
	if err != nil {
		return err
	}
	if !bytes.Equal(bb, cb) {
		d.line(depth, "-", base.Name())
		d.line(depth, "+", compare.Name())
	}
	return d.err
}

func readAll(f *rf2.ContentFile) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Location(), err)
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Location(), err)
	}
	return b, nil
}

func compareKeys(a, b rf2.Row) int {
	return cmp.Or(
		cmp.Compare(a.EffectiveTime(), b.EffectiveTime()),
		cmp.Compare(a.ID(), b.ID()),
	)
}

func compareRows(a, b rf2.Row) int {
	return cmp.Or(compareKeys(a, b), slices.Compare(a, b))
}

func text(r rf2.Row) string {
	return strings.Join(r, rf2.Tab)
}
