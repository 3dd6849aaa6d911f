package assembly

import (
	"github.com/specialistvlad/rf2kit/internal/config"
	"github.com/specialistvlad/rf2kit/internal/rf2"
)

const (
	relationship       = "Relationship"
	statedRelationship = "StatedRelationship"
)

// AcceptsFile reports whether source may contribute rows to a target
// described by spec. Content types must match, except that relationship and
// stated relationship files feed each other; row filters tell them apart.
// Headers must be equal, and a summary set on the target must match the
// source's.
func AcceptsFile(spec config.FileSpec, source *rf2.ContentFile) bool {
	if !source.IsDataFile() {
		return false
	}
	if !sameContentType(spec.ContentType, source.Type()) {
		return false
	}
	if spec.Summary != "" && spec.Summary != source.FileName().SubType().Summary {
		return false
	}
	return source.Header().Equal(spec.Header)
}

func sameContentType(target, source string) bool {
	if isRelationship(target) {
		return isRelationship(source)
	}
	return target == source
}

func isRelationship(contentType string) bool {
	return contentType == relationship || contentType == statedRelationship
}

// RowFilter decides whether a row is written.
type RowFilter func(rf2.Row) bool

type condition struct {
	col   int
	value string
	want  bool
}

// NewRowFilter builds the conjunction of every inclusion (field == value) and
// every exclusion (field != value) of spec. Fields missing from the header
// are ignored.
func NewRowFilter(spec config.FileSpec) RowFilter {
	idx := spec.HeaderIndex()
	var conds []condition
	add := func(filters []config.Filter, want bool) {
		for _, f := range filters {
			for field, value := range f {
				if col, ok := idx[field]; ok {
					conds = append(conds, condition{col: col, value: value, want: want})
				}
			}
		}
	}
	add(spec.Inclusions, true)
	add(spec.Exclusions, false)

	return func(r rf2.Row) bool {
		for _, c := range conds {
			var v string
			if c.col < len(r) {
				v = r[c.col]
			}
			if (v == c.value) != c.want {
				return false
			}
		}
		return true
	}
}

// dependencyValues returns the values of the dependency columns of r.
func dependencyValues(spec config.FileSpec, idx map[string]int, r rf2.Row) []string {
	if len(spec.Dependencies) == 0 {
		return nil
	}
	out := make([]string, 0, len(spec.Dependencies))
	for _, d := range spec.Dependencies {
		if col, ok := idx[d]; ok && col < len(r) {
			out = append(out, r[col])
		}
	}
	return out
}
