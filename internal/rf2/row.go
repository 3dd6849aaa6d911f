package rf2

import (
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	// Tab separates the fields of a line.
	Tab = "\t"
	// CRLF terminates every written line.
	CRLF = "\r\n"
)

// Conventional column positions.
const (
	ColID            = 0
	ColEffectiveTime = 1
	ColActive        = 2
	ColModuleID      = 3
)

const (
	// ModuleDependencyRefsetID identifies the module dependency reference set.
	ModuleDependencyRefsetID = "900000000000534007"
	// ModelComponentModuleID is the module owning the metadata every other
	// module references; it is never the source of a dependency.
	ModelComponentModuleID int64 = 900000000000012004
)

// Row is one data line split into its fields.
type Row []string

// ParseRow splits a raw line (without terminator) into a Row.
func ParseRow(line string) Row {
	return strings.Split(line, Tab)
}

func (r Row) field(i int) string {
	if i < len(r) {
		return r[i]
	}
	return ""
}

// ID returns column 0.
func (r Row) ID() string { return r.field(ColID) }

// EffectiveTime returns column 1.
func (r Row) EffectiveTime() string { return r.field(ColEffectiveTime) }

// ModuleID returns column 3.
func (r Row) ModuleID() string { return r.field(ColModuleID) }

// Line serializes the row as written to a release file, terminator included.
func (r Row) Line() string {
	return strings.Join(r, Tab) + CRLF
}

// Hash returns the content hash of the serialized row. Equal rows always
// hash equal; it is used for conflict detection only, never for ordering.
func (r Row) Hash() uint64 {
	return xxhash.Sum64String(r.Line())
}

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	return slices.Clone(r)
}

// Header is the ordered list of column names of a content file.
type Header []string

// Equal reports whether two headers are element-wise equal.
func (h Header) Equal(other Header) bool {
	return slices.Equal(h, other)
}

// Index maps each column name to its position.
func (h Header) Index() map[string]int {
	idx := make(map[string]int, len(h))
	for i, c := range h {
		idx[c] = i
	}
	return idx
}

// SubType is the release type of a content file.
type SubType string

const (
	Full     SubType = "Full"
	Snapshot SubType = "Snapshot"
	Delta    SubType = "Delta"
)

func (s SubType) IsFull() bool     { return s == Full }
func (s SubType) IsSnapshot() bool { return s == Snapshot }
func (s SubType) IsDelta() bool    { return s == Delta }

func (s SubType) String() string { return string(s) }

// CompareEffectiveTime orders effective times. Dates compare as strings; an
// empty effective time means unversioned and is greater than any date.
func CompareEffectiveTime(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	return strings.Compare(a, b)
}
