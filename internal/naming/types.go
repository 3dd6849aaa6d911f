package naming

// Kind identifies one element of an RF2 name.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindFileType
	KindContentType
	KindContentSubType
	KindCountryNamespace
	KindVersionDate
	KindReleaseInitial
	KindProduct
	KindReleaseStatus
	KindReleaseDate
)

var kindNames = map[Kind]string{
	KindUnrecognized:     "Unrecognized",
	KindFileType:         "FileType",
	KindContentType:      "ContentType",
	KindContentSubType:   "ContentSubType",
	KindCountryNamespace: "CountryNamespace",
	KindVersionDate:      "VersionDate",
	KindReleaseInitial:   "ReleaseInitial",
	KindProduct:          "Product",
	KindReleaseStatus:    "ReleaseStatus",
	KindReleaseDate:      "ReleaseDate",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Element is a single parsed segment of a name.
type Element struct {
	Kind Kind
	Raw  string
	// Value holds the typed element produced by the kind's constructor. It is
	// nil for unrecognized segments.
	Value any
}

// Recognized reports whether the segment matched its expected kind.
func (e Element) Recognized() bool {
	return e.Kind != KindUnrecognized
}

// FileType is the leading element of a content file name, e.g. `sct2`, `der2`, `xder2`.
type FileType struct {
	Status string // "", "x" or "z"
	Format string // sct, der, doc, res, tls
	Major  string // "", "1" or "2"
}

func (f FileType) String() string { return f.Status + f.Format + f.Major }

// ContentSubType is the third element of a content file name, e.g. `LanguageSnapshot-en`.
type ContentSubType struct {
	Summary      string
	ReleaseType  string // Full, Snapshot, Delta, Current, Draft, Review
	LanguageCode string
}

func (c ContentSubType) String() string {
	s := c.Summary + c.ReleaseType
	if c.LanguageCode != "" {
		s += "-" + c.LanguageCode
	}
	return s
}

// CountryNamespace is e.g. `INT` or `US1000124`.
type CountryNamespace struct {
	Country   string
	Namespace string
}

func (c CountryNamespace) String() string { return c.Country + c.Namespace }

// Product is the release product element, e.g. `InternationalRF2`.
type Product struct {
	Name   string
	Kind   string // Edition, Extension or empty
	Format string // RF1, RF2 or empty
}

func (p Product) String() string { return p.Name + p.Kind + p.Format }

// ReleaseDate is the `<date>T<time>Z` element of a release name.
type ReleaseDate struct {
	Date string
	Time string
}

func (r ReleaseDate) String() string { return r.Date + "T" + r.Time + "Z" }
