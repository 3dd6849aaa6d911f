package naming

import (
	"regexp"
	"strings"
)

const (
	// ElementSeparator separates the elements of a name.
	ElementSeparator = "_"
	// ExtSeparator separates a name from its extension.
	ExtSeparator = "."
)

// rule describes one element kind: the pattern a segment must fully match and
// the constructor building the typed element from the submatches.
type rule struct {
	kind    Kind
	pattern *regexp.Regexp
	build   func(m []string) any
}

var (
	fileTypeRule = rule{
		kind:    KindFileType,
		pattern: regexp.MustCompile(`^(x|z)?(sct|der|doc|res|tls)(1|2)?$`),
		build:   func(m []string) any { return FileType{Status: m[1], Format: m[2], Major: m[3]} },
	}
	contentTypeRule = rule{
		kind:    KindContentType,
		pattern: regexp.MustCompile(`^(.+)$`),
		build:   func(m []string) any { return m[1] },
	}
	contentSubTypeRule = rule{
		kind:    KindContentSubType,
		pattern: regexp.MustCompile(`^(.*?)(Full|Snapshot|Delta|Current|Draft|Review)(?:-([a-z]{2}(?:-[A-Za-z]{2})?))?$`),
		build: func(m []string) any {
			return ContentSubType{Summary: m[1], ReleaseType: m[2], LanguageCode: m[3]}
		},
	}
	countryNamespaceRule = rule{
		kind:    KindCountryNamespace,
		pattern: regexp.MustCompile(`^(INT|[A-Z]{2})?([0-9]{7})?$`),
		build:   func(m []string) any { return CountryNamespace{Country: m[1], Namespace: m[2]} },
	}
	versionDateRule = rule{
		kind:    KindVersionDate,
		pattern: regexp.MustCompile(`^([0-9]{8})$`),
		build:   func(m []string) any { return m[1] },
	}
	releaseInitialRule = rule{
		kind:    KindReleaseInitial,
		pattern: regexp.MustCompile(`^(SnomedCT)$`),
		build:   func(m []string) any { return m[1] },
	}
	productRule = rule{
		kind:    KindProduct,
		pattern: regexp.MustCompile(`^(.+?)(Edition|Extension)?(RF1|RF2)?$`),
		build:   func(m []string) any { return Product{Name: m[1], Kind: m[2], Format: m[3]} },
	}
	releaseStatusRule = rule{
		kind:    KindReleaseStatus,
		pattern: regexp.MustCompile(`^(ALPHA|BETA|PRODUCTION)$`),
		build:   func(m []string) any { return m[1] },
	}
	releaseDateRule = rule{
		kind:    KindReleaseDate,
		pattern: regexp.MustCompile(`^([0-9]{8})T([0-9]{6})Z$`),
		build:   func(m []string) any { return ReleaseDate{Date: m[1], Time: m[2]} },
	}
)

var (
	contentFileRules = []rule{fileTypeRule, contentTypeRule, contentSubTypeRule, countryNamespaceRule, versionDateRule}
	releaseRules     = []rule{releaseInitialRule, productRule, releaseStatusRule, releaseDateRule}
)

// Name is the generic parse result shared by all name kinds.
type Name struct {
	Base      string
	Extension string
	Elements  []Element
	Missing   []Kind
}

func parse(fileName string, rules []rule) Name {
	n := Name{Base: fileName}
	if idx := strings.LastIndex(fileName, ExtSeparator); idx != -1 {
		n.Base = fileName[:idx]
		n.Extension = fileName[idx+1:]
	}
	if n.Base == "" {
		for _, r := range rules {
			n.Missing = append(n.Missing, r.kind)
		}
		return n
	}

	segments := strings.Split(n.Base, ElementSeparator)
	i := 0
	for ; i < len(segments) && i < len(rules); i++ {
		r := rules[i]
		m := r.pattern.FindStringSubmatch(segments[i])
		if m == nil {
			n.Elements = append(n.Elements, Element{Kind: KindUnrecognized, Raw: segments[i]})
			n.Missing = append(n.Missing, r.kind)
			continue
		}
		n.Elements = append(n.Elements, Element{Kind: r.kind, Raw: segments[i], Value: r.build(m)})
	}
	for ; i < len(segments); i++ {
		n.Elements = append(n.Elements, Element{Kind: KindUnrecognized, Raw: segments[i]})
	}
	for j := len(segments); j < len(rules); j++ {
		n.Missing = append(n.Missing, rules[j].kind)
	}
	return n
}

// Element returns the first element of the given kind.
func (n Name) Element(k Kind) (Element, bool) {
	for _, e := range n.Elements {
		if e.Kind == k {
			return e, true
		}
	}
	return Element{}, false
}

// Unrecognized returns the segments that did not match their expected kind.
func (n Name) Unrecognized() []Element {
	var out []Element
	for _, e := range n.Elements {
		if !e.Recognized() {
			out = append(out, e)
		}
	}
	return out
}

// String reassembles the name from its elements.
func (n Name) String() string {
	raws := make([]string, len(n.Elements))
	for i, e := range n.Elements {
		raws[i] = e.Raw
	}
	s := strings.Join(raws, ElementSeparator)
	if n.Extension != "" {
		s += ExtSeparator + n.Extension
	}
	return s
}

// ContentFileName is a parsed `<FileType>_<ContentType>_<ContentSubType>_<CountryNamespace>_<VersionDate>` name.
type ContentFileName struct {
	Name
}

// ParseContentFile parses a content file name.
func ParseContentFile(fileName string) ContentFileName {
	return ContentFileName{Name: parse(fileName, contentFileRules)}
}

// Recognized reports whether every element of the name was recognized.
func (c ContentFileName) Recognized() bool {
	return len(c.Missing) == 0 && len(c.Unrecognized()) == 0
}

func (c ContentFileName) FileType() FileType {
	e, _ := c.Element(KindFileType)
	v, _ := e.Value.(FileType)
	return v
}

func (c ContentFileName) ContentType() string {
	e, _ := c.Element(KindContentType)
	v, _ := e.Value.(string)
	return v
}

func (c ContentFileName) SubType() ContentSubType {
	e, _ := c.Element(KindContentSubType)
	v, _ := e.Value.(ContentSubType)
	return v
}

func (c ContentFileName) CountryNamespace() CountryNamespace {
	e, _ := c.Element(KindCountryNamespace)
	v, _ := e.Value.(CountryNamespace)
	return v
}

// VersionDate returns the version date, or "" when it is missing.
func (c ContentFileName) VersionDate() string {
	e, _ := c.Element(KindVersionDate)
	v, _ := e.Value.(string)
	return v
}

// ReleaseName is a parsed `SnomedCT_<Product>_<ReleaseStatus>_<ReleaseDate>` name.
type ReleaseName struct {
	Name
}

// ParseRelease parses a release package name.
func ParseRelease(fileName string) ReleaseName {
	return ReleaseName{Name: parse(fileName, releaseRules)}
}

// Recognized reports whether the name denotes a zip release package with at
// least one recognized element.
func (r ReleaseName) Recognized() bool {
	if r.Extension != "zip" {
		return false
	}
	for _, e := range r.Elements {
		if e.Recognized() {
			return true
		}
	}
	return false
}

func (r ReleaseName) Product() Product {
	e, _ := r.Element(KindProduct)
	v, _ := e.Value.(Product)
	return v
}

func (r ReleaseName) Status() string {
	e, _ := r.Element(KindReleaseStatus)
	v, _ := e.Value.(string)
	return v
}

func (r ReleaseName) Date() ReleaseDate {
	e, _ := r.Element(KindReleaseDate)
	v, _ := e.Value.(ReleaseDate)
	return v
}
