package config

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/specialistvlad/rf2kit/internal/naming"
)

// ErrInvalid is returned when a specification fails validation.
var ErrInvalid = errors.New("invalid specification")

// ModuleDependencySummary is the content sub type summary of the module
// dependency reference set.
const ModuleDependencySummary = "ModuleDependency"

// DefaultExtension is the extension of data files.
const DefaultExtension = "txt"

// ValidContentSubTypes lists the release types a data file can be built as.
var ValidContentSubTypes = []string{"Full", "Snapshot", "Delta"}

var (
	datePattern = regexp.MustCompile(`^[0-9]{8}$`)
	timePattern = regexp.MustCompile(`^[0-9]{6}$`)
)

// Specification is the root of the release specification. Values are
// treated as read-only once loaded: every operation returns a new value.
type Specification struct {
	Release Release
}

// Release holds the naming parameters and content layout of a release.
type Release struct {
	Product         string
	Status          string
	Country         string
	Namespace       string
	Date            string
	Time            string
	ContentSubTypes []string
	// Content is ordered; it determines the directory and build order.
	Content []Content
}

// Content is a named directory of a release, e.g. `Terminology` or `Refset/Language`.
type Content struct {
	Name  string
	Files []FileSpec
}

// Filter is a set of field=value constraints applied to data rows.
type Filter map[string]string

// FileSpec describes one content file of a release.
type FileSpec struct {
	ContentType  string
	FileType     string
	Summary      string
	LanguageCode string
	Header       []string
	// Dependencies lists the header columns whose values reference other
	// components; they feed the module dependency graph.
	Dependencies []string
	Inclusions   []Filter
	Exclusions   []Filter
	// DataFile is false for documentation and other files copied verbatim.
	DataFile bool
	// ContentSubType, when set, fixes the release type part of the file name
	// regardless of the release sub type being built.
	ContentSubType string
	Extension      string
}

// Key identifies a file spec for merging: content type plus header.
func (f FileSpec) Key() string {
	return f.ContentType + "|" + strings.Join(f.Header, "\t")
}

// IsModuleDependencyFile reports whether rows of this file declare module dependencies.
func (f FileSpec) IsModuleDependencyFile() bool {
	return f.Summary == ModuleDependencySummary
}

// IsRefset reports whether the file is a reference set.
func (f FileSpec) IsRefset() bool {
	return naming.IsRefset(f.ContentType)
}

// ResolvedFileType returns the configured file type or the conventional
// default: `der2` for reference sets, `sct2` otherwise.
func (f FileSpec) ResolvedFileType() string {
	if f.FileType != "" {
		return f.FileType
	}
	if f.IsRefset() {
		return "der2"
	}
	return "sct2"
}

// ResolvedExtension returns the configured extension or DefaultExtension.
func (f FileSpec) ResolvedExtension() string {
	if f.Extension != "" {
		return f.Extension
	}
	return DefaultExtension
}

// ResolvedSubType returns the release type the file is built as when the
// release sub type being built is subType.
func (f FileSpec) ResolvedSubType(subType string) string {
	if f.ContentSubType != "" {
		return f.ContentSubType
	}
	return subType
}

// FileName formats the name of this file inside a release.
func (f FileSpec) FileName(subType string, r Release) string {
	sub := naming.ContentSubType{Summary: f.Summary, ReleaseType: f.ResolvedSubType(subType), LanguageCode: f.LanguageCode}
	cn := naming.CountryNamespace{Country: r.Country, Namespace: r.Namespace}
	return naming.FormatContentFile(f.ResolvedFileType(), f.ContentType, sub, cn, r.Date, f.ResolvedExtension())
}

// HeaderIndex maps each header column to its position.
func (f FileSpec) HeaderIndex() map[string]int {
	idx := make(map[string]int, len(f.Header))
	for i, h := range f.Header {
		idx[h] = i
	}
	return idx
}

// merge overlays the non-empty fields of other onto f.
func (f FileSpec) merge(other FileSpec) FileSpec {
	out := f
	if other.FileType != "" {
		out.FileType = other.FileType
	}
	if other.Summary != "" {
		out.Summary = other.Summary
	}
	if other.LanguageCode != "" {
		out.LanguageCode = other.LanguageCode
	}
	if other.Dependencies != nil {
		out.Dependencies = slices.Clone(other.Dependencies)
	}
	if other.Inclusions != nil {
		out.Inclusions = slices.Clone(other.Inclusions)
	}
	if other.Exclusions != nil {
		out.Exclusions = slices.Clone(other.Exclusions)
	}
	if other.ContentSubType != "" {
		out.ContentSubType = other.ContentSubType
	}
	if other.Extension != "" {
		out.Extension = other.Extension
	}
	out.DataFile = other.DataFile
	return out
}

// Override returns a copy of r with every non-empty field of other applied.
// Content is not touched; use Specification.Merge for content.
func (r Release) Override(other Release) Release {
	out := r
	if other.Product != "" {
		out.Product = other.Product
	}
	if other.Status != "" {
		out.Status = other.Status
	}
	if other.Country != "" {
		out.Country = other.Country
	}
	if other.Namespace != "" {
		out.Namespace = other.Namespace
	}
	if other.Date != "" {
		out.Date = other.Date
	}
	if other.Time != "" {
		out.Time = other.Time
	}
	if len(other.ContentSubTypes) > 0 {
		out.ContentSubTypes = slices.Clone(other.ContentSubTypes)
	}
	return out
}

// Merge returns a new specification with other layered over s. Release
// fields are overridden when set in other; content directories are matched
// by name and their file specs by Key, new ones are appended in order.
func (s *Specification) Merge(other *Specification) *Specification {
	if other == nil {
		return s
	}
	out := &Specification{Release: s.Release.Override(other.Release)}

	out.Release.Content = make([]Content, 0, len(s.Release.Content)+len(other.Release.Content))
	for _, c := range s.Release.Content {
		out.Release.Content = append(out.Release.Content, Content{Name: c.Name, Files: slices.Clone(c.Files)})
	}
	for _, oc := range other.Release.Content {
		i := slices.IndexFunc(out.Release.Content, func(c Content) bool { return c.Name == oc.Name })
		if i == -1 {
			out.Release.Content = append(out.Release.Content, Content{Name: oc.Name, Files: slices.Clone(oc.Files)})
			continue
		}
		files := out.Release.Content[i].Files
		for _, of := range oc.Files {
			j := slices.IndexFunc(files, func(f FileSpec) bool { return f.Key() == of.Key() })
			if j == -1 {
				files = append(files, of)
			} else {
				files[j] = files[j].merge(of)
			}
		}
		out.Release.Content[i].Files = files
	}
	return out
}

// WithRelease returns a copy of s with the release fields of r applied.
func (s *Specification) WithRelease(r Release) *Specification {
	return &Specification{Release: s.Release.Override(r)}
}

// FileSpecs returns every file spec in content order.
func (s *Specification) FileSpecs() []FileSpec {
	var out []FileSpec
	for _, c := range s.Release.Content {
		out = append(out, c.Files...)
	}
	return out
}

// Lookup finds the file spec describing a file with the given content type,
// summary and header. Data files must match content type and header exactly;
// non-data files match on content type alone. When several specs match, the
// one with the same summary wins.
func (s *Specification) Lookup(contentType, summary string, header []string) (FileSpec, bool) {
	var (
		found FileSpec
		ok    bool
	)
	for _, f := range s.FileSpecs() {
		if f.ContentType != contentType {
			continue
		}
		if f.DataFile && !slices.Equal(f.Header, header) {
			continue
		}
		if f.Summary == summary {
			return f, true
		}
		if !ok {
			found, ok = f, true
		}
	}
	return found, ok
}

// Validate checks the specification for structural errors.
func (s *Specification) Validate() error {
	var errs []error
	r := s.Release
	if r.Date != "" && !datePattern.MatchString(r.Date) {
		errs = append(errs, fmt.Errorf("release date %q must be in YYYYMMDD form", r.Date))
	}
	if r.Time != "" && !timePattern.MatchString(r.Time) {
		errs = append(errs, fmt.Errorf("release time %q must be in HHMMSS form", r.Time))
	}
	for _, st := range r.ContentSubTypes {
		if !slices.Contains(ValidContentSubTypes, st) {
			errs = append(errs, fmt.Errorf("unsupported content sub type %q", st))
		}
	}
	for _, c := range r.Content {
		for _, f := range c.Files {
			if f.ContentType == "" {
				errs = append(errs, fmt.Errorf("content %q: file without content type", c.Name))
				continue
			}
			if !f.DataFile {
				continue
			}
			if len(f.Header) == 0 {
				errs = append(errs, fmt.Errorf("content %q: data file %q has no header", c.Name, f.ContentType))
				continue
			}
			idx := f.HeaderIndex()
			for _, dep := range f.Dependencies {
				if _, ok := idx[dep]; !ok {
					errs = append(errs, fmt.Errorf("content %q: file %q: dependency column %q is not in the header", c.Name, f.ContentType, dep))
				}
			}
			if f.IsModuleDependencyFile() && len(f.Header) < 8 {
				errs = append(errs, fmt.Errorf("content %q: module dependency file must have at least 8 columns", c.Name))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
