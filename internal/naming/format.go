package naming

import "strings"

// ReleaseInitial is the fixed first element of every release name.
const ReleaseInitial = "SnomedCT"

// FormatContentFile builds a content file name from its elements.
func FormatContentFile(fileType, contentType string, subType ContentSubType, cn CountryNamespace, versionDate, ext string) string {
	name := strings.Join([]string{fileType, contentType, subType.String(), cn.String(), versionDate}, ElementSeparator)
	if ext == "" {
		return name
	}
	return name + ExtSeparator + ext
}

// FormatRelease builds a release directory name (without extension).
func FormatRelease(product, status, date, clock string) string {
	parts := []string{ReleaseInitial}
	if product != "" {
		parts = append(parts, product)
	}
	if status != "" {
		parts = append(parts, status)
	}
	parts = append(parts, ReleaseDate{Date: date, Time: clock}.String())
	return strings.Join(parts, ElementSeparator)
}

// IsRefset reports whether a content type names a reference set, e.g.
// `Refset`, `cRefset`, `ssRefset`. Refset rows reference other components
// and never define component ownership.
func IsRefset(contentType string) bool {
	return strings.HasSuffix(contentType, "Refset")
}
