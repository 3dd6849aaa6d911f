// Package config defines the format-agnostic release specification: the
// release naming parameters, the content layout of a release and, per
// content file, its header, dependency columns and row filters.
//
// A `config.Specification` is an immutable value. It is produced once by a
// `Loader` (the HCL implementation lives in the `hcl` package), merged with
// command-line overrides and then passed explicitly to the release builder,
// the artifact detector and the diff engine. Nothing in this package keeps
// process-wide state.
package config
