// Package rf2 holds the shared data model of the release tooling: rows,
// headers, content sub types and the artifacts a release is made of.
//
// # Rows
//
// A Row is the tab-split form of one data line. Field semantics are fixed by
// convention: column 0 is the component identifier, column 1 the effective
// time (YYYYMMDD or empty for "unversioned") and column 3 the owning module.
//
// # Artifacts
//
// An Artifact is one of four closed variants:
//
//   - *ContentFile: a recognized data or documentation file
//   - *Directory:   a directory on disk or inside an archive
//   - *Archive:     a zip release package
//   - *Unrecognized: anything else
//
// Every variant is addressed through an fs.FS, so directories on disk and
// directories inside a zip archive are walked by the same code. Detection
// consults the release specification: a file is a content file only when its
// name parses and a file spec with the same content type and header exists.
package rf2
