// Package assembly builds one target content file from the rows of many
// source content files.
//
// The target sub type decides what is kept:
//
//   - Full writes every distinct (id, effectiveTime) in first-seen order.
//   - Snapshot keeps the row with the greatest effective time per id. The
//     selection pass may run in parallel; a second, sequential pass writes
//     the winners in source order.
//   - Delta keeps rows whose effective time equals the release date.
//
// Rows with an already seen (id, effectiveTime) are dropped; when their
// content differs a warning is logged and the first row wins.
//
// Module dependency files get extra treatment: their declared source and
// target effective times are reconciled against the module graph, which
// every scanned row feeds.
package assembly
