// Package diff compares two content files, directories or release archives
// and writes a line oriented report.
//
// Rows are reported as `+ <row>` when only the compare side has them and
// `- <row>` when only the base side has them. Every nesting level of a tree
// comparison indents its lines by two spaces, under a line naming the
// entry. Entries that are not recognized on either side are reported as
// `? <name>`. Identical inputs produce an empty report.
package diff
