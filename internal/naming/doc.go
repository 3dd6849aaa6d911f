/*
Package naming recognizes and formats RF2 file and release names.

A name is an underscore-separated sequence of elements followed by an
extension, e.g. `sct2_Concept_Full_INT_20190131.txt` or
`SnomedCT_InternationalRF2_PRODUCTION_20190131T120000Z.zip`.

Each kind of name is described by a fixed, ordered list of element kinds.
Every kind carries a pattern and a pure constructor that turns the pattern's
submatches into a typed element. Parsing walks the actual segments and the
expected kinds in lock-step: a segment that does not match its kind is kept
as an unrecognized element and the kind is reported missing, extra segments
are unrecognized, and kinds left over are missing.
*/
package naming
