// Package modulegraph derives which distribution modules depend on which
// others from the rows of a release.
//
// Rows feed two kinds of facts. Rows of non-refset content register their
// component id as owned by their module. Rows with dependency columns record
// that their module references some component at their effective time. A
// reference becomes a module edge once the referenced component's owner is
// known, so the order in which rows arrive does not matter.
//
// Facts are resolved into views lazily: the first query after an Add
// rebuilds them, later queries share the result until the next Add.
//
// An edge never connects a module to itself and never starts at the model
// component module.
package modulegraph
