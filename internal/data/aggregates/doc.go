// Package aggregates implements the domain aggregate contracts.
//
// Implementations compose table-level repos from internal/data/repos, own the
// transaction boundary of every write, and hand the committed change scope to
// the index synchronizer before returning.
package aggregates
