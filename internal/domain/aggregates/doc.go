// Package aggregates defines domain-facing aggregate contracts.
//
// These contracts avoid persistence/transport details and mark the write
// boundaries where taxonomy and catalog invariants are enforced atomically.
// Search index reconciliation for a write happens after its transaction
// commits and before the aggregate method returns.
package aggregates
