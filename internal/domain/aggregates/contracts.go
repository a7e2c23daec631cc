package aggregates

// WriteTxOwnership defines who owns write transaction boundaries.
type WriteTxOwnership string

const (
	// WriteTxOwnedByAggregate means aggregate write methods start/manage atomic DB transactions internally.
	WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"
)

// ReadPolicy defines how aggregate contracts should expose reads.
type ReadPolicy string

const (
	// ReadPolicyInvariantScoped allows only reads needed for invariant decisions in write flows.
	ReadPolicyInvariantScoped ReadPolicy = "invariant_scoped_reads"
	// ReadPolicyTableRepoQueries keeps listing and lookup queries on table repos.
	ReadPolicyTableRepoQueries ReadPolicy = "table_repo_queries"
)

// IndexSyncPolicy defines when derived search state is reconciled.
type IndexSyncPolicy string

const (
	// IndexSyncAfterCommit reconciles synchronously once the transaction commits.
	IndexSyncAfterCommit IndexSyncPolicy = "after_commit_sync"
	// IndexSyncNone means the aggregate never touches the search index.
	IndexSyncNone IndexSyncPolicy = "none"
)

// Contract describes aggregate-level policy expectations.
type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	ReadPolicy       ReadPolicy
	IndexSync        IndexSyncPolicy
	Notes            string
}

// Aggregate is the common marker for all aggregate contracts.
// Implementations should return a stable contract description.
type Aggregate interface {
	Contract() Contract
}

// RequiresAggregateOwnedTx returns true when write transaction ownership is aggregate-owned.
func (c Contract) RequiresAggregateOwnedTx() bool {
	return c.WriteTxOwnership == WriteTxOwnedByAggregate
}

// SyncsIndex reports whether writes reconcile the search index before returning.
func (c Contract) SyncsIndex() bool {
	return c.IndexSync == IndexSyncAfterCommit
}
