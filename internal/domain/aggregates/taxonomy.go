package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/lore-backend/internal/domain/taxonomy"
)

var TaxonomyAggregateContract = Contract{
	Name:             "Repository.TaxonomyAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	IndexSync:        IndexSyncAfterCommit,
	Notes:            "Owns vocabulary/term/resource-term mutations and the facet index reconciliation that follows them.",
}

// TaxonomyAggregate owns taxonomy consistency invariants.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeIndexSync, CodeRetryable, CodeInternal.
// CodeIndexSync means the relational write committed but the index could
// not be reconciled; re-running reconciliation converges.
type TaxonomyAggregate interface {
	Aggregate

	CreateVocabulary(ctx context.Context, in CreateVocabularyInput) (VocabularyResult, error)
	// UpdateVocabulary applies the non-nil fields. Shrinking the permitted
	// types removes links that no longer satisfy them in the same transaction.
	UpdateVocabulary(ctx context.Context, in UpdateVocabularyInput) (VocabularyResult, error)
	// DeleteVocabulary cascades to terms, links and the vocabulary facet.
	DeleteVocabulary(ctx context.Context, in DeleteVocabularyInput) (DeleteResult, error)

	CreateTerm(ctx context.Context, in CreateTermInput) (TermResult, error)
	UpdateTerm(ctx context.Context, in UpdateTermInput) (TermResult, error)
	DeleteTerm(ctx context.Context, in DeleteTermInput) (DeleteResult, error)

	// SetResourceTerms replaces the term set of a learning resource.
	SetResourceTerms(ctx context.Context, in SetResourceTermsInput) (SetResourceTermsResult, error)
}

type CreateVocabularyInput struct {
	RepositoryID          uuid.UUID `json:"-" validate:"required"`
	Name                  string    `json:"name" validate:"required,max=256"`
	Description           string    `json:"description"`
	Required              *bool     `json:"required" validate:"required"`
	Weight                *int      `json:"weight" validate:"required"`
	VocabularyType        string    `json:"vocabulary_type" validate:"required,oneof=f m"`
	LearningResourceTypes []string  `json:"learning_resource_types" validate:"dive,required"`
}

type UpdateVocabularyInput struct {
	VocabularyID          uuid.UUID `json:"-" validate:"required"`
	Name                  *string   `json:"name" validate:"omitnil,min=1,max=256"`
	Description           *string   `json:"description"`
	Required              *bool     `json:"required"`
	Weight                *int      `json:"weight"`
	VocabularyType        *string   `json:"vocabulary_type" validate:"omitnil,oneof=f m"`
	LearningResourceTypes *[]string `json:"learning_resource_types" validate:"omitnil,dive,required"`
}

type DeleteVocabularyInput struct {
	VocabularyID uuid.UUID `json:"-" validate:"required"`
}

type VocabularyResult struct {
	Vocabulary            *taxonomy.Vocabulary
	LearningResourceTypes []string
	// RemovedLinks counts resource-term links dropped by a permitted-type shrink.
	RemovedLinks int
}

type CreateTermInput struct {
	VocabularyID uuid.UUID `json:"-" validate:"required"`
	Label        string    `json:"label" validate:"required,max=256"`
	Weight       *int      `json:"weight" validate:"required"`
}

type UpdateTermInput struct {
	TermID uuid.UUID `json:"-" validate:"required"`
	Label  *string   `json:"label" validate:"omitnil,min=1,max=256"`
	Weight *int      `json:"weight"`
}

type DeleteTermInput struct {
	TermID uuid.UUID `json:"-" validate:"required"`
}

type TermResult struct {
	Term *taxonomy.Term
}

type DeleteResult struct {
	DeletedTerms int
	DeletedLinks int
}

type SetResourceTermsInput struct {
	ResourceID uuid.UUID `json:"-" validate:"required"`
	TermSlugs  []string  `json:"terms" validate:"dive,required"`
}

type SetResourceTermsResult struct {
	Terms   []*taxonomy.Term
	Added   int
	Removed int
}
