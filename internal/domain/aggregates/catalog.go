package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/lore-backend/internal/domain/catalog"
)

var CatalogAggregateContract = Contract{
	Name:             "Repository.CatalogAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	IndexSync:        IndexSyncAfterCommit,
	Notes:            "Owns repository creation, membership and course registration; new resources are indexed before returning.",
}

// CatalogAggregate owns repository/course/resource writes.
type CatalogAggregate interface {
	Aggregate

	// CreateRepository creates a repository and makes the creator its administrator.
	CreateRepository(ctx context.Context, in CreateRepositoryInput) (*catalog.Repository, error)
	// SetMember grants (or changes) a subject's role on a repository.
	SetMember(ctx context.Context, in SetMemberInput) (*catalog.RepositoryMember, error)
	RemoveMember(ctx context.Context, in RemoveMemberInput) error
	// RegisterCourse stores a course with its resources and indexes them.
	RegisterCourse(ctx context.Context, in RegisterCourseInput) (RegisterCourseResult, error)
}

type CreateRepositoryInput struct {
	Name        string `json:"name" validate:"required,max=256"`
	Description string `json:"description"`
	CreatedBy   string `json:"-" validate:"required"`
}

type SetMemberInput struct {
	RepositoryID uuid.UUID `json:"-" validate:"required"`
	Subject      string    `json:"subject" validate:"required,max=256"`
	Role         string    `json:"role" validate:"required,oneof=administrator curator author"`
}

type RemoveMemberInput struct {
	RepositoryID uuid.UUID `json:"-" validate:"required"`
	Subject      string    `json:"subject" validate:"required"`
}

type RegisterCourseInput struct {
	RepositoryID uuid.UUID               `json:"-" validate:"required"`
	Org          string                  `json:"org" validate:"required,max=256"`
	CourseNumber string                  `json:"course_number" validate:"required,max=256"`
	Run          string                  `json:"run" validate:"required,max=256"`
	ImportedBy   string                  `json:"-"`
	Resources    []RegisterResourceInput `json:"resources" validate:"dive"`
}

type RegisterResourceInput struct {
	ResourceType string         `json:"resource_type" validate:"required,max=256"`
	Title        string         `json:"title" validate:"required"`
	Description  string         `json:"description"`
	ContentXML   string         `json:"content_xml"`
	URLName      string         `json:"url_name"`
	Metadata     map[string]any `json:"metadata"`
}

type RegisterCourseResult struct {
	Course    *catalog.Course
	Resources []*catalog.LearningResource
}
