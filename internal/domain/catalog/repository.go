package catalog

import (
	"time"

	"github.com/google/uuid"
)

type Repository struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	CreatedBy   string    `gorm:"column:created_by;not null" json:"created_by"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Repository) TableName() string { return "repository" }

const (
	RoleAdministrator = "administrator"
	RoleCurator       = "curator"
	RoleAuthor        = "author"
)

// RepositoryMember grants a subject one role on a repository.
type RepositoryMember struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RepositoryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_repository_member_subject,priority:1" json:"repository_id"`
	Subject      string    `gorm:"column:subject;not null;uniqueIndex:idx_repository_member_subject,priority:2;index:idx_repository_member_subject_lookup" json:"subject"`
	Role         string    `gorm:"column:role;not null" json:"role"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (RepositoryMember) TableName() string { return "repository_member" }
