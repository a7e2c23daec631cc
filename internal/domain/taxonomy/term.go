package taxonomy

import (
	"time"

	"github.com/google/uuid"
)

type Term struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VocabularyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_term_slug,priority:1;uniqueIndex:idx_term_label,priority:1" json:"-"`
	Label        string    `gorm:"column:label;not null;uniqueIndex:idx_term_label,priority:2" json:"label"`
	Slug         string    `gorm:"column:slug;not null;uniqueIndex:idx_term_slug,priority:2;index:idx_term_slug_lookup" json:"slug"`
	Weight       int       `gorm:"column:weight;not null" json:"weight"`
	CreatedAt    time.Time `gorm:"not null;index" json:"-"`
	UpdatedAt    time.Time `gorm:"not null" json:"-"`
}

func (Term) TableName() string { return "term" }

// ResourceTerm links a learning resource to a term.
type ResourceTerm struct {
	LearningResourceID uuid.UUID `gorm:"type:uuid;primaryKey" json:"learning_resource_id"`
	TermID             uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"term_id"`
	CreatedAt          time.Time `gorm:"not null" json:"created_at"`
}

func (ResourceTerm) TableName() string { return "resource_term" }
