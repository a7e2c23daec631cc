package taxonomy

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	VocabularyTypeFreeTagging = "f"
	VocabularyTypeManaged     = "m"
)

type Vocabulary struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RepositoryID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_vocabulary_slug,priority:1;uniqueIndex:idx_vocabulary_name,priority:1" json:"-"`
	Name           string    `gorm:"column:name;not null;uniqueIndex:idx_vocabulary_name,priority:2" json:"name"`
	Slug           string    `gorm:"column:slug;not null;uniqueIndex:idx_vocabulary_slug,priority:2" json:"slug"`
	Description    string    `gorm:"column:description;type:text" json:"description"`
	Required       bool      `gorm:"column:required;not null" json:"required"`
	Weight         int       `gorm:"column:weight;not null" json:"weight"`
	VocabularyType string    `gorm:"column:vocabulary_type;not null;size:1" json:"vocabulary_type"`
	CreatedAt      time.Time `gorm:"not null;index" json:"-"`
	UpdatedAt      time.Time `gorm:"not null" json:"-"`
}

func (Vocabulary) TableName() string { return "vocabulary" }

// IndexKey is the facet key of the vocabulary. It depends on identity only.
func (v *Vocabulary) IndexKey() string {
	if v == nil {
		return ""
	}
	return MakeVocabularyKey(v.ID)
}

func MakeVocabularyKey(id uuid.UUID) string {
	return "vocabulary_" + strings.ReplaceAll(id.String(), "-", "")
}

// VocabularyResourceType is one permitted learning resource type of a vocabulary.
type VocabularyResourceType struct {
	VocabularyID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"vocabulary_id"`
	LearningResourceTypeID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"learning_resource_type_id"`
}

func (VocabularyResourceType) TableName() string { return "vocabulary_resource_type" }
