package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type LearningResourceType struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
}

func (LearningResourceType) TableName() string { return "learning_resource_type" }

type LearningResource struct {
	ID                     uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID               uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
	LearningResourceTypeID uuid.UUID      `gorm:"type:uuid;not null;index" json:"learning_resource_type_id"`
	Title                  string         `gorm:"column:title;not null" json:"title"`
	Description            string         `gorm:"column:description;type:text" json:"description"`
	ContentXML             string         `gorm:"column:content_xml;type:text" json:"content_xml"`
	URLName                string         `gorm:"column:url_name" json:"url_name"`
	Metadata               datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt              time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt              time.Time      `gorm:"not null" json:"updated_at"`
}

func (LearningResource) TableName() string { return "learning_resource" }
