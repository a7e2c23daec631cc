package catalog

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RepositoryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_identity,priority:1" json:"repository_id"`
	Org          string    `gorm:"column:org;not null;uniqueIndex:idx_course_identity,priority:2" json:"org"`
	CourseNumber string    `gorm:"column:course_number;not null;uniqueIndex:idx_course_identity,priority:3" json:"course_number"`
	Run          string    `gorm:"column:run;not null;uniqueIndex:idx_course_identity,priority:4" json:"run"`
	ImportedBy   string    `gorm:"column:imported_by" json:"imported_by"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (Course) TableName() string { return "course" }

// Key is the course facet value, e.g. "MITx/6.002x".
func (c *Course) Key() string {
	if c == nil {
		return ""
	}
	return c.Org + "/" + c.CourseNumber
}
