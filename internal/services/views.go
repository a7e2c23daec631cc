package services

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lore-backend/internal/data/repos"
	types "github.com/yungbote/lore-backend/internal/domain"
	"github.com/yungbote/lore-backend/internal/platform/apierr"
)

const PageSize = 20

const msgRequired = "This field is required."

// Page is one page of a listing plus the total row count.
type Page[T any] struct {
	Count   int64
	Page    int
	Results []T
}

func (p Page[T]) HasNext() bool     { return int64(p.Page*PageSize) < p.Count }
func (p Page[T]) HasPrevious() bool { return p.Page > 1 }

func pageBounds(page int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	return (page - 1) * PageSize, PageSize
}

// checkPage rejects pages past the last one. The first page always exists.
func checkPage(page int, count int64) error {
	if page < 1 || (page > 1 && int64((page-1)*PageSize) >= count) {
		return apierr.NotFound("page")
	}
	return nil
}

type RepositoryView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"date_created"`
}

func NewRepositoryView(r *types.Repository) RepositoryView {
	return RepositoryView{
		ID:          r.ID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
	}
}

type MemberView struct {
	Subject string `json:"subject"`
	Role    string `json:"role"`
}

type TermView struct {
	ID     uuid.UUID `json:"id"`
	Slug   string    `json:"slug"`
	Label  string    `json:"label"`
	Weight int       `json:"weight"`
}

func NewTermView(t *types.Term) TermView {
	return TermView{ID: t.ID, Slug: t.Slug, Label: t.Label, Weight: t.Weight}
}

type VocabularyView struct {
	ID                    uuid.UUID  `json:"id"`
	Slug                  string     `json:"slug"`
	Name                  string     `json:"name"`
	Description           string     `json:"description"`
	Required              bool       `json:"required"`
	Weight                int        `json:"weight"`
	VocabularyType        string     `json:"vocabulary_type"`
	LearningResourceTypes []string   `json:"learning_resource_types"`
	Terms                 []TermView `json:"terms"`
}

func NewVocabularyView(v *types.Vocabulary, typeNames []string, terms []*types.Term) VocabularyView {
	out := VocabularyView{
		ID:                    v.ID,
		Slug:                  v.Slug,
		Name:                  v.Name,
		Description:           v.Description,
		Required:              v.Required,
		Weight:                v.Weight,
		VocabularyType:        v.VocabularyType,
		LearningResourceTypes: append([]string{}, typeNames...),
		Terms:                 make([]TermView, 0, len(terms)),
	}
	sort.Strings(out.LearningResourceTypes)
	for _, t := range terms {
		out.Terms = append(out.Terms, NewTermView(t))
	}
	return out
}

type CourseRef struct {
	Org          string `json:"org"`
	CourseNumber string `json:"course_number"`
	Run          string `json:"run"`
}

type ResourceView struct {
	ID                   uuid.UUID       `json:"id"`
	Course               CourseRef       `json:"course"`
	LearningResourceType string          `json:"learning_resource_type"`
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	ContentXML           string          `json:"content_xml"`
	URLName              string          `json:"url_name"`
	Metadata             json.RawMessage `json:"metadata,omitempty"`
	// Terms holds the slugs of the linked terms.
	Terms []string `json:"terms"`
}

func NewResourceView(row *repos.ResourceRow, terms []*types.Term) ResourceView {
	out := ResourceView{
		ID: row.ID,
		Course: CourseRef{
			Org:          row.CourseOrg,
			CourseNumber: row.CourseNumber,
			Run:          row.CourseRun,
		},
		LearningResourceType: row.TypeName,
		Title:                row.Title,
		Description:          row.Description,
		ContentXML:           row.ContentXML,
		URLName:              row.URLName,
		Terms:                make([]string, 0, len(terms)),
	}
	if len(row.Metadata) > 0 {
		out.Metadata = json.RawMessage(row.Metadata)
	}
	for _, t := range terms {
		out.Terms = append(out.Terms, t.Slug)
	}
	sort.Strings(out.Terms)
	return out
}
