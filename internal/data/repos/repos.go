package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/lore-backend/internal/data/repos/catalog"
	"github.com/yungbote/lore-backend/internal/data/repos/taxonomy"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

type RepositoryRepo = catalog.RepositoryRepo
type MemberRepo = catalog.MemberRepo
type CourseRepo = catalog.CourseRepo
type ResourceTypeRepo = catalog.ResourceTypeRepo
type ResourceRepo = catalog.ResourceRepo
type ResourceRow = catalog.ResourceRow
type ResourceFilter = catalog.ResourceFilter

type VocabularyRepo = taxonomy.VocabularyRepo
type VocabularyFilter = taxonomy.VocabularyFilter
type VocabularyResourceTypeRepo = taxonomy.VocabularyResourceTypeRepo
type TermRepo = taxonomy.TermRepo
type ResourceTermRepo = taxonomy.ResourceTermRepo

// Set bundles every table repo over one database handle.
type Set struct {
	Repository             RepositoryRepo
	Member                 MemberRepo
	Course                 CourseRepo
	ResourceType           ResourceTypeRepo
	Resource               ResourceRepo
	Vocabulary             VocabularyRepo
	VocabularyResourceType VocabularyResourceTypeRepo
	Term                   TermRepo
	ResourceTerm           ResourceTermRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Repository:             NewRepositoryRepo(db, baseLog),
		Member:                 NewMemberRepo(db, baseLog),
		Course:                 NewCourseRepo(db, baseLog),
		ResourceType:           NewResourceTypeRepo(db, baseLog),
		Resource:               NewResourceRepo(db, baseLog),
		Vocabulary:             NewVocabularyRepo(db, baseLog),
		VocabularyResourceType: NewVocabularyResourceTypeRepo(db, baseLog),
		Term:                   NewTermRepo(db, baseLog),
		ResourceTerm:           NewResourceTermRepo(db, baseLog),
	}
}

func NewRepositoryRepo(db *gorm.DB, baseLog *logger.Logger) RepositoryRepo {
	return catalog.NewRepositoryRepo(db, baseLog)
}
func NewMemberRepo(db *gorm.DB, baseLog *logger.Logger) MemberRepo {
	return catalog.NewMemberRepo(db, baseLog)
}
func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return catalog.NewCourseRepo(db, baseLog)
}
func NewResourceTypeRepo(db *gorm.DB, baseLog *logger.Logger) ResourceTypeRepo {
	return catalog.NewResourceTypeRepo(db, baseLog)
}
func NewResourceRepo(db *gorm.DB, baseLog *logger.Logger) ResourceRepo {
	return catalog.NewResourceRepo(db, baseLog)
}

func NewVocabularyRepo(db *gorm.DB, baseLog *logger.Logger) VocabularyRepo {
	return taxonomy.NewVocabularyRepo(db, baseLog)
}
func NewVocabularyResourceTypeRepo(db *gorm.DB, baseLog *logger.Logger) VocabularyResourceTypeRepo {
	return taxonomy.NewVocabularyResourceTypeRepo(db, baseLog)
}
func NewTermRepo(db *gorm.DB, baseLog *logger.Logger) TermRepo {
	return taxonomy.NewTermRepo(db, baseLog)
}
func NewResourceTermRepo(db *gorm.DB, baseLog *logger.Logger) ResourceTermRepo {
	return taxonomy.NewResourceTermRepo(db, baseLog)
}
