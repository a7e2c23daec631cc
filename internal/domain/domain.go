package domain

import (
	"github.com/yungbote/lore-backend/internal/domain/catalog"
	"github.com/yungbote/lore-backend/internal/domain/taxonomy"
)

const (
	RoleAdministrator = catalog.RoleAdministrator
	RoleCurator       = catalog.RoleCurator
	RoleAuthor        = catalog.RoleAuthor

	VocabularyTypeFreeTagging = taxonomy.VocabularyTypeFreeTagging
	VocabularyTypeManaged     = taxonomy.VocabularyTypeManaged
)

// Catalog
type Repository = catalog.Repository
type RepositoryMember = catalog.RepositoryMember
type Course = catalog.Course
type LearningResourceType = catalog.LearningResourceType
type LearningResource = catalog.LearningResource

// Taxonomy
type Vocabulary = taxonomy.Vocabulary
type VocabularyResourceType = taxonomy.VocabularyResourceType
type Term = taxonomy.Term
type ResourceTerm = taxonomy.ResourceTerm

// Models lists every persisted model in migration order.
func Models() []interface{} {
	return []interface{}{
		&Repository{},
		&RepositoryMember{},
		&Course{},
		&LearningResourceType{},
		&LearningResource{},

		&Vocabulary{},
		&VocabularyResourceType{},
		&Term{},
		&ResourceTerm{},
	}
}
