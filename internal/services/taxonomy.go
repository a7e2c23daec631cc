package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lore-backend/internal/data/repos"
	types "github.com/yungbote/lore-backend/internal/domain"
	domainagg "github.com/yungbote/lore-backend/internal/domain/aggregates"
	"github.com/yungbote/lore-backend/internal/platform/apierr"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

// TaxonomyService serves vocabularies and terms addressed by slug within a
// repository. Writes go through the taxonomy aggregate.
type TaxonomyService interface {
	ListVocabularies(ctx context.Context, repositoryID uuid.UUID, typeName string, page int) (Page[VocabularyView], error)
	GetVocabulary(ctx context.Context, repositoryID uuid.UUID, vocabSlug string) (*VocabularyView, error)
	CreateVocabulary(ctx context.Context, in domainagg.CreateVocabularyInput) (*VocabularyView, error)
	// UpdateVocabulary applies in to the vocabulary. Unless partial, every
	// field required on create must be present.
	UpdateVocabulary(ctx context.Context, repositoryID uuid.UUID, vocabSlug string, in domainagg.UpdateVocabularyInput, partial bool) (*VocabularyView, error)
	DeleteVocabulary(ctx context.Context, repositoryID uuid.UUID, vocabSlug string) error

	ListTerms(ctx context.Context, repositoryID uuid.UUID, vocabSlug string, page int) (Page[TermView], error)
	GetTerm(ctx context.Context, repositoryID uuid.UUID, vocabSlug, termSlug string) (*TermView, error)
	CreateTerm(ctx context.Context, repositoryID uuid.UUID, vocabSlug string, in domainagg.CreateTermInput) (*TermView, error)
	UpdateTerm(ctx context.Context, repositoryID uuid.UUID, vocabSlug, termSlug string, in domainagg.UpdateTermInput, partial bool) (*TermView, error)
	DeleteTerm(ctx context.Context, repositoryID uuid.UUID, vocabSlug, termSlug string) error
}

type taxonomyService struct {
	db         *gorm.DB
	log        *logger.Logger
	vocabs     repos.VocabularyRepo
	vocabTypes repos.VocabularyResourceTypeRepo
	terms      repos.TermRepo
	agg        domainagg.TaxonomyAggregate
}

func NewTaxonomyService(db *gorm.DB, log *logger.Logger, set repos.Set, agg domainagg.TaxonomyAggregate) TaxonomyService {
	return &taxonomyService{
		db:         db,
		log:        log.With("service", "TaxonomyService"),
		vocabs:     set.Vocabulary,
		vocabTypes: set.VocabularyResourceType,
		terms:      set.Term,
		agg:        agg,
	}
}

func (s *taxonomyService) ListVocabularies(ctx context.Context, repositoryID uuid.UUID, typeName string, page int) (Page[VocabularyView], error) {
	out := Page[VocabularyView]{Page: page}
	offset, limit := pageBounds(page)
	rows, total, err := s.vocabs.ListByRepository(ctx, nil, repositoryID, repos.VocabularyFilter{
		TypeName: typeName,
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return out, err
	}
	if err := checkPage(page, total); err != nil {
		return out, err
	}
	views, err := s.vocabularyViews(ctx, rows)
	if err != nil {
		return out, err
	}
	out.Count = total
	out.Results = views
	return out, nil
}

func (s *taxonomyService) GetVocabulary(ctx context.Context, repositoryID uuid.UUID, vocabSlug string) (*VocabularyView, error) {
	v, err := s.vocabulary(ctx, repositoryID, vocabSlug)
	if err != nil {
		return nil, err
	}
	return s.vocabularyView(ctx, v)
}

func (s *taxonomyService) CreateVocabulary(ctx context.Context, in domainagg.CreateVocabularyInput) (*VocabularyView, error) {
	res, err := s.agg.CreateVocabulary(ctx, in)
	if err != nil {
		return nil, err
	}
	view := NewVocabularyView(res.Vocabulary, res.LearningResourceTypes, nil)
	return &view, nil
}

func (s *taxonomyService) UpdateVocabulary(ctx context.Context, repositoryID uuid.UUID, vocabSlug string, in domainagg.UpdateVocabularyInput, partial bool) (*VocabularyView, error) {
	v, err := s.vocabulary(ctx, repositoryID, vocabSlug)
	if err != nil {
		return nil, err
	}
	if !partial {
		missing := domainagg.FieldErrors{}
		if in.Name == nil {
			missing.Add("name", msgRequired)
		}
		if in.Required == nil {
			missing.Add("required", msgRequired)
		}
		if in.Weight == nil {
			missing.Add("weight", msgRequired)
		}
		if in.VocabularyType == nil {
			missing.Add("vocabulary_type", msgRequired)
		}
		if !missing.Empty() {
			return nil, domainagg.NewValidationError("Taxonomy.UpdateVocabulary", missing)
		}
	}
	in.VocabularyID = v.ID
	res, err := s.agg.UpdateVocabulary(ctx, in)
	if err != nil {
		return nil, err
	}
	terms, err := s.terms.ListByVocabularyIDs(ctx, nil, []uuid.UUID{v.ID})
	if err != nil {
		return nil, err
	}
	view := NewVocabularyView(res.Vocabulary, res.LearningResourceTypes, terms)
	return &view, nil
}

func (s *taxonomyService) DeleteVocabulary(ctx context.Context, repositoryID uuid.UUID, vocabSlug string) error {
	v, err := s.vocabulary(ctx, repositoryID, vocabSlug)
	if err != nil {
		return err
	}
	res, err := s.agg.DeleteVocabulary(ctx, domainagg.DeleteVocabularyInput{VocabularyID: v.ID})
	if err != nil {
		return err
	}
	s.log.Info("Vocabulary deleted",
		"vocabulary_id", v.ID,
		"deleted_terms", res.DeletedTerms,
		"deleted_links", res.DeletedLinks,
	)
	return nil
}

func (s *taxonomyService) ListTerms(ctx context.Context, repositoryID uuid.UUID, vocabSlug string, page int) (Page[TermView], error) {
	out := Page[TermView]{Page: page}
	v, err := s.vocabulary(ctx, repositoryID, vocabSlug)
	if err != nil {
		return out, err
	}
	offset, limit := pageBounds(page)
	rows, total, err := s.terms.ListByVocabulary(ctx, nil, v.ID, offset, limit)
	if err != nil {
		return out, err
	}
	if err := checkPage(page, total); err != nil {
		return out, err
	}
	out.Count = total
	out.Results = make([]TermView, 0, len(rows))
	for _, t := range rows {
		out.Results = append(out.Results, NewTermView(t))
	}
	return out, nil
}

func (s *taxonomyService) GetTerm(ctx context.Context, repositoryID uuid.UUID, vocabSlug, termSlug string) (*TermView, error) {
	t, err := s.term(ctx, repositoryID, vocabSlug, termSlug)
	if err != nil {
		return nil, err
	}
	view := NewTermView(t)
	return &view, nil
}

func (s *taxonomyService) CreateTerm(ctx context.Context, repositoryID uuid.UUID, vocabSlug string, in domainagg.CreateTermInput) (*TermView, error) {
	v, err := s.vocabulary(ctx, repositoryID, vocabSlug)
	if err != nil {
		return nil, err
	}
	in.VocabularyID = v.ID
	res, err := s.agg.CreateTerm(ctx, in)
	if err != nil {
		return nil, err
	}
	view := NewTermView(res.Term)
	return &view, nil
}

func (s *taxonomyService) UpdateTerm(ctx context.Context, repositoryID uuid.UUID, vocabSlug, termSlug string, in domainagg.UpdateTermInput, partial bool) (*TermView, error) {
	t, err := s.term(ctx, repositoryID, vocabSlug, termSlug)
	if err != nil {
		return nil, err
	}
	if !partial {
		missing := domainagg.FieldErrors{}
		if in.Label == nil {
			missing.Add("label", msgRequired)
		}
		if in.Weight == nil {
			missing.Add("weight", msgRequired)
		}
		if !missing.Empty() {
			return nil, domainagg.NewValidationError("Taxonomy.UpdateTerm", missing)
		}
	}
	in.TermID = t.ID
	res, err := s.agg.UpdateTerm(ctx, in)
	if err != nil {
		return nil, err
	}
	view := NewTermView(res.Term)
	return &view, nil
}

func (s *taxonomyService) DeleteTerm(ctx context.Context, repositoryID uuid.UUID, vocabSlug, termSlug string) error {
	t, err := s.term(ctx, repositoryID, vocabSlug, termSlug)
	if err != nil {
		return err
	}
	_, err = s.agg.DeleteTerm(ctx, domainagg.DeleteTermInput{TermID: t.ID})
	return err
}

func (s *taxonomyService) vocabulary(ctx context.Context, repositoryID uuid.UUID, vocabSlug string) (*types.Vocabulary, error) {
	v, err := s.vocabs.GetBySlug(ctx, nil, repositoryID, vocabSlug)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apierr.NotFound("vocabulary")
	}
	return v, nil
}

func (s *taxonomyService) term(ctx context.Context, repositoryID uuid.UUID, vocabSlug, termSlug string) (*types.Term, error) {
	v, err := s.vocabulary(ctx, repositoryID, vocabSlug)
	if err != nil {
		return nil, err
	}
	t, err := s.terms.GetBySlug(ctx, nil, v.ID, termSlug)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apierr.NotFound("term")
	}
	return t, nil
}

func (s *taxonomyService) vocabularyView(ctx context.Context, v *types.Vocabulary) (*VocabularyView, error) {
	views, err := s.vocabularyViews(ctx, []*types.Vocabulary{v})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *taxonomyService) vocabularyViews(ctx context.Context, vocabs []*types.Vocabulary) ([]VocabularyView, error) {
	out := make([]VocabularyView, 0, len(vocabs))
	if len(vocabs) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(vocabs))
	for _, v := range vocabs {
		ids = append(ids, v.ID)
	}
	typeNames, err := s.vocabTypes.TypeNamesByVocabularyIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	terms, err := s.terms.ListByVocabularyIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	termsByVocab := make(map[uuid.UUID][]*types.Term, len(vocabs))
	for _, t := range terms {
		termsByVocab[t.VocabularyID] = append(termsByVocab[t.VocabularyID], t)
	}
	for _, v := range vocabs {
		out = append(out, NewVocabularyView(v, typeNames[v.ID], termsByVocab[v.ID]))
	}
	return out, nil
}
