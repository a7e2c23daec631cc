package aggregates

import (
	"context"
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lore-backend/internal/data/repos"
	types "github.com/yungbote/lore-backend/internal/domain"
	domainagg "github.com/yungbote/lore-backend/internal/domain/aggregates"
	"github.com/yungbote/lore-backend/internal/indexsync"
	"github.com/yungbote/lore-backend/internal/pkg/slug"
	"github.com/yungbote/lore-backend/internal/platform/dbctx"
)

type TaxonomyAggregateDeps struct {
	Base BaseDeps

	Repositories    repos.RepositoryRepo
	ResourceTypes   repos.ResourceTypeRepo
	Resources       repos.ResourceRepo
	Vocabularies    repos.VocabularyRepo
	VocabularyTypes repos.VocabularyResourceTypeRepo
	Terms           repos.TermRepo
	Links           repos.ResourceTermRepo
}

// NewTaxonomyAggregateDepsFromSet fills the repo fields from a repo set.
func NewTaxonomyAggregateDepsFromSet(base BaseDeps, set repos.Set) TaxonomyAggregateDeps {
	return TaxonomyAggregateDeps{
		Base:            base,
		Repositories:    set.Repository,
		ResourceTypes:   set.ResourceType,
		Resources:       set.Resource,
		Vocabularies:    set.Vocabulary,
		VocabularyTypes: set.VocabularyResourceType,
		Terms:           set.Term,
		Links:           set.ResourceTerm,
	}
}

type taxonomyAggregate struct {
	deps TaxonomyAggregateDeps
}

func NewTaxonomyAggregate(deps TaxonomyAggregateDeps) domainagg.TaxonomyAggregate {
	deps.Base = deps.Base.withDefaults()
	return &taxonomyAggregate{deps: deps}
}

func (a *taxonomyAggregate) Contract() domainagg.Contract {
	return domainagg.TaxonomyAggregateContract
}

func (a *taxonomyAggregate) CreateVocabulary(ctx context.Context, in domainagg.CreateVocabularyInput) (domainagg.VocabularyResult, error) {
	const op = "Taxonomy.CreateVocabulary"
	var out domainagg.VocabularyResult
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(a.deps.Base.Validate, op, in); err != nil {
		return out, err
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) (indexsync.Scope, error) {
		scope := indexsync.Scope{RepositoryID: in.RepositoryID}
		tx := dbc.Tx

		repo, err := a.deps.Repositories.GetByID(dbc.Ctx, tx, in.RepositoryID)
		if err != nil {
			return scope, err
		}
		if repo == nil {
			return scope, domainagg.NotFound(op, "repository")
		}
		if err := a.ensureVocabularyNameFree(dbc.Ctx, tx, op, in.RepositoryID, in.Name, uuid.Nil); err != nil {
			return scope, err
		}
		typeRows, err := a.resolveResourceTypes(dbc.Ctx, tx, op, in.LearningResourceTypes)
		if err != nil {
			return scope, err
		}
		vocabSlug, err := a.vocabularySlug(dbc.Ctx, tx, in.RepositoryID, in.Name, uuid.Nil)
		if err != nil {
			return scope, err
		}

		vocab := &types.Vocabulary{
			ID:             uuid.New(),
			RepositoryID:   in.RepositoryID,
			Name:           in.Name,
			Slug:           vocabSlug,
			Description:    in.Description,
			Required:       *in.Required,
			Weight:         *in.Weight,
			VocabularyType: in.VocabularyType,
		}
		if err := a.deps.Vocabularies.Create(dbc.Ctx, tx, vocab); err != nil {
			return scope, err
		}
		if err := a.deps.VocabularyTypes.Replace(dbc.Ctx, tx, vocab.ID, typeIDs(typeRows)); err != nil {
			return scope, err
		}

		out = domainagg.VocabularyResult{Vocabulary: vocab, LearningResourceTypes: typeNames(typeRows)}
		scope.AddVocabulary(vocab.ID)
		return scope, nil
	})
	return out, err
}

func (a *taxonomyAggregate) UpdateVocabulary(ctx context.Context, in domainagg.UpdateVocabularyInput) (domainagg.VocabularyResult, error) {
	const op = "Taxonomy.UpdateVocabulary"
	var out domainagg.VocabularyResult
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	if err := validateInput(a.deps.Base.Validate, op, in); err != nil {
		return out, err
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) (indexsync.Scope, error) {
		var scope indexsync.Scope
		tx := dbc.Tx

		vocab, err := a.deps.Vocabularies.GetByID(dbc.Ctx, tx, in.VocabularyID)
		if err != nil {
			return scope, err
		}
		if vocab == nil {
			return scope, domainagg.NotFound(op, "vocabulary")
		}
		scope.RepositoryID = vocab.RepositoryID

		updates := map[string]interface{}{}
		if in.Name != nil && *in.Name != vocab.Name {
			if err := a.ensureVocabularyNameFree(dbc.Ctx, tx, op, vocab.RepositoryID, *in.Name, vocab.ID); err != nil {
				return scope, err
			}
			newSlug, err := a.vocabularySlug(dbc.Ctx, tx, vocab.RepositoryID, *in.Name, vocab.ID)
			if err != nil {
				return scope, err
			}
			updates["name"] = *in.Name
			updates["slug"] = newSlug
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.Required != nil {
			updates["required"] = *in.Required
		}
		if in.Weight != nil {
			updates["weight"] = *in.Weight
		}
		if in.VocabularyType != nil {
			updates["vocabulary_type"] = *in.VocabularyType
		}

		if in.LearningResourceTypes != nil {
			typeRows, err := a.resolveResourceTypes(dbc.Ctx, tx, op, *in.LearningResourceTypes)
			if err != nil {
				return scope, err
			}
			allowed := typeIDs(typeRows)
			if err := a.deps.VocabularyTypes.Replace(dbc.Ctx, tx, vocab.ID, allowed); err != nil {
				return scope, err
			}
			// Links whose resource type left the permitted set go with it.
			stale, err := a.deps.Links.ListDisallowed(dbc.Ctx, tx, vocab.ID, allowed)
			if err != nil {
				return scope, err
			}
			if len(stale) > 0 {
				removed, err := a.deps.Links.DeleteLinks(dbc.Ctx, tx, stale)
				if err != nil {
					return scope, err
				}
				out.RemovedLinks = int(removed)
				for _, l := range stale {
					scope.AddResource(l.LearningResourceID)
				}
			}
		}

		if len(updates) > 0 {
			if err := a.deps.Vocabularies.UpdateFields(dbc.Ctx, tx, vocab.ID, updates); err != nil {
				return scope, err
			}
		}

		fresh, err := a.deps.Vocabularies.GetByID(dbc.Ctx, tx, vocab.ID)
		if err != nil {
			return scope, err
		}
		names, err := a.deps.VocabularyTypes.TypeNamesByVocabularyIDs(dbc.Ctx, tx, []uuid.UUID{vocab.ID})
		if err != nil {
			return scope, err
		}
		out.Vocabulary = fresh
		out.LearningResourceTypes = nonNil(names[vocab.ID])
		scope.AddVocabulary(vocab.ID)
		return scope, nil
	})
	return out, err
}

// DeleteVocabulary removes, in order: the vocabulary's links, its terms, its
// permitted types and the vocabulary row. After commit the facet is dropped
// and every resource that lost a link is reindexed.
func (a *taxonomyAggregate) DeleteVocabulary(ctx context.Context, in domainagg.DeleteVocabularyInput) (domainagg.DeleteResult, error) {
	const op = "Taxonomy.DeleteVocabulary"
	var out domainagg.DeleteResult
	if err := validateInput(a.deps.Base.Validate, op, in); err != nil {
		return out, err
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) (indexsync.Scope, error) {
		var scope indexsync.Scope
		tx := dbc.Tx

		vocab, err := a.deps.Vocabularies.GetByID(dbc.Ctx, tx, in.VocabularyID)
		if err != nil {
			return scope, err
		}
		if vocab == nil {
			return scope, domainagg.NotFound(op, "vocabulary")
		}
		scope.RepositoryID = vocab.RepositoryID

		terms, err := a.deps.Terms.ListByVocabularyIDs(dbc.Ctx, tx, []uuid.UUID{vocab.ID})
		if err != nil {
			return scope, err
		}
		ids := make([]uuid.UUID, 0, len(terms))
		for _, t := range terms {
			ids = append(ids, t.ID)
		}
		links, err := a.deps.Links.ListByTermIDs(dbc.Ctx, tx, ids)
		if err != nil {
			return scope, err
		}
		scope.RemoveFacet(vocab.IndexKey())
		for _, l := range links {
			scope.AddResource(l.LearningResourceID)
		}

		removed, err := a.deps.Links.DeleteByTermIDs(dbc.Ctx, tx, ids)
		if err != nil {
			return scope, err
		}
		if err := a.deps.Terms.DeleteByIDs(dbc.Ctx, tx, ids); err != nil {
			return scope, err
		}
		if err := a.deps.VocabularyTypes.DeleteByVocabularyID(dbc.Ctx, tx, vocab.ID); err != nil {
			return scope, err
		}
		if err := a.deps.Vocabularies.DeleteByID(dbc.Ctx, tx, vocab.ID); err != nil {
			return scope, err
		}

		out = domainagg.DeleteResult{DeletedTerms: len(ids), DeletedLinks: int(removed)}
		return scope, nil
	})
	return out, err
}

func (a *taxonomyAggregate) CreateTerm(ctx context.Context, in domainagg.CreateTermInput) (domainagg.TermResult, error) {
	const op = "Taxonomy.CreateTerm"
	var out domainagg.TermResult
	in.Label = strings.TrimSpace(in.Label)
	if err := validateInput(a.deps.Base.Validate, op, in); err != nil {
		return out, err
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) (indexsync.Scope, error) {
		var scope indexsync.Scope
		tx := dbc.Tx

		vocab, err := a.deps.Vocabularies.GetByID(dbc.Ctx, tx, in.VocabularyID)
		if err != nil {
			return scope, err
		}
		if vocab == nil {
			return scope, domainagg.NotFound(op, "vocabulary")
		}
		scope.RepositoryID = vocab.RepositoryID

		if err := a.ensureTermLabelFree(dbc.Ctx, tx, op, vocab.ID, in.Label, uuid.Nil); err != nil {
			return scope, err
		}
		termSlug, err := a.termSlug(dbc.Ctx, tx, vocab.ID, in.Label, uuid.Nil)
		if err != nil {
			return scope, err
		}
		term := &types.Term{
			ID:           uuid.New(),
			VocabularyID: vocab.ID,
			Label:        in.Label,
			Slug:         termSlug,
			Weight:       *in.Weight,
		}
		if err := a.deps.Terms.Create(dbc.Ctx, tx, term); err != nil {
			return scope, err
		}
		// An unlinked term is not a facet value yet; nothing to reconcile.
		out.Term = term
		return scope, nil
	})
	return out, err
}

func (a *taxonomyAggregate) UpdateTerm(ctx context.Context, in domainagg.UpdateTermInput) (domainagg.TermResult, error) {
	const op = "Taxonomy.UpdateTerm"
	var out domainagg.TermResult
	if in.Label != nil {
		trimmed := strings.TrimSpace(*in.Label)
		in.Label = &trimmed
	}
	if err := validateInput(a.deps.Base.Validate, op, in); err != nil {
		return out, err
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) (indexsync.Scope, error) {
		var scope indexsync.Scope
		tx := dbc.Tx

		term, vocab, err := a.loadTerm(dbc.Ctx, tx, op, in.TermID)
		if err != nil {
			return scope, err
		}
		scope.RepositoryID = vocab.RepositoryID

		updates := map[string]interface{}{}
		if in.Label != nil && *in.Label != term.Label {
			if err := a.ensureTermLabelFree(dbc.Ctx, tx, op, vocab.ID, *in.Label, term.ID); err != nil {
				return scope, err
			}
			newSlug, err := a.termSlug(dbc.Ctx, tx, vocab.ID, *in.Label, term.ID)
			if err != nil {
				return scope, err
			}
			updates["label"] = *in.Label
			updates["slug"] = newSlug
			// The facet value carries the label.
			scope.AddVocabulary(vocab.ID)
		}
		if in.Weight != nil {
			updates["weight"] = *in.Weight
		}
		if len(updates) > 0 {
			if err := a.deps.Terms.UpdateFields(dbc.Ctx, tx, term.ID, updates); err != nil {
				return scope, err
			}
		}
		fresh, err := a.deps.Terms.GetByID(dbc.Ctx, tx, term.ID)
		if err != nil {
			return scope, err
		}
		out.Term = fresh
		return scope, nil
	})
	return out, err
}

func (a *taxonomyAggregate) DeleteTerm(ctx context.Context, in domainagg.DeleteTermInput) (domainagg.DeleteResult, error) {
	const op = "Taxonomy.DeleteTerm"
	var out domainagg.DeleteResult
	if err := validateInput(a.deps.Base.Validate, op, in); err != nil {
		return out, err
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) (indexsync.Scope, error) {
		var scope indexsync.Scope
		tx := dbc.Tx

		term, vocab, err := a.loadTerm(dbc.Ctx, tx, op, in.TermID)
		if err != nil {
			return scope, err
		}
		scope.RepositoryID = vocab.RepositoryID

		links, err := a.deps.Links.ListByTermIDs(dbc.Ctx, tx, []uuid.UUID{term.ID})
		if err != nil {
			return scope, err
		}
		removed, err := a.deps.Links.DeleteByTermIDs(dbc.Ctx, tx, []uuid.UUID{term.ID})
		if err != nil {
			return scope, err
		}
		if err := a.deps.Terms.DeleteByIDs(dbc.Ctx, tx, []uuid.UUID{term.ID}); err != nil {
			return scope, err
		}
		for _, l := range links {
			scope.AddResource(l.LearningResourceID)
		}
		scope.AddVocabulary(vocab.ID)
		out = domainagg.DeleteResult{DeletedTerms: 1, DeletedLinks: int(removed)}
		return scope, nil
	})
	return out, err
}

// SetResourceTerms resolves every slug among the terms of the resource's
// repository, keeping only terms whose vocabulary permits the resource's
// type, and replaces the link set with the result.
func (a *taxonomyAggregate) SetResourceTerms(ctx context.Context, in domainagg.SetResourceTermsInput) (domainagg.SetResourceTermsResult, error) {
	const op = "Taxonomy.SetResourceTerms"
	var out domainagg.SetResourceTermsResult
	if err := validateInput(a.deps.Base.Validate, op, in); err != nil {
		return out, err
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) (indexsync.Scope, error) {
		var scope indexsync.Scope
		tx := dbc.Tx

		rows, err := a.deps.Resources.GetRows(dbc.Ctx, tx, []uuid.UUID{in.ResourceID})
		if err != nil {
			return scope, err
		}
		if len(rows) == 0 {
			return scope, domainagg.NotFound(op, "learning resource")
		}
		res := rows[0]
		scope.RepositoryID = res.RepositoryID

		chosen, err := a.resolveTermSlugs(dbc.Ctx, tx, op, res, in.TermSlugs)
		if err != nil {
			return scope, err
		}

		current, err := a.deps.Links.ListByResource(dbc.Ctx, tx, res.ID)
		if err != nil {
			return scope, err
		}
		want := mapset.NewThreadUnsafeSet[uuid.UUID]()
		for _, t := range chosen {
			want.Add(t.ID)
		}
		have := mapset.NewThreadUnsafeSet[uuid.UUID]()
		for _, l := range current {
			have.Add(l.TermID)
		}
		toRemove := have.Difference(want).ToSlice()
		toAdd := want.Difference(have).ToSlice()

		if len(toRemove) > 0 {
			removedTerms, err := a.deps.Terms.GetByIDs(dbc.Ctx, tx, toRemove)
			if err != nil {
				return scope, err
			}
			for _, t := range removedTerms {
				scope.AddVocabulary(t.VocabularyID)
			}
			if _, err := a.deps.Links.DeleteByResourceAndTermIDs(dbc.Ctx, tx, res.ID, toRemove); err != nil {
				return scope, err
			}
		}
		if len(toAdd) > 0 {
			newLinks := make([]*types.ResourceTerm, 0, len(toAdd))
			for _, id := range toAdd {
				newLinks = append(newLinks, &types.ResourceTerm{LearningResourceID: res.ID, TermID: id})
			}
			if _, err := a.deps.Links.CreateIgnoreDuplicates(dbc.Ctx, tx, newLinks); err != nil {
				return scope, err
			}
			for _, t := range chosen {
				if want.Contains(t.ID) && !have.Contains(t.ID) {
					scope.AddVocabulary(t.VocabularyID)
				}
			}
		}

		scope.AddResource(res.ID)
		out = domainagg.SetResourceTermsResult{Terms: chosen, Added: len(toAdd), Removed: len(toRemove)}
		return scope, nil
	})
	return out, err
}

func (a *taxonomyAggregate) resolveTermSlugs(ctx context.Context, tx *gorm.DB, op string, res *repos.ResourceRow, raw []string) ([]*types.Term, error) {
	slugs := make([]string, 0, len(raw))
	seen := map[string]bool{}
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		slugs = append(slugs, s)
	}
	if len(slugs) == 0 {
		return []*types.Term{}, nil
	}

	candidates, err := a.deps.Terms.GetBySlugsInRepository(ctx, tx, res.RepositoryID, slugs)
	if err != nil {
		return nil, err
	}
	bySlug := map[string][]*types.Term{}
	permitted := map[uuid.UUID]bool{}
	for _, t := range candidates {
		bySlug[t.Slug] = append(bySlug[t.Slug], t)
		if _, ok := permitted[t.VocabularyID]; ok {
			continue
		}
		ids, err := a.deps.VocabularyTypes.ListTypeIDs(ctx, tx, t.VocabularyID)
		if err != nil {
			return nil, err
		}
		permitted[t.VocabularyID] = containsUUID(ids, res.LearningResourceTypeID)
	}

	fields := domainagg.FieldErrors{}
	chosen := make([]*types.Term, 0, len(slugs))
	for _, s := range slugs {
		matches := bySlug[s]
		if len(matches) == 0 {
			fields.Add("terms", fmt.Sprintf("Term with slug %q does not exist.", s))
			continue
		}
		allowed := make([]*types.Term, 0, len(matches))
		for _, t := range matches {
			if permitted[t.VocabularyID] {
				allowed = append(allowed, t)
			}
		}
		switch len(allowed) {
		case 0:
			fields.Add("terms", fmt.Sprintf("Term %q is not allowed for learning resource type %q.", s, res.TypeName))
		case 1:
			chosen = append(chosen, allowed[0])
		default:
			fields.Add("terms", fmt.Sprintf("Term slug %q matches terms in more than one vocabulary.", s))
		}
	}
	if !fields.Empty() {
		return nil, domainagg.NewValidationError(op, fields)
	}
	return chosen, nil
}

func (a *taxonomyAggregate) loadTerm(ctx context.Context, tx *gorm.DB, op string, id uuid.UUID) (*types.Term, *types.Vocabulary, error) {
	term, err := a.deps.Terms.GetByID(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	if term == nil {
		return nil, nil, domainagg.NotFound(op, "term")
	}
	vocab, err := a.deps.Vocabularies.GetByID(ctx, tx, term.VocabularyID)
	if err != nil {
		return nil, nil, err
	}
	if vocab == nil {
		return nil, nil, domainagg.NotFound(op, "vocabulary")
	}
	return term, vocab, nil
}

func (a *taxonomyAggregate) ensureVocabularyNameFree(ctx context.Context, tx *gorm.DB, op string, repositoryID uuid.UUID, name string, self uuid.UUID) error {
	existing, err := a.deps.Vocabularies.GetByName(ctx, tx, repositoryID, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return domainagg.FieldError(op, "name", "vocabulary with this name already exists.")
	}
	return nil
}

func (a *taxonomyAggregate) ensureTermLabelFree(ctx context.Context, tx *gorm.DB, op string, vocabularyID uuid.UUID, label string, self uuid.UUID) error {
	existing, err := a.deps.Terms.GetByLabel(ctx, tx, vocabularyID, label)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return domainagg.FieldError(op, "label", "term with this label already exists.")
	}
	return nil
}

func (a *taxonomyAggregate) vocabularySlug(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, name string, self uuid.UUID) (string, error) {
	existing, err := a.deps.Vocabularies.SlugsWithPrefix(ctx, tx, repositoryID, slugBase(name, slug.VocabularyFallback), self)
	if err != nil {
		return "", err
	}
	return slug.Generate(name, slug.VocabularyFallback, slug.TakenSet(existing)), nil
}

func (a *taxonomyAggregate) termSlug(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID, label string, self uuid.UUID) (string, error) {
	existing, err := a.deps.Terms.SlugsWithPrefix(ctx, tx, vocabularyID, slugBase(label, slug.TermFallback), self)
	if err != nil {
		return "", err
	}
	return slug.Generate(label, slug.TermFallback, slug.TakenSet(existing)), nil
}

// resolveResourceTypes de-duplicates names and loads the matching types;
// an unknown name is a validation error on learning_resource_types.
func (a *taxonomyAggregate) resolveResourceTypes(ctx context.Context, tx *gorm.DB, op string, names []string) ([]*types.LearningResourceType, error) {
	uniq := make([]string, 0, len(names))
	seen := map[string]bool{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if seen[n] {
			continue
		}
		seen[n] = true
		uniq = append(uniq, n)
	}
	if len(uniq) == 0 {
		return nil, nil
	}
	rows, err := a.deps.ResourceTypes.GetByNames(ctx, tx, uniq)
	if err != nil {
		return nil, err
	}
	found := map[string]bool{}
	for _, r := range rows {
		found[r.Name] = true
	}
	fields := domainagg.FieldErrors{}
	for _, n := range uniq {
		if !found[n] {
			fields.Add("learning_resource_types", fmt.Sprintf("Invalid learning resource type %q.", n))
		}
	}
	if !fields.Empty() {
		return nil, domainagg.NewValidationError(op, fields)
	}
	return rows, nil
}

func slugBase(label, fallback string) string {
	if base := slug.Normalize(label); base != "" {
		return base
	}
	return fallback
}

func typeIDs(rows []*types.LearningResourceType) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func typeNames(rows []*types.LearningResourceType) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Name)
	}
	sort.Strings(out)
	return out
}

func containsUUID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
