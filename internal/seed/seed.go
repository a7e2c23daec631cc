// Package seed loads repositories and their taxonomies from a YAML file.
// Applying the same file twice leaves the database unchanged.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/lore-backend/internal/data/repos"
	types "github.com/yungbote/lore-backend/internal/domain"
	domainagg "github.com/yungbote/lore-backend/internal/domain/aggregates"
	"github.com/yungbote/lore-backend/internal/pkg/pointers"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

type File struct {
	ResourceTypes []string     `yaml:"learning_resource_types"`
	Repositories  []Repository `yaml:"repositories"`
}

type Repository struct {
	Name         string       `yaml:"name"`
	Description  string       `yaml:"description"`
	CreatedBy    string       `yaml:"created_by"`
	Members      []Member     `yaml:"members"`
	Vocabularies []Vocabulary `yaml:"vocabularies"`
}

type Member struct {
	Subject string `yaml:"subject"`
	Role    string `yaml:"role"`
}

type Vocabulary struct {
	Name                  string   `yaml:"name"`
	Description           string   `yaml:"description"`
	Required              bool     `yaml:"required"`
	Weight                int      `yaml:"weight"`
	VocabularyType        string   `yaml:"vocabulary_type"`
	LearningResourceTypes []string `yaml:"learning_resource_types"`
	Terms                 []Term   `yaml:"terms"`
}

type Term struct {
	Label  string `yaml:"label"`
	Weight int    `yaml:"weight"`
}

// UnmarshalYAML accepts a bare label as shorthand for {label: X}.
func (t *Term) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		t.Label = node.Value
		return nil
	}
	type plain Term
	return node.Decode((*plain)(t))
}

func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i := range f.Repositories {
		r := &f.Repositories[i]
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("repositories[%d]: name is required", i)
		}
		if r.CreatedBy == "" {
			r.CreatedBy = "seed"
		}
		for j := range r.Vocabularies {
			v := &r.Vocabularies[j]
			if strings.TrimSpace(v.Name) == "" {
				return nil, fmt.Errorf("repositories[%d].vocabularies[%d]: name is required", i, j)
			}
			if v.VocabularyType == "" {
				v.VocabularyType = types.VocabularyTypeManaged
			}
		}
	}
	return &f, nil
}

func ParseFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Parse(fh)
}

// Summary counts what an Apply created or changed.
type Summary struct {
	Repositories int
	Members      int
	Vocabularies int
	Terms        int
}

type Loader struct {
	log      *logger.Logger
	repos    repos.Set
	catalog  domainagg.CatalogAggregate
	taxonomy domainagg.TaxonomyAggregate
}

func NewLoader(baseLog *logger.Logger, set repos.Set, catalog domainagg.CatalogAggregate, taxonomy domainagg.TaxonomyAggregate) *Loader {
	return &Loader{
		log:      baseLog.With("component", "SeedLoader"),
		repos:    set,
		catalog:  catalog,
		taxonomy: taxonomy,
	}
}

// Apply creates what is missing and converges what exists. Writes go through
// the aggregates so the search index follows every change.
func (l *Loader) Apply(ctx context.Context, f *File) (Summary, error) {
	var sum Summary
	if f == nil {
		return sum, nil
	}
	typeNames := mapset.NewThreadUnsafeSet(f.ResourceTypes...)
	for _, r := range f.Repositories {
		for _, v := range r.Vocabularies {
			typeNames.Append(v.LearningResourceTypes...)
		}
	}
	if typeNames.Cardinality() > 0 {
		if _, err := l.repos.ResourceType.Ensure(ctx, nil, mapset.Sorted(typeNames)); err != nil {
			return sum, fmt.Errorf("ensure learning resource types: %w", err)
		}
	}

	existing, err := l.repos.Repository.ListAll(ctx, nil)
	if err != nil {
		return sum, fmt.Errorf("list repositories: %w", err)
	}
	byName := make(map[string]*types.Repository, len(existing))
	for _, r := range existing {
		byName[r.Name] = r
	}

	for _, in := range f.Repositories {
		repo := byName[in.Name]
		if repo == nil {
			repo, err = l.catalog.CreateRepository(ctx, domainagg.CreateRepositoryInput{
				Name:        in.Name,
				Description: in.Description,
				CreatedBy:   in.CreatedBy,
			})
			if err != nil {
				return sum, fmt.Errorf("repository %q: %w", in.Name, err)
			}
			byName[in.Name] = repo
			sum.Repositories++
			l.log.Info("Seeded repository", "repository", repo.Slug)
		}
		for _, m := range in.Members {
			current, err := l.repos.Member.Get(ctx, nil, repo.ID, m.Subject)
			if err != nil {
				return sum, fmt.Errorf("repository %q member %q: %w", in.Name, m.Subject, err)
			}
			if current != nil && current.Role == m.Role {
				continue
			}
			if _, err := l.catalog.SetMember(ctx, domainagg.SetMemberInput{
				RepositoryID: repo.ID,
				Subject:      m.Subject,
				Role:         m.Role,
			}); err != nil {
				return sum, fmt.Errorf("repository %q member %q: %w", in.Name, m.Subject, err)
			}
			sum.Members++
		}
		for _, v := range in.Vocabularies {
			if err := l.applyVocabulary(ctx, repo, v, &sum); err != nil {
				return sum, fmt.Errorf("repository %q vocabulary %q: %w", in.Name, v.Name, err)
			}
		}
	}
	return sum, nil
}

func (l *Loader) applyVocabulary(ctx context.Context, repo *types.Repository, in Vocabulary, sum *Summary) error {
	vocab, err := l.repos.Vocabulary.GetByName(ctx, nil, repo.ID, in.Name)
	if err != nil {
		return err
	}
	if vocab == nil {
		res, err := l.taxonomy.CreateVocabulary(ctx, domainagg.CreateVocabularyInput{
			RepositoryID:          repo.ID,
			Name:                  in.Name,
			Description:           in.Description,
			Required:              pointers.Ptr(in.Required),
			Weight:                pointers.Ptr(in.Weight),
			VocabularyType:        in.VocabularyType,
			LearningResourceTypes: in.LearningResourceTypes,
		})
		if err != nil {
			return err
		}
		vocab = res.Vocabulary
		sum.Vocabularies++
	} else if l.vocabularyChanged(ctx, vocab, in) {
		if _, err := l.taxonomy.UpdateVocabulary(ctx, domainagg.UpdateVocabularyInput{
			VocabularyID:          vocab.ID,
			Description:           pointers.Ptr(in.Description),
			Required:              pointers.Ptr(in.Required),
			Weight:                pointers.Ptr(in.Weight),
			VocabularyType:        pointers.Ptr(in.VocabularyType),
			LearningResourceTypes: pointers.Strings(in.LearningResourceTypes...),
		}); err != nil {
			return err
		}
		sum.Vocabularies++
	}

	for _, t := range in.Terms {
		term, err := l.repos.Term.GetByLabel(ctx, nil, vocab.ID, t.Label)
		if err != nil {
			return err
		}
		switch {
		case term == nil:
			if _, err := l.taxonomy.CreateTerm(ctx, domainagg.CreateTermInput{
				VocabularyID: vocab.ID,
				Label:        t.Label,
				Weight:       pointers.Ptr(t.Weight),
			}); err != nil {
				return fmt.Errorf("term %q: %w", t.Label, err)
			}
			sum.Terms++
		case term.Weight != t.Weight:
			if _, err := l.taxonomy.UpdateTerm(ctx, domainagg.UpdateTermInput{
				TermID: term.ID,
				Weight: pointers.Ptr(t.Weight),
			}); err != nil {
				return fmt.Errorf("term %q: %w", t.Label, err)
			}
			sum.Terms++
		}
	}
	return nil
}

func (l *Loader) vocabularyChanged(ctx context.Context, v *types.Vocabulary, in Vocabulary) bool {
	if v.Description != in.Description || v.Required != in.Required || v.Weight != in.Weight || v.VocabularyType != in.VocabularyType {
		return true
	}
	names, err := l.repos.VocabularyResourceType.TypeNamesByVocabularyIDs(ctx, nil, []uuid.UUID{v.ID})
	if err != nil {
		return true
	}
	have := mapset.NewThreadUnsafeSet(names[v.ID]...)
	want := mapset.NewThreadUnsafeSet(in.LearningResourceTypes...)
	return !have.Equal(want)
}
