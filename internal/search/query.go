package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	FieldCourse       = "course"
	FieldRun          = "run"
	FieldResourceType = "resource_type"

	SortRelevance = "relevance"
	SortTitle     = "title"

	DefaultPageSize = 20
	exactSuffix     = "_exact"
)

var baseFacets = []FacetRef{
	{Key: FieldCourse, Label: "Course"},
	{Key: FieldRun, Label: "Run"},
	{Key: FieldResourceType, Label: "Item Type"},
}

type Query struct {
	RepositoryID uuid.UUID
	Text         string
	// SelectedFacets holds "{field}_exact:{value}" filters, all of which must match.
	SelectedFacets []string
	Sort           string
	Page           int
	PageSize       int
}

type FacetRef struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type FacetValueCount struct {
	Count int    `json:"count"`
	Key   string `json:"key"`
	Label string `json:"label"`
}

type FacetCount struct {
	Facet  FacetRef          `json:"facet"`
	Values []FacetValueCount `json:"values"`
}

type Result struct {
	Count       int                   `json:"count"`
	Results     []Document            `json:"results"`
	FacetCounts map[string]FacetCount `json:"facet_counts"`
}

// QueryError reports a malformed query parameter.
type QueryError struct {
	Param   string
	Message string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Message)
}

type facetFilter struct {
	field string
	value string
}

// ParseSelectedFacet splits "{field}_exact:{value}".
func ParseSelectedFacet(raw string) (field, value string, err error) {
	head, value, ok := strings.Cut(raw, ":")
	if !ok || value == "" || !strings.HasSuffix(head, exactSuffix) {
		return "", "", &QueryError{Param: "selected_facets", Message: fmt.Sprintf("%q is not of the form {field}_exact:{value}", raw)}
	}
	field = strings.TrimSuffix(head, exactSuffix)
	if field == "" {
		return "", "", &QueryError{Param: "selected_facets", Message: fmt.Sprintf("%q has an empty field", raw)}
	}
	return field, value, nil
}

// Search runs q against the repository partition of idx.
func Search(ctx context.Context, idx Index, q Query) (*Result, error) {
	filters := make([]facetFilter, 0, len(q.SelectedFacets))
	for _, raw := range q.SelectedFacets {
		field, value, err := ParseSelectedFacet(raw)
		if err != nil {
			return nil, err
		}
		filters = append(filters, facetFilter{field: field, value: value})
	}
	sortMode := strings.TrimSpace(q.Sort)
	switch sortMode {
	case "":
		sortMode = SortRelevance
	case SortRelevance, SortTitle:
	default:
		return nil, &QueryError{Param: "sort", Message: fmt.Sprintf("%q is not one of relevance, title", q.Sort)}
	}

	docs, err := idx.Documents(ctx, q.RepositoryID)
	if err != nil {
		return nil, err
	}
	facets, err := idx.Facets(ctx, q.RepositoryID)
	if err != nil {
		return nil, err
	}

	tokens := strings.Fields(strings.ToLower(q.Text))
	type hit struct {
		doc   Document
		score int
	}
	hits := make([]hit, 0, len(docs))
	for _, d := range docs {
		score, ok := textScore(d, tokens)
		if !ok || !matchesAll(d, filters) {
			continue
		}
		hits = append(hits, hit{doc: d, score: score})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if sortMode == SortRelevance && hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		ti, tj := strings.ToLower(hits[i].doc.Title), strings.ToLower(hits[j].doc.Title)
		if ti != tj {
			return ti < tj
		}
		return hits[i].doc.ID.String() < hits[j].doc.ID.String()
	})

	matched := make([]Document, 0, len(hits))
	for _, h := range hits {
		matched = append(matched, h.doc)
	}

	res := &Result{
		Count:       len(matched),
		Results:     paginate(matched, q.Page, q.PageSize),
		FacetCounts: countFacets(matched, facets),
	}
	return res, nil
}

// textScore reports whether every token occurs in the document and weighs
// title hits above description and body hits.
func textScore(d Document, tokens []string) (int, bool) {
	if len(tokens) == 0 {
		return 0, true
	}
	title := strings.ToLower(d.Title)
	desc := strings.ToLower(d.Description)
	text := strings.ToLower(d.Text)
	score := 0
	for _, tok := range tokens {
		found := false
		if strings.Contains(title, tok) {
			score += 3
			found = true
		}
		if strings.Contains(desc, tok) {
			score += 2
			found = true
		}
		if strings.Contains(text, tok) {
			score++
			found = true
		}
		if !found {
			return 0, false
		}
	}
	return score, true
}

func matchesAll(d Document, filters []facetFilter) bool {
	for _, f := range filters {
		if !containsValue(fieldValues(d, f.field), f.value) {
			return false
		}
	}
	return true
}

func fieldValues(d Document, field string) []string {
	switch field {
	case FieldCourse:
		return []string{d.Course}
	case FieldRun:
		return []string{d.Run}
	case FieldResourceType:
		return []string{d.ResourceType}
	default:
		return d.Terms[field]
	}
}

func containsValue(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func paginate(docs []Document, page, size int) []Document {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(docs) {
		return []Document{}
	}
	end := start + size
	if end > len(docs) {
		end = len(docs)
	}
	return docs[start:end]
}

func countFacets(docs []Document, facets []Facet) map[string]FacetCount {
	out := make(map[string]FacetCount, len(baseFacets)+len(facets))
	for _, ref := range baseFacets {
		counts := map[string]int{}
		for _, d := range docs {
			for _, v := range fieldValues(d, ref.Key) {
				if v != "" {
					counts[v]++
				}
			}
		}
		values := make([]FacetValueCount, 0, len(counts))
		for k, n := range counts {
			values = append(values, FacetValueCount{Count: n, Key: k, Label: k})
		}
		sortValues(values)
		out[ref.Key] = FacetCount{Facet: ref, Values: values}
	}
	for _, f := range facets {
		counts := map[string]int{}
		for _, d := range docs {
			for _, termID := range d.Terms[f.Key] {
				if _, ok := f.Values[termID]; ok {
					counts[termID]++
				}
			}
		}
		values := make([]FacetValueCount, 0, len(counts))
		for termID, n := range counts {
			values = append(values, FacetValueCount{Count: n, Key: termID, Label: f.Values[termID]})
		}
		sortValues(values)
		out[f.Key] = FacetCount{Facet: FacetRef{Key: f.Key, Label: f.Label}, Values: values}
	}
	return out
}

func sortValues(values []FacetValueCount) {
	sort.Slice(values, func(i, j int) bool {
		if values[i].Count != values[j].Count {
			return values[i].Count > values[j].Count
		}
		if values[i].Label != values[j].Label {
			return values[i].Label < values[j].Label
		}
		return values[i].Key < values[j].Key
	})
}
