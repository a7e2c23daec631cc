package services

import (
	"context"
	"errors"

	"github.com/yungbote/lore-backend/internal/platform/apierr"
	"github.com/yungbote/lore-backend/internal/platform/logger"
	"github.com/yungbote/lore-backend/internal/search"
)

type SearchService interface {
	Search(ctx context.Context, q search.Query) (*search.Result, error)
}

type searchService struct {
	log   *logger.Logger
	index search.Index
}

func NewSearchService(log *logger.Logger, index search.Index) SearchService {
	return &searchService{log: log.With("service", "SearchService"), index: index}
}

func (s *searchService) Search(ctx context.Context, q search.Query) (*search.Result, error) {
	if q.PageSize <= 0 {
		q.PageSize = PageSize
	}
	if q.Page < 1 {
		return nil, apierr.NotFound("page")
	}
	res, err := search.Search(ctx, s.index, q)
	if err != nil {
		var qe *search.QueryError
		if errors.As(err, &qe) {
			return nil, apierr.Invalid(qe.Param, qe.Message)
		}
		s.log.Error("Search failed", "repository_id", q.RepositoryID, "error", err)
		return nil, err
	}
	return res, nil
}
