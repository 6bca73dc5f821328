// internal/search/service.go
package search

import (
	"context"
	"errors"
	"time"

	commonerrors "tradeboard/internal/common/errors"
	"tradeboard/internal/common/logger"
	"tradeboard/internal/common/metrics"
	"tradeboard/internal/models"
	"tradeboard/internal/posting"
	"tradeboard/internal/store"
)

// Limits bound the page size a request may ask for.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Result is one page of visible rows for the stateless API path.
// NextPageToken is empty when the store is exhausted.
type Result struct {
	Jobs          []models.JobSummary
	NextPageToken string
}

// Service executes one stateless search page: plan, fetch, residual-filter,
// project. Sessionful accumulation lives in Session; both share the same
// planner and paginator.
type Service struct {
	store  store.Store
	limits Limits
	logger logger.Logger
	now    func() time.Time
}

func NewService(st store.Store, limits Limits, log logger.Logger) *Service {
	return &Service{
		store:  st,
		limits: limits,
		logger: log.WithFields(map[string]interface{}{"component": "search"}),
		now:    time.Now,
	}
}

func (s *Service) clampPageSize(n int) int {
	if n <= 0 {
		return s.limits.DefaultPageSize
	}
	if n > s.limits.MaxPageSize {
		return s.limits.MaxPageSize
	}
	return n
}

// Page returns the page identified by req.Cursor (first page when empty).
// A native page that residual filtering empties entirely is not surfaced:
// fetching continues until a visible row appears or the store is exhausted,
// so an empty Jobs slice on the first page always means NoResults.
func (s *Service) Page(ctx context.Context, req models.SearchRequest) (Result, error) {
	pageSize := s.clampPageSize(req.PageSize)
	q, residual := Plan(req, s.now())

	pg := NewPaginator(s.store, q, pageSize)
	if req.Cursor != "" {
		pg.Restore(req.Cursor, false)
	}
	firstPage := req.Cursor == ""

	var (
		visible []models.JobSummary
		last    Page
	)
	for {
		page, err := pg.Next(ctx)
		if err != nil {
			metrics.SearchesTotal.WithLabelValues("error").Inc()
			return Result{}, translateStoreErr(err, req.Cursor)
		}
		last = page

		for _, row := range page.Rows {
			if residual.Matches(row) {
				visible = append(visible, posting.ToSummary(row))
			} else {
				metrics.ResidualFilteredRows.Inc()
			}
		}

		if len(visible) > 0 || !page.HasMore {
			break
		}
		s.logger.Debug("page fully residual-filtered, fetching next", map[string]interface{}{
			"cursor": page.NextCursor,
		})
	}

	if firstPage && len(visible) == 0 {
		metrics.SearchesTotal.WithLabelValues("no_results").Inc()
		return Result{}, commonerrors.NewNoResultsError()
	}

	metrics.SearchesTotal.WithLabelValues("ok").Inc()
	res := Result{Jobs: visible}
	if last.HasMore {
		res.NextPageToken = last.NextCursor
	}
	return res, nil
}

// translateStoreErr maps store sentinels onto the standardized error
// taxonomy. Context errors and anything else pass through unchanged.
func translateStoreErr(err error, cursor string) error {
	switch {
	case errors.Is(err, store.ErrInvalidCursor):
		return commonerrors.NewInvalidCursorError(cursor)
	case errors.Is(err, store.ErrStoreUnavailable):
		return commonerrors.NewStoreUnavailableError(err)
	default:
		return err
	}
}
