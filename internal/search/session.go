// internal/search/session.go
package search

import (
	"context"
	"sync"
	"time"

	commonerrors "tradeboard/internal/common/errors"
	"tradeboard/internal/models"
	"tradeboard/internal/posting"
	"tradeboard/internal/store"
)

// Session accumulates results for one ongoing search interaction. Search
// resets the accumulation for a new request; LoadMore appends the next page
// under the active request, preserving timestamp-descending order across the
// concatenation. Sessions share no mutable state with each other.
//
// At most one fetch is in flight per session. A Search or LoadMore issued
// while another is pending returns FETCH_IN_FLIGHT instead of interleaving,
// so out-of-order page application can never corrupt the cursor.
type Session struct {
	store  store.Store
	limits Limits
	now    func() time.Time

	mu       sync.Mutex
	inFlight bool

	req      models.SearchRequest
	residual ResidualFilter
	pg       *Paginator
	results  []models.JobSummary
}

func NewSession(st store.Store, limits Limits) *Session {
	return &Session{store: st, limits: limits, now: time.Now}
}

func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return commonerrors.NewFetchInFlightError()
	}
	s.inFlight = true
	return nil
}

func (s *Session) end() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

// Search discards the accumulated results and cursor, executes the first
// page of req, and accumulates its visible rows. An empty first page resets
// the session to empty and reports NO_RESULTS.
func (s *Session) Search(ctx context.Context, req models.SearchRequest) ([]models.JobSummary, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = s.limits.DefaultPageSize
	}
	if pageSize > s.limits.MaxPageSize {
		pageSize = s.limits.MaxPageSize
	}

	q, residual := Plan(req, s.now())
	pg := NewPaginator(s.store, q, pageSize)

	visible, err := fetchVisible(ctx, pg, residual)
	if err != nil {
		// The old accumulation and paginator stay in place; the failed
		// request never became the active one.
		return nil, translateStoreErr(err, "")
	}

	s.mu.Lock()
	s.req = req
	s.residual = residual
	s.pg = pg
	s.results = visible
	s.mu.Unlock()

	if len(visible) == 0 {
		return nil, commonerrors.NewNoResultsError()
	}
	return s.snapshotResults(), nil
}

// LoadMore fetches the next page under the active request and appends its
// visible rows. Pages that residual filtering empties entirely are skipped
// transparently while the store reports more rows; exhaustion never depends
// on the visible count. On failure or cancellation the accumulated rows are
// untouched and the same fetch can be retried.
func (s *Session) LoadMore(ctx context.Context) ([]models.JobSummary, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	if s.pg == nil {
		return nil, commonerrors.NewInvalidFilterFormatError("no active search to load more of")
	}
	if s.pg.Exhausted() {
		return s.snapshotResults(), nil
	}

	visible, err := fetchVisible(ctx, s.pg, s.residual)
	if err != nil {
		return nil, translateStoreErr(err, s.pg.Cursor())
	}

	s.mu.Lock()
	s.results = append(s.results, visible...)
	s.mu.Unlock()
	return s.snapshotResults(), nil
}

// fetchVisible pulls native pages through the paginator until at least one
// row survives the residual filter or the store is exhausted.
func fetchVisible(ctx context.Context, pg *Paginator, residual ResidualFilter) ([]models.JobSummary, error) {
	var visible []models.JobSummary
	for {
		page, err := pg.Next(ctx)
		if err != nil {
			return nil, err
		}
		for _, row := range page.Rows {
			if residual.Matches(row) {
				visible = append(visible, posting.ToSummary(row))
			}
		}
		if len(visible) > 0 || !page.HasMore {
			return visible, nil
		}
	}
}

// Results returns a copy of the accumulated rows.
func (s *Session) Results() []models.JobSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotResults()
}

func (s *Session) snapshotResults() []models.JobSummary {
	out := make([]models.JobSummary, len(s.results))
	copy(out, s.results)
	return out
}

// HasMore reports whether further pages may exist. It is driven by the
// store's exhaustion signal, never by the visible row count.
func (s *Session) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pg != nil && !s.pg.Exhausted()
}

// Request returns the active request, so callers can decide between
// resetting and appending via SearchRequest.SameFilters.
func (s *Session) Request() models.SearchRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.req
}

// Snapshot is the persistable state of a session.
type Snapshot struct {
	Request   models.SearchRequest `json:"request"`
	Results   []models.JobSummary  `json:"results"`
	Cursor    string               `json:"cursor"`
	Exhausted bool                 `json:"exhausted"`
}

// Snapshot captures the session state for persistence.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Request: s.req,
		Results: s.snapshotResults(),
	}
	if s.pg != nil {
		snap.Cursor = s.pg.Cursor()
		snap.Exhausted = s.pg.Exhausted()
	}
	return snap
}

// RestoreSession rebuilds a session from a snapshot against the given store.
func RestoreSession(st store.Store, limits Limits, snap Snapshot) *Session {
	s := NewSession(st, limits)
	if snap.Cursor == "" && len(snap.Results) == 0 && !snap.Exhausted {
		return s
	}

	pageSize := snap.Request.PageSize
	if pageSize <= 0 {
		pageSize = limits.DefaultPageSize
	}
	if pageSize > limits.MaxPageSize {
		pageSize = limits.MaxPageSize
	}

	q, residual := Plan(snap.Request, s.now())
	pg := NewPaginator(st, q, pageSize)
	pg.Restore(snap.Cursor, snap.Exhausted)

	s.req = snap.Request
	s.residual = residual
	s.pg = pg
	s.results = snap.Results
	return s
}
