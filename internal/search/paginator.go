// internal/search/paginator.go
package search

import (
	"context"
	"errors"
	"time"

	"tradeboard/internal/common/metrics"
	"tradeboard/internal/models"
	"tradeboard/internal/store"
)

// State is the pagination lifecycle of one query.
type State int

const (
	// StateReady means the next page may be requested.
	StateReady State = iota
	// StateFetching means a fetch is in flight; no concurrent fetch is
	// allowed for the same paginator.
	StateFetching
	// StateExhausted means the store returned a short batch; there are no
	// further rows for this query.
	StateExhausted
	// StateFailed means the cursor is no longer valid; the query has to be
	// restarted from the first page.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFetching:
		return "fetching"
	case StateExhausted:
		return "exhausted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Page is one fetched batch. NextCursor is the identity of the last row and
// is only set when the batch came back full; a short batch is the definitive
// exhaustion signal.
type Page struct {
	Rows       []models.JobPosting
	NextCursor string
	HasMore    bool
}

// Paginator drives keyset pagination for a single query against a store.
// All cursor resolution lives in the store: a cursor naming a deleted row
// surfaces as store.ErrInvalidCursor.
type Paginator struct {
	store    store.Store
	query    store.NativeQuery
	pageSize int

	state  State
	cursor string
}

func NewPaginator(st store.Store, q store.NativeQuery, pageSize int) *Paginator {
	return &Paginator{store: st, query: q, pageSize: pageSize, state: StateReady}
}

// State returns the current lifecycle state.
func (p *Paginator) State() State { return p.state }

// Cursor returns the identity the next fetch will start after, empty on the
// first page.
func (p *Paginator) Cursor() string { return p.cursor }

// Exhausted reports whether the store has signalled that no rows remain.
func (p *Paginator) Exhausted() bool { return p.state == StateExhausted }

// Restore rewinds the paginator to a previously observed cursor position,
// used when resuming a persisted session.
func (p *Paginator) Restore(cursor string, exhausted bool) {
	p.cursor = cursor
	if exhausted {
		p.state = StateExhausted
	} else {
		p.state = StateReady
	}
}

// Next fetches the next page and advances the cursor. Calling Next on an
// exhausted paginator returns an empty page with HasMore false rather than
// touching the store. A transient store failure or a cancelled context leaves
// the paginator Ready at the same cursor, so the identical fetch can be
// retried; an invalid cursor moves it to Failed.
func (p *Paginator) Next(ctx context.Context) (Page, error) {
	switch p.state {
	case StateExhausted:
		return Page{}, nil
	case StateFetching:
		return Page{}, store.ErrStoreUnavailable
	case StateFailed:
		return Page{}, store.ErrInvalidCursor
	}

	p.state = StateFetching
	start := time.Now()
	rows, err := p.store.FetchPage(ctx, p.query, p.cursor, p.pageSize)
	metrics.PageFetchDuration.WithLabelValues(p.store.Backend()).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, store.ErrInvalidCursor) {
			p.state = StateFailed
		} else {
			p.state = StateReady
		}
		return Page{}, err
	}

	metrics.PagesFetched.WithLabelValues(p.store.Backend()).Inc()

	page := Page{Rows: rows}
	if len(rows) == p.pageSize {
		page.NextCursor = rows[len(rows)-1].ID
		page.HasMore = true
		p.cursor = page.NextCursor
		p.state = StateReady
	} else {
		p.state = StateExhausted
	}
	return page, nil
}
