// internal/store/store.go

// Package store defines the native document-store collaborator for job
// postings. The interface models a deliberately weak store: equality on one
// scalar field, "array contains any" membership, a range bound on one scalar
// field, and a single global sort order (timestamp descending, identity as
// tie-break) with limit and start-after-identity cursoring.
package store

import (
	"context"
	"errors"
	"time"

	"tradeboard/internal/models"
)

var (
	// ErrInvalidCursor means a start-after identity no longer resolves to an
	// existing row. Pagination state is unrecoverable for this query.
	ErrInvalidCursor = errors.New("invalid pagination cursor")

	// ErrStoreUnavailable wraps transient connectivity failures. Page fetches
	// are read-only, so retrying the same fetch is safe.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound means no row has the requested identity.
	ErrNotFound = errors.New("posting not found")
)

// NativeQuery is the set of predicates the store evaluates server-side.
// Zero-valued fields are absent. Ordering is always timestamp descending;
// PostedAfter occupies the one range slot that can safely accompany it.
type NativeQuery struct {
	CityLower   string
	SkillsAnyOf []string
	PostedAfter time.Time
}

// Store is the native document-store collaborator.
type Store interface {
	// Insert persists a posting and returns its store-assigned identity.
	Insert(ctx context.Context, p models.JobPosting) (string, error)

	// FetchPage returns up to limit rows matching q, ordered by timestamp
	// descending, starting strictly after the row identified by startAfter
	// when it is non-empty. A startAfter naming a missing row yields
	// ErrInvalidCursor.
	FetchPage(ctx context.Context, q NativeQuery, startAfter string, limit int) ([]models.JobPosting, error)

	// GetByID returns the posting with the given identity or ErrNotFound.
	GetByID(ctx context.Context, id string) (models.JobPosting, error)

	// Delete removes the posting with the given identity.
	Delete(ctx context.Context, id string) error

	// Ping tests connectivity.
	Ping(ctx context.Context) error

	// Backend names the store implementation for metrics labels.
	Backend() string
}
