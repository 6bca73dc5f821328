// internal/search/session_test.go
package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "tradeboard/internal/common/errors"
	"tradeboard/internal/models"
	"tradeboard/internal/store"
)

var testLimits = Limits{DefaultPageSize: 10, MaxPageSize: 50}

// blockingStore gates FetchPage on a channel so tests can hold a fetch in
// flight.
type blockingStore struct {
	*store.MemoryStore
	entered chan struct{}
	release chan struct{}
}

func newBlockingStore(mem *store.MemoryStore) *blockingStore {
	return &blockingStore{
		MemoryStore: mem,
		entered:     make(chan struct{}, 1),
		release:     make(chan struct{}),
	}
}

func (s *blockingStore) FetchPage(ctx context.Context, q store.NativeQuery, startAfter string, limit int) ([]models.JobPosting, error) {
	s.entered <- struct{}{}
	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.MemoryStore.FetchPage(ctx, q, startAfter, limit)
}

func TestSession_SearchThenLoadMoreAppends(t *testing.T) {
	st := store.NewMemory()
	seedPostings(t, st, 5)

	sess := NewSession(st, testLimits)
	first, err := sess.Search(context.Background(), models.SearchRequest{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.True(t, sess.HasMore())

	all, err := sess.LoadMore(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, first[0].ID, all[0].ID, "load more appends, never replaces")
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].Timestamp.After(all[i-1].Timestamp))
	}
}

func TestSession_SearchResetsAccumulation(t *testing.T) {
	st := store.NewMemory()
	seedPostings(t, st, 5)
	_, err := st.Insert(context.Background(), models.JobPosting{
		CityLower: "ottawa",
		Timestamp: time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	sess := NewSession(st, testLimits)
	_, err = sess.Search(context.Background(), models.SearchRequest{PageSize: 2})
	require.NoError(t, err)
	_, err = sess.LoadMore(context.Background())
	require.NoError(t, err)
	require.Len(t, sess.Results(), 4)

	got, err := sess.Search(context.Background(), models.SearchRequest{City: "Ottawa", PageSize: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ottawa", got[0].City)
	assert.Len(t, sess.Results(), 1, "new search discards the old accumulation")
}

func TestSession_FirstPageEmptyIsNoResults(t *testing.T) {
	st := store.NewMemory()

	sess := NewSession(st, testLimits)
	_, err := sess.Search(context.Background(), models.SearchRequest{})
	require.Error(t, err)

	var stdErr *commonerrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, commonerrors.ErrCodeNoResults, stdErr.Code)
	assert.Empty(t, sess.Results())
	assert.False(t, sess.HasMore())
}

func TestSession_LoadMoreAfterExhaustionIsStable(t *testing.T) {
	st := store.NewMemory()
	seedPostings(t, st, 3)

	sess := NewSession(st, testLimits)
	_, err := sess.Search(context.Background(), models.SearchRequest{PageSize: 10})
	require.NoError(t, err)
	assert.False(t, sess.HasMore())

	got, err := sess.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3, "exhausted load more returns the accumulation unchanged")
}

// A store-nonexhausted page that residual filtering empties must not surface
// as exhaustion; fetching continues until visible rows appear.
func TestSession_LoadMoreSkipsFullyFilteredPages(t *testing.T) {
	st := store.NewMemory()
	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	// Newest two pages have rank 1; the oldest page holds the rank-60 rows.
	for i := 0; i < 6; i++ {
		rank := 1
		if i >= 4 {
			rank = 60
		}
		_, err := st.Insert(context.Background(), models.JobPosting{
			DurationRank: rank,
			Timestamp:    base.Add(-time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	sess := NewSession(st, testLimits)
	got, err := sess.Search(context.Background(), models.SearchRequest{
		MinDurationRank: 3,
		PageSize:        2,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 60, got[0].DurationRank)
	assert.True(t, sess.HasMore(), "full final batch keeps the store non-exhausted")

	all, err := sess.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2, "trailing empty page exhausts without new rows")
	assert.False(t, sess.HasMore())
}

func TestSession_SecondCallWhileFetchInFlight(t *testing.T) {
	mem := store.NewMemory()
	seedPostings(t, mem, 3)
	st := newBlockingStore(mem)

	sess := NewSession(st, testLimits)

	done := make(chan error, 1)
	go func() {
		_, err := sess.Search(context.Background(), models.SearchRequest{PageSize: 2})
		done <- err
	}()
	<-st.entered

	_, err := sess.LoadMore(context.Background())
	require.Error(t, err)
	var stdErr *commonerrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, commonerrors.ErrCodeFetchInFlight, stdErr.Code)

	close(st.release)
	require.NoError(t, <-done)
}

func TestSession_FailedFetchLeavesAccumulationIntact(t *testing.T) {
	mem := store.NewMemory()
	seedPostings(t, mem, 5)

	sess := NewSession(mem, testLimits)
	first, err := sess.Search(context.Background(), models.SearchRequest{PageSize: 2})
	require.NoError(t, err)

	mem.FailNextFetch = errors.New("connection reset")
	_, err = sess.LoadMore(context.Background())
	require.Error(t, err)
	assert.Equal(t, first, sess.Results(), "failed load more must not touch accumulated rows")
	assert.True(t, sess.HasMore())

	// Same fetch succeeds on retry.
	all, err := sess.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestSession_CancelledSearchKeepsOldSession(t *testing.T) {
	mem := store.NewMemory()
	seedPostings(t, mem, 4)

	sess := NewSession(mem, testLimits)
	first, err := sess.Search(context.Background(), models.SearchRequest{PageSize: 2})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sess.Search(ctx, models.SearchRequest{City: "Ottawa"})
	require.Error(t, err)

	assert.Equal(t, first, sess.Results(), "cancelled search must not replace the accumulation")
	assert.True(t, sess.HasMore())
}

func TestSession_SnapshotRoundTrip(t *testing.T) {
	st := store.NewMemory()
	seedPostings(t, st, 5)

	sess := NewSession(st, testLimits)
	_, err := sess.Search(context.Background(), models.SearchRequest{PageSize: 2})
	require.NoError(t, err)

	snap := sess.Snapshot()
	restored := RestoreSession(st, testLimits, snap)
	assert.Equal(t, sess.Results(), restored.Results())
	assert.True(t, restored.HasMore())

	all, err := restored.LoadMore(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].Timestamp.After(all[i-1].Timestamp))
	}
}
