// internal/search/service_test.go
package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "tradeboard/internal/common/errors"
	"tradeboard/internal/common/logger"
	"tradeboard/internal/models"
	"tradeboard/internal/store"
)

func newTestService(st store.Store) *Service {
	return NewService(st, testLimits, logger.NewNoOpLogger())
}

func TestServicePage_FirstPageWithToken(t *testing.T) {
	st := store.NewMemory()
	ids := seedPostings(t, st, 5)

	res, err := newTestService(st).Page(context.Background(), models.SearchRequest{PageSize: 2})
	require.NoError(t, err)

	require.Len(t, res.Jobs, 2)
	assert.Equal(t, ids[1], res.NextPageToken)
}

func TestServicePage_CursorContinues(t *testing.T) {
	st := store.NewMemory()
	seedPostings(t, st, 5)
	svc := newTestService(st)

	first, err := svc.Page(context.Background(), models.SearchRequest{PageSize: 2})
	require.NoError(t, err)

	second, err := svc.Page(context.Background(), models.SearchRequest{PageSize: 2, Cursor: first.NextPageToken})
	require.NoError(t, err)
	require.Len(t, second.Jobs, 2)
	assert.True(t, second.Jobs[0].Timestamp.Before(first.Jobs[1].Timestamp))

	// Third page is short: one row, no token.
	third, err := svc.Page(context.Background(), models.SearchRequest{PageSize: 2, Cursor: second.NextPageToken})
	require.NoError(t, err)
	require.Len(t, third.Jobs, 1)
	assert.Empty(t, third.NextPageToken)
}

func TestServicePage_FirstPageEmptyIsNoResults(t *testing.T) {
	st := store.NewMemory()

	_, err := newTestService(st).Page(context.Background(), models.SearchRequest{})
	require.Error(t, err)

	var stdErr *commonerrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, commonerrors.ErrCodeNoResults, stdErr.Code)
}

func TestServicePage_SubsequentEmptyPageIsValid(t *testing.T) {
	st := store.NewMemory()
	ids := seedPostings(t, st, 2)
	svc := newTestService(st)

	res, err := svc.Page(context.Background(), models.SearchRequest{PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, ids[1], res.NextPageToken)

	next, err := svc.Page(context.Background(), models.SearchRequest{PageSize: 2, Cursor: res.NextPageToken})
	require.NoError(t, err, "empty subsequent page is a normal outcome, not NO_RESULTS")
	assert.Empty(t, next.Jobs)
	assert.Empty(t, next.NextPageToken)
}

func TestServicePage_StaleCursor(t *testing.T) {
	st := store.NewMemory()
	ids := seedPostings(t, st, 3)
	require.NoError(t, st.Delete(context.Background(), ids[0]))

	_, err := newTestService(st).Page(context.Background(), models.SearchRequest{Cursor: ids[0]})
	require.Error(t, err)

	var stdErr *commonerrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, commonerrors.ErrCodeInvalidCursor, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

func TestServicePage_StoreOutageIsRetryable(t *testing.T) {
	st := store.NewMemory()
	seedPostings(t, st, 3)
	st.FailNextFetch = errors.New("connection reset")

	_, err := newTestService(st).Page(context.Background(), models.SearchRequest{})
	require.Error(t, err)

	var stdErr *commonerrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, commonerrors.ErrCodeStoreUnavailable, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestServicePage_ResidualFilteredPagesAreSkipped(t *testing.T) {
	st := store.NewMemory()
	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rank := 1
		if i == 4 {
			rank = 60
		}
		_, err := st.Insert(context.Background(), models.JobPosting{
			DurationRank: rank,
			Timestamp:    base.Add(-time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	res, err := newTestService(st).Page(context.Background(), models.SearchRequest{
		MinDurationRank: 3,
		MaxDurationRank: 61,
		PageSize:        2,
	})
	require.NoError(t, err)
	require.Len(t, res.Jobs, 1)
	assert.Equal(t, 60, res.Jobs[0].DurationRank)
	assert.Empty(t, res.NextPageToken, "short final batch means exhaustion")
}

func TestServicePage_ClampsPageSize(t *testing.T) {
	st := store.NewMemory()
	seedPostings(t, st, 60)
	svc := newTestService(st)

	res, err := svc.Page(context.Background(), models.SearchRequest{PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, res.Jobs, testLimits.MaxPageSize)

	res, err = svc.Page(context.Background(), models.SearchRequest{})
	require.NoError(t, err)
	assert.Len(t, res.Jobs, testLimits.DefaultPageSize)
}

func TestServicePage_SummariesCarryNoContactFields(t *testing.T) {
	st := store.NewMemory()
	_, err := st.Insert(context.Background(), models.JobPosting{
		FirstName:   "Dana",
		LastName:    "Oleary",
		Email:       "dana@example.com",
		PhoneNumber: "416-555-0101",
		Address:     "12 King St",
		PostalCode:  "M5H 1A1",
		City:        "Toronto",
		CityLower:   "toronto",
		Timestamp:   time.Now().UTC(),
	})
	require.NoError(t, err)

	res, err := newTestService(st).Page(context.Background(), models.SearchRequest{City: "toronto"})
	require.NoError(t, err)
	require.Len(t, res.Jobs, 1)
	assert.Equal(t, "Dana", res.Jobs[0].FirstName)
}
