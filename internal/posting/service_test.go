// internal/posting/service_test.go
package posting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeboard/internal/common/logger"
	"tradeboard/internal/models"
	"tradeboard/internal/store"
)

type fakeSender struct {
	to       string
	jobTitle string
	calls    int
	err      error
}

func (f *fakeSender) SendPostingConfirmation(ctx context.Context, to, jobTitle string) error {
	f.calls++
	f.to = to
	f.jobTitle = jobTitle
	return f.err
}

func TestServiceCreate_PersistsNormalizedPosting(t *testing.T) {
	st := store.NewMemory()
	sender := &fakeSender{}
	svc := NewService(st, NewNormalizer(5), sender, logger.NewTestLogger(t))

	id, err := svc.Create(context.Background(), models.JobSubmission{
		Email:    "dana@example.com",
		City:     "Toronto",
		Title:    "Rewire basement panel",
		Duration: "2-3 days",
		Budget:   "$500 - $1,000",
	})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	p, err := st.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "toronto", p.CityLower)
	assert.Equal(t, 3, p.DurationRank)
	assert.Equal(t, 5, p.NumLeadsTotal)

	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "dana@example.com", sender.to)
	assert.Equal(t, "Rewire basement panel", sender.jobTitle)
}

func TestServiceCreate_UnknownLabelRejected(t *testing.T) {
	st := store.NewMemory()
	svc := NewService(st, NewNormalizer(5), nil, logger.NewNoOpLogger())

	_, err := svc.Create(context.Background(), models.JobSubmission{
		Duration: "forever",
		Budget:   "$500 - $1,000",
	})
	require.Error(t, err)

	rows, err := st.FetchPage(context.Background(), store.NativeQuery{}, "", 10)
	require.NoError(t, err)
	assert.Empty(t, rows, "rejected submission must not be persisted")
}

func TestServiceCreate_EmailFailureDoesNotFailCreate(t *testing.T) {
	st := store.NewMemory()
	sender := &fakeSender{err: errors.New("ses: throttled")}
	svc := NewService(st, NewNormalizer(5), sender, logger.NewNoOpLogger())

	id, err := svc.Create(context.Background(), models.JobSubmission{
		Email:    "dana@example.com",
		Duration: "1 day",
		Budget:   "under $250",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, sender.calls)
}

func TestServiceCreate_SkipsEmailWithoutAddress(t *testing.T) {
	st := store.NewMemory()
	sender := &fakeSender{}
	svc := NewService(st, NewNormalizer(5), sender, logger.NewNoOpLogger())

	_, err := svc.Create(context.Background(), models.JobSubmission{
		Duration: "1 day",
		Budget:   "under $250",
	})
	require.NoError(t, err)
	assert.Zero(t, sender.calls)
}

func TestServiceCreate_TimestampIsWriteInstant(t *testing.T) {
	st := store.NewMemory()
	svc := NewService(st, NewNormalizer(5), nil, logger.NewNoOpLogger())

	before := time.Now().UTC()
	id, err := svc.Create(context.Background(), models.JobSubmission{
		Duration: "1 day",
		Budget:   "under $250",
	})
	require.NoError(t, err)
	after := time.Now().UTC()

	p, err := st.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, p.Timestamp.Before(before))
	assert.False(t, p.Timestamp.After(after))
}
