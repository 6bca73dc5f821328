// internal/store/postgres_test.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeboard/internal/models"
)

var jobRowColumns = []string{
	"id", "first_name", "last_name", "email", "phone_number", "address", "postal_code",
	"city", "city_lower", "province_state", "country", "title", "description", "skills",
	"duration_days", "budget_rank", "currency", "posted_at", "num_leads_total", "num_leads_purchased",
}

func jobRows(postings ...models.JobPosting) *sqlmock.Rows {
	rows := sqlmock.NewRows(jobRowColumns)
	for _, p := range postings {
		skills := "{}"
		if len(p.Skills) > 0 {
			skills = "{" + p.Skills[0]
			for _, s := range p.Skills[1:] {
				skills += "," + s
			}
			skills += "}"
		}
		rows.AddRow(
			p.ID, p.FirstName, p.LastName, p.Email, p.PhoneNumber, p.Address, p.PostalCode,
			p.City, p.CityLower, p.ProvinceState, p.Country, p.Title, p.Description, skills,
			p.DurationRank, p.BudgetRank, p.Currency, p.Timestamp,
			p.NumLeadsTotal, p.NumLeadsPurchased,
		)
	}
	return rows
}

func testPosting(id string, ts time.Time) models.JobPosting {
	return models.JobPosting{
		ID:            id,
		FirstName:     "John",
		City:          "Toronto",
		CityLower:     "toronto",
		ProvinceState: "ON",
		Country:       "Canada",
		Title:         "Fix some wires",
		Description:   "Rewire the garage",
		Skills:        []string{"Electrician"},
		DurationRank:  3,
		BudgetRank:    1000,
		Currency:      "CAD",
		Timestamp:     ts,
		NumLeadsTotal: 5,
	}
}

func TestPostgresStore_FetchPage_PushesNativePredicates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cutoff := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	q := NativeQuery{
		CityLower:   "toronto",
		SkillsAnyOf: []string{"Electrician", "Plumber"},
		PostedAfter: cutoff,
	}

	posted := cutoff.Add(24 * time.Hour)
	mock.ExpectQuery(`FROM jobs`).
		WithArgs("toronto", pq.Array([]string{"Electrician", "Plumber"}), cutoff, 10).
		WillReturnRows(jobRows(testPosting("job-1", posted)))

	s := NewPostgres(db)
	rows, err := s.FetchPage(context.Background(), q, "", 10)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "job-1", rows[0].ID)
	assert.Equal(t, []string{"Electrician"}, rows[0].Skills)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FetchPage_ResolvesCursorRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cursorAt := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT posted_at FROM jobs WHERE id`).
		WithArgs("cursor-id").
		WillReturnRows(sqlmock.NewRows([]string{"posted_at"}).AddRow(cursorAt))

	mock.ExpectQuery(`FROM jobs`).
		WithArgs(cursorAt, "cursor-id", 5).
		WillReturnRows(jobRows(testPosting("job-2", cursorAt.Add(-time.Hour))))

	s := NewPostgres(db)
	rows, err := s.FetchPage(context.Background(), NativeQuery{}, "cursor-id", 5)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "job-2", rows[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FetchPage_InvalidCursor(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT posted_at FROM jobs WHERE id`).
		WithArgs("deleted-id").
		WillReturnError(sql.ErrNoRows)

	s := NewPostgres(db)
	_, err = s.FetchPage(context.Background(), NativeQuery{}, "deleted-id", 5)

	assert.ErrorIs(t, err, ErrInvalidCursor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FetchPage_StoreUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM jobs`).
		WillReturnError(fmt.Errorf("connection refused"))

	s := NewPostgres(db)
	_, err = s.FetchPage(context.Background(), NativeQuery{}, "", 5)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestPostgresStore_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO jobs`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := NewPostgres(db)
	id, err := s.Insert(context.Background(), testPosting("", time.Now()))

	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err, "insert must assign a uuid identity")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM jobs WHERE id`).
		WithArgs("gone").
		WillReturnError(sql.ErrNoRows)

	s := NewPostgres(db)
	_, err = s.GetByID(context.Background(), "gone")

	assert.ErrorIs(t, err, ErrNotFound)
}
