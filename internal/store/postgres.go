// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"tradeboard/internal/models"
)

const jobColumns = `id, first_name, last_name, email, phone_number, address, postal_code,
	city, city_lower, province_state, country, title, description, skills,
	duration_days, budget_rank, currency, posted_at, num_leads_total, num_leads_purchased`

// PostgresStore implements Store on a jobs table with keyset pagination over
// (posted_at, id).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Backend() string { return "postgres" }

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, p models.JobPosting) (string, error) {
	id := uuid.NewString()

	query := `INSERT INTO jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	_, err := s.db.ExecContext(ctx, query,
		id, p.FirstName, p.LastName, p.Email, p.PhoneNumber, p.Address, p.PostalCode,
		p.City, p.CityLower, p.ProvinceState, p.Country, p.Title, p.Description,
		pq.Array(p.Skills), p.DurationRank, p.BudgetRank, p.Currency, p.Timestamp,
		p.NumLeadsTotal, p.NumLeadsPurchased,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return id, nil
}

func (s *PostgresStore) FetchPage(ctx context.Context, q NativeQuery, startAfter string, limit int) ([]models.JobPosting, error) {
	where := []string{}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.CityLower != "" {
		where = append(where, "city_lower = "+arg(q.CityLower))
	}
	if len(q.SkillsAnyOf) > 0 {
		where = append(where, "skills && "+arg(pq.Array(q.SkillsAnyOf)))
	}
	if !q.PostedAfter.IsZero() {
		where = append(where, "posted_at >= "+arg(q.PostedAfter))
	}

	if startAfter != "" {
		// Resolve the cursor row first so a deleted row surfaces as
		// ErrInvalidCursor instead of silently restarting pagination.
		var cursorAt sql.NullTime
		err := s.db.QueryRowContext(ctx, `SELECT posted_at FROM jobs WHERE id = $1`, startAfter).Scan(&cursorAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrInvalidCursor, startAfter)
			}
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		tsArg := arg(cursorAt.Time)
		where = append(where, fmt.Sprintf("(posted_at, id) < (%s, %s)", tsArg, arg(startAfter)))
	}

	query := `SELECT ` + jobColumns + ` FROM jobs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY posted_at DESC, id DESC LIMIT " + arg(limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	out := []models.JobPosting{}
	for rows.Next() {
		p, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return out, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (models.JobPosting, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)

	p, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.JobPosting{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return models.JobPosting{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return p, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(r rowScanner) (models.JobPosting, error) {
	var p models.JobPosting
	var skills pq.StringArray

	err := r.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.PhoneNumber, &p.Address, &p.PostalCode,
		&p.City, &p.CityLower, &p.ProvinceState, &p.Country, &p.Title, &p.Description, &skills,
		&p.DurationRank, &p.BudgetRank, &p.Currency, &p.Timestamp,
		&p.NumLeadsTotal, &p.NumLeadsPurchased,
	)
	if err != nil {
		return models.JobPosting{}, err
	}

	p.Skills = []string(skills)
	return p, nil
}
