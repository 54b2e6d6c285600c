// Package store persists scraped job postings in sqlite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/AlvinSugijanto/job-scraper/internal/models"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when a job id has no row.
var ErrNotFound = errors.New("job not found")

const jobColumns = "id, title, company, company_url, location, salary, date_posted, job_url, job_type, work_type, description, search_keywords, created_at"

var sortColumns = map[string]string{
	"created_at":  "created_at",
	"title":       "title",
	"company":     "company",
	"location":    "location",
	"salary":      "salary",
	"date_posted": "date_posted",
}

// ListFilter narrows and orders List results. Zero value lists everything
// newest first.
type ListFilter struct {
	Search    string
	SortBy    string
	SortOrder string
	Offset    int
	Limit     int
}

// Store wraps a sqlite database holding scraped jobs.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// modernc sqlite serializes writes itself; a single connection avoids
	// SQLITE_BUSY under concurrent scrape sessions.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// LookupIDs reports which of the given ids already have rows.
func (s *Store) LookupIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	existing := map[string]struct{}{}
	if len(ids) == 0 {
		return existing, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id FROM jobs WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("lookup ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing[id] = struct{}{}
	}
	return existing, rows.Err()
}

// InsertJobs writes the given jobs in one transaction. Rows whose id already
// exists are left untouched.
func (s *Store) InsertJobs(ctx context.Context, jobs []models.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, job := range jobs {
		createdAt := job.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		if _, err := stmt.ExecContext(ctx,
			job.ID, job.Title, job.Company, job.CompanyURL, job.Location,
			job.Salary, job.DatePosted, job.JobURL, job.JobType, job.WorkType,
			job.Description, job.SearchKeywords, createdAt,
		); err != nil {
			return fmt.Errorf("insert job %s: %w", job.ID, err)
		}
	}
	return tx.Commit()
}

// List returns a page of stored jobs plus the total match count.
// Search matches title, company and location ignoring case, spaces and
// hyphens, so "backend" also finds "Back-End".
func (s *Store) List(ctx context.Context, filter ListFilter) ([]models.Job, int, error) {
	var (
		where string
		args  []any
	)
	if filter.Search != "" {
		needle := "%" + normalize(filter.Search) + "%"
		where = " WHERE " + normalizedColumn("title") + " LIKE ?" +
			" OR " + normalizedColumn("company") + " LIKE ?" +
			" OR " + normalizedColumn("location") + " LIKE ?"
		args = append(args, needle, needle, needle)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	sortBy, ok := sortColumns[filter.SortBy]
	if !ok {
		sortBy = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		order = "ASC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf("SELECT %s FROM jobs%s ORDER BY %s %s LIMIT ? OFFSET ?", jobColumns, where, sortBy, order)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, job)
	}
	return jobs, total, rows.Err()
}

// Get returns one job by id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (models.Job, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Job{}, ErrNotFound
	}
	return job, err
}

// Delete removes one job by id, or returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM jobs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete job %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll clears the table and returns the number of rows removed.
func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM jobs")
	if err != nil {
		return 0, fmt.Errorf("delete all jobs: %w", err)
	}
	n, err := result.RowsAffected()
	return int(n), err
}

type scannable interface {
	Scan(dest ...any) error
}

func scanJob(row scannable) (models.Job, error) {
	var job models.Job
	err := row.Scan(
		&job.ID, &job.Title, &job.Company, &job.CompanyURL, &job.Location,
		&job.Salary, &job.DatePosted, &job.JobURL, &job.JobType, &job.WorkType,
		&job.Description, &job.SearchKeywords, &job.CreatedAt,
	)
	return job, err
}

// normalizedColumn builds the SQL expression matching normalize.
func normalizedColumn(col string) string {
	return fmt.Sprintf("REPLACE(REPLACE(LOWER(%s), ' ', ''), '-', '')", col)
}

func normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "-", "")
}
