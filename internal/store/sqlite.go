// Package store persists canonical jobs in an embedded SQLite database,
// keyed by fingerprint. Upserts are last-writer-wins gated on fetched_at.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dmillar/jobpulse/internal/model"
)

// ErrNotFound is returned by Get for an unknown job id.
var ErrNotFound = errors.New("job not found")

// Fixed-width UTC layout so that lexicographic comparison of stored
// timestamps matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a SQLite-backed job store.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and ensures the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			job_id      TEXT PRIMARY KEY,
			source      TEXT NOT NULL,
			title       TEXT NOT NULL,
			company     TEXT NOT NULL,
			location    TEXT,
			remote      INTEGER NOT NULL DEFAULT 0,
			url         TEXT,
			description TEXT,
			posted_at   TEXT,
			fetched_at  TEXT NOT NULL,
			tags        TEXT,
			score       INTEGER NOT NULL DEFAULT 0,
			raw         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_source ON jobs(source)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_company ON jobs(company)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_posted_at ON jobs(posted_at)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_fetched_at ON jobs(fetched_at)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating jobs schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Upsert writes jobs into the store inside a single transaction, which
// serializes concurrent writers of the same id. A job with a new id is
// inserted. An existing id is updated only when the incoming fetched_at is
// strictly newer than the stored one (an absent or unparsable stored value
// always updates); on update every field is overwritten except posted_at,
// which keeps the stored value when the incoming one is null. Rows whose
// fetched_at is not newer are silently skipped.
func (s *Store) Upsert(jobs []model.Job) (inserted, updated int, err error) {
	if len(jobs) == 0 {
		return 0, 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("beginning upsert transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, job := range jobs {
		var storedFetched sql.NullString
		row := tx.QueryRow(`SELECT fetched_at FROM jobs WHERE job_id = ?`, job.JobID)
		scanErr := row.Scan(&storedFetched)

		switch {
		case scanErr == sql.ErrNoRows:
			if err = insertJob(tx, job); err != nil {
				return 0, 0, err
			}
			inserted++
		case scanErr != nil:
			err = fmt.Errorf("checking job %s: %w", job.JobID, scanErr)
			return 0, 0, err
		default:
			if !newerThan(job.FetchedAt, storedFetched) {
				continue
			}
			if err = updateJob(tx, job); err != nil {
				return 0, 0, err
			}
			updated++
		}
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("committing upsert: %w", err)
		return 0, 0, err
	}
	return inserted, updated, nil
}

// newerThan reports whether incoming is strictly newer than the stored
// fetched_at string. A missing or unparsable stored value means the stored
// row has no usable recency signal, so the incoming row always wins.
func newerThan(incoming time.Time, stored sql.NullString) bool {
	if !stored.Valid || stored.String == "" {
		return true
	}
	storedAt, err := parseStoredTime(stored.String)
	if err != nil {
		return true
	}
	return incoming.UTC().After(storedAt)
}

func insertJob(tx *sql.Tx, job model.Job) error {
	_, err := tx.Exec(`
		INSERT INTO jobs (
			job_id, source, title, company, location, remote, url,
			description, posted_at, fetched_at, tags, score, raw
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.JobID, job.Source, job.Title, job.Company,
		nullable(job.Location), boolToInt(job.Remote), nullable(job.URL),
		nullable(job.Description), formatTimePtr(job.PostedAt),
		formatTime(job.FetchedAt), tagsJSON(job.Tags), job.Score, rawJSON(job.Raw),
	)
	if err != nil {
		return fmt.Errorf("inserting job %s: %w", job.JobID, err)
	}
	return nil
}

func updateJob(tx *sql.Tx, job model.Job) error {
	_, err := tx.Exec(`
		UPDATE jobs SET
			source      = ?,
			title       = ?,
			company     = ?,
			location    = ?,
			remote      = ?,
			url         = ?,
			description = ?,
			posted_at   = COALESCE(?, posted_at),
			fetched_at  = ?,
			tags        = ?,
			score       = ?,
			raw         = ?
		WHERE job_id = ?`,
		job.Source, job.Title, job.Company,
		nullable(job.Location), boolToInt(job.Remote), nullable(job.URL),
		nullable(job.Description), formatTimePtr(job.PostedAt),
		formatTime(job.FetchedAt), tagsJSON(job.Tags), job.Score, rawJSON(job.Raw),
		job.JobID,
	)
	if err != nil {
		return fmt.Errorf("updating job %s: %w", job.JobID, err)
	}
	return nil
}

// LoadRecent returns jobs whose fetched_at falls within the last sinceHours,
// newest fetch first. This read path is about fetch recency only; it never
// consults posted_at.
func (s *Store) LoadRecent(sinceHours int) ([]model.Job, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(sinceHours) * time.Hour)

	rows, err := s.db.Query(`
		SELECT job_id, source, title, company, location, remote, url,
		       description, posted_at, fetched_at, tags, score, raw
		FROM jobs
		WHERE fetched_at >= ?
		ORDER BY fetched_at DESC`,
		formatTime(cutoff),
	)
	if err != nil {
		return nil, fmt.Errorf("loading recent jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recent jobs: %w", err)
	}
	return jobs, nil
}

// Get looks up a single job by fingerprint.
func (s *Store) Get(jobID string) (model.Job, error) {
	row := s.db.QueryRow(`
		SELECT job_id, source, title, company, location, remote, url,
		       description, posted_at, fetched_at, tags, score, raw
		FROM jobs WHERE job_id = ?`,
		jobID,
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Job{}, ErrNotFound
	}
	if err != nil {
		return model.Job{}, err
	}
	return job, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (model.Job, error) {
	var (
		job                         model.Job
		location, url, description  sql.NullString
		postedAt, tags, raw         sql.NullString
		fetchedAt                   string
		remote                      int
	)
	err := r.Scan(
		&job.JobID, &job.Source, &job.Title, &job.Company,
		&location, &remote, &url, &description,
		&postedAt, &fetchedAt, &tags, &job.Score, &raw,
	)
	if err != nil {
		return model.Job{}, err
	}

	job.Location = location.String
	job.URL = url.String
	job.Description = description.String
	job.Remote = remote != 0

	if postedAt.Valid && postedAt.String != "" {
		if t, perr := parseStoredTime(postedAt.String); perr == nil {
			job.PostedAt = &t
		}
	}
	if t, perr := parseStoredTime(fetchedAt); perr == nil {
		job.FetchedAt = t
	}
	if tags.Valid && tags.String != "" {
		if jerr := json.Unmarshal([]byte(tags.String), &job.Tags); jerr != nil {
			job.Tags = nil
		}
	}
	if raw.Valid && raw.String != "" {
		if jerr := json.Unmarshal([]byte(raw.String), &job.Raw); jerr != nil {
			job.Raw = nil
		}
	}
	return job, nil
}

func parseStoredTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func tagsJSON(tags []string) any {
	if len(tags) == 0 {
		return nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil
	}
	return string(b)
}

func rawJSON(raw map[string]any) any {
	if len(raw) == 0 {
		return nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	return string(b)
}
