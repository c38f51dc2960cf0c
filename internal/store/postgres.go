// Package store persists job postings, applicant profiles and notifications
// in Postgres, with a Redis document mirror of postings for read scaling.
// Embedding vectors are stored as JSONB arrays of float64; the dimension is
// implicit and must match the encoder's output, which is an operational
// invariant rather than something checked per row.
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/signedhq/signed-matcher/internal/vector"
)

// ErrNotFound reports a missing row, distinct from precondition failures like
// a missing embedding.
var ErrNotFound = errors.New("record not found")

//go:embed schema.sql
var schema string

// Store wraps a pgxpool connection pool.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// NewPool creates and verifies a pgxpool connection pool.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}

const jobColumns = `id, job_title, company, location, job_type,
	COALESCE(salary, ''), COALESCE(company_size, ''), tags,
	COALESCE(job_description, ''), posted_by, vector_embedding,
	COALESCE(encoder_model, ''), is_active, date_posted, date_updated`

// GetJob loads a single posting by id.
func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (*JobPosting, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM job_postings WHERE id = $1`, id)

	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// ActiveJobs returns active postings in insertion order. Ranking relies on
// this order being stable for reproducible tie-breaks.
func (s *Store) ActiveJobs(ctx context.Context) ([]*JobPosting, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM job_postings WHERE is_active ORDER BY date_posted, id`)
	if err != nil {
		return nil, fmt.Errorf("list active jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*JobPosting
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// JobsMissingVector returns active postings without a stored embedding or
// whose embedding was produced by a different encoder model.
func (s *Store) JobsMissingVector(ctx context.Context, encoderModel string) ([]*JobPosting, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM job_postings
		 WHERE is_active AND (vector_embedding IS NULL OR COALESCE(encoder_model, '') <> $1)
		 ORDER BY date_posted, id`, encoderModel)
	if err != nil {
		return nil, fmt.Errorf("list jobs missing vector: %w", err)
	}
	defer rows.Close()

	var jobs []*JobPosting
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// UpdateJobVector replaces a posting's embedding wholesale, tagging it with
// the encoder model that produced it.
func (s *Store) UpdateJobVector(ctx context.Context, id uuid.UUID, v vector.Vector, encoderModel string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE job_postings SET vector_embedding = $2, encoder_model = $3, date_updated = now()
		 WHERE id = $1`, id, v, encoderModel)
	if err != nil {
		return fmt.Errorf("update job vector: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return nil
}

const applicantColumns = `p.id, p.user_id, u.email,
	COALESCE(p.resume, ''), COALESCE(p.skills, ''), COALESCE(p.bio, ''),
	p.vector_embedding, COALESCE(p.encoder_model, ''), p.notifications_enabled`

// GetApplicant loads one applicant profile with its owning user's email.
func (s *Store) GetApplicant(ctx context.Context, id uuid.UUID) (*Applicant, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+applicantColumns+`
		 FROM applicant_profiles p JOIN users u ON u.id = p.user_id
		 WHERE p.id = $1`, id)

	applicant, err := scanApplicant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("applicant %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get applicant: %w", err)
	}
	return applicant, nil
}

// EligibleApplicants returns profiles eligible for notification fan-out:
// applicant role, notifications enabled, preference vector present.
func (s *Store) EligibleApplicants(ctx context.Context) ([]*Applicant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+applicantColumns+`
		 FROM applicant_profiles p JOIN users u ON u.id = p.user_id
		 WHERE u.role = 'applicant' AND p.notifications_enabled AND p.vector_embedding IS NOT NULL
		 ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("list eligible applicants: %w", err)
	}
	defer rows.Close()

	var applicants []*Applicant
	for rows.Next() {
		applicant, err := scanApplicant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan applicant: %w", err)
		}
		applicants = append(applicants, applicant)
	}
	return applicants, rows.Err()
}

// ApplicantsMissingVector returns applicant profiles without a preference
// vector or whose vector was produced by a different encoder model.
func (s *Store) ApplicantsMissingVector(ctx context.Context, encoderModel string) ([]*Applicant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+applicantColumns+`
		 FROM applicant_profiles p JOIN users u ON u.id = p.user_id
		 WHERE u.role = 'applicant'
		   AND (p.vector_embedding IS NULL OR COALESCE(p.encoder_model, '') <> $1)
		 ORDER BY p.id`, encoderModel)
	if err != nil {
		return nil, fmt.Errorf("list applicants missing vector: %w", err)
	}
	defer rows.Close()

	var applicants []*Applicant
	for rows.Next() {
		applicant, err := scanApplicant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan applicant: %w", err)
		}
		applicants = append(applicants, applicant)
	}
	return applicants, rows.Err()
}

// UpdateApplicantVector replaces an applicant's preference vector wholesale.
// Serialization of concurrent feedback for the same applicant is left to the
// caller; this is a single unconditional update.
func (s *Store) UpdateApplicantVector(ctx context.Context, id uuid.UUID, v vector.Vector, encoderModel string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE applicant_profiles SET vector_embedding = $2, encoder_model = $3 WHERE id = $1`,
		id, v, encoderModel)
	if err != nil {
		return fmt.Errorf("update applicant vector: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("applicant %s: %w", id, ErrNotFound)
	}
	return nil
}

// UnreadNotificationExists reports whether the applicant already has an
// unread notification for the job.
func (s *Store) UnreadNotificationExists(ctx context.Context, applicantID, jobID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE applicant_id = $1 AND job_id = $2 AND NOT read
		 )`, applicantID, jobID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check unread notification: %w", err)
	}
	return exists, nil
}

// CreateNotification inserts one notification row. A partial unique index on
// (applicant_id, job_id) WHERE NOT read backstops the check-then-create race
// between concurrent fan-outs; the conflicting insert becomes a no-op.
func (s *Store) CreateNotification(ctx context.Context, n *Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO notifications (id, applicant_id, job_id, title, message, read)
		 VALUES ($1, $2, $3, $4, $5, false)
		 ON CONFLICT DO NOTHING`,
		n.ID, n.ApplicantID, n.JobID, n.Title, n.Message)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func scanJob(row pgx.Row) (*JobPosting, error) {
	var job JobPosting
	err := row.Scan(
		&job.ID, &job.Title, &job.Company, &job.Location, &job.JobType,
		&job.Salary, &job.CompanySize, &job.Tags,
		&job.Description, &job.PostedBy, &job.Vector,
		&job.EncoderModel, &job.IsActive, &job.DatePosted, &job.DateUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func scanApplicant(row pgx.Row) (*Applicant, error) {
	var a Applicant
	err := row.Scan(
		&a.ID, &a.UserID, &a.Email,
		&a.Resume, &a.Skills, &a.Bio,
		&a.Vector, &a.EncoderModel, &a.NotificationsEnabled,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
