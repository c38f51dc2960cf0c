// Package fanout pushes notifications for a job posting to applicants whose
// preference vectors are similar enough. Fan-out is best-effort: it enhances a
// posting write but never fails one.
package fanout

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/signedhq/signed-matcher/internal/store"
	"github.com/signedhq/signed-matcher/internal/vector"
)

const (
	// DefaultThreshold is the minimum cosine similarity for a notification.
	DefaultThreshold = 0.35
	// DefaultMaxResults caps how many applicants one posting can notify.
	DefaultMaxResults = 50
)

// Config holds the fan-out policy knobs. Both are configuration defaults, not
// load-bearing business constants.
type Config struct {
	Threshold  float64
	MaxResults int
}

// ApplicantSource supplies the pool of fan-out-eligible applicants:
// applicant role, notifications enabled, preference vector present.
type ApplicantSource interface {
	EligibleApplicants(ctx context.Context) ([]*store.Applicant, error)
}

// NotificationSink persists notifications and answers de-duplication checks.
type NotificationSink interface {
	UnreadNotificationExists(ctx context.Context, applicantID, jobID uuid.UUID) (bool, error)
	CreateNotification(ctx context.Context, n *store.Notification) error
}

// Deps aggregates the collaborators shared by fan-out runs.
type Deps struct {
	Applicants    ApplicantSource
	Notifications NotificationSink
	Logger        *zap.Logger
}

// Candidate is an applicant that cleared the similarity threshold.
type Candidate struct {
	Applicant *store.Applicant
	Score     float64
}

type Fanout struct {
	cfg  Config
	deps Deps
}

func New(cfg Config, deps Deps) *Fanout {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Fanout{cfg: cfg, deps: deps}
}

// FindCandidates scans the applicant pool and returns those scoring at or
// above the threshold against the job's vector, best first, capped at
// MaxResults. A job without a vector has no candidates. Ties keep the pool's
// order (the sort is stable).
func (f *Fanout) FindCandidates(ctx context.Context, job *store.JobPosting) ([]Candidate, error) {
	if job.Vector == nil {
		return nil, nil
	}

	pool, err := f.deps.Applicants.EligibleApplicants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list eligible applicants: %w", err)
	}

	initial := len(pool)
	candidates := make([]Candidate, 0, len(pool))
	for _, applicant := range pool {
		if len(applicant.Vector) == 0 {
			continue
		}

		// Vectors from a different encoder model are incomparable; treat
		// them like missing embeddings instead of scoring garbage.
		if applicant.EncoderModel != "" && job.EncoderModel != "" &&
			applicant.EncoderModel != job.EncoderModel {
			f.deps.Logger.Debug("skipping applicant with skewed encoder model",
				zap.String("applicant_id", applicant.ID.String()),
				zap.String("applicant_model", applicant.EncoderModel),
				zap.String("job_model", job.EncoderModel),
			)
			continue
		}

		score, err := vector.Cosine(job.Vector, applicant.Vector)
		if err != nil {
			f.deps.Logger.Warn("skipping applicant with bad vector",
				zap.String("applicant_id", applicant.ID.String()),
				zap.Error(err),
			)
			continue
		}

		if score >= f.cfg.Threshold {
			candidates = append(candidates, Candidate{Applicant: applicant, Score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > f.cfg.MaxResults {
		candidates = candidates[:f.cfg.MaxResults]
	}

	f.deps.Logger.Info("fanout candidate scan",
		zap.String("job_id", job.ID.String()),
		zap.Int("pool", initial),
		zap.Int("kept", len(candidates)),
		zap.Float64("threshold", f.cfg.Threshold),
	)

	return candidates, nil
}

// Notify runs FindCandidates and emits one notification per candidate,
// skipping the job's own poster and applicants with an unread notification
// for this job. A failure on one candidate is logged and the batch continues;
// any top-level failure degrades to zero notifications. Inactive jobs never
// trigger fan-out. Returns the number of notifications actually created.
func (f *Fanout) Notify(ctx context.Context, job *store.JobPosting) int {
	if !job.IsActive {
		f.deps.Logger.Info("skipping fanout for inactive job",
			zap.String("job_id", job.ID.String()),
		)
		return 0
	}

	candidates, err := f.FindCandidates(ctx, job)
	if err != nil {
		f.deps.Logger.Error("fanout aborted", zap.Error(err))
		return 0
	}

	created := 0
	for _, c := range candidates {
		applicant := c.Applicant

		if applicant.UserID == job.PostedBy {
			f.deps.Logger.Debug("skipping job poster",
				zap.String("applicant_id", applicant.ID.String()),
				zap.String("job_id", job.ID.String()),
			)
			continue
		}

		exists, err := f.deps.Notifications.UnreadNotificationExists(ctx, applicant.ID, job.ID)
		if err != nil {
			f.deps.Logger.Warn("notification lookup failed, skipping candidate",
				zap.String("applicant_id", applicant.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if exists {
			continue
		}

		notification := &store.Notification{
			ApplicantID: applicant.ID,
			JobID:       job.ID,
			Title:       "New job match",
			Message:     fmt.Sprintf("%s at %s looks like a match for you", job.Title, job.Company),
		}
		if err := f.deps.Notifications.CreateNotification(ctx, notification); err != nil {
			f.deps.Logger.Warn("notification create failed, skipping candidate",
				zap.String("applicant_id", applicant.ID.String()),
				zap.Error(err),
			)
			continue
		}

		f.deps.Logger.Info("notification created",
			zap.String("applicant_id", applicant.ID.String()),
			zap.String("job_id", job.ID.String()),
			zap.Float64("score", c.Score),
		)
		created++
	}

	f.deps.Logger.Info("fanout finished",
		zap.String("job_id", job.ID.String()),
		zap.Int("candidates", len(candidates)),
		zap.Int("created", created),
	)

	return created
}
