package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/redis/go-redis/v9"
)

const mirrorKeyPrefix = "job_postings:"

// Mirror keeps a document copy of job postings in Redis for read scaling.
// The relational store stays authoritative; the mirror is refreshed wholesale
// whenever a posting or its embedding changes.
type Mirror struct {
	rdb *redis.Client
}

func NewMirror(rdb *redis.Client) *Mirror {
	return &Mirror{rdb: rdb}
}

// NewRedisClient creates and verifies a Redis client connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}

// jobDocument is the wire shape of a mirrored posting. The embedding is not
// mirrored; readers that need it go to the relational store.
type jobDocument struct {
	ID          string    `json:"id" mapstructure:"id"`
	Title       string    `json:"job_title" mapstructure:"job_title"`
	Company     string    `json:"company" mapstructure:"company"`
	Location    string    `json:"location" mapstructure:"location"`
	JobType     string    `json:"job_type" mapstructure:"job_type"`
	Salary      string    `json:"salary" mapstructure:"salary"`
	CompanySize string    `json:"company_size" mapstructure:"company_size"`
	Tags        []string  `json:"tags" mapstructure:"tags"`
	Description string    `json:"job_description" mapstructure:"job_description"`
	PostedBy    string    `json:"posted_by" mapstructure:"posted_by"`
	IsActive    bool      `json:"is_active" mapstructure:"is_active"`
	DatePosted  time.Time `json:"date_posted" mapstructure:"date_posted"`
	DateUpdated time.Time `json:"date_updated" mapstructure:"date_updated"`
}

// StoreJob writes the posting's document copy, replacing any previous one.
func (m *Mirror) StoreJob(ctx context.Context, job *JobPosting) error {
	doc := jobDocument{
		ID:          job.ID.String(),
		Title:       job.Title,
		Company:     job.Company,
		Location:    job.Location,
		JobType:     job.JobType,
		Salary:      job.Salary,
		CompanySize: job.CompanySize,
		Tags:        job.Tags,
		Description: job.Description,
		PostedBy:    job.PostedBy.String(),
		IsActive:    job.IsActive,
		DatePosted:  job.DatePosted,
		DateUpdated: job.DateUpdated,
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal job document: %w", err)
	}

	if err := m.rdb.Set(ctx, mirrorKeyPrefix+doc.ID, payload, 0).Err(); err != nil {
		return fmt.Errorf("store job document: %w", err)
	}
	return nil
}

// GetJob reads a mirrored posting. Returns ErrNotFound when the document does
// not exist.
func (m *Mirror) GetJob(ctx context.Context, id uuid.UUID) (*JobPosting, error) {
	payload, err := m.rdb.Get(ctx, mirrorKeyPrefix+id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("mirrored job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get job document: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal job document: %w", err)
	}

	return decodeJobDocument(raw)
}

// DeleteJob removes a mirrored posting. Missing documents are not an error.
func (m *Mirror) DeleteJob(ctx context.Context, id uuid.UUID) error {
	if err := m.rdb.Del(ctx, mirrorKeyPrefix+id.String()).Err(); err != nil {
		return fmt.Errorf("delete job document: %w", err)
	}
	return nil
}

func decodeJobDocument(raw map[string]any) (*JobPosting, error) {
	var doc jobDocument
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &doc,
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("build document decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode job document: %w", err)
	}

	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("parse job id: %w", err)
	}

	postedBy := uuid.Nil
	if doc.PostedBy != "" {
		if postedBy, err = uuid.Parse(doc.PostedBy); err != nil {
			return nil, fmt.Errorf("parse posted_by: %w", err)
		}
	}

	return &JobPosting{
		ID:          id,
		Title:       doc.Title,
		Company:     doc.Company,
		Location:    doc.Location,
		JobType:     doc.JobType,
		Salary:      doc.Salary,
		CompanySize: doc.CompanySize,
		Tags:        doc.Tags,
		Description: doc.Description,
		PostedBy:    postedBy,
		IsActive:    doc.IsActive,
		DatePosted:  doc.DatePosted,
		DateUpdated: doc.DateUpdated,
	}, nil
}
