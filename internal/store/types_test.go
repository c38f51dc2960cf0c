package store

import (
	"testing"

	"github.com/google/uuid"
)

func TestJobPostingTextFieldsOrder(t *testing.T) {
	job := &JobPosting{
		Title:       "Backend Engineer",
		Description: "Build the matching engine",
		Location:    "Remote",
		JobType:     "Full-time",
		Salary:      "$150k",
		CompanySize: "50-100",
		Tags:        []string{"go", "postgres"},
	}

	fields := job.TextFields()

	wantLabels := []string{"title", "description", "location", "type", "salary", "size", "tags"}
	if len(fields) != len(wantLabels) {
		t.Fatalf("expected %d fields, got %d", len(wantLabels), len(fields))
	}
	for i, label := range wantLabels {
		if fields[i].Label != label {
			t.Fatalf("expected label %q at position %d, got %q", label, i, fields[i].Label)
		}
	}

	if fields[6].Value != "go, postgres" {
		t.Fatalf("expected comma-joined tags, got %q", fields[6].Value)
	}
}

func TestJobPostingTextFieldsKeepEmptySlots(t *testing.T) {
	job := &JobPosting{Title: "Only a title"}

	fields := job.TextFields()
	if len(fields) != 7 {
		t.Fatalf("expected all 7 field slots, got %d", len(fields))
	}
	for _, f := range fields[1:] {
		if f.Value != "" {
			t.Fatalf("expected empty value for %q, got %q", f.Label, f.Value)
		}
	}
}

func TestDecodeJobDocument(t *testing.T) {
	id := uuid.New()
	postedBy := uuid.New()

	raw := map[string]any{
		"id":              id.String(),
		"job_title":       "Data Engineer",
		"company":         "Acme",
		"location":        "NYC",
		"job_type":        "Contract",
		"tags":            []any{"python", "sql"},
		"job_description": "Pipelines",
		"posted_by":       postedBy.String(),
		"is_active":       true,
	}

	job, err := decodeJobDocument(raw)
	if err != nil {
		t.Fatalf("decodeJobDocument: %v", err)
	}

	if job.ID != id {
		t.Fatalf("expected id %s, got %s", id, job.ID)
	}
	if job.PostedBy != postedBy {
		t.Fatalf("expected posted_by %s, got %s", postedBy, job.PostedBy)
	}
	if job.Title != "Data Engineer" || job.Company != "Acme" {
		t.Fatalf("unexpected decoded posting: %+v", job)
	}
	if len(job.Tags) != 2 || job.Tags[0] != "python" {
		t.Fatalf("unexpected tags: %v", job.Tags)
	}
	if !job.IsActive {
		t.Fatal("expected active posting")
	}
	if job.Vector != nil {
		t.Fatalf("mirror must not carry embeddings, got %v", job.Vector)
	}
}

func TestDecodeJobDocumentRejectsBadID(t *testing.T) {
	_, err := decodeJobDocument(map[string]any{"id": "not-a-uuid"})
	if err == nil {
		t.Fatal("expected error for invalid id")
	}
}
