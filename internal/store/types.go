package store

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/signedhq/signed-matcher/internal/embedding"
	"github.com/signedhq/signed-matcher/internal/vector"
)

// JobPosting is the subset of a posting the matching engine works with. A nil
// Vector means the posting has no embedding yet; that is a normal state.
type JobPosting struct {
	ID           uuid.UUID
	Title        string
	Company      string
	Location     string
	JobType      string
	Salary       string
	CompanySize  string
	Tags         []string
	Description  string
	PostedBy     uuid.UUID
	Vector       vector.Vector
	EncoderModel string
	IsActive     bool
	DatePosted   time.Time
	DateUpdated  time.Time
}

// TextFields returns the posting's labeled text in the fixed encoding order.
// Empty fields keep their slot so the blob framing stays stable.
func (j *JobPosting) TextFields() []embedding.Field {
	return []embedding.Field{
		{Label: "title", Value: j.Title},
		{Label: "description", Value: j.Description},
		{Label: "location", Value: j.Location},
		{Label: "type", Value: j.JobType},
		{Label: "salary", Value: j.Salary},
		{Label: "size", Value: j.CompanySize},
		{Label: "tags", Value: strings.Join(j.Tags, ", ")},
	}
}

// Applicant is the profile subset relevant to ranking and fan-out. Vector is
// the preference vector, seeded from resume text and nudged by feedback.
type Applicant struct {
	ID                   uuid.UUID
	UserID               uuid.UUID
	Email                string
	Resume               string
	Skills               string
	Bio                  string
	Vector               vector.Vector
	EncoderModel         string
	NotificationsEnabled bool
}

// TextFields returns the profile text used to seed the preference vector.
func (a *Applicant) TextFields() []embedding.Field {
	return []embedding.Field{
		{Label: "resume", Value: a.Resume},
		{Label: "skills", Value: a.Skills},
		{Label: "bio", Value: a.Bio},
	}
}

// Notification is a persisted match notification addressed to an applicant.
type Notification struct {
	ID          uuid.UUID
	ApplicantID uuid.UUID
	JobID       uuid.UUID
	Title       string
	Message     string
	Read        bool
	CreatedAt   time.Time
}
