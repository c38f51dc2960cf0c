// Package matching scores candidate-job affinity and maintains applicant
// preference vectors from apply/reject feedback.
package matching

import (
	"errors"
	"fmt"
	"sort"

	"github.com/signedhq/signed-matcher/internal/vector"
)

// ErrMissingEmbedding reports a feedback operation attempted without both
// vectors present. It is a precondition failure the caller surfaces to the
// user, distinct from "not found".
var ErrMissingEmbedding = errors.New("missing embedding")

// DefaultLearningRate is how strongly a single feedback event shifts the
// preference vector. A configuration default, not a business constant.
const DefaultLearningRate = 0.03

// Candidate pairs an identifier with its stored vector. A nil vector is valid
// and scores zero.
type Candidate struct {
	ID     string
	Vector vector.Vector
}

// Ranked is a candidate with its similarity score against the query.
type Ranked struct {
	ID    string
	Score float64
}

// Rank scores every candidate against the query vector and orders them by
// descending similarity. The sort is stable: ties and the nil-query fallback
// preserve the input order so results are reproducible for a fixed candidate
// order. A candidate whose vector dimension disagrees with the query fails the
// whole call; that only happens on data corruption or encoder skew.
// Pagination happens in the caller, after ranking.
func Rank(query vector.Vector, candidates []Candidate) ([]Ranked, error) {
	ranked := make([]Ranked, len(candidates))
	for i, c := range candidates {
		score := 0.0
		if query != nil {
			s, err := vector.Cosine(query, c.Vector)
			if err != nil {
				return nil, fmt.Errorf("candidate %s: %w", c.ID, err)
			}
			score = s
		}
		ranked[i] = Ranked{ID: c.ID, Score: score}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked, nil
}

// Updater computes new preference vectors from feedback events. It carries
// only the learning rate; persistence of the returned vector is the caller's
// job.
type Updater struct {
	learningRate float64
}

func NewUpdater(learningRate float64) *Updater {
	if learningRate <= 0 {
		learningRate = DefaultLearningRate
	}
	return &Updater{learningRate: learningRate}
}

// ApplyFeedback returns the preference vector nudged toward (apply) or away
// from (reject) the job vector, re-normalized to unit length. Both vectors are
// required; deterministic for identical inputs, and deliberately not
// idempotent across repeated calls.
func (u *Updater) ApplyFeedback(pref, job vector.Vector, dir vector.Direction) (vector.Vector, error) {
	if pref == nil || job == nil {
		return nil, ErrMissingEmbedding
	}
	return vector.Interpolate(pref, job, u.learningRate, dir)
}
