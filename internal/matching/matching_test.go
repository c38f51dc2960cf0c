package matching

import (
	"errors"
	"testing"

	"github.com/signedhq/signed-matcher/internal/vector"
)

func TestRankNilQueryPreservesOrder(t *testing.T) {
	candidates := []Candidate{
		{ID: "A", Vector: vector.Vector{1, 0}},
		{ID: "B", Vector: vector.Vector{0, 1}},
		{ID: "C", Vector: vector.Vector{1, 1}},
	}

	ranked, err := Rank(nil, candidates)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}

	if len(ranked) != 3 {
		t.Fatalf("expected 3 results, got %d", len(ranked))
	}
	for i, want := range []string{"A", "B", "C"} {
		if ranked[i].ID != want {
			t.Fatalf("expected %s at position %d, got %s", want, i, ranked[i].ID)
		}
		if ranked[i].Score != 0 {
			t.Fatalf("expected score 0.0 without query, got %v", ranked[i].Score)
		}
	}
}

func TestRankOrdersByScoreWithStableTies(t *testing.T) {
	query := vector.Vector{1, 0}
	candidates := []Candidate{
		{ID: "A", Vector: vector.Vector{1, 0}},
		{ID: "B", Vector: vector.Vector{0, 1}},
		{ID: "C", Vector: nil},
	}

	ranked, err := Rank(query, candidates)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}

	if ranked[0].ID != "A" || ranked[0].Score != 1.0 {
		t.Fatalf("expected A with score 1.0 first, got %+v", ranked[0])
	}
	// B and C both score 0.0; B entered first and must stay first.
	if ranked[1].ID != "B" || ranked[2].ID != "C" {
		t.Fatalf("expected tie order B, C, got %s, %s", ranked[1].ID, ranked[2].ID)
	}
	if ranked[1].Score != 0 || ranked[2].Score != 0 {
		t.Fatalf("expected zero scores for orthogonal and missing vectors, got %v, %v",
			ranked[1].Score, ranked[2].Score)
	}
}

func TestRankDimensionMismatchFails(t *testing.T) {
	_, err := Rank(vector.Vector{1, 0}, []Candidate{
		{ID: "A", Vector: vector.Vector{1, 0, 0}},
	})
	if !errors.Is(err, vector.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestApplyFeedbackDirections(t *testing.T) {
	u := NewUpdater(DefaultLearningRate)
	pref := vector.Vector{1, 0}
	job := vector.Vector{0, 1}

	before, _ := vector.Cosine(pref, job)

	applied, err := u.ApplyFeedback(pref, job, vector.Toward)
	if err != nil {
		t.Fatalf("ApplyFeedback toward: %v", err)
	}
	afterApply, _ := vector.Cosine(applied, job)
	if afterApply <= before {
		t.Fatalf("apply should increase similarity: %v -> %v", before, afterApply)
	}

	rejected, err := u.ApplyFeedback(pref, job, vector.Away)
	if err != nil {
		t.Fatalf("ApplyFeedback away: %v", err)
	}
	afterReject, _ := vector.Cosine(rejected, job)
	if afterReject >= before {
		t.Fatalf("reject should decrease similarity: %v -> %v", before, afterReject)
	}
}

func TestApplyFeedbackDeterministic(t *testing.T) {
	u := NewUpdater(DefaultLearningRate)
	pref := vector.Vector{0.6, 0.8}
	job := vector.Vector{0, 1}

	first, err := u.ApplyFeedback(pref, job, vector.Toward)
	if err != nil {
		t.Fatalf("ApplyFeedback: %v", err)
	}
	second, err := u.ApplyFeedback(pref, job, vector.Toward)
	if err != nil {
		t.Fatalf("ApplyFeedback: %v", err)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("expected identical output for identical input, diff at %d: %v vs %v",
				i, first[i], second[i])
		}
	}
}

func TestApplyFeedbackMissingEmbedding(t *testing.T) {
	u := NewUpdater(DefaultLearningRate)
	job := vector.Vector{0, 1}

	tests := []struct {
		name string
		pref vector.Vector
		job  vector.Vector
	}{
		{name: "nil preference", pref: nil, job: job},
		{name: "nil job vector", pref: vector.Vector{1, 0}, job: nil},
		{name: "both nil", pref: nil, job: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := u.ApplyFeedback(tt.pref, tt.job, vector.Toward)
			if !errors.Is(err, ErrMissingEmbedding) {
				t.Fatalf("expected ErrMissingEmbedding, got %v", err)
			}
		})
	}
}

func TestNewUpdaterDefaultsLearningRate(t *testing.T) {
	u := NewUpdater(0)
	if u.learningRate != DefaultLearningRate {
		t.Fatalf("expected default learning rate, got %v", u.learningRate)
	}
}
