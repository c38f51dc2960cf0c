package vector

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-6

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestNormalizeUnitLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input Vector
	}{
		{name: "simple", input: Vector{3, 4}},
		{name: "negative components", input: Vector{-1, 2, -3}},
		{name: "already normalized", input: Vector{1, 0, 0}},
		{name: "tiny magnitude", input: Vector{1e-8, 1e-8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Normalize(tt.input)
			if !almostEqual(Norm(got), 1.0) {
				t.Fatalf("expected unit norm, got %v", Norm(got))
			}
		})
	}
}

func TestNormalizeZeroVectorUnchanged(t *testing.T) {
	zero := Vector{0, 0, 0}
	got := Normalize(zero)
	for i, x := range got {
		if x != 0 {
			t.Fatalf("expected zero vector unchanged, got %v at index %d", x, i)
		}
	}
}

func TestCosineBounds(t *testing.T) {
	pairs := [][2]Vector{
		{{1, 0}, {0, 1}},
		{{1, 1}, {1, 1}},
		{{1, 0}, {-1, 0}},
		{{0.3, 0.7}, {12, -5}},
	}

	for _, pair := range pairs {
		got, err := Cosine(pair[0], pair[1])
		if err != nil {
			t.Fatalf("Cosine(%v, %v) returned error: %v", pair[0], pair[1], err)
		}
		if got < -1-tolerance || got > 1+tolerance {
			t.Fatalf("Cosine(%v, %v) = %v out of bounds", pair[0], pair[1], got)
		}
	}
}

func TestCosineSelfSimilarity(t *testing.T) {
	v := Vector{2, -3, 5}
	got, err := Cosine(v, v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, 1.0) {
		t.Fatalf("expected self-similarity 1.0, got %v", got)
	}
}

func TestCosineSymmetry(t *testing.T) {
	a := Vector{1, 2, 3}
	b := Vector{-2, 0.5, 4}

	ab, err := Cosine(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ba, err := Cosine(b, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(ab, ba) {
		t.Fatalf("expected symmetry, got %v vs %v", ab, ba)
	}
}

func TestCosineDegenerateInputs(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
	}{
		{name: "nil left", a: nil, b: Vector{1, 0}},
		{name: "nil right", a: Vector{1, 0}, b: nil},
		{name: "both nil", a: nil, b: nil},
		{name: "zero magnitude", a: Vector{0, 0}, b: Vector{1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != 0 {
				t.Fatalf("expected 0.0, got %v", got)
			}
		})
	}
}

func TestCosineDimensionMismatch(t *testing.T) {
	_, err := Cosine(Vector{1, 0}, Vector{1, 0, 0})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestInterpolateUnitNorm(t *testing.T) {
	tests := []struct {
		name string
		pref Vector
		job  Vector
		dir  Direction
	}{
		{name: "toward unit inputs", pref: Vector{1, 0}, job: Vector{0, 1}, dir: Toward},
		{name: "away unit inputs", pref: Vector{1, 0}, job: Vector{0, 1}, dir: Away},
		{name: "toward unnormalized inputs", pref: Vector{10, 0}, job: Vector{0, 0.1}, dir: Toward},
		{name: "away unnormalized inputs", pref: Vector{-4, 3}, job: Vector{2, 2}, dir: Away},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Interpolate(tt.pref, tt.job, 0.03, tt.dir)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !almostEqual(Norm(got), 1.0) {
				t.Fatalf("expected unit norm after interpolation, got %v", Norm(got))
			}
		})
	}
}

func TestInterpolateDirection(t *testing.T) {
	pref := Vector{1, 0}
	job := Vector{0, 1}

	before, err := Cosine(pref, job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	toward, err := Interpolate(pref, job, 0.03, Toward)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	afterToward, err := Cosine(toward, job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if afterToward <= before {
		t.Fatalf("expected similarity to increase, got %v -> %v", before, afterToward)
	}

	away, err := Interpolate(pref, job, 0.03, Away)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	afterAway, err := Cosine(away, job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if afterAway >= before {
		t.Fatalf("expected similarity to decrease, got %v -> %v", before, afterAway)
	}
}

func TestInterpolateAccumulates(t *testing.T) {
	pref := Vector{1, 0}
	job := Vector{0, 1}

	once, err := Interpolate(pref, job, 0.03, Toward)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := Interpolate(once, job, 0.03, Toward)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	simOnce, _ := Cosine(once, job)
	simTwice, _ := Cosine(twice, job)
	if simTwice <= simOnce {
		t.Fatalf("expected repeated feedback to keep nudging, got %v -> %v", simOnce, simTwice)
	}
}

func TestInterpolateDimensionMismatch(t *testing.T) {
	_, err := Interpolate(Vector{1, 0}, Vector{1, 0, 0}, 0.03, Toward)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}
