// Package vector holds the numeric primitives shared by the matching engine:
// norms, cosine similarity and the feedback interpolation rule. All functions
// are pure and operate on plain float64 slices.
package vector

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch reports two vectors of different lengths being combined.
// It indicates data corruption or encoder version skew upstream, not a
// recoverable runtime condition.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Vector is a fixed-dimension embedding. A nil Vector means "no embedding",
// which is a valid state distinct from the all-zero vector.
type Vector []float64

// Direction selects which way a feedback event moves a preference vector.
type Direction int

const (
	// Toward nudges the preference vector closer to the target.
	Toward Direction = iota
	// Away nudges the preference vector away from the target.
	Away
)

func (d Direction) String() string {
	if d == Away {
		return "away"
	}
	return "toward"
}

// Norm returns the Euclidean norm of v.
func Norm(v Vector) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged instead of dividing by zero.
func Normalize(v Vector) Vector {
	n := Norm(v)
	if n == 0 {
		return v
	}
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = x / n
	}
	return out
}

// Dot returns the dot product of equal-length vectors.
func Dot(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}

// Cosine returns the cosine similarity of a and b in [-1, 1]. Missing, empty
// or zero-magnitude inputs score 0.0 rather than erroring, so similarity scans
// can treat "no embedding" as no affinity. Mismatched dimensions return an
// error since they can only come from a bug or skewed encoder versions.
func Cosine(a, b Vector) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, nil
	}

	dot, err := Dot(a, b)
	if err != nil {
		return 0, err
	}

	na := Norm(a)
	nb := Norm(b)
	if na == 0 || nb == 0 {
		return 0, nil
	}

	return dot / (na * nb), nil
}

// Interpolate applies one feedback event: it blends the unit-normalized pref
// and target vectors with the given weight and re-normalizes the result.
// Toward computes (1-w)*pref + w*target, Away computes pref - w*target.
// Repeated application keeps nudging in the same direction; that accumulation
// is the intended reinforcement behavior.
func Interpolate(pref, target Vector, weight float64, dir Direction) (Vector, error) {
	if len(pref) != len(target) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(pref), len(target))
	}

	p := Normalize(pref)
	t := Normalize(target)

	out := make(Vector, len(p))
	switch dir {
	case Away:
		for i := range p {
			out[i] = p[i] - weight*t[i]
		}
	default:
		for i := range p {
			out[i] = (1-weight)*p[i] + weight*t[i]
		}
	}

	return Normalize(out), nil
}
