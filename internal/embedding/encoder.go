// Package embedding turns free text into unit-normalized embedding vectors.
// The model call is abstracted behind the Encoder interface so the engine can
// run against Gemini, any OpenAI-compatible endpoint, or a fake in tests.
package embedding

import (
	"context"
	"errors"

	"github.com/signedhq/signed-matcher/internal/vector"
)

// ErrEmptyInput reports that the concatenated text bundle contained nothing to
// encode. Callers treat it as "no embedding", never as a request failure.
var ErrEmptyInput = errors.New("embedding input is empty")

// Encoder produces a dense vector for a single piece of text. Implementations
// hold no per-call state and are safe to share across goroutines.
type Encoder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) (vector.Vector, error)
}
