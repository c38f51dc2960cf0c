// Package gemini implements the embedding.Encoder interface on top of the
// Google GenAI embeddings API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/signedhq/signed-matcher/internal/vector"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "text-embedding-004"

const defaultDimension = 768

// Overridable in tests to avoid real backoff delays.
var sleep = time.Sleep

// embedder is the slice of the genai client used by Encoder, extracted so
// tests can substitute a fake.
type embedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Encoder calls the Gemini embeddings API. It holds no per-request state and
// is safe for concurrent use.
type Encoder struct {
	models     embedder
	model      string
	dimension  int
	maxRetries int
	logger     *zap.Logger
}

// NewEncoder creates an Encoder backed by the Gemini API.
func NewEncoder(ctx context.Context, apiKey, model string, maxRetries int, logger *zap.Logger) (*Encoder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Encoder{
		models:     client.Models,
		model:      model,
		dimension:  defaultDimension,
		maxRetries: maxRetries,
		logger:     logger,
	}, nil
}

func (e *Encoder) Name() string { return "gemini" }

// Dimension returns the dimensionality of produced vectors.
func (e *Encoder) Dimension() int { return e.dimension }

// Embed returns the embedding for the given text, retrying transient API
// errors with linear backoff.
func (e *Encoder) Embed(ctx context.Context, text string) (vector.Vector, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text must not be empty")
	}

	var lastErr error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		resp, err := e.models.EmbedContent(ctx, e.model, genai.Text(text), nil)
		if err == nil {
			return extractVector(resp)
		}

		lastErr = err
		if !isTemporary(err) {
			return nil, fmt.Errorf("embed content: %w", err)
		}

		if attempt < e.maxRetries {
			e.logger.Debug("retrying gemini embedding",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			sleep(time.Duration(attempt) * time.Second)
		}
	}

	return nil, fmt.Errorf("embed content after %d attempts: %w", e.maxRetries, lastErr)
}

func extractVector(resp *genai.EmbedContentResponse) (vector.Vector, error) {
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, errors.New("gemini api returned no embedding")
	}

	values := resp.Embeddings[0].Values
	if len(values) == 0 {
		return nil, errors.New("gemini api returned empty embedding")
	}

	out := make(vector.Vector, len(values))
	for i, x := range values {
		out[i] = float64(x)
	}
	return out, nil
}

func isTemporary(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
}
