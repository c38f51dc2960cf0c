package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/signedhq/signed-matcher/internal/logger"
	"github.com/signedhq/signed-matcher/internal/vector"
)

// Field is one labeled text value of an entity. The label keeps the framing of
// the concatenated blob stable even when a value is empty.
type Field struct {
	Label string
	Value string
}

// TextEncoder concatenates labeled fields into one blob, runs the underlying
// model once, and unit-normalizes the result.
type TextEncoder struct {
	encoder Encoder
	logger  *zap.Logger
}

func NewTextEncoder(encoder Encoder, logger *zap.Logger) *TextEncoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextEncoder{encoder: encoder, logger: logger}
}

// EncodeFields encodes the fields into a unit-length vector. A whitespace-only
// blob returns ErrEmptyInput; a pathological all-zero model output is returned
// unnormalized instead of dividing by zero. Provider failures are returned as
// errors for the caller to classify.
func (e *TextEncoder) EncodeFields(ctx context.Context, fields []Field) (vector.Vector, error) {
	if !hasContent(fields) {
		return nil, ErrEmptyInput
	}
	blob := joinFields(fields)

	raw, err := e.encoder.Embed(ctx, blob)
	if err != nil {
		return nil, fmt.Errorf("embed with %s: %w", e.encoder.Name(), err)
	}

	e.logger.Debug("encoded text bundle",
		zap.String("preview", logger.TruncateForLog(blob, 80)),
		zap.Int("dimension", len(raw)),
	)

	return vector.Normalize(raw), nil
}

// EncodeText is the soft-failure surface used by create/update paths: any
// failure is logged and degrades to a nil vector so the surrounding write
// never fails because the embedding was unavailable.
func (e *TextEncoder) EncodeText(ctx context.Context, fields []Field) vector.Vector {
	v, err := e.EncodeFields(ctx, fields)
	if err != nil {
		if errors.Is(err, ErrEmptyInput) {
			e.logger.Debug("skipping embedding", zap.String("reason", "empty input"))
		} else {
			e.logger.Warn("embedding unavailable",
				zap.String("encoder", e.encoder.Name()),
				zap.Error(err),
			)
		}
		return nil
	}
	return v
}

func hasContent(fields []Field) bool {
	for _, f := range fields {
		if strings.TrimSpace(f.Value) != "" {
			return true
		}
	}
	return false
}

// joinFields renders the blob in a fixed order with one "label: value" line per
// field. Empty values keep their line so the framing stays deterministic.
func joinFields(fields []Field) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.Label)
		b.WriteString(": ")
		b.WriteString(f.Value)
	}
	return b.String()
}
