package embedding

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/signedhq/signed-matcher/internal/vector"
)

type fakeEncoder struct {
	result vector.Vector
	err    error
	inputs []string
}

func (f *fakeEncoder) Name() string { return "fake" }

func (f *fakeEncoder) Dimension() int { return len(f.result) }

func (f *fakeEncoder) Embed(_ context.Context, text string) (vector.Vector, error) {
	f.inputs = append(f.inputs, text)
	return f.result, f.err
}

func TestEncodeFieldsNormalizesOutput(t *testing.T) {
	enc := &fakeEncoder{result: vector.Vector{3, 4}}
	te := NewTextEncoder(enc, zap.NewNop())

	got, err := te.EncodeFields(context.Background(), []Field{{Label: "title", Value: "Go Engineer"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := vector.Norm(got); math.Abs(n-1.0) > 1e-6 {
		t.Fatalf("expected unit norm, got %v", n)
	}
}

func TestEncodeFieldsKeepsFieldFraming(t *testing.T) {
	enc := &fakeEncoder{result: vector.Vector{1, 0}}
	te := NewTextEncoder(enc, zap.NewNop())

	fields := []Field{
		{Label: "title", Value: "Backend Engineer"},
		{Label: "description", Value: ""},
		{Label: "location", Value: "Remote"},
	}

	if _, err := te.EncodeFields(context.Background(), fields); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(enc.inputs) != 1 {
		t.Fatalf("expected a single model call, got %d", len(enc.inputs))
	}

	want := "title: Backend Engineer\ndescription: \nlocation: Remote"
	if enc.inputs[0] != want {
		t.Fatalf("unexpected blob:\n%q\nwant:\n%q", enc.inputs[0], want)
	}
}

func TestEncodeFieldsEmptyInput(t *testing.T) {
	enc := &fakeEncoder{result: vector.Vector{1, 0}}
	te := NewTextEncoder(enc, zap.NewNop())

	fields := []Field{
		{Label: "title", Value: "   "},
		{Label: "description", Value: ""},
	}

	_, err := te.EncodeFields(context.Background(), fields)
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}

	if len(enc.inputs) != 0 {
		t.Fatalf("expected no model call on empty input, got %d", len(enc.inputs))
	}
}

func TestEncodeFieldsZeroVectorUnnormalized(t *testing.T) {
	enc := &fakeEncoder{result: vector.Vector{0, 0, 0}}
	te := NewTextEncoder(enc, zap.NewNop())

	got, err := te.EncodeFields(context.Background(), []Field{{Label: "title", Value: "x"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, x := range got {
		if x != 0 {
			t.Fatalf("expected zero vector preserved, got %v at index %d", x, i)
		}
	}
}

func TestEncodeTextSwallowsModelErrors(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	enc := &fakeEncoder{err: errors.New("model exploded")}
	te := NewTextEncoder(enc, zap.New(core))

	got := te.EncodeText(context.Background(), []Field{{Label: "title", Value: "x"}})
	if got != nil {
		t.Fatalf("expected nil vector on model failure, got %v", got)
	}

	entries := observed.FilterMessage("embedding unavailable").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d entries", len(entries))
	}
}

func TestEncodeTextEmptyInputLogsDebugOnly(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	te := NewTextEncoder(&fakeEncoder{}, zap.New(core))

	got := te.EncodeText(context.Background(), nil)
	if got != nil {
		t.Fatalf("expected nil vector, got %v", got)
	}

	for _, entry := range observed.All() {
		if entry.Level > zapcore.DebugLevel {
			t.Fatalf("expected only debug logs for empty input, got %v", entry.Level)
		}
	}
}
