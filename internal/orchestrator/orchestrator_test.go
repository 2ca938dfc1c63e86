package orchestrator

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"asogen/internal/cache"
	"asogen/internal/compose"
	"asogen/internal/config"
	"asogen/internal/core"
)

// fakeGenerator answers subtitle and description prompts, telling them apart
// by their token budget.
type fakeGenerator struct {
	err   error
	calls int
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string, maxTokens int32) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if maxTokens <= 128 {
		return "Track every workout with ease", nil
	}
	return "StepTrack keeps your fitness data in one place. Build a fitness habit, " +
		"review fitness trends weekly and share fitness milestones with friends.", nil
}

func testRequest() core.GenerationRequest {
	return core.GenerationRequest{
		Table: core.RawTable{
			Columns: []string{"keyword", "ranking", "popularity", "difficulty"},
			Rows: [][]string{
				{"fitness", "5", "85", "30"},
				{"workout log", "40", "60", "45"},
				{"step counter", "120", "55", "50"},
			},
		},
		AppName:  "StepTrack",
		Features: []string{"Track workouts", "Sync devices"},
		Language: compose.LangEnglish,
	}
}

func newTestOrchestrator(t *testing.T, gen compose.TextGenerator) *Orchestrator {
	t.Helper()
	cfg := config.Default()
	cfg.Gemini.MaxRetries = 1 // keep failure tests free of backoff waits
	orch, err := New(cfg, gen)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return orch
}

func TestGenerateAllHappyPath(t *testing.T) {
	gen := &fakeGenerator{}
	orch := newTestOrchestrator(t, gen)

	result, err := orch.GenerateAll(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("GenerateAll failed: %v", err)
	}

	if result.RequestID == "" {
		t.Error("Expected a request ID")
	}
	if result.Language != compose.LangEnglish {
		t.Errorf("Expected language echoed back, got %q", result.Language)
	}
	if result.LowConfidencePrimary {
		t.Error("Expected a confident primary for these metrics")
	}
	if result.ProcessingTime <= 0 {
		t.Error("Expected a positive processing time")
	}

	if !strings.Contains(strings.ToLower(result.KeywordField), "fitness") {
		t.Errorf("Expected the primary in the keyword field, got %q", result.KeywordField)
	}
	if n := utf8.RuneCountInString(result.Title); n == 0 || n > 30 {
		t.Errorf("Expected title in (0,30] runes, got %d: %q", n, result.Title)
	}
	if n := utf8.RuneCountInString(result.Subtitle); n == 0 || n > 30 {
		t.Errorf("Expected subtitle in (0,30] runes, got %d: %q", n, result.Subtitle)
	}
	if n := utf8.RuneCountInString(result.Description); n == 0 || n > 4000 {
		t.Errorf("Expected description in (0,4000] runes, got %d", n)
	}
	if n := utf8.RuneCountInString(result.WhatsNew); n == 0 || n > 4000 {
		t.Errorf("Expected what's-new in (0,4000] runes, got %d", n)
	}
	if gen.calls != 2 {
		t.Errorf("Expected 2 provider calls (subtitle, description), got %d", gen.calls)
	}
}

func TestGenerateAllUnsupportedLanguage(t *testing.T) {
	gen := &fakeGenerator{}
	orch := newTestOrchestrator(t, gen)

	req := testRequest()
	req.Language = "fr"
	_, err := orch.GenerateAll(context.Background(), req)

	var cfgErr *core.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected *core.ConfigurationError, got %v", err)
	}
	if gen.calls != 0 {
		t.Errorf("Expected no processing for an unsupported language, got %d provider calls", gen.calls)
	}
}

func TestGenerateAllInvalidTable(t *testing.T) {
	orch := newTestOrchestrator(t, &fakeGenerator{})

	req := testRequest()
	req.Table.Rows = append(req.Table.Rows, []string{"fitness", "9", "50", "50"}) // duplicate
	_, err := orch.GenerateAll(context.Background(), req)

	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected *core.ValidationError, got %v", err)
	}
}

func TestGenerateAllProviderFailureAggregates(t *testing.T) {
	gen := &fakeGenerator{err: &core.ProviderError{
		Op:        "generate",
		Retryable: true,
		Err:       context.DeadlineExceeded,
	}}
	orch := newTestOrchestrator(t, gen)

	result, err := orch.GenerateAll(context.Background(), testRequest())
	if result != nil {
		t.Error("Expected no partial result when a field fails")
	}

	var agg *AggregateError
	if !errors.As(err, &agg) {
		t.Fatalf("Expected *AggregateError, got %v", err)
	}
	failed := strings.Join(agg.FailedFields(), ",")
	if !strings.Contains(failed, compose.FieldDescription) {
		t.Errorf("Expected %q among failed fields, got %q", compose.FieldDescription, failed)
	}
	if !strings.Contains(failed, compose.FieldSubtitle) {
		t.Errorf("Expected %q among failed fields, got %q", compose.FieldSubtitle, failed)
	}
	// Deterministic fields composed fine; they still must not leak out.
	if slices.Contains(agg.FailedFields(), compose.FieldTitle) {
		t.Errorf("Expected the title task to succeed, got failures %q", failed)
	}
}

func TestGenerateAllSecondRunHitsCache(t *testing.T) {
	gen := &fakeGenerator{}
	orch := newTestOrchestrator(t, gen)

	first, err := orch.GenerateAll(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	callsAfterFirst := gen.calls

	second, err := orch.GenerateAll(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if gen.calls != callsAfterFirst {
		t.Errorf("Expected no provider calls on the cached run, got %d extra", gen.calls-callsAfterFirst)
	}
	if first.Subtitle != second.Subtitle || first.Description != second.Description {
		t.Error("Expected cached runs to return identical field values")
	}
	if first.RequestID == second.RequestID {
		t.Error("Expected a fresh request ID per run")
	}
}

func TestGenerateAllCacheInvalidation(t *testing.T) {
	gen := &fakeGenerator{}
	orch := newTestOrchestrator(t, gen)

	if _, err := orch.GenerateAll(context.Background(), testRequest()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	callsAfterFirst := gen.calls

	if removed := orch.Cache().InvalidatePattern(cache.FieldPattern(compose.FieldSubtitle)); removed != 1 {
		t.Fatalf("Expected 1 subtitle entry invalidated, got %d", removed)
	}
	if _, err := orch.GenerateAll(context.Background(), testRequest()); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if gen.calls != callsAfterFirst+1 {
		t.Errorf("Expected exactly one regenerated field, got %d extra calls", gen.calls-callsAfterFirst)
	}
}

func TestGenerateAllLowConfidenceFlag(t *testing.T) {
	orch := newTestOrchestrator(t, &fakeGenerator{})

	req := testRequest()
	req.Table.Rows = [][]string{
		{"weak keyword", "995", "3", "97"},
	}
	result, err := orch.GenerateAll(context.Background(), req)
	if err != nil {
		t.Fatalf("GenerateAll failed: %v", err)
	}
	if !result.LowConfidencePrimary {
		t.Error("Expected the low-confidence flag for a weak primary")
	}
	if result.Title == "" {
		t.Error("Expected generation to proceed despite low confidence")
	}
}
