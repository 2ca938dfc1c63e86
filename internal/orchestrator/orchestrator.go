// Package orchestrator runs the full generation pipeline for one request:
// validate, score, select, then compose the five listing fields
// concurrently with cache consultation.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"asogen/internal/cache"
	"asogen/internal/compose"
	"asogen/internal/config"
	"asogen/internal/core"
	"asogen/internal/llm"
	"asogen/internal/logger"
	"asogen/internal/scoring"
	"asogen/internal/validate"
)

// fieldCount is the number of concurrently composed output fields.
const fieldCount = 5

// Orchestrator wires the pipeline stages together. Safe for concurrent use;
// the cache is the only state shared across requests.
type Orchestrator struct {
	validator *validate.Validator
	scorer    *scoring.Scorer
	selector  *scoring.Selector
	cache     *cache.Cache
	gen       compose.TextGenerator
	log       *slog.Logger
}

// New builds an orchestrator from configuration and a text-generation
// boundary. Invalid scoring weights fail here, before any request runs.
// Provider calls made by the composers are wrapped with the configured
// retry/backoff policy.
func New(cfg *config.Config, gen compose.TextGenerator) (*Orchestrator, error) {
	scorer, err := scoring.NewScorer(scoring.Weights{
		Ranking:    cfg.Scoring.RankingWeight,
		Popularity: cfg.Scoring.PopularityWeight,
		Difficulty: cfg.Scoring.DifficultyWeight,
	})
	if err != nil {
		return nil, err
	}

	selector := scoring.NewSelector(scoring.SelectorOptions{
		MinScore:       cfg.Scoring.MinPrimaryScore,
		CandidateLimit: cfg.Scoring.CandidateLimit,
	})

	return &Orchestrator{
		validator: validate.New(),
		scorer:    scorer,
		selector:  selector,
		cache:     cache.New(cfg.Cache.TTL, cfg.Cache.MaxEntries),
		gen:       retryingGenerator{inner: gen, policy: llm.PolicyFor(cfg.Gemini.MaxRetries)},
		log:       logger.Get(),
	}, nil
}

// Cache exposes the generation cache for maintenance operations
// (invalidation, clearing).
func (o *Orchestrator) Cache() *cache.Cache { return o.cache }

// GenerateAll runs the full pipeline. Validation, scoring and selection run
// sequentially (each depends on the previous); the five field compositions
// run concurrently and the result is assembled only after all complete. Any
// composer failure fails the whole request with an *AggregateError naming
// the failing field(s) — there is no partial-success response.
func (o *Orchestrator) GenerateAll(ctx context.Context, req core.GenerationRequest) (*core.GenerationResult, error) {
	start := time.Now()
	requestID := uuid.NewString()
	log := o.log.With("request_id", requestID, "language", req.Language, "app_name", req.AppName)

	// Language gate first: nothing is processed for an unsupported language.
	if err := compose.ValidateLanguage(req.Language); err != nil {
		return nil, err
	}

	stepStart := time.Now()
	records, err := o.validator.Validate(req.Table)
	if err != nil {
		return nil, err
	}
	log.Debug("table validated", "rows", len(records), "duration", time.Since(stepStart))

	stepStart = time.Now()
	scored := o.scorer.ScoreTable(records)
	selection, err := o.selector.Select(scored)
	if err != nil {
		return nil, err
	}
	log.Info("primary keyword selected",
		"keyword", selection.Primary.Record.Keyword,
		"score", selection.Primary.CompositeScore,
		"analyzed", selection.TotalAnalyzed,
		"duration", time.Since(stepStart))
	if selection.LowConfidence {
		log.Warn("primary keyword scored below threshold, continuing",
			"keyword", selection.Primary.Record.Keyword,
			"score", selection.Primary.CompositeScore)
	}

	fields, err := o.composeFields(ctx, log, selection, req)
	if err != nil {
		return nil, err
	}

	return &core.GenerationResult{
		RequestID:            requestID,
		KeywordField:         fields[compose.FieldKeywords],
		Title:                fields[compose.FieldTitle],
		Subtitle:             fields[compose.FieldSubtitle],
		Description:          fields[compose.FieldDescription],
		WhatsNew:             fields[compose.FieldWhatsNew],
		Language:             req.Language,
		LowConfidencePrimary: selection.LowConfidence,
		ProcessingTime:       time.Since(start),
		GeneratedAt:          time.Now().UTC(),
	}, nil
}

// fieldTask is one concurrently composed field: its cache key and the
// builder invoked on a miss.
type fieldTask struct {
	field string
	key   string
	build func(ctx context.Context) (string, error)
}

// composeFields fans the five field tasks out and waits for all of them
// (barrier). Each task consults the cache first and stores on a miss. Wall
// clock for this phase is bounded by the slowest task, not the sum.
func (o *Orchestrator) composeFields(ctx context.Context, log *slog.Logger, sel *core.SelectionResult, req core.GenerationRequest) (map[string]string, error) {
	primary := sel.Primary.Record.Keyword
	tasks := []fieldTask{
		{
			field: compose.FieldKeywords,
			key:   keywordFieldKey(sel, req.Language),
			build: func(ctx context.Context) (string, error) {
				return compose.BuildKeywordField(sel, req.Language)
			},
		},
		{
			field: compose.FieldTitle,
			key:   cache.Key(compose.FieldTitle, primary, req.AppName, req.Language),
			build: func(ctx context.Context) (string, error) {
				return compose.BuildTitle(primary, req.AppName, req.Language)
			},
		},
		{
			field: compose.FieldSubtitle,
			key:   cache.Key(compose.FieldSubtitle, append([]string{primary, req.AppName}, append(sortedCopy(req.Features), req.Language)...)...),
			build: func(ctx context.Context) (string, error) {
				return compose.BuildSubtitle(ctx, o.gen, primary, req.AppName, req.Features, req.Language)
			},
		},
		{
			field: compose.FieldDescription,
			key:   cache.Key(compose.FieldDescription, append([]string{primary, req.AppName}, append(sortedCopy(req.Features), req.Language)...)...),
			build: func(ctx context.Context) (string, error) {
				return compose.BuildDescription(ctx, o.gen, primary, req.AppName, req.Features, req.Language)
			},
		},
		{
			field: compose.FieldWhatsNew,
			key:   cache.Key(compose.FieldWhatsNew, append([]string{primary}, append(sortedCopy(req.Features), req.Language)...)...),
			build: func(ctx context.Context) (string, error) {
				return compose.BuildWhatsNew(primary, req.Features, req.Language)
			},
		},
	}

	results := make(map[string]string, fieldCount)
	var fieldErrs []FieldError
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, task := range tasks {
		wg.Add(1)
		go func(t fieldTask) {
			defer wg.Done()
			stepStart := time.Now()

			if value, ok := o.cache.Get(t.key); ok {
				log.Debug("cache hit", "field", t.field)
				mu.Lock()
				results[t.field] = value
				mu.Unlock()
				return
			}

			if err := ctx.Err(); err != nil {
				mu.Lock()
				fieldErrs = append(fieldErrs, FieldError{Field: t.field, Err: err})
				mu.Unlock()
				return
			}

			value, err := t.build(ctx)
			if err != nil {
				log.Error("field composition failed", "field", t.field, "error", err.Error())
				mu.Lock()
				fieldErrs = append(fieldErrs, FieldError{Field: t.field, Err: err})
				mu.Unlock()
				return
			}

			o.cache.Set(t.key, value)
			log.Debug("field composed", "field", t.field, "length", len(value), "duration", time.Since(stepStart))
			mu.Lock()
			results[t.field] = value
			mu.Unlock()
		}(task)
	}
	wg.Wait()

	if len(fieldErrs) > 0 {
		// Deterministic error ordering regardless of goroutine scheduling.
		sort.Slice(fieldErrs, func(i, j int) bool { return fieldErrs[i].Field < fieldErrs[j].Field })
		return nil, &AggregateError{Fields: fieldErrs}
	}
	return results, nil
}

// keywordFieldKey hashes the normalized candidate list, primary keyword and
// language — the exact semantic inputs of the keyword field.
func keywordFieldKey(sel *core.SelectionResult, lang string) string {
	parts := make([]string, 0, len(sel.Candidates)+2)
	for _, c := range sel.Candidates {
		parts = append(parts, compose.NormalizeKey(c.Keyword))
	}
	parts = append(parts, compose.NormalizeKey(sel.Primary.Record.Keyword), lang)
	return cache.Key(compose.FieldKeywords, parts...)
}

func sortedCopy(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	sort.Strings(out)
	return out
}

// retryingGenerator applies the retry/backoff policy around every provider
// call made by the composers.
type retryingGenerator struct {
	inner  compose.TextGenerator
	policy llm.Policy
}

func (r retryingGenerator) GenerateText(ctx context.Context, prompt string, maxTokens int32) (string, error) {
	return llm.WithRetry(ctx, r.policy, func(ctx context.Context) (string, error) {
		return r.inner.GenerateText(ctx, prompt, maxTokens)
	})
}

// FieldError names one failed field and its underlying cause.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e FieldError) Unwrap() error { return e.Err }

// AggregateError is returned when one or more field compositions fail. The
// whole request fails; partial results are discarded since all five fields
// are required to form a valid listing.
type AggregateError struct {
	Fields []FieldError
}

func (e *AggregateError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Error()
	}
	return "generation failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the per-field causes to errors.Is/As.
func (e *AggregateError) Unwrap() []error {
	errs := make([]error, len(e.Fields))
	for i := range e.Fields {
		errs[i] = e.Fields[i]
	}
	return errs
}

// FailedFields lists the names of the fields that failed.
func (e *AggregateError) FailedFields() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return names
}
