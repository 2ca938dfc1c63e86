package core

import "time"

// RawTable is a parsed-but-unvalidated keyword table as delivered by an
// external loader (CSV upload, fixture, etc.). Cells are kept as strings so
// the validator owns all type conversion.
type RawTable struct {
	Columns []string   `json:"columns"` // Header names, in file order
	Rows    [][]string `json:"rows"`    // One slice of cells per data row
}

// KeywordRecord is a single validated keyword-research row.
type KeywordRecord struct {
	Keyword    string  `json:"keyword"`    // Trimmed, non-empty, 1-100 chars
	Ranking    int     `json:"ranking"`    // Search ranking, 1-1000 (1 is best)
	Popularity float64 `json:"popularity"` // Search popularity, 0-100
	Difficulty float64 `json:"difficulty"` // Competition difficulty, 0-100
}

// ScoredKeyword owns a KeywordRecord plus its derived sub-scores. Immutable
// once computed.
type ScoredKeyword struct {
	Record          KeywordRecord `json:"record"`
	RankingScore    float64       `json:"ranking_score"`    // (1000-ranking)/999, clamped to [0,1]
	PopularityScore float64       `json:"popularity_score"` // popularity/100
	DifficultyScore float64       `json:"difficulty_score"` // (100-difficulty)/100
	CompositeScore  float64       `json:"composite_score"`  // Weighted sum, rounded to 4 decimals
}

// Candidate is one entry of the ranked shortlist surfaced by the selector.
type Candidate struct {
	Rank       int     `json:"rank"` // 1-based position in the shortlist
	Keyword    string  `json:"keyword"`
	Score      float64 `json:"score"`
	Ranking    int     `json:"ranking"`
	Popularity float64 `json:"popularity"`
	Difficulty float64 `json:"difficulty"`
}

// SelectionResult is the outcome of primary keyword selection. Created once
// per request and read-only afterward.
type SelectionResult struct {
	Primary       ScoredKeyword `json:"primary"`
	Candidates    []Candidate   `json:"candidates"`     // Top N including the primary
	TotalAnalyzed int           `json:"total_analyzed"` // Number of keywords scored
	LowConfidence bool          `json:"low_confidence"` // Primary scored below the configured threshold
}

// GenerationRequest carries the caller-supplied inputs for one orchestrated
// run. Ephemeral, request-scoped.
type GenerationRequest struct {
	Table    RawTable `json:"table"`
	AppName  string   `json:"app_name"`
	Features []string `json:"features"`
	Language string   `json:"language"` // "ja" or "en"
}

// GenerationResult exposes the five composed listing fields.
type GenerationResult struct {
	RequestID            string        `json:"request_id"`
	KeywordField         string        `json:"keyword_field"` // <= 100 chars
	Title                string        `json:"title"`         // <= 30 chars
	Subtitle             string        `json:"subtitle"`      // <= 30 chars
	Description          string        `json:"description"`   // <= 4000 chars
	WhatsNew             string        `json:"whats_new"`     // <= 4000 chars
	Language             string        `json:"language"`
	LowConfidencePrimary bool          `json:"low_confidence_primary"`
	ProcessingTime       time.Duration `json:"processing_time"`
	GeneratedAt          time.Time     `json:"generated_at"`
}
