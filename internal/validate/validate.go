// Package validate checks structural and value-range integrity of parsed
// keyword tables before scoring.
package validate

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"asogen/internal/core"
)

const (
	// MinRows and MaxRows bound the accepted table size.
	MinRows = 1
	MaxRows = 1000

	maxKeywordLength = 100
)

// requiredColumns is the canonical (lowercase) header set.
var requiredColumns = []string{"keyword", "ranking", "popularity", "difficulty"}

// connectColumns maps App Store Connect export headers onto the canonical
// names.
var connectColumns = map[string]string{
	"Keyword":    "keyword",
	"Ranking":    "ranking",
	"Popularity": "popularity",
	"Difficulty": "difficulty",
}

// Validator checks raw keyword tables. It is stateless and safe for
// concurrent use.
type Validator struct{}

// New returns a table validator.
func New() *Validator { return &Validator{} }

// Validate converts a raw table into validated KeywordRecords. It stops at
// the first violation and reports it with its row and column; it does not
// collect all violations. Checks run in order: required columns, table
// bounds, keyword shape, ranking range, popularity/difficulty range,
// case-insensitive duplicates. Pure function, no side effects.
func (v *Validator) Validate(table core.RawTable) ([]core.KeywordRecord, error) {
	index, err := columnIndex(table.Columns)
	if err != nil {
		return nil, err
	}

	if len(table.Rows) < MinRows {
		return nil, &core.ValidationError{Message: "table has no data rows"}
	}
	if len(table.Rows) > MaxRows {
		return nil, &core.ValidationError{
			Message: fmt.Sprintf("table has %d rows, maximum is %d", len(table.Rows), MaxRows),
		}
	}

	records := make([]core.KeywordRecord, 0, len(table.Rows))
	seen := make(map[string]int, len(table.Rows)) // normalized keyword -> first row

	for i, row := range table.Rows {
		rowNum := i + 1
		if len(row) != len(table.Columns) {
			return nil, &core.ValidationError{
				Row:     rowNum,
				Message: fmt.Sprintf("expected %d cells, got %d", len(table.Columns), len(row)),
			}
		}

		keyword := strings.TrimSpace(row[index["keyword"]])
		if keyword == "" {
			return nil, &core.ValidationError{Row: rowNum, Column: "keyword", Message: "keyword is empty"}
		}
		if utf8.RuneCountInString(keyword) > maxKeywordLength {
			return nil, &core.ValidationError{
				Row: rowNum, Column: "keyword",
				Message: fmt.Sprintf("keyword exceeds %d characters", maxKeywordLength),
			}
		}

		ranking, err := strconv.Atoi(strings.TrimSpace(row[index["ranking"]]))
		if err != nil {
			return nil, &core.ValidationError{Row: rowNum, Column: "ranking", Message: "not an integer"}
		}
		if ranking < 1 || ranking > 1000 {
			return nil, &core.ValidationError{
				Row: rowNum, Column: "ranking",
				Message: fmt.Sprintf("must be in [1,1000], got %d", ranking),
			}
		}

		popularity, err := parseRange(row[index["popularity"]])
		if err != nil {
			return nil, &core.ValidationError{Row: rowNum, Column: "popularity", Message: err.Error()}
		}
		difficulty, err := parseRange(row[index["difficulty"]])
		if err != nil {
			return nil, &core.ValidationError{Row: rowNum, Column: "difficulty", Message: err.Error()}
		}

		normalized := strings.ToLower(keyword)
		if first, dup := seen[normalized]; dup {
			return nil, &core.ValidationError{
				Row: rowNum, Column: "keyword",
				Message: fmt.Sprintf("duplicate of row %d: %q", first, keyword),
			}
		}
		seen[normalized] = rowNum

		records = append(records, core.KeywordRecord{
			Keyword:    keyword,
			Ranking:    ranking,
			Popularity: popularity,
			Difficulty: difficulty,
		})
	}

	return records, nil
}

// columnIndex resolves header positions, accepting either the canonical
// lowercase form or the App Store Connect export form.
func columnIndex(columns []string) (map[string]int, error) {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		name := strings.TrimSpace(col)
		if canonical, ok := connectColumns[name]; ok {
			name = canonical
		} else {
			name = strings.ToLower(name)
		}
		if _, exists := index[name]; !exists {
			index[name] = i
		}
	}

	var missing []string
	for _, required := range requiredColumns {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &core.ValidationError{
			Message: "missing required columns: " + strings.Join(missing, ", "),
		}
	}
	return index, nil
}

// parseRange parses a float that must fall in [0,100].
func parseRange(cell string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if value < 0 || value > 100 {
		return 0, fmt.Errorf("must be in [0,100], got %g", value)
	}
	return value, nil
}
