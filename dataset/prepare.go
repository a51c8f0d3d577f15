package dataset

import (
	"fmt"

	"github.com/ginilab/go-desforecaster/stats"
)

// Outlier fence settings used by the preparation report
const (
	OutlierLowerPercentile = 0.1
	OutlierUpperPercentile = 0.9
	OutlierTukeyFactor     = 1.0
)

// Preparation describes the cleaning of a raw table: its shape, missing values before and
// after interpolation, the cleaned table, the selected analysis columns and their statistics.
type Preparation struct {
	Rows          int                      `json:"rows"`
	Columns       int                      `json:"columns"`
	MissingTotal  int                      `json:"missing_total"`
	MissingBefore map[string]int           `json:"missing_before"`
	MissingAfter  map[string]int           `json:"missing_after"`
	Raw           *Table                   `json:"raw"`
	Clean         *Table                   `json:"clean"`
	Filtered      *Table                   `json:"filtered"`
	Summary       map[string]stats.Summary `json:"summary"`
	Outliers      map[string][]int         `json:"outliers"`
}

// Prepare cleans raw and selects the analysis columns. An empty selection keeps every numeric
// column. Outlier indices refer to rows of the filtered table.
func Prepare(raw *Table, selected []string) (*Preparation, error) {
	if raw == nil {
		return nil, fmt.Errorf("no table to prepare, %w", ErrEmptySheet)
	}

	clean := Clean(raw)
	if len(selected) == 0 {
		selected = clean.Columns
	}
	filtered, err := clean.Select(selected...)
	if err != nil {
		return nil, fmt.Errorf("unable to select analysis columns, %w", err)
	}

	p := &Preparation{
		Rows:          raw.Len(),
		Columns:       raw.Width(),
		MissingTotal:  raw.MissingTotal(),
		MissingBefore: raw.MissingCounts(),
		MissingAfter:  clean.MissingCounts(),
		Raw:           raw.Clone(),
		Clean:         clean,
		Filtered:      filtered,
		Summary:       make(map[string]stats.Summary, len(filtered.Columns)),
		Outliers:      make(map[string][]int, len(filtered.Columns)),
	}
	for _, name := range filtered.Columns {
		col, err := filtered.Column(name)
		if err != nil {
			return nil, err
		}
		p.Summary[name] = stats.Describe(col)
		if idxs := stats.DetectOutliers(col, OutlierLowerPercentile, OutlierUpperPercentile, OutlierTukeyFactor); len(idxs) > 0 {
			p.Outliers[name] = idxs
		}
	}
	return p, nil
}
