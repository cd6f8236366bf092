package project

import (
	"fmt"
	"io"
	"strconv"

	"github.com/inodb/sigdata/internal/table"
)

// Aggregates maps project id to a precomputed sample count.
type Aggregates map[string]int

// ParseAggregates reads the per-project aggregate table: the first column is
// the project id and the count column holds the number of samples.
func ParseAggregates(r io.Reader) (Aggregates, error) {
	f, err := table.Read(r)
	if err != nil {
		return nil, fmt.Errorf("read sample aggregates: %w", err)
	}
	ci := f.ColumnIndex(ColCount)
	if ci < 0 {
		return nil, &table.ParseError{Line: 1, Message: fmt.Sprintf("required column '%s' not found in header", ColCount)}
	}

	agg := make(Aggregates, f.Len())
	for i, row := range f.Rows {
		if table.IsMissing(row[ci]) {
			continue
		}
		v, err := strconv.ParseFloat(row[ci], 64)
		if err != nil {
			return nil, &table.ParseError{Line: i + 2, Message: fmt.Sprintf("invalid count %q", row[ci])}
		}
		agg[row[0]] = int(v)
	}
	return agg, nil
}

// Count returns the sample count for a project, and false if the project is
// not in the table.
func (a Aggregates) Count(projectID string) (int, bool) {
	n, ok := a[projectID]
	return n, ok
}
