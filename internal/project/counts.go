package project

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/inodb/sigdata/internal/table"
)

// CountMatrix is the union of a project's per-type mutation count tables:
// rows are normalized sample ids in sorted order, columns are mutation
// categories, and every row has at least one nonzero count.
type CountMatrix struct {
	Samples    []string
	Categories []string
	Values     [][]float64
}

// Burden is the total mutation count of one sample.
type Burden struct {
	Sample string  `json:"sample"`
	Count  float64 `json:"count"`
}

// Totals returns the per-sample sum across all categories.
func (m *CountMatrix) Totals() []Burden {
	out := make([]Burden, len(m.Samples))
	for i, s := range m.Samples {
		var sum float64
		for _, v := range m.Values[i] {
			sum += v
		}
		out[i] = Burden{Sample: s, Count: sum}
	}
	return out
}

// countTable is one parsed per-type count table.
type countTable struct {
	mt         MutationType
	key        string
	categories []string
	rows       map[string][]float64
}

// parseCounts converts a sample-keyed count frame into numeric rows.
func parseCounts(f *table.Frame) (map[string][]float64, error) {
	rows := make(map[string][]float64, f.Len())
	for r, sample := range f.Keys {
		if _, dup := rows[sample]; dup {
			return nil, fmt.Errorf("duplicate sample %q", sample)
		}
		vals := make([]float64, len(f.Columns))
		for c, cell := range f.Rows[r] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("sample %q category %q: invalid count %q", sample, f.Columns[c], cell)
			}
			vals[c] = v
		}
		rows[sample] = vals
	}
	return rows, nil
}

// mergeCounts outer-joins count tables on sample id, fills absent cells
// with zero and drops samples that are zero in every category.
func mergeCounts(tables []countTable) (*CountMatrix, error) {
	m := &CountMatrix{}
	offsets := make([]int, len(tables))
	seenCategory := make(map[string]MutationType)
	seenSample := make(map[string]bool)

	for i, t := range tables {
		offsets[i] = len(m.Categories)
		for _, c := range t.categories {
			if prev, dup := seenCategory[c]; dup {
				return nil, fmt.Errorf("category %q appears in both %s and %s counts", c, prev, t.mt)
			}
			seenCategory[c] = t.mt
		}
		m.Categories = append(m.Categories, t.categories...)
		for s := range t.rows {
			seenSample[s] = true
		}
	}

	samples := make([]string, 0, len(seenSample))
	for s := range seenSample {
		samples = append(samples, s)
	}
	slices.Sort(samples)

	for _, s := range samples {
		row := make([]float64, len(m.Categories))
		nonzero := false
		for i, t := range tables {
			vals, ok := t.rows[s]
			if !ok {
				continue
			}
			copy(row[offsets[i]:], vals)
			for _, v := range vals {
				if v != 0 {
					nonzero = true
				}
			}
		}
		if !nonzero {
			continue
		}
		m.Samples = append(m.Samples, s)
		m.Values = append(m.Values, row)
	}

	return m, nil
}
