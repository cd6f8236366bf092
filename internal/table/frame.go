package table

import (
	"fmt"
	"slices"
)

// Missing is the sentinel written in place of absent values in joined output.
const Missing = "nan"

// missingTokens are the cell values treated as absent when reading, matching
// the defaults of the pandas reader the upstream files are produced for.
var missingTokens = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// IsMissing reports whether a cell value denotes an absent value.
func IsMissing(v string) bool {
	return missingTokens[v]
}

// Frame is a rectangular table of string cells. When Index is set, Keys holds
// one row key per row and the index field is not part of Columns.
type Frame struct {
	Index   string
	Keys    []string
	Columns []string
	Rows    [][]string
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Keyed reports whether the frame has a row index.
func (f *Frame) Keyed() bool {
	return f.Index != ""
}

// ColumnIndex returns the position of a column, or -1.
func (f *Frame) ColumnIndex(name string) int {
	return slices.Index(f.Columns, name)
}

// Column returns a copy of the named column's values.
func (f *Frame) Column(name string) ([]string, bool) {
	i := f.ColumnIndex(name)
	if i < 0 {
		return nil, false
	}
	out := make([]string, len(f.Rows))
	for r, row := range f.Rows {
		out[r] = row[i]
	}
	return out, true
}

// RenameColumn renames a column in place.
func (f *Frame) RenameColumn(from, to string) error {
	i := f.ColumnIndex(from)
	if i < 0 {
		return fmt.Errorf("column %q not found", from)
	}
	f.Columns[i] = to
	return nil
}

// MapColumn replaces every value of a column with fn(value).
func (f *Frame) MapColumn(name string, fn func(string) string) error {
	i := f.ColumnIndex(name)
	if i < 0 {
		return fmt.Errorf("column %q not found", name)
	}
	for _, row := range f.Rows {
		row[i] = fn(row[i])
	}
	return nil
}

// MapKeys replaces every row key with fn(key).
func (f *Frame) MapKeys(fn func(string) string) {
	for i, k := range f.Keys {
		f.Keys[i] = fn(k)
	}
}

// SetIndex moves the named column out of Columns and uses it as the row key.
func (f *Frame) SetIndex(name string) error {
	if f.Keyed() {
		return fmt.Errorf("frame already indexed by %q", f.Index)
	}
	i := f.ColumnIndex(name)
	if i < 0 {
		return fmt.Errorf("column %q not found", name)
	}

	f.Keys = make([]string, len(f.Rows))
	for r, row := range f.Rows {
		f.Keys[r] = row[i]
		f.Rows[r] = slices.Delete(row, i, i+1)
	}
	f.Columns = slices.Delete(f.Columns, i, i+1)
	f.Index = name
	return nil
}

// ResetIndex moves the row key back into the first column.
func (f *Frame) ResetIndex() {
	if !f.Keyed() {
		return
	}
	f.Columns = append([]string{f.Index}, f.Columns...)
	for r, row := range f.Rows {
		f.Rows[r] = append([]string{f.Keys[r]}, row...)
	}
	f.Index = ""
	f.Keys = nil
}

// Transpose swaps rows and columns of a keyed frame. The old column names
// become the row keys, indexed under indexName, and the old keys become
// the columns.
func (f *Frame) Transpose(indexName string) (*Frame, error) {
	if !f.Keyed() {
		return nil, fmt.Errorf("transpose requires an indexed frame")
	}

	out := &Frame{
		Index:   indexName,
		Keys:    slices.Clone(f.Columns),
		Columns: slices.Clone(f.Keys),
		Rows:    make([][]string, len(f.Columns)),
	}
	for c := range f.Columns {
		row := make([]string, len(f.Rows))
		for r := range f.Rows {
			row[r] = f.Rows[r][c]
		}
		out.Rows[c] = row
	}
	return out, nil
}

// DropMissingRows removes every row that has a missing value in any column.
func (f *Frame) DropMissingRows() {
	f.filter(func(i int) bool {
		return !slices.ContainsFunc(f.Rows[i], IsMissing)
	})
}

// FilterKeys keeps only the rows whose key satisfies keep.
func (f *Frame) FilterKeys(keep func(string) bool) {
	f.filter(func(i int) bool { return keep(f.Keys[i]) })
}

// FilterColumn keeps only the rows whose value in the named column satisfies keep.
func (f *Frame) FilterColumn(name string, keep func(string) bool) error {
	c := f.ColumnIndex(name)
	if c < 0 {
		return fmt.Errorf("column %q not found", name)
	}
	f.filter(func(i int) bool { return keep(f.Rows[i][c]) })
	return nil
}

func (f *Frame) filter(keep func(int) bool) {
	rows := f.Rows[:0]
	var keys []string
	if f.Keyed() {
		keys = f.Keys[:0]
	}
	for i := range f.Rows {
		if !keep(i) {
			continue
		}
		rows = append(rows, f.Rows[i])
		if f.Keyed() {
			keys = append(keys, f.Keys[i])
		}
	}
	f.Rows = rows
	if f.Keyed() {
		f.Keys = keys
	}
}

// FillMissing replaces every missing cell (and missing key) with v.
func (f *Frame) FillMissing(v string) {
	for _, row := range f.Rows {
		for c, cell := range row {
			if IsMissing(cell) {
				row[c] = v
			}
		}
	}
	for i, k := range f.Keys {
		if IsMissing(k) {
			f.Keys[i] = v
		}
	}
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		Index:   f.Index,
		Keys:    slices.Clone(f.Keys),
		Columns: slices.Clone(f.Columns),
		Rows:    make([][]string, len(f.Rows)),
	}
	for i, row := range f.Rows {
		out.Rows[i] = slices.Clone(row)
	}
	return out
}

// Records returns the rows as records, the index field first when set and
// then the columns in order.
func (f *Frame) Records() []Record {
	fields := f.Columns
	if f.Keyed() {
		fields = append([]string{f.Index}, f.Columns...)
	}
	out := make([]Record, len(f.Rows))
	for r, row := range f.Rows {
		values := row
		if f.Keyed() {
			values = append([]string{f.Keys[r]}, row...)
		}
		out[r] = Record{Fields: fields, Values: values}
	}
	return out
}
