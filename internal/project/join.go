package project

import (
	"fmt"
	"slices"

	"github.com/inodb/sigdata/internal/table"
)

// leftJoin merges right onto left by the shared column on. Every left row is
// kept, in order; it is repeated once per matching right row (in right
// order) or padded with missing cells when nothing matches. Other column
// names present on both sides get "_x" and "_y" suffixes. Missing key
// values never match.
func leftJoin(left, right *table.Frame, on string) (*table.Frame, error) {
	li := left.ColumnIndex(on)
	if li < 0 {
		return nil, fmt.Errorf("left table has no %q column", on)
	}
	ri := right.ColumnIndex(on)
	if ri < 0 {
		return nil, fmt.Errorf("right table has no %q column", on)
	}

	var rightCols []int
	for c := range right.Columns {
		if c != ri {
			rightCols = append(rightCols, c)
		}
	}

	out := &table.Frame{}
	for c, name := range left.Columns {
		if c != li && slices.Contains(right.Columns, name) {
			name += "_x"
		}
		out.Columns = append(out.Columns, name)
	}
	for _, c := range rightCols {
		name := right.Columns[c]
		if slices.Contains(left.Columns, name) {
			name += "_y"
		}
		out.Columns = append(out.Columns, name)
	}

	matches := make(map[string][]int)
	for r, row := range right.Rows {
		k := row[ri]
		if table.IsMissing(k) {
			continue
		}
		matches[k] = append(matches[k], r)
	}

	for _, lrow := range left.Rows {
		found := matches[lrow[li]]
		if table.IsMissing(lrow[li]) {
			found = nil
		}
		if len(found) == 0 {
			row := slices.Clone(lrow)
			for range rightCols {
				row = append(row, "")
			}
			out.Rows = append(out.Rows, row)
			continue
		}
		for _, r := range found {
			row := slices.Clone(lrow)
			for _, c := range rightCols {
				row = append(row, right.Rows[r][c])
			}
			out.Rows = append(out.Rows, row)
		}
	}

	return out, nil
}
