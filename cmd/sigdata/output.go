package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/sigdata/internal/project"
	"github.com/inodb/sigdata/internal/table"
)

const (
	formatJSON = "json"
	formatTSV  = "tsv"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeFrame writes a table as JSON records or as tab-separated text with
// the index field first.
func writeFrame(w io.Writer, f *table.Frame, format string) error {
	switch format {
	case formatJSON:
		return writeJSON(w, f.Records())
	case formatTSV:
		bw := bufio.NewWriter(w)
		header := f.Columns
		if f.Keyed() {
			header = append([]string{f.Index}, f.Columns...)
		}
		fmt.Fprintln(bw, strings.Join(header, "\t"))
		for r, row := range f.Rows {
			if f.Keyed() {
				bw.WriteString(f.Keys[r])
				if len(row) > 0 {
					bw.WriteByte('\t')
				}
			}
			fmt.Fprintln(bw, strings.Join(row, "\t"))
		}
		return bw.Flush()
	}
	return fmt.Errorf("unknown output format %q (want %s or %s)", format, formatJSON, formatTSV)
}

// matrixFrame converts a merged count matrix into a sample-indexed table.
func matrixFrame(m *project.CountMatrix) *table.Frame {
	f := &table.Frame{
		Index:   project.ColSample,
		Keys:    m.Samples,
		Columns: m.Categories,
		Rows:    make([][]string, len(m.Samples)),
	}
	for i, vals := range m.Values {
		row := make([]string, len(vals))
		for c, v := range vals {
			row[c] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		f.Rows[i] = row
	}
	return f
}
