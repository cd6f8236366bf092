// Package table provides tab-separated table loading and a small in-memory
// frame type for sample-indexed data.
package table

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"strings"
)

// maxLineSize bounds a single row; copy-number tables carry one column per
// sample and can be very wide.
const maxLineSize = 64 * 1024 * 1024

// ParseError reports a malformed table.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tsv parse error at line %d: %s", e.Line, e.Message)
}

// Read parses a tab-separated table whose first non-blank line is the header.
// Gzipped input is detected by its magic bytes. Rows shorter than the header
// are padded with missing cells.
func Read(r io.Reader) (*Frame, error) {
	br := bufio.NewReader(r)

	// Check for gzip magic number (0x1f, 0x8b)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		return readLines(gz)
	}
	return readLines(br)
}

func readLines(r io.Reader) (*Frame, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	f := &Frame{}
	lineNumber := 0
	haveHeader := false

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if !haveHeader {
			f.Columns = fields
			haveHeader = true
			continue
		}

		if len(fields) > len(f.Columns) {
			return nil, &ParseError{
				Line:    lineNumber,
				Message: fmt.Sprintf("row has %d fields, header has %d", len(fields), len(f.Columns)),
			}
		}
		for len(fields) < len(f.Columns) {
			fields = append(fields, "")
		}
		f.Rows = append(f.Rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}

	if !haveHeader {
		return nil, &ParseError{Line: lineNumber, Message: "no header line found"}
	}
	return f, nil
}
