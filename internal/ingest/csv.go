package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mesh-intelligence/facets/internal/engine"
)

// ReadRecords reads a header line and the rows after it from delimited
// text. Trailing whitespace is trimmed from every field and blank lines are
// skipped. Rows are fitted to the header width by opts.Arity; a rejected
// row is returned as a *RowError naming its line.
func ReadRecords(source string, r io.Reader, opts Options) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%s: %w", source, ErrNoHeader)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", source, err)
	}
	trimFields(header)

	var rows [][]string
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", source, err)
		}
		line, _ := cr.FieldPos(0)
		trimFields(fields)
		fitted, err := fitArity(fields, len(header), opts.Arity)
		if err != nil {
			return nil, nil, &RowError{Source: source, Line: line, Err: err}
		}
		rows = append(rows, fitted)
	}
	return header, rows, nil
}

// ReadCSV reads delimited text into a table named name.
func ReadCSV(name string, r io.Reader, opts Options) (*engine.Table, error) {
	header, rows, err := ReadRecords(name, r, opts)
	if err != nil {
		return nil, err
	}
	return buildTable(name, header, rows)
}

func trimFields(fields []string) {
	for i, f := range fields {
		fields[i] = strings.TrimRight(f, " \t\r\n")
	}
}
