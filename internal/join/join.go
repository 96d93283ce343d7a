// Package join implements a two-table equality join over headered string
// tables. It does not use the engine's index: every pair of rows is
// compared.
package join

import (
	"errors"
	"fmt"
	"strings"
)

// Join errors. Every JoinError wraps one of these.
var (
	ErrNoSharedColumn = errors.New("tables share no column")
	ErrAmbiguousJoin  = errors.New("tables share more than one column")
	ErrRaggedRow      = errors.New("row shorter than header")
)

// JoinError reports why two tables could not be joined.
type JoinError struct {
	Shared []string // column names common to both headers
	Err    error
}

func (e *JoinError) Error() string {
	if len(e.Shared) == 0 {
		return "join: " + e.Err.Error()
	}
	return fmt.Sprintf("join: %v: %s", e.Err, strings.Join(e.Shared, ", "))
}

func (e *JoinError) Unwrap() error { return e.Err }

// Table is a header and rows of raw fields.
type Table struct {
	Header []string
	Rows   [][]string
}

// Tables joins left and right on the single column name their headers
// share. The result header is left's header followed by right's without the
// join column; rows come in left-major order, one per matching pair.
func Tables(left, right Table) (Table, error) {
	var shared []string
	for _, c := range right.Header {
		if indexOf(left.Header, c) >= 0 {
			shared = append(shared, c)
		}
	}
	switch len(shared) {
	case 0:
		return Table{}, &JoinError{Err: ErrNoSharedColumn}
	case 1:
	default:
		return Table{}, &JoinError{Shared: shared, Err: ErrAmbiguousJoin}
	}

	col := shared[0]
	li, ri := indexOf(left.Header, col), indexOf(right.Header, col)
	if err := checkRows(left, "left"); err != nil {
		return Table{}, err
	}
	if err := checkRows(right, "right"); err != nil {
		return Table{}, err
	}

	header := make([]string, 0, len(left.Header)+len(right.Header)-1)
	header = append(header, left.Header...)
	header = appendWithout(header, right.Header, ri)

	var rows [][]string
	for _, l := range left.Rows {
		for _, r := range right.Rows {
			if l[li] != r[ri] {
				continue
			}
			row := make([]string, 0, len(header))
			row = append(row, l[:len(left.Header)]...)
			row = appendWithout(row, r[:len(right.Header)], ri)
			rows = append(rows, row)
		}
	}
	return Table{Header: header, Rows: rows}, nil
}

func checkRows(t Table, side string) error {
	for i, r := range t.Rows {
		if len(r) < len(t.Header) {
			return &JoinError{Err: fmt.Errorf("%w: %s row %d has %d of %d fields",
				ErrRaggedRow, side, i+1, len(r), len(t.Header))}
		}
	}
	return nil
}

func appendWithout(dst, src []string, skip int) []string {
	for i, v := range src {
		if i != skip {
			dst = append(dst, v)
		}
	}
	return dst
}

func indexOf(vs []string, v string) int {
	for i, x := range vs {
		if x == v {
			return i
		}
	}
	return -1
}
