// Package ingest reads delimited text, JSON lines and SQLite query results
// into engine tables. Every field goes through types.ParseValue, so numbers
// become Integer or Decimal values and everything else stays Text.
package ingest

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/facets/internal/engine"
	"github.com/mesh-intelligence/facets/pkg/types"
)

// Ingestion errors.
var (
	ErrNoHeader      = errors.New("input has no header")
	ErrShortRow      = errors.New("row has fewer fields than the header")
	ErrLongRow       = errors.New("row has more fields than the header")
	ErrUnknownFormat = errors.New("unknown input format")
)

// RowError reports a row that could not be ingested.
type RowError struct {
	Source string
	Line   int
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Options control how delimited input is read.
type Options struct {
	Delimiter rune
	Arity     types.ArityPolicy
}

// DefaultOptions returns comma-delimited, strict arity options.
func DefaultOptions() Options {
	return Options{Delimiter: ',', Arity: types.DefaultArity}
}

// OptionsFromConfig builds Options from a validated Config.
func OptionsFromConfig(cfg types.Config) Options {
	return Options{Delimiter: cfg.DelimiterRune(), Arity: types.ArityPolicy(cfg.Arity)}
}

// fitArity applies the arity policy to one row. It returns the row resized
// to width, or an error for rows the policy rejects.
func fitArity(fields []string, width int, policy types.ArityPolicy) ([]string, error) {
	switch {
	case len(fields) == width:
		return fields, nil
	case len(fields) > width:
		if policy == types.ArityStrict || policy == "" {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrLongRow, len(fields), width)
		}
		return fields[:width], nil
	default:
		if policy != types.ArityPad {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrShortRow, len(fields), width)
		}
		padded := make([]string, width)
		copy(padded, fields)
		return padded, nil
	}
}

// buildTable creates a table from a header and raw rows.
func buildTable(name string, header []string, rows [][]string) (*engine.Table, error) {
	t, err := engine.NewTable(name, header)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := t.Insert(types.ParseRecord(r)); err != nil {
			return nil, err
		}
	}
	return t, nil
}
