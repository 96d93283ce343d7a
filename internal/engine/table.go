// Package engine implements the in-memory faceted query engine: tables with
// an inverted index, per-table selection contexts, and models that propagate
// a selection across tables sharing column names.
//
// Tables and models are append-only. A context reads its owner without
// locking, so the owner must not be mutated while any context opened on it
// is still in use.
package engine

import (
	"fmt"
	"math"

	roaring "github.com/RoaringBitmap/roaring"

	"github.com/mesh-intelligence/facets/pkg/types"
)

// Table is an append-only list of records aligned to an ordered column list,
// plus an inverted index from (column, canonical value) to the row ids that
// hold it.
type Table struct {
	name    string
	columns []string
	records []types.Record

	// index[i] maps the canonical string of a value in columns[i] to the
	// rows holding it.
	index []map[string]*roaring.Bitmap
}

// NewTable creates an empty table. Column names must be non-empty and
// unique within the table.
func NewTable(name string, columns []string) (*Table, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if c == "" {
			return nil, fmt.Errorf("table %q: %w", name, types.ErrEmptyColumn)
		}
		if _, ok := seen[c]; ok {
			return nil, fmt.Errorf("table %q: %w: %q", name, types.ErrDuplicateColumn, c)
		}
		seen[c] = struct{}{}
	}

	index := make([]map[string]*roaring.Bitmap, len(columns))
	for i := range index {
		index[i] = make(map[string]*roaring.Bitmap)
	}
	return &Table{
		name:    name,
		columns: append([]string(nil), columns...),
		index:   index,
	}, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Columns returns a copy of the column list.
func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// ColumnIndex returns the position of column, or false if the table does not
// declare it.
func (t *Table) ColumnIndex(column string) (int, bool) {
	for i, c := range t.columns {
		if c == column {
			return i, true
		}
	}
	return -1, false
}

// HasColumn reports whether the table declares column.
func (t *Table) HasColumn(column string) bool {
	_, ok := t.ColumnIndex(column)
	return ok
}

// Insert appends record and indexes each of its fields. The record must
// have exactly one value per column; it is stored as given and must not be
// modified afterwards.
func (t *Table) Insert(record types.Record) error {
	if len(record) != len(t.columns) {
		return fmt.Errorf("table %q: %w: got %d values for %d columns",
			t.name, types.ErrArityMismatch, len(record), len(t.columns))
	}
	if uint64(len(t.records)) > math.MaxUint32 {
		return fmt.Errorf("table %q: %w", t.name, types.ErrTableFull)
	}

	id := uint32(len(t.records))
	t.records = append(t.records, record)
	for i, v := range record {
		key := v.String()
		bm, ok := t.index[i][key]
		if !ok {
			bm = roaring.New()
			t.index[i][key] = bm
		}
		bm.Add(id)
	}
	return nil
}

// Record returns the record with the given row id.
func (t *Table) Record(id uint32) (types.Record, bool) {
	if uint64(id) >= uint64(len(t.records)) {
		return nil, false
	}
	return t.records[id], true
}

// Records returns the records for ids in ascending row id order.
func (t *Table) Records(ids *roaring.Bitmap) []types.Record {
	out := make([]types.Record, 0, ids.GetCardinality())
	it := ids.Iterator()
	for it.HasNext() {
		out = append(out, t.records[it.Next()])
	}
	return out
}

// PossibleRows returns the rows that satisfy every constraint. A row
// satisfies a constraint when its value in that column renders to any of
// the candidates. With no constraints every row matches. A constraint on a
// column the table does not declare matches nothing.
//
// The result is a fresh bitmap owned by the caller.
func (t *Table) PossibleRows(constraints []types.Constraint) *roaring.Bitmap {
	if len(constraints) == 0 {
		all := roaring.New()
		all.AddRange(0, uint64(len(t.records)))
		return all
	}

	var result *roaring.Bitmap
	for _, c := range constraints {
		matched := t.bucketUnion(c)
		if result == nil {
			result = matched
		} else {
			result.And(matched)
		}
		if result.IsEmpty() {
			break
		}
	}
	return result
}

// bucketUnion ORs the index buckets of every candidate in c.
func (t *Table) bucketUnion(c types.Constraint) *roaring.Bitmap {
	out := roaring.New()
	i, ok := t.ColumnIndex(c.Column)
	if !ok {
		return out
	}
	for _, v := range c.Values {
		if bm, ok := t.index[i][v]; ok {
			out.Or(bm)
		}
	}
	return out
}

// Values returns the distinct values of column across all records, sorted by
// the value order.
func (t *Table) Values(column string) ([]types.Value, bool) {
	i, ok := t.ColumnIndex(column)
	if !ok {
		return nil, false
	}
	return columnValues(t.records, i), true
}

// NewContext opens a DataContext on t.
func (t *Table) NewContext() *DataContext { return NewDataContext(t) }

func columnValues(records []types.Record, i int) []types.Value {
	vals := make([]types.Value, len(records))
	for r, rec := range records {
		vals[r] = rec[i]
	}
	return types.DistinctValues(vals)
}
