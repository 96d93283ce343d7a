package engine

import (
	roaring "github.com/RoaringBitmap/roaring"

	"github.com/mesh-intelligence/facets/pkg/types"
)

// Observer is notified after every selection change on a DataContext.
// OnChange may read the context but must not call Select or Deselect on it.
type Observer interface {
	OnChange(ctx *DataContext)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx *DataContext)

// OnChange calls f(ctx).
func (f ObserverFunc) OnChange(ctx *DataContext) { f(ctx) }

// DataContext is a live selection over one Table. Each Select or Deselect
// recomputes the matching rows from scratch and then notifies observers
// synchronously, in registration order.
type DataContext struct {
	table     *Table
	selection types.Selection
	rows      *roaring.Bitmap
	records   []types.Record
	observers []Observer
	notifying bool
}

// NewDataContext opens a context on t with an empty selection, so every row
// matches. No observer exists yet, so nothing is notified.
func NewDataContext(t *Table) *DataContext {
	ctx := &DataContext{table: t}
	ctx.recompute()
	return ctx
}

// Table returns the table the context reads.
func (c *DataContext) Table() *Table { return c.table }

// Select merges constraint into the selection, recomputes the match set and
// notifies observers.
func (c *DataContext) Select(constraint types.Constraint) {
	c.guard("Select")
	c.selection.Select(constraint)
	c.update()
}

// Deselect removes constraint's candidates from the selection, recomputes
// the match set and notifies observers. Removal is per value: with
// country=swe,cn selected, deselecting country=cn leaves country=swe, and
// the column's constraint is dropped only once no candidate remains.
// Removing something that is not selected leaves the selection unchanged.
func (c *DataContext) Deselect(constraint types.Constraint) {
	c.guard("Deselect")
	c.selection.Deselect(constraint)
	c.update()
}

// Observe registers o for every future change. It is not called for the
// current state.
func (c *DataContext) Observe(o Observer) {
	c.observers = append(c.observers, o)
}

func (c *DataContext) guard(op string) {
	if c.notifying {
		panic("engine: DataContext." + op + " called from an observer of the same context")
	}
}

func (c *DataContext) update() {
	c.recompute()
	c.notifying = true
	defer func() { c.notifying = false }()
	for _, o := range c.observers {
		o.OnChange(c)
	}
}

func (c *DataContext) recompute() {
	c.rows = c.table.PossibleRows(c.selection.Constraints())
	c.records = c.table.Records(c.rows)
}

// Selection returns a copy of the active constraints.
func (c *DataContext) Selection() []types.Constraint { return c.selection.Constraints() }

// Records returns the matching records in ascending row id order. The slice
// is shared with the context and is replaced on the next change.
func (c *DataContext) Records() []types.Record { return c.records }

// RowIDs returns the matching row ids in ascending order.
func (c *DataContext) RowIDs() []uint32 { return c.rows.ToArray() }

// ColumnIndex returns the position of column in the underlying table.
func (c *DataContext) ColumnIndex(column string) (int, bool) {
	return c.table.ColumnIndex(column)
}

// Count returns the number of matching records.
func (c *DataContext) Count() int { return len(c.records) }

// Values returns the distinct values of column among the matching records.
func (c *DataContext) Values(column string) ([]types.Value, bool) {
	i, ok := c.table.ColumnIndex(column)
	if !ok {
		return nil, false
	}
	return columnValues(c.records, i), true
}

// Sum adds the numeric values of column over the matching records. Text
// cells are skipped. With no numeric cells the sum is Integer(0). It
// reports false when the column does not exist or when the running total
// leaves the int64 range (see types.ErrOverflow).
func (c *DataContext) Sum(column string) (types.Value, bool) {
	i, ok := c.table.ColumnIndex(column)
	if !ok {
		return types.Value{}, false
	}
	sum := types.Integer(0)
	for _, rec := range c.records {
		v := rec[i]
		if !v.IsNumeric() {
			continue
		}
		next, err := types.Add(sum, v)
		if err != nil {
			return types.Value{}, false
		}
		sum = next
	}
	return sum, true
}

// Max returns the largest numeric value of column over the matching records.
// It reports false when the column does not exist or holds no numeric cell
// in the match set.
func (c *DataContext) Max(column string) (types.Value, bool) {
	return c.extreme(column, func(cmp int) bool { return cmp >= 0 })
}

// Min returns the smallest numeric value of column over the matching
// records, with the same reporting rules as Max.
func (c *DataContext) Min(column string) (types.Value, bool) {
	return c.extreme(column, func(cmp int) bool { return cmp < 0 })
}

func (c *DataContext) extreme(column string, better func(cmp int) bool) (types.Value, bool) {
	i, ok := c.table.ColumnIndex(column)
	if !ok {
		return types.Value{}, false
	}
	var best types.Value
	found := false
	for _, rec := range c.records {
		v := rec[i]
		if !v.IsNumeric() {
			continue
		}
		if !found || better(types.Compare(v, best)) {
			best, found = v, true
		}
	}
	return best, found
}
