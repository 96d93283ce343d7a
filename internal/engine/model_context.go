package engine

import (
	"github.com/mesh-intelligence/facets/pkg/types"
)

// ModelContext holds a selection over a Model and answers which values of a
// column are still reachable under it. Nothing is cached; every query
// recomputes from the model.
type ModelContext struct {
	model     *Model
	selection types.Selection
}

// Model returns the model the context reads.
func (mc *ModelContext) Model() *Model { return mc.model }

// Select merges constraint into the selection.
func (mc *ModelContext) Select(constraint types.Constraint) {
	mc.selection.Select(constraint)
}

// Deselect removes constraint's candidates from the selection, value by
// value, the same way DataContext.Deselect does.
func (mc *ModelContext) Deselect(constraint types.Constraint) {
	mc.selection.Deselect(constraint)
}

// Selection returns a copy of the active constraints.
func (mc *ModelContext) Selection() []types.Constraint { return mc.selection.Constraints() }

// Selected returns the candidates selected on column, or nil.
func (mc *ModelContext) Selected(column string) []string {
	c, ok := mc.selection.Lookup(column)
	if !ok {
		return nil
	}
	return c.Values
}

// GetPossible returns the distinct values of column still reachable under
// the selection, sorted by the value order.
//
// Propagation takes two hops. First every table declaring a selected column
// is matched against the selection constraints on its own columns, and each
// matched row contributes its values, column by column, to a virtual
// selection seeded with the real one. A visited table that matches nothing
// pins all of its columns to no candidates, so a selection that reaches no
// row empties every column of that table in the second hop instead of
// leaving those columns unconstrained. Then every table declaring
// column is matched against the virtual selection constraints on its own
// columns and the values of column are collected.
func (mc *ModelContext) GetPossible(column string) []types.Value {
	virtual := mc.propagate()

	var vals []types.Value
	for _, t := range mc.model.TablesWith(column) {
		i, _ := t.ColumnIndex(column)
		rows := t.PossibleRows(virtual.restrict(t))
		for _, rec := range t.Records(rows) {
			vals = append(vals, rec[i])
		}
	}
	return types.DistinctValues(vals)
}

// GetExcluded returns the values of column that exist in the model but are
// not reachable under the selection, sorted by the value order.
func (mc *ModelContext) GetExcluded(column string) []types.Value {
	possible := make(map[types.Value]struct{})
	for _, v := range mc.GetPossible(column) {
		possible[v] = struct{}{}
	}
	var out []types.Value
	for _, v := range mc.model.AllValues(column) {
		if _, ok := possible[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}

// propagate builds the virtual selection for the first hop.
func (mc *ModelContext) propagate() *virtualSelection {
	selected := mc.selection.Constraints()
	vs := newVirtualSelection(selected)

	visited := make(map[*Table]bool)
	for _, c := range selected {
		for _, t := range mc.model.TablesWith(c.Column) {
			if visited[t] {
				continue
			}
			visited[t] = true

			rows := t.PossibleRows(mc.selection.Restrict(t.HasColumn))
			if rows.IsEmpty() {
				for _, col := range t.columns {
					vs.pin(col)
				}
				continue
			}
			it := rows.Iterator()
			for it.HasNext() {
				rec := t.records[it.Next()]
				for i, col := range t.columns {
					vs.add(col, rec[i].String())
				}
			}
		}
	}
	return vs
}

// virtualSelection is a per-column candidate set. A column present with no
// candidates matches no row.
type virtualSelection struct {
	order  []string
	values map[string]map[string]struct{}
}

func newVirtualSelection(seed []types.Constraint) *virtualSelection {
	vs := &virtualSelection{values: make(map[string]map[string]struct{})}
	for _, c := range seed {
		for _, v := range c.Values {
			vs.add(c.Column, v)
		}
	}
	return vs
}

func (vs *virtualSelection) pin(column string) {
	if _, ok := vs.values[column]; !ok {
		vs.values[column] = make(map[string]struct{})
		vs.order = append(vs.order, column)
	}
}

func (vs *virtualSelection) add(column, value string) {
	vs.pin(column)
	vs.values[column][value] = struct{}{}
}

// restrict returns the constraints on columns t declares.
func (vs *virtualSelection) restrict(t *Table) []types.Constraint {
	var out []types.Constraint
	for _, col := range vs.order {
		if !t.HasColumn(col) {
			continue
		}
		set := vs.values[col]
		vals := make([]string, 0, len(set))
		for v := range set {
			vals = append(vals, v)
		}
		out = append(out, types.Constraint{Column: col, Values: vals})
	}
	return out
}
