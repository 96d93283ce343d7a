// Package engine provides the public API for the facets query engine.
// It re-exports the engine types and constructors while keeping the
// implementation internal.
package engine

import (
	"github.com/mesh-intelligence/facets/internal/engine"
)

// Engine types. See the internal engine package for their contracts.
type (
	Table        = engine.Table
	DataContext  = engine.DataContext
	Model        = engine.Model
	ModelContext = engine.ModelContext
	Observer     = engine.Observer
	ObserverFunc = engine.ObserverFunc
)

// NewTable creates an empty table with the given columns. Column names must
// be non-empty and unique.
//
// Example:
//
//	t, err := engine.NewTable("sales", []string{"name", "item", "price"})
//	if err != nil {
//	    return err
//	}
//	err = t.Insert(types.ParseRecord([]string{"ni", "phone", "10"}))
func NewTable(name string, columns []string) (*Table, error) {
	return engine.NewTable(name, columns)
}

// NewDataContext opens a selection context over t.
//
// Example:
//
//	ctx := engine.NewDataContext(t)
//	ctx.Select(types.NewConstraint("item", "phone", "keys"))
//	total, _ := ctx.Sum("price")
func NewDataContext(t *Table) *DataContext {
	return engine.NewDataContext(t)
}

// NewModel returns an empty model. Register tables with AddTable, then open
// a ModelContext with NewContext.
func NewModel() *Model {
	return engine.NewModel()
}
