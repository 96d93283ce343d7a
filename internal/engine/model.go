package engine

import (
	"fmt"

	"github.com/armon/go-radix"

	"github.com/mesh-intelligence/facets/pkg/types"
)

// Model is an append-only collection of tables with a reverse index from
// column name to the tables declaring it. Tables that share a column name
// are linked through it during facet propagation.
type Model struct {
	tables []*Table
	byName map[string]int

	// columns maps a column name to the []int positions (in tables) of the
	// tables that declare it, in registration order.
	columns *radix.Tree
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		byName:  make(map[string]int),
		columns: radix.New(),
	}
}

// AddTable registers t and indexes its columns. Table names must be unique
// within the model.
func (m *Model) AddTable(t *Table) error {
	if t == nil {
		return types.ErrNilTable
	}
	if _, ok := m.byName[t.name]; ok {
		return fmt.Errorf("%w: %q", types.ErrDuplicateTable, t.name)
	}

	pos := len(m.tables)
	m.tables = append(m.tables, t)
	m.byName[t.name] = pos
	for _, c := range t.columns {
		var owners []int
		if v, ok := m.columns.Get(c); ok {
			owners = v.([]int)
		}
		m.columns.Insert(c, append(owners, pos))
	}
	return nil
}

// Table returns the table registered under name.
func (m *Model) Table(name string) (*Table, bool) {
	i, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return m.tables[i], true
}

// Tables returns the registered tables in registration order.
func (m *Model) Tables() []*Table { return append([]*Table(nil), m.tables...) }

// Columns returns every column name declared by any table, sorted.
func (m *Model) Columns() []string {
	out := make([]string, 0, m.columns.Len())
	m.columns.Walk(func(key string, _ interface{}) bool {
		out = append(out, key)
		return false
	})
	return out
}

// TablesWith returns the tables declaring column, in registration order.
func (m *Model) TablesWith(column string) []*Table {
	owners := m.owners(column)
	out := make([]*Table, len(owners))
	for i, pos := range owners {
		out[i] = m.tables[pos]
	}
	return out
}

func (m *Model) owners(column string) []int {
	v, ok := m.columns.Get(column)
	if !ok {
		return nil
	}
	return v.([]int)
}

// AllValues returns the distinct values of column across every table that
// declares it, sorted by the value order. An unknown column yields an empty
// slice.
func (m *Model) AllValues(column string) []types.Value {
	var vals []types.Value
	for _, t := range m.TablesWith(column) {
		v, _ := t.Values(column)
		vals = append(vals, v...)
	}
	return types.DistinctValues(vals)
}

// NewContext opens a ModelContext with an empty selection.
func (m *Model) NewContext() *ModelContext { return &ModelContext{model: m} }
