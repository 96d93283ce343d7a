package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/facets/pkg/types"
)

// newTestTable builds a table from a header row followed by data rows, each
// field parsed with types.ParseValue.
func newTestTable(t *testing.T, name string, rows [][]string) *Table {
	t.Helper()
	require.NotEmpty(t, rows, "need at least a header row")
	tbl, err := NewTable(name, rows[0])
	require.NoError(t, err)
	for _, r := range rows[1:] {
		require.NoError(t, tbl.Insert(types.ParseRecord(r)))
	}
	return tbl
}

// fixtureModel is the three table model used by the facet propagation
// scenarios: names to countries, names to items, items to prices.
func fixtureModel(t *testing.T) *Model {
	t.Helper()
	t1 := newTestTable(t, "t1", [][]string{
		{"name", "country"},
		{"ni", "swe"},
		{"ai", "swe"},
		{"ni", "swe"},
		{"qe", "cn"},
		{"usa", "usa"},
	})
	t2 := newTestTable(t, "t2", [][]string{
		{"name", "item"},
		{"ni", "phone"},
		{"ni", "keys"},
		{"ai", "toy"},
		{"qe", "sandwich"},
	})
	t3 := newTestTable(t, "t3", [][]string{
		{"item", "price"},
		{"phone", "10"},
		{"sandwich", "1.5"},
		{"toy", "2"},
	})

	m := NewModel()
	for _, tbl := range []*Table{t1, t2, t3} {
		require.NoError(t, m.AddTable(tbl))
	}
	return m
}

// peopleTable is a single table with mixed text and numeric columns.
func peopleTable(t *testing.T) *Table {
	t.Helper()
	return newTestTable(t, "people", [][]string{
		{"name", "country", "age", "salary"},
		{"ni", "swe", "35", "1.23"},
		{"ai", "swe", "28", "5"},
		{"qe", "cn", "41", "n/a"},
		{"bo", "usa", "19", "2.5"},
		{"li", "cn", "35", "0.05"},
	})
}

func strs(vs []types.Value) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}
