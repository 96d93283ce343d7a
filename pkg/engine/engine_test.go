package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/facets/pkg/engine"
	"github.com/mesh-intelligence/facets/pkg/types"
)

func TestPublicAPI(t *testing.T) {
	names, err := engine.NewTable("names", []string{"name", "country"})
	require.NoError(t, err)
	require.NoError(t, names.Insert(types.ParseRecord([]string{"ni", "swe"})))
	require.NoError(t, names.Insert(types.ParseRecord([]string{"qe", "cn"})))

	items, err := engine.NewTable("items", []string{"name", "price"})
	require.NoError(t, err)
	require.NoError(t, items.Insert(types.ParseRecord([]string{"ni", "1.25"})))
	require.NoError(t, items.Insert(types.ParseRecord([]string{"qe", "3"})))

	ctx := engine.NewDataContext(items)
	var seen []int
	ctx.Observe(engine.ObserverFunc(func(c *engine.DataContext) { seen = append(seen, c.Count()) }))
	ctx.Select(types.NewConstraint("name", "ni"))
	sum, ok := ctx.Sum("price")
	require.True(t, ok)
	assert.Equal(t, "1.25", sum.String())
	assert.Equal(t, []int{1}, seen)

	m := engine.NewModel()
	require.NoError(t, m.AddTable(names))
	require.NoError(t, m.AddTable(items))
	mc := m.NewContext()
	mc.Select(types.NewConstraint("country", "cn"))
	got := mc.GetPossible("price")
	require.Len(t, got, 1)
	assert.Equal(t, types.Integer(3), got[0])
}
