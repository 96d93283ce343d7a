package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/facets/internal/engine"
	"github.com/mesh-intelligence/facets/pkg/types"
)

func newContext(t *testing.T) *engine.DataContext {
	t.Helper()
	tbl, err := engine.NewTable("people", []string{"name", "country"})
	require.NoError(t, err)
	for _, r := range [][]string{{"ni", "swe"}, {"ai", "swe"}, {"qe", "cn"}} {
		require.NoError(t, tbl.Insert(types.ParseRecord(r)))
	}
	return tbl.NewContext()
}

func TestRecorderTracksContext(t *testing.T) {
	rec := New()
	ctx := newContext(t)
	rec.Track(ctx)

	assert.Equal(t, 3.0, testutil.ToFloat64(rec.matched.WithLabelValues("people")))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.recomputations.WithLabelValues("people")))

	ctx.Select(types.NewConstraint("country", "swe"))
	ctx.Select(types.NewConstraint("name", "ni"))

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.matched.WithLabelValues("people")))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.recomputations.WithLabelValues("people")))
}

func TestRecorderPossibleAndRows(t *testing.T) {
	rec := New()
	called := false
	rec.ObservePossible("country", func() { called = true })
	assert.True(t, called)
	assert.Equal(t, 1, testutil.CollectAndCount(rec.possible, "facets_possible_duration_seconds"))

	rec.RowsLoaded(3)
	rec.RowsLoaded(4)
	assert.Equal(t, 7.0, testutil.ToFloat64(rec.rowsLoaded))
}

func TestSnapshot(t *testing.T) {
	rec := New()
	ctx := newContext(t)
	rec.Track(ctx)
	ctx.Select(types.NewConstraint("country", "cn"))
	rec.RowsLoaded(3)
	rec.ObservePossible("name", func() {})

	lines, err := rec.Snapshot()
	require.NoError(t, err)
	assert.Contains(t, lines, `facets_context_matched_rows{table="people"} 1`)
	assert.Contains(t, lines, `facets_context_recomputations_total{table="people"} 1`)
	assert.Contains(t, lines, `facets_rows_loaded_total 3`)
	assert.Contains(t, lines, `facets_possible_duration_seconds_count{column="name"} 1`)
	assert.True(t, strings.HasPrefix(lines[0], "facets_context_matched_rows"))
}
