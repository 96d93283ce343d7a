package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/facets/pkg/types"
)

func TestNewTable(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		wantErr error
	}{
		{name: "valid", columns: []string{"name", "country"}},
		{name: "no columns", columns: nil},
		{name: "duplicate column", columns: []string{"name", "age", "name"}, wantErr: types.ErrDuplicateColumn},
		{name: "empty column", columns: []string{"name", ""}, wantErr: types.ErrEmptyColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := NewTable("t", tt.columns)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, tbl)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "t", tbl.Name())
			assert.Equal(t, 0, tbl.Len())
		})
	}
}

func TestTableColumnsIsCopy(t *testing.T) {
	cols := []string{"name", "country"}
	tbl, err := NewTable("t", cols)
	require.NoError(t, err)
	cols[0] = "changed"
	got := tbl.Columns()
	got[1] = "changed"
	assert.Equal(t, []string{"name", "country"}, tbl.Columns())
}

func TestTableInsert(t *testing.T) {
	tbl, err := NewTable("t", []string{"name", "age"})
	require.NoError(t, err)

	t.Run("arity mismatch", func(t *testing.T) {
		err := tbl.Insert(types.Record{types.Text("ni")})
		assert.True(t, errors.Is(err, types.ErrArityMismatch))
		err = tbl.Insert(types.ParseRecord([]string{"ni", "1", "extra"}))
		assert.True(t, errors.Is(err, types.ErrArityMismatch))
		assert.Equal(t, 0, tbl.Len())
	})

	t.Run("appends and indexes", func(t *testing.T) {
		require.NoError(t, tbl.Insert(types.ParseRecord([]string{"ni", "35"})))
		require.NoError(t, tbl.Insert(types.ParseRecord([]string{"ai", "35"})))
		assert.Equal(t, 2, tbl.Len())

		rec, ok := tbl.Record(1)
		require.True(t, ok)
		assert.Equal(t, types.Record{types.Text("ai"), types.Integer(35)}, rec)
		_, ok = tbl.Record(2)
		assert.False(t, ok)
	})
}

func TestTableIndexCoversEveryField(t *testing.T) {
	tbl := peopleTable(t)
	cols := tbl.Columns()
	for id := uint32(0); id < uint32(tbl.Len()); id++ {
		rec, _ := tbl.Record(id)
		for i, v := range rec {
			rows := tbl.PossibleRows([]types.Constraint{types.NewConstraint(cols[i], v.String())})
			assert.True(t, rows.Contains(id), "row %d missing from %s=%s", id, cols[i], v)
		}
	}
}

func TestTableColumnIndex(t *testing.T) {
	tbl := peopleTable(t)
	i, ok := tbl.ColumnIndex("age")
	assert.True(t, ok)
	assert.Equal(t, 2, i)
	_, ok = tbl.ColumnIndex("missing")
	assert.False(t, ok)
	assert.True(t, tbl.HasColumn("salary"))
	assert.False(t, tbl.HasColumn("Salary"))
}

func TestTablePossibleRows(t *testing.T) {
	tbl := peopleTable(t)

	tests := []struct {
		name        string
		constraints []types.Constraint
		want        []uint32
	}{
		{name: "no constraints matches all", want: []uint32{0, 1, 2, 3, 4}},
		{
			name:        "single value",
			constraints: []types.Constraint{types.NewConstraint("country", "swe")},
			want:        []uint32{0, 1},
		},
		{
			name:        "or within a constraint",
			constraints: []types.Constraint{types.NewConstraint("country", "usa", "swe")},
			want:        []uint32{0, 1, 3},
		},
		{
			name: "and across constraints",
			constraints: []types.Constraint{
				types.NewConstraint("country", "swe", "cn"),
				types.NewConstraint("age", "35"),
			},
			want: []uint32{0, 4},
		},
		{
			name:        "numeric key is canonical form",
			constraints: []types.Constraint{types.NewConstraint("salary", "0.05")},
			want:        []uint32{4},
		},
		{
			name:        "unknown value",
			constraints: []types.Constraint{types.NewConstraint("country", "fr")},
			want:        []uint32{},
		},
		{
			name: "unknown column matches nothing",
			constraints: []types.Constraint{
				types.NewConstraint("country", "swe"),
				types.NewConstraint("color", "red"),
			},
			want: []uint32{},
		},
		{
			name:        "constraint without candidates matches nothing",
			constraints: []types.Constraint{{Column: "country"}},
			want:        []uint32{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tbl.PossibleRows(tt.constraints).ToArray()
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTablePossibleRowsReturnsFreshBitmap(t *testing.T) {
	tbl := peopleTable(t)
	c := []types.Constraint{types.NewConstraint("country", "swe")}
	first := tbl.PossibleRows(c)
	first.Add(4)
	assert.Equal(t, []uint32{0, 1}, tbl.PossibleRows(c).ToArray())
}

func TestTableValues(t *testing.T) {
	tbl := peopleTable(t)

	got, ok := tbl.Values("country")
	require.True(t, ok)
	assert.Equal(t, []string{"cn", "swe", "usa"}, strs(got))

	got, ok = tbl.Values("salary")
	require.True(t, ok)
	assert.Equal(t, []string{"n/a", "0.05", "1.23", "2.5", "5"}, strs(got))

	_, ok = tbl.Values("missing")
	assert.False(t, ok)
}

func TestTableRecords(t *testing.T) {
	tbl := peopleTable(t)
	rows := tbl.PossibleRows([]types.Constraint{types.NewConstraint("country", "cn")})
	recs := tbl.Records(rows)
	require.Len(t, recs, 2)
	assert.Equal(t, types.Text("qe"), recs[0][0])
	assert.Equal(t, types.Text("li"), recs[1][0])
}
