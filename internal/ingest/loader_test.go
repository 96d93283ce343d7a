package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "a.csv", want: FormatCSV},
		{path: "dir/a.CSV", want: FormatCSV},
		{path: "a.tsv", want: FormatTSV},
		{path: "a.jsonl", want: FormatJSONL},
		{path: "a.ndjson", want: FormatJSONL},
		{path: "a.db", want: FormatSQLite},
		{path: "a.sqlite", want: FormatSQLite},
		{path: "a.xlsx", wantErr: true},
		{path: "noext", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFor(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		in   string
		want Source
	}{
		{in: "data/people.csv", want: Source{Path: "data/people.csv"}},
		{in: "people=data/p.csv", want: Source{Name: "people", Path: "data/p.csv"}},
		{in: "shop.db#SELECT * FROM t", want: Source{Path: "shop.db", Query: "SELECT * FROM t"}},
		{in: "t=shop.db#SELECT a FROM b WHERE c=1", want: Source{Name: "t", Path: "shop.db", Query: "SELECT a FROM b WHERE c=1"}},
		{in: "dir/a=b.csv", want: Source{Path: "dir/a=b.csv"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSource(tt.in))
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	t.Run("csv named after file", func(t *testing.T) {
		path := writeFile(t, dir, "people.csv", "name,age\nni,35\n")
		tbl, err := Load(ctx, Source{Path: path}, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, "people", tbl.Name())
		assert.Equal(t, 1, tbl.Len())
	})

	t.Run("tsv uses tabs", func(t *testing.T) {
		path := writeFile(t, dir, "items.tsv", "name\titem\nni\tphone\n")
		tbl, err := Load(ctx, Source{Name: "orders", Path: path}, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, "orders", tbl.Name())
		assert.Equal(t, []string{"name", "item"}, tbl.Columns())
	})

	t.Run("jsonl", func(t *testing.T) {
		path := writeFile(t, dir, "prices.jsonl", `{"item":"phone","price":10}`+"\n")
		tbl, err := Load(ctx, Source{Path: path}, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, []string{"item", "price"}, tbl.Columns())
	})

	t.Run("sqlite defaults to table named after source", func(t *testing.T) {
		path := newTestDB(t)
		tbl, err := Load(ctx, Source{Name: "prices", Path: path}, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, 3, tbl.Len())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(ctx, Source{Path: filepath.Join(dir, "nope.csv")}, DefaultOptions())
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	var srcs []Source
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		path := writeFile(t, dir, name+".csv", "col_"+name+"\n1\n2\n")
		srcs = append(srcs, Source{Path: path})
	}

	tables, err := LoadAll(context.Background(), srcs, DefaultOptions(), 2)
	require.NoError(t, err)
	require.Len(t, tables, 5)
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		assert.Equal(t, name, tables[i].Name())
		assert.Equal(t, []string{"col_" + name}, tables[i].Columns())
	}
}

func TestLoadAllFails(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.csv", "a\n1\n")
	bad := writeFile(t, dir, "bad.csv", "a,b\n1\n")

	tables, err := LoadAll(context.Background(), []Source{{Path: good}, {Path: bad}}, DefaultOptions(), 0)
	assert.ErrorIs(t, err, ErrShortRow)
	assert.Nil(t, tables)
}
