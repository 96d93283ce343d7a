package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/mesh-intelligence/facets/internal/engine"
)

// Format names an input encoding.
type Format string

// Supported formats.
const (
	FormatCSV    Format = "csv"
	FormatTSV    Format = "tsv"
	FormatJSONL  Format = "jsonl"
	FormatSQLite Format = "sqlite"
)

// Source describes one input to load. Name defaults to the file name
// without its extension and Format to the one implied by the extension.
// Query is required for SQLite sources.
type Source struct {
	Name   string
	Path   string
	Format Format
	Query  string
}

// FormatFor infers a format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// ParseSource parses the command-line form "path" or "name=path". A SQLite
// source also needs a query, given as "path#query" or "name=path#query".
func ParseSource(s string) Source {
	var src Source
	if name, rest, ok := strings.Cut(s, "="); ok && !strings.ContainsAny(name, `/\`) {
		src.Name, s = name, rest
	}
	if path, query, ok := strings.Cut(s, "#"); ok {
		src.Path, src.Query = path, query
	} else {
		src.Path = s
	}
	return src
}

// resolve fills in the defaults of src.
func (src Source) resolve() (Source, error) {
	if src.Format == "" {
		f, err := FormatFor(src.Path)
		if err != nil {
			return src, err
		}
		src.Format = f
	}
	if src.Name == "" {
		base := filepath.Base(src.Path)
		src.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return src, nil
}

// Load reads one source into a table. Progress is logged to the logger
// attached to ctx, if any.
func Load(ctx context.Context, src Source, opts Options) (*engine.Table, error) {
	src, err := src.resolve()
	if err != nil {
		return nil, err
	}
	log := zerolog.Ctx(ctx).With().Str("table", src.Name).Str("path", src.Path).Logger()
	start := time.Now()

	var t *engine.Table
	switch src.Format {
	case FormatSQLite:
		if src.Query == "" {
			src.Query = "SELECT * FROM " + quoteIdent(src.Name)
		}
		t, err = ReadSQLite(ctx, src.Path, src.Query, src.Name)
	case FormatCSV, FormatTSV, FormatJSONL:
		t, err = loadFile(src, opts)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownFormat, src.Format)
	}
	if err != nil {
		log.Debug().Err(err).Msg("load failed")
		return nil, err
	}

	log.Debug().Int("rows", t.Len()).Dur("elapsed", time.Since(start)).Msg("loaded table")
	return t, nil
}

func loadFile(src Source, opts Options) (*engine.Table, error) {
	f, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", src.Path, err)
	}
	defer f.Close()

	switch src.Format {
	case FormatJSONL:
		return ReadJSONL(src.Name, f, nil)
	case FormatTSV:
		opts.Delimiter = '\t'
	}
	return ReadCSV(src.Name, f, opts)
}

// LoadAll loads every source concurrently with at most workers goroutines.
// The first error cancels the remaining loads. Tables are returned in the
// order of srcs.
func LoadAll(ctx context.Context, srcs []Source, opts Options, workers int) ([]*engine.Table, error) {
	if workers < 1 {
		workers = 1
	}
	tables := make([]*engine.Table, len(srcs))
	p := pool.New().WithMaxGoroutines(workers).WithContext(ctx).WithCancelOnError().WithFirstError()
	for i, src := range srcs {
		i, src := i, src
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := Load(ctx, src, opts)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
