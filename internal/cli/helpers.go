package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/mesh-intelligence/facets/internal/engine"
	"github.com/mesh-intelligence/facets/internal/ingest"
	"github.com/mesh-intelligence/facets/internal/paths"
	"github.com/mesh-intelligence/facets/pkg/types"
)

var errNoInput = errors.New("no input given, use --in")

// sources parses --in values and resolves their paths against the data
// directory.
func (a *app) sources(inputs []string) []ingest.Source {
	srcs := make([]ingest.Source, len(inputs))
	for i, s := range inputs {
		src := ingest.ParseSource(s)
		src.Path = paths.ResolveInput(a.dataDir, src.Path)
		srcs[i] = src
	}
	return srcs
}

// loadTables loads every --in value, in order.
func (a *app) loadTables(ctx context.Context, inputs []string) ([]*engine.Table, error) {
	if len(inputs) == 0 {
		return nil, userError(errNoInput)
	}
	tables, err := ingest.LoadAll(ctx, a.sources(inputs), ingest.OptionsFromConfig(a.cfg), a.cfg.Workers)
	if err != nil {
		return nil, loadError(err)
	}
	return tables, nil
}

// loadModel loads every --in value into a model.
func (a *app) loadModel(ctx context.Context, inputs []string) (*engine.Model, error) {
	tables, err := a.loadTables(ctx, inputs)
	if err != nil {
		return nil, err
	}
	m := engine.NewModel()
	for _, t := range tables {
		if err := m.AddTable(t); err != nil {
			return nil, userError(err)
		}
	}
	return m, nil
}

// loadError classifies an ingestion failure. Unreadable files are system
// errors, everything else is a problem with the input.
func loadError(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return sysError(err)
	}
	return userError(err)
}

// parseSelections parses --select values of the form column=v1,v2.
func parseSelections(raw []string) ([]types.Constraint, error) {
	cs := make([]types.Constraint, 0, len(raw))
	for _, s := range raw {
		c, err := types.ParseConstraint(s)
		if err != nil {
			return nil, userError(err)
		}
		cs = append(cs, c)
	}
	return cs, nil
}

// valueStrings renders values in their canonical form.
func valueStrings(vs []types.Value) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

// writeJSON writes v indented, followed by a newline.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal JSON: %w", err))
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
