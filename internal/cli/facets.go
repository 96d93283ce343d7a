package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/facets/internal/metrics"
)

type facetResult struct {
	Column   string   `json:"column"`
	Possible []string `json:"possible"`
	Excluded []string `json:"excluded,omitempty"`
}

func newPossibleCmd(a *app) *cobra.Command {
	var (
		ins      []string
		selects  []string
		excluded bool
		stats    bool
	)
	cmd := &cobra.Command{
		Use:   "possible --in FILE... COLUMN...",
		Short: "List the values of each column still reachable under a selection",
		Long: "Load every --in input into one model, apply every --select and print, for\n" +
			"each COLUMN, the values reachable through the tables that share columns.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := parseSelections(selects)
			if err != nil {
				return err
			}
			m, err := a.loadModel(cmd.Context(), ins)
			if err != nil {
				return err
			}

			rec := metrics.New()
			for _, t := range m.Tables() {
				rec.RowsLoaded(t.Len())
			}

			mc := m.NewContext()
			for _, c := range cs {
				mc.Select(c)
			}

			results := make([]facetResult, len(args))
			for i, col := range args {
				if len(m.TablesWith(col)) == 0 {
					a.log.Warn().Str("column", col).Msg("no table declares column")
				}
				r := facetResult{Column: col}
				rec.ObservePossible(col, func() {
					r.Possible = valueStrings(mc.GetPossible(col))
				})
				if excluded {
					r.Excluded = valueStrings(mc.GetExcluded(col))
				}
				results[i] = r
			}

			w := out(cmd)
			if a.flags.jsonMode {
				return writeJSON(w, results)
			}
			for _, r := range results {
				fmt.Fprintf(w, "%s: %s\n", r.Column, strings.Join(r.Possible, ", "))
				if excluded {
					fmt.Fprintf(w, "%s (excluded): %s\n", r.Column, strings.Join(r.Excluded, ", "))
				}
			}
			if stats {
				lines, err := rec.Snapshot()
				if err != nil {
					return sysError(err)
				}
				fmt.Fprintln(w)
				for _, l := range lines {
					fmt.Fprintln(w, l)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&ins, "in", nil, "input file, optionally name=path (repeatable)")
	cmd.Flags().StringArrayVar(&selects, "select", nil, "selection column=v1,v2 (repeatable)")
	cmd.Flags().BoolVar(&excluded, "excluded", false, "also list values the selection excludes")
	cmd.Flags().BoolVar(&stats, "stats", false, "print propagation metrics after the results")
	return cmd
}

type valuesResult struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}

func newValuesCmd(a *app) *cobra.Command {
	var ins []string
	cmd := &cobra.Command{
		Use:   "values --in FILE... [COLUMN...]",
		Short: "List every distinct value of each column across all tables",
		Long:  "Without COLUMN arguments, list the columns the loaded tables declare.",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.loadModel(cmd.Context(), ins)
			if err != nil {
				return err
			}

			w := out(cmd)
			if len(args) == 0 {
				cols := m.Columns()
				if a.flags.jsonMode {
					return writeJSON(w, cols)
				}
				for _, c := range cols {
					fmt.Fprintln(w, c)
				}
				return nil
			}

			results := make([]valuesResult, len(args))
			for i, col := range args {
				results[i] = valuesResult{Column: col, Values: valueStrings(m.AllValues(col))}
			}
			if a.flags.jsonMode {
				return writeJSON(w, results)
			}
			for _, r := range results {
				fmt.Fprintf(w, "%s: %s\n", r.Column, strings.Join(r.Values, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&ins, "in", nil, "input file, optionally name=path (repeatable)")
	return cmd
}
