package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/facets/internal/engine"
	"github.com/mesh-intelligence/facets/internal/expr"
	"github.com/mesh-intelligence/facets/pkg/types"
)

// aggregateResult is one --sum, --min or --max answer. Value is nil when
// the column holds no numeric cell in the selection.
type aggregateResult struct {
	Op     string  `json:"op"`
	Column string  `json:"column"`
	Value  *string `json:"value"`
}

type queryResult struct {
	Table      string            `json:"table"`
	Selection  []string          `json:"selection"`
	Count      int               `json:"count"`
	Aggregates []aggregateResult `json:"aggregates,omitempty"`
}

func newQueryCmd(a *app) *cobra.Command {
	var (
		in      string
		selects []string
		sums    []string
		mins    []string
		maxes   []string
	)
	cmd := &cobra.Command{
		Use:   "query --in FILE",
		Short: "Count the rows of one table matching a selection",
		Long: "Load one input, apply every --select and print the number of matching rows\n" +
			"followed by the requested aggregates.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.dataContext(cmd, in, selects)
			if err != nil {
				return err
			}

			res := queryResult{
				Table:     ctx.Table().Name(),
				Selection: constraintStrings(ctx.Selection()),
				Count:     ctx.Count(),
			}
			for _, agg := range []struct {
				op   string
				cols []string
				fn   func(string) (types.Value, bool)
			}{
				{"sum", sums, ctx.Sum},
				{"min", mins, ctx.Min},
				{"max", maxes, ctx.Max},
			} {
				for _, col := range agg.cols {
					if _, ok := ctx.ColumnIndex(col); !ok {
						return userError(fmt.Errorf("%w: %q", expr.ErrUnknownColumn, col))
					}
					r := aggregateResult{Op: agg.op, Column: col}
					v, ok := agg.fn(col)
					switch {
					case ok:
						s := v.String()
						r.Value = &s
					case agg.op == "sum":
						return userError(fmt.Errorf("%w: sum(%s)", types.ErrOverflow, col))
					}
					res.Aggregates = append(res.Aggregates, r)
				}
			}

			w := out(cmd)
			if a.flags.jsonMode {
				return writeJSON(w, res)
			}
			fmt.Fprintf(w, "count: %d\n", res.Count)
			for _, r := range res.Aggregates {
				v := "none"
				if r.Value != nil {
					v = *r.Value
				}
				fmt.Fprintf(w, "%s(%s): %s\n", r.Op, r.Column, v)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input file, optionally name=path")
	cmd.Flags().StringArrayVar(&selects, "select", nil, "selection column=v1,v2 (repeatable)")
	cmd.Flags().StringArrayVar(&sums, "sum", nil, "column to sum (repeatable)")
	cmd.Flags().StringArrayVar(&mins, "min", nil, "column to take the minimum of (repeatable)")
	cmd.Flags().StringArrayVar(&maxes, "max", nil, "column to take the maximum of (repeatable)")
	return cmd
}

type evalResult struct {
	Expr   string `json:"expr"`
	Result any    `json:"result"`
}

func newEvalCmd(a *app) *cobra.Command {
	var (
		in      string
		selects []string
	)
	cmd := &cobra.Command{
		Use:   "eval --in FILE EXPR...",
		Short: "Evaluate expressions over the rows matching a selection",
		Long: "Each EXPR is an expression such as 'add(sum(price), 1)', 'count()' or\n" +
			"'values(country)', evaluated over the rows of one input after every --select.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exprs := make([]expr.Expr, len(args))
			for i, s := range args {
				e, err := expr.Parse(s)
				if err != nil {
					return userError(err)
				}
				exprs[i] = e
			}

			ctx, err := a.dataContext(cmd, in, selects)
			if err != nil {
				return err
			}

			results := make([]expr.Result, len(exprs))
			for i, e := range exprs {
				r, err := expr.Eval(e, ctx)
				if err != nil {
					return userError(err)
				}
				results[i] = r
			}

			w := out(cmd)
			if a.flags.jsonMode {
				rows := make([]evalResult, len(exprs))
				for i, e := range exprs {
					rows[i] = evalResult{Expr: e.String(), Result: resultJSON(results[i])}
				}
				return writeJSON(w, rows)
			}
			for i, e := range exprs {
				fmt.Fprintf(w, "%s = %s\n", e, results[i])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input file, optionally name=path")
	cmd.Flags().StringArrayVar(&selects, "select", nil, "selection column=v1,v2 (repeatable)")
	return cmd
}

// dataContext loads in and applies every selection to a fresh context.
func (a *app) dataContext(cmd *cobra.Command, in string, selects []string) (*engine.DataContext, error) {
	if in == "" {
		return nil, userError(errNoInput)
	}
	cs, err := parseSelections(selects)
	if err != nil {
		return nil, err
	}
	tables, err := a.loadTables(cmd.Context(), []string{in})
	if err != nil {
		return nil, err
	}
	ctx := tables[0].NewContext()
	for _, c := range cs {
		ctx.Select(c)
	}
	return ctx, nil
}

// resultJSON renders a scalar as a string and a list as a string slice.
func resultJSON(r expr.Result) any {
	if r.IsList {
		return valueStrings(r.List)
	}
	return r.Scalar.String()
}

func constraintStrings(cs []types.Constraint) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}
