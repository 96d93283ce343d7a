package expr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/facets/pkg/types"
)

// Evaluation errors. Every EvalError wraps exactly one of these.
var (
	ErrUnboundVariable = errors.New("column reference outside an aggregate")
	ErrNestedAggregate = errors.New("aggregate inside sum")
	ErrNotScalar       = errors.New("operand is not a scalar")
	ErrUnknownColumn   = errors.New("unknown column")
)

// EvalError reports the sub-expression that could not be evaluated.
type EvalError struct {
	Expr string
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("eval %s: %v", e.Expr, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

// Source is the row set an expression is evaluated against.
// *engine.DataContext satisfies it.
type Source interface {
	Count() int
	Records() []types.Record
	ColumnIndex(column string) (int, bool)
	Values(column string) ([]types.Value, bool)
}

// Result is either a scalar or, for values(), a list.
type Result struct {
	Scalar types.Value
	List   []types.Value
	IsList bool
}

func (r Result) String() string {
	if !r.IsList {
		return r.Scalar.String()
	}
	parts := make([]string, len(r.List))
	for i, v := range r.List {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Eval evaluates e over the rows of src. Aggregates (sum, count, values)
// and constants may appear at the top level or inside add; bare column
// references may appear only inside sum, where they are read row by row.
// Text cells count as zero in add and are skipped by sum. A sum that does
// not fit in an int64 fails with an EvalError wrapping types.ErrOverflow.
func Eval(e Expr, src Source) (Result, error) {
	switch n := e.(type) {
	case Literal:
		return Result{Scalar: n.Value}, nil

	case Variable:
		return Result{}, &EvalError{Expr: n.String(), Err: ErrUnboundVariable}

	case Add:
		l, err := Eval(n.Left, src)
		if err != nil {
			return Result{}, err
		}
		r, err := Eval(n.Right, src)
		if err != nil {
			return Result{}, err
		}
		if l.IsList || r.IsList {
			return Result{}, &EvalError{Expr: n.String(), Err: ErrNotScalar}
		}
		v, err := types.Add(l.Scalar, r.Scalar)
		if err != nil {
			return Result{}, &EvalError{Expr: n.String(), Err: types.ErrOverflow}
		}
		return Result{Scalar: v}, nil

	case Sum:
		row, err := compileRow(n.Arg, src)
		if err != nil {
			return Result{}, err
		}
		sum := types.Integer(0)
		for _, rec := range src.Records() {
			v, err := row(rec)
			if err != nil {
				return Result{}, &EvalError{Expr: n.String(), Err: types.ErrOverflow}
			}
			if !v.IsNumeric() {
				continue
			}
			if sum, err = types.Add(sum, v); err != nil {
				return Result{}, &EvalError{Expr: n.String(), Err: types.ErrOverflow}
			}
		}
		return Result{Scalar: sum}, nil

	case Count:
		return Result{Scalar: types.Integer(int64(src.Count()))}, nil

	case Values:
		vals, ok := src.Values(n.Column)
		if !ok {
			return Result{}, &EvalError{Expr: n.String(), Err: ErrUnknownColumn}
		}
		return Result{List: vals, IsList: true}, nil
	}
	return Result{}, &EvalError{Expr: fmt.Sprint(e), Err: ErrNotScalar}
}

// rowFunc computes a per-row value.
type rowFunc func(types.Record) (types.Value, error)

// compileRow resolves column references once so that an unknown column is
// reported even when no row matches.
func compileRow(e Expr, src Source) (rowFunc, error) {
	switch n := e.(type) {
	case Literal:
		v := n.Value
		return func(types.Record) (types.Value, error) { return v, nil }, nil

	case Variable:
		i, ok := src.ColumnIndex(n.Name)
		if !ok {
			return nil, &EvalError{Expr: n.String(), Err: ErrUnknownColumn}
		}
		return func(rec types.Record) (types.Value, error) { return rec[i], nil }, nil

	case Add:
		l, err := compileRow(n.Left, src)
		if err != nil {
			return nil, err
		}
		r, err := compileRow(n.Right, src)
		if err != nil {
			return nil, err
		}
		return func(rec types.Record) (types.Value, error) {
			lv, err := l(rec)
			if err != nil {
				return types.Value{}, err
			}
			rv, err := r(rec)
			if err != nil {
				return types.Value{}, err
			}
			return types.Add(lv, rv)
		}, nil
	}
	return nil, &EvalError{Expr: e.String(), Err: ErrNestedAggregate}
}
