// Package expr implements the aggregate expression language used by the
// eval command and the shell's watch command:
//
//	expr := "sum" "(" expr ")"
//	      | "add" "(" expr "," expr ")"
//	      | "count" "(" ")"
//	      | "values" "(" variable ")"
//	      | integer | decimal | variable
//
// Variables name columns. Expressions are parsed into an immutable tree and
// evaluated against a selection context.
package expr

import (
	"fmt"

	"github.com/mesh-intelligence/facets/pkg/types"
)

// Expr is a node of a parsed expression. String renders the canonical form,
// which parses back to an equal tree.
type Expr interface {
	fmt.Stringer
	expr()
}

// Literal is an integer or decimal constant.
type Literal struct {
	Value types.Value
}

// Variable references a column by name.
type Variable struct {
	Name string
}

// Add is the sum of two expressions.
type Add struct {
	Left, Right Expr
}

// Sum folds its argument over every matching row.
type Sum struct {
	Arg Expr
}

// Count is the number of matching rows.
type Count struct{}

// Values is the set of distinct values of a column among matching rows.
type Values struct {
	Column string
}

func (Literal) expr()  {}
func (Variable) expr() {}
func (Add) expr()      {}
func (Sum) expr()      {}
func (Count) expr()    {}
func (Values) expr()   {}

func (e Literal) String() string  { return e.Value.String() }
func (e Variable) String() string { return e.Name }
func (e Add) String() string      { return "add(" + e.Left.String() + ", " + e.Right.String() + ")" }
func (e Sum) String() string      { return "sum(" + e.Arg.String() + ")" }
func (Count) String() string      { return "count()" }
func (e Values) String() string   { return "values(" + e.Column + ")" }

// Reserved words cannot be used as bare variables.
const (
	kwSum    = "sum"
	kwAdd    = "add"
	kwCount  = "count"
	kwValues = "values"
)
