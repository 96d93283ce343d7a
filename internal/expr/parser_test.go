package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/facets/pkg/types"
)

func TestExprString(t *testing.T) {
	tests := []struct {
		expr Expr
		want string
	}{
		{Literal{types.Decimal(123, 2)}, "1.23"},
		{Literal{types.Decimal(99, 0)}, "99"},
		{Literal{types.Decimal(70000, 1)}, "7000.0"},
		{Add{Literal{types.Integer(5)}, Variable{"age"}}, "add(5, age)"},
		{Add{Sum{Variable{"age"}}, Literal{types.Integer(1)}}, "add(sum(age), 1)"},
		{Sum{Add{Literal{types.Integer(5)}, Variable{"age"}}}, "sum(add(5, age))"},
		{Count{}, "count()"},
		{Values{"country"}, "values(country)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expr.String())
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Expr
	}{
		{"1", Literal{types.Integer(1)}},
		{"-3", Literal{types.Integer(-3)}},
		{"1.50", Literal{types.Decimal(150, 2)}},
		{"age", Variable{"age"}},
		{"x", Variable{"x"}},
		{"1e5", Variable{"1e5"}},
		{"add(1,1)", Add{Literal{types.Integer(1)}, Literal{types.Integer(1)}}},
		{"add(var,1)", Add{Variable{"var"}, Literal{types.Integer(1)}}},
		{"sum(add(5, age))", Sum{Add{Literal{types.Integer(5)}, Variable{"age"}}}},
		{"add(sum(age), 1)", Add{Sum{Variable{"age"}}, Literal{types.Integer(1)}}},
		{" count ( ) ", Count{}},
		{"values(country)", Values{"country"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, s := range []string{"add(5, age)", "sum(add(5, age))", "count()", "values(x)", "add(sum(price), 0.25)"} {
		t.Run(s, func(t *testing.T) {
			e, err := Parse(s)
			require.NoError(t, err)
			assert.Equal(t, s, e.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		in      string
		wantErr error
		wantPos int
	}{
		{"", ErrEmptyToken, 0},
		{"  ", ErrEmptyToken, 0},
		{"sum", ErrUnexpectedEnd, 3},
		{"sum age", ErrExpectedOpenParen, 4},
		{"sum(age", ErrUnexpectedEnd, 7},
		{"sum(age,", ErrExpectedCloseParen, 7},
		{"add(1 2)", ErrExpectedComma, 6},
		{"add(1,", ErrUnexpectedEnd, 6},
		{"add(1,2,3)", ErrExpectedCloseParen, 7},
		{"count(x)", ErrExpectedCloseParen, 6},
		{"count", ErrUnexpectedEnd, 5},
		{"values(1)", ErrExpectedVariable, 7},
		{"values(sum(x))", ErrExpectedVariable, 7},
		{"add(+, 1)", ErrInvalidVariable, 4},
		{")", ErrInvalidVariable, 0},
		{"1 2", ErrTrailingInput, 2},
		{"count() x", ErrTrailingInput, 8},
		{"age)", ErrTrailingInput, 3},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			e, err := Parse(tt.in)
			require.Error(t, err)
			assert.Nil(t, e)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.wantPos, pe.Pos)
		})
	}
}

func TestParseErrorMessages(t *testing.T) {
	_, err := Parse("add(1 2)")
	assert.EqualError(t, err, `parse error at 6 near "2": expected ','`)
	_, err = Parse("sum(")
	assert.EqualError(t, err, "parse error at 4: unexpected end of input")
}

func TestMustParse(t *testing.T) {
	assert.Equal(t, Count{}, MustParse("count()"))
	assert.Panics(t, func() { MustParse("count(") })
}
