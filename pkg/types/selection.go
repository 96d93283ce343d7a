package types

import (
	"fmt"
	"strings"
)

// Constraint restricts one column to a set of candidate values. A row
// satisfies it when its value in Column renders to any of Values.
type Constraint struct {
	Column string
	Values []string
}

// NewConstraint builds a Constraint from a column and its candidates.
func NewConstraint(column string, values ...string) Constraint {
	return Constraint{Column: column, Values: values}
}

// Equal reports whether c and o name the same column and the same
// candidates in the same order.
func (c Constraint) Equal(o Constraint) bool {
	if c.Column != o.Column || len(c.Values) != len(o.Values) {
		return false
	}
	for i := range c.Values {
		if c.Values[i] != o.Values[i] {
			return false
		}
	}
	return true
}

func (c Constraint) String() string {
	return c.Column + "=" + strings.Join(c.Values, ",")
}

// ParseConstraint parses the command-line form "column=value1,value2".
// Trailing whitespace is trimmed and each candidate is rewritten to the
// text its parsed Value renders to, the same key a table indexes a cell
// under. So "007" and "+7" both select cells holding 7, while "1.50" keeps
// its scale and selects cells written as 1.50, not 1.5. Candidates that
// canonicalise to the same text are kept once.
func ParseConstraint(s string) (Constraint, error) {
	column, rest, ok := strings.Cut(s, "=")
	column = strings.TrimSpace(column)
	if !ok || column == "" {
		return Constraint{}, fmt.Errorf("%w: %q (expected column=value[,value...])", ErrInvalidConstraint, s)
	}
	var values []string
	for _, v := range strings.Split(rest, ",") {
		v = strings.TrimRight(v, " \t\r\n")
		if v == "" {
			continue
		}
		if v = ParseValue(v).String(); !contains(values, v) {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return Constraint{}, fmt.Errorf("%w: %q has no values", ErrInvalidConstraint, s)
	}
	return Constraint{Column: column, Values: values}, nil
}

// Selection is a conjunction of per-column constraints, at most one per
// column, kept in the order columns were first selected. The zero value is
// an empty selection.
type Selection struct {
	constraints []Constraint
}

// Select merges c into the selection. Candidates for a column that is
// already constrained extend that constraint (OR within a column);
// repeated candidates are ignored. It reports whether anything changed.
func (s *Selection) Select(c Constraint) bool {
	if i := s.index(c.Column); i >= 0 {
		cur := &s.constraints[i]
		changed := false
		for _, v := range c.Values {
			if !contains(cur.Values, v) {
				cur.Values = append(cur.Values, v)
				changed = true
			}
		}
		return changed
	}
	vals := make([]string, 0, len(c.Values))
	for _, v := range c.Values {
		if !contains(vals, v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return false
	}
	s.constraints = append(s.constraints, Constraint{Column: c.Column, Values: vals})
	return true
}

// Deselect removes c's candidates from the constraint on c.Column and drops
// the constraint once it has no candidates left. Deselecting something that
// is not selected is a no-op. It reports whether anything changed.
func (s *Selection) Deselect(c Constraint) bool {
	i := s.index(c.Column)
	if i < 0 {
		return false
	}
	cur := s.constraints[i].Values
	kept := make([]string, 0, len(cur))
	for _, v := range cur {
		if !contains(c.Values, v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(cur) {
		return false
	}
	if len(kept) == 0 {
		s.constraints = append(s.constraints[:i:i], s.constraints[i+1:]...)
		return true
	}
	s.constraints[i].Values = kept
	return true
}

// Clear drops every constraint.
func (s *Selection) Clear() { s.constraints = nil }

// Len returns the number of constrained columns.
func (s *Selection) Len() int { return len(s.constraints) }

// Constraints returns a deep copy of the active constraints.
func (s *Selection) Constraints() []Constraint {
	return copyConstraints(s.constraints)
}

// Lookup returns the constraint on column, if any.
func (s *Selection) Lookup(column string) (Constraint, bool) {
	if i := s.index(column); i >= 0 {
		c := s.constraints[i]
		return Constraint{Column: c.Column, Values: append([]string(nil), c.Values...)}, true
	}
	return Constraint{}, false
}

// Restrict returns copies of the constraints whose column satisfies keep.
func (s *Selection) Restrict(keep func(column string) bool) []Constraint {
	var out []Constraint
	for _, c := range s.constraints {
		if keep(c.Column) {
			out = append(out, Constraint{Column: c.Column, Values: append([]string(nil), c.Values...)})
		}
	}
	return out
}

func (s *Selection) index(column string) int {
	for i, c := range s.constraints {
		if c.Column == column {
			return i
		}
	}
	return -1
}

func copyConstraints(cs []Constraint) []Constraint {
	if cs == nil {
		return nil
	}
	out := make([]Constraint, len(cs))
	for i, c := range cs {
		out[i] = Constraint{Column: c.Column, Values: append([]string(nil), c.Values...)}
	}
	return out
}

func contains(vs []string, v string) bool {
	for _, x := range vs {
		if x == v {
			return true
		}
	}
	return false
}
