package types

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind identifies which variant a Value holds.
type Kind uint8

// Value kinds. Text sorts below every numeric kind.
const (
	KindText Kind = iota
	KindInteger
	KindDecimal
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	default:
		return "unknown"
	}
}

// Value is a scalar cell: text, a 64-bit integer, or a fixed-point decimal
// mantissa/10^scale. The zero Value is the empty Text.
//
// Value is comparable, so it can key maps; == is structural equality, which
// means Decimal(150, 2) and Decimal(15, 1) are different values even though
// Compare reports them as equal.
type Value struct {
	kind     Kind
	text     string
	mantissa int64
	scale    uint8
}

// Record is one table row, aligned to the table's column list.
type Record []Value

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Integer returns an integer value.
func Integer(i int64) Value { return Value{kind: KindInteger, mantissa: i} }

// Decimal returns mantissa/10^scale. The scale is kept as given; it is the
// number of fractional digits the value was written with.
func Decimal(mantissa int64, scale uint8) Value {
	return Value{kind: KindDecimal, mantissa: mantissa, scale: scale}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNumeric reports whether v is an Integer or a Decimal.
func (v Value) IsNumeric() bool { return v.kind == KindInteger || v.kind == KindDecimal }

// Text returns the string of a Text value, or "" for numbers.
func (v Value) Text() string { return v.text }

// Int returns the integer of an Integer value. For a Decimal it returns the
// mantissa, for Text zero.
func (v Value) Int() int64 { return v.mantissa }

// Mantissa returns the unscaled digits of a numeric value.
func (v Value) Mantissa() int64 { return v.mantissa }

// Scale returns the number of fractional digits. Integers have scale 0.
func (v Value) Scale() uint8 { return v.scale }

// Equal reports structural equality.
func (v Value) Equal(o Value) bool { return v == o }

// ParseValue converts a raw field into a Value. It tries an integer first,
// then a plain decimal literal such as "-12.50", and falls back to Text.
// It never fails.
func ParseValue(s string) Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Integer(i)
	}
	if m, scale, ok := parseDecimal(s); ok {
		return Decimal(m, scale)
	}
	return Text(s)
}

// parseDecimal accepts [sign] digits '.' digits with at least one digit in
// total. The digits are concatenated into the mantissa.
func parseDecimal(s string) (int64, uint8, bool) {
	dot := strings.IndexByte(s, '.')
	if dot < 0 || strings.IndexByte(s[dot+1:], '.') >= 0 {
		return 0, 0, false
	}
	intPart, frac := s[:dot], s[dot+1:]
	sign := ""
	if intPart != "" && (intPart[0] == '-' || intPart[0] == '+') {
		sign, intPart = intPart[:1], intPart[1:]
	}
	if intPart == "" && frac == "" {
		return 0, 0, false
	}
	if !allDigits(intPart) || !allDigits(frac) || len(frac) > math.MaxUint8 {
		return 0, 0, false
	}
	m, err := strconv.ParseInt(sign+intPart+frac, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return m, uint8(len(frac)), true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String renders the canonical form used as the inverted index key.
// Decimals are written with exactly Scale fractional digits: Decimal(123, 2)
// is "1.23" and Decimal(70000, 1) is "7000.0".
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.mantissa, 10)
	case KindDecimal:
		return formatDecimal(v.mantissa, v.scale)
	default:
		return v.text
	}
}

func formatDecimal(m int64, scale uint8) string {
	if scale == 0 {
		return strconv.FormatInt(m, 10)
	}
	digits := strconv.FormatUint(absUint(m), 10)
	dp := int(scale)
	if len(digits) <= dp {
		digits = strings.Repeat("0", dp-len(digits)+1) + digits
	}
	var b strings.Builder
	if m < 0 {
		b.WriteByte('-')
	}
	b.WriteString(digits[:len(digits)-dp])
	b.WriteByte('.')
	b.WriteString(digits[len(digits)-dp:])
	return b.String()
}

func absUint(m int64) uint64 {
	if m < 0 {
		return uint64(-(m + 1)) + 1
	}
	return uint64(m)
}

// numeric returns the mantissa and scale of v, treating Text as zero.
func (v Value) numeric() (int64, uint8) {
	if !v.IsNumeric() {
		return 0, 0
	}
	return v.mantissa, v.scale
}

// Add sums two values. Integer+Integer stays Integer; any Decimal operand
// lifts both sides to the larger scale and yields a Decimal. Text operands
// count as zero so that aggregation can ignore non-numeric cells. A sum or
// rescale that does not fit in an int64 returns ErrOverflow.
func Add(a, b Value) (Value, error) {
	m1, s1 := a.numeric()
	m2, s2 := b.numeric()
	ok := true
	switch {
	case s1 > s2:
		m2, ok = rescaleChecked(m2, s1-s2)
	case s2 > s1:
		m1, ok = rescaleChecked(m1, s2-s1)
		s1 = s2
	}
	if !ok {
		return Value{}, fmt.Errorf("%w: %s + %s", ErrOverflow, a, b)
	}
	sum := m1 + m2
	if (m2 > 0 && sum < m1) || (m2 < 0 && sum > m1) {
		return Value{}, fmt.Errorf("%w: %s + %s", ErrOverflow, a, b)
	}
	if a.kind != KindDecimal && b.kind != KindDecimal {
		return Integer(sum), nil
	}
	return Decimal(sum, s1), nil
}

// rescaleChecked multiplies m by 10^n, reporting false on overflow.
func rescaleChecked(m int64, n uint8) (int64, bool) {
	for ; n > 0; n-- {
		if m > math.MaxInt64/10 || m < math.MinInt64/10 {
			return 0, false
		}
		m *= 10
	}
	return m, true
}

// Compare orders values: every Text sorts before every number, texts compare
// lexicographically, and numbers compare by value after lifting both to the
// larger scale. It returns -1, 0 or +1.
func Compare(a, b Value) int {
	switch {
	case !a.IsNumeric() && !b.IsNumeric():
		return strings.Compare(a.text, b.text)
	case !a.IsNumeric():
		return -1
	case !b.IsNumeric():
		return 1
	}
	m1, s1 := a.numeric()
	m2, s2 := b.numeric()
	ok1, ok2 := true, true
	switch {
	case s1 > s2:
		m2, ok2 = rescaleChecked(m2, s1-s2)
	case s2 > s1:
		m1, ok1 = rescaleChecked(m1, s2-s1)
	}
	if !ok1 || !ok2 {
		return a.decimal().Cmp(b.decimal())
	}
	switch {
	case m1 < m2:
		return -1
	case m1 > m2:
		return 1
	default:
		return 0
	}
}

// decimal converts a numeric value to an arbitrary precision decimal.
func (v Value) decimal() decimal.Decimal {
	m, s := v.numeric()
	return decimal.New(m, -int32(s))
}

// Less is Compare(a, b) < 0 with a structural tie-break so that sorting is
// deterministic for values that compare equal (Integer 10 before 10.0).
func Less(a, b Value) bool {
	if c := Compare(a, b); c != 0 {
		return c < 0
	}
	if a.kind != b.kind {
		return a.kind < b.kind
	}
	return a.scale < b.scale
}

// SortValues sorts vs in place by Less.
func SortValues(vs []Value) {
	sort.SliceStable(vs, func(i, j int) bool { return Less(vs[i], vs[j]) })
}

// DistinctValues returns the sorted set of structurally distinct values.
func DistinctValues(vs []Value) []Value {
	seen := make(map[Value]struct{}, len(vs))
	out := make([]Value, 0, len(vs))
	for _, v := range vs {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	SortValues(out)
	return out
}

// ParseRecord parses every field with ParseValue.
func ParseRecord(fields []string) Record {
	rec := make(Record, len(fields))
	for i, f := range fields {
		rec[i] = ParseValue(f)
	}
	return rec
}
