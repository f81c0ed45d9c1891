// Package dbquery builds parameterized WHERE clauses from an enumerated set
// of predicates, replacing ad hoc string concatenation in repositories.
package dbquery

import (
	"strconv"
	"strings"
)

// Op enumerates the supported comparison operators.
type Op int

const (
	OpEq Op = iota
	OpIn
	OpILike
	OpIsNull
)

// Predicate is a single WHERE condition against a column.
type Predicate struct {
	Field  string
	Op     Op
	Value  any
	Values []any
}

// Eq matches rows where field = value.
func Eq(field string, value any) Predicate {
	return Predicate{Field: field, Op: OpEq, Value: value}
}

// In matches rows where field is any of values. An empty value set matches
// nothing, which keeps authorization checks fail-closed.
func In(field string, values ...any) Predicate {
	return Predicate{Field: field, Op: OpIn, Values: values}
}

// ILike matches rows where field matches the pattern case-insensitively.
func ILike(field string, pattern string) Predicate {
	return Predicate{Field: field, Op: OpILike, Value: pattern}
}

// IsNull matches rows where field is NULL.
func IsNull(field string) Predicate {
	return Predicate{Field: field, Op: OpIsNull}
}

// Build renders predicates into a WHERE fragment and its argument list.
// Placeholders start at $startArg. The fragment is empty when no predicates
// are given.
func Build(startArg int, preds ...Predicate) (string, []any) {
	if len(preds) == 0 {
		return "", nil
	}
	var parts []string
	var args []any
	n := startArg
	for _, p := range preds {
		switch p.Op {
		case OpEq:
			parts = append(parts, p.Field+" = $"+strconv.Itoa(n))
			args = append(args, p.Value)
			n++
		case OpILike:
			parts = append(parts, p.Field+" ILIKE $"+strconv.Itoa(n))
			args = append(args, p.Value)
			n++
		case OpIsNull:
			parts = append(parts, p.Field+" IS NULL")
		case OpIn:
			if len(p.Values) == 0 {
				parts = append(parts, "FALSE")
				continue
			}
			holders := make([]string, len(p.Values))
			for i, v := range p.Values {
				holders[i] = "$" + strconv.Itoa(n)
				args = append(args, v)
				n++
			}
			parts = append(parts, p.Field+" IN ("+strings.Join(holders, ", ")+")")
		}
	}
	return strings.Join(parts, " AND "), args
}
