package repository

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

type Op string

const (
	OpEq Op = "="
	OpLt Op = "<"
	OpGt Op = ">"
	OpIn Op = "IN"
)

// Cond is a single predicate on a column. A Filter is the conjunction
// of its conditions.
type Cond struct {
	Column string
	Op     Op
	Value  interface{}
}

type Filter []Cond

func Eq(column string, value interface{}) Cond { return Cond{Column: column, Op: OpEq, Value: value} }
func Lt(column string, value interface{}) Cond { return Cond{Column: column, Op: OpLt, Value: value} }
func Gt(column string, value interface{}) Cond { return Cond{Column: column, Op: OpGt, Value: value} }

func In(column string, values []string) Cond {
	return Cond{Column: column, Op: OpIn, Value: values}
}

type SortField struct {
	Column string
	Desc   bool
}

// FindOptions control ordering and pagination of FindMany. Skip is
// applied before Limit, ordering before both.
type FindOptions struct {
	Sort  []SortField
	Limit int
	Skip  int
}

// buildWhere renders the filter as a WHERE body (without the keyword)
// with placeholders numbered from startArg. Columns outside the
// whitelist are rejected rather than interpolated.
func buildWhere(f Filter, allowed map[string]bool, startArg int) (string, []interface{}, error) {
	if len(f) == 0 {
		return "", nil, nil
	}

	clauses := make([]string, 0, len(f))
	args := make([]interface{}, 0, len(f))
	arg := startArg

	for _, c := range f {
		if !allowed[c.Column] {
			return "", nil, fmt.Errorf("filter: unknown column %q", c.Column)
		}
		switch c.Op {
		case OpIn:
			values, ok := c.Value.([]string)
			if !ok {
				return "", nil, fmt.Errorf("filter: IN on %q expects []string", c.Column)
			}
			clauses = append(clauses, fmt.Sprintf("%s = ANY($%d)", c.Column, arg))
			args = append(args, pq.Array(values))
		case OpEq, OpLt, OpGt:
			clauses = append(clauses, fmt.Sprintf("%s %s $%d", c.Column, c.Op, arg))
			args = append(args, c.Value)
		default:
			return "", nil, fmt.Errorf("filter: unsupported operator %q", c.Op)
		}
		arg++
	}

	return strings.Join(clauses, " AND "), args, nil
}

// buildOrderBy renders the ORDER BY body, validating each column
// against the whitelist.
func buildOrderBy(sort []SortField, allowed map[string]bool) (string, error) {
	if len(sort) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(sort))
	for _, s := range sort {
		if !allowed[s.Column] {
			return "", fmt.Errorf("sort: unknown column %q", s.Column)
		}
		direction := "ASC"
		if s.Desc {
			direction = "DESC"
		}
		parts = append(parts, s.Column+" "+direction)
	}

	return strings.Join(parts, ", "), nil
}
