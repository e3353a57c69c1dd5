// Package querybuilder renders the few statement shapes the execution log store needs.
package querybuilder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errNoTable = errors.New("querybuilder: table is required")

// SelectBuilder renders a single-table SELECT with ordering and an optional limit.
type SelectBuilder struct {
	columns []string
	table   string
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = strings.TrimSpace(table)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

// Limit is rendered inline; values <= 0 mean no limit.
func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	switch {
	case b.table == "":
		return "", nil, errNoTable
	case len(b.columns) == 0:
		return "", nil, fmt.Errorf("querybuilder: select from %s has no columns", b.table)
	}

	sql := fmt.Sprintf("SELECT %s FROM %s", strings.Join(b.columns, ", "), b.table)
	if len(b.orderBy) > 0 {
		sql += " ORDER BY " + strings.Join(b.orderBy, ", ")
	}
	if b.limit > 0 {
		sql += " LIMIT " + strconv.Itoa(b.limit)
	}
	return sql, nil, nil
}

// InsertBuilder renders a single-row INSERT with $n placeholders.
type InsertBuilder struct {
	table   string
	columns []string
	values  []any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: strings.TrimSpace(table)}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.values = append([]any(nil), values...)
	return b
}

// Suffix is appended verbatim, e.g. "ON CONFLICT (id) DO NOTHING".
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case b.table == "":
		return "", nil, errNoTable
	case len(b.columns) == 0:
		return "", nil, fmt.Errorf("querybuilder: insert into %s has no columns", b.table)
	case len(b.values) != len(b.columns):
		return "", nil, fmt.Errorf("querybuilder: insert into %s has %d values for %d columns", b.table, len(b.values), len(b.columns))
	}

	marks := make([]string, len(b.columns))
	for i := range marks {
		marks[i] = "$" + strconv.Itoa(i+1)
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", b.table, strings.Join(b.columns, ", "), strings.Join(marks, ", "))
	if b.suffix != "" {
		sql += " " + b.suffix
	}
	return sql, append([]any(nil), b.values...), nil
}
