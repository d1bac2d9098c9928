package repository

import (
	"fmt"
	"strings"

	"cinelight-api/internal/pagination"
)

// whereBuilder accumulates AND-ed conditions with positional arguments.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (b *whereBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// add appends clause, replacing its single "?" with the next placeholder.
func (b *whereBuilder) add(clause string, v any) {
	b.clauses = append(b.clauses, strings.Replace(clause, "?", b.arg(v), 1))
}

// search matches term case-insensitively as a substring of any column.
func (b *whereBuilder) search(term string, columns ...string) {
	if term == "" || len(columns) == 0 {
		return
	}
	ph := b.arg("%" + escapeLike(term) + "%")
	parts := make([]string, 0, len(columns))
	for _, c := range columns {
		parts = append(parts, c+" ILIKE "+ph)
	}
	b.clauses = append(b.clauses, "("+strings.Join(parts, " OR ")+")")
}

func (b *whereBuilder) where() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.clauses, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the extended args.
func (b *whereBuilder) page(p pagination.Params) (string, []any) {
	args := append([]any{}, b.args...)
	args = append(args, p.Limit, p.Offset())
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

// sortColumns whitelists sortable fields by their API name.
type sortColumns struct {
	columns      map[string]string
	defaultKey   string
	defaultOrder string
}

func (s sortColumns) orderBy(p pagination.Params, idColumn string) string {
	col, ok := s.columns[p.Sort]
	order := p.Order
	if !ok {
		col = s.columns[s.defaultKey]
		if order == "" {
			order = s.defaultOrder
		}
	}
	if order == "" {
		order = pagination.OrderAsc
	}
	return fmt.Sprintf(" ORDER BY %s %s, %s %s", col, order, idColumn, order)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
