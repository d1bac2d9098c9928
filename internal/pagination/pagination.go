package pagination

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

const (
	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

// Params is the common list query: page, limit, free-text search and sort.
type Params struct {
	Page   int
	Limit  int
	Search string
	Sort   string
	Order  string
}

// Meta describes a page of results.
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// FromQuery reads page, limit, search, sortBy and sortOrder from a query string.
func FromQuery(q url.Values) Params {
	p := Params{
		Page:   atoi(q.Get("page")),
		Limit:  atoi(q.Get("limit")),
		Search: strings.TrimSpace(q.Get("search")),
		Sort:   q.Get("sortBy"),
		Order:  q.Get("sortOrder"),
	}
	return p.Normalize()
}

// Normalize applies defaults. Order is DESC only when asked for explicitly.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	switch strings.ToUpper(p.Order) {
	case OrderDesc:
		p.Order = OrderDesc
	case OrderAsc:
		p.Order = OrderAsc
	default:
		p.Order = ""
	}
	return p
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewMeta builds the page metadata; TotalPages is ceil(total/limit).
func NewMeta(total int, p Params) Meta {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return Meta{
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Page is one page of a list result.
type Page[T any] struct {
	Items []T
	Meta  Meta
}

func NewPage[T any](items []T, total int, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Meta: NewMeta(total, p)}
}
