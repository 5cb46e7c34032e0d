package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// DefaultLimit is used when the limit parameter is absent or not one of
// the allowed page sizes
const DefaultLimit = 10

var allowedLimits = map[int]bool{10: true, 20: true, 30: true, 40: true, 50: true}

// Meta describes the page position within the full collection
type Meta struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
}

// Page is the uniform list response envelope
type Page struct {
	Data interface{} `json:"data"`
	Meta Meta        `json:"meta"`
}

// Options declares, per resource, which fields a request may sort, search
// and filter on. Column names only ever come from these whitelists.
type Options struct {
	DefaultSort   string            // e.g. "created_at DESC"
	SortFields    map[string]string // api field -> column
	SearchColumns []string
	FilterFields  map[string]string // query key ("filter.country.id") -> column
}

// Params are the resolved list parameters of one request
type Params struct {
	Page    int
	Limit   int
	Search  string
	OrderBy string
	Filters map[string][]string // column -> values (repeated values OR together)
}

// ParseParams resolves page, limit, search, sortBy=field:DIRECTION and
// bracketed filter keys from the request against the resource's options
func ParseParams(c echo.Context, opts Options) Params {
	p := Params{
		Page:    1,
		Limit:   DefaultLimit,
		OrderBy: opts.DefaultSort,
		Filters: map[string][]string{},
	}

	if raw := c.QueryParam("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			p.Page = page
		}
	}

	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && allowedLimits[limit] {
			p.Limit = limit
		}
	}

	p.Search = strings.TrimSpace(c.QueryParam("search"))

	if raw := c.QueryParam("sortBy"); raw != "" && len(opts.SortFields) > 0 {
		field, dir, _ := strings.Cut(raw, ":")
		if column, ok := opts.SortFields[field]; ok {
			dir = strings.ToUpper(dir)
			if dir != "ASC" && dir != "DESC" {
				dir = "ASC"
			}
			p.OrderBy = column + " " + dir
		}
	}

	values := c.QueryParams()
	for key, column := range opts.FilterFields {
		if vals, ok := values[key]; ok && len(vals) > 0 {
			p.Filters[column] = vals
		}
	}

	return p
}

// Paginate runs a parameterized list query and returns the page envelope.
// db must already carry the model (and any preloads); dest is a pointer to
// the destination slice.
func Paginate(c echo.Context, db *gorm.DB, opts Options, dest interface{}) (*Page, error) {
	p := ParseParams(c, opts)
	return Run(db, p, opts, dest)
}

// Run executes the query for already-resolved params
func Run(db *gorm.DB, p Params, opts Options, dest interface{}) (*Page, error) {
	tx := db

	for column, vals := range p.Filters {
		tx = tx.Where(fmt.Sprintf("%s IN ?", column), vals)
	}

	if p.Search != "" && len(opts.SearchColumns) > 0 {
		clauses := make([]string, 0, len(opts.SearchColumns))
		args := make([]interface{}, 0, len(opts.SearchColumns))
		pattern := "%" + strings.ToLower(p.Search) + "%"
		for _, column := range opts.SearchColumns {
			clauses = append(clauses, fmt.Sprintf("LOWER(%s) LIKE ?", column))
			args = append(args, pattern)
		}
		tx = tx.Where(strings.Join(clauses, " OR "), args...)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}

	find := tx.Offset((p.Page - 1) * p.Limit).Limit(p.Limit)
	if p.OrderBy != "" {
		find = find.Order(p.OrderBy)
	}
	if err := find.Find(dest).Error; err != nil {
		return nil, err
	}

	// An empty page must serialize as [], not null
	if v := reflect.ValueOf(dest).Elem(); v.Kind() == reflect.Slice && v.IsNil() {
		v.Set(reflect.MakeSlice(v.Type(), 0, 0))
	}

	return &Page{
		Data: dest,
		Meta: Meta{CurrentPage: p.Page, TotalPages: totalPages, TotalItems: total},
	}, nil
}
