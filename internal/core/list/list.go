package list

import (
	"net/url"
	"strings"

	"github.com/gorilla/schema"

	"github.com/hauldesk/hauldesk/internal/core/crud"
)

// FilterAll is the sentinel a filter control reports when it is not
// constraining anything; it is excluded from queries.
const FilterAll = "all"

const (
	filterPrefix = "f."
	matchPrefix  = "m."
)

// Query is the decoded shape of a list request's query string. Filters come
// from f.<name> parameters, per-field partial matches from m.<name>.
type Query struct {
	Page    int    `schema:"page,default:1"`
	PerPage int    `schema:"size,default:20"`
	Search  string `schema:"search"`
	OrderBy string `schema:"order"`
	Desc    bool   `schema:"desc"`
	Filters map[string]string `schema:"-"`
	Match   map[string]string `schema:"-"`
}

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

func ParseQuery(values url.Values) (Query, error) {
	var q Query
	if err := decoder.Decode(&q, values); err != nil {
		return Query{}, err
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 || q.PerPage > 100 {
		q.PerPage = 20
	}

	q.Filters = make(map[string]string)
	q.Match = make(map[string]string)
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		switch {
		case strings.HasPrefix(key, filterPrefix):
			q.Filters[strings.TrimPrefix(key, filterPrefix)] = vals[0]
		case strings.HasPrefix(key, matchPrefix):
			q.Match[strings.TrimPrefix(key, matchPrefix)] = vals[0]
		}
	}
	return q, nil
}

// Params translates the query into store list parameters. Filters set to
// the "all" sentinel or empty are dropped, so switching a control back to
// "all" removes the constraint instead of matching the literal string.
// Matches outside the matchable set are dropped the same way filters are.
func (q Query) Params(filterable, matchable []string) crud.ListParams {
	params := crud.ListParams{
		Page:    q.Page,
		PerPage: q.PerPage,
		Search:  q.Search,
	}

	filters := make(map[string]any)
	for _, name := range filterable {
		value, ok := q.Filters[name]
		if !ok || value == "" || value == FilterAll {
			continue
		}
		filters[name] = value
	}
	if len(filters) > 0 {
		params.Filters = filters
	}

	match := make(map[string]string)
	for _, name := range matchable {
		if value, ok := q.Match[name]; ok && value != "" {
			match[name] = value
		}
	}
	if len(match) > 0 {
		params.Match = match
	}

	if q.OrderBy != "" {
		params.Order = &crud.Order{Key: q.OrderBy, Desc: q.Desc}
	}
	return params
}

// TotalPages computes the page count for a result set; at least 1 so
// pagination controls always have a valid page to sit on.
func TotalPages(total, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage keeps navigation within [1, totalPages].
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}
