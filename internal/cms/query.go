package cms

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Filter operators accepted by the CMS query API.
const (
	OpEq        = "$eq"
	OpEqi       = "$eqi"
	OpContains  = "$contains"
	OpContainsi = "$containsi"
	OpIn        = "$in"
	OpNotNull   = "$notNull"
)

type filter struct {
	field string
	op    string
	value interface{}
}

// Query builds the filter/populate/pagination query string for List calls.
// The zero value is usable; methods chain.
type Query struct {
	filters  []filter
	populate []string
	page     int
	pageSize int
	sort     string
}

// NewQuery creates an empty query.
func NewQuery() *Query {
	return &Query{}
}

// Filter adds a filters[field][op]=value predicate. Dotted fields address
// nested relations: "correos.email" becomes filters[correos][email][op].
func (q *Query) Filter(field, op string, value interface{}) *Query {
	q.filters = append(q.filters, filter{field: field, op: op, value: value})
	return q
}

// FilterEq adds an exact-match predicate.
func (q *Query) FilterEq(field string, value interface{}) *Query {
	return q.Filter(field, OpEq, value)
}

// Populate requests relation expansion for the given fields.
func (q *Query) Populate(fields ...string) *Query {
	q.populate = append(q.populate, fields...)
	return q
}

// Page sets pagination[page] and pagination[pageSize].
func (q *Query) Page(page, pageSize int) *Query {
	q.page = page
	q.pageSize = pageSize
	return q
}

// Sort sets the sort expression (e.g. "createdAt:desc").
func (q *Query) Sort(expr string) *Query {
	q.sort = expr
	return q
}

// Values encodes the query as URL parameters.
func (q *Query) Values() url.Values {
	values := url.Values{}
	if q == nil {
		return values
	}

	for _, f := range q.filters {
		key := "filters"
		for _, segment := range strings.Split(f.field, ".") {
			key += "[" + segment + "]"
		}
		values.Set(key+"["+f.op+"]", fmt.Sprintf("%v", f.value))
	}

	for i, field := range q.populate {
		values.Set(fmt.Sprintf("populate[%d]", i), field)
	}

	if q.page > 0 {
		values.Set("pagination[page]", strconv.Itoa(q.page))
	}
	if q.pageSize > 0 {
		values.Set("pagination[pageSize]", strconv.Itoa(q.pageSize))
	}
	if q.sort != "" {
		values.Set("sort", q.sort)
	}

	return values
}
