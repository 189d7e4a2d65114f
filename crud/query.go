package crud

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Pagination is 0-based. The wire page is 1-based.
type Pagination struct {
	Page     int
	PageSize int
}

// SortDirection is "asc" or "desc".
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortKey orders the listing by one field.
type SortKey struct {
	Field     string
	Direction SortDirection
}

// SortState holds at most one key.
type SortState []SortKey

// Primary returns the first sort key if any.
func (s SortState) Primary() (SortKey, bool) {
	if len(s) == 0 {
		return SortKey{}, false
	}
	return s[0], true
}

// Toggle cycles a column through ascending, descending and unsorted.
func (s SortState) Toggle(field string) SortState {
	cur, ok := s.Primary()
	switch {
	case !ok || cur.Field != field:
		return SortState{{Field: field, Direction: SortAsc}}
	case cur.Direction == SortAsc:
		return SortState{{Field: field, Direction: SortDesc}}
	default:
		return nil
	}
}

// Param is one query parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered parameter list. Unlike url.Values it keeps the
// insertion order, so filter triples stay interleaved.
type Params []Param

func (p Params) Add(key, value string) Params {
	return append(p, Param{Key: key, Value: value})
}

// Get returns all values of key in order.
func (p Params) Get(key string) []string {
	var out []string
	for _, kv := range p {
		if kv.Key == key {
			out = append(out, kv.Value)
		}
	}
	return out
}

// Encode renders p as query string.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}

// Query is the complete listing request of a grid.
type Query struct {
	Pagination Pagination
	Sort       SortState
	Filters    Values
	Match      MatchMode
}

// Params builds the wire parameters of q. set decides the operator per field;
// fields not in set are sent with "contains".
func (q Query) Params(set *FilterSet) Params {
	p := make(Params, 0, 8)
	p = p.Add("page", strconv.Itoa(q.Pagination.Page+1))
	p = p.Add("pageSize", strconv.Itoa(q.Pagination.PageSize))
	if key, ok := q.Sort.Primary(); ok {
		p = p.Add("sortField", key.Field)
		p = p.Add("sortOrder", string(key.Direction))
	}

	filters := Clean(q.Filters)
	var multi bool
	emit := func(key string, kind FilterKind) {
		vals := filters[key]
		if kind != FilterMultiSelect {
			vals = vals[:min(len(vals), 1)]
		} else if len(vals) > 0 {
			multi = true
		}
		for _, v := range vals {
			p = p.Add("filterField", key)
			p = p.Add("filterValue", v)
			p = p.Add("filterOperator", kind.Operator())
		}
	}
	for _, s := range set.Specs() {
		emit(s.FieldKey, s.Kind)
	}
	var extra []string
	for key := range filters {
		if _, known := set.Get(key); !known {
			extra = append(extra, key)
		}
	}
	slices.Sort(extra)
	for _, key := range extra {
		emit(key, FilterText)
	}

	if multi && q.Match == MatchAll {
		p = p.Add("filterCondition", string(MatchAll))
	}
	return p
}
