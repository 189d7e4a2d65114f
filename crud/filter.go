package crud

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// FilterKind is the input kind of a filter.
type FilterKind string

const (
	FilterText        FilterKind = "text"
	FilterSelect      FilterKind = "select"
	FilterMultiSelect FilterKind = "multiselect"
)

// Operator returns the wire operator used for the kind.
func (k FilterKind) Operator() string {
	if k == FilterText {
		return "contains"
	}
	return "equals"
}

// OptionsSource describes where select options are loaded from.
type OptionsSource struct {
	// Endpoint is listed without paging.
	Endpoint string
	// Label formats an option label. Defaults to the "name" field.
	Label func(Row) string
}

// Options converts listed records into options.
func (s *OptionsSource) Options(rows []Row) []Option {
	out := make([]Option, 0, len(rows))
	for _, r := range rows {
		label := r.Str("name")
		if s.Label != nil {
			label = s.Label(r)
		}
		out = append(out, Option{Value: r.ID(), Label: label})
	}
	return out
}

// FilterSpec declares one filterable field.
type FilterSpec struct {
	FieldKey    string
	Label       string
	Kind        FilterKind
	Placeholder string
	// Options is required for select kinds.
	Options *OptionsSource
}

// FilterSet is an ordered collection of filter specs with unique field keys.
type FilterSet struct {
	specs []FilterSpec
	index map[string]int
}

// NewFilterSet validates and orders the given specs.
func NewFilterSet(specs ...FilterSpec) (*FilterSet, error) {
	fs := &FilterSet{specs: specs, index: make(map[string]int, len(specs))}
	for i, s := range specs {
		if s.FieldKey == "" {
			return nil, fmt.Errorf("filter %d has no field key", i)
		}
		if _, dup := fs.index[s.FieldKey]; dup {
			return nil, fmt.Errorf("duplicate filter field key %q", s.FieldKey)
		}
		if s.Kind != FilterText && s.Options == nil {
			return nil, fmt.Errorf("filter %q needs an options source", s.FieldKey)
		}
		fs.index[s.FieldKey] = i
	}
	return fs, nil
}

// MustFilterSet is like NewFilterSet but panics on invalid declarations.
func MustFilterSet(specs ...FilterSpec) *FilterSet {
	fs, err := NewFilterSet(specs...)
	if err != nil {
		panic(err)
	}
	return fs
}

// Specs returns the specs in declaration order.
func (fs *FilterSet) Specs() []FilterSpec {
	if fs == nil {
		return nil
	}
	return fs.specs
}

// Len returns the number of declared filters.
func (fs *FilterSet) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.specs)
}

// Get returns the spec for key.
func (fs *FilterSet) Get(key string) (FilterSpec, bool) {
	if fs == nil {
		return FilterSpec{}, false
	}
	i, ok := fs.index[key]
	if !ok {
		return FilterSpec{}, false
	}
	return fs.specs[i], true
}

// Values maps filter field keys to their values. Text and select filters hold
// one value, multiselect filters hold the selected ids.
type Values map[string][]string

// Clone returns a deep copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, vals := range v {
		out[k] = slices.Clone(vals)
	}
	return out
}

// Equal reports whether both maps hold the same values.
func (v Values) Equal(o Values) bool {
	return maps.EqualFunc(v, o, slices.Equal[[]string])
}

// IsEmptyValue reports whether a filter value counts as "no value".
func IsEmptyValue(vals []string) bool {
	for _, s := range vals {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

// Clean trims text values and drops every entry whose value is empty.
// The result always contains only non empty values.
func Clean(v Values) Values {
	out := make(Values, len(v))
	for k, vals := range v {
		kept := make([]string, 0, len(vals))
		for _, s := range vals {
			if s = strings.TrimSpace(s); s != "" {
				kept = append(kept, s)
			}
		}
		if len(kept) > 0 {
			out[k] = kept
		}
	}
	return out
}

// ActiveFilterRow binds one visible filter row to a field key.
type ActiveFilterRow struct {
	ID       int
	FieldKey string
}

// Initialize builds the rows for the given values: one row per spec with a
// non empty value, ids 1..N in declaration order. Without any value it yields a
// single row bound to the first spec. An empty set yields no rows.
func Initialize(set *FilterSet, initial Values) []ActiveFilterRow {
	rows := make([]ActiveFilterRow, 0, set.Len())
	for _, s := range set.Specs() {
		if !IsEmptyValue(initial[s.FieldKey]) {
			rows = append(rows, ActiveFilterRow{ID: len(rows) + 1, FieldKey: s.FieldKey})
		}
	}
	if len(rows) == 0 && set.Len() > 0 {
		rows = append(rows, ActiveFilterRow{ID: 1, FieldKey: set.Specs()[0].FieldKey})
	}
	return rows
}

// AddRow appends a row bound to the first spec not used by any row. The new id
// is one more than the largest existing id. ok is false when all specs are in use.
func AddRow(rows []ActiveFilterRow, set *FilterSet) ([]ActiveFilterRow, bool) {
	for _, s := range set.Specs() {
		if rowUsing(rows, s.FieldKey) >= 0 {
			continue
		}
		maxID := 0
		for _, r := range rows {
			maxID = max(maxID, r.ID)
		}
		out := append(slices.Clone(rows), ActiveFilterRow{ID: maxID + 1, FieldKey: s.FieldKey})
		return out, true
	}
	return rows, false
}

// RemoveRow removes the row with rowID. The last remaining row is never removed.
// removed is the field key of the dropped row.
func RemoveRow(rows []ActiveFilterRow, rowID int) (out []ActiveFilterRow, removed string, ok bool) {
	if len(rows) <= 1 {
		return rows, "", false
	}
	idx := slices.IndexFunc(rows, func(r ActiveFilterRow) bool { return r.ID == rowID })
	if idx < 0 {
		return rows, "", false
	}
	removed = rows[idx].FieldKey
	return slices.Delete(slices.Clone(rows), idx, idx+1), removed, true
}

// ChangeRowType rebinds a row to newKey. It is rejected when newKey is unknown
// or bound to a different row. previous is the key the row was bound to.
func ChangeRowType(rows []ActiveFilterRow, set *FilterSet, rowID int, newKey string) (out []ActiveFilterRow, previous string, ok bool) {
	if _, known := set.Get(newKey); !known {
		return rows, "", false
	}
	idx := slices.IndexFunc(rows, func(r ActiveFilterRow) bool { return r.ID == rowID })
	if idx < 0 {
		return rows, "", false
	}
	if other := rowUsing(rows, newKey); other >= 0 && other != idx {
		return rows, "", false
	}
	previous = rows[idx].FieldKey
	out = slices.Clone(rows)
	out[idx].FieldKey = newKey
	return out, previous, true
}

func rowUsing(rows []ActiveFilterRow, key string) int {
	return slices.IndexFunc(rows, func(r ActiveFilterRow) bool { return r.FieldKey == key })
}
