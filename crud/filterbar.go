package crud

import (
	"slices"
	"strings"
)

// MatchMode chooses how the values of a multiselect filter combine.
type MatchMode string

const (
	MatchAny MatchMode = "OR"
	MatchAll MatchMode = "AND"
)

// ParseMatchMode maps user input to a mode, defaulting to MatchAny.
func ParseMatchMode(s string) MatchMode {
	if MatchMode(s) == MatchAll {
		return MatchAll
	}
	return MatchAny
}

// FilterBar is the editing state of the filter rows and their pending values.
// Pending values only reach the grid through Search.
type FilterBar struct {
	set     *FilterSet
	rows    []ActiveFilterRow
	pending Values
}

// NewFilterBar hydrates a bar from values.
func NewFilterBar(set *FilterSet, values Values) *FilterBar {
	fb := &FilterBar{set: set}
	fb.Hydrate(values)
	return fb
}

// Hydrate replaces the pending values and rebuilds the rows from them.
func (fb *FilterBar) Hydrate(values Values) {
	fb.pending = values.Clone()
	fb.rows = Initialize(fb.set, fb.pending)
}

func (fb *FilterBar) Set() *FilterSet { return fb.set }

// Rows returns the active rows in display order.
func (fb *FilterBar) Rows() []ActiveFilterRow {
	return slices.Clone(fb.rows)
}

// Pending returns a copy of the pending values.
func (fb *FilterBar) Pending() Values {
	return fb.pending.Clone()
}

// Value returns the pending value bound to a field key.
func (fb *FilterBar) Value(key string) []string {
	return fb.pending[key]
}

// CanAdd reports whether an unused filter is left.
func (fb *FilterBar) CanAdd() bool {
	return len(fb.rows) < fb.set.Len()
}

// CanRemove reports whether rows may be removed.
func (fb *FilterBar) CanRemove() bool {
	return len(fb.rows) > 1
}

// OptionDisabled reports whether key is bound to a row other than rowID.
func (fb *FilterBar) OptionDisabled(rowID int, key string) bool {
	for _, r := range fb.rows {
		if r.FieldKey == key && r.ID != rowID {
			return true
		}
	}
	return false
}

func (fb *FilterBar) Add() bool {
	var ok bool
	fb.rows, ok = AddRow(fb.rows, fb.set)
	return ok
}

// Remove drops a row and clears the pending value of its field.
func (fb *FilterBar) Remove(rowID int) bool {
	rows, removed, ok := RemoveRow(fb.rows, rowID)
	if !ok {
		return false
	}
	fb.rows = rows
	delete(fb.pending, removed)
	return true
}

// ChangeType rebinds a row and clears the pending value of its old field.
func (fb *FilterBar) ChangeType(rowID int, newKey string) bool {
	rows, previous, ok := ChangeRowType(fb.rows, fb.set, rowID, newKey)
	if !ok {
		return false
	}
	fb.rows = rows
	if previous != newKey {
		delete(fb.pending, previous)
	}
	return true
}

// SetValue records the pending value of the field bound to rowID.
func (fb *FilterBar) SetValue(rowID int, vals []string) bool {
	idx := slices.IndexFunc(fb.rows, func(r ActiveFilterRow) bool { return r.ID == rowID })
	if idx < 0 {
		return false
	}
	key := fb.rows[idx].FieldKey
	if spec, ok := fb.set.Get(key); ok && spec.Kind == FilterMultiSelect {
		vals = compactIDs(vals)
	}
	if len(vals) == 0 {
		delete(fb.pending, key)
		return true
	}
	fb.pending[key] = slices.Clone(vals)
	return true
}

// RemoveValue drops one selected id of a multiselect row.
func (fb *FilterBar) RemoveValue(rowID int, value string) bool {
	idx := slices.IndexFunc(fb.rows, func(r ActiveFilterRow) bool { return r.ID == rowID })
	if idx < 0 {
		return false
	}
	key := fb.rows[idx].FieldKey
	vals := slices.DeleteFunc(slices.Clone(fb.pending[key]), func(s string) bool { return s == value })
	if len(vals) == 0 {
		delete(fb.pending, key)
	} else {
		fb.pending[key] = vals
	}
	return true
}

// compactIDs drops blanks and repeated ids, keeping the selection order.
func compactIDs(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// Search returns the cleaned pending values to be committed.
func (fb *FilterBar) Search() Values {
	return Clean(fb.pending)
}
