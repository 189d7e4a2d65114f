package crud

import (
	"fmt"
	"strconv"
	"strings"
)

// Row is one backend record as decoded from JSON. Rows carry a stable "id".
type Row map[string]any

// Listing is the normalized paged listing envelope.
type Listing struct {
	Items []Row `json:"items"`
	Total int   `json:"total"`
}

// Option is one selectable value of a select input.
type Option struct {
	Value string
	Label string
}

// ID returns the record id as string, empty when missing.
func (r Row) ID() string {
	return Stringify(r["id"])
}

// Lookup resolves a dotted path through nested objects, e.g. "section.title".
func (r Row) Lookup(path string) any {
	var cur any = map[string]any(r)
	for part := range strings.SplitSeq(path, ".") {
		switch m := cur.(type) {
		case map[string]any:
			cur = m[part]
		case Row:
			cur = m[part]
		default:
			return nil
		}
	}
	return cur
}

// Str returns the value at path formatted as string.
func (r Row) Str(path string) string {
	return Stringify(r.Lookup(path))
}

// Int returns the value at path as int. ok is false for missing or non numeric values.
func (r Row) Int(path string) (int, bool) {
	s := r.Str(path)
	if s == "" {
		return 0, false
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

// Bool returns the value at path as bool.
func (r Row) Bool(path string) bool {
	switch v := r.Lookup(path).(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// List returns the objects stored at path. Non object entries are skipped.
func (r Row) List(path string) []Row {
	raw, ok := r.Lookup(path).([]any)
	if !ok {
		return nil
	}
	out := make([]Row, 0, len(raw))
	for _, item := range raw {
		switch m := item.(type) {
		case map[string]any:
			out = append(out, Row(m))
		case Row:
			out = append(out, m)
		}
	}
	return out
}

// Strings returns the scalar values stored at path as strings.
func (r Row) Strings(path string) []string {
	raw, ok := r.Lookup(path).([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s := Stringify(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Stringify formats decoded JSON scalars. Objects and lists format as empty string.
func Stringify(v any) string {
	switch tt := v.(type) {
	case nil:
		return ""
	case string:
		return tt
	case bool:
		return strconv.FormatBool(tt)
	case int:
		return strconv.Itoa(tt)
	case int64:
		return strconv.FormatInt(tt, 10)
	case float64:
		return strconv.FormatFloat(tt, 'f', -1, 64)
	case map[string]any, []any, Row:
		return ""
	case fmt.Stringer:
		return tt.String()
	default:
		return fmt.Sprint(tt)
	}
}
