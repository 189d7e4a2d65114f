package crud

// ColumnKind selects how a cell is rendered.
type ColumnKind int

const (
	ColumnText ColumnKind = iota
	// ColumnChip renders Value as one colored chip.
	ColumnChip
	// ColumnChips renders Items as a list of chips.
	ColumnChips
	// ColumnBool renders a yes/no chip.
	ColumnBool
)

// Column describes one grid column. Value, Tone and Items are pure
// projections of a row.
type Column struct {
	Field    string
	Header   string
	Sortable bool
	Kind     ColumnKind
	// Width is a css width, optional.
	Width string

	Value func(Row) string
	Tone  func(Row) string
	Items func(Row) []string
}

// Display returns the cell text of r.
func (c Column) Display(r Row) string {
	if c.Value != nil {
		return c.Value(r)
	}
	if c.Kind == ColumnBool {
		if r.Bool(c.Field) {
			return "Yes"
		}
		return "No"
	}
	return r.Str(c.Field)
}

// ChipTone returns the chip color of r.
func (c Column) ChipTone(r Row) string {
	if c.Tone != nil {
		return c.Tone(r)
	}
	if c.Kind == ColumnBool {
		if r.Bool(c.Field) {
			return "success"
		}
		return "secondary"
	}
	return "secondary"
}

// ChipItems returns the chip labels of r.
func (c Column) ChipItems(r Row) []string {
	if c.Items != nil {
		return c.Items(r)
	}
	out := make([]string, 0)
	for _, item := range r.List(c.Field) {
		out = append(out, item.Str("name"))
	}
	return out
}

// SkillTone maps a 0..100 level to a chip color band.
func SkillTone(level int) string {
	switch {
	case level >= 90:
		return "success"
	case level >= 70:
		return "primary"
	case level >= 50:
		return "info"
	case level >= 30:
		return "warning"
	default:
		return "danger"
	}
}
