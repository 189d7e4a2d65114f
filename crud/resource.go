package crud

import (
	"errors"
	"fmt"
	"strings"
)

// Resource is the complete configuration of one managed entity type. The
// page, grid, filter bar and dialog behave the same for every resource.
type Resource struct {
	// Key is the url segment, e.g. "skills".
	Key string
	// Title is the page heading, e.g. "Skills Management".
	Title string
	// Entity is the singular display name, e.g. "Skill".
	Entity string
	// Endpoint is the backend collection path, e.g. "/api/skills".
	Endpoint string

	Filters *FilterSet
	Columns []Column
	Form    *FormSpec

	// MatchToggle offers the AND/OR switch for multiselect filters.
	MatchToggle bool
}

// Validate reports configuration mistakes.
func (r *Resource) Validate() error {
	var errs []error
	if r.Key == "" || strings.Contains(r.Key, "/") {
		errs = append(errs, fmt.Errorf("invalid resource key %q", r.Key))
	}
	if !strings.HasPrefix(r.Endpoint, "/") && !strings.HasPrefix(r.Endpoint, "http") {
		errs = append(errs, fmt.Errorf("%s: endpoint must be a path or url", r.Key))
	}
	if len(r.Columns) == 0 {
		errs = append(errs, fmt.Errorf("%s: no columns", r.Key))
	}
	if r.Form == nil {
		errs = append(errs, fmt.Errorf("%s: no form", r.Key))
	} else {
		for _, f := range r.Form.Fields {
			if (f.Kind == FieldSelect || f.Kind == FieldMultiSelect) && f.Options == nil {
				errs = append(errs, fmt.Errorf("%s: field %s needs options", r.Key, f.Key))
			}
			if f.Kind == FieldPerOption {
				if per, ok := r.Form.Field(f.Per); !ok || per.Kind != FieldMultiSelect {
					errs = append(errs, fmt.Errorf("%s: field %s must follow a multiselect", r.Key, f.Key))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// FilterLookups returns the options sources of all select filters keyed by field key.
func (r *Resource) FilterLookups() map[string]*OptionsSource {
	out := make(map[string]*OptionsSource)
	for _, s := range r.Filters.Specs() {
		if s.Options != nil {
			out[s.FieldKey] = s.Options
		}
	}
	return out
}
