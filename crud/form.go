package crud

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Mode is the purpose of an open dialog.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
	ModeDelete Mode = "delete"
)

// Method returns the HTTP verb used to submit the mode.
func (m Mode) Method() string {
	switch m {
	case ModeEdit:
		return "PUT"
	case ModeDelete:
		return "DELETE"
	default:
		return "POST"
	}
}

// FieldKind is the input kind of a form field.
type FieldKind string

const (
	FieldText        FieldKind = "text"
	FieldEmail       FieldKind = "email"
	FieldPassword    FieldKind = "password"
	FieldTextarea    FieldKind = "textarea"
	FieldNumber      FieldKind = "number"
	FieldCheckbox    FieldKind = "checkbox"
	FieldDate        FieldKind = "date"
	FieldSelect      FieldKind = "select"
	FieldMultiSelect FieldKind = "multiselect"
	// FieldPerOption renders one text input per option selected in the
	// multiselect named by Per.
	FieldPerOption FieldKind = "peroption"
)

// FormField declares one dialog input.
type FormField struct {
	Key         string
	Label       string
	Kind        FieldKind
	Placeholder string
	Help        string
	Default     string

	// Rules are validator tags, e.g. "required,max=5".
	Rules string
	// CreateRules replace Rules in create mode when set.
	CreateRules string
	// Messages override the error message per failing tag. %s is replaced by
	// the option label for FieldPerOption.
	Messages map[string]string

	// Options loads the choices of select kinds.
	Options *OptionsSource
	// Relation is the record key holding the related objects of a multiselect.
	// Their ids become the field value.
	Relation string

	// Per names the multiselect field a FieldPerOption field belongs to.
	Per string
	// PerKey is the id key of each encoded per option entry.
	PerKey string
	// PerSource is the record key listing existing per option entries.
	PerSource string

	// Transform rewrites text input as it arrives, e.g. strings.ToUpper.
	Transform func(string) string

	// Secret fields are never pre-populated and omitted from updates when blank.
	Secret bool

	Min, Max, Step int
}

func (f FormField) rules(mode Mode) string {
	if mode == ModeCreate && f.CreateRules != "" {
		return f.CreateRules
	}
	return f.Rules
}

// FormSpec declares the dialog of one entity.
type FormSpec struct {
	// Entity is the singular display name, e.g. "Skill".
	Entity string
	Fields []FormField
	// Check adds cross field errors keyed by field key.
	Check func(FormValues) map[string]string
	// Encode adjusts the wire body after the generic encoding.
	Encode func(body map[string]any, v FormValues, mode Mode)
}

// Field returns the declared field for key.
func (s *FormSpec) Field(key string) (FormField, bool) {
	i := slices.IndexFunc(s.Fields, func(f FormField) bool { return f.Key == key })
	if i < 0 {
		return FormField{}, false
	}
	return s.Fields[i], true
}

// Lookups returns the options sources of all select fields keyed by field key.
func (s *FormSpec) Lookups() map[string]*OptionsSource {
	out := make(map[string]*OptionsSource)
	for _, f := range s.Fields {
		if f.Options != nil {
			out[f.Key] = f.Options
		}
	}
	return out
}

// FormValues holds the raw input of a dialog. Per option inputs are stored
// under "<key>.<option value>".
type FormValues map[string][]string

func (v FormValues) Get(key string) string {
	if vals := v[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func (v FormValues) Set(key, value string) {
	v[key] = []string{value}
}

// PerOptionKey is the value key of the per option input for option.
func PerOptionKey(key, option string) string {
	return key + "." + option
}

// Form is one open dialog.
type Form struct {
	Spec     *FormSpec
	Mode     Mode
	RecordID string
	Values   FormValues
	Errors   map[string]string
	// APIError is the message of the last failed submission.
	APIError string
	// Options are the loaded lookups keyed by field key.
	Options map[string][]Option
	// LookupError is set when a related listing could not be loaded.
	LookupError string
}

// NewForm initializes a dialog. Edit and delete take every value from record,
// create starts from the declared defaults.
func NewForm(spec *FormSpec, mode Mode, record Row) *Form {
	f := &Form{
		Spec:    spec,
		Mode:    mode,
		Values:  make(FormValues, len(spec.Fields)),
		Errors:  map[string]string{},
		Options: map[string][]Option{},
	}
	if mode == ModeCreate || record == nil {
		for _, fld := range spec.Fields {
			if fld.Kind == FieldPerOption || fld.Kind == FieldMultiSelect {
				continue
			}
			def := fld.Default
			if fld.Kind == FieldCheckbox && def == "" {
				def = "false"
			}
			f.Values.Set(fld.Key, def)
		}
		return f
	}

	f.RecordID = record.ID()
	for _, fld := range spec.Fields {
		switch fld.Kind {
		case FieldPassword:
			f.Values.Set(fld.Key, "")
		case FieldCheckbox:
			f.Values.Set(fld.Key, strconv.FormatBool(record.Bool(fld.Key)))
		case FieldDate:
			d := record.Str(fld.Key)
			if len(d) > 10 {
				d = d[:10]
			}
			f.Values.Set(fld.Key, d)
		case FieldMultiSelect:
			var ids []string
			if fld.Relation != "" {
				for _, rel := range record.List(fld.Relation) {
					ids = append(ids, rel.ID())
				}
			}
			if len(ids) == 0 {
				ids = record.Strings(fld.Key)
			}
			f.Values[fld.Key] = ids
		case FieldPerOption:
			for _, entry := range record.List(fld.PerSource) {
				f.Values.Set(PerOptionKey(fld.Key, entry.Str(fld.PerKey)), entry.Str("text"))
			}
		default:
			if fld.Secret {
				f.Values.Set(fld.Key, "")
				continue
			}
			f.Values.Set(fld.Key, record.Str(fld.Key))
		}
	}
	return f
}

// Title returns the dialog title, e.g. "Edit Skill".
func (f *Form) Title() string {
	switch f.Mode {
	case ModeEdit:
		return "Edit " + f.Spec.Entity
	case ModeDelete:
		return "Delete " + f.Spec.Entity
	default:
		return "Create New " + f.Spec.Entity
	}
}

// SubmitLabel returns the caption of the submit button.
func (f *Form) SubmitLabel() string {
	switch f.Mode {
	case ModeEdit:
		return "Update"
	case ModeDelete:
		return "Delete"
	default:
		return "Create"
	}
}

// Apply replaces the form input with a posted form. Missing inputs become
// empty. Delete dialogs ignore input.
func (f *Form) Apply(posted url.Values) {
	if f.Mode == ModeDelete {
		return
	}
	for _, fld := range f.Spec.Fields {
		switch fld.Kind {
		case FieldCheckbox:
			f.Values.Set(fld.Key, strconv.FormatBool(posted.Has(fld.Key) && posted.Get(fld.Key) != "false"))
		case FieldMultiSelect:
			f.Values[fld.Key] = Clean(Values{fld.Key: posted[fld.Key]})[fld.Key]
		case FieldPerOption:
			prefix := fld.Key + "."
			for k := range f.Values {
				if strings.HasPrefix(k, prefix) {
					delete(f.Values, k)
				}
			}
			for k, vals := range posted {
				if strings.HasPrefix(k, prefix) && len(vals) > 0 {
					f.Values.Set(k, vals[0])
				}
			}
		default:
			val := posted.Get(fld.Key)
			if fld.Transform != nil {
				val = fld.Transform(val)
			}
			f.Values.Set(fld.Key, val)
		}
	}
}

// SelectedOptions returns the options currently selected in a multiselect field.
func (f *Form) SelectedOptions(key string) []Option {
	sel := f.Values[key]
	out := make([]Option, 0, len(sel))
	for _, id := range sel {
		label := id
		if i := slices.IndexFunc(f.Options[key], func(o Option) bool { return o.Value == id }); i >= 0 {
			label = f.Options[key][i].Label
		}
		out = append(out, Option{Value: id, Label: label})
	}
	return out
}

// Body encodes the form as JSON body. Delete dialogs have no body.
func (f *Form) Body() map[string]any {
	if f.Mode == ModeDelete {
		return nil
	}
	body := make(map[string]any, len(f.Spec.Fields)+1)
	for _, fld := range f.Spec.Fields {
		val := f.Values.Get(fld.Key)
		switch fld.Kind {
		case FieldNumber:
			n, _ := strconv.Atoi(strings.TrimSpace(val))
			body[fld.Key] = n
		case FieldCheckbox:
			body[fld.Key] = val == "true"
		case FieldDate:
			if val == "" {
				body[fld.Key] = nil
			} else {
				body[fld.Key] = val
			}
		case FieldSelect:
			body[fld.Key] = wireID(val)
		case FieldMultiSelect:
			ids := make([]any, 0, len(f.Values[fld.Key]))
			for _, id := range f.Values[fld.Key] {
				ids = append(ids, wireID(id))
			}
			body[fld.Key] = ids
		case FieldPerOption:
			entries := make([]map[string]any, 0)
			for _, id := range f.Values[fld.Per] {
				entries = append(entries, map[string]any{
					fld.PerKey: wireID(id),
					"text":     f.Values.Get(PerOptionKey(fld.Key, id)),
				})
			}
			body[fld.Key] = entries
		default:
			if fld.Secret && val == "" && f.Mode == ModeEdit {
				continue
			}
			body[fld.Key] = val
		}
	}
	if f.Mode == ModeEdit && f.RecordID != "" {
		body["id"] = wireID(f.RecordID)
	}
	if f.Spec.Encode != nil {
		f.Spec.Encode(body, f.Values, f.Mode)
	}
	return body
}

// wireID sends numeric ids as numbers, anything else as string and blank as null.
func wireID(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}

// Mutator performs the create, update and delete calls of a dialog.
type Mutator interface {
	Create(ctx context.Context, endpoint string, body any) error
	Update(ctx context.Context, endpoint, id string, body any) error
	Delete(ctx context.Context, endpoint, id string) error
}

// MutationResult is the outcome of a submission.
type MutationResult struct {
	OK bool
	// Invalid is set when validation blocked the submission.
	Invalid bool
	Message string
	// Err is the mutation error behind Message.
	Err error
}

// Submit validates and performs the mutation. On failure the form keeps its
// input and carries the error for display.
func (f *Form) Submit(ctx context.Context, m Mutator, endpoint string, v *Validator) MutationResult {
	f.APIError = ""
	if f.Mode != ModeDelete && !v.ValidateForm(f) {
		return MutationResult{Invalid: true}
	}

	var err error
	switch f.Mode {
	case ModeCreate:
		err = m.Create(ctx, endpoint, f.Body())
	case ModeEdit:
		err = m.Update(ctx, endpoint, f.RecordID, f.Body())
	case ModeDelete:
		err = m.Delete(ctx, endpoint, f.RecordID)
	default:
		err = fmt.Errorf("unknown mode %q", f.Mode)
	}
	if err != nil {
		f.APIError = MutationErrorMessage(err, f.Mode, f.Spec.Entity)
		return MutationResult{Message: f.APIError, Err: err}
	}
	return MutationResult{OK: true}
}

// MutationErrorMessage prefers the backend detail and falls back to
// "Failed to <mode> <entity>".
func MutationErrorMessage(err error, mode Mode, entity string) string {
	var d interface{ Detail() string }
	if errors.As(err, &d) && d.Detail() != "" {
		return d.Detail()
	}
	return fmt.Sprintf("Failed to %s %s", mode, strings.ToLower(entity))
}
