package crud

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var permissionNameRE = regexp.MustCompile(`^[A-Z_]+$`)

// Validator checks dialog input against the rules declared on each field.
type Validator struct {
	v *validator.Validate
}

// customRules are the rules the console adds to the validator's built-ins.
var customRules = map[string]validator.Func{
	"permission_name": func(fl validator.FieldLevel) bool {
		return permissionNameRE.MatchString(fl.Field().String())
	},
}

// NewValidator returns a validator with the console's custom rules
// registered. It panics when a rule cannot be registered.
func NewValidator() *Validator {
	v, err := newValidator(customRules)
	if err != nil {
		panic(err)
	}
	return v
}

func newValidator(rules map[string]validator.Func) (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register rule %q: %w", tag, err)
		}
	}
	return &Validator{v: v}, nil
}

// ValidateForm fills f.Errors and reports whether the input is valid.
func (val *Validator) ValidateForm(f *Form) bool {
	f.Errors = map[string]string{}
	for _, fld := range f.Spec.Fields {
		rules := fld.rules(f.Mode)
		switch fld.Kind {
		case FieldPerOption:
			if rules == "" {
				continue
			}
			for _, opt := range f.SelectedOptions(fld.Per) {
				key := PerOptionKey(fld.Key, opt.Value)
				if tag := val.check(strings.TrimSpace(f.Values.Get(key)), rules); tag != "" {
					f.Errors[key] = fieldMessage(fld, rules, tag, opt.Label)
				}
			}
			continue
		case FieldMultiSelect:
			if rules == "" {
				continue
			}
			if tag := val.check(f.Values[fld.Key], rules); tag != "" {
				f.Errors[fld.Key] = fieldMessage(fld, rules, tag, "")
			}
			continue
		}
		if rules == "" {
			continue
		}
		raw := strings.TrimSpace(f.Values.Get(fld.Key))
		var value any = raw
		if fld.Kind == FieldNumber {
			if raw == "" && !strings.Contains(rules, "required") {
				continue
			}
			n, err := strconv.Atoi(raw)
			if err != nil {
				f.Errors[fld.Key] = fld.Label + " must be a number"
				continue
			}
			value = n
		}
		if tag := val.check(value, rules); tag != "" {
			f.Errors[fld.Key] = fieldMessage(fld, rules, tag, "")
		}
	}
	if f.Spec.Check != nil {
		for k, msg := range f.Spec.Check(f.Values) {
			if _, seen := f.Errors[k]; !seen {
				f.Errors[k] = msg
			}
		}
	}
	return len(f.Errors) == 0
}

// check returns the first failing tag, or "" when value passes.
func (val *Validator) check(value any, rules string) string {
	err := val.v.Var(value, rules)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Tag()
	}
	return "invalid"
}

func fieldMessage(fld FormField, rules, tag, option string) string {
	if msg, ok := fld.Messages[tag]; ok {
		if strings.Contains(msg, "%s") {
			return fmt.Sprintf(msg, option)
		}
		return msg
	}
	param := ruleParam(rules, tag)
	switch tag {
	case "required":
		if fld.Kind == FieldMultiSelect {
			return "At least one " + strings.ToLower(fld.Label) + " must be selected"
		}
		if fld.Kind == FieldPerOption {
			return fmt.Sprintf("%s for %s is required", fld.Label, option)
		}
		return fld.Label + " is required"
	case "min":
		if fld.Kind == FieldMultiSelect {
			return "At least one " + strings.ToLower(fld.Label) + " must be selected"
		}
		if fld.Kind == FieldNumber {
			return fmt.Sprintf("%s must be at least %s", fld.Label, param)
		}
		return fmt.Sprintf("%s must be at least %s characters", fld.Label, param)
	case "max":
		if fld.Kind == FieldNumber {
			return fmt.Sprintf("%s must be at most %s", fld.Label, param)
		}
		return fmt.Sprintf("%s must be %s characters or less", fld.Label, param)
	case "email":
		return fld.Label + " is invalid"
	case "datetime":
		return fld.Label + " must be a valid date"
	default:
		return fld.Label + " is invalid"
	}
}

// ruleParam returns the parameter of tag in a rule string, e.g. "5" for max=5.
func ruleParam(rules, tag string) string {
	for part := range strings.SplitSeq(rules, ",") {
		if name, param, ok := strings.Cut(part, "="); ok && name == tag {
			return param
		}
	}
	return ""
}
