package crud

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mutation struct {
	method, endpoint, id string
	body                 any
}

type fakeMutator struct {
	calls []mutation
	err   error
}

func (m *fakeMutator) Create(_ context.Context, endpoint string, body any) error {
	m.calls = append(m.calls, mutation{"POST", endpoint, "", body})
	return m.err
}

func (m *fakeMutator) Update(_ context.Context, endpoint, id string, body any) error {
	m.calls = append(m.calls, mutation{"PUT", endpoint, id, body})
	return m.err
}

func (m *fakeMutator) Delete(_ context.Context, endpoint, id string) error {
	m.calls = append(m.calls, mutation{"DELETE", endpoint, id, nil})
	return m.err
}

func permissionForm() *FormSpec {
	return &FormSpec{
		Entity: "Permission",
		Fields: []FormField{
			{Key: "name", Label: "Permission name", Kind: FieldText, Rules: "required,permission_name",
				Transform: strings.ToUpper,
				Messages:  map[string]string{"permission_name": "Permission name must be uppercase with underscores only"}},
			{Key: "description", Label: "Description", Kind: FieldTextarea, Rules: "required"},
		},
	}
}

func roleForm() *FormSpec {
	return &FormSpec{
		Entity: "Role",
		Fields: []FormField{
			{Key: "name", Label: "Name", Kind: FieldText, Rules: "required"},
			{Key: "permissions", Label: "Permission", Kind: FieldMultiSelect, Relation: "permissions",
				Rules: "required,min=1", Options: &OptionsSource{Endpoint: "/api/permissions"}},
		},
	}
}

func userForm() *FormSpec {
	return &FormSpec{
		Entity: "User",
		Fields: []FormField{
			{Key: "username", Label: "Username", Kind: FieldText, Rules: "required"},
			{Key: "email", Label: "Email", Kind: FieldEmail, Rules: "required,email"},
			{Key: "password", Label: "Password", Kind: FieldPassword, Secret: true, CreateRules: "required,min=8"},
			{Key: "is_active", Label: "Active", Kind: FieldCheckbox, Default: "true"},
		},
	}
}

func translationForm() *FormSpec {
	return &FormSpec{
		Entity: "Translation",
		Fields: []FormField{
			{Key: "identifier", Label: "Identifier", Kind: FieldText, Rules: "required"},
			{Key: "languages", Label: "Language", Kind: FieldMultiSelect, Relation: "languages",
				Rules: "required,min=1", Options: &OptionsSource{Endpoint: "/api/languages"}},
			{Key: "translations", Label: "Translation", Kind: FieldPerOption, Per: "languages",
				PerKey: "language_id", PerSource: "translations", Rules: "required"},
		},
	}
}

func experienceForm() *FormSpec {
	return &FormSpec{
		Entity: "Experience",
		Fields: []FormField{
			{Key: "start_date", Label: "Start date", Kind: FieldDate, Rules: "required"},
			{Key: "end_date", Label: "End date", Kind: FieldDate},
			{Key: "current", Label: "Current position", Kind: FieldCheckbox},
			{Key: "order", Label: "Order", Kind: FieldNumber, Rules: "min=0", Default: "0"},
		},
		Check: func(v FormValues) map[string]string {
			errs := map[string]string{}
			end := v.Get("end_date")
			if v.Get("current") != "true" && end == "" {
				errs["end_date"] = "End date is required if not current position"
			}
			if end != "" && end < v.Get("start_date") {
				errs["end_date"] = "End date must be after start date"
			}
			return errs
		},
	}
}

func TestNewForm_CreateUsesDefaults(t *testing.T) {
	f := NewForm(userForm(), ModeCreate, Row{"username": "ignored"})

	assert.Equal(t, "", f.Values.Get("username"))
	assert.Equal(t, "true", f.Values.Get("is_active"))
	assert.Equal(t, "Create New User", f.Title())
	assert.Equal(t, "Create", f.SubmitLabel())
}

func TestNewForm_EditPrefills(t *testing.T) {
	record := Row{
		"id": float64(5), "username": "jane", "email": "jane@example.com",
		"password": "hash", "is_active": false,
	}
	f := NewForm(userForm(), ModeEdit, record)

	assert.Equal(t, "5", f.RecordID)
	assert.Equal(t, "jane", f.Values.Get("username"))
	assert.Equal(t, "", f.Values.Get("password"), "password is never pre-populated")
	assert.Equal(t, "false", f.Values.Get("is_active"))
}

func TestNewForm_RelationsBecomeIDs(t *testing.T) {
	record := Row{"id": float64(2), "name": "Editor", "permissions": []any{
		map[string]any{"id": float64(4), "name": "READ"},
		map[string]any{"id": float64(9), "name": "WRITE"},
	}}
	f := NewForm(roleForm(), ModeEdit, record)
	f.Options["permissions"] = []Option{{Value: "4", Label: "READ"}, {Value: "9", Label: "WRITE"}}

	assert.Equal(t, []string{"4", "9"}, f.Values["permissions"])
	assert.Equal(t, []Option{{"4", "READ"}, {"9", "WRITE"}}, f.SelectedOptions("permissions"))
	assert.Equal(t, map[string]any{"id": 2, "name": "Editor", "permissions": []any{4, 9}}, f.Body())
}

func TestNewForm_Reinitializes(t *testing.T) {
	spec := permissionForm()
	a := NewForm(spec, ModeEdit, Row{"id": 1, "name": "READ", "description": "read things"})
	a.Apply(url.Values{"description": {"changed"}})
	b := NewForm(spec, ModeEdit, Row{"id": 2, "name": "WRITE"})

	assert.Equal(t, "WRITE", b.Values.Get("name"))
	assert.Equal(t, "", b.Values.Get("description"), "no stale merge from the previous record")
}

func TestForm_ApplyTransforms(t *testing.T) {
	f := NewForm(permissionForm(), ModeCreate, nil)
	f.Apply(url.Values{"name": {"manage_users"}, "description": {"x"}})
	assert.Equal(t, "MANAGE_USERS", f.Values.Get("name"))
}

func TestValidate_Messages(t *testing.T) {
	v := NewValidator()

	f := NewForm(permissionForm(), ModeCreate, nil)
	f.Values.Set("name", "bad-name")
	assert.False(t, v.ValidateForm(f))
	assert.Equal(t, "Permission name must be uppercase with underscores only", f.Errors["name"])
	assert.Equal(t, "Description is required", f.Errors["description"])

	u := NewForm(userForm(), ModeCreate, nil)
	u.Values.Set("username", "  ")
	u.Values.Set("email", "nope")
	assert.False(t, v.ValidateForm(u))
	assert.Equal(t, "Username is required", u.Errors["username"])
	assert.Equal(t, "Email is invalid", u.Errors["email"])
	assert.Equal(t, "Password is required", u.Errors["password"])

	u.Mode = ModeEdit
	u.Values.Set("username", "jane")
	u.Values.Set("email", "jane@example.com")
	assert.True(t, v.ValidateForm(u), "password is optional on edit: %v", u.Errors)
}

func TestValidate_MultiselectAndPerOption(t *testing.T) {
	v := NewValidator()

	r := NewForm(roleForm(), ModeCreate, nil)
	r.Values.Set("name", "Editor")
	assert.False(t, v.ValidateForm(r))
	assert.Equal(t, "At least one permission must be selected", r.Errors["permissions"])

	tr := NewForm(translationForm(), ModeCreate, nil)
	tr.Options["languages"] = []Option{{Value: "1", Label: "English"}, {Value: "2", Label: "German"}}
	tr.Apply(url.Values{"identifier": {"greeting"}, "languages": {"1", "2"}, "translations.1": {"Hello"}})
	assert.False(t, v.ValidateForm(tr))
	assert.Equal(t, "Translation for German is required", tr.Errors["translations.2"])

	tr.Apply(url.Values{"identifier": {"greeting"}, "languages": {"1", "2"}, "translations.1": {"Hello"}, "translations.2": {"Hallo"}})
	require.True(t, v.ValidateForm(tr))
	assert.Equal(t, []map[string]any{
		{"language_id": 1, "text": "Hello"},
		{"language_id": 2, "text": "Hallo"},
	}, tr.Body()["translations"])
}

func TestValidate_CrossField(t *testing.T) {
	v := NewValidator()
	f := NewForm(experienceForm(), ModeCreate, nil)
	f.Apply(url.Values{"start_date": {"2023-05-01"}})

	assert.False(t, v.ValidateForm(f))
	assert.Equal(t, "End date is required if not current position", f.Errors["end_date"])

	f.Apply(url.Values{"start_date": {"2023-05-01"}, "end_date": {"2022-01-01"}})
	assert.False(t, v.ValidateForm(f))
	assert.Equal(t, "End date must be after start date", f.Errors["end_date"])

	f.Apply(url.Values{"start_date": {"2023-05-01"}, "current": {"true"}})
	assert.True(t, v.ValidateForm(f), "%v", f.Errors)
	assert.Nil(t, f.Body()["end_date"])
	assert.Equal(t, true, f.Body()["current"])
	assert.Equal(t, 0, f.Body()["order"])

	f.Apply(url.Values{"start_date": {"2023-05-01"}, "current": {"true"}, "order": {"-1"}})
	assert.False(t, v.ValidateForm(f))
	assert.Equal(t, "Order must be at least 0", f.Errors["order"])
}

func TestBody_PasswordOmittedWhenBlankOnEdit(t *testing.T) {
	f := NewForm(userForm(), ModeEdit, Row{"id": 3, "username": "u", "email": "u@x.io"})
	_, has := f.Body()["password"]
	assert.False(t, has)

	f.Apply(url.Values{"password": {"newsecret"}})
	assert.Equal(t, "newsecret", f.Body()["password"])
}

func TestSubmit_DeletePermission(t *testing.T) {
	m := &fakeMutator{}
	f := NewForm(permissionForm(), ModeDelete, Row{"id": float64(12), "name": "READ"})

	res := f.Submit(context.Background(), m, "/api/permissions", NewValidator())

	require.True(t, res.OK)
	require.Len(t, m.calls, 1)
	assert.Equal(t, mutation{"DELETE", "/api/permissions", "12", nil}, m.calls[0])
}

func TestSubmit_ErrorKeepsInput(t *testing.T) {
	m := &fakeMutator{err: &detailErr{detail: "in use"}}
	f := NewForm(permissionForm(), ModeDelete, Row{"id": 12, "name": "READ"})

	res := f.Submit(context.Background(), m, "/api/permissions", NewValidator())
	assert.False(t, res.OK)
	assert.Equal(t, "in use", res.Message)
	assert.Same(t, m.err, res.Err)
	assert.Equal(t, "in use", f.APIError)
	assert.Equal(t, "READ", f.Values.Get("name"))

	m.err = errors.New("connection reset")
	f2 := NewForm(permissionForm(), ModeCreate, nil)
	f2.Apply(url.Values{"name": {"READ"}, "description": {"d"}})
	res = f2.Submit(context.Background(), m, "/api/permissions", NewValidator())
	assert.Equal(t, "Failed to create permission", res.Message)
}

func TestSubmit_InvalidDoesNotCall(t *testing.T) {
	m := &fakeMutator{}
	f := NewForm(permissionForm(), ModeCreate, nil)

	res := f.Submit(context.Background(), m, "/api/permissions", NewValidator())
	assert.True(t, res.Invalid)
	assert.Empty(t, m.calls)
}

func TestMode(t *testing.T) {
	assert.Equal(t, "PUT", ModeEdit.Method())
	assert.Equal(t, "DELETE", ModeDelete.Method())
	assert.Equal(t, "POST", ModeCreate.Method())
}

func TestNewValidator_RuleRegistration(t *testing.T) {
	assert.NotPanics(t, func() { NewValidator() })

	_, err := newValidator(map[string]validator.Func{"permission_name": nil})
	assert.ErrorContains(t, err, `register rule "permission_name"`)
}
