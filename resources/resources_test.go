package resources

import (
	"context"
	"net/url"
	"testing"

	"github.com/Kellerman81/go_portfolio_admin/apperrors"
	"github.com/Kellerman81/go_portfolio_admin/crud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	method, id string
	body       any
}

func (r *recorder) Create(_ context.Context, _ string, body any) error {
	r.method, r.body = "POST", body
	return nil
}

func (r *recorder) Update(_ context.Context, _, id string, body any) error {
	r.method, r.id, r.body = "PUT", id, body
	return nil
}

func (r *recorder) Delete(_ context.Context, _, id string) error {
	r.method, r.id = "DELETE", id
	return nil
}

func mustGet(t *testing.T, key string) *crud.Resource {
	t.Helper()
	reg, err := New()
	require.NoError(t, err)
	res, ok := reg.Get(key)
	require.True(t, ok, key)
	return res
}

func TestRegistry(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)

	var keys []string
	for _, r := range reg.All() {
		keys = append(keys, r.Key)
		assert.Equal(t, "/api/"+r.Key, r.Endpoint)
		assert.Equal(t, r.Entity, r.Form.Entity)
	}
	assert.Equal(t, []string{
		"users", "roles", "permissions", "languages", "translations",
		"portfolios", "sections", "experiences", "projects", "categories", "skills",
	}, keys)

	_, ok := reg.Get("nope")
	assert.False(t, ok)
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	_, err := build(skills(), skills())
	assert.ErrorContains(t, err, `duplicate resource "skills"`)
	assert.True(t, apperrors.IsClass(err, apperrors.ErrClassConfig))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Meta Title", label("meta_title"))
	assert.Equal(t, "Section", label("section_id"))
	assert.Equal(t, "Name", label("name"))
	assert.Equal(t, "1 Permission", plural(1, "Permission"))
	assert.Equal(t, "0 Permissions", plural(0, "Permission"))
}

func TestDerivedColumns(t *testing.T) {
	cell := func(res *crud.Resource, field string, r crud.Row) string {
		for _, c := range res.Columns {
			if c.Field == field {
				return c.Display(r)
			}
		}
		t.Fatalf("%s has no column %s", res.Key, field)
		return ""
	}

	exp := mustGet(t, "experiences")
	assert.Equal(t, "2020-01-01 - Present", cell(exp, "period", crud.Row{"start_date": "2020-01-01T00:00:00"}))
	assert.Equal(t, "2020-01-01 - 2021-06-30", cell(exp, "period", crud.Row{"start_date": "2020-01-01", "end_date": "2021-06-30"}))

	sec := mustGet(t, "sections")
	assert.Equal(t, "Main", cell(sec, "portfolio", crud.Row{"portfolio": map[string]any{"title": "Main"}}))
	assert.Empty(t, cell(sec, "portfolio", crud.Row{}))

	rolesRes := mustGet(t, "roles")
	assert.Equal(t, "2 Permissions", cell(rolesRes, "permissions", crud.Row{"permissions": []any{
		map[string]any{"id": 1.0}, map[string]any{"id": 2.0},
	}}))

	lang := mustGet(t, "languages")
	assert.Equal(t, "Yes", cell(lang, "is_default", crud.Row{"is_default": true}))

	tr := mustGet(t, "translations")
	var chips []string
	for _, c := range tr.Columns {
		if c.Field == "languages" {
			chips = c.ChipItems(crud.Row{"languages": []any{map[string]any{"name": "English", "code": "en"}}})
		}
	}
	assert.Equal(t, []string{"English (en)"}, chips)

	sk := mustGet(t, "skills")
	for _, c := range sk.Columns {
		if c.Field == "level" {
			r := crud.Row{"level": 85.0}
			assert.Equal(t, "85", c.Display(r))
			assert.Equal(t, "primary", c.ChipTone(r))
		}
	}
}

func TestSkillForm(t *testing.T) {
	sk := mustGet(t, "skills")
	form := crud.NewForm(sk.Form, crud.ModeCreate, nil)
	assert.Equal(t, "50", form.Values.Get("level"))

	form.Apply(url.Values{"name": {"Go"}, "level": {"120"}})
	v := crud.NewValidator()
	assert.False(t, v.ValidateForm(form))
	assert.Equal(t, "Level must be at most 100", form.Errors["level"])

	rec := &recorder{}
	form.Apply(url.Values{"name": {"Go"}, "level": {"95"}})
	res := form.Submit(context.Background(), rec, sk.Endpoint, v)
	require.True(t, res.OK)
	assert.Equal(t, map[string]any{"name": "Go", "level": 95, "description": ""}, rec.body)
}

func TestPermissionForm(t *testing.T) {
	p := mustGet(t, "permissions")
	form := crud.NewForm(p.Form, crud.ModeCreate, nil)
	v := crud.NewValidator()

	form.Apply(url.Values{"name": {"manage users"}, "description": {"x"}})
	assert.Equal(t, "MANAGE USERS", form.Values.Get("name"))
	assert.False(t, v.ValidateForm(form))
	assert.Equal(t, "Permission name must be uppercase with underscores only", form.Errors["name"])

	form.Apply(url.Values{"name": {"manage_users"}, "description": {"x"}})
	assert.True(t, v.ValidateForm(form))
}

func TestUserForm(t *testing.T) {
	u := mustGet(t, "users")
	v := crud.NewValidator()
	record := crud.Row{
		"id": 7.0, "username": "ann", "email": "ann@example.com",
		"roles": []any{map[string]any{"id": 1.0, "name": "Admin"}},
	}

	create := crud.NewForm(u.Form, crud.ModeCreate, nil)
	create.Apply(url.Values{"username": {"bob"}, "email": {"bob"}})
	assert.False(t, v.ValidateForm(create))
	assert.Equal(t, "Email is invalid", create.Errors["email"])
	assert.Equal(t, "Password is required", create.Errors["password"])
	assert.Equal(t, "At least one role must be selected", create.Errors["roles"])

	edit := crud.NewForm(u.Form, crud.ModeEdit, record)
	assert.Equal(t, []string{"1"}, edit.Values["roles"])
	assert.Empty(t, edit.Values.Get("password"))

	rec := &recorder{}
	edit.Apply(url.Values{"username": {"ann"}, "email": {"ann@example.com"}, "roles": {"1", "2"}})
	require.True(t, edit.Submit(context.Background(), rec, u.Endpoint, v).OK)
	assert.Equal(t, "PUT", rec.method)
	assert.Equal(t, "7", rec.id)
	body := rec.body.(map[string]any)
	assert.NotContains(t, body, "password")
	assert.Equal(t, []any{1, 2}, body["roles"])
	assert.Equal(t, 7, body["id"])
}

func TestExperienceForm(t *testing.T) {
	e := mustGet(t, "experiences")
	v := crud.NewValidator()
	form := crud.NewForm(e.Form, crud.ModeCreate, nil)

	base := url.Values{"title": {"Dev"}, "company": {"ACME"}, "start_date": {"2022-05-01"}, "section_id": {"3"}}

	form.Apply(base)
	assert.False(t, v.ValidateForm(form))
	assert.Equal(t, "End date is required if not current position", form.Errors["end_date"])

	withEnd := url.Values{"end_date": {"2021-01-01"}}
	for k, vals := range base {
		withEnd[k] = vals
	}
	form.Apply(withEnd)
	assert.False(t, v.ValidateForm(form))
	assert.Equal(t, "End date must not be before the start date", form.Errors["end_date"])

	current := url.Values{"current": {"true"}, "end_date": {"2023-01-01"}}
	for k, vals := range base {
		current[k] = vals
	}
	form.Apply(current)
	require.True(t, v.ValidateForm(form), form.Errors)
	body := form.Body()
	assert.Nil(t, body["end_date"])
	assert.Equal(t, 3, body["section_id"])
	assert.Equal(t, true, body["current"])
}

func TestTranslationForm(t *testing.T) {
	tr := mustGet(t, "translations")
	v := crud.NewValidator()
	record := crud.Row{
		"id": 2.0, "identifier": "greeting",
		"languages":    []any{map[string]any{"id": 1.0, "name": "English", "code": "en"}},
		"translations": []any{map[string]any{"language_id": 1.0, "text": "Hello"}},
	}

	form := crud.NewForm(tr.Form, crud.ModeEdit, record)
	form.Options["languages"] = []crud.Option{{Value: "1", Label: "English (en)"}, {Value: "2", Label: "German (de)"}}
	assert.Equal(t, "Hello", form.Values.Get(crud.PerOptionKey("translations", "1")))

	form.Apply(url.Values{"identifier": {"greeting"}, "languages": {"1", "2"}, "translations.1": {"Hello"}})
	assert.False(t, v.ValidateForm(form))
	assert.Equal(t, "Translation for German (de) is required", form.Errors["translations.2"])

	form.Apply(url.Values{"identifier": {"greeting"}, "languages": {"1", "2"}, "translations.1": {"Hello"}, "translations.2": {"Hallo"}})
	require.True(t, v.ValidateForm(form))
	assert.Equal(t, []map[string]any{
		{"language_id": 1, "text": "Hello"},
		{"language_id": 2, "text": "Hallo"},
	}, form.Body()["translations"])
}
