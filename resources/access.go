package resources

import (
	"strings"

	"github.com/Kellerman81/go_portfolio_admin/crud"
)

func users() *crud.Resource {
	return &crud.Resource{
		Key:      "users",
		Title:    "Users Management",
		Entity:   "User",
		Endpoint: "/api/users",
		Filters: crud.MustFilterSet(
			textFilter("username"),
			textFilter("email"),
			crud.FilterSpec{FieldKey: "roles", Label: "Roles", Kind: crud.FilterMultiSelect, Options: rolesSource},
		),
		Columns: []crud.Column{
			col("username"),
			col("email"),
			{Field: "roles", Header: "Roles", Kind: crud.ColumnChips},
		},
		Form: &crud.FormSpec{
			Entity: "User",
			Fields: []crud.FormField{
				required("username", crud.FieldText),
				{Key: "email", Label: "Email", Kind: crud.FieldEmail, Rules: "required,email",
					Messages: map[string]string{"email": "Email is invalid"}},
				{Key: "password", Label: "Password", Kind: crud.FieldPassword, Secret: true, CreateRules: "required",
					Help: "Leave blank to keep the current password"},
				{Key: "roles", Label: "Role", Kind: crud.FieldMultiSelect, Relation: "roles",
					Rules: "required,min=1", Options: rolesSource},
			},
		},
		MatchToggle: true,
	}
}

func roles() *crud.Resource {
	return &crud.Resource{
		Key:      "roles",
		Title:    "Roles Management",
		Entity:   "Role",
		Endpoint: "/api/roles",
		Filters: crud.MustFilterSet(
			textFilter("name"),
			textFilter("description"),
			crud.FilterSpec{FieldKey: "permission", Label: "Permission", Kind: crud.FilterSelect, Options: permissionsSource},
		),
		Columns: []crud.Column{
			col("name"),
			col("description"),
			{Field: "permissions", Header: "Permissions", Value: func(r crud.Row) string {
				return plural(len(r.List("permissions")), "Permission")
			}},
		},
		Form: &crud.FormSpec{
			Entity: "Role",
			Fields: []crud.FormField{
				required("name", crud.FieldText),
				required("description", crud.FieldTextarea),
				{Key: "permissions", Label: "Permission", Kind: crud.FieldMultiSelect, Relation: "permissions",
					Rules: "required,min=1", Options: permissionsSource},
			},
		},
	}
}

func permissions() *crud.Resource {
	return &crud.Resource{
		Key:      "permissions",
		Title:    "Permissions Management",
		Entity:   "Permission",
		Endpoint: "/api/permissions",
		Filters:  crud.MustFilterSet(textFilter("name"), textFilter("description")),
		Columns:  []crud.Column{col("name"), col("description")},
		Form: &crud.FormSpec{
			Entity: "Permission",
			Fields: []crud.FormField{
				{Key: "name", Label: "Permission Name", Kind: crud.FieldText, Rules: "required,permission_name",
					Placeholder: "e.g. MANAGE_USERS", Transform: strings.ToUpper,
					Messages: map[string]string{
						"permission_name": "Permission name must be uppercase with underscores only",
					}},
				required("description", crud.FieldTextarea),
			},
		},
	}
}
