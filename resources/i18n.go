package resources

import "github.com/Kellerman81/go_portfolio_admin/crud"

func languages() *crud.Resource {
	return &crud.Resource{
		Key:      "languages",
		Title:    "Languages Management",
		Entity:   "Language",
		Endpoint: "/api/languages",
		Filters:  crud.MustFilterSet(textFilter("name"), textFilter("code")),
		Columns: []crud.Column{
			col("name"),
			col("code"),
			{Field: "is_default", Header: "Default", Sortable: true, Kind: crud.ColumnBool},
		},
		Form: &crud.FormSpec{
			Entity: "Language",
			Fields: []crud.FormField{
				required("name", crud.FieldText),
				{Key: "code", Label: "Code", Kind: crud.FieldText, Rules: "required,max=5", Placeholder: "en"},
				{Key: "is_default", Label: "Default Language", Kind: crud.FieldCheckbox},
			},
		},
	}
}

func translations() *crud.Resource {
	return &crud.Resource{
		Key:      "translations",
		Title:    "Translations Management",
		Entity:   "Translation",
		Endpoint: "/api/translations",
		Filters:  crud.MustFilterSet(textFilter("identifier")),
		Columns: []crud.Column{
			col("identifier"),
			{Field: "languages", Header: "Languages", Kind: crud.ColumnChips, Items: func(r crud.Row) []string {
				out := make([]string, 0)
				for _, l := range r.List("languages") {
					out = append(out, languageLabel(l))
				}
				return out
			}},
		},
		Form: &crud.FormSpec{
			Entity: "Translation",
			Fields: []crud.FormField{
				required("identifier", crud.FieldText),
				{Key: "languages", Label: "Language", Kind: crud.FieldMultiSelect, Relation: "languages",
					Rules: "required,min=1", Options: languagesSource},
				{Key: "translations", Label: "Translation", Kind: crud.FieldPerOption, Per: "languages",
					PerKey: "language_id", PerSource: "translations", Rules: "required"},
			},
		},
	}
}
