package resources

import (
	"strconv"

	"github.com/Kellerman81/go_portfolio_admin/crud"
)

func categories() *crud.Resource {
	return &crud.Resource{
		Key:      "categories",
		Title:    "Categories Management",
		Entity:   "Category",
		Endpoint: "/api/categories",
		Filters:  crud.MustFilterSet(textFilter("name")),
		Columns:  []crud.Column{col("name"), col("description")},
		Form: &crud.FormSpec{
			Entity: "Category",
			Fields: []crud.FormField{
				required("name", crud.FieldText),
				optional("description", crud.FieldTextarea),
			},
		},
	}
}

func skills() *crud.Resource {
	return &crud.Resource{
		Key:      "skills",
		Title:    "Skills Management",
		Entity:   "Skill",
		Endpoint: "/api/skills",
		Filters:  crud.MustFilterSet(textFilter("name"), textFilter("description")),
		Columns: []crud.Column{
			col("name"),
			{Field: "level", Header: "Level", Sortable: true, Kind: crud.ColumnChip, Width: "120px",
				Value: func(r crud.Row) string {
					level, _ := r.Int("level")
					return strconv.Itoa(level)
				},
				Tone: func(r crud.Row) string {
					level, _ := r.Int("level")
					return crud.SkillTone(level)
				}},
			col("description"),
		},
		Form: &crud.FormSpec{
			Entity: "Skill",
			Fields: []crud.FormField{
				required("name", crud.FieldText),
				{Key: "level", Label: "Level", Kind: crud.FieldNumber, Rules: "required,min=0,max=100",
					Default: "50", Min: 0, Max: 100, Step: 5},
				optional("description", crud.FieldTextarea),
			},
		},
	}
}
