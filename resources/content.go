package resources

import (
	"github.com/Kellerman81/go_portfolio_admin/crud"
)

func portfolios() *crud.Resource {
	return &crud.Resource{
		Key:      "portfolios",
		Title:    "Portfolios Management",
		Entity:   "Portfolio",
		Endpoint: "/api/portfolios",
		Filters:  crud.MustFilterSet(textFilter("title"), selectFilter("language_id", languagesSource)),
		Columns: []crud.Column{
			col("title"),
			col("subtitle"),
			{Field: "language", Header: "Language", Value: func(r crud.Row) string { return r.Str("language.name") }},
		},
		Form: &crud.FormSpec{
			Entity: "Portfolio",
			Fields: []crud.FormField{
				required("title", crud.FieldText),
				optional("subtitle", crud.FieldText),
				optional("description", crud.FieldTextarea),
				{Key: "language_id", Label: "Language", Kind: crud.FieldSelect, Rules: "required", Options: languagesSource},
				optional("meta_title", crud.FieldText),
				optional("meta_description", crud.FieldTextarea),
				{Key: "meta_keywords", Label: "Meta Keywords", Kind: crud.FieldText, Help: "Comma separated"},
			},
		},
	}
}

func sections() *crud.Resource {
	return &crud.Resource{
		Key:      "sections",
		Title:    "Sections Management",
		Entity:   "Section",
		Endpoint: "/api/sections",
		Filters:  crud.MustFilterSet(textFilter("title"), selectFilter("portfolio_id", portfoliosSource)),
		Columns: []crud.Column{
			col("title"),
			{Field: "portfolio", Header: "Portfolio", Value: func(r crud.Row) string { return r.Str("portfolio.title") }},
			{Field: "order", Header: "Order", Sortable: true, Width: "100px"},
		},
		Form: &crud.FormSpec{
			Entity: "Section",
			Fields: []crud.FormField{
				required("title", crud.FieldText),
				optional("content", crud.FieldTextarea),
				{Key: "portfolio_id", Label: "Portfolio", Kind: crud.FieldSelect, Rules: "required", Options: portfoliosSource},
				{Key: "order", Label: "Order", Kind: crud.FieldNumber, Rules: "min=0", Default: "0", Min: 0},
			},
		},
	}
}

// experiencePeriod renders "<start> - <end>", with "Present" for an open end.
func experiencePeriod(r crud.Row) string {
	start, end := r.Str("start_date"), r.Str("end_date")
	if len(start) > 10 {
		start = start[:10]
	}
	if len(end) > 10 {
		end = end[:10]
	}
	if end == "" {
		end = "Present"
	}
	return start + " - " + end
}

func checkExperience(v crud.FormValues) map[string]string {
	errs := map[string]string{}
	start, end := v.Get("start_date"), v.Get("end_date")
	switch {
	case v.Get("current") == "true":
	case end == "":
		errs["end_date"] = "End date is required if not current position"
	case start != "" && end < start:
		errs["end_date"] = "End date must not be before the start date"
	}
	return errs
}

func experiences() *crud.Resource {
	return &crud.Resource{
		Key:      "experiences",
		Title:    "Experiences Management",
		Entity:   "Experience",
		Endpoint: "/api/experiences",
		Filters: crud.MustFilterSet(
			textFilter("title"),
			textFilter("company"),
			selectFilter("section_id", sectionsSource),
		),
		Columns: []crud.Column{
			col("title"),
			col("company"),
			{Field: "period", Header: "Period", Value: experiencePeriod},
		},
		Form: &crud.FormSpec{
			Entity: "Experience",
			Fields: []crud.FormField{
				required("title", crud.FieldText),
				required("company", crud.FieldText),
				optional("location", crud.FieldText),
				optional("description", crud.FieldTextarea),
				{Key: "start_date", Label: "Start Date", Kind: crud.FieldDate, Rules: "required,datetime=2006-01-02"},
				{Key: "end_date", Label: "End Date", Kind: crud.FieldDate, Rules: "omitempty,datetime=2006-01-02"},
				{Key: "current", Label: "Current Position", Kind: crud.FieldCheckbox},
				{Key: "section_id", Label: "Section", Kind: crud.FieldSelect, Rules: "required", Options: sectionsSource},
				{Key: "order", Label: "Order", Kind: crud.FieldNumber, Rules: "min=0", Default: "0", Min: 0},
			},
			Check: checkExperience,
			Encode: func(body map[string]any, v crud.FormValues, _ crud.Mode) {
				if v.Get("current") == "true" {
					body["end_date"] = nil
				}
			},
		},
	}
}

func projects() *crud.Resource {
	return &crud.Resource{
		Key:      "projects",
		Title:    "Projects Management",
		Entity:   "Project",
		Endpoint: "/api/projects",
		Filters: crud.MustFilterSet(
			textFilter("title"),
			selectFilter("section_id", sectionsSource),
			selectFilter("category_id", categoriesSource),
			selectFilter("skill_id", skillsSource),
		),
		Columns: []crud.Column{
			col("title"),
			{Field: "section", Header: "Section", Value: func(r crud.Row) string { return r.Str("section.title") }},
			{Field: "category", Header: "Category", Value: func(r crud.Row) string { return r.Str("category.name") }},
			{Field: "skills", Header: "Skills", Kind: crud.ColumnChips},
		},
		Form: &crud.FormSpec{
			Entity: "Project",
			Fields: []crud.FormField{
				required("title", crud.FieldText),
				optional("description", crud.FieldTextarea),
				optional("content", crud.FieldTextarea),
				{Key: "url", Label: "URL", Kind: crud.FieldText, Rules: "omitempty,url"},
				{Key: "github_url", Label: "GitHub URL", Kind: crud.FieldText, Rules: "omitempty,url"},
				{Key: "section_id", Label: "Section", Kind: crud.FieldSelect, Rules: "required", Options: sectionsSource},
				{Key: "category_id", Label: "Category", Kind: crud.FieldSelect, Rules: "required", Options: categoriesSource},
				{Key: "skill_ids", Label: "Skill", Kind: crud.FieldMultiSelect, Relation: "skills", Options: skillsSource},
				{Key: "order", Label: "Order", Kind: crud.FieldNumber, Rules: "min=0", Default: "0", Min: 0},
			},
		},
	}
}
