package resources

import "github.com/Kellerman81/go_portfolio_admin/crud"

func byTitle(r crud.Row) string { return r.Str("title") }

// languageLabel renders "English (en)".
func languageLabel(r crud.Row) string {
	if code := r.Str("code"); code != "" {
		return r.Str("name") + " (" + code + ")"
	}
	return r.Str("name")
}

// Lookup sources shared by filters and dialogs. Labels default to "name".
var (
	rolesSource       = &crud.OptionsSource{Endpoint: "/api/roles"}
	permissionsSource = &crud.OptionsSource{Endpoint: "/api/permissions"}
	languagesSource   = &crud.OptionsSource{Endpoint: "/api/languages", Label: languageLabel}
	portfoliosSource  = &crud.OptionsSource{Endpoint: "/api/portfolios", Label: byTitle}
	sectionsSource    = &crud.OptionsSource{Endpoint: "/api/sections", Label: byTitle}
	categoriesSource  = &crud.OptionsSource{Endpoint: "/api/categories"}
	skillsSource      = &crud.OptionsSource{Endpoint: "/api/skills"}
)
