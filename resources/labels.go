package resources

import (
	"strconv"
	"strings"

	"github.com/Kellerman81/go_portfolio_admin/crud"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// label derives display text from a field key: "meta_title" becomes
// "Meta Title", "section_id" becomes "Section".
func label(key string) string {
	key = strings.TrimSuffix(key, "_id")
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

// col is a sortable text column with a derived header.
func col(field string) crud.Column {
	return crud.Column{Field: field, Header: label(field), Sortable: true}
}

// textFilter is a contains filter with a derived label.
func textFilter(key string) crud.FilterSpec {
	return crud.FilterSpec{FieldKey: key, Label: label(key), Kind: crud.FilterText}
}

func selectFilter(key string, src *crud.OptionsSource) crud.FilterSpec {
	return crud.FilterSpec{FieldKey: key, Label: label(key), Kind: crud.FilterSelect, Options: src}
}

// required returns a "required" field of kind with a derived label.
func required(key string, kind crud.FieldKind) crud.FormField {
	return crud.FormField{Key: key, Label: label(key), Kind: kind, Rules: "required"}
}

func optional(key string, kind crud.FieldKind) crud.FormField {
	return crud.FormField{Key: key, Label: label(key), Kind: kind}
}

// plural renders "1 Permission" and "3 Permissions".
func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
