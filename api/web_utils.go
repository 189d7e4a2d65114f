package api

import (
	"maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

func formInput(inputType, name, id, class, value string, attrs ...gomponents.Node) gomponents.Node {
	return html.Input(
		html.Type(inputType), html.Name(name), html.ID(id), html.Class(class),
		gomponents.If(value != "", html.Value(value)),
		gomponents.Group(attrs),
	)
}

func createOption(value, text string, selected bool) gomponents.Node {
	return html.Option(html.Value(value), gomponents.If(selected, html.Selected()), gomponents.Text(text))
}

// formCheckboxInput posts "true" when checked and nothing otherwise.
func formCheckboxInput(name, id string, checked bool, attrs ...gomponents.Node) gomponents.Node {
	return formInput("checkbox", name, id, "form-check-input", "true",
		gomponents.If(checked, html.Checked()), gomponents.Group(attrs))
}
