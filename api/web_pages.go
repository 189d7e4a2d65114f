package api

import (
	"net/http"

	"github.com/Kellerman81/go_portfolio_admin/crud"
	gin "github.com/gin-gonic/gin"
	"maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	"maragu.dev/gomponents/html"
)

func addCSS() gomponents.Node {
	return html.StyleEl(gomponents.Raw(`
		.sidebar { min-height: 100vh; width: 240px; }
		.sidebar .nav-link { color: #adb5bd; }
		.sidebar .nav-link.active, .sidebar .nav-link:hover { color: #fff; }
		.filter-row { gap: .5rem; }
		.filter-row .form-select, .filter-row .form-control { max-width: 280px; }
		th .sort-link { color: inherit; text-decoration: none; cursor: pointer; }
		.modal.d-block { background: rgba(0,0,0,.4); }
		.htmx-request { opacity: .7; transition: opacity .3s ease; }
	`))
}

// page renders the document shell around content.
func (cs *Console) page(active string, headertext string, content ...gomponents.Node) gomponents.Node {
	return html.Doctype(
		html.HTML(
			html.Lang("en"),
			html.Head(
				html.Meta(html.Charset("utf-8")),
				html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
				html.TitleEl(gomponents.Text(headertext+" - "+cs.title())),
				html.Link(html.Rel("stylesheet"), html.Href("https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css")),
				html.Script(html.Src("https://unpkg.com/htmx.org@2.0.4")),
				addCSS(),
			),
			html.Body(
				html.Div(html.Class("d-flex"),
					cs.createNavbar(active),
					html.Main(html.Class("flex-grow-1 p-4"),
						html.H1(html.Class("h3 mb-3"), gomponents.Text(headertext)),
						gomponents.Group(content),
					),
				),
			),
		),
	)
}

func (cs *Console) createNavbar(active string) gomponents.Node {
	items := make([]gomponents.Node, 0, len(cs.registry.All()))
	for _, res := range cs.registry.All() {
		class := "nav-link"
		if res.Key == active {
			class += " active"
		}
		items = append(items, html.Li(html.Class("nav-item"),
			html.A(html.Class(class), html.Href("/admin/"+res.Key), gomponents.Text(res.Title)),
		))
	}
	return html.Nav(
		html.ID("sidebar"),
		html.Class("sidebar bg-dark p-3"),
		html.A(html.Class("navbar-brand text-white d-block mb-3"), html.Href("/"), gomponents.Text(cs.title())),
		html.Ul(html.Class("nav flex-column"), gomponents.Group(items)),
	)
}

func (cs *Console) renderLanding(c *gin.Context) {
	cards := make([]gomponents.Node, 0, len(cs.registry.All()))
	for _, res := range cs.registry.All() {
		cards = append(cards, html.Div(html.Class("col-md-4 mb-3"),
			html.Div(html.Class("card"),
				html.Div(html.Class("card-body"),
					html.H5(html.Class("card-title"), gomponents.Text(res.Title)),
					html.A(html.Class("btn btn-outline-primary btn-sm"), html.Href("/admin/"+res.Key),
						gomponents.Text("Open")),
				),
			),
		))
	}
	renderNode(c, http.StatusOK, cs.page("", "Dashboard", html.Div(html.Class("row"), gomponents.Group(cards))))
}

// renderResourcePage renders the full screen of a resource: filter bar,
// grid and an empty dialog slot. The grid shows the state kept in the session.
func (cs *Console) renderResourcePage(c *gin.Context) {
	res := resourceOf(c)
	pg := pageOf(c)
	cs.syncGrid(c, pg)
	view := pg.View()

	dialog := html.Div(html.ID("dialog"))
	if view.Dialog != nil {
		dialog = html.Div(html.ID("dialog"), renderDialog(res, view.Dialog))
	}
	renderNode(c, http.StatusOK, cs.page(res.Key, res.Title,
		html.Div(html.Class("d-flex justify-content-end mb-3"),
			html.Button(html.Class("btn btn-primary"), html.Type("button"),
				hx.Get(resourceURL(res, "/dialog/create")),
				hx.Target("#dialog"),
				gomponents.Text("New "+res.Entity),
			),
		),
		renderFilterBar(res, view),
		renderGrid(res, view),
		dialog,
	))
}

func resourceURL(res *crud.Resource, suffix string) string {
	return "/admin/" + res.Key + suffix
}
