package api

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/Kellerman81/go_portfolio_admin/crud"
	gin "github.com/gin-gonic/gin"
	"maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	"maragu.dev/gomponents/html"
)

// Form keys of the filter bar. Row inputs are suffixed with the row id.
const (
	filterMarker = "filters"
	filterType   = "t."
	filterValue  = "f."
	filterMatch  = "match"
)

// renderFilterBar renders the active filter rows with their controls. Editing
// a row only updates the pending values; the grid changes on Search.
func renderFilterBar(res *crud.Resource, view crud.PageView) gomponents.Node {
	rows := make([]gomponents.Node, 0, len(view.Rows))
	for _, row := range view.Rows {
		rows = append(rows, renderFilterRow(res, view, row))
	}

	var match gomponents.Node
	if res.MatchToggle && hasMultiSelect(res.Filters) {
		match = html.Select(html.Class("form-select form-select-sm w-auto"), html.Name(filterMatch),
			hx.Post(resourceURL(res, "/filters/match")), hx.Trigger("change"), hx.Swap("none"),
			createOption(string(crud.MatchAny), "Match any (OR)", view.Match == crud.MatchAny),
			createOption(string(crud.MatchAll), "Match all (AND)", view.Match == crud.MatchAll),
		)
	}

	return html.Form(
		html.ID("filter-bar"),
		html.Class("card mb-3"),
		hx.Target("#filter-bar"),
		hx.Swap("outerHTML"),
		html.Input(html.Type("hidden"), html.Name(filterMarker), html.Value("1")),
		html.Div(html.Class("card-body"),
			gomponents.Group(rows),
			html.Div(html.Class("d-flex gap-2 align-items-center"),
				html.Button(html.Class("btn btn-outline-secondary btn-sm"), html.Type("button"),
					hx.Post(resourceURL(res, "/filters/add")),
					gomponents.If(!view.CanAdd, html.Disabled()),
					gomponents.Text("Add Filter"),
				),
				match,
				html.Button(html.Class("btn btn-primary btn-sm"), html.Type("button"),
					hx.Post(resourceURL(res, "/search")),
					hx.Target("#grid"),
					gomponents.Text("Search"),
				),
				html.Button(html.Class("btn btn-link btn-sm"), html.Type("button"),
					hx.Post(resourceURL(res, "/filters/reset")),
					gomponents.Text("Reset"),
				),
			),
		),
	)
}

func renderFilterRow(res *crud.Resource, view crud.PageView, row crud.ActiveFilterRow) gomponents.Node {
	id := strconv.Itoa(row.ID)
	types := make([]gomponents.Node, 0, res.Filters.Len())
	for _, spec := range res.Filters.Specs() {
		opt := createOption(spec.FieldKey, spec.Label, spec.FieldKey == row.FieldKey)
		if usedByOtherRow(view.Rows, row.ID, spec.FieldKey) {
			opt = html.Option(html.Value(spec.FieldKey), html.Disabled(), gomponents.Text(spec.Label))
		}
		types = append(types, opt)
	}

	spec, _ := res.Filters.Get(row.FieldKey)
	return html.Div(html.Class("d-flex filter-row mb-2"),
		html.Select(html.Class("form-select form-select-sm"), html.Name(filterType+id),
			hx.Post(resourceURL(res, "/filters/type/"+id)), hx.Trigger("change"),
			gomponents.Group(types),
		),
		renderFilterValue(res, view, spec, id),
		html.Button(html.Class("btn btn-outline-danger btn-sm"), html.Type("button"),
			hx.Post(resourceURL(res, "/filters/remove/"+id)),
			gomponents.If(!view.CanRemove, html.Disabled()),
			gomponents.Text("Remove"),
		),
	)
}

func renderFilterValue(res *crud.Resource, view crud.PageView, spec crud.FilterSpec, id string) gomponents.Node {
	name := filterValue + id
	post := hx.Post(resourceURL(res, "/filters/value/"+id))
	pending := view.Pending[spec.FieldKey]

	switch spec.Kind {
	case crud.FilterMultiSelect:
		return renderMultiSelectValue(res, view.FilterOptions[spec.FieldKey], spec, id, pending)
	case crud.FilterSelect:
		opts := make([]gomponents.Node, 0, len(view.FilterOptions[spec.FieldKey])+1)
		opts = append(opts, createOption("", "Any "+spec.Label, len(pending) == 0))
		for _, o := range view.FilterOptions[spec.FieldKey] {
			opts = append(opts, createOption(o.Value, o.Label, slices.Contains(pending, o.Value)))
		}
		return html.Select(html.Class("form-select form-select-sm"), html.Name(name),
			post, hx.Trigger("change"), hx.Swap("none"),
			gomponents.Group(opts),
		)
	default:
		var value string
		if len(pending) > 0 {
			value = pending[0]
		}
		placeholder := spec.Placeholder
		if placeholder == "" {
			placeholder = "Filter by " + spec.Label
		}
		return formInput("text", name, "filter-"+id, "form-control form-control-sm", value,
			html.Placeholder(placeholder),
			post, hx.Trigger("keyup changed delay:300ms"), hx.Swap("none"),
		)
	}
}

// renderMultiSelectValue renders the selected ids as chips with a remove
// control and a select adding one more id. The chips carry the selection as
// hidden inputs, so every post of the filter form sends it along.
func renderMultiSelectValue(res *crud.Resource, options []crud.Option, spec crud.FilterSpec, id string, pending []string) gomponents.Node {
	name := filterValue + id
	chips := make([]gomponents.Node, 0, len(pending))
	for _, v := range pending {
		label := v
		if i := slices.IndexFunc(options, func(o crud.Option) bool { return o.Value == v }); i >= 0 {
			label = options[i].Label
		}
		chips = append(chips, html.Span(html.Class("badge rounded-pill text-bg-secondary d-inline-flex align-items-center"),
			html.Input(html.Type("hidden"), html.Name(name), html.Value(v)),
			gomponents.Text(label),
			html.Button(html.Type("button"), html.Class("btn-close btn-close-white ms-1"),
				html.Aria("label", "Remove "+label),
				hx.Post(resourceURL(res, "/filters/value/"+id+"?remove="+url.QueryEscape(v))),
			),
		))
	}

	add := []gomponents.Node{createOption("", "Add "+spec.Label, true)}
	for _, o := range options {
		if !slices.Contains(pending, o.Value) {
			add = append(add, createOption(o.Value, o.Label, false))
		}
	}
	return html.Div(html.Class("d-flex flex-wrap align-items-center gap-1"),
		gomponents.Group(chips),
		html.Select(html.Class("form-select form-select-sm w-auto"), html.Name(name),
			hx.Post(resourceURL(res, "/filters/value/"+id)), hx.Trigger("change"),
			gomponents.Group(add),
		),
	)
}

func usedByOtherRow(rows []crud.ActiveFilterRow, rowID int, key string) bool {
	return slices.ContainsFunc(rows, func(r crud.ActiveFilterRow) bool {
		return r.ID != rowID && r.FieldKey == key
	})
}

func hasMultiSelect(set *crud.FilterSet) bool {
	return slices.ContainsFunc(set.Specs(), func(s crud.FilterSpec) bool {
		return s.Kind == crud.FilterMultiSelect
	})
}

func rowParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("row"))
	return id, err == nil
}

func (cs *Console) renderFilterBarResponse(c *gin.Context) {
	renderNode(c, http.StatusOK, renderFilterBar(resourceOf(c), pageOf(c).View()))
}

func (cs *Console) apiFilterAdd(c *gin.Context) {
	pageOf(c).EditFilters((*crud.FilterBar).Add)
	cs.renderFilterBarResponse(c)
}

func (cs *Console) apiFilterRemove(c *gin.Context) {
	if id, ok := rowParam(c); ok {
		pageOf(c).EditFilters(func(fb *crud.FilterBar) bool { return fb.Remove(id) })
	}
	cs.renderFilterBarResponse(c)
}

func (cs *Console) apiFilterType(c *gin.Context) {
	if id, ok := rowParam(c); ok {
		key := c.PostForm(filterType + c.Param("row"))
		pageOf(c).EditFilters(func(fb *crud.FilterBar) bool { return fb.ChangeType(id, key) })
	}
	cs.renderFilterBarResponse(c)
}

// apiFilterValue records a pending value. Nothing is fetched. Multiselect
// rows answer with the filter bar so the chips follow the selection; the
// "remove" query parameter drops one id.
func (cs *Console) apiFilterValue(c *gin.Context) {
	id, ok := rowParam(c)
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}
	pg := pageOf(c)
	if !isMultiSelectRow(resourceOf(c), pg.View().Rows, id) {
		vals := c.PostFormArray(filterValue + c.Param("row"))
		pg.EditFilters(func(fb *crud.FilterBar) bool { return fb.SetValue(id, vals) })
		c.Status(http.StatusNoContent)
		return
	}

	if !applyPostedFilters(c, pg) {
		vals := c.PostFormArray(filterValue + c.Param("row"))
		pg.EditFilters(func(fb *crud.FilterBar) bool { return fb.SetValue(id, vals) })
	}
	if v, ok := c.GetQuery("remove"); ok {
		pg.EditFilters(func(fb *crud.FilterBar) bool { return fb.RemoveValue(id, v) })
	}
	cs.renderFilterBarResponse(c)
}

func isMultiSelectRow(res *crud.Resource, rows []crud.ActiveFilterRow, id int) bool {
	i := slices.IndexFunc(rows, func(r crud.ActiveFilterRow) bool { return r.ID == id })
	if i < 0 {
		return false
	}
	spec, ok := res.Filters.Get(rows[i].FieldKey)
	return ok && spec.Kind == crud.FilterMultiSelect
}

// applyPostedFilters takes the values of every row from a posted filter form.
// It reports false when the request did not carry the whole form.
func applyPostedFilters(c *gin.Context, pg *crud.Page) bool {
	if c.PostForm(filterMarker) == "" {
		return false
	}
	pg.EditFilters(func(fb *crud.FilterBar) bool {
		for _, row := range fb.Rows() {
			fb.SetValue(row.ID, c.PostFormArray(filterValue+strconv.Itoa(row.ID)))
		}
		return true
	})
	if m, ok := c.GetPostForm(filterMatch); ok {
		pg.SetMatch(crud.ParseMatchMode(m))
	}
	return true
}

func (cs *Console) apiFilterMatch(c *gin.Context) {
	pageOf(c).SetMatch(crud.ParseMatchMode(c.PostForm(filterMatch)))
	c.Status(http.StatusNoContent)
}

// apiFilterReset clears all filters and lets the grid reload.
func (cs *Console) apiFilterReset(c *gin.Context) {
	pageOf(c).ResetFilters()
	c.Header("HX-Trigger", triggerGridRefresh)
	cs.renderFilterBarResponse(c)
}

// apiSearch commits the filter bar and returns the reloaded grid. When the
// whole filter form is posted its values are applied first, so input still
// waiting for its keyup delay is not lost.
func (cs *Console) apiSearch(c *gin.Context) {
	pg := pageOf(c)
	applyPostedFilters(c, pg)
	pg.Search()
	cs.syncGrid(c, pg)
	renderNode(c, http.StatusOK, renderGrid(resourceOf(c), pg.View()))
}
